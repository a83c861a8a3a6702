// Package output provides formatters for displaying slate results in
// various output formats (pretty, plain, json, jsonl, yaml).
//
// The package uses a registry pattern to allow registration of multiple
// formatter implementations that can be selected at runtime.
//
// Basic usage:
//
//	formatter, err := output.Get("pretty")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	var buf bytes.Buffer
//	if err := formatter.Format(&buf, result); err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Print(buf.String())
package output

import (
	"bytes"
	"fmt"
	"sort"
	"sync"
	"time"
)

// FileInfo is one managed file prepared for display: the decoded name
// components plus computed fields like human-readable size.
type FileInfo struct {
	// Path is the absolute path to the file.
	Path string `json:"path" yaml:"path"`

	// Name is the base name of the file.
	Name string `json:"name" yaml:"name"`

	// Project is the project short name from the file name.
	Project string `json:"project" yaml:"project"`

	// Type is the item type letter (A, S or G).
	Type string `json:"type" yaml:"type"`

	// Object is the asset or shot short name. Empty for general items.
	Object string `json:"object,omitempty" yaml:"object,omitempty"`

	// Step is the production step short name.
	Step string `json:"step" yaml:"step"`

	// Resource distinguishes sibling files of one step.
	Resource string `json:"resource,omitempty" yaml:"resource,omitempty"`

	// State is the version prefix as written in the name.
	State string `json:"state,omitempty" yaml:"state,omitempty"`

	// Version is the version number, or -1 when the name has none.
	Version int `json:"version" yaml:"version"`

	// Extension is the file extension without the leading dot.
	Extension string `json:"extension" yaml:"extension"`

	// Kind names the reserved folder the file sits in, or "none".
	Kind string `json:"kind" yaml:"kind"`

	// Size is the file size in bytes.
	Size int64 `json:"size" yaml:"size"`

	// SizeHuman is the human-readable file size (e.g., "1.5 MiB").
	SizeHuman string `json:"size_human" yaml:"size_human"`

	// ModTime is the last modification time of the file.
	ModTime time.Time `json:"mod_time" yaml:"mod_time"`

	// Age is the time since the file was last modified.
	Age time.Duration `json:"age" yaml:"age"`
}

// ScanStats contains statistics about a scan operation.
type ScanStats struct {
	// DirsScanned is the total number of directories traversed.
	DirsScanned int64 `json:"dirs_scanned" yaml:"dirs_scanned"`

	// FilesScanned is the total number of files examined.
	FilesScanned int64 `json:"files_scanned" yaml:"files_scanned"`

	// ForeignFiles is the number of files not following the naming convention.
	ForeignFiles int64 `json:"foreign_files" yaml:"foreign_files"`

	// CacheHits is the number of files served from the scan cache.
	CacheHits int64 `json:"cache_hits" yaml:"cache_hits"`

	// Duration is the total time taken to complete the operation.
	Duration time.Duration `json:"duration" yaml:"duration"`
}

// Result contains the complete output data for formatting.
type Result struct {
	// Files contains the managed files to display.
	Files []FileInfo `json:"files" yaml:"files"`

	// Stats contains scan statistics.
	Stats ScanStats `json:"stats" yaml:"stats"`

	// Source is the path the result was produced from.
	Source string `json:"source" yaml:"source"`

	// DaemonUp indicates if the pipeline daemon was reachable.
	DaemonUp bool `json:"daemon_up" yaml:"daemon_up"`

	// Warnings contains any warning messages generated during the operation.
	Warnings []string `json:"warnings,omitempty" yaml:"warnings,omitempty"`
}

// TotalSize returns the sum of all file sizes in the result.
func (r *Result) TotalSize() int64 {
	var total int64
	for _, f := range r.Files {
		total += f.Size
	}
	return total
}

// Formatter is the interface that all output formatters must implement.
type Formatter interface {
	// Format writes the formatted output to the buffer.
	// It returns an error if formatting fails.
	Format(w *bytes.Buffer, r *Result) error
}

// FormatterFactory is a function that creates a new Formatter instance.
type FormatterFactory func() Formatter

// Registry manages formatter registration and lookup.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]FormatterFactory
}

// NewRegistry creates a new formatter registry.
func NewRegistry() *Registry {
	return &Registry{
		factories: make(map[string]FormatterFactory),
	}
}

// Register adds a formatter factory to the registry.
// It will replace any existing formatter with the same name.
func (r *Registry) Register(name string, factory FormatterFactory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[name] = factory
}

// Get returns a new formatter instance by name.
// It returns an error if the formatter is not found.
func (r *Registry) Get(name string) (Formatter, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	factory, ok := r.factories[name]
	if !ok {
		return nil, fmt.Errorf("unknown formatter: %s", name)
	}
	return factory(), nil
}

// Available returns a sorted list of all registered formatter names.
func (r *Registry) Available() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DefaultRegistry is the global formatter registry.
var DefaultRegistry = NewRegistry()

// Register adds a formatter factory to the default registry.
func Register(name string, factory FormatterFactory) {
	DefaultRegistry.Register(name, factory)
}

// Get returns a new formatter instance from the default registry.
func Get(name string) (Formatter, error) {
	return DefaultRegistry.Get(name)
}

// Available returns all formatter names from the default registry.
func Available() []string {
	return DefaultRegistry.Available()
}
