// Package scanner walks a project tree in parallel and inventories the
// files that follow the naming convention. Managed files are decoded and
// classified by the reserved folder they sit in; everything else is counted
// as foreign. Results can be served from the cache when the tree has not
// changed since the previous scan.
package scanner

import (
	"io/fs"
	"time"

	"github.com/jamesainslie/slate/pkg/slate/cache"
	"github.com/jamesainslie/slate/pkg/slate/naming"
	"github.com/jamesainslie/slate/pkg/slate/paths"
)

// File is one managed file found during a scan.
type File struct {
	Path       string
	Size       int64
	ModTime    time.Time
	Mode       fs.FileMode
	Kind       paths.Kind
	Components naming.Components
}

// ScanError records a non-fatal error encountered during scanning.
type ScanError struct {
	Path  string
	Error string
}

// Progress is a snapshot of an in-flight scan.
type Progress struct {
	DirsScanned  int64
	FilesScanned int64
	ManagedFiles int64
	ForeignFiles int64
	CurrentPath  string
	CacheHits    int64
	CacheMisses  int64
}

// Result is the outcome of a completed scan.
type Result struct {
	Files        []File
	DirsScanned  int64
	FilesScanned int64
	ForeignFiles int64
	Elapsed      time.Duration
	Errors       []ScanError
	CacheHits    int64
	CacheMisses  int64
}

// Lineages groups the managed files by lineage. The key is the file's
// components with version block and restored markers removed, so every
// archived version, preview and published copy of one working file lands
// in the same group.
func (r *Result) Lineages() map[naming.Components][]File {
	groups := make(map[naming.Components][]File)
	for _, f := range r.Files {
		key := f.Components.WithoutVersion()
		key.Resource = naming.StripRestoredTag(key.Resource)
		groups[key] = append(groups[key], f)
	}
	return groups
}

// Options configures a scan.
type Options struct {
	// Root is the directory to scan.
	Root string

	// Grammar decodes file names. Required.
	Grammar *naming.Grammar

	// Resolver classifies reserved folders. Required.
	Resolver *paths.Resolver

	// Exclude lists folder names and glob patterns to skip.
	Exclude []string

	// Workers bounds walk parallelism. Zero uses the fastwalk default.
	Workers int

	// Cache, when non-nil, serves unchanged trees without walking and is
	// updated after each fresh scan.
	Cache *cache.Cache

	// OnFile is called for each managed file as it is found.
	OnFile func(File)

	// OnProgress receives throttled progress updates.
	OnProgress func(Progress)
}
