package output

import (
	"bytes"
	"encoding/json"
	"time"
)

// jsonOutput represents the full JSON output structure.
type jsonOutput struct {
	Files []jsonFile `json:"files"`
	Stats jsonStats  `json:"stats"`
	Meta  jsonMeta   `json:"meta"`
}

// jsonFile represents a file in JSON output.
type jsonFile struct {
	Path      string    `json:"path"`
	Name      string    `json:"name,omitempty"`
	Project   string    `json:"project,omitempty"`
	Type      string    `json:"type,omitempty"`
	Object    string    `json:"object,omitempty"`
	Step      string    `json:"step,omitempty"`
	Resource  string    `json:"resource,omitempty"`
	State     string    `json:"state,omitempty"`
	Version   int       `json:"version"`
	Ext       string    `json:"ext,omitempty"`
	Kind      string    `json:"kind,omitempty"`
	Size      int64     `json:"size"`
	SizeHuman string    `json:"size_human"`
	ModTime   time.Time `json:"mod_time,omitempty"`
	Age       string    `json:"age,omitempty"`
}

// jsonStats represents scan statistics in JSON output.
type jsonStats struct {
	DirsScanned  int64  `json:"dirs_scanned"`
	FilesScanned int64  `json:"files_scanned"`
	ForeignFiles int64  `json:"foreign_files"`
	CacheHits    int64  `json:"cache_hits"`
	Duration     string `json:"duration"`
}

// jsonMeta represents metadata in JSON output.
type jsonMeta struct {
	Source     string   `json:"source"`
	DaemonUp   bool     `json:"daemon_up"`
	TotalFiles int      `json:"total_files"`
	TotalSize  int64    `json:"total_size"`
	Warnings   []string `json:"warnings,omitempty"`
}

// JSONFormatter formats output as a single indented JSON object.
// It produces a complete JSON document with files, stats, and meta sections.
type JSONFormatter struct{}

// Format writes the formatted output to the buffer.
func (f *JSONFormatter) Format(w *bytes.Buffer, r *Result) error {
	output := f.buildOutput(r)

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(output)
}

// buildOutput converts Result to the JSON output structure.
func (f *JSONFormatter) buildOutput(r *Result) jsonOutput {
	files := make([]jsonFile, len(r.Files))
	for i, file := range r.Files {
		files[i] = buildJSONFile(file)
	}

	stats := jsonStats{
		DirsScanned:  r.Stats.DirsScanned,
		FilesScanned: r.Stats.FilesScanned,
		ForeignFiles: r.Stats.ForeignFiles,
		CacheHits:    r.Stats.CacheHits,
		Duration:     formatDurationString(r.Stats.Duration),
	}

	meta := jsonMeta{
		Source:     r.Source,
		DaemonUp:   r.DaemonUp,
		TotalFiles: len(r.Files),
		TotalSize:  r.TotalSize(),
		Warnings:   r.Warnings,
	}

	return jsonOutput{
		Files: files,
		Stats: stats,
		Meta:  meta,
	}
}

// buildJSONFile converts a FileInfo to its JSON representation.
func buildJSONFile(file FileInfo) jsonFile {
	return jsonFile{
		Path:      file.Path,
		Name:      file.Name,
		Project:   file.Project,
		Type:      file.Type,
		Object:    file.Object,
		Step:      file.Step,
		Resource:  file.Resource,
		State:     file.State,
		Version:   file.Version,
		Ext:       file.Extension,
		Kind:      file.Kind,
		Size:      file.Size,
		SizeHuman: file.SizeHuman,
		ModTime:   file.ModTime,
		Age:       formatDurationString(file.Age),
	}
}

// formatDurationString formats a duration as a string for JSON output.
func formatDurationString(d time.Duration) string {
	if d == 0 {
		return ""
	}
	return d.String()
}

func init() {
	Register("json", func() Formatter {
		return &JSONFormatter{}
	})
}

// Ensure JSONFormatter implements Formatter.
var _ Formatter = (*JSONFormatter)(nil)

// JSONLFormatter formats output as newline-delimited JSON (one object per line).
// Each file is written as a compact JSON object on its own line.
// This format is suitable for streaming processing with tools like jq.
type JSONLFormatter struct{}

// Format writes the formatted output to the buffer.
func (f *JSONLFormatter) Format(w *bytes.Buffer, r *Result) error {
	for _, file := range r.Files {
		data, err := json.Marshal(buildJSONFile(file))
		if err != nil {
			return err
		}
		w.Write(data)
		w.WriteByte('\n')
	}
	return nil
}

func init() {
	Register("jsonl", func() Formatter {
		return &JSONLFormatter{}
	})
}

// Ensure JSONLFormatter implements Formatter.
var _ Formatter = (*JSONLFormatter)(nil)
