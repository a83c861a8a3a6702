package output

import (
	"bytes"
	"time"

	"gopkg.in/yaml.v3"
)

// yamlOutput represents the full YAML output structure.
type yamlOutput struct {
	Files []yamlFile `yaml:"files"`
	Stats yamlStats  `yaml:"stats"`
	Meta  yamlMeta   `yaml:"meta"`
}

// yamlFile represents a file in YAML output.
type yamlFile struct {
	Path      string    `yaml:"path"`
	Name      string    `yaml:"name,omitempty"`
	Project   string    `yaml:"project,omitempty"`
	Type      string    `yaml:"type,omitempty"`
	Object    string    `yaml:"object,omitempty"`
	Step      string    `yaml:"step,omitempty"`
	Resource  string    `yaml:"resource,omitempty"`
	State     string    `yaml:"state,omitempty"`
	Version   int       `yaml:"version"`
	Ext       string    `yaml:"ext,omitempty"`
	Kind      string    `yaml:"kind,omitempty"`
	Size      int64     `yaml:"size"`
	SizeHuman string    `yaml:"size_human"`
	ModTime   time.Time `yaml:"mod_time,omitempty"`
	Age       string    `yaml:"age,omitempty"`
}

// yamlStats represents scan statistics in YAML output.
type yamlStats struct {
	DirsScanned  int64  `yaml:"dirs_scanned"`
	FilesScanned int64  `yaml:"files_scanned"`
	ForeignFiles int64  `yaml:"foreign_files"`
	CacheHits    int64  `yaml:"cache_hits"`
	Duration     string `yaml:"duration"`
}

// yamlMeta represents metadata in YAML output.
type yamlMeta struct {
	Source     string   `yaml:"source"`
	DaemonUp   bool     `yaml:"daemon_up"`
	TotalFiles int      `yaml:"total_files"`
	TotalSize  int64    `yaml:"total_size"`
	Warnings   []string `yaml:"warnings,omitempty"`
}

// YAMLFormatter formats output as YAML.
// It produces the same structure as JSONFormatter but in YAML format.
type YAMLFormatter struct{}

// Format writes the formatted output to the buffer.
func (f *YAMLFormatter) Format(w *bytes.Buffer, r *Result) error {
	output := f.buildOutput(r)

	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	if err := encoder.Encode(output); err != nil {
		return err
	}
	return encoder.Close()
}

// buildOutput converts Result to the YAML output structure.
func (f *YAMLFormatter) buildOutput(r *Result) yamlOutput {
	files := make([]yamlFile, len(r.Files))
	for i, file := range r.Files {
		files[i] = yamlFile{
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

	stats := yamlStats{
		DirsScanned:  r.Stats.DirsScanned,
		FilesScanned: r.Stats.FilesScanned,
		ForeignFiles: r.Stats.ForeignFiles,
		CacheHits:    r.Stats.CacheHits,
		Duration:     formatDurationString(r.Stats.Duration),
	}

	meta := yamlMeta{
		Source:     r.Source,
		DaemonUp:   r.DaemonUp,
		TotalFiles: len(r.Files),
		TotalSize:  r.TotalSize(),
		Warnings:   r.Warnings,
	}

	return yamlOutput{
		Files: files,
		Stats: stats,
		Meta:  meta,
	}
}

func init() {
	Register("yaml", func() Formatter {
		return &YAMLFormatter{}
	})
}

// Ensure YAMLFormatter implements Formatter.
var _ Formatter = (*YAMLFormatter)(nil)
