package output

import (
	"os"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/jamesainslie/slate/pkg/slate/history"
	"github.com/jamesainslie/slate/pkg/slate/naming"
	"github.com/jamesainslie/slate/pkg/slate/scanner"
)

// FromScan converts a scan result into a displayable Result.
func FromScan(res *scanner.Result, source string) *Result {
	now := time.Now()
	files := make([]FileInfo, len(res.Files))
	for i, f := range res.Files {
		files[i] = FileInfo{
			Path:      f.Path,
			Name:      filepath.Base(f.Path),
			Project:   f.Components.Project,
			Type:      string(f.Components.Type),
			Object:    f.Components.Object,
			Step:      f.Components.Step,
			Resource:  f.Components.Resource,
			State:     f.Components.State,
			Version:   f.Components.Version,
			Extension: f.Components.Extension,
			Kind:      f.Kind.String(),
			Size:      f.Size,
			SizeHuman: humanize.IBytes(uint64(f.Size)),
			ModTime:   f.ModTime,
			Age:       now.Sub(f.ModTime),
		}
	}

	result := &Result{
		Files:  files,
		Source: source,
		Stats: ScanStats{
			DirsScanned:  res.DirsScanned,
			FilesScanned: res.FilesScanned,
			ForeignFiles: res.ForeignFiles,
			CacheHits:    res.CacheHits,
			Duration:     res.Elapsed,
		},
	}
	for _, e := range res.Errors {
		result.Warnings = append(result.Warnings, e.Path+": "+e.Error)
	}
	return result
}

// FromVersions converts archived version entries into a displayable Result.
// Sizes come from a fresh stat of each entry; entries removed since the
// listing simply show a zero size.
func FromVersions(entries []history.Entry, source string) *Result {
	now := time.Now()
	files := make([]FileInfo, len(entries))
	for i, e := range entries {
		var size int64
		if info, err := os.Stat(e.Path); err == nil {
			size = info.Size()
		}
		files[i] = fromComponents(e.Path, e.Components, size, e.ModTime, now)
	}
	return &Result{Files: files, Source: source}
}

// fromComponents builds a FileInfo from decoded name components.
func fromComponents(path string, c naming.Components, size int64, modTime, now time.Time) FileInfo {
	return FileInfo{
		Path:      path,
		Name:      filepath.Base(path),
		Project:   c.Project,
		Type:      string(c.Type),
		Object:    c.Object,
		Step:      c.Step,
		Resource:  c.Resource,
		State:     c.State,
		Version:   c.Version,
		Extension: c.Extension,
		Size:      size,
		SizeHuman: humanize.IBytes(uint64(size)),
		ModTime:   modTime,
		Age:       now.Sub(modTime),
	}
}
