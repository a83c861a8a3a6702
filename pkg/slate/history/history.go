// Package history manages the version archive of managed working files.
// Every working file owns a versions folder next to it; committing copies
// the file in under the next version number, restoring copies a chosen
// version back out. Lineage membership is decided purely by name, so the
// archive needs no database and survives manual file moves.
package history

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/jamesainslie/slate/pkg/slate/naming"
	"github.com/jamesainslie/slate/pkg/slate/paths"
)

var (
	// ErrMissingFile indicates the working file to operate on does not exist.
	ErrMissingFile = errors.New("file does not exist")

	// ErrMalformedName indicates the file's basename does not follow the
	// naming convention and cannot participate in version history.
	ErrMalformedName = errors.New("file name does not match the naming convention")

	// ErrNotAVersion indicates a restore source that is not a version file:
	// either outside a versions folder or missing a version block.
	ErrNotAVersion = errors.New("not a version file")
)

// Entry is one archived version of a working file.
type Entry struct {
	Path       string
	Components naming.Components
	ModTime    time.Time
}

// History reads and writes the version archives of working files. It is
// stateless; all knowledge lives in folder contents and file names.
type History struct {
	grammar  *naming.Grammar
	resolver *paths.Resolver
}

// New creates a History using the given grammar and folder layout.
func New(grammar *naming.Grammar, resolver *paths.Resolver) *History {
	return &History{grammar: grammar, resolver: resolver}
}

// lineageRef derives the lineage reference components for a path: the
// decoded basename with version block and restored markers removed, so a
// version file, a restored copy and the primary working file all map to the
// same lineage.
func (h *History) lineageRef(path string) (naming.Components, error) {
	c, err := h.grammar.Decode(filepath.Base(path))
	if err != nil {
		return naming.Components{}, fmt.Errorf("%w: %q", ErrMalformedName, filepath.Base(path))
	}
	c = c.WithoutVersion()
	c.Resource = naming.StripRestoredTag(c.Resource)
	return c, nil
}

// scan lists the archived versions in the same lineage as path. A missing
// versions folder yields an empty result. Subdirectories, foreign files and
// versionless names in the folder are skipped. When state is non-empty only
// versions carrying that state prefix (compared case-insensitively) are
// returned.
func (h *History) scan(path, state string) ([]Entry, error) {
	ref, err := h.lineageRef(path)
	if err != nil {
		return nil, err
	}
	folder, err := h.resolver.Locate(paths.KindVersions, path)
	if err != nil {
		return nil, err
	}

	dirents, err := os.ReadDir(folder)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading versions folder %q: %w", folder, err)
	}

	var entries []Entry
	for _, de := range dirents {
		if !de.Type().IsRegular() {
			continue
		}
		c, err := h.grammar.Decode(de.Name())
		if err != nil || c.Version < 0 {
			continue
		}
		if !ref.SameLineage(c) {
			continue
		}
		if state != "" && !strings.EqualFold(c.State, state) {
			continue
		}
		info, err := de.Info()
		if err != nil {
			continue
		}
		entries = append(entries, Entry{
			Path:       filepath.Join(folder, de.Name()),
			Components: c,
			ModTime:    info.ModTime(),
		})
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Components.Version != entries[j].Components.Version {
			return entries[i].Components.Version < entries[j].Components.Version
		}
		return entries[i].ModTime.Before(entries[j].ModTime)
	})
	return entries, nil
}

// List returns all archived versions in the lineage of path, in ascending
// version order (numeric, not lexicographic: v9 sorts before v10). Pass an
// empty state to list all states.
func (h *History) List(path, state string) ([]Entry, error) {
	return h.scan(path, state)
}

// Latest returns the highest archived version in the lineage of path. When
// two files carry the same version number the more recently modified one
// wins. The second return is false when the lineage has no versions yet.
func (h *History) Latest(path, state string) (Entry, bool, error) {
	entries, err := h.scan(path, state)
	if err != nil || len(entries) == 0 {
		return Entry{}, false, err
	}
	return entries[len(entries)-1], true, nil
}

// Previous returns the highest archived version strictly below the latest
// version number. The second return is false when fewer than two distinct
// version numbers exist.
func (h *History) Previous(path, state string) (Entry, bool, error) {
	entries, err := h.scan(path, state)
	if err != nil {
		return Entry{}, false, err
	}
	latest := len(entries) - 1
	for i := latest; i >= 0; i-- {
		if entries[i].Components.Version < entries[latest].Components.Version {
			return entries[i], true, nil
		}
	}
	return Entry{}, false, nil
}

// Commit archives the working file at path into its versions folder.
//
// The version number continues from the highest archived version carrying
// the given state (any state when none is given): one past it when
// increment is set, on top of it otherwise. An empty archive for that state
// always yields version 1 regardless of increment, so each state numbers
// its own series. The state prefix is taken from the state argument when
// non-empty, otherwise from the latest archived version, falling back to
// "v". The copy preserves the source modification time.
func (h *History) Commit(path string, increment bool, state string) (Entry, error) {
	info, err := os.Stat(path)
	if err != nil {
		return Entry{}, fmt.Errorf("%w: %q", ErrMissingFile, path)
	}
	if !info.Mode().IsRegular() {
		return Entry{}, fmt.Errorf("%w: %q is not a regular file", ErrMissingFile, path)
	}

	c, err := h.grammar.Decode(filepath.Base(path))
	if err != nil {
		return Entry{}, fmt.Errorf("%w: %q", ErrMalformedName, filepath.Base(path))
	}

	version := 1
	latest, found, err := h.Latest(path, state)
	if err != nil {
		return Entry{}, err
	}
	if found {
		version = latest.Components.Version
		if increment {
			version++
		}
		if state == "" {
			state = latest.Components.State
		}
	}
	if version < 1 {
		version = 1
	}
	if state == "" {
		state = "v"
	}

	c.Version = version
	c.State = state

	folder, err := h.resolver.Resolve(paths.KindVersions, path)
	if err != nil {
		return Entry{}, err
	}
	dest := filepath.Join(folder, naming.Encode(c))
	if err := copyFile(path, dest); err != nil {
		return Entry{}, err
	}
	return Entry{Path: dest, Components: c, ModTime: info.ModTime()}, nil
}

// Restore copies a version file back into its owning folder. The restored
// copy drops the version block and marks its resource with the version it
// came from, so it never collides with the primary working file. Returns
// the path of the restored copy.
func (h *History) Restore(versionPath string) (string, error) {
	if h.resolver.Classify(versionPath) != paths.KindVersions {
		return "", fmt.Errorf("%w: %q is outside the versions folder", ErrNotAVersion, versionPath)
	}
	c, err := h.grammar.Decode(filepath.Base(versionPath))
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrMalformedName, filepath.Base(versionPath))
	}
	if c.Version < 0 {
		return "", fmt.Errorf("%w: %q has no version block", ErrNotAVersion, versionPath)
	}

	restored := c.WithoutVersion()
	restored.Resource = naming.TagRestored(restored.Resource, c.Version)

	dest := filepath.Join(h.resolver.OwningFolder(versionPath), naming.Encode(restored))
	if err := copyFile(versionPath, dest); err != nil {
		return "", err
	}
	return dest, nil
}

// Publish promotes the file at path into the publish folder under its
// canonical name, with the version block and any restored markers removed.
func (h *History) Publish(path string) (string, error) {
	return h.promote(paths.KindPublish, path)
}

// Preview places the file at path into the preview folder under its
// canonical name, the same way Publish does.
func (h *History) Preview(path string) (string, error) {
	return h.promote(paths.KindPreview, path)
}

func (h *History) promote(kind paths.Kind, path string) (string, error) {
	if _, err := os.Stat(path); err != nil {
		return "", fmt.Errorf("%w: %q", ErrMissingFile, path)
	}
	c, err := h.lineageRef(path)
	if err != nil {
		return "", err
	}
	folder, err := h.resolver.Resolve(kind, path)
	if err != nil {
		return "", err
	}
	dest := filepath.Join(folder, naming.Encode(c))
	if err := copyFile(path, dest); err != nil {
		return "", err
	}
	return dest, nil
}

// copyFile copies src to dst, truncating any existing dst, and carries the
// source modification time over so version ordering stays meaningful.
func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("opening %q: %w", src, err)
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return fmt.Errorf("stat %q: %w", src, err)
	}

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("creating %q: %w", dst, err)
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("copying to %q: %w", dst, err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("closing %q: %w", dst, err)
	}
	return os.Chtimes(dst, time.Now(), info.ModTime())
}
