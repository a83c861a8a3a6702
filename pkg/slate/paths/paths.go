// Package paths classifies file paths against the reserved sub-areas of a
// working folder (versions, preview, publish) and resolves those folders,
// creating them lazily. Classification is pure string work on the parent
// directory name; only Resolve touches the filesystem.
package paths

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jamesainslie/slate/pkg/slate/naming"
)

// Kind identifies which reserved sub-area a path belongs to.
type Kind int

// Reserved folder kinds.
const (
	KindNone Kind = iota
	KindVersions
	KindPreview
	KindPublish
)

// String returns the kind name for logs and messages.
func (k Kind) String() string {
	switch k {
	case KindVersions:
		return "versions"
	case KindPreview:
		return "preview"
	case KindPublish:
		return "publish"
	default:
		return "none"
	}
}

// Names holds the configured reserved folder names.
type Names struct {
	Versions string
	Preview  string
	Publish  string
}

// DefaultNames returns the conventional reserved folder names.
func DefaultNames() Names {
	return Names{
		Versions: "_versions",
		Preview:  "_preview",
		Publish:  "_published",
	}
}

// ErrMalformedName indicates that a path's basename does not follow the
// naming convention and no save path can be derived for it.
var ErrMalformedName = errors.New("path basename does not match the naming convention")

// Resolver answers where the reserved folders of a path live. A path is
// considered inside a reserved folder iff its immediate parent directory
// carries one of the configured names; no marker files are consulted.
type Resolver struct {
	names Names
}

// NewResolver creates a resolver for the given reserved folder names.
func NewResolver(names Names) *Resolver {
	return &Resolver{names: names}
}

// folderName returns the configured name for a reserved kind.
func (r *Resolver) folderName(kind Kind) string {
	switch kind {
	case KindVersions:
		return r.names.Versions
	case KindPreview:
		return r.names.Preview
	case KindPublish:
		return r.names.Publish
	default:
		return ""
	}
}

// Classify reports which reserved folder, if any, the path sits in.
func (r *Resolver) Classify(path string) Kind {
	switch filepath.Base(filepath.Dir(path)) {
	case r.names.Versions:
		return KindVersions
	case r.names.Preview:
		return KindPreview
	case r.names.Publish:
		return KindPublish
	default:
		return KindNone
	}
}

// InReserved reports whether the path sits inside any reserved folder.
func (r *Resolver) InReserved(path string) bool {
	return r.Classify(path) != KindNone
}

// OwningFolder returns the canonical working folder for a path: the parent
// of the reserved folder when the path lives in one, the path's own folder
// otherwise.
func (r *Resolver) OwningFolder(path string) string {
	dir := filepath.Dir(path)
	if r.Classify(path) != KindNone {
		return filepath.Dir(dir)
	}
	return dir
}

// Locate returns where the reserved folder of the requested kind for a
// file path lives, without creating it. The input may already live inside
// any of the reserved folders; the result is the same either way.
func (r *Resolver) Locate(kind Kind, path string) (string, error) {
	name := r.folderName(kind)
	if name == "" {
		return "", fmt.Errorf("cannot resolve reserved folder of kind %v", kind)
	}
	if r.Classify(path) == kind {
		return filepath.Dir(path), nil
	}
	return filepath.Join(r.OwningFolder(path), name), nil
}

// Resolve is Locate plus lazy creation. Creation is idempotent, so
// resolving repeatedly (or concurrently) is safe.
func (r *Resolver) Resolve(kind Kind, path string) (string, error) {
	folder, err := r.Locate(kind, path)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(folder, 0o755); err != nil {
		return "", fmt.Errorf("creating %s folder %q: %w", kind, folder, err)
	}
	return folder, nil
}

// SaveFilePath derives the canonical working-file path for any managed file
// path, wherever it currently lives. The version block is dropped and any
// restored-from-version marker is stripped from the resource, so the result
// always names the primary working file in the owning folder. Returns
// ErrMalformedName when the basename does not decode.
func (r *Resolver) SaveFilePath(path string, grammar *naming.Grammar) (string, error) {
	c, err := grammar.Decode(filepath.Base(path))
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrMalformedName, filepath.Base(path))
	}

	c = c.WithoutVersion()
	c.Resource = naming.StripRestoredTag(c.Resource)

	return filepath.Join(r.OwningFolder(path), naming.Encode(c)), nil
}
