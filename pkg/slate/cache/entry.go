package cache

import (
	"bytes"
	"encoding/gob"
	"time"

	"github.com/jamesainslie/slate/pkg/slate/naming"
	"github.com/jamesainslie/slate/pkg/slate/paths"
)

// Entry is one cached node under a project root, keyed by its path
// relative to that root. The root itself is stored under the empty
// relative path and carries the validation data; files carry everything
// the scanner learned about them, so serving a cache hit needs neither a
// stat nor a fresh decode.
type Entry struct {
	// Mtime is the modification time as UnixNano. On the root entry it
	// decides whether the whole cached tree is still valid.
	Mtime int64

	// Prefixes are the version-prefix tokens the grammar carried when
	// the tree was scanned. Root entry only; a scan under a different
	// grammar must not be served decoded components from this one.
	Prefixes []string

	// Managed reports whether the basename follows the naming
	// convention. The remaining fields are meaningful only when set.
	Managed    bool
	Size       int64
	Kind       paths.Kind
	Components naming.Components
}

func (e *Entry) encode() ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(e); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (e *Entry) decode(data []byte) error {
	return gob.NewDecoder(bytes.NewReader(data)).Decode(e)
}

// File is a file served from the cache without touching the disk.
type File struct {
	Path       string
	Managed    bool
	Size       int64
	ModTime    time.Time
	Kind       paths.Kind
	Components naming.Components
}

// keySeparator splits root from relative path in cache keys. NUL cannot
// appear in a path, so the split is unambiguous.
const keySeparator = '\x00'

func key(root, relPath string) []byte {
	return []byte(root + string(keySeparator) + relPath)
}

func keyPrefix(root string) []byte {
	return []byte(root + string(keySeparator))
}
