// Package cache persists scan results between runs of the project scanner.
// Entries live in a Badger database keyed by project root and relative
// path, and a cached tree is valid only while the root folder's
// modification time and the grammar's version prefixes are unchanged.
package cache

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/dgraph-io/badger/v4"
)

// errNotFound marks a missing cache entry inside the package.
var errNotFound = errors.New("cache entry not found")

// Cache is a scan cache over a Badger database.
type Cache struct {
	db *badger.DB
}

// Open opens or creates a cache at the given path.
func Open(path string) (*Cache, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}
	return &Cache{db: db}, nil
}

// Close closes the cache.
func (c *Cache) Close() error {
	return c.db.Close()
}

// ValidateAndGetStale checks the cached tree for root against the
// filesystem and the given grammar prefixes. On a hit it returns every
// cached file, decoded components included, and no stale directories. On
// a miss it returns the root as the single stale directory; validation is
// conservative, any change invalidates the whole tree.
func (c *Cache) ValidateAndGetStale(root string, prefixes []string) ([]File, []string, error) {
	rootEntry, err := c.get(root, "")
	if errors.Is(err, errNotFound) {
		return nil, []string{root}, nil
	}
	if err != nil {
		return nil, nil, err
	}

	info, err := os.Stat(root)
	if err != nil {
		return nil, nil, fmt.Errorf("stat root %q: %w", root, err)
	}
	if info.ModTime().UnixNano() != rootEntry.Mtime || !slices.Equal(rootEntry.Prefixes, prefixes) {
		return nil, []string{root}, nil
	}

	files, err := c.files(root)
	if err != nil {
		return nil, nil, err
	}
	return files, nil, nil
}

// Update replaces the cached tree for root with the given entries, which
// must cover the full tree (the root under the empty relative path). The
// prefixes are stamped onto the root entry for later validation.
func (c *Cache) Update(root string, prefixes []string, entries map[string]*Entry) error {
	if rootEntry, ok := entries[""]; ok {
		rootEntry.Prefixes = prefixes
	}
	if err := c.Clear(root); err != nil {
		return err
	}

	wb := c.db.NewWriteBatch()
	defer wb.Cancel()

	for relPath, entry := range entries {
		value, err := entry.encode()
		if err != nil {
			return err
		}
		if err := wb.Set(key(root, relPath), value); err != nil {
			return err
		}
	}
	return wb.Flush()
}

// Clear removes all cached entries for a root.
func (c *Cache) Clear(root string) error {
	prefix := keyPrefix(root)

	return c.db.Update(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			if err := txn.Delete(it.Item().KeyCopy(nil)); err != nil {
				return err
			}
		}
		return nil
	})
}

// ClearAll removes all cached entries across every root.
func (c *Cache) ClearAll() error {
	return c.db.DropAll()
}

// get retrieves a single entry by root and relative path.
func (c *Cache) get(root, relPath string) (*Entry, error) {
	var entry Entry
	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key(root, relPath))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return errNotFound
		}
		if err != nil {
			return err
		}
		return item.Value(entry.decode)
	})
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// files lists every cached file under root. It trusts the cache; the
// caller has already validated the root entry.
func (c *Cache) files(root string) ([]File, error) {
	var files []File
	prefix := keyPrefix(root)

	err := c.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			relPath := string(it.Item().Key()[len(prefix):])
			if relPath == "" {
				continue
			}
			var entry Entry
			if err := it.Item().Value(entry.decode); err != nil {
				return err
			}
			files = append(files, File{
				Path:       filepath.Join(root, relPath),
				Managed:    entry.Managed,
				Size:       entry.Size,
				ModTime:    time.Unix(0, entry.Mtime),
				Kind:       entry.Kind,
				Components: entry.Components,
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return files, nil
}
