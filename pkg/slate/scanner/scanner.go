package scanner

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charlievieth/fastwalk"
	"github.com/jamesainslie/slate/pkg/slate/cache"
	"github.com/jamesainslie/slate/pkg/slate/paths"
)

// Scanner performs parallel project scanning using fastwalk.
type Scanner struct {
	opts Options

	// Atomic counters for thread-safe progress reporting.
	dirsScanned  atomic.Int64
	filesScanned atomic.Int64
	managedFiles atomic.Int64
	foreignFiles atomic.Int64
	cacheHits    atomic.Int64
	cacheMisses  atomic.Int64

	// currentPath is the path currently being scanned (for progress).
	currentPath atomic.Value

	// errors collects scan errors without stopping the scan.
	errors   []ScanError
	errorsMu sync.Mutex

	// results collects the managed files.
	results   []File
	resultsMu sync.Mutex

	// lastProgress tracks when we last reported progress to avoid excessive callbacks.
	lastProgress atomic.Int64

	// cacheEntries collects entries for cache updates during scan.
	cacheEntries   map[string]*cache.Entry
	cacheEntriesMu sync.Mutex

	// root is the resolved absolute path being scanned.
	root string
}

// New creates a new Scanner with the given options.
func New(opts Options) *Scanner {
	s := &Scanner{
		opts:    opts,
		errors:  make([]ScanError, 0),
		results: make([]File, 0),
	}
	s.currentPath.Store("")
	return s
}

// Scan performs the scan and returns results.
// It blocks until complete or context is cancelled.
func (s *Scanner) Scan(ctx context.Context) (*Result, error) {
	startTime := time.Now()

	root, err := s.validateRoot()
	if err != nil {
		return nil, err
	}
	s.root = root

	s.currentPath.Store(root)
	s.reportProgressForce()

	// Phase 1: check cache for valid entries.
	dirsToScan, earlyResult := s.validateCache(startTime)
	if earlyResult != nil {
		return earlyResult, nil
	}

	if s.opts.Cache != nil {
		s.cacheEntries = make(map[string]*cache.Entry)
	}

	// Phase 2: walk the tree.
	if err := s.executeWalk(ctx, dirsToScan); err != nil {
		return nil, err
	}

	// Phase 3: update the cache with collected entries.
	s.flushCacheEntries()

	return &Result{
		Files:        s.results,
		DirsScanned:  s.dirsScanned.Load(),
		FilesScanned: s.filesScanned.Load(),
		ForeignFiles: s.foreignFiles.Load(),
		Elapsed:      time.Since(startTime),
		Errors:       s.errors,
		CacheHits:    s.cacheHits.Load(),
		CacheMisses:  s.cacheMisses.Load(),
	}, nil
}

// validateCache checks cache for valid entries and returns directories to scan.
// If all entries are valid, returns an early result. Otherwise returns nil.
func (s *Scanner) validateCache(startTime time.Time) (dirsToScan []string, earlyResult *Result) {
	if s.opts.Cache == nil {
		return nil, nil
	}

	validFiles, staleDirs, cacheErr := s.opts.Cache.ValidateAndGetStale(s.root, s.opts.Grammar.Prefixes())
	if cacheErr != nil || len(staleDirs) > 0 {
		// Cache miss or stale dirs - need to scan.
		return staleDirs, nil
	}

	return nil, s.buildCacheHitResult(validFiles, startTime)
}

// buildCacheHitResult creates a result from fully cached data. The cache
// carries the decoded components and reserved-folder kind of every managed
// file, so no disk access and no fresh decode is needed.
func (s *Scanner) buildCacheHitResult(validFiles []cache.File, startTime time.Time) *Result {
	s.cacheHits.Store(int64(len(validFiles)))
	s.filesScanned.Store(int64(len(validFiles)))

	for _, f := range validFiles {
		if !f.Managed || s.isExcluded(f.Path) {
			s.foreignFiles.Add(1)
			continue
		}
		entry := File{
			Path:       f.Path,
			Size:       f.Size,
			ModTime:    f.ModTime,
			Kind:       f.Kind,
			Components: f.Components,
		}
		s.results = append(s.results, entry)
		s.managedFiles.Add(1)
		if s.opts.OnFile != nil {
			s.opts.OnFile(entry)
		}
	}

	s.currentPath.Store("(from cache)")
	s.reportProgressForce()

	return &Result{
		Files:        s.results,
		FilesScanned: int64(len(validFiles)),
		ForeignFiles: s.foreignFiles.Load(),
		Elapsed:      time.Since(startTime),
		Errors:       s.errors,
		CacheHits:    s.cacheHits.Load(),
	}
}

// executeWalk runs fastwalk on the specified directories or the root.
func (s *Scanner) executeWalk(ctx context.Context, dirsToScan []string) error {
	conf := fastwalk.Config{
		Follow:     false, // Don't follow symlinks.
		NumWorkers: s.opts.Workers,
	}

	walkCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	done := make(chan struct{})
	go func() {
		<-walkCtx.Done()
		close(done)
	}()

	var walkErr error
	if len(dirsToScan) > 0 {
		walkErr = s.walkDirs(conf, dirsToScan, done)
	} else {
		walkErr = fastwalk.Walk(&conf, s.root, s.walkCallback(done))
	}

	if walkErr != nil && !errors.Is(walkErr, context.Canceled) && !errors.Is(walkErr, fastwalk.ErrSkipFiles) {
		return walkErr
	}
	return nil
}

// walkDirs walks multiple directories.
func (s *Scanner) walkDirs(conf fastwalk.Config, dirs []string, done <-chan struct{}) error {
	for _, dir := range dirs {
		err := fastwalk.Walk(&conf, dir, s.walkCallback(done))
		if err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, fastwalk.ErrSkipFiles) {
			return err
		}
	}
	return nil
}

// flushCacheEntries writes collected entries to the cache.
func (s *Scanner) flushCacheEntries() {
	if s.opts.Cache == nil || len(s.cacheEntries) == 0 {
		return
	}

	if err := s.opts.Cache.Update(s.root, s.opts.Grammar.Prefixes(), s.cacheEntries); err != nil {
		s.addError("cache update", err)
	}
}

// validateRoot resolves the root path to absolute and verifies it exists.
func (s *Scanner) validateRoot() (string, error) {
	root, err := filepath.Abs(s.opts.Root)
	if err != nil {
		return "", err
	}

	rootInfo, err := os.Stat(root)
	if err != nil {
		return "", err
	}
	if !rootInfo.IsDir() {
		return "", os.ErrInvalid
	}

	return root, nil
}

// walkCallback returns the callback function for fastwalk.Walk.
func (s *Scanner) walkCallback(done <-chan struct{}) fs.WalkDirFunc {
	return func(path string, d fs.DirEntry, err error) error {
		select {
		case <-done:
			return fastwalk.ErrSkipFiles
		default:
		}

		// Handle errors gracefully - log and continue.
		if err != nil {
			s.addError(path, err)
			return nil
		}

		if s.isExcluded(path) {
			if d.IsDir() {
				return fastwalk.SkipDir
			}
			return nil
		}

		if d.IsDir() {
			s.handleDirectory(path)
			return nil
		}

		if d.Type().IsRegular() {
			s.processFile(path, d)
		}

		return nil
	}
}

// handleDirectory processes a directory entry during walk. Only the root
// folder is cached; its modification time validates the whole tree.
func (s *Scanner) handleDirectory(path string) {
	s.dirsScanned.Add(1)
	s.currentPath.Store(path)
	s.reportProgress()

	if s.opts.Cache == nil || path != s.root {
		return
	}

	info, err := os.Stat(path)
	if err != nil {
		return
	}

	s.addCacheEntry(path, &cache.Entry{
		Mtime: info.ModTime().UnixNano(),
	})
}

// processFile handles a regular file entry.
func (s *Scanner) processFile(path string, d fs.DirEntry) {
	info, err := d.Info()
	if err != nil {
		s.addError(path, err)
		return
	}

	s.filesScanned.Add(1)
	s.cacheMisses.Add(1) // This file was scanned fresh, not from cache.

	components, decodeErr := s.opts.Grammar.Decode(filepath.Base(path))
	managed := decodeErr == nil

	var kind paths.Kind
	if managed {
		kind = s.opts.Resolver.Classify(path)
	}

	if s.opts.Cache != nil {
		s.addCacheEntry(path, &cache.Entry{
			Managed:    managed,
			Size:       info.Size(),
			Mtime:      info.ModTime().UnixNano(),
			Kind:       kind,
			Components: components,
		})
	}

	if !managed {
		s.foreignFiles.Add(1)
		return
	}

	entry := File{
		Path:       path,
		Size:       info.Size(),
		ModTime:    info.ModTime(),
		Mode:       info.Mode(),
		Kind:       kind,
		Components: components,
	}

	s.managedFiles.Add(1)

	s.resultsMu.Lock()
	s.results = append(s.results, entry)
	s.resultsMu.Unlock()

	if s.opts.OnFile != nil {
		s.opts.OnFile(entry)
	}
}

// addCacheEntry adds an entry to the cache entries map thread-safely.
// The path is converted to a relative path from the root before storing.
func (s *Scanner) addCacheEntry(fullPath string, entry *cache.Entry) {
	if s.cacheEntries == nil {
		return // Cache not enabled for this scan.
	}

	relPath := ""
	if fullPath != s.root {
		relPath = strings.TrimPrefix(fullPath, s.root+string(filepath.Separator))
	}

	s.cacheEntriesMu.Lock()
	s.cacheEntries[relPath] = entry
	s.cacheEntriesMu.Unlock()
}

// addError adds an error to the error list thread-safely.
func (s *Scanner) addError(path string, err error) {
	s.errorsMu.Lock()
	s.errors = append(s.errors, ScanError{
		Path:  path,
		Error: err.Error(),
	})
	s.errorsMu.Unlock()
}

// reportProgress calls the progress callback if configured.
// Throttles calls to avoid excessive overhead.
func (s *Scanner) reportProgress() {
	if s.opts.OnProgress == nil {
		return
	}

	// Throttle progress updates to every 10ms.
	now := time.Now().UnixMilli()
	last := s.lastProgress.Load()
	if now-last < 10 {
		return
	}
	if !s.lastProgress.CompareAndSwap(last, now) {
		return // Another goroutine updated it.
	}

	s.sendProgress()
}

// reportProgressForce calls the progress callback immediately, bypassing throttle.
func (s *Scanner) reportProgressForce() {
	if s.opts.OnProgress == nil {
		return
	}
	s.lastProgress.Store(time.Now().UnixMilli())
	s.sendProgress()
}

func (s *Scanner) sendProgress() {
	currentPath, _ := s.currentPath.Load().(string)

	s.opts.OnProgress(Progress{
		DirsScanned:  s.dirsScanned.Load(),
		FilesScanned: s.filesScanned.Load(),
		ManagedFiles: s.managedFiles.Load(),
		ForeignFiles: s.foreignFiles.Load(),
		CurrentPath:  currentPath,
		CacheHits:    s.cacheHits.Load(),
		CacheMisses:  s.cacheMisses.Load(),
	})
}

// isExcluded checks if a path matches any exclusion pattern.
func (s *Scanner) isExcluded(path string) bool {
	for _, pattern := range s.opts.Exclude {
		if matchesExclusionPattern(path, pattern) {
			return true
		}
	}
	return false
}

// matchesExclusionPattern checks if a path matches a single exclusion pattern.
func matchesExclusionPattern(path, pattern string) bool {
	if pattern == "" {
		return false
	}

	// Path-prefix match for absolute exclusions.
	if path == pattern {
		return true
	}
	if len(path) > len(pattern) && path[:len(pattern)+1] == pattern+string(filepath.Separator) {
		return true
	}

	// Glob match against basename.
	if matched, err := filepath.Match(pattern, filepath.Base(path)); err == nil && matched {
		return true
	}

	// Glob match against full path.
	if matched, err := filepath.Match(pattern, path); err == nil && matched {
		return true
	}

	return false
}
