package scanner

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/jamesainslie/slate/pkg/slate/cache"
	"github.com/jamesainslie/slate/pkg/slate/naming"
	"github.com/jamesainslie/slate/pkg/slate/paths"
)

func testGrammar() *naming.Grammar {
	return naming.NewGrammar([]string{"v", "pub", "NO", "TODO", "WIP", "OK"})
}

func testResolver() *paths.Resolver {
	return paths.NewResolver(paths.DefaultNames())
}

// buildProject lays out a small project tree and returns its root.
func buildProject(t *testing.T) string {
	t.Helper()
	root := t.TempDir()

	files := []string{
		"FPE_A_TRI/MOD/FPE_A_TRI_MOD.blend",
		"FPE_A_TRI/MOD/_versions/FPE_A_TRI_MOD_v001.blend",
		"FPE_A_TRI/MOD/_versions/FPE_A_TRI_MOD_v002.blend",
		"FPE_A_TRI/MOD/_published/FPE_A_TRI_MOD.blend",
		"FPE_S_010/ANIM/FPE_S_010_ANIM_blocking.ma",
		"FPE_A_TRI/MOD/notes.txt",
		"README.md",
	}
	for _, f := range files {
		path := filepath.Join(root, filepath.FromSlash(f))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
		if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
			t.Fatalf("write: %v", err)
		}
	}
	return root
}

func TestScanner_Scan(t *testing.T) {
	t.Parallel()
	root := buildProject(t)

	s := New(Options{
		Root:     root,
		Grammar:  testGrammar(),
		Resolver: testResolver(),
	})

	result, err := s.Scan(context.Background())
	if err != nil {
		t.Fatalf("Scan() error = %v", err)
	}

	if len(result.Files) != 5 {
		t.Errorf("managed files = %d, want 5", len(result.Files))
	}
	if result.ForeignFiles != 2 {
		t.Errorf("ForeignFiles = %d, want 2", result.ForeignFiles)
	}
	if result.FilesScanned != 7 {
		t.Errorf("FilesScanned = %d, want 7", result.FilesScanned)
	}

	kinds := map[paths.Kind]int{}
	for _, f := range result.Files {
		kinds[f.Kind]++
	}
	if kinds[paths.KindVersions] != 2 || kinds[paths.KindPublish] != 1 || kinds[paths.KindNone] != 2 {
		t.Errorf("kind counts = %v", kinds)
	}
}

func TestScanner_Lineages(t *testing.T) {
	t.Parallel()
	root := buildProject(t)

	s := New(Options{
		Root:     root,
		Grammar:  testGrammar(),
		Resolver: testResolver(),
	})

	result, err := s.Scan(context.Background())
	if err != nil {
		t.Fatalf("Scan() error = %v", err)
	}

	lineages := result.Lineages()
	if len(lineages) != 2 {
		t.Fatalf("lineages = %d, want 2", len(lineages))
	}

	key := naming.Components{
		Project:   "FPE",
		Type:      naming.ItemAsset,
		Object:    "TRI",
		Step:      "MOD",
		Version:   naming.NoVersion,
		Extension: "blend",
	}
	// Working file, two versions and the published copy share one lineage.
	if got := len(lineages[key]); got != 4 {
		t.Errorf("asset lineage size = %d, want 4", got)
	}
}

func TestScanner_Exclude(t *testing.T) {
	t.Parallel()
	root := buildProject(t)

	s := New(Options{
		Root:     root,
		Grammar:  testGrammar(),
		Resolver: testResolver(),
		Exclude:  []string{"_published"},
	})

	result, err := s.Scan(context.Background())
	if err != nil {
		t.Fatalf("Scan() error = %v", err)
	}

	for _, f := range result.Files {
		if f.Kind == paths.KindPublish {
			t.Errorf("excluded folder leaked file %q", f.Path)
		}
	}
}

func TestScanner_OnFile(t *testing.T) {
	t.Parallel()
	root := buildProject(t)

	var streamed int
	s := New(Options{
		Root:     root,
		Grammar:  testGrammar(),
		Resolver: testResolver(),
		OnFile:   func(File) { streamed++ },
	})

	result, err := s.Scan(context.Background())
	if err != nil {
		t.Fatalf("Scan() error = %v", err)
	}
	if streamed != len(result.Files) {
		t.Errorf("OnFile calls = %d, want %d", streamed, len(result.Files))
	}
}

func TestScanner_MissingRoot(t *testing.T) {
	t.Parallel()

	s := New(Options{
		Root:     filepath.Join(t.TempDir(), "absent"),
		Grammar:  testGrammar(),
		Resolver: testResolver(),
	})
	if _, err := s.Scan(context.Background()); err == nil {
		t.Error("Scan() should fail for a missing root")
	}
}

func TestScanner_CacheRoundTrip(t *testing.T) {
	t.Parallel()
	root := buildProject(t)

	c, err := cache.Open(filepath.Join(t.TempDir(), "cache.db"))
	if err != nil {
		t.Fatalf("cache.Open() error = %v", err)
	}
	defer c.Close()

	first := New(Options{
		Root:     root,
		Grammar:  testGrammar(),
		Resolver: testResolver(),
		Cache:    c,
	})
	firstResult, err := first.Scan(context.Background())
	if err != nil {
		t.Fatalf("first Scan() error = %v", err)
	}
	if firstResult.CacheHits != 0 {
		t.Errorf("first scan CacheHits = %d, want 0", firstResult.CacheHits)
	}

	second := New(Options{
		Root:     root,
		Grammar:  testGrammar(),
		Resolver: testResolver(),
		Cache:    c,
	})
	secondResult, err := second.Scan(context.Background())
	if err != nil {
		t.Fatalf("second Scan() error = %v", err)
	}
	if secondResult.CacheHits == 0 {
		t.Error("second scan should be served from cache")
	}
	if len(secondResult.Files) != len(firstResult.Files) {
		t.Errorf("cached scan files = %d, want %d", len(secondResult.Files), len(firstResult.Files))
	}
	if secondResult.ForeignFiles != firstResult.ForeignFiles {
		t.Errorf("cached scan foreign = %d, want %d", secondResult.ForeignFiles, firstResult.ForeignFiles)
	}

	// A cache hit serves the decoded components and reserved-folder kind
	// recorded at scan time, identical to a fresh walk.
	fresh := map[string]File{}
	for _, f := range firstResult.Files {
		fresh[f.Path] = f
	}
	for _, f := range secondResult.Files {
		want, ok := fresh[f.Path]
		if !ok {
			t.Errorf("cached scan invented file %q", f.Path)
			continue
		}
		if f.Components != want.Components || f.Kind != want.Kind {
			t.Errorf("cached file %q = %+v/%v, want %+v/%v",
				f.Path, f.Components, f.Kind, want.Components, want.Kind)
		}
	}
}

func TestScanner_CacheInvalidatedByGrammarChange(t *testing.T) {
	t.Parallel()
	root := buildProject(t)

	c, err := cache.Open(filepath.Join(t.TempDir(), "cache.db"))
	if err != nil {
		t.Fatalf("cache.Open() error = %v", err)
	}
	defer c.Close()

	first := New(Options{
		Root:     root,
		Grammar:  testGrammar(),
		Resolver: testResolver(),
		Cache:    c,
	})
	if _, err := first.Scan(context.Background()); err != nil {
		t.Fatalf("first Scan() error = %v", err)
	}

	// The cached components were decoded under the first grammar; a scan
	// with different state prefixes must walk the tree again.
	second := New(Options{
		Root:     root,
		Grammar:  naming.NewGrammar([]string{"v", "pub", "final"}),
		Resolver: testResolver(),
		Cache:    c,
	})
	result, err := second.Scan(context.Background())
	if err != nil {
		t.Fatalf("second Scan() error = %v", err)
	}
	if result.CacheHits != 0 {
		t.Errorf("CacheHits = %d, want 0 after a grammar change", result.CacheHits)
	}
}
