package watcher

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jamesainslie/slate/pkg/slate/naming"
	"github.com/jamesainslie/slate/pkg/slate/paths"
)

func newTestWatcher(t *testing.T) *Watcher {
	t.Helper()
	grammar := naming.NewGrammar([]string{"v", "pub", "WIP", "OK"})
	w, err := New(grammar, paths.NewResolver(paths.DefaultNames()))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	w.SetDebounce(50 * time.Millisecond)
	t.Cleanup(func() {
		if err := w.Close(); err != nil {
			t.Errorf("Close() error = %v", err)
		}
	})
	return w
}

// waitFor receives one path from ch or fails after a generous timeout.
func waitFor(t *testing.T, ch <-chan string) string {
	t.Helper()
	select {
	case path := <-ch:
		return path
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for a change notification")
		return ""
	}
}

func TestWatcher_ReportsManagedChanges(t *testing.T) {
	dir := t.TempDir()
	w := newTestWatcher(t)

	if err := w.Watch(dir); err != nil {
		t.Fatalf("Watch() error = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changes := make(chan string, 16)
	go w.Run(ctx, func(path string) { changes <- path })

	managed := filepath.Join(dir, "FPE_A_TRI_MOD.blend")
	if err := os.WriteFile(managed, []byte("mesh"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	if got := waitFor(t, changes); got != managed {
		t.Errorf("change path = %q, want %q", got, managed)
	}
}

func TestWatcher_IgnoresForeignFiles(t *testing.T) {
	dir := t.TempDir()
	w := newTestWatcher(t)

	if err := w.Watch(dir); err != nil {
		t.Fatalf("Watch() error = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changes := make(chan string, 16)
	go w.Run(ctx, func(path string) { changes <- path })

	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	managed := filepath.Join(dir, "FPE_A_TRI_MOD.blend")
	if err := os.WriteFile(managed, []byte("mesh"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	// The managed file must arrive; the foreign file must never show up.
	if got := waitFor(t, changes); got != managed {
		t.Errorf("change path = %q, want %q", got, managed)
	}
	select {
	case extra := <-changes:
		t.Errorf("unexpected change for %q", extra)
	case <-time.After(200 * time.Millisecond):
	}
}

func TestWatcher_DebouncesSaveStorms(t *testing.T) {
	dir := t.TempDir()
	w := newTestWatcher(t)

	if err := w.Watch(dir); err != nil {
		t.Fatalf("Watch() error = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changes := make(chan string, 16)
	go w.Run(ctx, func(path string) { changes <- path })

	managed := filepath.Join(dir, "FPE_A_TRI_MOD.blend")
	for i := 0; i < 5; i++ {
		if err := os.WriteFile(managed, []byte("save"), 0o644); err != nil {
			t.Fatalf("write: %v", err)
		}
		time.Sleep(5 * time.Millisecond)
	}

	waitFor(t, changes)
	select {
	case <-changes:
		t.Error("save storm produced more than one notification")
	case <-time.After(300 * time.Millisecond):
	}
}

func TestWatcher_UnwatchStopsNotifications(t *testing.T) {
	dir := t.TempDir()
	w := newTestWatcher(t)

	if err := w.Watch(dir); err != nil {
		t.Fatalf("Watch() error = %v", err)
	}
	w.Unwatch(dir)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changes := make(chan string, 16)
	go w.Run(ctx, func(path string) { changes <- path })

	if err := os.WriteFile(filepath.Join(dir, "FPE_A_TRI_MOD.blend"), []byte("x"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	select {
	case path := <-changes:
		t.Errorf("unwatched folder still reported %q", path)
	case <-time.After(300 * time.Millisecond):
	}
}
