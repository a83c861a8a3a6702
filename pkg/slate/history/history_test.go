package history

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jamesainslie/slate/pkg/slate/naming"
	"github.com/jamesainslie/slate/pkg/slate/paths"
)

func testHistory() *History {
	grammar := naming.NewGrammar([]string{"v", "pub", "NO", "TODO", "WIP", "OK"})
	return New(grammar, paths.NewResolver(paths.DefaultNames()))
}

// writeFile creates a file with the given content, making parent folders
// as needed.
func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %q: %v", path, err)
	}
}

func setModTime(t *testing.T, path string, mtime time.Time) {
	t.Helper()
	if err := os.Chtimes(path, mtime, mtime); err != nil {
		t.Fatalf("chtimes %q: %v", path, err)
	}
}

func TestHistory_Commit(t *testing.T) {
	t.Parallel()
	h := testHistory()

	t.Run("first commit is version 1 regardless of increment", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		work := filepath.Join(dir, "FPE_A_TRI_MOD.blend")
		writeFile(t, work, "mesh")

		entry, err := h.Commit(work, false, "")
		if err != nil {
			t.Fatalf("Commit() error = %v", err)
		}
		want := filepath.Join(dir, "_versions", "FPE_A_TRI_MOD_v001.blend")
		if entry.Path != want {
			t.Errorf("Commit() path = %q, want %q", entry.Path, want)
		}
		if entry.Components.Version != 1 || entry.Components.State != "v" {
			t.Errorf("Commit() components = %+v", entry.Components)
		}
		data, err := os.ReadFile(want)
		if err != nil || string(data) != "mesh" {
			t.Errorf("version content = %q, err = %v", data, err)
		}
	})

	t.Run("increment continues past the highest version", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		work := filepath.Join(dir, "FPE_A_TRI_MOD.blend")
		writeFile(t, work, "new")
		writeFile(t, filepath.Join(dir, "_versions", "FPE_A_TRI_MOD_WIP009.blend"), "old")

		entry, err := h.Commit(work, true, "")
		if err != nil {
			t.Fatalf("Commit() error = %v", err)
		}
		if entry.Components.Version != 10 {
			t.Errorf("version = %d, want 10", entry.Components.Version)
		}
		// The discovered state carries over when none is given.
		if entry.Components.State != "WIP" {
			t.Errorf("state = %q, want WIP", entry.Components.State)
		}
	})

	t.Run("without increment the highest version is overwritten", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		work := filepath.Join(dir, "FPE_A_TRI_MOD.blend")
		writeFile(t, work, "second save")
		writeFile(t, filepath.Join(dir, "_versions", "FPE_A_TRI_MOD_v003.blend"), "first save")

		entry, err := h.Commit(work, false, "")
		if err != nil {
			t.Fatalf("Commit() error = %v", err)
		}
		if entry.Components.Version != 3 {
			t.Errorf("version = %d, want 3", entry.Components.Version)
		}
		data, _ := os.ReadFile(entry.Path)
		if string(data) != "second save" {
			t.Errorf("version content = %q", data)
		}
	})

	t.Run("an explicit state numbers its own series", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		work := filepath.Join(dir, "FPE_A_TRI_MOD.blend")
		writeFile(t, work, "x")
		writeFile(t, filepath.Join(dir, "_versions", "FPE_A_TRI_MOD_WIP009.blend"), "x")

		// No OK versions exist yet, so the OK series starts at 1 no
		// matter how far the WIP series has gone.
		entry, err := h.Commit(work, true, "OK")
		if err != nil {
			t.Fatalf("Commit() error = %v", err)
		}
		if entry.Components.State != "OK" || entry.Components.Version != 1 {
			t.Errorf("Commit() components = %+v, want OK version 1", entry.Components)
		}
	})

	t.Run("an explicit state continues from its own latest", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		work := filepath.Join(dir, "FPE_A_TRI_MOD.blend")
		writeFile(t, work, "x")
		writeFile(t, filepath.Join(dir, "_versions", "FPE_A_TRI_MOD_WIP009.blend"), "x")
		writeFile(t, filepath.Join(dir, "_versions", "FPE_A_TRI_MOD_OK004.blend"), "x")

		entry, err := h.Commit(work, true, "OK")
		if err != nil {
			t.Fatalf("Commit() error = %v", err)
		}
		if entry.Components.State != "OK" || entry.Components.Version != 5 {
			t.Errorf("Commit() components = %+v, want OK version 5", entry.Components)
		}
	})

	t.Run("other lineages in the folder are ignored", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		work := filepath.Join(dir, "FPE_A_TRI_MOD.blend")
		writeFile(t, work, "x")
		writeFile(t, filepath.Join(dir, "_versions", "FPE_A_TRI_MOD_proxy_v007.blend"), "x")
		writeFile(t, filepath.Join(dir, "_versions", "FPE_A_TRI_RIG_v008.blend"), "x")

		entry, err := h.Commit(work, true, "")
		if err != nil {
			t.Fatalf("Commit() error = %v", err)
		}
		if entry.Components.Version != 1 {
			t.Errorf("version = %d, want 1", entry.Components.Version)
		}
	})

	t.Run("missing file", func(t *testing.T) {
		t.Parallel()
		_, err := h.Commit(filepath.Join(t.TempDir(), "FPE_A_TRI_MOD.blend"), true, "")
		if !errors.Is(err, ErrMissingFile) {
			t.Errorf("Commit() error = %v, want ErrMissingFile", err)
		}
	})

	t.Run("unmanaged name", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(t.TempDir(), "notes.txt")
		writeFile(t, path, "x")
		_, err := h.Commit(path, true, "")
		if !errors.Is(err, ErrMalformedName) {
			t.Errorf("Commit() error = %v, want ErrMalformedName", err)
		}
	})
}

func TestHistory_LatestAndList(t *testing.T) {
	t.Parallel()
	h := testHistory()

	t.Run("versions sort numerically", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		work := filepath.Join(dir, "FPE_A_TRI_MOD.blend")
		writeFile(t, work, "x")
		for _, name := range []string{
			"FPE_A_TRI_MOD_v010.blend",
			"FPE_A_TRI_MOD_v002.blend",
			"FPE_A_TRI_MOD_v009.blend",
		} {
			writeFile(t, filepath.Join(dir, "_versions", name), "x")
		}

		entries, err := h.List(work, "")
		if err != nil {
			t.Fatalf("List() error = %v", err)
		}
		var got []int
		for _, e := range entries {
			got = append(got, e.Components.Version)
		}
		want := []int{2, 9, 10}
		for i := range want {
			if i >= len(got) || got[i] != want[i] {
				t.Fatalf("List() versions = %v, want %v", got, want)
			}
		}

		latest, found, err := h.Latest(work, "")
		if err != nil || !found {
			t.Fatalf("Latest() = found %v, err %v", found, err)
		}
		if latest.Components.Version != 10 {
			t.Errorf("Latest() version = %d, want 10", latest.Components.Version)
		}
	})

	t.Run("modification time breaks version ties", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		work := filepath.Join(dir, "FPE_A_TRI_MOD.blend")
		writeFile(t, work, "x")

		older := filepath.Join(dir, "_versions", "FPE_A_TRI_MOD_v005.blend")
		newer := filepath.Join(dir, "_versions", "FPE_A_TRI_MOD_WIP005.blend")
		writeFile(t, older, "x")
		writeFile(t, newer, "x")
		setModTime(t, older, time.Now().Add(-time.Hour))

		latest, found, err := h.Latest(work, "")
		if err != nil || !found {
			t.Fatalf("Latest() = found %v, err %v", found, err)
		}
		if latest.Path != newer {
			t.Errorf("Latest() path = %q, want the newer file", latest.Path)
		}
	})

	t.Run("state filter", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		work := filepath.Join(dir, "FPE_A_TRI_MOD.blend")
		writeFile(t, work, "x")
		writeFile(t, filepath.Join(dir, "_versions", "FPE_A_TRI_MOD_WIP003.blend"), "x")
		writeFile(t, filepath.Join(dir, "_versions", "FPE_A_TRI_MOD_OK002.blend"), "x")

		latest, found, err := h.Latest(work, "ok")
		if err != nil || !found {
			t.Fatalf("Latest() = found %v, err %v", found, err)
		}
		if latest.Components.Version != 2 || latest.Components.State != "OK" {
			t.Errorf("Latest() components = %+v", latest.Components)
		}
	})

	t.Run("missing versions folder is empty not an error", func(t *testing.T) {
		t.Parallel()
		work := filepath.Join(t.TempDir(), "FPE_A_TRI_MOD.blend")

		entries, err := h.List(work, "")
		if err != nil {
			t.Fatalf("List() error = %v", err)
		}
		if len(entries) != 0 {
			t.Errorf("List() = %v, want empty", entries)
		}
		if _, found, err := h.Latest(work, ""); found || err != nil {
			t.Errorf("Latest() = found %v, err %v", found, err)
		}
	})

	t.Run("a version file is its own lineage sibling", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		version := filepath.Join(dir, "_versions", "FPE_A_TRI_MOD_v004.blend")
		writeFile(t, version, "x")

		latest, found, err := h.Latest(version, "")
		if err != nil || !found {
			t.Fatalf("Latest() = found %v, err %v", found, err)
		}
		if latest.Components.Version != 4 {
			t.Errorf("Latest() version = %d, want 4", latest.Components.Version)
		}
	})
}

func TestHistory_Previous(t *testing.T) {
	t.Parallel()
	h := testHistory()

	dir := t.TempDir()
	work := filepath.Join(dir, "FPE_A_TRI_MOD.blend")
	writeFile(t, work, "x")

	t.Run("no versions", func(t *testing.T) {
		if _, found, err := h.Previous(work, ""); found || err != nil {
			t.Errorf("Previous() = found %v, err %v", found, err)
		}
	})

	writeFile(t, filepath.Join(dir, "_versions", "FPE_A_TRI_MOD_v001.blend"), "x")

	t.Run("a single version has no previous", func(t *testing.T) {
		if _, found, err := h.Previous(work, ""); found || err != nil {
			t.Errorf("Previous() = found %v, err %v", found, err)
		}
	})

	writeFile(t, filepath.Join(dir, "_versions", "FPE_A_TRI_MOD_v002.blend"), "x")
	writeFile(t, filepath.Join(dir, "_versions", "FPE_A_TRI_MOD_WIP002.blend"), "x")
	writeFile(t, filepath.Join(dir, "_versions", "FPE_A_TRI_MOD_v003.blend"), "x")

	t.Run("previous skips same-number duplicates", func(t *testing.T) {
		prev, found, err := h.Previous(work, "")
		if err != nil || !found {
			t.Fatalf("Previous() = found %v, err %v", found, err)
		}
		if prev.Components.Version != 2 {
			t.Errorf("Previous() version = %d, want 2", prev.Components.Version)
		}
	})
}

func TestHistory_Restore(t *testing.T) {
	t.Parallel()
	h := testHistory()

	t.Run("restores next to the working file", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		version := filepath.Join(dir, "_versions", "FPE_A_TRI_MOD_v003.blend")
		writeFile(t, version, "old mesh")

		restored, err := h.Restore(version)
		if err != nil {
			t.Fatalf("Restore() error = %v", err)
		}
		want := filepath.Join(dir, "FPE_A_TRI_MOD_+restored-v3+.blend")
		if restored != want {
			t.Errorf("Restore() = %q, want %q", restored, want)
		}
		data, err := os.ReadFile(restored)
		if err != nil || string(data) != "old mesh" {
			t.Errorf("restored content = %q, err = %v", data, err)
		}
	})

	t.Run("keeps the resource", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		version := filepath.Join(dir, "_versions", "FPE_S_010_ANIM_blocking_WIP012.ma")
		writeFile(t, version, "x")

		restored, err := h.Restore(version)
		if err != nil {
			t.Fatalf("Restore() error = %v", err)
		}
		if want := filepath.Join(dir, "FPE_S_010_ANIM_blocking+restored-v12+.ma"); restored != want {
			t.Errorf("Restore() = %q, want %q", restored, want)
		}
	})

	t.Run("rejects files outside the versions folder", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(t.TempDir(), "FPE_A_TRI_MOD_v003.blend")
		writeFile(t, path, "x")
		if _, err := h.Restore(path); !errors.Is(err, ErrNotAVersion) {
			t.Errorf("Restore() error = %v, want ErrNotAVersion", err)
		}
	})

	t.Run("rejects versionless files", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		path := filepath.Join(dir, "_versions", "FPE_A_TRI_MOD.blend")
		writeFile(t, path, "x")
		if _, err := h.Restore(path); !errors.Is(err, ErrNotAVersion) {
			t.Errorf("Restore() error = %v, want ErrNotAVersion", err)
		}
	})
}

func TestHistory_Promote(t *testing.T) {
	t.Parallel()
	h := testHistory()

	t.Run("publish drops the version block", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		version := filepath.Join(dir, "_versions", "FPE_A_TRI_MOD_v003.blend")
		writeFile(t, version, "approved")

		published, err := h.Publish(version)
		if err != nil {
			t.Fatalf("Publish() error = %v", err)
		}
		want := filepath.Join(dir, "_published", "FPE_A_TRI_MOD.blend")
		if published != want {
			t.Errorf("Publish() = %q, want %q", published, want)
		}
	})

	t.Run("preview of a working file", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		work := filepath.Join(dir, "FPE_A_TRI_MOD.blend")
		writeFile(t, work, "x")

		preview, err := h.Preview(work)
		if err != nil {
			t.Fatalf("Preview() error = %v", err)
		}
		if want := filepath.Join(dir, "_preview", "FPE_A_TRI_MOD.blend"); preview != want {
			t.Errorf("Preview() = %q, want %q", preview, want)
		}
	})
}
