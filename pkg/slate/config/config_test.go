package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_Defaults(t *testing.T) {
	// Use a temp directory that doesn't have a config file
	tempDir := t.TempDir()
	t.Setenv("HOME", tempDir)
	t.Setenv("XDG_CONFIG_HOME", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Folders.Versions != DefaultVersionsFolder {
		t.Errorf("Folders.Versions = %q, want %q", cfg.Folders.Versions, DefaultVersionsFolder)
	}

	if cfg.Folders.Preview != DefaultPreviewFolder {
		t.Errorf("Folders.Preview = %q, want %q", cfg.Folders.Preview, DefaultPreviewFolder)
	}

	if cfg.Folders.Publish != DefaultPublishFolder {
		t.Errorf("Folders.Publish = %q, want %q", cfg.Folders.Publish, DefaultPublishFolder)
	}

	if len(cfg.States) != len(DefaultStates) {
		t.Errorf("len(States) = %d, want %d", len(cfg.States), len(DefaultStates))
	}

	if cfg.Scan.Workers != DefaultScanWorkers {
		t.Errorf("Scan.Workers = %d, want %d", cfg.Scan.Workers, DefaultScanWorkers)
	}

	if !cfg.Cache.Enabled {
		t.Error("Cache.Enabled = false, want true")
	}

	if !cfg.Journal.Enabled {
		t.Error("Journal.Enabled = false, want true")
	}

	if cfg.Journal.RetentionDays != DefaultRetentionDays {
		t.Errorf("Journal.RetentionDays = %d, want %d", cfg.Journal.RetentionDays, DefaultRetentionDays)
	}

	if cfg.Daemon.Host != DefaultDaemonHost {
		t.Errorf("Daemon.Host = %q, want %q", cfg.Daemon.Host, DefaultDaemonHost)
	}

	if cfg.Daemon.Port != DefaultDaemonPort {
		t.Errorf("Daemon.Port = %d, want %d", cfg.Daemon.Port, DefaultDaemonPort)
	}

	if !cfg.Daemon.AutoConnect {
		t.Error("Daemon.AutoConnect = false, want true")
	}
}

func TestLoad_FromFile(t *testing.T) {
	tempDir := t.TempDir()
	configDir := filepath.Join(tempDir, ".config", "slate")
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		t.Fatalf("failed to create config dir: %v", err)
	}

	configContent := `
folders:
  versions: .versions
  publish: _final
states:
  - short_name: RVW
    name: In review
    completion: 0.8
    color: "#ccaa00"
scan:
  workers: 2
journal:
  enabled: false
  retention_days: 7
daemon:
  port: 28185
  auto_connect: false
`
	configPath := filepath.Join(configDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte(configContent), 0o644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	t.Setenv("HOME", tempDir)
	t.Setenv("XDG_CONFIG_HOME", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Folders.Versions != ".versions" {
		t.Errorf("Folders.Versions = %q, want %q", cfg.Folders.Versions, ".versions")
	}

	// Unset folder keys keep their defaults
	if cfg.Folders.Preview != DefaultPreviewFolder {
		t.Errorf("Folders.Preview = %q, want %q", cfg.Folders.Preview, DefaultPreviewFolder)
	}

	if cfg.Folders.Publish != "_final" {
		t.Errorf("Folders.Publish = %q, want %q", cfg.Folders.Publish, "_final")
	}

	// Configured states replace the built-in set entirely
	if len(cfg.States) != 1 || cfg.States[0].ShortName != "RVW" {
		t.Errorf("States = %+v, want the single configured RVW state", cfg.States)
	}

	if cfg.Scan.Workers != 2 {
		t.Errorf("Scan.Workers = %d, want 2", cfg.Scan.Workers)
	}

	if cfg.Journal.Enabled {
		t.Error("Journal.Enabled = true, want false")
	}

	if cfg.Journal.RetentionDays != 7 {
		t.Errorf("Journal.RetentionDays = %d, want 7", cfg.Journal.RetentionDays)
	}

	if cfg.Daemon.Port != 28185 {
		t.Errorf("Daemon.Port = %d, want 28185", cfg.Daemon.Port)
	}

	if cfg.Daemon.AutoConnect {
		t.Error("Daemon.AutoConnect = true, want false")
	}
}

func TestLoad_XDGConfigHome(t *testing.T) {
	tempDir := t.TempDir()
	xdgConfigDir := filepath.Join(tempDir, "xdg-config", "slate")
	if err := os.MkdirAll(xdgConfigDir, 0o755); err != nil {
		t.Fatalf("failed to create XDG config dir: %v", err)
	}

	configContent := `
scan:
  workers: 16
`
	configPath := filepath.Join(xdgConfigDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte(configContent), 0o644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	t.Setenv("HOME", tempDir)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(tempDir, "xdg-config"))

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Scan.Workers != 16 {
		t.Errorf("Scan.Workers = %d, want 16", cfg.Scan.Workers)
	}
}

func TestLoad_EnvOverride(t *testing.T) {
	tempDir := t.TempDir()
	t.Setenv("HOME", tempDir)
	t.Setenv("XDG_CONFIG_HOME", "")
	t.Setenv("SLATE_DAEMON_PORT", "19000")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Daemon.Port != 19000 {
		t.Errorf("Daemon.Port = %d, want 19000", cfg.Daemon.Port)
	}
}

func TestPrefixTokens(t *testing.T) {
	cfg := &Config{States: DefaultStates}

	tokens := cfg.PrefixTokens()
	want := []string{"v", "pub", "NO", "TODO", "WIP", "OK"}
	if len(tokens) != len(want) {
		t.Fatalf("PrefixTokens() = %v, want %v", tokens, want)
	}
	for i := range want {
		if tokens[i] != want[i] {
			t.Errorf("PrefixTokens()[%d] = %q, want %q", i, tokens[i], want[i])
		}
	}
}

func TestStateByShortName(t *testing.T) {
	cfg := &Config{States: DefaultStates}

	if s, ok := cfg.StateByShortName("wip"); !ok || s.ShortName != "WIP" {
		t.Errorf("StateByShortName(wip) = %+v, %v", s, ok)
	}

	if _, ok := cfg.StateByShortName("XX"); ok {
		t.Error("StateByShortName(XX) should not match")
	}
}

func TestConfigDir(t *testing.T) {
	t.Run("uses XDG_CONFIG_HOME when set", func(t *testing.T) {
		t.Setenv("XDG_CONFIG_HOME", "/custom/config")

		dir, err := ConfigDir()
		if err != nil {
			t.Fatalf("ConfigDir() error = %v", err)
		}

		expected := "/custom/config/slate"
		if dir != expected {
			t.Errorf("ConfigDir() = %q, want %q", dir, expected)
		}
	})

	t.Run("uses HOME/.config when XDG_CONFIG_HOME not set", func(t *testing.T) {
		tempDir := t.TempDir()
		t.Setenv("HOME", tempDir)
		t.Setenv("XDG_CONFIG_HOME", "")

		dir, err := ConfigDir()
		if err != nil {
			t.Fatalf("ConfigDir() error = %v", err)
		}

		expected := filepath.Join(tempDir, ".config", "slate")
		if dir != expected {
			t.Errorf("ConfigDir() = %q, want %q", dir, expected)
		}
	})
}

func TestWriteDefault(t *testing.T) {
	t.Run("creates default config file", func(t *testing.T) {
		tempDir := t.TempDir()
		t.Setenv("HOME", tempDir)
		t.Setenv("XDG_CONFIG_HOME", "")

		if err := WriteDefault(); err != nil {
			t.Fatalf("WriteDefault() error = %v", err)
		}

		configPath := filepath.Join(tempDir, ".config", "slate", "config.yaml")
		if _, err := os.Stat(configPath); err != nil {
			t.Fatalf("config file not created: %v", err)
		}

		// The written file must round-trip through Load
		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load() after WriteDefault() error = %v", err)
		}
		if cfg.Folders.Versions != DefaultVersionsFolder {
			t.Errorf("Folders.Versions = %q, want %q", cfg.Folders.Versions, DefaultVersionsFolder)
		}
		if len(cfg.States) != len(DefaultStates) {
			t.Errorf("len(States) = %d, want %d", len(cfg.States), len(DefaultStates))
		}
	})

	t.Run("does not overwrite existing config", func(t *testing.T) {
		tempDir := t.TempDir()
		t.Setenv("HOME", tempDir)
		t.Setenv("XDG_CONFIG_HOME", "")

		configDir := filepath.Join(tempDir, ".config", "slate")
		if err := os.MkdirAll(configDir, 0o755); err != nil {
			t.Fatalf("failed to create config dir: %v", err)
		}

		configPath := filepath.Join(configDir, "config.yaml")
		existingContent := "# existing config\ndaemon:\n  port: 12345\n"
		if err := os.WriteFile(configPath, []byte(existingContent), 0o644); err != nil {
			t.Fatalf("failed to write existing config: %v", err)
		}

		if err := WriteDefault(); err != nil {
			t.Fatalf("WriteDefault() error = %v", err)
		}

		content, err := os.ReadFile(configPath)
		if err != nil {
			t.Fatalf("failed to read config file: %v", err)
		}

		if string(content) != existingContent {
			t.Errorf("config file was overwritten: got %q, want %q", string(content), existingContent)
		}
	})
}

func TestExpandPath(t *testing.T) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		t.Fatalf("failed to get home dir: %v", err)
	}

	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{
			name:  "expands tilde",
			input: "~/projects/fpe",
			want:  filepath.Join(homeDir, "projects/fpe"),
		},
		{
			name:  "leaves absolute path unchanged",
			input: "/srv/projects",
			want:  "/srv/projects",
		},
		{
			name:  "leaves relative path unchanged",
			input: "projects/fpe",
			want:  "projects/fpe",
		},
		{
			name:  "handles tilde only",
			input: "~",
			want:  homeDir,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExpandPath(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ExpandPath(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
				return
			}
			if got != tt.want {
				t.Errorf("ExpandPath(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestStateDir(t *testing.T) {
	// StateDir should return a path ending in /slate under the xdg state home
	dir := StateDir()
	if !filepath.IsAbs(dir) {
		t.Errorf("StateDir() = %q, want absolute path", dir)
	}
	if filepath.Base(dir) != "slate" {
		t.Errorf("StateDir() = %q, want path ending in 'slate'", dir)
	}
}

func TestDefaultCachePath(t *testing.T) {
	path := DefaultCachePath()
	if !filepath.IsAbs(path) {
		t.Errorf("DefaultCachePath() = %q, want absolute path", path)
	}
	if filepath.Base(path) != "cache.db" {
		t.Errorf("DefaultCachePath() = %q, want path ending in 'cache.db'", path)
	}
	// Should be under CacheDir
	if filepath.Dir(path) != CacheDir() {
		t.Errorf("DefaultCachePath() dir = %q, want %q", filepath.Dir(path), CacheDir())
	}
}

func TestDefaultLogPath(t *testing.T) {
	path := DefaultLogPath()
	if filepath.Base(path) != "slate.log" {
		t.Errorf("DefaultLogPath() = %q, want path ending in 'slate.log'", path)
	}
	if filepath.Dir(path) != StateDir() {
		t.Errorf("DefaultLogPath() dir = %q, want %q", filepath.Dir(path), StateDir())
	}
}
