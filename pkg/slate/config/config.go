package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/spf13/viper"
)

// StateConfig describes one workflow state. Its short name becomes a
// recognized version prefix in file names.
type StateConfig struct {
	ShortName  string  `mapstructure:"short_name"`
	Name       string  `mapstructure:"name"`
	Completion float64 `mapstructure:"completion"`
	Color      string  `mapstructure:"color"`
}

// FoldersConfig names the reserved sub-folders of a working folder.
type FoldersConfig struct {
	Versions string `mapstructure:"versions"`
	Preview  string `mapstructure:"preview"`
	Publish  string `mapstructure:"publish"`
}

// DaemonConfig configures the connection to the pipeline daemon.
type DaemonConfig struct {
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	AutoConnect    bool   `mapstructure:"auto_connect"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
}

// RotationConfig configures log file rotation.
type RotationConfig struct {
	MaxSize    string `mapstructure:"max_size"`
	MaxAge     int    `mapstructure:"max_age"`
	MaxBackups int    `mapstructure:"max_backups"`
	Daily      bool   `mapstructure:"daily"`
}

// LoggingConfig configures application logging.
type LoggingConfig struct {
	Level      string            `mapstructure:"level"`
	Path       string            `mapstructure:"path"`
	Rotation   RotationConfig    `mapstructure:"rotation"`
	Components map[string]string `mapstructure:"components"`
}

// Config represents the application configuration.
type Config struct {
	Folders FoldersConfig `mapstructure:"folders"`
	States  []StateConfig `mapstructure:"states"`
	Scan    struct {
		Workers int      `mapstructure:"workers"`
		Exclude []string `mapstructure:"exclude"`
	} `mapstructure:"scan"`
	Cache struct {
		Enabled bool   `mapstructure:"enabled"`
		Path    string `mapstructure:"path"`
	} `mapstructure:"cache"`
	Journal struct {
		Enabled       bool   `mapstructure:"enabled"`
		Path          string `mapstructure:"path"`
		RetentionDays int    `mapstructure:"retention_days"`
	} `mapstructure:"journal"`
	Logging LoggingConfig `mapstructure:"logging"`
	Daemon  DaemonConfig  `mapstructure:"daemon"`
}

// PrefixTokens returns the version prefixes the naming grammar should
// recognize: the fixed prefixes plus every configured state short name.
func (c *Config) PrefixTokens() []string {
	tokens := make([]string, 0, len(FixedPrefixes)+len(c.States))
	tokens = append(tokens, FixedPrefixes...)
	for _, s := range c.States {
		tokens = append(tokens, s.ShortName)
	}
	return tokens
}

// StateByShortName looks a configured state up by its short name,
// case-insensitively.
func (c *Config) StateByShortName(short string) (StateConfig, bool) {
	for _, s := range c.States {
		if strings.EqualFold(s.ShortName, short) {
			return s, true
		}
	}
	return StateConfig{}, false
}

// Load loads configuration from file and environment variables.
// Config file locations (in order of precedence):
//   - $XDG_CONFIG_HOME/slate/config.yaml
//   - $HOME/.config/slate/config.yaml
//
// Environment variables are prefixed with SLATE_ (e.g., SLATE_DAEMON_PORT).
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")

	if xdgConfigHome := os.Getenv("XDG_CONFIG_HOME"); xdgConfigHome != "" {
		v.AddConfigPath(filepath.Join(xdgConfigHome, "slate"))
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get user home directory: %w", err)
	}
	v.AddConfigPath(filepath.Join(homeDir, ".config", "slate"))

	v.SetEnvPrefix("SLATE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("folders.versions", DefaultVersionsFolder)
	v.SetDefault("folders.preview", DefaultPreviewFolder)
	v.SetDefault("folders.publish", DefaultPublishFolder)

	v.SetDefault("scan.workers", DefaultScanWorkers)
	v.SetDefault("scan.exclude", DefaultExclusions)

	v.SetDefault("cache.enabled", true)
	v.SetDefault("cache.path", "") // Empty means use DefaultCachePath

	v.SetDefault("journal.enabled", true)
	v.SetDefault("journal.path", filepath.Join(homeDir, ".config", "slate", ".journal"))
	v.SetDefault("journal.retention_days", DefaultRetentionDays)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.path", "") // Empty means use DefaultLogPath
	v.SetDefault("logging.rotation.max_size", "10MB")
	v.SetDefault("logging.rotation.max_age", 30)
	v.SetDefault("logging.rotation.max_backups", 5)
	v.SetDefault("logging.rotation.daily", true)
	v.SetDefault("logging.components", map[string]string{
		"history": "info",
		"scanner": "info",
		"watcher": "warn",
		"daemon":  "info",
	})

	v.SetDefault("daemon.host", DefaultDaemonHost)
	v.SetDefault("daemon.port", DefaultDaemonPort)
	v.SetDefault("daemon.auto_connect", true)
	v.SetDefault("daemon.timeout_seconds", DefaultDaemonTimeoutSeconds)

	if err := v.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFoundError) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found is acceptable; we use defaults
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// viper defaults cannot express a slice of structs, so the built-in
	// states apply only when the file sets none.
	if len(cfg.States) == 0 {
		cfg.States = DefaultStates
	}

	if strings.HasPrefix(cfg.Journal.Path, "~") {
		cfg.Journal.Path = filepath.Join(homeDir, cfg.Journal.Path[1:])
	}
	if strings.HasPrefix(cfg.Cache.Path, "~") {
		cfg.Cache.Path = filepath.Join(homeDir, cfg.Cache.Path[1:])
	}

	return &cfg, nil
}

// ConfigDir returns the configuration directory path.
func ConfigDir() (string, error) {
	if xdgConfigHome := os.Getenv("XDG_CONFIG_HOME"); xdgConfigHome != "" {
		return filepath.Join(xdgConfigHome, "slate"), nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}

	return filepath.Join(homeDir, ".config", "slate"), nil
}

// JournalDir returns the journal directory path.
func JournalDir() (string, error) {
	configDir, err := ConfigDir()
	if err != nil {
		return "", err
	}

	return filepath.Join(configDir, ".journal"), nil
}

// EnsureConfigDir creates the config directory if it doesn't exist.
func EnsureConfigDir() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	return nil
}

// EnsureJournalDir creates the journal directory if it doesn't exist.
func EnsureJournalDir() error {
	dir, err := JournalDir()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create journal directory: %w", err)
	}

	return nil
}

// WriteDefault writes a default config file if none exists.
// Returns nil if a config file already exists.
func WriteDefault() error {
	if err := EnsureConfigDir(); err != nil {
		return err
	}

	configDir, err := ConfigDir()
	if err != nil {
		return err
	}

	configPath := filepath.Join(configDir, "config.yaml")

	if _, err := os.Stat(configPath); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("failed to check config file: %w", err)
	}

	journalDir, err := JournalDir()
	if err != nil {
		return err
	}

	defaultConfig := fmt.Sprintf(`# Slate Pipeline Configuration

# Reserved folder names inside working folders
folders:
  versions: %s
  preview: %s
  publish: %s

# Workflow states. Short names become recognized version prefixes in
# file names, next to the built-in "v" and "pub".
states:
  - short_name: NO
    name: Nothing to do
    completion: 1.0
    color: "#434343"
  - short_name: TODO
    name: To do
    completion: 0.0
    color: "#dc4481"
  - short_name: WIP
    name: Work in progress
    completion: 0.5
    color: "#2b7b92"
  - short_name: OK
    name: Finished
    completion: 1.0
    color: "#2e8e5c"

# Project scanner
scan:
  workers: %d
  exclude:
    - .git
    - node_modules
    - __pycache__

# Scan result cache
cache:
  enabled: true
  # Database path (empty means use default: $XDG_CACHE_HOME/slate/cache.db)
  path: ""

# Journal settings for tracking version operations
journal:
  enabled: true
  path: %s
  retention_days: %d

# Logging configuration
logging:
  # Log level: debug, info, warn, error
  level: info
  # Log file path (empty means use default: $XDG_STATE_HOME/slate/slate.log)
  path: ""
  # Log rotation settings
  rotation:
    max_size: 10MB
    max_age: 30       # days
    max_backups: 5
    daily: true
  # Per-component log levels
  components:
    history: info
    scanner: info
    watcher: warn
    daemon: info

# Pipeline daemon connection
daemon:
  host: %s
  port: %d
  # Query the daemon for workflow states when it is reachable
  auto_connect: true
  timeout_seconds: %d
`, DefaultVersionsFolder, DefaultPreviewFolder, DefaultPublishFolder,
		DefaultScanWorkers, journalDir, DefaultRetentionDays,
		DefaultDaemonHost, DefaultDaemonPort, DefaultDaemonTimeoutSeconds)

	if err := os.WriteFile(configPath, []byte(defaultConfig), 0o644); err != nil {
		return fmt.Errorf("failed to write default config: %w", err)
	}

	return nil
}

// ExpandPath expands ~ in a path to the user's home directory.
func ExpandPath(path string) (string, error) {
	if !strings.HasPrefix(path, "~") {
		return path, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}

	return filepath.Join(homeDir, path[1:]), nil
}

// StateDir returns $XDG_STATE_HOME/slate/ for log files.
func StateDir() string {
	return filepath.Join(xdg.StateHome, "slate")
}

// CacheDir returns $XDG_CACHE_HOME/slate/ for the scan cache database.
func CacheDir() string {
	return filepath.Join(xdg.CacheHome, "slate")
}

// DefaultCachePath returns the default scan cache database path.
func DefaultCachePath() string {
	return filepath.Join(CacheDir(), "cache.db")
}

// DefaultLogPath returns the default log file path.
func DefaultLogPath() string {
	return filepath.Join(StateDir(), "slate.log")
}

// EnsureStateDir creates the state directory if it doesn't exist.
func EnsureStateDir() error {
	if err := os.MkdirAll(StateDir(), 0o755); err != nil {
		return fmt.Errorf("creating state directory: %w", err)
	}
	return nil
}

// EnsureCacheDir creates the cache directory if it doesn't exist.
func EnsureCacheDir() error {
	if err := os.MkdirAll(CacheDir(), 0o755); err != nil {
		return fmt.Errorf("creating cache directory: %w", err)
	}
	return nil
}
