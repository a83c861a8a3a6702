package main

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/jamesainslie/slate/pkg/slate/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
	Long: `Manage slate configuration settings.

Configuration is loaded from:
  1. $XDG_CONFIG_HOME/slate/config.yaml (if set)
  2. ~/.config/slate/config.yaml

Environment variables can override config file settings using the SLATE_ prefix:
  SLATE_DAEMON_PORT=19000
  SLATE_SCAN_WORKERS=8
  SLATE_LOGGING_LEVEL=debug`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Long:  `Display the current configuration settings from all sources.`,
	RunE:  runConfigShow,
}

var configEditCmd = &cobra.Command{
	Use:   "edit",
	Short: "Edit configuration file",
	Long: `Open the configuration file in your default editor.

The editor is determined by:
  1. $VISUAL environment variable
  2. $EDITOR environment variable
  3. Falls back to 'vi'

If the config file doesn't exist, a default one will be created first.`,
	RunE: runConfigEdit,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create default configuration file",
	Long:  `Create a default configuration file if one doesn't exist.`,
	RunE:  runConfigInit,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Show configuration file path",
	Long:  `Display the path to the configuration file.`,
	RunE:  runConfigPath,
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configEditCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configPathCmd)
	rootCmd.AddCommand(configCmd)
}

// runConfigShow displays the current configuration.
func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	configDir, err := config.ConfigDir()
	if err == nil {
		configPath := filepath.Join(configDir, "config.yaml")
		if _, statErr := os.Stat(configPath); statErr == nil {
			fmt.Printf("Config file: %s\n\n", configPath)
		} else {
			fmt.Println("Config file: (using defaults, no file found)")
			fmt.Println()
		}
	}

	fmt.Println("Current Configuration:")
	fmt.Println("----------------------")
	fmt.Printf("folders.versions:       %s\n", cfg.Folders.Versions)
	fmt.Printf("folders.preview:        %s\n", cfg.Folders.Preview)
	fmt.Printf("folders.publish:        %s\n", cfg.Folders.Publish)
	fmt.Printf("states:                 ")
	for i, s := range cfg.States {
		if i > 0 {
			fmt.Print(", ")
		}
		fmt.Print(s.ShortName)
	}
	fmt.Println()
	fmt.Printf("scan.workers:           %d\n", cfg.Scan.Workers)
	fmt.Printf("scan.exclude:           %v\n", cfg.Scan.Exclude)
	fmt.Printf("cache.enabled:          %t\n", cfg.Cache.Enabled)
	fmt.Printf("journal.enabled:        %t\n", cfg.Journal.Enabled)
	fmt.Printf("journal.path:           %s\n", cfg.Journal.Path)
	fmt.Printf("journal.retention:      %d days\n", cfg.Journal.RetentionDays)
	fmt.Printf("logging.level:          %s\n", cfg.Logging.Level)
	fmt.Printf("daemon.host:            %s\n", cfg.Daemon.Host)
	fmt.Printf("daemon.port:            %d\n", cfg.Daemon.Port)
	fmt.Printf("daemon.auto_connect:    %t\n", cfg.Daemon.AutoConnect)

	fmt.Println("\nEnvironment Overrides:")
	fmt.Println("----------------------")
	envVars := []string{
		"SLATE_FOLDERS_VERSIONS",
		"SLATE_FOLDERS_PREVIEW",
		"SLATE_FOLDERS_PUBLISH",
		"SLATE_SCAN_WORKERS",
		"SLATE_CACHE_ENABLED",
		"SLATE_JOURNAL_ENABLED",
		"SLATE_JOURNAL_RETENTION_DAYS",
		"SLATE_LOGGING_LEVEL",
		"SLATE_DAEMON_HOST",
		"SLATE_DAEMON_PORT",
		"SLATE_DAEMON_AUTO_CONNECT",
	}

	anyOverrides := false
	for _, name := range envVars {
		if val := os.Getenv(name); val != "" {
			fmt.Printf("%s=%s\n", name, val)
			anyOverrides = true
		}
	}
	if !anyOverrides {
		fmt.Println("(none)")
	}

	return nil
}

// runConfigEdit opens the config file in an editor.
func runConfigEdit(cmd *cobra.Command, args []string) error {
	if err := config.WriteDefault(); err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}

	configDir, err := config.ConfigDir()
	if err != nil {
		return fmt.Errorf("failed to get config directory: %w", err)
	}
	configPath := filepath.Join(configDir, "config.yaml")

	editor := os.Getenv("VISUAL")
	if editor == "" {
		editor = os.Getenv("EDITOR")
	}
	if editor == "" {
		editor = "vi"
	}

	printVerbose("Opening %s with %s", configPath, editor)

	editorCmd := exec.Command(editor, configPath)
	editorCmd.Stdin = os.Stdin
	editorCmd.Stdout = os.Stdout
	editorCmd.Stderr = os.Stderr

	if err := editorCmd.Run(); err != nil {
		return fmt.Errorf("editor command failed: %w", err)
	}

	return nil
}

// runConfigInit creates a default config file.
func runConfigInit(cmd *cobra.Command, args []string) error {
	configDir, err := config.ConfigDir()
	if err != nil {
		return fmt.Errorf("failed to get config directory: %w", err)
	}
	configPath := filepath.Join(configDir, "config.yaml")

	if _, err := os.Stat(configPath); err == nil {
		printInfo("Config file already exists: %s", configPath)
		printInfo("Use 'slate config edit' to modify it.")
		return nil
	}

	if err := config.WriteDefault(); err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}

	printInfo("Created default config file: %s", configPath)
	return nil
}

// runConfigPath shows the config file path.
func runConfigPath(cmd *cobra.Command, args []string) error {
	configDir, err := config.ConfigDir()
	if err != nil {
		return fmt.Errorf("failed to get config directory: %w", err)
	}
	configPath := filepath.Join(configDir, "config.yaml")

	fmt.Println(configPath)

	if _, err := os.Stat(configPath); err == nil {
		printVerbose("File exists")
	} else if os.IsNotExist(err) {
		printVerbose("File does not exist (will use defaults)")
	}

	return nil
}
