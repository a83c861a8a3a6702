package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile string
	rootCmd = &cobra.Command{
		Use:   "slate",
		Short: "Version and organize production files by naming convention",
		Long: `Slate manages the files of a creative production pipeline through
their names. Every managed file follows the canonical grammar
project_TYPE[_object]_step[_resource][_stateVERSION].ext; slate decodes
names, archives numbered versions, restores old ones, publishes finished
work and keeps an inventory of a project tree.

Examples:
  slate decode FPE_A_TRI_MOD_v003.blend   # Show name components
  slate commit shot.blend                 # Archive the next version
  slate versions shot.blend               # List archived versions
  slate restore _versions/FPE_A_TRI_MOD_v003.blend
  slate scan ~/projects/FPE               # Inventory managed files
  slate watch ~/projects/FPE              # Auto-commit on save`,
	}
)

func init() {
	cobra.OnInitialize(initFlags)

	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ~/.config/slate/config.yaml)")
	rootCmd.PersistentFlags().StringP("output", "o", "pretty", "output format (pretty, plain, json, jsonl, yaml)")
	rootCmd.PersistentFlags().BoolP("quiet", "q", false, "minimal output")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "debug output")
	rootCmd.PersistentFlags().Bool("no-cache", false, "bypass the scan cache")
	rootCmd.PersistentFlags().Bool("no-daemon", false, "stay offline, never query the pipeline daemon")

	// Bind flags to viper
	_ = viper.BindPFlag("output", rootCmd.PersistentFlags().Lookup("output"))
	_ = viper.BindPFlag("quiet", rootCmd.PersistentFlags().Lookup("quiet"))
	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	_ = viper.BindPFlag("no_cache", rootCmd.PersistentFlags().Lookup("no-cache"))
	_ = viper.BindPFlag("no_daemon", rootCmd.PersistentFlags().Lookup("no-daemon"))
}

// initFlags wires command line flags into the global viper used for
// flag lookups. File and environment configuration go through
// config.Load, which keeps its own viper instance.
func initFlags() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
		_ = viper.ReadInConfig()
	}
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// getVerbose returns true if verbose mode is enabled.
func getVerbose() bool {
	return viper.GetBool("verbose")
}

// getQuiet returns true if quiet mode is enabled.
func getQuiet() bool {
	return viper.GetBool("quiet")
}

// printVerbose prints a message if verbose mode is enabled.
func printVerbose(format string, args ...interface{}) {
	if getVerbose() && !getQuiet() {
		fmt.Fprintf(os.Stderr, "[DEBUG] "+format+"\n", args...)
	}
}

// printInfo prints a message if quiet mode is not enabled.
func printInfo(format string, args ...interface{}) {
	if !getQuiet() {
		fmt.Printf(format+"\n", args...)
	}
}

// printError prints an error message to stderr.
func printError(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
}
