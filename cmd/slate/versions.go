package main

import (
	"bytes"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jamesainslie/slate/pkg/slate/history"
	"github.com/jamesainslie/slate/pkg/slate/output"
)

var versionsCmd = &cobra.Command{
	Use:   "versions <file>",
	Short: "List the archived versions of a working file",
	Long: `List the archived versions of a working file's lineage, ordered by
version number. Use --latest or --previous to print a single path, and
--state to only consider versions committed with a given workflow state.`,
	Args: cobra.ExactArgs(1),
	RunE: runVersions,
}

func init() {
	versionsCmd.Flags().Bool("latest", false, "print only the latest version path")
	versionsCmd.Flags().Bool("previous", false, "print only the version before the latest")
	versionsCmd.Flags().String("state", "", "only versions with this workflow state")
	rootCmd.AddCommand(versionsCmd)
}

// runVersions lists a lineage's archive.
func runVersions(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	grammar, _ := newGrammar(cmd.Context(), cfg)
	resolver := newResolver(cfg)
	h := history.New(grammar, resolver)

	abs, err := filepath.Abs(args[0])
	if err != nil {
		return err
	}
	state, _ := cmd.Flags().GetString("state")

	if latest, _ := cmd.Flags().GetBool("latest"); latest {
		entry, found, err := h.Latest(abs, state)
		if err != nil {
			return err
		}
		if !found {
			return fmt.Errorf("no archived versions for %s", filepath.Base(abs))
		}
		fmt.Println(entry.Path)
		return nil
	}

	if previous, _ := cmd.Flags().GetBool("previous"); previous {
		entry, found, err := h.Previous(abs, state)
		if err != nil {
			return err
		}
		if !found {
			return fmt.Errorf("no version before the latest for %s", filepath.Base(abs))
		}
		fmt.Println(entry.Path)
		return nil
	}

	entries, err := h.List(abs, state)
	if err != nil {
		return err
	}

	formatter, err := output.Get(viper.GetString("output"))
	if err != nil {
		return fmt.Errorf("unknown output format %q: available formats are %v", viper.GetString("output"), output.Available())
	}

	result := output.FromVersions(entries, abs)
	var buf bytes.Buffer
	if err := formatter.Format(&buf, result); err != nil {
		return fmt.Errorf("formatting output: %w", err)
	}
	fmt.Print(buf.String())
	return nil
}
