package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jamesainslie/slate/pkg/slate/journal"
)

var journalCmd = &cobra.Command{
	Use:     "journal",
	Aliases: []string{"history"},
	Short:   "View the version operation journal",
	Long: `View the journal of commit, restore, publish and preview operations.
Entries are kept for the configured retention period.`,
	RunE: runJournalList,
}

var journalShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one journal entry",
	Args:  cobra.ExactArgs(1),
	RunE:  runJournalShow,
}

var journalCleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Remove journal entries past the retention period",
	RunE:  runJournalCleanup,
}

func init() {
	journalCmd.Flags().IntP("limit", "n", 20, "maximum entries to list (0 for all)")
	journalCmd.AddCommand(journalShowCmd)
	journalCmd.AddCommand(journalCleanupCmd)
	rootCmd.AddCommand(journalCmd)
}

// loadJournal opens the configured journal for read commands.
func loadJournal() (*journal.Journal, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	if !cfg.Journal.Enabled {
		return nil, fmt.Errorf("journal is disabled in configuration")
	}
	return journal.New(cfg.Journal.Path)
}

// runJournalList lists recent journal entries.
func runJournalList(cmd *cobra.Command, args []string) error {
	j, err := loadJournal()
	if err != nil {
		return err
	}
	limit, _ := cmd.Flags().GetInt("limit")

	entries, err := j.List(limit)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		printInfo("No journal entries.")
		return nil
	}

	for _, e := range entries {
		line := fmt.Sprintf("%s  %-8s %s", e.Timestamp.Local().Format("2006-01-02 15:04:05"), e.Operation, e.Target)
		if e.Version > 0 {
			line += fmt.Sprintf(" (v%d)", e.Version)
		}
		fmt.Println(line)
		printVerbose("  id: %s", e.ID)
	}
	return nil
}

// runJournalShow prints one entry in full.
func runJournalShow(cmd *cobra.Command, args []string) error {
	j, err := loadJournal()
	if err != nil {
		return err
	}

	entry, err := j.Get(args[0])
	if err != nil {
		return err
	}

	fmt.Printf("id:        %s\n", entry.ID)
	fmt.Printf("operation: %s\n", entry.Operation)
	fmt.Printf("time:      %s\n", entry.Timestamp.Local().Format("2006-01-02 15:04:05"))
	fmt.Printf("source:    %s\n", entry.Source)
	fmt.Printf("target:    %s\n", entry.Target)
	if entry.Version > 0 {
		fmt.Printf("version:   %d\n", entry.Version)
	}
	if entry.State != "" {
		fmt.Printf("state:     %s\n", entry.State)
	}
	return nil
}

// runJournalCleanup removes stale entries.
func runJournalCleanup(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if !cfg.Journal.Enabled {
		return fmt.Errorf("journal is disabled in configuration")
	}
	j, err := journal.New(cfg.Journal.Path)
	if err != nil {
		return err
	}

	if err := j.Cleanup(cfg.Journal.RetentionDays); err != nil {
		return err
	}
	printInfo("Removed entries older than %d days.", cfg.Journal.RetentionDays)
	return nil
}
