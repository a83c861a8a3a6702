package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/jamesainslie/slate/pkg/slate/history"
	"github.com/jamesainslie/slate/pkg/slate/logging"
	"github.com/jamesainslie/slate/pkg/slate/watcher"
)

var watchCmd = &cobra.Command{
	Use:   "watch [path]",
	Short: "Auto-commit managed files as they change",
	Long: `Watch a working folder tree and commit a new version of every managed
file that changes, once its save storm settles. Reserved folders are
never watched. Runs until interrupted.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().Duration("debounce", watcher.DefaultDebounce, "quiet period before a change is committed")
	watchCmd.Flags().String("state", "", "workflow state for auto-committed versions")
	rootCmd.AddCommand(watchCmd)
}

// runWatch watches a tree and commits changed files.
func runWatch(cmd *cobra.Command, args []string) error {
	watchPath := "."
	if len(args) > 0 {
		watchPath = args[0]
	}
	absPath, err := filepath.Abs(watchPath)
	if err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	grammar, _ := newGrammar(cmd.Context(), cfg)
	resolver := newResolver(cfg)
	h := history.New(grammar, resolver)
	j := openJournal(cfg)
	state, _ := cmd.Flags().GetString("state")

	w, err := watcher.New(grammar, resolver)
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer w.Close()

	if debounce, _ := cmd.Flags().GetDuration("debounce"); debounce > 0 {
		w.SetDebounce(debounce)
	}
	if err := w.Watch(absPath); err != nil {
		return fmt.Errorf("watching %s: %w", absPath, err)
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)
	go func() {
		<-sigChan
		printInfo("\nStopping watch...")
		cancel()
	}()

	printInfo("Watching %s (Ctrl-C to stop)", absPath)

	w.Run(ctx, func(path string) {
		entry, err := h.Commit(path, true, state)
		if err != nil {
			logging.Get("watcher").Error("auto-commit failed", "path", path, "error", err)
			printError("auto-commit of %s failed: %v", filepath.Base(path), err)
			return
		}
		logging.Get("watcher").Info("auto-committed version",
			"path", path, "version", entry.Components.Version)
		if j != nil {
			if _, err := j.LogCommit(path, entry.Path, entry.Components.Version, entry.Components.State); err != nil {
				printVerbose("Journal write failed: %v", err)
			}
		}
		printInfo("[%s] committed %s (version %d)",
			time.Now().Format("15:04:05"), filepath.Base(path), entry.Components.Version)
	})

	return nil
}
