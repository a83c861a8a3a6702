package main

import (
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/jamesainslie/slate/pkg/client"
	"github.com/jamesainslie/slate/pkg/slate/config"
	"github.com/jamesainslie/slate/pkg/slate/history"
	"github.com/jamesainslie/slate/pkg/slate/item"
	"github.com/jamesainslie/slate/pkg/slate/logging"
	"github.com/jamesainslie/slate/pkg/slate/naming"
)

var commitCmd = &cobra.Command{
	Use:   "commit <file>",
	Short: "Archive a working file as a numbered version",
	Long: `Copy a working file into its versions folder under the next version
number. With --no-increment the highest existing version is overwritten
instead. An explicit --state numbers its own series of versions; without
one the state of the latest archived version carries over, and a first
commit defaults to "v".`,
	Args: cobra.ExactArgs(1),
	RunE: runCommit,
}

var restoreCmd = &cobra.Command{
	Use:   "restore <version-file>",
	Short: "Bring an archived version back as a working file",
	Long: `Copy an archived version out of the versions folder into the owning
folder. The restored copy is marked with a +restored-v<N>+ resource tag
so it never overwrites the current working file.`,
	Args: cobra.ExactArgs(1),
	RunE: runRestore,
}

var publishCmd = &cobra.Command{
	Use:   "publish <file>",
	Short: "Promote a working file into the publish folder",
	Long: `Copy a working file into the publish folder, with the version block
stripped from the published name.`,
	Args: cobra.ExactArgs(1),
	RunE: runPublish,
}

var previewCmd = &cobra.Command{
	Use:   "preview <file>",
	Short: "Copy a working file into the preview folder",
	Args:  cobra.ExactArgs(1),
	RunE:  runPreview,
}

func init() {
	commitCmd.Flags().Bool("no-increment", false, "overwrite the highest existing version")
	commitCmd.Flags().String("state", "", "workflow state for the new version (e.g. WIP, OK)")
	rootCmd.AddCommand(commitCmd)
	rootCmd.AddCommand(restoreCmd)
	rootCmd.AddCommand(publishCmd)
	rootCmd.AddCommand(previewCmd)
}

// runCommit archives a working file.
func runCommit(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	grammar, daemonUp := newGrammar(cmd.Context(), cfg)
	resolver := newResolver(cfg)
	h := history.New(grammar, resolver)

	abs, err := filepath.Abs(args[0])
	if err != nil {
		return err
	}
	noIncrement, _ := cmd.Flags().GetBool("no-increment")
	state, _ := cmd.Flags().GetString("state")

	entry, err := h.Commit(abs, !noIncrement, state)
	if err != nil {
		return err
	}
	logging.Get("history").Info("committed version",
		"path", abs, "version", entry.Components.Version, "state", entry.Components.State)

	if j := openJournal(cfg); j != nil {
		if _, err := j.LogCommit(abs, entry.Path, entry.Components.Version, entry.Components.State); err != nil {
			printVerbose("Journal write failed: %v", err)
		}
	}

	// Push the new state to the daemon when one was given explicitly.
	if daemonUp && state != "" {
		pushStatus(cmd, cfg, abs, grammar, state)
	}

	printInfo("Committed %s (version %d, state %s)",
		filepath.Base(entry.Path), entry.Components.Version, entry.Components.State)
	return nil
}

// pushStatus reports an item's new workflow state to the daemon.
func pushStatus(cmd *cobra.Command, cfg *config.Config, path string, grammar *naming.Grammar, state string) {
	it, err := item.FromPath(path, grammar, newResolver(cfg))
	if err != nil {
		printVerbose("Not pushing status, item not resolvable: %v", err)
		return
	}
	c, err := grammar.Decode(filepath.Base(path))
	if err != nil {
		return
	}
	err = client.New(cfg.Daemon).SetStatus(cmd.Context(), it.ShortName, string(it.Type), c.Step, state)
	if err != nil {
		printVerbose("Daemon status update failed: %v", err)
	}
}

// runRestore restores an archived version.
func runRestore(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	grammar, _ := newGrammar(cmd.Context(), cfg)
	h := history.New(grammar, newResolver(cfg))

	abs, err := filepath.Abs(args[0])
	if err != nil {
		return err
	}

	restored, err := h.Restore(abs)
	if err != nil {
		return err
	}
	logging.Get("history").Info("restored version", "from", abs, "to", restored)

	if j := openJournal(cfg); j != nil {
		c, decodeErr := grammar.Decode(filepath.Base(abs))
		version := -1
		if decodeErr == nil {
			version = c.Version
		}
		if _, err := j.LogRestore(abs, restored, version); err != nil {
			printVerbose("Journal write failed: %v", err)
		}
	}

	printInfo("Restored to %s", restored)
	return nil
}

// runPublish promotes a working file into the publish folder.
func runPublish(cmd *cobra.Command, args []string) error {
	return runPromote(cmd, args[0], "Published")
}

// runPreview copies a working file into the preview folder.
func runPreview(cmd *cobra.Command, args []string) error {
	return runPromote(cmd, args[0], "Previewed")
}

// runPromote performs a publish or preview promotion.
func runPromote(cmd *cobra.Command, arg, verb string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	grammar, _ := newGrammar(cmd.Context(), cfg)
	h := history.New(grammar, newResolver(cfg))

	abs, err := filepath.Abs(arg)
	if err != nil {
		return err
	}

	var target string
	if verb == "Published" {
		target, err = h.Publish(abs)
	} else {
		target, err = h.Preview(abs)
	}
	if err != nil {
		return err
	}
	logging.Get("history").Info("promoted file", "from", abs, "to", target)

	if j := openJournal(cfg); j != nil {
		var jerr error
		if verb == "Published" {
			_, jerr = j.LogPublish(abs, target)
		} else {
			_, jerr = j.LogPreview(abs, target)
		}
		if jerr != nil {
			printVerbose("Journal write failed: %v", jerr)
		}
	}

	printInfo("%s %s", verb, target)
	return nil
}
