package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jamesainslie/slate/pkg/slate/cache"
	"github.com/jamesainslie/slate/pkg/slate/config"
	"github.com/jamesainslie/slate/pkg/slate/logging"
	"github.com/jamesainslie/slate/pkg/slate/output"
	"github.com/jamesainslie/slate/pkg/slate/scanner"
)

var scanCmd = &cobra.Command{
	Use:   "scan [path]",
	Short: "Inventory the managed files of a project tree",
	Long: `Walk a project tree and list every file following the naming
convention, with its decoded components and which reserved folder it
lives in. Foreign files are counted but not listed. Unchanged trees are
served from the scan cache unless --no-cache is given.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runScan,
}

func init() {
	rootCmd.AddCommand(scanCmd)
}

// runScan is the scan command handler.
func runScan(cmd *cobra.Command, args []string) error {
	scanPath := "."
	if len(args) > 0 {
		scanPath = args[0]
	}

	expandedPath, err := config.ExpandPath(scanPath)
	if err != nil {
		return fmt.Errorf("expanding path: %w", err)
	}
	absPath, err := filepath.Abs(expandedPath)
	if err != nil {
		return fmt.Errorf("resolving path: %w", err)
	}
	info, err := os.Stat(absPath)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("path does not exist: %s", absPath)
		}
		return fmt.Errorf("cannot access path: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("path is not a directory: %s", absPath)
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	grammar, daemonUp := newGrammar(cmd.Context(), cfg)
	resolver := newResolver(cfg)

	formatter, err := output.Get(viper.GetString("output"))
	if err != nil {
		return fmt.Errorf("unknown output format %q: available formats are %v", viper.GetString("output"), output.Available())
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)
	go func() {
		<-sigChan
		printInfo("\nInterrupted, stopping scan...")
		cancel()
	}()

	opts := scanner.Options{
		Root:     absPath,
		Grammar:  grammar,
		Resolver: resolver,
		Exclude:  cfg.Scan.Exclude,
		Workers:  cfg.Scan.Workers,
	}

	// Cache unless disabled by flag or config.
	if cfg.Cache.Enabled && !viper.GetBool("no_cache") {
		cachePath := cfg.Cache.Path
		if cachePath == "" {
			cachePath = config.DefaultCachePath()
		}
		if err := config.EnsureCacheDir(); err != nil {
			printVerbose("Cache disabled: %v", err)
		} else if c, err := cache.Open(cachePath); err != nil {
			printVerbose("Cache disabled: %v", err)
		} else {
			defer c.Close()
			opts.Cache = c
		}
	}

	res, err := scanner.New(opts).Scan(ctx)
	if err != nil {
		if errors.Is(ctx.Err(), context.Canceled) {
			printInfo("Scan cancelled")
			return nil
		}
		return fmt.Errorf("scan failed: %w", err)
	}
	logging.Get("scanner").Info("scan complete",
		"root", absPath, "managed", len(res.Files), "foreign", res.ForeignFiles,
		"cache_hits", res.CacheHits)

	// Stable listing: by path within the tree.
	sort.Slice(res.Files, func(i, j int) bool {
		return res.Files[i].Path < res.Files[j].Path
	})

	result := output.FromScan(res, absPath)
	result.DaemonUp = daemonUp

	var buf bytes.Buffer
	if err := formatter.Format(&buf, result); err != nil {
		return fmt.Errorf("formatting output: %w", err)
	}
	fmt.Print(buf.String())
	return nil
}
