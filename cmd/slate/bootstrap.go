package main

import (
	"context"
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/viper"

	"github.com/jamesainslie/slate/pkg/client"
	"github.com/jamesainslie/slate/pkg/slate/config"
	"github.com/jamesainslie/slate/pkg/slate/journal"
	"github.com/jamesainslie/slate/pkg/slate/logging"
	"github.com/jamesainslie/slate/pkg/slate/naming"
	"github.com/jamesainslie/slate/pkg/slate/paths"
)

// loadConfig loads configuration and initializes logging from it.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("loading configuration: %w", err)
	}

	logCfg := logging.Config{
		Level:      cfg.Logging.Level,
		Path:       cfg.Logging.Path,
		Components: cfg.Logging.Components,
		Rotation:   parseRotationConfig(cfg.Logging.Rotation),
	}
	if getVerbose() {
		logCfg.ConsoleLevel = "debug"
	}
	if err := logging.Init(logCfg); err != nil {
		printVerbose("Logging disabled: %v", err)
	}

	return cfg, nil
}

// parseRotationConfig converts the human-readable rotation settings into
// the byte counts the logger wants. Unparseable sizes fall back to the
// rotation default.
func parseRotationConfig(rc config.RotationConfig) logging.RotationConfig {
	out := logging.RotationConfig{
		MaxAge:     rc.MaxAge,
		MaxBackups: rc.MaxBackups,
		Daily:      rc.Daily,
	}
	if rc.MaxSize != "" {
		if size, err := humanize.ParseBytes(rc.MaxSize); err == nil {
			out.MaxSize = int64(size)
		}
	}
	if out.MaxSize == 0 {
		out.MaxSize = logging.DefaultRotationConfig().MaxSize
	}
	return out
}

// newResolver builds the reserved folder resolver from configuration.
func newResolver(cfg *config.Config) *paths.Resolver {
	return paths.NewResolver(paths.Names{
		Versions: cfg.Folders.Versions,
		Preview:  cfg.Folders.Preview,
		Publish:  cfg.Folders.Publish,
	})
}

// newGrammar builds the naming grammar. In online mode the workflow-state
// prefixes come from the daemon; otherwise from configuration. The second
// return reports whether the daemon answered.
func newGrammar(ctx context.Context, cfg *config.Config) (*naming.Grammar, bool) {
	if cfg.Daemon.AutoConnect && !viper.GetBool("no_daemon") {
		states, err := client.New(cfg.Daemon).States(ctx)
		if err == nil {
			tokens := append([]string{}, config.FixedPrefixes...)
			for _, s := range states {
				tokens = append(tokens, s.ShortName)
			}
			printVerbose("Using %d workflow states from daemon", len(states))
			return naming.NewGrammar(tokens), true
		}
		printVerbose("Daemon unavailable, using configured states: %v", err)
	}
	return naming.NewGrammar(cfg.PrefixTokens()), false
}

// openJournal opens the operation journal, or returns nil when disabled.
func openJournal(cfg *config.Config) *journal.Journal {
	if !cfg.Journal.Enabled {
		return nil
	}
	j, err := journal.New(cfg.Journal.Path)
	if err != nil {
		printVerbose("Journal disabled: %v", err)
		return nil
	}
	if err := j.EnsureDir(); err != nil {
		printVerbose("Journal disabled: %v", err)
		return nil
	}
	return j
}
