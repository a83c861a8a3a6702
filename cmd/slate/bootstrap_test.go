package main

import (
	"context"
	"testing"

	"github.com/jamesainslie/slate/pkg/slate/config"
	"github.com/jamesainslie/slate/pkg/slate/logging"
	"github.com/jamesainslie/slate/pkg/slate/paths"
)

func TestParseRotationConfig(t *testing.T) {
	tests := []struct {
		name     string
		input    config.RotationConfig
		expected logging.RotationConfig
	}{
		{
			name: "decimal megabytes",
			input: config.RotationConfig{
				MaxSize:    "10MB",
				MaxAge:     30,
				MaxBackups: 5,
				Daily:      true,
			},
			expected: logging.RotationConfig{
				MaxSize:    10 * 1000 * 1000,
				MaxAge:     30,
				MaxBackups: 5,
				Daily:      true,
			},
		},
		{
			name: "binary gigabytes",
			input: config.RotationConfig{
				MaxSize:    "1GiB",
				MaxAge:     7,
				MaxBackups: 3,
			},
			expected: logging.RotationConfig{
				MaxSize:    1024 * 1024 * 1024,
				MaxAge:     7,
				MaxBackups: 3,
			},
		},
		{
			name: "empty max_size uses default",
			input: config.RotationConfig{
				MaxAge:     14,
				MaxBackups: 2,
				Daily:      true,
			},
			expected: logging.RotationConfig{
				MaxSize:    logging.DefaultRotationConfig().MaxSize,
				MaxAge:     14,
				MaxBackups: 2,
				Daily:      true,
			},
		},
		{
			name: "unparseable max_size uses default",
			input: config.RotationConfig{
				MaxSize: "huge",
			},
			expected: logging.RotationConfig{
				MaxSize: logging.DefaultRotationConfig().MaxSize,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := parseRotationConfig(tt.input); got != tt.expected {
				t.Errorf("parseRotationConfig() = %+v, want %+v", got, tt.expected)
			}
		})
	}
}

func TestNewResolver(t *testing.T) {
	cfg := &config.Config{}
	cfg.Folders = config.FoldersConfig{Versions: "_v", Preview: "_p", Publish: "_final"}

	resolver := newResolver(cfg)
	if got := resolver.Classify("/proj/_final/file"); got != paths.KindPublish {
		t.Errorf("Classify() = %v, want publish with configured folder names", got)
	}
}

func TestNewGrammar_Offline(t *testing.T) {
	cfg := &config.Config{
		States: config.DefaultStates,
	}
	cfg.Daemon.AutoConnect = false

	grammar, online := newGrammar(context.Background(), cfg)
	if online {
		t.Error("newGrammar() reported online without a daemon")
	}

	// Configured state prefixes must be recognized.
	c, err := grammar.Decode("FPE_A_TRI_MOD_WIP003.blend")
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if c.State != "WIP" || c.Version != 3 {
		t.Errorf("Decode() state/version = %s/%d, want WIP/3", c.State, c.Version)
	}
}
