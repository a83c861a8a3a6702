package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jamesainslie/slate/pkg/client"
)

var daemonCmd = &cobra.Command{
	Use:   "daemon",
	Short: "Interact with the pipeline daemon",
}

var daemonStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show daemon connectivity and its workflow states",
	RunE:  runDaemonStatus,
}

func init() {
	daemonCmd.AddCommand(daemonStatusCmd)
	rootCmd.AddCommand(daemonCmd)
}

// runDaemonStatus pings the daemon and lists its states and project.
func runDaemonStatus(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	c := client.New(cfg.Daemon)

	info, err := c.Ping(cmd.Context())
	if err != nil {
		fmt.Printf("daemon: offline (%s:%d)\n", cfg.Daemon.Host, cfg.Daemon.Port)
		printVerbose("%v", err)
		return nil
	}

	fmt.Printf("daemon:  %s %s (%s:%d)\n", info.Name, info.Version, cfg.Daemon.Host, cfg.Daemon.Port)

	if project, err := c.Project(cmd.Context()); err == nil {
		fmt.Printf("project: %s (%s)\n", project.Name, project.ShortName)
		if project.Path != "" {
			fmt.Printf("path:    %s\n", project.Path)
		}
	} else {
		printVerbose("No current project: %v", err)
	}

	states, err := c.States(cmd.Context())
	if err != nil {
		printVerbose("No states from daemon: %v", err)
		return nil
	}
	if len(states) > 0 {
		fmt.Println("states:")
		for _, s := range states {
			fmt.Printf("  %-6s %s (%.0f%%)\n", s.ShortName, s.Name, s.Completion*100)
		}
	}
	return nil
}
