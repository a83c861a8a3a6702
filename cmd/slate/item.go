package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/jamesainslie/slate/pkg/slate/item"
	"github.com/jamesainslie/slate/pkg/slate/naming"
)

var itemCmd = &cobra.Command{
	Use:   "item <path>",
	Short: "Show the production item owning a managed path",
	Long: `Resolve the asset, shot or general item a managed path belongs to
and show its folders and files. The path can be a working file, an
archived version, a published copy or a preview.`,
	Args: cobra.ExactArgs(1),
	RunE: runItem,
}

func init() {
	rootCmd.AddCommand(itemCmd)
}

// runItem resolves and prints the item owning a path.
func runItem(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	grammar, _ := newGrammar(cmd.Context(), cfg)
	resolver := newResolver(cfg)

	abs, err := filepath.Abs(args[0])
	if err != nil {
		return err
	}
	it, err := item.FromPath(abs, grammar, resolver)
	if err != nil {
		return err
	}
	c, err := grammar.Decode(filepath.Base(abs))
	if err != nil {
		return err
	}

	fmt.Printf("type:    %s\n", it.Type.String())
	fmt.Printf("project: %s\n", it.Project)
	fmt.Printf("item:    %s\n", it.ShortName)
	if it.Group != "" {
		fmt.Printf("group:   %s\n", it.Group)
	}
	fmt.Printf("folder:  %s\n", it.Folder)

	step := c.Step
	if it.Type == naming.ItemGeneral {
		step = it.ShortName
	}

	files, err := it.StepFiles(step)
	if err != nil {
		return err
	}
	if len(files) > 0 {
		fmt.Printf("\nstep files (%s):\n", step)
		for _, f := range files {
			fmt.Printf("  %s\n", filepath.Base(f))
		}
	}

	published, err := it.PublishedFiles(step)
	if err != nil {
		return err
	}
	if len(published) > 0 {
		fmt.Println("\npublished:")
		for _, f := range published {
			fmt.Printf("  %s\n", filepath.Base(f))
		}
	}

	ok, err := it.IsPublished(step, naming.StripRestoredTag(c.Resource))
	if err != nil {
		return err
	}
	fmt.Printf("\npublished for this resource: %t\n", ok)
	return nil
}
