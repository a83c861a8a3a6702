package main

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jamesainslie/slate/pkg/slate/naming"
)

var decodeCmd = &cobra.Command{
	Use:   "decode <name-or-path>",
	Short: "Decode a file name into its components",
	Long: `Decode a managed file name (or any path; only the basename is read)
into its components: project, type, object, step, resource, state and
version.`,
	Args: cobra.ExactArgs(1),
	RunE: runDecode,
}

var encodeCmd = &cobra.Command{
	Use:   "encode",
	Short: "Build a canonical file name from components",
	Long: `Build a canonical file name from components given as flags.

Examples:
  slate encode -p FPE -t A --object TRI -s MOD -e blend
  slate encode -p FPE -t S --object 010 -s ANIM --state WIP --version 4 -e blend`,
	RunE: runEncode,
}

var savePathCmd = &cobra.Command{
	Use:   "save-path <path>",
	Short: "Show the canonical working file for any managed path",
	Long: `Derive the canonical working file path for a managed file, wherever
it lives: an archived version, a published copy or a preview all map back
to the same working file in the owning folder.`,
	Args: cobra.ExactArgs(1),
	RunE: runSavePath,
}

func init() {
	encodeCmd.Flags().StringP("project", "p", "", "project short name")
	encodeCmd.Flags().StringP("type", "t", "", "item type letter (G, A or S)")
	encodeCmd.Flags().String("object", "", "asset or shot short name")
	encodeCmd.Flags().StringP("step", "s", "", "step short name")
	encodeCmd.Flags().StringP("resource", "r", "", "resource string")
	encodeCmd.Flags().String("state", "", "workflow state short name")
	encodeCmd.Flags().Int("version", -1, "version number (-1 for none)")
	encodeCmd.Flags().StringP("ext", "e", "", "file extension")
	_ = encodeCmd.MarkFlagRequired("project")
	_ = encodeCmd.MarkFlagRequired("type")
	_ = encodeCmd.MarkFlagRequired("step")

	rootCmd.AddCommand(decodeCmd)
	rootCmd.AddCommand(encodeCmd)
	rootCmd.AddCommand(savePathCmd)
}

// runDecode decodes a basename and prints its components.
func runDecode(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	grammar, _ := newGrammar(cmd.Context(), cfg)

	name := filepath.Base(args[0])
	c, err := grammar.Decode(name)
	if err != nil {
		return fmt.Errorf("%q does not follow the naming convention: %w", name, err)
	}

	if viper.GetString("output") == "json" {
		return printComponentsJSON(c)
	}

	fmt.Printf("project:   %s\n", c.Project)
	fmt.Printf("type:      %s (%s)\n", c.Type, c.Type.String())
	if c.Object != "" {
		fmt.Printf("object:    %s\n", c.Object)
	}
	fmt.Printf("step:      %s\n", c.Step)
	if c.Resource != "" {
		fmt.Printf("resource:  %s\n", c.Resource)
	}
	if c.Version >= 0 {
		fmt.Printf("state:     %s\n", c.State)
		fmt.Printf("version:   %d\n", c.Version)
	}
	fmt.Printf("extension: %s\n", c.Extension)
	return nil
}

// printComponentsJSON prints decoded components as JSON.
func printComponentsJSON(c naming.Components) error {
	out := struct {
		Project   string `json:"project"`
		Type      string `json:"type"`
		Object    string `json:"object,omitempty"`
		Step      string `json:"step"`
		Resource  string `json:"resource,omitempty"`
		State     string `json:"state,omitempty"`
		Version   int    `json:"version"`
		Extension string `json:"extension"`
	}{
		Project:   c.Project,
		Type:      string(c.Type),
		Object:    c.Object,
		Step:      c.Step,
		Resource:  c.Resource,
		State:     c.State,
		Version:   c.Version,
		Extension: c.Extension,
	}
	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}

// runEncode builds a name from flag components.
func runEncode(cmd *cobra.Command, args []string) error {
	typeStr, _ := cmd.Flags().GetString("type")
	itemType, err := naming.ParseItemType(typeStr)
	if err != nil {
		return err
	}

	project, _ := cmd.Flags().GetString("project")
	object, _ := cmd.Flags().GetString("object")
	step, _ := cmd.Flags().GetString("step")
	resource, _ := cmd.Flags().GetString("resource")
	state, _ := cmd.Flags().GetString("state")
	version, _ := cmd.Flags().GetInt("version")
	ext, _ := cmd.Flags().GetString("ext")

	if (itemType == naming.ItemAsset || itemType == naming.ItemShot) && object == "" {
		return fmt.Errorf("--object is required for type %s", itemType)
	}

	name := naming.Encode(naming.Components{
		Project:   project,
		Type:      itemType,
		Object:    object,
		Step:      step,
		Resource:  resource,
		State:     state,
		Version:   version,
		Extension: ext,
	})

	// Encode must round-trip; a failure here means the inputs carry
	// characters the grammar cannot represent.
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	grammar, _ := newGrammar(context.Background(), cfg)
	if _, err := grammar.Decode(name); err != nil {
		return fmt.Errorf("components do not form a valid name (%q): %w", name, err)
	}

	fmt.Println(name)
	return nil
}

// runSavePath prints the canonical working file path for a managed path.
func runSavePath(cmd *cobra.Command, args []string) error {
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
	save, err := resolver.SaveFilePath(abs, grammar)
	if err != nil {
		return err
	}

	fmt.Println(save)
	return nil
}
