// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdiddy/topic-explorer/internal/variant"
)

var useCmd = &cobra.Command{
	Use:   "use [variant]",
	Short: "Remember which variant to browse",
	Long: `Use stores the given variant as the default for topics, topic, search,
and export. The variant must be loaded. Without an argument, use prints the
variant that would be browsed.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runUse,
}

func runUse(cmd *cobra.Command, args []string) error {
	cfg := explorerConfig()
	reg, err := variant.Load(cfg, logger)
	if err != nil {
		return err
	}

	if len(args) == 0 {
		name, err := reg.Select(variant.Selection{Sticky: variant.ReadSticky(cfg.PrecomputeDir)})
		if err != nil {
			return err
		}
		if name == variant.NoSelection {
			fmt.Println("No variants available.")
			return nil
		}
		fmt.Println(name)
		return nil
	}

	if err := reg.WriteSticky(cfg.PrecomputeDir, args[0]); err != nil {
		return err
	}
	fmt.Printf("Using %s\n", args[0])
	return nil
}

func init() {
	rootCmd.AddCommand(useCmd)
}
