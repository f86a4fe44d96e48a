// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/pdiddy/topic-explorer/internal/rollup"
	"github.com/pdiddy/topic-explorer/internal/variant"
)

var variantsCmd = &cobra.Command{
	Use:   "variants",
	Short: "List the variants recorded in the manifest",
	Long: `Variants loads every table listed in the manifest and shows the ones
that are available, in selection order, with their topic and row counts.
The variant browsed by default is marked. Entries whose table is missing or
malformed are listed separately.`,
	RunE: runVariants,
}

func runVariants(cmd *cobra.Command, args []string) error {
	cfg := explorerConfig()
	reg, err := variant.Load(cfg, logger)
	if err != nil {
		return err
	}
	if reg.Len() == 0 && len(reg.Skipped()) == 0 {
		noVariantsHint()
		return nil
	}

	selected, err := reg.Select(variant.Selection{Sticky: variant.ReadSticky(cfg.PrecomputeDir)})
	if err != nil {
		return err
	}

	rows := make([][]string, 0, reg.Len())
	for _, name := range reg.Names() {
		v, _ := reg.Get(name)
		s := rollup.Summarize(rollup.Aggregate(v.Records))
		mark := ""
		if name == selected {
			mark = "*"
		}
		rows = append(rows, []string{
			mark,
			name,
			v.File,
			humanize.Comma(int64(s.Topics)),
			humanize.Comma(int64(s.Rows)),
			humanize.Comma(s.Downloads),
		})
	}
	if len(rows) > 0 {
		fmt.Fprintln(os.Stdout, renderTable([]string{"", "Variant", "File", "Topics", "Rows", "Downloads"}, rows, 3, 4, 5))
	}

	for _, s := range reg.Skipped() {
		fmt.Fprintln(os.Stdout, helpStyle.Render(fmt.Sprintf("skipped %s (%s): %v", s.Name, s.File, s.Err)))
	}
	return nil
}

func init() {
	rootCmd.AddCommand(variantsCmd)
}
