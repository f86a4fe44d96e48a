// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/pdiddy/topic-explorer/internal/query"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export a variant or one of its topics as CSV",
	Long: `Export writes the selected variant as <variant>.csv, or with --topic the
rows of one topic as topic_<name>.csv, into --out-dir. Rows keep table
order. Use --out-dir - to write to standard output.`,
	RunE: runExport,
}

func runExport(cmd *cobra.Command, args []string) error {
	_, name, records, err := openVariant(cmd)
	if err != nil {
		return err
	}
	topic, _ := cmd.Flags().GetString("topic")
	outDir, _ := cmd.Flags().GetString("out-dir")

	var buf bytes.Buffer
	filename := query.VariantFilename(name)
	if cmd.Flags().Changed("topic") {
		if filename, err = query.ExportTopic(&buf, records, topic); err != nil {
			return err
		}
	} else if err := query.ExportVariant(&buf, records); err != nil {
		return err
	}

	if outDir == "-" {
		_, err := os.Stdout.Write(buf.Bytes())
		return err
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", outDir, err)
	}
	path := filepath.Join(outDir, filename)
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	fmt.Printf("Exported to %s\n", path)
	return nil
}

func init() {
	addVariantFlag(exportCmd)
	exportCmd.Flags().String("topic", "", "export only this topic")
	exportCmd.Flags().String("out-dir", ".", "output directory, or - for standard output")

	rootCmd.AddCommand(exportCmd)
}
