// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/topic-explorer/internal/query"
)

var topicCmd = &cobra.Command{
	Use:   "topic [name]",
	Short: "List the datasets of one topic",
	Long: `Topic lists the datasets of the selected variant whose topic matches the
given name exactly, most downloaded first (views break ties).`,
	Args: cobra.MinimumNArgs(1),
	RunE: runTopic,
}

func runTopic(cmd *cobra.Command, args []string) error {
	_, name, records, err := openVariant(cmd)
	if err != nil {
		return err
	}
	topic := strings.Join(args, " ")

	matches, err := query.FilterByTopic(records, topic)
	if err != nil {
		return err
	}
	if limit, _ := cmd.Flags().GetInt("limit"); limit > 0 && len(matches) > limit {
		matches = matches[:limit]
	}
	display := query.DisplayRows(matches)

	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		return writeJSON(os.Stdout, display)
	}

	heading("%s / %s", name, topic)
	fmt.Fprintln(os.Stdout, renderRows(display))
	return nil
}

// renderRows draws display rows with the dataset columns.
func renderRows(display []query.Row) string {
	rows := make([][]string, len(display))
	for i, r := range display {
		rows[i] = []string{truncate(r.Title, 60), r.DOI, r.Downloads, r.Views, r.UniqueDownloads, r.LicenseID}
	}
	return renderTable([]string{"Title", "DOI", "Downloads", "Views", "Unique", "License"}, rows, 2, 3, 4)
}

func init() {
	addVariantFlag(topicCmd)
	topicCmd.Flags().Int("limit", 0, "maximum rows (0 = all)")
	topicCmd.Flags().Bool("json", false, "output rows as JSON")

	rootCmd.AddCommand(topicCmd)
}
