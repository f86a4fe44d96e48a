// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/topic-explorer/internal/rollup"
)

var topicsCmd = &cobra.Command{
	Use:   "topics",
	Short: "Show per-topic totals for a variant",
	Long: `Topics groups the selected variant by topic and shows dataset counts and
download, view, and unique-download sums, ranked by downloads. By default
only the top topics are shown (--top, default 20); --all shows every topic.

With --json, the chart dataset is printed instead: a root node "All Topics"
followed by one node per topic whose value is its download sum.`,
	RunE: runTopics,
}

func runTopics(cmd *cobra.Command, args []string) error {
	_, name, records, err := openVariant(cmd)
	if errors.Is(err, errNoVariants) {
		noVariantsHint()
		return nil
	}
	if err != nil {
		return err
	}
	aggs := rollup.Aggregate(records)

	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		return writeJSON(os.Stdout, rollup.Hierarchy(aggs))
	}

	n := viper.GetInt("sidebar_size")
	if n <= 0 {
		n = explorerConfig().SidebarSize
	}
	if all, _ := cmd.Flags().GetBool("all"); all {
		n = 0
	}

	s := rollup.Summarize(aggs)
	heading("%s: %s topics, %s datasets, %s downloads",
		name, humanize.Comma(int64(s.Topics)), humanize.Comma(int64(s.Rows)), humanize.Comma(s.Downloads))

	shown := rollup.Sidebar(aggs, n)
	rows := make([][]string, len(shown))
	for i, a := range shown {
		rows[i] = []string{
			strconv.Itoa(i + 1),
			a.Topic,
			humanize.Comma(int64(a.DatasetCount)),
			humanize.Comma(a.DownloadsSum),
			humanize.Comma(a.ViewsSum),
			humanize.Comma(a.UniqueDownloadsSum),
		}
	}
	fmt.Fprintln(os.Stdout, renderTable(
		[]string{"#", "Topic", "Datasets", "Downloads", "Views", "Unique"}, rows, 0, 2, 3, 4, 5))
	if len(shown) < len(aggs) {
		fmt.Fprintln(os.Stdout, helpStyle.Render(fmt.Sprintf("%d more topics; use --all to show them", len(aggs)-len(shown))))
	}
	return nil
}

func init() {
	addVariantFlag(topicsCmd)
	topicsCmd.Flags().Int("top", 20, "number of top topics to show")
	topicsCmd.Flags().Bool("all", false, "show every topic")
	topicsCmd.Flags().Bool("json", false, "print the chart dataset as JSON")
	bindFlag("sidebar_size", topicsCmd.Flags().Lookup("top"))

	rootCmd.AddCommand(topicsCmd)
}
