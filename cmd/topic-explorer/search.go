package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/topic-explorer/internal/query"
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search dataset titles in a variant",
	Long: `Search finds datasets of the selected variant whose titles contain every
query word (case-insensitive). End a word with * to match it as a prefix.
Results are ranked by downloads, then views.`,
	RunE: runSearch,
}

func runSearch(cmd *cobra.Command, args []string) error {
	q, _ := cmd.Flags().GetString("query")
	if q == "" && len(args) > 0 {
		q = strings.Join(args, " ")
	}
	if strings.TrimSpace(q) == "" {
		return fmt.Errorf("provide a search query")
	}

	_, name, records, err := openVariant(cmd)
	if err != nil {
		return err
	}
	idx, err := query.NewTitleIndex(cmd.Context(), records)
	if err != nil {
		return err
	}
	defer idx.Close()

	maxResults, _ := cmd.Flags().GetInt("max-results")
	results, err := idx.Search(cmd.Context(), q, maxResults)
	if err != nil {
		return err
	}

	display := query.DisplayRows(results)
	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		return writeJSON(os.Stdout, display)
	}
	if len(results) == 0 {
		fmt.Println("No results found.")
		return nil
	}

	rows := make([][]string, len(results))
	for i, r := range results {
		rows[i] = []string{truncate(r.Title, 60), r.Topic, display[i].Downloads, display[i].Views}
	}
	heading("%s: %q", name, q)
	fmt.Fprintln(os.Stdout, renderTable([]string{"Title", "Topic", "Downloads", "Views"}, rows, 2, 3))
	fmt.Fprintf(os.Stdout, "\n%d results\n", len(results))
	return nil
}

func init() {
	addVariantFlag(searchCmd)
	searchCmd.Flags().String("query", "", "search query (alternative to positional words)")
	searchCmd.Flags().Int("max-results", 20, "maximum number of results (0 = all)")
	searchCmd.Flags().Bool("json", false, "output results as JSON")

	rootCmd.AddCommand(searchCmd)
}
