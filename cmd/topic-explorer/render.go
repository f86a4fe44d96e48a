// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/pdiddy/topic-explorer/internal/variant"
	"github.com/pdiddy/topic-explorer/pkg/types"
)

var (
	accent = lipgloss.Color("#00afaf")
	dim    = lipgloss.Color("#6e7681")

	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(accent)
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(accent).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	numberStyle = cellStyle.Align(lipgloss.Right)
	helpStyle   = lipgloss.NewStyle().Foreground(dim)
)

// renderTable draws rows under headers. Columns listed in numeric are
// right-aligned.
func renderTable(headers []string, rows [][]string, numeric ...int) string {
	right := make(map[int]bool, len(numeric))
	for _, c := range numeric {
		right[c] = true
	}
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(dim)).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case right[col]:
				return numberStyle
			default:
				return cellStyle
			}
		})
	return t.String()
}

// truncate cuts s to n runes, marking the cut.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// errNoVariants means nothing is loaded to browse.
var errNoVariants = errors.New("no variants available")

// noVariantsHint is printed by commands that show an empty view instead of
// failing when nothing is loaded.
func noVariantsHint() {
	fmt.Printf("No variants in %s. Run \"topic-explorer generate\" first.\n", explorerConfig().PrecomputeDir)
}

// openVariant loads the registry and selects the variant to browse: the
// --variant flag, then the remembered choice, then the first loaded variant.
func openVariant(cmd *cobra.Command) (*variant.Registry, string, []types.Record, error) {
	cfg := explorerConfig()
	reg, err := variant.Load(cfg, logger)
	if err != nil {
		return nil, "", nil, err
	}
	requested, _ := cmd.Flags().GetString("variant")
	name, err := reg.Select(variant.Selection{
		Requested: requested,
		Sticky:    variant.ReadSticky(cfg.PrecomputeDir),
	})
	if err != nil {
		return nil, "", nil, err
	}
	if name == variant.NoSelection {
		return nil, "", nil, fmt.Errorf("%w in %s: run \"topic-explorer generate\" first", errNoVariants, cfg.PrecomputeDir)
	}
	records, _ := reg.Table(name)
	return reg, name, records, nil
}

// addVariantFlag registers --variant on read commands.
func addVariantFlag(c *cobra.Command) {
	c.Flags().String("variant", "", "variant to browse (default: remembered choice, then keywords, tfidf_kmeans, sbert_kmeans)")
}

func heading(format string, args ...any) {
	fmt.Fprintln(os.Stdout, titleStyle.Render(fmt.Sprintf(format, args...)))
}
