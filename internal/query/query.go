// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package query filters, formats, and exports variant tables.
// Implements: topic filtering with download/view ranking, display
// formatting, CSV export of a whole variant or one topic, and full-text
// title search.
package query

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"unicode"

	"github.com/dustin/go-humanize"

	"github.com/pdiddy/topic-explorer/internal/dataset"
	"github.com/pdiddy/topic-explorer/pkg/types"
)

// ErrTopicNotFound is returned when no record carries the requested topic.
var ErrTopicNotFound = errors.New("topic not found")

// maxFilenameChars bounds the topic-derived part of an export filename.
const maxFilenameChars = 80

// FilterByTopic returns the records whose topic equals topic exactly,
// ordered by descending downloads, then descending views. Ties keep table
// order. The input is not modified.
func FilterByTopic(records []types.Record, topic string) ([]types.Record, error) {
	out := selectTopic(records, topic)
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: %q", ErrTopicNotFound, topic)
	}
	sortByPopularity(out)
	return out, nil
}

func selectTopic(records []types.Record, topic string) []types.Record {
	var out []types.Record
	for _, r := range records {
		if r.Topic == topic {
			out = append(out, r)
		}
	}
	return out
}

func sortByPopularity(records []types.Record) {
	sort.SliceStable(records, func(i, j int) bool {
		if records[i].Downloads != records[j].Downloads {
			return records[i].Downloads > records[j].Downloads
		}
		return records[i].Views > records[j].Views
	})
}

// Row is a record formatted for display. Statistics carry thousands
// separators.
type Row struct {
	Title           string `json:"metadata.title"`
	DOI             string `json:"links.doi"`
	Downloads       string `json:"stats.downloads"`
	Views           string `json:"stats.views"`
	UniqueDownloads string `json:"stats.unique_downloads"`
	LicenseID       string `json:"metadata.license.id"`
}

// DisplayRows formats records for display, preserving order.
func DisplayRows(records []types.Record) []Row {
	rows := make([]Row, len(records))
	for i, r := range records {
		rows[i] = Row{
			Title:           r.Title,
			DOI:             r.DOI,
			Downloads:       humanize.Comma(r.Downloads),
			Views:           humanize.Comma(r.Views),
			UniqueDownloads: humanize.Comma(r.UniqueDownloads),
			LicenseID:       r.LicenseID,
		}
	}
	return rows
}

// VariantFilename is the download name of a full variant export.
func VariantFilename(variant string) string {
	return variant + ".csv"
}

// TopicFilename derives a download name from a topic: every character that
// is not a letter or digit becomes "_", the result is cut to 80
// characters, and an empty result becomes "topic".
func TopicFilename(topic string) string {
	var b strings.Builder
	n := 0
	for _, r := range topic {
		if n == maxFilenameChars {
			break
		}
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		} else {
			b.WriteByte('_')
		}
		n++
	}
	safe := b.String()
	if safe == "" {
		safe = "topic"
	}
	return "topic_" + safe + ".csv"
}

// ExportVariant writes the whole table as CSV.
func ExportVariant(w io.Writer, records []types.Record) error {
	if err := dataset.Write(w, records); err != nil {
		return fmt.Errorf("exporting variant: %w", err)
	}
	return nil
}

// ExportTopic writes the records of one topic as CSV, in table order, and
// returns the download filename.
func ExportTopic(w io.Writer, records []types.Record, topic string) (string, error) {
	sub := selectTopic(records, topic)
	if len(sub) == 0 {
		return "", fmt.Errorf("%w: %q", ErrTopicNotFound, topic)
	}
	if err := dataset.Write(w, sub); err != nil {
		return "", fmt.Errorf("exporting topic: %w", err)
	}
	return TopicFilename(topic), nil
}
