// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package dataset reads and validates research-artifact tables.
// Implements: record schema validation (required columns, statistic
// coercion) for input tables and for persisted variant tables.
package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/pdiddy/topic-explorer/pkg/types"
)

// ErrInputNotFound is returned when the input table does not exist.
var ErrInputNotFound = errors.New("input table not found")

// SchemaError reports required columns absent from a table header.
type SchemaError struct {
	Missing []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("missing required columns: %s", strings.Join(e.Missing, ", "))
}

// ReadInput opens the table at path and returns its records with the three
// statistic columns coerced. Topic fields are left empty.
func ReadInput(path string, logger *zap.Logger) ([]types.Record, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	f, err := open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return Parse(f, types.RequiredColumns, logger.With(zap.String("table", path)))
}

// ReadTable opens a persisted variant table. It requires the output columns
// and parses topic_id strictly: a variant table with an unparsable topic_id
// is malformed.
func ReadTable(path string, logger *zap.Logger) ([]types.Record, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	f, err := open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return Parse(f, types.OutputColumns, logger.With(zap.String("table", path)))
}

func open(path string) (*os.File, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrInputNotFound, path)
		}
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	return f, nil
}

// Parse reads CSV from r. Every column in required must appear in the
// header; extra columns are ignored. When required includes the topic
// columns they are read into the records as well.
func Parse(r io.Reader, required []string, logger *zap.Logger) ([]types.Record, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, &SchemaError{Missing: append([]string{}, required...)}
		}
		return nil, fmt.Errorf("reading header: %w", err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}

	index := make(map[string]int, len(header))
	for i, name := range header {
		if _, dup := index[name]; !dup {
			index[name] = i
		}
	}

	var missing []string
	for _, col := range required {
		if _, ok := index[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, &SchemaError{Missing: missing}
	}

	_, withTopics := index[types.ColTopic]
	withTopics = withTopics && contains(required, types.ColTopic)

	c := newCoercer()
	var records []types.Record
	for line := 2; ; line++ {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading row %d: %w", line, err)
		}

		field := func(col string) string {
			i := index[col]
			if i >= len(row) {
				return ""
			}
			return row[i]
		}

		rec := types.Record{
			Title:           field(types.ColTitle),
			DOI:             field(types.ColDOI),
			LicenseID:       field(types.ColLicenseID),
			UniqueDownloads: c.coerce(types.ColUniqueDownloads, field(types.ColUniqueDownloads), logger),
			Downloads:       c.coerce(types.ColDownloads, field(types.ColDownloads), logger),
			Views:           c.coerce(types.ColViews, field(types.ColViews), logger),
		}

		if withTopics {
			id, err := strconv.Atoi(strings.TrimSpace(field(types.ColTopicID)))
			if err != nil {
				return nil, fmt.Errorf("row %d: invalid %s %q", line, types.ColTopicID, field(types.ColTopicID))
			}
			rec.TopicID = id
			rec.Topic = field(types.ColTopic)
			if rec.Topic == "" {
				return nil, fmt.Errorf("row %d: empty %s", line, types.ColTopic)
			}
		}

		records = append(records, rec)
	}

	c.report(logger)
	return records, nil
}

// Apply writes assignments into records, index by index. Records that are
// already labeled are rejected: the topic columns are written once.
func Apply(records []types.Record, assignments []types.Assignment) error {
	if len(records) != len(assignments) {
		return fmt.Errorf("assignment count %d does not match record count %d", len(assignments), len(records))
	}
	for i := range records {
		if records[i].Labeled() {
			return fmt.Errorf("record %d already labeled as %q", i, records[i].Topic)
		}
		if assignments[i].Topic == "" {
			return fmt.Errorf("record %d: empty topic assignment", i)
		}
	}
	for i, a := range assignments {
		records[i].TopicID = a.TopicID
		records[i].Topic = a.Topic
	}
	return nil
}

// Titles returns the record titles in order.
func Titles(records []types.Record) []string {
	titles := make([]string, len(records))
	for i, r := range records {
		titles[i] = r.Title
	}
	return titles
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
