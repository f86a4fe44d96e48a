// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pipeline runs one labeling strategy end to end.
// Implements: read input table, label titles, apply assignments, and
// persist the result as a named variant.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"time"

	"go.uber.org/zap"

	"github.com/pdiddy/topic-explorer/internal/dataset"
	"github.com/pdiddy/topic-explorer/internal/variant"
	"github.com/pdiddy/topic-explorer/pkg/types"
)

// DefaultInput is the input table read when none is configured.
const DefaultInput = "data/zenodo_top500.csv"

// Labeler assigns a topic to every title. Assignments are returned in input
// order, one per title.
type Labeler interface {
	// Name is the variant name the labels are stored under.
	Name() string
	Label(ctx context.Context, titles []string) ([]types.Assignment, error)
}

// Config controls a run.
type Config struct {
	// Input is the source table (default data/zenodo_top500.csv).
	Input string

	// Variant overrides the labeler's name for the stored variant.
	Variant string

	Explorer types.ExplorerConfig
}

// Result summarizes a completed run.
type Result struct {
	Variant  string
	Path     string
	Records  int
	Topics   int
	Duration time.Duration
}

// Run labels the input table with labeler and writes it as a variant.
// Progress lines go to w.
func Run(ctx context.Context, labeler Labeler, cfg Config, w io.Writer, logger *zap.Logger) (*Result, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if w == nil {
		w = io.Discard
	}
	if cfg.Input == "" {
		cfg.Input = DefaultInput
	}
	name := cfg.Variant
	if name == "" {
		name = labeler.Name()
	}
	if !variant.ValidName(name) {
		return nil, fmt.Errorf("%w: %q", variant.ErrInvalidName, name)
	}
	start := time.Now()

	records, err := dataset.ReadInput(cfg.Input, logger)
	if err != nil {
		return nil, err
	}
	fmt.Fprintf(w, "Read %d records from %s\n", len(records), cfg.Input)

	assignments, err := labeler.Label(ctx, dataset.Titles(records))
	if err != nil {
		return nil, fmt.Errorf("labeling %s: %w", name, err)
	}
	if err := dataset.Apply(records, assignments); err != nil {
		return nil, fmt.Errorf("applying %s labels: %w", name, err)
	}

	topics := make(map[string]struct{})
	for _, a := range assignments {
		topics[a.Topic] = struct{}{}
	}

	writer := variant.NewWriter(cfg.Explorer, logger)
	path, err := writer.Write(name, records)
	if err != nil {
		return nil, err
	}

	res := &Result{
		Variant:  name,
		Path:     path,
		Records:  len(records),
		Topics:   len(topics),
		Duration: time.Since(start),
	}
	fmt.Fprintf(w, "Wrote %s: %d records, %d topics -> %s\n", name, res.Records, res.Topics, path)
	logger.Info("generated variant",
		zap.String("variant", name),
		zap.Int("records", res.Records),
		zap.Int("topics", res.Topics),
		zap.Duration("duration", res.Duration))
	return res, nil
}
