// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package variant persists labeled tables and serves them back.
// Implements: the variant writer (table file plus manifest entry) and the
// variant registry (eager load, selection policy, sticky choice).
package variant

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/pdiddy/topic-explorer/internal/dataset"
	"github.com/pdiddy/topic-explorer/pkg/types"
)

var (
	// ErrSchemaWrite is returned when a table without assigned topic
	// columns is written.
	ErrSchemaWrite = errors.New("cannot write variant without topic/topic_id")

	// ErrInvalidName is returned for variant names that cannot name a file.
	ErrInvalidName = errors.New("invalid variant name")
)

// Filename returns the table filename for a variant.
func Filename(name string) string {
	return name + ".csv"
}

// ValidName reports whether name can be used as a variant name: non-empty,
// no path separators, not a dot name.
func ValidName(name string) bool {
	return name != "" && name != "." && name != ".." &&
		!strings.ContainsAny(name, `/\`) && strings.TrimSpace(name) == name
}

// Writer persists variant tables into one directory and records them in
// the manifest there.
type Writer struct {
	Dir          string
	ManifestFile string
	Logger       *zap.Logger
}

// NewWriter returns a writer for cfg's precompute directory.
func NewWriter(cfg types.ExplorerConfig, logger *zap.Logger) *Writer {
	cfg = cfg.WithDefaults()
	return &Writer{Dir: cfg.PrecomputeDir, ManifestFile: cfg.ManifestFile, Logger: logger}
}

// ManifestPath returns the manifest location.
func (w *Writer) ManifestPath() string {
	return filepath.Join(w.Dir, w.ManifestFile)
}

// Write stores records as <name>.csv with the output columns in fixed order
// and sets manifest.variants[name]. Re-writing a variant replaces its file
// and its own entry only. It returns the table path.
func (w *Writer) Write(name string, records []types.Record) (string, error) {
	logger := w.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	if !ValidName(name) {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, name)
	}

	var buf bytes.Buffer
	if err := dataset.Write(&buf, records); err != nil {
		if errors.Is(err, dataset.ErrUnlabeled) {
			return "", fmt.Errorf("%w: %v", ErrSchemaWrite, err)
		}
		return "", fmt.Errorf("encoding %s: %w", name, err)
	}

	if err := os.MkdirAll(w.Dir, 0o755); err != nil {
		return "", fmt.Errorf("creating output directory: %w", err)
	}
	filename := Filename(name)
	path := filepath.Join(w.Dir, filename)
	if err := writeFileAtomic(path, buf.Bytes()); err != nil {
		return "", err
	}
	if err := UpdateManifest(w.ManifestPath(), name, filename, logger); err != nil {
		return "", fmt.Errorf("updating manifest: %w", err)
	}

	logger.Info("wrote variant",
		zap.String("variant", name),
		zap.String("path", path),
		zap.Int("records", len(records)))
	return path, nil
}
