// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package variant

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/pdiddy/topic-explorer/internal/dataset"
	"github.com/pdiddy/topic-explorer/pkg/types"
)

// NoSelection is what Select returns when no variant is loaded.
const NoSelection = ""

// ErrUnknownVariant is returned when a caller names a variant that is not
// loaded.
var ErrUnknownVariant = errors.New("unknown variant")

// ErrUnsafeFile is recorded for manifest entries whose filename would
// resolve outside the precompute directory.
var ErrUnsafeFile = errors.New("manifest filename outside precompute directory")

// Preferred is the default ordering of well-known variants.
var Preferred = []string{"keywords", "tfidf_kmeans", "sbert_kmeans"}

// Variant is one loaded labeled table. Records must not be modified.
type Variant struct {
	Name    string
	File    string
	Records []types.Record
}

// Skip records a manifest entry that failed to load.
type Skip struct {
	Name string
	File string
	Err  error
}

// Selection carries the optional sources a variant choice may come from.
// Requested is an explicit request; Sticky is a remembered earlier choice.
type Selection struct {
	Requested string
	Sticky    string
}

// Registry holds every variant loaded at startup. It is read-only after
// Load and safe for concurrent readers.
type Registry struct {
	variants map[string]*Variant
	names    []string
	skipped  []Skip
}

// Load reads the manifest in cfg.PrecomputeDir and eagerly loads every
// listed table. A missing manifest gives an empty registry. Tables that are
// missing or malformed are skipped with a warning.
func Load(cfg types.ExplorerConfig, logger *zap.Logger) (*Registry, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	cfg = cfg.WithDefaults()
	manifestPath := filepath.Join(cfg.PrecomputeDir, cfg.ManifestFile)

	m, err := ReadManifest(manifestPath)
	if errors.Is(err, ErrCorruptManifest) {
		logger.Warn("ignoring corrupt manifest", zap.String("path", manifestPath), zap.Error(err))
		m, err = &Manifest{}, nil
	}
	if err != nil {
		return nil, err
	}

	r := &Registry{variants: make(map[string]*Variant, len(m.Variants))}
	for _, name := range sortedKeys(m.Variants) {
		file := m.Variants[name]
		var records []types.Record
		var err error
		if ValidName(file) {
			path := filepath.Join(cfg.PrecomputeDir, file)
			records, err = dataset.ReadTable(path, logger.With(zap.String("variant", name)))
		} else {
			err = fmt.Errorf("%w: %q", ErrUnsafeFile, file)
		}
		if err == nil && records == nil {
			records = []types.Record{}
		}
		if err != nil {
			logger.Warn("could not load variant",
				zap.String("variant", name),
				zap.String("file", file),
				zap.Error(err))
			r.skipped = append(r.skipped, Skip{Name: name, File: file, Err: err})
			continue
		}
		r.variants[name] = &Variant{Name: name, File: file, Records: records}
		logger.Debug("loaded variant", zap.String("variant", name), zap.Int("records", len(records)))
	}
	r.names = order(r.variants)
	return r, nil
}

// New builds a registry from already materialized variants.
func New(variants ...*Variant) *Registry {
	r := &Registry{variants: make(map[string]*Variant, len(variants))}
	for _, v := range variants {
		r.variants[v.Name] = v
	}
	r.names = order(r.variants)
	return r
}

func order(variants map[string]*Variant) []string {
	names := make([]string, 0, len(variants))
	for _, p := range Preferred {
		if _, ok := variants[p]; ok {
			names = append(names, p)
		}
	}
	var rest []string
	for name := range variants {
		if !isPreferred(name) {
			rest = append(rest, name)
		}
	}
	sort.Strings(rest)
	return append(names, rest...)
}

func isPreferred(name string) bool {
	for _, p := range Preferred {
		if p == name {
			return true
		}
	}
	return false
}

// Names returns loaded variant names: preferred names first, in preferred
// order, then the rest lexicographically.
func (r *Registry) Names() []string {
	return append([]string(nil), r.names...)
}

// Len returns the number of loaded variants.
func (r *Registry) Len() int { return len(r.names) }

// Skipped returns the manifest entries that failed to load.
func (r *Registry) Skipped() []Skip {
	return append([]Skip(nil), r.skipped...)
}

// Get returns a loaded variant.
func (r *Registry) Get(name string) (*Variant, bool) {
	v, ok := r.variants[name]
	return v, ok
}

// Table returns the records of a loaded variant.
func (r *Registry) Table(name string) ([]types.Record, bool) {
	v, ok := r.variants[name]
	if !ok {
		return nil, false
	}
	return v.Records, true
}

// Select picks the variant to serve. An explicit request must name a
// loaded variant or ErrUnknownVariant is returned. Otherwise a loaded
// sticky choice wins, then the first name in Names order. NoSelection
// with a nil error means nothing is loaded.
func (r *Registry) Select(sel Selection) (string, error) {
	if sel.Requested != "" {
		if _, ok := r.variants[sel.Requested]; !ok {
			return NoSelection, fmt.Errorf("%w: %q", ErrUnknownVariant, sel.Requested)
		}
		return sel.Requested, nil
	}
	if _, ok := r.variants[sel.Sticky]; ok && sel.Sticky != "" {
		return sel.Sticky, nil
	}
	if len(r.names) == 0 {
		return NoSelection, nil
	}
	return r.names[0], nil
}

// Remember validates a choice to be remembered as the sticky selection.
func (r *Registry) Remember(name string) error {
	if _, ok := r.variants[name]; !ok {
		return fmt.Errorf("%w: %q", ErrUnknownVariant, name)
	}
	return nil
}

// StickyFile is where the remembered choice is kept inside the precompute
// directory.
const StickyFile = ".selected-variant"

// ReadSticky returns the remembered choice in dir, or "" if none.
func ReadSticky(dir string) string {
	data, err := os.ReadFile(filepath.Join(dir, StickyFile))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}

// WriteSticky remembers name after validating it against r.
func (r *Registry) WriteSticky(dir, name string) error {
	if err := r.Remember(name); err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", dir, err)
	}
	return writeFileAtomic(filepath.Join(dir, StickyFile), []byte(name+"\n"))
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
