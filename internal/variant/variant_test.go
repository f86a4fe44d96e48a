// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package variant

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/pdiddy/topic-explorer/pkg/types"
)

func labeled(topics ...string) []types.Record {
	records := make([]types.Record, len(topics))
	for i, topic := range topics {
		records[i] = types.Record{
			Title:     fmt.Sprintf("title %d", i),
			DOI:       fmt.Sprintf("10.1/%d", i),
			LicenseID: "cc-by-4.0",
			Downloads: int64(10 * (i + 1)),
			Views:     int64(i),
			TopicID:   len(topic) % 7,
			Topic:     topic,
		}
	}
	return records
}

func newWriter(t *testing.T) *Writer {
	t.Helper()
	return NewWriter(types.ExplorerConfig{PrecomputeDir: t.TempDir()}, zap.NewNop())
}

func readVariants(t *testing.T, path string) map[string]string {
	t.Helper()
	m, err := ReadManifest(path)
	require.NoError(t, err)
	return m.Variants
}

func TestWriteCreatesTableAndManifest(t *testing.T) {
	w := newWriter(t)
	path, err := w.Write("keywords", labeled("AI/ML", "Biology"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(w.Dir, "keywords.csv"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	firstLine := strings.SplitN(string(data), "\n", 2)[0]
	assert.Equal(t, strings.Join(types.OutputColumns, ","), firstLine)

	assert.Equal(t, map[string]string{"keywords": "keywords.csv"}, readVariants(t, w.ManifestPath()))
}

func TestWriteIsNonDestructive(t *testing.T) {
	w := newWriter(t)
	_, err := w.Write("a", labeled("x"))
	require.NoError(t, err)
	_, err = w.Write("b", labeled("y"))
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"a": "a.csv", "b": "b.csv"}, readVariants(t, w.ManifestPath()))

	// Re-running a variant overwrites only its own entry and file.
	_, err = w.Write("a", labeled("z", "z"))
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"a": "a.csv", "b": "b.csv"}, readVariants(t, w.ManifestPath()))

	reg, err := Load(types.ExplorerConfig{PrecomputeDir: w.Dir}, nil)
	require.NoError(t, err)
	table, ok := reg.Table("a")
	require.True(t, ok)
	assert.Len(t, table, 2)
}

func TestWriteRejectsUnlabeled(t *testing.T) {
	w := newWriter(t)
	records := labeled("x")
	records = append(records, types.Record{Title: "no topic"})
	_, err := w.Write("bad", records)
	assert.ErrorIs(t, err, ErrSchemaWrite)

	_, statErr := os.Stat(filepath.Join(w.Dir, "bad.csv"))
	assert.True(t, os.IsNotExist(statErr))
	_, statErr = os.Stat(w.ManifestPath())
	assert.True(t, os.IsNotExist(statErr), "manifest untouched")
}

func TestWriteRejectsInvalidName(t *testing.T) {
	w := newWriter(t)
	for _, name := range []string{"", "..", "a/b", " pad"} {
		_, err := w.Write(name, labeled("x"))
		assert.ErrorIs(t, err, ErrInvalidName, "name %q", name)
	}
}

func TestUpdateManifestPreservesExtraKeys(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "MANIFEST.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"generated_by":"ci","variants":{"old":"old.csv"}}`), 0o644))

	require.NoError(t, UpdateManifest(path, "new", "new.csv", nil))

	var top map[string]any
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, &top))
	assert.Equal(t, "ci", top["generated_by"])
	assert.Equal(t, map[string]any{"old": "old.csv", "new": "new.csv"}, top["variants"])
}

func TestUpdateManifestResetsCorrupt(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "MANIFEST.json")
	require.NoError(t, os.WriteFile(path, []byte(`{not json`), 0o644))

	core, logs := observer.New(zapcore.WarnLevel)
	require.NoError(t, UpdateManifest(path, "keywords", "keywords.csv", zap.New(core)))
	assert.Equal(t, 1, logs.FilterMessage("resetting corrupt manifest").Len())
	assert.Equal(t, map[string]string{"keywords": "keywords.csv"}, readVariants(t, path))
}

func TestUpdateManifestConcurrentWriters(t *testing.T) {
	path := filepath.Join(t.TempDir(), "MANIFEST.json")
	const n = 16
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			name := fmt.Sprintf("v%02d", i)
			errs <- UpdateManifest(path, name, name+".csv", nil)
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}
	assert.Len(t, readVariants(t, path), n)
}

func TestReadManifestMissing(t *testing.T) {
	m, err := ReadManifest(filepath.Join(t.TempDir(), "none.json"))
	require.NoError(t, err)
	assert.Empty(t, m.Variants)
}

func TestReadManifestWrongShape(t *testing.T) {
	path := filepath.Join(t.TempDir(), "MANIFEST.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"variants":["a"]}`), 0o644))
	_, err := ReadManifest(path)
	assert.ErrorIs(t, err, ErrCorruptManifest)
}

func TestLoadSkipsBrokenVariants(t *testing.T) {
	w := newWriter(t)
	_, err := w.Write("keywords", labeled("AI/ML", "Other"))
	require.NoError(t, err)
	require.NoError(t, UpdateManifest(w.ManifestPath(), "ghost", "ghost.csv", nil))
	require.NoError(t, os.WriteFile(filepath.Join(w.Dir, "plain.csv"),
		[]byte(strings.Join(types.RequiredColumns, ",")+"\na,b,c,1,2,3\n"), 0o644))
	require.NoError(t, UpdateManifest(w.ManifestPath(), "plain", "plain.csv", nil))

	core, logs := observer.New(zapcore.WarnLevel)
	reg, err := Load(types.ExplorerConfig{PrecomputeDir: w.Dir}, zap.New(core))
	require.NoError(t, err)

	assert.Equal(t, []string{"keywords"}, reg.Names())
	assert.Equal(t, 2, logs.FilterMessage("could not load variant").Len())
	skipped := reg.Skipped()
	require.Len(t, skipped, 2)
	assert.Equal(t, "ghost", skipped[0].Name)
	assert.Equal(t, "plain", skipped[1].Name)

	v, ok := reg.Get("keywords")
	require.True(t, ok)
	assert.Equal(t, "keywords.csv", v.File)
	assert.Equal(t, labeled("AI/ML", "Other"), v.Records)
}

func TestLoadRejectsFilesOutsideDir(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "precompute")
	w := NewWriter(types.ExplorerConfig{PrecomputeDir: dir}, nil)
	_, err := w.Write("keywords", labeled("AI/ML"))
	require.NoError(t, err)

	// A valid table one level up must not be reachable through the manifest.
	outside, err := os.ReadFile(filepath.Join(dir, "keywords.csv"))
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(root, "x.csv"), outside, 0o644))
	require.NoError(t, UpdateManifest(w.ManifestPath(), "escape", "../x.csv", nil))
	require.NoError(t, UpdateManifest(w.ManifestPath(), "absolute", filepath.Join(root, "x.csv"), nil))

	core, logs := observer.New(zapcore.WarnLevel)
	reg, err := Load(types.ExplorerConfig{PrecomputeDir: dir}, zap.New(core))
	require.NoError(t, err)

	assert.Equal(t, []string{"keywords"}, reg.Names())
	assert.Equal(t, 2, logs.FilterMessage("could not load variant").Len())
	for _, s := range reg.Skipped() {
		assert.ErrorIs(t, s.Err, ErrUnsafeFile, s.Name)
	}
}

func TestLoadWithoutManifest(t *testing.T) {
	reg, err := Load(types.ExplorerConfig{PrecomputeDir: t.TempDir()}, nil)
	require.NoError(t, err)
	assert.Zero(t, reg.Len())

	sel, err := reg.Select(Selection{})
	require.NoError(t, err)
	assert.Equal(t, NoSelection, sel)
}

func registryOf(names ...string) *Registry {
	vs := make([]*Variant, len(names))
	for i, n := range names {
		vs[i] = &Variant{Name: n, File: Filename(n)}
	}
	return New(vs...)
}

func TestNamesOrder(t *testing.T) {
	reg := registryOf("zeta", "sbert_kmeans", "alpha", "keywords")
	assert.Equal(t, []string{"keywords", "sbert_kmeans", "alpha", "zeta"}, reg.Names())
}

func TestSelect(t *testing.T) {
	reg := registryOf("keywords", "tfidf_kmeans")

	tests := []struct {
		name string
		sel  Selection
		want string
		err  error
	}{
		{"default is first preferred", Selection{}, "keywords", nil},
		{"explicit request wins", Selection{Requested: "tfidf_kmeans", Sticky: "keywords"}, "tfidf_kmeans", nil},
		{"sticky used when loaded", Selection{Sticky: "tfidf_kmeans"}, "tfidf_kmeans", nil},
		{"unknown sticky ignored", Selection{Sticky: "gone"}, "keywords", nil},
		{"unknown request rejected", Selection{Requested: "sbert_kmeans"}, NoSelection, ErrUnknownVariant},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := reg.Select(tt.sel)
			if tt.err != nil {
				assert.ErrorIs(t, err, tt.err)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.want, got)
		})
	}

	got, err := registryOf("b_custom", "a_custom").Select(Selection{})
	require.NoError(t, err)
	assert.Equal(t, "a_custom", got, "no preferred name: lexicographic")
}

func TestSticky(t *testing.T) {
	dir := t.TempDir()
	reg := registryOf("keywords", "tfidf_kmeans")
	assert.Empty(t, ReadSticky(dir))

	assert.ErrorIs(t, reg.WriteSticky(dir, "nope"), ErrUnknownVariant)
	require.NoError(t, reg.WriteSticky(dir, "tfidf_kmeans"))
	assert.Equal(t, "tfidf_kmeans", ReadSticky(dir))

	got, err := reg.Select(Selection{Sticky: ReadSticky(dir)})
	require.NoError(t, err)
	assert.Equal(t, "tfidf_kmeans", got)
}
