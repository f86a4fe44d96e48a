// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/topic-explorer/internal/variant"
	"github.com/pdiddy/topic-explorer/pkg/types"
)

func usePrecomputeDir(t *testing.T, dir string) {
	t.Helper()
	viper.Set("precompute_dir", dir)
	t.Cleanup(func() { viper.Set("precompute_dir", "") })
}

func TestTopicsWithNoVariants(t *testing.T) {
	usePrecomputeDir(t, t.TempDir())

	require.NoError(t, runTopics(topicsCmd, nil), "an empty precompute dir is an empty view")

	_, _, _, err := openVariant(topicCmd)
	assert.ErrorIs(t, err, errNoVariants, "drill-down still reports nothing to browse")
}

func TestTopicsWithVariant(t *testing.T) {
	dir := t.TempDir()
	usePrecomputeDir(t, dir)

	w := variant.NewWriter(types.ExplorerConfig{PrecomputeDir: dir}, nil)
	_, err := w.Write("keywords", []types.Record{
		{Title: "Ocean data", DOI: "10.1/a", Downloads: 5, Topic: "Earth Science", TopicID: 0},
	})
	require.NoError(t, err)

	_, name, records, err := openVariant(topicsCmd)
	require.NoError(t, err)
	assert.Equal(t, "keywords", name)
	assert.Len(t, records, 1)
	require.NoError(t, runTopics(topicsCmd, nil))
}
