// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package cluster

import (
	"context"
	"errors"
	"hash/fnv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap/zaptest"

	"github.com/pdiddy/topic-explorer/pkg/types"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

var twoGroups = []string{
	"Ocean temperature records",
	"Ocean salinity records",
	"Ocean temperature salinity",
	"Galaxy survey images",
	"Galaxy survey spectra",
	"Galaxy images spectra",
}

// assertBijective checks that topic names and ids map one-to-one.
func assertBijective(t *testing.T, got []types.Assignment) {
	t.Helper()
	byID := map[int]string{}
	byName := map[string]int{}
	for _, a := range got {
		require.NotEmpty(t, a.Topic)
		if name, ok := byID[a.TopicID]; ok {
			assert.Equal(t, name, a.Topic)
		}
		if id, ok := byName[a.Topic]; ok {
			assert.Equal(t, id, a.TopicID)
		}
		byID[a.TopicID] = a.Topic
		byName[a.Topic] = a.TopicID
	}
	assert.Equal(t, len(byID), len(byName))
}

func TestFrequencyLabeler(t *testing.T) {
	l := NewFrequencyLabeler(types.LabelingConfig{NClusters: 2}, zaptest.NewLogger(t))
	assert.Equal(t, FrequencyVariant, l.Name())

	got, err := l.Label(context.Background(), twoGroups)
	require.NoError(t, err)
	require.Len(t, got, len(twoGroups))

	assert.Equal(t, got[0].TopicID, got[1].TopicID)
	assert.Equal(t, got[0].TopicID, got[2].TopicID)
	assert.Equal(t, got[3].TopicID, got[4].TopicID)
	assert.Equal(t, got[3].TopicID, got[5].TopicID)
	assert.NotEqual(t, got[0].TopicID, got[3].TopicID)
	assert.Contains(t, got[0].Topic, "ocean")
	assert.Contains(t, got[3].Topic, "galaxy")
	assertBijective(t, got)
}

func TestFrequencyLabelerDeterministic(t *testing.T) {
	titles := append([]string{
		"Deep learning for protein folding",
		"Protein structure dataset v2.1",
		"COVID-19 patient outcomes",
		"Clinical trial registry",
		"",
	}, twoGroups...)
	cfg := types.LabelingConfig{NClusters: 4, Seed: 42}

	a, err := NewFrequencyLabeler(cfg, nil).Label(context.Background(), titles)
	require.NoError(t, err)
	b, err := NewFrequencyLabeler(cfg, nil).Label(context.Background(), titles)
	require.NoError(t, err)
	assert.Equal(t, a, b)
	assertBijective(t, a)
}

func TestFrequencyLabelerMoreClustersThanTitles(t *testing.T) {
	l := NewFrequencyLabeler(types.LabelingConfig{NClusters: 5}, nil)
	got, err := l.Label(context.Background(), []string{"soil moisture", "soil moisture", "star catalog"})
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, got[0], got[1])
	for _, a := range got {
		assert.GreaterOrEqual(t, a.TopicID, 0)
		assert.Less(t, a.TopicID, 5)
	}
	assertBijective(t, got)
}

func TestFrequencyLabelerNoVocabulary(t *testing.T) {
	l := NewFrequencyLabeler(types.LabelingConfig{NClusters: 2}, nil)
	got, err := l.Label(context.Background(), []string{"", "the", "a of"})
	require.NoError(t, err)
	for _, a := range got {
		assert.Equal(t, Fallback(a.TopicID), a.Topic)
	}
}

// keywordEncoder maps titles onto two axes by a marker word.
type keywordEncoder struct{}

func (keywordEncoder) ID() string { return "fake" }

func (keywordEncoder) Encode(_ context.Context, texts []string) ([][]float64, error) {
	out := make([][]float64, len(texts))
	for i, t := range texts {
		if strings.Contains(strings.ToLower(t), "ocean") {
			out[i] = []float64{1, 0}
		} else {
			out[i] = []float64{0, 1}
		}
	}
	return out, nil
}

type failingEncoder struct{}

func (failingEncoder) ID() string { return "broken" }

func (failingEncoder) Encode(context.Context, []string) ([][]float64, error) {
	return nil, errors.New("service unavailable")
}

func TestEmbeddingLabelerNamesFromMemberTitles(t *testing.T) {
	l := NewEmbeddingLabeler(keywordEncoder{}, types.LabelingConfig{NClusters: 2}, zaptest.NewLogger(t))
	assert.Equal(t, EmbeddingVariant, l.Name())

	titles := []string{
		"Ocean temperature records",
		"Galaxy survey images",
		"Ocean salinity records",
		"Galaxy survey spectra",
	}
	got, err := l.Label(context.Background(), titles)
	require.NoError(t, err)

	assert.Equal(t, "ocean, records", got[0].Topic)
	assert.Equal(t, "ocean, records", got[2].Topic)
	assert.Equal(t, "galaxy, galaxy survey", got[1].Topic)
	assert.Equal(t, "galaxy, galaxy survey", got[3].Topic)
	assertBijective(t, got)
}

// hashEncoder spreads titles over four axes by hashing them, so equal titles
// share a vector and distinct titles mostly do not.
type hashEncoder struct{}

func (hashEncoder) ID() string { return "hash" }

func (hashEncoder) Encode(_ context.Context, texts []string) ([][]float64, error) {
	out := make([][]float64, len(texts))
	for i, text := range texts {
		h := fnv.New64a()
		h.Write([]byte(text))
		sum := h.Sum64()
		v := make([]float64, 4)
		for d := range v {
			v[d] = float64((sum >> (16 * d)) & 0xffff)
		}
		out[i] = v
	}
	return out, nil
}

func TestEmbeddingLabelerDeterministic(t *testing.T) {
	subjects := []string{"ocean", "galaxy", "protein", "soil", "patient", "robot", "quantum", "census"}
	kinds := []string{"records", "survey", "images", "spectra"}
	var titles []string
	for _, s := range subjects {
		for _, k := range kinds {
			titles = append(titles, s+" "+k)
		}
	}
	titles = append(titles, "", "  ")
	cfg := types.LabelingConfig{NClusters: 12, Seed: 42}

	a, err := NewEmbeddingLabeler(hashEncoder{}, cfg, nil).Label(context.Background(), titles)
	require.NoError(t, err)
	b, err := NewEmbeddingLabeler(hashEncoder{}, cfg, nil).Label(context.Background(), titles)
	require.NoError(t, err)
	require.Len(t, a, len(titles))
	assert.Equal(t, a, b)
	assertBijective(t, a)
}

func TestEmbeddingLabelerEncoderError(t *testing.T) {
	l := NewEmbeddingLabeler(failingEncoder{}, types.LabelingConfig{NClusters: 2}, nil)
	_, err := l.Label(context.Background(), []string{"x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "service unavailable")
}

func TestWithName(t *testing.T) {
	l := NewFrequencyLabeler(types.LabelingConfig{}, nil).WithName("tfidf_kmeans_k20")
	assert.Equal(t, "tfidf_kmeans_k20", l.Name())
}

func TestJoinTop(t *testing.T) {
	assert.Equal(t, "", JoinTop(nil))
	assert.Equal(t, "ocean", JoinTop([]string{"ocean"}))
	assert.Equal(t, "ocean, climate", JoinTop([]string{"ocean", "climate", "data"}))
}

func TestDisambiguate(t *testing.T) {
	got := Disambiguate([]string{"ocean, data", "galaxy", "ocean, data", "Topic 3"})
	assert.Equal(t, []string{"ocean, data #0", "galaxy", "ocean, data #2", "Topic 3"}, got)

	// A suffixed name that collides with an existing one is suffixed again.
	got = Disambiguate([]string{"a", "a", "a #1"})
	assert.Len(t, got, 3)
	seen := map[string]bool{}
	for _, n := range got {
		assert.False(t, seen[n], "duplicate %q", n)
		seen[n] = true
	}
}
