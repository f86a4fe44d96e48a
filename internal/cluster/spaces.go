// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package cluster

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/pdiddy/topic-explorer/internal/encoder"
	"github.com/pdiddy/topic-explorer/internal/textproc"
	"github.com/pdiddy/topic-explorer/internal/tfidf"
	"github.com/pdiddy/topic-explorer/pkg/types"
)

// Variant names for the two spaces.
const (
	FrequencyVariant = "tfidf_kmeans"
	EmbeddingVariant = "sbert_kmeans"
)

// Vocabulary caps.
const (
	FrequencyFeatures = 8000
	NamingFeatures    = 3000
)

// topTerms is how many ranked terms a Namer considers.
const topTerms = 3

// FrequencySpace embeds normalized titles as TF-IDF rows over unigrams and
// bigrams with English stop words removed. Clusters are named from their
// centroid's heaviest terms.
type FrequencySpace struct {
	// MaxFeatures caps the vocabulary (default 8000).
	MaxFeatures int
}

// NewFrequencyLabeler returns the TF-IDF clustering labeler.
func NewFrequencyLabeler(cfg types.LabelingConfig, logger *zap.Logger) *Labeler {
	return NewLabeler(FrequencySpace{}, cfg, logger)
}

// Name implements Space.
func (FrequencySpace) Name() string { return FrequencyVariant }

// Vectors implements Space.
func (s FrequencySpace) Vectors(_ context.Context, titles []string) ([][]float64, Namer, error) {
	maxFeatures := s.MaxFeatures
	if maxFeatures <= 0 {
		maxFeatures = FrequencyFeatures
	}
	docs := make([]string, len(titles))
	for i, t := range titles {
		docs[i] = textproc.NormalizeTitle(t)
	}
	m := tfidf.Vectorizer{
		MinN:        1,
		MaxN:        2,
		MaxFeatures: maxFeatures,
		StopWords:   textproc.EnglishStopWords(),
	}.Fit(docs)
	return m.Rows, centroidNamer{terms: m.Terms}, nil
}

type centroidNamer struct {
	terms []string
}

func (n centroidNamer) Name(_ int, _ []int, centroid []float64) string {
	return JoinTop(tfidf.TopTerms(centroid, n.terms, topTerms))
}

// EmbeddingSpace embeds raw titles with a sentence encoder. Embedding
// dimensions carry no meaning, so each cluster is named by a fresh TF-IDF
// fit over its own member titles.
type EmbeddingSpace struct {
	Encoder encoder.Encoder

	// NamingFeatures caps the per-cluster vocabulary (default 3000).
	NamingFeatures int
}

// NewEmbeddingLabeler returns the sentence-embedding clustering labeler.
func NewEmbeddingLabeler(enc encoder.Encoder, cfg types.LabelingConfig, logger *zap.Logger) *Labeler {
	return NewLabeler(EmbeddingSpace{Encoder: enc}, cfg, logger)
}

// Name implements Space.
func (EmbeddingSpace) Name() string { return EmbeddingVariant }

// Vectors implements Space.
func (s EmbeddingSpace) Vectors(ctx context.Context, titles []string) ([][]float64, Namer, error) {
	if s.Encoder == nil {
		return nil, nil, fmt.Errorf("embedding space has no encoder")
	}
	vecs, err := s.Encoder.Encode(ctx, titles)
	if err != nil {
		return nil, nil, fmt.Errorf("encoding with %s: %w", s.Encoder.ID(), err)
	}
	features := s.NamingFeatures
	if features <= 0 {
		features = NamingFeatures
	}
	return vecs, memberNamer{titles: titles, features: features}, nil
}

type memberNamer struct {
	titles   []string
	features int
}

func (n memberNamer) Name(_ int, members []int, _ []float64) string {
	docs := make([]string, len(members))
	for i, idx := range members {
		docs[i] = n.titles[idx]
	}
	m := tfidf.Vectorizer{
		MinN:        1,
		MaxN:        2,
		MaxFeatures: n.features,
		StopWords:   textproc.EnglishStopWords(),
	}.Fit(docs)
	return JoinTop(tfidf.TopTerms(m.Mean(nil), m.Terms, topTerms))
}
