// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package cluster labels titles by k-means clustering in a pluggable vector
// space and naming each cluster from its most characteristic terms.
//
// A Space turns titles into vectors and supplies the Namer that explains a
// cluster in words. Two spaces are provided: FrequencySpace (TF-IDF over
// normalized titles, named from the centroid) and EmbeddingSpace (sentence
// embeddings, named by a TF-IDF fit over the member titles).
package cluster

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/pdiddy/topic-explorer/internal/kmeans"
	"github.com/pdiddy/topic-explorer/pkg/types"
)

// Namer derives a label for cluster id. members indexes the input titles;
// centroid is the cluster's center in the space's coordinates. An empty
// return means no label could be derived.
type Namer interface {
	Name(id int, members []int, centroid []float64) string
}

// Space vectorizes titles for clustering.
type Space interface {
	// Name is the default variant name for labels produced in this space.
	Name() string
	Vectors(ctx context.Context, titles []string) ([][]float64, Namer, error)
}

// Labeler clusters titles in a Space and names the clusters.
type Labeler struct {
	space   Space
	cfg     types.LabelingConfig
	variant string
	logger  *zap.Logger
}

// NewLabeler returns a labeler over space. Zero config fields take their
// defaults.
func NewLabeler(space Space, cfg types.LabelingConfig, logger *zap.Logger) *Labeler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Labeler{
		space:   space,
		cfg:     cfg.WithDefaults(),
		variant: space.Name(),
		logger:  logger,
	}
}

// WithName returns a copy of l that reports name as its variant.
func (l *Labeler) WithName(name string) *Labeler {
	cp := *l
	cp.variant = name
	return &cp
}

// Name returns the variant name.
func (l *Labeler) Name() string { return l.variant }

// Label assigns every title the id of its nearest centroid and the name of
// that cluster. Ids are cluster indices in [0, NClusters).
func (l *Labeler) Label(ctx context.Context, titles []string) ([]types.Assignment, error) {
	vectors, namer, err := l.space.Vectors(ctx, titles)
	if err != nil {
		return nil, fmt.Errorf("vectorizing titles: %w", err)
	}
	if len(vectors) != len(titles) {
		return nil, fmt.Errorf("space %s returned %d vectors for %d titles", l.space.Name(), len(vectors), len(titles))
	}

	res, err := kmeans.Fit(ctx, vectors, kmeans.Config{
		K:         l.cfg.NClusters,
		Seed:      l.cfg.Seed,
		Restarts:  l.cfg.Restarts,
		MaxIter:   l.cfg.MaxIter,
		Tolerance: l.cfg.Tolerance,
	})
	if err != nil {
		return nil, fmt.Errorf("clustering: %w", err)
	}

	members := make([][]int, l.cfg.NClusters)
	for i, c := range res.Labels {
		members[c] = append(members[c], i)
	}
	names := make([]string, l.cfg.NClusters)
	empty := 0
	for id := range names {
		if len(members[id]) == 0 {
			empty++
		} else {
			names[id] = namer.Name(id, members[id], res.Centroids[id])
		}
		if names[id] == "" {
			names[id] = Fallback(id)
		}
	}
	names = Disambiguate(names)

	l.logger.Info("clustered titles",
		zap.String("variant", l.variant),
		zap.Int("titles", len(titles)),
		zap.Int("clusters", l.cfg.NClusters),
		zap.Int("empty_clusters", empty),
		zap.Float64("inertia", res.Inertia),
		zap.Int("iterations", res.Iterations),
		zap.Int("restart", res.Run))

	out := make([]types.Assignment, len(titles))
	for i, c := range res.Labels {
		out[i] = types.Assignment{TopicID: c, Topic: names[c]}
	}
	return out, nil
}

// Fallback is the name of a cluster with no members or no usable terms.
func Fallback(id int) string {
	return fmt.Sprintf("Topic %d", id)
}

// JoinTop builds a label from ranked terms: the first two joined by ", ".
func JoinTop(terms []string) string {
	if len(terms) > 2 {
		terms = terms[:2]
	}
	return strings.Join(terms, ", ")
}

// Disambiguate suffixes " #<id>" to every name shared by more than one
// cluster so that names and ids stay one-to-one.
func Disambiguate(names []string) []string {
	out := append([]string(nil), names...)
	for range out {
		counts := make(map[string]int, len(out))
		for _, n := range out {
			counts[n]++
		}
		clash := false
		for id, n := range out {
			if counts[n] > 1 {
				out[id] = fmt.Sprintf("%s #%d", n, id)
				clash = true
			}
		}
		if !clash {
			break
		}
	}
	return out
}
