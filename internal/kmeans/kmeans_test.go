// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package kmeans

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func blobs() [][]float64 {
	return [][]float64{
		{0, 0}, {0, 1}, {1, 0},
		{10, 10}, {10, 11}, {11, 10},
	}
}

func TestFitSeparatesBlobs(t *testing.T) {
	res, err := Fit(context.Background(), blobs(), Config{K: 2, Seed: 42})
	require.NoError(t, err)

	require.Len(t, res.Labels, 6)
	assert.Equal(t, res.Labels[0], res.Labels[1])
	assert.Equal(t, res.Labels[0], res.Labels[2])
	assert.Equal(t, res.Labels[3], res.Labels[4])
	assert.Equal(t, res.Labels[3], res.Labels[5])
	assert.NotEqual(t, res.Labels[0], res.Labels[3])
	assert.Equal(t, []int{3, 3}, res.Sizes)
	assert.InDelta(t, 8.0/3.0, res.Inertia, 1e-9)
}

func TestFitDeterministic(t *testing.T) {
	x := [][]float64{
		{0.1, 0.9, 0}, {0.2, 0.8, 0}, {0.9, 0.1, 0}, {0.8, 0.2, 0.1},
		{0, 0, 1}, {0.1, 0, 0.9}, {0.5, 0.5, 0}, {0.4, 0.4, 0.4},
	}
	cfg := Config{K: 3, Seed: 7, Restarts: 5, Workers: 4}
	a, err := Fit(context.Background(), x, cfg)
	require.NoError(t, err)
	b, err := Fit(context.Background(), x, Config{K: 3, Seed: 7, Restarts: 5, Workers: 1})
	require.NoError(t, err)

	assert.Equal(t, a.Labels, b.Labels, "parallelism must not change the result")
	assert.Equal(t, a.Centroids, b.Centroids)
	assert.Equal(t, a.Run, b.Run)
}

func TestFitFewerPointsThanK(t *testing.T) {
	x := [][]float64{{1, 0}, {1, 0}, {0, 1}}
	res, err := Fit(context.Background(), x, Config{K: 5, Seed: 42})
	require.NoError(t, err)

	require.Len(t, res.Centroids, 5)
	total, nonEmpty := 0, 0
	for _, s := range res.Sizes {
		total += s
		if s > 0 {
			nonEmpty++
		}
	}
	assert.Equal(t, 3, total)
	assert.LessOrEqual(t, nonEmpty, 2)
	assert.Equal(t, res.Labels[0], res.Labels[1])
	for _, l := range res.Labels {
		assert.GreaterOrEqual(t, l, 0)
		assert.Less(t, l, 5)
	}
}

func TestFitZeroDimension(t *testing.T) {
	res, err := Fit(context.Background(), [][]float64{{}, {}, {}}, Config{K: 2, Seed: 1})
	require.NoError(t, err)
	assert.Equal(t, []int{0, 0, 0}, res.Labels)
	assert.Equal(t, []int{3, 0}, res.Sizes)
}

func TestFitEmptyInput(t *testing.T) {
	res, err := Fit(context.Background(), nil, Config{K: 3})
	require.NoError(t, err)
	assert.Empty(t, res.Labels)
	assert.Len(t, res.Centroids, 3)
}

func TestFitErrors(t *testing.T) {
	_, err := Fit(context.Background(), blobs(), Config{K: 0})
	assert.ErrorIs(t, err, ErrInvalidK)

	_, err = Fit(context.Background(), [][]float64{{1, 2}, {1}}, Config{K: 1})
	assert.ErrorContains(t, err, "dimension")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = Fit(ctx, blobs(), Config{K: 2})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSparseDistanceMatchesDense(t *testing.T) {
	p, err := newPoints([][]float64{{0, 3, 0, 4}})
	require.NoError(t, err)
	c := []float64{1, 1, 1, 1}
	// (0-1)^2 + (3-1)^2 + (0-1)^2 + (4-1)^2 = 1 + 4 + 1 + 9
	assert.InDelta(t, 15.0, p.dist2(0, c, sqNorm(c)), 1e-12)
	assert.Equal(t, []int{1, 3}, p.nz[0])
}
