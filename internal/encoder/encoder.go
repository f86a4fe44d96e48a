// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package encoder turns titles into dense sentence embeddings.
//
// The OpenAI client talks to any server implementing the OpenAI embeddings
// API. Cache wraps any Encoder with a persistent badger store so repeated
// runs over the same titles do not re-encode them.
package encoder

import (
	"context"
	"errors"
	"math"
)

// ErrDimensionMismatch is returned when a server answers with vectors of
// differing lengths.
var ErrDimensionMismatch = errors.New("embedding dimensions differ")

// Encoder produces one fixed-dimension unit vector per text, in input order.
type Encoder interface {
	// ID identifies the model; vectors from different IDs never mix.
	ID() string
	Encode(ctx context.Context, texts []string) ([][]float64, error)
}

// Normalize scales v to unit L2 length in place. Zero vectors are left
// unchanged.
func Normalize(v []float64) {
	var sum float64
	for _, x := range v {
		sum += x * x
	}
	if sum == 0 {
		return
	}
	inv := 1 / math.Sqrt(sum)
	for i := range v {
		v[i] *= inv
	}
}

func checkDims(vecs [][]float64) error {
	for _, v := range vecs {
		if len(v) != len(vecs[0]) {
			return ErrDimensionMismatch
		}
	}
	return nil
}
