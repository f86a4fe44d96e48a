// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package tfidf builds term-frequency inverse-document-frequency vectors
// over unigrams and bigrams of short texts.
package tfidf

import (
	"math"
	"sort"

	"github.com/pdiddy/topic-explorer/internal/textproc"
)

// Vectorizer configures a TF-IDF fit. The zero value fits unigrams with no
// stop words and an unbounded vocabulary.
type Vectorizer struct {
	// MinN and MaxN bound the n-gram range (default 1..1).
	MinN, MaxN int

	// MaxFeatures keeps the terms with the highest corpus frequency. Zero
	// keeps every term.
	MaxFeatures int

	// StopWords are removed before n-grams are built.
	StopWords map[string]struct{}
}

// Matrix is the result of a fit: one L2-normalized row per document over
// the alphabetically ordered vocabulary Terms.
type Matrix struct {
	Terms []string
	Rows  [][]float64
	IDF   []float64
}

// Fit builds the vocabulary from docs and returns their vectors. Terms are
// kept by descending total count, ties broken alphabetically, then the kept
// vocabulary is sorted alphabetically. IDF is smoothed:
// ln((1+n)/(1+df)) + 1. A corpus with no tokens yields an empty vocabulary
// and zero-length rows.
func (v Vectorizer) Fit(docs []string) *Matrix {
	minN, maxN := v.MinN, v.MaxN
	if minN < 1 {
		minN = 1
	}
	if maxN < minN {
		maxN = minN
	}

	grams := make([][]string, len(docs))
	total := make(map[string]int)
	df := make(map[string]int)
	for i, doc := range docs {
		grams[i] = textproc.NGrams(textproc.Tokenize(doc, v.StopWords), minN, maxN)
		seen := make(map[string]struct{}, len(grams[i]))
		for _, g := range grams[i] {
			total[g]++
			if _, ok := seen[g]; ok {
				continue
			}
			seen[g] = struct{}{}
			df[g]++
		}
	}

	terms := make([]string, 0, len(total))
	for term := range total {
		terms = append(terms, term)
	}
	if v.MaxFeatures > 0 && len(terms) > v.MaxFeatures {
		sort.Slice(terms, func(i, j int) bool {
			if total[terms[i]] != total[terms[j]] {
				return total[terms[i]] > total[terms[j]]
			}
			return terms[i] < terms[j]
		})
		terms = terms[:v.MaxFeatures]
	}
	sort.Strings(terms)

	vocab := make(map[string]int, len(terms))
	idf := make([]float64, len(terms))
	n := float64(len(docs))
	for i, term := range terms {
		vocab[term] = i
		idf[i] = math.Log((1+n)/(1+float64(df[term]))) + 1
	}

	rows := make([][]float64, len(docs))
	for i := range docs {
		row := make([]float64, len(terms))
		for _, g := range grams[i] {
			if idx, ok := vocab[g]; ok {
				row[idx]++
			}
		}
		for idx := range row {
			row[idx] *= idf[idx]
		}
		normalize(row)
		rows[i] = row
	}

	return &Matrix{Terms: terms, Rows: rows, IDF: idf}
}

// Mean returns the column means of the given rows (all rows when rows is
// nil). It returns nil for an empty selection.
func (m *Matrix) Mean(rows []int) []float64 {
	if rows == nil {
		rows = make([]int, len(m.Rows))
		for i := range rows {
			rows[i] = i
		}
	}
	if len(rows) == 0 {
		return nil
	}
	mean := make([]float64, len(m.Terms))
	for _, r := range rows {
		for j, x := range m.Rows[r] {
			mean[j] += x
		}
	}
	for j := range mean {
		mean[j] /= float64(len(rows))
	}
	return mean
}

// TopTerms returns up to n terms with the highest positive weight, ordered
// by descending weight and then ascending term.
func TopTerms(weights []float64, terms []string, n int) []string {
	idx := make([]int, 0, len(weights))
	for i, w := range weights {
		if w > 0 && i < len(terms) {
			idx = append(idx, i)
		}
	}
	sort.Slice(idx, func(a, b int) bool {
		wa, wb := weights[idx[a]], weights[idx[b]]
		if wa != wb {
			return wa > wb
		}
		return terms[idx[a]] < terms[idx[b]]
	})
	if len(idx) > n {
		idx = idx[:n]
	}
	out := make([]string, len(idx))
	for i, j := range idx {
		out[i] = terms[j]
	}
	return out
}

func normalize(v []float64) {
	var sum float64
	for _, x := range v {
		sum += x * x
	}
	if sum == 0 {
		return
	}
	norm := math.Sqrt(sum)
	for i := range v {
		v[i] /= norm
	}
}
