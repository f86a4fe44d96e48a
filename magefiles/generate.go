//go:build mage

package main

import (
	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

// Generate builds labeled variants from data/zenodo_top500.csv.
type Generate mg.Namespace

// Keywords labels titles with the built-in keyword taxonomy.
func (Generate) Keywords() error {
	mg.Deps(Build)
	return sh.RunV(binPath(), "generate", "keywords")
}

// Tfidf clusters TF-IDF title vectors with k-means.
func (Generate) Tfidf() error {
	mg.Deps(Build)
	return sh.RunV(binPath(), "generate", "tfidf-kmeans")
}

// Sbert clusters sentence embeddings with k-means. Needs an embeddings
// endpoint (see encoder.base_url in topic-explorer.yaml).
func (Generate) Sbert() error {
	mg.Deps(Build)
	return sh.RunV(binPath(), "generate", "sbert-kmeans")
}

// Offline builds the two variants that need no network.
func (Generate) Offline() {
	mg.SerialDeps(Generate.Keywords, Generate.Tfidf)
}

// All builds every variant.
func (Generate) All() {
	mg.SerialDeps(Generate.Keywords, Generate.Tfidf, Generate.Sbert)
}
