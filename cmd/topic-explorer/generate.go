// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/pdiddy/topic-explorer/internal/cluster"
	"github.com/pdiddy/topic-explorer/internal/encoder"
	"github.com/pdiddy/topic-explorer/internal/keywords"
	"github.com/pdiddy/topic-explorer/internal/pipeline"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Label the input table and write a variant",
	Long: `Generate runs one labeling strategy over the input table and writes the
labeled copy to <precompute-dir>/<variant>.csv, recording it in the manifest.
Other variants are left untouched.

Strategies:
  keywords       keyword taxonomy, one topic per title by keyword count
  tfidf-kmeans   k-means over TF-IDF title vectors, clusters named by top terms
  sbert-kmeans   k-means over sentence embeddings, clusters named by top terms`,
}

// --- keywords ---

var generateKeywordsCmd = &cobra.Command{
	Use:   "keywords",
	Short: "Label titles with the keyword taxonomy",
	Long: `Keywords scores each title against every topic of the taxonomy by
counting keyword occurrences and assigns the highest-scoring topic; ties go
to the earlier topic and titles matching nothing go to the catch-all.

The built-in taxonomy has ten topics. Use --taxonomy to supply a YAML file of
the same shape.`,
	RunE: runGenerateKeywords,
}

func runGenerateKeywords(cmd *cobra.Command, args []string) error {
	tax := keywords.DefaultTaxonomy()
	if path := viper.GetString("taxonomy"); path != "" {
		var err error
		if tax, err = keywords.LoadTaxonomy(path); err != nil {
			return err
		}
	}
	c, err := keywords.NewClassifier(tax)
	if err != nil {
		return err
	}
	return runPipeline(cmd, c)
}

// --- tfidf-kmeans ---

var generateFrequencyCmd = &cobra.Command{
	Use:   "tfidf-kmeans",
	Short: "Cluster TF-IDF title vectors with k-means",
	Long: `Tfidf-kmeans normalizes titles, builds TF-IDF vectors over unigrams and
bigrams (English stop words removed, vocabulary capped at 8000 terms), and
clusters them with k-means. Each cluster is named by its two heaviest
centroid terms.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runPipeline(cmd, cluster.NewFrequencyLabeler(labelingConfig(), logger))
	},
}

// --- sbert-kmeans ---

var generateEmbeddingCmd = &cobra.Command{
	Use:   "sbert-kmeans",
	Short: "Cluster sentence embeddings with k-means",
	Long: `Sbert-kmeans encodes titles with a sentence encoder served over an
OpenAI-compatible /embeddings endpoint, L2-normalizes the vectors, and
clusters them with k-means. Each cluster is named by the top terms of a
TF-IDF model fit on its member titles.

Embeddings are cached under --cache-dir keyed by encoder and title, so
re-runs only encode new titles.`,
	RunE: runGenerateEmbedding,
}

func runGenerateEmbedding(cmd *cobra.Command, args []string) error {
	cfg := encoderConfig()
	var enc encoder.Encoder = encoder.NewOpenAI(cfg, logger)
	if cfg.CacheDir != "" {
		if err := os.MkdirAll(cfg.CacheDir, 0o755); err != nil {
			return fmt.Errorf("creating cache directory: %w", err)
		}
		cache, err := encoder.OpenCache(cfg.CacheDir, enc, logger)
		if err != nil {
			return err
		}
		defer cache.Close()
		enc = cache
	}
	logger.Debug("sentence encoder",
		zap.String("id", cfg.ID),
		zap.String("base_url", cfg.BaseURL),
		zap.String("cache_dir", cfg.CacheDir))

	return runPipeline(cmd, cluster.NewEmbeddingLabeler(enc, labelingConfig(), logger))
}

// --- shared ---

func runPipeline(cmd *cobra.Command, labeler pipeline.Labeler) error {
	cfg := pipeline.Config{
		Input:    viper.GetString("input"),
		Variant:  viper.GetString("variant_name"),
		Explorer: explorerConfig(),
	}
	_, err := pipeline.Run(cmd.Context(), labeler, cfg, os.Stdout, logger)
	return err
}

func init() {
	// Shared flags on the parent command, inherited by subcommands.
	generateCmd.PersistentFlags().String("input", pipeline.DefaultInput, "input table (CSV)")
	generateCmd.PersistentFlags().String("name", "", "variant name (default: the strategy's name)")
	bindFlag("input", generateCmd.PersistentFlags().Lookup("input"))
	bindFlag("variant_name", generateCmd.PersistentFlags().Lookup("name"))

	// Keywords flags.
	generateKeywordsCmd.Flags().String("taxonomy", "", "taxonomy YAML file (default: built-in)")
	bindFlag("taxonomy", generateKeywordsCmd.Flags().Lookup("taxonomy"))

	// Clustering flags, registered on both clustering commands.
	for _, c := range []*cobra.Command{generateFrequencyCmd, generateEmbeddingCmd} {
		c.Flags().Int("n-clusters", 12, "number of clusters")
		c.Flags().Int64("seed", 42, "random seed for k-means initialization")
		c.Flags().Int("restarts", 10, "k-means restarts; the lowest-inertia run wins")
	}
	bindClusterFlags(generateFrequencyCmd)
	bindClusterFlags(generateEmbeddingCmd)

	// Encoder flags.
	f := generateEmbeddingCmd.Flags()
	f.String("encoder", "", "encoder model id (default sentence-transformers/all-MiniLM-L6-v2)")
	f.String("encoder-url", "", "OpenAI-compatible API root (default http://localhost:8080/v1/)")
	f.Int("batch-size", 0, "titles per embedding request (default 64)")
	f.Duration("timeout", 0, "HTTP request timeout (default 60s)")
	f.String("cache-dir", ".cache/embeddings", "embedding cache directory (empty disables caching)")
	bindFlag("encoder.id", f.Lookup("encoder"))
	bindFlag("encoder.base_url", f.Lookup("encoder-url"))
	bindFlag("encoder.batch_size", f.Lookup("batch-size"))
	bindFlag("encoder.timeout", f.Lookup("timeout"))
	bindFlag("encoder.cache_dir", f.Lookup("cache-dir"))

	// Wire subcommands.
	generateCmd.AddCommand(generateKeywordsCmd)
	generateCmd.AddCommand(generateFrequencyCmd)
	generateCmd.AddCommand(generateEmbeddingCmd)

	rootCmd.AddCommand(generateCmd)
}

// bindClusterFlags binds the clustering flags of the command being run.
// Both clustering commands share config keys, so the binding happens at
// run time rather than in init.
func bindClusterFlags(c *cobra.Command) {
	prev := c.PreRunE
	c.PreRunE = func(cmd *cobra.Command, args []string) error {
		bindFlag("labeling.n_clusters", cmd.Flags().Lookup("n-clusters"))
		bindFlag("labeling.seed", cmd.Flags().Lookup("seed"))
		bindFlag("labeling.restarts", cmd.Flags().Lookup("restarts"))
		if prev != nil {
			return prev(cmd, args)
		}
		return nil
	}
}
