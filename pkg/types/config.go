package types

import "time"

// HTTPConfig holds shared HTTP settings used by stages that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "topic-explorer/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`

	// MaxRetries bounds retries on HTTP 429 (default 5).
	MaxRetries int `json:"max_retries" yaml:"max_retries"`
}

// Defaults for the labeling stage.
const (
	DefaultNClusters = 12
	DefaultSeed      = 42
	DefaultRestarts  = 10
	DefaultMaxIter   = 300
	DefaultTolerance = 1e-4
)

// LabelingConfig holds settings shared by both clustering variants.
type LabelingConfig struct {
	// NClusters is the number of clusters k (default 12).
	NClusters int `json:"n_clusters" yaml:"n_clusters"`

	// Seed controls every random choice of the clustering run (default 42).
	Seed int64 `json:"seed" yaml:"seed"`

	// Restarts is the number of independent k-means initializations; the
	// lowest-inertia run wins (default 10).
	Restarts int `json:"restarts" yaml:"restarts"`

	// MaxIter caps Lloyd iterations per restart (default 300).
	MaxIter int `json:"max_iter" yaml:"max_iter"`

	// Tolerance stops a restart once the total centroid shift falls below it.
	Tolerance float64 `json:"tolerance" yaml:"tolerance"`
}

// WithDefaults returns a copy with zero fields replaced by defaults.
func (c LabelingConfig) WithDefaults() LabelingConfig {
	if c.NClusters <= 0 {
		c.NClusters = DefaultNClusters
	}
	if c.Seed == 0 {
		c.Seed = DefaultSeed
	}
	if c.Restarts <= 0 {
		c.Restarts = DefaultRestarts
	}
	if c.MaxIter <= 0 {
		c.MaxIter = DefaultMaxIter
	}
	if c.Tolerance <= 0 {
		c.Tolerance = DefaultTolerance
	}
	return c
}

// DefaultEncoderID is the pretrained sentence encoder used by the
// embedding variant.
const DefaultEncoderID = "sentence-transformers/all-MiniLM-L6-v2"

// EncoderConfig configures the sentence-encoder client used by the
// embedding variant. The endpoint must speak the OpenAI embeddings API
// (text-embeddings-inference, Ollama, vLLM, or OpenAI itself).
type EncoderConfig struct {
	HTTPConfig `yaml:",inline"`

	// ID is the encoder model identifier sent with every request.
	ID string `json:"id" yaml:"id"`

	// BaseURL is the API root, e.g. "http://localhost:8080/v1/".
	BaseURL string `json:"base_url" yaml:"base_url"`

	// APIKey is optional for local servers.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// BatchSize is the number of titles per request (default 64).
	BatchSize int `json:"batch_size" yaml:"batch_size"`

	// CacheDir holds the persistent embedding cache. Empty disables caching.
	CacheDir string `json:"cache_dir" yaml:"cache_dir"`
}

// WithDefaults returns a copy with zero fields replaced by defaults.
func (c EncoderConfig) WithDefaults() EncoderConfig {
	if c.ID == "" {
		c.ID = DefaultEncoderID
	}
	if c.BaseURL == "" {
		c.BaseURL = "http://localhost:8080/v1/"
	}
	if c.BatchSize <= 0 {
		c.BatchSize = 64
	}
	if c.Timeout <= 0 {
		c.Timeout = 60 * time.Second
	}
	if c.UserAgent == "" {
		c.UserAgent = "topic-explorer/0.1"
	}
	if c.MaxRetries <= 0 {
		c.MaxRetries = 5
	}
	return c
}

// ExplorerConfig holds settings for the variant registry and query layer.
type ExplorerConfig struct {
	// PrecomputeDir contains variant tables and the manifest.
	PrecomputeDir string `json:"precompute_dir" yaml:"precompute_dir"`

	// ManifestFile is the manifest filename inside PrecomputeDir.
	ManifestFile string `json:"manifest_file" yaml:"manifest_file"`

	// SidebarSize is the number of top topics in the ranked sidebar (default 20).
	SidebarSize int `json:"sidebar_size" yaml:"sidebar_size"`
}

// WithDefaults returns a copy with zero fields replaced by defaults.
func (c ExplorerConfig) WithDefaults() ExplorerConfig {
	if c.PrecomputeDir == "" {
		c.PrecomputeDir = "precompute"
	}
	if c.ManifestFile == "" {
		c.ManifestFile = "MANIFEST.json"
	}
	if c.SidebarSize <= 0 {
		c.SidebarSize = 20
	}
	return c
}
