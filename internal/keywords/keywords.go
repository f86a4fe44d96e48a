// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package keywords assigns topics by counting keyword hits in titles.
// The topic table is a Taxonomy loaded from YAML; the built-in default is
// compiled in as data, and alternate tables can be supplied per run.
package keywords

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/topic-explorer/internal/textproc"
	"github.com/pdiddy/topic-explorer/pkg/types"
)

// VariantName is the default variant name for keyword labeling.
const VariantName = "keywords"

//go:embed default_taxonomy.yaml
var defaultTaxonomy []byte

// ErrInvalidTaxonomy is returned when a taxonomy fails validation.
var ErrInvalidTaxonomy = errors.New("invalid taxonomy")

// Topic is one row of the topic table.
type Topic struct {
	Name     string   `yaml:"name" json:"name"`
	Keywords []string `yaml:"keywords" json:"keywords"`
}

// Taxonomy is the ordered topic table. Order matters: it breaks ties.
type Taxonomy struct {
	Topics []Topic `yaml:"topics" json:"topics"`
}

// DefaultTaxonomy returns a fresh copy of the built-in topic table.
func DefaultTaxonomy() *Taxonomy {
	t, err := ParseTaxonomy(defaultTaxonomy)
	if err != nil {
		panic(fmt.Sprintf("built-in taxonomy: %v", err))
	}
	return t
}

// LoadTaxonomy reads and validates a taxonomy file.
func LoadTaxonomy(path string) (*Taxonomy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading taxonomy: %w", err)
	}
	t, err := ParseTaxonomy(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}

// ParseTaxonomy decodes and validates a YAML taxonomy.
func ParseTaxonomy(data []byte) (*Taxonomy, error) {
	var t Taxonomy
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("parsing taxonomy: %w", err)
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return &t, nil
}

// Validate checks that names are non-empty and unique, keywords are
// non-blank, and exactly one topic is the catch-all.
func (t *Taxonomy) Validate() error {
	if len(t.Topics) == 0 {
		return fmt.Errorf("%w: no topics", ErrInvalidTaxonomy)
	}
	seen := make(map[string]bool, len(t.Topics))
	catchAll := 0
	for i, topic := range t.Topics {
		if topic.Name == "" {
			return fmt.Errorf("%w: topic %d has no name", ErrInvalidTaxonomy, i)
		}
		if seen[topic.Name] {
			return fmt.Errorf("%w: duplicate topic %q", ErrInvalidTaxonomy, topic.Name)
		}
		seen[topic.Name] = true
		if len(topic.Keywords) == 0 {
			catchAll++
		}
		for _, kw := range topic.Keywords {
			if textproc.Collapse(kw) == "" {
				return fmt.Errorf("%w: topic %q has a blank keyword", ErrInvalidTaxonomy, topic.Name)
			}
		}
	}
	if catchAll != 1 {
		return fmt.Errorf("%w: want exactly one catch-all topic, got %d", ErrInvalidTaxonomy, catchAll)
	}
	return nil
}

// CatchAll returns the name of the topic with no keywords.
func (t *Taxonomy) CatchAll() string {
	for _, topic := range t.Topics {
		if len(topic.Keywords) == 0 {
			return topic.Name
		}
	}
	return ""
}

// Classifier scores titles against a validated taxonomy.
type Classifier struct {
	names    []string
	keywords [][]string
	catchAll string
	variant  string
}

// NewClassifier builds a classifier. Keywords are lowercased and
// whitespace-collapsed so they match the normalized title form.
func NewClassifier(t *Taxonomy) (*Classifier, error) {
	if err := t.Validate(); err != nil {
		return nil, err
	}
	c := &Classifier{catchAll: t.CatchAll(), variant: VariantName}
	for _, topic := range t.Topics {
		kws := make([]string, len(topic.Keywords))
		for i, kw := range topic.Keywords {
			kws[i] = textproc.Collapse(kw)
		}
		c.names = append(c.names, topic.Name)
		c.keywords = append(c.keywords, kws)
	}
	return c, nil
}

// WithName returns a copy of c that reports name as its variant.
func (c *Classifier) WithName(name string) *Classifier {
	cp := *c
	cp.variant = name
	return &cp
}

// Name returns the variant name this classifier writes.
func (c *Classifier) Name() string { return c.variant }

// Assign returns the topic for one title: the topic with the strictly
// highest number of keywords occurring as substrings of the normalized
// title, the earliest in table order on ties, the catch-all when nothing
// matches.
func (c *Classifier) Assign(title string) string {
	t := textproc.Collapse(title)
	best, bestHits := c.catchAll, 0
	if t == "" {
		return best
	}
	for i, kws := range c.keywords {
		hits := 0
		for _, kw := range kws {
			if strings.Contains(t, kw) {
				hits++
			}
		}
		if hits > bestHits {
			best, bestHits = c.names[i], hits
		}
	}
	return best
}

// Label assigns every title and numbers the distinct topics that occur by
// their sorted names, so ids depend only on which topics appear.
func (c *Classifier) Label(_ context.Context, titles []string) ([]types.Assignment, error) {
	topics := make([]string, len(titles))
	distinct := make(map[string]struct{})
	for i, title := range titles {
		topics[i] = c.Assign(title)
		distinct[topics[i]] = struct{}{}
	}

	names := make([]string, 0, len(distinct))
	for name := range distinct {
		names = append(names, name)
	}
	sort.Strings(names)
	ids := make(map[string]int, len(names))
	for i, name := range names {
		ids[name] = i
	}

	out := make([]types.Assignment, len(titles))
	for i, topic := range topics {
		out[i] = types.Assignment{TopicID: ids[topic], Topic: topic}
	}
	return out, nil
}
