// Package feeds holds the feed catalog: curated RSS/Atom sources per category,
// the Google News query feeds used as fallback, and the scoring tables that
// travel with them.
package feeds

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Category is one of the fixed topical buckets of the digest.
type Category string

const (
	LLMs    Category = "llms"
	AI      Category = "ai"
	Markets Category = "markets"
)

// Categories lists every category in digest order.
var Categories = []Category{LLMs, AI, Markets}

// ErrUnknownCategory is returned for categories outside Categories.
var ErrUnknownCategory = errors.New("unknown category")

// Valid reports whether c is one of Categories.
func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// Title is the heading used for the category in rendered output.
func (c Category) Title() string {
	switch c {
	case LLMs:
		return "LLMs"
	case AI:
		return "AI"
	case Markets:
		return "Financial Markets"
	}
	return string(c)
}

// FallbackWeight is the weight of every synthesized Google News feed, slightly
// below curated sources.
const FallbackWeight = 0.85

const (
	googleNewsBase = "https://news.google.com/rss/search"
	googleNewsHL   = "en"
	googleNewsGL   = "US"
	googleNewsCEID = "US:en"
)

// Feed is a single RSS/Atom source.
type Feed struct {
	Name     string
	URL      string
	Category Category
	Weight   float64
}

// Catalog is the immutable feed and scoring configuration for one run.
type Catalog struct {
	Feeds      []Feed
	Queries    map[Category][]string
	Keywords   map[Category][]string
	Publishers map[string]float64
}

//go:embed catalog.yaml
var defaultCatalog []byte

// catalogFile is the YAML layout of a catalog
//
//	feeds:
//	  - name: The Verge
//	    url: https://...
//	    category: ai
//	    weight: 1.0
type catalogFile struct {
	Feeds []struct {
		Name     string   `yaml:"name"`
		URL      string   `yaml:"url"`
		Category Category `yaml:"category"`
		Weight   *float64 `yaml:"weight"`
	} `yaml:"feeds"`
	Queries    map[Category][]string `yaml:"queries"`
	Keywords   map[Category][]string `yaml:"keywords"`
	Publishers map[string]float64    `yaml:"publishers"`
}

// Default returns the catalog compiled into the binary.
func Default() (*Catalog, error) {
	return Parse(defaultCatalog)
}

// Load reads a catalog from a YAML file. An empty path yields Default().
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes and validates catalog YAML.
func Parse(data []byte) (*Catalog, error) {
	var raw catalogFile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}

	cat := &Catalog{
		Queries:    map[Category][]string{},
		Keywords:   map[Category][]string{},
		Publishers: map[string]float64{},
	}

	for i, f := range raw.Feeds {
		if !f.Category.Valid() {
			return nil, fmt.Errorf("feed %d (%s): %w %q", i, f.Name, ErrUnknownCategory, f.Category)
		}
		if strings.TrimSpace(f.URL) == "" {
			return nil, fmt.Errorf("feed %d (%s): url is required", i, f.Name)
		}
		weight := 1.0
		if f.Weight != nil {
			weight = *f.Weight
		}
		if weight < 0 {
			return nil, fmt.Errorf("feed %d (%s): weight must be >= 0, got %v", i, f.Name, weight)
		}
		cat.Feeds = append(cat.Feeds, Feed{Name: f.Name, URL: f.URL, Category: f.Category, Weight: weight})
	}

	for c, qs := range raw.Queries {
		if !c.Valid() {
			return nil, fmt.Errorf("queries: %w %q", ErrUnknownCategory, c)
		}
		cat.Queries[c] = qs
	}
	for c, kws := range raw.Keywords {
		if !c.Valid() {
			return nil, fmt.Errorf("keywords: %w %q", ErrUnknownCategory, c)
		}
		lowered := make([]string, 0, len(kws))
		for _, kw := range kws {
			if kw = strings.ToLower(strings.TrimSpace(kw)); kw != "" {
				lowered = append(lowered, kw)
			}
		}
		cat.Keywords[c] = lowered
	}
	for domain, boost := range raw.Publishers {
		cat.Publishers[strings.TrimPrefix(strings.ToLower(domain), "www.")] = boost
	}

	return cat, nil
}

// GoogleNewsURL builds a Google News RSS search URL for query.
func GoogleNewsURL(query string) string {
	return fmt.Sprintf("%s?q=%s&hl=%s&gl=%s&ceid=%s",
		googleNewsBase, url.QueryEscape(query), googleNewsHL, googleNewsGL, googleNewsCEID)
}

// FallbackFeeds synthesizes one Google News feed per configured query, in
// declared order.
func (c *Catalog) FallbackFeeds(category Category) ([]Feed, error) {
	if !category.Valid() {
		return nil, fmt.Errorf("%w %q", ErrUnknownCategory, category)
	}
	queries := c.Queries[category]
	out := make([]Feed, 0, len(queries))
	for i, q := range queries {
		out = append(out, Feed{
			Name:     fmt.Sprintf("Google News RSS (%s #%d)", strings.ToUpper(string(category)), i+1),
			URL:      GoogleNewsURL(q),
			Category: category,
			Weight:   FallbackWeight,
		})
	}
	return out, nil
}

// FeedsFor returns the curated feeds of category followed by its fallback feeds.
func (c *Catalog) FeedsFor(category Category) ([]Feed, error) {
	fallback, err := c.FallbackFeeds(category)
	if err != nil {
		return nil, err
	}
	var out []Feed
	for _, f := range c.Feeds {
		if f.Category == category {
			out = append(out, f)
		}
	}
	return append(out, fallback...), nil
}
