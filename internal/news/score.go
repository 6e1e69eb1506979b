package news

import (
	"sort"
	"strings"

	"github.com/deusflow/dailyreads/internal/feeds"
	"github.com/deusflow/dailyreads/internal/urlnorm"
)

const (
	keywordWeight   = 0.5
	keywordCap      = 3
	preprintDomain  = "arxiv.org"
	preprintPenalty = 0.2
)

// Scorer computes heuristic relevance from the catalog keyword and publisher tables.
type Scorer struct {
	keywords   map[feeds.Category][]string
	publishers map[string]float64
}

func NewScorer(catalog *feeds.Catalog) *Scorer {
	return &Scorer{keywords: catalog.Keywords, publishers: catalog.Publishers}
}

// Score rates a candidate for category. Each keyword contributes at most
// three occurrences.
func (s *Scorer) Score(title, summary, rawURL string, category feeds.Category, weight float64) float64 {
	text := strings.ToLower(title + " " + summary)

	score := 0.0
	for _, kw := range s.keywords[category] {
		if n := strings.Count(text, kw); n > 0 {
			score += float64(min(n, keywordCap)) * keywordWeight
		}
	}

	domain := urlnorm.Domain(rawURL)
	if boost, ok := s.publishers[domain]; ok {
		score *= boost
	}
	score *= weight

	if strings.Contains(domain, preprintDomain) {
		score *= preprintPenalty
	}
	return score
}

// Rank scores every candidate and returns the topN best. Ties keep input order.
func (s *Scorer) Rank(candidates []Extracted, category feeds.Category, topN int) []Scored {
	scored := make([]Scored, len(candidates))
	for i, c := range candidates {
		scored[i] = Scored{
			Extracted: c,
			Score:     s.Score(c.Title, c.Summary, c.URL, category, c.FeedWeight),
		}
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	if topN >= 0 && len(scored) > topN {
		scored = scored[:topN]
	}
	return scored
}
