package news

import (
	"github.com/deusflow/dailyreads/internal/rss"
	"github.com/deusflow/dailyreads/internal/scraper"
)

// Extracted is a feed entry whose article text has been resolved.
type Extracted struct {
	rss.Entry
	Text   string
	Status scraper.Status
}

// Scored is an extracted candidate with its relevance score.
type Scored struct {
	Extracted
	Score float64
}

// Rejection records why a candidate URL was dropped.
type Rejection struct {
	URL    string
	Reason string
}

// Rejection reasons.
const (
	ReasonDuplicate   = "duplicate"
	ReasonPaywall     = "paywall"
	ReasonNoText      = "no text available"
	ReasonNotSelected = "not selected (lower relevance)"
)

func extractionFailed(status scraper.Status) string {
	return "extraction failed (" + string(status) + ")"
}

// Selection is the article chosen for a category.
type Selection struct {
	Title   string
	URL     string
	Bullets []string
}
