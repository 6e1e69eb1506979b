// Package rss downloads feeds and turns their items into recency-filtered
// entries with normalized links.
package rss

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/deusflow/dailyreads/internal/cache"
	"github.com/deusflow/dailyreads/internal/dates"
	"github.com/deusflow/dailyreads/internal/feeds"
	"github.com/deusflow/dailyreads/internal/metrics"
	"github.com/deusflow/dailyreads/internal/urlnorm"
)

const memoTTL = 30 * time.Minute

// Entry is a feed item that survived the recency filter.
type Entry struct {
	Title      string
	URL        string // normalized
	Summary    string
	Published  *time.Time
	FeedName   string
	FeedWeight float64
}

// Fetcher pulls feeds over HTTP. Parsed feeds are memoized so that a second
// pass over the same feeds with a wider window costs no extra download.
type Fetcher struct {
	parser  *gofeed.Parser
	timeout time.Duration
	memo    *cache.Cache[*gofeed.Feed]
}

// NewFetcher builds a Fetcher with a per-feed timeout and user agent.
func NewFetcher(timeout time.Duration, userAgent string) *Fetcher {
	parser := gofeed.NewParser()
	parser.UserAgent = userAgent
	parser.Client = &http.Client{Timeout: timeout}
	return &Fetcher{
		parser:  parser,
		timeout: timeout,
		memo:    cache.New[*gofeed.Feed](memoTTL),
	}
}

// Fetch returns the entries of feed published at or after cutoff. It never
// fails: a feed that cannot be fetched is logged and yields no entries.
func (f *Fetcher) Fetch(ctx context.Context, feed feeds.Feed, cutoff time.Time) []Entry {
	slog.Info("Fetching feed", "feed", feed.Name, "url", feed.URL)

	parsed, err := f.load(ctx, feed.URL)
	if err != nil && parsed == nil {
		metrics.Global.IncrementFeedFailures()
		slog.Warn("Failed to fetch feed", "feed", feed.Name, "err", err)
		return nil
	}
	if err != nil {
		slog.Warn("Feed parse warning, using partial results", "feed", feed.Name, "err", err)
	}
	metrics.Global.IncrementFeedsFetched()

	entries := Entries(feed, parsed, cutoff)
	slog.Info("Recent items found", "feed", feed.Name, "count", len(entries))
	return entries
}

func (f *Fetcher) load(ctx context.Context, feedURL string) (*gofeed.Feed, error) {
	key := cache.GenerateKey(feedURL)
	if parsed, ok := f.memo.Get(key); ok {
		return parsed, nil
	}

	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	parsed, err := f.parser.ParseURLWithContext(feedURL, ctx)
	if err == nil && parsed != nil {
		f.memo.Set(key, parsed)
	}
	return parsed, err
}

// Entries converts parsed feed items into entries, dropping items without a
// link and items older than cutoff.
func Entries(feed feeds.Feed, parsed *gofeed.Feed, cutoff time.Time) []Entry {
	if parsed == nil {
		return nil
	}

	var out []Entry
	for _, item := range parsed.Items {
		if item == nil {
			continue
		}
		link := strings.TrimSpace(item.Link)
		if link == "" {
			continue
		}

		published := publishedAt(item)
		if !dates.IsRecent(published, cutoff) {
			continue
		}

		title := strings.TrimSpace(item.Title)
		if title == "" {
			title = "Untitled"
		}

		summary := item.Description
		if summary == "" {
			summary = item.Content
		}

		out = append(out, Entry{
			Title:      title,
			URL:        urlnorm.Normalize(link),
			Summary:    summary,
			Published:  published,
			FeedName:   feed.Name,
			FeedWeight: feed.Weight,
		})
	}
	return out
}

func publishedAt(item *gofeed.Item) *time.Time {
	if t := dates.Parse(item.Published); t != nil {
		return t
	}
	if t := dates.Parse(item.Updated); t != nil {
		return t
	}
	for _, t := range []*time.Time{item.PublishedParsed, item.UpdatedParsed} {
		if t != nil {
			utc := t.UTC()
			return &utc
		}
	}
	return nil
}
