package news

import (
	"context"
	"log/slog"
	"time"

	"github.com/deusflow/dailyreads/internal/feeds"
	"github.com/deusflow/dailyreads/internal/metrics"
	"github.com/deusflow/dailyreads/internal/rss"
)

// minPoolSize triggers the extended window when pass one finds fewer entries.
const minPoolSize = 3

// Source fetches the entries of one feed published at or after cutoff.
type Source interface {
	Fetch(ctx context.Context, feed feeds.Feed, cutoff time.Time) []rss.Entry
}

// BuildPool gathers candidates from feedList in order. Pass one uses
// primaryCutoff; if it yields fewer than three entries a second pass over the
// same feeds uses extendedCutoff and appends to the first. The result is
// deduplicated by URL, keeping the first occurrence, and capped at maxCandidates.
func BuildPool(ctx context.Context, src Source, feedList []feeds.Feed, primaryCutoff, extendedCutoff time.Time, maxCandidates int) []rss.Entry {
	candidates := collect(ctx, src, feedList, primaryCutoff, maxCandidates, nil)
	slog.Info("Primary window pass finished", "candidates", len(candidates))

	if len(candidates) < minPoolSize {
		slog.Info("Expanding to extended window", "candidates", len(candidates))
		candidates = collect(ctx, src, feedList, extendedCutoff, maxCandidates, candidates)
	}

	unique := dedupe(candidates)
	slog.Info("Candidate pool built", "unique", len(unique))
	if len(unique) > maxCandidates {
		unique = unique[:maxCandidates]
	}
	return unique
}

func collect(ctx context.Context, src Source, feedList []feeds.Feed, cutoff time.Time, maxCandidates int, acc []rss.Entry) []rss.Entry {
	for _, feed := range feedList {
		if ctx.Err() != nil {
			break
		}
		acc = append(acc, src.Fetch(ctx, feed, cutoff)...)
		if len(acc) >= maxCandidates {
			break
		}
	}
	return acc
}

func dedupe(entries []rss.Entry) []rss.Entry {
	seen := make(map[string]struct{}, len(entries))
	out := make([]rss.Entry, 0, len(entries))
	for _, e := range entries {
		if _, dup := seen[e.URL]; dup {
			metrics.Global.IncrementDuplicatesFiltered()
			continue
		}
		seen[e.URL] = struct{}{}
		out = append(out, e)
	}
	return out
}
