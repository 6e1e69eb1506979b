package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/deusflow/dailyreads/internal/feeds"
	"github.com/deusflow/dailyreads/internal/metrics"
	"github.com/deusflow/dailyreads/internal/news"
	"github.com/deusflow/dailyreads/internal/render"
	"github.com/deusflow/dailyreads/internal/rss"
	"github.com/deusflow/dailyreads/internal/storage"
	"github.com/deusflow/dailyreads/internal/telegram"
)

// Notifier receives the finished digest. It is optional.
type Notifier interface {
	SendMessage(ctx context.Context, text string) error
}

// Options are the run parameters taken from configuration.
type Options struct {
	PrimaryWindow  time.Duration
	ExtendedWindow time.Duration
	MaxCandidates  int
	DigestDir      string
	ReadmePath     string
}

// Pipeline produces one digest per Run.
type Pipeline struct {
	catalog  *feeds.Catalog
	source   news.Source
	arbiter  *news.Arbiter
	store    storage.SeenStore
	notifier Notifier
	opts     Options
	now      func() time.Time
}

func NewPipeline(catalog *feeds.Catalog, source news.Source, arbiter *news.Arbiter, store storage.SeenStore, notifier Notifier, opts Options) *Pipeline {
	return &Pipeline{
		catalog:  catalog,
		source:   source,
		arbiter:  arbiter,
		store:    store,
		notifier: notifier,
		opts:     opts,
		now:      time.Now,
	}
}

// Run processes every category in order, persists the selected URLs, writes
// the digest and README and notifies. Per-category failures never abort the run.
func (p *Pipeline) Run(ctx context.Context) (*render.Digest, error) {
	startTime := time.Now()
	defer func() {
		metrics.Global.RecordProcessingTime(time.Since(startTime))
		metrics.Global.LogSummary()
	}()

	now := p.now().UTC()
	primaryCutoff := now.Add(-p.opts.PrimaryWindow)
	extendedCutoff := now.Add(-p.opts.ExtendedWindow)

	digest := &render.Digest{
		Date:        now,
		Articles:    make(map[feeds.Category]*news.Selection, len(feeds.Categories)),
		SourcePools: make(map[feeds.Category][]string, len(feeds.Categories)),
	}

	for _, category := range feeds.Categories {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		slog.Info("Processing category", "category", category)

		sel, rejections, pool := p.runCategory(ctx, category, primaryCutoff, extendedCutoff)
		digest.SourcePools[category] = pool
		digest.Rejections = append(digest.Rejections, rejections...)
		if sel == nil {
			continue
		}

		digest.Articles[category] = sel
		metrics.Global.IncrementArticlesSelected()
		if err := p.store.MarkSeen(ctx, sel.URL, now); err != nil {
			slog.Error("Failed to mark url seen", "url", sel.URL, "err", err)
			metrics.Global.SetError(err.Error())
		}
	}

	content := render.Markdown(*digest)
	path, err := render.WriteDigest(p.opts.DigestDir, now, content)
	if err != nil {
		metrics.Global.SetError(err.Error())
		return digest, err
	}
	slog.Info("Saved digest", "path", path)

	if err := render.UpdateReadme(p.opts.ReadmePath, content); err != nil {
		metrics.Global.SetError(err.Error())
		return digest, err
	}
	slog.Info("Updated README", "path", p.opts.ReadmePath)

	if p.notifier != nil {
		if err := p.notifier.SendMessage(ctx, telegram.FormatDigest(now, digest.Articles)); err != nil {
			slog.Error("Notification failed", "err", err)
		}
	}

	metrics.Global.SetLastRun()
	slog.Info("Digest generation complete", "selected", len(digest.Articles))
	return digest, nil
}

// runCategory builds the pool for category and selects from it. pool is the
// list of feed names that contributed candidates, in first-seen order.
func (p *Pipeline) runCategory(ctx context.Context, category feeds.Category, primaryCutoff, extendedCutoff time.Time) (sel *news.Selection, rejections []news.Rejection, pool []string) {
	feedList, err := p.catalog.FeedsFor(category)
	if err != nil {
		slog.Error("Cannot resolve feeds", "category", category, "err", err)
		return nil, nil, nil
	}

	candidates := news.BuildPool(ctx, p.source, feedList, primaryCutoff, extendedCutoff, p.opts.MaxCandidates)
	pool = sourceNames(candidates)
	if len(candidates) == 0 {
		slog.Warn("No candidates found", "category", category)
		return nil, nil, pool
	}

	sel, rejections = p.arbiter.Select(ctx, category, candidates)
	return sel, rejections, pool
}

func sourceNames(candidates []rss.Entry) []string {
	seen := make(map[string]struct{})
	var names []string
	for _, c := range candidates {
		if _, ok := seen[c.FeedName]; ok {
			continue
		}
		seen[c.FeedName] = struct{}{}
		names = append(names, c.FeedName)
	}
	return names
}

// ListSeen writes every stored URL with its first-seen time, oldest first.
func ListSeen(ctx context.Context, store storage.SeenStore, w io.Writer) error {
	records, err := store.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list seen urls: %w", err)
	}
	for _, r := range records {
		if _, err := fmt.Fprintf(w, "%s\t%s\n", r.FirstSeenAt.Format(time.RFC3339), r.URL); err != nil {
			return err
		}
	}
	return nil
}
