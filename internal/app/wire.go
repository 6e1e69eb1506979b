package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/deusflow/dailyreads/internal/config"
	"github.com/deusflow/dailyreads/internal/feeds"
	"github.com/deusflow/dailyreads/internal/gemini"
	"github.com/deusflow/dailyreads/internal/llm"
	"github.com/deusflow/dailyreads/internal/news"
	"github.com/deusflow/dailyreads/internal/openai"
	"github.com/deusflow/dailyreads/internal/ratelimit"
	"github.com/deusflow/dailyreads/internal/rss"
	"github.com/deusflow/dailyreads/internal/scraper"
	"github.com/deusflow/dailyreads/internal/storage"
	"github.com/deusflow/dailyreads/internal/summary"
	"github.com/deusflow/dailyreads/internal/telegram"
)

// OpenStore opens the seen-URL store selected in cfg.
func OpenStore(ctx context.Context, cfg *config.Config) (storage.SeenStore, error) {
	return storage.Open(ctx, storage.Options{
		Backend:     cfg.StateBackend,
		SQLitePath:  cfg.StateDBPath,
		FilePath:    cfg.StateFilePath,
		DatabaseURL: cfg.DatabaseURL,
	})
}

// Build wires the production pipeline. The returned cleanup releases the
// model client and the store.
func Build(ctx context.Context, cfg *config.Config) (*Pipeline, func(), error) {
	catalog, err := feeds.Load(cfg.FeedsConfigPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load feed catalog: %w", err)
	}

	store, err := OpenStore(ctx, cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open seen store: %w", err)
	}

	model, closeModel, err := newCompleter(ctx, cfg)
	if err != nil {
		store.Close()
		return nil, nil, err
	}
	limited := ratelimit.New(model, ratelimit.Config{
		MaxRequests:       cfg.MaxLLMRequests,
		RequestsPerMinute: cfg.LLMRequestsPerMinute,
		Timeout:           cfg.LLMTimeout,
	})

	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = scraper.DefaultUserAgent
	}

	arbiter := news.NewArbiter(
		store,
		scraper.NewEngine(cfg.RequestTimeout, userAgent),
		news.NewScorer(catalog),
		limited,
		summary.New(limited),
		cfg.TopN,
	)

	var notifier Notifier
	if cfg.TelegramEnabled() {
		notifier = telegram.NewNotifier(cfg.TelegramToken, cfg.TelegramChatID)
	}

	p := NewPipeline(catalog, rss.NewFetcher(cfg.FeedTimeout, userAgent), arbiter, store, notifier, Options{
		PrimaryWindow:  cfg.PrimaryWindow,
		ExtendedWindow: cfg.ExtendedWindow,
		MaxCandidates:  cfg.MaxCandidates,
		DigestDir:      cfg.DigestDir,
		ReadmePath:     cfg.ReadmePath,
	})

	cleanup := func() {
		limited.PrintStats()
		closeModel()
		if err := store.Close(); err != nil {
			slog.Warn("Failed to close seen store", "err", err)
		}
	}
	return p, cleanup, nil
}

func newCompleter(ctx context.Context, cfg *config.Config) (llm.Completer, func(), error) {
	switch cfg.LLMProvider {
	case config.ProviderOpenAI:
		slog.Info("Using OpenAI backend", "model", cfg.OpenAIModel)
		return openai.NewClient(cfg.OpenAIAPIKey, cfg.OpenAIModel, cfg.OpenAIBaseURL), func() {}, nil
	default:
		client, err := gemini.NewClient(ctx, cfg.GeminiAPIKey, cfg.ModelName)
		if err != nil {
			return nil, nil, err
		}
		slog.Info("Using Gemini backend", "model", cfg.ModelName)
		return client, client.Close, nil
	}
}
