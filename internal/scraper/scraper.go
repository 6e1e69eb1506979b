package scraper

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/deusflow/dailyreads/internal/metrics"
)

// Status describes how an extraction attempt ended.
type Status string

const (
	StatusOK               Status = "ok"
	StatusPaywall          Status = "paywall"
	StatusFetchFailed      Status = "fetch_failed"
	StatusExtractionFailed Status = "extraction_failed"
	StatusTooShort         Status = "too_short"
	StatusFallbackRSS      Status = "fallback_rss"
)

const (
	// MinArticleChars is the shortest extracted text accepted as an article.
	MinArticleChars = 800
	// MinSummaryChars is the shortest feed summary used in place of a short article.
	MinSummaryChars = 200

	maxBodyBytes = 5 << 20
)

// DefaultUserAgent is sent with every article request.
const DefaultUserAgent = "Mozilla/5.0 (compatible; dailyreads/1.0; +https://github.com/deusflow/dailyreads)"

// Result is the outcome of Extract. Text is empty unless Status is ok or fallback_rss.
type Result struct {
	Text   string
	Status Status
}

// Usable reports whether the result carries text worth ranking.
func (r Result) Usable() bool {
	return (r.Status == StatusOK || r.Status == StatusFallbackRSS) && strings.TrimSpace(r.Text) != ""
}

// Engine downloads article pages and turns them into plain text.
type Engine struct {
	client    *http.Client
	userAgent string
	timeout   time.Duration
	extractor TextExtractor
	stages    []stage
}

// NewEngine builds an engine that issues one GET per article. When no
// extractors are given the readability/selector chain is used.
func NewEngine(timeout time.Duration, userAgent string, extractors ...TextExtractor) *Engine {
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	var ex TextExtractor = DefaultChain()
	if len(extractors) > 0 {
		ex = Chain(extractors)
	}
	e := &Engine{
		client:    &http.Client{Timeout: timeout},
		userAgent: userAgent,
		timeout:   timeout,
		extractor: ex,
	}
	e.stages = []stage{e.fetch, checkStatus, checkPaywall, e.extract, checkLength}
	return e
}

// attempt carries state between pipeline stages.
type attempt struct {
	url     string
	summary string
	status  int
	body    string
	text    string
}

// A stage either finishes the attempt with a Result or passes it on.
type stage func(ctx context.Context, a *attempt) (Result, bool)

// Extract fetches rawURL and returns its article text, falling back to the
// feed summary according to the stage rules. It never panics.
func (e *Engine) Extract(ctx context.Context, rawURL, rssSummary string) (res Result) {
	a := &attempt{url: rawURL, summary: strings.TrimSpace(rssSummary)}

	defer func() {
		if r := recover(); r != nil {
			slog.Error("Extraction panicked", "url", rawURL, "panic", r)
			res = fallback(a.summary, StatusExtractionFailed)
		}
		record(res.Status)
	}()

	for _, run := range e.stages {
		if r, done := run(ctx, a); done {
			return r
		}
	}
	return Result{Text: a.text, Status: StatusOK}
}

func (e *Engine) fetch(ctx context.Context, a *attempt) (Result, bool) {
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.url, nil)
	if err != nil {
		slog.Warn("Invalid article URL", "url", a.url, "err", err)
		return fallback(a.summary, StatusFetchFailed), true
	}
	req.Header.Set("User-Agent", e.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := e.client.Do(req)
	if err != nil {
		slog.Warn("Article fetch failed", "url", a.url, "err", err)
		return fallback(a.summary, StatusFetchFailed), true
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		slog.Warn("Reading article body failed", "url", a.url, "err", err)
		return fallback(a.summary, StatusFetchFailed), true
	}
	a.status = resp.StatusCode
	a.body = string(body)
	return Result{}, false
}

func checkStatus(_ context.Context, a *attempt) (Result, bool) {
	switch {
	case a.status == http.StatusPaymentRequired || a.status == http.StatusForbidden:
		slog.Info("Paywall status code", "url", a.url, "status", a.status)
		return Result{Status: StatusPaywall}, true
	case a.status != http.StatusOK:
		slog.Warn("Unexpected article status", "url", a.url, "status", a.status)
		return fallback(a.summary, StatusFetchFailed), true
	}
	return Result{}, false
}

func checkPaywall(_ context.Context, a *attempt) (Result, bool) {
	if IsPaywalled(a.body, a.status) {
		slog.Info("Paywall detected", "url", a.url)
		return Result{Status: StatusPaywall}, true
	}
	return Result{}, false
}

func (e *Engine) extract(_ context.Context, a *attempt) (Result, bool) {
	pageURL, _ := url.Parse(a.url)
	text, err := e.extractor.ExtractText(a.body, pageURL)
	if err != nil {
		slog.Debug("Extractor errors", "url", a.url, "err", err)
	}
	if strings.TrimSpace(text) == "" {
		return fallback(a.summary, StatusExtractionFailed), true
	}
	a.text = strings.TrimSpace(text)
	return Result{}, false
}

func checkLength(_ context.Context, a *attempt) (Result, bool) {
	if utf8.RuneCountInString(a.text) >= MinArticleChars {
		return Result{}, false
	}
	if utf8.RuneCountInString(a.summary) >= MinSummaryChars {
		return Result{Text: a.summary, Status: StatusFallbackRSS}, true
	}
	return Result{Status: StatusTooShort}, true
}

// fallback returns the feed summary when there is one, else the failure status.
func fallback(summary string, status Status) Result {
	if summary != "" {
		return Result{Text: summary, Status: StatusFallbackRSS}
	}
	return Result{Status: status}
}

func record(status Status) {
	switch status {
	case StatusPaywall:
		metrics.Global.IncrementPaywallsDetected()
	case StatusFetchFailed, StatusExtractionFailed, StatusTooShort:
		metrics.Global.IncrementExtractionFailures()
	}
}
