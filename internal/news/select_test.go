package news

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deusflow/dailyreads/internal/feeds"
	"github.com/deusflow/dailyreads/internal/llm"
	"github.com/deusflow/dailyreads/internal/rss"
	"github.com/deusflow/dailyreads/internal/scraper"
)

type seenSet map[string]bool

func (s seenSet) IsSeen(_ context.Context, url string) (bool, error) { return s[url], nil }

type brokenSeen struct{}

func (brokenSeen) IsSeen(context.Context, string) (bool, error) {
	return false, errors.New("database is locked")
}

type fakeExtractor map[string]scraper.Result

func (f fakeExtractor) Extract(_ context.Context, url, _ string) scraper.Result {
	if r, ok := f[url]; ok {
		return r
	}
	return scraper.Result{Text: "article body for " + url, Status: scraper.StatusOK}
}

type fixedSummarizer struct{}

func (fixedSummarizer) Summarize(context.Context, string) []string {
	return []string{"one", "two", "three"}
}

type countingModel struct {
	reply string
	err   error
	calls int
}

func (m *countingModel) Complete(context.Context, string) (string, error) {
	m.calls++
	return m.reply, m.err
}

func cand(url, title string) rss.Entry {
	return rss.Entry{URL: url, Title: title, Summary: "", FeedWeight: 1}
}

func newTestArbiter(seen SeenChecker, ex Extractor, model llm.Completer) *Arbiter {
	return NewArbiter(seen, ex, testScorer(), model, fixedSummarizer{}, 3)
}

func reasons(rs []Rejection) map[string]string {
	out := make(map[string]string, len(rs))
	for _, r := range rs {
		out[r.URL] = r.Reason
	}
	return out
}

func TestSelect_RejectionReasons(t *testing.T) {
	ex := fakeExtractor{
		"https://p.com":  {Status: scraper.StatusPaywall},
		"https://f.com":  {Status: scraper.StatusFetchFailed},
		"https://e.com":  {Status: scraper.StatusExtractionFailed},
		"https://s.com":  {Status: scraper.StatusTooShort},
		"https://n.com":  {Status: scraper.StatusFallbackRSS},
		"https://ok.com": {Text: "stocks up", Status: scraper.StatusOK},
	}
	model := &countingModel{}
	a := newTestArbiter(seenSet{"https://d.com": true}, ex, model)

	sel, rej := a.Select(context.Background(), feeds.Markets, []rss.Entry{
		cand("https://d.com", "dup"),
		cand("https://p.com", "paywalled"),
		cand("https://f.com", "fetch"),
		cand("https://e.com", "extract"),
		cand("https://s.com", "short"),
		cand("https://n.com", "empty"),
		cand("https://ok.com", "good"),
	})

	require.NotNil(t, sel)
	assert.Equal(t, "https://ok.com", sel.URL)
	assert.Len(t, sel.Bullets, 3)
	assert.Zero(t, model.calls)

	assert.Equal(t, map[string]string{
		"https://d.com": "duplicate",
		"https://p.com": "paywall",
		"https://f.com": "extraction failed (fetch_failed)",
		"https://e.com": "extraction failed (extraction_failed)",
		"https://s.com": "extraction failed (too_short)",
		"https://n.com": "no text available",
	}, reasons(rej))
	assert.Equal(t, "duplicate", rej[0].Reason)
}

func TestSelect_AllSeen(t *testing.T) {
	a := newTestArbiter(seenSet{"https://a.com": true}, fakeExtractor{}, nil)
	sel, rej := a.Select(context.Background(), feeds.AI, []rss.Entry{cand("https://a.com", "a")})
	assert.Nil(t, sel)
	assert.Len(t, rej, 1)
}

func TestSelect_NothingExtractable(t *testing.T) {
	ex := fakeExtractor{"https://a.com": {Status: scraper.StatusPaywall}}
	a := newTestArbiter(seenSet{}, ex, nil)
	sel, rej := a.Select(context.Background(), feeds.AI, []rss.Entry{cand("https://a.com", "a")})
	assert.Nil(t, sel)
	assert.Equal(t, []Rejection{{URL: "https://a.com", Reason: "paywall"}}, rej)
}

func TestSelect_SeenErrorTreatedAsUnseen(t *testing.T) {
	a := newTestArbiter(brokenSeen{}, fakeExtractor{}, nil)
	sel, _ := a.Select(context.Background(), feeds.AI, []rss.Entry{cand("https://a.com", "a")})
	require.NotNil(t, sel)
	assert.Equal(t, "https://a.com", sel.URL)
}

func threeCandidates() []rss.Entry {
	return []rss.Entry{
		cand("https://one.com", "stocks stocks stocks"),
		cand("https://two.com", "stocks stocks"),
		cand("https://three.com", "stocks"),
		cand("https://four.com", "nothing"),
	}
}

func TestSelect_ModelChoice(t *testing.T) {
	model := &countingModel{reply: "I would pick candidate 2."}
	a := newTestArbiter(seenSet{}, fakeExtractor{}, model)

	sel, rej := a.Select(context.Background(), feeds.Markets, threeCandidates())
	require.NotNil(t, sel)
	assert.Equal(t, "https://two.com", sel.URL)
	assert.Equal(t, 1, model.calls)

	got := reasons(rej)
	assert.Equal(t, "not selected (lower relevance)", got["https://one.com"])
	assert.Equal(t, "not selected (lower relevance)", got["https://three.com"])
	assert.NotContains(t, got, "https://four.com")
}

func TestSelect_ModelFallbacks(t *testing.T) {
	cases := map[string]*countingModel{
		"error":        {err: errors.New("quota exceeded")},
		"unparseable":  {reply: "the first one"},
		"out of range": {reply: "3"},
		"digit inside": {reply: "candidate12"},
	}
	for name, model := range cases {
		t.Run(name, func(t *testing.T) {
			a := newTestArbiter(seenSet{}, fakeExtractor{}, model)
			sel, _ := a.Select(context.Background(), feeds.Markets, threeCandidates()[:2])
			require.NotNil(t, sel)
			assert.Equal(t, "https://one.com", sel.URL)
		})
	}
}

func TestArbitrationPrompt(t *testing.T) {
	long := strings.Repeat("z", 900)
	top := []Scored{
		{Extracted: Extracted{Entry: rss.Entry{Title: "First"}, Text: long}},
		{Extracted: Extracted{Entry: rss.Entry{Title: "Second"}, Text: "short"}},
	}
	p := arbitrationPrompt(feeds.AI, top)

	assert.Contains(t, p, "Candidate 1: First\n")
	assert.Contains(t, p, "Candidate 2: Second\nshort")
	assert.Equal(t, snippetChars, strings.Count(p, "z"))
	assert.Contains(t, p, `"ai" category`)
}

func TestParseChoice(t *testing.T) {
	idx, ok := parseChoice("2", 3)
	assert.True(t, ok)
	assert.Equal(t, 1, idx)

	_, ok = parseChoice("4", 3)
	assert.False(t, ok)
	_, ok = parseChoice("3", 2)
	assert.False(t, ok)
}
