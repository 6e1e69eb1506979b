package news

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"

	"github.com/deusflow/dailyreads/internal/feeds"
	"github.com/deusflow/dailyreads/internal/llm"
	"github.com/deusflow/dailyreads/internal/metrics"
	"github.com/deusflow/dailyreads/internal/rss"
	"github.com/deusflow/dailyreads/internal/scraper"
)

// DefaultTopN is how many ranked candidates go to arbitration.
const DefaultTopN = 3

const snippetChars = 500

var choicePattern = regexp.MustCompile(`\b([123])\b`)

// SeenChecker reports whether a URL was selected in an earlier run.
type SeenChecker interface {
	IsSeen(ctx context.Context, url string) (bool, error)
}

// Extractor resolves the article text of a candidate URL.
type Extractor interface {
	Extract(ctx context.Context, url, rssSummary string) scraper.Result
}

// Summarizer condenses article text into bullets.
type Summarizer interface {
	Summarize(ctx context.Context, text string) []string
}

// Arbiter picks one article per category.
type Arbiter struct {
	seen       SeenChecker
	extractor  Extractor
	scorer     *Scorer
	model      llm.Completer
	summarizer Summarizer
	topN       int
}

// NewArbiter wires the selection stages. model may be nil, in which case the
// top-scored candidate always wins.
func NewArbiter(seen SeenChecker, extractor Extractor, scorer *Scorer, model llm.Completer, summarizer Summarizer, topN int) *Arbiter {
	if topN <= 0 {
		topN = DefaultTopN
	}
	return &Arbiter{
		seen:       seen,
		extractor:  extractor,
		scorer:     scorer,
		model:      model,
		summarizer: summarizer,
		topN:       topN,
	}
}

// Select runs the seen filter, extraction, ranking, arbitration and
// summarization in that order. It returns nil when nothing survives.
func (a *Arbiter) Select(ctx context.Context, category feeds.Category, candidates []rss.Entry) (*Selection, []Rejection) {
	var rejections []Rejection

	unseen := a.filterSeen(ctx, candidates, &rejections)
	if len(unseen) == 0 {
		slog.Warn("No unseen candidates", "category", category)
		return nil, rejections
	}

	extracted := a.extractAll(ctx, unseen, &rejections)
	if len(extracted) == 0 {
		slog.Warn("No extractable candidates", "category", category)
		return nil, rejections
	}

	top := a.scorer.Rank(extracted, category, a.topN)
	chosen := 0
	if len(top) > 1 {
		chosen = a.arbitrate(ctx, category, top)
	}

	for i, c := range top {
		if i != chosen {
			rejections = append(rejections, Rejection{URL: c.URL, Reason: ReasonNotSelected})
		}
	}

	selected := top[chosen]
	slog.Info("Selected article", "category", category, "title", selected.Title, "score", selected.Score)

	return &Selection{
		Title:   selected.Title,
		URL:     selected.URL,
		Bullets: a.summarizer.Summarize(ctx, selected.Text),
	}, rejections
}

func (a *Arbiter) filterSeen(ctx context.Context, candidates []rss.Entry, rejections *[]Rejection) []rss.Entry {
	unseen := make([]rss.Entry, 0, len(candidates))
	for _, c := range candidates {
		metrics.Global.IncrementCandidatesEvaluated()
		seen, err := a.seen.IsSeen(ctx, c.URL)
		if err != nil {
			slog.Warn("Seen lookup failed, treating as unseen", "url", c.URL, "err", err)
		}
		if seen {
			*rejections = append(*rejections, Rejection{URL: c.URL, Reason: ReasonDuplicate})
			continue
		}
		unseen = append(unseen, c)
	}
	return unseen
}

func (a *Arbiter) extractAll(ctx context.Context, entries []rss.Entry, rejections *[]Rejection) []Extracted {
	var out []Extracted
	for _, e := range entries {
		res := a.extractor.Extract(ctx, e.URL, e.Summary)
		slog.Debug("Extraction finished", "url", e.URL, "status", res.Status, "chars", len(res.Text))

		switch res.Status {
		case scraper.StatusPaywall:
			*rejections = append(*rejections, Rejection{URL: e.URL, Reason: ReasonPaywall})
			continue
		case scraper.StatusFetchFailed, scraper.StatusExtractionFailed, scraper.StatusTooShort:
			*rejections = append(*rejections, Rejection{URL: e.URL, Reason: extractionFailed(res.Status)})
			continue
		}
		if !res.Usable() {
			*rejections = append(*rejections, Rejection{URL: e.URL, Reason: ReasonNoText})
			continue
		}
		out = append(out, Extracted{Entry: e, Text: res.Text, Status: res.Status})
	}
	return out
}

// arbitrate asks the model for the best of top and returns its index,
// falling back to 0 on any failure.
func (a *Arbiter) arbitrate(ctx context.Context, category feeds.Category, top []Scored) int {
	if a.model == nil {
		return 0
	}

	reply, err := a.model.Complete(ctx, arbitrationPrompt(category, top))
	if err != nil {
		slog.Error("Model selection failed, using top-scored", "category", category, "err", err)
		return 0
	}

	idx, ok := parseChoice(reply, len(top))
	if !ok {
		slog.Warn("Could not parse model choice, using top-scored", "category", category, "reply", reply)
		return 0
	}
	slog.Info("Model selected candidate", "category", category, "choice", idx+1)
	return idx
}

func arbitrationPrompt(category feeds.Category, top []Scored) string {
	var b strings.Builder
	for i, c := range top {
		fmt.Fprintf(&b, "Candidate %d: %s\n%s\n\n", i+1, c.Title, snippet(c.Text))
	}

	return fmt.Sprintf(`You are selecting the single most relevant and newsworthy article for the "%s" category in a daily digest.

Here are the top candidates:

%s
Which candidate is most relevant and interesting for readers interested in %s?
Answer with just the number (1, 2, or 3).`, category, b.String(), category)
}

// parseChoice returns the zero-based index of the first standalone digit 1-3
// in reply, if it is below n.
func parseChoice(reply string, n int) (int, bool) {
	m := choicePattern.FindStringSubmatch(reply)
	if m == nil {
		return 0, false
	}
	choice, _ := strconv.Atoi(m[1])
	if choice < 1 || choice > n {
		return 0, false
	}
	return choice - 1, true
}

func snippet(text string) string {
	r := []rune(text)
	if len(r) > snippetChars {
		return string(r[:snippetChars])
	}
	return text
}
