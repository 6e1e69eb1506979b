// Package summary turns article text into exactly three takeaway bullets.
package summary

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/deusflow/dailyreads/internal/llm"
)

// BulletCount is the number of bullets every summary has.
const BulletCount = 3

// Placeholder pads heuristic summaries that found too few sentences.
const Placeholder = "Key information available in full article."

const (
	promptChars    = 8000
	heuristicChars = 1500
	minSentence    = 20
	maxBullet      = 150
)

const promptTemplate = `You write concise bullet summaries for a daily news digest. Do not invent facts not present in the provided text.

Here is the article text:

%s

Produce exactly 3 bullet points of key takeaways. Keep each bullet under 25 words. Output only the bullet points, one per line, without numbering or bullet symbols.`

var (
	bulletMarker   = regexp.MustCompile(`^[-•*]\s+`)
	numberMarker   = regexp.MustCompile(`^\d+[.)]\s+`)
	sentenceBreaks = regexp.MustCompile(`[.!?]+\s+`)
	disclaimerLine = regexp.MustCompile(`(?i)^(note|disclaimer)\s*:`)
)

// attempt produces bullets or an error; the first attempt returning exactly
// BulletCount bullets wins.
type attempt struct {
	name string
	run  func(ctx context.Context, text string) ([]string, error)
}

type Summarizer struct {
	attempts []attempt
}

// New returns a summarizer that asks the model first and falls back to the
// sentence heuristic. A nil completer skips the model.
func New(c llm.Completer) *Summarizer {
	s := &Summarizer{}
	if c != nil {
		s.attempts = append(s.attempts, attempt{name: "model", run: modelBullets(c)})
	}
	return s
}

// Summarize always returns exactly BulletCount bullets.
func (s *Summarizer) Summarize(ctx context.Context, text string) []string {
	for _, a := range s.attempts {
		bullets, err := a.run(ctx, text)
		if err != nil {
			slog.Warn("Summary attempt failed", "attempt", a.name, "err", err)
			continue
		}
		if len(bullets) != BulletCount {
			slog.Warn("Summary attempt returned wrong bullet count", "attempt", a.name, "count", len(bullets))
			continue
		}
		return bullets
	}
	return Heuristic(text)
}

func modelBullets(c llm.Completer) func(context.Context, string) ([]string, error) {
	return func(ctx context.Context, text string) ([]string, error) {
		reply, err := c.Complete(ctx, fmt.Sprintf(promptTemplate, truncateRunes(text, promptChars)))
		if err != nil {
			return nil, err
		}
		return ParseBullets(reply), nil
	}
}

// ParseBullets splits a model reply into bullet lines, stripping list markers.
// When some lines carry a marker, unmarked lines are commentary and dropped.
// Unmarked "Note:" or "Disclaimer:" lines are dropped only when the reply has
// more lines than BulletCount.
func ParseBullets(reply string) []string {
	var marked, plain []string
	hasNote := false
	for _, line := range strings.Split(reply, "\n") {
		line = strings.TrimSpace(line)
		stripped := numberMarker.ReplaceAllString(bulletMarker.ReplaceAllString(line, ""), "")
		stripped = strings.TrimSpace(stripped)
		switch {
		case stripped == "":
		case stripped != line:
			marked = append(marked, stripped)
		default:
			plain = append(plain, stripped)
			if disclaimerLine.MatchString(stripped) {
				hasNote = true
			}
		}
	}

	if len(marked) > 0 {
		return marked
	}
	if len(plain) > BulletCount && hasNote {
		kept := plain[:0]
		for _, line := range plain {
			if !disclaimerLine.MatchString(line) {
				kept = append(kept, line)
			}
		}
		return kept
	}
	return plain
}

// Heuristic builds bullets from the leading sentences of the text.
func Heuristic(text string) []string {
	bullets := make([]string, 0, BulletCount)
	for _, sentence := range sentenceBreaks.Split(truncateRunes(text, heuristicChars), -1) {
		sentence = strings.TrimSpace(sentence)
		if len([]rune(sentence)) <= minSentence {
			continue
		}
		if r := []rune(sentence); len(r) > maxBullet {
			sentence = string(r[:maxBullet-3]) + "..."
		}
		bullets = append(bullets, sentence)
		if len(bullets) == BulletCount {
			break
		}
	}
	for len(bullets) < BulletCount {
		bullets = append(bullets, Placeholder)
	}
	return bullets
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
