// Package render writes the digest markdown and the README "latest" block.
package render

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/deusflow/dailyreads/internal/feeds"
	"github.com/deusflow/dailyreads/internal/news"
)

const (
	StartMarker = "<!-- DIGEST:START -->"
	EndMarker   = "<!-- DIGEST:END -->"

	maxRejections = 15
	maxURLChars   = 80
)

// Digest is everything one run produced.
type Digest struct {
	Date        time.Time
	Articles    map[feeds.Category]*news.Selection
	SourcePools map[feeds.Category][]string
	Rejections  []news.Rejection
}

// Markdown renders d as the daily digest document.
func Markdown(d Digest) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Daily Digest — %s\n\n", d.Date.Format(time.DateOnly))

	for _, c := range feeds.Categories {
		fmt.Fprintf(&b, "## %s\n", c.Title())
		if a := d.Articles[c]; a != nil {
			fmt.Fprintf(&b, "Title: [%s](%s)\n", a.Title, a.URL)
			b.WriteString("Key takeaways:\n")
			for _, bullet := range a.Bullets {
				fmt.Fprintf(&b, "- %s\n", bullet)
			}
		} else {
			b.WriteString("*No suitable article found*\n")
		}
		b.WriteString("\n")
	}

	b.WriteString("## Source pool used today\n")
	for _, c := range feeds.Categories {
		sources := "None"
		if pool := d.SourcePools[c]; len(pool) > 0 {
			sources = strings.Join(pool, ", ")
		}
		fmt.Fprintf(&b, "- %s: %s\n", c.Title(), sources)
	}
	b.WriteString("\n")

	b.WriteString("## Rejected candidates (why)\n")
	if len(d.Rejections) == 0 {
		b.WriteString("- None\n")
	}
	for i, r := range d.Rejections {
		if i == maxRejections {
			break
		}
		fmt.Fprintf(&b, "- %s — %s\n", shortenURL(r.URL), r.Reason)
	}

	return b.String()
}

func shortenURL(u string) string {
	r := []rune(u)
	if len(r) <= maxURLChars {
		return u
	}
	return string(r[:maxURLChars-3]) + "..."
}

// WriteDigest stores content as dir/YYYY-MM-DD.md and returns the path.
func WriteDigest(dir string, date time.Time, content string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create digest directory: %w", err)
	}
	path := filepath.Join(dir, date.Format(time.DateOnly)+".md")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return "", fmt.Errorf("failed to write digest: %w", err)
	}
	return path, nil
}

// UpdateReadme replaces the text between the digest markers in the README at
// path. Markers are appended when missing; a skeleton README is created when
// the file does not exist.
func UpdateReadme(path, digest string) error {
	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		data = []byte(defaultReadme)
	case err != nil:
		return fmt.Errorf("failed to read README: %w", err)
	}

	updated := ReplaceBlock(string(data), digest)
	if err := os.WriteFile(path, []byte(updated), 0o644); err != nil {
		return fmt.Errorf("failed to write README: %w", err)
	}
	return nil
}

// ReplaceBlock puts digest between the markers of content.
func ReplaceBlock(content, digest string) string {
	start := strings.Index(content, StartMarker)
	end := strings.Index(content, EndMarker)
	if start != -1 && end > start {
		return content[:start+len(StartMarker)] + "\n" + digest + "\n" + content[end:]
	}
	return strings.TrimRight(content, " \t\n") + "\n\n" + StartMarker + "\n" + digest + "\n" + EndMarker + "\n"
}

const defaultReadme = `# Daily Reads

Automated daily digest of curated articles on LLMs, AI, and Financial Markets.

## Latest Digest

<!-- DIGEST:START -->
<!-- DIGEST:END -->

## History

See the [digests/](./digests/) folder for all past digests.

## Running locally

` + "```bash" + `
export GEMINI_API_KEY='your-key-here'
go run ./cmd/dailyreads
` + "```" + `
`
