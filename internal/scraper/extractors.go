package scraper

import (
	"errors"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"

	"github.com/deusflow/dailyreads/internal/urlnorm"
)

// TextExtractor turns raw article HTML into readable text. An empty string
// with a nil error means nothing usable was found.
type TextExtractor interface {
	ExtractText(html string, pageURL *url.URL) (string, error)
}

// TextExtractorFunc adapts a function to TextExtractor.
type TextExtractorFunc func(html string, pageURL *url.URL) (string, error)

func (f TextExtractorFunc) ExtractText(html string, pageURL *url.URL) (string, error) {
	return f(html, pageURL)
}

// ReadabilityExtractor uses the Mozilla Readability port.
type ReadabilityExtractor struct{}

func (ReadabilityExtractor) ExtractText(html string, pageURL *url.URL) (string, error) {
	article, err := readability.FromReader(strings.NewReader(html), pageURL)
	if err != nil {
		return "", err
	}
	return tidyText(article.TextContent), nil
}

// SelectorExtractor collects paragraphs using CSS selectors, trying
// publisher-specific selectors before the generic list.
type SelectorExtractor struct{}

// siteSelectors are tried first when the page domain ends with the key.
var siteSelectors = map[string][]string{
	"theverge.com":         {".duet--article--article-body-component p", "article p"},
	"arstechnica.com":      {".post-content p", "article p"},
	"techcrunch.com":       {".wp-block-post-content p", ".article-content p"},
	"wired.com":            {".body__inner-container p", "article p"},
	"technologyreview.com": {"#content--body p", ".contentBody p", "article p"},
	"marketwatch.com":      {".article__body p", "#js-article__body p"},
}

// genericSelectors are tried in order until one yields enough paragraphs.
var genericSelectors = []string{
	"article p",
	".article p",
	".content p",
	".post-content p",
	".entry-content p",
	"main p",
	"#content p",
	".text p",
	"p",
}

const minParagraphChars = 20

func (SelectorExtractor) ExtractText(html string, pageURL *url.URL) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", err
	}
	doc.Find("script, style, nav, footer, aside, form").Remove()

	var selectors []string
	if pageURL != nil {
		domain := urlnorm.Domain(pageURL.String())
		for site, sel := range siteSelectors {
			if domain == site || strings.HasSuffix(domain, "."+site) {
				selectors = append(selectors, sel...)
			}
		}
	}
	selectors = append(selectors, genericSelectors...)

	for _, selector := range selectors {
		var paragraphs []string
		doc.Find(selector).Each(func(i int, s *goquery.Selection) {
			text := strings.Join(strings.Fields(s.Text()), " ")
			if len(text) > minParagraphChars && !isJunk(text) {
				paragraphs = append(paragraphs, text)
			}
		})
		if len(paragraphs) >= 3 {
			return strings.Join(paragraphs, "\n\n"), nil
		}
	}
	return "", nil
}

var junkIndicators = []string{
	"cookie", "advertisement", "sign up for", "newsletter", "all rights reserved",
	"share this", "follow us", "read more:",
}

func isJunk(paragraph string) bool {
	lower := strings.ToLower(paragraph)
	for _, indicator := range junkIndicators {
		if strings.Contains(lower, indicator) {
			return true
		}
	}
	return false
}

// Chain runs extractors in order and returns the first non-empty text.
type Chain []TextExtractor

// DefaultChain is readability first, CSS selectors second.
func DefaultChain() Chain {
	return Chain{ReadabilityExtractor{}, SelectorExtractor{}}
}

func (c Chain) ExtractText(html string, pageURL *url.URL) (string, error) {
	var errs []error
	for _, ex := range c {
		text, err := ex.ExtractText(html, pageURL)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if text = strings.TrimSpace(text); text != "" {
			return text, nil
		}
	}
	return "", errors.Join(errs...)
}

// tidyText trims every line and drops blank ones.
func tidyText(s string) string {
	lines := strings.Split(s, "\n")
	kept := lines[:0]
	for _, line := range lines {
		if line = strings.TrimSpace(line); line != "" {
			kept = append(kept, line)
		}
	}
	return strings.Join(kept, "\n")
}
