package scraper

import (
	"net/http"
	"regexp"
	"strings"
	"unicode/utf8"
)

var paywallCues = []string{
	`subscribe to continue`,
	`sign in to continue`,
	`this content is for subscribers`,
	`subscription required`,
	`metered paywall`,
	`become a member`,
	`members only`,
	`premium content`,
	`登録が必要です`, // ja: registration required
	`続きを読むには`, // ja: to continue reading
}

var paywallPattern = regexp.MustCompile(`(?i)(` + strings.Join(paywallCues, "|") + `)`)

// shortBodyKeywords flag a paywall only on pages too small to hold an article.
var shortBodyKeywords = []string{"subscribe", "subscription", "sign in", "member"}

const shortBodyChars = 500

// IsPaywalled applies the paywall heuristics to a raw HTML page.
func IsPaywalled(html string, status int) bool {
	if status == http.StatusPaymentRequired || status == http.StatusForbidden {
		return true
	}

	if paywallPattern.MatchString(html) {
		return true
	}

	if utf8.RuneCountInString(html) < shortBodyChars {
		lower := strings.ToLower(html)
		for _, kw := range shortBodyKeywords {
			if strings.Contains(lower, kw) {
				return true
			}
		}
	}

	return false
}
