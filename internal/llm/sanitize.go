package llm

import (
	"regexp"
	"strings"
)

var (
	inlineNote  = regexp.MustCompile(`(?i)\s*[\(\[]\s*note:[^\)\]]*[\)\]]`)
	codeFencing = regexp.MustCompile("(?m)^```[a-z]*\\s*$")
)

// SanitizeText strips bracketed notes and markdown fences that models add
// around their answer. Line structure is preserved; whole lines are never
// dropped, so content that starts with "Note:" survives.
func SanitizeText(s string) string {
	s = strings.ReplaceAll(s, "\r", "")
	s = codeFencing.ReplaceAllString(s, "")
	s = inlineNote.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}
