package llm

import (
	"strings"
	"testing"
)

func TestSanitizeText_RemovesInlineParenthesizedDisclaimer(t *testing.T) {
	in := "- Revenue rose 12%\n(Note: This summary is machine generated and may contain errors.) - Guidance raised for Q4"
	out := SanitizeText(in)
	if strings.Contains(strings.ToLower(out), "note:") {
		t.Errorf("output still contains disclaimer: %q", out)
	}
	if !strings.Contains(out, "Guidance raised for Q4") {
		t.Errorf("expected content after disclaimer to remain, got: %q", out)
	}
}

func TestSanitizeText_KeepsLinesStartingWithNote(t *testing.T) {
	in := "Note: the Fed held rates steady\nDisclaimer: filings show insider selling\nShares fell 3%"
	out := SanitizeText(in)
	if out != in {
		t.Errorf("content lines were altered: %q", out)
	}
}

func TestSanitizeText_RemovesBracketedDisclaimerAndFences(t *testing.T) {
	in := "```markdown\n[Note: AI output] First point\n```"
	out := SanitizeText(in)
	if strings.Contains(strings.ToLower(out), "note") || strings.Contains(out, "```") {
		t.Errorf("bracketed disclaimer or fence was not removed: %q", out)
	}
	if out != "First point" {
		t.Errorf("expected text preserved, got %q", out)
	}
}

func TestSanitizeText_KeepsLineBreaks(t *testing.T) {
	out := SanitizeText("a\r\nb\nc")
	if got := strings.Count(out, "\n"); got != 2 {
		t.Errorf("expected 2 line breaks, got %d in %q", got, out)
	}
}
