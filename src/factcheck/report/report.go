// Package report renders finished checks as shareable artifacts: a plain
// text summary, a PDF, and social share links.
package report

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/factcheck-ai/factcheck/src/factcheck/verdict"
)

const divider = "──────────────────────────────"

// Render produces the plain text report for a finished check.
func Render(claim string, v verdict.Verdict, sourceCount int, now time.Time) string {
	var b strings.Builder

	b.WriteString("🔍 FactCheckAI Analysis Report\n")
	b.WriteString(divider + "\n\n")
	fmt.Fprintf(&b, "Claim: %q\n\n", claim)
	fmt.Fprintf(&b, "Verdict: %s\n", v.Label)
	fmt.Fprintf(&b, "Confidence: %.0f%%\n\n", v.Confidence*100)

	b.WriteString("Key Findings:\n")
	for i, point := range v.Rationale {
		if i == 3 {
			break
		}
		fmt.Fprintf(&b, "• %s\n", point)
	}

	fmt.Fprintf(&b, "\nSources Analyzed: %d\n", sourceCount)
	fmt.Fprintf(&b, "Analysis Date: %s\n\n", now.Format("2006-01-02 15:04"))
	b.WriteString("───\n")
	b.WriteString("Generated by FactCheckAI - Transparent fact-checking with evidence")

	return b.String()
}

// FileName names the downloadable text report for its generation date.
func FileName(now time.Time) string {
	return fmt.Sprintf("factcheck-%s.txt", now.Format("2006-01-02"))
}

// PDFFileName names the downloadable PDF report for its generation date.
func PDFFileName(now time.Time) string {
	return fmt.Sprintf("factcheck-%s.pdf", now.Format("2006-01-02"))
}

// ShareText builds the one-line summary used for social share links.
func ShareText(claim, label string) string {
	short := claim
	if runes := []rune(short); len(runes) > 60 {
		short = strings.TrimSpace(string(runes[:60])) + "..."
	}
	return fmt.Sprintf("FactCheckAI analysis: '%s' - Verdict: %s", short, label)
}

// TweetURL returns a prefilled tweet intent link.
func TweetURL(text string) string {
	return "https://twitter.com/intent/tweet?text=" + url.QueryEscape(text)
}

// WhatsAppURL returns a prefilled WhatsApp share link.
func WhatsAppURL(text string) string {
	return "https://wa.me/?text=" + url.QueryEscape(text)
}
