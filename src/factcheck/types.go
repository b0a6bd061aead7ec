// Package factcheck runs the claim verification pipeline: news retrieval,
// article extraction, credibility scoring, and verdict judgment.
package factcheck

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/factcheck-ai/factcheck/src/factcheck/newsfetch"
	"github.com/factcheck-ai/factcheck/src/factcheck/verdict"
)

const (
	MaxClaimChars = 2000

	MinArticles     = 3
	MaxArticles     = 15
	DefaultArticles = 8

	MinFreshnessHours     = 6
	MaxFreshnessHours     = 168
	DefaultFreshnessHours = 48
)

var (
	ErrEmptyClaim   = errors.New("claim is empty")
	ErrClaimTooLong = errors.New("claim exceeds maximum length")
)

// Request describes one claim check. Zero values for the tuning fields mean
// the defaults.
type Request struct {
	Claim          string `json:"claim"`
	Region         string `json:"region"`
	MaxArticles    int    `json:"max_articles"`
	FreshnessHours int    `json:"freshness_hours"`
}

// Normalize validates the claim and clamps the tuning fields into range.
func (r *Request) Normalize() error {
	r.Claim = strings.TrimSpace(r.Claim)
	if r.Claim == "" {
		return ErrEmptyClaim
	}
	if utf8.RuneCountInString(r.Claim) > MaxClaimChars {
		return ErrClaimTooLong
	}
	r.Region = newsfetch.NormalizeRegion(r.Region)
	r.MaxArticles = clampInt(r.MaxArticles, MinArticles, MaxArticles, DefaultArticles)
	r.FreshnessHours = clampInt(r.FreshnessHours, MinFreshnessHours, MaxFreshnessHours, DefaultFreshnessHours)
	return nil
}

// Key identifies this request's cached result. Call Normalize first.
func (r *Request) Key() string {
	return CacheKey(r.Claim, r.Region, r.MaxArticles, r.FreshnessHours)
}

// SourceReport is the per-article view shown alongside a verdict.
type SourceReport struct {
	Title            string     `json:"title"`
	URL              string     `json:"url"`
	Source           string     `json:"source,omitempty"`
	Published        *time.Time `json:"published,omitempty"`
	Credibility      float64    `json:"credibility"`
	CredibilityLabel string     `json:"credibility_label"`
	Excerpt          string     `json:"excerpt,omitempty"`
	Extracted        bool       `json:"extracted"`
}

type Timings struct {
	RetrievalMS  int64 `json:"retrieval_ms"`
	ExtractionMS int64 `json:"extraction_ms"`
	JudgmentMS   int64 `json:"judgment_ms"`
	TotalMS      int64 `json:"total_ms"`
}

// Result is a finished check.
type Result struct {
	Claim     string         `json:"claim"`
	Region    string         `json:"region"`
	FeedURL   string         `json:"feed_url,omitempty"`
	Verdict   verdict.Result `json:"verdict"`
	Sources   []SourceReport `json:"sources"`
	Degraded  bool           `json:"degraded,omitempty"`
	Cached    bool           `json:"cached,omitempty"`
	Timings   Timings        `json:"timings"`
	CheckedAt time.Time      `json:"checked_at"`
}

// EvidenceText reassembles the evidence block for follow-up questions.
func (r *Result) EvidenceText() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Claim: %q\n", r.Claim)
	fmt.Fprintf(&b, "Verdict: %s (confidence %.2f)\n\n", r.Verdict.Label, r.Verdict.Confidence)
	for i, s := range r.Sources {
		name := s.Source
		if name == "" {
			name = s.URL
		}
		fmt.Fprintf(&b, "[%d] %s (%s, credibility %.2f)\n", i+1, s.Title, name, s.Credibility)
		if s.Excerpt != "" {
			b.WriteString(s.Excerpt + "\n")
		}
		b.WriteString("\n")
	}
	return b.String()
}

func clampInt(v, min, max, def int) int {
	switch {
	case v == 0:
		return def
	case v < min:
		return min
	case v > max:
		return max
	}
	return v
}
