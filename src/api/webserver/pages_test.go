package webserver

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/factcheck-ai/factcheck/src/factcheck"
	"github.com/factcheck-ai/factcheck/src/factcheck/verdict"
)

func TestHomeViewDefaults(t *testing.T) {
	p := NewPages(nil, nil, nil)
	v := p.homeView("boom", "previous claim")

	assert.Equal(t, "boom", v.Error)
	assert.Equal(t, "previous claim", v.Claim)
	assert.Equal(t, "US", v.Region)
	assert.Equal(t, factcheck.DefaultArticles, v.MaxArticles)
	assert.Equal(t, factcheck.DefaultFreshnessHours, v.FreshnessHours)
	assert.NotEmpty(t, v.Tip)
	assert.Contains(t, v.Examples, "NASA discovered water on Mars")
	assert.Contains(t, v.Regions, "GB")
	assert.Len(t, v.Plans, 3)
	assert.Len(t, v.Packs, 3)
}

func TestBuildResultView(t *testing.T) {
	published := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	res := &factcheck.Result{
		Claim:   "Water found on Mars",
		Region:  "US",
		FeedURL: "https://news.google.com/rss/search?q=water",
		Verdict: verdict.Result{
			Verdict: verdict.Verdict{
				Label:      verdict.LikelyTrue,
				Confidence: 0.85,
				Rationale:  []string{"Multiple outlets agree."},
				Cited: []verdict.CitedSource{
					{Index: 1, Excerpt: "NASA announced flowing water.", Relevance: "high"},
					{Index: 9, Excerpt: "dangling reference"},
				},
			},
			Engine: verdict.EngineModel,
		},
		Sources: []factcheck.SourceReport{
			{
				Title:            "Water detected on Mars",
				URL:              "https://reuters.com/mars",
				Source:           "Reuters",
				Published:        &published,
				Credibility:      0.95,
				CredibilityLabel: "High",
				Excerpt:          "Scientists confirmed the finding.",
			},
		},
		CheckedAt: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
	}

	v := buildResultView(res)

	assert.Equal(t, "Likely True", v.Verdict)
	assert.Equal(t, "verdict-true", v.VerdictClass)
	assert.Equal(t, 85, v.ConfidencePct)
	assert.Equal(t, "#2e8b57", v.BarColor)

	require.Len(t, v.Cited, 2)
	assert.Equal(t, "Water detected on Mars", v.Cited[0].Title, "citations resolve to their source")
	assert.Equal(t, "https://reuters.com/mars", v.Cited[0].URL)
	assert.Empty(t, v.Cited[1].Title, "out-of-range citations keep no link")

	require.Len(t, v.Sources, 1)
	assert.Equal(t, 95, v.Sources[0].CredibilityPct)
	assert.Equal(t, "High", v.Sources[0].Label)
	assert.Equal(t, "2024-05-01", v.Sources[0].Published)

	assert.Contains(t, v.Report, "FactCheckAI Analysis Report")
	assert.Contains(t, v.TweetURL, "https://twitter.com/intent/tweet?text=")
}

func TestBuildResultViewColors(t *testing.T) {
	mk := func(label string, conf float64) resultView {
		return buildResultView(&factcheck.Result{
			Verdict: verdict.Result{Verdict: verdict.Verdict{Label: label, Confidence: conf}},
		})
	}

	assert.Equal(t, "verdict-false", mk(verdict.LikelyFalse, 0.8).VerdictClass)
	assert.Equal(t, "verdict-uncertain", mk(verdict.Uncertain, 0.5).VerdictClass)
	assert.Equal(t, "#ff8c00", mk(verdict.Uncertain, 0.5).BarColor)
	assert.Equal(t, "#dc143c", mk(verdict.Uncertain, 0.2).BarColor)
}
