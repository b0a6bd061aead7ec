package factcheck

import (
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/factcheck-ai/factcheck/src/factcheck/verdict"
)

func TestRequestNormalize(t *testing.T) {
	req := Request{Claim: "  Water found on Mars  "}
	require.NoError(t, req.Normalize())
	assert.Equal(t, "Water found on Mars", req.Claim)
	assert.Equal(t, "US", req.Region)
	assert.Equal(t, DefaultArticles, req.MaxArticles)
	assert.Equal(t, DefaultFreshnessHours, req.FreshnessHours)
}

func TestRequestNormalizeClamps(t *testing.T) {
	req := Request{Claim: "c", Region: "gb", MaxArticles: 1, FreshnessHours: 500}
	require.NoError(t, req.Normalize())
	assert.Equal(t, "GB", req.Region)
	assert.Equal(t, MinArticles, req.MaxArticles)
	assert.Equal(t, MaxFreshnessHours, req.FreshnessHours)

	req = Request{Claim: "c", MaxArticles: 100, FreshnessHours: 2}
	require.NoError(t, req.Normalize())
	assert.Equal(t, MaxArticles, req.MaxArticles)
	assert.Equal(t, MinFreshnessHours, req.FreshnessHours)
}

func TestRequestNormalizeErrors(t *testing.T) {
	req := Request{Claim: "   "}
	assert.ErrorIs(t, req.Normalize(), ErrEmptyClaim)

	req = Request{Claim: strings.Repeat("a", MaxClaimChars+1)}
	assert.ErrorIs(t, req.Normalize(), ErrClaimTooLong)
}

func TestCacheKey(t *testing.T) {
	key := CacheKey("Water found on Mars", "US", 8, 48)
	assert.Regexp(t, regexp.MustCompile(`^[0-9a-f]{16}$`), key)
	assert.Equal(t, key, CacheKey("Water found on Mars", "US", 8, 48), "keys are stable")

	assert.NotEqual(t, key, CacheKey("Water found on Mars", "GB", 8, 48))
	assert.NotEqual(t, key, CacheKey("Water found on Mars", "US", 10, 48))
	assert.NotEqual(t, key, CacheKey("Water found on Mars", "US", 8, 24))
	assert.NotEqual(t, CacheKey("ab", "c", 1, 1), CacheKey("a", "bc", 1, 1),
		"field boundaries feed the hash")
}

func TestEvidenceText(t *testing.T) {
	res := Result{
		Claim: "Water found on Mars",
		Verdict: verdict.Result{
			Verdict: verdict.Verdict{Label: verdict.LikelyTrue, Confidence: 0.85},
		},
		Sources: []SourceReport{
			{Title: "First", URL: "https://example.com/1", Source: "Reuters", Credibility: 0.95, Excerpt: "Excerpt one."},
			{Title: "Second", URL: "https://example.org/2", Credibility: 0.5},
		},
	}

	text := res.EvidenceText()
	assert.Contains(t, text, `Claim: "Water found on Mars"`)
	assert.Contains(t, text, "Verdict: Likely True (confidence 0.85)")
	assert.Contains(t, text, "[1] First (Reuters, credibility 0.95)")
	assert.Contains(t, text, "Excerpt one.")
	assert.Contains(t, text, "[2] Second (https://example.org/2, credibility 0.50)",
		"URL stands in when the publisher name is missing")
}
