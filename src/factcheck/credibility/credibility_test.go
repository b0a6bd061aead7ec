package credibility

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSourceScore(t *testing.T) {
	s := NewScorer(nil)

	tests := []struct {
		name string
		url  string
		want float64
	}{
		{"known publisher", "https://www.reuters.com/world/story", 0.95},
		{"tld match", "https://www.cdc.gov/flu/report", 0.95},
		{"edu suffix", "https://news.stanford.edu/2024/study", 0.9},
		{"unknown domain", "https://randomblog.example.net/post", 0.5},
		{"case insensitive", "HTTPS://WWW.REUTERS.COM/article", 0.95},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, s.SourceScore(tt.url), 1e-9)
		})
	}
}

func TestSourceScorePicksHighestMatch(t *testing.T) {
	s := NewScorer(map[string]float64{
		".gov":     0.95,
		"nasa.gov": 0.8,
	})
	// Both entries match; the higher one wins.
	assert.InDelta(t, 0.95, s.SourceScore("https://www.nasa.gov/mars"), 1e-9)
}

func TestScoreContentBonuses(t *testing.T) {
	s := NewScorer(nil)
	longBody := strings.Repeat("word ", 250)

	t.Run("length bonus", func(t *testing.T) {
		got := s.Score("https://example.net/a", longBody)
		assert.InDelta(t, 0.6, got, 1e-9)
	})

	t.Run("quality marker bonus", func(t *testing.T) {
		got := s.Score("https://example.net/a", "A new study finds something.")
		assert.InDelta(t, 0.55, got, 1e-9)
	})

	t.Run("both bonuses", func(t *testing.T) {
		got := s.Score("https://example.net/a", longBody+" according to experts")
		assert.InDelta(t, 0.65, got, 1e-9)
	})

	t.Run("capped at one", func(t *testing.T) {
		got := s.Score("https://www.reuters.com/a", longBody+" research data")
		assert.InDelta(t, 1.0, got, 1e-9)
	})

	t.Run("short body no bonus", func(t *testing.T) {
		got := s.Score("https://example.net/a", "just a headline")
		assert.InDelta(t, 0.5, got, 1e-9)
	})
}

func TestLabel(t *testing.T) {
	assert.Equal(t, "High", Label(0.95))
	assert.Equal(t, "High", Label(0.71))
	assert.Equal(t, "Medium", Label(0.7))
	assert.Equal(t, "Medium", Label(0.51))
	assert.Equal(t, "Low", Label(0.5))
	assert.Equal(t, "Low", Label(0.1))
}

func TestRankedSources(t *testing.T) {
	s := NewScorer(map[string]float64{
		"b.com": 0.9,
		"a.com": 0.9,
		"c.com": 0.95,
	})
	ranked := s.RankedSources()
	require.Len(t, ranked, 3)
	assert.Equal(t, "c.com", ranked[0].Domain)
	assert.Equal(t, "a.com", ranked[1].Domain)
	assert.Equal(t, "b.com", ranked[2].Domain)
}

func TestReload(t *testing.T) {
	s := NewScorer(nil)
	require.InDelta(t, 0.95, s.SourceScore("https://reuters.com/x"), 1e-9)

	s.Reload(map[string]float64{"reuters.com": 0.2})
	assert.InDelta(t, 0.5, s.SourceScore("https://reuters.com/x"), 1e-9,
		"lowered table entry should no longer beat the base score")

	s.Reload(nil)
	assert.InDelta(t, 0.95, s.SourceScore("https://reuters.com/x"), 1e-9,
		"empty reload restores defaults")
}
