package verdict

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCleanJSON(t *testing.T) {
	raw := `{
		"verdict": "Likely True",
		"confidence": 0.82,
		"rationale": ["NASA confirmed the finding.", "Multiple outlets reported it."],
		"cited_sources": [{"idx": 1, "quote_or_summary": "NASA announced flowing water.", "relevance": "high"}]
	}`

	v, err := Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, LikelyTrue, v.Label)
	assert.InDelta(t, 0.82, v.Confidence, 1e-9)
	require.Len(t, v.Rationale, 2)
	require.Len(t, v.Cited, 1)
	assert.Equal(t, 1, v.Cited[0].Index)
	assert.Equal(t, "high", v.Cited[0].Relevance)
}

func TestParseFencedJSON(t *testing.T) {
	raw := "```json\n{\"verdict\": \"Likely False\", \"confidence\": 0.7, \"rationale\": [\"Refuted.\"], \"cited_sources\": []}\n```"

	v, err := Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, LikelyFalse, v.Label)
	assert.InDelta(t, 0.7, v.Confidence, 1e-9)
}

func TestParseSingleQuotedJSON(t *testing.T) {
	raw := `{'verdict': 'Uncertain', 'confidence': 0.4, 'rationale': ['Mixed coverage'], 'cited_sources': []}`

	v, err := Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, Uncertain, v.Label)
	assert.InDelta(t, 0.4, v.Confidence, 1e-9)
}

func TestParseProseWrappedObject(t *testing.T) {
	raw := "Here is my assessment:\n{\"verdict\": \"Likely True\", \"confidence\": 0.9, \"rationale\": [], \"cited_sources\": []}\nHope this helps."

	v, err := Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, LikelyTrue, v.Label)
}

func TestParseGarbage(t *testing.T) {
	_, err := Parse("I cannot evaluate this claim.")
	assert.Error(t, err)
}

func TestParseLabelNormalization(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{`{"verdict": "likely true"}`, LikelyTrue},
		{`{"verdict": " LIKELY FALSE "}`, LikelyFalse},
		{`{"verdict": "probably"}`, Uncertain},
		{`{"confidence": 0.5}`, Uncertain},
	}
	for _, tt := range tests {
		v, err := Parse(tt.raw)
		require.NoError(t, err, tt.raw)
		assert.Equal(t, tt.want, v.Label, tt.raw)
	}
}

func TestParseConfidenceBounds(t *testing.T) {
	v, err := Parse(`{"verdict": "Uncertain"}`)
	require.NoError(t, err)
	assert.InDelta(t, 0.5, v.Confidence, 1e-9, "missing confidence defaults to 0.5")

	v, err = Parse(`{"verdict": "Uncertain", "confidence": 1.7}`)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, v.Confidence, 1e-9)

	v, err = Parse(`{"verdict": "Uncertain", "confidence": -0.3}`)
	require.NoError(t, err)
	assert.InDelta(t, 0.0, v.Confidence, 1e-9)
}

func TestParseRationaleCap(t *testing.T) {
	raw := `{"verdict": "Uncertain", "rationale": ["a", "", "b", "c", "d"]}`

	v, err := Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, v.Rationale)
}

func TestParseCitedSourceValidation(t *testing.T) {
	raw := `{"verdict": "Uncertain", "cited_sources": [
		{"idx": 1, "quote_or_summary": "q1", "relevance": "HIGH"},
		{"idx": 2, "quote_or_summary": "q2", "relevance": "banana"},
		{"idx": 3, "quote_or_summary": "q3", "relevance": "low"},
		{"idx": 4, "quote_or_summary": "q4", "relevance": "med"}
	]}`

	v, err := Parse(raw)
	require.NoError(t, err)
	require.Len(t, v.Cited, 3, "citations are capped at three")
	assert.Equal(t, "high", v.Cited[0].Relevance)
	assert.Equal(t, "med", v.Cited[1].Relevance, "unknown relevance collapses to med")
	assert.Equal(t, "low", v.Cited[2].Relevance)
}

func TestSalvageLabelAndConfidence(t *testing.T) {
	v := Salvage("Based on the evidence the claim is Likely False.\nConfidence: 0.8", nil)
	assert.Equal(t, LikelyFalse, v.Label)
	assert.InDelta(t, 0.8, v.Confidence, 1e-9)
}

func TestSalvagePicksEarliestLabel(t *testing.T) {
	v := Salvage("Uncertain at first glance, though some call it likely true.", nil)
	assert.Equal(t, Uncertain, v.Label)
}

func TestSalvagePercentConfidence(t *testing.T) {
	v := Salvage("I am roughly 75% sure the claim holds, so likely true.", nil)
	assert.Equal(t, LikelyTrue, v.Label)
	assert.InDelta(t, 0.75, v.Confidence, 1e-9)
}

func TestSalvageDefaults(t *testing.T) {
	docs := []EvidenceDoc{
		{Title: "First", Text: "Body of the first article."},
		{Title: "Second", Text: "Body of the second article."},
	}

	v := Salvage("", docs)
	assert.Equal(t, Uncertain, v.Label)
	assert.InDelta(t, 0.5, v.Confidence, 1e-9)
	require.Len(t, v.Rationale, 1)
	assert.Equal(t, "The model response could not be fully parsed.", v.Rationale[0])
	require.Len(t, v.Cited, 2)
	assert.Equal(t, 1, v.Cited[0].Index)
	assert.Equal(t, "med", v.Cited[0].Relevance)
}

func TestSalvageSkipsFenceLines(t *testing.T) {
	v := Salvage("```json\n```\n- The sources disagree.\n- Coverage is thin.", nil)
	require.NotEmpty(t, v.Rationale)
	assert.Equal(t, "The sources disagree.", v.Rationale[0])
}
