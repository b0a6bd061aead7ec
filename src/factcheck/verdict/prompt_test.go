package verdict

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildPrompt(t *testing.T) {
	docs := []EvidenceDoc{
		{
			Title:       "Water detected on Mars",
			URL:         "https://example.com/mars",
			Source:      "Reuters",
			Published:   "2024-05-01",
			Text:        "Scientists confirmed signs of liquid water.",
			Credibility: 0.95,
		},
		{
			Title:       "Second take",
			URL:         "https://example.org/second",
			Credibility: 0.5,
		},
	}

	prompt := BuildPrompt("Water found on Mars", docs)

	assert.Contains(t, prompt, `CLAIM: "Water found on Mars"`)
	assert.Contains(t, prompt, "[1] Water detected on Mars")
	assert.Contains(t, prompt, "Source: Reuters (credibility 0.95)")
	assert.Contains(t, prompt, "Published: 2024-05-01")
	assert.Contains(t, prompt, "Excerpt: Scientists confirmed signs of liquid water.")
	assert.Contains(t, prompt, "[2] Second take")
	assert.Contains(t, prompt, "Source: https://example.org/second (credibility 0.50)",
		"URL stands in when the publisher name is missing")
	assert.Contains(t, prompt, "Excerpt: (article body unavailable)")
	assert.Contains(t, prompt, `"verdict": "Likely True" | "Likely False" | "Uncertain"`)
}

func TestBuildPromptWithoutEvidence(t *testing.T) {
	prompt := BuildPrompt("Water found on Mars", nil)
	assert.Contains(t, prompt, "EVIDENCE: none retrieved.")
	assert.NotContains(t, prompt, "[1]")
}

func TestTrimSnippet(t *testing.T) {
	short := "Fits entirely."
	assert.Equal(t, short, TrimSnippet(short, 100))

	sentence := "A first sentence that is long enough. More words trail on past the cap."
	got := TrimSnippet(sentence, 40)
	assert.Equal(t, "A first sentence that is long enough.", got)

	words := "word word word word word word word word word word"
	got = TrimSnippet(words, 22)
	assert.LessOrEqual(t, len(got), 22)
	assert.False(t, strings.HasSuffix(got, " "), "cut lands on a word boundary")
	assert.Equal(t, "word word word word", got)
}
