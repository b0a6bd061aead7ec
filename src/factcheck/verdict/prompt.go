package verdict

import (
	"fmt"
	"strings"
)

const (
	// SystemPrompt frames every judging request.
	SystemPrompt = "You are a careful fact-checking assistant. You weigh the supplied evidence, avoid speculation, and respond only in the JSON schema you are asked for."

	snippetLimit = 1200
)

// BuildPrompt renders the judging request: the claim, numbered evidence
// excerpts, and the strict JSON response contract.
func BuildPrompt(claim string, docs []EvidenceDoc) string {
	var b strings.Builder

	b.WriteString("Fact-check the following claim against the evidence articles below.\n\n")
	fmt.Fprintf(&b, "CLAIM: %q\n\n", claim)

	if len(docs) == 0 {
		b.WriteString("EVIDENCE: none retrieved.\n\n")
	} else {
		b.WriteString("EVIDENCE:\n")
		for i, doc := range docs {
			fmt.Fprintf(&b, "[%d] %s\n", i+1, doc.Title)
			fmt.Fprintf(&b, "    Source: %s (credibility %.2f)\n", sourceName(doc), doc.Credibility)
			if doc.Published != "" {
				fmt.Fprintf(&b, "    Published: %s\n", doc.Published)
			}
			if excerpt := TrimSnippet(doc.Text, snippetLimit); excerpt != "" {
				fmt.Fprintf(&b, "    Excerpt: %s\n", excerpt)
			} else {
				b.WriteString("    Excerpt: (article body unavailable)\n")
			}
		}
		b.WriteString("\n")
	}

	b.WriteString(`Respond ONLY with a JSON object in exactly this shape:
{
  "verdict": "Likely True" | "Likely False" | "Uncertain",
  "confidence": <number between 0.0 and 1.0>,
  "rationale": ["<point 1>", "<point 2>", "<point 3>"],
  "cited_sources": [{"idx": <evidence number>, "quote_or_summary": "<short quote or summary>", "relevance": "low" | "med" | "high"}]
}
Cite at most 3 sources. Do not add any text outside the JSON object.`)

	return b.String()
}

// TrimSnippet caps text at limit characters, preferring to cut at the end
// of a sentence and falling back to a word boundary.
func TrimSnippet(text string, limit int) string {
	text = strings.TrimSpace(text)
	if len(text) <= limit {
		return text
	}

	cut := text[:limit]
	if idx := strings.LastIndex(cut, ". "); idx >= limit/2 {
		return cut[:idx+1]
	}
	if idx := strings.LastIndexByte(cut, '.'); idx >= limit/2 {
		return cut[:idx+1]
	}
	if idx := strings.LastIndexByte(cut, ' '); idx > 0 {
		return cut[:idx]
	}
	return cut
}

func sourceName(doc EvidenceDoc) string {
	if strings.TrimSpace(doc.Source) != "" {
		return doc.Source
	}
	return doc.URL
}
