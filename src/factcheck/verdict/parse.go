package verdict

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

type rawPayload struct {
	Verdict      string   `json:"verdict"`
	Confidence   *float64 `json:"confidence"`
	Rationale    []string `json:"rationale"`
	CitedSources []struct {
		Idx            int    `json:"idx"`
		QuoteOrSummary string `json:"quote_or_summary"`
		Relevance      string `json:"relevance"`
	} `json:"cited_sources"`
}

// Parse decodes a model response into a Verdict. It strips code fences,
// extracts the first JSON object, and retries once with single quotes
// rewritten before giving up.
func Parse(raw string) (Verdict, error) {
	text := stripFences(raw)

	candidates := []string{}
	if obj := extractObject(text); obj != "" {
		candidates = append(candidates, obj, strings.ReplaceAll(obj, "'", `"`))
	}
	candidates = append(candidates, text)

	var lastErr error
	for _, candidate := range candidates {
		var payload rawPayload
		if err := json.Unmarshal([]byte(candidate), &payload); err != nil {
			lastErr = err
			continue
		}
		return fromPayload(payload), nil
	}
	if lastErr == nil {
		lastErr = fmt.Errorf("no JSON object found")
	}
	return Verdict{}, fmt.Errorf("parse verdict: %w", lastErr)
}

func fromPayload(payload rawPayload) Verdict {
	label := normalizeLabel(payload.Verdict)
	if label == "" {
		label = Uncertain
	}

	confidence := 0.5
	if payload.Confidence != nil {
		confidence = clamp01(*payload.Confidence)
	}

	rationale := make([]string, 0, 3)
	for _, line := range payload.Rationale {
		if line = strings.TrimSpace(line); line != "" {
			rationale = append(rationale, line)
		}
		if len(rationale) == 3 {
			break
		}
	}

	cited := make([]CitedSource, 0, 3)
	for _, src := range payload.CitedSources {
		relevance := strings.ToLower(strings.TrimSpace(src.Relevance))
		switch relevance {
		case "low", "med", "high":
		default:
			relevance = "med"
		}
		cited = append(cited, CitedSource{
			Index:     src.Idx,
			Excerpt:   strings.TrimSpace(src.QuoteOrSummary),
			Relevance: relevance,
		})
		if len(cited) == 3 {
			break
		}
	}

	return Verdict{
		Label:      label,
		Confidence: confidence,
		Rationale:  rationale,
		Cited:      cited,
	}
}

var (
	percentRe    = regexp.MustCompile(`(\d{1,3})\s*%`)
	confidenceRe = regexp.MustCompile(`(?i)confidence[^0-9]*([01]?\.\d+)`)
)

// Salvage recovers a best-effort verdict from a response that failed JSON
// parsing: label from keywords, confidence from percentages, rationale
// from the first prose lines, citations from the leading evidence docs.
func Salvage(raw string, docs []EvidenceDoc) Verdict {
	lowered := strings.ToLower(raw)

	label := Uncertain
	bestPos := len(lowered) + 1
	for _, candidate := range []string{LikelyTrue, LikelyFalse, Uncertain} {
		if pos := strings.Index(lowered, strings.ToLower(candidate)); pos >= 0 && pos < bestPos {
			bestPos = pos
			label = candidate
		}
	}

	confidence := 0.5
	if m := confidenceRe.FindStringSubmatch(raw); len(m) == 2 {
		if v, err := strconv.ParseFloat(m[1], 64); err == nil {
			confidence = clamp01(v)
		}
	} else if m := percentRe.FindStringSubmatch(raw); len(m) == 2 {
		if v, err := strconv.ParseFloat(m[1], 64); err == nil {
			confidence = clamp01(v / 100)
		}
	}

	rationale := make([]string, 0, 3)
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(strings.TrimLeft(line, "#*-• \t"))
		if line == "" || strings.HasPrefix(line, "```") {
			continue
		}
		if len(line) > 200 {
			line = TrimSnippet(line, 200)
		}
		rationale = append(rationale, line)
		if len(rationale) == 3 {
			break
		}
	}
	if len(rationale) == 0 {
		rationale = append(rationale, "The model response could not be fully parsed.")
	}

	cited := make([]CitedSource, 0, 3)
	for i, doc := range docs {
		if i == 3 {
			break
		}
		cited = append(cited, CitedSource{
			Index:     i + 1,
			Excerpt:   TrimSnippet(doc.Text, 280),
			Relevance: "med",
		})
	}

	return Verdict{
		Label:      label,
		Confidence: confidence,
		Rationale:  rationale,
		Cited:      cited,
	}
}

func stripFences(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "```") {
		return text
	}
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(strings.TrimSpace(text), "```")
	return strings.TrimSpace(text)
}

func extractObject(text string) string {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return ""
	}
	return text[start : end+1]
}

func canonical(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
