package verdict

import (
	"fmt"
	"math"
	"regexp"
	"strings"
)

var wordRe = regexp.MustCompile(`\w+`)

var contradictionPhrases = []string{
	"no evidence", "not true", "debunk", "false", "denied", "not found", "refute",
}

// Heuristic produces a deterministic verdict from keyword overlap and source
// credibility. It is the last resort when no model output is usable.
func Heuristic(claim string, docs []EvidenceDoc) Verdict {
	keywords := claimKeywords(claim)

	total := len(docs)
	support := 0
	contradict := 0
	credSum := 0.0
	for _, doc := range docs {
		text := strings.ToLower(doc.Title + " " + doc.Text)
		for _, kw := range keywords {
			if strings.Contains(text, kw) {
				support++
				break
			}
		}
		for _, phrase := range contradictionPhrases {
			if strings.Contains(text, phrase) {
				contradict++
				break
			}
		}
		credSum += doc.Credibility
	}

	avgCred := 0.0
	if total > 0 {
		avgCred = credSum / float64(total)
	}

	var label string
	var confidence float64
	var rationale []string
	switch {
	case support >= threshold(total, 0.6) && avgCred > 0.6:
		label = LikelyTrue
		confidence = math.Min(0.9, avgCred)
		rationale = []string{
			fmt.Sprintf("%d/%d sources mention the claim or related keywords.", support, total),
			fmt.Sprintf("Average source credibility is %.2f. Top sources support the claim.", avgCred),
			"No strong contradictory language found in majority of sources.",
		}
	case contradict >= threshold(total, 0.5):
		label = LikelyFalse
		confidence = math.Min(0.85, 0.5+avgCred/2)
		rationale = []string{
			fmt.Sprintf("%d/%d sources contain language indicating the claim was refuted or denied.", contradict, total),
			fmt.Sprintf("Average source credibility is %.2f.", avgCred),
			"Contradictory phrasing suggests claim is likely false or misrepresented.",
		}
	default:
		label = Uncertain
		confidence = math.Min(0.6, avgCred)
		rationale = []string{
			"Evidence is mixed or insufficient to make a confident call.",
			fmt.Sprintf("%d/%d sources mention claim keywords; %d show refutation-like language.", support, total, contradict),
			"Consider more specific search terms or primary sources.",
		}
	}

	cited := make([]CitedSource, 0, 3)
	for i, doc := range docs {
		if i == 3 {
			break
		}
		excerpt := doc.Text
		if excerpt == "" {
			excerpt = doc.Title
		}
		cited = append(cited, CitedSource{
			Index:     i + 1,
			Excerpt:   TrimSnippet(excerpt, 280),
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

func claimKeywords(claim string) []string {
	words := wordRe.FindAllString(strings.ToLower(claim), -1)
	keywords := words[:0]
	for _, w := range words {
		if len(w) > 3 {
			keywords = append(keywords, w)
		}
	}
	return keywords
}

func threshold(total int, ratio float64) int {
	t := int(math.Ceil(float64(total) * ratio))
	if t < 1 {
		t = 1
	}
	return t
}
