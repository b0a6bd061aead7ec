// Package verdict turns collected evidence into a claim verdict, via an AI
// provider when one is available and deterministic rules when not.
package verdict

// Verdict labels.
const (
	LikelyTrue  = "Likely True"
	LikelyFalse = "Likely False"
	Uncertain   = "Uncertain"
)

// Engines that can produce a verdict.
const (
	EngineModel     = "model"
	EngineSalvaged  = "salvaged"
	EngineHeuristic = "heuristic"
)

// EvidenceDoc is the slice of an article the judging stage needs.
type EvidenceDoc struct {
	Title       string
	URL         string
	Source      string
	Published   string
	Text        string
	Credibility float64
}

// CitedSource points back at one evidence article.
type CitedSource struct {
	Index     int    `json:"idx"`
	Excerpt   string `json:"quote_or_summary"`
	Relevance string `json:"relevance"`
}

// Verdict is the judged outcome for a claim.
type Verdict struct {
	Label      string        `json:"verdict"`
	Confidence float64       `json:"confidence"`
	Rationale  []string      `json:"rationale"`
	Cited      []CitedSource `json:"cited_sources"`
}

// Vote is one panel member's parsed verdict.
type Vote struct {
	Provider   string  `json:"provider"`
	Label      string  `json:"label"`
	Confidence float64 `json:"confidence"`
	Err        string  `json:"err,omitempty"`
}

// Result is a verdict plus how it was produced.
type Result struct {
	Verdict
	Engine    string  `json:"engine"`
	Provider  string  `json:"provider,omitempty"`
	Model     string  `json:"model,omitempty"`
	Agreement float64 `json:"agreement,omitempty"`
	Votes     []Vote  `json:"votes,omitempty"`
}

func normalizeLabel(raw string) string {
	switch canonical(raw) {
	case canonical(LikelyTrue):
		return LikelyTrue
	case canonical(LikelyFalse):
		return LikelyFalse
	case canonical(Uncertain):
		return Uncertain
	}
	return ""
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
