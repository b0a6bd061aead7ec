// Package credibility scores how trustworthy an article source looks.
package credibility

import (
	"sort"
	"strings"
	"sync"
)

const (
	baseScore    = 0.5
	lengthBonus  = 0.1
	qualityBonus = 0.05

	// Bodies need this many words before the length bonus applies.
	lengthBonusWords = 200
)

// Phrases that suggest sourced reporting rather than commentary.
var qualityMarkers = []string{"study", "research", "data", "according to", "experts say"}

// DefaultSources returns the built-in domain trust table. Values are
// matched as substrings against the lowercased article URL.
func DefaultSources() map[string]float64 {
	return map[string]float64{
		"reuters.com":     0.95,
		"ap.org":          0.95,
		"bbc.com":         0.9,
		"bbc.co.uk":       0.9,
		"nytimes.com":     0.9,
		"theguardian.com": 0.9,
		"wsj.com":         0.9,
		".gov":            0.95,
		".edu":            0.9,
		".ac.uk":          0.9,
		".edu.au":         0.9,
		"who.int":         0.95,
		"un.org":          0.95,
		"nasa.gov":        0.95,
		"nih.gov":         0.95,
	}
}

// Scorer evaluates article URLs and bodies against a source trust table.
// The table can be swapped at runtime via Reload.
type Scorer struct {
	mu      sync.RWMutex
	sources map[string]float64
}

func NewScorer(sources map[string]float64) *Scorer {
	if len(sources) == 0 {
		sources = DefaultSources()
	}
	return &Scorer{sources: sources}
}

// Reload replaces the trust table. An empty map restores the defaults.
func (s *Scorer) Reload(sources map[string]float64) {
	if len(sources) == 0 {
		sources = DefaultSources()
	}
	s.mu.Lock()
	s.sources = sources
	s.mu.Unlock()
}

// Score returns a credibility value in [0,1]: the best matching table
// entry (default 0.5 for unknown domains) plus content bonuses.
func (s *Scorer) Score(rawURL, body string) float64 {
	score := s.SourceScore(rawURL)

	if len(strings.Fields(body)) > lengthBonusWords {
		score += lengthBonus
	}
	lowered := strings.ToLower(body)
	for _, marker := range qualityMarkers {
		if strings.Contains(lowered, marker) {
			score += qualityBonus
			break
		}
	}

	if score > 1.0 {
		score = 1.0
	}
	if score < 0 {
		score = 0
	}
	return score
}

// SourceScore returns the table score for the URL alone: the highest
// matching entry, or 0.5 when no entry matches.
func (s *Scorer) SourceScore(rawURL string) float64 {
	lowered := strings.ToLower(rawURL)
	score := baseScore
	s.mu.RLock()
	for domain, value := range s.sources {
		if strings.Contains(lowered, domain) && value > score {
			score = value
		}
	}
	s.mu.RUnlock()
	return score
}

// Label buckets a score for display: High above 0.7, Medium above 0.5,
// Low otherwise.
func Label(score float64) string {
	switch {
	case score > 0.7:
		return "High"
	case score > 0.5:
		return "Medium"
	default:
		return "Low"
	}
}

// RankedSources lists the table ordered by score descending, then name.
func (s *Scorer) RankedSources() []Source {
	s.mu.RLock()
	out := make([]Source, 0, len(s.sources))
	for domain, value := range s.sources {
		out = append(out, Source{Domain: domain, Score: value})
	}
	s.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].Domain < out[j].Domain
	})
	return out
}

// Source is one trust table row.
type Source struct {
	Domain string
	Score  float64
}
