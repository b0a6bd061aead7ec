package verdict

import (
	"context"
	"errors"
	"math"

	"go.uber.org/zap"

	"github.com/factcheck-ai/factcheck/src/ai/core"
	"github.com/factcheck-ai/factcheck/src/ai/panel"
	"github.com/factcheck-ai/factcheck/src/logging"
)

// ErrNoModel is returned by Answer when the engine runs without a client.
var ErrNoModel = errors.New("no model configured")

// FollowUpSystemPrompt frames follow-up questions about a finished check.
const FollowUpSystemPrompt = "You are a fact-checking assistant. Answer the user's question using only the " +
	"evidence provided. Be concise, cite sources by their [N] index, and say plainly " +
	"when the evidence does not cover the question."

// Engine turns collected evidence into a Result. It prefers the configured
// model, salvages malformed model output, and falls back to the rule-based
// heuristic when no model response is usable.
type Engine struct {
	client   core.Client
	provider string
	model    string
	log      *zap.Logger
}

func NewEngine(client core.Client, provider, model string, log *zap.Logger) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	return &Engine{client: client, provider: provider, model: model, log: log}
}

// Judge evaluates a claim against the collected evidence.
func (e *Engine) Judge(ctx context.Context, claim string, docs []EvidenceDoc) Result {
	if e.client == nil {
		return e.heuristicResult(claim, docs)
	}
	if p, ok := e.client.(*panel.Client); ok {
		return e.judgePanel(ctx, p, claim, docs)
	}

	prompt := BuildPrompt(claim, docs)
	raw, err := e.client.Respond(ctx, prompt, nil, core.Options{SystemPrompt: SystemPrompt})
	if err != nil {
		if logging.IsRateLimit(err) {
			e.log.Warn("model rate limited, using heuristic", zap.String("provider", e.provider))
		} else {
			e.log.Warn("model call failed, using heuristic", zap.String("provider", e.provider), zap.Error(err))
		}
		return e.heuristicResult(claim, docs)
	}

	verdict, perr := Parse(raw)
	if perr != nil {
		e.log.Warn("model output unparseable, salvaging", zap.String("provider", e.provider), zap.Error(perr))
		return Result{
			Verdict:  Salvage(raw, docs),
			Engine:   EngineSalvaged,
			Provider: e.provider,
			Model:    e.model,
		}
	}
	return Result{
		Verdict:  verdict,
		Engine:   EngineModel,
		Provider: e.provider,
		Model:    e.model,
	}
}

// judgePanel fans the prompt out to all panel members and forms a consensus:
// majority label wins, confidence is the mean over the winning votes, and a
// tied ballot lands on Uncertain.
func (e *Engine) judgePanel(ctx context.Context, p *panel.Client, claim string, docs []EvidenceDoc) Result {
	prompt := BuildPrompt(claim, docs)
	responses := p.RespondAll(ctx, prompt, nil, core.Options{SystemPrompt: SystemPrompt})

	votes := make([]Vote, 0, len(responses))
	verdicts := make([]Verdict, 0, len(responses))
	for _, resp := range responses {
		if resp.Err != nil {
			votes = append(votes, Vote{Provider: resp.Provider, Err: resp.Err.Error()})
			continue
		}
		v, err := Parse(resp.Text)
		if err != nil {
			v = Salvage(resp.Text, docs)
		}
		votes = append(votes, Vote{Provider: resp.Provider, Label: v.Label, Confidence: v.Confidence})
		verdicts = append(verdicts, v)
	}
	if len(verdicts) == 0 {
		e.log.Warn("all panel members failed, using heuristic")
		result := e.heuristicResult(claim, docs)
		result.Votes = votes
		return result
	}

	counts := map[string]int{}
	for _, v := range verdicts {
		counts[v.Label]++
	}
	winner, winnerCount, tied := "", 0, false
	for _, label := range []string{LikelyTrue, LikelyFalse, Uncertain} {
		switch c := counts[label]; {
		case c > winnerCount:
			winner, winnerCount, tied = label, c, false
		case c == winnerCount && c > 0 && label != winner:
			tied = true
		}
	}
	agreement := float64(winnerCount) / float64(len(verdicts))

	var base Verdict
	var confidence float64
	if tied {
		base = bestVerdict(verdicts, "")
		base.Label = Uncertain
		confidence = math.Min(0.6, meanConfidence(verdicts, ""))
	} else {
		base = bestVerdict(verdicts, winner)
		confidence = meanConfidence(verdicts, winner)
	}
	base.Confidence = clamp01(confidence)

	return Result{
		Verdict:   base,
		Engine:    EngineModel,
		Provider:  e.provider,
		Model:     e.model,
		Agreement: agreement,
		Votes:     votes,
	}
}

// Answer handles a follow-up question against evidence from a finished check.
func (e *Engine) Answer(ctx context.Context, evidence, question string) (string, error) {
	if e.client == nil {
		return "", ErrNoModel
	}
	return e.client.AnswerQuestion(ctx, evidence, question, core.Options{SystemPrompt: FollowUpSystemPrompt})
}

func (e *Engine) heuristicResult(claim string, docs []EvidenceDoc) Result {
	return Result{
		Verdict:  Heuristic(claim, docs),
		Engine:   EngineHeuristic,
		Provider: e.provider,
		Model:    e.model,
	}
}

// bestVerdict picks the highest-confidence verdict carrying label, or the
// highest-confidence verdict overall when label is empty.
func bestVerdict(verdicts []Verdict, label string) Verdict {
	best, found := Verdict{}, false
	for _, v := range verdicts {
		if label != "" && v.Label != label {
			continue
		}
		if !found || v.Confidence > best.Confidence {
			best, found = v, true
		}
	}
	return best
}

func meanConfidence(verdicts []Verdict, label string) float64 {
	sum, n := 0.0, 0
	for _, v := range verdicts {
		if label != "" && v.Label != label {
			continue
		}
		sum += v.Confidence
		n++
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}
