// Command ai-smoketest exercises each configured AI provider with a
// sample fact-check prompt so operators can verify keys and model
// access before deploying.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"strings"
	"time"

	aicore "github.com/factcheck-ai/factcheck/src/ai/core"
	_ "github.com/factcheck-ai/factcheck/src/ai/providers"
	sharedconfig "github.com/factcheck-ai/factcheck/src/config"
	"github.com/factcheck-ai/factcheck/src/factcheck/verdict"
)

var (
	providersFlag = flag.String("providers", "all", "Comma-separated provider list or 'all'")
	modeFlag      = flag.String("mode", "judge", "judge|qa|both")
	modelFlag     = flag.String("model", "", "Override model name")
	claimFlag     = flag.String("claim", defaultClaim, "Claim to judge")
	questionFlag  = flag.String("question", defaultQuestion, "Follow-up question for QA mode")
	timeoutFlag   = flag.Duration("timeout", 45*time.Second, "Per-provider timeout")
	tempFlag      = flag.Float64("temp", 0.3, "Completion temperature")
	maxLenFlag    = flag.Int("max-bytes", 1200, "Maximum bytes of output to print per response (0=unlimited)")
)

var allProviders = []string{
	"gemini",
	"openai",
	"anthropic",
	"panel",
}

func main() {
	log.SetFlags(0)
	flag.Parse()

	providers := resolveProviders(*providersFlag)
	if len(providers) == 0 {
		log.Fatal("no providers specified")
	}

	mode, err := parseMode(*modeFlag)
	if err != nil {
		log.Fatalf("invalid mode: %v", err)
	}

	aiEnv := sharedconfig.LoadAIFromEnv()

	for _, provider := range providers {
		if err := runProvider(provider, mode, aiEnv); err != nil {
			log.Printf("[%s] ERROR: %v", provider, err)
		}
	}
}

func runProvider(provider string, mode runMode, aiEnv sharedconfig.AI) error {
	cfg := aicore.FactoryConfig{
		Provider:     provider,
		SystemPrompt: verdict.SystemPrompt,
		Model:        *modelFlag,
		Temperature:  *tempFlag,
		OpenAIKey:    aiEnv.OpenAIKey,
		ClaudeKey:    aiEnv.ClaudeKey,
		GeminiKey:    aiEnv.GeminiKey,
		Extra:        map[string]string{"panel_members": aiEnv.PanelMembers},
	}

	client, err := aicore.NewClient(cfg)
	if err != nil {
		return fmt.Errorf("client init: %w", err)
	}

	fmt.Printf("=== %s ===\n", provider)
	if mode == modeJudge || mode == modeBoth {
		if err := executeJudgeTest(client); err != nil {
			fmt.Printf("judge FAIL: %v\n", err)
		}
	}
	if mode == modeQA || mode == modeBoth {
		if err := executeQATest(client); err != nil {
			fmt.Printf("qa FAIL: %v\n", err)
		}
	}
	return nil
}

func executeJudgeTest(client aicore.Client) error {
	ctx, cancel := context.WithTimeout(context.Background(), *timeoutFlag)
	defer cancel()

	docs := sampleEvidence()
	prompt := verdict.BuildPrompt(*claimFlag, docs)

	start := time.Now()
	reply, err := client.Respond(ctx, prompt, nil, aicore.Options{
		SystemPrompt: verdict.SystemPrompt,
		Temperature:  *tempFlag,
	})
	if err != nil {
		return err
	}
	took := time.Since(start).Seconds()

	parsed, perr := verdict.Parse(reply)
	if perr != nil {
		fmt.Printf("judge OK (%.1fs) but response did not parse: %v\n%s\n", took, perr, truncate(reply, *maxLenFlag))
		return nil
	}
	fmt.Printf("judge OK (%.1fs) verdict=%s confidence=%.2f\n%s\n",
		took, parsed.Label, parsed.Confidence, truncate(reply, *maxLenFlag))
	return nil
}

func executeQATest(client aicore.Client) error {
	ctx, cancel := context.WithTimeout(context.Background(), *timeoutFlag)
	defer cancel()

	evidence := fmt.Sprintf("Claim under review: %s\n\n%s", *claimFlag, sampleEvidence()[0].Text)

	start := time.Now()
	reply, err := client.AnswerQuestion(ctx, evidence, *questionFlag, aicore.Options{
		SystemPrompt: verdict.FollowUpSystemPrompt,
		Temperature:  *tempFlag,
	})
	if err != nil {
		return err
	}
	fmt.Printf("qa OK (%.1fs)\n%s\n", time.Since(start).Seconds(), truncate(reply, *maxLenFlag))
	return nil
}

func sampleEvidence() []verdict.EvidenceDoc {
	return []verdict.EvidenceDoc{
		{
			Title:       "NASA confirms evidence of liquid water on Mars",
			URL:         "https://www.nasa.gov/press-release/mars-water",
			Source:      "NASA",
			Published:   "2015-09-28",
			Credibility: 0.95,
			Text: "NASA researchers announced that dark streaks observed on Martian " +
				"slopes are caused by briny liquid water flowing intermittently. The " +
				"finding, according to the agency, rests on spectral data from the " +
				"Mars Reconnaissance Orbiter.",
		},
		{
			Title:       "What the Mars water discovery means",
			URL:         "https://www.bbc.com/news/science-mars-water",
			Source:      "BBC",
			Published:   "2015-09-29",
			Credibility: 0.9,
			Text: "Scientists caution that the detected brines are far saltier than " +
				"Earth seawater and may not support life as we know it, but the study " +
				"marks the strongest evidence yet of present-day liquid water on Mars.",
		},
	}
}

func resolveProviders(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	if strings.EqualFold(raw, "all") {
		return append([]string{}, allProviders...)
	}
	parts := strings.FieldsFunc(raw, func(r rune) bool {
		return r == ',' || r == ' ' || r == ';'
	})
	var out []string
	seen := map[string]struct{}{}
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		key := strings.ToLower(p)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, key)
	}
	return out
}

func parseMode(input string) (runMode, error) {
	switch strings.ToLower(strings.TrimSpace(input)) {
	case "judge":
		return modeJudge, nil
	case "qa":
		return modeQA, nil
	case "both":
		return modeBoth, nil
	default:
		return modeJudge, errors.New("expected judge, qa, or both")
	}
}

func truncate(text string, limit int) string {
	if limit <= 0 || len(text) <= limit {
		return strings.TrimSpace(text)
	}
	return strings.TrimSpace(text[:limit]) + "...(truncated)"
}

type runMode int

const (
	modeJudge runMode = iota
	modeQA
	modeBoth
)

const (
	defaultClaim    = "NASA discovered water on Mars"
	defaultQuestion = "How confident were the researchers in the spectral evidence?"
)
