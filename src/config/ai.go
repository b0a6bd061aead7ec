package config

import (
	"os"
	"strconv"
)

type AI struct {
	Provider     string
	Model        string
	SystemPrompt string
	Temperature  float64
	MaxTokens    int

	// PanelMembers selects the providers consulted when Provider is
	// "panel", comma separated. Empty means every provider with a key.
	PanelMembers string

	OpenAIKey string
	ClaudeKey string
	GeminiKey string
}

// DefaultModel maps a provider name to the model used when AI_MODEL is unset.
func DefaultModel(provider string) string {
	switch provider {
	case "openai":
		return "gpt-4o-mini"
	case "anthropic":
		return "claude-3-5-haiku-latest"
	default:
		return "gemini-1.5-flash"
	}
}

// LoadAIFromEnv provides a simple env-only loader; services can merge DB settings over this.
func LoadAIFromEnv() AI {
	provider := os.Getenv("AI_PROVIDER")
	if provider == "" {
		provider = "gemini"
	}
	model := os.Getenv("AI_MODEL")
	if model == "" {
		model = DefaultModel(provider)
	}
	temperature := 0.3
	if raw := os.Getenv("AI_TEMPERATURE"); raw != "" {
		if v, err := strconv.ParseFloat(raw, 64); err == nil {
			temperature = v
		}
	}
	maxTokens := 0
	if raw := os.Getenv("AI_MAX_TOKENS"); raw != "" {
		maxTokens, _ = strconv.Atoi(raw)
	}
	return AI{
		Provider:     provider,
		Model:        model,
		SystemPrompt: os.Getenv("AI_SYSTEM_PROMPT"),
		Temperature:  temperature,
		MaxTokens:    maxTokens,
		PanelMembers: os.Getenv("PANEL_MEMBERS"),
		OpenAIKey:    os.Getenv("OPENAI_API_KEY"),
		ClaudeKey:    os.Getenv("CLAUDE_API_KEY"),
		GeminiKey:    os.Getenv("GEMINI_API_KEY"),
	}
}
