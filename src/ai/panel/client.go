package panel

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/factcheck-ai/factcheck/src/ai/core"
)

func init() {
	core.RegisterProvider("panel", newClient, "consensus")
}

// Response carries one panel member's reply.
type Response struct {
	Provider string
	Text     string
	Err      error
}

// Client fans a request out to every configured provider. Used as a plain
// core.Client it behaves as failover: the first member that answers wins.
type Client struct {
	members []namedClient
}

type namedClient struct {
	name string
	impl core.Client
}

func newClient(cfg core.FactoryConfig) (core.Client, error) {
	return New(cfg)
}

// New builds a panel from PANEL_MEMBERS (Extra["panel_members"], comma
// separated) or, by default, every provider whose API key is configured.
func New(cfg core.FactoryConfig) (*Client, error) {
	names := memberNames(cfg)

	var members []namedClient
	for _, name := range names {
		memberCfg := cfg
		memberCfg.Provider = name
		memberCfg.Model = ""
		if cfg.Extra != nil {
			memberCfg.Model = cfg.Extra["model_"+name]
		}
		impl, err := core.NewClient(memberCfg)
		if err != nil {
			continue
		}
		members = append(members, namedClient{name: name, impl: impl})
	}

	if len(members) == 0 {
		return nil, fmt.Errorf("panel: no members available (configure at least one provider API key)")
	}
	return &Client{members: members}, nil
}

// Members lists the provider names sitting on the panel.
func (c *Client) Members() []string {
	out := make([]string, len(c.members))
	for i, m := range c.members {
		out[i] = m.name
	}
	return out
}

func (c *Client) AnswerQuestion(ctx context.Context, evidence string, question string, opts core.Options) (string, error) {
	var lastErr error
	for _, m := range c.members {
		text, err := m.impl.AnswerQuestion(ctx, evidence, question, opts)
		if err == nil {
			return text, nil
		}
		lastErr = err
	}
	return "", fmt.Errorf("panel: all members failed: %w", lastErr)
}

func (c *Client) Respond(ctx context.Context, input string, tools []core.Tool, opts core.Options) (string, error) {
	responses := c.RespondAll(ctx, input, tools, opts)
	var lastErr error
	for _, r := range responses {
		if r.Err == nil && strings.TrimSpace(r.Text) != "" {
			return r.Text, nil
		}
		if r.Err != nil {
			lastErr = r.Err
		}
	}
	if lastErr == nil {
		lastErr = fmt.Errorf("empty responses")
	}
	return "", fmt.Errorf("panel: all members failed: %w", lastErr)
}

// RespondAll queries every member in parallel and returns each reply in
// member order, including failures.
func (c *Client) RespondAll(ctx context.Context, input string, tools []core.Tool, opts core.Options) []Response {
	responses := make([]Response, len(c.members))

	var wg sync.WaitGroup
	for i, m := range c.members {
		wg.Add(1)
		go func(idx int, member namedClient) {
			defer wg.Done()
			text, err := member.impl.Respond(ctx, input, tools, opts)
			responses[idx] = Response{Provider: member.name, Text: text, Err: err}
		}(i, m)
	}
	wg.Wait()

	return responses
}

func memberNames(cfg core.FactoryConfig) []string {
	if cfg.Extra != nil {
		if raw := strings.TrimSpace(cfg.Extra["panel_members"]); raw != "" {
			var names []string
			for _, part := range strings.Split(raw, ",") {
				if name := strings.ToLower(strings.TrimSpace(part)); name != "" && name != "panel" {
					names = append(names, name)
				}
			}
			if len(names) > 0 {
				return names
			}
		}
	}

	var names []string
	if cfg.GeminiKey != "" {
		names = append(names, "gemini")
	}
	if cfg.OpenAIKey != "" {
		names = append(names, "openai")
	}
	if cfg.ClaudeKey != "" {
		names = append(names, "anthropic")
	}
	return names
}
