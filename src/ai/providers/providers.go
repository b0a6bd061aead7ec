// Package providers registers every AI provider via side effects.
// Import it for side effects only:
//
//	_ "github.com/factcheck-ai/factcheck/src/ai/providers"
package providers

import (
	_ "github.com/factcheck-ai/factcheck/src/ai/anthropic"
	_ "github.com/factcheck-ai/factcheck/src/ai/gemini"
	_ "github.com/factcheck-ai/factcheck/src/ai/openai"
	_ "github.com/factcheck-ai/factcheck/src/ai/panel"
)
