// LLM Provider interface - the abstract interface for LLM providers.
// Each provider implementation hides:
// - API client initialization and authentication
// - Request/response format conversion
// - How thought / tool-call / final-answer completions are distinguished
//   (native tool-call APIs where available, the decision protocol otherwise)

package llm

import (
	"context"
)

// Provider defines the abstract interface for LLM providers.
//
// A provider performs exactly one backend call per Complete invocation and
// surfaces failures to the caller unchanged. Retry policy, if any, lives
// inside the provider; callers never retry.
type Provider interface {
	// Name returns the provider name (for logging/debugging).
	Name() string

	// Model returns the current model being used.
	Model() string

	// Complete submits the conversation plus the available tool schema and
	// returns one tagged completion: a tool call or a final answer, either
	// optionally accompanied by reasoning text.
	Complete(ctx context.Context, messages []ChatMessage, tools []ToolDefinition) (Completion, error)
}
