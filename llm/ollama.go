// Ollama Provider implementation using go-openai library.
//
// Information Hiding:
// - Uses Ollama's OpenAI-compatible /v1 endpoint with a custom base URL
// - Local models often lack native tool calling, so requests and responses
//   go through the decision protocol (see decision.go)
// - Conversation history with tool calls is re-rendered as protocol text

package llm

import (
	"context"
	"encoding/json"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
)

const defaultOllamaBaseURL = "http://localhost:11434/v1"

// OllamaProvider implements the Provider interface for a local Ollama server.
type OllamaProvider struct {
	client      *openai.Client
	model       string
	maxTokens   int
	temperature float32
}

// NewOllamaProvider creates a new Ollama provider. An empty baseURL targets
// the default local server.
func NewOllamaProvider(baseURL, model string, maxTokens uint32, temperature float32) *OllamaProvider {
	if baseURL == "" {
		baseURL = defaultOllamaBaseURL
	}

	// Ollama ignores the API key but the client requires a non-empty one.
	config := openai.DefaultConfig("ollama")
	config.BaseURL = baseURL

	return &OllamaProvider{
		client:      openai.NewClientWithConfig(config),
		model:       model,
		maxTokens:   int(maxTokens),
		temperature: temperature,
	}
}

// Name returns the provider name.
func (p *OllamaProvider) Name() string {
	return "ollama"
}

// Model returns the current model.
func (p *OllamaProvider) Model() string {
	return p.model
}

// Complete sends a chat completion request and parses the decision-protocol
// response into a tagged completion.
func (p *OllamaProvider) Complete(ctx context.Context, messages []ChatMessage, tools []ToolDefinition) (Completion, error) {
	req := openai.ChatCompletionRequest{
		Model:       p.model,
		Messages:    convertToProtocolMessages(messages, tools),
		MaxTokens:   p.maxTokens,
		Temperature: p.temperature,
	}

	resp, err := p.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return Completion{}, fmt.Errorf("chat completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return Completion{}, fmt.Errorf("empty response from model")
	}

	completion, err := ParseDecision(resp.Choices[0].Message.Content)
	if err != nil {
		return Completion{}, err
	}

	completion.Usage = &TokenUsage{
		PromptTokens:     uint32(resp.Usage.PromptTokens),
		CompletionTokens: uint32(resp.Usage.CompletionTokens),
		TotalTokens:      uint32(resp.Usage.TotalTokens),
	}
	return completion, nil
}

// convertToProtocolMessages renders structured history as protocol text.
//
// The decision instructions are appended to the system message (one is
// synthesized when the history has none). Assistant tool calls become the
// decision JSON the model originally produced; tool results become plain user
// messages, since the backend never issued native tool-call IDs.
func convertToProtocolMessages(messages []ChatMessage, tools []ToolDefinition) []openai.ChatCompletionMessage {
	protocol := DecisionPrompt(tools)

	result := make([]openai.ChatCompletionMessage, 0, len(messages)+1)
	seenSystem := false

	for _, msg := range messages {
		switch {
		case msg.Role == "system":
			seenSystem = true
			result = append(result, openai.ChatCompletionMessage{
				Role:    "system",
				Content: msg.Content + "\n\n" + protocol,
			})
		case len(msg.ToolCalls) > 0:
			result = append(result, openai.ChatCompletionMessage{
				Role:    "assistant",
				Content: renderDecisionJSON(msg),
			})
		case msg.Role == "tool":
			result = append(result, openai.ChatCompletionMessage{
				Role:    "user",
				Content: fmt.Sprintf("Tool result: %s", msg.Content),
			})
		default:
			result = append(result, openai.ChatCompletionMessage{
				Role:    msg.Role,
				Content: msg.Content,
			})
		}
	}

	if !seenSystem {
		result = append([]openai.ChatCompletionMessage{{
			Role:    "system",
			Content: protocol,
		}}, result...)
	}

	return result
}

// renderDecisionJSON reconstructs the protocol JSON for an assistant message
// carrying a tool call.
func renderDecisionJSON(msg ChatMessage) string {
	tc := msg.ToolCalls[0]
	decision := Decision{
		Thought: msg.Content,
		Action: &DecisionAction{
			Tool:  tc.Name,
			Input: tc.Arguments,
		},
	}
	data, err := json.Marshal(decision)
	if err != nil {
		return msg.Content
	}
	return string(data)
}

// Verify OllamaProvider implements Provider
var _ Provider = (*OllamaProvider)(nil)
