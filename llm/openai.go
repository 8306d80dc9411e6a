// OpenAI Provider implementation using go-openai library.
//
// Information Hiding:
// - API endpoint and authentication
// - Request/response format for OpenAI Chat Completions API
// - Native tool-call responses mapped to tagged Completions

package llm

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAIProvider implements the Provider interface for OpenAI.
type OpenAIProvider struct {
	client      *openai.Client
	model       string
	maxTokens   int
	temperature float32
}

// NewOpenAIProvider creates a new OpenAI provider.
func NewOpenAIProvider(apiKey, model string, maxTokens uint32, temperature float32) *OpenAIProvider {
	return &OpenAIProvider{
		client:      openai.NewClient(apiKey),
		model:       model,
		maxTokens:   int(maxTokens),
		temperature: temperature,
	}
}

// Name returns the provider name.
func (p *OpenAIProvider) Name() string {
	return "openai"
}

// Model returns the current model.
func (p *OpenAIProvider) Model() string {
	return p.model
}

// Complete sends a chat completion request with tool definitions and returns
// one tagged completion.
func (p *OpenAIProvider) Complete(ctx context.Context, messages []ChatMessage, tools []ToolDefinition) (Completion, error) {
	req := openai.ChatCompletionRequest{
		Model:       p.model,
		Messages:    convertToOpenAIMessages(messages),
		MaxTokens:   p.maxTokens,
		Temperature: p.temperature,
	}
	if len(tools) > 0 {
		req.Tools = convertToOpenAITools(tools)
	}

	resp, err := p.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return Completion{}, fmt.Errorf("chat completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return Completion{}, fmt.Errorf("empty response from model")
	}

	usage := &TokenUsage{
		PromptTokens:     uint32(resp.Usage.PromptTokens),
		CompletionTokens: uint32(resp.Usage.CompletionTokens),
		TotalTokens:      uint32(resp.Usage.TotalTokens),
	}

	choice := resp.Choices[0].Message

	// A tool call means the model elected to act; any text alongside it is
	// intermediate reasoning, not a final answer.
	if len(choice.ToolCalls) > 0 {
		tc := choice.ToolCalls[0]
		return Completion{
			Thought: choice.Content,
			ToolCall: &ToolCall{
				ID:        tc.ID,
				Name:      tc.Function.Name,
				Arguments: []byte(tc.Function.Arguments),
			},
			Usage: usage,
		}, nil
	}

	return Completion{Text: choice.Content, Usage: usage}, nil
}

// convertToOpenAIMessages converts our ChatMessage to openai.ChatCompletionMessage,
// including assistant tool calls and tool results.
func convertToOpenAIMessages(messages []ChatMessage) []openai.ChatCompletionMessage {
	result := make([]openai.ChatCompletionMessage, len(messages))
	for i, msg := range messages {
		oaiMsg := openai.ChatCompletionMessage{
			Role:    msg.Role,
			Content: msg.Content,
		}

		// Handle tool calls from assistant
		for _, tc := range msg.ToolCalls {
			oaiMsg.ToolCalls = append(oaiMsg.ToolCalls, openai.ToolCall{
				ID:   tc.ID,
				Type: openai.ToolTypeFunction,
				Function: openai.FunctionCall{
					Name:      tc.Name,
					Arguments: string(tc.Arguments),
				},
			})
		}

		// Handle tool response
		if msg.ToolCallID != "" {
			oaiMsg.ToolCallID = msg.ToolCallID
		}

		result[i] = oaiMsg
	}
	return result
}

// convertToOpenAITools converts tool definitions to OpenAI format.
func convertToOpenAITools(tools []ToolDefinition) []openai.Tool {
	result := make([]openai.Tool, len(tools))
	for i, t := range tools {
		result[i] = openai.Tool{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        t.Name,
				Description: t.Description,
				Parameters:  t.Parameters,
			},
		}
	}
	return result
}

// Verify OpenAIProvider implements Provider
var _ Provider = (*OpenAIProvider)(nil)
