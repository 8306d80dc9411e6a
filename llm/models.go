// Package llm provides shared data models for LLM providers.
package llm

import "encoding/json"

// ChatMessage represents a chat message with role and content.
type ChatMessage struct {
	Role       string     `json:"role"`
	Content    string     `json:"content"`
	ToolCalls  []ToolCall `json:"tool_calls,omitempty"`   // For assistant messages with tool calls
	ToolCallID string     `json:"tool_call_id,omitempty"` // For tool result messages
}

// ToolCall represents a tool call from the LLM.
type ToolCall struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments"`
}

// ToolDefinition defines a tool that the LLM can call.
type ToolDefinition struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	Parameters  map[string]interface{} `json:"parameters"` // JSON Schema
}

// SystemMessage creates a system message.
func SystemMessage(content string) ChatMessage {
	return ChatMessage{
		Role:    "system",
		Content: content,
	}
}

// UserMessage creates a user message.
func UserMessage(content string) ChatMessage {
	return ChatMessage{
		Role:    "user",
		Content: content,
	}
}

// AssistantMessage creates an assistant message.
func AssistantMessage(content string) ChatMessage {
	return ChatMessage{
		Role:    "assistant",
		Content: content,
	}
}

// ToolResultMessage creates a tool result message for a previous tool call.
func ToolResultMessage(toolCallID, content string) ChatMessage {
	return ChatMessage{
		Role:       "tool",
		Content:    content,
		ToolCallID: toolCallID,
	}
}

// Completion is a single tagged completion from a provider.
//
// Exactly one of ToolCall and Text carries the turn's decision: when ToolCall
// is non-nil the model elected to act, otherwise Text is the final answer.
// Thought optionally carries reasoning the model surfaced alongside either.
type Completion struct {
	Thought  string
	ToolCall *ToolCall
	Text     string
	Usage    *TokenUsage
}

// IsToolCall returns true when the model elected to act instead of answering.
func (c Completion) IsToolCall() bool {
	return c.ToolCall != nil
}

// TokenUsage contains token usage statistics.
type TokenUsage struct {
	PromptTokens     uint32
	CompletionTokens uint32
	TotalTokens      uint32
}

// Add accumulates usage from another completion.
func (u *TokenUsage) Add(other *TokenUsage) {
	if other == nil {
		return
	}
	u.PromptTokens += other.PromptTokens
	u.CompletionTokens += other.CompletionTokens
	u.TotalTokens += other.TotalTokens
}
