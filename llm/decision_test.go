package llm

import (
	"strings"
	"testing"
)

func TestParseDecisionToolCall(t *testing.T) {
	response := `{"thought": "I should wait before answering", "action": {"tool": "wait", "input": {"duration": 5}}, "is_final": false}`

	completion, err := ParseDecision(response)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !completion.IsToolCall() {
		t.Fatal("expected a tool call completion")
	}
	if completion.ToolCall.Name != "wait" {
		t.Errorf("expected tool 'wait', got %q", completion.ToolCall.Name)
	}
	if completion.Thought != "I should wait before answering" {
		t.Errorf("unexpected thought: %q", completion.Thought)
	}
	if !strings.HasPrefix(completion.ToolCall.ID, "call_") {
		t.Errorf("expected synthesized call ID, got %q", completion.ToolCall.ID)
	}
	if !strings.Contains(string(completion.ToolCall.Arguments), `"duration"`) {
		t.Errorf("arguments not carried through: %s", completion.ToolCall.Arguments)
	}
}

func TestParseDecisionFinalAnswer(t *testing.T) {
	response := `{"thought": "simple arithmetic", "is_final": true, "final_answer": "4"}`

	completion, err := ParseDecision(response)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if completion.IsToolCall() {
		t.Fatal("expected a final answer, got a tool call")
	}
	if completion.Text != "4" {
		t.Errorf("expected answer '4', got %q", completion.Text)
	}
}

func TestParseDecisionMarkdownWrapped(t *testing.T) {
	response := "```json\n{\"thought\": \"done\", \"is_final\": true, \"final_answer\": \"hello\"}\n```"

	completion, err := ParseDecision(response)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if completion.Text != "hello" {
		t.Errorf("expected 'hello', got %q", completion.Text)
	}
}

func TestParseDecisionStructuredFinalAnswer(t *testing.T) {
	// Models sometimes return an object where a string was asked for.
	response := `{"thought": "t", "is_final": true, "final_answer": {"answer": 4}}`

	completion, err := ParseDecision(response)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(completion.Text, `"answer"`) {
		t.Errorf("expected pretty-printed object, got %q", completion.Text)
	}
}

func TestParseDecisionPlainText(t *testing.T) {
	// A non-protocol response is treated as a final free-text answer.
	completion, err := ParseDecision("The answer is 4.")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if completion.IsToolCall() {
		t.Fatal("plain text must not become a tool call")
	}
	if completion.Text != "The answer is 4." {
		t.Errorf("unexpected text: %q", completion.Text)
	}
}

func TestParseDecisionForeignJSONObject(t *testing.T) {
	// A JSON object without any protocol fields is still just text.
	response := `{"temperature": 21, "unit": "celsius"}`

	completion, err := ParseDecision(response)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if completion.IsToolCall() {
		t.Fatal("foreign JSON must not become a tool call")
	}
	if completion.Text != response {
		t.Errorf("expected passthrough, got %q", completion.Text)
	}
}

func TestParseDecisionEmpty(t *testing.T) {
	if _, err := ParseDecision("   "); err == nil {
		t.Fatal("expected error for empty response")
	}
}

func TestParseDecisionFinalWithoutAnswerFallsBackToThought(t *testing.T) {
	response := `{"thought": "I am done", "is_final": true}`

	completion, err := ParseDecision(response)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if completion.Text != "I am done" {
		t.Errorf("expected thought fallback, got %q", completion.Text)
	}
}

func TestDecisionPromptListsTools(t *testing.T) {
	tools := []ToolDefinition{
		{
			Name:        "wait",
			Description: "Pause before responding",
			Parameters: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"duration": map[string]interface{}{"type": "integer"},
				},
			},
		},
	}

	prompt := DecisionPrompt(tools)
	if !strings.Contains(prompt, "wait: Pause before responding") {
		t.Errorf("tool description missing from prompt:\n%s", prompt)
	}
	if !strings.Contains(prompt, `"is_final"`) {
		t.Errorf("protocol format missing from prompt:\n%s", prompt)
	}
}
