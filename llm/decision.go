// Decision protocol - structured completions for backends without native
// tool-call support.
//
// Backends like Ollama return freeform text. Rather than guessing from
// content whether a response is reasoning, an action, or a final answer, the
// protocol instructs the model to respond with a tagged JSON object and this
// file parses it back into a Completion. Providers with native tool-call
// APIs (OpenAI, Anthropic, Gemini) bypass the protocol entirely.

package llm

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/jtary/think-first-ai/internal/jsonutil"
)

// Decision is the wire format the protocol asks the model to produce.
type Decision struct {
	Thought     string          `json:"thought"`
	Action      *DecisionAction `json:"action,omitempty"`
	IsFinal     bool            `json:"is_final"`
	FinalAnswer *string         `json:"final_answer,omitempty"`
}

// DecisionAction names a tool and carries its arguments.
type DecisionAction struct {
	Tool  string          `json:"tool"`
	Input json.RawMessage `json:"input"`
}

// UnmarshalJSON accepts either a string or an arbitrary JSON value for
// final_answer; models frequently return objects where a string was asked for.
func (d *Decision) UnmarshalJSON(data []byte) error {
	type decisionAlias Decision
	aux := &struct {
		FinalAnswer json.RawMessage `json:"final_answer,omitempty"`
		*decisionAlias
	}{
		decisionAlias: (*decisionAlias)(d),
	}

	if err := json.Unmarshal(data, aux); err != nil {
		return err
	}

	if len(aux.FinalAnswer) > 0 {
		var s string
		if err := json.Unmarshal(aux.FinalAnswer, &s); err == nil {
			d.FinalAnswer = &s
			return nil
		}

		var v interface{}
		if err := json.Unmarshal(aux.FinalAnswer, &v); err == nil {
			pretty, err := json.MarshalIndent(v, "", "  ")
			if err == nil {
				s := string(pretty)
				d.FinalAnswer = &s
			}
		}
	}

	return nil
}

// DecisionPrompt renders the protocol instructions appended to the system
// prompt of protocol-speaking providers.
func DecisionPrompt(tools []ToolDefinition) string {
	var b strings.Builder

	if len(tools) > 0 {
		b.WriteString("Available Tools:\n")
		for _, t := range tools {
			fmt.Fprintf(&b, "- %s: %s\n", t.Name, t.Description)
			if props, ok := t.Parameters["properties"].(map[string]interface{}); ok && len(props) > 0 {
				schema, err := json.Marshal(props)
				if err == nil {
					fmt.Fprintf(&b, "  input schema: %s\n", schema)
				}
			}
		}
		b.WriteString("\n")
	}

	b.WriteString(`Respond with a single JSON object in this format:
{
  "thought": "your reasoning",
  "action": {"tool": "name", "input": {...}},
  "is_final": false,
  "final_answer": null
}

To call a tool: set "action" and is_final=false.
When you have the final answer: set is_final=true, action=null, and put the answer in final_answer.`)

	return b.String()
}

// ParseDecision extracts a Decision from a raw model response and converts it
// to a tagged Completion. Responses that contain no parseable decision are
// treated as a final free-text answer; an empty response is an error.
func ParseDecision(response string) (Completion, error) {
	trimmed := strings.TrimSpace(response)
	if trimmed == "" {
		return Completion{}, fmt.Errorf("empty response from model")
	}

	decision, err := jsonutil.ExtractJSONFromResponse[Decision](trimmed)
	if err != nil {
		// Not protocol-shaped: the model answered in plain text.
		return Completion{Text: trimmed}, nil
	}

	// A JSON object with none of the protocol fields is not a decision.
	if decision.Thought == "" && decision.Action == nil && decision.FinalAnswer == nil {
		return Completion{Text: trimmed}, nil
	}

	completion := Completion{Thought: decision.Thought}

	if decision.Action != nil && !decision.IsFinal {
		completion.ToolCall = &ToolCall{
			ID:        "call_" + uuid.New().String(),
			Name:      decision.Action.Tool,
			Arguments: decision.Action.Input,
		}
		return completion, nil
	}

	if decision.FinalAnswer != nil {
		completion.Text = *decision.FinalAnswer
		return completion, nil
	}

	// is_final with no final_answer: fall back to the thought so the turn
	// still terminates with something visible.
	completion.Text = decision.Thought
	return completion, nil
}
