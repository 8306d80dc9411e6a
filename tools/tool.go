// Package tools provides the tool system for the agent loop.
//
// Information Hiding:
// - Tool execution details hidden behind interface
// - Tool parameters and schemas hidden in implementations
// - Registry implementation details hidden from consumers
// - Error handling internalized per tool
package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jtary/think-first-ai/llm"
)

// Tool-level error taxonomy. Both are recoverable: the loop reports them back
// to the model as failed tool results and continues.
var (
	// ErrUnknownTool is returned when invoking a name the registry doesn't know.
	ErrUnknownTool = errors.New("unknown tool")
	// ErrInvalidArgument is returned when a tool rejects its arguments.
	ErrInvalidArgument = errors.New("invalid argument")
)

// ToolParameter defines a parameter schema for a tool.
type ToolParameter struct {
	Name        string `json:"name"`
	ParamType   string `json:"param_type"`
	Description string `json:"description"`
	Required    bool   `json:"required"`
}

// ToolMetadata describes what a tool does and how to use it.
type ToolMetadata struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Parameters  []ToolParameter `json:"parameters"`
}

// String returns a string representation of the tool metadata.
func (m ToolMetadata) String() string {
	return fmt.Sprintf("%s: %s", m.Name, m.Description)
}

// Definition converts the metadata to the JSON-schema form providers expect.
func (m ToolMetadata) Definition() llm.ToolDefinition {
	properties := make(map[string]interface{}, len(m.Parameters))
	var required []string
	for _, p := range m.Parameters {
		properties[p.Name] = map[string]interface{}{
			"type":        p.ParamType,
			"description": p.Description,
		}
		if p.Required {
			required = append(required, p.Name)
		}
	}

	params := map[string]interface{}{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		params["required"] = required
	}

	return llm.ToolDefinition{
		Name:        m.Name,
		Description: m.Description,
		Parameters:  params,
	}
}

// Result represents the result of a tool execution.
// Success is determined by whether Error is nil.
type Result struct {
	Output string `json:"output"`
	Error  error  `json:"-"` // Excluded from JSON, use MarshalJSON for custom serialization
}

// MarshalJSON implements custom JSON marshaling for Result.
func (r Result) MarshalJSON() ([]byte, error) {
	if r.Error != nil {
		return json.Marshal(struct {
			Success bool   `json:"success"`
			Output  string `json:"output"`
			Error   string `json:"error"`
		}{
			Success: false,
			Output:  r.Output,
			Error:   r.Error.Error(),
		})
	}
	return json.Marshal(struct {
		Success bool   `json:"success"`
		Output  string `json:"output"`
	}{
		Success: true,
		Output:  r.Output,
	})
}

// Success returns true if the tool execution succeeded.
func (r Result) Success() bool {
	return r.Error == nil
}

// SuccessResult creates a successful tool result.
func SuccessResult(output string) Result {
	return Result{Output: output}
}

// FailureResult creates a failed tool result.
func FailureResult(err error) Result {
	return Result{Error: err}
}

// FailureResultf creates a failed tool result with a formatted error message.
func FailureResultf(format string, args ...interface{}) Result {
	return Result{Error: fmt.Errorf(format, args...)}
}

// Tool is the interface that all tools must implement.
//
// Information Hiding: Tool implementations hide their internal execution logic,
// data structures, and error handling strategies behind this interface.
type Tool interface {
	// Metadata returns tool metadata (name, description, parameters).
	Metadata() ToolMetadata

	// Execute runs the tool with given arguments.
	Execute(ctx context.Context, args json.RawMessage) (Result, error)

	// Validate validates arguments before execution (optional).
	Validate(args json.RawMessage) error
}

// BaseTool provides a default implementation for Validate.
type BaseTool struct{}

// Validate provides a default no-op validation.
func (BaseTool) Validate(args json.RawMessage) error {
	return nil
}
