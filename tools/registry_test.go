package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"
)

// echoTool is a trivial tool for registry tests.
type echoTool struct {
	BaseTool
	fail bool
}

func (e *echoTool) Metadata() ToolMetadata {
	return ToolMetadata{
		Name:        "echo",
		Description: "Echoes its input",
		Parameters: []ToolParameter{
			{Name: "text", ParamType: "string", Description: "Text to echo", Required: true},
		},
	}
}

func (e *echoTool) Execute(_ context.Context, args json.RawMessage) (Result, error) {
	if e.fail {
		return Result{}, fmt.Errorf("echo broke")
	}
	var parsed struct {
		Text string `json:"text"`
	}
	if err := json.Unmarshal(args, &parsed); err != nil {
		return FailureResult(err), nil
	}
	return SuccessResult(parsed.Text), nil
}

func TestRegisterAndInvoke(t *testing.T) {
	registry := NewRegistry()
	if err := registry.Register(&echoTool{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	result := registry.Invoke(context.Background(), "echo", json.RawMessage(`{"text":"hi"}`))
	if !result.Success() {
		t.Fatalf("unexpected failure: %v", result.Error)
	}
	if result.Output != "hi" {
		t.Errorf("expected 'hi', got %q", result.Output)
	}
}

func TestRegisterDuplicate(t *testing.T) {
	registry := NewRegistry()
	if err := registry.Register(&echoTool{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := registry.Register(&echoTool{}); err == nil {
		t.Fatal("expected duplicate registration error")
	}
}

func TestInvokeUnknownTool(t *testing.T) {
	registry := NewRegistry()

	result := registry.Invoke(context.Background(), "missing", nil)
	if result.Success() {
		t.Fatal("expected failure for unknown tool")
	}
	if !errors.Is(result.Error, ErrUnknownTool) {
		t.Errorf("expected ErrUnknownTool, got %v", result.Error)
	}
}

func TestInvokeHandlerFailureIsCaptured(t *testing.T) {
	registry := NewRegistry()
	if err := registry.Register(&echoTool{fail: true}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// A broken handler must come back as a failed Result, never a panic.
	result := registry.Invoke(context.Background(), "echo", json.RawMessage(`{}`))
	if result.Success() {
		t.Fatal("expected failure from broken handler")
	}
}

func TestNamesSorted(t *testing.T) {
	registry := NewRegistry()
	_ = registry.Register(NewWaitTool(time.Second, time.Minute))
	_ = registry.Register(&echoTool{})
	_ = registry.Register(NewCurrentTimeTool())

	names := registry.Names()
	want := []string{"current_time", "echo", "wait"}
	if len(names) != len(want) {
		t.Fatalf("expected %d names, got %d", len(want), len(names))
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("names[%d] = %q, want %q", i, names[i], want[i])
		}
	}
}

func TestDefinitionsSchema(t *testing.T) {
	registry := NewRegistry()
	_ = registry.Register(NewWaitTool(time.Second, time.Minute))

	defs := registry.Definitions()
	if len(defs) != 1 {
		t.Fatalf("expected 1 definition, got %d", len(defs))
	}
	def := defs[0]
	if def.Name != "wait" {
		t.Errorf("expected wait definition, got %q", def.Name)
	}
	props, ok := def.Parameters["properties"].(map[string]interface{})
	if !ok {
		t.Fatal("definition missing properties")
	}
	if _, ok := props["duration"]; !ok {
		t.Error("wait definition missing duration parameter")
	}
	required, ok := def.Parameters["required"].([]string)
	if !ok || len(required) != 1 || required[0] != "duration" {
		t.Errorf("unexpected required list: %v", def.Parameters["required"])
	}
}
