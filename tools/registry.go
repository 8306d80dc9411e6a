// Tool registration and invocation.
//
// Information Hiding:
// - Tool storage and lookup implementation hidden
// - Registration and discovery mechanisms abstracted
// - Invocation folds every failure mode into a Result value

package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"github.com/jtary/think-first-ai/llm"
)

// Registry manages available tools.
//
// Registration happens at process startup, before any invocation; after that
// the registry is read-only and safe to share across sessions.
type Registry struct {
	mu    sync.RWMutex
	tools map[string]Tool
}

// NewRegistry creates a new empty tool registry.
func NewRegistry() *Registry {
	return &Registry{
		tools: make(map[string]Tool),
	}
}

// Register adds a new tool to the registry.
// Returns error if a tool with the same name already exists.
func (r *Registry) Register(tool Tool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := tool.Metadata().Name
	if _, exists := r.tools[name]; exists {
		return fmt.Errorf("tool '%s' already registered", name)
	}
	r.tools[name] = tool
	return nil
}

// Get returns a tool by name.
func (r *Registry) Get(name string) (Tool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tool, exists := r.tools[name]
	return tool, exists
}

// Has checks if a tool exists in the registry.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, exists := r.tools[name]
	return exists
}

// Names returns all registered tool names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.tools))
	for name := range r.tools {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// List returns metadata for all registered tools in name order.
func (r *Registry) List() []ToolMetadata {
	r.mu.RLock()
	defer r.mu.RUnlock()

	metadata := make([]ToolMetadata, 0, len(r.tools))
	for _, tool := range r.tools {
		metadata = append(metadata, tool.Metadata())
	}
	sort.Slice(metadata, func(i, j int) bool { return metadata[i].Name < metadata[j].Name })
	return metadata
}

// Definitions returns the tool schema submitted to the model gateway.
func (r *Registry) Definitions() []llm.ToolDefinition {
	metadata := r.List()
	defs := make([]llm.ToolDefinition, len(metadata))
	for i, m := range metadata {
		defs[i] = m.Definition()
	}
	return defs
}

// Invoke looks up and executes a tool by name, exactly once.
//
// Every failure mode comes back as a Result carrying an error: an unknown
// name wraps ErrUnknownTool, rejected arguments wrap ErrInvalidArgument, and
// a handler failure is carried verbatim. Callers decide what is fatal; the
// registry never panics and never retries.
func (r *Registry) Invoke(ctx context.Context, name string, args json.RawMessage) Result {
	tool, ok := r.Get(name)
	if !ok {
		return FailureResult(fmt.Errorf("%w: %s", ErrUnknownTool, name))
	}

	if err := tool.Validate(args); err != nil {
		return FailureResult(err)
	}

	result, err := tool.Execute(ctx, args)
	if err != nil {
		return FailureResult(err)
	}
	return result
}
