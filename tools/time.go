// Built-in current_time tool: a side-effect-free clock lookup. Useful for
// demos and as a second benign tool in tests.

package tools

import (
	"context"
	"encoding/json"
	"time"
)

// CurrentTimeTool reports the current UTC time.
type CurrentTimeTool struct {
	BaseTool
	now func() time.Time
}

// NewCurrentTimeTool creates a current_time tool.
func NewCurrentTimeTool() *CurrentTimeTool {
	return &CurrentTimeTool{now: time.Now}
}

// WithNow overrides the clock. Used by tests.
func (t *CurrentTimeTool) WithNow(now func() time.Time) *CurrentTimeTool {
	t.now = now
	return t
}

// Metadata returns tool metadata.
func (t *CurrentTimeTool) Metadata() ToolMetadata {
	return ToolMetadata{
		Name:        "current_time",
		Description: "Returns the current time in UTC (RFC 3339).",
		Parameters:  []ToolParameter{},
	}
}

// Execute returns the current time.
func (t *CurrentTimeTool) Execute(_ context.Context, _ json.RawMessage) (Result, error) {
	return SuccessResult(t.now().UTC().Format(time.RFC3339)), nil
}

// Verify CurrentTimeTool implements Tool
var _ Tool = (*CurrentTimeTool)(nil)
