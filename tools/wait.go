// Built-in wait tool.
//
// The wait tool lets the model defer answering instead of producing filler
// text. Its only side effect is temporal: it suspends the calling turn for
// the requested duration. The sleep is cooperative (select on the context),
// so other sessions keep running while one waits.

package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// WaitToolName is the registered name the loop special-cases.
const WaitToolName = "wait"

// SleepFunc suspends for d or until ctx is done. Replaceable in tests.
type SleepFunc func(ctx context.Context, d time.Duration) error

// WaitTool implements the built-in wait tool.
//
// Duration policy: requests below the minimum are rejected with
// ErrInvalidArgument; requests above the maximum are clamped to it, bounding
// how stale a deferred answer can get.
type WaitTool struct {
	min   time.Duration
	max   time.Duration
	sleep SleepFunc
}

type waitArgs struct {
	Duration float64 `json:"duration"` // seconds
}

// NewWaitTool creates a wait tool with the given duration bounds.
func NewWaitTool(min, max time.Duration) *WaitTool {
	return &WaitTool{
		min:   min,
		max:   max,
		sleep: sleepContext,
	}
}

// WithSleep overrides the sleep implementation. Used by tests to avoid
// real delays.
func (w *WaitTool) WithSleep(fn SleepFunc) *WaitTool {
	w.sleep = fn
	return w
}

// Metadata returns tool metadata.
func (w *WaitTool) Metadata() ToolMetadata {
	return ToolMetadata{
		Name: WaitToolName,
		Description: fmt.Sprintf(
			"Pause for the given number of seconds before continuing. Use this to defer answering instead of producing filler. Durations are clamped to %s.",
			w.max),
		Parameters: []ToolParameter{
			{
				Name:        "duration",
				ParamType:   "number",
				Description: "Seconds to wait",
				Required:    true,
			},
		},
	}
}

// Validate rejects missing, non-numeric, or below-minimum durations.
func (w *WaitTool) Validate(args json.RawMessage) error {
	_, err := w.Duration(args)
	return err
}

// Duration parses the requested duration and applies the clamp policy.
func (w *WaitTool) Duration(args json.RawMessage) (time.Duration, error) {
	var parsed waitArgs
	if err := json.Unmarshal(args, &parsed); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidArgument, err)
	}

	d := time.Duration(parsed.Duration * float64(time.Second))
	if d < w.min {
		return 0, fmt.Errorf("%w: duration %s below minimum %s", ErrInvalidArgument, d, w.min)
	}
	if d > w.max {
		d = w.max
	}
	return d, nil
}

// Execute suspends for the requested (clamped) duration.
func (w *WaitTool) Execute(ctx context.Context, args json.RawMessage) (Result, error) {
	d, err := w.Duration(args)
	if err != nil {
		return FailureResult(err), nil
	}

	if err := w.sleep(ctx, d); err != nil {
		return Result{}, err
	}
	return SuccessResult(fmt.Sprintf("waited %s", d)), nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Verify WaitTool implements Tool
var _ Tool = (*WaitTool)(nil)
