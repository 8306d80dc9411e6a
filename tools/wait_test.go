package tools

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"
)

func TestWaitDurationBounds(t *testing.T) {
	w := NewWaitTool(time.Second, 30*time.Second)

	tests := []struct {
		name    string
		args    string
		want    time.Duration
		wantErr bool
	}{
		{"within bounds", `{"duration": 5}`, 5 * time.Second, false},
		{"at minimum", `{"duration": 1}`, time.Second, false},
		{"above maximum clamps", `{"duration": 120}`, 30 * time.Second, false},
		{"below minimum", `{"duration": 0.1}`, 0, true},
		{"zero", `{"duration": 0}`, 0, true},
		{"negative", `{"duration": -3}`, 0, true},
		{"garbage", `"nope"`, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := w.Duration(json.RawMessage(tt.args))
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				if !errors.Is(err, ErrInvalidArgument) {
					t.Errorf("expected ErrInvalidArgument, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if d != tt.want {
				t.Errorf("got %s, want %s", d, tt.want)
			}
		})
	}
}

func TestWaitExecuteSleepsClampedDuration(t *testing.T) {
	var slept time.Duration
	w := NewWaitTool(time.Second, 10*time.Second).WithSleep(
		func(_ context.Context, d time.Duration) error {
			slept = d
			return nil
		})

	result, err := w.Execute(context.Background(), json.RawMessage(`{"duration": 99}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.Success() {
		t.Fatalf("unexpected failure: %v", result.Error)
	}
	if slept != 10*time.Second {
		t.Errorf("expected clamped sleep of 10s, got %s", slept)
	}
}

func TestWaitExecuteRealSleep(t *testing.T) {
	w := NewWaitTool(10*time.Millisecond, time.Second)

	start := time.Now()
	result, err := w.Execute(context.Background(), json.RawMessage(`{"duration": 0.05}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.Success() {
		t.Fatalf("unexpected failure: %v", result.Error)
	}
	if elapsed := time.Since(start); elapsed < 50*time.Millisecond {
		t.Errorf("returned after %s, expected at least 50ms", elapsed)
	}
}

func TestWaitExecuteCancelled(t *testing.T) {
	w := NewWaitTool(10*time.Millisecond, time.Minute)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := w.Execute(ctx, json.RawMessage(`{"duration": 30}`))
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestCurrentTimeTool(t *testing.T) {
	fixed := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	tool := NewCurrentTimeTool().WithNow(func() time.Time { return fixed })

	result, err := tool.Execute(context.Background(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Output != "2025-06-01T12:00:00Z" {
		t.Errorf("unexpected output: %q", result.Output)
	}
}
