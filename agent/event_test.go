package agent

import (
	"testing"
	"time"

	"github.com/jtary/think-first-ai/llm"
	"github.com/jtary/think-first-ai/tools"
)

func TestEventChannelRouting(t *testing.T) {
	tests := []struct {
		name  string
		event Event
		want  []Channel
	}{
		{"thought", ThoughtEvent("hmm"), []Channel{ChannelThoughts}},
		{"tool invoked", ToolInvokedEvent(llm.ToolCall{Name: "wait"}), []Channel{ChannelThoughts}},
		{"tool completed", ToolCompletedEvent("wait", tools.SuccessResult("ok")), []Channel{ChannelThoughts}},
		{"idle", IdleEvent(5 * time.Second), []Channel{ChannelThoughts}},
		{"output", OutputEvent("4"), []Channel{ChannelOutputs}},
		{"failed", FailedEvent("backend error"), []Channel{ChannelThoughts, ChannelOutputs}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.event.Channels()
			if len(got) != len(tt.want) {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
			for i := range tt.want {
				if got[i] != tt.want[i] {
					t.Errorf("got %v, want %v", got, tt.want)
				}
			}
		})
	}
}

func TestToolCompletedEventCarriesError(t *testing.T) {
	event := ToolCompletedEvent("echo", tools.FailureResultf("echo broke"))
	if event.Error != "echo broke" {
		t.Errorf("expected error payload, got %q", event.Error)
	}
	if event.Result != "" {
		t.Errorf("failed result must not carry output, got %q", event.Result)
	}
}

func TestIdleEventDurationSeconds(t *testing.T) {
	event := IdleEvent(5 * time.Second)
	if event.Duration != 5 {
		t.Errorf("expected 5 seconds, got %v", event.Duration)
	}
}
