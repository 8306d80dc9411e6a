// Agent events - the typed stream a turn-loop run produces.
//
// Every intermediate step of a run becomes exactly one immutable Event, and
// the routing rule from event kind to channel set lives here, independent of
// delivery mechanics.

package agent

import (
	"encoding/json"
	"time"

	"github.com/jtary/think-first-ai/llm"
	"github.com/jtary/think-first-ai/tools"
)

// EventKind identifies the type of agent event.
type EventKind string

const (
	// EventThought is intermediate reasoning text.
	EventThought EventKind = "thought"
	// EventToolInvoked records the model electing to call a tool.
	EventToolInvoked EventKind = "tool_invoked"
	// EventToolCompleted records a tool execution result (success or error).
	EventToolCompleted EventKind = "tool_completed"
	// EventIdle records a completed wait, with the slept duration.
	EventIdle EventKind = "idle"
	// EventOutput is the final user-facing answer for the current prompt.
	EventOutput EventKind = "output"
	// EventFailed terminates a run: backend error, turn limit, or cancellation.
	EventFailed EventKind = "failed"
)

// Channel is one of the two logical broadcast streams subscribers attach to.
type Channel string

const (
	// ChannelThoughts carries the agent's internal activity.
	ChannelThoughts Channel = "thoughts"
	// ChannelOutputs carries final answers.
	ChannelOutputs Channel = "outputs"
)

// Event is a single immutable event from a turn-loop run. Which payload
// fields are set depends on Kind.
type Event struct {
	Kind      EventKind       `json:"kind"`
	Content   string          `json:"content,omitempty"`   // thought, output, failed reason
	Tool      string          `json:"tool,omitempty"`      // tool_invoked, tool_completed
	Arguments json.RawMessage `json:"arguments,omitempty"` // tool_invoked
	Result    string          `json:"result,omitempty"`    // tool_completed success output
	Error     string          `json:"error,omitempty"`     // tool_completed failure
	Duration  float64         `json:"duration,omitempty"`  // idle, in seconds
	Timestamp time.Time       `json:"timestamp"`
}

// Channels returns the channel set the event is delivered to. The rule is
// total: thoughts for all internal activity, outputs for final answers, and
// both for a terminal failure so either view explains why the run ended.
func (e Event) Channels() []Channel {
	switch e.Kind {
	case EventOutput:
		return []Channel{ChannelOutputs}
	case EventFailed:
		return []Channel{ChannelThoughts, ChannelOutputs}
	default:
		return []Channel{ChannelThoughts}
	}
}

// ThoughtEvent creates a thought event.
func ThoughtEvent(text string) Event {
	return Event{Kind: EventThought, Content: text, Timestamp: time.Now()}
}

// ToolInvokedEvent creates a tool_invoked event.
func ToolInvokedEvent(call llm.ToolCall) Event {
	return Event{
		Kind:      EventToolInvoked,
		Tool:      call.Name,
		Arguments: call.Arguments,
		Timestamp: time.Now(),
	}
}

// ToolCompletedEvent creates a tool_completed event from a tool result.
func ToolCompletedEvent(tool string, result tools.Result) Event {
	event := Event{Kind: EventToolCompleted, Tool: tool, Timestamp: time.Now()}
	if result.Success() {
		event.Result = result.Output
	} else {
		event.Error = result.Error.Error()
	}
	return event
}

// IdleEvent creates an idle event for a completed wait.
func IdleEvent(d time.Duration) Event {
	return Event{Kind: EventIdle, Duration: d.Seconds(), Timestamp: time.Now()}
}

// OutputEvent creates an output event.
func OutputEvent(text string) Event {
	return Event{Kind: EventOutput, Content: text, Timestamp: time.Now()}
}

// FailedEvent creates a failed event.
func FailedEvent(reason string) Event {
	return Event{Kind: EventFailed, Content: reason, Timestamp: time.Now()}
}

// EventSink receives every event a run produces, in production order.
// Implementations must not block: a slow consumer is the sink's problem,
// never the loop's.
type EventSink interface {
	Publish(Event)
}

// SinkFunc adapts a function to the EventSink interface.
type SinkFunc func(Event)

// Publish calls the function.
func (f SinkFunc) Publish(event Event) {
	f(event)
}

// NoopSink discards all events.
type NoopSink struct{}

// Publish discards the event.
func (NoopSink) Publish(Event) {}
