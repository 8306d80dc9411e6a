// Turn loop - drives a single conversation from a submitted prompt to a
// final answer.
//
// The loop alternates between calling the model gateway and executing tool
// calls, emitting a typed event for everything it does. It suspends at two
// points only: waiting for a completion, and sleeping inside the wait tool.
// Both respect the run context, so concurrent sessions never block each
// other. Cancellation is cooperative and checked at iteration boundaries;
// an in-flight completion or tool execution finishes first.

package agent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/jtary/think-first-ai/llm"
	"github.com/jtary/think-first-ai/tools"
)

// Loop-fatal errors. Tool-level failures never appear here: they are
// reported back to the model as failed tool results and the loop continues.
var (
	// ErrEmptyPrompt is returned when Run is called with a blank prompt.
	// Callers are expected to validate first; no events are emitted.
	ErrEmptyPrompt = errors.New("empty prompt")
	// ErrTurnLimit is returned when a run exceeds the configured turn limit.
	ErrTurnLimit = errors.New("turn limit exceeded")
	// ErrRunActive is returned when Run is called while a run is in flight.
	ErrRunActive = errors.New("run already active")
)

// Loop owns one conversation and executes runs against it.
//
// The conversation state is append-only during a run and mutated only by the
// loop. A Loop handles one run at a time; state carries over between runs so
// follow-up prompts see the full conversation.
type Loop struct {
	provider llm.Provider
	registry *tools.Registry
	config   Config
	sink     EventSink

	mu      sync.Mutex
	running bool
	history []llm.ChatMessage
	usage   llm.TokenUsage
}

// NewLoop creates a turn loop. A nil sink discards events.
func NewLoop(provider llm.Provider, registry *tools.Registry, sink EventSink, config Config) *Loop {
	if sink == nil {
		sink = NoopSink{}
	}
	config = config.withDefaults()

	loop := &Loop{
		provider: provider,
		registry: registry,
		config:   config,
		sink:     sink,
	}
	if config.SystemPrompt != "" {
		loop.history = append(loop.history, llm.SystemMessage(config.SystemPrompt))
	}
	return loop
}

// History returns a copy of the conversation state.
func (l *Loop) History() []llm.ChatMessage {
	l.mu.Lock()
	defer l.mu.Unlock()

	copied := make([]llm.ChatMessage, len(l.history))
	copy(copied, l.history)
	return copied
}

// RestoreHistory replaces the conversation state, for session resumption.
// Fails if a run is active.
func (l *Loop) RestoreHistory(history []llm.ChatMessage) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.running {
		return ErrRunActive
	}
	l.history = make([]llm.ChatMessage, len(history))
	copy(l.history, history)
	return nil
}

// Usage returns cumulative token usage across runs.
func (l *Loop) Usage() llm.TokenUsage {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.usage
}

// Run executes one turn-loop run for the given prompt.
//
// Every run terminates by emitting exactly one of Output or Failed, unless
// the prompt is rejected up front. The returned error mirrors the Failed
// event for programmatic callers; a successful run returns nil.
func (l *Loop) Run(ctx context.Context, prompt string) error {
	if strings.TrimSpace(prompt) == "" {
		return ErrEmptyPrompt
	}

	if err := l.begin(); err != nil {
		return err
	}
	defer l.end()

	l.append(llm.UserMessage(prompt))

	for turn := 0; turn < l.config.MaxTurns; turn++ {
		// Cancellation is checked here, at the iteration boundary.
		if err := ctx.Err(); err != nil {
			l.sink.Publish(FailedEvent("run cancelled"))
			return err
		}

		completion, err := l.provider.Complete(ctx, l.History(), l.registry.Definitions())
		if err != nil {
			l.sink.Publish(FailedEvent(fmt.Sprintf("backend error: %v", err)))
			return fmt.Errorf("backend error: %w", err)
		}
		l.addUsage(completion.Usage)

		if completion.Thought != "" {
			l.sink.Publish(ThoughtEvent(completion.Thought))
		}

		// Free text is the final answer.
		if !completion.IsToolCall() {
			l.sink.Publish(OutputEvent(completion.Text))
			l.append(llm.AssistantMessage(completion.Text))
			return nil
		}

		call := *completion.ToolCall
		l.sink.Publish(ToolInvokedEvent(call))
		l.append(llm.ChatMessage{
			Role:      "assistant",
			Content:   completion.Thought,
			ToolCalls: []llm.ToolCall{call},
		})

		l.executeTool(ctx, call)
	}

	l.sink.Publish(FailedEvent(ErrTurnLimit.Error()))
	return ErrTurnLimit
}

// executeTool runs one tool call and records its outcome. A completed wait
// is reported as Idle rather than ToolCompleted: the iteration rested, it
// didn't act. All failures are recoverable here.
func (l *Loop) executeTool(ctx context.Context, call llm.ToolCall) {
	result := l.registry.Invoke(ctx, call.Name, call.Arguments)

	if result.Success() && call.Name == tools.WaitToolName {
		if wait, ok := l.waitTool(); ok {
			if d, err := wait.Duration(call.Arguments); err == nil {
				l.sink.Publish(IdleEvent(d))
				l.appendToolResult(call, result)
				return
			}
		}
	}

	l.sink.Publish(ToolCompletedEvent(call.Name, result))
	l.appendToolResult(call, result)
}

// waitTool fetches the registered wait tool, if the registry holds one under
// the built-in name.
func (l *Loop) waitTool() (*tools.WaitTool, bool) {
	tool, ok := l.registry.Get(tools.WaitToolName)
	if !ok {
		return nil, false
	}
	wait, ok := tool.(*tools.WaitTool)
	return wait, ok
}

// appendToolResult records a tool outcome in the conversation so the model
// sees it on the next turn. Errors are carried as values: the model recovers,
// the session never crashes.
func (l *Loop) appendToolResult(call llm.ToolCall, result tools.Result) {
	payload, err := json.Marshal(result)
	if err != nil {
		payload = []byte(fmt.Sprintf(`{"success":false,"error":%q}`, err.Error()))
	}
	l.append(llm.ToolResultMessage(call.ID, string(payload)))
}

func (l *Loop) begin() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.running {
		return ErrRunActive
	}
	l.running = true
	return nil
}

func (l *Loop) end() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.running = false
}

func (l *Loop) append(msg llm.ChatMessage) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.history = append(l.history, msg)
}

func (l *Loop) addUsage(usage *llm.TokenUsage) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.usage.Add(usage)
}
