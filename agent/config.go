// Agent configuration types.

package agent

// Config holds turn-loop configuration.
type Config struct {
	// SystemPrompt guides the agent's behavior.
	SystemPrompt string

	// MaxTurns bounds loop iterations per run, guarding against infinite
	// tool-call cycles. Exceeding it terminates the run with a failed event.
	MaxTurns int
}

// DefaultConfig returns a basic loop configuration.
func DefaultConfig() Config {
	return Config{
		SystemPrompt: "You are a helpful assistant. Think before you answer, and use the wait tool when you want time to pass instead of padding your reply.",
		MaxTurns:     10,
	}
}

func (c Config) withDefaults() Config {
	if c.MaxTurns <= 0 {
		c.MaxTurns = DefaultConfig().MaxTurns
	}
	return c
}
