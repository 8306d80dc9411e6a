// Command execution for CLI commands.
//
// The CLI talks to the same building blocks the server does: a provider, a
// tool registry, and a turn loop. Output goes straight to stdout/stderr;
// structured logging is reserved for the server path.

package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jtary/think-first-ai/agent"
	"github.com/jtary/think-first-ai/config"
	"github.com/jtary/think-first-ai/internal/logger"
	"github.com/jtary/think-first-ai/llm"
	"github.com/jtary/think-first-ai/server"
	"github.com/jtary/think-first-ai/storage"
	"github.com/jtary/think-first-ai/tools"
)

// Options holds CLI execution options.
type Options struct {
	Provider string
	Model    string
	MaxTurns int
	Verbose  bool
}

// Serve runs the HTTP server until interrupted.
func Serve(ctx context.Context, webDir string, opts Options) error {
	settings, err := config.New(opts.Provider)
	if err != nil {
		return err
	}
	if opts.Model != "" {
		settings.LLM.Model = opts.Model
	}
	if opts.MaxTurns > 0 {
		settings.Agent.MaxTurns = opts.MaxTurns
	}

	log := logger.New(settings.LogLevel, "think-first-ai")

	provider, err := buildProvider(settings)
	if err != nil {
		return err
	}
	registry, err := buildRegistry(settings)
	if err != nil {
		return err
	}

	store, closeStore, err := buildStorage(settings)
	if err != nil {
		return err
	}
	defer closeStore()

	manager := server.NewManager(func(sink agent.EventSink) *agent.Loop {
		cfg := agent.DefaultConfig()
		cfg.MaxTurns = settings.Agent.MaxTurns
		return agent.NewLoop(provider, registry, sink, cfg)
	}, store, settings.Agent.QueueSize, log)

	srv := server.New(manager, store, log, webDir)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info("configured",
		"provider", provider.Name(),
		"model", provider.Model(),
		"tools", registry.Names(),
	)
	return srv.ListenAndServe(ctx, settings.Server.Addr())
}

// Ask runs one prompt to completion, printing events as they happen.
// With a session ID and database path the conversation is resumed and
// persisted, like the server does.
func Ask(ctx context.Context, prompt, sessionID, dbPath string, opts Options) error {
	settings, err := config.New(opts.Provider)
	if err != nil {
		return err
	}
	if opts.Model != "" {
		settings.LLM.Model = opts.Model
	}
	if opts.MaxTurns > 0 {
		settings.Agent.MaxTurns = opts.MaxTurns
	}

	provider, err := buildProvider(settings)
	if err != nil {
		return err
	}
	registry, err := buildRegistry(settings)
	if err != nil {
		return err
	}

	cfg := agent.DefaultConfig()
	cfg.MaxTurns = settings.Agent.MaxTurns
	loop := agent.NewLoop(provider, registry, agent.SinkFunc(func(e agent.Event) {
		printEvent(e, opts.Verbose)
	}), cfg)

	var store storage.ConversationStorage
	if sessionID != "" {
		sqlite, err := storage.OpenSqlite(dbPath)
		if err != nil {
			return err
		}
		defer sqlite.Close()
		store = sqlite

		history, err := store.Load(ctx, sessionID)
		if err != nil {
			return err
		}
		if len(history) > 0 {
			if err := loop.RestoreHistory(history); err != nil {
				return err
			}
			fmt.Printf("Resumed session %s (%d messages)\n\n", sessionID, len(history))
		}
	}

	runErr := loop.Run(ctx, prompt)

	if store != nil {
		if err := store.Save(ctx, sessionID, loop.History()); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to save session: %v\n", err)
		}
	}

	if opts.Verbose {
		usage := loop.Usage()
		fmt.Printf("\n(tokens: %d prompt, %d completion)\n", usage.PromptTokens, usage.CompletionTokens)
	}
	return runErr
}

// ListTools prints the registered tools.
func ListTools(verbose bool) error {
	settings, err := config.New("")
	if err != nil {
		return err
	}
	registry, err := buildRegistry(settings)
	if err != nil {
		return err
	}

	fmt.Println("Available tools:")
	for _, meta := range registry.List() {
		fmt.Printf("  %-14s %s\n", meta.Name, meta.Description)
		if verbose {
			for _, p := range meta.Parameters {
				required := ""
				if p.Required {
					required = " (required)"
				}
				fmt.Printf("    - %s (%s)%s: %s\n", p.Name, p.ParamType, required, p.Description)
			}
		}
	}
	return nil
}

func buildProvider(settings config.Settings) (llm.Provider, error) {
	providerType, err := llm.ParseProviderType(settings.LLM.Provider)
	if err != nil {
		return nil, err
	}

	apiKey, err := config.APIKeyFor(settings.LLM.Provider)
	if err != nil {
		return nil, err
	}

	return llm.NewProvider(providerType, llm.Options{
		APIKey:      apiKey,
		Model:       settings.LLM.Model,
		BaseURL:     settings.LLM.BaseURL,
		MaxTokens:   settings.LLM.MaxTokens,
		Temperature: float32(settings.LLM.Temperature),
	})
}

func buildRegistry(settings config.Settings) (*tools.Registry, error) {
	registry := tools.NewRegistry()
	if err := registry.Register(tools.NewWaitTool(settings.Agent.WaitMin, settings.Agent.WaitMax)); err != nil {
		return nil, err
	}
	if err := registry.Register(tools.NewCurrentTimeTool()); err != nil {
		return nil, err
	}
	return registry, nil
}

func buildStorage(settings config.Settings) (storage.ConversationStorage, func(), error) {
	if settings.Storage.Path == "" {
		return storage.NewInMemoryStorage(), func() {}, nil
	}
	sqlite, err := storage.OpenSqlite(settings.Storage.Path)
	if err != nil {
		return nil, nil, err
	}
	return sqlite, func() { sqlite.Close() }, nil
}

func printEvent(e agent.Event, verbose bool) {
	switch e.Kind {
	case agent.EventThought:
		fmt.Printf("[thought] %s\n", e.Content)
	case agent.EventToolInvoked:
		fmt.Printf("[tool] %s %s\n", e.Tool, e.Arguments)
	case agent.EventToolCompleted:
		if e.Error != "" {
			fmt.Printf("[tool] %s failed: %s\n", e.Tool, e.Error)
		} else if verbose {
			fmt.Printf("[tool] %s -> %s\n", e.Tool, e.Result)
		}
	case agent.EventIdle:
		fmt.Printf("[idle] %s\n", time.Duration(e.Duration*float64(time.Second)))
	case agent.EventOutput:
		fmt.Printf("\n%s\n", e.Content)
	case agent.EventFailed:
		fmt.Fprintf(os.Stderr, "Error: %s\n", e.Content)
	}
}
