// Package main provides the thinkfirst CLI entry point.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/jtary/think-first-ai/cli"
)

var (
	// Global flags
	provider string
	model    string
	maxTurns int
	verbose  bool
)

func main() {
	// Load .env file if present (ignore "file not found" errors)
	if err := godotenv.Load(); err != nil {
		if !os.IsNotExist(err) {
			fmt.Fprintf(os.Stderr, "Warning: failed to load .env file: %v\n", err)
		}
	}

	rootCmd := &cobra.Command{
		Use:   "thinkfirst",
		Short: "A think-first agent that shows its reasoning before it answers",
		Long: `An agent service that separates thinking from answering.

Every run streams two views of the same conversation:
- thoughts: reasoning steps, tool calls, and idle pauses
- outputs: final answers only

Run 'serve' for the web UI with live websocket streams, or 'ask' for a
one-shot prompt in the terminal.`,
	}

	rootCmd.PersistentFlags().StringVarP(&provider, "provider", "p", "", "LLM provider (ollama, openai, anthropic, gemini); defaults to local ollama")
	rootCmd.PersistentFlags().StringVar(&model, "model", "", "Model override for the selected provider")
	rootCmd.PersistentFlags().IntVarP(&maxTurns, "max-turns", "m", 0, "Maximum turns per run (default 10)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Show verbose output")

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(askCmd())
	rootCmd.AddCommand(toolsCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func options() cli.Options {
	return cli.Options{
		Provider: provider,
		Model:    model,
		MaxTurns: maxTurns,
		Verbose:  verbose,
	}
}

func serveCmd() *cobra.Command {
	var webDir string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server with the web UI and websocket streams",
		Long: `Run the HTTP server.

Endpoints:
- GET  /                          web UI
- GET  /ws/thoughts               live reasoning stream
- GET  /ws/outputs                live answer stream
- POST /api/sessions/{id}/prompt  synchronous prompt submission
- DELETE /api/sessions/{id}       reset a session`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cli.Serve(context.Background(), webDir, options())
		},
	}

	cmd.Flags().StringVar(&webDir, "web", "web", "Directory holding the static frontend")

	return cmd
}

func askCmd() *cobra.Command {
	var sessionID string
	var dbPath string

	cmd := &cobra.Command{
		Use:   "ask [prompt]",
		Short: "Run one prompt to completion in the terminal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cli.Ask(context.Background(), args[0], sessionID, dbPath, options())
		},
	}

	cmd.Flags().StringVar(&sessionID, "session", "", "Session ID for conversation persistence")
	cmd.Flags().StringVar(&dbPath, "db", ".thinkfirst/thinkfirst.db", "Database path for session storage")

	return cmd
}

func toolsCmd() *cobra.Command {
	var verboseTools bool

	cmd := &cobra.Command{
		Use:   "tools",
		Short: "List available tools",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cli.ListTools(verboseTools)
		},
	}

	cmd.Flags().BoolVarP(&verboseTools, "verbose", "V", false, "Show tool parameters")

	return cmd
}
