// Package storage persists conversation transcripts between runs.
//
// A transcript is the full message history of one session, tool calls and
// tool results included, so a resumed session replays exactly what the
// model saw. Backends are swappable behind ConversationStorage.

package storage

import (
	"context"

	"github.com/jtary/think-first-ai/llm"
)

// ConversationStorage stores transcripts keyed by session ID.
type ConversationStorage interface {
	// Save replaces the stored transcript for a session.
	Save(ctx context.Context, sessionID string, history []llm.ChatMessage) error

	// Load returns the stored transcript for a session.
	// Returns an empty slice (not nil) for an unknown session; errors are
	// reserved for storage failures.
	Load(ctx context.Context, sessionID string) ([]llm.ChatMessage, error)

	// Delete removes a session and its transcript.
	Delete(ctx context.Context, sessionID string) error

	// ListSessions lists all known session IDs.
	ListSessions(ctx context.Context) ([]string, error)

	// Exists reports whether a session has been saved.
	Exists(ctx context.Context, sessionID string) (bool, error)
}
