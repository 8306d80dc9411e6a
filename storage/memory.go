package storage

import (
	"context"
	"sync"

	"github.com/jtary/think-first-ai/llm"
)

// InMemoryStorage keeps transcripts in a process-local map. Data is lost on
// restart; suitable for tests and ephemeral sessions.
type InMemoryStorage struct {
	mu       sync.RWMutex
	sessions map[string][]llm.ChatMessage
}

// NewInMemoryStorage creates an empty in-memory store.
func NewInMemoryStorage() *InMemoryStorage {
	return &InMemoryStorage{
		sessions: make(map[string][]llm.ChatMessage),
	}
}

// Save replaces the stored transcript for a session.
func (s *InMemoryStorage) Save(ctx context.Context, sessionID string, history []llm.ChatMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Copy to guard against caller mutation.
	copied := make([]llm.ChatMessage, len(history))
	copy(copied, history)
	s.sessions[sessionID] = copied

	return nil
}

// Load returns the stored transcript, or an empty slice for an unknown session.
func (s *InMemoryStorage) Load(ctx context.Context, sessionID string) ([]llm.ChatMessage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	history, ok := s.sessions[sessionID]
	if !ok {
		return []llm.ChatMessage{}, nil
	}

	copied := make([]llm.ChatMessage, len(history))
	copy(copied, history)
	return copied, nil
}

// Delete removes a session and its transcript.
func (s *InMemoryStorage) Delete(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.sessions, sessionID)
	return nil
}

// ListSessions lists all known session IDs.
func (s *InMemoryStorage) ListSessions(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sessions := make([]string, 0, len(s.sessions))
	for sessionID := range s.sessions {
		sessions = append(sessions, sessionID)
	}
	return sessions, nil
}

// Exists reports whether a session has been saved.
func (s *InMemoryStorage) Exists(ctx context.Context, sessionID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.sessions[sessionID]
	return ok, nil
}

// Verify InMemoryStorage implements ConversationStorage
var _ ConversationStorage = (*InMemoryStorage)(nil)
