package server

import (
	"context"
	"log/slog"
	"sync"

	"github.com/jtary/think-first-ai/agent"
	"github.com/jtary/think-first-ai/broadcast"
	"github.com/jtary/think-first-ai/storage"
)

// LoopFactory builds a fresh turn loop publishing into the given sink.
// The manager calls it once per session.
type LoopFactory func(sink agent.EventSink) *agent.Loop

// Manager tracks live sessions by ID and creates them on demand.
//
// Sessions are reference counted: every websocket connection and in-flight
// REST request holds one reference, and the session is destroyed when the
// last reference is released. The persisted transcript survives, so a later
// acquire of the same ID resumes the conversation.
type Manager struct {
	newLoop   LoopFactory
	store     storage.ConversationStorage
	queueSize int
	log       *slog.Logger

	mu       sync.Mutex
	sessions map[string]*Session
}

// NewManager creates a session manager.
func NewManager(newLoop LoopFactory, store storage.ConversationStorage, queueSize int, log *slog.Logger) *Manager {
	return &Manager{
		newLoop:   newLoop,
		store:     store,
		queueSize: queueSize,
		log:       log,
		sessions:  make(map[string]*Session),
	}
}

// Acquire returns the live session for id, creating and restoring it if
// needed, and takes a reference. Callers must pair with Release.
func (m *Manager) Acquire(ctx context.Context, id string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if sess, ok := m.sessions[id]; ok {
		sess.refs++
		return sess, nil
	}

	router := broadcast.NewRouter(m.queueSize)
	loop := m.newLoop(router)
	sess := newSession(id, loop, router, m.store, m.log)

	history, err := m.store.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	if len(history) > 0 {
		if err := loop.RestoreHistory(history); err != nil {
			return nil, err
		}
		m.log.Info("session restored", "session", id, "messages", len(history))
	}

	m.sessions[id] = sess
	sess.refs = 1
	return sess, nil
}

// Release drops one reference. The last release cancels any active run and
// removes the session from the live set.
func (m *Manager) Release(sess *Session) {
	m.mu.Lock()
	sess.refs--
	last := sess.refs <= 0
	if last {
		delete(m.sessions, sess.ID)
	}
	m.mu.Unlock()

	if last {
		sess.close()
		m.log.Info("session destroyed", "session", sess.ID)
	}
}

// Reset destroys a live session, cancelling any active run, and deletes its
// persisted transcript. The ID can be reused afterwards as a blank session.
func (m *Manager) Reset(ctx context.Context, id string) error {
	m.mu.Lock()
	sess := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()

	if sess != nil {
		sess.close()
	}
	return m.store.Delete(ctx, id)
}

// Live returns the number of live sessions.
func (m *Manager) Live() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}
