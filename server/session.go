// Package server exposes the agent over HTTP: REST prompt submission plus
// the two live websocket streams, thoughts and outputs.
//
// Each session binds one conversation to one event router. The turn loop
// never knows about connections; the session is the boundary where runs are
// started, cancelled, and persisted.
package server

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/jtary/think-first-ai/agent"
	"github.com/jtary/think-first-ai/broadcast"
	"github.com/jtary/think-first-ai/storage"
)

// ErrSessionClosed is returned when a run is requested on a closed session.
var ErrSessionClosed = errors.New("session closed")

const persistTimeout = 5 * time.Second

// Session owns one conversation, its event router, and the lifecycle of runs
// against it. One run at a time; a second request is rejected, not queued.
type Session struct {
	ID string

	loop   *agent.Loop
	router *broadcast.Router
	store  storage.ConversationStorage
	log    *slog.Logger

	mu        sync.Mutex
	refs      int // guarded by the manager
	running   bool
	cancelRun context.CancelFunc
	closed    bool
}

func newSession(id string, loop *agent.Loop, router *broadcast.Router, store storage.ConversationStorage, log *slog.Logger) *Session {
	return &Session{
		ID:     id,
		loop:   loop,
		router: router,
		store:  store,
		log:    log.With("session", id),
	}
}

// Subscribe attaches a live listener to one of the session's channels.
func (s *Session) Subscribe(channel agent.Channel) *broadcast.Subscriber {
	return s.router.Subscribe(channel)
}

// Unsubscribe detaches a listener and closes its queue.
func (s *Session) Unsubscribe(sub *broadcast.Subscriber) {
	s.router.Unsubscribe(sub)
}

// Run executes one turn-loop run synchronously. Events stream to the
// session's subscribers while the caller blocks; the transcript is persisted
// when the run ends, success or not.
func (s *Session) Run(ctx context.Context, prompt string) error {
	runCtx, err := s.beginRun(ctx)
	if err != nil {
		return err
	}
	defer s.endRun()

	runErr := s.loop.Run(runCtx, prompt)
	if runErr != nil {
		s.log.Warn("run failed", "error", runErr)
	}
	s.persist()
	return runErr
}

// Generate starts a run in the background, for websocket-initiated prompts.
// Rejection (empty prompt, run already active) is synchronous; run failures
// surface as Failed events on the streams.
func (s *Session) Generate(prompt string) error {
	if strings.TrimSpace(prompt) == "" {
		return agent.ErrEmptyPrompt
	}

	runCtx, err := s.beginRun(context.Background())
	if err != nil {
		return err
	}

	go func() {
		defer s.endRun()
		if runErr := s.loop.Run(runCtx, prompt); runErr != nil {
			s.log.Warn("run failed", "error", runErr)
		}
		s.persist()
	}()
	return nil
}

// Running reports whether a run is in flight.
func (s *Session) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// LastAnswer returns the content of the most recent final answer, or an
// empty string if the conversation has none.
func (s *Session) LastAnswer() string {
	history := s.loop.History()
	for i := len(history) - 1; i >= 0; i-- {
		msg := history[i]
		if msg.Role == "assistant" && len(msg.ToolCalls) == 0 {
			return msg.Content
		}
	}
	return ""
}

func (s *Session) beginRun(ctx context.Context) (context.Context, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, ErrSessionClosed
	}
	if s.running {
		return nil, agent.ErrRunActive
	}

	runCtx, cancel := context.WithCancel(ctx)
	s.running = true
	s.cancelRun = cancel
	return runCtx, nil
}

func (s *Session) endRun() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.running = false
	if s.cancelRun != nil {
		s.cancelRun()
		s.cancelRun = nil
	}
}

// persist saves the transcript so the session can be resumed later. Storage
// failures are logged, never fatal: the conversation lives on in memory.
func (s *Session) persist() {
	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()

	if err := s.store.Save(ctx, s.ID, s.loop.History()); err != nil {
		s.log.Error("failed to persist transcript", "error", err)
	}
}

// close cancels any active run and rejects future ones. Subscriber queues
// are closed by their own unsubscribes.
func (s *Session) close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closed = true
	if s.cancelRun != nil {
		s.cancelRun()
		s.cancelRun = nil
	}
}
