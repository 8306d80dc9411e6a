package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"path/filepath"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/jtary/think-first-ai/agent"
	"github.com/jtary/think-first-ai/storage"
)

// Server wires the session manager into an HTTP surface.
type Server struct {
	manager *Manager
	store   storage.ConversationStorage
	log     *slog.Logger
	webDir  string
}

// New creates a server. webDir is the directory holding the static frontend;
// empty disables static serving.
func New(manager *Manager, store storage.ConversationStorage, log *slog.Logger, webDir string) *Server {
	return &Server{
		manager: manager,
		store:   store,
		log:     log,
		webDir:  webDir,
	}
}

// Routes builds the HTTP handler: the frontend, the two websocket streams,
// and the session REST API.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)

	r.Get("/health", s.handleHealth)

	if s.webDir != "" {
		r.Get("/", func(w http.ResponseWriter, r *http.Request) {
			http.ServeFile(w, r, filepath.Join(s.webDir, "index.html"))
		})
		r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.Dir(s.webDir))))
	}

	r.Get("/ws/thoughts", s.handleWS(agent.ChannelThoughts))
	r.Get("/ws/outputs", s.handleWS(agent.ChannelOutputs))

	r.Route("/api/sessions", func(r chi.Router) {
		r.Get("/", s.handleListSessions)
		r.Post("/{id}/prompt", s.handlePrompt)
		r.Delete("/{id}", s.handleDeleteSession)
	})

	return r
}

// ListenAndServe runs the server until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.log.Info("starting server", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	s.log.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":   "ok",
		"sessions": s.manager.Live(),
	})
}

type promptRequest struct {
	Prompt string `json:"prompt"`
}

type promptResponse struct {
	SessionID string `json:"session_id"`
	Answer    string `json:"answer"`
}

// handlePrompt runs one prompt synchronously and returns the final answer.
// Live subscribers see the events stream while the request blocks.
func (s *Server) handlePrompt(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	req, ok := readJSON[promptRequest](w, r)
	if !ok {
		return
	}

	sess, err := s.manager.Acquire(r.Context(), id)
	if err != nil {
		writeInternalError(w, s.log, err)
		return
	}
	defer s.manager.Release(sess)

	err = sess.Run(r.Context(), req.Prompt)
	switch {
	case errors.Is(err, agent.ErrEmptyPrompt):
		writeError(w, http.StatusBadRequest, "prompt is required")
	case errors.Is(err, agent.ErrRunActive):
		writeError(w, http.StatusConflict, "a run is already active for this session")
	case err != nil:
		writeError(w, http.StatusBadGateway, err.Error())
	default:
		writeJSON(w, http.StatusOK, promptResponse{SessionID: id, Answer: sess.LastAnswer()})
	}
}

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	sessions, err := s.store.ListSessions(r.Context())
	if err != nil {
		writeInternalError(w, s.log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"sessions": sessions})
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := s.manager.Reset(r.Context(), id); err != nil {
		writeInternalError(w, s.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
