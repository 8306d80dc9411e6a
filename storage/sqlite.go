package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"

	"github.com/jtary/think-first-ai/llm"
)

// SqliteStorage implements ConversationStorage on a SQLite database file.
// Thread-safe: sql.DB handles connection pooling and concurrent access.
type SqliteStorage struct {
	db *sql.DB
}

// OpenSqlite opens or creates a SQLite database at the given path,
// creating parent directories as needed.
func OpenSqlite(path string) (*SqliteStorage, error) {
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}

	storage := &SqliteStorage{db: db}
	if err := storage.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return storage, nil
}

// NewSqliteInMemory creates an in-memory database (useful for testing).
func NewSqliteInMemory() (*SqliteStorage, error) {
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory SQLite: %w", err)
	}

	storage := &SqliteStorage{db: db}
	if err := storage.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return storage, nil
}

// Close closes the database connection.
func (s *SqliteStorage) Close() error {
	return s.db.Close()
}

func (s *SqliteStorage) createSchema() error {
	schema := `
		CREATE TABLE IF NOT EXISTS sessions (
			session_id TEXT PRIMARY KEY,
			created_at TEXT NOT NULL DEFAULT (datetime('now')),
			updated_at TEXT NOT NULL DEFAULT (datetime('now'))
		);

		CREATE TABLE IF NOT EXISTS messages (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			session_id TEXT NOT NULL,
			message_index INTEGER NOT NULL,
			role TEXT NOT NULL,
			content TEXT NOT NULL,
			tool_calls TEXT,
			tool_call_id TEXT,
			FOREIGN KEY (session_id) REFERENCES sessions(session_id) ON DELETE CASCADE,
			UNIQUE(session_id, message_index)
		);

		CREATE INDEX IF NOT EXISTS idx_messages_session
		ON messages(session_id, message_index);
	`

	_, err := s.db.Exec(schema)
	if err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

func (s *SqliteStorage) ensureSession(ctx context.Context, sessionID string) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT OR IGNORE INTO sessions (session_id) VALUES (?)",
		sessionID,
	)
	if err != nil {
		return fmt.Errorf("failed to ensure session: %w", err)
	}
	return nil
}

// Save replaces the stored transcript for a session.
func (s *SqliteStorage) Save(ctx context.Context, sessionID string, history []llm.ChatMessage) error {
	if err := s.ensureSession(ctx, sessionID); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	// Rollback after Commit is a no-op.
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx, "DELETE FROM messages WHERE session_id = ?", sessionID)
	if err != nil {
		return fmt.Errorf("failed to clear old messages: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		"INSERT INTO messages (session_id, message_index, role, content, tool_calls, tool_call_id) VALUES (?, ?, ?, ?, ?, ?)")
	if err != nil {
		return fmt.Errorf("failed to prepare insert statement: %w", err)
	}
	defer stmt.Close()

	for i, msg := range history {
		var toolCalls, toolCallID interface{}
		if len(msg.ToolCalls) > 0 {
			encoded, err := json.Marshal(msg.ToolCalls)
			if err != nil {
				return fmt.Errorf("failed to encode tool calls: %w", err)
			}
			toolCalls = string(encoded)
		}
		if msg.ToolCallID != "" {
			toolCallID = msg.ToolCallID
		}

		_, err = stmt.ExecContext(ctx, sessionID, i, msg.Role, msg.Content, toolCalls, toolCallID)
		if err != nil {
			return fmt.Errorf("failed to insert message: %w", err)
		}
	}

	_, err = tx.ExecContext(ctx,
		"UPDATE sessions SET updated_at = datetime('now') WHERE session_id = ?",
		sessionID)
	if err != nil {
		return fmt.Errorf("failed to update session timestamp: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// Load returns the stored transcript, or an empty slice for an unknown session.
func (s *SqliteStorage) Load(ctx context.Context, sessionID string) ([]llm.ChatMessage, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT role, content, tool_calls, tool_call_id FROM messages WHERE session_id = ? ORDER BY message_index ASC",
		sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query messages: %w", err)
	}
	defer rows.Close()

	messages := []llm.ChatMessage{} // Start with empty slice, not nil
	for rows.Next() {
		var msg llm.ChatMessage
		var toolCalls, toolCallID sql.NullString
		if err := rows.Scan(&msg.Role, &msg.Content, &toolCalls, &toolCallID); err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		if toolCalls.Valid {
			if err := json.Unmarshal([]byte(toolCalls.String), &msg.ToolCalls); err != nil {
				return nil, fmt.Errorf("failed to decode tool calls: %w", err)
			}
		}
		if toolCallID.Valid {
			msg.ToolCallID = toolCallID.String
		}
		messages = append(messages, msg)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating messages: %w", err)
	}

	return messages, nil
}

// Delete removes a session and its transcript.
func (s *SqliteStorage) Delete(ctx context.Context, sessionID string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	// Foreign keys are off by default in SQLite; cascade by hand.
	if _, err := tx.ExecContext(ctx,
		"DELETE FROM messages WHERE session_id = ?", sessionID); err != nil {
		return fmt.Errorf("failed to delete messages: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		"DELETE FROM sessions WHERE session_id = ?", sessionID); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// ListSessions lists all session IDs, most recently updated first.
func (s *SqliteStorage) ListSessions(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT session_id FROM sessions ORDER BY updated_at DESC")
	if err != nil {
		return nil, fmt.Errorf("failed to query sessions: %w", err)
	}
	defer rows.Close()

	sessions := []string{}
	for rows.Next() {
		var sessionID string
		if err := rows.Scan(&sessionID); err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		sessions = append(sessions, sessionID)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating sessions: %w", err)
	}

	return sessions, nil
}

// Exists reports whether a session has been saved.
func (s *SqliteStorage) Exists(ctx context.Context, sessionID string) (bool, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM sessions WHERE session_id = ?",
		sessionID).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check session existence: %w", err)
	}

	return count > 0, nil
}

// Verify SqliteStorage implements ConversationStorage
var _ ConversationStorage = (*SqliteStorage)(nil)
