// Package store provides storage backends for StudyFlow conversations.
//
// This file implements the SQLite-backed store.
package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "embed"

	"github.com/ConvergioEdu/StudyFlow/internal/models"
	_ "github.com/mattn/go-sqlite3"
)

// DefaultDirPermissions defines the default permissions for database directories.
const DefaultDirPermissions = 0755

//go:embed migrations_sqlite.sql
var sqliteMigrations string

type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new SQLite store with the given DSN.
// The DSN is a file path to the SQLite database file; the directory is
// created if it does not exist.
func NewSQLiteStore(opts ...Option) (*SQLiteStore, error) {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	slog.Debug("SQLiteStore.NewSQLiteStore: creating store", "DSN_set", cfg.DSN != "")

	dsn := cfg.DSN
	if dsn == "" {
		slog.Error("SQLiteStore DSN not set")
		return nil, fmt.Errorf("database DSN not set")
	}

	dir := filepath.Dir(dsn)
	if err := os.MkdirAll(dir, DefaultDirPermissions); err != nil {
		slog.Error("SQLiteStore failed to create database directory", "error", err, "dir", dir)
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		slog.Error("SQLiteStore failed to open connection", "error", err)
		return nil, err
	}
	if err := db.Ping(); err != nil {
		slog.Error("SQLiteStore ping failed", "error", err)
		return nil, err
	}

	if _, err := db.Exec(sqliteMigrations); err != nil {
		slog.Error("SQLiteStore failed to run migrations", "error", err)
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	slog.Debug("SQLiteStore.NewSQLiteStore: migrations applied")

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) CreateConversation(conv Conversation) error {
	_, err := s.db.Exec(
		`INSERT INTO conversations (id, user_id, character_id, character_type, title, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		conv.ID, conv.UserID, conv.CharacterID, string(conv.CharacterType), conv.Title, conv.CreatedAt, conv.UpdatedAt,
	)
	if err != nil {
		slog.Error("SQLiteStore.CreateConversation failed", "error", err, "conversationID", conv.ID)
		return fmt.Errorf("failed to insert conversation %s: %w", conv.ID, err)
	}
	slog.Debug("SQLiteStore.CreateConversation succeeded", "conversationID", conv.ID)
	return nil
}

func (s *SQLiteStore) GetConversation(id string) (*Conversation, error) {
	row := s.db.QueryRow(
		`SELECT id, user_id, character_id, character_type, title, created_at, updated_at, ended_at FROM conversations WHERE id = ?`, id)
	conv, err := scanConversation(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		slog.Error("SQLiteStore.GetConversation failed", "error", err, "conversationID", id)
		return nil, fmt.Errorf("failed to get conversation %s: %w", id, err)
	}
	return conv, nil
}

func (s *SQLiteStore) ListConversations(userID string) ([]Conversation, error) {
	rows, err := s.db.Query(
		`SELECT id, user_id, character_id, character_type, title, created_at, updated_at, ended_at FROM conversations WHERE user_id = ? ORDER BY updated_at DESC`, userID)
	if err != nil {
		slog.Error("SQLiteStore.ListConversations query failed", "error", err, "userID", userID)
		return nil, fmt.Errorf("failed to query conversations: %w", err)
	}
	defer rows.Close()

	var out []Conversation
	for rows.Next() {
		conv, err := scanConversation(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan conversation row: %w", err)
		}
		out = append(out, *conv)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate conversation rows: %w", err)
	}
	return out, nil
}

func (s *SQLiteStore) ReplaceMessages(conversationID string, msgs []models.FlowMessage) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM messages WHERE conversation_id = ?`, conversationID); err != nil {
		return fmt.Errorf("failed to clear messages for %s: %w", conversationID, err)
	}
	for i, msg := range msgs {
		_, err := tx.Exec(
			`INSERT INTO messages (id, conversation_id, position, role, content, character_id, character_type, created_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			msg.ID, conversationID, i, string(msg.Role), msg.Content, msg.CharacterID, string(msg.CharacterType), msg.Timestamp,
		)
		if err != nil {
			return fmt.Errorf("failed to insert message %s: %w", msg.ID, err)
		}
	}
	if _, err := tx.Exec(`UPDATE conversations SET updated_at = ? WHERE id = ?`, time.Now(), conversationID); err != nil {
		return fmt.Errorf("failed to touch conversation %s: %w", conversationID, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit messages for %s: %w", conversationID, err)
	}
	slog.Debug("SQLiteStore.ReplaceMessages succeeded", "conversationID", conversationID, "count", len(msgs))
	return nil
}

func (s *SQLiteStore) GetMessages(conversationID string) ([]models.FlowMessage, error) {
	rows, err := s.db.Query(
		`SELECT id, role, content, character_id, character_type, created_at FROM messages WHERE conversation_id = ? ORDER BY position`, conversationID)
	if err != nil {
		slog.Error("SQLiteStore.GetMessages query failed", "error", err, "conversationID", conversationID)
		return nil, fmt.Errorf("failed to query messages: %w", err)
	}
	defer rows.Close()

	var out []models.FlowMessage
	for rows.Next() {
		var msg models.FlowMessage
		var role, characterType string
		if err := rows.Scan(&msg.ID, &role, &msg.Content, &msg.CharacterID, &characterType, &msg.Timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan message row: %w", err)
		}
		msg.Role = models.MessageRole(role)
		msg.CharacterType = models.CharacterType(characterType)
		out = append(out, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate message rows: %w", err)
	}
	return out, nil
}

func (s *SQLiteStore) SaveSummary(userID string, summary models.ConversationSummary) error {
	keyFacts, topics, err := marshalSummaryLists(summary)
	if err != nil {
		return err
	}
	_, err = s.db.Exec(
		`INSERT INTO summaries (conversation_id, user_id, character_id, title, summary, key_facts, topics, last_message_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(conversation_id) DO UPDATE SET title = excluded.title, summary = excluded.summary, key_facts = excluded.key_facts, topics = excluded.topics, last_message_at = excluded.last_message_at`,
		summary.ID, userID, summary.MaestroID, summary.Title, summary.Summary, keyFacts, topics, summary.LastMessageAt,
	)
	if err != nil {
		slog.Error("SQLiteStore.SaveSummary failed", "error", err, "conversationID", summary.ID)
		return fmt.Errorf("failed to save summary for %s: %w", summary.ID, err)
	}
	return nil
}

func (s *SQLiteStore) ListSummaries(userID string) ([]models.ConversationSummary, error) {
	rows, err := s.db.Query(
		`SELECT conversation_id, character_id, title, summary, key_facts, topics, last_message_at FROM summaries WHERE user_id = ? ORDER BY last_message_at DESC`, userID)
	if err != nil {
		slog.Error("SQLiteStore.ListSummaries query failed", "error", err, "userID", userID)
		return nil, fmt.Errorf("failed to query summaries: %w", err)
	}
	defer rows.Close()
	return scanSummaries(rows)
}

func (s *SQLiteStore) EndConversation(id string, endedAt time.Time) error {
	res, err := s.db.Exec(`UPDATE conversations SET ended_at = ?, updated_at = ? WHERE id = ?`, endedAt, endedAt, id)
	if err != nil {
		slog.Error("SQLiteStore.EndConversation failed", "error", err, "conversationID", id)
		return fmt.Errorf("failed to end conversation %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("conversation %s not found", id)
	}
	return nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanConversation(row rowScanner) (*Conversation, error) {
	var conv Conversation
	var characterType string
	var endedAt sql.NullTime
	err := row.Scan(&conv.ID, &conv.UserID, &conv.CharacterID, &characterType, &conv.Title, &conv.CreatedAt, &conv.UpdatedAt, &endedAt)
	if err != nil {
		return nil, err
	}
	conv.CharacterType = models.CharacterType(characterType)
	if endedAt.Valid {
		conv.EndedAt = &endedAt.Time
	}
	return &conv, nil
}

func scanSummaries(rows *sql.Rows) ([]models.ConversationSummary, error) {
	var out []models.ConversationSummary
	for rows.Next() {
		var summary models.ConversationSummary
		var keyFacts, topics string
		var lastMessageAt sql.NullTime
		if err := rows.Scan(&summary.ID, &summary.MaestroID, &summary.Title, &summary.Summary, &keyFacts, &topics, &lastMessageAt); err != nil {
			return nil, fmt.Errorf("failed to scan summary row: %w", err)
		}
		if err := json.Unmarshal([]byte(keyFacts), &summary.KeyFacts); err != nil {
			return nil, fmt.Errorf("failed to decode key facts for %s: %w", summary.ID, err)
		}
		if err := json.Unmarshal([]byte(topics), &summary.Topics); err != nil {
			return nil, fmt.Errorf("failed to decode topics for %s: %w", summary.ID, err)
		}
		if lastMessageAt.Valid {
			summary.LastMessageAt = &lastMessageAt.Time
		}
		out = append(out, summary)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate summary rows: %w", err)
	}
	return out, nil
}

func marshalSummaryLists(summary models.ConversationSummary) (string, string, error) {
	keyFacts, err := json.Marshal(orEmpty(summary.KeyFacts))
	if err != nil {
		return "", "", fmt.Errorf("failed to encode key facts: %w", err)
	}
	topics, err := json.Marshal(orEmpty(summary.Topics))
	if err != nil {
		return "", "", fmt.Errorf("failed to encode topics: %w", err)
	}
	return string(keyFacts), string(topics), nil
}

func orEmpty(list []string) []string {
	if list == nil {
		return []string{}
	}
	return list
}
