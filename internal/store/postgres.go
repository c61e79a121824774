// Package store provides storage backends for StudyFlow conversations.
//
// This file implements the PostgreSQL-backed store.
package store

import (
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "embed"

	"github.com/ConvergioEdu/StudyFlow/internal/models"
	_ "github.com/lib/pq"
)

// Database connection pool configuration constants.
const (
	DefaultMaxOpenConns    = 25
	DefaultMaxIdleConns    = 25
	DefaultConnMaxLifetime = 5 * time.Minute
)

//go:embed migrations_postgres.sql
var postgresMigrations string

type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates a new Postgres store based on provided options.
func NewPostgresStore(opts ...Option) (*PostgresStore, error) {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	slog.Debug("PostgresStore.NewPostgresStore: creating store", "DSN_set", cfg.DSN != "")

	dsn := cfg.DSN
	if dsn == "" {
		slog.Error("PostgresStore DSN not set")
		return nil, fmt.Errorf("database DSN not set")
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		slog.Error("PostgresStore failed to open connection", "error", err)
		return nil, err
	}
	db.SetMaxOpenConns(DefaultMaxOpenConns)
	db.SetMaxIdleConns(DefaultMaxIdleConns)
	db.SetConnMaxLifetime(DefaultConnMaxLifetime)

	if err := db.Ping(); err != nil {
		slog.Error("PostgresStore ping failed", "error", err)
		return nil, err
	}

	if _, err := db.Exec(postgresMigrations); err != nil {
		slog.Error("PostgresStore failed to run migrations", "error", err)
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	slog.Debug("PostgresStore.NewPostgresStore: migrations applied")

	return &PostgresStore{db: db}, nil
}

func (s *PostgresStore) CreateConversation(conv Conversation) error {
	_, err := s.db.Exec(
		`INSERT INTO conversations (id, user_id, character_id, character_type, title, created_at, updated_at) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		conv.ID, conv.UserID, conv.CharacterID, string(conv.CharacterType), conv.Title, conv.CreatedAt, conv.UpdatedAt,
	)
	if err != nil {
		slog.Error("PostgresStore.CreateConversation failed", "error", err, "conversationID", conv.ID)
		return fmt.Errorf("failed to insert conversation %s: %w", conv.ID, err)
	}
	return nil
}

func (s *PostgresStore) GetConversation(id string) (*Conversation, error) {
	row := s.db.QueryRow(
		`SELECT id, user_id, character_id, character_type, title, created_at, updated_at, ended_at FROM conversations WHERE id = $1`, id)
	conv, err := scanConversation(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		slog.Error("PostgresStore.GetConversation failed", "error", err, "conversationID", id)
		return nil, fmt.Errorf("failed to get conversation %s: %w", id, err)
	}
	return conv, nil
}

func (s *PostgresStore) ListConversations(userID string) ([]Conversation, error) {
	rows, err := s.db.Query(
		`SELECT id, user_id, character_id, character_type, title, created_at, updated_at, ended_at FROM conversations WHERE user_id = $1 ORDER BY updated_at DESC`, userID)
	if err != nil {
		slog.Error("PostgresStore.ListConversations query failed", "error", err, "userID", userID)
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

func (s *PostgresStore) ReplaceMessages(conversationID string, msgs []models.FlowMessage) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM messages WHERE conversation_id = $1`, conversationID); err != nil {
		return fmt.Errorf("failed to clear messages for %s: %w", conversationID, err)
	}
	for i, msg := range msgs {
		_, err := tx.Exec(
			`INSERT INTO messages (id, conversation_id, position, role, content, character_id, character_type, created_at) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			msg.ID, conversationID, i, string(msg.Role), msg.Content, msg.CharacterID, string(msg.CharacterType), msg.Timestamp,
		)
		if err != nil {
			return fmt.Errorf("failed to insert message %s: %w", msg.ID, err)
		}
	}
	if _, err := tx.Exec(`UPDATE conversations SET updated_at = $1 WHERE id = $2`, time.Now(), conversationID); err != nil {
		return fmt.Errorf("failed to touch conversation %s: %w", conversationID, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit messages for %s: %w", conversationID, err)
	}
	slog.Debug("PostgresStore.ReplaceMessages succeeded", "conversationID", conversationID, "count", len(msgs))
	return nil
}

func (s *PostgresStore) GetMessages(conversationID string) ([]models.FlowMessage, error) {
	rows, err := s.db.Query(
		`SELECT id, role, content, character_id, character_type, created_at FROM messages WHERE conversation_id = $1 ORDER BY position`, conversationID)
	if err != nil {
		slog.Error("PostgresStore.GetMessages query failed", "error", err, "conversationID", conversationID)
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

func (s *PostgresStore) SaveSummary(userID string, summary models.ConversationSummary) error {
	keyFacts, topics, err := marshalSummaryLists(summary)
	if err != nil {
		return err
	}
	_, err = s.db.Exec(
		`INSERT INTO summaries (conversation_id, user_id, character_id, title, summary, key_facts, topics, last_message_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 ON CONFLICT (conversation_id) DO UPDATE SET title = EXCLUDED.title, summary = EXCLUDED.summary, key_facts = EXCLUDED.key_facts, topics = EXCLUDED.topics, last_message_at = EXCLUDED.last_message_at`,
		summary.ID, userID, summary.MaestroID, summary.Title, summary.Summary, keyFacts, topics, summary.LastMessageAt,
	)
	if err != nil {
		slog.Error("PostgresStore.SaveSummary failed", "error", err, "conversationID", summary.ID)
		return fmt.Errorf("failed to save summary for %s: %w", summary.ID, err)
	}
	return nil
}

func (s *PostgresStore) ListSummaries(userID string) ([]models.ConversationSummary, error) {
	rows, err := s.db.Query(
		`SELECT conversation_id, character_id, title, summary, key_facts, topics, last_message_at FROM summaries WHERE user_id = $1 ORDER BY last_message_at DESC`, userID)
	if err != nil {
		slog.Error("PostgresStore.ListSummaries query failed", "error", err, "userID", userID)
		return nil, fmt.Errorf("failed to query summaries: %w", err)
	}
	defer rows.Close()
	return scanSummaries(rows)
}

func (s *PostgresStore) EndConversation(id string, endedAt time.Time) error {
	res, err := s.db.Exec(`UPDATE conversations SET ended_at = $1, updated_at = $2 WHERE id = $3`, endedAt, endedAt, id)
	if err != nil {
		slog.Error("PostgresStore.EndConversation failed", "error", err, "conversationID", id)
		return fmt.Errorf("failed to end conversation %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("conversation %s not found", id)
	}
	return nil
}

func (s *PostgresStore) Close() error {
	return s.db.Close()
}
