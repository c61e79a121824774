// Package store provides storage backends for StudyFlow conversations.
//
// It includes an in-memory store for tests and development, plus SQLite and
// PostgreSQL backends selected by DSN.
package store

import (
	"strings"
	"time"

	"github.com/ConvergioEdu/StudyFlow/internal/models"
)

// Opts holds configuration for store backends.
type Opts struct {
	DSN string
}

// Option configures a store backend.
type Option func(*Opts)

// WithSQLiteDSN sets the SQLite database file path.
func WithSQLiteDSN(dsn string) Option {
	return func(o *Opts) { o.DSN = dsn }
}

// WithPostgresDSN sets the PostgreSQL connection string.
func WithPostgresDSN(dsn string) Option {
	return func(o *Opts) { o.DSN = dsn }
}

// DetectDSNType reports which driver a DSN belongs to: "postgres" for
// connection URLs and key=value strings, "sqlite3" for file paths.
func DetectDSNType(dsn string) string {
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		return "postgres"
	}
	if strings.Contains(dsn, "host=") || strings.Contains(dsn, "dbname=") {
		return "postgres"
	}
	return "sqlite3"
}

// Conversation is a persisted conversation record.
type Conversation struct {
	ID            string
	UserID        string
	CharacterID   string
	CharacterType models.CharacterType
	Title         string
	CreatedAt     time.Time
	UpdatedAt     time.Time
	EndedAt       *time.Time
}

// Store is the persistence interface shared by all backends.
type Store interface {
	// CreateConversation inserts a new conversation record.
	CreateConversation(conv Conversation) error
	// GetConversation returns a conversation by id, or nil when absent.
	GetConversation(id string) (*Conversation, error)
	// ListConversations returns a user's conversations, most recent first.
	ListConversations(userID string) ([]Conversation, error)
	// ReplaceMessages overwrites the full message history of a conversation.
	ReplaceMessages(conversationID string, msgs []models.FlowMessage) error
	// GetMessages returns a conversation's messages in order.
	GetMessages(conversationID string) ([]models.FlowMessage, error)
	// SaveSummary upserts the summary for a conversation.
	SaveSummary(userID string, s models.ConversationSummary) error
	// ListSummaries returns a user's conversation summaries, most recent first.
	ListSummaries(userID string) ([]models.ConversationSummary, error)
	// EndConversation marks a conversation as ended.
	EndConversation(id string, endedAt time.Time) error
	// Close releases backend resources.
	Close() error
}
