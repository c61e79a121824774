// Package gateway implements the persistence gateway consumed by the
// conversation flow: one backend over a local store plus a GenAI summarizer,
// and one over the REST API for split deployments. Callers treat gateway
// failures as soft; the flow keeps working from memory.
package gateway

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ConvergioEdu/StudyFlow/internal/models"
	"github.com/ConvergioEdu/StudyFlow/internal/store"
)

// Summarizer produces a summary for a conversation transcript.
type Summarizer interface {
	SummarizeConversation(ctx context.Context, transcript []models.FlowMessage) (models.SummaryResult, error)
}

// StoreGateway persists conversations through a store.Store directly.
// Used by single-process deployments where the flow and the store live in
// the same binary.
type StoreGateway struct {
	store      store.Store
	summarizer Summarizer
}

// NewStoreGateway creates a gateway over a store. The summarizer may be nil;
// ending a conversation then skips summary generation.
func NewStoreGateway(s store.Store, summarizer Summarizer) *StoreGateway {
	return &StoreGateway{store: s, summarizer: summarizer}
}

// CreateConversation creates a conversation record and returns its id.
func (g *StoreGateway) CreateConversation(ctx context.Context, req models.CreateConversationRequest) (string, error) {
	if err := req.Validate(); err != nil {
		return "", err
	}
	now := time.Now()
	conv := store.Conversation{
		ID:            uuid.NewString(),
		UserID:        req.UserID,
		CharacterID:   req.CharacterID,
		CharacterType: req.CharacterType,
		Title:         req.Title,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := g.store.CreateConversation(conv); err != nil {
		return "", fmt.Errorf("failed to create conversation: %w", err)
	}
	slog.Debug("StoreGateway.CreateConversation: created", "conversationID", conv.ID, "characterID", conv.CharacterID)
	return conv.ID, nil
}

// SaveMessages flushes a conversation's full message history.
func (g *StoreGateway) SaveMessages(ctx context.Context, conversationID string, msgs []models.FlowMessage) error {
	if conversationID == "" {
		return models.ErrEmptyConversationID
	}
	if err := g.store.ReplaceMessages(conversationID, msgs); err != nil {
		return fmt.Errorf("failed to save messages: %w", err)
	}
	return nil
}

// LoadMessages returns a conversation's message history in order.
func (g *StoreGateway) LoadMessages(ctx context.Context, conversationID string) ([]models.FlowMessage, error) {
	if conversationID == "" {
		return nil, models.ErrEmptyConversationID
	}
	msgs, err := g.store.GetMessages(conversationID)
	if err != nil {
		return nil, fmt.Errorf("failed to load messages: %w", err)
	}
	return msgs, nil
}

// ListSummaries returns the user's conversation summaries, most recent first.
func (g *StoreGateway) ListSummaries(ctx context.Context, userID string) ([]models.ConversationSummary, error) {
	if userID == "" {
		return nil, models.ErrEmptyUserID
	}
	summaries, err := g.store.ListSummaries(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list summaries: %w", err)
	}
	return summaries, nil
}

// EndConversation marks the conversation ended and generates its summary.
// The conversation is ended even when summarization fails; the summary error
// is returned so the caller can degrade gracefully.
func (g *StoreGateway) EndConversation(ctx context.Context, conversationID, userID, reason string) (models.SummaryResult, error) {
	if conversationID == "" {
		return models.SummaryResult{}, models.ErrEmptyConversationID
	}

	msgs, err := g.store.GetMessages(conversationID)
	if err != nil {
		return models.SummaryResult{}, fmt.Errorf("failed to load messages for summary: %w", err)
	}

	now := time.Now()
	if err := g.store.EndConversation(conversationID, now); err != nil {
		return models.SummaryResult{}, fmt.Errorf("failed to end conversation: %w", err)
	}
	slog.Debug("StoreGateway.EndConversation: conversation ended", "conversationID", conversationID, "reason", reason)

	if g.summarizer == nil || len(msgs) == 0 {
		return models.SummaryResult{}, nil
	}

	result, err := g.summarizer.SummarizeConversation(ctx, msgs)
	if err != nil {
		slog.Warn("StoreGateway.EndConversation: summary generation failed", "error", err, "conversationID", conversationID)
		return models.SummaryResult{}, fmt.Errorf("failed to summarize conversation: %w", err)
	}

	conv, err := g.store.GetConversation(conversationID)
	if err != nil || conv == nil {
		slog.Warn("StoreGateway.EndConversation: conversation lookup failed, summary not persisted", "conversationID", conversationID)
		return result, nil
	}
	summary := models.ConversationSummary{
		ID:            conversationID,
		MaestroID:     conv.CharacterID,
		Title:         summaryTitle(conv.Title, result.Topics),
		Summary:       result.Summary,
		Topics:        result.Topics,
		LastMessageAt: &now,
	}
	if err := g.store.SaveSummary(conv.UserID, summary); err != nil {
		// Summary generation succeeded; persistence is best effort.
		slog.Warn("StoreGateway.EndConversation: failed to persist summary", "error", err, "conversationID", conversationID)
	}
	return result, nil
}

func summaryTitle(existing string, topics []string) string {
	if existing != "" {
		return existing
	}
	if len(topics) > 0 {
		return strings.Join(topics, ", ")
	}
	return ""
}
