// Package flow implements the conversation flow state machine: session
// lifecycle, the active persona, per-persona message buckets, and handoff
// state. It is the single writer of ConversationFlowState; collaborators
// receive read-only context and return values.
package flow

import (
	"context"
	"time"

	"github.com/ConvergioEdu/StudyFlow/internal/character"
	"github.com/ConvergioEdu/StudyFlow/internal/handoff"
	"github.com/ConvergioEdu/StudyFlow/internal/models"
)

// Gateway is the persistence surface the flow consumes. Implementations are
// best-effort: the flow logs failures and keeps the live session working
// from memory.
type Gateway interface {
	// CreateConversation creates a server-side conversation and returns its id.
	CreateConversation(ctx context.Context, req models.CreateConversationRequest) (string, error)
	// SaveMessages flushes a conversation's full message history.
	SaveMessages(ctx context.Context, conversationID string, msgs []models.FlowMessage) error
	// LoadMessages returns a conversation's message history in order.
	LoadMessages(ctx context.Context, conversationID string) ([]models.FlowMessage, error)
	// ListSummaries returns the user's conversation summaries.
	ListSummaries(ctx context.Context, userID string) ([]models.ConversationSummary, error)
	// EndConversation ends and summarizes a conversation server-side. The
	// reason records why the session ended (user action, inactivity, logout).
	EndConversation(ctx context.Context, conversationID, userID, reason string) (models.SummaryResult, error)
}

// InactivityMonitor tracks idle sessions. Calls are fire-and-forget.
type InactivityMonitor interface {
	StartTracking(sessionID string)
	StopTracking(sessionID string)
	StopAll()
}

// SafetyRecorder receives safety-relevant events from the turn loop.
type SafetyRecorder interface {
	LogCrisisDetected(userID, characterID, detail string)
	LogHandoffSuggested(userID, fromCharacterID, toCharacterID string)
}

// ConversationFlowState is the session aggregate owned by ConversationFlow.
type ConversationFlowState struct {
	Mode                     models.FlowMode
	IsActive                 bool
	SessionID                string
	SessionStartedAt         time.Time
	ActiveCharacter          character.ActiveCharacter
	Messages                 []models.FlowMessage
	ConversationsByCharacter map[string]*models.CharacterConversation
	CharacterHistory         []models.CharacterHistoryEntry
	PendingHandoff           *handoff.Suggestion
	ShowRatingModal          bool
	SessionSummary           *models.SessionSummary
}

func newIdleState(buckets map[string]*models.CharacterConversation) ConversationFlowState {
	if buckets == nil {
		buckets = make(map[string]*models.CharacterConversation)
	}
	return ConversationFlowState{
		Mode:                     models.FlowModeIdle,
		ConversationsByCharacter: buckets,
	}
}

// Opts holds configuration for the conversation flow.
type Opts struct {
	Gateway    Gateway
	Inactivity InactivityMonitor
	Safety     SafetyRecorder
	Language   string
}

// Option configures the conversation flow.
type Option func(*Opts)

// WithGateway sets the persistence gateway.
func WithGateway(g Gateway) Option {
	return func(o *Opts) { o.Gateway = g }
}

// WithInactivityMonitor sets the inactivity monitor.
func WithInactivityMonitor(m InactivityMonitor) Option {
	return func(o *Opts) { o.Inactivity = m }
}

// WithSafetyRecorder sets the safety event recorder.
func WithSafetyRecorder(s SafetyRecorder) Option {
	return func(o *Opts) { o.Safety = s }
}

// WithLanguage sets the session locale. Defaults to Italian.
func WithLanguage(language string) Option {
	return func(o *Opts) { o.Language = language }
}
