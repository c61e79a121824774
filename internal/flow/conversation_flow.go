package flow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ConvergioEdu/StudyFlow/internal/catalog"
	"github.com/ConvergioEdu/StudyFlow/internal/character"
	"github.com/ConvergioEdu/StudyFlow/internal/handoff"
	"github.com/ConvergioEdu/StudyFlow/internal/intent"
	"github.com/ConvergioEdu/StudyFlow/internal/models"
)

// Sentinel errors for flow preconditions.
var (
	ErrNotActive        = errors.New("no active conversation session")
	ErrUnknownCharacter = errors.New("unknown character id")
	ErrNoPendingHandoff = errors.New("no pending handoff")
)

// ConversationFlow owns the conversation session state. All operations are
// serialized through an internal mutex; EndConversationWithSummary and
// LoadFromServer release it across their single network call and re-validate
// the session epoch before applying results.
type ConversationFlow struct {
	mu    sync.Mutex
	state ConversationFlowState
	// epoch increments on StartConversation and Reset; in-flight network
	// results are dropped when the epoch has moved on.
	epoch uint64

	userID   string
	profile  models.StudentProfile
	language string

	gateway    Gateway
	inactivity InactivityMonitor
	safety     SafetyRecorder
}

// New creates an idle conversation flow for one user.
func New(userID string, profile models.StudentProfile, opts ...Option) *ConversationFlow {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	language := cfg.Language
	if language == "" {
		language = profile.Language
	}
	if language == "" {
		language = character.DefaultLanguage
	}
	return &ConversationFlow{
		state:      newIdleState(nil),
		userID:     userID,
		profile:    profile,
		language:   language,
		gateway:    cfg.Gateway,
		inactivity: cfg.Inactivity,
		safety:     cfg.Safety,
	}
}

// StartConversation begins a session with the default coach. An existing
// coach bucket with messages is resumed verbatim; otherwise the session is
// seeded with one synthetic assistant greeting. An empty mode means text.
func (f *ConversationFlow) StartConversation(mode models.FlowMode) error {
	if mode == "" {
		mode = models.FlowModeText
	}
	if mode == models.FlowModeIdle || !models.IsValidFlowMode(mode) {
		return fmt.Errorf("invalid conversation mode %q", mode)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	coach := catalog.DefaultCoach()
	ac := character.NewActiveCharacter(catalog.CoachCharacter(coach), f.profile, f.language)
	bucket := f.state.ConversationsByCharacter[ac.ID]

	now := time.Now()
	f.epoch++
	f.state.Mode = mode
	f.state.IsActive = true
	f.state.SessionID = uuid.NewString()
	f.state.SessionStartedAt = now
	f.state.ActiveCharacter = ac
	f.state.CharacterHistory = []models.CharacterHistoryEntry{{Type: ac.Type, ID: ac.ID, Timestamp: now}}
	f.state.PendingHandoff = nil
	f.state.ShowRatingModal = false
	f.state.SessionSummary = nil

	if bucket != nil && len(bucket.Messages) > 0 {
		f.state.Messages = copyMessages(bucket.Messages)
	} else {
		f.state.Messages = []models.FlowMessage{f.greetingMessage(ac, bucket)}
	}

	if f.inactivity != nil {
		f.inactivity.StartTracking(f.state.SessionID)
	}
	slog.Info("ConversationFlow.StartConversation: session started", "sessionID", f.state.SessionID, "characterID", ac.ID, "mode", mode)
	return nil
}

// AppendUserMessage adds a user message to the active session and resets the
// inactivity countdown.
func (f *ConversationFlow) AppendUserMessage(content string) (models.FlowMessage, error) {
	return f.appendMessage(models.MessageRoleUser, content)
}

// AppendAssistantMessage adds an assistant message attributed to the active
// persona.
func (f *ConversationFlow) AppendAssistantMessage(content string) (models.FlowMessage, error) {
	return f.appendMessage(models.MessageRoleAssistant, content)
}

func (f *ConversationFlow) appendMessage(role models.MessageRole, content string) (models.FlowMessage, error) {
	if content == "" {
		return models.FlowMessage{}, models.ErrEmptyMessageContent
	}
	if len(content) > models.MaxMessageContentLength {
		return models.FlowMessage{}, models.ErrMessageContentTooLong
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if !f.state.IsActive {
		return models.FlowMessage{}, ErrNotActive
	}

	msg := models.FlowMessage{
		ID:        uuid.NewString(),
		Role:      role,
		Content:   content,
		Timestamp: time.Now(),
	}
	if role == models.MessageRoleAssistant {
		msg.CharacterID = f.state.ActiveCharacter.ID
		msg.CharacterType = f.state.ActiveCharacter.Type
	}
	f.state.Messages = append(f.state.Messages, msg)

	if f.inactivity != nil {
		f.inactivity.StartTracking(f.state.SessionID)
	}
	return msg, nil
}

// AnalyzeTurn runs the handoff analyzer over one completed turn. A positive
// verdict is stored as the pending handoff; crisis intents are reported to
// the safety recorder either way.
func (f *ConversationFlow) AnalyzeTurn(message, aiResponse string) handoff.Analysis {
	f.mu.Lock()
	defer f.mu.Unlock()

	analysis := handoff.Analyze(handoff.Context{
		UserMessage: message,
		AIResponse:  aiResponse,
		Current:     f.state.ActiveCharacter,
		Student:     f.profile,
		Language:    f.language,
	})

	if f.safety != nil && intent.Detect(message).Type == models.IntentCrisis {
		f.safety.LogCrisisDetected(f.userID, f.state.ActiveCharacter.ID, message)
	}

	if analysis.ShouldHandoff && analysis.Suggestion != nil && f.state.IsActive {
		suggestion := *analysis.Suggestion
		f.state.PendingHandoff = &suggestion
		if f.safety != nil {
			f.safety.LogHandoffSuggested(f.userID, f.state.ActiveCharacter.ID, suggestion.To.ID)
		}
	}
	return analysis
}

// SuggestHandoff stores a handoff suggestion for the user to accept or
// dismiss.
func (f *ConversationFlow) SuggestHandoff(s handoff.Suggestion) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.state.IsActive {
		return ErrNotActive
	}
	f.state.PendingHandoff = &s
	if f.safety != nil {
		f.safety.LogHandoffSuggested(f.userID, f.state.ActiveCharacter.ID, s.To.ID)
	}
	return nil
}

// DismissHandoff clears the pending handoff. It never touches messages or
// buckets.
func (f *ConversationFlow) DismissHandoff() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.state.PendingHandoff = nil
}

// AcceptHandoff switches to the suggested persona and appends a synthetic
// transition message announcing the handoff.
func (f *ConversationFlow) AcceptHandoff() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if !f.state.IsActive {
		return ErrNotActive
	}
	pending := f.state.PendingHandoff
	if pending == nil {
		return ErrNoPendingHandoff
	}

	fromName := f.state.ActiveCharacter.Name
	to := pending.To

	f.saveCurrentConversation()
	msgs := f.loadConversationMessages(to.ID)
	bucket := f.state.ConversationsByCharacter[to.ID]
	greeting := character.GreetingFor(to, bucket, f.language)

	transition := models.FlowMessage{
		ID:            uuid.NewString(),
		Role:          models.MessageRoleAssistant,
		Content:       handoff.TransitionMessage(fromName, pending.Reason, to, greeting),
		Timestamp:     time.Now(),
		CharacterID:   to.ID,
		CharacterType: to.Type,
	}
	f.state.Messages = append(msgs, transition)
	f.activateCharacter(to)
	slog.Info("ConversationFlow.AcceptHandoff: handoff accepted", "from", fromName, "toCharacterID", to.ID)
	return nil
}

// SwitchCharacter changes the active persona by catalog id, flushing the
// outgoing persona's bucket first and restoring the incoming persona's
// messages.
func (f *ConversationFlow) SwitchCharacter(characterID string) error {
	ch, ok := catalog.CharacterByID(characterID)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownCharacter, characterID)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if !f.state.IsActive {
		return ErrNotActive
	}
	if f.state.ActiveCharacter.ID == characterID {
		return nil
	}

	f.switchToLocked(character.NewActiveCharacter(ch, f.profile, f.language))
	return nil
}

// RouteToCharacter routes a message to the best persona, switching when the
// routing decision differs from the active persona.
func (f *ConversationFlow) RouteToCharacter(message string) (handoff.RoutingResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if !f.state.IsActive {
		return handoff.RoutingResult{}, ErrNotActive
	}

	result := handoff.RouteToCharacter(handoff.RoutingContext{
		Message:          message,
		Student:          f.profile,
		CurrentType:      f.state.ActiveCharacter.Type,
		CurrentID:        f.state.ActiveCharacter.ID,
		PreferContinuity: true,
	})
	if result.Character.IsZero() || result.Character.ID() == f.state.ActiveCharacter.ID {
		return result, nil
	}

	f.switchToLocked(character.NewActiveCharacter(result.Character, f.profile, f.language))
	return result, nil
}

// switchToLocked performs the save/load/activate sequence. Caller holds the
// lock.
func (f *ConversationFlow) switchToLocked(to character.ActiveCharacter) {
	f.saveCurrentConversation()
	msgs := f.loadConversationMessages(to.ID)
	if len(msgs) == 0 {
		bucket := f.state.ConversationsByCharacter[to.ID]
		msgs = []models.FlowMessage{f.greetingMessage(to, bucket)}
	}
	f.state.Messages = msgs
	f.activateCharacter(to)
	slog.Debug("ConversationFlow.switchTo: character switched", "characterID", to.ID, "messages", len(msgs))
}

func (f *ConversationFlow) activateCharacter(to character.ActiveCharacter) {
	f.state.ActiveCharacter = to
	f.state.CharacterHistory = append(f.state.CharacterHistory, models.CharacterHistoryEntry{
		Type:      to.Type,
		ID:        to.ID,
		Timestamp: time.Now(),
	})
	f.state.PendingHandoff = nil
}

// EndConversation flushes the current bucket and returns to idle. Buckets
// survive so a later session can resume them.
func (f *ConversationFlow) EndConversation() {
	f.mu.Lock()
	defer f.mu.Unlock()

	if !f.state.IsActive {
		return
	}
	f.saveCurrentConversation()
	if f.inactivity != nil {
		f.inactivity.StopTracking(f.state.SessionID)
	}
	slog.Info("ConversationFlow.EndConversation: session ended", "sessionID", f.state.SessionID)
	f.state = newIdleState(f.state.ConversationsByCharacter)
}

// EndConversationWithSummary ends the session and asks the gateway for a
// session summary. The summary call is best-effort: on failure the session
// still ends, the bucket is still flushed, and no rating modal is shown.
// Returns the stored summary, or nil when none was produced.
func (f *ConversationFlow) EndConversationWithSummary(ctx context.Context, reason string) *models.SessionSummary {
	f.mu.Lock()
	if !f.state.IsActive {
		f.mu.Unlock()
		return nil
	}

	f.saveCurrentConversation()
	if f.inactivity != nil {
		f.inactivity.StopTracking(f.state.SessionID)
	}

	epoch := f.epoch
	duration := int(time.Since(f.state.SessionStartedAt).Minutes())
	conversationID := ""
	if bucket := f.state.ConversationsByCharacter[f.state.ActiveCharacter.ID]; bucket != nil {
		conversationID = bucket.ConversationID
	}
	f.state = newIdleState(f.state.ConversationsByCharacter)
	f.mu.Unlock()

	if f.gateway == nil || conversationID == "" {
		return nil
	}

	result, err := f.gateway.EndConversation(ctx, conversationID, f.userID, reason)
	if err != nil {
		slog.Warn("ConversationFlow.EndConversationWithSummary: summary generation failed", "error", err, "conversationID", conversationID)
		return nil
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.epoch != epoch {
		// A new session or reset happened while the call was in flight.
		slog.Debug("ConversationFlow.EndConversationWithSummary: dropping stale summary", "conversationID", conversationID)
		return nil
	}
	summary := &models.SessionSummary{
		Topics:          result.Topics,
		Summary:         result.Summary,
		DurationMinutes: duration,
	}
	f.state.SessionSummary = summary
	f.state.ShowRatingModal = true
	return summary
}

// Reset wipes everything including buckets. Used on logout.
func (f *ConversationFlow) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.inactivity != nil {
		f.inactivity.StopAll()
	}
	f.epoch++
	f.state = newIdleState(nil)
	slog.Info("ConversationFlow.Reset: state cleared")
}

// LoadFromServer bootstraps per-persona buckets from server-side summaries
// so re-entered personas can greet contextually. On failure the buckets are
// left unchanged and the flow remains usable.
func (f *ConversationFlow) LoadFromServer(ctx context.Context) error {
	if f.gateway == nil {
		return nil
	}

	f.mu.Lock()
	epoch := f.epoch
	f.mu.Unlock()

	summaries, err := f.gateway.ListSummaries(ctx, f.userID)
	if err != nil {
		slog.Warn("ConversationFlow.LoadFromServer: summary load failed", "error", err, "userID", f.userID)
		return fmt.Errorf("failed to load summaries: %w", err)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.epoch != epoch {
		slog.Debug("ConversationFlow.LoadFromServer: dropping stale summaries")
		return nil
	}

	buckets := copyBuckets(f.state.ConversationsByCharacter)
	for _, summary := range summaries {
		characterID := summary.MaestroID
		if characterID == "" {
			continue
		}
		if _, exists := buckets[characterID]; exists {
			// Live buckets are never overwritten by the bootstrap load.
			continue
		}
		characterType, name, ok := resolveSummaryCharacter(characterID)
		if !ok {
			slog.Debug("ConversationFlow.LoadFromServer: skipping summary for unknown character", "characterID", characterID)
			continue
		}
		bucket := &models.CharacterConversation{
			CharacterID:      characterID,
			CharacterType:    characterType,
			CharacterName:    name,
			Messages:         []models.FlowMessage{},
			ConversationID:   summary.ID,
			PreviousSummary:  summary.Summary,
			PreviousKeyFacts: summary.KeyFacts,
			PreviousTopics:   summary.Topics,
		}
		if summary.LastMessageAt != nil {
			bucket.LastMessageAt = *summary.LastMessageAt
		}
		buckets[characterID] = bucket
	}
	f.state.ConversationsByCharacter = buckets
	slog.Debug("ConversationFlow.LoadFromServer: buckets bootstrapped", "count", len(summaries))
	return nil
}

// resolveSummaryCharacter infers the persona type behind a stored character
// id: coach- and buddy- prefixes by convention, catalog lookups otherwise,
// and a maestro lookup as the final step.
func resolveSummaryCharacter(characterID string) (models.CharacterType, string, bool) {
	switch {
	case strings.HasPrefix(characterID, "coach-"):
		name := ""
		if c := catalog.CoachByID(strings.TrimPrefix(characterID, "coach-")); c != nil {
			name = c.Name
		}
		return models.CharacterTypeCoach, name, true
	case strings.HasPrefix(characterID, "buddy-"):
		name := ""
		if b := catalog.BuddyByID(strings.TrimPrefix(characterID, "buddy-")); b != nil {
			name = b.Name
		}
		return models.CharacterTypeBuddy, name, true
	}
	if c := catalog.CoachByID(characterID); c != nil {
		return models.CharacterTypeCoach, c.Name, true
	}
	if b := catalog.BuddyByID(characterID); b != nil {
		return models.CharacterTypeBuddy, b.Name, true
	}
	if m := catalog.MaestroByID(characterID); m != nil {
		return models.CharacterTypeMaestro, m.Name, true
	}
	return "", "", false
}

// saveCurrentConversation flushes the live message list into the active
// persona's bucket, preserving its conversation id, and persists the flush
// through the gateway best-effort. Idempotent: a repeat call with no new
// messages produces an identical bucket. Caller holds the lock.
func (f *ConversationFlow) saveCurrentConversation() {
	ac := f.state.ActiveCharacter
	if ac.ID == "" {
		return
	}

	existing := f.state.ConversationsByCharacter[ac.ID]
	bucket := &models.CharacterConversation{
		CharacterID:   ac.ID,
		CharacterType: ac.Type,
		CharacterName: ac.Name,
		Messages:      copyMessages(f.state.Messages),
	}
	if existing != nil {
		bucket.ConversationID = existing.ConversationID
		bucket.PreviousSummary = existing.PreviousSummary
		bucket.PreviousKeyFacts = existing.PreviousKeyFacts
		bucket.PreviousTopics = existing.PreviousTopics
		bucket.LastMessageAt = existing.LastMessageAt
	}
	if n := len(bucket.Messages); n > 0 {
		last := bucket.Messages[n-1].Timestamp
		if last.After(bucket.LastMessageAt) {
			bucket.LastMessageAt = last
		}
	}

	buckets := copyBuckets(f.state.ConversationsByCharacter)
	buckets[ac.ID] = bucket
	f.state.ConversationsByCharacter = buckets

	f.persistBucket(bucket)
}

// persistBucket writes the bucket through the gateway. Failures are logged
// and swallowed; persistence is not required for the live session.
func (f *ConversationFlow) persistBucket(bucket *models.CharacterConversation) {
	if f.gateway == nil || len(bucket.Messages) == 0 {
		return
	}
	ctx := context.Background()

	if bucket.ConversationID == "" {
		id, err := f.gateway.CreateConversation(ctx, models.CreateConversationRequest{
			UserID:        f.userID,
			CharacterID:   bucket.CharacterID,
			CharacterType: bucket.CharacterType,
		})
		if err != nil {
			slog.Warn("ConversationFlow.persistBucket: failed to create conversation", "error", err, "characterID", bucket.CharacterID)
			return
		}
		bucket.ConversationID = id
	}

	if err := f.gateway.SaveMessages(ctx, bucket.ConversationID, bucket.Messages); err != nil {
		slog.Warn("ConversationFlow.persistBucket: failed to save messages", "error", err, "conversationID", bucket.ConversationID)
	}
}

// loadConversationMessages returns a copy of a persona's bucket messages.
// Unknown ids yield an empty list, never an error.
func (f *ConversationFlow) loadConversationMessages(characterID string) []models.FlowMessage {
	bucket := f.state.ConversationsByCharacter[characterID]
	if bucket == nil {
		return nil
	}
	return copyMessages(bucket.Messages)
}

func (f *ConversationFlow) greetingMessage(ac character.ActiveCharacter, bucket *models.CharacterConversation) models.FlowMessage {
	return models.FlowMessage{
		ID:            uuid.NewString(),
		Role:          models.MessageRoleAssistant,
		Content:       character.GreetingFor(ac, bucket, f.language),
		Timestamp:     time.Now(),
		CharacterID:   ac.ID,
		CharacterType: ac.Type,
	}
}

func copyMessages(msgs []models.FlowMessage) []models.FlowMessage {
	if msgs == nil {
		return nil
	}
	out := make([]models.FlowMessage, len(msgs))
	copy(out, msgs)
	return out
}

func copyBuckets(buckets map[string]*models.CharacterConversation) map[string]*models.CharacterConversation {
	out := make(map[string]*models.CharacterConversation, len(buckets))
	for id, bucket := range buckets {
		out[id] = bucket
	}
	return out
}
