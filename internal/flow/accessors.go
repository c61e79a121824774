package flow

import (
	"github.com/ConvergioEdu/StudyFlow/internal/character"
	"github.com/ConvergioEdu/StudyFlow/internal/handoff"
	"github.com/ConvergioEdu/StudyFlow/internal/models"
)

// Read accessors. All return copies; callers never observe or mutate the
// flow's internal state directly.

// Mode returns the current interaction mode.
func (f *ConversationFlow) Mode() models.FlowMode {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state.Mode
}

// IsActive reports whether a session is running.
func (f *ConversationFlow) IsActive() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state.IsActive
}

// SessionID returns the current session id, or "" when idle.
func (f *ConversationFlow) SessionID() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state.SessionID
}

// ActiveCharacter returns the active persona view.
func (f *ConversationFlow) ActiveCharacter() character.ActiveCharacter {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state.ActiveCharacter
}

// Messages returns a copy of the live message list.
func (f *ConversationFlow) Messages() []models.FlowMessage {
	f.mu.Lock()
	defer f.mu.Unlock()
	return copyMessages(f.state.Messages)
}

// PendingHandoff returns a copy of the pending handoff suggestion, or nil.
func (f *ConversationFlow) PendingHandoff() *handoff.Suggestion {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state.PendingHandoff == nil {
		return nil
	}
	s := *f.state.PendingHandoff
	return &s
}

// CharacterHistory returns a copy of the persona activations this session.
func (f *ConversationFlow) CharacterHistory() []models.CharacterHistoryEntry {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]models.CharacterHistoryEntry, len(f.state.CharacterHistory))
	copy(out, f.state.CharacterHistory)
	return out
}

// SessionSummary returns the end-of-session summary, or nil.
func (f *ConversationFlow) SessionSummary() *models.SessionSummary {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state.SessionSummary == nil {
		return nil
	}
	s := *f.state.SessionSummary
	return &s
}

// ShowRatingModal reports whether the post-session rating modal should show.
func (f *ConversationFlow) ShowRatingModal() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state.ShowRatingModal
}

// ConversationFor returns a deep copy of a persona's bucket, or nil when the
// persona was never visited.
func (f *ConversationFlow) ConversationFor(characterID string) *models.CharacterConversation {
	f.mu.Lock()
	defer f.mu.Unlock()
	bucket := f.state.ConversationsByCharacter[characterID]
	if bucket == nil {
		return nil
	}
	clone := bucket.Clone()
	return &clone
}
