// Package models defines conversation history structures for StudyFlow sessions.
package models

import "time"

// MessageRole identifies who authored a flow message.
type MessageRole string

const (
	// MessageRoleUser is a message typed by the student.
	MessageRoleUser MessageRole = "user"
	// MessageRoleAssistant is a message produced by the active persona.
	MessageRoleAssistant MessageRole = "assistant"
	// MessageRoleSystem is a synthetic message such as a handoff transition.
	MessageRoleSystem MessageRole = "system"
)

// IsValidMessageRole checks if the given message role is supported.
func IsValidMessageRole(r MessageRole) bool {
	switch r {
	case MessageRoleUser, MessageRoleAssistant, MessageRoleSystem:
		return true
	default:
		return false
	}
}

// FlowMessage is one message in the live conversation. Immutable once created;
// array-append order is chronological order.
type FlowMessage struct {
	ID            string        `json:"id"`
	Role          MessageRole   `json:"role"`
	Content       string        `json:"content"`
	Timestamp     time.Time     `json:"timestamp"`
	CharacterID   string        `json:"character_id,omitempty"`
	CharacterType CharacterType `json:"character_type,omitempty"`
}

// CharacterConversation is the per-persona message bucket retained across
// switches within a client session.
//
// ConversationID, once assigned by the persistence gateway, is never
// overwritten by a later save: it is the durable foreign key. The Previous*
// fields are populated only by the bootstrap load from server summaries,
// never by live session activity.
type CharacterConversation struct {
	CharacterID      string        `json:"character_id"`
	CharacterType    CharacterType `json:"character_type"`
	CharacterName    string        `json:"character_name"`
	Messages         []FlowMessage `json:"messages"`
	LastMessageAt    time.Time     `json:"last_message_at"`
	ConversationID   string        `json:"conversation_id,omitempty"`
	PreviousSummary  string        `json:"previous_summary,omitempty"`
	PreviousKeyFacts []string      `json:"previous_key_facts,omitempty"`
	PreviousTopics   []string      `json:"previous_topics,omitempty"`
}

// Clone returns a deep copy of the bucket. Buckets are copy-on-write: the
// flow replaces bucket values instead of mutating them through shared
// references.
func (c CharacterConversation) Clone() CharacterConversation {
	out := c
	out.Messages = append([]FlowMessage(nil), c.Messages...)
	out.PreviousKeyFacts = append([]string(nil), c.PreviousKeyFacts...)
	out.PreviousTopics = append([]string(nil), c.PreviousTopics...)
	return out
}

// ConversationSummary is the lightweight per-conversation record returned by
// the persistence gateway's bootstrap listing. It carries no message history.
type ConversationSummary struct {
	ID            string     `json:"id"`
	MaestroID     string     `json:"maestro_id"`
	Title         string     `json:"title,omitempty"`
	Summary       string     `json:"summary,omitempty"`
	KeyFacts      []string   `json:"key_facts,omitempty"`
	Topics        []string   `json:"topics,omitempty"`
	LastMessageAt *time.Time `json:"last_message_at,omitempty"`
}
