// Package models defines session state structures for StudyFlow conversations.
package models

// FlowMode is the interaction mode of the conversation session.
type FlowMode string

const (
	// FlowModeIdle means no session is active.
	FlowModeIdle FlowMode = "idle"
	// FlowModeText means an active text conversation.
	FlowModeText FlowMode = "text"
	// FlowModeVoice means an active voice conversation.
	FlowModeVoice FlowMode = "voice"
)

// IsValidFlowMode checks if the given flow mode is supported.
func IsValidFlowMode(m FlowMode) bool {
	switch m {
	case FlowModeIdle, FlowModeText, FlowModeVoice:
		return true
	default:
		return false
	}
}
