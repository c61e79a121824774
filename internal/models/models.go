// Package models defines the core data structures for StudyFlow.
//
// It includes persona, intent and conversation types shared across modules.
package models

import (
	"errors"
	"time"
)

// CharacterType identifies one of the three persona kinds.
type CharacterType string

const (
	// CharacterTypeMaestro is a subject-matter expert persona.
	CharacterTypeMaestro CharacterType = "maestro"
	// CharacterTypeCoach is the generalist learning coach persona.
	CharacterTypeCoach CharacterType = "coach"
	// CharacterTypeBuddy is a peer-style companion persona.
	CharacterTypeBuddy CharacterType = "buddy"
)

// IsValidCharacterType checks if the given character type is supported.
func IsValidCharacterType(ct CharacterType) bool {
	switch ct {
	case CharacterTypeMaestro, CharacterTypeCoach, CharacterTypeBuddy:
		return true
	default:
		return false
	}
}

// IntentCategory classifies the purpose of a single user utterance.
type IntentCategory string

const (
	// IntentCrisis indicates acute emotional distress signals.
	IntentCrisis IntentCategory = "crisis"
	// IntentEmotionalSupport indicates the student needs emotional support.
	IntentEmotionalSupport IntentCategory = "emotional_support"
	// IntentMethodHelp indicates a study-method or organization request.
	IntentMethodHelp IntentCategory = "method_help"
	// IntentAcademicHelp indicates a subject-specific academic request.
	IntentAcademicHelp IntentCategory = "academic_help"
	// IntentToolRequest indicates a request to create a study tool.
	IntentToolRequest IntentCategory = "tool_request"
	// IntentGeneralChat is the default when nothing else matches.
	IntentGeneralChat IntentCategory = "general_chat"
)

// Subject identifies a school subject handled by a maestro.
type Subject string

const (
	SubjectMathematics     Subject = "mathematics"
	SubjectPhysics         Subject = "physics"
	SubjectChemistry       Subject = "chemistry"
	SubjectBiology         Subject = "biology"
	SubjectHistory         Subject = "history"
	SubjectGeography       Subject = "geography"
	SubjectItalian         Subject = "italian"
	SubjectEnglish         Subject = "english"
	SubjectArt             Subject = "art"
	SubjectMusic           Subject = "music"
	SubjectEconomics       Subject = "economics"
	SubjectComputerScience Subject = "computerScience"
	SubjectPhilosophy      Subject = "philosophy"
)

// ToolType identifies the study tool a student asked for.
type ToolType string

const (
	ToolTypeMindmap   ToolType = "mindmap"
	ToolTypeQuiz      ToolType = "quiz"
	ToolTypeFlashcard ToolType = "flashcard"
	ToolTypeDemo      ToolType = "demo"
)

// DetectedIntent is the result of classifying one utterance.
// It is ephemeral: recomputed every turn and never persisted.
type DetectedIntent struct {
	Type       IntentCategory `json:"type"`
	Confidence float64        `json:"confidence"`
	Subject    Subject        `json:"subject,omitempty"`
	ToolType   ToolType       `json:"tool_type,omitempty"`
}

// LearningDifference identifies a learning difference in a student profile.
type LearningDifference string

const (
	LearningDifferenceDyslexia    LearningDifference = "dyslexia"
	LearningDifferenceDyscalculia LearningDifference = "dyscalculia"
	LearningDifferenceDysgraphia  LearningDifference = "dysgraphia"
	LearningDifferenceADHD        LearningDifference = "adhd"
	LearningDifferenceAutism      LearningDifference = "autism"
)

// StudentProfile carries the student state that personas are parametric over.
type StudentProfile struct {
	Name                string               `json:"name"`
	Age                 int                  `json:"age"`
	Language            string               `json:"language,omitempty"` // BCP-47-ish short code, defaults to "it"
	PreferredCoach      string               `json:"preferred_coach,omitempty"`
	PreferredBuddy      string               `json:"preferred_buddy,omitempty"`
	LearningDifferences []LearningDifference `json:"learning_differences,omitempty"`
}

// Validation constants for input validation
const (
	// MaxMessageContentLength defines the maximum allowed length for message content
	MaxMessageContentLength = 8192
)

// Error variables for better error handling and testability
var (
	ErrEmptyCharacterID      = errors.New("character id cannot be empty")
	ErrInvalidCharacterType  = errors.New("invalid character type")
	ErrEmptyMessageContent   = errors.New("message content cannot be empty")
	ErrMessageContentTooLong = errors.New("message content exceeds maximum length")
	ErrInvalidMessageRole    = errors.New("invalid message role")
	ErrEmptyConversationID   = errors.New("conversation id cannot be empty")
	ErrEmptyUserID           = errors.New("user id cannot be empty")
)

// APIStatus represents the status of an API response.
type APIStatus string

const (
	// APIStatusOK indicates an API request completed successfully.
	APIStatusOK APIStatus = "ok"
	// APIStatusError indicates an API request failed with an error.
	APIStatusError APIStatus = "error"
	// APIStatusRecorded indicates data was successfully recorded via API.
	APIStatusRecorded APIStatus = "recorded"
)

// APIResponse represents a standard API response with a status and optional data.
type APIResponse struct {
	Status  string      `json:"status"`            // status of the API response
	Message string      `json:"message,omitempty"` // optional message for error responses or additional info
	Result  interface{} `json:"result,omitempty"`  // optional result data for successful responses
}

// APIResponseBuilder provides a fluent interface for building API responses.
type APIResponseBuilder struct {
	response APIResponse
}

// NewAPIResponseBuilder creates a new APIResponseBuilder instance.
func NewAPIResponseBuilder() *APIResponseBuilder {
	return &APIResponseBuilder{
		response: APIResponse{},
	}
}

// WithStatus sets the status of the API response.
func (b *APIResponseBuilder) WithStatus(status APIStatus) *APIResponseBuilder {
	b.response.Status = string(status)
	return b
}

// WithMessage sets the message of the API response.
func (b *APIResponseBuilder) WithMessage(message string) *APIResponseBuilder {
	b.response.Message = message
	return b
}

// WithResult sets the result data of the API response.
func (b *APIResponseBuilder) WithResult(result interface{}) *APIResponseBuilder {
	b.response.Result = result
	return b
}

// Build constructs and returns the final APIResponse.
func (b *APIResponseBuilder) Build() APIResponse {
	return b.response
}

// Success creates a successful API response with optional result data.
func Success(result interface{}) APIResponse {
	return NewAPIResponseBuilder().
		WithStatus(APIStatusOK).
		WithResult(result).
		Build()
}

// SuccessWithMessage creates a successful API response with a message and optional result data.
func SuccessWithMessage(message string, result interface{}) APIResponse {
	return NewAPIResponseBuilder().
		WithStatus(APIStatusOK).
		WithMessage(message).
		WithResult(result).
		Build()
}

// Error creates an error API response with a message.
func Error(message string) APIResponse {
	return NewAPIResponseBuilder().
		WithStatus(APIStatusError).
		WithMessage(message).
		Build()
}

// Recorded creates a recorded API response.
func Recorded() APIResponse {
	return NewAPIResponseBuilder().
		WithStatus(APIStatusRecorded).
		Build()
}

// RecordedWithMessage creates a recorded API response with a message.
func RecordedWithMessage(message string) APIResponse {
	return NewAPIResponseBuilder().
		WithStatus(APIStatusRecorded).
		WithMessage(message).
		Build()
}

// CreateConversationRequest represents the payload for creating a server-side conversation.
type CreateConversationRequest struct {
	UserID        string        `json:"user_id" validate:"required"`
	CharacterID   string        `json:"character_id" validate:"required"`
	CharacterType CharacterType `json:"character_type" validate:"required"`
	Title         string        `json:"title,omitempty"`
}

// Validate validates a CreateConversationRequest.
func (r *CreateConversationRequest) Validate() error {
	if r.UserID == "" {
		return ErrEmptyUserID
	}
	if r.CharacterID == "" {
		return ErrEmptyCharacterID
	}
	if !IsValidCharacterType(r.CharacterType) {
		return ErrInvalidCharacterType
	}
	return nil
}

// AppendMessageRequest represents the payload for appending a message to a conversation.
type AppendMessageRequest struct {
	Message FlowMessage `json:"message" validate:"required"`
}

// Validate validates an AppendMessageRequest.
func (r *AppendMessageRequest) Validate() error {
	if r.Message.Content == "" {
		return ErrEmptyMessageContent
	}
	if len(r.Message.Content) > MaxMessageContentLength {
		return ErrMessageContentTooLong
	}
	if !IsValidMessageRole(r.Message.Role) {
		return ErrInvalidMessageRole
	}
	return nil
}

// EndConversationRequest represents the payload for ending and summarizing a conversation.
type EndConversationRequest struct {
	UserID string `json:"user_id" validate:"required"`
	Reason string `json:"reason,omitempty"`
}

// Validate validates an EndConversationRequest.
func (r *EndConversationRequest) Validate() error {
	if r.UserID == "" {
		return ErrEmptyUserID
	}
	return nil
}

// SummaryResult is the outcome of server-side conversation summarization.
type SummaryResult struct {
	Topics  []string `json:"topics"`
	Summary string   `json:"summary"`
}

// SessionSummary is the end-of-session summary shown to the student.
type SessionSummary struct {
	Topics          []string `json:"topics"`
	Summary         string   `json:"summary"`
	DurationMinutes int      `json:"duration_minutes"`
}

// CharacterHistoryEntry records one persona activation within a session.
type CharacterHistoryEntry struct {
	Type      CharacterType `json:"type"`
	ID        string        `json:"id"`
	Timestamp time.Time     `json:"timestamp"`
}
