// Package character builds the uniform ActiveCharacter view over the
// heterogeneous persona records in the catalog.
//
// The factory normalizes the three record kinds: buddies compute greeting and
// system prompt from the student profile and language, coaches copy static
// text, and maestri use static text but a shared voice configuration. It
// assumes the caller has already resolved the record via a catalog lookup and
// therefore never fails.
package character

import (
	"github.com/ConvergioEdu/StudyFlow/internal/catalog"
	"github.com/ConvergioEdu/StudyFlow/internal/models"
)

// DefaultLanguage is the locale used when the profile does not carry one.
const DefaultLanguage = "it"

// Maestro records carry no voice metadata; every maestro speaks with the
// shared voice configuration below. Coaches and buddies keep their own.
const (
	DefaultMaestroVoice = "sage"

	DefaultMaestroVoiceInstructions = `You are an educational character teaching your subject.
Speak clearly and engagingly, adapting your pace to the student's needs.
Be encouraging and patient. Use examples to illustrate concepts.`
)

// Subtitles shown under the persona name in the UI.
const (
	subtitleCoach = "Learning Coach"
	subtitleBuddy = "Peer Support"
)

// ActiveCharacter is the uniform view of whichever persona is currently
// active. Built fresh each time a persona becomes active and never mutated
// in place: a switch always produces a new value.
type ActiveCharacter struct {
	Type              models.CharacterType `json:"type"`
	ID                string               `json:"id"`
	Name              string               `json:"name"`
	Greeting          string               `json:"greeting"`
	SystemPrompt      string               `json:"system_prompt"`
	Color             string               `json:"color"`
	Voice             string               `json:"voice"`
	VoiceInstructions string               `json:"voice_instructions"`
	Subtitle          string               `json:"subtitle,omitempty"`
	Character         catalog.Character    `json:"-"`
}

// NewActiveCharacter builds an ActiveCharacter from a catalog record.
// Language defaults to Italian when empty.
func NewActiveCharacter(ch catalog.Character, student models.StudentProfile, language string) ActiveCharacter {
	if language == "" {
		language = DefaultLanguage
	}

	switch ch.Type {
	case models.CharacterTypeBuddy:
		b := ch.Buddy
		return ActiveCharacter{
			Type:              models.CharacterTypeBuddy,
			ID:                b.ID,
			Name:              b.Name,
			Greeting:          b.Greeting(student, language),
			SystemPrompt:      b.SystemPrompt(student, language),
			Color:             b.Color,
			Voice:             b.Voice,
			VoiceInstructions: b.VoiceInstructions,
			Subtitle:          subtitleBuddy,
			Character:         ch,
		}
	case models.CharacterTypeCoach:
		c := ch.Coach
		return ActiveCharacter{
			Type:              models.CharacterTypeCoach,
			ID:                c.ID,
			Name:              c.Name,
			Greeting:          c.Greeting,
			SystemPrompt:      c.SystemPrompt,
			Color:             c.Color,
			Voice:             c.Voice,
			VoiceInstructions: c.VoiceInstructions,
			Subtitle:          subtitleCoach,
			Character:         ch,
		}
	default:
		m := ch.Maestro
		return ActiveCharacter{
			Type:              models.CharacterTypeMaestro,
			ID:                m.ID,
			Name:              m.Name,
			Greeting:          m.Greeting,
			SystemPrompt:      m.SystemPrompt,
			Color:             m.Color,
			Voice:             DefaultMaestroVoice,
			VoiceInstructions: DefaultMaestroVoiceInstructions,
			Subtitle:          string(m.Subject),
			Character:         ch,
		}
	}
}
