// Package catalog provides the static persona catalogs for StudyFlow.
//
// It defines the Maestro, Coach and Buddy records, the tagged Character union
// that unifies them, and synchronous lookup functions over the in-memory
// catalogs. Lookups return nil when a record is absent; they never fail.
package catalog

import "github.com/ConvergioEdu/StudyFlow/internal/models"

// Maestro is a subject-matter expert persona record.
// Maestri carry no voice metadata; the character factory applies the shared
// maestro voice constants instead.
type Maestro struct {
	ID           string
	Name         string
	Subject      models.Subject
	Greeting     string
	SystemPrompt string
	Color        string
}

// Coach is a generalist learning coach persona record. Greeting and system
// prompt are static text copied verbatim when the coach becomes active.
type Coach struct {
	ID                string
	Name              string
	Greeting          string
	SystemPrompt      string
	Color             string
	Voice             string
	VoiceInstructions string
}

// Buddy is a peer-style companion persona record. Buddies are parametric over
// the student profile and language: greeting and system prompt are computed
// per activation.
type Buddy struct {
	ID                string
	Name              string
	Gender            string
	Personality       string
	Color             string
	Voice             string
	VoiceInstructions string
	Greeting          func(student models.StudentProfile, language string) string
	SystemPrompt      func(student models.StudentProfile, language string) string
}

// Character is a tagged union over the three persona record kinds. Exactly
// one payload field is non-nil, matching Type.
type Character struct {
	Type    models.CharacterType
	Maestro *Maestro
	Coach   *Coach
	Buddy   *Buddy
}

// MaestroCharacter wraps a maestro record in the Character union.
func MaestroCharacter(m *Maestro) Character {
	return Character{Type: models.CharacterTypeMaestro, Maestro: m}
}

// CoachCharacter wraps a coach record in the Character union.
func CoachCharacter(c *Coach) Character {
	return Character{Type: models.CharacterTypeCoach, Coach: c}
}

// BuddyCharacter wraps a buddy record in the Character union.
func BuddyCharacter(b *Buddy) Character {
	return Character{Type: models.CharacterTypeBuddy, Buddy: b}
}

// ID returns the underlying record's id, or "" for a zero Character.
func (c Character) ID() string {
	switch c.Type {
	case models.CharacterTypeMaestro:
		return c.Maestro.ID
	case models.CharacterTypeCoach:
		return c.Coach.ID
	case models.CharacterTypeBuddy:
		return c.Buddy.ID
	default:
		return ""
	}
}

// Name returns the underlying record's display name, or "" for a zero Character.
func (c Character) Name() string {
	switch c.Type {
	case models.CharacterTypeMaestro:
		return c.Maestro.Name
	case models.CharacterTypeCoach:
		return c.Coach.Name
	case models.CharacterTypeBuddy:
		return c.Buddy.Name
	default:
		return ""
	}
}

// IsZero reports whether the Character carries no record.
func (c Character) IsZero() bool {
	return c.Maestro == nil && c.Coach == nil && c.Buddy == nil
}

// CharacterByID looks a character up across all three catalogs, trying
// maestro, coach and buddy ids in that order. Returns a zero Character and
// false when no catalog knows the id.
func CharacterByID(id string) (Character, bool) {
	if m := MaestroByID(id); m != nil {
		return MaestroCharacter(m), true
	}
	if c := CoachByID(id); c != nil {
		return CoachCharacter(c), true
	}
	if b := BuddyByID(id); b != nil {
		return BuddyCharacter(b), true
	}
	return Character{}, false
}
