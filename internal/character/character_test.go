package character

import (
	"strings"
	"testing"

	"github.com/ConvergioEdu/StudyFlow/internal/catalog"
	"github.com/ConvergioEdu/StudyFlow/internal/models"
)

func TestNewActiveCharacterMaestroUsesSharedVoice(t *testing.T) {
	m := catalog.MaestroByID("euclide-matematica")
	if m == nil {
		t.Fatal("euclide-matematica not in catalog")
	}

	ac := NewActiveCharacter(catalog.MaestroCharacter(m), models.StudentProfile{Age: 14}, "it")

	if ac.Type != models.CharacterTypeMaestro {
		t.Errorf("type = %q", ac.Type)
	}
	if ac.Greeting != m.Greeting {
		t.Error("maestro greeting should be the static record greeting")
	}
	if ac.Voice != DefaultMaestroVoice {
		t.Errorf("voice = %q, want %q regardless of record", ac.Voice, DefaultMaestroVoice)
	}
	if ac.VoiceInstructions != DefaultMaestroVoiceInstructions {
		t.Error("maestro voice instructions should be the shared constant")
	}
	if ac.Subtitle != string(models.SubjectMathematics) {
		t.Errorf("subtitle = %q, want subject", ac.Subtitle)
	}
}

func TestNewActiveCharacterCoachCopiesRecord(t *testing.T) {
	c := catalog.DefaultCoach()
	ac := NewActiveCharacter(catalog.CoachCharacter(c), models.StudentProfile{Age: 14}, "")

	if ac.Greeting != c.Greeting || ac.SystemPrompt != c.SystemPrompt {
		t.Error("coach greeting/prompt should be copied verbatim")
	}
	if ac.Voice != c.Voice || ac.VoiceInstructions != c.VoiceInstructions {
		t.Error("coach keeps its own voice metadata")
	}
	if ac.Subtitle != "Learning Coach" {
		t.Errorf("subtitle = %q", ac.Subtitle)
	}
}

func TestNewActiveCharacterBuddyIsParametric(t *testing.T) {
	b := catalog.DefaultBuddy()
	student := models.StudentProfile{Name: "Luca", Age: 13}

	ac := NewActiveCharacter(catalog.BuddyCharacter(b), student, "it")
	if !strings.Contains(ac.Greeting, "14") {
		t.Errorf("buddy greeting should reflect student age + 1, got %q", ac.Greeting)
	}
	if ac.Voice != b.Voice {
		t.Error("buddy keeps its own voice metadata")
	}

	en := NewActiveCharacter(catalog.BuddyCharacter(b), student, "en")
	if en.Greeting == ac.Greeting {
		t.Error("buddy greeting should vary with language")
	}
}

func TestGreetingForPrefersContextual(t *testing.T) {
	c := catalog.DefaultCoach()
	ac := NewActiveCharacter(catalog.CoachCharacter(c), models.StudentProfile{Age: 14}, "it")

	if got := GreetingFor(ac, nil, "it"); got != ac.Greeting {
		t.Errorf("no bucket: got %q, want generic greeting", got)
	}

	empty := &models.CharacterConversation{CharacterID: c.ID}
	if got := GreetingFor(ac, empty, "it"); got != ac.Greeting {
		t.Errorf("bucket without context: got %q, want generic greeting", got)
	}

	withTopics := &models.CharacterConversation{
		CharacterID:    c.ID,
		PreviousTopics: []string{"frazioni", "equazioni"},
	}
	got := GreetingFor(ac, withTopics, "it")
	if !strings.Contains(got, "frazioni e equazioni") {
		t.Errorf("contextual greeting should name previous topics, got %q", got)
	}

	withSummary := &models.CharacterConversation{
		CharacterID:     c.ID,
		PreviousSummary: "Abbiamo preparato un piano di studio per la verifica.",
	}
	got = GreetingFor(ac, withSummary, "it")
	if !strings.Contains(got, "piano di studio") {
		t.Errorf("contextual greeting should use previous summary, got %q", got)
	}
}
