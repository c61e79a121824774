package catalog

import (
	"strings"
	"testing"

	"github.com/ConvergioEdu/StudyFlow/internal/models"
)

func TestMaestroByID(t *testing.T) {
	m := MaestroByID("euclide-matematica")
	if m == nil {
		t.Fatal("euclide-matematica not found")
	}
	if m.Subject != models.SubjectMathematics {
		t.Errorf("subject = %q, want mathematics", m.Subject)
	}
	if MaestroByID("nessuno") != nil {
		t.Error("unknown id should return nil")
	}
}

func TestMaestriBySubject(t *testing.T) {
	ms := MaestriBySubject(models.SubjectPhysics)
	if len(ms) == 0 {
		t.Fatal("no maestri for physics")
	}
	if ms[0].ID != "feynman-fisica" {
		t.Errorf("primary physics maestro = %q, want feynman-fisica", ms[0].ID)
	}
	if got := MaestriBySubject(models.SubjectBiology); len(got) != 0 {
		t.Errorf("biology has no maestro in the catalog, got %d", len(got))
	}
}

func TestDefaultMaestroBySubjectResolves(t *testing.T) {
	for subject, id := range DefaultMaestroBySubject {
		m := MaestroByID(id)
		if m == nil {
			t.Errorf("default maestro %q for subject %q not in catalog", id, subject)
			continue
		}
		if m.Subject != subject {
			t.Errorf("maestro %q teaches %q, mapped from %q", id, m.Subject, subject)
		}
	}
}

func TestDefaultCoach(t *testing.T) {
	c := DefaultCoach()
	if c.ID != "melissa" {
		t.Errorf("default coach = %q, want melissa", c.ID)
	}
	if CoachByID("davide") == nil {
		t.Error("davide not found")
	}
	if CoachByID("roberto") != nil {
		t.Error("unknown coach id should return nil")
	}
}

func TestBuddyGreetingUsesProfile(t *testing.T) {
	b := DefaultBuddy()
	if b.ID != "mario" {
		t.Fatalf("default buddy = %q, want mario", b.ID)
	}

	student := models.StudentProfile{Name: "Luca", Age: 13}
	got := b.Greeting(student, "it")
	want := "Ehi! Sono Mario. Ho 14 anni e uso ConvergioEdu come te. Come va?"
	if got != want {
		t.Errorf("greeting = %q, want %q", got, want)
	}
}

func TestBuddySystemPromptReflectsLearningDifferences(t *testing.T) {
	student := models.StudentProfile{
		Name:                "Sara",
		Age:                 14,
		LearningDifferences: []models.LearningDifference{models.LearningDifferenceADHD},
	}
	prompt := BuddyByID("noemi").SystemPrompt(student, "it")
	if !strings.Contains(prompt, "ADHD") {
		t.Error("system prompt should mention the student's learning difference")
	}
	if !strings.Contains(prompt, "pomodoro") {
		t.Error("system prompt should include the matching personal tip")
	}
}

func TestCharacterByID(t *testing.T) {
	ch, ok := CharacterByID("melissa")
	if !ok || ch.Type != models.CharacterTypeCoach {
		t.Fatalf("CharacterByID(melissa) = %+v, %v", ch, ok)
	}
	if ch.Name() != "Melissa" {
		t.Errorf("Name() = %q", ch.Name())
	}
	if _, ok := CharacterByID("ignoto"); ok {
		t.Error("unknown id should not resolve")
	}
}
