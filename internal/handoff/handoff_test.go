package handoff

import (
	"strings"
	"testing"

	"github.com/ConvergioEdu/StudyFlow/internal/catalog"
	"github.com/ConvergioEdu/StudyFlow/internal/character"
	"github.com/ConvergioEdu/StudyFlow/internal/intent"
	"github.com/ConvergioEdu/StudyFlow/internal/models"
)

func activeByID(t *testing.T, id string) character.ActiveCharacter {
	t.Helper()
	ch, ok := catalog.CharacterByID(id)
	if !ok {
		t.Fatalf("character %q not in catalog", id)
	}
	return character.NewActiveCharacter(ch, models.StudentProfile{Name: "Luca", Age: 13}, "it")
}

func TestAnalyzeExplicitMaestroSuggestion(t *testing.T) {
	got := Analyze(Context{
		UserMessage: "non capisco queste formule",
		AIResponse:  "Per questo ti consiglio Euclide, è bravissimo con le formule!",
		Current:     activeByID(t, "melissa"),
	})

	if !got.ShouldHandoff {
		t.Fatal("expected handoff")
	}
	if got.Confidence != confidenceExplicitMaestro {
		t.Errorf("confidence = %v, want %v", got.Confidence, confidenceExplicitMaestro)
	}
	if got.Suggestion == nil || got.Suggestion.To.ID != "euclide-matematica" {
		t.Fatalf("suggestion = %+v, want euclide-matematica", got.Suggestion)
	}
	if got.Suggestion.Reason != "Euclide è l'esperto di matematica!" {
		t.Errorf("reason = %q", got.Suggestion.Reason)
	}
}

func TestAnalyzeExplicitSuggestionPhrasings(t *testing.T) {
	// Every phrasing the maestro patterns recognize, through the same step.
	phrasings := []string{
		"Guarda, c'è Euclide che può aiutarti con le equazioni!",
		"Per le equazioni chiedi a Euclide.",
		"Il professor Euclide è la persona giusta.",
	}
	for _, reply := range phrasings {
		got := Analyze(Context{
			UserMessage: "ok",
			AIResponse:  reply,
			Current:     activeByID(t, "melissa"),
		})
		if !got.ShouldHandoff || got.Suggestion == nil || got.Suggestion.To.ID != "euclide-matematica" {
			t.Errorf("Analyze(%q): got %+v, want euclide-matematica suggestion", reply, got)
		}
	}
}

func TestAnalyzeBareNameMentionSuggestsMaestro(t *testing.T) {
	got := Analyze(Context{
		UserMessage: "ok",
		AIResponse:  "Magari Feynman saprebbe spiegartelo meglio di me.",
		Current:     activeByID(t, "melissa"),
	})
	if !got.ShouldHandoff || got.Suggestion == nil {
		t.Fatal("expected maestro suggestion from bare name mention")
	}
	if got.Suggestion.To.ID != "feynman-fisica" {
		t.Errorf("suggestion id = %q, want feynman-fisica", got.Suggestion.To.ID)
	}
}

func TestAnalyzeSkipsPatternsTargetingCurrentType(t *testing.T) {
	// A maestro suggestion in the reply is ignored while a maestro is active.
	got := Analyze(Context{
		UserMessage: "ok",
		AIResponse:  "Chiedi a Feynman per la parte di fisica.",
		Current:     activeByID(t, "euclide-matematica"),
	})
	if got.ShouldHandoff {
		t.Fatalf("expected no handoff, got %+v", got)
	}
	if got.Confidence != confidenceNoHandoff {
		t.Errorf("confidence = %v, want %v", got.Confidence, confidenceNoHandoff)
	}
}

func TestAnalyzeIntentMismatchSuggestsBuddy(t *testing.T) {
	got := Analyze(Context{
		UserMessage: "Ho molta ansia per la verifica",
		Current:     activeByID(t, "euclide-matematica"),
	})
	if !got.ShouldHandoff || got.Suggestion == nil {
		t.Fatal("expected buddy suggestion")
	}
	if got.Confidence != confidenceIntentMismatch {
		t.Errorf("confidence = %v, want %v", got.Confidence, confidenceIntentMismatch)
	}
	if got.Suggestion.To.Type != models.CharacterTypeBuddy {
		t.Errorf("suggestion type = %q, want buddy", got.Suggestion.To.Type)
	}
}

func TestAnalyzeIntentMismatchSkipsMaestroTarget(t *testing.T) {
	// Academic help maps to a maestro, but without knowing which maestro the
	// mismatch step stays silent. The coach keeps the conversation.
	got := Analyze(Context{
		UserMessage: "Non capisco la matematica",
		Current:     activeByID(t, "melissa"),
	})
	if got.ShouldHandoff {
		t.Fatalf("expected no handoff, got %+v", got)
	}
}

func TestAnalyzeCrisisIntentShadowedByMismatchStep(t *testing.T) {
	// Crisis language in the user message classifies as crisis intent, so the
	// intent mismatch step fires first at its own confidence. The dedicated
	// crisis step never runs for message-side crisis text.
	got := Analyze(Context{
		UserMessage: "voglio morire",
		Current:     activeByID(t, "euclide-matematica"),
	})
	if !got.ShouldHandoff || got.Suggestion == nil {
		t.Fatal("expected buddy suggestion")
	}
	if got.Confidence != confidenceIntentMismatch {
		t.Errorf("confidence = %v, want %v", got.Confidence, confidenceIntentMismatch)
	}
	if got.Suggestion.To.Type != models.CharacterTypeBuddy {
		t.Errorf("suggestion type = %q, want buddy", got.Suggestion.To.Type)
	}
	if got.Reason != crisisReason {
		t.Errorf("reason = %q, want crisis reason", got.Reason)
	}
}

func TestAnalyzeCrisisSignalsInAIResponse(t *testing.T) {
	// Crisis language only in the assistant text reaches the crisis scan.
	got := Analyze(Context{
		UserMessage: "ok",
		AIResponse:  "Hai scritto che non ce la faccio più: parliamone.",
		Current:     activeByID(t, "melissa"),
	})
	if !got.ShouldHandoff || got.Suggestion == nil {
		t.Fatal("expected crisis handoff")
	}
	if got.Confidence != confidenceCrisis {
		t.Errorf("confidence = %v, want %v", got.Confidence, confidenceCrisis)
	}
	if got.Suggestion.To.Type != models.CharacterTypeBuddy {
		t.Errorf("suggestion type = %q, want buddy", got.Suggestion.To.Type)
	}
}

func TestAnalyzeCrisisFiresWhileBuddyActive(t *testing.T) {
	// The crisis scan runs on every turn. A buddy already being active does
	// not suppress it.
	got := Analyze(Context{
		UserMessage: "ok",
		AIResponse:  "Capisco, sentire che non ce la faccio più pesa tantissimo.",
		Current:     activeByID(t, "mario"),
	})
	if !got.ShouldHandoff || got.Suggestion == nil {
		t.Fatalf("expected crisis handoff, got %+v", got)
	}
	if got.Confidence != confidenceCrisis {
		t.Errorf("confidence = %v, want %v", got.Confidence, confidenceCrisis)
	}
	if got.Reason != crisisReason {
		t.Errorf("reason = %q, want crisis reason", got.Reason)
	}
	if got.Suggestion.To.Type != models.CharacterTypeBuddy {
		t.Errorf("suggestion type = %q, want buddy", got.Suggestion.To.Type)
	}
}

func TestAnalyzeCrisisInMessageFiresWhileBuddyActive(t *testing.T) {
	// Message-side crisis text with a buddy active skips the mismatch step
	// (the target equals the current type) and lands on the crisis scan.
	got := Analyze(Context{
		UserMessage: "non ce la faccio più",
		Current:     activeByID(t, "mario"),
	})
	if !got.ShouldHandoff || got.Suggestion == nil {
		t.Fatalf("expected crisis handoff, got %+v", got)
	}
	if got.Confidence != confidenceCrisis {
		t.Errorf("confidence = %v, want %v", got.Confidence, confidenceCrisis)
	}
}

func TestAnalyzeSubjectChange(t *testing.T) {
	got := Analyze(Context{
		UserMessage: "Parlami della Rivoluzione francese",
		Current:     activeByID(t, "euclide-matematica"),
	})
	if !got.ShouldHandoff || got.Suggestion == nil {
		t.Fatal("expected subject change handoff")
	}
	if got.Confidence != confidenceSubjectChange {
		t.Errorf("confidence = %v, want %v", got.Confidence, confidenceSubjectChange)
	}
	if got.Suggestion.To.ID != "erodoto-storia" {
		t.Errorf("suggestion id = %q, want erodoto-storia", got.Suggestion.To.ID)
	}
	if got.Suggestion.Reason != "Per la storia, Erodoto è l'esperto!" {
		t.Errorf("reason = %q", got.Suggestion.Reason)
	}
}

func TestAnalyzeSameSubjectNoHandoff(t *testing.T) {
	got := Analyze(Context{
		UserMessage: "Spiegami le equazioni",
		Current:     activeByID(t, "euclide-matematica"),
	})
	if got.ShouldHandoff {
		t.Fatalf("same subject, expected no handoff, got %+v", got)
	}
}

func TestAnalyzeHonorsPreferredPersonas(t *testing.T) {
	got := Analyze(Context{
		UserMessage: "metodo di studio",
		Current:     activeByID(t, "mario"),
		Student:     models.StudentProfile{Name: "Luca", Age: 13, PreferredCoach: "davide"},
	})
	if !got.ShouldHandoff || got.Suggestion == nil {
		t.Fatal("expected coach suggestion")
	}
	if got.Suggestion.To.ID != "davide" {
		t.Errorf("suggestion id = %q, want davide", got.Suggestion.To.ID)
	}
}

func TestCrisisSignalsClassifyAsCrisisIntent(t *testing.T) {
	// Every utterance the signal library flags must also classify as crisis
	// intent, otherwise the mismatch and crisis steps would disagree.
	samples := []string{
		"mi sento molto solo",
		"sono disperata",
		"non ce la faccio più",
		"nessuno mi capisce",
		"voglio smettere",
	}
	for _, msg := range samples {
		if got := intent.Detect(msg); got.Type != models.IntentCrisis {
			t.Errorf("Detect(%q).Type = %q, want crisis", msg, got.Type)
		}
	}
}

func TestRouteToCharacterContinuity(t *testing.T) {
	got := RouteToCharacter(RoutingContext{
		Message:          "Ciao, come stai?",
		CurrentType:      models.CharacterTypeCoach,
		CurrentID:        "melissa",
		PreferContinuity: true,
	})
	if got.Type != models.CharacterTypeCoach || got.Character.ID() != "melissa" {
		t.Errorf("low confidence should keep current persona, got %q/%q", got.Type, got.Character.ID())
	}
}

func TestRouteToCharacterCrisisOverridesContinuity(t *testing.T) {
	got := RouteToCharacter(RoutingContext{
		Message:          "voglio morire",
		CurrentType:      models.CharacterTypeCoach,
		CurrentID:        "melissa",
		PreferContinuity: true,
	})
	if got.Type != models.CharacterTypeBuddy {
		t.Errorf("crisis must route to buddy, got %q", got.Type)
	}
}

func TestRouteToCharacterAcademic(t *testing.T) {
	got := RouteToCharacter(RoutingContext{Message: "Non capisco la matematica"})
	if got.Character.ID() != "euclide-matematica" {
		t.Errorf("character = %q, want euclide-matematica", got.Character.ID())
	}
	var hasCoach bool
	for _, alt := range got.Alternatives {
		if alt.Type == models.CharacterTypeCoach {
			hasCoach = true
		}
	}
	if !hasCoach {
		t.Error("academic routing should offer the coach as an alternative")
	}
}

func TestRouteToCharacterMethodHelp(t *testing.T) {
	got := RouteToCharacter(RoutingContext{Message: "come posso studiare meglio?"})
	if got.Type != models.CharacterTypeCoach {
		t.Errorf("type = %q, want coach", got.Type)
	}
}

func TestRouteToCharacterDefaultsToCoach(t *testing.T) {
	got := RouteToCharacter(RoutingContext{Message: "Ciao, come stai?"})
	if got.Type != models.CharacterTypeCoach || got.Character.ID() != catalog.DefaultCoach().ID {
		t.Errorf("got %q/%q, want default coach", got.Type, got.Character.ID())
	}
}

func TestMightNeedHandoff(t *testing.T) {
	if !MightNeedHandoff("Ho molta ansia per la verifica", models.CharacterTypeCoach) {
		t.Error("emotional message with coach active should flag a possible handoff")
	}
	if MightNeedHandoff("Ciao, come stai?", models.CharacterTypeCoach) {
		t.Error("general chat should not flag a handoff")
	}
}

func TestTransitionMessage(t *testing.T) {
	to := activeByID(t, "euclide-matematica")
	reason := "Euclide è l'esperto di matematica!"

	got := TransitionMessage("Melissa", reason, to, "")
	if !strings.HasPrefix(got, "Melissa ti ha passato a Euclide. "+reason) {
		t.Errorf("transition = %q", got)
	}
	if !strings.Contains(got, to.Greeting) {
		t.Error("transition should end with the new persona's greeting")
	}

	got = TransitionMessage("Melissa", "", to, "")
	if got != "Melissa ti ha passato a Euclide. "+to.Greeting {
		t.Errorf("transition without reason = %q", got)
	}
}
