package flow

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/ConvergioEdu/StudyFlow/internal/catalog"
	"github.com/ConvergioEdu/StudyFlow/internal/models"
)

func testProfile() models.StudentProfile {
	return models.StudentProfile{Name: "Luca", Age: 13, Language: "it"}
}

func startedFlow(t *testing.T, opts ...Option) *ConversationFlow {
	t.Helper()
	f := New("user-1", testProfile(), opts...)
	if err := f.StartConversation(models.FlowModeText); err != nil {
		t.Fatalf("StartConversation: %v", err)
	}
	return f
}

func TestStartConversationSeedsCoachGreeting(t *testing.T) {
	monitor := &fakeInactivity{}
	f := New("user-1", testProfile(), WithInactivityMonitor(monitor))

	if err := f.StartConversation(""); err != nil {
		t.Fatalf("StartConversation: %v", err)
	}

	if f.Mode() != models.FlowModeText || !f.IsActive() {
		t.Errorf("mode = %q, active = %v", f.Mode(), f.IsActive())
	}

	coach := catalog.DefaultCoach()
	if f.ActiveCharacter().ID != coach.ID {
		t.Errorf("active = %q, want default coach", f.ActiveCharacter().ID)
	}

	msgs := f.Messages()
	if len(msgs) != 1 || msgs[0].Role != models.MessageRoleAssistant || msgs[0].Content != coach.Greeting {
		t.Fatalf("messages = %+v, want single assistant greeting %q", msgs, coach.Greeting)
	}

	if len(f.CharacterHistory()) != 1 {
		t.Errorf("history = %+v, want single entry", f.CharacterHistory())
	}
	if len(monitor.started) != 1 || monitor.started[0] != f.SessionID() {
		t.Errorf("inactivity tracking not started for session: %v", monitor.started)
	}
}

func TestStartConversationRejectsInvalidMode(t *testing.T) {
	f := New("user-1", testProfile())
	if err := f.StartConversation(models.FlowModeIdle); err == nil {
		t.Error("idle mode should be rejected")
	}
	if err := f.StartConversation("video"); err == nil {
		t.Error("unknown mode should be rejected")
	}
}

func TestStartConversationResumesCoachBucket(t *testing.T) {
	f := startedFlow(t)
	if _, err := f.AppendUserMessage("ciao Melissa"); err != nil {
		t.Fatal(err)
	}
	if _, err := f.AppendAssistantMessage("Ciao Luca!"); err != nil {
		t.Fatal(err)
	}
	before := f.Messages()
	f.EndConversation()

	if err := f.StartConversation(models.FlowModeText); err != nil {
		t.Fatal(err)
	}
	after := f.Messages()
	if len(after) != len(before) {
		t.Fatalf("resumed %d messages, want %d", len(after), len(before))
	}
	for i := range before {
		if after[i].ID != before[i].ID {
			t.Fatalf("message %d differs after resume: %q vs %q", i, after[i].ID, before[i].ID)
		}
	}
}

func TestAppendMessageValidation(t *testing.T) {
	f := New("user-1", testProfile())
	if _, err := f.AppendUserMessage("ciao"); !errors.Is(err, ErrNotActive) {
		t.Errorf("inactive append error = %v", err)
	}

	if err := f.StartConversation(""); err != nil {
		t.Fatal(err)
	}
	if _, err := f.AppendUserMessage(""); !errors.Is(err, models.ErrEmptyMessageContent) {
		t.Errorf("empty content error = %v", err)
	}
	if _, err := f.AppendUserMessage(strings.Repeat("a", models.MaxMessageContentLength+1)); !errors.Is(err, models.ErrMessageContentTooLong) {
		t.Errorf("oversized content error = %v", err)
	}

	msg, err := f.AppendAssistantMessage("Ciao!")
	if err != nil {
		t.Fatal(err)
	}
	if msg.CharacterID != f.ActiveCharacter().ID || msg.CharacterType != models.CharacterTypeCoach {
		t.Errorf("assistant message not attributed: %+v", msg)
	}
}

func TestSwitchCharacterRoundTrip(t *testing.T) {
	f := startedFlow(t)
	f.AppendUserMessage("devo organizzarmi")

	if err := f.SwitchCharacter("euclide-matematica"); err != nil {
		t.Fatalf("SwitchCharacter: %v", err)
	}
	f.AppendUserMessage("Spiegami le frazioni")
	inEuclide := f.Messages()

	if err := f.SwitchCharacter("mario"); err != nil {
		t.Fatalf("SwitchCharacter: %v", err)
	}
	if err := f.SwitchCharacter("euclide-matematica"); err != nil {
		t.Fatalf("SwitchCharacter: %v", err)
	}

	back := f.Messages()
	if len(back) != len(inEuclide) {
		t.Fatalf("round trip lost messages: %d vs %d", len(back), len(inEuclide))
	}
	for i := range inEuclide {
		if back[i].ID != inEuclide[i].ID {
			t.Fatalf("message %d differs after round trip", i)
		}
	}

	// The coach bucket kept its own history.
	coachBucket := f.ConversationFor(catalog.DefaultCoach().ID)
	if coachBucket == nil || len(coachBucket.Messages) != 2 {
		t.Fatalf("coach bucket = %+v", coachBucket)
	}
	if len(f.CharacterHistory()) != 4 {
		t.Errorf("history length = %d, want 4", len(f.CharacterHistory()))
	}
}

func TestSwitchCharacterPreconditions(t *testing.T) {
	f := New("user-1", testProfile())
	if err := f.SwitchCharacter("euclide-matematica"); !errors.Is(err, ErrNotActive) {
		t.Errorf("inactive switch error = %v", err)
	}

	if err := f.StartConversation(""); err != nil {
		t.Fatal(err)
	}
	if err := f.SwitchCharacter("prof-nessuno"); !errors.Is(err, ErrUnknownCharacter) {
		t.Errorf("unknown character error = %v", err)
	}

	// Switching to the already-active persona is a no-op.
	before := f.Messages()
	if err := f.SwitchCharacter(catalog.DefaultCoach().ID); err != nil {
		t.Fatal(err)
	}
	if len(f.Messages()) != len(before) || len(f.CharacterHistory()) != 1 {
		t.Error("self-switch should not change state")
	}
}

func TestSaveCurrentConversationIdempotent(t *testing.T) {
	f := startedFlow(t)
	f.AppendUserMessage("ciao")

	f.mu.Lock()
	f.saveCurrentConversation()
	first := f.state.ConversationsByCharacter[f.state.ActiveCharacter.ID]
	f.saveCurrentConversation()
	second := f.state.ConversationsByCharacter[f.state.ActiveCharacter.ID]
	f.mu.Unlock()

	if first.ConversationID != second.ConversationID {
		t.Errorf("conversation id changed: %q vs %q", first.ConversationID, second.ConversationID)
	}
	if len(first.Messages) != len(second.Messages) {
		t.Errorf("message count changed: %d vs %d", len(first.Messages), len(second.Messages))
	}
	if !second.LastMessageAt.Equal(first.LastMessageAt) {
		t.Errorf("lastMessageAt moved: %v vs %v", first.LastMessageAt, second.LastMessageAt)
	}
}

func TestConversationIDAssignedOnceByGateway(t *testing.T) {
	gw := newFakeGateway()
	f := startedFlow(t, WithGateway(gw))
	f.AppendUserMessage("ciao")

	f.SwitchCharacter("euclide-matematica")
	f.SwitchCharacter(catalog.DefaultCoach().ID)
	f.AppendUserMessage("ancora io")
	f.EndConversation()

	coachBucket := f.ConversationFor(catalog.DefaultCoach().ID)
	if coachBucket.ConversationID != "conv-1" {
		t.Errorf("coach conversation id = %q, want conv-1 assigned once", coachBucket.ConversationID)
	}
	var coachCreates int
	for _, req := range gw.created {
		if req.CharacterID == catalog.DefaultCoach().ID {
			coachCreates++
		}
	}
	if coachCreates != 1 {
		t.Errorf("coach conversation created %d times, want 1", coachCreates)
	}
}

func TestGatewayFailuresAreSoft(t *testing.T) {
	gw := newFakeGateway()
	gw.createErr = errors.New("server down")
	f := startedFlow(t, WithGateway(gw))
	f.AppendUserMessage("ciao")

	// Persistence is unavailable; switching must still work from memory.
	if err := f.SwitchCharacter("euclide-matematica"); err != nil {
		t.Fatalf("SwitchCharacter: %v", err)
	}
	coachBucket := f.ConversationFor(catalog.DefaultCoach().ID)
	if coachBucket == nil || coachBucket.ConversationID != "" {
		t.Errorf("bucket = %+v, want in-memory bucket without conversation id", coachBucket)
	}
}

func TestAnalyzeTurnStoresPendingHandoffAndLogsSafety(t *testing.T) {
	recorder := &fakeSafety{}
	f := startedFlow(t, WithSafetyRecorder(recorder))

	analysis := f.AnalyzeTurn("voglio morire", "")
	if !analysis.ShouldHandoff {
		t.Fatal("expected handoff analysis")
	}
	pending := f.PendingHandoff()
	if pending == nil || pending.To.Type != models.CharacterTypeBuddy {
		t.Fatalf("pending = %+v", pending)
	}
	if len(recorder.crises) != 1 {
		t.Errorf("crisis events = %v", recorder.crises)
	}
	if len(recorder.suggested) != 1 {
		t.Errorf("suggestion events = %v", recorder.suggested)
	}
}

func TestAcceptHandoffAppendsTransition(t *testing.T) {
	f := startedFlow(t)
	f.AppendUserMessage("Ho molta ansia per la verifica")
	f.AnalyzeTurn("Ho molta ansia per la verifica", "")

	pending := f.PendingHandoff()
	if pending == nil {
		t.Fatal("no pending handoff")
	}
	fromName := f.ActiveCharacter().Name

	if err := f.AcceptHandoff(); err != nil {
		t.Fatalf("AcceptHandoff: %v", err)
	}
	if f.ActiveCharacter().ID != pending.To.ID {
		t.Errorf("active = %q, want %q", f.ActiveCharacter().ID, pending.To.ID)
	}
	if f.PendingHandoff() != nil {
		t.Error("pending handoff should be cleared")
	}

	msgs := f.Messages()
	last := msgs[len(msgs)-1]
	if last.Role != models.MessageRoleAssistant || !strings.Contains(last.Content, fromName+" ti ha passato a "+pending.To.Name) {
		t.Errorf("transition message = %+v", last)
	}
	if pending.Reason == "" || !strings.Contains(last.Content, pending.Reason) {
		t.Errorf("transition message %q should carry the handoff reason %q", last.Content, pending.Reason)
	}
}

func TestAcceptHandoffWithoutPending(t *testing.T) {
	f := startedFlow(t)
	if err := f.AcceptHandoff(); !errors.Is(err, ErrNoPendingHandoff) {
		t.Errorf("error = %v", err)
	}
}

func TestDismissHandoffOnlyClearsPending(t *testing.T) {
	f := startedFlow(t)
	f.AnalyzeTurn("Ho molta ansia per la verifica", "")
	if f.PendingHandoff() == nil {
		t.Fatal("no pending handoff")
	}
	before := f.Messages()

	f.DismissHandoff()
	if f.PendingHandoff() != nil {
		t.Error("pending not cleared")
	}
	if len(f.Messages()) != len(before) {
		t.Error("dismiss must not touch messages")
	}
}

func TestRouteToCharacterSwitchesAndKeepsContinuity(t *testing.T) {
	f := startedFlow(t)

	result, err := f.RouteToCharacter("Non capisco la matematica")
	if err != nil {
		t.Fatalf("RouteToCharacter: %v", err)
	}
	if result.Character.ID() != "euclide-matematica" || f.ActiveCharacter().ID != "euclide-matematica" {
		t.Errorf("routed to %q, active %q", result.Character.ID(), f.ActiveCharacter().ID)
	}

	// Low-confidence chatter stays put.
	if _, err := f.RouteToCharacter("Ciao, come stai?"); err != nil {
		t.Fatal(err)
	}
	if f.ActiveCharacter().ID != "euclide-matematica" {
		t.Errorf("continuity broken, active = %q", f.ActiveCharacter().ID)
	}
}

func TestEndConversationPreservesBuckets(t *testing.T) {
	monitor := &fakeInactivity{}
	f := startedFlow(t, WithInactivityMonitor(monitor))
	f.AppendUserMessage("ciao")
	sessionID := f.SessionID()

	f.EndConversation()

	if f.IsActive() || f.Mode() != models.FlowModeIdle || f.SessionID() != "" {
		t.Errorf("not idle: active=%v mode=%q session=%q", f.IsActive(), f.Mode(), f.SessionID())
	}
	if len(f.Messages()) != 0 || f.PendingHandoff() != nil {
		t.Error("session fields not cleared")
	}
	bucket := f.ConversationFor(catalog.DefaultCoach().ID)
	if bucket == nil || len(bucket.Messages) != 2 {
		t.Fatalf("bucket = %+v, want flushed bucket", bucket)
	}
	if len(monitor.stopped) != 1 || monitor.stopped[0] != sessionID {
		t.Errorf("inactivity stop calls = %v", monitor.stopped)
	}
}

func TestEndConversationWithSummarySuccess(t *testing.T) {
	gw := newFakeGateway()
	gw.endResult = models.SummaryResult{Topics: []string{"frazioni"}, Summary: "Abbiamo ripassato le frazioni."}
	f := startedFlow(t, WithGateway(gw))
	f.AppendUserMessage("frazioni")

	summary := f.EndConversationWithSummary(context.Background(), "user_ended")
	if summary == nil {
		t.Fatal("expected summary")
	}
	if summary.Summary != "Abbiamo ripassato le frazioni." || summary.DurationMinutes < 0 {
		t.Errorf("summary = %+v", summary)
	}
	if !f.ShowRatingModal() {
		t.Error("rating modal should show after successful summary")
	}
	if f.IsActive() {
		t.Error("session should be idle")
	}
	if got := f.SessionSummary(); got == nil || got.Summary != summary.Summary {
		t.Errorf("stored summary = %+v", got)
	}
	if len(gw.endedIDs) != 1 {
		t.Errorf("ended ids = %v", gw.endedIDs)
	}
	if len(gw.endReasons) != 1 || gw.endReasons[0] != "user_ended" {
		t.Errorf("end reasons = %v, want [user_ended]", gw.endReasons)
	}
}

func TestEndConversationWithSummaryFailureStillEnds(t *testing.T) {
	gw := newFakeGateway()
	gw.endErr = errors.New("summary service down")
	f := startedFlow(t, WithGateway(gw))
	f.AppendUserMessage("frazioni")

	summary := f.EndConversationWithSummary(context.Background(), "user_ended")
	if summary != nil {
		t.Errorf("summary = %+v, want nil", summary)
	}
	if f.SessionSummary() != nil || f.ShowRatingModal() {
		t.Error("failed summary must not set summary state")
	}
	if f.IsActive() {
		t.Error("session should still end")
	}
	if bucket := f.ConversationFor(catalog.DefaultCoach().ID); bucket == nil || len(bucket.Messages) == 0 {
		t.Error("bucket should still be flushed")
	}
}

func TestEndConversationWithSummaryStaleResultDropped(t *testing.T) {
	gw := newFakeGateway()
	gw.endResult = models.SummaryResult{Topics: []string{"frazioni"}, Summary: "Vecchia sessione."}
	f := startedFlow(t, WithGateway(gw))
	f.AppendUserMessage("frazioni")

	// A reset lands while the summary call is in flight.
	gw.onEnd = func() { f.Reset() }

	if summary := f.EndConversationWithSummary(context.Background(), "user_ended"); summary != nil {
		t.Errorf("stale summary applied: %+v", summary)
	}
	if f.SessionSummary() != nil || f.ShowRatingModal() {
		t.Error("stale summary state applied after reset")
	}
}

func TestResetWipesEverything(t *testing.T) {
	monitor := &fakeInactivity{}
	f := startedFlow(t, WithInactivityMonitor(monitor))
	f.AppendUserMessage("ciao")
	f.SwitchCharacter("euclide-matematica")

	f.Reset()

	if f.IsActive() || f.SessionID() != "" {
		t.Error("not idle after reset")
	}
	if f.ConversationFor(catalog.DefaultCoach().ID) != nil || f.ConversationFor("euclide-matematica") != nil {
		t.Error("buckets must be wiped on reset")
	}
	if monitor.stopAlls != 1 {
		t.Errorf("stopAll calls = %d", monitor.stopAlls)
	}
}

func TestLoadFromServerBootstrapsBuckets(t *testing.T) {
	last := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	gw := newFakeGateway()
	gw.summaries = []models.ConversationSummary{
		{ID: "conv-7", MaestroID: "euclide-matematica", Summary: "Frazioni e decimali.", KeyFacts: []string{"esempi con la pizza"}, Topics: []string{"frazioni"}, LastMessageAt: &last},
		{ID: "conv-8", MaestroID: "prof-sconosciuto", Summary: "ignorata"},
	}
	f := New("user-1", testProfile(), WithGateway(gw))

	if err := f.LoadFromServer(context.Background()); err != nil {
		t.Fatalf("LoadFromServer: %v", err)
	}

	bucket := f.ConversationFor("euclide-matematica")
	if bucket == nil {
		t.Fatal("bucket not bootstrapped")
	}
	if bucket.ConversationID != "conv-7" || bucket.PreviousSummary == "" || len(bucket.Messages) != 0 {
		t.Errorf("bucket = %+v", bucket)
	}
	if f.ConversationFor("prof-sconosciuto") != nil {
		t.Error("unknown character summary should be skipped")
	}

	// Re-entering the persona greets contextually from the bootstrap data.
	if err := f.StartConversation(""); err != nil {
		t.Fatal(err)
	}
	if err := f.SwitchCharacter("euclide-matematica"); err != nil {
		t.Fatal(err)
	}
	msgs := f.Messages()
	if len(msgs) != 1 || !strings.Contains(msgs[0].Content, "frazioni") {
		t.Errorf("greeting = %+v, want contextual greeting naming previous topics", msgs)
	}
}

func TestLoadFromServerFailureLeavesBucketsUnchanged(t *testing.T) {
	gw := newFakeGateway()
	gw.listErr = errors.New("network down")
	f := startedFlow(t, WithGateway(gw))
	f.AppendUserMessage("ciao")
	f.EndConversation()

	if err := f.LoadFromServer(context.Background()); err == nil {
		t.Error("expected error")
	}
	bucket := f.ConversationFor(catalog.DefaultCoach().ID)
	if bucket == nil || len(bucket.Messages) != 2 {
		t.Errorf("bucket changed on failed load: %+v", bucket)
	}
}

func TestLoadFromServerDoesNotOverwriteLiveBucket(t *testing.T) {
	gw := newFakeGateway()
	gw.summaries = []models.ConversationSummary{{ID: "conv-9", MaestroID: "melissa", Summary: "vecchio riassunto"}}
	f := startedFlow(t, WithGateway(gw))
	f.AppendUserMessage("ciao")
	f.EndConversation()

	if err := f.LoadFromServer(context.Background()); err != nil {
		t.Fatal(err)
	}
	bucket := f.ConversationFor("melissa")
	if len(bucket.Messages) != 2 || bucket.PreviousSummary != "" {
		t.Errorf("live bucket overwritten: %+v", bucket)
	}
}
