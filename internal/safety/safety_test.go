package safety

import (
	"testing"
	"time"
)

func newTestMonitor(start time.Time) (*Monitor, *time.Time) {
	m := NewMonitor(nil)
	now := start
	m.now = func() time.Time { return now }
	return m, &now
}

func TestRecordAndMetrics(t *testing.T) {
	m := NewMonitor(nil)
	m.LogCrisisDetected("user-1", "euclide-matematica", "voglio morire")
	m.LogHandoffSuggested("user-1", "euclide-matematica", "mario")

	events := m.Events()
	if len(events) != 2 {
		t.Fatalf("len(events) = %d, want 2", len(events))
	}
	if events[0].Type != EventCrisisDetected || events[0].Severity != SeverityCritical {
		t.Errorf("first event = %+v", events[0])
	}
	if events[0].Timestamp.IsZero() {
		t.Error("timestamp should be filled in")
	}

	metrics := m.Metrics()
	if metrics.TotalEvents != 2 {
		t.Errorf("TotalEvents = %d", metrics.TotalEvents)
	}
	if metrics.ByType[EventCrisisDetected] != 1 || metrics.BySeverity[SeverityInfo] != 1 {
		t.Errorf("metrics = %+v", metrics)
	}
}

func TestBufferEvictsOldest(t *testing.T) {
	m := NewMonitor(nil)
	for i := 0; i < maxBufferSize+10; i++ {
		m.Record(Event{Type: EventInputBlocked, Severity: SeverityInfo, UserID: "user-1"})
	}
	if got := len(m.Events()); got != maxBufferSize {
		t.Errorf("len(events) = %d, want %d", got, maxBufferSize)
	}
}

func TestRepeatedViolationEscalation(t *testing.T) {
	m, now := newTestMonitor(time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC))

	m.RecordViolation("user-1", EventProfanityDetected, "first")
	*now = now.Add(time.Minute)
	m.RecordViolation("user-1", EventProfanityDetected, "second")
	*now = now.Add(time.Minute)
	m.RecordViolation("user-1", EventProfanityDetected, "third")

	metrics := m.Metrics()
	if metrics.ByType[EventRepeatedViolation] != 1 {
		t.Fatalf("repeated_violation count = %d, want 1", metrics.ByType[EventRepeatedViolation])
	}
	alerts := m.EventsBySeverity(SeverityAlert)
	if len(alerts) != 1 || alerts[0].UserID != "user-1" {
		t.Errorf("alerts = %+v", alerts)
	}
}

func TestViolationsOutsideWindowDoNotEscalate(t *testing.T) {
	m, now := newTestMonitor(time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC))

	m.RecordViolation("user-1", EventJailbreakAttempt, "")
	*now = now.Add(6 * time.Minute)
	m.RecordViolation("user-1", EventJailbreakAttempt, "")
	*now = now.Add(6 * time.Minute)
	m.RecordViolation("user-1", EventJailbreakAttempt, "")

	if got := m.Metrics().ByType[EventRepeatedViolation]; got != 0 {
		t.Errorf("repeated_violation count = %d, want 0", got)
	}
}

func TestViolationsTrackedPerUser(t *testing.T) {
	m, _ := newTestMonitor(time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC))

	m.RecordViolation("user-1", EventInputBlocked, "")
	m.RecordViolation("user-2", EventInputBlocked, "")
	m.RecordViolation("user-1", EventInputBlocked, "")
	m.RecordViolation("user-2", EventInputBlocked, "")

	if got := m.Metrics().ByType[EventRepeatedViolation]; got != 0 {
		t.Errorf("repeated_violation count = %d, want 0", got)
	}
}

func TestReset(t *testing.T) {
	m := NewMonitor(nil)
	m.LogHandoffToAdult("user-1", "mario")
	m.Reset()
	if len(m.Events()) != 0 {
		t.Error("events should be empty after reset")
	}
	if m.Metrics().TotalEvents != 0 {
		t.Error("metrics should be empty after reset")
	}
}
