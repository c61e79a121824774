// Package safety keeps an in-memory record of safety-relevant events:
// crisis detections, handoffs escalated to an adult, blocked input and
// repeated violations. Events live in a bounded buffer; per-user violation
// counts are tracked over a sliding window so that repeat offenders surface
// as a distinct event.
package safety

import (
	"log/slog"
	"sync"
	"time"
)

// Severity ranks an event for triage.
type Severity string

const (
	SeverityInfo     Severity = "info"
	SeverityWarning  Severity = "warning"
	SeverityAlert    Severity = "alert"
	SeverityCritical Severity = "critical"
)

// EventType identifies what happened.
type EventType string

const (
	EventCrisisDetected    EventType = "crisis_detected"
	EventHandoffSuggested  EventType = "handoff_suggested"
	EventHandoffToAdult    EventType = "handoff_to_adult"
	EventInputBlocked      EventType = "input_blocked"
	EventJailbreakAttempt  EventType = "jailbreak_attempt"
	EventProfanityDetected EventType = "profanity_detected"
	EventRepeatedViolation EventType = "repeated_violation"
)

const (
	// maxBufferSize bounds the event buffer; the oldest events are dropped.
	maxBufferSize = 1000
	// violationThreshold violations inside violationWindow escalate to a
	// repeated_violation event.
	violationThreshold = 3
	violationWindow    = 5 * time.Minute
)

// Event is one recorded safety occurrence.
type Event struct {
	Type        EventType `json:"type"`
	Severity    Severity  `json:"severity"`
	UserID      string    `json:"user_id,omitempty"`
	CharacterID string    `json:"character_id,omitempty"`
	Detail      string    `json:"detail,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
}

// Metrics aggregates the buffered events.
type Metrics struct {
	TotalEvents int               `json:"total_events"`
	ByType      map[EventType]int `json:"by_type"`
	BySeverity  map[Severity]int  `json:"by_severity"`
}

// Monitor records and aggregates safety events. Safe for concurrent use.
type Monitor struct {
	mu         sync.Mutex
	events     []Event
	violations map[string][]time.Time

	logger *slog.Logger
	now    func() time.Time
}

// NewMonitor creates an empty monitor. A nil logger falls back to the
// default slog logger.
func NewMonitor(logger *slog.Logger) *Monitor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Monitor{
		violations: make(map[string][]time.Time),
		logger:     logger,
		now:        time.Now,
	}
}

// Record appends an event to the buffer, evicting the oldest entries once
// the buffer is full. A zero timestamp is filled in.
func (m *Monitor) Record(ev Event) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record(ev)
}

func (m *Monitor) record(ev Event) {
	if ev.Timestamp.IsZero() {
		ev.Timestamp = m.now()
	}
	m.events = append(m.events, ev)
	if len(m.events) > maxBufferSize {
		m.events = m.events[len(m.events)-maxBufferSize:]
	}

	switch ev.Severity {
	case SeverityCritical:
		m.logger.Error("SafetyMonitor.Record: critical safety event", "type", ev.Type, "userID", ev.UserID, "characterID", ev.CharacterID)
	case SeverityAlert:
		m.logger.Warn("SafetyMonitor.Record: safety alert", "type", ev.Type, "userID", ev.UserID, "characterID", ev.CharacterID)
	default:
		m.logger.Debug("SafetyMonitor.Record: safety event", "type", ev.Type, "severity", ev.Severity, "userID", ev.UserID)
	}
}

// RecordViolation records a policy violation for a user and escalates to a
// repeated_violation event when the user accumulates violationThreshold
// violations inside the sliding window.
func (m *Monitor) RecordViolation(userID string, typ EventType, detail string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	m.record(Event{Type: typ, Severity: SeverityWarning, UserID: userID, Detail: detail, Timestamp: now})

	cutoff := now.Add(-violationWindow)
	recent := m.violations[userID][:0]
	for _, t := range m.violations[userID] {
		if t.After(cutoff) {
			recent = append(recent, t)
		}
	}
	recent = append(recent, now)
	m.violations[userID] = recent

	if len(recent) >= violationThreshold {
		m.record(Event{Type: EventRepeatedViolation, Severity: SeverityAlert, UserID: userID, Timestamp: now})
		m.violations[userID] = nil
	}
}

// LogCrisisDetected records a critical crisis_detected event.
func (m *Monitor) LogCrisisDetected(userID, characterID, detail string) {
	m.Record(Event{
		Type:        EventCrisisDetected,
		Severity:    SeverityCritical,
		UserID:      userID,
		CharacterID: characterID,
		Detail:      detail,
	})
}

// LogHandoffSuggested records an informational handoff_suggested event.
func (m *Monitor) LogHandoffSuggested(userID, fromCharacterID, toCharacterID string) {
	m.Record(Event{
		Type:        EventHandoffSuggested,
		Severity:    SeverityInfo,
		UserID:      userID,
		CharacterID: fromCharacterID,
		Detail:      "suggested: " + toCharacterID,
	})
}

// LogHandoffToAdult records that a conversation was escalated to an adult.
func (m *Monitor) LogHandoffToAdult(userID, characterID string) {
	m.Record(Event{
		Type:        EventHandoffToAdult,
		Severity:    SeverityAlert,
		UserID:      userID,
		CharacterID: characterID,
	})
}

// Events returns a copy of the buffered events, oldest first.
func (m *Monitor) Events() []Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Event, len(m.events))
	copy(out, m.events)
	return out
}

// EventsBySeverity returns the buffered events with the given severity.
func (m *Monitor) EventsBySeverity(s Severity) []Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Event
	for _, ev := range m.events {
		if ev.Severity == s {
			out = append(out, ev)
		}
	}
	return out
}

// Metrics aggregates the buffered events by type and severity.
func (m *Monitor) Metrics() Metrics {
	m.mu.Lock()
	defer m.mu.Unlock()
	metrics := Metrics{
		TotalEvents: len(m.events),
		ByType:      make(map[EventType]int),
		BySeverity:  make(map[Severity]int),
	}
	for _, ev := range m.events {
		metrics.ByType[ev.Type]++
		metrics.BySeverity[ev.Severity]++
	}
	return metrics
}

// Reset drops all buffered events and violation history.
func (m *Monitor) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = nil
	m.violations = make(map[string][]time.Time)
}
