// Package inactivity tracks idle sessions with per-session timers.
//
// A session's timer restarts on every StartTracking call; when it fires, the
// monitor invokes the OnInactive hook with the session id. The flow engine
// uses the hook to end idle conversations.
package inactivity

import (
	"log/slog"
	"sync"
	"time"
)

// DefaultTimeout applies when a Monitor is built with a non-positive timeout.
const DefaultTimeout = 10 * time.Minute

type trackedSession struct {
	timer     *time.Timer
	startedAt time.Time
	expiresAt time.Time
}

// Monitor watches one timer per session. Safe for concurrent use.
type Monitor struct {
	mu       sync.Mutex
	sessions map[string]*trackedSession

	timeout    time.Duration
	onInactive func(sessionID string)
}

// NewMonitor creates a monitor that calls onInactive after timeout of
// inactivity for a tracked session. A nil hook makes tracking a no-op on
// expiry beyond clearing the session.
func NewMonitor(timeout time.Duration, onInactive func(sessionID string)) *Monitor {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	slog.Debug("InactivityMonitor.NewMonitor: creating monitor", "timeout", timeout)
	return &Monitor{
		sessions:   make(map[string]*trackedSession),
		timeout:    timeout,
		onInactive: onInactive,
	}
}

// StartTracking starts or restarts the inactivity timer for a session.
// Calling it again for the same session resets the countdown.
func (m *Monitor) StartTracking(sessionID string) {
	if sessionID == "" {
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if existing, ok := m.sessions[sessionID]; ok {
		existing.timer.Stop()
	}

	now := time.Now()
	timer := time.AfterFunc(m.timeout, func() { m.expire(sessionID) })
	m.sessions[sessionID] = &trackedSession{
		timer:     timer,
		startedAt: now,
		expiresAt: now.Add(m.timeout),
	}
	slog.Debug("InactivityMonitor.StartTracking: tracking session", "sessionID", sessionID, "timeout", m.timeout)
}

func (m *Monitor) expire(sessionID string) {
	m.mu.Lock()
	_, ok := m.sessions[sessionID]
	if ok {
		delete(m.sessions, sessionID)
	}
	m.mu.Unlock()

	if !ok {
		return
	}
	slog.Info("InactivityMonitor.expire: session inactive", "sessionID", sessionID)
	if m.onInactive != nil {
		m.onInactive(sessionID)
	}
}

// StopTracking cancels the timer for a session. Unknown sessions are a no-op.
func (m *Monitor) StopTracking(sessionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if s, ok := m.sessions[sessionID]; ok {
		s.timer.Stop()
		delete(m.sessions, sessionID)
		slog.Debug("InactivityMonitor.StopTracking: stopped", "sessionID", sessionID)
	}
}

// StopAll cancels every tracked session.
func (m *Monitor) StopAll() {
	m.mu.Lock()
	defer m.mu.Unlock()

	for id, s := range m.sessions {
		s.timer.Stop()
		delete(m.sessions, id)
	}
	slog.Debug("InactivityMonitor.StopAll: stopped all sessions")
}

// Tracking reports whether a session currently has a live timer.
func (m *Monitor) Tracking(sessionID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.sessions[sessionID]
	return ok
}
