package flow

import (
	"context"
	"fmt"
	"sync"

	"github.com/ConvergioEdu/StudyFlow/internal/models"
)

// Hand-written fakes for the flow's collaborators, shared by the package
// tests.

type fakeGateway struct {
	mu            sync.Mutex
	nextID        int
	created       []models.CreateConversationRequest
	messages      map[string][]models.FlowMessage
	summaries     []models.ConversationSummary
	listErr       error
	endResult     models.SummaryResult
	endErr        error
	endedIDs      []string
	endReasons    []string
	onEnd         func()
	createErr     error
	saveErr       error
	saveCallCount int
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{messages: make(map[string][]models.FlowMessage)}
}

func (g *fakeGateway) CreateConversation(ctx context.Context, req models.CreateConversationRequest) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.createErr != nil {
		return "", g.createErr
	}
	g.nextID++
	id := fmt.Sprintf("conv-%d", g.nextID)
	g.created = append(g.created, req)
	return id, nil
}

func (g *fakeGateway) SaveMessages(ctx context.Context, conversationID string, msgs []models.FlowMessage) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.saveCallCount++
	if g.saveErr != nil {
		return g.saveErr
	}
	copied := make([]models.FlowMessage, len(msgs))
	copy(copied, msgs)
	g.messages[conversationID] = copied
	return nil
}

func (g *fakeGateway) LoadMessages(ctx context.Context, conversationID string) ([]models.FlowMessage, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.messages[conversationID], nil
}

func (g *fakeGateway) ListSummaries(ctx context.Context, userID string) ([]models.ConversationSummary, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.listErr != nil {
		return nil, g.listErr
	}
	return g.summaries, nil
}

func (g *fakeGateway) EndConversation(ctx context.Context, conversationID, userID, reason string) (models.SummaryResult, error) {
	g.mu.Lock()
	onEnd := g.onEnd
	g.endedIDs = append(g.endedIDs, conversationID)
	g.endReasons = append(g.endReasons, reason)
	result, err := g.endResult, g.endErr
	g.mu.Unlock()
	if onEnd != nil {
		onEnd()
	}
	return result, err
}

type fakeInactivity struct {
	mu       sync.Mutex
	started  []string
	stopped  []string
	stopAlls int
}

func (m *fakeInactivity) StartTracking(sessionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.started = append(m.started, sessionID)
}

func (m *fakeInactivity) StopTracking(sessionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stopped = append(m.stopped, sessionID)
}

func (m *fakeInactivity) StopAll() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stopAlls++
}

type fakeSafety struct {
	mu        sync.Mutex
	crises    []string
	suggested []string
}

func (s *fakeSafety) LogCrisisDetected(userID, characterID, detail string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.crises = append(s.crises, detail)
}

func (s *fakeSafety) LogHandoffSuggested(userID, fromCharacterID, toCharacterID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.suggested = append(s.suggested, toCharacterID)
}
