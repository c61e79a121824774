package store

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/ConvergioEdu/StudyFlow/internal/models"
)

// InMemoryStore keeps everything in process memory. Used by tests and
// single-user development runs.
type InMemoryStore struct {
	mu            sync.RWMutex
	conversations map[string]Conversation
	messages      map[string][]models.FlowMessage
	summaries     map[string]map[string]models.ConversationSummary
}

// NewInMemoryStore creates an empty in-memory store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		conversations: make(map[string]Conversation),
		messages:      make(map[string][]models.FlowMessage),
		summaries:     make(map[string]map[string]models.ConversationSummary),
	}
}

func (s *InMemoryStore) CreateConversation(conv Conversation) error {
	if conv.ID == "" {
		return fmt.Errorf("conversation id is empty")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.conversations[conv.ID]; exists {
		return fmt.Errorf("conversation %s already exists", conv.ID)
	}
	s.conversations[conv.ID] = conv
	return nil
}

func (s *InMemoryStore) GetConversation(id string) (*Conversation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	conv, ok := s.conversations[id]
	if !ok {
		return nil, nil
	}
	return &conv, nil
}

func (s *InMemoryStore) ListConversations(userID string) ([]Conversation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []Conversation
	for _, conv := range s.conversations {
		if conv.UserID == userID {
			out = append(out, conv)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	return out, nil
}

func (s *InMemoryStore) ReplaceMessages(conversationID string, msgs []models.FlowMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.conversations[conversationID]; !ok {
		return fmt.Errorf("conversation %s not found", conversationID)
	}
	copied := make([]models.FlowMessage, len(msgs))
	copy(copied, msgs)
	s.messages[conversationID] = copied

	conv := s.conversations[conversationID]
	conv.UpdatedAt = time.Now()
	s.conversations[conversationID] = conv
	return nil
}

func (s *InMemoryStore) GetMessages(conversationID string) ([]models.FlowMessage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	msgs := s.messages[conversationID]
	out := make([]models.FlowMessage, len(msgs))
	copy(out, msgs)
	return out, nil
}

func (s *InMemoryStore) SaveSummary(userID string, summary models.ConversationSummary) error {
	if summary.ID == "" {
		return fmt.Errorf("summary conversation id is empty")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	byConv, ok := s.summaries[userID]
	if !ok {
		byConv = make(map[string]models.ConversationSummary)
		s.summaries[userID] = byConv
	}
	byConv[summary.ID] = summary
	return nil
}

func (s *InMemoryStore) ListSummaries(userID string) ([]models.ConversationSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.ConversationSummary
	for _, summary := range s.summaries[userID] {
		out = append(out, summary)
	}
	sort.Slice(out, func(i, j int) bool {
		ti, tj := out[i].LastMessageAt, out[j].LastMessageAt
		switch {
		case ti == nil:
			return false
		case tj == nil:
			return true
		default:
			return ti.After(*tj)
		}
	})
	return out, nil
}

func (s *InMemoryStore) EndConversation(id string, endedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	conv, ok := s.conversations[id]
	if !ok {
		return fmt.Errorf("conversation %s not found", id)
	}
	conv.EndedAt = &endedAt
	conv.UpdatedAt = endedAt
	s.conversations[id] = conv
	return nil
}

func (s *InMemoryStore) Close() error { return nil }
