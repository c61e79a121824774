package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ConvergioEdu/StudyFlow/internal/models"
)

// DefaultHTTPTimeout bounds every gateway request.
const DefaultHTTPTimeout = 15 * time.Second

// HTTPGateway persists conversations through the StudyFlow REST API.
type HTTPGateway struct {
	baseURL string
	client  *http.Client
}

// NewHTTPGateway creates a gateway against a StudyFlow API base URL, e.g.
// "http://localhost:8080/api". A nil client gets a default with a timeout.
func NewHTTPGateway(baseURL string, client *http.Client) *HTTPGateway {
	if client == nil {
		client = &http.Client{Timeout: DefaultHTTPTimeout}
	}
	return &HTTPGateway{baseURL: strings.TrimRight(baseURL, "/"), client: client}
}

// apiEnvelope mirrors models.APIResponse with a raw result so callers can
// decode the payload into the right type.
type apiEnvelope struct {
	Status  string          `json:"status"`
	Message string          `json:"message,omitempty"`
	Result  json.RawMessage `json:"result,omitempty"`
}

func (g *HTTPGateway) do(ctx context.Context, method, path string, body, result any) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, g.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	var envelope apiEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		slog.Debug("HTTPGateway.do: server rejected request", "method", method, "path", path, "status", resp.StatusCode, "message", envelope.Message)
		return fmt.Errorf("server returned %d: %s", resp.StatusCode, envelope.Message)
	}
	if result != nil && len(envelope.Result) > 0 {
		if err := json.Unmarshal(envelope.Result, result); err != nil {
			return fmt.Errorf("failed to decode result: %w", err)
		}
	}
	return nil
}

// CreateConversation creates a server-side conversation and returns its id.
func (g *HTTPGateway) CreateConversation(ctx context.Context, req models.CreateConversationRequest) (string, error) {
	if err := req.Validate(); err != nil {
		return "", err
	}
	var result struct {
		ID string `json:"id"`
	}
	if err := g.do(ctx, http.MethodPost, "/conversations", req, &result); err != nil {
		return "", err
	}
	if result.ID == "" {
		return "", fmt.Errorf("server returned no conversation id")
	}
	return result.ID, nil
}

// SaveMessages flushes a conversation's full message history.
func (g *HTTPGateway) SaveMessages(ctx context.Context, conversationID string, msgs []models.FlowMessage) error {
	if conversationID == "" {
		return models.ErrEmptyConversationID
	}
	body := struct {
		Messages []models.FlowMessage `json:"messages"`
	}{Messages: msgs}
	return g.do(ctx, http.MethodPut, "/conversations/"+url.PathEscape(conversationID)+"/messages", body, nil)
}

// LoadMessages returns a conversation's message history in order.
func (g *HTTPGateway) LoadMessages(ctx context.Context, conversationID string) ([]models.FlowMessage, error) {
	if conversationID == "" {
		return nil, models.ErrEmptyConversationID
	}
	var msgs []models.FlowMessage
	if err := g.do(ctx, http.MethodGet, "/conversations/"+url.PathEscape(conversationID)+"/messages", nil, &msgs); err != nil {
		return nil, err
	}
	return msgs, nil
}

// ListSummaries returns the user's conversation summaries.
func (g *HTTPGateway) ListSummaries(ctx context.Context, userID string) ([]models.ConversationSummary, error) {
	if userID == "" {
		return nil, models.ErrEmptyUserID
	}
	var summaries []models.ConversationSummary
	if err := g.do(ctx, http.MethodGet, "/summaries?user_id="+url.QueryEscape(userID), nil, &summaries); err != nil {
		return nil, err
	}
	return summaries, nil
}

// EndConversation asks the server to end and summarize a conversation.
func (g *HTTPGateway) EndConversation(ctx context.Context, conversationID, userID, reason string) (models.SummaryResult, error) {
	if conversationID == "" {
		return models.SummaryResult{}, models.ErrEmptyConversationID
	}
	req := models.EndConversationRequest{UserID: userID, Reason: reason}
	var result models.SummaryResult
	if err := g.do(ctx, http.MethodPost, "/conversations/"+url.PathEscape(conversationID)+"/end", req, &result); err != nil {
		return models.SummaryResult{}, err
	}
	return result, nil
}
