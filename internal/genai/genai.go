// Package genai provides GenAI-enhanced operations using the OpenAI API.
package genai

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/ConvergioEdu/StudyFlow/internal/models"
)

// chatService is the minimal surface of the chat completion API, kept small
// so tests can substitute a fake.
type chatService interface {
	New(ctx context.Context, params openai.ChatCompletionNewParams, opts ...option.RequestOption) (*openai.ChatCompletion, error)
}

// Opts holds configuration for the GenAI client.
type Opts struct {
	APIKey string
	Model  openai.ChatModel
}

// Option configures the GenAI client.
type Option func(*Opts)

// WithAPIKey sets the OpenAI API key explicitly.
func WithAPIKey(key string) Option {
	return func(o *Opts) { o.APIKey = key }
}

// WithModel overrides the chat model.
func WithModel(model openai.ChatModel) Option {
	return func(o *Opts) { o.Model = model }
}

// Client wraps the OpenAI chat completion service.
type Client struct {
	chat  chatService
	model openai.ChatModel
}

// NewClient initializes a GenAI client. The API key comes from the options
// or the OPENAI_API_KEY environment variable.
func NewClient(opts ...Option) (*Client, error) {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.APIKey == "" {
		cfg.APIKey = os.Getenv("OPENAI_API_KEY")
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY not set")
	}
	if cfg.Model == "" {
		cfg.Model = openai.ChatModelGPT4oMini
	}
	cli := openai.NewClient(option.WithAPIKey(cfg.APIKey))
	slog.Debug("GenAI.NewClient: client created", "model", cfg.Model)
	return &Client{chat: &cli.Chat.Completions, model: cfg.Model}, nil
}

// GenerateText returns the completion for a system/user prompt pair.
func (c *Client) GenerateText(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	resp, err := c.chat.New(ctx, openai.ChatCompletionNewParams{
		Model: c.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(userPrompt),
		},
	})
	if err != nil {
		return "", fmt.Errorf("chat completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no choices returned")
	}
	return resp.Choices[0].Message.Content, nil
}

const summarySystemPrompt = `You summarize tutoring conversations between a student and an educational character.
Respond with JSON only, no prose: {"summary": "<2-3 sentences in the conversation's language>", "topics": ["<topic>", ...]}.
Topics are short noun phrases, at most five.`

// SummarizeConversation produces a short summary and topic list for a
// transcript. Returns an error on an empty transcript or malformed model
// output; callers treat failures as soft.
func (c *Client) SummarizeConversation(ctx context.Context, transcript []models.FlowMessage) (models.SummaryResult, error) {
	if len(transcript) == 0 {
		return models.SummaryResult{}, fmt.Errorf("empty transcript")
	}

	var sb strings.Builder
	for _, msg := range transcript {
		if msg.Role == models.MessageRoleSystem {
			continue
		}
		sb.WriteString(string(msg.Role))
		sb.WriteString(": ")
		sb.WriteString(msg.Content)
		sb.WriteString("\n")
	}

	raw, err := c.GenerateText(ctx, summarySystemPrompt, sb.String())
	if err != nil {
		return models.SummaryResult{}, err
	}

	result, err := parseSummaryResponse(raw)
	if err != nil {
		return models.SummaryResult{}, err
	}
	slog.Debug("GenAI.SummarizeConversation: summary generated", "topics", len(result.Topics))
	return result, nil
}

// parseSummaryResponse decodes the model's JSON, tolerating markdown code
// fences around it.
func parseSummaryResponse(raw string) (models.SummaryResult, error) {
	text := strings.TrimSpace(raw)
	if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```json")
		text = strings.TrimPrefix(text, "```")
		text = strings.TrimSuffix(strings.TrimSpace(text), "```")
		text = strings.TrimSpace(text)
	}

	var result models.SummaryResult
	if err := json.Unmarshal([]byte(text), &result); err != nil {
		return models.SummaryResult{}, fmt.Errorf("failed to parse summary response: %w", err)
	}
	if result.Summary == "" {
		return models.SummaryResult{}, fmt.Errorf("summary response missing summary field")
	}
	return result, nil
}
