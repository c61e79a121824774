package genai

import (
	"context"
	"errors"
	"testing"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/ConvergioEdu/StudyFlow/internal/models"
)

type fakeChatService struct {
	content string
	err     error
	lastReq openai.ChatCompletionNewParams
}

func (f *fakeChatService) New(ctx context.Context, params openai.ChatCompletionNewParams, opts ...option.RequestOption) (*openai.ChatCompletion, error) {
	f.lastReq = params
	if f.err != nil {
		return nil, f.err
	}
	return &openai.ChatCompletion{
		Choices: []openai.ChatCompletionChoice{
			{Message: openai.ChatCompletionMessage{Content: f.content}},
		},
	}, nil
}

func testTranscript() []models.FlowMessage {
	return []models.FlowMessage{
		{Role: models.MessageRoleSystem, Content: "internal greeting"},
		{Role: models.MessageRoleUser, Content: "Non capisco le frazioni"},
		{Role: models.MessageRoleAssistant, Content: "Partiamo da un esempio con la pizza."},
	}
}

func TestSummarizeConversation(t *testing.T) {
	fake := &fakeChatService{content: `{"summary": "Ripasso delle frazioni con esempi concreti.", "topics": ["frazioni"]}`}
	c := &Client{chat: fake, model: openai.ChatModelGPT4oMini}

	got, err := c.SummarizeConversation(context.Background(), testTranscript())
	if err != nil {
		t.Fatalf("SummarizeConversation: %v", err)
	}
	if got.Summary == "" || len(got.Topics) != 1 || got.Topics[0] != "frazioni" {
		t.Errorf("result = %+v", got)
	}
}

func TestSummarizeConversationStripsCodeFences(t *testing.T) {
	fake := &fakeChatService{content: "```json\n{\"summary\": \"Ok.\", \"topics\": []}\n```"}
	c := &Client{chat: fake, model: openai.ChatModelGPT4oMini}

	got, err := c.SummarizeConversation(context.Background(), testTranscript())
	if err != nil {
		t.Fatalf("SummarizeConversation: %v", err)
	}
	if got.Summary != "Ok." {
		t.Errorf("summary = %q", got.Summary)
	}
}

func TestSummarizeConversationEmptyTranscript(t *testing.T) {
	c := &Client{chat: &fakeChatService{}, model: openai.ChatModelGPT4oMini}
	if _, err := c.SummarizeConversation(context.Background(), nil); err == nil {
		t.Error("expected error for empty transcript")
	}
}

func TestSummarizeConversationPropagatesAPIError(t *testing.T) {
	fake := &fakeChatService{err: errors.New("rate limited")}
	c := &Client{chat: fake, model: openai.ChatModelGPT4oMini}
	if _, err := c.SummarizeConversation(context.Background(), testTranscript()); err == nil {
		t.Error("expected error from API failure")
	}
}

func TestSummarizeConversationMalformedJSON(t *testing.T) {
	fake := &fakeChatService{content: "here is your summary!"}
	c := &Client{chat: fake, model: openai.ChatModelGPT4oMini}
	if _, err := c.SummarizeConversation(context.Background(), testTranscript()); err == nil {
		t.Error("expected error for malformed response")
	}
}

func TestNewClientRequiresAPIKey(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	if _, err := NewClient(); err == nil {
		t.Error("expected error when no API key is configured")
	}
}
