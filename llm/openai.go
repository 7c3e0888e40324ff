package llm

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/sashabaranov/go-openai"

	"github.com/mrsingh-rishi/voice-gateway/metrics"
	"github.com/mrsingh-rishi/voice-gateway/model"
)

const (
	ChatModel       = "llama-3.1-8b-instant"
	ChatTemperature = 0.6
	ChatMaxTokens   = 800
)

// NewGroqAPI builds an OpenAI-compatible client pointed at Groq. The same
// client serves chat completions and Whisper transcriptions. A zero timeout
// leaves calls bounded only by the request context.
func NewGroqAPI(apiKey, baseURL string, timeout time.Duration) *openai.Client {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = strings.TrimRight(baseURL, "/")
	}
	cfg.HTTPClient = &http.Client{Timeout: timeout}
	return openai.NewClientWithConfig(cfg)
}

// OpenAIClient sends a full transcript to a chat completion API and returns
// the single best reply. It holds no conversation state.
type OpenAIClient struct {
	Client      *openai.Client
	Model       string
	Temperature float32
	MaxTokens   int
}

func NewOpenAIClient(client *openai.Client) (*OpenAIClient, error) {
	if client == nil {
		return nil, errors.New("openai client is required")
	}
	return &OpenAIClient{
		Client:      client,
		Model:       ChatModel,
		Temperature: ChatTemperature,
		MaxTokens:   ChatMaxTokens,
	}, nil
}

// Complete forwards messages verbatim and returns the first choice, trimmed.
func (c *OpenAIClient) Complete(ctx context.Context, messages []model.Message) (reply string, err error) {
	defer metrics.ObserveProvider("groq", "chat", time.Now(), &err)

	resp, err := c.Client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.Model,
		Messages:    toChatMessages(messages),
		Temperature: c.Temperature,
		MaxTokens:   c.MaxTokens,
	})
	if err != nil {
		return "", errors.Wrap(err, "chat completion")
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("chat completion returned no choices")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

func toChatMessages(messages []model.Message) []openai.ChatCompletionMessage {
	out := make([]openai.ChatCompletionMessage, 0, len(messages))
	for _, m := range messages {
		out = append(out, openai.ChatCompletionMessage{Role: m.Role, Content: m.Content})
	}
	return out
}
