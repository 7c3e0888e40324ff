package stt

import (
	"bytes"
	"context"
	"path"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/sashabaranov/go-openai"

	"github.com/mrsingh-rishi/voice-gateway/metrics"
)

const (
	WhisperModel = "whisper-large-v3"
	// browsers record webm/opus, and the upstream infers the container from the name
	DefaultFilename = "audio.webm"
)

// WhisperClient transcribes a complete audio upload through an
// OpenAI-compatible /audio/transcriptions endpoint.
type WhisperClient struct {
	Client *openai.Client
	Model  string
}

func NewWhisperClient(client *openai.Client) (*WhisperClient, error) {
	if client == nil {
		return nil, errors.New("openai client is required")
	}
	return &WhisperClient{Client: client, Model: WhisperModel}, nil
}

// Transcribe sends audio as-is; format validation is left to the provider.
func (c *WhisperClient) Transcribe(ctx context.Context, audio []byte, filename string) (text string, err error) {
	defer metrics.ObserveProvider("groq", "stt", time.Now(), &err)

	resp, err := c.Client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    c.Model,
		FilePath: UploadName(filename),
		Reader:   bytes.NewReader(audio),
	})
	if err != nil {
		return "", errors.Wrap(err, "transcription")
	}
	return resp.Text, nil
}

// UploadName keeps the client's filename when it carries an extension and
// falls back to DefaultFilename otherwise.
func UploadName(filename string) string {
	name := path.Base(strings.ReplaceAll(strings.TrimSpace(filename), `\`, "/"))
	ext := path.Ext(name)
	if name == "." || name == "/" || ext == "" || ext == name {
		return DefaultFilename
	}
	return name
}
