package tts

import (
	"context"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/pkg/errors"

	"github.com/mrsingh-rishi/voice-gateway/metrics"
)

const (
	DefaultVoiceID = "EXAVITQu4vr4xnSDxMaL"
	TurboModelID   = "eleven_turbo_v2"
	OutputFormat   = "mp3_44100_128"

	streamPath = "/v1/text-to-speech/{voice_id}/stream"
	// upper bound on how much of an error body is copied into the error text
	maxErrorBody = 4 << 10
)

type speechPayload struct {
	Text    string `json:"text"`
	ModelID string `json:"model_id"`
}

// ElevenLabsClient requests synthesized speech and hands back the audio
// stream as it arrives.
type ElevenLabsClient struct {
	APIKey  string
	ModelID string
	client  *resty.Client
}

// NewElevenLabsClient builds a client against baseURL. A non-zero timeout
// bounds the wait for response headers only, so long audio keeps streaming.
func NewElevenLabsClient(apiKey, baseURL string, timeout time.Duration) *ElevenLabsClient {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.ResponseHeaderTimeout = timeout

	client := resty.New().
		SetTransport(transport).
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetHeader("xi-api-key", apiKey).
		SetHeader("Accept", "audio/mpeg")

	return &ElevenLabsClient{
		APIKey:  apiKey,
		ModelID: TurboModelID,
		client:  client,
	}
}

// StreamSpeech starts synthesis of text with voiceID (DefaultVoiceID when
// empty). The caller must close the returned body. Non-2xx responses are
// returned as errors before any audio is handed out.
func (c *ElevenLabsClient) StreamSpeech(ctx context.Context, text, voiceID string) (body io.ReadCloser, err error) {
	defer metrics.ObserveProvider("elevenlabs", "tts", time.Now(), &err)

	if voiceID == "" {
		voiceID = DefaultVoiceID
	}

	resp, err := c.client.R().
		SetContext(ctx).
		SetPathParam("voice_id", voiceID).
		SetQueryParam("output_format", OutputFormat).
		SetBody(speechPayload{Text: text, ModelID: c.ModelID}).
		SetDoNotParseResponse(true).
		Post(streamPath)
	if err != nil {
		return nil, errors.Wrap(err, "elevenlabs request")
	}

	raw := resp.RawBody()
	if resp.IsError() {
		detail := ""
		if raw != nil {
			b, _ := io.ReadAll(io.LimitReader(raw, maxErrorBody))
			raw.Close()
			detail = strings.TrimSpace(string(b))
		}
		return nil, errors.Errorf("elevenlabs returned %s: %s", resp.Status(), detail)
	}
	if raw == nil {
		return nil, errors.New("elevenlabs returned an empty body")
	}
	return raw, nil
}
