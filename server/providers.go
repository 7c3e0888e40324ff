package server

import (
	"context"
	"io"

	"github.com/mrsingh-rishi/voice-gateway/model"
	"github.com/mrsingh-rishi/voice-gateway/stt"
)

//go:generate mockgen -destination=../mocks/providers.go -package=mocks github.com/mrsingh-rishi/voice-gateway/server ChatCompleter,SpeechSynthesizer,Transcriber,LiveTranscriber

// ChatCompleter returns the best reply for a full conversation transcript.
type ChatCompleter interface {
	Complete(ctx context.Context, messages []model.Message) (string, error)
}

// SpeechSynthesizer opens a stream of encoded audio for text.
type SpeechSynthesizer interface {
	StreamSpeech(ctx context.Context, text, voiceID string) (io.ReadCloser, error)
}

// Transcriber turns a complete audio upload into text.
type Transcriber interface {
	Transcribe(ctx context.Context, audio []byte, filename string) (string, error)
}

// LiveTranscriber opens streaming transcription sessions.
type LiveTranscriber interface {
	Connect(ctx context.Context) (stt.LiveStream, error)
}

// Dependencies are the provider clients the handlers forward to. Live may be
// nil, which disables /api/stt-stream.
type Dependencies struct {
	Chat        ChatCompleter
	Speech      SpeechSynthesizer
	Transcriber Transcriber
	Live        LiveTranscriber
}
