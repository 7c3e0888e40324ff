package model

// Message is one speaker-tagged turn of a conversation transcript.
type Message struct {
	Role    string `json:"role" validate:"required,oneof=system user assistant"`
	Content string `json:"content"`
}

// ChatRequest is the body of POST /chat.
type ChatRequest struct {
	Messages []Message `json:"messages" validate:"dive"`
}

// ChatResponse carries the single best reply.
type ChatResponse struct {
	Reply string `json:"reply"`
}

// SpeechRequest is the body of POST /api/tts-stream.
type SpeechRequest struct {
	Text    string `json:"text"`
	VoiceID string `json:"voice_id,omitempty"`
}

// TranscriptionResponse is returned by POST /api/stt.
type TranscriptionResponse struct {
	Text string `json:"text"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

type HealthResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}
