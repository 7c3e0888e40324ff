package types

// Transcript is one recognition result from a live transcription session.
type Transcript struct {
	Text        string
	Confidence  float64
	Final       bool
	SpeechFinal bool
}

// StreamEvent is the JSON frame written back to a live transcription client.
// Transcript frames always carry confidence and both finality flags.
type StreamEvent struct {
	Type        string  `json:"type"`
	Text        string  `json:"text,omitempty"`
	Confidence  float64 `json:"confidence"`
	IsFinal     bool    `json:"is_final"`
	SpeechFinal bool    `json:"speech_final"`
	Error       string  `json:"error,omitempty"`
}

// ErrorEvent is the frame sent before a live session is closed on failure.
type ErrorEvent struct {
	Type  string `json:"type"`
	Error string `json:"error"`
}

const (
	EventTranscript = "transcript"
	EventError      = "error"
)
