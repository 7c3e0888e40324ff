package stt

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/pkg/errors"

	"github.com/mrsingh-rishi/voice-gateway/metrics"
	"github.com/mrsingh-rishi/voice-gateway/types"
)

const (
	LiveModel = "nova-2"

	closeStreamMessage = `{"type":"CloseStream"}`
	writeWait          = 10 * time.Second
)

// LiveStream is one open live transcription session.
type LiveStream interface {
	// SendAudio forwards one chunk of encoded audio.
	SendAudio(chunk []byte) error
	// Finish asks the provider to flush pending results and end the stream.
	Finish() error
	// Transcripts is closed once the provider side of the stream ends.
	Transcripts() <-chan types.Transcript
	// Err reports why Transcripts closed; nil after a clean close.
	Err() error
	Close() error
}

// resultsMessage is the subset of a Deepgram live "Results" frame we relay.
type resultsMessage struct {
	Type        string `json:"type"`
	IsFinal     bool   `json:"is_final"`
	SpeechFinal bool   `json:"speech_final"`
	Channel     struct {
		Alternatives []struct {
			Transcript string  `json:"transcript"`
			Confidence float64 `json:"confidence"`
		} `json:"alternatives"`
	} `json:"channel"`
}

// DeepgramClient opens live transcription sessions against Deepgram's
// streaming WebSocket API.
type DeepgramClient struct {
	APIKey   string
	Endpoint string
	Model    string
	Dialer   *websocket.Dialer
}

func NewDeepgramClient(apiKey, endpoint string, handshakeTimeout time.Duration) *DeepgramClient {
	dialer := *websocket.DefaultDialer
	if handshakeTimeout > 0 {
		dialer.HandshakeTimeout = handshakeTimeout
	}
	return &DeepgramClient{
		APIKey:   apiKey,
		Endpoint: endpoint,
		Model:    LiveModel,
		Dialer:   &dialer,
	}
}

// Connect dials Deepgram and starts reading results in the background.
func (dg *DeepgramClient) Connect(ctx context.Context) (stream LiveStream, err error) {
	defer metrics.ObserveProvider("deepgram", "live_connect", time.Now(), &err)

	u, err := url.Parse(dg.Endpoint)
	if err != nil {
		return nil, errors.Wrap(err, "deepgram endpoint")
	}
	q := u.Query()
	q.Set("model", dg.Model)
	q.Set("punctuate", "true")
	q.Set("smart_format", "true")
	q.Set("interim_results", "true")
	u.RawQuery = q.Encode()

	header := http.Header{"Authorization": {"Token " + dg.APIKey}}
	conn, resp, err := dg.Dialer.DialContext(ctx, u.String(), header)
	if err != nil {
		if resp != nil {
			return nil, errors.Wrapf(err, "deepgram dial returned %s", resp.Status)
		}
		return nil, errors.Wrap(err, "deepgram dial")
	}

	session := &LiveSession{
		conn:        conn,
		transcripts: make(chan types.Transcript),
		done:        make(chan struct{}),
	}
	go session.readLoop()
	return session, nil
}

// LiveSession pairs one Deepgram connection with a transcript channel.
type LiveSession struct {
	conn        *websocket.Conn
	transcripts chan types.Transcript

	writeMu   sync.Mutex
	closeOnce sync.Once
	done      chan struct{}

	errMu sync.Mutex
	err   error
}

func (s *LiveSession) SendAudio(chunk []byte) error {
	if len(chunk) == 0 {
		return nil
	}
	return s.write(websocket.BinaryMessage, chunk)
}

func (s *LiveSession) Finish() error {
	return s.write(websocket.TextMessage, []byte(closeStreamMessage))
}

func (s *LiveSession) Transcripts() <-chan types.Transcript {
	return s.transcripts
}

func (s *LiveSession) Err() error {
	s.errMu.Lock()
	defer s.errMu.Unlock()
	return s.err
}

func (s *LiveSession) Close() error {
	var err error
	s.closeOnce.Do(func() {
		close(s.done)
		err = s.conn.Close()
	})
	return err
}

func (s *LiveSession) write(messageType int, data []byte) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := s.conn.WriteMessage(messageType, data); err != nil {
		return errors.Wrap(err, "deepgram write")
	}
	return nil
}

func (s *LiveSession) readLoop() {
	defer close(s.transcripts)
	for {
		_, message, err := s.conn.ReadMessage()
		if err != nil {
			s.finishWith(err)
			return
		}

		var result resultsMessage
		if err := json.Unmarshal(message, &result); err != nil {
			continue
		}
		if result.Type != "Results" || len(result.Channel.Alternatives) == 0 {
			continue
		}
		alt := result.Channel.Alternatives[0]
		if alt.Transcript == "" {
			continue
		}

		select {
		case s.transcripts <- types.Transcript{
			Text:        alt.Transcript,
			Confidence:  alt.Confidence,
			Final:       result.IsFinal,
			SpeechFinal: result.SpeechFinal,
		}:
		case <-s.done:
			return
		}
	}
}

func (s *LiveSession) finishWith(err error) {
	select {
	case <-s.done:
		return
	default:
	}
	if websocket.IsCloseError(err, websocket.CloseNormalClosure) {
		return
	}
	s.errMu.Lock()
	s.err = errors.Wrap(err, "deepgram read")
	s.errMu.Unlock()
}
