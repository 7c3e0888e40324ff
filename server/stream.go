package server

import (
	"context"
	"strings"
	"time"

	"github.com/gofiber/websocket/v2"

	"github.com/mrsingh-rishi/voice-gateway/metrics"
	"github.com/mrsingh-rishi/voice-gateway/types"
)

// how long to wait for final results after the client stops sending
const finishWait = 5 * time.Second

// liveTranscription relays one WebSocket client to one upstream live
// session: binary frames go up as audio, transcripts come back as JSON.
// A "stop" text frame or a client close ends the upload.
func (s *Server) liveTranscription(conn *websocket.Conn) {
	if s.deps.Live == nil {
		s.closeWithError(conn, "live transcription is not configured")
		return
	}

	stream, err := s.deps.Live.Connect(context.Background())
	if err != nil {
		s.log.Error().Err(err).Msg("live stt connect error")
		s.closeWithError(conn, err.Error())
		return
	}
	defer stream.Close()
	metrics.RecordSessionOpened()
	defer metrics.RecordSessionClosed()

	relayed := make(chan struct{})
	go func() {
		defer close(relayed)
		s.relayTranscripts(conn, stream.Transcripts())

		code := websocket.CloseNormalClosure
		if err := stream.Err(); err != nil {
			s.log.Error().Err(err).Msg("live stt upstream error")
			_ = conn.WriteJSON(errorEvent(err.Error()))
			code = websocket.CloseInternalServerErr
		}
		_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(code, ""))
		// the client has finishWait to answer the close before the read loop gives up
		_ = conn.SetReadDeadline(time.Now().Add(finishWait))
	}()

read:
	for {
		messageType, msg, err := conn.ReadMessage()
		if err != nil {
			break
		}
		switch messageType {
		case websocket.BinaryMessage:
			if err := stream.SendAudio(msg); err != nil {
				s.log.Warn().Err(err).Msg("live stt send error")
				break read
			}
		case websocket.TextMessage:
			if strings.EqualFold(strings.TrimSpace(string(msg)), "stop") {
				break read
			}
		}
	}

	if err := stream.Finish(); err != nil {
		s.log.Debug().Err(err).Msg("live stt finish error")
	}
	select {
	case <-relayed:
	case <-time.After(finishWait):
		// the connection is recycled once this handler returns, so the
		// relay must be done with it first
		_ = stream.Close()
		<-relayed
	}
}

func (s *Server) relayTranscripts(conn *websocket.Conn, transcripts <-chan types.Transcript) {
	for t := range transcripts {
		event := types.StreamEvent{
			Type:        types.EventTranscript,
			Text:        t.Text,
			Confidence:  t.Confidence,
			IsFinal:     t.Final,
			SpeechFinal: t.SpeechFinal,
		}
		if err := conn.WriteJSON(event); err != nil {
			// keep draining so the upstream reader is never blocked
			for range transcripts {
			}
			return
		}
	}
}

func (s *Server) closeWithError(conn *websocket.Conn, msg string) {
	_ = conn.WriteJSON(errorEvent(msg))
	_ = conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseInternalServerErr, ""))
}

func errorEvent(msg string) types.ErrorEvent {
	return types.ErrorEvent{Type: types.EventError, Error: sttErrorPrefix + msg}
}
