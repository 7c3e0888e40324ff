package server

import (
	"bufio"
	"encoding/json"
	"io"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/valyala/fasthttp"

	"github.com/mrsingh-rishi/voice-gateway/model"
)

const (
	errMissingText = "Missing text"
	audioMIME      = "audio/mpeg"
	relayChunkSize = 16 << 10
)

// speech handles POST /api/tts-stream. A body that does not decode is
// treated like an empty one.
func (s *Server) speech(c *fiber.Ctx) error {
	var req model.SpeechRequest
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		req = model.SpeechRequest{}
	}
	if req.Text == "" {
		return fail(c, fiber.StatusBadRequest, errMissingText)
	}

	audio, err := s.deps.Speech.StreamSpeech(c.UserContext(), req.Text, req.VoiceID)
	if err != nil {
		s.log.Error().Err(err).Str("voice_id", req.VoiceID).Msg("tts stream error")
		return fail(c, fiber.StatusInternalServerError, err.Error())
	}

	c.Set(fiber.HeaderContentType, audioMIME)
	c.Context().SetBodyStreamWriter(relayAudio(audio, s.log))
	return nil
}

// relayAudio copies the upstream audio to the client, flushing each chunk
// as it arrives. It stops when either side ends and always closes audio.
func relayAudio(audio io.ReadCloser, log zerolog.Logger) fasthttp.StreamWriter {
	return func(w *bufio.Writer) {
		defer audio.Close()

		buf := make([]byte, relayChunkSize)
		var relayed int64
		for {
			n, rerr := audio.Read(buf)
			if n > 0 {
				if _, err := w.Write(buf[:n]); err != nil {
					log.Debug().Err(err).Int64("bytes", relayed).Msg("tts client went away")
					return
				}
				if err := w.Flush(); err != nil {
					log.Debug().Err(err).Int64("bytes", relayed).Msg("tts client went away")
					return
				}
				relayed += int64(n)
			}
			if rerr == io.EOF {
				return
			}
			if rerr != nil {
				log.Error().Err(rerr).Int64("bytes", relayed).Msg("tts upstream read error")
				return
			}
		}
	}
}
