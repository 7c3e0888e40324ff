package server

import (
	"io"

	"github.com/gofiber/fiber/v2"

	"github.com/mrsingh-rishi/voice-gateway/model"
)

const (
	errMissingAudio = "Missing audio file"
	sttErrorPrefix  = "STT error: "
)

// transcribe handles POST /api/stt with the upload in form field "audio".
func (s *Server) transcribe(c *fiber.Ctx) error {
	header, err := c.FormFile("audio")
	if err != nil {
		return fail(c, fiber.StatusBadRequest, errMissingAudio)
	}

	file, err := header.Open()
	if err != nil {
		s.log.Error().Err(err).Msg("stt upload open error")
		return fail(c, fiber.StatusInternalServerError, sttErrorPrefix+err.Error())
	}
	defer file.Close()

	audio, err := io.ReadAll(file)
	if err != nil {
		s.log.Error().Err(err).Msg("stt upload read error")
		return fail(c, fiber.StatusInternalServerError, sttErrorPrefix+err.Error())
	}

	text, err := s.deps.Transcriber.Transcribe(c.UserContext(), audio, header.Filename)
	if err != nil {
		s.log.Error().Err(err).Int("bytes", len(audio)).Msg("stt error")
		return fail(c, fiber.StatusInternalServerError, sttErrorPrefix+err.Error())
	}
	return c.JSON(model.TranscriptionResponse{Text: text})
}
