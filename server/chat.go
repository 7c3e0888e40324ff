package server

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/pkg/errors"

	"github.com/mrsingh-rishi/voice-gateway/model"
)

const (
	errMissingMessages = "Missing messages"
	errInvalidMessages = "Invalid messages"
)

// chat handles POST /chat.
func (s *Server) chat(c *fiber.Ctx) error {
	var body map[string]json.RawMessage
	if err := json.Unmarshal(c.Body(), &body); err != nil || body == nil {
		return fail(c, fiber.StatusBadRequest, errMissingMessages)
	}
	raw, ok := body["messages"]
	if !ok || string(raw) == "null" {
		return fail(c, fiber.StatusBadRequest, errMissingMessages)
	}

	var req model.ChatRequest
	if err := json.Unmarshal(raw, &req.Messages); err != nil {
		return fail(c, fiber.StatusBadRequest, errInvalidMessages+": expected a list of {role, content} objects")
	}
	if len(req.Messages) == 0 {
		return fail(c, fiber.StatusBadRequest, errMissingMessages)
	}
	if err := s.validate.Struct(req); err != nil {
		return fail(c, fiber.StatusBadRequest, errInvalidMessages+": "+describeValidation(err))
	}

	reply, err := s.deps.Chat.Complete(c.UserContext(), req.Messages)
	if err != nil {
		s.log.Error().Err(err).Int("messages", len(req.Messages)).Msg("chat error")
		return fail(c, fiber.StatusInternalServerError, err.Error())
	}
	return c.JSON(model.ChatResponse{Reply: reply})
}

func describeValidation(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		field := fe.Namespace()
		if i := strings.Index(field, "."); i >= 0 {
			field = field[i+1:]
		}
		switch fe.Tag() {
		case "required":
			parts = append(parts, field+" is required")
		case "oneof":
			parts = append(parts, fmt.Sprintf("%s must be one of: %s", field, fe.Param()))
		default:
			parts = append(parts, fmt.Sprintf("%s failed %s", field, fe.Tag()))
		}
	}
	return strings.Join(parts, "; ")
}
