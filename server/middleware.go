package server

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/mrsingh-rishi/voice-gateway/metrics"
)

// requestLogger logs one line per request at a level chosen by status and
// records the request in the HTTP metrics.
func requestLogger(log zerolog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		if err := c.Next(); err != nil {
			// render now so the logged status matches what the client gets
			if herr := c.App().ErrorHandler(c, err); herr != nil {
				_ = c.SendStatus(fiber.StatusInternalServerError)
			}
		}

		elapsed := time.Since(start)
		status := c.Response().StatusCode()
		route := c.Route().Path
		if status == fiber.StatusNotFound {
			route = "unmatched"
		}
		metrics.RecordHTTPRequest(route, c.Method(), status, elapsed)

		var event *zerolog.Event
		switch {
		case status >= fiber.StatusInternalServerError:
			event = log.Error()
		case status >= fiber.StatusBadRequest:
			event = log.Warn()
		default:
			event = log.Info()
		}
		event.
			Str("request_id", c.GetRespHeader(fiber.HeaderXRequestID)).
			Str("method", c.Method()).
			Str("path", c.Path()).
			Int("status", status).
			Dur("duration", elapsed).
			Str("client_ip", c.IP()).
			Msg("request completed")
		return nil
	}
}
