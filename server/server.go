package server

import (
	_ "embed"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/mrsingh-rishi/voice-gateway/config"
	"github.com/mrsingh-rishi/voice-gateway/model"
)

//go:embed web/index.html
var indexHTML []byte

type Server struct {
	cfg       *config.Config
	deps      Dependencies
	log       zerolog.Logger
	validate  *validator.Validate
	indexPath string
}

// New builds the fiber app with every route registered.
func New(cfg *config.Config, deps Dependencies, log zerolog.Logger) *fiber.App {
	s := &Server{
		cfg:      cfg,
		deps:     deps,
		log:      log,
		validate: newValidator(),
	}
	s.indexPath = indexPath(cfg)

	app := fiber.New(fiber.Config{
		AppName:               "voice-gateway",
		BodyLimit:             cfg.MaxUploadBytes,
		DisableStartupMessage: true,
		ErrorHandler:          errorHandler,
	})

	app.Use(requestid.New(requestid.Config{Generator: uuid.NewString}))
	app.Use(requestLogger(log))
	app.Use(recover.New())
	app.Use(cors.New())

	app.Get("/", s.index)
	app.Get("/health", s.health)
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	app.Post("/chat", s.chat)
	app.Post("/api/tts-stream", s.speech)
	app.Post("/api/stt", s.transcribe)

	app.Use("/api/stt-stream", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/api/stt-stream", websocket.New(s.liveTranscription))

	// last, so API routes win; misses fall through to the 404 handler
	if cfg.StaticDir != "" {
		app.Static("/", cfg.StaticDir)
	}

	return app
}

func (s *Server) health(c *fiber.Ctx) error {
	return c.JSON(model.HealthResponse{Status: "ok", Message: "Backend running"})
}

func (s *Server) index(c *fiber.Ctx) error {
	if s.indexPath != "" {
		return c.SendFile(s.indexPath)
	}
	c.Type("html", "utf-8")
	return c.Send(indexHTML)
}

// indexPath picks the entry page on disk: INDEX_FILE, then index.html in
// STATIC_DIR. Empty means the embedded page.
func indexPath(cfg *config.Config) string {
	if cfg.IndexFile != "" {
		return cfg.IndexFile
	}
	if cfg.StaticDir == "" {
		return ""
	}
	path := filepath.Join(cfg.StaticDir, "index.html")
	if _, err := os.Stat(path); err != nil {
		return ""
	}
	return path
}

// errorHandler renders framework errors (unknown route, oversized body,
// missing upgrade, panics) in the same {"error": ...} shape as the handlers.
func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
	}
	return c.Status(code).JSON(model.ErrorResponse{Error: err.Error()})
}

func fail(c *fiber.Ctx, status int, msg string) error {
	return c.Status(status).JSON(model.ErrorResponse{Error: msg})
}

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}
