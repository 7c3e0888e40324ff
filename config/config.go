package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/pkg/errors"
)

// Config is read once at startup and shared read-only by every handler.
type Config struct {
	Port     int    `env:"PORT" envDefault:"5000"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
	// console or json
	LogFormat string `env:"LOG_FORMAT" envDefault:"console"`

	GroqAPIKey       string `env:"GROQ_API_KEY"`
	ElevenLabsAPIKey string `env:"ELEVENLABS_API_KEY"`
	DeepgramAPIKey   string `env:"DEEPGRAM_API_KEY"`

	GroqBaseURL       string `env:"GROQ_BASE_URL" envDefault:"https://api.groq.com/openai/v1"`
	ElevenLabsBaseURL string `env:"ELEVENLABS_BASE_URL" envDefault:"https://api.elevenlabs.io"`
	DeepgramListenURL string `env:"DEEPGRAM_LISTEN_URL" envDefault:"wss://api.deepgram.com/v1/listen"`

	MaxUploadBytes int `env:"MAX_UPLOAD_BYTES" envDefault:"26214400"`
	// Zero leaves provider calls unbounded.
	UpstreamTimeout time.Duration `env:"UPSTREAM_TIMEOUT" envDefault:"0s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`

	IndexFile string `env:"INDEX_FILE"`
	// Files under StaticDir are served at the root, next to the entry page.
	StaticDir string `env:"STATIC_DIR"`
}

// Load parses the environment into a Config.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, errors.Wrap(err, "parse env config")
	}
	if cfg.Port <= 0 || cfg.Port > 65535 {
		return nil, errors.Errorf("PORT must be between 1 and 65535, got %d", cfg.Port)
	}
	if cfg.MaxUploadBytes <= 0 {
		return nil, errors.Errorf("MAX_UPLOAD_BYTES must be positive, got %d", cfg.MaxUploadBytes)
	}
	if cfg.UpstreamTimeout < 0 {
		return nil, errors.New("UPSTREAM_TIMEOUT must not be negative")
	}
	return cfg, nil
}

// Warnings lists missing credentials. They do not stop the process; the
// affected endpoints fail at request time instead.
func (c *Config) Warnings() []string {
	var warnings []string
	if strings.TrimSpace(c.GroqAPIKey) == "" {
		warnings = append(warnings, "GROQ_API_KEY not set")
	}
	if strings.TrimSpace(c.ElevenLabsAPIKey) == "" {
		warnings = append(warnings, "ELEVENLABS_API_KEY not set")
	}
	if strings.TrimSpace(c.DeepgramAPIKey) == "" {
		warnings = append(warnings, "DEEPGRAM_API_KEY not set, live transcription disabled")
	}
	return warnings
}

// LiveTranscriptionEnabled reports whether /api/stt-stream can reach Deepgram.
func (c *Config) LiveTranscriptionEnabled() bool {
	return strings.TrimSpace(c.DeepgramAPIKey) != ""
}

// Addr returns the listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf("0.0.0.0:%d", c.Port)
}
