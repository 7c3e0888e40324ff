package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/mrsingh-rishi/voice-gateway/config"
	"github.com/mrsingh-rishi/voice-gateway/llm"
	"github.com/mrsingh-rishi/voice-gateway/logger"
	"github.com/mrsingh-rishi/voice-gateway/server"
	"github.com/mrsingh-rishi/voice-gateway/stt"
	"github.com/mrsingh-rishi/voice-gateway/tts"
)

func main() {
	// Load .env if present
	envErr := godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	if envErr != nil {
		log.Info().Msg("No .env file found, falling back to environment variables")
	}
	// Missing keys only fail the affected endpoints at request time.
	for _, warning := range cfg.Warnings() {
		log.Warn().Msg(warning)
	}

	groq := llm.NewGroqAPI(cfg.GroqAPIKey, cfg.GroqBaseURL, cfg.UpstreamTimeout)
	chat, err := llm.NewOpenAIClient(groq)
	if err != nil {
		log.Fatal().Err(err).Msg("chat client")
	}
	whisper, err := stt.NewWhisperClient(groq)
	if err != nil {
		log.Fatal().Err(err).Msg("transcription client")
	}

	deps := server.Dependencies{
		Chat:        chat,
		Speech:      tts.NewElevenLabsClient(cfg.ElevenLabsAPIKey, cfg.ElevenLabsBaseURL, cfg.UpstreamTimeout),
		Transcriber: whisper,
	}
	if cfg.LiveTranscriptionEnabled() {
		deps.Live = stt.NewDeepgramClient(cfg.DeepgramAPIKey, cfg.DeepgramListenURL, cfg.UpstreamTimeout)
	}

	app := server.New(cfg, deps, log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Info().
			Str("addr", cfg.Addr()).
			Bool("live_stt", deps.Live != nil).
			Msgf("Backend running at http://localhost:%d", cfg.Port)
		if err := app.Listen(cfg.Addr()); err != nil {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")
	if err := app.ShutdownWithTimeout(cfg.ShutdownTimeout); err != nil {
		log.Error().Err(err).Msg("forced shutdown")
	}
}
