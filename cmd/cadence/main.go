package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/MikeSquared-Agency/cadence/internal/anthropic"
	"github.com/MikeSquared-Agency/cadence/internal/api"
	"github.com/MikeSquared-Agency/cadence/internal/config"
	"github.com/MikeSquared-Agency/cadence/internal/consolidate"
	"github.com/MikeSquared-Agency/cadence/internal/extractor"
	"github.com/MikeSquared-Agency/cadence/internal/hermes"
	"github.com/MikeSquared-Agency/cadence/internal/llm"
	"github.com/MikeSquared-Agency/cadence/internal/openai"
	"github.com/MikeSquared-Agency/cadence/internal/prompt"
	"github.com/MikeSquared-Agency/cadence/internal/service"
	"github.com/MikeSquared-Agency/cadence/internal/similarity"
	"github.com/MikeSquared-Agency/cadence/internal/store"
)

func main() {
	envErr := godotenv.Load()

	cfg := config.Load()
	setupLogging(cfg.LogLevel)

	if envErr != nil && !errors.Is(envErr, os.ErrNotExist) {
		slog.Warn("failed to read .env", "error", envErr)
	}

	slog.Info("cadence starting", "port", cfg.Port, "provider", cfg.LLMProvider)

	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Database
	db, err := store.New(ctx, cfg.DatabaseURL)
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	slog.Info("database connected")

	// Text generation
	extractLLM, generateLLM := providers(cfg)

	// NATS/Hermes (optional; without it nothing is published and transcripts
	// only arrive over HTTP)
	var events service.Publisher
	var hermesClient *hermes.Client
	if cfg.NatsURL != "" {
		hermesClient, err = hermes.NewClient(ctx, cfg.NatsURL, cfg.NatsToken, slog.Default())
		if err != nil {
			slog.Error("failed to connect to NATS", "error", err)
			os.Exit(1)
		}
		defer hermesClient.Close()
		events = hermesClient
		slog.Info("NATS connected", "url", cfg.NatsURL)
	} else {
		slog.Warn("NATS_URL not set, running without event bus")
	}

	matcher := similarity.NewMatcher(similarity.Thresholds{
		Voice:     cfg.VoiceThreshold,
		Expertise: cfg.ExpertiseThreshold,
	})
	svc := service.New(service.Deps{
		Store:          db,
		Extractor:      extractor.New(extractLLM, slog.Default()),
		Consolidator:   consolidate.New(matcher, consolidate.NewLLMDecider(extractLLM), db, slog.Default()),
		Matcher:        matcher,
		Builder:        prompt.NewBuilder(prompt.DefaultTables()),
		Generator:      generateLLM,
		Events:         events,
		ExpertiseLimit: cfg.ExpertiseLimit,
	}, slog.Default())

	if hermesClient != nil {
		if err := hermesClient.Subscribe(hermes.SubjectTranscriptStored, svc.HandleTranscriptStored); err != nil {
			slog.Error("failed to subscribe to transcript events", "error", err)
			os.Exit(1)
		}
	}

	// HTTP API
	srv := api.NewServer(cfg.Port, svc, api.NewAuthenticator(cfg.JWTSecret), db, slog.Default())
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("HTTP server error", "error", err)
			cancel()
		}
	}()

	slog.Info("cadence ready", "port", cfg.Port)

	// Graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sigCh:
	case <-ctx.Done():
	}
	slog.Info("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Warn("HTTP shutdown incomplete", "error", err)
	}
	if hermesClient != nil {
		if err := hermesClient.Drain(); err != nil {
			slog.Warn("NATS drain failed", "error", err)
		}
	}
	cancel()
	slog.Info("cadence stopped")
}

// providers returns the models used for extraction and merge decisions and
// for script generation. Config has already been validated.
func providers(cfg config.Config) (extract, generate llm.Provider) {
	if cfg.LLMProvider == config.ProviderAnthropic {
		c := anthropic.NewClient(cfg.AnthropicAPIKey, cfg.AnthropicModel)
		c.SetBaseURL(cfg.AnthropicBaseURL)
		slog.Info("anthropic client ready", "model", cfg.AnthropicModel)
		return c, c
	}

	extractClient := openai.NewClient(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, cfg.ExtractModel)
	generateClient := openai.NewClient(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, cfg.GenerateModel)
	slog.Info("openai clients ready", "extract_model", extractClient.Model(), "generate_model", generateClient.Model())
	return extractClient, generateClient
}

func setupLogging(level string) {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl})
	slog.SetDefault(slog.New(handler))
}
