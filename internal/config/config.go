package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
)

const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
)

type Config struct {
	Port               int
	DatabaseURL        string
	LogLevel           string
	LLMProvider        string
	OpenAIAPIKey       string
	OpenAIBaseURL      string
	ExtractModel       string
	GenerateModel      string
	AnthropicAPIKey    string
	AnthropicModel     string
	AnthropicBaseURL   string
	NatsURL            string
	NatsToken          string
	JWTSecret          string
	ExpertiseLimit     int
	VoiceThreshold     float64
	ExpertiseThreshold float64
}

func Load() Config {
	return Config{
		Port:               envInt("CADENCE_PORT", 8760),
		DatabaseURL:        envStr("DATABASE_URL", ""),
		LogLevel:           envStr("LOG_LEVEL", "info"),
		LLMProvider:        strings.ToLower(envStr("LLM_PROVIDER", ProviderOpenAI)),
		OpenAIAPIKey:       envStr("OPENAI_API_KEY", ""),
		OpenAIBaseURL:      envStr("OPENAI_BASE_URL", ""),
		ExtractModel:       envStr("CADENCE_EXTRACT_MODEL", "gpt-4o-mini"),
		GenerateModel:      envStr("CADENCE_GENERATE_MODEL", "gpt-4o"),
		AnthropicAPIKey:    envStr("ANTHROPIC_API_KEY", ""),
		AnthropicModel:     envStr("ANTHROPIC_MODEL", "claude-sonnet-4-20250514"),
		AnthropicBaseURL:   envStr("ANTHROPIC_BASE_URL", ""),
		NatsURL:            envStr("NATS_URL", ""),
		NatsToken:          envStr("NATS_TOKEN", ""),
		JWTSecret:          envStr("JWT_SECRET", ""),
		ExpertiseLimit:     envInt("CADENCE_EXPERTISE_LIMIT", 12),
		VoiceThreshold:     envFloat("CADENCE_VOICE_THRESHOLD", 0.38),
		ExpertiseThreshold: envFloat("CADENCE_EXPERTISE_THRESHOLD", 0.58),
	}
}

// Validate reports every setting the service cannot start without.
func (c Config) Validate() error {
	var errs []error
	if c.DatabaseURL == "" {
		errs = append(errs, errors.New("DATABASE_URL is required"))
	}
	if c.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET is required"))
	}
	switch c.LLMProvider {
	case ProviderOpenAI:
		if c.OpenAIAPIKey == "" {
			errs = append(errs, errors.New("OPENAI_API_KEY is required when LLM_PROVIDER=openai"))
		}
	case ProviderAnthropic:
		if c.AnthropicAPIKey == "" {
			errs = append(errs, errors.New("ANTHROPIC_API_KEY is required when LLM_PROVIDER=anthropic"))
		}
	default:
		errs = append(errs, errors.New("LLM_PROVIDER must be openai or anthropic"))
	}
	if !inUnitRange(c.VoiceThreshold) || !inUnitRange(c.ExpertiseThreshold) {
		errs = append(errs, errors.New("similarity thresholds must be in (0, 1]"))
	}
	return errors.Join(errs...)
}

func inUnitRange(f float64) bool {
	return f > 0 && f <= 1
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}
