package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	// Server
	Port                  string
	Env                   string
	LogFile               string
	RequestTimeoutSeconds int
	MaxUploadMB           int

	// Generative model
	LLMProvider         string
	LLMConcurrentReqs   int
	GeminiAPIKey        string
	GeminiProModel      string
	GeminiFlashModel    string
	OpenAIAPIKey        string
	OpenAIBaseURL       string
	OpenAIProModel      string
	OpenAIFlashModel    string
	AnthropicAPIKey     string
	AnthropicProModel   string
	AnthropicFlashModel string

	// YouTube Data API
	YouTubeAPIKey string

	// Redis (optional, stage events)
	RedisURL string

	// Tracing
	OtelEnabled      bool
	OtelEndpoint     string
	OtelSamplerRatio float64

	// Frontend
	FrontendURL string
}

func Load() *Config {
	// Load .env file if it exists
	godotenv.Load()

	cfg := &Config{
		Port:                  getEnvOrDefault("PORT", "8080"),
		Env:                   getEnvOrDefault("ENV", "development"),
		LogFile:               getEnvOrDefault("LOG_FILE", ""),
		RequestTimeoutSeconds: getEnvAsIntOrDefault("REQUEST_TIMEOUT_SECONDS", 120),
		MaxUploadMB:           getEnvAsIntOrDefault("MAX_UPLOAD_MB", 25),
		LLMProvider:           strings.ToLower(getEnvOrDefault("LLM_PROVIDER", "gemini")),
		LLMConcurrentReqs:     getEnvAsIntOrDefault("LLM_CONCURRENT_REQUESTS", 5),
		GeminiProModel:        getEnvOrDefault("GEMINI_PRO_MODEL", "gemini-2.5-pro"),
		GeminiFlashModel:      getEnvOrDefault("GEMINI_FLASH_MODEL", "gemini-2.5-flash"),
		OpenAIBaseURL:         getEnvOrDefault("OPENAI_BASE_URL", ""),
		OpenAIProModel:        getEnvOrDefault("OPENAI_PRO_MODEL", "gpt-4o"),
		OpenAIFlashModel:      getEnvOrDefault("OPENAI_FLASH_MODEL", "gpt-4o-mini"),
		AnthropicProModel:     getEnvOrDefault("ANTHROPIC_PRO_MODEL", "claude-sonnet-4-20250514"),
		AnthropicFlashModel:   getEnvOrDefault("ANTHROPIC_FLASH_MODEL", "claude-haiku-4-5-20251001"),
		YouTubeAPIKey:         getEnvOrDefault("YOUTUBE_API_KEY", ""),
		RedisURL:              getEnvOrDefault("REDIS_URL", ""),
		OtelEnabled:           getEnvAsBoolOrDefault("OTEL_ENABLED", false),
		OtelEndpoint:          getEnvOrDefault("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
		OtelSamplerRatio:      getEnvAsFloatOrDefault("OTEL_SAMPLER_RATIO", 0.1),
		FrontendURL:           getEnvOrDefault("FRONTEND_URL", "http://localhost:3000"),
	}

	// Only the selected provider's key is required.
	switch cfg.LLMProvider {
	case "gemini":
		cfg.GeminiAPIKey = mustGetEnv("GEMINI_API_KEY")
	case "openai":
		cfg.OpenAIAPIKey = mustGetEnv("OPENAI_API_KEY")
	case "anthropic":
		cfg.AnthropicAPIKey = mustGetEnv("ANTHROPIC_API_KEY")
	case "mock":
	default:
		panic(fmt.Sprintf("unknown LLM_PROVIDER %q (want gemini, openai, anthropic or mock)", cfg.LLMProvider))
	}
	if cfg.GeminiAPIKey == "" {
		// Still used for OCR and audio transcription when another provider generates text.
		cfg.GeminiAPIKey = getEnvOrDefault("GEMINI_API_KEY", "")
	}

	return cfg
}

func mustGetEnv(key string) string {
	val := os.Getenv(key)
	if val == "" {
		panic(fmt.Sprintf("required environment variable %s is not set", key))
	}
	return val
}

func getEnvOrDefault(key, defaultVal string) string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func getEnvAsIntOrDefault(key string, defaultVal int) int {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}
	return n
}

func getEnvAsFloatOrDefault(key string, defaultVal float64) float64 {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	f, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return defaultVal
	}
	return f
}

func getEnvAsBoolOrDefault(key string, defaultVal bool) bool {
	val := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	switch val {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		return defaultVal
	}
}
