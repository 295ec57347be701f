package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/smartspec/build-advisor/internal/domain/constants"
)

// Config application configuration
type Config struct {
	GeminiAPIKey      string
	GeminiModel       string
	GenerationTimeout time.Duration

	HTTPAddr string

	DatabaseURL             string
	PostgresConnectAttempts int
	PostgresConnectDelay    time.Duration
	HistoryLimit            int

	TelegramToken string

	LogLevel  string
	LogFormat string
}

// Load reads .env (when present) and the environment. The API key is not
// required here; a missing key is reported on the first generation call.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		GeminiAPIKey:  firstEnv("GEMINI_API_KEY", "API_KEY"),
		GeminiModel:   getEnv("GEMINI_MODEL", constants.GeminiModelName),
		HTTPAddr:      getEnv("HTTP_ADDR", constants.DefaultHTTPAddr),
		DatabaseURL:   strings.TrimSpace(os.Getenv("DATABASE_URL")),
		TelegramToken: strings.TrimSpace(os.Getenv("TELEGRAM_BOT_TOKEN")),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		LogFormat:     getEnv("LOG_FORMAT", "json"),
	}

	var err error
	timeoutSec, err := getEnvInt("GENERATION_TIMEOUT_SECONDS", int(constants.DefaultGenerationTimeout/time.Second))
	if err != nil {
		return nil, err
	}
	if timeoutSec <= 0 {
		return nil, fmt.Errorf("GENERATION_TIMEOUT_SECONDS must be positive, got %d", timeoutSec)
	}
	cfg.GenerationTimeout = time.Duration(timeoutSec) * time.Second

	if cfg.PostgresConnectAttempts, err = getEnvInt("POSTGRES_CONNECT_MAX_ATTEMPTS", constants.PostgresConnectAttempts); err != nil {
		return nil, err
	}
	delaySec, err := getEnvInt("POSTGRES_CONNECT_RETRY_SECONDS", int(constants.PostgresConnectDelay/time.Second))
	if err != nil {
		return nil, err
	}
	cfg.PostgresConnectDelay = time.Duration(delaySec) * time.Second

	if cfg.HistoryLimit, err = getEnvInt("HISTORY_LIMIT", constants.DefaultHistoryLimit); err != nil {
		return nil, err
	}

	return cfg, nil
}

// TelegramEnabled bot runs only when a token is configured
func (c *Config) TelegramEnabled() bool {
	return !isEmptyOrDisabled(c.TelegramToken)
}

func getEnv(key, defaultValue string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue
	}
	return value
}

func firstEnv(keys ...string) string {
	for _, key := range keys {
		if value := strings.TrimSpace(os.Getenv(key)); value != "" {
			return value
		}
	}
	return ""
}

func getEnvInt(key string, defaultValue int) (int, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func isEmptyOrDisabled(value string) bool {
	value = strings.TrimSpace(value)
	if value == "" {
		return true
	}
	return strings.EqualFold(value, "disabled")
}
