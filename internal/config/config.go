package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	// Service configuration
	ServiceName        string
	HTTPPort           string
	Environment        string
	LogFilePath        string
	CORSAllowedOrigins string

	// LLM configuration
	LLMProvider  string
	LLMBaseURL   string
	LLMModel     string
	LLMAPIKey    string
	LLMTimeout   time.Duration
	LLMMaxTokens int

	// Intent resolution
	ExtractionStrategy string
	ReadinessWindow    int

	// Creation API configuration
	CreationAPIURL       string
	CreationTimeout      time.Duration
	CreationAltitudeMode string

	// NATS configuration, disabled when NatsURL is empty
	NatsURL            string
	NatsRequestSubject string
	NatsEventSubject   string
	NatsTimeout        time.Duration
}

func Load() (*Config, error) {
	cfg := &Config{
		// Service settings
		ServiceName:        getEnv("SERVICE_NAME", "mission42-intent"),
		HTTPPort:           getEnv("HTTP_PORT", "3000"),
		Environment:        getEnv("GO_ENV", "development"),
		LogFilePath:        getEnv("LOG_FILE_PATH", "./logs/app.log"),
		CORSAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "*"),

		// LLM settings
		LLMProvider:  getEnv("LLM_PROVIDER", "ollama"),
		LLMBaseURL:   getEnv("LLM_BASE_URL", "http://localhost:11434"),
		LLMModel:     getEnv("LLM_MODEL", "llama3.2:latest"),
		LLMAPIKey:    getEnv("LLM_API_KEY", ""),
		LLMTimeout:   getDurationEnv("LLM_TIMEOUT", 60*time.Second),
		LLMMaxTokens: getIntEnv("LLM_MAX_TOKENS", 512),

		// Intent settings
		ExtractionStrategy: getEnv("EXTRACTION_STRATEGY", "structured"),
		ReadinessWindow:    getIntEnv("READINESS_WINDOW", 6),

		// Creation API settings
		CreationAPIURL:       getEnv("CREATION_API_URL", "http://localhost:8000/api/constellations"),
		CreationTimeout:      getDurationEnv("CREATION_TIMEOUT", 15*time.Second),
		CreationAltitudeMode: getEnv("CREATION_ALTITUDE_MODE", "array"),

		// NATS settings
		NatsURL:            getEnv("NATS_URL", ""),
		NatsRequestSubject: getEnv("NATS_REQUEST_SUBJECT", "mission42.chat.completion"),
		NatsEventSubject:   getEnv("NATS_EVENT_SUBJECT", "mission42.constellation.created"),
		NatsTimeout:        getDurationEnv("NATS_TIMEOUT", 30*time.Second),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects values the service cannot start with.
func (c *Config) Validate() error {
	switch strings.ToLower(c.LLMProvider) {
	case "ollama", "openai":
	default:
		return fmt.Errorf("config: unsupported LLM_PROVIDER %q", c.LLMProvider)
	}
	if strings.EqualFold(c.LLMProvider, "openai") && c.LLMAPIKey == "" {
		return fmt.Errorf("config: LLM_API_KEY is required for the openai provider")
	}
	if c.LLMModel == "" {
		return fmt.Errorf("config: LLM_MODEL is required")
	}

	switch strings.ToLower(c.ExtractionStrategy) {
	case "structured", "pattern":
	default:
		return fmt.Errorf("config: unsupported EXTRACTION_STRATEGY %q", c.ExtractionStrategy)
	}

	switch strings.ToLower(c.CreationAltitudeMode) {
	case "array", "scalar":
	default:
		return fmt.Errorf("config: unsupported CREATION_ALTITUDE_MODE %q", c.CreationAltitudeMode)
	}
	if c.CreationAPIURL == "" {
		return fmt.Errorf("config: CREATION_API_URL is required")
	}

	if c.LLMTimeout <= 0 || c.CreationTimeout <= 0 {
		return fmt.Errorf("config: LLM_TIMEOUT and CREATION_TIMEOUT must be positive")
	}
	if c.LLMMaxTokens <= 0 {
		return fmt.Errorf("config: LLM_MAX_TOKENS must be positive")
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func (c *Config) NatsEnabled() bool {
	return c.NatsURL != ""
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}
