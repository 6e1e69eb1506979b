package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// LLM providers.
const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
)

type Config struct {
	// Model settings
	LLMProvider          string // gemini | openai
	GeminiAPIKey         string
	ModelName            string
	OpenAIAPIKey         string
	OpenAIModel          string
	OpenAIBaseURL        string
	MaxLLMRequests       int // maximum model requests per run (0 = unlimited)
	LLMRequestsPerMinute int
	LLMTimeout           time.Duration

	// Feed settings
	FeedsConfigPath string // empty = embedded catalog
	PrimaryWindow   time.Duration
	ExtendedWindow  time.Duration
	MaxCandidates   int
	TopN            int
	FeedTimeout     time.Duration
	RequestTimeout  time.Duration
	UserAgent       string

	// State settings
	StateBackend  string // sqlite | postgres | file
	StateDBPath   string
	StateFilePath string
	DatabaseURL   string

	// Output settings
	DigestDir  string
	ReadmePath string

	// Telegram settings (optional)
	TelegramToken  string
	TelegramChatID string

	// App settings
	Schedule             string // cron spec; empty runs once
	EnableHTTPMonitoring bool
	MonitoringPort       string
	Debug                bool
}

func Load() (*Config, error) {
	cfg := &Config{
		LLMProvider:          getEnvOrDefault("LLM_PROVIDER", ProviderGemini),
		GeminiAPIKey:         os.Getenv("GEMINI_API_KEY"),
		ModelName:            os.Getenv("MODEL_NAME"),
		OpenAIAPIKey:         os.Getenv("OPENAI_API_KEY"),
		OpenAIModel:          os.Getenv("OPENAI_MODEL"),
		OpenAIBaseURL:        os.Getenv("OPENAI_BASE_URL"),
		MaxLLMRequests:       getEnvIntOrDefault("MAX_LLM_REQUESTS", 0),
		LLMRequestsPerMinute: getEnvIntOrDefault("LLM_REQUESTS_PER_MINUTE", 15),
		LLMTimeout:           getEnvDurationOrDefault("LLM_TIMEOUT", 60*time.Second),

		FeedsConfigPath: os.Getenv("FEEDS_CONFIG_PATH"),
		PrimaryWindow:   time.Duration(getEnvIntOrDefault("PRIMARY_WINDOW_HOURS", 48)) * time.Hour,
		ExtendedWindow:  time.Duration(getEnvIntOrDefault("EXTENDED_WINDOW_HOURS", 168)) * time.Hour,
		MaxCandidates:   getEnvIntOrDefault("MAX_CANDIDATES", 10),
		TopN:            getEnvIntOrDefault("TOP_N", 3),
		FeedTimeout:     getEnvDurationOrDefault("FEED_TIMEOUT", 20*time.Second),
		RequestTimeout:  getEnvDurationOrDefault("REQUEST_TIMEOUT", 10*time.Second),
		UserAgent:       os.Getenv("USER_AGENT"),

		StateBackend:  getEnvOrDefault("STATE_BACKEND", "sqlite"),
		StateDBPath:   getEnvOrDefault("STATE_DB_PATH", "state/seen_urls.sqlite"),
		StateFilePath: getEnvOrDefault("STATE_FILE_PATH", "state/seen_urls.json"),
		DatabaseURL:   os.Getenv("DATABASE_URL"),

		DigestDir:  getEnvOrDefault("DIGEST_DIR", "digests"),
		ReadmePath: getEnvOrDefault("README_PATH", "README.md"),

		TelegramToken:  os.Getenv("TELEGRAM_TOKEN"),
		TelegramChatID: os.Getenv("TELEGRAM_CHAT_ID"),

		Schedule:             os.Getenv("SCHEDULE"),
		EnableHTTPMonitoring: os.Getenv("ENABLE_HTTP_MONITORING") == "true",
		MonitoringPort:       getEnvOrDefault("MONITORING_PORT", "8080"),
		Debug:                os.Getenv("DEBUG") == "true",
	}

	return cfg, cfg.Validate()
}

// TelegramEnabled reports whether both Telegram settings are present.
func (c *Config) TelegramEnabled() bool {
	return c.TelegramToken != "" && c.TelegramChatID != ""
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvDurationOrDefault accepts Go durations ("90s") or plain seconds ("90").
func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(value); err == nil {
		return time.Duration(secs) * time.Second
	}
	return defaultValue
}

// ValidateStore checks only the seen-store settings. Commands that never call
// a model, like the seen listing, validate with this instead of Validate.
func (c *Config) ValidateStore() error {
	switch c.StateBackend {
	case "sqlite", "file":
	case "postgres":
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required for STATE_BACKEND=postgres")
		}
	default:
		return fmt.Errorf("STATE_BACKEND must be 'sqlite', 'postgres' or 'file'")
	}
	return nil
}

func (c *Config) Validate() error {
	switch c.LLMProvider {
	case ProviderGemini:
		if c.GeminiAPIKey == "" {
			return fmt.Errorf("GEMINI_API_KEY is required")
		}
	case ProviderOpenAI:
		if c.OpenAIAPIKey == "" {
			return fmt.Errorf("OPENAI_API_KEY is required")
		}
	default:
		return fmt.Errorf("LLM_PROVIDER must be 'gemini' or 'openai'")
	}

	if err := c.ValidateStore(); err != nil {
		return err
	}

	if c.PrimaryWindow <= 0 || c.ExtendedWindow < c.PrimaryWindow {
		return fmt.Errorf("EXTENDED_WINDOW_HOURS must be >= PRIMARY_WINDOW_HOURS > 0")
	}
	if c.MaxCandidates <= 0 {
		return fmt.Errorf("MAX_CANDIDATES must be positive")
	}
	if c.TopN < 1 || c.TopN > 3 {
		return fmt.Errorf("TOP_N must be between 1 and 3")
	}
	if (c.TelegramToken == "") != (c.TelegramChatID == "") {
		return fmt.Errorf("TELEGRAM_TOKEN and TELEGRAM_CHAT_ID must be set together")
	}
	return nil
}
