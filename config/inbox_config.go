package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// generateConsumerID creates a unique consumer ID using hostname and PID
func generateConsumerID() string {
	hostname, _ := os.Hostname()
	if hostname == "" {
		hostname = "inbox"
	}
	return fmt.Sprintf("%s-%d", hostname, os.Getpid())
}

type Config struct {
	Port        string
	Environment string

	// Database
	DatabaseURL string
	RedisURL    string

	// OpenAI
	OpenAIAPIKey   string
	LLMModel       string
	LLMMaxTokens   int
	LLMTemperature float64
	LLMTimeoutSec  int

	// Embeddings
	EmbeddingModel     string
	SearchMinScore     float64
	SearchDefaultLimit int

	// Reply suggestions
	ReplyPriorityThreshold float64
	NoReplyPatterns        []string

	// Platform relay (outbound send bridge)
	PlatformRelayURL        string
	PlatformRelayTimeoutSec int

	// Consumer (Redis Stream)
	ConsumerID         string
	ConsumerGroup      string
	ConsumerBatchSize  int
	ConsumerBlockMS    int
	ConsumerMaxRetries int
	AnalyzeStream      string

	// Persona cache
	PersonaCacheTTLMin int

	// Rate limiting
	RateLimitPerSecond int
	RateLimitBurst     int

	// CORS
	AllowedOrigins []string
}

func Load() (*Config, error) {
	return &Config{
		Port:        getEnv("PORT", "8080"),
		Environment: getEnv("ENV", "development"),

		// Database
		DatabaseURL: getEnv("DATABASE_URL", ""),
		RedisURL:    getEnv("REDIS_URL", ""),

		// OpenAI
		OpenAIAPIKey:   getEnv("OPENAI_API_KEY", ""),
		LLMModel:       getEnv("LLM_MODEL", "gpt-4o-mini"),
		LLMMaxTokens:   getEnvInt("LLM_MAX_TOKENS", 1024),
		LLMTemperature: getEnvFloat("LLM_TEMPERATURE", 0.3),
		LLMTimeoutSec:  getEnvInt("LLM_TIMEOUT_SEC", 30),

		// Embeddings
		EmbeddingModel:     getEnv("EMBEDDING_MODEL", "text-embedding-ada-002"),
		SearchMinScore:     getEnvFloat("SEARCH_MIN_SCORE", 0.7),
		SearchDefaultLimit: getEnvInt("SEARCH_DEFAULT_LIMIT", 10),

		// Reply suggestions
		ReplyPriorityThreshold: getEnvFloat("REPLY_PRIORITY_THRESHOLD", 0.3),
		NoReplyPatterns: getEnvSlice("NO_REPLY_PATTERNS", []string{
			"no-reply", "noreply", "no_reply",
			"donotreply", "do-not-reply", "do_not_reply",
			"notifications", "automated", "mailer-daemon", "postmaster",
		}),

		// Platform relay
		PlatformRelayURL:        getEnv("PLATFORM_RELAY_URL", ""),
		PlatformRelayTimeoutSec: getEnvInt("PLATFORM_RELAY_TIMEOUT_SEC", 15),

		// Consumer
		ConsumerID:         getEnv("CONSUMER_ID", generateConsumerID()),
		ConsumerGroup:      getEnv("CONSUMER_GROUP", "inbox-analyzers"),
		ConsumerBatchSize:  getEnvInt("CONSUMER_BATCH_SIZE", 10),
		ConsumerBlockMS:    getEnvInt("CONSUMER_BLOCK_MS", 5000),
		ConsumerMaxRetries: getEnvInt("CONSUMER_MAX_RETRIES", 3),
		AnalyzeStream:      getEnv("ANALYZE_STREAM", "inbox:analyze"),

		// Persona cache
		PersonaCacheTTLMin: getEnvInt("PERSONA_CACHE_TTL_MIN", 30),

		// Rate limiting
		RateLimitPerSecond: getEnvInt("RATE_LIMIT_PER_SECOND", 20),
		RateLimitBurst:     getEnvInt("RATE_LIMIT_BURST", 40),

		// CORS
		AllowedOrigins: getEnvSlice("ALLOWED_ORIGINS", []string{"http://localhost:3000"}),
	}, nil
}

// Validate checks that required settings are present
func (c *Config) Validate() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if c.RedisURL == "" {
		return fmt.Errorf("REDIS_URL is required")
	}
	return nil
}

// IsProduction reports whether the service runs in production
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// IsDevelopment reports whether the service runs in development
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// LLMTimeout returns the LLM request timeout as a duration
func (c *Config) LLMTimeout() time.Duration {
	return time.Duration(c.LLMTimeoutSec) * time.Second
}

// PersonaCacheTTL returns the persona snapshot cache TTL as a duration
func (c *Config) PersonaCacheTTL() time.Duration {
	return time.Duration(c.PersonaCacheTTLMin) * time.Minute
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvSlice(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		parts := strings.Split(value, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				out = append(out, trimmed)
			}
		}
		if len(out) > 0 {
			return out
		}
	}
	return defaultValue
}
