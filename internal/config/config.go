package config

import (
	"errors"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server    ServerConfig
	Gemini    GeminiConfig
	Extractor ExtractorConfig
	RateLimit RateLimitConfig
	Log       LogConfig
}

type ServerConfig struct {
	Port string
	Env  string
}

type GeminiConfig struct {
	APIKey   string
	Endpoint string
	Model    string
	Timeout  time.Duration
}

type ExtractorConfig struct {
	MaxFileSize       int64
	ParseTimeout      time.Duration
	RetryMaxAttempts  int
	RetryInitialDelay time.Duration
}

type RateLimitConfig struct {
	PerMinute int
	PerHour   int
}

type LogConfig struct {
	JSON  bool
	Debug bool
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found. Using environment values.")
	}

	return &Config{
		Server: ServerConfig{
			Port: getEnv("PORT", "3001"),
			Env:  getEnv("ENV", "development"),
		},
		Gemini: GeminiConfig{
			APIKey:   getEnv("GEMINI_API_KEY", ""),
			Endpoint: getEnv("GEMINI_API_URL", ""),
			Model:    getEnv("GEMINI_MODEL", "gemini-2.0-flash"),
			Timeout:  getEnvAsDuration("GEMINI_TIMEOUT", "60s"),
		},
		Extractor: ExtractorConfig{
			MaxFileSize:       getEnvAsInt64("MAX_FILE_SIZE", 52428800),
			ParseTimeout:      getEnvAsDuration("PDF_PARSE_TIMEOUT", "30s"),
			RetryMaxAttempts:  getEnvAsInt("PDF_RETRY_MAX_ATTEMPTS", 2),
			RetryInitialDelay: getEnvAsDuration("PDF_RETRY_INITIAL_DELAY", "500ms"),
		},
		RateLimit: RateLimitConfig{
			PerMinute: getEnvAsInt("RATE_LIMIT_MAX_REQUESTS", 20),
			PerHour:   getEnvAsInt("RATE_LIMIT_HOURLY_MAX", 300),
		},
		Log: LogConfig{
			JSON:  getEnvAsBool("LOG_JSON", false),
			Debug: getEnvAsBool("LOG_DEBUG", false),
		},
	}
}

// Validate fails closed: the process refuses to start without an AI
// credential rather than serving canned results for every request.
func (c *Config) Validate() error {
	if c.Gemini.APIKey == "" {
		return errors.New("GEMINI_API_KEY is required")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseInt(valueStr, 10, 64); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := getEnv(key, defaultValue)
	if duration, err := time.ParseDuration(valueStr); err == nil {
		return duration
	}
	duration, _ := time.ParseDuration(defaultValue)
	return duration
}
