package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Load reads the .env file specified by VERACITY_ENV (or .env by default),
// then loads the corresponding .secret file if it exists.
// All config is flat env vars read via os.Getenv after loading.
func Load() error {
	envFile := os.Getenv("VERACITY_ENV")
	if envFile == "" {
		envFile = ".env"
	}

	// Load main env file (ignore error if file doesn't exist)
	_ = godotenv.Load(envFile)

	// Load secret sidecar if it exists
	_ = godotenv.Load(envFile + ".secret")

	return nil
}

func ServerPort() int {
	port, err := strconv.Atoi(os.Getenv("SERVER_PORT"))
	if err != nil {
		return 8080
	}
	return port
}

func ServerAddr() string {
	return fmt.Sprintf(":%d", ServerPort())
}

func DatabaseURL() string {
	return os.Getenv("DATABASE_URL")
}

// APIKey returns the API key required on authenticated routes.
// Empty means auth is disabled (local development).
func APIKey() string {
	return os.Getenv("API_KEY")
}

func OpenAIAPIKey() string {
	return os.Getenv("OPENAI_API_KEY")
}

// EmbeddingProvider returns the configured embedding provider.
// Defaults to "openai" if not set.
// Valid values: openai, mock
func EmbeddingProvider() string {
	p := os.Getenv("EMBEDDING_PROVIDER")
	if p == "" {
		return "openai"
	}
	return p
}

// EmbeddingAPIKey returns the API key for the configured embedding provider.
func EmbeddingAPIKey() string {
	switch EmbeddingProvider() {
	case "mock":
		return ""
	default:
		return OpenAIAPIKey()
	}
}

// SearchProvider returns the configured search provider.
// Defaults to "brave" if not set.
// Valid values: brave, mock
func SearchProvider() string {
	p := os.Getenv("SEARCH_PROVIDER")
	if p == "" {
		return "brave"
	}
	return p
}

func SearchAPIKey() string {
	return os.Getenv("SEARCH_API_KEY")
}

// SearchRPS returns the query-per-second budget for the search provider.
// Defaults to 1 if not set.
func SearchRPS() float64 {
	rps, err := strconv.ParseFloat(os.Getenv("SEARCH_RPS"), 64)
	if err != nil || rps <= 0 {
		return 1
	}
	return rps
}

// VerifyBatchSize returns the number of facts verified concurrently per batch.
// Defaults to 10 if not set.
func VerifyBatchSize() int {
	n, err := strconv.Atoi(os.Getenv("VERIFY_BATCH_SIZE"))
	if err != nil || n <= 0 {
		return 10
	}
	return n
}

// VerifyIntervalMinutes returns how often the background verification
// worker sweeps active investigations. Defaults to 30 if not set.
func VerifyIntervalMinutes() int {
	n, err := strconv.Atoi(os.Getenv("VERIFY_INTERVAL_MINUTES"))
	if err != nil || n <= 0 {
		return 30
	}
	return n
}

// RateLimitRPS returns requests per second limit for the HTTP API.
// Defaults to 100 if not set.
func RateLimitRPS() float64 {
	rps, err := strconv.ParseFloat(os.Getenv("RATE_LIMIT_RPS"), 64)
	if err != nil || rps <= 0 {
		return 100
	}
	return rps
}

// RateLimitBurst returns the burst size for rate limiting.
// Defaults to 20 if not set.
func RateLimitBurst() int {
	burst, err := strconv.Atoi(os.Getenv("RATE_LIMIT_BURST"))
	if err != nil || burst <= 0 {
		return 20
	}
	return burst
}

// LogLevel returns the log level (debug, info, warn, error).
// Defaults to "info" if not set.
func LogLevel() string {
	level := os.Getenv("LOG_LEVEL")
	if level == "" {
		return "info"
	}
	return level
}
