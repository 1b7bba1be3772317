package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds application configuration.
type Config struct {
	Port                string
	CORSAllowOrigin     []string
	DatabaseURL         string
	Env                 string
	APIKey              string
	InferenceBaseURL    string
	InferenceModel      string
	InferenceTimeout    time.Duration
	ResponseCacheTTL    time.Duration
	HealthCheckInterval time.Duration
	MaxBatchWorkers     int
}

// Load reads configuration from environment variables with sensible defaults.
func Load() Config {
	// Best-effort load of local env files for dev convenience.
	loadEnvFiles(".env", "cmd/.env")

	env := normalizeEnv(getEnv("ENV", "dev"))
	dbURL := os.Getenv("DATABASE_URL")

	if env == "production" && dbURL == "" {
		log.Printf("DATABASE_URL is required in production")
	}

	return Config{
		Port:                getEnv("PORT", "8080"),
		CORSAllowOrigin:     splitAndTrim(getEnv("CORS_ALLOW_ORIGINS", "http://localhost:5173")),
		DatabaseURL:         dbURL,
		Env:                 env,
		APIKey:              getEnv("API_KEY", ""),
		InferenceBaseURL:    strings.TrimRight(getEnv("INFERENCE_BASE_URL", "http://localhost:11434"), "/"),
		InferenceModel:      getEnv("LLM_MODEL", ""),
		InferenceTimeout:    getEnvSeconds("INFERENCE_TIMEOUT_SECONDS", 30),
		ResponseCacheTTL:    getEnvSeconds("INFERENCE_CACHE_TTL_SECONDS", 3600),
		HealthCheckInterval: getEnvSeconds("HEALTH_CHECK_INTERVAL_SECONDS", 30),
		MaxBatchWorkers:     getEnvInt("MAX_BATCH_WORKERS", 5),
	}
}

func getEnv(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

func getEnvInt(key string, def int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil || parsed <= 0 {
		log.Printf("invalid %s=%q, using default %d", key, raw, def)
		return def
	}
	return parsed
}

func getEnvSeconds(key string, defSeconds int) time.Duration {
	return time.Duration(getEnvInt(key, defSeconds)) * time.Second
}

func splitAndTrim(raw string) []string {
	parts := strings.Split(raw, ",")
	var out []string
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func normalizeEnv(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "production", "prod":
		return "production"
	case "staging":
		return "staging"
	case "local":
		return "local"
	case "development", "dev":
		return "dev"
	default:
		return "dev"
	}
}
