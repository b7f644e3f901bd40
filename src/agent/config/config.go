package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config is the process-wide, read-only configuration. Built once in main
// and passed explicitly into everything that performs I/O.
type Config struct {
	Port           string
	AllowedAPIKeys []string

	// Planning / scoring model (OpenAI-compatible endpoint)
	LLMBaseURL        string
	LLMAPIKey         string
	LLMModel          string
	LLMTimeoutSeconds float64

	// Detection backends
	AITextDetectorURL   string
	MediaCheckingURL    string
	FactCheckingURL     string
	ContentSafetyURL    string
	InfoGraphURL        string
	MediaExplanationURL string

	ServiceTimeoutSeconds          float64
	ContentSafetyTimeoutSeconds    float64
	InfoGraphTimeoutSeconds        float64
	MediaExplanationTimeoutSeconds float64

	FactCheckConcurrency int

	// Optional infrastructure; empty disables the feature.
	MySQLDSN string
	RedisURL string

	CacheTTLSeconds int
}

func Load() Config {
	godotenv.Load()

	return Config{
		Port:           getEnvOrDefault("PORT", "8080"),
		AllowedAPIKeys: splitKeys(os.Getenv("ALLOWED_API_KEYS")),

		LLMBaseURL:        getEnvOrDefault("LLM_BASE_URL", "https://api.featherless.ai/v1"),
		LLMAPIKey:         os.Getenv("LLM_API_KEY"),
		LLMModel:          getEnvOrDefault("LLM_MODEL", "openai/gpt-oss-120b"),
		LLMTimeoutSeconds: envFloat("LLM_TIMEOUT_SECONDS", 60),

		AITextDetectorURL:   os.Getenv("AI_TEXT_DETECTOR_URL"),
		MediaCheckingURL:    os.Getenv("MEDIA_CHECKING_URL"),
		FactCheckingURL:     os.Getenv("FACT_CHECKING_URL"),
		ContentSafetyURL:    os.Getenv("CONTENT_SAFETY_URL"),
		InfoGraphURL:        os.Getenv("INFO_GRAPH_URL"),
		MediaExplanationURL: os.Getenv("MEDIA_EXPLANATION_URL"),

		ServiceTimeoutSeconds:          envFloat("SERVICE_TIMEOUT_SECONDS", 30),
		ContentSafetyTimeoutSeconds:    envFloat("CONTENT_SAFETY_TIMEOUT_SECONDS", 60),
		InfoGraphTimeoutSeconds:        envFloat("INFO_GRAPH_TIMEOUT_SECONDS", 60),
		MediaExplanationTimeoutSeconds: envFloat("MEDIA_EXPLANATION_TIMEOUT_SECONDS", 300),

		FactCheckConcurrency: envInt("FACT_CHECK_CONCURRENCY", 4),

		MySQLDSN: os.Getenv("MYSQL_DSN"),
		RedisURL: os.Getenv("REDIS_URL"),

		CacheTTLSeconds: envInt("CACHE_TTL_SECONDS", 900),
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func envFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f > 0 {
			return f
		}
	}
	return def
}

func envInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return def
}

func splitKeys(raw string) []string {
	var out []string
	for _, k := range strings.Split(raw, ",") {
		if k = strings.TrimSpace(k); k != "" {
			out = append(out, k)
		}
	}
	return out
}
