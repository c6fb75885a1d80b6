package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port      string
	APIPrefix string

	// Database
	DBDriver    string // "sqlite" or "postgres"
	DatabaseURL string
	SQLitePath  string
	DBLogLevel  string

	CORSOrigins []string

	// Optional bearer auth, disabled when AuthSecret is empty
	AuthSecret      string
	AuthTokenExpiry time.Duration

	// AI provider
	AIProvider      string
	OllamaBaseURL   string
	OllamaModel     string
	OllamaAPIKey    string
	GeminiApiKey    string
	GeminiModel     string
	AnthropicAPIKey string
	AnthropicModel  string
	AITimeout       time.Duration // 0 means the model call is not bounded
	AILockTasks     bool
}

func Load() *Config {
	// Load .env file if it exists
	_ = godotenv.Load()

	return &Config{
		Port:            getEnv("PORT", "5000"),
		APIPrefix:       strings.TrimSuffix(getEnv("API_PREFIX", ""), "/"),
		DBDriver:        getEnv("DB_DRIVER", "sqlite"),
		DatabaseURL:     getEnv("DATABASE_URL", ""),
		SQLitePath:      getEnv("SQLITE_PATH", "tasks.db"),
		DBLogLevel:      getEnv("DB_LOG_LEVEL", "warn"),
		CORSOrigins:     splitList(getEnv("CORS_ORIGINS", "http://localhost:3000")),
		AuthSecret:      getEnv("AUTH_SECRET", ""),
		AuthTokenExpiry: getDuration("AUTH_TOKEN_EXPIRY", 30*24*time.Hour),
		AIProvider:      getEnv("AI_PROVIDER", "ollama"),
		OllamaBaseURL:   getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
		OllamaModel:     getEnv("OLLAMA_MODEL", "gemma3:4b"),
		OllamaAPIKey:    getEnv("OLLAMA_API_KEY", ""),
		GeminiApiKey:    getEnv("GEMINI_API_KEY", ""),
		GeminiModel:     getEnv("GEMINI_MODEL", "gemini-2.5-flash"),
		AnthropicAPIKey: getEnv("ANTHROPIC_API_KEY", ""),
		AnthropicModel:  getEnv("ANTHROPIC_MODEL", "claude-sonnet-4-20250514"),
		AITimeout:       getDuration("AI_TIMEOUT", 0),
		AILockTasks:     getBool("AI_LOCK_TASKS", true),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getBool(key string, defaultValue bool) bool {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.ParseBool(v); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
