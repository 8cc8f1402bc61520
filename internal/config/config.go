package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Generator backends selectable through GENERATOR.
const (
	GeneratorStatic      = "static"
	GeneratorHuggingFace = "huggingface"
	GeneratorGemini      = "gemini"
)

// Config holds all application configuration.
type Config struct {
	ServerPort     string
	GinMode        string
	LogLevel       string
	LogFormat      string
	DatabaseURL    string
	MaxDBConns     int32
	RedisURL       string
	JWTSecret      string
	JWTExpiry      time.Duration
	AdminEmail     string
	AdminPassHash  string
	UploadDir      string
	MaxUploadBytes int64
	// AllowedOrigins controls HTTP CORS and WebSocket origin validation.
	// Empty slice means all origins are permitted (dev default).
	AllowedOrigins []string

	// Question generation.
	Generator         string
	HFAPIURL          string
	HFAPIToken        string
	HFTimeout         time.Duration
	GeminiAPIKey      string
	GeminiModel       string
	RhythmModelPath   string
	FFmpegPath        string
	DocumentTTL       time.Duration
	AnalysisCacheTTL  time.Duration
	GenerateRateLimit int
}

// Load reads configuration from environment variables with sensible defaults.
// It loads .env file if present but does not fail if missing.
func Load() *Config {
	_ = godotenv.Load() // .env is optional

	return &Config{
		ServerPort:     getEnv("SERVER_PORT", "8080"),
		GinMode:        getEnv("GIN_MODE", "debug"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		LogFormat:      getEnv("LOG_FORMAT", "pretty"),
		DatabaseURL:    getEnv("DATABASE_URL", ""),
		MaxDBConns:     int32(getEnvInt("MAX_DB_CONNS", 8)),
		RedisURL:       getEnv("REDIS_URL", ""),
		JWTSecret:      getEnv("JWT_SECRET", "change-this-to-a-secure-random-string"),
		JWTExpiry:      time.Duration(getEnvInt("JWT_EXPIRY_HOURS", 12)) * time.Hour,
		AdminEmail:     getEnv("ADMIN_EMAIL", ""),
		AdminPassHash:  getEnv("ADMIN_PASSWORD_HASH", ""),
		UploadDir:      getEnv("UPLOAD_DIR", "./uploads"),
		MaxUploadBytes: int64(getEnvInt("MAX_UPLOAD_SIZE_MB", 20)) * 1024 * 1024,
		AllowedOrigins: parseOrigins(getEnv("ALLOWED_ORIGINS", "")),

		Generator:         strings.ToLower(getEnv("GENERATOR", GeneratorStatic)),
		HFAPIURL:          getEnv("HF_API_URL", "https://api-inference.huggingface.co/models/skt/kogpt2-base-v2"),
		HFAPIToken:        getEnv("HF_API_TOKEN", ""),
		HFTimeout:         time.Duration(getEnvInt("HF_TIMEOUT_SECONDS", 60)) * time.Second,
		GeminiAPIKey:      getEnv("GEMINI_API_KEY", ""),
		GeminiModel:       getEnv("GEMINI_MODEL", "gemini-2.0-flash"),
		RhythmModelPath:   getEnv("RHYTHM_MODEL_PATH", ""),
		FFmpegPath:        getEnv("FFMPEG_PATH", "ffmpeg"),
		DocumentTTL:       time.Duration(getEnvInt("DOCUMENT_TTL_MINUTES", 60)) * time.Minute,
		AnalysisCacheTTL:  time.Duration(getEnvInt("ANALYSIS_CACHE_TTL_HOURS", 24)) * time.Hour,
		GenerateRateLimit: getEnvInt("GENERATE_RATE_LIMIT", 30),
	}
}

// HistoryEnabled reports whether generations are persisted to PostgreSQL.
func (c *Config) HistoryEnabled() bool {
	return c.DatabaseURL != ""
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

// parseOrigins splits a comma-separated origins string into a trimmed slice.
// Returns nil (allow-all) if the input is empty.
func parseOrigins(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	origins := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	return origins
}
