package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port                string
	HTTPTimeout         time.Duration
	LogLevel            slog.Level
	MaxUploadBytes      int64
	ValidationChunkSize int
	ReportCacheTTL      time.Duration
	ImportRetries       int
}

// FromEnv loads .env.local and .env when present, then reads the
// environment. Variables already set win over file values.
func FromEnv() Config {
	// Load stops at the first missing file, so each file is tried on its own.
	_ = godotenv.Load(".env.local")
	_ = godotenv.Load(".env")
	return Config{
		Port:                envOr("PORT", "8080"),
		HTTPTimeout:         time.Duration(envInt("HTTP_TIMEOUT_SECONDS", 15)) * time.Second,
		LogLevel:            ParseLevel(os.Getenv("LOG_LEVEL")),
		MaxUploadBytes:      int64(envInt("MAX_UPLOAD_MB", 10)) << 20,
		ValidationChunkSize: envInt("VALIDATION_CHUNK_SIZE", 500),
		ReportCacheTTL:      time.Duration(envInt("REPORT_CACHE_TTL_SECONDS", 300)) * time.Second,
		ImportRetries:       envInt("IMPORT_RETRIES", 2),
	}
}

func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func envOr(k, def string) string {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	return v
}

// envInt falls back to def for unset, malformed or negative values.
func envInt(k string, def int) int {
	v, err := strconv.Atoi(strings.TrimSpace(os.Getenv(k)))
	if err != nil || v < 0 {
		return def
	}
	return v
}
