// internal/config/config.go
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// Config is read once at startup from the environment (and .env via godotenv).
type Config struct {
	Port     string
	LogLevel logrus.Level

	// AllowedOrigins are host patterns accepted by the websocket origin check.
	AllowedOrigins []string
	// ReadLimit caps the size of a single inbound websocket message in bytes.
	ReadLimit int64
	// OutboxSize is the per-connection buffer of pending outbound events.
	OutboxSize int

	RedisEnabled bool
	RedisAddr    string
	RedisDB      int
	QueueName    string

	DatabaseEnabled bool
	DatabaseURL     string

	TokenTTL string

	HistorianBatchSize int
	HistorianFlush     time.Duration
}

// Load reads every setting, applying defaults for anything unset or malformed.
func Load() Config {
	level, err := logrus.ParseLevel(getEnv("LOG_LEVEL", "info"))
	if err != nil {
		level = logrus.InfoLevel
	}

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" && os.Getenv("PG_HOST") != "" {
		dbURL = "postgres://" + os.Getenv("POSTGRES_USER") + ":" + os.Getenv("POSTGRES_PASSWORD") +
			"@" + os.Getenv("PG_HOST") + ":" + getEnv("PG_PORT", "5432") + "/" + os.Getenv("PG_DATABASE")
	}

	return Config{
		Port:     getEnv("PORT", "8080"),
		LogLevel: level,

		AllowedOrigins: splitList(getEnv("ALLOWED_ORIGINS", "localhost:*,127.0.0.1:*")),
		ReadLimit:      int64(getEnvInt("WS_READ_LIMIT", 4096)),
		OutboxSize:     getEnvInt("WS_OUTBOX_SIZE", 64),

		RedisEnabled: getEnvBool("REDIS_ENABLED", true),
		RedisAddr:    getEnv("REDIS_ADDR", "localhost:6379"),
		RedisDB:      getEnvInt("REDIS_DB", 0),
		QueueName:    getEnv("HISTORIAN_QUEUE_NAME", "sweeper_game_records"),

		DatabaseEnabled: dbURL != "",
		DatabaseURL:     dbURL,

		TokenTTL: getEnv("TOKEN_EXPIRE_TIME", "72h"),

		HistorianBatchSize: getEnvInt("HISTORIAN_BATCH_SIZE", 20),
		HistorianFlush:     time.Duration(getEnvInt("HISTORIAN_FLUSH_MS", 500)) * time.Millisecond,
	}
}

func getEnv(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

func getEnvInt(key string, def int) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return def
	}
	return v
}

func getEnvBool(key string, def bool) bool {
	v, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return def
	}
	return v
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
