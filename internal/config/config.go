package config

import (
	"os"
	"strconv"
	"time"
)

// Config собирается из окружения; .env подгружается в cmd/server.
type Config struct {
	Port        string
	DatabaseURL string
	RedisURL    string
	JWTSecret   string

	// Лимит отправки: не более RateLimit сообщений за RateWindow.
	RateLimit  int
	RateWindow time.Duration

	// Окно, в течение которого не-администратор может править
	// и удалять свои сообщения.
	EditWindow time.Duration
}

func Load() *Config {
	return &Config{
		Port:        getEnv("PORT", "8080"),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		RedisURL:    os.Getenv("REDIS_URL"),
		JWTSecret:   os.Getenv("JWT_SECRET"),
		RateLimit:   getEnvInt("CHAT_RATE_LIMIT", 50),
		RateWindow:  time.Duration(getEnvInt("CHAT_RATE_WINDOW_SEC", 60)) * time.Second,
		EditWindow:  time.Duration(getEnvInt("CHAT_EDIT_WINDOW_MIN", 15)) * time.Minute,
	}
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
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}
