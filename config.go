package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port               string
	JwtSecret          string
	DatabasePath       string
	WordsFile          string
	LogLevel           string
	AllowedOrigins     []string
	CleanupGrace       time.Duration
	RoomTTL            time.Duration
	SweepInterval      time.Duration
	RateLimitPerMinute int
}

func MustLoadConfig() *Config {
	godotenv.Load()
	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		panic("JWT_SECRET is not provided!")
	}
	return &Config{
		Port:               getEnv("PORT", "5000"),
		JwtSecret:          jwtSecret,
		DatabasePath:       getEnv("DATABASE_PATH", "./data/leaderboard.db"),
		WordsFile:          os.Getenv("WORDS_FILE"),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		AllowedOrigins:     splitList(getEnv("ALLOWED_ORIGINS", "*")),
		CleanupGrace:       mustDuration("CLEANUP_GRACE", 30*time.Second),
		RoomTTL:            mustDuration("ROOM_TTL", 2*time.Hour),
		SweepInterval:      mustDuration("SWEEP_INTERVAL", time.Minute),
		RateLimitPerMinute: mustInt("RATE_LIMIT_PER_MINUTE", 60),
	}
}

func getEnv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func mustDuration(k string, def time.Duration) time.Duration {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		panic(fmt.Sprintf("%s must be a positive duration, got %q", k, v))
	}
	return d
}

func mustInt(k string, def int) int {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		panic(fmt.Sprintf("%s must be a positive integer, got %q", k, v))
	}
	return n
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
