package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	ServiceName string
	Env         string
	LogLevel    string

	ServerPort int

	DatabaseURL string
}

func Load() Config {
	return Config{
		ServiceName: EnvDefault("SERVICE_NAME", "admin-dashboard"),
		Env:         EnvDefault("APP_ENV", "development"),
		LogLevel:    os.Getenv("LOG_LEVEL"),

		ServerPort: EnvIntDefault("SERVER_PORT", 8080),

		DatabaseURL: os.Getenv("DATABASE_URL"),
	}
}

func (c Config) IsDevelopment() bool {
	return strings.EqualFold(c.Env, "development")
}

func CSV(v string) []string {
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func EnvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func EnvIntDefault(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

// EnvSecondsDefault reads a whole number of seconds.
func EnvSecondsDefault(key string, def time.Duration) time.Duration {
	n := EnvIntDefault(key, -1)
	if n < 0 {
		return def
	}
	return time.Duration(n) * time.Second
}
