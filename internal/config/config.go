package config

import (
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/Skotchmaster/admin_dashboard/pkg/config"
)

const (
	defaultCacheTTL   = 5 * time.Minute
	defaultKafkaTopic = "dashboard_events"
	defaultAdminEmail = "admin@mirra.dev"
	devAdminPassword  = "admin123"
)

var defaultCORSOrigins = []string{"http://localhost:5173", "http://admindashboard_frontend:5173"}

type ServiceConfig struct {
	config.Config

	JWTSecret   []byte
	JWTIssuer   string
	JWTAudience string

	RedisAddr     string
	RedisPassword string
	CacheTTL      time.Duration

	KafkaBrokers []string
	KafkaTopic   string

	ESURL      string
	ESUser     string
	ESPassword string
	ESIndex    string

	SentryDSN string

	AdminEmail    string
	AdminPassword string

	CORSOrigins []string
}

// Load reads .env when present, then the environment. DATABASE_URL and
// JWT_SECRET are required. Outside development the admin account is only
// seeded when ADMIN_PASSWORD is set.
func Load() ServiceConfig {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("Notice: .env file not found: %v. Using system environment variables", err)
	}
	return FromEnv()
}

func FromEnv() ServiceConfig {
	cfg := ServiceConfig{
		Config: config.Load(),

		JWTSecret:   []byte(os.Getenv("JWT_SECRET")),
		JWTIssuer:   os.Getenv("JWT_ISSUER"),
		JWTAudience: os.Getenv("JWT_AUDIENCE"),

		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		CacheTTL:      config.EnvSecondsDefault("CACHE_TTL_SECONDS", defaultCacheTTL),

		KafkaBrokers: config.CSV(os.Getenv("KAFKA_BROKERS")),
		KafkaTopic:   config.EnvDefault("KAFKA_TOPIC", defaultKafkaTopic),

		ESURL:      os.Getenv("ES_URL"),
		ESUser:     os.Getenv("ES_USER"),
		ESPassword: os.Getenv("ES_PASSWORD"),
		ESIndex:    config.EnvDefault("ES_INDEX", "clients"),

		SentryDSN: os.Getenv("SENTRY_DSN"),

		AdminEmail:    config.EnvDefault("ADMIN_EMAIL", defaultAdminEmail),
		AdminPassword: os.Getenv("ADMIN_PASSWORD"),

		CORSOrigins: config.CSV(os.Getenv("CORS_ORIGINS")),
	}
	if len(cfg.CORSOrigins) == 0 {
		cfg.CORSOrigins = defaultCORSOrigins
	}
	if cfg.AdminPassword == "" && cfg.IsDevelopment() {
		cfg.AdminPassword = devAdminPassword
	}

	config.MustNonEmpty(cfg.DatabaseURL, "DATABASE_URL")
	config.MustNonEmptyBytes(cfg.JWTSecret, "JWT_SECRET")

	return cfg
}
