package config

import (
	"os"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	AppEnv         string
	HTTPAddr       string
	MigrationsPath string

	// Hosted Postgres convenience:
	// - DATABASE_URL: runtime connection (often a pooler)
	// - DIRECT_URL: direct connection for migrations
	DatabaseURL string
	DirectURL   string

	DB DBConfig

	// JWTSecret signs session tokens issued at login.
	JWTSecret string

	Paystack PaystackConfig

	// DocgenBaseURL is the agreement-generation service. Empty means the
	// built-in static generator is used (dev default).
	DocgenBaseURL string

	// PortalAllowedOrigins is a comma-separated allowlist of origins allowed
	// to call the public portal endpoints (token-based links shared with
	// tenants). Example:
	//   https://portal.julaaz.ng,http://localhost:5173
	PortalAllowedOrigins []string

	// Currency is the ledger currency; amounts are NGN unless overridden.
	Currency string
}

type DBConfig struct {
	Host     string
	Port     string
	Name     string
	User     string
	Password string
	SSLMode  string
}

type PaystackConfig struct {
	// SecretKey authenticates API calls (usually starts with "sk_").
	SecretKey string

	// WebhookSecret verifies inbound event signatures. Paystack signs with
	// the secret key itself; keep these separate so tests and the webhook
	// simulator can use a throwaway value.
	WebhookSecret string

	BaseURL string
}

func Load() Config {
	// Convenience for local dev: load variables from .env if present.
	// In production, rely on real environment variables.
	_ = godotenv.Load()

	// Cloud Run style: PORT wins when HTTP_ADDR isn't explicitly set.
	httpAddr := os.Getenv("HTTP_ADDR")
	if httpAddr == "" {
		if port := os.Getenv("PORT"); port != "" {
			httpAddr = ":" + port
		} else {
			httpAddr = ":8081"
		}
	}

	return Config{
		AppEnv:         env("APP_ENV", "dev"),
		HTTPAddr:       httpAddr,
		MigrationsPath: os.Getenv("MIGRATIONS_PATH"),
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		DirectURL:      os.Getenv("DIRECT_URL"),
		DB: DBConfig{
			Host:     env("DB_HOST", "localhost"),
			Port:     env("DB_PORT", "5432"),
			Name:     env("DB_NAME", "julaaz"),
			User:     env("DB_USER", "julaaz"),
			Password: env("DB_PASSWORD", "julaaz"),
			SSLMode:  env("DB_SSLMODE", "disable"),
		},
		JWTSecret: os.Getenv("JWT_SECRET"),
		Paystack: PaystackConfig{
			SecretKey:     os.Getenv("PAYSTACK_SECRET_KEY"),
			WebhookSecret: env("PAYSTACK_WEBHOOK_SECRET", os.Getenv("PAYSTACK_SECRET_KEY")),
			BaseURL:       env("PAYSTACK_BASE_URL", "https://api.paystack.co"),
		},
		DocgenBaseURL:        os.Getenv("DOCGEN_BASE_URL"),
		PortalAllowedOrigins: envList("PORTAL_ALLOWED_ORIGINS", "http://localhost:5173,http://localhost:4173"),
		Currency:             env("CURRENCY", "NGN"),
	}
}

func env(key, fallback string) string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return v
}

func envList(key, fallbackCSV string) []string {
	v := os.Getenv(key)
	if v == "" {
		v = fallbackCSV
	}
	var out []string
	for _, s := range strings.Split(v, ",") {
		s = strings.TrimSpace(s)
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}
