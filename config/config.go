package config

import (
	"log"
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	Port           string
	DatabaseURL    string // Supabase Postgres connection string
	ServiceSecret  string // shared secret expected in X-Service-Secret
	AuthAdminURL   string // identity provider admin API base URL
	AuthServiceKey string
	GeminiAPIKey   string
	GeminiModel    string
	ResendAPIKey   string
	MailFrom       string
	MailFallbackTo string // test inbox used when the sender domain is unverified
}

func Load() Config {
	_ = godotenv.Load()
	cfg := Config{
		Port:           get("PORT", "8080"),
		DatabaseURL:    must("DATABASE_URL"),
		ServiceSecret:  get("SERVICE_SECRET", ""),
		AuthAdminURL:   get("AUTH_ADMIN_URL", ""),
		AuthServiceKey: get("AUTH_SERVICE_KEY", ""),
		GeminiAPIKey:   get("GEMINI_API_KEY", ""),
		GeminiModel:    get("GEMINI_MODEL", "gemini-2.5-pro"),
		ResendAPIKey:   get("RESEND_API_KEY", ""),
		MailFrom:       get("MAIL_FROM", "onboarding@resend.dev"),
		MailFallbackTo: get("MAIL_FALLBACK_TO", ""),
	}
	return cfg
}

func get(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func must(k string) string {
	v := os.Getenv(k)
	if v == "" {
		log.Fatalf("missing required env: %s", k)
	}
	return v
}
