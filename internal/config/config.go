package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port            string
	Env             string
	LogLevel        string
	UpstreamTimeout time.Duration

	// Base URL of the POS backend, e.g. http://localhost:5000/api
	BackendURL string
	// Optional origin serving the rendered pages behind the auth gate.
	FrontendURL string

	// Origins allowed to call with credentials. "*" allows any origin without
	// credentials; empty allows no cross-origin calls.
	CORSAllowOrigins []string

	// Peers (IPs or CIDRs) whose X-Forwarded-For / X-Real-IP headers are
	// believed. Empty means the socket peer is always the client.
	TrustedProxies []string

	// Auth gate
	RejectExpiredTokens bool

	// Login throttle, per client IP. Zero disables it.
	LoginRatePerSec float64
	LoginRateBurst  int

	// Upper bound on units bought in one checkout.
	CheckoutMaxUnits int

	// Optional checkout journal
	DatabaseURL   string
	RunMigrations bool

	// Optional checkout events
	RabbitMQURL    string
	EventsExchange string
}

// Load reads configuration from the environment. A .env file in the working
// directory is loaded first; variables already set in the environment win.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		Port:            getenv("PORT", "8080"),
		Env:             getenv("APP_ENV", "development"),
		LogLevel:        getenv("LOG_LEVEL", "info"),
		UpstreamTimeout: parseDuration(getenv("UPSTREAM_TIMEOUT", "10s"), 10*time.Second),

		BackendURL:  getenv("BACKEND_URL", "http://localhost:5000/api"),
		FrontendURL: getenv("FRONTEND_URL", ""),

		CORSAllowOrigins: splitCSV(getenv("CORS_ALLOW_ORIGINS", "")),
		TrustedProxies:   splitCSV(getenv("TRUSTED_PROXIES", "")),

		RejectExpiredTokens: parseBool(getenv("AUTH_REJECT_EXPIRED", "false"), false),

		LoginRatePerSec: parseFloat(getenv("LOGIN_RATE_PER_SEC", "5"), 5),
		LoginRateBurst:  parseInt(getenv("LOGIN_RATE_BURST", "10"), 10),

		CheckoutMaxUnits: parseInt(getenv("CHECKOUT_MAX_UNITS", "10000"), 10000),

		DatabaseURL:   getenv("DATABASE_URL", ""),
		RunMigrations: parseBool(getenv("RUN_MIGRATIONS", "true"), true),

		RabbitMQURL:    getenv("RABBITMQ_URL", ""),
		EventsExchange: getenv("EVENTS_EXCHANGE", "pos.events"),
	}
}

// Production reports whether cookies must be marked Secure.
func (c Config) Production() bool {
	return strings.EqualFold(c.Env, "production")
}

func getenv(k, def string) string {
	if v := os.Getenv(k); strings.TrimSpace(v) != "" {
		return v
	}
	return def
}

func splitCSV(v string) []string {
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

func parseDuration(v string, def time.Duration) time.Duration {
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}

func parseBool(v string, def bool) bool {
	b, err := strconv.ParseBool(strings.TrimSpace(v))
	if err != nil {
		return def
	}
	return b
}

func parseInt(v string, def int) int {
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return def
	}
	return n
}

func parseFloat(v string, def float64) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil {
		return def
	}
	return f
}
