package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Port            string
	UpstreamTimeout time.Duration

	// Upstream base URLs
	AuthURL     string
	ProductsURL string
	SearchURL   string

	SessionTTL           time.Duration
	SessionSweepInterval time.Duration
	SessionCookieSecure  bool

	CORSAllowOrigins []string

	// LogMode is "production" or "development".
	LogMode string

	// Optional. Without a database and a broker, checkout events are not published.
	DatabaseDSN   string
	RunMigrations bool
	RabbitMQURL   string
}

func Load() Config {
	return Config{
		Port:            getenv("PORT", "8080"),
		UpstreamTimeout: parseDuration(getenv("UPSTREAM_TIMEOUT", "10s"), 10*time.Second),

		AuthURL:     getenv("AUTH_URL", "http://localhost:8081"),
		ProductsURL: getenv("PRODUCTS_URL", "http://localhost:8082"),
		SearchURL:   getenv("SEARCH_URL", "http://localhost:8083"),

		SessionTTL:           parseDuration(getenv("SESSION_TTL", "30m"), 30*time.Minute),
		SessionSweepInterval: parseDuration(getenv("SESSION_SWEEP_INTERVAL", "1m"), time.Minute),
		SessionCookieSecure:  parseBool(getenv("SESSION_COOKIE_SECURE", "false"), false),

		CORSAllowOrigins: splitCSV(getenv("CORS_ALLOW_ORIGINS", "http://localhost:4200")),

		LogMode: strings.ToLower(getenv("LOG_MODE", "production")),

		DatabaseDSN:   getenv("DATABASE_DSN", ""),
		RunMigrations: parseBool(getenv("RUN_MIGRATIONS", "true"), true),
		RabbitMQURL:   getenv("RABBITMQ_URL", ""),
	}
}

// EventsEnabled reports whether both the sequence store and the broker are configured.
func (c Config) EventsEnabled() bool {
	return c.DatabaseDSN != "" && c.RabbitMQURL != ""
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
	if len(out) == 0 {
		return []string{"*"}
	}
	return out
}

func parseDuration(v string, def time.Duration) time.Duration {
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
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
