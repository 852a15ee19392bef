package config

import (
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	AppEnv         string
	HTTPAddr       string
	MigrationsPath string

	// Hosted Postgres convenience:
	// - DATABASE_URL: runtime connection (often PgBouncer/pooler)
	// - DIRECT_URL: direct connection for migrations
	DatabaseURL string
	DirectURL   string

	// PublicBaseURL is the externally reachable URL for this backend,
	// used when building signed download links.
	PublicBaseURL string

	DB DBConfig

	Auth    AuthConfig
	Storage StorageConfig
	Redis   RedisConfig
	Log     LogConfig

	// AdminWhatsApp is the operator number (digits only, country code
	// included) that booking notifications deep-link to.
	AdminWhatsApp string

	// AllowedOrigins is a comma-separated allowlist of origins allowed to
	// call the API from a browser. Example:
	//   https://app.yourmarket.com,http://localhost:5173
	AllowedOrigins []string

	// DisposableDomainsPath optionally extends the built-in disposable
	// email denylist with one domain per line.
	DisposableDomainsPath string
}

type DBConfig struct {
	Host     string
	Port     string
	Name     string
	User     string
	Password string
	SSLMode  string
}

type AuthConfig struct {
	// Secret signs bearer session tokens (HS256).
	Secret string
	// TokenTTLHours bounds session token lifetime.
	TokenTTLHours int
}

type StorageConfig struct {
	// Dir is the blob store root. Empty means the store is unconfigured
	// and attachment uploads are refused with 503.
	Dir string
	// SignSecret signs time-boxed download tokens. Falls back to the auth
	// secret when empty.
	SignSecret string
}

type RedisConfig struct {
	// Addr enables the Redis cart store. Empty falls back to the
	// in-memory store (single-instance deployments, tests).
	Addr     string
	Password string
	DB       int
}

type LogConfig struct {
	Level  string
	Format string // json | console
}

func Load() Config {
	// Convenience for local dev: load variables from .env if present.
	// In production, rely on real environment variables.
	_ = godotenv.Load()

	// Cloud Run sets PORT. Prefer it when HTTP_ADDR isn't explicitly set.
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
		PublicBaseURL:  env("PUBLIC_BASE_URL", "http://localhost:8081"),
		DB: DBConfig{
			Host:     env("DB_HOST", "localhost"),
			Port:     env("DB_PORT", "5432"),
			Name:     env("DB_NAME", "marketplace"),
			User:     env("DB_USER", "marketplace"),
			Password: env("DB_PASSWORD", "marketplace"),
			SSLMode:  env("DB_SSLMODE", "disable"),
		},
		Auth: AuthConfig{
			Secret:        os.Getenv("AUTH_SECRET"),
			TokenTTLHours: envInt("AUTH_TOKEN_TTL_HOURS", 72),
		},
		Storage: StorageConfig{
			Dir:        os.Getenv("STORAGE_DIR"),
			SignSecret: os.Getenv("STORAGE_SIGN_SECRET"),
		},
		Redis: RedisConfig{
			Addr:     os.Getenv("REDIS_ADDR"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       envInt("REDIS_DB", 0),
		},
		Log: LogConfig{
			Level:  env("LOG_LEVEL", "info"),
			Format: env("LOG_FORMAT", "json"),
		},
		AdminWhatsApp:         env("ADMIN_WHATSAPP", "15551234567"),
		AllowedOrigins:        envList("ALLOWED_ORIGINS", "http://localhost:5173,http://localhost:4173"),
		DisposableDomainsPath: os.Getenv("DISPOSABLE_DOMAINS_PATH"),
	}
}

func env(key, fallback string) string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return v
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n := 0
	for i := 0; i < len(v); i++ {
		c := v[i]
		if c < '0' || c > '9' {
			return fallback
		}
		n = n*10 + int(c-'0')
	}
	return n
}

func envList(key, fallbackCSV string) []string {
	v := os.Getenv(key)
	if v == "" {
		v = fallbackCSV
	}
	var out []string
	start := 0
	for i := 0; i <= len(v); i++ {
		if i == len(v) || v[i] == ',' {
			s := v[start:i]
			start = i + 1
			// trim spaces
			for len(s) > 0 && (s[0] == ' ' || s[0] == '\t' || s[0] == '\n' || s[0] == '\r') {
				s = s[1:]
			}
			for len(s) > 0 && (s[len(s)-1] == ' ' || s[len(s)-1] == '\t' || s[len(s)-1] == '\n' || s[len(s)-1] == '\r') {
				s = s[:len(s)-1]
			}
			if s != "" {
				out = append(out, s)
			}
		}
	}
	return out
}
