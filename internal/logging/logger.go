package logging

import (
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"marketplace/pkg/config"
)

// New constructs a zerolog logger from config. Defaults to JSON at info
// level on stdout when fields are empty.
func New(cfg config.LogConfig, appEnv string) zerolog.Logger {
	level := zerolog.InfoLevel
	if parsed, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(cfg.Level))); err == nil {
		level = parsed
	}

	var out = zerolog.New(os.Stdout)
	if strings.ToLower(strings.TrimSpace(cfg.Format)) == "console" {
		out = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339})
	}

	zerolog.TimeFieldFormat = time.RFC3339Nano
	return out.
		Level(level).
		With().
		Timestamp().
		Str("app", "marketplace-api").
		Str("env", appEnv).
		Logger()
}
