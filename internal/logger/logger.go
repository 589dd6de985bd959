package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

type Config struct {
	Encoding string `envconfig:"ENCODING" default:"console"`
	Level    string `envconfig:"LEVEL" default:"info"`
}

// New builds the process logger tagged with app. It panics on an unknown
// encoding or level so misconfiguration fails at startup.
func New(app string, cfg *Config) *slog.Logger {
	return NewWithWriter(app, cfg, os.Stderr)
}

func NewWithWriter(app string, cfg *Config, writer io.Writer) *slog.Logger {
	if cfg == nil {
		cfg = &Config{}
	}
	encoding := strings.ToLower(strings.TrimSpace(cfg.Encoding))
	if encoding == "" {
		encoding = "console"
	}
	levelName := cfg.Level
	if strings.TrimSpace(levelName) == "" {
		levelName = "info"
	}

	opts := &slog.HandlerOptions{Level: parseLevel(levelName)}

	var handler slog.Handler
	switch encoding {
	case "json":
		handler = slog.NewJSONHandler(writer, opts)
	case "console":
		handler = slog.NewTextHandler(writer, opts)
	default:
		panic(fmt.Errorf("invalid logger config: encoding %s is not supported", cfg.Encoding))
	}

	return slog.New(handler).With("app", app)
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		panic(fmt.Errorf("invalid logger config: level %s is not supported", level))
	}
}
