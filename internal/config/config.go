package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/terraincognita07/fortuna/internal/cache"
	"github.com/terraincognita07/fortuna/internal/db"
	"github.com/terraincognita07/fortuna/internal/errorreport"
	"github.com/terraincognita07/fortuna/internal/logger"
)

const (
	EnvPrefix          = "FORTUNA"
	minSecretKeyLength = 32
)

var (
	ErrSecretKeyMissing     = errors.New("FORTUNA_SECRET_KEY is required")
	ErrSecretKeyPlaceholder = errors.New("FORTUNA_SECRET_KEY uses a placeholder value")
	ErrSecretKeyTooShort    = fmt.Errorf("FORTUNA_SECRET_KEY must be at least %d characters", minSecretKeyLength)
	ErrInvalidPort          = errors.New("FORTUNA_PORT must be between 1 and 65535")
	ErrDatabaseURLMissing   = errors.New("FORTUNA_DATABASE_URL is required for the postgres driver")
)

var insecureSecretPlaceholders = []string{
	"change_me_in_production",
	"replace_with_at_least_32_random_characters",
	"secret",
}

type Config struct {
	Port            string             `envconfig:"PORT" default:"8080"`
	SecretKey       string             `envconfig:"SECRET_KEY"`
	DBDriver        string             `envconfig:"DB_DRIVER" default:"sqlite"`
	DBPath          string             `envconfig:"DB_PATH"`
	DatabaseURL     string             `envconfig:"DATABASE_URL"`
	DefaultLanguage string             `envconfig:"DEFAULT_LANGUAGE" default:"en"`
	Timezone        string             `envconfig:"TZ" default:"UTC"`
	CookieSecure    bool               `envconfig:"COOKIE_SECURE" default:"false"`
	TemplateDir     string             `envconfig:"TEMPLATE_DIR"`
	LocalesDir      string             `envconfig:"LOCALES_DIR"`
	StaticDir       string             `envconfig:"STATIC_DIR"`
	Cache           cache.Config       `envconfig:"CACHE"`
	Sentry          errorreport.Config `envconfig:"SENTRY"`
	Log             logger.Config      `envconfig:"LOG"`
}

// Load reads an optional .env file and then FORTUNA_* variables. The
// returned config has defaults filled in but is not validated.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{}
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return Config{}, fmt.Errorf("load config: %w", err)
	}
	cfg.applyPathDefaults()
	return cfg, nil
}

func (cfg *Config) applyPathDefaults() {
	if strings.TrimSpace(cfg.DBPath) == "" {
		cfg.DBPath = filepath.Join("data", "fortuna.db")
	}
	if strings.TrimSpace(cfg.TemplateDir) == "" {
		cfg.TemplateDir = filepath.Join("internal", "templates")
	}
	if strings.TrimSpace(cfg.LocalesDir) == "" {
		cfg.LocalesDir = filepath.Join("internal", "i18n", "locales")
	}
	if strings.TrimSpace(cfg.StaticDir) == "" {
		cfg.StaticDir = filepath.Join("web", "static")
	}
}

// Validate checks the settings the HTTP server cannot run without.
func (cfg Config) Validate() error {
	if _, err := ValidateSecretKey(cfg.SecretKey); err != nil {
		return err
	}
	if _, err := ValidatePort(cfg.Port); err != nil {
		return err
	}
	return cfg.ValidateDatabase()
}

// ValidateDatabase is the subset CLI commands need.
func (cfg Config) ValidateDatabase() error {
	switch strings.ToLower(strings.TrimSpace(cfg.DBDriver)) {
	case "", db.DriverSQLite:
		return nil
	case db.DriverPostgres:
		if strings.TrimSpace(cfg.DatabaseURL) == "" {
			return ErrDatabaseURLMissing
		}
		return nil
	default:
		return fmt.Errorf("unsupported FORTUNA_DB_DRIVER %q", cfg.DBDriver)
	}
}

func (cfg Config) DatabaseOptions() db.Options {
	return db.Options{
		Driver: cfg.DBDriver,
		Path:   cfg.DBPath,
		DSN:    cfg.DatabaseURL,
	}
}

// Location falls back to UTC when TZ names no known zone.
func (cfg Config) Location() (*time.Location, error) {
	location, err := time.LoadLocation(strings.TrimSpace(cfg.Timezone))
	if err != nil {
		return time.UTC, fmt.Errorf("invalid FORTUNA_TZ %q: %w", cfg.Timezone, err)
	}
	return location, nil
}

func ValidateSecretKey(raw string) (string, error) {
	secret := strings.TrimSpace(raw)
	if secret == "" {
		return "", ErrSecretKeyMissing
	}
	for _, placeholder := range insecureSecretPlaceholders {
		if strings.EqualFold(secret, placeholder) {
			return "", ErrSecretKeyPlaceholder
		}
	}
	if len(secret) < minSecretKeyLength {
		return "", ErrSecretKeyTooShort
	}
	return secret, nil
}

func ValidatePort(raw string) (string, error) {
	port := strings.TrimSpace(raw)
	if port == "" {
		port = "8080"
	}
	value, err := strconv.Atoi(port)
	if err != nil || value < 1 || value > 65535 {
		return "", ErrInvalidPort
	}
	return port, nil
}
