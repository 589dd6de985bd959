package config

import (
	"errors"
	"testing"
	"time"
)

func TestValidateSecretKey(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantErr error
	}{
		{name: "empty", raw: "", wantErr: ErrSecretKeyMissing},
		{name: "insecure placeholder", raw: "change_me_in_production", wantErr: ErrSecretKeyPlaceholder},
		{name: "example placeholder", raw: "replace_with_at_least_32_random_characters", wantErr: ErrSecretKeyPlaceholder},
		{name: "too short", raw: "too-short-secret", wantErr: ErrSecretKeyTooShort},
	}
	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			if _, err := ValidateSecretKey(testCase.raw); !errors.Is(err, testCase.wantErr) {
				t.Fatalf("expected %v, got %v", testCase.wantErr, err)
			}
		})
	}

	valid := "0123456789abcdef0123456789abcdef"
	secret, err := ValidateSecretKey("  " + valid + " ")
	if err != nil {
		t.Fatalf("expected valid secret, got error: %v", err)
	}
	if secret != valid {
		t.Fatalf("expected %q, got %q", valid, secret)
	}
}

func TestValidatePort(t *testing.T) {
	port, err := ValidatePort("")
	if err != nil || port != "8080" {
		t.Fatalf("expected default port 8080, got %q (%v)", port, err)
	}
	if port, err := ValidatePort("9090"); err != nil || port != "9090" {
		t.Fatalf("expected port 9090, got %q (%v)", port, err)
	}
	for _, raw := range []string{"0", "70000", "not-a-number"} {
		if _, err := ValidatePort(raw); !errors.Is(err, ErrInvalidPort) {
			t.Fatalf("expected ErrInvalidPort for %q, got %v", raw, err)
		}
	}
}

func TestLoadReadsPrefixedEnvironment(t *testing.T) {
	t.Setenv("FORTUNA_PORT", "9191")
	t.Setenv("FORTUNA_SECRET_KEY", "0123456789abcdef0123456789abcdef")
	t.Setenv("FORTUNA_DB_DRIVER", "postgres")
	t.Setenv("FORTUNA_DATABASE_URL", "postgres://fortuna@localhost/fortuna")
	t.Setenv("FORTUNA_CACHE_DRIVER", "redis")
	t.Setenv("FORTUNA_CACHE_TTL", "90s")
	t.Setenv("FORTUNA_CACHE_REDIS_ADDR", "cache:6379")
	t.Setenv("FORTUNA_LOG_LEVEL", "debug")
	t.Setenv("FORTUNA_DEFAULT_LANGUAGE", "th")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected valid config, got %v", err)
	}
	if cfg.Port != "9191" || cfg.DBDriver != "postgres" || cfg.DefaultLanguage != "th" {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	if cfg.Cache.Driver != "redis" || cfg.Cache.TTL != 90*time.Second || cfg.Cache.Redis.Addr != "cache:6379" {
		t.Fatalf("unexpected cache config: %+v", cfg.Cache)
	}
	if cfg.Log.Level != "debug" {
		t.Fatalf("expected log level debug, got %q", cfg.Log.Level)
	}
	if options := cfg.DatabaseOptions(); options.DSN != "postgres://fortuna@localhost/fortuna" {
		t.Fatalf("unexpected database options: %+v", options)
	}
}

func TestLoadAppliesDefaults(t *testing.T) {
	t.Setenv("FORTUNA_DB_PATH", "")
	t.Setenv("FORTUNA_CACHE_DRIVER", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.DBPath == "" || cfg.TemplateDir == "" || cfg.LocalesDir == "" {
		t.Fatalf("expected path defaults, got %+v", cfg)
	}
	if cfg.Cache.Redis.Prefix != "fortuna:" {
		t.Fatalf("expected default redis prefix, got %q", cfg.Cache.Redis.Prefix)
	}
}

func TestValidateDatabaseRequiresURLForPostgres(t *testing.T) {
	cfg := Config{DBDriver: "postgres"}
	if err := cfg.ValidateDatabase(); !errors.Is(err, ErrDatabaseURLMissing) {
		t.Fatalf("expected ErrDatabaseURLMissing, got %v", err)
	}
	cfg.DBDriver = "mysql"
	if err := cfg.ValidateDatabase(); err == nil {
		t.Fatal("expected unsupported driver to fail")
	}
}
