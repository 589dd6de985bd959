// Package errorreport forwards unexpected faults to sentry. Without a DSN
// every call is a no-op.
package errorreport

import (
	"fmt"
	"time"

	"github.com/getsentry/sentry-go"
)

type Config struct {
	DSN         string  `envconfig:"DSN"`
	Environment string  `envconfig:"ENVIRONMENT" default:"development"`
	Release     string  `envconfig:"RELEASE"`
	SampleRate  float64 `envconfig:"TRACES_SAMPLE_RATE" default:"0"`
}

func Init(cfg Config) (bool, error) {
	if cfg.DSN == "" {
		return false, nil
	}
	release := cfg.Release
	if release == "" {
		release = "fortuna@dev"
	}
	err := sentry.Init(sentry.ClientOptions{
		Dsn:              cfg.DSN,
		Environment:      cfg.Environment,
		Release:          release,
		TracesSampleRate: cfg.SampleRate,
	})
	if err != nil {
		return false, fmt.Errorf("sentry initialization failed: %w", err)
	}
	return true, nil
}

// Capture reports err with extras attached to a throwaway scope.
func Capture(err error, extras map[string]any) {
	if err == nil {
		return
	}
	hub := sentry.CurrentHub()
	if hub == nil || hub.Client() == nil {
		return
	}
	hub.WithScope(func(scope *sentry.Scope) {
		for key, value := range extras {
			scope.SetExtra(key, value)
		}
		hub.CaptureException(err)
	})
}

func Flush() {
	sentry.Flush(2 * time.Second)
}
