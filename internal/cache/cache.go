// Package cache holds the view cache behind the dashboard: an in-process store
// for single-node deployments or redis when several instances share state.
package cache

import (
	"context"
	"fmt"
	"strings"
	"time"
)

const (
	DriverMemory = "memory"
	DriverRedis  = "redis"
)

type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	Close() error
}

type Config struct {
	Driver string        `envconfig:"DRIVER" default:"memory"`
	TTL    time.Duration `envconfig:"TTL" default:"5m"`
	Redis  RedisConfig   `envconfig:"REDIS"`
}

func New(cfg Config) (Cache, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Driver)) {
	case "", DriverMemory:
		return NewMemory(0), nil
	case DriverRedis:
		client, err := cfg.Redis.NewConnection()
		if err != nil {
			return nil, err
		}
		return NewRedis(client, cfg.Redis.Prefix), nil
	default:
		return nil, fmt.Errorf("unsupported cache driver %q", cfg.Driver)
	}
}
