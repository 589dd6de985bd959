package main

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/csrf"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/spf13/cobra"
	"github.com/terraincognita07/fortuna/internal/api"
	"github.com/terraincognita07/fortuna/internal/cache"
	"github.com/terraincognita07/fortuna/internal/config"
	"github.com/terraincognita07/fortuna/internal/db"
	"github.com/terraincognita07/fortuna/internal/errorreport"
	"github.com/terraincognita07/fortuna/internal/i18n"
	"github.com/terraincognita07/fortuna/internal/logger"
	"github.com/terraincognita07/fortuna/internal/metrics"
	"gorm.io/gorm"
)

const shutdownTimeout = 10 * time.Second

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the web application",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			return serve(cmd.Context(), cfg)
		},
	}
}

func serve(ctx context.Context, cfg config.Config) error {
	log := logger.New("fortuna", &cfg.Log)
	slog.SetDefault(log)

	location, err := cfg.Location()
	if err != nil {
		log.Warn("falling back to UTC", "error", err)
	}
	time.Local = location

	reporting, err := errorreport.Init(cfg.Sentry)
	if err != nil {
		return err
	}
	if reporting {
		defer errorreport.Flush()
	}

	database, err := db.Open(cfg.DatabaseOptions())
	if err != nil {
		return fmt.Errorf("database init failed: %w", err)
	}

	viewCache, err := cache.New(cfg.Cache)
	if err != nil {
		return err
	}
	defer viewCache.Close()

	app, err := newServer(cfg, database, viewCache, location, log)
	if err != nil {
		return err
	}

	port, err := resolvePort(cfg)
	if err != nil {
		return err
	}

	sigCtx, stopSignals := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stopSignals()

	go func() {
		<-sigCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := app.ShutdownWithContext(shutdownCtx); err != nil {
			log.Error("server shutdown failed", "error", err)
		}
	}()

	log.Info("fortuna listening",
		"addr", "0.0.0.0:"+port,
		"db_driver", normalizedDriver(cfg.DBDriver),
		"cache_driver", cfg.Cache.Driver,
		"tz", location.String(),
		"error_reporting", reporting,
	)
	if err := app.Listen(":" + port); err != nil {
		return fmt.Errorf("server exited: %w", err)
	}
	return nil
}

func newServer(cfg config.Config, database *gorm.DB, viewCache cache.Cache, location *time.Location, log *slog.Logger) (*fiber.App, error) {
	i18nManager, err := i18n.NewManager(cfg.DefaultLanguage, cfg.LocalesDir)
	if err != nil {
		return nil, fmt.Errorf("i18n init failed: %w", err)
	}

	registry := metrics.New()
	handler, err := api.NewHandler(database, cfg.SecretKey, cfg.TemplateDir, i18nManager, api.Options{
		Location:     location,
		CookieSecure: cfg.CookieSecure,
		Logger:       log,
		Metrics:      registry,
		ViewCache:    viewCache,
		ViewCacheTTL: cfg.Cache.TTL,
	})
	if err != nil {
		return nil, fmt.Errorf("handler init failed: %w", err)
	}

	app := fiber.New(fiber.Config{
		AppName:               "Fortuna",
		DisableStartupMessage: true,
	})

	app.Use(recover.New(recover.Config{EnableStackTrace: true}))
	app.Use(fiberlogger.New())
	app.Use(compress.New())
	app.Use(registry.Middleware)
	app.Get("/metrics", registry.Handler())
	app.Use(handler.LanguageMiddleware)
	app.Use(csrf.New(csrfMiddlewareConfig(cfg.CookieSecure)))

	app.Static("/static", cfg.StaticDir)
	api.RegisterRoutes(app, handler)
	app.Use(handler.NotFound)
	return app, nil
}

func csrfMiddlewareConfig(cookieSecure bool) csrf.Config {
	return csrf.Config{
		KeyLookup:      "form:csrf_token",
		CookieName:     "fortuna_csrf",
		CookieSameSite: "Lax",
		CookieHTTPOnly: true,
		CookieSecure:   cookieSecure,
		ContextKey:     "csrf",
		Next:           skipCSRF,
	}
}

// skipCSRF exempts JSON requests; the token is only looked up in form bodies.
func skipCSRF(c *fiber.Ctx) bool {
	return c.Is("json")
}

func resolvePort(cfg config.Config) (string, error) {
	return config.ValidatePort(cfg.Port)
}
