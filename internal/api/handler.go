package api

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/terraincognita07/fortuna/internal/i18n"
	"gorm.io/gorm"
)

func NewHandler(database *gorm.DB, secret string, templateDir string, i18nManager *i18n.Manager, options Options) (*Handler, error) {
	if i18nManager == nil {
		return nil, errors.New("i18n manager is required")
	}
	location := options.Location
	if location == nil {
		location = time.UTC
	}
	logger := options.Logger
	if logger == nil {
		logger = slog.Default()
	}

	templates, err := parsePageTemplates(templateDir)
	if err != nil {
		return nil, err
	}

	cookieCodec, err := newSecureCookieCodec([]byte(secret))
	if err != nil {
		return nil, fmt.Errorf("init cookie codec: %w", err)
	}

	handler := &Handler{
		db:           database,
		secretKey:    []byte(secret),
		location:     location,
		cookieSecure: options.CookieSecure,
		i18n:         i18nManager,
		templates:    templates,
		cookieCodec:  cookieCodec,
		logger:       logger,
		metrics:      options.Metrics,
		viewCache:    options.ViewCache,
		viewCacheTTL: options.ViewCacheTTL,
	}
	handler.loginLimiter = handler.newLoginLimiter()
	return handler.withDependencies(database), nil
}
