package api

import (
	"html/template"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/terraincognita07/fortuna/internal/db"
	"github.com/terraincognita07/fortuna/internal/i18n"
	"github.com/terraincognita07/fortuna/internal/metrics"
	"github.com/terraincognita07/fortuna/internal/services"
	"gorm.io/gorm"
)

type Handler struct {
	db           *gorm.DB
	secretKey    []byte
	location     *time.Location
	cookieSecure bool
	i18n         *i18n.Manager
	templates    map[string]*template.Template
	cookieCodec  *secureCookieCodec
	loginLimiter fiber.Handler
	logger       *slog.Logger
	metrics      *metrics.Metrics
	viewCache    services.ViewCache
	viewCacheTTL time.Duration

	repositories       *db.Repositories
	accessService      *services.AccessService
	authService        *services.AuthService
	clientService      *services.ClientService
	profileService     *services.ProfileService
	tarotService       *services.TarotService
	permissionService  *services.PermissionService
	dashboardService   *services.DashboardService
	dashboardViewCache *services.DashboardViews
}

// Options carries the optional collaborators of a Handler. Zero values fall
// back to UTC, an uncached dashboard, no metrics and the default logger.
type Options struct {
	Location     *time.Location
	CookieSecure bool
	Logger       *slog.Logger
	Metrics      *metrics.Metrics
	ViewCache    services.ViewCache
	ViewCacheTTL time.Duration
}

type FlashPayload struct {
	AuthError     string `json:"auth_error,omitempty"`
	LoginEmail    string `json:"login_email,omitempty"`
	RegisterEmail string `json:"register_email,omitempty"`
	RegisterName  string `json:"register_name,omitempty"`
	Success       string `json:"success,omitempty"`
	Error         string `json:"error,omitempty"`
}

type credentialsInput struct {
	Email      string `json:"email" form:"email"`
	Password   string `json:"password" form:"password"`
	RememberMe bool   `json:"remember_me" form:"remember_me"`
}

type notesInput struct {
	Notes string `json:"notes" form:"notes"`
}

type interpretationInput struct {
	Interpretation string `json:"interpretation" form:"interpretation"`
}

type permissionFlagsInput struct {
	CanView bool `json:"can_view" form:"can_view"`
	CanEdit bool `json:"can_edit" form:"can_edit"`
}

type authClaims struct {
	AstrologerID string `json:"aid"`
	jwt.RegisteredClaims
}

const (
	defaultAuthTokenTTL  = 7 * 24 * time.Hour
	rememberAuthTokenTTL = 30 * 24 * time.Hour

	loginAttemptsLimit  = 8
	loginAttemptsWindow = 15 * time.Minute
)
