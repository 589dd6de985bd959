package api

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/terraincognita07/fortuna/internal/services"
)

// newLoginLimiter allows loginAttemptsLimit sign-in attempts per address and
// account inside a sliding window. Failed form posts answer with a redirect,
// so every attempt counts, not only error statuses.
func (handler *Handler) newLoginLimiter() fiber.Handler {
	return limiter.New(limiter.Config{
		Max:               loginAttemptsLimit,
		Expiration:        loginAttemptsWindow,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator: func(c *fiber.Ctx) string {
			return loginLimiterKey(c, attemptedEmail(c))
		},
		LimitReached: func(c *fiber.Ctx) error {
			return handler.respondAuthError(c, fiber.StatusTooManyRequests, authErrorTooManyAttempts, "/login", FlashPayload{LoginEmail: attemptedEmail(c)})
		},
	})
}

func attemptedEmail(c *fiber.Ctx) string {
	credentials := credentialsInput{}
	if err := c.BodyParser(&credentials); err != nil {
		return ""
	}
	return services.NormalizeAuthEmail(credentials.Email)
}

func loginLimiterKey(c *fiber.Ctx, email string) string {
	ip := strings.TrimSpace(c.IP())
	if ip == "" {
		ip = "unknown"
	}
	return ip + "|" + email
}
