package api

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/terraincognita07/fortuna/internal/models"
)

const (
	authCookieName     = "fortuna_auth"
	languageCookieName = "fortuna_lang"
	authCookiePurpose  = "auth"
	contextUserKey     = "current_astrologer"
	contextLanguageKey = "current_language"
	contextMessagesKey = "current_messages"
)

var errUnauthenticated = errors.New("unauthenticated")

func currentAstrologer(c *fiber.Ctx) (*models.Astrologer, bool) {
	astrologer, ok := c.Locals(contextUserKey).(*models.Astrologer)
	return astrologer, ok && astrologer != nil
}

func (handler *Handler) AuthRequired(c *fiber.Ctx) error {
	astrologer, err := handler.authenticateRequest(c)
	if err != nil {
		handler.clearAuthCookie(c)
		if strings.HasPrefix(c.Path(), "/api/") {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized"})
		}
		return c.Redirect("/login", fiber.StatusSeeOther)
	}

	c.Locals(contextUserKey, astrologer)
	return c.Next()
}

func (handler *Handler) authenticateRequest(c *fiber.Ctx) (*models.Astrologer, error) {
	rawToken := strings.TrimSpace(c.Cookies(authCookieName))
	if rawToken == "" {
		return nil, errUnauthenticated
	}
	opened, err := handler.cookieCodec.open(authCookiePurpose, rawToken)
	if err != nil {
		return nil, errUnauthenticated
	}

	claims := &authClaims{}
	token, err := jwt.ParseWithClaims(string(opened), claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method")
		}
		return handler.secretKey, nil
	})
	if err != nil || !token.Valid || claims.AstrologerID == "" {
		return nil, errUnauthenticated
	}

	handler.ensureDependencies()
	astrologer, err := handler.authService.FindByID(c.UserContext(), claims.AstrologerID)
	if err != nil {
		return nil, err
	}
	if !astrologer.IsActive {
		return nil, errUnauthenticated
	}
	return &astrologer, nil
}

func (handler *Handler) LanguageMiddleware(c *fiber.Ctx) error {
	cookieLanguage := c.Cookies(languageCookieName)
	language := handler.i18n.DetectFromAcceptLanguage(c.Get("Accept-Language"))
	if cookieLanguage != "" {
		language = handler.i18n.NormalizeLanguage(cookieLanguage)
	}
	if cookieLanguage != language {
		handler.setLanguageCookie(c, language)
	}

	c.Locals(contextLanguageKey, language)
	c.Locals(contextMessagesKey, handler.i18n.Messages(language))
	return c.Next()
}

func (handler *Handler) setLanguageCookie(c *fiber.Ctx, language string) {
	c.Cookie(&fiber.Cookie{
		Name:     languageCookieName,
		Value:    handler.i18n.NormalizeLanguage(language),
		Path:     "/",
		HTTPOnly: false,
		Secure:   handler.cookieSecure,
		SameSite: "Lax",
		Expires:  time.Now().AddDate(1, 0, 0),
	})
}

func (handler *Handler) SetLanguage(c *fiber.Ctx) error {
	language := handler.i18n.NormalizeLanguage(c.Params("lang"))
	handler.setLanguageCookie(c, language)
	return c.Redirect(sanitizeRedirectPath(c.Query("next"), "/dashboard"), fiber.StatusSeeOther)
}
