package api

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/fortuna/internal/services"
)

const (
	authErrorInvalidInput       = "invalid input"
	authErrorInvalidCredentials = "invalid credentials"
	authErrorInactive           = "account inactive"
	authErrorEmailExists        = "email already exists"
	authErrorPasswordMismatch   = "password mismatch"
	authErrorTooManyAttempts    = "too many login attempts"
)

var authErrorKeys = map[string]string{
	authErrorInvalidInput:       "auth.error.invalid_input",
	authErrorInvalidCredentials: "auth.error.invalid_credentials",
	authErrorInactive:           "auth.error.inactive",
	authErrorEmailExists:        "auth.error.email_exists",
	authErrorPasswordMismatch:   "auth.error.password_mismatch",
	authErrorTooManyAttempts:    "auth.error.too_many_login_attempts",
}

func (handler *Handler) ShowLoginPage(c *fiber.Ctx) error {
	if _, err := handler.authenticateRequest(c); err == nil {
		return c.Redirect("/dashboard", fiber.StatusSeeOther)
	}
	flash := handler.popFlashCookie(c)
	return handler.render(c, "login", fiber.Map{
		"Title":      localizedPageTitle(currentMessages(c), "meta.title.login", "Fortuna | Sign In"),
		"Flash":      flash,
		"LoginEmail": flash.LoginEmail,
		"ErrorKey":   authErrorKeys[flash.AuthError],
	})
}

func (handler *Handler) ShowRegisterPage(c *fiber.Ctx) error {
	if _, err := handler.authenticateRequest(c); err == nil {
		return c.Redirect("/dashboard", fiber.StatusSeeOther)
	}
	flash := handler.popFlashCookie(c)
	return handler.render(c, "register", fiber.Map{
		"Title":         localizedPageTitle(currentMessages(c), "meta.title.register", "Fortuna | Register"),
		"Flash":         flash,
		"RegisterEmail": flash.RegisterEmail,
		"RegisterName":  flash.RegisterName,
		"ErrorKey":      authErrorKeys[flash.AuthError],
	})
}

func (handler *Handler) Register(c *fiber.Ctx) error {
	input := services.RegistrationInput{}
	if err := c.BodyParser(&input); err != nil {
		return handler.respondAuthError(c, fiber.StatusBadRequest, authErrorInvalidInput, "/register", FlashPayload{})
	}
	retry := FlashPayload{RegisterEmail: input.Email, RegisterName: input.Name}

	handler.ensureDependencies()
	astrologer, err := handler.authService.Register(c.UserContext(), input)
	if err != nil {
		var validationErr *services.ValidationError
		switch {
		case errors.As(err, &validationErr):
			if acceptsJSON(c) {
				return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
					"error":  authErrorInvalidInput,
					"errors": validationErr.Fields,
				})
			}
			return handler.respondAuthError(c, fiber.StatusUnprocessableEntity, authErrorInvalidInput, "/register", retry)
		case errors.Is(err, services.ErrPasswordMismatch):
			return handler.respondAuthError(c, fiber.StatusUnprocessableEntity, authErrorPasswordMismatch, "/register", retry)
		case errors.Is(err, services.ErrEmailExists):
			return handler.respondAuthError(c, fiber.StatusConflict, authErrorEmailExists, "/register", retry)
		default:
			handler.reportFault(c, err)
			return apiError(c, fiber.StatusInternalServerError, "failed to create account")
		}
	}

	if err := handler.setAuthCookie(c, &astrologer, true); err != nil {
		return apiError(c, fiber.StatusInternalServerError, "failed to create session")
	}
	if acceptsJSON(c) {
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{"ok": true, "id": astrologer.ID})
	}
	return redirectOrJSON(c, "/dashboard")
}

func (handler *Handler) Login(c *fiber.Ctx) error {
	credentials := credentialsInput{}
	if err := c.BodyParser(&credentials); err != nil {
		return handler.respondAuthError(c, fiber.StatusBadRequest, authErrorInvalidInput, "/login", FlashPayload{})
	}
	email, password, err := services.NormalizeCredentialsInput(credentials.Email, credentials.Password)
	retry := FlashPayload{LoginEmail: email}
	if err != nil {
		return handler.respondAuthError(c, fiber.StatusBadRequest, authErrorInvalidInput, "/login", retry)
	}

	handler.ensureDependencies()
	astrologer, err := handler.authService.Authenticate(c.UserContext(), email, password)
	switch {
	case errors.Is(err, services.ErrInvalidCredentials):
		return handler.respondAuthError(c, fiber.StatusUnauthorized, authErrorInvalidCredentials, "/login", retry)
	case errors.Is(err, services.ErrAstrologerInactive):
		return handler.respondAuthError(c, fiber.StatusForbidden, authErrorInactive, "/login", retry)
	case err != nil:
		handler.reportFault(c, err)
		return apiError(c, fiber.StatusInternalServerError, "failed to sign in")
	}

	if err := handler.setAuthCookie(c, &astrologer, credentials.RememberMe); err != nil {
		return apiError(c, fiber.StatusInternalServerError, "failed to create session")
	}
	return redirectOrJSON(c, sanitizeRedirectPath(c.Query("next"), "/dashboard"))
}

func (handler *Handler) Logout(c *fiber.Ctx) error {
	handler.clearAuthCookie(c)
	return redirectOrJSON(c, "/login")
}

func (handler *Handler) respondAuthError(c *fiber.Ctx, status int, message string, path string, retry FlashPayload) error {
	if acceptsJSON(c) {
		return c.Status(status).JSON(fiber.Map{"error": message})
	}
	if isHTMX(c) {
		rendered := message
		if key, ok := authErrorKeys[message]; ok {
			rendered = translateMessage(currentMessages(c), key)
		}
		return apiError(c, status, rendered)
	}

	retry.AuthError = message
	handler.setFlashCookie(c, retry)
	return c.Redirect(path, fiber.StatusSeeOther)
}
