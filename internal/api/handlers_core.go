package api

import (
	"bytes"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/fortuna/internal/models"
)

func (handler *Handler) Health(c *fiber.Ctx) error {
	sqlDB, err := handler.db.DB()
	if err != nil || sqlDB.PingContext(c.UserContext()) != nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "unavailable"})
	}
	return c.JSON(fiber.Map{"status": "ok"})
}

func (handler *Handler) render(c *fiber.Ctx, name string, data fiber.Map) error {
	tmpl, ok := handler.templates[name]
	if !ok {
		return c.Status(fiber.StatusInternalServerError).SendString("template not found")
	}
	var output bytes.Buffer
	if err := tmpl.ExecuteTemplate(&output, "base", handler.withTemplateDefaults(c, data)); err != nil {
		handler.logger.ErrorContext(c.UserContext(), "render template", "template", name, "err", err)
		return c.Status(fiber.StatusInternalServerError).SendString("failed to render template")
	}
	c.Type("html", "utf-8")
	return c.Send(output.Bytes())
}

func (handler *Handler) withTemplateDefaults(c *fiber.Ctx, data fiber.Map) fiber.Map {
	if data == nil {
		data = fiber.Map{}
	}
	defaults := fiber.Map{
		"Messages":    currentMessages(c),
		"CurrentPath": string(c.Request().URI().RequestURI()),
		"CSRFToken":   csrfToken(c),
		"Today":       time.Now().In(handler.location).Format(models.BirthDateLayout),
	}
	if _, ok := data["Flash"]; !ok {
		data["Flash"] = handler.popFlashCookie(c)
	}
	language := currentLanguage(c)
	if language == "" {
		language = handler.i18n.DefaultLanguage()
	}
	defaults["Lang"] = language
	defaults["Languages"] = handler.i18n.SupportedLanguages()
	if astrologer, ok := currentAstrologer(c); ok {
		defaults["CurrentAstrologer"] = astrologer
	}

	for key, value := range defaults {
		if _, ok := data[key]; !ok {
			data[key] = value
		}
	}
	return data
}

func (handler *Handler) NotFound(c *fiber.Ctx) error {
	if strings.HasPrefix(c.Path(), "/api/") || acceptsJSON(c) {
		return apiError(c, fiber.StatusNotFound, "not found")
	}
	messages := currentMessages(c)
	if isHTMX(c) {
		return apiError(c, fiber.StatusNotFound, localizedPageTitle(messages, "not_found.title", "Page not found"))
	}

	primaryPath := "/login"
	if astrologer, err := handler.authenticateRequest(c); err == nil {
		c.Locals(contextUserKey, astrologer)
		primaryPath = "/dashboard"
	}

	c.Status(fiber.StatusNotFound)
	return handler.render(c, "not_found", fiber.Map{
		"Title":       localizedPageTitle(messages, "meta.title.not_found", "Fortuna | Page Not Found"),
		"PrimaryPath": primaryPath,
	})
}
