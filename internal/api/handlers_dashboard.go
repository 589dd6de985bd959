package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/fortuna/internal/services"
)

func (handler *Handler) ShowDashboard(c *fiber.Ctx) error {
	astrologer, ok := currentAstrologer(c)
	if !ok {
		return c.Redirect("/login", fiber.StatusSeeOther)
	}

	handler.ensureDependencies()
	summary, err := handler.dashboardService.Summary(c.UserContext(), astrologer.ID)
	if err != nil {
		return handler.renderPageError(c, err)
	}
	if acceptsJSON(c) {
		return c.JSON(summary)
	}

	return handler.render(c, "dashboard", fiber.Map{
		"Title":   localizedPageTitle(currentMessages(c), "meta.title.dashboard", "Fortuna | Dashboard"),
		"Summary": summary,
	})
}

// renderPageError shows access and lookup failures on a full page.
func (handler *Handler) renderPageError(c *fiber.Ctx, err error) error {
	if acceptsJSON(c) || isHTMX(c) {
		return handler.respondFailure(c, err, "/dashboard")
	}

	handler.reportFault(c, err)
	status := statusForError(err)
	if status == fiber.StatusInternalServerError {
		return c.Status(status).SendString(services.FailureMessage(err))
	}

	c.Status(status)
	return handler.render(c, "not_found", fiber.Map{
		"Title":       localizedPageTitle(currentMessages(c), "meta.title.not_found", "Fortuna | Page Not Found"),
		"PrimaryPath": "/dashboard",
		"Message":     services.FailureMessage(err),
	})
}
