package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/fortuna/internal/services"
)

func (handler *Handler) ShowTarot(c *fiber.Ctx) error {
	astrologer, _ := currentAstrologer(c)
	handler.ensureDependencies()

	page, err := handler.tarotService.List(c.UserContext(), astrologer.ID, services.TarotQuery{
		ClientID:   c.Query("client_id"),
		SpreadType: c.Query("spread_type"),
		From:       c.Query("from"),
		To:         c.Query("to"),
		Page:       c.QueryInt("page", 1),
	})
	if err != nil {
		return handler.renderPageError(c, err)
	}
	stats, err := handler.tarotService.SpreadStats(c.UserContext(), astrologer.ID)
	if err != nil {
		return handler.renderPageError(c, err)
	}
	if acceptsJSON(c) {
		return c.JSON(fiber.Map{"page": page, "spread_stats": stats})
	}

	return handler.render(c, "tarot", fiber.Map{
		"Title":       localizedPageTitle(currentMessages(c), "meta.title.tarot", "Fortuna | Tarot"),
		"Page":        page,
		"SpreadStats": stats,
	})
}

func (handler *Handler) ListClientSessions(c *fiber.Ctx) error {
	astrologer, _ := currentAstrologer(c)
	clientID := c.Params("id")

	handler.ensureDependencies()
	sessions, err := handler.tarotService.ForClient(c.UserContext(), astrologer.ID, clientID)
	if err != nil {
		return handler.respondFailure(c, err, "/clients/"+clientID, "client_id", clientID)
	}
	return c.JSON(fiber.Map{"sessions": sessions})
}

func (handler *Handler) CreateTarotSession(c *fiber.Ctx) error {
	astrologer, _ := currentAstrologer(c)
	clientID := c.Params("id")
	input := services.TarotInput{}
	if err := c.BodyParser(&input); err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid input")
	}

	handler.ensureDependencies()
	session, err := handler.tarotService.Create(c.UserContext(), astrologer.ID, clientID, input)
	handler.observeMutation("tarot_session", "create", err)
	if err != nil {
		return handler.respondFailure(c, err, "/clients/"+clientID, "client_id", clientID)
	}
	return handler.respondSuccess(c, fiber.StatusCreated, "flash.session_created", "/clients/"+clientID, session)
}

func (handler *Handler) UpdateTarotSession(c *fiber.Ctx) error {
	astrologer, _ := currentAstrologer(c)
	sessionID := c.Params("id")
	input := services.TarotInput{}
	if err := c.BodyParser(&input); err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid input")
	}

	handler.ensureDependencies()
	session, err := handler.tarotService.Update(c.UserContext(), astrologer.ID, sessionID, input)
	handler.observeMutation("tarot_session", "update", err)
	if err != nil {
		return handler.respondFailure(c, err, refererPath(c, "/tarot"), "session_id", sessionID)
	}
	return handler.respondSuccess(c, fiber.StatusOK, "flash.session_updated", "/clients/"+session.ClientID, session)
}

func (handler *Handler) UpdateTarotInterpretation(c *fiber.Ctx) error {
	astrologer, _ := currentAstrologer(c)
	sessionID := c.Params("id")
	input := interpretationInput{}
	if err := c.BodyParser(&input); err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid input")
	}

	handler.ensureDependencies()
	err := handler.tarotService.UpdateInterpretation(c.UserContext(), astrologer.ID, sessionID, input.Interpretation)
	handler.observeMutation("tarot_session", "update_interpretation", err)
	returnPath := refererPath(c, "/tarot")
	if err != nil {
		return handler.respondFailure(c, err, returnPath, "session_id", sessionID)
	}
	return handler.respondSuccess(c, fiber.StatusOK, "flash.interpretation_updated", returnPath, nil)
}

func (handler *Handler) DeleteTarotSession(c *fiber.Ctx) error {
	astrologer, _ := currentAstrologer(c)
	sessionID := c.Params("id")

	handler.ensureDependencies()
	err := handler.tarotService.Delete(c.UserContext(), astrologer.ID, sessionID)
	handler.observeMutation("tarot_session", "delete", err)
	returnPath := refererPath(c, "/tarot")
	if err != nil {
		return handler.respondFailure(c, err, returnPath, "session_id", sessionID)
	}
	return handler.respondSuccess(c, fiber.StatusOK, "flash.session_deleted", returnPath, nil)
}
