package api

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/fortuna/internal/models"
	"github.com/terraincognita07/fortuna/internal/services"
)

func (handler *Handler) ShowClients(c *fiber.Ctx) error {
	astrologer, _ := currentAstrologer(c)
	handler.ensureDependencies()

	query := services.ClientQuery{
		Search: c.Query("search"),
		Gender: c.Query("gender"),
		Page:   c.QueryInt("page", 1),
	}
	page, err := handler.clientService.ListOwned(c.UserContext(), astrologer.ID, query)
	if err != nil {
		return handler.renderPageError(c, err)
	}
	shared, err := handler.clientService.ListShared(c.UserContext(), astrologer.ID)
	if err != nil {
		return handler.renderPageError(c, err)
	}
	if acceptsJSON(c) {
		return c.JSON(fiber.Map{"owned": page, "shared": shared})
	}

	return handler.render(c, "clients", fiber.Map{
		"Title":  localizedPageTitle(currentMessages(c), "meta.title.clients", "Fortuna | Clients"),
		"Page":   page,
		"Shared": shared,
	})
}

func (handler *Handler) ShowNewClient(c *fiber.Ctx) error {
	return handler.renderClientForm(c, fiber.StatusOK, "", services.ClientInput{}, services.FormState{})
}

func (handler *Handler) ShowEditClient(c *fiber.Ctx) error {
	astrologer, _ := currentAstrologer(c)
	clientID := c.Params("id")
	handler.ensureDependencies()

	client, level, err := handler.clientService.Get(c.UserContext(), astrologer.ID, clientID)
	if err == nil && !level.CanEdit {
		err = services.ErrEditRequired
	}
	if err != nil {
		return handler.renderPageError(c, err)
	}
	return handler.renderClientForm(c, fiber.StatusOK, client.ID, services.ClientInputFromModel(client), services.FormState{})
}

func (handler *Handler) renderClientForm(c *fiber.Ctx, status int, clientID string, input services.ClientInput, state services.FormState) error {
	action := "/api/clients"
	titleKey := "meta.title.client_new"
	if clientID != "" {
		action = "/api/clients/" + clientID
		titleKey = "meta.title.client_edit"
	}

	c.Status(status)
	return handler.render(c, "client_form", fiber.Map{
		"Title":    localizedPageTitle(currentMessages(c), titleKey, "Fortuna | Client"),
		"ClientID": clientID,
		"Action":   action,
		"Input":    input,
		"State":    state,
	})
}

func (handler *Handler) ShowClient(c *fiber.Ctx) error {
	astrologer, _ := currentAstrologer(c)
	handler.ensureDependencies()

	detail, err := handler.clientService.Detail(c.UserContext(), astrologer.ID, c.Params("id"))
	if err != nil {
		return handler.renderPageError(c, err)
	}

	available := []models.AstrologerSummary{}
	if detail.Access.IsOwner {
		available, err = handler.permissionService.AvailableAstrologers(c.UserContext(), astrologer.ID, detail.Client.ID)
		if err != nil {
			return handler.renderPageError(c, err)
		}
	}
	if acceptsJSON(c) {
		return c.JSON(detail)
	}

	return handler.render(c, "client_detail", fiber.Map{
		"Title":     localizedPageTitle(currentMessages(c), "meta.title.client_detail", "Fortuna | Client"),
		"Detail":    detail,
		"Available": available,
	})
}

func (handler *Handler) CreateClient(c *fiber.Ctx) error {
	astrologer, _ := currentAstrologer(c)
	input := services.ClientInput{}
	if err := c.BodyParser(&input); err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid input")
	}

	handler.ensureDependencies()
	client, err := handler.clientService.Create(c.UserContext(), astrologer.ID, input)
	handler.observeMutation("client", "create", err)
	if err != nil {
		return handler.respondClientFormFailure(c, "", input, err, "/clients/new")
	}
	return handler.respondSuccess(c, fiber.StatusCreated, "flash.client_created", "/clients/"+client.ID, client)
}

func (handler *Handler) UpdateClient(c *fiber.Ctx) error {
	astrologer, _ := currentAstrologer(c)
	clientID := c.Params("id")
	input := services.ClientInput{}
	if err := c.BodyParser(&input); err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid input")
	}

	handler.ensureDependencies()
	client, err := handler.clientService.Update(c.UserContext(), astrologer.ID, clientID, input)
	handler.observeMutation("client", "update", err)
	if err != nil {
		return handler.respondClientFormFailure(c, clientID, input, err, "/clients/"+clientID)
	}
	return handler.respondSuccess(c, fiber.StatusOK, "flash.client_updated", "/clients/"+client.ID, client)
}

// respondClientFormFailure re-renders the form for browser validation
// failures so the entered values survive.
func (handler *Handler) respondClientFormFailure(c *fiber.Ctx, clientID string, input services.ClientInput, err error, fallbackPath string) error {
	if errors.Is(err, services.ErrInvalidInput) && !acceptsJSON(c) && !isHTMX(c) {
		return handler.renderClientForm(c, fiber.StatusUnprocessableEntity, clientID, input, services.FailureState(err))
	}
	return handler.respondFailure(c, err, fallbackPath, "client_id", clientID)
}

func (handler *Handler) UpdateClientNotes(c *fiber.Ctx) error {
	astrologer, _ := currentAstrologer(c)
	clientID := c.Params("id")
	input := notesInput{}
	if err := c.BodyParser(&input); err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid input")
	}

	handler.ensureDependencies()
	err := handler.clientService.UpdateNotes(c.UserContext(), astrologer.ID, clientID, input.Notes)
	handler.observeMutation("client", "update_notes", err)
	if err != nil {
		return handler.respondFailure(c, err, "/clients/"+clientID, "client_id", clientID)
	}
	return handler.respondSuccess(c, fiber.StatusOK, "flash.notes_updated", "/clients/"+clientID, nil)
}

func (handler *Handler) DeleteClient(c *fiber.Ctx) error {
	astrologer, _ := currentAstrologer(c)
	clientID := c.Params("id")

	handler.ensureDependencies()
	err := handler.clientService.Delete(c.UserContext(), astrologer.ID, clientID)
	handler.observeMutation("client", "delete", err)
	if err != nil {
		return handler.respondFailure(c, err, "/clients/"+clientID, "client_id", clientID)
	}
	return handler.respondSuccess(c, fiber.StatusOK, "flash.client_deleted", "/clients", nil)
}

func (handler *Handler) SearchClients(c *fiber.Ctx) error {
	astrologer, _ := currentAstrologer(c)

	handler.ensureDependencies()
	clients, err := handler.clientService.SearchAccessible(c.UserContext(), astrologer.ID, c.Query("q"))
	if err != nil {
		handler.reportFault(c, err)
		return apiError(c, statusForError(err), services.FailureMessage(err))
	}

	results := make([]fiber.Map, 0, len(clients))
	for _, client := range clients {
		results = append(results, fiber.Map{
			"id":       client.ID,
			"name":     client.FullName(),
			"nickname": client.Nickname,
		})
	}
	return c.JSON(fiber.Map{"results": results})
}
