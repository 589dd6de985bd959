package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/fortuna/internal/services"
)

func (handler *Handler) ListPermissions(c *fiber.Ctx) error {
	astrologer, _ := currentAstrologer(c)
	clientID := c.Params("id")

	handler.ensureDependencies()
	permissions, err := handler.permissionService.ListForClient(c.UserContext(), astrologer.ID, clientID)
	if err != nil {
		return handler.respondFailure(c, err, "/clients/"+clientID, "client_id", clientID)
	}
	return c.JSON(fiber.Map{"permissions": permissions})
}

func (handler *Handler) GrantPermission(c *fiber.Ctx) error {
	astrologer, _ := currentAstrologer(c)
	clientID := c.Params("id")
	input := services.GrantInput{}
	if err := c.BodyParser(&input); err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid input")
	}

	handler.ensureDependencies()
	permission, err := handler.permissionService.Grant(c.UserContext(), astrologer.ID, clientID, input)
	handler.observeMutation("permission", "grant", err)
	if err != nil {
		return handler.respondFailure(c, err, "/clients/"+clientID, "client_id", clientID)
	}
	return handler.respondSuccess(c, fiber.StatusCreated, "flash.permission_granted", "/clients/"+clientID, permission)
}

func (handler *Handler) UpdatePermission(c *fiber.Ctx) error {
	astrologer, _ := currentAstrologer(c)
	permissionID := c.Params("id")
	input := permissionFlagsInput{}
	if err := c.BodyParser(&input); err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid input")
	}

	handler.ensureDependencies()
	permission, err := handler.permissionService.Update(c.UserContext(), astrologer.ID, permissionID, input.CanView, input.CanEdit)
	handler.observeMutation("permission", "update", err)
	if err != nil {
		return handler.respondFailure(c, err, refererPath(c, "/clients"), "permission_id", permissionID)
	}
	return handler.respondSuccess(c, fiber.StatusOK, "flash.permission_updated", "/clients/"+permission.ClientID, permission)
}

func (handler *Handler) TogglePermissionEdit(c *fiber.Ctx) error {
	astrologer, _ := currentAstrologer(c)
	permissionID := c.Params("id")

	handler.ensureDependencies()
	permission, err := handler.permissionService.ToggleEdit(c.UserContext(), astrologer.ID, permissionID)
	handler.observeMutation("permission", "toggle_edit", err)
	if err != nil {
		return handler.respondFailure(c, err, refererPath(c, "/clients"), "permission_id", permissionID)
	}
	return handler.respondSuccess(c, fiber.StatusOK, "flash.permission_updated", "/clients/"+permission.ClientID, permission)
}

func (handler *Handler) RevokePermission(c *fiber.Ctx) error {
	astrologer, _ := currentAstrologer(c)
	permissionID := c.Params("id")

	handler.ensureDependencies()
	err := handler.permissionService.Revoke(c.UserContext(), astrologer.ID, permissionID)
	handler.observeMutation("permission", "revoke", err)
	returnPath := refererPath(c, "/clients")
	if err != nil {
		return handler.respondFailure(c, err, returnPath, "permission_id", permissionID)
	}
	return handler.respondSuccess(c, fiber.StatusOK, "flash.permission_revoked", returnPath, nil)
}
