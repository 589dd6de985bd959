package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/fortuna/internal/services"
)

func (handler *Handler) ListProfiles(c *fiber.Ctx) error {
	astrologer, _ := currentAstrologer(c)
	clientID := c.Params("id")

	handler.ensureDependencies()
	if astrologyType := c.Query("type"); astrologyType != "" {
		profile, err := handler.profileService.ByType(c.UserContext(), astrologer.ID, clientID, astrologyType)
		if err != nil {
			return handler.respondFailure(c, err, "/clients/"+clientID, "client_id", clientID)
		}
		return c.JSON(profile)
	}

	profiles, err := handler.profileService.ForClient(c.UserContext(), astrologer.ID, clientID)
	if err != nil {
		return handler.respondFailure(c, err, "/clients/"+clientID, "client_id", clientID)
	}
	return c.JSON(fiber.Map{"profiles": profiles})
}

func (handler *Handler) CreateProfile(c *fiber.Ctx) error {
	astrologer, _ := currentAstrologer(c)
	clientID := c.Params("id")
	input := services.ProfileInput{}
	if err := c.BodyParser(&input); err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid input")
	}

	handler.ensureDependencies()
	profile, err := handler.profileService.Create(c.UserContext(), astrologer.ID, clientID, input)
	handler.observeMutation("profile", "create", err)
	if err != nil {
		return handler.respondFailure(c, err, "/clients/"+clientID, "client_id", clientID)
	}
	return handler.respondSuccess(c, fiber.StatusCreated, "flash.profile_created", "/clients/"+clientID, profile)
}

func (handler *Handler) UpdateProfile(c *fiber.Ctx) error {
	astrologer, _ := currentAstrologer(c)
	profileID := c.Params("id")
	input := services.ProfileInput{}
	if err := c.BodyParser(&input); err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid input")
	}

	handler.ensureDependencies()
	profile, err := handler.profileService.Update(c.UserContext(), astrologer.ID, profileID, input)
	handler.observeMutation("profile", "update", err)
	if err != nil {
		return handler.respondFailure(c, err, refererPath(c, "/clients"), "profile_id", profileID)
	}
	return handler.respondSuccess(c, fiber.StatusOK, "flash.profile_updated", "/clients/"+profile.ClientID, profile)
}

func (handler *Handler) UpdateProfileInterpretation(c *fiber.Ctx) error {
	astrologer, _ := currentAstrologer(c)
	profileID := c.Params("id")
	input := interpretationInput{}
	if err := c.BodyParser(&input); err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid input")
	}

	handler.ensureDependencies()
	err := handler.profileService.UpdateInterpretation(c.UserContext(), astrologer.ID, profileID, input.Interpretation)
	handler.observeMutation("profile", "update_interpretation", err)
	returnPath := refererPath(c, "/clients")
	if err != nil {
		return handler.respondFailure(c, err, returnPath, "profile_id", profileID)
	}
	return handler.respondSuccess(c, fiber.StatusOK, "flash.interpretation_updated", returnPath, nil)
}

func (handler *Handler) DeleteProfile(c *fiber.Ctx) error {
	astrologer, _ := currentAstrologer(c)
	profileID := c.Params("id")

	handler.ensureDependencies()
	err := handler.profileService.Delete(c.UserContext(), astrologer.ID, profileID)
	handler.observeMutation("profile", "delete", err)
	returnPath := refererPath(c, "/clients")
	if err != nil {
		return handler.respondFailure(c, err, returnPath, "profile_id", profileID)
	}
	return handler.respondSuccess(c, fiber.StatusOK, "flash.profile_deleted", returnPath, nil)
}
