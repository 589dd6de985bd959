package api

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/fortuna/internal/errorreport"
	"github.com/terraincognita07/fortuna/internal/services"
)

const (
	mutationSucceeded = "ok"
	mutationRejected  = "rejected"
	mutationFailed    = "error"
)

func statusForError(err error) int {
	switch {
	case err == nil:
		return fiber.StatusOK
	case errors.Is(err, services.ErrInvalidInput),
		errors.Is(err, services.ErrPasswordMismatch),
		errors.Is(err, services.ErrSelfGrant):
		return fiber.StatusUnprocessableEntity
	case errors.Is(err, services.ErrAccessDenied):
		return fiber.StatusForbidden
	case errors.Is(err, services.ErrClientNotFound),
		errors.Is(err, services.ErrProfileNotFound),
		errors.Is(err, services.ErrSessionNotFound),
		errors.Is(err, services.ErrPermissionNotFound),
		errors.Is(err, services.ErrAstrologerNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, services.ErrPermissionExists),
		errors.Is(err, services.ErrProfileTypeExists),
		errors.Is(err, services.ErrEmailExists):
		return fiber.StatusConflict
	default:
		return fiber.StatusInternalServerError
	}
}

func mutationResult(err error) string {
	switch {
	case err == nil:
		return mutationSucceeded
	case statusForError(err) == fiber.StatusInternalServerError:
		return mutationFailed
	default:
		return mutationRejected
	}
}

func (handler *Handler) observeMutation(entity string, action string, err error) {
	if handler.metrics == nil {
		return
	}
	handler.metrics.ObserveMutation(entity, action, mutationResult(err))
}

// reportFault logs and reports errors that map to a 500. Expected failures
// such as validation or access denials are not reported.
func (handler *Handler) reportFault(c *fiber.Ctx, err error, attrs ...any) {
	if statusForError(err) != fiber.StatusInternalServerError {
		return
	}

	fields := []any{"method", c.Method(), "path", c.Path(), "err", err}
	extras := map[string]any{"method": c.Method(), "path": c.Path()}
	if astrologer, ok := currentAstrologer(c); ok {
		fields = append(fields, "actor_id", astrologer.ID)
		extras["actor_id"] = astrologer.ID
	}
	fields = append(fields, attrs...)
	handler.logger.ErrorContext(c.UserContext(), "request failed", fields...)
	errorreport.Capture(err, extras)
}

// respondFailure writes a service error in the shape the caller asked for.
// Plain form posts get a flash message and a redirect to fallbackPath.
func (handler *Handler) respondFailure(c *fiber.Ctx, err error, fallbackPath string, attrs ...any) error {
	handler.reportFault(c, err, attrs...)

	status := statusForError(err)
	state := services.FailureState(err)
	switch {
	case acceptsJSON(c):
		return c.Status(status).JSON(fiber.Map{
			"success": false,
			"error":   state.Message,
			"errors":  state.Errors,
		})
	case isHTMX(c):
		return c.Status(status).SendString(statusFragment("status-error", state.Message))
	default:
		handler.setFlashCookie(c, FlashPayload{Error: state.Message})
		return c.Redirect(fallbackPath, fiber.StatusSeeOther)
	}
}

// respondSuccess confirms a mutation. JSON callers receive data; browsers
// are redirected to path with a localized flash message.
func (handler *Handler) respondSuccess(c *fiber.Ctx, status int, messageKey string, path string, data any) error {
	message := translateMessage(currentMessages(c), messageKey)
	switch {
	case acceptsJSON(c):
		return c.Status(status).JSON(fiber.Map{
			"success": true,
			"message": message,
			"data":    data,
		})
	case isHTMX(c):
		c.Set("HX-Redirect", path)
		return c.Status(status).SendString(statusFragment("status-ok", message))
	default:
		handler.setFlashCookie(c, FlashPayload{Success: message})
		return c.Redirect(path, fiber.StatusSeeOther)
	}
}
