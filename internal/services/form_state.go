package services

import (
	"errors"
	"fmt"
)

// FormState is the result of a form submission: field errors plus a summary.
type FormState struct {
	Errors  map[string][]string `json:"errors,omitempty"`
	Message string              `json:"message"`
	Success bool                `json:"success"`
}

func SuccessState(message string) FormState {
	return FormState{Message: message, Success: true}
}

func (state FormState) FieldError(field string) string {
	if messages := state.Errors[field]; len(messages) > 0 {
		return messages[0]
	}
	return ""
}

// FailureState converts a service error into the FormState the user sees.
func FailureState(err error) FormState {
	var validationErr *ValidationError
	if errors.As(err, &validationErr) {
		return FormState{Errors: validationErr.Fields, Message: FailureMessage(err)}
	}
	return FormState{Message: FailureMessage(err)}
}

func FailureMessage(err error) string {
	var storeErr *StoreError
	var profileTypeErr *ProfileTypeExistsError
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrInvalidInput):
		return "Missing or invalid fields."
	case errors.Is(err, ErrShareOwnerRequired):
		return "Unauthorized: Only the client owner can share access."
	case errors.Is(err, ErrOwnerRequired):
		return "Unauthorized: Only the client owner can perform this action."
	case errors.Is(err, ErrEditRequired):
		return "Unauthorized: You do not have permission to edit this client."
	case errors.Is(err, ErrViewRequired), errors.Is(err, ErrAccessDenied):
		return "Unauthorized: You do not have access to this client."
	case errors.Is(err, ErrClientNotFound):
		return "Client not found."
	case errors.Is(err, ErrProfileNotFound):
		return "Profile not found."
	case errors.Is(err, ErrSessionNotFound):
		return "Tarot session not found."
	case errors.Is(err, ErrPermissionNotFound):
		return "Permission not found."
	case errors.Is(err, ErrAstrologerNotFound):
		return "Astrologer not found."
	case errors.Is(err, ErrPermissionExists):
		return "Permission already exists for this astrologer."
	case errors.Is(err, ErrSelfGrant):
		return "You cannot share a client with yourself."
	case errors.As(err, &profileTypeErr):
		return profileTypeErr.Error()
	case errors.As(err, &storeErr):
		return fmt.Sprintf("Database Error: Failed to %s %s.", storeErr.Action, storeErr.Entity)
	default:
		return "Something went wrong."
	}
}
