package services

import (
	"errors"
	"fmt"
)

var (
	ErrClientNotFound     = errors.New("client not found")
	ErrProfileNotFound    = errors.New("profile not found")
	ErrSessionNotFound    = errors.New("tarot session not found")
	ErrPermissionNotFound = errors.New("permission not found")
	ErrAstrologerNotFound = errors.New("astrologer not found")
	ErrInvalidInput       = errors.New("missing or invalid fields")
	ErrStoreFailure       = errors.New("store failure")
	ErrPermissionExists   = errors.New("permission already exists")
	ErrProfileTypeExists  = errors.New("profile type already exists")
	ErrSelfGrant          = errors.New("cannot share a client with yourself")
	ErrAccessDenied       = errors.New("access denied")
)

var (
	ErrOwnerRequired      = fmt.Errorf("%w: client owner required", ErrAccessDenied)
	ErrShareOwnerRequired = fmt.Errorf("%w: only the client owner can share access", ErrOwnerRequired)
	ErrEditRequired       = fmt.Errorf("%w: edit permission required", ErrAccessDenied)
	ErrViewRequired       = fmt.Errorf("%w: view permission required", ErrAccessDenied)
)

// ValidationError carries field-keyed messages for a rejected form.
type ValidationError struct {
	Fields map[string][]string
}

func (err *ValidationError) Error() string {
	return ErrInvalidInput.Error()
}

func (err *ValidationError) Unwrap() error {
	return ErrInvalidInput
}

func (err *ValidationError) add(field string, message string) {
	if err.Fields == nil {
		err.Fields = map[string][]string{}
	}
	err.Fields[field] = append(err.Fields[field], message)
}

func (err *ValidationError) orNil() error {
	if err == nil || len(err.Fields) == 0 {
		return nil
	}
	return err
}

// StoreError is a data-store fault. Action and Entity name the failed write
// for the user-facing "Failed to <action> <entity>" message.
type StoreError struct {
	Action string
	Entity string
	Err    error
}

func (err *StoreError) Error() string {
	return fmt.Sprintf("%s %s: %v", err.Action, err.Entity, err.Err)
}

func (err *StoreError) Unwrap() error {
	return err.Err
}

func (err *StoreError) Is(target error) bool {
	return target == ErrStoreFailure
}

func storeFailure(action string, entity string, err error) error {
	return &StoreError{Action: action, Entity: entity, Err: err}
}

// ProfileTypeExistsError reports a second profile of one astrology type.
type ProfileTypeExistsError struct {
	AstrologyType string
}

func (err *ProfileTypeExistsError) Error() string {
	return fmt.Sprintf("A %s profile already exists for this client.", err.AstrologyType)
}

func (err *ProfileTypeExistsError) Is(target error) bool {
	return target == ErrProfileTypeExists
}
