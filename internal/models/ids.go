package models

import (
	"errors"

	"github.com/google/uuid"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("duplicate record")
)

func newID() string {
	return uuid.NewString()
}

// IsValidID reports whether raw is a canonical UUID string.
func IsValidID(raw string) bool {
	_, err := uuid.Parse(raw)
	return err == nil
}
