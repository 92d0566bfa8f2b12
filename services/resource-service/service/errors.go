package service

import (
	"errors"

	baserepo "github.com/RigelNana/edumarket/pkg/repository"
)

var (
	ErrAuthRequired = errors.New("authentication required")
	ErrForbidden    = errors.New("not allowed to modify this resource")
	// ErrNotFound is the repository sentinel so errors.Is works across layers.
	ErrNotFound = baserepo.ErrNotFound
)

// ValidationError rejects input before anything reaches the backend.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}
