// Package services holds the errors shared by the service packages.
package services

import (
	"errors"

	"github.com/habibGamal/preparation-system/internal/repository"
)

var (
	// ErrNotFound is returned when an entity does not exist.
	ErrNotFound = repository.ErrNotFound

	// ErrOrderNotDraft is returned when a completed order is edited, deleted or completed again.
	ErrOrderNotDraft = errors.New("order is not a draft")

	// ErrDocumentClosed is returned when a closed stock document is edited, deleted or closed again.
	ErrDocumentClosed = errors.New("document is closed")

	// ErrInvalidInput is returned when a request fails validation.
	ErrInvalidInput = errors.New("invalid input")
)
