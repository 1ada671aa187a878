// Package util provides identifier and time helpers shared across the services.
package util

import (
	"fmt"

	"github.com/google/uuid"
)

// IDGenerator hands out time-ordered UUIDv7 identifiers. Ordering by ID
// therefore matches creation order, which the repositories rely on as a
// tiebreaker when timestamps collide.
type IDGenerator struct{}

// NewIDGenerator creates a new ID generator.
func NewIDGenerator() *IDGenerator {
	return &IDGenerator{}
}

// NewID generates a new UUIDv7 identifier.
func (g *IDGenerator) NewID() string {
	return NewID()
}

// NewID generates a new UUIDv7 identifier, falling back to a random UUID if
// the clock cannot be read.
func NewID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.New().String()
	}
	return id.String()
}

// ParseID validates and normalizes a UUID string.
func ParseID(s string) (string, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return "", fmt.Errorf("invalid ID format: %w", err)
	}
	return id.String(), nil
}

// IsValidID checks if a string is a valid UUID format.
func IsValidID(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}

// DeterministicID generates a stable ID for fixtures and golden output.
// Do not use for persisted production rows.
func DeterministicID(seed int64) string {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(fmt.Sprintf("prepsys-%d", seed))).String()
}
