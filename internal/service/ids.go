package service

import "github.com/google/uuid"

// IDGenerator produces identifiers that are unique for the lifetime of a store
type IDGenerator interface {
	NewID() string
}

// UUIDGenerator issues time-ordered UUIDv7 strings
type UUIDGenerator struct{}

// NewID returns a new UUIDv7, falling back to a random UUIDv4 if the
// clock source fails.
func (UUIDGenerator) NewID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}
