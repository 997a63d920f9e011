package domain

import (
	"context"
	"errors"
)

var (
	// ErrNotFound is returned by repositories when an entity does not exist
	ErrNotFound = errors.New("entity not found")

	// ErrDuplicate is returned when a unique key is already taken
	ErrDuplicate = errors.New("duplicate: entity already exists")

	// ErrCorruptRecord marks a stored record that cannot be decoded
	ErrCorruptRecord = errors.New("corrupt record")

	// ErrStorageUnavailable is returned while durable storage is failing fast
	ErrStorageUnavailable = errors.New("storage unavailable")
)

// KeyValueStore is the durable key-value persistence the stores sync to.
// Read reports ok=false for an absent key; that is not an error.
type KeyValueStore interface {
	Read(ctx context.Context, key string) (value string, ok bool, err error)
	Write(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
}
