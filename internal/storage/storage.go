package storage

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("snapshot not found")

// Blob holds a single snapshot. Read returns ErrNotFound when nothing has
// been written yet.
type Blob interface {
	Read(ctx context.Context) ([]byte, error)
	Write(ctx context.Context, data []byte) error
	Close() error
}
