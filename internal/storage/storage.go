package storage

import (
	"context"
	"errors"
	"strings"
)

var errInvalidObjectKey = errors.New("invalid object key")

// ObjectStore is the contract every bucket backend implements. Errors from
// the underlying client are returned as-is.
type ObjectStore interface {
	PutObject(ctx context.Context, key string, data []byte) error
	GetObject(ctx context.Context, key string) ([]byte, error)
	DeleteObject(ctx context.Context, key string) error
	ListKeys(ctx context.Context) ([]string, error)
}

// Object is the backend-neutral descriptor returned by listings.
type Object struct {
	Name string `json:"name"`
	Path string `json:"path"`
}

func validateKey(key string) error {
	if strings.TrimSpace(key) == "" {
		return errInvalidObjectKey
	}
	return nil
}
