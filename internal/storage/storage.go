package storage

import (
	"context"
	"errors"

	"github.com/yourorg/kap-news/internal/config"
)

// ErrNotFound is returned when a directory or object does not exist
var ErrNotFound = errors.New("storage: not found")

// Storage gives read access to the pre-populated asset tree: banner folders,
// custom article images and per-company financials files
type Storage interface {
	// List returns the names of the files directly inside dir, sorted
	List(ctx context.Context, dir string) ([]string, error)

	// Read returns the content of the file at path
	Read(ctx context.Context, path string) ([]byte, error)

	// Kind names the backend for logging
	Kind() string
}

// NewStorage creates a new storage implementation based on the configuration
func NewStorage(cfg *config.AssetsConfig) (Storage, error) {
	switch cfg.Type {
	case "s3":
		return NewS3Storage(&cfg.S3)
	default:
		// Default to local storage
		return NewLocalStorage(cfg.Local.BasePath), nil
	}
}
