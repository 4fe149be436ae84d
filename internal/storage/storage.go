package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
)

var ErrObjectNotFound = errors.New("storage: object not found")

// Storage is where uploaded files end up. Keys are slash separated and relative.
type Storage interface {
	Save(ctx context.Context, key string, reader io.Reader, contentType string) error
	Get(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
	// URL is the public address of key.
	URL(key string) string
	Provider() string
}

type Config struct {
	Type      string // local, r2, s3
	BasePath  string // local only
	BaseURL   string
	Bucket    string
	Region    string
	AccessKey string
	SecretKey string
	Endpoint  string // required for r2
}

func New(cfg Config) (Storage, error) {
	switch cfg.Type {
	case "", "local":
		return NewLocalStorage(cfg)
	case "r2", "s3":
		return NewObjectStorage(cfg)
	default:
		return nil, fmt.Errorf("unsupported storage type: %s", cfg.Type)
	}
}
