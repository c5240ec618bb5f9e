package storage

import (
	"context"
	"fmt"
	"io"

	"github.com/taskizy-api/config"
)

// Drivers
const (
	DriverMemory = "memory"
	DriverS3     = "s3"
)

// Object describes a stored upload
type Object struct {
	Key         string
	URL         string
	ContentType string
	Size        int64
}

// Store persists uploaded files such as avatars
type Store interface {
	Driver() string
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) (Object, error)
	Delete(ctx context.Context, key string) error
}

// Open builds the store selected by STORAGE_DRIVER
func Open(ctx context.Context, cfg *config.Config) (Store, error) {
	switch cfg.StorageDriver {
	case "", DriverMemory:
		return NewMemoryStore(cfg.StoragePublicURL), nil
	case DriverS3:
		return NewS3Store(ctx, S3Config{
			Bucket:          cfg.StorageBucket,
			Region:          cfg.StorageRegion,
			Endpoint:        cfg.StorageEndpoint,
			AccessKeyID:     cfg.StorageAccessKeyID,
			SecretAccessKey: cfg.StorageSecretAccessKey,
			PathStyle:       cfg.StoragePathStyle,
			PublicURL:       cfg.StoragePublicURL,
		})
	default:
		return nil, fmt.Errorf("unsupported STORAGE_DRIVER %q", cfg.StorageDriver)
	}
}
