// Package storage persists generated script artifacts and their metadata
// blobs. Artifacts are immutable once uploaded; regeneration writes a new
// timestamped key and the suite record repoints to it, so the backend only
// ever needs Upload/Download/Exists semantics, not overwrite.
package storage

import (
	"context"
	"fmt"
	"io"
	"strings"
)

// BlobStorage defines the interface for storing and retrieving binary data.
type BlobStorage interface {
	// Upload stores data from the reader at the specified key.
	Upload(ctx context.Context, key string, reader io.Reader) error

	// Download retrieves data from the specified key.
	Download(ctx context.Context, key string) (io.ReadCloser, error)

	// Delete removes the data at the specified key.
	Delete(ctx context.Context, key string) error

	// Exists checks if data exists at the specified key.
	Exists(ctx context.Context, key string) (bool, error)

	// GetURL returns a URL for accessing the data at the specified key.
	// For local storage this is a filesystem path; for S3 a presigned URL.
	GetURL(ctx context.Context, key string) (string, error)
}

// Config selects and parameterizes a storage backend.
type Config struct {
	Type    string // "local" or "s3"
	BaseDir string // local: artifact root directory
	Bucket  string // s3: bucket name
	Region  string // s3: AWS region
}

// NewBlobStorage creates a BlobStorage implementation from configuration.
func NewBlobStorage(cfg Config) (BlobStorage, error) {
	switch strings.ToLower(cfg.Type) {
	case "local":
		if cfg.BaseDir == "" {
			return nil, fmt.Errorf("base_dir is required for local storage")
		}
		return NewLocalStorage(cfg.BaseDir)

	case "s3":
		if cfg.Bucket == "" {
			return nil, fmt.Errorf("bucket is required for S3 storage")
		}
		if cfg.Region == "" {
			return nil, fmt.Errorf("region is required for S3 storage")
		}
		return NewS3Storage(cfg.Bucket, cfg.Region)

	default:
		return nil, fmt.Errorf("unsupported storage type: %s", cfg.Type)
	}
}
