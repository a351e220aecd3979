// Package storage persists uploaded images in an object store, behind a
// backend-agnostic interface with MinIO and Google Cloud Storage
// implementations.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/pantry-pal/apiserver/config"
)

// ErrUnsupportedContentType is returned when an upload is not an image the
// store accepts.
var ErrUnsupportedContentType = errors.New("unsupported content type")

var imageContentTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// ExtensionFor returns the file extension for an accepted image content
// type, or ErrUnsupportedContentType.
func ExtensionFor(contentType string) (string, error) {
	ext, ok := imageContentTypes[contentType]
	if !ok {
		return "", ErrUnsupportedContentType
	}
	return ext, nil
}

// ContentTypeFor maps a stored key's extension back to its content type.
func ContentTypeFor(key string) string {
	for contentType, ext := range imageContentTypes {
		if len(key) >= len(ext) && key[len(key)-len(ext):] == ext {
			return contentType
		}
	}
	return "application/octet-stream"
}

// ImageStore holds uploaded images in a bucket.
type ImageStore interface {
	// EnsureBucket ensures the configured bucket exists.
	EnsureBucket(ctx context.Context) error

	// Put stores an image under the given key. Implementations reject
	// content types not in the image allow-list.
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error

	// Get opens a reader for a stored image.
	Get(ctx context.Context, key string) (io.ReadCloser, error)

	// Delete removes a stored image.
	Delete(ctx context.Context, key string) error
}

// New constructs the configured ImageStore backend. An empty backend name
// disables uploads and returns nil without error.
func New(ctx context.Context, cfg config.StorageConfig) (ImageStore, error) {
	switch cfg.Backend {
	case "":
		return nil, nil
	case "minio":
		return newMinioStore(cfg.Minio)
	case "gcs":
		return newGCSStore(ctx, cfg.GCS)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}
