package storage

import (
	"context"
	"errors"
	"io"
	"strings"

	"cloud.google.com/go/storage"
	"github.com/pantry-pal/apiserver/config"
	"google.golang.org/api/option"
)

// gcsStore keeps images in a Google Cloud Storage bucket.
type gcsStore struct {
	client    *storage.Client
	bucket    string
	projectID string
}

func newGCSStore(ctx context.Context, cfg config.GCSConfig) (*gcsStore, error) {
	if strings.TrimSpace(cfg.Bucket) == "" {
		return nil, errors.New("gcs bucket is required")
	}

	var opts []option.ClientOption
	if strings.TrimSpace(cfg.CredentialsFile) != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}

	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, err
	}

	return &gcsStore{client: client, bucket: cfg.Bucket, projectID: cfg.ProjectID}, nil
}

func (s *gcsStore) EnsureBucket(ctx context.Context) error {
	_, err := s.client.Bucket(s.bucket).Attrs(ctx)
	if err == nil {
		return nil
	}
	if !errors.Is(err, storage.ErrBucketNotExist) {
		return err
	}
	if strings.TrimSpace(s.projectID) == "" {
		return errors.New("gcs project id is required to create bucket")
	}
	return s.client.Bucket(s.bucket).Create(ctx, s.projectID, nil)
}

func (s *gcsStore) Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error {
	if _, err := ExtensionFor(contentType); err != nil {
		return err
	}

	writer := s.client.Bucket(s.bucket).Object(key).NewWriter(ctx)
	writer.ContentType = contentType
	if _, err := io.Copy(writer, r); err != nil {
		_ = writer.Close()
		return err
	}
	return writer.Close()
}

func (s *gcsStore) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	return s.client.Bucket(s.bucket).Object(key).NewReader(ctx)
}

func (s *gcsStore) Delete(ctx context.Context, key string) error {
	return s.client.Bucket(s.bucket).Object(key).Delete(ctx)
}
