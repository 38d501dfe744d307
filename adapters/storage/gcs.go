package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"cloud.google.com/go/storage"
	"go.uber.org/zap"

	"github.com/gospelstack/sermon-audio/domain/repositories"
)

// GCSConfig holds configuration for the GCS blob store adapter
// Required fields:
// - Bucket: the GCS bucket holding generated audio
// Optional fields:
// - SignedURLTTL: when set, GetURL returns V4 signed URLs valid for this
//   duration; when zero, objects are assumed publicly readable and GetURL
//   returns the public object URL
type GCSConfig struct {
	Bucket       string
	SignedURLTTL time.Duration
}

// GCSBlobStore implements BlobStore on Google Cloud Storage
type GCSBlobStore struct {
	client       *storage.Client
	bucket       string
	signedURLTTL time.Duration
	logger       *zap.Logger
}

// Ensure GCSBlobStore implements the BlobStore interface
var _ repositories.BlobStore = (*GCSBlobStore)(nil)

// NewGCSBlobStore creates a new GCS-backed blob store
func NewGCSBlobStore(ctx context.Context, config GCSConfig, logger *zap.Logger) (*GCSBlobStore, error) {
	if config.Bucket == "" {
		return nil, fmt.Errorf("GCS bucket is required")
	}

	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCS client: %w", err)
	}

	return &GCSBlobStore{
		client:       client,
		bucket:       config.Bucket,
		signedURLTTL: config.SignedURLTTL,
		logger:       logger,
	}, nil
}

// NewGCSConfigFromEnv creates a new GCSConfig from environment variables
func NewGCSConfigFromEnv() GCSConfig {
	config := GCSConfig{
		Bucket: os.Getenv("GCS_BUCKET"),
	}

	if ttlStr := os.Getenv("GCS_SIGNED_URL_TTL_HOURS"); ttlStr != "" {
		if hours, err := strconv.Atoi(ttlStr); err == nil && hours > 0 {
			config.SignedURLTTL = time.Duration(hours) * time.Hour
		}
	}

	return config
}

// Put implements repositories.BlobStore
func (s *GCSBlobStore) Put(ctx context.Context, path string, data []byte, contentType string) error {
	w := s.client.Bucket(s.bucket).Object(path).NewWriter(ctx)
	w.ContentType = contentType

	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return fmt.Errorf("failed to write object %s: %w", path, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to finalize object %s: %w", path, err)
	}

	s.logger.Info("Uploaded object",
		zap.String("bucket", s.bucket),
		zap.String("path", path),
		zap.Int("bytes", len(data)))

	return nil
}

// GetURL implements repositories.BlobStore
func (s *GCSBlobStore) GetURL(ctx context.Context, path string) (string, error) {
	if s.signedURLTTL <= 0 {
		return fmt.Sprintf("https://storage.googleapis.com/%s/%s", s.bucket, path), nil
	}

	url, err := s.client.Bucket(s.bucket).SignedURL(path, &storage.SignedURLOptions{
		Method:  "GET",
		Expires: time.Now().Add(s.signedURLTTL),
		Scheme:  storage.SigningSchemeV4,
	})
	if err != nil {
		return "", fmt.Errorf("failed to sign URL for %s: %w", path, err)
	}

	return url, nil
}

// Exists implements repositories.BlobStore
func (s *GCSBlobStore) Exists(ctx context.Context, path string) (bool, error) {
	_, err := s.client.Bucket(s.bucket).Object(path).Attrs(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("failed to stat object %s: %w", path, err)
	}
	return true, nil
}

// Delete implements repositories.BlobStore
func (s *GCSBlobStore) Delete(ctx context.Context, path string) error {
	if err := s.client.Bucket(s.bucket).Object(path).Delete(ctx); err != nil {
		return fmt.Errorf("failed to delete object %s: %w", path, err)
	}
	return nil
}

// Close releases the underlying client
func (s *GCSBlobStore) Close() error {
	return s.client.Close()
}
