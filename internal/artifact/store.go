// Package artifact provides archival of exported dataset files to
// S3-compatible object storage, so training runs can fetch datasets without
// access to the pipeline host.
package artifact

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// Content types for the two artifact kinds.
const (
	contentTypeJSONL = "application/x-ndjson"
	contentTypeJSON  = "application/json"
)

// Configuration errors.
var (
	ErrMissingBucket    = errors.New("bucket name is required")
	ErrMissingAccessKey = errors.New("access key ID is required")
	ErrMissingSecretKey = errors.New("secret access key is required")
	ErrMissingEndpoint  = errors.New("endpoint is required")
)

// StoreConfig holds configuration for the artifact store.
type StoreConfig struct {
	BucketName      string
	AccessKeyID     string
	SecretAccessKey string
	Endpoint        string
}

// Store uploads exported dataset artifacts to an S3-compatible bucket.
type Store struct {
	s3Client   *s3.Client
	bucketName string
	logger     *slog.Logger
	timeNow    func() time.Time // for testability
}

// NewStore creates a Store with the given configuration.
func NewStore(cfg StoreConfig, logger *slog.Logger) (*Store, error) {
	if cfg.BucketName == "" {
		return nil, ErrMissingBucket
	}
	if cfg.AccessKeyID == "" {
		return nil, ErrMissingAccessKey
	}
	if cfg.SecretAccessKey == "" {
		return nil, ErrMissingSecretKey
	}
	if cfg.Endpoint == "" {
		return nil, ErrMissingEndpoint
	}

	// R2-compatible configuration: auto region, path-style addressing.
	s3Client := s3.New(s3.Options{
		Region: "auto",
		Credentials: aws.NewCredentialsCache(credentials.NewStaticCredentialsProvider(
			cfg.AccessKeyID,
			cfg.SecretAccessKey,
			"",
		)),
		BaseEndpoint: aws.String(cfg.Endpoint),
		UsePathStyle: true,
	})

	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		s3Client:   s3Client,
		bucketName: cfg.BucketName,
		logger:     logger,
		timeNow:    time.Now,
	}, nil
}

// UploadDataset uploads a dataset/manifest file pair under
// datasets/{platform}/{timestamp}/. Returns the object keys written.
func (s *Store) UploadDataset(ctx context.Context, platform, datasetPath, metadataPath string) ([]string, error) {
	prefix := fmt.Sprintf("datasets/%s/%s", platform, s.timeNow().UTC().Format("20060102T150405Z"))

	keys := make([]string, 0, 2)
	uploads := []struct {
		path        string
		contentType string
	}{
		{datasetPath, contentTypeJSONL},
		{metadataPath, contentTypeJSON},
	}
	for _, u := range uploads {
		key := prefix + "/" + filepath.Base(u.path)
		if err := s.putFile(ctx, key, u.path, u.contentType); err != nil {
			return keys, err
		}
		keys = append(keys, key)
		s.logger.Info("artifact uploaded", "bucket", s.bucketName, "key", key)
	}
	return keys, nil
}

func (s *Store) putFile(ctx context.Context, key, path, contentType string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open artifact %s: %w", path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("stat artifact %s: %w", path, err)
	}

	_, err = s.s3Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucketName),
		Key:           aws.String(key),
		Body:          f,
		ContentLength: aws.Int64(info.Size()),
		ContentType:   aws.String(contentType),
	})
	if err != nil {
		return fmt.Errorf("upload %s: %w", key, err)
	}
	return nil
}
