package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"go.uber.org/zap"

	"github.com/garyjia/billed/internal/application/port"
)

// S3API is the part of *s3.Client the storage uses
type S3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// S3Storage implements port.BlobStorage on an S3 bucket
type S3Storage struct {
	client        S3API
	bucket        string
	prefix        string
	publicBaseURL string
	logger        *zap.Logger
}

// NewS3Storage creates a new S3Storage. Object keys are prefix/path.
// An empty publicBaseURL yields virtual-hosted bucket URLs.
func NewS3Storage(client S3API, bucket, region, prefix, publicBaseURL string, logger *zap.Logger) *S3Storage {
	if publicBaseURL == "" {
		publicBaseURL = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", bucket, region)
	}
	return &S3Storage{
		client:        client,
		bucket:        bucket,
		prefix:        strings.Trim(prefix, "/"),
		publicBaseURL: strings.TrimRight(publicBaseURL, "/"),
		logger:        logger,
	}
}

func (s *S3Storage) key(p string) string {
	clean := strings.TrimPrefix(path.Clean("/"+p), "/")
	if s.prefix == "" {
		return clean
	}
	return s.prefix + "/" + clean
}

// Put uploads content and returns its public URL
func (s *S3Storage) Put(ctx context.Context, p string, content []byte, contentType string) (string, error) {
	key := s.key(p)
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(content),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		s.logger.Error("Failed to put object", zap.String("key", key), zap.Error(err))
		return "", fmt.Errorf("failed to put object %s: %w", key, err)
	}

	s.logger.Debug("Object stored", zap.String("key", key), zap.Int("size", len(content)))
	return s.publicBaseURL + "/" + key, nil
}

// Get downloads the object stored at p
func (s *S3Storage) Get(ctx context.Context, p string) ([]byte, error) {
	key := s.key(p)
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var nsk *types.NoSuchKey
		if errors.As(err, &nsk) {
			return nil, fmt.Errorf("object %s: %w", key, port.ErrNotFound)
		}
		s.logger.Error("Failed to get object", zap.String("key", key), zap.Error(err))
		return nil, fmt.Errorf("failed to get object %s: %w", key, err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read object %s: %w", key, err)
	}
	return data, nil
}

// Delete removes the object at p. S3 reports success for missing keys.
func (s *S3Storage) Delete(ctx context.Context, p string) error {
	key := s.key(p)
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		s.logger.Error("Failed to delete object", zap.String("key", key), zap.Error(err))
		return fmt.Errorf("failed to delete object %s: %w", key, err)
	}
	return nil
}

var _ port.BlobStorage = (*S3Storage)(nil)
