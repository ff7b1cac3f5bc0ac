package storage

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// S3Config contains the configuration required to connect to S3 (MinIO).
type S3Config struct {
	Endpoint        string // The endpoint for the S3 service, host[:port].
	AccessKeyID     string
	SecretAccessKey string
	Bucket          string
	KeyPrefix       string // Optional prefix separating lockkv objects from others.
	UseSSL          bool
	Region          string
}

// S3Store keeps one object per key in an S3 bucket
type S3Store struct {
	client    *minio.Client
	bucket    string
	keyPrefix string
}

// NewS3Store connects to S3 and creates the bucket if it does not exist
func NewS3Store(ctx context.Context, config S3Config) (*S3Store, error) {
	if config.Bucket == "" {
		return nil, fmt.Errorf("s3 store requires a bucket name")
	}

	client, err := minio.New(config.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(config.AccessKeyID, config.SecretAccessKey, ""),
		Secure: config.UseSSL,
		Region: config.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create MinIO client: %w", err)
	}

	s := &S3Store{
		client:    client,
		bucket:    config.Bucket,
		keyPrefix: strings.Trim(config.KeyPrefix, "/"),
	}

	exists, err := client.BucketExists(ctx, s.bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{Region: config.Region}); err != nil {
			return nil, fmt.Errorf("failed to create bucket: %w", err)
		}
	}

	return s, nil
}

// GetItem retrieves the ciphertext stored under key
func (s *S3Store) GetItem(ctx context.Context, key string) (string, bool, error) {
	object, err := s.client.GetObject(ctx, s.bucket, s.objectName(key), minio.GetObjectOptions{})
	if err != nil {
		if isNoSuchKey(err) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("failed to get object: %w", err)
	}
	defer object.Close()

	data, err := io.ReadAll(object)
	if err != nil {
		// GetObject is lazy, a missing object surfaces on first read
		if isNoSuchKey(err) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("failed to read object: %w", err)
	}
	return string(data), true, nil
}

// SetItem stores ciphertext under key
func (s *S3Store) SetItem(ctx context.Context, key, value string) error {
	_, err := s.client.PutObject(ctx, s.bucket, s.objectName(key),
		strings.NewReader(value), int64(len(value)),
		minio.PutObjectOptions{ContentType: "text/plain"})
	if err != nil {
		return fmt.Errorf("failed to put object: %w", err)
	}
	return nil
}

// RemoveItem deletes the object for key. Removing a missing key succeeds.
func (s *S3Store) RemoveItem(ctx context.Context, key string) error {
	err := s.client.RemoveObject(ctx, s.bucket, s.objectName(key), minio.RemoveObjectOptions{})
	if err != nil && !isNoSuchKey(err) {
		return fmt.Errorf("failed to remove object: %w", err)
	}
	return nil
}

// Keys lists all keys under the configured prefix
func (s *S3Store) Keys(ctx context.Context) ([]string, error) {
	opts := minio.ListObjectsOptions{Recursive: true}
	if s.keyPrefix != "" {
		opts.Prefix = s.keyPrefix + "/"
	}

	var keys []string
	for object := range s.client.ListObjects(ctx, s.bucket, opts) {
		if object.Err != nil {
			return nil, fmt.Errorf("failed to list objects: %w", object.Err)
		}
		keys = append(keys, s.keyName(object.Key))
	}
	return keys, nil
}

// Ping checks that the bucket is reachable
func (s *S3Store) Ping(ctx context.Context) error {
	if _, err := s.client.BucketExists(ctx, s.bucket); err != nil {
		return fmt.Errorf("s3 unreachable: %w", err)
	}
	return nil
}

func (s *S3Store) objectName(key string) string {
	if s.keyPrefix == "" {
		return key
	}
	return s.keyPrefix + "/" + key
}

func (s *S3Store) keyName(object string) string {
	if s.keyPrefix == "" {
		return object
	}
	return strings.TrimPrefix(object, s.keyPrefix+"/")
}

func isNoSuchKey(err error) bool {
	return minio.ToErrorResponse(err).Code == "NoSuchKey"
}
