// Package uploads stores inspiration images attached to appointments.
package uploads

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"github.com/velvetrow/salonbook/pkg/logging"
)

// ErrEmptyFile is returned when the uploaded body has no content.
var ErrEmptyFile = errors.New("uploaded file is empty")

// keyPrefix namespaces inspo objects inside the bucket or upload dir.
const keyPrefix = "inspo/"

// Store saves an image and resolves stored keys to client-facing URLs.
type Store interface {
	Save(ctx context.Context, filename, contentType string, body io.Reader) (string, error)
	ResolveURL(key string) string
}

// S3API is the subset of the S3 client the store uses.
type S3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Store keeps inspo images in an S3 bucket under uuid keys.
type S3Store struct {
	bucket  string
	baseURL string
	client  S3API
	logger  *logging.Logger
}

// NewS3Store creates an S3-backed store. baseURL is the public prefix keys
// resolve under, without a trailing slash.
func NewS3Store(client S3API, bucket, baseURL string, logger *logging.Logger) *S3Store {
	if logger == nil {
		logger = logging.Default()
	}
	return &S3Store{
		bucket:  bucket,
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  client,
		logger:  logger,
	}
}

// Enabled reports whether the store has a bucket and client configured.
func (s *S3Store) Enabled() bool {
	return s != nil && s.bucket != "" && s.client != nil
}

func objectKey(filename string) string {
	ext := strings.ToLower(path.Ext(filename))
	return keyPrefix + uuid.NewString() + ext
}

// Save uploads the image and returns its storage key.
func (s *S3Store) Save(ctx context.Context, filename, contentType string, body io.Reader) (string, error) {
	key := objectKey(filename)
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("uploads: s3 put %s: %w", key, err)
	}
	s.logger.Info("inspo image stored", "key", key, "bucket", s.bucket)
	return key, nil
}

// ResolveURL returns the public URL for a stored key.
func (s *S3Store) ResolveURL(key string) string {
	if s.baseURL != "" {
		return s.baseURL + "/" + key
	}
	return fmt.Sprintf("https://%s.s3.amazonaws.com/%s", s.bucket, key)
}

// DiskStore keeps inspo images on the local filesystem for development.
type DiskStore struct {
	dir     string
	baseURL string
	logger  *logging.Logger
}

// NewDiskStore creates a filesystem-backed store rooted at dir.
func NewDiskStore(dir, baseURL string, logger *logging.Logger) *DiskStore {
	if logger == nil {
		logger = logging.Default()
	}
	return &DiskStore{
		dir:     dir,
		baseURL: strings.TrimRight(baseURL, "/"),
		logger:  logger,
	}
}

// Save writes the image under the upload dir and returns its key.
func (d *DiskStore) Save(_ context.Context, filename, _ string, body io.Reader) (string, error) {
	key := objectKey(filename)
	dest := filepath.Join(d.dir, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return "", fmt.Errorf("uploads: mkdir: %w", err)
	}

	f, err := os.Create(dest)
	if err != nil {
		return "", fmt.Errorf("uploads: create %s: %w", dest, err)
	}
	defer f.Close()

	n, err := io.Copy(f, body)
	if err != nil {
		return "", fmt.Errorf("uploads: write %s: %w", dest, err)
	}
	if n == 0 {
		_ = os.Remove(dest)
		return "", ErrEmptyFile
	}
	d.logger.Info("inspo image stored", "key", key, "path", dest)
	return key, nil
}

// ResolveURL returns the public URL the router serves the upload dir under.
func (d *DiskStore) ResolveURL(key string) string {
	return d.baseURL + "/uploads/" + key
}
