// Package media stores pet photos in an S3-compatible bucket.
package media

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"

	dErrors "vetblood/pkg/domain-errors"
)

// ~7 MB of binary payload after base64 decoding.
const maxPhotoBytes = 7 << 20

// Storage persists photo payloads and returns a public URL.
type Storage interface {
	UploadPhoto(ctx context.Context, key string, data []byte, contentType string) (string, error)
}

// DecodePhoto accepts a base64 payload, optionally with a data-URL prefix
// ("data:image/jpeg;base64,..."), and returns the raw bytes and content type.
func DecodePhoto(encoded string) ([]byte, string, error) {
	contentType := "image/jpeg"
	if strings.HasPrefix(encoded, "data:") {
		header, rest, ok := strings.Cut(encoded, ",")
		if !ok {
			return nil, "", dErrors.New(dErrors.CodeInvalidInput, "malformed photo data URL")
		}
		contentType = strings.TrimSuffix(strings.TrimPrefix(header, "data:"), ";base64")
		encoded = rest
	}
	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, "", dErrors.New(dErrors.CodeInvalidInput, "photo is not valid base64")
	}
	if len(data) > maxPhotoBytes {
		return nil, "", dErrors.New(dErrors.CodeInvalidInput, "photo exceeds the size limit")
	}
	return data, contentType, nil
}

// PhotoKey builds a unique object key under the pets/ prefix.
func PhotoKey() string {
	return fmt.Sprintf("pets/%s.jpg", uuid.NewString())
}

// S3Storage uploads to an S3-compatible endpoint via the MinIO client.
type S3Storage struct {
	client    *minio.Client
	bucket    string
	publicURL string
}

func NewS3Storage(client *minio.Client, bucket, publicURL string) *S3Storage {
	return &S3Storage{client: client, bucket: bucket, publicURL: strings.TrimSuffix(publicURL, "/")}
}

func (s *S3Storage) UploadPhoto(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	_, err := s.client.PutObject(ctx, s.bucket, key, bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeUnavailable, "photo storage unavailable")
	}
	return fmt.Sprintf("%s/%s/%s", s.publicURL, s.bucket, key), nil
}

// InMemoryStorage records uploads for tests.
type InMemoryStorage struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func NewInMemoryStorage() *InMemoryStorage {
	return &InMemoryStorage{objects: make(map[string][]byte)}
}

func (s *InMemoryStorage) UploadPhoto(_ context.Context, key string, data []byte, _ string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[key] = data
	return "https://storage.test/" + key, nil
}

// Object returns a stored payload for test assertions.
func (s *InMemoryStorage) Object(key string) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.objects[key]
	return b, ok
}
