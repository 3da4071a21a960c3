package service

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"
)

// MinIOOptions configures the archive bucket.
type MinIOOptions struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// ArchiveService keeps a copy of every imported spreadsheet in object
// storage. Without a client it stores nothing.
type ArchiveService struct {
	client *minio.Client
	bucket string
	logger *zap.Logger
}

func NewArchiveService(client *minio.Client, bucket string, logger *zap.Logger) *ArchiveService {
	return &ArchiveService{client: client, bucket: bucket, logger: logger}
}

// NewMinIOClient returns nil when no endpoint is configured.
func NewMinIOClient(opts MinIOOptions) (*minio.Client, error) {
	if opts.Endpoint == "" {
		return nil, nil
	}
	return minio.New(opts.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(opts.AccessKey, opts.SecretKey, ""),
		Secure: opts.UseSSL,
	})
}

// Enabled reports whether uploads are archived.
func (s *ArchiveService) Enabled() bool {
	return s != nil && s.client != nil
}

// Store uploads the file and returns its object name, or "" when disabled.
func (s *ArchiveService) Store(ctx context.Context, fileName string, data []byte) (string, error) {
	if !s.Enabled() {
		return "", nil
	}

	objectName := fmt.Sprintf("imports/%s/%s_%s", time.Now().Format("2006/01/02"), uuid.New().String()[:8], filepath.Base(fileName))
	_, err := s.client.PutObject(ctx, s.bucket, objectName, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: xlsxContentType,
	})
	if err != nil {
		return "", fmt.Errorf("archive upload: %w", err)
	}
	s.logger.Info("spreadsheet archived", zap.String("object", objectName), zap.Int("size", len(data)))
	return objectName, nil
}
