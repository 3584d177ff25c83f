// Package storage keeps applicant uploads and archived application PDFs in
// S3-compatible object storage.
package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"wareworks/internal/platform/config"
	"wareworks/internal/submission/models"
	domainerrors "wareworks/pkg/domain-errors"
)

// Service wraps a bucket. A nil *Service is a valid "not configured" value;
// handlers and the archive step check Configured before use.
type Service struct {
	client *minio.Client
	bucket string
	logger *slog.Logger
}

// New builds the object storage client, or returns (nil, nil) when no
// endpoint is configured so the rest of the service can run without it.
func New(cfg config.Storage, logger *slog.Logger) (*Service, error) {
	if cfg.Endpoint == "" {
		return nil, nil
	}

	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, domainerrors.Wrap(err, domainerrors.CodeInternal, "object storage client setup")
	}
	return &Service{client: client, bucket: cfg.Bucket, logger: logger}, nil
}

// Configured reports whether object storage is available.
func (s *Service) Configured() bool {
	return s != nil && s.client != nil
}

// EnsureBucket creates the bucket if it does not exist yet.
func (s *Service) EnsureBucket(ctx context.Context) error {
	if !s.Configured() {
		return nil
	}
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return domainerrors.Wrap(err, domainerrors.CodeUnavailable, "check bucket")
	}
	if exists {
		return nil
	}
	if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{}); err != nil {
		return domainerrors.Wrap(err, domainerrors.CodeUnavailable, "create bucket")
	}
	s.logger.Info("storage_bucket_created", "bucket", s.bucket)
	return nil
}

// StoredObject describes one persisted upload.
type StoredObject struct {
	DocumentID string `json:"documentId"`
	Filename   string `json:"filename"`
	Size       int64  `json:"size"`
}

// StoreUpload persists an applicant-supplied supporting document and returns
// its generated identifier.
func (s *Service) StoreUpload(ctx context.Context, filename, contentType string, r io.Reader, size int64) (*StoredObject, error) {
	if !s.Configured() {
		return nil, domainerrors.New(domainerrors.CodeUnavailable, "object storage is not configured")
	}

	documentID := uuid.NewString()
	objectName := uploadObjectName(documentID, filename)

	info, err := s.client.PutObject(ctx, s.bucket, objectName, r, size, minio.PutObjectOptions{
		ContentType: contentType,
		UserMetadata: map[string]string{
			"original-filename": filename,
		},
	})
	if err != nil {
		return nil, domainerrors.Wrap(err, domainerrors.CodeUnavailable, "store upload")
	}

	s.logger.Info("upload_stored",
		"document_id", documentID,
		"object", objectName,
		"size", info.Size)
	return &StoredObject{DocumentID: documentID, Filename: sanitizeFilename(filename), Size: info.Size}, nil
}

// OpenUpload streams a previously stored upload. Callers close the reader.
func (s *Service) OpenUpload(ctx context.Context, documentID string) (io.ReadCloser, *minio.ObjectInfo, error) {
	if !s.Configured() {
		return nil, nil, domainerrors.New(domainerrors.CodeUnavailable, "object storage is not configured")
	}
	if uuid.Validate(documentID) != nil {
		return nil, nil, domainerrors.New(domainerrors.CodeBadRequest, "invalid document id")
	}

	prefix := "uploads/" + documentID + "/"
	for object := range s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{Prefix: prefix}) {
		if object.Err != nil {
			return nil, nil, domainerrors.Wrap(object.Err, domainerrors.CodeUnavailable, "list uploads")
		}
		reader, err := s.client.GetObject(ctx, s.bucket, object.Key, minio.GetObjectOptions{})
		if err != nil {
			return nil, nil, domainerrors.Wrap(err, domainerrors.CodeUnavailable, "open upload")
		}
		stat, err := reader.Stat()
		if err != nil {
			reader.Close()
			return nil, nil, domainerrors.Wrap(err, domainerrors.CodeNotFound, "upload not found")
		}
		return reader, &stat, nil
	}
	return nil, nil, domainerrors.New(domainerrors.CodeNotFound, "upload not found")
}

// ArchiveDocument stores a generated application PDF under its submission.
func (s *Service) ArchiveDocument(ctx context.Context, submissionID string, doc *models.GeneratedDocument) error {
	if !s.Configured() {
		return domainerrors.New(domainerrors.CodeUnavailable, "object storage is not configured")
	}

	objectName := fmt.Sprintf("submissions/%s/%s", submissionID, doc.Filename)
	_, err := s.client.PutObject(ctx, s.bucket, objectName,
		bytes.NewReader(doc.Bytes), int64(len(doc.Bytes)),
		minio.PutObjectOptions{ContentType: doc.MIMEType})
	if err != nil {
		return domainerrors.Wrap(err, domainerrors.CodeUnavailable, "archive document")
	}

	s.logger.Info("document_archived",
		"submission_id", submissionID,
		"object", objectName)
	return nil
}

func uploadObjectName(documentID, filename string) string {
	return "uploads/" + documentID + "/" + sanitizeFilename(filename)
}

// sanitizeFilename keeps object keys flat and header-safe.
func sanitizeFilename(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return "document"
	}
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '.' || r == '-' || r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	return b.String()
}
