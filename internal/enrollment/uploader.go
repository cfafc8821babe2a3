package enrollment

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"time"

	"matricula-digital/enrollment-portal/enrollment-docs-backend/internal/docgen"
	"matricula-digital/enrollment-portal/enrollment-docs-backend/pkg/storage"
)

// S3Uploader mirrors produced documents into an object bucket under a
// per-generation prefix and hands out time-limited download links for the
// mirrored copies.
type S3Uploader struct {
	client  storage.S3Client
	bucket  string
	prefix  string
	linkTTL time.Duration
}

// NewS3Uploader builds the mirror. A non-positive linkTTL disables link
// issuance; mirrored objects are then reachable only through the bucket.
func NewS3Uploader(client storage.S3Client, bucket, prefix string, linkTTL time.Duration) *S3Uploader {
	return &S3Uploader{
		client:  client,
		bucket:  bucket,
		prefix:  prefix,
		linkTTL: linkTTL,
	}
}

// Store uploads one document under {prefix}/{generationID}/{filename} and
// returns a presigned download link when link issuance is enabled. Errors
// name the document kind, not the filename, because filenames carry the
// applicant's document number.
func (u *S3Uploader) Store(ctx context.Context, generationID string, doc *docgen.DocumentOutput) (string, error) {
	key := path.Join(u.prefix, generationID, doc.Filename)
	if err := u.client.Upload(ctx, u.bucket, key, contentTypePDF, bytes.NewReader(doc.Content)); err != nil {
		return "", fmt.Errorf("mirror %s: %w", doc.Kind, err)
	}
	if u.linkTTL <= 0 {
		return "", nil
	}
	url, err := u.client.GetPresignedURL(ctx, u.bucket, key, u.linkTTL)
	if err != nil {
		return "", fmt.Errorf("link %s: %w", doc.Kind, err)
	}
	return url, nil
}
