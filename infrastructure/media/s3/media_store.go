// Package s3 hosts uploaded images in an S3 bucket.
package s3

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"path"
	"strings"

	"chirp/application/ports"
	pkgerrors "chirp/pkg/errors"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// extensions maps the accepted image content types to object suffixes
var extensions = map[string]string{
	"image/jpeg": "jpg",
	"image/png":  "png",
	"image/gif":  "gif",
	"image/webp": "webp",
}

// MediaStore implements ports.MediaStore on S3. Object keys are random;
// the public URL ends in /<publicId>.<ext> so Destroy can recover the
// key from a stored URL alone.
type MediaStore struct {
	client *s3.Client
	bucket string
	region string
	logger *zap.Logger
}

// NewMediaStore creates a new S3-backed media store
func NewMediaStore(client *s3.Client, bucket, region string, logger *zap.Logger) ports.MediaStore {
	return &MediaStore{
		client: client,
		bucket: bucket,
		region: region,
		logger: logger,
	}
}

// Upload stores raw image bytes and returns the public object URL
func (m *MediaStore) Upload(ctx context.Context, data []byte, contentType string) (string, error) {
	ext, ok := extensions[contentType]
	if !ok {
		return "", pkgerrors.NewValidationError("unsupported image type")
	}

	key := fmt.Sprintf("%s.%s", uuid.New().String(), ext)
	_, err := m.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(m.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", pkgerrors.NewExternalError("media store", err)
	}

	m.logger.Debug("image uploaded",
		zap.String("bucket", m.bucket),
		zap.String("key", key),
	)

	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", m.bucket, m.region, key), nil
}

// Destroy removes the object behind a public URL
func (m *MediaStore) Destroy(ctx context.Context, publicURL string) error {
	key, err := keyFromURL(publicURL)
	if err != nil {
		return err
	}

	_, err = m.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(m.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return pkgerrors.NewExternalError("media store", err)
	}
	return nil
}

// keyFromURL extracts the trailing <publicId>.<ext> path element
func keyFromURL(publicURL string) (string, error) {
	parsed, err := url.Parse(publicURL)
	if err != nil {
		return "", pkgerrors.NewValidationError("malformed media url")
	}
	key := path.Base(parsed.Path)
	if key == "" || key == "." || key == "/" || !strings.Contains(key, ".") {
		return "", pkgerrors.NewValidationError("malformed media url")
	}
	return key, nil
}
