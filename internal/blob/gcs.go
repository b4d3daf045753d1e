package blob

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"github.com/google/uuid"

	"github.com/jmorales/gastosbot/internal/common"
)

const uploadTimeout = 2 * time.Minute

// GCS stores photos in a Google Cloud Storage bucket and returns gs://
// URIs as references. It assumes Application Default Credentials.
type GCS struct {
	client *storage.Client
	bucket string
}

// NewGCS creates a bucket-backed store.
func NewGCS(ctx context.Context, bucket string) (*GCS, error) {
	if bucket == "" {
		return nil, fmt.Errorf("%w: blob bucket", common.ErrMissingConfig)
	}

	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}

	return &GCS{client: client, bucket: bucket}, nil
}

// Store implements service.BlobStore.
func (g *GCS) Store(ctx context.Context, userID int64, data []byte) (string, error) {
	if userID <= 0 {
		return "", fmt.Errorf("invalid user id %d", userID)
	}
	if len(data) == 0 {
		return "", fmt.Errorf("empty photo data")
	}

	object := "receipts/" + strconv.FormatInt(userID, 10) + "/" + uuid.New().String() + ".jpg"

	ctx, cancel := context.WithTimeout(ctx, uploadTimeout)
	defer cancel()

	w := g.client.Bucket(g.bucket).Object(object).NewWriter(ctx)
	w.ContentType = "image/jpeg"

	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return "", fmt.Errorf("failed to write photo to bucket: %w", err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("failed to finalize upload: %w", err)
	}

	return "gs://" + g.bucket + "/" + object, nil
}

// Delete implements service.BlobStore.
func (g *GCS) Delete(ctx context.Context, ref string) error {
	bucket, object, err := parseGCSRef(ref)
	if err != nil {
		return err
	}

	if err := g.client.Bucket(bucket).Object(object).Delete(ctx); err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return fmt.Errorf("%w: %s", common.ErrNotFound, ref)
		}
		return fmt.Errorf("failed to delete photo: %w", err)
	}
	return nil
}

// Close releases the underlying API client.
func (g *GCS) Close() error {
	return g.client.Close()
}

// parseGCSRef splits a gs://bucket/object URI.
func parseGCSRef(ref string) (bucket, object string, err error) {
	if !strings.HasPrefix(ref, "gs://") {
		return "", "", fmt.Errorf("invalid GCS reference: %s", ref)
	}

	trimmed := strings.TrimPrefix(ref, "gs://")
	parts := strings.SplitN(trimmed, "/", 2)
	if len(parts) != 2 || parts[1] == "" {
		return "", "", fmt.Errorf("invalid GCS reference (no object path): %s", ref)
	}

	return parts[0], parts[1], nil
}
