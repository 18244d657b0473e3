package helpers

import (
	"context"
	"fmt"
	"io"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

// NewGCSClient creates a Google Cloud Storage client for bucket. An empty
// bucket disables uploads and returns a nil client. If credsPath is empty,
// ADC is used.
func NewGCSClient(ctx context.Context, bucket, credsPath string) (*storage.Client, error) {
	if bucket == "" {
		return nil, nil
	}
	if credsPath == "" {
		return storage.NewClient(ctx)
	}
	return storage.NewClient(ctx, option.WithCredentialsFile(credsPath))
}

// UploadObject streams r into bucket/objectPath and returns its public URL.
func UploadObject(ctx context.Context, client *storage.Client, bucket, objectPath, contentType string, r io.Reader) (string, error) {
	wc := client.Bucket(bucket).Object(objectPath).NewWriter(ctx)
	wc.ContentType = contentType
	wc.CacheControl = "public, max-age=86400"
	wc.ChunkSize = 0 // thumbnails are small, upload in one request
	if _, err := io.Copy(wc, r); err != nil {
		_ = wc.Close()
		return "", fmt.Errorf("write gs://%s/%s: %w", bucket, objectPath, err)
	}
	if err := wc.Close(); err != nil {
		return "", fmt.Errorf("close gs://%s/%s: %w", bucket, objectPath, err)
	}
	return PublicURL(bucket, objectPath), nil
}

// PublicURL builds the public URL of an object (bucket must allow public reads)
func PublicURL(bucket, objectPath string) string {
	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", bucket, objectPath)
}
