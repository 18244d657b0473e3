// Package storage uploads book thumbnails to Google Cloud Storage.
package storage

import (
	"context"
	"io"
	"mime"
	"path"

	gcs "cloud.google.com/go/storage"
	"github.com/google/uuid"

	"github.com/oksasatya/go-books-api/pkg/helpers"
)

type ThumbnailStore struct {
	client *gcs.Client
	bucket string
}

func NewThumbnailStore(client *gcs.Client, bucket string) *ThumbnailStore {
	return &ThumbnailStore{client: client, bucket: bucket}
}

// Upload writes the image under thumbnails/<bookID>/<random><ext> and returns
// its public URL.
func (s *ThumbnailStore) Upload(ctx context.Context, bookID, contentType string, r io.Reader) (string, error) {
	return helpers.UploadObject(ctx, s.client, s.bucket, ObjectPath(bookID, contentType), contentType, r)
}

// ObjectPath names a new thumbnail object for bookID.
func ObjectPath(bookID, contentType string) string {
	ext := ""
	if exts, _ := mime.ExtensionsByType(contentType); len(exts) > 0 {
		ext = exts[0]
	}
	return path.Join("thumbnails", bookID, uuid.NewString()+ext)
}
