package media

import (
	"context"
	"io"
	"net/url"

	gcs "cloud.google.com/go/storage"

	applog "github.com/janisto/account-settings/internal/platform/logging"
)

// GCSStore implements Store on a Cloud Storage bucket.
type GCSStore struct {
	bucket  *gcs.BucketHandle
	baseURL string
}

// NewGCSStore creates a store writing to bucket. Object URLs are served from
// https://storage.googleapis.com/<bucket>/.
func NewGCSStore(bucket *gcs.BucketHandle) *GCSStore {
	return &GCSStore{
		bucket:  bucket,
		baseURL: "https://storage.googleapis.com/" + bucket.BucketName() + "/",
	}
}

// Upload streams r into a new object.
func (s *GCSStore) Upload(ctx context.Context, folder string, r io.Reader) (*Object, error) {
	p, err := prepare(folder, r)
	if err != nil {
		return nil, err
	}

	w := s.bucket.Object(p.name).NewWriter(ctx)
	w.ContentType = p.contentType
	w.CacheControl = "public, max-age=31536000, immutable"

	n, err := io.Copy(w, p.body)
	if err != nil {
		_ = w.Close()
		applog.LogError(ctx, "media upload failed", err)
		return nil, err
	}
	if err := w.Close(); err != nil {
		applog.LogError(ctx, "media upload finalize failed", err)
		return nil, err
	}

	return &Object{
		Name:        p.name,
		URL:         s.baseURL + (&url.URL{Path: p.name}).EscapedPath(),
		ContentType: p.contentType,
		Size:        n,
	}, nil
}

// Compile-time interface check
var _ Store = (*GCSStore)(nil)
