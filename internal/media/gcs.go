package media

import (
	"context"
	"fmt"
	"io"
	"time"

	"cloud.google.com/go/storage"
	"github.com/bindassticks/storefront/pkg/config"
	"google.golang.org/api/option"
)

// GCSUploader writes objects into a Google Cloud Storage bucket.
type GCSUploader struct {
	client    *storage.Client
	bucket    string
	publicURL string
	now       func() time.Time
}

// NewGCSClient creates a storage client, using the credentials file when one is configured.
func NewGCSClient(ctx context.Context, cfg config.GCSConfig) (*storage.Client, error) {
	var opts []option.ClientOption
	if cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create gcs client: %w", err)
	}
	return client, nil
}

func NewGCSUploader(client *storage.Client, bucket, publicBaseURL string) *GCSUploader {
	return &GCSUploader{
		client:    client,
		bucket:    bucket,
		publicURL: publicBaseURL,
		now:       time.Now,
	}
}

func (u *GCSUploader) Upload(ctx context.Context, obj Object) (string, error) {
	key := ObjectKey(u.now(), obj.Filename)

	w := u.client.Bucket(u.bucket).Object(key).NewWriter(ctx)
	w.ContentType = obj.ContentType
	w.CacheControl = "public, max-age=31536000, immutable"

	if _, err := io.Copy(w, obj.Body); err != nil {
		_ = w.Close()
		return "", fmt.Errorf("write %s: %w", key, err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("close %s: %w", key, err)
	}
	return publicURL(u.publicURL, key), nil
}
