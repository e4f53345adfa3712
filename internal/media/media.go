// Package media uploads product images to an object store.
package media

import (
	"context"
	"fmt"
	"io"
	"path"
	"regexp"
	"strings"
	"time"

	storeerrors "github.com/bindassticks/storefront/internal/errors"
)

// KeyPrefix is the folder product images are stored under.
const KeyPrefix = "products/"

// AllowedContentTypes lists the image types accepted for upload.
var AllowedContentTypes = map[string]string{
	"image/png":  ".png",
	"image/jpeg": ".jpg",
	"image/webp": ".webp",
	"image/gif":  ".gif",
}

// Object is an image to upload. Body is rewound before every retry.
type Object struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.ReadSeeker
}

// Uploader stores an object and returns its public URL.
type Uploader interface {
	Upload(ctx context.Context, obj Object) (string, error)
}

// Validate checks the content type and size of obj. A maxBytes of 0 disables the size check.
func Validate(obj Object, maxBytes int64) error {
	ct := strings.ToLower(strings.TrimSpace(obj.ContentType))
	if i := strings.IndexByte(ct, ';'); i >= 0 {
		ct = strings.TrimSpace(ct[:i])
	}
	if _, ok := AllowedContentTypes[ct]; !ok {
		return fmt.Errorf("%w: %q", storeerrors.ErrUnsupportedImage, obj.ContentType)
	}
	if obj.Body == nil || obj.Size <= 0 {
		return storeerrors.ErrImageRequired
	}
	if maxBytes > 0 && obj.Size > maxBytes {
		return fmt.Errorf("%w: %d bytes, limit %d", storeerrors.ErrImageTooLarge, obj.Size, maxBytes)
	}
	return nil
}

var unsafeChars = regexp.MustCompile(`[^a-zA-Z0-9._-]+`)

// ObjectKey builds the storage key products/<unix millis>_<sanitised filename>.
func ObjectKey(now time.Time, filename string) string {
	name := path.Base(strings.ReplaceAll(strings.TrimSpace(filename), `\`, "/"))
	name = unsafeChars.ReplaceAllString(name, "-")
	name = strings.Trim(name, "-.")
	if name == "" {
		name = "image"
	}
	return fmt.Sprintf("%s%d_%s", KeyPrefix, now.UnixMilli(), name)
}

func publicURL(base, key string) string {
	return strings.TrimRight(base, "/") + "/" + key
}

// Disabled is used when no object store is configured; every upload fails with ErrStorageUnavailable.
type Disabled struct{}

func (Disabled) Upload(context.Context, Object) (string, error) {
	return "", storeerrors.ErrStorageUnavailable
}
