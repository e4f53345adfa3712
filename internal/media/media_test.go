package media

import (
	"bytes"
	"context"
	"testing"
	"time"

	storeerrors "github.com/bindassticks/storefront/internal/errors"
	"github.com/stretchr/testify/assert"
)

func TestValidate(t *testing.T) {
	body := bytes.NewReader([]byte("png"))
	tests := []struct {
		name    string
		obj     Object
		max     int64
		wantErr error
	}{
		{name: "png", obj: Object{ContentType: "image/png", Size: 3, Body: body}, max: 10},
		{name: "jpeg with params", obj: Object{ContentType: "image/jpeg; charset=binary", Size: 3, Body: body}, max: 10},
		{name: "no limit", obj: Object{ContentType: "image/webp", Size: 1 << 30, Body: body}},
		{name: "svg rejected", obj: Object{ContentType: "image/svg+xml", Size: 3, Body: body}, wantErr: storeerrors.ErrUnsupportedImage},
		{name: "empty type", obj: Object{Size: 3, Body: body}, wantErr: storeerrors.ErrUnsupportedImage},
		{name: "empty body", obj: Object{ContentType: "image/gif"}, wantErr: storeerrors.ErrImageRequired},
		{name: "too large", obj: Object{ContentType: "image/png", Size: 11, Body: body}, max: 10, wantErr: storeerrors.ErrImageTooLarge},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.obj, tt.max)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestObjectKey(t *testing.T) {
	now := time.UnixMilli(1735689600123)
	tests := []struct {
		filename string
		want     string
	}{
		{filename: "goku.png", want: "products/1735689600123_goku.png"},
		{filename: "My Sticker (1).webp", want: "products/1735689600123_My-Sticker-1-.webp"},
		{filename: "../../etc/passwd", want: "products/1735689600123_passwd"},
		{filename: `C:\Users\me\doge.jpg`, want: "products/1735689600123_doge.jpg"},
		{filename: "", want: "products/1735689600123_image"},
	}
	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			assert.Equal(t, tt.want, ObjectKey(now, tt.filename))
		})
	}
}

func TestDisabled(t *testing.T) {
	_, err := Disabled{}.Upload(context.Background(), Object{})
	assert.ErrorIs(t, err, storeerrors.ErrStorageUnavailable)
}
