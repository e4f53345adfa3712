package media

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockS3 struct {
	mock.Mock
}

func (m *mockS3) PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	args := m.Called(ctx, params)
	out, _ := args.Get(0).(*s3.PutObjectOutput)
	return out, args.Error(1)
}

func TestR2Uploader_Upload(t *testing.T) {
	client := new(mockS3)
	u := NewR2Uploader(client, "stickers", "https://cdn.example.com/")
	u.now = func() time.Time { return time.UnixMilli(42) }

	client.On("PutObject", mock.Anything, mock.MatchedBy(func(in *s3.PutObjectInput) bool {
		return aws.ToString(in.Bucket) == "stickers" &&
			aws.ToString(in.Key) == "products/42_goku.png" &&
			aws.ToString(in.ContentType) == "image/png" &&
			aws.ToInt64(in.ContentLength) == 3
	})).Return(&s3.PutObjectOutput{}, nil).Once()

	url, err := u.Upload(context.Background(), Object{
		Filename:    "goku.png",
		ContentType: "image/png",
		Size:        3,
		Body:        bytes.NewReader([]byte("png")),
	})
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/products/42_goku.png", url)
	client.AssertExpectations(t)
}

func TestR2Uploader_UploadError(t *testing.T) {
	client := new(mockS3)
	u := NewR2Uploader(client, "stickers", "https://cdn.example.com")
	boom := errors.New("connection reset")
	client.On("PutObject", mock.Anything, mock.Anything).Return(nil, boom).Once()

	_, err := u.Upload(context.Background(), Object{Filename: "a.png", ContentType: "image/png", Size: 1, Body: bytes.NewReader([]byte("x"))})
	assert.ErrorIs(t, err, boom)
}
