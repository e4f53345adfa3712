package media

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	storeerrors "github.com/bindassticks/storefront/internal/errors"
	"github.com/bindassticks/storefront/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockUploader struct {
	mock.Mock
}

func (m *mockUploader) Upload(ctx context.Context, obj Object) (string, error) {
	// consume the body so that retries have to rewind it
	_, _ = io.ReadAll(obj.Body)
	args := m.Called(ctx, obj)
	return args.String(0), args.Error(1)
}

func testResilience(attempts uint, failures uint32) config.ResilienceConfig {
	return config.ResilienceConfig{
		Retry: config.RetryConfig{
			MaxAttempts:    attempts,
			InitialBackoff: time.Millisecond,
			MaxBackoff:     time.Millisecond,
		},
		CircuitBreaker: config.CircuitBreakerConfig{
			ConsecutiveFailures: failures,
			ErrorRatePercent:    100,
			OpenTimeout:         time.Minute,
		},
	}
}

func newTestBreaker(next Uploader, cfg config.ResilienceConfig) *BreakerUploader {
	u := NewBreakerUploader(next, cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	u.sleep = func(context.Context, time.Duration) error { return nil }
	return u
}

func testObject() Object {
	return Object{Filename: "a.png", ContentType: "image/png", Size: 3, Body: bytes.NewReader([]byte("png"))}
}

func TestBreakerUploader_RetriesTransientErrors(t *testing.T) {
	next := new(mockUploader)
	next.On("Upload", mock.Anything, mock.Anything).Return("", errors.New("503")).Once()
	next.On("Upload", mock.Anything, mock.Anything).Return("https://cdn/a.png", nil).Once()

	u := newTestBreaker(next, testResilience(3, 5))
	url, err := u.Upload(context.Background(), testObject())
	require.NoError(t, err)
	assert.Equal(t, "https://cdn/a.png", url)
	next.AssertNumberOfCalls(t, "Upload", 2)
}

func TestBreakerUploader_GivesUpAfterMaxAttempts(t *testing.T) {
	next := new(mockUploader)
	next.On("Upload", mock.Anything, mock.Anything).Return("", errors.New("503"))

	u := newTestBreaker(next, testResilience(3, 10))
	_, err := u.Upload(context.Background(), testObject())
	assert.ErrorIs(t, err, storeerrors.ErrUploadFailed)
	next.AssertNumberOfCalls(t, "Upload", 3)
}

func TestBreakerUploader_DoesNotRetryValidationErrors(t *testing.T) {
	next := new(mockUploader)
	next.On("Upload", mock.Anything, mock.Anything).Return("", storeerrors.ErrUnsupportedImage)

	u := newTestBreaker(next, testResilience(3, 1))
	for range 3 {
		_, err := u.Upload(context.Background(), testObject())
		assert.ErrorIs(t, err, storeerrors.ErrUnsupportedImage)
	}
	next.AssertNumberOfCalls(t, "Upload", 3)
}

func TestBreakerUploader_OpensAfterConsecutiveFailures(t *testing.T) {
	next := new(mockUploader)
	next.On("Upload", mock.Anything, mock.Anything).Return("", errors.New("503"))

	u := newTestBreaker(next, testResilience(1, 2))
	for range 2 {
		_, err := u.Upload(context.Background(), testObject())
		assert.ErrorIs(t, err, storeerrors.ErrUploadFailed)
	}

	_, err := u.Upload(context.Background(), testObject())
	assert.ErrorIs(t, err, storeerrors.ErrStorageUnavailable)
	next.AssertNumberOfCalls(t, "Upload", 2)
}
