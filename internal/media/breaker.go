package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	storeerrors "github.com/bindassticks/storefront/internal/errors"
	"github.com/bindassticks/storefront/pkg/config"
	"github.com/jpillora/backoff"
	"github.com/sony/gobreaker/v2"
)

// BreakerUploader retries transient upload failures and stops calling the
// object store while its circuit breaker is open.
type BreakerUploader struct {
	next   Uploader
	cb     *gobreaker.CircuitBreaker[string]
	retry  config.RetryConfig
	logger *slog.Logger
	sleep  func(ctx context.Context, d time.Duration) error
}

func NewBreakerUploader(next Uploader, cfg config.ResilienceConfig, logger *slog.Logger) *BreakerUploader {
	st := gobreaker.Settings{
		Name:        "media-uploader",
		MaxRequests: 1,
		Timeout:     cfg.CircuitBreaker.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			total := counts.TotalSuccesses + counts.TotalFailures
			return counts.ConsecutiveFailures >= cfg.CircuitBreaker.ConsecutiveFailures ||
				(total > cfg.CircuitBreaker.ConsecutiveFailures &&
					float64(counts.TotalFailures)/float64(total)*100 > float64(cfg.CircuitBreaker.ErrorRatePercent))
		},
		IsSuccessful: func(err error) bool {
			return err == nil || !isTransient(err)
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Warn("circuit breaker state changed", "name", name, "from", from.String(), "to", to.String())
		},
	}
	return &BreakerUploader{
		next:   next,
		cb:     gobreaker.NewCircuitBreaker[string](st),
		retry:  cfg.Retry,
		logger: logger,
		sleep:  sleepCtx,
	}
}

func (u *BreakerUploader) Upload(ctx context.Context, obj Object) (string, error) {
	b := &backoff.Backoff{
		Min:    u.retry.InitialBackoff,
		Max:    u.retry.MaxBackoff,
		Factor: 2,
		Jitter: true,
	}
	attempts := max(u.retry.MaxAttempts, 1)

	var lastErr error
	for attempt := uint(1); attempt <= attempts; attempt++ {
		if attempt > 1 {
			if _, err := obj.Body.Seek(0, io.SeekStart); err != nil {
				return "", fmt.Errorf("%w: rewind image: %w", storeerrors.ErrUploadFailed, err)
			}
		}
		url, err := u.cb.Execute(func() (string, error) {
			return u.next.Upload(ctx, obj)
		})
		if err == nil {
			return url, nil
		}
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return "", fmt.Errorf("%w: %w", storeerrors.ErrStorageUnavailable, err)
		}
		if !isTransient(err) {
			return "", err
		}
		lastErr = err
		if attempt == attempts {
			break
		}
		d := b.Duration()
		u.logger.WarnContext(ctx, "image upload failed, retrying", "attempt", attempt, "backoff", d, "error", err)
		if err := u.sleep(ctx, d); err != nil {
			return "", err
		}
	}
	return "", fmt.Errorf("%w: %w", storeerrors.ErrUploadFailed, lastErr)
}

// isTransient reports whether err is an object store failure worth retrying.
func isTransient(err error) bool {
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return false
	case errors.Is(err, storeerrors.ErrUnsupportedImage),
		errors.Is(err, storeerrors.ErrImageTooLarge),
		errors.Is(err, storeerrors.ErrImageRequired),
		errors.Is(err, storeerrors.ErrStorageUnavailable):
		return false
	}
	return true
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
