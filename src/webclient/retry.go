package webclient

import (
	"context"
	"net/http"
	"time"
)

const maxBackoff = 30 * time.Second

// AttemptFunc performs a single request attempt.
type AttemptFunc func() (status int, body []byte, err error)

// DoWithRetry runs fn until it returns a non-retryable result. Attempts
// that error, hit a 429, or come back 5xx are retried with doubling
// delays. The last attempt's result is returned when retries run out.
func DoWithRetry(ctx context.Context, attempts int, initialDelay time.Duration, fn AttemptFunc) (int, []byte, error) {
	if attempts <= 0 {
		attempts = 1
	}
	delay := initialDelay
	if delay <= 0 {
		delay = 2 * time.Second
	}

	var (
		status int
		body   []byte
		err    error
	)
	for i := 0; i < attempts; i++ {
		status, body, err = fn()
		if err == nil && status != http.StatusTooManyRequests && status < http.StatusInternalServerError {
			return status, body, nil
		}
		if i == attempts-1 {
			break
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return status, body, ctx.Err()
		case <-timer.C:
		}
		if delay < maxBackoff {
			delay *= 2
		}
	}
	return status, body, err
}
