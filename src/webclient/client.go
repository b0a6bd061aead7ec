package webclient

import (
	"net/http"
	"time"
)

// NewDefault returns an HTTP client tuned for long model calls: generous
// request timeout, a few keep-alive connections per upstream.
func NewDefault(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.MaxIdleConnsPerHost = 4
	transport.IdleConnTimeout = 90 * time.Second

	return &http.Client{
		Timeout:   timeout,
		Transport: transport,
	}
}
