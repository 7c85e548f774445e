package resource

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// DefaultTimeout bounds a single fetch when the Fetcher does not set one.
const DefaultTimeout = 30 * time.Second

// DefaultMaxBytes caps how much of a response body is read.
const DefaultMaxBytes = 64 << 20

// Fetcher downloads table text over HTTP.
type Fetcher struct {
	// Client is the HTTP client (optional, uses http.DefaultClient if nil).
	Client *http.Client
	// Timeout bounds each fetch (optional, uses DefaultTimeout if zero).
	Timeout time.Duration
	// MaxBytes caps the body size (optional, uses DefaultMaxBytes if zero).
	MaxBytes int64
}

// Fetch downloads url and decodes the body as UTF-8.
func (f *Fetcher) Fetch(ctx context.Context, url string) (string, error) {
	client := http.DefaultClient
	timeout := DefaultTimeout
	maxBytes := int64(DefaultMaxBytes)
	if f != nil {
		if f.Client != nil {
			client = f.Client
		}
		if f.Timeout > 0 {
			timeout = f.Timeout
		}
		if f.MaxBytes > 0 {
			maxBytes = f.MaxBytes
		}
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("failed to build request for %s: %w", url, err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to fetch %s: %w", url, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("failed to fetch %s: unexpected status %s", url, resp.Status)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBytes+1))
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", url, err)
	}
	if int64(len(data)) > maxBytes {
		return "", fmt.Errorf("failed to read %s: body exceeds %d bytes", url, maxBytes)
	}

	text, ok := decode(data)
	if !ok {
		return "", &Error{Kind: KindInvalidDownloaded, Location: url, Raw: data, Err: errNotUTF8}
	}
	return text, nil
}

// IsURL reports whether location should be fetched rather than opened.
func IsURL(location string) bool {
	lower := strings.ToLower(location)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}

// Load reads location as a URL or a local path.
func Load(ctx context.Context, f *Fetcher, location string) (string, error) {
	if IsURL(location) {
		return f.Fetch(ctx, location)
	}
	return ReadFile(location)
}
