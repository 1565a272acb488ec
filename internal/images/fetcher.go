package images

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

// ErrRemoteNotFound reports a 404 or 410 response for an image URL.
var ErrRemoteNotFound = errors.New("remote image not found")

// DefaultMaxBytes caps the size of a downloaded image.
const DefaultMaxBytes = 32 << 20

// Fetcher retrieves images over http(s)
type Fetcher struct {
	HTTPClient *http.Client
	MaxBytes   int64
	log        *zap.Logger
}

// NewFetcher creates a new image fetcher
func NewFetcher(timeout time.Duration, maxBytes int64, log *zap.Logger) *Fetcher {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Fetcher{
		HTTPClient: &http.Client{
			Timeout: timeout,
		},
		MaxBytes: maxBytes,
		log:      log,
	}
}

// IsRemote reports whether path should be fetched rather than opened.
func IsRemote(path string) bool {
	lower := strings.ToLower(path)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}

// Fetch downloads the image at url and returns its raw bytes
func (f *Fetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}

	resp, err := f.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch image: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound, http.StatusGone:
		return nil, fmt.Errorf("%w: status %d", ErrRemoteNotFound, resp.StatusCode)
	default:
		return nil, fmt.Errorf("image URL returned status %d", resp.StatusCode)
	}

	// Read one byte past the limit so oversized bodies can be told apart
	data, err := io.ReadAll(io.LimitReader(resp.Body, f.MaxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read image data: %w", err)
	}
	if int64(len(data)) > f.MaxBytes {
		return nil, fmt.Errorf("image too large (limit %d bytes)", f.MaxBytes)
	}

	f.log.Info("Fetched remote image",
		zap.String("url", url),
		zap.Int("size", len(data)))

	return data, nil
}
