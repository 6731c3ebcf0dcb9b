package source

import (
	"context"
	"fmt"
	"image"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Loader fetches and decodes design images. Remote images come over HTTP,
// anything else is read from disk.
type Loader struct {
	Client *http.Client
	// Timeout bounds each load. Zero means no limit beyond ctx.
	Timeout time.Duration
}

// NewLoader creates a loader using http.DefaultClient.
func NewLoader(timeout time.Duration) *Loader {
	return &Loader{Client: http.DefaultClient, Timeout: timeout}
}

// Load decodes the image at rawURL into a drawable bitmap.
func (l *Loader) Load(ctx context.Context, rawURL string) (image.Image, error) {
	if l.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.Timeout)
		defer cancel()
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		// Plain paths such as "flash 100%.png" are not valid URLs.
		return decodeContext(ctx, rawURL)
	}

	switch strings.ToLower(u.Scheme) {
	case "http", "https":
		return l.fetch(ctx, rawURL)
	case "file":
		return decodeContext(ctx, u.Path)
	default:
		return decodeContext(ctx, rawURL)
	}
}

func (l *Loader) fetch(ctx context.Context, rawURL string) (image.Image, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	client := l.Client
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("GET %s: %s", rawURL, resp.Status)
	}

	img, _, err := image.Decode(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", rawURL, err)
	}
	return img, nil
}

// decodeContext reads a local file unless ctx is already done.
func decodeContext(ctx context.Context, path string) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return decodeFile(path)
}
