// Package imagegen talks to the text-to-image endpoint: a plain GET whose
// path is the URL-encoded prompt and whose response body is the image.
package imagegen

import (
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/ivlev/tattooreel/internal/asset"
)

var (
	// ErrGenerationFailed covers an empty prompt and any fetch or decode
	// failure of a generated image.
	ErrGenerationFailed = errors.New("image generation failed")
	// ErrDownload is returned when an image could not be saved locally.
	ErrDownload = errors.New("download failed")
)

// DefaultBaseURL is the public generation endpoint.
const DefaultBaseURL = "https://image.pollinations.ai/prompt/"

type Options struct {
	BaseURL    string
	HTTPClient *http.Client
	Timeout    time.Duration
	Log        zerolog.Logger
}

type Client struct {
	httpClient *http.Client
	baseURL    string
	log        zerolog.Logger

	mu   sync.Mutex
	last int64
	now  func() time.Time
}

func NewClient(opts Options) *Client {
	base := strings.TrimSpace(opts.BaseURL)
	if base == "" {
		base = DefaultBaseURL
	}
	if !strings.HasSuffix(base, "/") {
		base += "/"
	}
	client := opts.HTTPClient
	if client == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 60 * time.Second
		}
		client = &http.Client{Timeout: timeout}
	}
	return &Client{
		httpClient: client,
		baseURL:    base,
		log:        opts.Log,
		now:        time.Now,
	}
}

// StylePrompt wraps the user prompt in the fixed style qualifier.
func StylePrompt(prompt string) string {
	return fmt.Sprintf("tattoo design, %s, detailed, high quality", strings.TrimSpace(prompt))
}

// timestamp returns a creation time strictly after the previous one, so
// images generated within the same millisecond keep distinct keys.
func (c *Client) timestamp() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	ms := c.now().UnixMilli()
	if ms <= c.last {
		ms = c.last + 1
	}
	c.last = ms
	return time.UnixMilli(ms)
}

// ImageURL builds the generation URL for prompt with the given seed.
func (c *Client) ImageURL(prompt string, seed int64) string {
	return fmt.Sprintf("%s%s?seed=%d", c.baseURL, url.PathEscape(StylePrompt(prompt)), seed)
}

// GenerateImage requests a design for prompt and checks that the endpoint
// returned a decodable image.
func (c *Client) GenerateImage(ctx context.Context, prompt string) (asset.ImageAsset, error) {
	if strings.TrimSpace(prompt) == "" {
		return asset.ImageAsset{}, fmt.Errorf("%w: empty prompt", ErrGenerationFailed)
	}

	created := c.timestamp()
	u := c.ImageURL(prompt, created.UnixMilli())

	start := time.Now()
	body, err := c.get(ctx, u)
	if err != nil {
		return asset.ImageAsset{}, fmt.Errorf("%w: %v", ErrGenerationFailed, err)
	}
	defer body.Close()

	img, format, err := image.Decode(body)
	if err != nil {
		return asset.ImageAsset{}, fmt.Errorf("%w: decode: %v", ErrGenerationFailed, err)
	}

	c.log.Info().
		Str("prompt", prompt).
		Str("format", format).
		Int("width", img.Bounds().Dx()).
		Int("height", img.Bounds().Dy()).
		Dur("took", time.Since(start)).
		Msg("image generated")

	return asset.ImageAsset{URL: u, Prompt: prompt, CreatedAt: created}, nil
}

// Download saves the image at rawURL into dir as tattoo-design-<ms>.png
// and returns the file path.
func (c *Client) Download(ctx context.Context, rawURL, dir string) (string, error) {
	body, err := c.get(ctx, rawURL)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrDownload, err)
	}
	defer body.Close()

	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("%w: %v", ErrDownload, err)
	}
	path := filepath.Join(dir, fmt.Sprintf("tattoo-design-%d.png", c.timestamp().UnixMilli()))
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrDownload, err)
	}
	if _, err := io.Copy(f, body); err != nil {
		f.Close()
		os.Remove(path)
		return "", fmt.Errorf("%w: %v", ErrDownload, err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("%w: %v", ErrDownload, err)
	}
	return path, nil
}

func (c *Client) get(ctx context.Context, rawURL string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		resp.Body.Close()
		return nil, fmt.Errorf("GET %s: %s", rawURL, resp.Status)
	}
	return resp.Body, nil
}
