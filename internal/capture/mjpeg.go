package capture

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/jpeg"
	"os"
	"path/filepath"

	"github.com/icza/mjpeg"

	"github.com/ivlev/tattooreel/internal/asset"
)

// MJPEGEncoder is the pure-Go encoder: every frame becomes a JPEG chunk kept
// in memory, and Finalize wraps the chunks into an AVI container.
type MJPEGEncoder struct {
	Quality int
	TempDir string

	params Params
	chunks [][]byte
	buf    bytes.Buffer
}

// NewMJPEGEncoder creates an encoder with the given JPEG quality (1-100).
func NewMJPEGEncoder(quality int) *MJPEGEncoder {
	if quality <= 0 || quality > 100 {
		quality = 85
	}
	return &MJPEGEncoder{Quality: quality}
}

func (e *MJPEGEncoder) Start(ctx context.Context, p Params) error {
	if p.Width <= 0 || p.Height <= 0 {
		return fmt.Errorf("invalid frame size %dx%d", p.Width, p.Height)
	}
	e.params = p
	e.chunks = e.chunks[:0]
	return nil
}

func (e *MJPEGEncoder) WriteFrame(frame *image.RGBA) error {
	e.buf.Reset()
	if err := jpeg.Encode(&e.buf, frame, &jpeg.Options{Quality: e.Quality}); err != nil {
		return fmt.Errorf("encode JPEG frame: %w", err)
	}
	e.chunks = append(e.chunks, bytes.Clone(e.buf.Bytes()))
	return nil
}

func (e *MJPEGEncoder) Finalize(ctx context.Context) (*asset.RenderedVideo, error) {
	dir, err := os.MkdirTemp(e.TempDir, "tattooreel_")
	if err != nil {
		return nil, err
	}
	defer os.RemoveAll(dir)

	path := filepath.Join(dir, "video.avi")
	aw, err := mjpeg.New(path, int32(e.params.Width), int32(e.params.Height), int32(e.params.FPS))
	if err != nil {
		return nil, fmt.Errorf("failed to create video writer: %w", err)
	}

	for i, chunk := range e.chunks {
		if err := ctx.Err(); err != nil {
			aw.Close()
			return nil, err
		}
		if err := aw.AddFrame(chunk); err != nil {
			aw.Close()
			return nil, fmt.Errorf("failed to add frame %d: %w", i, err)
		}
	}
	if err := aw.Close(); err != nil {
		return nil, fmt.Errorf("failed to close video writer: %w", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	e.chunks = nil

	return &asset.RenderedVideo{
		Data:      data,
		MimeType:  "video/x-msvideo",
		Extension: ".avi",
	}, nil
}

func (e *MJPEGEncoder) Abort() {
	e.chunks = nil
}

func (e *MJPEGEncoder) MuxesAudio() bool { return false }
