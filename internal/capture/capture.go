// Package capture turns the compositor's frames into a finished video file.
// A Recorder paces frames into an Encoder in strict timestamp order and
// finalizes exactly once.
package capture

import (
	"context"
	"errors"
	"image"

	"github.com/ivlev/tattooreel/internal/asset"
)

// FrameRate is the capture rate of the drawing surface.
const FrameRate = 30

var (
	// ErrCapture marks a capture layer that could not be initialised or
	// failed while encoding.
	ErrCapture = errors.New("capture error")
	// ErrFinalized is returned by a second Finalize.
	ErrFinalized = errors.New("capture already finalized")
	// ErrOutOfOrder is returned for a frame whose timestamp does not advance.
	ErrOutOfOrder = errors.New("frame timestamp out of order")
)

// Params describes the stream an encoder produces.
type Params struct {
	Width, Height int
	FPS           int
	// AudioPath is an optional soundtrack muxed into the output by encoders
	// that support it.
	AudioPath string
}

// Encoder is the pluggable codec/container behind a Recorder. Frames arrive
// in order from a single goroutine.
type Encoder interface {
	Start(ctx context.Context, p Params) error
	WriteFrame(frame *image.RGBA) error
	Finalize(ctx context.Context) (*asset.RenderedVideo, error)
	// Abort discards everything written so far.
	Abort()
	// MuxesAudio reports whether Params.AudioPath ends up in the output.
	MuxesAudio() bool
}
