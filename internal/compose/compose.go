// Package compose renders a CompositionRequest into a video: it primes the
// visual assets, pumps frames through the content and call-to-action
// phases, and hands each frame to the capture pipeline.
package compose

import (
	"errors"

	"github.com/ivlev/tattooreel/internal/capture"
	"github.com/ivlev/tattooreel/internal/subtitle"
)

var (
	// ErrAssetLoad means an image failed to decode or the background video
	// never became ready.
	ErrAssetLoad = errors.New("asset load error")
	// ErrNoContent is returned for a request without a visual source.
	ErrNoContent = errors.New("no content selected")
	// ErrBusy is returned when a render is already in progress.
	ErrBusy = errors.New("a render is already in progress")
	// ErrNoSurface means no drawing surface could be allocated.
	ErrNoSurface = errors.New("no drawing surface")
)

// State is a step of the render state machine.
type State int

const (
	Idle State = iota
	Priming
	RenderingContent
	RenderingCTA
	Finalizing
	Done
	Failed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Priming:
		return "priming"
	case RenderingContent:
		return "rendering(content)"
	case RenderingCTA:
		return "rendering(cta)"
	case Finalizing:
		return "finalizing"
	case Done:
		return "done"
	case Failed:
		return "failed"
	}
	return "unknown"
}

// Notice maps an error to the short message shown to the user.
func Notice(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrNoContent):
		return "no content selected"
	case errors.Is(err, ErrBusy):
		return "a video is already being created"
	case errors.Is(err, subtitle.ErrInvalidCue):
		return "invalid subtitle"
	case errors.Is(err, ErrAssetLoad), errors.Is(err, capture.ErrCapture), errors.Is(err, ErrNoSurface):
		return "creation failed"
	}
	return "creation failed"
}
