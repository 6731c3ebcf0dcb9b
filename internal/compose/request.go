package compose

import (
	"fmt"
	"slices"

	"github.com/ivlev/tattooreel/internal/asset"
	"github.com/ivlev/tattooreel/internal/subtitle"
)

// CTADuration is the fixed length of the call-to-action phase in seconds.
const CTADuration = 3.0

// Mode selects the visual source of the content phase.
type Mode int

const (
	ModeImages Mode = iota
	ModeBackground
)

func (m Mode) String() string {
	if m == ModeBackground {
		return "background"
	}
	return "images"
}

// Request is the input of one render. The compositor works on a frozen
// copy, so later changes to the caller's slices do not reach the frames.
type Request struct {
	Mode            Mode
	Images          []asset.ImageAsset
	Background      *asset.BackgroundVideoAsset
	Audio           *asset.AudioTrack
	Subtitles       subtitle.Cues
	ContentDuration float64

	// Voice and Script are carried for the report only.
	Voice  *asset.VoiceProfile
	Script string
}

// Validate rejects a request that cannot start priming.
func (r Request) Validate() error {
	switch r.Mode {
	case ModeImages:
		if len(r.Images) == 0 {
			return fmt.Errorf("%w: no images selected", ErrNoContent)
		}
	case ModeBackground:
		if r.Background == nil {
			return fmt.Errorf("%w: no background video selected", ErrNoContent)
		}
	default:
		return fmt.Errorf("unknown mode %d", r.Mode)
	}
	if r.ContentDuration <= 0 {
		return fmt.Errorf("invalid content duration %.2fs", r.ContentDuration)
	}
	for i, c := range r.Subtitles {
		if err := c.Validate(r.ContentDuration); err != nil {
			return fmt.Errorf("subtitle %d: %w", i, err)
		}
	}
	return nil
}

// Freeze returns a deep copy of the request.
func (r Request) Freeze() Request {
	f := r
	f.Images = slices.Clone(r.Images)
	f.Subtitles = slices.Clone(r.Subtitles)
	if r.Background != nil {
		bg := *r.Background
		f.Background = &bg
	}
	if r.Audio != nil {
		a := *r.Audio
		f.Audio = &a
	}
	if r.Voice != nil {
		v := *r.Voice
		f.Voice = &v
	}
	return f
}
