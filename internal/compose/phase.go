package compose

import (
	"image"
	"image/color"

	"golang.org/x/image/font"

	"github.com/ivlev/tattooreel/internal/canvas"
	"github.com/ivlev/tattooreel/internal/subtitle"
)

// Phase draws one frame of a render phase. t is the phase-local time in
// seconds.
type Phase interface {
	Draw(s *canvas.Surface, t float64) error
}

// VideoFrames is a decoded, playing background clip.
type VideoFrames interface {
	FrameAt(t float64) (image.Image, error)
	Close() error
}

var black = color.RGBA{A: 255}

// ContentPhase shows the selected visual source with the active subtitles.
type ContentPhase struct {
	// Slides are frame-sized, cover-scaled images. Used when Video is nil.
	Slides    []*image.RGBA
	Video     VideoFrames
	Duration  float64
	Subtitles subtitle.Cues
	Fonts     *canvas.Fonts
}

func (p *ContentPhase) Draw(s *canvas.Surface, t float64) error {
	s.Clear(black)

	if p.Video != nil {
		frame, err := p.Video.FrameAt(t)
		if err != nil {
			return err
		}
		if frame != nil {
			s.DrawCover(frame)
		}
	} else if n := len(p.Slides); n > 0 {
		i := SliceIndex(t, p.Duration, n)
		s.DrawImage(p.Slides[i], 1)
		if a := CrossFadeAlpha(t, p.Duration, n); a > 0 {
			s.DrawImage(p.Slides[i+1], a)
		}
	}

	return p.drawSubtitles(s, t)
}

// subtitleSize is the subtitle font size for a frame height.
func subtitleSize(height int) float64 {
	return float64(height) / 18
}

func (p *ContentPhase) drawSubtitles(s *canvas.Surface, t float64) error {
	var face font.Face
	size := subtitleSize(s.Height())
	for cue := range p.Subtitles.ActiveAt(t) {
		if face == nil {
			f, err := p.Fonts.Face(size)
			if err != nil {
				return err
			}
			face = f
		}
		fill, err := canvas.ParseHex(cue.Color)
		if err != nil {
			fill = color.RGBA{R: 255, G: 255, B: 255, A: 255}
		}
		s.DrawText(cue.Text, face, float64(s.Width())/2, float64(s.Height())*0.85, canvas.TextStyle{
			Fill:         fill,
			Outline:      black,
			OutlineWidth: size / 10,
		})
	}
	return nil
}
