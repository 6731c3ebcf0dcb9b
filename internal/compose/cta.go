package compose

import (
	"image"
	"image/color"
	"math"

	"github.com/ivlev/tattooreel/internal/canvas"
)

var (
	ctaFrom  = color.RGBA{R: 0xF9, G: 0x73, B: 0x16, A: 0xFF}
	ctaTo    = color.RGBA{R: 0x8B, G: 0x5C, B: 0xF6, A: 0xFF}
	ctaInk   = color.RGBA{R: 0xFF, G: 0xFF, B: 0xFF, A: 0xFF}
	ctaBadge = color.RGBA{R: 0xFF, G: 0xFF, B: 0xFF, A: 0xFF}
	ctaBolt  = color.RGBA{R: 0xF9, G: 0x73, B: 0x16, A: 0xFF}
)

// bolt is the lightning glyph in badge-radius units around the badge center.
var bolt = []canvas.Point{
	{X: 0.15, Y: -0.6},
	{X: -0.35, Y: 0.1},
	{X: -0.02, Y: 0.1},
	{X: -0.15, Y: 0.6},
	{X: 0.35, Y: -0.1},
	{X: 0.02, Y: -0.1},
}

// CTAPhase is the fixed closing card: pulsing gradient, title, call to
// action with a growing underline, and a lightning badge.
type CTAPhase struct {
	Title string
	Text  string
	Fonts *canvas.Fonts

	gradient *image.RGBA
}

// Progress maps phase time to [0, 1).
func (p *CTAPhase) Progress(t float64) float64 {
	return math.Max(0, math.Min(1, t/CTADuration))
}

func (p *CTAPhase) Draw(s *canvas.Surface, t float64) error {
	w, h := float64(s.Width()), float64(s.Height())
	progress := p.Progress(t)

	// The gradient is opaque and hides the pulse almost entirely; both draws
	// are kept in this order.
	s.Overlay(black, 0.8+0.2*math.Sin(5*math.Pi*progress))
	if p.gradient == nil || p.gradient.Rect.Dx() != s.Width() || p.gradient.Rect.Dy() != s.Height() {
		p.gradient = canvas.LinearGradient(s.Width(), s.Height(), ctaFrom, ctaTo)
	}
	s.DrawImage(p.gradient, 1)

	titleSize := h / 10 * (1 + 0.1*math.Sin(2*math.Pi*progress))
	title, err := p.Fonts.Face(titleSize)
	if err != nil {
		return err
	}
	s.DrawText(p.Title, title, w/2, h*0.4, canvas.TextStyle{Fill: ctaInk})

	textSize := h / 18
	lineW := lerp(0, w*0.6, math.Min(1, progress*2))
	if lineW > 0 {
		thick := math.Max(2, h/180)
		s.FillRect(w/2-lineW/2, h*0.6+textSize*0.75, lineW, thick, ctaInk)
	}
	text, err := p.Fonts.Face(textSize)
	if err != nil {
		return err
	}
	s.DrawText(p.Text, text, w/2, h*0.6, canvas.TextStyle{Fill: ctaInk})

	cx, cy, r := w/2, h*0.75, h/16
	s.FillCircle(cx, cy, r, ctaBadge)
	pts := make([]canvas.Point, len(bolt))
	for i, b := range bolt {
		pts[i] = canvas.Point{X: cx + b.X*r, Y: cy + b.Y*r}
	}
	s.FillPolygon(pts, ctaBolt)
	return nil
}
