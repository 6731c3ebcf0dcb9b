// Package canvas is the drawing surface the compositor paints each frame
// on: an RGBA image plus the handful of 2D primitives the render needs.
package canvas

import (
	"image"
	"image/color"
	"image/draw"
	"math"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/vector"
)

// Point is a position in surface pixels.
type Point struct {
	X, Y float64
}

// Surface is a fixed-size RGBA drawing target. It is not safe for
// concurrent use; one render owns it exclusively.
type Surface struct {
	img *image.RGBA
}

// New allocates a surface. Zero or negative sizes yield nil.
func New(width, height int) *Surface {
	if width <= 0 || height <= 0 {
		return nil
	}
	return &Surface{img: image.NewRGBA(image.Rect(0, 0, width, height))}
}

func (s *Surface) Image() *image.RGBA { return s.img }
func (s *Surface) Width() int         { return s.img.Rect.Dx() }
func (s *Surface) Height() int        { return s.img.Rect.Dy() }

// Clear fills the whole surface with c, replacing what was there.
func (s *Surface) Clear(c color.Color) {
	draw.Draw(s.img, s.img.Rect, image.NewUniform(c), image.Point{}, draw.Src)
}

// Overlay blends a full-frame layer of c at the given opacity.
func (s *Surface) Overlay(c color.RGBA, alpha float64) {
	c.A = 255
	mask := image.NewUniform(color.Alpha{A: alpha8(alpha)})
	draw.DrawMask(s.img, s.img.Rect, image.NewUniform(c), image.Point{}, mask, image.Point{}, draw.Over)
}

// DrawImage composites a frame-sized layer at the given opacity.
func (s *Surface) DrawImage(layer image.Image, alpha float64) {
	if alpha <= 0 {
		return
	}
	if alpha >= 1 {
		draw.Draw(s.img, s.img.Rect, layer, layer.Bounds().Min, draw.Over)
		return
	}
	mask := image.NewUniform(color.Alpha{A: alpha8(alpha)})
	draw.DrawMask(s.img, s.img.Rect, layer, layer.Bounds().Min, mask, image.Point{}, draw.Over)
}

// DrawCover scales src to cover the surface and draws it centered.
func (s *Surface) DrawCover(src image.Image) {
	xdraw.ApproxBiLinear.Scale(s.img, CoverRect(src.Bounds(), s.Width(), s.Height()), src, src.Bounds(), xdraw.Over, nil)
}

// Cover renders src cover-scaled into a new width x height image. Used to
// prepare static images once instead of rescaling them every frame.
func Cover(src image.Image, width, height int) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	xdraw.CatmullRom.Scale(dst, CoverRect(src.Bounds(), width, height), src, src.Bounds(), xdraw.Over, nil)
	return dst
}

// CoverRect returns where src lands when scaled uniformly by the larger of
// the width and height ratios and centered on a width x height frame. The
// result may extend past the frame; the overflow is cropped.
func CoverRect(src image.Rectangle, width, height int) image.Rectangle {
	sw, sh := float64(src.Dx()), float64(src.Dy())
	if sw == 0 || sh == 0 {
		return image.Rectangle{}
	}
	scale := math.Max(float64(width)/sw, float64(height)/sh)
	dw, dh := sw*scale, sh*scale
	x := (float64(width) - dw) / 2
	y := (float64(height) - dh) / 2
	return image.Rect(
		int(math.Floor(x)), int(math.Floor(y)),
		int(math.Ceil(x+dw)), int(math.Ceil(y+dh)),
	)
}

// LinearGradient renders a diagonal gradient from the top-left corner (from)
// to the bottom-right corner (to).
func LinearGradient(width, height int, from, to color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	den := float64(width*width + height*height)
	for y := 0; y < height; y++ {
		row := img.Pix[y*img.Stride:]
		for x := 0; x < width; x++ {
			// projection of (x, y) onto the diagonal, 0..1
			t := (float64(x)*float64(width) + float64(y)*float64(height)) / den
			i := x * 4
			row[i+0] = lerp8(from.R, to.R, t)
			row[i+1] = lerp8(from.G, to.G, t)
			row[i+2] = lerp8(from.B, to.B, t)
			row[i+3] = lerp8(from.A, to.A, t)
		}
	}
	return img
}

// FillRect fills an axis-aligned rectangle.
func (s *Surface) FillRect(x, y, w, h float64, c color.Color) {
	s.FillPolygon([]Point{{x, y}, {x + w, y}, {x + w, y + h}, {x, y + h}}, c)
}

// FillPolygon fills a closed polygon with anti-aliased edges.
func (s *Surface) FillPolygon(pts []Point, c color.Color) {
	if len(pts) < 3 {
		return
	}
	z := s.rasterizer()
	z.MoveTo(float32(pts[0].X), float32(pts[0].Y))
	for _, p := range pts[1:] {
		z.LineTo(float32(p.X), float32(p.Y))
	}
	z.ClosePath()
	z.Draw(s.img, s.img.Rect, image.NewUniform(c), image.Point{})
}

// FillCircle fills a circle approximated by four cubic Béziers.
func (s *Surface) FillCircle(cx, cy, r float64, c color.Color) {
	if r <= 0 {
		return
	}
	const k = 0.5522847498
	z := s.rasterizer()
	f := func(v float64) float32 { return float32(v) }
	z.MoveTo(f(cx+r), f(cy))
	z.CubeTo(f(cx+r), f(cy+k*r), f(cx+k*r), f(cy+r), f(cx), f(cy+r))
	z.CubeTo(f(cx-k*r), f(cy+r), f(cx-r), f(cy+k*r), f(cx-r), f(cy))
	z.CubeTo(f(cx-r), f(cy-k*r), f(cx-k*r), f(cy-r), f(cx), f(cy-r))
	z.CubeTo(f(cx+k*r), f(cy-r), f(cx+r), f(cy-k*r), f(cx+r), f(cy))
	z.ClosePath()
	z.Draw(s.img, s.img.Rect, image.NewUniform(c), image.Point{})
}

func (s *Surface) rasterizer() *vector.Rasterizer {
	z := vector.NewRasterizer(s.Width(), s.Height())
	z.DrawOp = draw.Over
	return z
}

func alpha8(a float64) uint8 {
	return uint8(math.Round(clamp01(a) * 255))
}

func lerp8(a, b uint8, t float64) uint8 {
	return uint8(math.Round(float64(a) + (float64(b)-float64(a))*clamp01(t)))
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
