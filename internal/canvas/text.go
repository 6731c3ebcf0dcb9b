package canvas

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math"
	"os"
	"strconv"
	"strings"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

// Fonts caches faces of one typeface by pixel size.
type Fonts struct {
	mu    sync.Mutex
	font  *opentype.Font
	faces map[int]font.Face
}

// DefaultFonts uses the bundled Go Bold typeface.
func DefaultFonts() (*Fonts, error) {
	return parseFonts(gobold.TTF)
}

// LoadFonts reads a TTF/OTF file. An empty path falls back to DefaultFonts.
func LoadFonts(path string) (*Fonts, error) {
	if path == "" {
		return DefaultFonts()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read font file: %w", err)
	}
	return parseFonts(data)
}

func parseFonts(data []byte) (*Fonts, error) {
	f, err := opentype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse font: %w", err)
	}
	return &Fonts{font: f, faces: make(map[int]font.Face)}, nil
}

// Face returns a face of roughly the given pixel size, rounded to half a
// pixel so animated sizes still hit the cache.
func (f *Fonts) Face(size float64) (font.Face, error) {
	key := int(math.Round(size * 2))
	if key < 2 {
		key = 2
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if face, ok := f.faces[key]; ok {
		return face, nil
	}
	face, err := opentype.NewFace(f.font, &opentype.FaceOptions{
		Size:    float64(key) / 2,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create font face: %w", err)
	}
	f.faces[key] = face
	return face, nil
}

// TextStyle describes how DrawText paints a string.
type TextStyle struct {
	Fill         color.Color
	Outline      color.Color // nil disables the outline
	OutlineWidth float64
}

// DrawText paints text centered on (cx, cy). The outline is painted first,
// OutlineWidth wide and straddling the glyph edge, then the fill on top.
func (s *Surface) DrawText(text string, face font.Face, cx, cy float64, style TextStyle) {
	if strings.TrimSpace(text) == "" || face == nil {
		return
	}

	m := face.Metrics()
	adv := font.MeasureString(face, text)
	width := adv.Ceil()
	height := (m.Ascent + m.Descent).Ceil()
	pad := int(math.Ceil(style.OutlineWidth))

	mask := image.NewAlpha(image.Rect(0, 0, width+2*pad, height+2*pad))
	d := &font.Drawer{
		Dst:  mask,
		Src:  image.Opaque,
		Face: face,
		Dot:  fixed.P(pad, pad+m.Ascent.Ceil()),
	}
	d.DrawString(text)

	origin := image.Pt(
		int(math.Round(cx-float64(width)/2))-pad,
		int(math.Round(cy-float64(height)/2))-pad,
	)
	r := mask.Rect.Add(origin)

	if style.Outline != nil && style.OutlineWidth > 0 {
		src := image.NewUniform(style.Outline)
		radius := style.OutlineWidth / 2
		reach := int(math.Ceil(radius))
		for dy := -reach; dy <= reach; dy++ {
			for dx := -reach; dx <= reach; dx++ {
				if float64(dx*dx+dy*dy) > radius*radius+0.5 {
					continue
				}
				draw.DrawMask(s.img, r.Add(image.Pt(dx, dy)), src, image.Point{}, mask, image.Point{}, draw.Over)
			}
		}
	}

	fill := style.Fill
	if fill == nil {
		fill = color.White
	}
	draw.DrawMask(s.img, r, image.NewUniform(fill), image.Point{}, mask, image.Point{}, draw.Over)
}

// ParseHex parses "#RRGGBB", "#RGB" or "#RRGGBBAA".
func ParseHex(s string) (color.RGBA, error) {
	h := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(h) == 3 {
		h = string([]byte{h[0], h[0], h[1], h[1], h[2], h[2]})
	}
	if len(h) == 6 {
		h += "ff"
	}
	if len(h) != 8 {
		return color.RGBA{}, fmt.Errorf("invalid colour %q", s)
	}
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("invalid colour %q: %w", s, err)
	}
	c := color.NRGBA{R: uint8(v >> 24), G: uint8(v >> 16), B: uint8(v >> 8), A: uint8(v)}
	return color.RGBAModel.Convert(c).(color.RGBA), nil
}
