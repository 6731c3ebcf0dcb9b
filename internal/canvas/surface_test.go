package canvas

import (
	"image"
	"image/color"
	"testing"
)

func TestCoverRect(t *testing.T) {
	tests := []struct {
		name string
		src  image.Rectangle
		w, h int
		want image.Rectangle
	}{
		{"same aspect", image.Rect(0, 0, 640, 360), 1280, 720, image.Rect(0, 0, 1280, 720)},
		{"square into wide", image.Rect(0, 0, 100, 100), 200, 100, image.Rect(0, -50, 200, 150)},
		{"tall into wide", image.Rect(0, 0, 100, 400), 100, 100, image.Rect(0, -150, 100, 250)},
		{"wide into tall", image.Rect(0, 0, 400, 100), 100, 200, image.Rect(-350, 0, 450, 200)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CoverRect(tt.src, tt.w, tt.h)
			if got != tt.want {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
			if !image.Rect(0, 0, tt.w, tt.h).In(got) {
				t.Errorf("cover rect %v leaves the frame uncovered", got)
			}
		})
	}
}

func TestClearAndOverlay(t *testing.T) {
	s := New(4, 4)
	s.Clear(color.White)
	s.Overlay(color.RGBA{A: 255}, 0.5)
	got := s.Image().RGBAAt(1, 1)
	if got.R < 120 || got.R > 135 || got.A != 255 {
		t.Errorf("expected mid grey, got %v", got)
	}
}

func TestCoverFillsFrame(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 10, 30))
	for i := range src.Pix {
		src.Pix[i] = 255
	}
	dst := Cover(src, 20, 10)
	for _, p := range []image.Point{{0, 0}, {19, 0}, {0, 9}, {19, 9}, {10, 5}} {
		if c := dst.RGBAAt(p.X, p.Y); c.A == 0 {
			t.Errorf("pixel %v not covered", p)
		}
	}
}

func TestDrawImageAlpha(t *testing.T) {
	s := New(2, 2)
	s.Clear(color.Black)
	layer := image.NewRGBA(image.Rect(0, 0, 2, 2))
	for i := range layer.Pix {
		layer.Pix[i] = 255
	}

	s.DrawImage(layer, 0)
	if c := s.Image().RGBAAt(0, 0); c.R != 0 {
		t.Errorf("alpha 0 must not paint, got %v", c)
	}
	s.DrawImage(layer, 0.25)
	if c := s.Image().RGBAAt(0, 0); c.R < 60 || c.R > 70 {
		t.Errorf("expected ~64, got %v", c)
	}
}

func TestLinearGradientCorners(t *testing.T) {
	from := color.RGBA{R: 255, A: 255}
	to := color.RGBA{B: 255, A: 255}
	g := LinearGradient(100, 50, from, to)
	if c := g.RGBAAt(0, 0); c != from {
		t.Errorf("top-left expected %v, got %v", from, c)
	}
	if c := g.RGBAAt(99, 49); c.B < 250 || c.R > 5 {
		t.Errorf("bottom-right expected ~%v, got %v", to, c)
	}
}

func TestFillShapes(t *testing.T) {
	s := New(40, 40)
	s.Clear(color.Black)
	s.FillCircle(20, 20, 10, color.White)
	if c := s.Image().RGBAAt(20, 20); c.R != 255 {
		t.Errorf("circle centre not filled: %v", c)
	}
	if c := s.Image().RGBAAt(2, 2); c.R != 0 {
		t.Errorf("outside circle painted: %v", c)
	}

	s.FillRect(0, 0, 5, 5, color.RGBA{G: 255, A: 255})
	if c := s.Image().RGBAAt(2, 2); c.G != 255 {
		t.Errorf("rect not filled: %v", c)
	}
}

func TestDrawTextOutline(t *testing.T) {
	fonts, err := DefaultFonts()
	if err != nil {
		t.Fatalf("DefaultFonts failed: %v", err)
	}
	face, err := fonts.Face(32)
	if err != nil {
		t.Fatalf("Face failed: %v", err)
	}

	s := New(200, 80)
	s.Clear(color.RGBA{R: 40, G: 40, B: 40, A: 255})
	s.DrawText("INK", face, 100, 40, TextStyle{
		Fill:         color.RGBA{R: 255, A: 255},
		Outline:      color.Black,
		OutlineWidth: 3.2,
	})

	var red, black int
	for y := 0; y < 80; y++ {
		for x := 0; x < 200; x++ {
			c := s.Image().RGBAAt(x, y)
			switch {
			case c.R > 200 && c.G < 50:
				red++
			case c.R < 10 && c.G < 10 && c.B < 10:
				black++
			}
		}
	}
	if red == 0 || black == 0 {
		t.Errorf("expected both fill (%d) and outline (%d) pixels", red, black)
	}
	if again, _ := fonts.Face(32.1); again != face {
		t.Error("faces of nearly equal size should be cached")
	}
}

func TestParseHex(t *testing.T) {
	tests := []struct {
		in      string
		want    color.RGBA
		wantErr bool
	}{
		{"#F97316", color.RGBA{R: 0xF9, G: 0x73, B: 0x16, A: 0xFF}, false},
		{"fff", color.RGBA{R: 255, G: 255, B: 255, A: 255}, false},
		{"#zzzzzz", color.RGBA{}, true},
		{"#12345", color.RGBA{}, true},
	}
	for _, tt := range tests {
		got, err := ParseHex(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseHex(%q) error = %v", tt.in, err)
			continue
		}
		if !tt.wantErr && got != tt.want {
			t.Errorf("ParseHex(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
	if New(0, 10) != nil {
		t.Error("New with zero width should return nil")
	}
}
