package source

import (
	"image"
	"math"
	"sort"

	"golang.org/x/image/draw"
)

// SheetSplitter cuts a flash sheet page into its individual designs. It
// finds strong edges with a Sobel filter, grows them so strokes of one
// design join up, and returns the bounding box of every connected region.
type SheetSplitter struct {
	MinArea       int     // smallest design kept, in pixels²
	EdgeThreshold float64 // Sobel gradient magnitude that counts as an edge
	Dilation      int     // radius used to join nearby strokes
	Padding       int     // margin added around each design
}

func NewSheetSplitter() *SheetSplitter {
	return &SheetSplitter{
		MinArea:       2500,
		EdgeThreshold: 30,
		Dilation:      6,
		Padding:       8,
	}
}

// Split returns the design rectangles of img in reading order: rows top to
// bottom, left to right within a row.
func (s *SheetSplitter) Split(img image.Image) []image.Rectangle {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w < 3 || h < 3 {
		return nil
	}

	gray := image.NewGray(image.Rect(0, 0, w, h))
	draw.Draw(gray, gray.Bounds(), img, b.Min, draw.Src)

	mask := sobel(gray, s.EdgeThreshold)
	mask = dilate(mask, w, h, s.Dilation)

	var rects []image.Rectangle
	for _, r := range components(mask, w, h) {
		r = r.Inset(s.Dilation)
		if r.Empty() || r.Dx()*r.Dy() < s.MinArea {
			continue
		}
		r = r.Inset(-s.Padding).Intersect(gray.Bounds())
		rects = append(rects, r.Add(b.Min))
	}
	return readingOrder(dropNested(rects))
}

func sobel(gray *image.Gray, threshold float64) []bool {
	w, h := gray.Rect.Dx(), gray.Rect.Dy()
	px := func(x, y int) float64 { return float64(gray.Pix[y*gray.Stride+x]) }
	edges := make([]bool, w*h)
	for y := 1; y < h-1; y++ {
		for x := 1; x < w-1; x++ {
			gx := px(x+1, y-1) + 2*px(x+1, y) + px(x+1, y+1) -
				px(x-1, y-1) - 2*px(x-1, y) - px(x-1, y+1)
			gy := px(x-1, y+1) + 2*px(x, y+1) + px(x+1, y+1) -
				px(x-1, y-1) - 2*px(x, y-1) - px(x+1, y-1)
			edges[y*w+x] = math.Hypot(gx, gy) > threshold
		}
	}
	return edges
}

// dilate grows the mask by a square of the given radius, as a horizontal
// then a vertical running-count pass.
func dilate(mask []bool, w, h, radius int) []bool {
	if radius <= 0 {
		return mask
	}
	pass := func(src []bool, n, lines int, at func(line, i int) int) []bool {
		dst := make([]bool, len(src))
		for l := 0; l < lines; l++ {
			count := 0
			for i := 0; i < min(radius, n); i++ {
				if src[at(l, i)] {
					count++
				}
			}
			for i := 0; i < n; i++ {
				if j := i + radius; j < n && src[at(l, j)] {
					count++
				}
				if j := i - radius - 1; j >= 0 && src[at(l, j)] {
					count--
				}
				dst[at(l, i)] = count > 0
			}
		}
		return dst
	}
	rows := pass(mask, w, h, func(y, x int) int { return y*w + x })
	return pass(rows, h, w, func(x, y int) int { return y*w + x })
}

func components(mask []bool, w, h int) []image.Rectangle {
	visited := make([]bool, len(mask))
	var rects []image.Rectangle
	var stack []int
	for start, on := range mask {
		if !on || visited[start] {
			continue
		}
		minX, minY := start%w, start/w
		maxX, maxY := minX, minY
		visited[start] = true
		stack = append(stack[:0], start)
		for len(stack) > 0 {
			p := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			x, y := p%w, p/w
			minX, maxX = min(minX, x), max(maxX, x)
			minY, maxY = min(minY, y), max(maxY, y)

			for _, n := range [4][2]int{{x + 1, y}, {x - 1, y}, {x, y + 1}, {x, y - 1}} {
				if n[0] < 0 || n[0] >= w || n[1] < 0 || n[1] >= h {
					continue
				}
				if q := n[1]*w + n[0]; mask[q] && !visited[q] {
					visited[q] = true
					stack = append(stack, q)
				}
			}
		}
		rects = append(rects, image.Rect(minX, minY, maxX+1, maxY+1))
	}
	return rects
}

func dropNested(rects []image.Rectangle) []image.Rectangle {
	out := rects[:0:0]
	for i, r := range rects {
		nested := false
		for j, o := range rects {
			if i != j && r.In(o) && r != o {
				nested = true
				break
			}
		}
		if !nested {
			out = append(out, r)
		}
	}
	return out
}

// readingOrder groups rectangles into rows by vertical overlap and sorts
// each row left to right.
func readingOrder(rects []image.Rectangle) []image.Rectangle {
	sort.Slice(rects, func(i, j int) bool { return rects[i].Min.Y < rects[j].Min.Y })

	out := make([]image.Rectangle, 0, len(rects))
	for len(rects) > 0 {
		bottom, n := rects[0].Max.Y, 1
		for n < len(rects) && rects[n].Min.Y < bottom {
			bottom = max(bottom, rects[n].Max.Y)
			n++
		}
		row := rects[:n]
		sort.Slice(row, func(i, j int) bool { return row[i].Min.X < row[j].Min.X })
		out = append(out, row...)
		rects = rects[n:]
	}
	return out
}
