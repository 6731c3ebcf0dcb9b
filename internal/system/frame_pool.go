package system

import (
	"image"
	"sync"
)

// FramePool recycles capture frame buffers by frame size.
//
// The recorder copies each drawn frame into a pooled buffer and hands the
// copy to its encoder goroutine, which lets the compositor redraw the
// surface for the next frame straight away. The encoder goroutine returns
// the buffer with Put once the frame is written.
type FramePool struct {
	mu    sync.Mutex
	pools map[image.Point]*sync.Pool
}

var frames = NewFramePool()

func NewFramePool() *FramePool {
	return &FramePool{pools: make(map[image.Point]*sync.Pool)}
}

func (p *FramePool) pool(size image.Point, create bool) *sync.Pool {
	p.mu.Lock()
	defer p.mu.Unlock()
	pool, ok := p.pools[size]
	if !ok && create {
		pool = &sync.Pool{New: func() any {
			return image.NewRGBA(image.Rectangle{Max: size})
		}}
		p.pools[size] = pool
	}
	return pool
}

// Get returns a buffer of the given size anchored at the origin. Its
// contents are undefined.
func (p *FramePool) Get(size image.Point) *image.RGBA {
	return p.pool(size, true).Get().(*image.RGBA)
}

// Copy returns a pooled snapshot of src. Later drawing on src does not
// reach the copy.
func (p *FramePool) Copy(src *image.RGBA) *image.RGBA {
	size := src.Rect.Size()
	dst := p.Get(size)
	row := size.X * 4
	for y := 0; y < size.Y; y++ {
		from := src.PixOffset(src.Rect.Min.X, src.Rect.Min.Y+y)
		copy(dst.Pix[y*dst.Stride:y*dst.Stride+row], src.Pix[from:from+row])
	}
	return dst
}

// Put returns a buffer obtained from Get or Copy. Buffers of a size the
// pool never handed out are dropped.
func (p *FramePool) Put(img *image.RGBA) {
	if img == nil || img.Rect.Min != (image.Point{}) {
		return
	}
	if pool := p.pool(img.Rect.Size(), false); pool != nil {
		pool.Put(img)
	}
}

// CopyFrame snapshots a frame into the shared pool.
func CopyFrame(src *image.RGBA) *image.RGBA {
	return frames.Copy(src)
}

// ReleaseFrame hands a frame from CopyFrame back to the shared pool.
func ReleaseFrame(img *image.RGBA) {
	frames.Put(img)
}
