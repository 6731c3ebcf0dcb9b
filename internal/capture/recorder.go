package capture

import (
	"context"
	"fmt"
	"image"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/ivlev/tattooreel/internal/asset"
	"github.com/ivlev/tattooreel/internal/system"
)

// queueDepth bounds how far rendering may run ahead of encoding.
const queueDepth = 8

type timedFrame struct {
	img *image.RGBA
	ts  time.Duration
}

// Recorder wraps an Encoder. Capture snapshots each frame into a pooled
// buffer and queues it for a single encoding goroutine: order is kept and
// the caller may redraw its surface as soon as Capture returns.
type Recorder struct {
	enc    Encoder
	log    zerolog.Logger
	params Params

	mu        sync.Mutex
	started   bool
	finalized bool
	last      time.Duration
	frames    int

	queue chan timedFrame
	done  chan struct{}
	err   error // first encoder error, guarded by errMu
	errMu sync.Mutex
}

// NewRecorder binds a recorder to an encoder.
func NewRecorder(enc Encoder, log zerolog.Logger) *Recorder {
	return &Recorder{enc: enc, log: log, last: -1}
}

// Start initialises the encoder. Failures wrap ErrCapture.
func (r *Recorder) Start(ctx context.Context, p Params) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.started {
		return fmt.Errorf("%w: recorder already started", ErrCapture)
	}
	if p.FPS <= 0 {
		p.FPS = FrameRate
	}
	if err := r.enc.Start(ctx, p); err != nil {
		return fmt.Errorf("%w: %v", ErrCapture, err)
	}

	r.params = p
	r.started = true
	r.queue = make(chan timedFrame, queueDepth)
	r.done = make(chan struct{})
	go r.encodeLoop()

	r.log.Debug().Int("width", p.Width).Int("height", p.Height).Int("fps", p.FPS).Msg("capture started")
	return nil
}

func (r *Recorder) encodeLoop() {
	defer close(r.done)
	for f := range r.queue {
		if r.failed() == nil {
			if err := r.enc.WriteFrame(f.img); err != nil {
				r.fail(fmt.Errorf("%w: frame at %s: %v", ErrCapture, f.ts, err))
			}
		}
		system.ReleaseFrame(f.img)
	}
}

func (r *Recorder) fail(err error) {
	r.errMu.Lock()
	if r.err == nil {
		r.err = err
	}
	r.errMu.Unlock()
}

func (r *Recorder) failed() error {
	r.errMu.Lock()
	defer r.errMu.Unlock()
	return r.err
}

// Capture queues one frame. Timestamps must strictly increase.
func (r *Recorder) Capture(frame *image.RGBA, ts time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	switch {
	case !r.started:
		return fmt.Errorf("%w: recorder not started", ErrCapture)
	case r.finalized:
		return ErrFinalized
	case ts <= r.last:
		return fmt.Errorf("%w: %s after %s", ErrOutOfOrder, ts, r.last)
	}
	if err := r.failed(); err != nil {
		return err
	}

	r.queue <- timedFrame{img: system.CopyFrame(frame), ts: ts}
	r.last = ts
	r.frames++
	return nil
}

// Frames returns how many frames were accepted.
func (r *Recorder) Frames() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.frames
}

// MuxesAudio forwards the encoder's capability.
func (r *Recorder) MuxesAudio() bool {
	return r.enc.MuxesAudio()
}

// Finalize drains the queue and produces the video. It may be called once.
func (r *Recorder) Finalize(ctx context.Context) (*asset.RenderedVideo, error) {
	r.mu.Lock()
	if !r.started {
		r.mu.Unlock()
		return nil, fmt.Errorf("%w: recorder not started", ErrCapture)
	}
	if r.finalized {
		r.mu.Unlock()
		return nil, ErrFinalized
	}
	r.finalized = true
	close(r.queue)
	frames := r.frames
	r.mu.Unlock()

	<-r.done
	if err := r.failed(); err != nil {
		r.enc.Abort()
		return nil, err
	}
	if frames == 0 {
		r.enc.Abort()
		return nil, fmt.Errorf("%w: no frames captured", ErrCapture)
	}

	video, err := r.enc.Finalize(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCapture, err)
	}
	if video.ID == "" {
		video.ID = uuid.NewString()
	}
	if video.CreatedAt.IsZero() {
		video.CreatedAt = time.Now()
	}
	video.Frames = frames
	video.Duration = time.Duration(frames) * time.Second / time.Duration(r.params.FPS)

	r.log.Debug().Int("frames", frames).Int("bytes", len(video.Data)).Str("mime", video.MimeType).Msg("capture finalized")
	return video, nil
}

// Abort stops a recorder that will never be finalized.
func (r *Recorder) Abort() {
	r.mu.Lock()
	if !r.started || r.finalized {
		r.mu.Unlock()
		return
	}
	r.finalized = true
	close(r.queue)
	r.mu.Unlock()

	<-r.done
	r.enc.Abort()
}
