package compose

import (
	"context"
	"fmt"
	"image"
	"runtime"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/ivlev/tattooreel/internal/asset"
	"github.com/ivlev/tattooreel/internal/canvas"
	"github.com/ivlev/tattooreel/internal/capture"
	"github.com/ivlev/tattooreel/internal/source"
	"github.com/ivlev/tattooreel/internal/system"
)

// ImageLoader decodes a design image from its URL.
type ImageLoader interface {
	Load(ctx context.Context, url string) (image.Image, error)
}

// VideoOpener starts a muted background clip and returns once its first
// frame is ready.
type VideoOpener func(ctx context.Context, url string, width, height, fps int) (VideoFrames, error)

// Options configures a Compositor. Zero fields get defaults in New.
type Options struct {
	Width, Height int
	FPS           int
	// PrimeTimeout bounds the load of each individual asset.
	PrimeTimeout time.Duration
	CTATitle     string
	CTAText      string
	Fonts        *canvas.Fonts

	Clock      Clock
	Loader     ImageLoader
	OpenVideo  VideoOpener
	NewEncoder func() capture.Encoder

	Log zerolog.Logger
	// OnState observes every state transition.
	OnState func(State)
}

// Compositor runs one render at a time. Each Render starts a fresh state
// machine, so a failed render does not affect the next one.
type Compositor struct {
	opts Options

	mu     sync.Mutex
	busy   bool
	state  State
	report system.RenderReport
}

// New creates a compositor.
func New(opts Options) (*Compositor, error) {
	if opts.Width == 0 && opts.Height == 0 {
		opts.Width, opts.Height = 1280, 720
	}
	if opts.FPS <= 0 {
		opts.FPS = capture.FrameRate
	}
	if opts.PrimeTimeout <= 0 {
		opts.PrimeTimeout = 10 * time.Second
	}
	if opts.CTATitle == "" {
		opts.CTATitle = "AI Tattoo Designer"
	}
	if opts.CTAText == "" {
		opts.CTAText = "Create yours now!"
	}
	if opts.Fonts == nil {
		fonts, err := canvas.DefaultFonts()
		if err != nil {
			return nil, err
		}
		opts.Fonts = fonts
	}
	if opts.Clock == nil {
		opts.Clock = &RealtimeClock{}
	}
	if opts.Loader == nil {
		opts.Loader = source.NewLoader(0)
	}
	if opts.OpenVideo == nil {
		opts.OpenVideo = func(ctx context.Context, url string, w, h, fps int) (VideoFrames, error) {
			return source.OpenVideo(ctx, url, w, h, fps)
		}
	}
	if opts.NewEncoder == nil {
		opts.NewEncoder = func() capture.Encoder { return capture.NewMJPEGEncoder(85) }
	}
	return &Compositor{opts: opts}, nil
}

// State returns the state of the current or last render.
func (c *Compositor) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Report returns the timings of the last render.
func (c *Compositor) Report() system.RenderReport {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.report
}

func (c *Compositor) setState(s State) {
	c.mu.Lock()
	c.state = s
	c.mu.Unlock()

	c.opts.Log.Debug().Stringer("state", s).Msg("compositor state")
	if c.opts.OnState != nil {
		c.opts.OnState(s)
	}
}

func (c *Compositor) acquire() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.busy {
		return false
	}
	c.busy = true
	c.state = Idle
	c.report = system.RenderReport{}
	return true
}

func (c *Compositor) release() {
	c.mu.Lock()
	c.busy = false
	c.mu.Unlock()
}

// Render turns req into a video. Invalid requests are rejected before
// priming; a second call while a render is active returns ErrBusy.
func (c *Compositor) Render(ctx context.Context, req Request) (*asset.RenderedVideo, error) {
	if err := req.Validate(); err != nil {
		c.opts.Log.Warn().Err(err).Str("notice", Notice(err)).Msg("render rejected")
		return nil, err
	}
	if !c.acquire() {
		c.opts.Log.Warn().Err(ErrBusy).Str("notice", Notice(ErrBusy)).Msg("render rejected")
		return nil, ErrBusy
	}
	defer c.release()

	video, err := c.run(ctx, req.Freeze())
	if err != nil {
		c.setState(Failed)
		c.opts.Log.Error().Err(err).Str("notice", Notice(err)).Msg("render failed")
		return nil, err
	}
	c.setState(Done)
	return video, nil
}

func (c *Compositor) run(ctx context.Context, req Request) (*asset.RenderedVideo, error) {
	o := c.opts
	report := system.RenderReport{Mode: req.Mode.String()}

	primeStart := time.Now()
	c.setState(Priming)

	surface := canvas.New(o.Width, o.Height)
	if surface == nil {
		return nil, fmt.Errorf("%w: %dx%d", ErrNoSurface, o.Width, o.Height)
	}

	content, err := c.prime(ctx, req)
	if err != nil {
		return nil, err
	}
	defer content.close()

	rec := capture.NewRecorder(o.NewEncoder(), o.Log)
	params := capture.Params{Width: o.Width, Height: o.Height, FPS: o.FPS}
	if req.Audio != nil && rec.MuxesAudio() {
		params.AudioPath = req.Audio.URL
	}
	if err := rec.Start(ctx, params); err != nil {
		return nil, err
	}
	report.Priming = time.Since(primeStart)

	renderStart := time.Now()
	cta := &CTAPhase{Title: o.CTATitle, Text: o.CTAText, Fonts: o.Fonts}
	contentFrames := frameCount(req.ContentDuration, o.FPS)
	ctaFrames := frameCount(CTADuration, o.FPS)

	pump := func(ph Phase, first, count int) error {
		for i := 0; i < count; i++ {
			ts := frameTime(first+i, o.FPS)
			if err := o.Clock.Wait(ctx, ts); err != nil {
				return err
			}
			if err := ph.Draw(surface, float64(i)/float64(o.FPS)); err != nil {
				return fmt.Errorf("%w: frame %d: %v", ErrAssetLoad, first+i, err)
			}
			if err := rec.Capture(surface.Image(), ts); err != nil {
				return err
			}
		}
		return nil
	}

	c.setState(RenderingContent)
	o.Clock.Start()
	if err := pump(content.phase, 0, contentFrames); err != nil {
		rec.Abort()
		return nil, err
	}
	c.setState(RenderingCTA)
	if err := pump(cta, contentFrames, ctaFrames); err != nil {
		rec.Abort()
		return nil, err
	}
	report.Rendering = time.Since(renderStart)

	finalStart := time.Now()
	c.setState(Finalizing)
	content.close()
	video, err := rec.Finalize(ctx)
	if err != nil {
		return nil, err
	}
	report.Finalizing = time.Since(finalStart)
	report.Frames = video.Frames
	report.OutputBytes = len(video.Data)

	c.mu.Lock()
	c.report = report
	c.mu.Unlock()

	o.Log.Info().
		Str("id", video.ID).
		Str("mode", report.Mode).
		Int("frames", video.Frames).
		Dur("duration", video.Duration).
		Msg("render done")
	return video, nil
}

type primed struct {
	phase *ContentPhase
	once  sync.Once
}

// close pauses the background clip, if any.
func (p *primed) close() {
	p.once.Do(func() {
		if p.phase.Video != nil {
			p.phase.Video.Close()
		}
	})
}

// prime loads every visual resource before the first frame. Image loads
// run in parallel and are all-or-nothing.
func (c *Compositor) prime(ctx context.Context, req Request) (*primed, error) {
	o := c.opts
	phase := &ContentPhase{
		Duration:  req.ContentDuration,
		Subtitles: req.Subtitles,
		Fonts:     o.Fonts,
	}

	if req.Mode == ModeBackground {
		vctx, cancel := context.WithTimeout(ctx, o.PrimeTimeout)
		defer cancel()
		video, err := o.OpenVideo(vctx, req.Background.URL, o.Width, o.Height, o.FPS)
		if err != nil {
			return nil, fmt.Errorf("%w: background video %s: %v", ErrAssetLoad, req.Background.ID, err)
		}
		phase.Video = video
		return &primed{phase: phase}, nil
	}

	slides := make([]*image.RGBA, len(req.Images))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())
	for i, img := range req.Images {
		g.Go(func() error {
			actx, cancel := context.WithTimeout(gctx, o.PrimeTimeout)
			defer cancel()
			src, err := o.Loader.Load(actx, img.URL)
			if err != nil {
				return fmt.Errorf("%w: image %d (%s): %v", ErrAssetLoad, i+1, img.URL, err)
			}
			slides[i] = canvas.Cover(src, o.Width, o.Height)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	o.Log.Debug().Int("images", len(slides)).Msg("images primed")
	phase.Slides = slides
	return &primed{phase: phase}, nil
}
