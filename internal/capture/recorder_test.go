package capture

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/ivlev/tattooreel/internal/asset"
)

type fakeEncoder struct {
	mu        sync.Mutex
	startErr  error
	writeErr  error
	colors    []color.RGBA
	finalized int
	aborted   bool
}

func (f *fakeEncoder) Start(ctx context.Context, p Params) error { return f.startErr }

func (f *fakeEncoder) WriteFrame(frame *image.RGBA) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.writeErr != nil {
		return f.writeErr
	}
	f.colors = append(f.colors, frame.RGBAAt(0, 0))
	return nil
}

func (f *fakeEncoder) Finalize(ctx context.Context) (*asset.RenderedVideo, error) {
	f.finalized++
	return &asset.RenderedVideo{Data: []byte("video"), MimeType: "video/test", Extension: ".test"}, nil
}

func (f *fakeEncoder) Abort()           { f.aborted = true }
func (f *fakeEncoder) MuxesAudio() bool { return false }

func solid(c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = c.R, c.G, c.B, c.A
	}
	return img
}

func frameTime(i int) time.Duration {
	return time.Duration(i) * time.Second / FrameRate
}

func TestRecorderOrderAndFinalizeOnce(t *testing.T) {
	enc := &fakeEncoder{}
	r := NewRecorder(enc, zerolog.Nop())
	if err := r.Start(context.Background(), Params{Width: 4, Height: 4}); err != nil {
		t.Fatal(err)
	}

	// One surface redrawn between captures, like the compositor does.
	surface := image.NewRGBA(image.Rect(0, 0, 4, 4))
	for i := 0; i < 30; i++ {
		copy(surface.Pix, solid(color.RGBA{R: uint8(i), A: 255}).Pix)
		if err := r.Capture(surface, frameTime(i)); err != nil {
			t.Fatalf("capture %d: %v", i, err)
		}
	}

	video, err := r.Finalize(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if video.Frames != 30 || video.Duration != time.Second {
		t.Errorf("frames=%d duration=%s", video.Frames, video.Duration)
	}
	if video.ID == "" || video.CreatedAt.IsZero() {
		t.Error("expected ID and CreatedAt to be set")
	}
	for i, c := range enc.colors {
		if int(c.R) != i {
			t.Fatalf("frame %d has R=%d, frames reordered or overwritten", i, c.R)
		}
	}

	if _, err := r.Finalize(context.Background()); !errors.Is(err, ErrFinalized) {
		t.Errorf("second Finalize: expected ErrFinalized, got %v", err)
	}
	if enc.finalized != 1 {
		t.Errorf("encoder finalized %d times", enc.finalized)
	}
	if err := r.Capture(surface, frameTime(99)); !errors.Is(err, ErrFinalized) {
		t.Errorf("capture after finalize: expected ErrFinalized, got %v", err)
	}
}

func TestRecorderRejectsNonIncreasingTimestamps(t *testing.T) {
	r := NewRecorder(&fakeEncoder{}, zerolog.Nop())
	if err := r.Start(context.Background(), Params{Width: 4, Height: 4}); err != nil {
		t.Fatal(err)
	}
	defer r.Abort()

	f := solid(color.RGBA{A: 255})
	if err := r.Capture(f, frameTime(1)); err != nil {
		t.Fatal(err)
	}
	for _, ts := range []time.Duration{frameTime(1), frameTime(0)} {
		if err := r.Capture(f, ts); !errors.Is(err, ErrOutOfOrder) {
			t.Errorf("ts %s: expected ErrOutOfOrder, got %v", ts, err)
		}
	}
	if r.Frames() != 1 {
		t.Errorf("expected 1 frame, got %d", r.Frames())
	}
}

func TestRecorderFailures(t *testing.T) {
	t.Run("start", func(t *testing.T) {
		r := NewRecorder(&fakeEncoder{startErr: errors.New("no codec")}, zerolog.Nop())
		if err := r.Start(context.Background(), Params{Width: 4, Height: 4}); !errors.Is(err, ErrCapture) {
			t.Errorf("expected ErrCapture, got %v", err)
		}
	})

	t.Run("not started", func(t *testing.T) {
		r := NewRecorder(&fakeEncoder{}, zerolog.Nop())
		if err := r.Capture(solid(color.RGBA{}), 0); !errors.Is(err, ErrCapture) {
			t.Errorf("expected ErrCapture, got %v", err)
		}
	})

	t.Run("no frames", func(t *testing.T) {
		enc := &fakeEncoder{}
		r := NewRecorder(enc, zerolog.Nop())
		r.Start(context.Background(), Params{Width: 4, Height: 4})
		if _, err := r.Finalize(context.Background()); !errors.Is(err, ErrCapture) {
			t.Errorf("expected ErrCapture, got %v", err)
		}
		if !enc.aborted {
			t.Error("encoder should be aborted")
		}
	})

	t.Run("write", func(t *testing.T) {
		enc := &fakeEncoder{writeErr: errors.New("disk full")}
		r := NewRecorder(enc, zerolog.Nop())
		r.Start(context.Background(), Params{Width: 4, Height: 4})
		r.Capture(solid(color.RGBA{}), 0)
		if _, err := r.Finalize(context.Background()); !errors.Is(err, ErrCapture) {
			t.Errorf("expected ErrCapture, got %v", err)
		}
		if enc.finalized != 0 {
			t.Error("failed recording must not be finalized")
		}
	})
}

func TestMJPEGEncoder(t *testing.T) {
	enc := NewMJPEGEncoder(80)
	enc.TempDir = t.TempDir()
	r := NewRecorder(enc, zerolog.Nop())
	if err := r.Start(context.Background(), Params{Width: 16, Height: 16}); err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 3; i++ {
		f := image.NewRGBA(image.Rect(0, 0, 16, 16))
		if err := r.Capture(f, frameTime(i)); err != nil {
			t.Fatal(err)
		}
	}

	video, err := r.Finalize(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(video.Data, []byte("RIFF")) || !bytes.Contains(video.Data[:16], []byte("AVI ")) {
		t.Errorf("expected an AVI file, got header %q", video.Data[:16])
	}
	if video.MimeType != "video/x-msvideo" || video.Extension != ".avi" {
		t.Errorf("unexpected type %s %s", video.MimeType, video.Extension)
	}
	if !strings.HasSuffix(video.FileName(), ".avi") {
		t.Errorf("unexpected file name %s", video.FileName())
	}
}

func TestBuildFFmpegArgs(t *testing.T) {
	tests := []struct {
		name  string
		codec string
		ext   string
		audio string
		want  []string
		not   []string
	}{
		{"webm", "libvpx", ".webm", "", []string{"-crf", "-b:v"}, []string{"-stream_loop", "-c:a"}},
		{"mp4 audio", "libx264", ".mp4", "song.mp3", []string{"-stream_loop", "-shortest", "aac", "-preset"}, nil},
		{"webm audio", "libvpx", ".webm", "song.mp3", []string{"libvorbis"}, []string{"aac"}},
		{"videotoolbox", "h264_videotoolbox", ".mp4", "", []string{"-b:v"}, []string{"-crf"}},
		{"nvenc", "h264_nvenc", ".mp4", "", []string{"-cq"}, []string{"-crf"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := NewFFmpegEncoder(tt.codec, 85, tt.ext, "video/x")
			args := e.buildFFmpegArgs(Params{Width: 1280, Height: 720, FPS: 30, AudioPath: tt.audio}, "out"+tt.ext)
			joined := strings.Join(args, " ")

			if !strings.Contains(joined, "-f rawvideo -pixel_format rgba -video_size 1280x720 -framerate 30 -i -") {
				t.Errorf("missing raw input args: %s", joined)
			}
			if args[len(args)-1] != "out"+tt.ext {
				t.Errorf("output must be last, got %s", args[len(args)-1])
			}
			for _, w := range tt.want {
				if !strings.Contains(joined, w) {
					t.Errorf("expected %q in %s", w, joined)
				}
			}
			for _, n := range tt.not {
				if strings.Contains(joined, n) {
					t.Errorf("unexpected %q in %s", n, joined)
				}
			}
		})
	}
}

func TestWriteRawRGBA(t *testing.T) {
	sub := image.NewRGBA(image.Rect(0, 0, 4, 4)).SubImage(image.Rect(1, 1, 3, 3))
	var buf bytes.Buffer
	if err := writeRawRGBA(&buf, sub); err != nil {
		t.Fatal(err)
	}
	if buf.Len() != 2*2*4 {
		t.Errorf("expected 16 bytes, got %d", buf.Len())
	}
	if err := writeRawRGBA(io.Discard, solid(color.RGBA{})); err != nil {
		t.Fatal(err)
	}
}

func TestQualityMapping(t *testing.T) {
	if x264CRF(100) != 0 || x264CRF(0) != 51 || x264CRF(200) != 0 {
		t.Error("x264 CRF mapping out of range")
	}
	if vpxCRF(100) != 4 || vpxCRF(0) != 63 {
		t.Error("vpx CRF mapping out of range")
	}
}
