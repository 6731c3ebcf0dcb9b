package source

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"math"
	"os/exec"
	"sync"
)

// VideoReader decodes a looping, muted background clip into RGBA frames
// of a fixed size through an ffmpeg child process.
type VideoReader struct {
	width, height int
	fps           int

	cmd    *exec.Cmd
	cancel context.CancelFunc
	out    *bufio.Reader
	stderr bytes.Buffer

	mu    sync.Mutex
	frame *image.RGBA
	index int
	eof   bool
}

// OpenVideo starts decoding url and returns once the first frame is
// available, which is the clip's "data ready" point. Frames are
// cover-scaled and center-cropped to width x height by ffmpeg.
func OpenVideo(ctx context.Context, url string, width, height, fps int) (*VideoReader, error) {
	runCtx, cancel := context.WithCancel(context.Background())
	vr := &VideoReader{width: width, height: height, fps: fps, cancel: cancel}

	filter := fmt.Sprintf("scale=%d:%d:force_original_aspect_ratio=increase,crop=%d:%d", width, height, width, height)
	vr.cmd = exec.CommandContext(runCtx, "ffmpeg",
		"-v", "error",
		"-stream_loop", "-1",
		"-i", url,
		"-an",
		"-vf", filter,
		"-r", fmt.Sprintf("%d", fps),
		"-f", "rawvideo",
		"-pix_fmt", "rgba",
		"-",
	)
	vr.cmd.Stderr = &vr.stderr

	stdout, err := vr.cmd.StdoutPipe()
	if err != nil {
		cancel()
		return nil, err
	}
	if err := vr.cmd.Start(); err != nil {
		cancel()
		return nil, fmt.Errorf("ffmpeg start error: %w", err)
	}
	vr.out = bufio.NewReaderSize(stdout, width*height*4)

	ready := make(chan error, 1)
	go func() {
		f, err := vr.readFrame()
		if err == nil {
			vr.frame = f
		}
		ready <- err
	}()

	select {
	case err := <-ready:
		if err != nil {
			vr.Close()
			return nil, fmt.Errorf("background video %s: %w: %s", url, err, vr.stderr.String())
		}
		return vr, nil
	case <-ctx.Done():
		vr.cancel()
		<-ready
		vr.Close()
		return nil, fmt.Errorf("background video %s: %w", url, ctx.Err())
	}
}

func (vr *VideoReader) readFrame() (*image.RGBA, error) {
	img := image.NewRGBA(image.Rect(0, 0, vr.width, vr.height))
	if _, err := io.ReadFull(vr.out, img.Pix); err != nil {
		return nil, err
	}
	return img, nil
}

// FrameAt returns the decoded frame for t seconds of playback. Playback
// only moves forward; a t behind the current position returns the current
// frame.
func (vr *VideoReader) FrameAt(t float64) (image.Image, error) {
	vr.mu.Lock()
	defer vr.mu.Unlock()

	target := frameIndex(t, vr.fps)
	for !vr.eof && vr.index < target {
		f, err := vr.readFrame()
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			vr.eof = true
			break
		}
		if err != nil {
			return nil, err
		}
		vr.frame = f
		vr.index++
	}
	return vr.frame, nil
}

// frameIndex maps a playback time to a decoded frame. Times like i/fps
// are not exact in floating point, so the index is rounded rather than
// truncated to keep one step per output frame.
func frameIndex(t float64, fps int) int {
	return int(math.Round(t * float64(fps)))
}

// Close pauses the clip by stopping the decoder.
func (vr *VideoReader) Close() error {
	vr.cancel()
	vr.cmd.Wait()
	return nil
}
