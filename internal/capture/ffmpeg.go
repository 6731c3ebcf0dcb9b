package capture

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/draw"
	"io"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/ivlev/tattooreel/internal/asset"
)

// FFmpegEncoder streams raw RGBA frames into an ffmpeg process and returns
// the encoded WebM/MP4 file.
type FFmpegEncoder struct {
	Binary    string
	Codec     string // libvpx, libx264, h264_videotoolbox, h264_nvenc
	Quality   int    // 0-100
	Extension string // ".webm" or ".mp4"
	MimeType  string
	TempDir   string

	params Params
	dir    string
	out    string
	cmd    *exec.Cmd
	stdin  io.WriteCloser
	log    bytes.Buffer
}

// NewFFmpegEncoder creates an encoder for the given container extension.
func NewFFmpegEncoder(codec string, quality int, ext, mime string) *FFmpegEncoder {
	return &FFmpegEncoder{
		Binary:    "ffmpeg",
		Codec:     codec,
		Quality:   quality,
		Extension: ext,
		MimeType:  mime,
	}
}

func (e *FFmpegEncoder) Start(ctx context.Context, p Params) error {
	dir, err := os.MkdirTemp(e.TempDir, "tattooreel_")
	if err != nil {
		return err
	}
	e.params = p
	e.dir = dir
	e.out = filepath.Join(dir, "video"+e.Extension)

	cmd := exec.CommandContext(ctx, e.Binary, e.buildFFmpegArgs(p, e.out)...)
	e.log.Reset()
	cmd.Stdout = &e.log
	cmd.Stderr = &e.log

	stdin, err := cmd.StdinPipe()
	if err != nil {
		os.RemoveAll(dir)
		return fmt.Errorf("stdin pipe error: %w", err)
	}
	if err := cmd.Start(); err != nil {
		os.RemoveAll(dir)
		return fmt.Errorf("ffmpeg start error: %w", err)
	}
	e.cmd = cmd
	e.stdin = stdin
	return nil
}

func (e *FFmpegEncoder) buildFFmpegArgs(p Params, out string) []string {
	args := []string{
		"-y",
		"-f", "rawvideo",
		"-pixel_format", "rgba",
		"-video_size", fmt.Sprintf("%dx%d", p.Width, p.Height),
		"-framerate", fmt.Sprintf("%d", p.FPS),
		"-i", "-",
	}
	if p.AudioPath != "" {
		args = append(args, "-stream_loop", "-1", "-i", p.AudioPath, "-map", "0:v:0", "-map", "1:a:0", "-shortest")
	}
	args = append(args, "-pix_fmt", "yuv420p", "-c:v", e.Codec)

	// Quality depends on the encoder
	switch e.Codec {
	case "h264_videotoolbox":
		args = append(args, "-b:v", fmt.Sprintf("%dk", e.Quality*100))
	case "h264_nvenc":
		args = append(args, "-cq", fmt.Sprintf("%d", x264CRF(e.Quality)))
	case "libvpx", "libvpx-vp9":
		args = append(args, "-crf", fmt.Sprintf("%d", vpxCRF(e.Quality)), "-b:v", "2M")
	default: // libx264
		args = append(args, "-crf", fmt.Sprintf("%d", x264CRF(e.Quality)), "-preset", "medium")
	}

	if p.AudioPath != "" {
		if e.Extension == ".webm" {
			args = append(args, "-c:a", "libvorbis")
		} else {
			args = append(args, "-c:a", "aac", "-b:a", "192k")
		}
	}

	return append(args, out)
}

// x264CRF maps 0-100 quality onto CRF 51-0.
func x264CRF(q int) int {
	return (100 - clampQuality(q)) * 51 / 100
}

// vpxCRF maps 0-100 quality onto CRF 63-4.
func vpxCRF(q int) int {
	return 4 + (100-clampQuality(q))*59/100
}

func clampQuality(q int) int {
	return max(0, min(100, q))
}

func (e *FFmpegEncoder) WriteFrame(frame *image.RGBA) error {
	return writeRawRGBA(e.stdin, frame)
}

func writeRawRGBA(w io.Writer, img image.Image) error {
	bounds := img.Bounds()
	rgba, ok := img.(*image.RGBA)
	if !ok || rgba.Stride != bounds.Dx()*4 || rgba.Rect.Min.X != 0 || rgba.Rect.Min.Y != 0 {
		rgba = image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
		draw.Draw(rgba, rgba.Rect, img, bounds.Min, draw.Src)
	}
	_, err := w.Write(rgba.Pix)
	return err
}

func (e *FFmpegEncoder) Finalize(ctx context.Context) (*asset.RenderedVideo, error) {
	defer os.RemoveAll(e.dir)

	e.stdin.Close()
	if err := e.cmd.Wait(); err != nil {
		return nil, fmt.Errorf("ffmpeg wait error: %w\nLog: %s", err, e.log.String())
	}

	data, err := os.ReadFile(e.out)
	if err != nil {
		return nil, err
	}
	return &asset.RenderedVideo{
		Data:      data,
		MimeType:  e.MimeType,
		Extension: e.Extension,
	}, nil
}

func (e *FFmpegEncoder) Abort() {
	if e.cmd == nil {
		return
	}
	e.stdin.Close()
	if e.cmd.Process != nil {
		e.cmd.Process.Kill()
	}
	e.cmd.Wait()
	os.RemoveAll(e.dir)
}

func (e *FFmpegEncoder) MuxesAudio() bool { return true }
