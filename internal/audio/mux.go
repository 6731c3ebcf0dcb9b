package audio

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	ffmpeg "github.com/u2takey/ffmpeg-go"

	"github.com/ivlev/tattooreel/internal/asset"
)

// audioCodec picks an audio codec the container accepts.
func audioCodec(ext string) string {
	switch strings.ToLower(ext) {
	case ".avi":
		return "libmp3lame"
	case ".webm":
		return "libvorbis"
	}
	return "aac"
}

// muxStream builds the ffmpeg job that copies the video stream and adds
// audio looped and trimmed to the video length. The job is bound to ctx.
func muxStream(ctx context.Context, videoPath, audioPath, outPath string) *ffmpeg.Stream {
	video := ffmpeg.Input(videoPath)
	track := ffmpeg.Input(audioPath, ffmpeg.KwArgs{"stream_loop": -1})
	return ffmpeg.OutputContext(ctx, []*ffmpeg.Stream{video, track}, outPath, ffmpeg.KwArgs{
		"c:v":      "copy",
		"c:a":      audioCodec(filepath.Ext(outPath)),
		"b:a":      "192k",
		"shortest": "",
	}).OverWriteOutput()
}

// Mux returns a copy of video with the track at audioURL as its soundtrack.
func Mux(ctx context.Context, video *asset.RenderedVideo, audioURL string) (*asset.RenderedVideo, error) {
	dir, err := os.MkdirTemp("", "tattooreel_mux_")
	if err != nil {
		return nil, err
	}
	defer os.RemoveAll(dir)

	in := filepath.Join(dir, "in"+video.Extension)
	out := filepath.Join(dir, "out"+video.Extension)
	if err := os.WriteFile(in, video.Data, 0644); err != nil {
		return nil, err
	}

	var log bytes.Buffer
	if err := muxStream(ctx, in, audioURL, out).WithErrorOutput(&log).Run(); err != nil {
		return nil, fmt.Errorf("audio mux failed: %w\nLog: %s", err, log.String())
	}

	data, err := os.ReadFile(out)
	if err != nil {
		return nil, err
	}
	muxed := *video
	muxed.Data = data
	return &muxed, nil
}
