// Package asset holds the value types shared by the catalogs, the gallery
// and the render pipeline.
package asset

import (
	"fmt"
	"time"
)

// ImageAsset is one generated (or imported) tattoo design.
// CreatedAt identifies the image inside a session's gallery.
type ImageAsset struct {
	URL       string    `yaml:"url"`
	Prompt    string    `yaml:"prompt"`
	CreatedAt time.Time `yaml:"created_at"`
}

// Key returns the selection key of the image (creation time in ms).
func (i ImageAsset) Key() int64 {
	return i.CreatedAt.UnixMilli()
}

// AudioTrack is a catalog song.
type AudioTrack struct {
	ID     string
	Title  string
	Artist string
	URL    string
}

func (t AudioTrack) String() string {
	return fmt.Sprintf("%s - %s", t.Title, t.Artist)
}

// BackgroundVideoAsset is a catalog background clip.
type BackgroundVideoAsset struct {
	ID           string
	Title        string
	URL          string
	ThumbnailURL string
	Category     string
}

// VoiceProfile is advisory metadata only, nothing is synthesized.
type VoiceProfile struct {
	ID     string
	Name   string
	Accent string
}

func (v VoiceProfile) String() string {
	return fmt.Sprintf("%s (%s)", v.Name, v.Accent)
}

// RenderedVideo is the finished output of one composition.
type RenderedVideo struct {
	ID        string
	Data      []byte
	MimeType  string
	Extension string
	Frames    int
	Duration  time.Duration
	CreatedAt time.Time
}

// FileName is the suggested download name, e.g. tattoo-video-1718000000000.avi.
func (v *RenderedVideo) FileName() string {
	return fmt.Sprintf("tattoo-video-%d%s", v.CreatedAt.UnixMilli(), v.Extension)
}
