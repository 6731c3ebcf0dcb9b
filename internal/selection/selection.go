// Package selection is the user's working set: the gallery of generated
// designs, which of them are selected, and the song, background clip,
// voice, script and subtitles that go into the next render.
package selection

import (
	"errors"
	"fmt"
	"sync"

	"github.com/ivlev/tattooreel/internal/asset"
	"github.com/ivlev/tattooreel/internal/compose"
	"github.com/ivlev/tattooreel/internal/subtitle"
)

// GallerySize is how many generated images are kept, newest first.
const GallerySize = 9

// DefaultDuration is the initial content duration in seconds.
const DefaultDuration = 3.0

// ErrDuplicateImage is returned for an image whose creation time is
// already in the gallery.
var ErrDuplicateImage = errors.New("image with the same creation time already in gallery")

// State is safe for concurrent use.
type State struct {
	mu         sync.RWMutex
	gallery    []asset.ImageAsset
	selected   map[int64]bool
	mode       compose.Mode
	song       *asset.AudioTrack
	background *asset.BackgroundVideoAsset
	voice      *asset.VoiceProfile
	script     string
	duration   float64
	subtitles  *subtitle.Timeline
}

func New() *State {
	return &State{
		selected:  make(map[int64]bool),
		duration:  DefaultDuration,
		subtitles: subtitle.NewTimeline(DefaultDuration),
	}
}

// AddImage puts img at the front of the gallery and drops the oldest
// image beyond GallerySize, together with its selection.
func (s *State) AddImage(img asset.ImageAsset) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, g := range s.gallery {
		if g.Key() == img.Key() {
			return fmt.Errorf("%w: %d", ErrDuplicateImage, img.Key())
		}
	}

	s.gallery = append([]asset.ImageAsset{img}, s.gallery...)
	if len(s.gallery) > GallerySize {
		for _, dropped := range s.gallery[GallerySize:] {
			delete(s.selected, dropped.Key())
		}
		s.gallery = s.gallery[:GallerySize]
	}
	return nil
}

// Gallery returns the images, newest first.
func (s *State) Gallery() []asset.ImageAsset {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]asset.ImageAsset(nil), s.gallery...)
}

// Toggle flips the selection of the image with the given key and reports
// whether it is selected afterwards. Unknown keys are ignored.
func (s *State) Toggle(key int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	found := false
	for _, g := range s.gallery {
		if g.Key() == key {
			found = true
			break
		}
	}
	if !found {
		return false
	}
	if s.selected[key] {
		delete(s.selected, key)
		return false
	}
	s.selected[key] = true
	return true
}

// SelectAll selects every image in the gallery.
func (s *State) SelectAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, g := range s.gallery {
		s.selected[g.Key()] = true
	}
}

func (s *State) ClearSelection() {
	s.mu.Lock()
	s.selected = make(map[int64]bool)
	s.mu.Unlock()
}

// Selected returns the selected images in gallery order.
func (s *State) Selected() []asset.ImageAsset {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.selectedLocked()
}

func (s *State) selectedLocked() []asset.ImageAsset {
	var out []asset.ImageAsset
	for _, g := range s.gallery {
		if s.selected[g.Key()] {
			out = append(out, g)
		}
	}
	return out
}

func (s *State) SetMode(m compose.Mode) {
	s.mu.Lock()
	s.mode = m
	s.mu.Unlock()
}

// SetSong selects a song; nil clears it.
func (s *State) SetSong(t *asset.AudioTrack) {
	s.mu.Lock()
	s.song = t
	s.mu.Unlock()
}

// SetBackground selects the background clip and switches to background
// mode; nil clears it and switches back to images.
func (s *State) SetBackground(v *asset.BackgroundVideoAsset) {
	s.mu.Lock()
	s.background = v
	if v != nil {
		s.mode = compose.ModeBackground
	} else {
		s.mode = compose.ModeImages
	}
	s.mu.Unlock()
}

func (s *State) SetVoice(v *asset.VoiceProfile, script string) {
	s.mu.Lock()
	s.voice = v
	s.script = script
	s.mu.Unlock()
}

// SetDuration changes the content duration. Cues ending after it are
// dropped, and cues added later are bounded by it.
func (s *State) SetDuration(d float64) error {
	if d <= 0 {
		return fmt.Errorf("invalid content duration %.2fs", d)
	}
	s.mu.Lock()
	s.duration = d
	s.mu.Unlock()
	s.subtitles.SetDuration(d)
	return nil
}

func (s *State) Duration() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.duration
}

// Subtitles returns the live timeline.
func (s *State) Subtitles() *subtitle.Timeline {
	return s.subtitles
}

// Request builds the render input from the current state. The result
// shares nothing with the state.
func (s *State) Request() compose.Request {
	s.mu.RLock()
	defer s.mu.RUnlock()

	req := compose.Request{
		Mode:            s.mode,
		Audio:           s.song,
		Subtitles:       s.subtitles.Snapshot(),
		ContentDuration: s.duration,
		Voice:           s.voice,
		Script:          s.script,
	}
	if s.mode == compose.ModeBackground {
		req.Background = s.background
	} else {
		req.Images = s.selectedLocked()
	}
	return req.Freeze()
}
