package selection

import (
	"errors"
	"testing"
	"time"

	"github.com/ivlev/tattooreel/internal/asset"
	"github.com/ivlev/tattooreel/internal/compose"
	"github.com/ivlev/tattooreel/internal/subtitle"
)

func img(ms int64) asset.ImageAsset {
	return asset.ImageAsset{URL: "u", Prompt: "p", CreatedAt: time.UnixMilli(ms)}
}

func TestGalleryKeepsNewestNine(t *testing.T) {
	s := New()
	for i := int64(1); i <= 12; i++ {
		if err := s.AddImage(img(i)); err != nil {
			t.Fatal(err)
		}
	}

	g := s.Gallery()
	if len(g) != GallerySize {
		t.Fatalf("expected %d images, got %d", GallerySize, len(g))
	}
	if g[0].Key() != 12 || g[8].Key() != 4 {
		t.Errorf("expected newest first, got %d..%d", g[0].Key(), g[8].Key())
	}

	if err := s.AddImage(img(12)); !errors.Is(err, ErrDuplicateImage) {
		t.Errorf("expected ErrDuplicateImage, got %v", err)
	}
}

func TestToggleSelection(t *testing.T) {
	s := New()
	for i := int64(1); i <= 3; i++ {
		s.AddImage(img(i))
	}

	if !s.Toggle(1) || !s.Toggle(3) {
		t.Fatal("toggle should select")
	}
	if s.Toggle(42) {
		t.Error("unknown key must not be selected")
	}

	sel := s.Selected()
	if len(sel) != 2 || sel[0].Key() != 3 || sel[1].Key() != 1 {
		t.Errorf("expected [3 1] in gallery order, got %v", sel)
	}

	if s.Toggle(3) {
		t.Error("second toggle should deselect")
	}
	if len(s.Selected()) != 1 {
		t.Errorf("expected 1 selected, got %d", len(s.Selected()))
	}

	s.SelectAll()
	if len(s.Selected()) != 3 {
		t.Error("SelectAll should select every image")
	}
	s.ClearSelection()
	if len(s.Selected()) != 0 {
		t.Error("ClearSelection should empty the selection")
	}
}

func TestDroppedImageLosesSelection(t *testing.T) {
	s := New()
	s.AddImage(img(1))
	s.Toggle(1)
	for i := int64(2); i <= 10; i++ {
		s.AddImage(img(i))
	}
	if len(s.Selected()) != 0 {
		t.Errorf("image 1 left the gallery but is still selected")
	}
}

func TestRequestSnapshot(t *testing.T) {
	s := New()
	s.AddImage(img(1))
	s.AddImage(img(2))
	s.Toggle(2)
	if err := s.SetDuration(6); err != nil {
		t.Fatal(err)
	}
	if err := s.Subtitles().Add(subtitle.Cue{Text: "hello", Start: 0, End: 5.5}); err != nil {
		t.Fatal(err)
	}
	song := &asset.AudioTrack{ID: "1"}
	s.SetSong(song)
	s.SetVoice(&asset.VoiceProfile{ID: "v2"}, "script")

	req := s.Request()
	if req.Mode != compose.ModeImages || len(req.Images) != 1 || req.Images[0].Key() != 2 {
		t.Errorf("unexpected images %+v", req.Images)
	}
	if req.ContentDuration != 6 || len(req.Subtitles) != 1 || req.Audio.ID != "1" || req.Script != "script" {
		t.Errorf("unexpected request %+v", req)
	}

	// Later edits do not reach the snapshot.
	s.Subtitles().Add(subtitle.Cue{Text: "late", Start: 1, End: 2})
	song.ID = "changed"
	if len(req.Subtitles) != 1 || req.Audio.ID != "1" {
		t.Error("request must be a frozen snapshot")
	}

	s.SetBackground(&asset.BackgroundVideoAsset{ID: "mc1"})
	req = s.Request()
	if req.Mode != compose.ModeBackground || req.Background.ID != "mc1" || len(req.Images) != 0 {
		t.Errorf("unexpected background request %+v", req)
	}
	if err := req.Validate(); err != nil {
		t.Error(err)
	}

	s.SetBackground(nil)
	s.ClearSelection()
	if err := s.Request().Validate(); !errors.Is(err, compose.ErrNoContent) {
		t.Errorf("expected ErrNoContent, got %v", err)
	}
}

func TestSetDurationBoundsCues(t *testing.T) {
	s := New()
	if err := s.SetDuration(0); err == nil {
		t.Error("zero duration must be rejected")
	}
	if err := s.Subtitles().Add(subtitle.Cue{Text: "x", Start: 0, End: 4}); !errors.Is(err, subtitle.ErrInvalidCue) {
		t.Errorf("cue past the default 3s duration should be rejected, got %v", err)
	}
}

func TestShrinkingDurationDropsLateCues(t *testing.T) {
	s := New()
	s.AddImage(img(1))
	s.SelectAll()
	if err := s.SetDuration(10); err != nil {
		t.Fatal(err)
	}
	s.Subtitles().Add(subtitle.Cue{Text: "early", Start: 0, End: 2})
	s.Subtitles().Add(subtitle.Cue{Text: "late", Start: 6, End: 9})

	if err := s.SetDuration(4); err != nil {
		t.Fatal(err)
	}
	req := s.Request()
	if len(req.Subtitles) != 1 || req.Subtitles[0].Text != "early" {
		t.Errorf("expected only the early cue to survive, got %v", req.Subtitles)
	}
	if err := req.Validate(); err != nil {
		t.Errorf("request after shrinking should be valid, got %v", err)
	}
}
