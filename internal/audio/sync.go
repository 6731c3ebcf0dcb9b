// Package audio attaches the selected song to a rendered video: coarse
// play/pause synchronization for previews and muxing into the file.
package audio

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/ivlev/tattooreel/internal/asset"
)

// Player is a controllable audio output.
type Player interface {
	SetLoop(loop bool)
	Play(ctx context.Context) error
	Pause() error
}

// Transport reports play and pause of the video being watched.
type Transport interface {
	OnPlay(func())
	OnPause(func())
}

// Synchronizer mirrors a video transport onto an audio player: video play
// starts the looping track, video pause pauses it. No sample-accurate sync
// is attempted.
type Synchronizer struct {
	NewPlayer func(url string) Player
	Log       zerolog.Logger
}

// Bind wires track to t. A nil track binds nothing.
func (s *Synchronizer) Bind(ctx context.Context, track *asset.AudioTrack, t Transport) {
	if track == nil {
		return
	}
	p := s.NewPlayer(track.URL)
	var mu sync.Mutex

	t.OnPlay(func() {
		mu.Lock()
		defer mu.Unlock()
		p.SetLoop(true)
		if err := p.Play(ctx); err != nil {
			s.Log.Warn().Err(err).Str("track", track.String()).Msg("audio play failed")
		}
	})
	t.OnPause(func() {
		mu.Lock()
		defer mu.Unlock()
		if err := p.Pause(); err != nil {
			s.Log.Warn().Err(err).Str("track", track.String()).Msg("audio pause failed")
		}
	})
}
