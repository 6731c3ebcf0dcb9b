package audio

import (
	"context"
	"errors"
	"slices"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/ivlev/tattooreel/internal/asset"
)

type fakePlayer struct {
	url     string
	loop    bool
	events  []string
	playErr error
}

func (p *fakePlayer) SetLoop(loop bool) { p.loop = loop }

func (p *fakePlayer) Play(ctx context.Context) error {
	p.events = append(p.events, "play")
	return p.playErr
}

func (p *fakePlayer) Pause() error {
	p.events = append(p.events, "pause")
	return nil
}

type fakeTransport struct {
	play, pause []func()
}

func (t *fakeTransport) OnPlay(f func())  { t.play = append(t.play, f) }
func (t *fakeTransport) OnPause(f func()) { t.pause = append(t.pause, f) }

func (t *fakeTransport) fire(fs []func()) {
	for _, f := range fs {
		f()
	}
}

func TestSynchronizerMirrorsTransport(t *testing.T) {
	var p *fakePlayer
	s := &Synchronizer{
		NewPlayer: func(url string) Player {
			p = &fakePlayer{url: url}
			return p
		},
		Log: zerolog.Nop(),
	}
	tr := &fakeTransport{}
	s.Bind(context.Background(), &asset.AudioTrack{ID: "3", URL: "espresso.mp3"}, tr)

	tr.fire(tr.play)
	tr.fire(tr.pause)
	tr.fire(tr.play)

	if p.url != "espresso.mp3" || !p.loop {
		t.Errorf("player url=%q loop=%v", p.url, p.loop)
	}
	if want := []string{"play", "pause", "play"}; !slices.Equal(p.events, want) {
		t.Errorf("events = %v, want %v", p.events, want)
	}
}

func TestSynchronizerWithoutTrack(t *testing.T) {
	s := &Synchronizer{NewPlayer: func(string) Player {
		t.Fatal("no player may be created without a track")
		return nil
	}}
	tr := &fakeTransport{}
	s.Bind(context.Background(), nil, tr)
	if len(tr.play)+len(tr.pause) != 0 {
		t.Error("nothing should be bound")
	}
}

func TestSynchronizerPlayFailureIsLogged(t *testing.T) {
	p := &fakePlayer{playErr: errors.New("no device")}
	s := &Synchronizer{NewPlayer: func(string) Player { return p }, Log: zerolog.Nop()}
	tr := &fakeTransport{}
	s.Bind(context.Background(), &asset.AudioTrack{URL: "x"}, tr)
	tr.fire(tr.play)
	if len(p.events) != 1 {
		t.Errorf("expected one play attempt, got %v", p.events)
	}
}

func TestProcessPlayerArgs(t *testing.T) {
	p := NewProcessPlayer("song.mp3")
	if got := strings.Join(p.args(), " "); !strings.Contains(got, "-loop 1") {
		t.Errorf("default should play once: %s", got)
	}
	p.SetLoop(true)
	got := p.args()
	if !strings.Contains(strings.Join(got, " "), "-nodisp") || !slices.Contains(got, "0") || got[len(got)-1] != "song.mp3" {
		t.Errorf("unexpected args %v", got)
	}
	if err := p.Pause(); err != nil {
		t.Errorf("pause before play: %v", err)
	}
}

func TestMuxArgs(t *testing.T) {
	tests := []struct {
		out   string
		codec string
	}{
		{"out.avi", "libmp3lame"},
		{"out.webm", "libvorbis"},
		{"out.mp4", "aac"},
	}
	for _, tt := range tests {
		t.Run(tt.out, func(t *testing.T) {
			args := strings.Join(muxStream(context.Background(), "in.avi", "song.mp3", tt.out).GetArgs(), " ")
			for _, want := range []string{"-i in.avi", "-stream_loop -1 -i song.mp3", "-c:v copy", "-c:a " + tt.codec, "-shortest", "-y"} {
				if !strings.Contains(args, want) {
					t.Errorf("expected %q in %s", want, args)
				}
			}
			if !strings.HasSuffix(strings.TrimSpace(strings.ReplaceAll(args, " -y", "")), tt.out) {
				t.Errorf("output should close the command: %s", args)
			}
		})
	}
}

func TestMuxStreamFollowsContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	st := muxStream(ctx, "in.mp4", "song.mp3", "out.mp4")
	if st.Context.Err() != nil {
		t.Fatal("job cancelled before its context")
	}
	cancel()
	if !errors.Is(st.Context.Err(), context.Canceled) {
		t.Errorf("expected the job to see cancellation, got %v", st.Context.Err())
	}
}

func TestMuxCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	video := &asset.RenderedVideo{Data: []byte("video"), Extension: ".mp4"}
	if _, err := Mux(ctx, video, "song.mp3"); err == nil {
		t.Error("expected a cancelled mux to fail")
	}
}
