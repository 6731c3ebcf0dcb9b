package audio

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"sync"
)

// ProcessPlayer plays a track through ffplay without a window. Pause stops
// the process; the next Play starts the track over.
type ProcessPlayer struct {
	Binary string
	URL    string

	mu   sync.Mutex
	loop bool
	cmd  *exec.Cmd
}

func NewProcessPlayer(url string) *ProcessPlayer {
	return &ProcessPlayer{Binary: "ffplay", URL: url}
}

func (p *ProcessPlayer) SetLoop(loop bool) {
	p.mu.Lock()
	p.loop = loop
	p.mu.Unlock()
}

func (p *ProcessPlayer) args() []string {
	loops := "1"
	if p.loop {
		loops = "0"
	}
	return []string{"-nodisp", "-autoexit", "-loglevel", "quiet", "-loop", loops, p.URL}
}

func (p *ProcessPlayer) Play(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cmd != nil {
		return nil
	}
	cmd := exec.CommandContext(ctx, p.Binary, p.args()...)
	if err := cmd.Start(); err != nil {
		return err
	}
	p.cmd = cmd
	go func() {
		cmd.Wait()
		p.mu.Lock()
		if p.cmd == cmd {
			p.cmd = nil
		}
		p.mu.Unlock()
	}()
	return nil
}

func (p *ProcessPlayer) Pause() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cmd == nil || p.cmd.Process == nil {
		return nil
	}
	err := p.cmd.Process.Kill()
	p.cmd = nil
	if errors.Is(err, os.ErrProcessDone) {
		return nil
	}
	return err
}

// VideoTransport plays a video file in an ffplay window and reports play
// when the window opens and pause when it closes.
type VideoTransport struct {
	Binary string
	Path   string

	onPlay  []func()
	onPause []func()
}

func NewVideoTransport(path string) *VideoTransport {
	return &VideoTransport{Binary: "ffplay", Path: path}
}

func (t *VideoTransport) OnPlay(f func())  { t.onPlay = append(t.onPlay, f) }
func (t *VideoTransport) OnPause(f func()) { t.onPause = append(t.onPause, f) }

// Run blocks until the player window is closed or ctx is done.
func (t *VideoTransport) Run(ctx context.Context) error {
	cmd := exec.CommandContext(ctx, t.Binary, "-autoexit", "-loglevel", "quiet", t.Path)
	if err := cmd.Start(); err != nil {
		return err
	}
	for _, f := range t.onPlay {
		f()
	}
	err := cmd.Wait()
	for _, f := range t.onPause {
		f()
	}
	if ctx.Err() != nil {
		return nil
	}
	return err
}
