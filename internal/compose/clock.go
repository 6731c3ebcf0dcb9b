package compose

import (
	"context"
	"time"
)

// Clock paces the frame pump.
type Clock interface {
	// Start marks the timestamp of the first frame.
	Start()
	// Wait blocks until the frame due at offset may be drawn.
	Wait(ctx context.Context, due time.Duration) error
}

// RealtimeClock releases frames on wall-clock boundaries, so a render
// takes as long as the video it produces. A frame that is already late is
// released immediately and never skipped.
type RealtimeClock struct {
	start time.Time
}

func (c *RealtimeClock) Start() {
	c.start = time.Now()
}

func (c *RealtimeClock) Wait(ctx context.Context, due time.Duration) error {
	d := time.Until(c.start.Add(due))
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// VirtualClock releases every frame at once. Timestamps still advance by
// exactly one frame interval, so the output is identical to a real-time
// render.
type VirtualClock struct{}

func (VirtualClock) Start() {}

func (VirtualClock) Wait(ctx context.Context, due time.Duration) error {
	return ctx.Err()
}
