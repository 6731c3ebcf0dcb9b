// Package subtitle keeps the user's timed subtitle cues and answers
// "which cues are on screen at time t".
package subtitle

import (
	"iter"
	"sort"
	"sync"
)

// Timeline is an ordered collection of cues, sorted by Start ascending.
// Cues with the same Start keep their insertion order. It is safe for
// concurrent use; renders work on a Snapshot.
type Timeline struct {
	mu       sync.RWMutex
	cues     []Cue
	duration float64
}

// NewTimeline creates an empty timeline bounded by the content duration.
// A zero duration leaves End unbounded.
func NewTimeline(duration float64) *Timeline {
	return &Timeline{duration: duration}
}

// SetDuration changes the bound on cue ends. Cues that no longer fit are
// removed and returned in their previous order.
func (tl *Timeline) SetDuration(duration float64) []Cue {
	tl.mu.Lock()
	defer tl.mu.Unlock()

	tl.duration = duration
	var dropped []Cue
	kept := tl.cues[:0]
	for _, c := range tl.cues {
		if c.Validate(duration) != nil {
			dropped = append(dropped, c)
			continue
		}
		kept = append(kept, c)
	}
	clear(tl.cues[len(kept):])
	tl.cues = kept
	return dropped
}

// Add inserts a cue keeping Start order. Invalid cues leave the timeline
// untouched and return ErrInvalidCue.
func (tl *Timeline) Add(c Cue) error {
	tl.mu.Lock()
	defer tl.mu.Unlock()

	if err := c.Validate(tl.duration); err != nil {
		return err
	}
	if c.Color == "" {
		c.Color = DefaultColor
	}

	i := sort.Search(len(tl.cues), func(i int) bool {
		return tl.cues[i].Start > c.Start
	})
	tl.cues = append(tl.cues, Cue{})
	copy(tl.cues[i+1:], tl.cues[i:])
	tl.cues[i] = c
	return nil
}

// Remove deletes the cue at index in the current order. Out-of-range
// indexes are ignored.
func (tl *Timeline) Remove(index int) bool {
	tl.mu.Lock()
	defer tl.mu.Unlock()

	if index < 0 || index >= len(tl.cues) {
		return false
	}
	tl.cues = append(tl.cues[:index], tl.cues[index+1:]...)
	return true
}

// Len returns the number of cues.
func (tl *Timeline) Len() int {
	tl.mu.RLock()
	defer tl.mu.RUnlock()
	return len(tl.cues)
}

// Last returns the cue with the latest start, if any.
func (tl *Timeline) Last() (Cue, bool) {
	tl.mu.RLock()
	defer tl.mu.RUnlock()
	if len(tl.cues) == 0 {
		return Cue{}, false
	}
	return tl.cues[len(tl.cues)-1], true
}

// Snapshot returns a frozen copy of the cues.
func (tl *Timeline) Snapshot() Cues {
	tl.mu.RLock()
	defer tl.mu.RUnlock()
	return append(Cues(nil), tl.cues...)
}

// ActiveAt yields the cues visible at t in timeline order.
func (tl *Timeline) ActiveAt(t float64) iter.Seq[Cue] {
	return tl.Snapshot().ActiveAt(t)
}

// Cues is an immutable, Start-ordered cue list as handed to a render.
type Cues []Cue

// ActiveAt yields every cue with Start <= t <= End. The sequence is lazy
// and may be ranged over any number of times.
func (cs Cues) ActiveAt(t float64) iter.Seq[Cue] {
	return func(yield func(Cue) bool) {
		for _, c := range cs {
			if c.Start > t {
				return
			}
			if c.Active(t) && !yield(c) {
				return
			}
		}
	}
}
