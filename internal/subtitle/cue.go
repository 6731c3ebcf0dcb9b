package subtitle

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ErrInvalidCue is returned when a cue has blank text or a non-positive
// time window.
var ErrInvalidCue = errors.New("invalid subtitle cue")

// DefaultColor is the fill used when a cue does not name one.
const DefaultColor = "#FFFFFF"

// DefaultCueLength is the window length of a freshly constructed cue.
const DefaultCueLength = 5.0

// Step is the granularity of cue times entered through the CLI.
const Step = 0.5

// Cue is one timed subtitle. Times are seconds from content-phase start.
type Cue struct {
	Text  string  `yaml:"text" validate:"required"`
	Start float64 `yaml:"start" validate:"gte=0"`
	End   float64 `yaml:"end" validate:"gtfield=Start"`
	Color string  `yaml:"color,omitempty" validate:"omitempty,hexcolor"`
}

var validate = validator.New()

// Validate checks the cue against its own invariants. A positive maxEnd
// additionally bounds End.
func (c Cue) Validate(maxEnd float64) error {
	if strings.TrimSpace(c.Text) == "" {
		return fmt.Errorf("%w: empty text", ErrInvalidCue)
	}
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidCue, err)
	}
	if maxEnd > 0 && c.End > maxEnd {
		return fmt.Errorf("%w: end %.2fs exceeds content duration %.2fs", ErrInvalidCue, c.End, maxEnd)
	}
	return nil
}

// Active reports whether t falls in the closed window [Start, End].
func (c Cue) Active(t float64) bool {
	return c.Start <= t && t <= c.End
}

func (c Cue) String() string {
	return fmt.Sprintf("%s - %s %q", FormatTime(c.Start), FormatTime(c.End), c.Text)
}

// DefaultCue builds the window proposed for a new cue: it starts where the
// previous one ended (or at 0) and lasts DefaultCueLength, both capped at
// the content duration.
func DefaultCue(prev *Cue, duration float64) Cue {
	start := 0.0
	if prev != nil {
		start = prev.End
	}
	start = math.Min(start, duration)
	end := math.Min(start+DefaultCueLength, duration)
	return Cue{Start: start, End: end, Color: DefaultColor}
}

// AdjustStart moves the start of a window and pushes the end forward when
// the two would cross.
func AdjustStart(start, end, duration float64) (float64, float64) {
	start = Snap(start)
	if start >= end {
		end = math.Min(start+2, duration)
	}
	return start, end
}

// AdjustEnd moves the end of a window and pulls the start back when the
// two would cross.
func AdjustEnd(start, end, duration float64) (float64, float64) {
	end = Snap(math.Min(end, duration))
	if end <= start {
		start = math.Max(end-2, 0)
	}
	return start, end
}

// Snap rounds t to the nearest Step.
func Snap(t float64) float64 {
	return math.Round(t/Step) * Step
}

// FormatTime renders seconds as m:ss.
func FormatTime(seconds float64) string {
	mins := int(seconds) / 60
	secs := int(seconds) % 60
	return fmt.Sprintf("%d:%02d", mins, secs)
}
