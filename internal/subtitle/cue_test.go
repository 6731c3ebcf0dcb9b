package subtitle

import "testing"

func TestDefaultCue(t *testing.T) {
	tests := []struct {
		name      string
		prev      *Cue
		duration  float64
		wantStart float64
		wantEnd   float64
	}{
		{"first cue", nil, 10, 0, 5},
		{"after previous", &Cue{End: 3}, 10, 3, 8},
		{"capped end", &Cue{End: 7}, 10, 7, 10},
		{"capped start", &Cue{End: 12}, 10, 10, 10},
		{"short content", nil, 3, 0, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := DefaultCue(tt.prev, tt.duration)
			if c.Start != tt.wantStart || c.End != tt.wantEnd {
				t.Errorf("expected [%v, %v], got [%v, %v]", tt.wantStart, tt.wantEnd, c.Start, c.End)
			}
		})
	}
}

func TestAdjustWindow(t *testing.T) {
	s, e := AdjustStart(6, 5, 10)
	if s != 6 || e != 8 {
		t.Errorf("AdjustStart: expected [6, 8], got [%v, %v]", s, e)
	}
	s, e = AdjustStart(9.2, 5, 10)
	if s != 9 || e != 10 {
		t.Errorf("AdjustStart near end: expected [9, 10], got [%v, %v]", s, e)
	}
	s, e = AdjustEnd(4, 3, 10)
	if s != 1 || e != 3 {
		t.Errorf("AdjustEnd: expected [1, 3], got [%v, %v]", s, e)
	}
	s, e = AdjustEnd(4, 1, 10)
	if s != 0 || e != 1 {
		t.Errorf("AdjustEnd near start: expected [0, 1], got [%v, %v]", s, e)
	}
}

func TestFormatTime(t *testing.T) {
	if got := FormatTime(75.4); got != "1:15" {
		t.Errorf("expected 1:15, got %s", got)
	}
	if got := FormatTime(0); got != "0:00" {
		t.Errorf("expected 0:00, got %s", got)
	}
}
