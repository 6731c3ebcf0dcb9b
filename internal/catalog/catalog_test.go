package catalog

import "testing"

func TestLookups(t *testing.T) {
	if s, ok := Song("3"); !ok || s.Title != "Espresso" {
		t.Errorf("Song(3) = %+v, %v", s, ok)
	}
	if _, ok := Song("42"); ok {
		t.Error("Song(42) should not exist")
	}
	if v, ok := Voice("v2"); !ok || v.Accent != "British" {
		t.Errorf("Voice(v2) = %+v, %v", v, ok)
	}
	if b, ok := BackgroundVideo("nat2"); !ok || b.Category != "nature" {
		t.Errorf("BackgroundVideo(nat2) = %+v, %v", b, ok)
	}
	if c, ok := Color("orange"); !ok || c.Value != "#F97316" {
		t.Errorf("Color(orange) = %+v, %v", c, ok)
	}
	if c, ok := Color("#ec4899"); !ok || c.Label != "Pink" {
		t.Errorf("Color(#ec4899) = %+v, %v", c, ok)
	}
}

func TestSearchBackgroundVideos(t *testing.T) {
	tests := []struct {
		category string
		query    string
		want     int
	}{
		{"minecraft", "", 3},
		{"minecraft", "EPIC", 1},
		{"gaming", "epic", 1},
		{"nature", "waves", 1},
		{"nature", "lava", 0},
		{"unknown", "", 0},
	}

	for _, tt := range tests {
		t.Run(tt.category+"/"+tt.query, func(t *testing.T) {
			got := SearchBackgroundVideos(tt.category, tt.query)
			if len(got) != tt.want {
				t.Errorf("expected %d videos, got %d", tt.want, len(got))
			}
		})
	}
}

func TestCopiesAreIndependent(t *testing.T) {
	s := Songs()
	s[0].Title = "changed"
	if again, _ := Song(s[0].ID); again.Title == "changed" {
		t.Error("Songs() must return a copy")
	}
	if len(Categories()) != 3 {
		t.Errorf("expected 3 categories, got %v", Categories())
	}
}
