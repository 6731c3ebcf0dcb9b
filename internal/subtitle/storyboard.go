package subtitle

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Storyboard is the on-disk form of a subtitle timeline
type Storyboard struct {
	Version  string  `yaml:"version"`
	Duration float64 `yaml:"duration"` // Content duration in seconds
	Cues     Cues    `yaml:"cues"`
}

// NewStoryboard captures the current state of a timeline
func NewStoryboard(tl *Timeline, duration float64) *Storyboard {
	return &Storyboard{
		Version:  "1.0",
		Duration: duration,
		Cues:     tl.Snapshot(),
	}
}

// Timeline rebuilds a timeline, dropping cues that are no longer valid
// for the stored duration.
func (s *Storyboard) Timeline() (*Timeline, []error) {
	tl := NewTimeline(s.Duration)
	var errs []error
	for i, c := range s.Cues {
		if err := tl.Add(c); err != nil {
			errs = append(errs, fmt.Errorf("cue %d: %w", i, err))
		}
	}
	return tl, errs
}

// WriteStoryboard writes a storyboard to a YAML file
func WriteStoryboard(sb *Storyboard, path string) error {
	data, err := yaml.Marshal(sb)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// ReadStoryboard reads a storyboard from a YAML file
func ReadStoryboard(path string) (*Storyboard, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var sb Storyboard
	if err := yaml.Unmarshal(data, &sb); err != nil {
		return nil, err
	}

	return &sb, nil
}

// StoryboardPath creates a timestamped storyboard filename inside dir
func StoryboardPath(dir string) string {
	timestamp := time.Now().Format("2006-01-02_15-04-05")
	return filepath.Join(dir, fmt.Sprintf("storyboard_%s.yaml", timestamp))
}

// FindLatestStoryboard finds the most recent storyboard file in dir
func FindLatestStoryboard(dir string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("failed to read storyboards directory: %w", err)
	}

	type candidate struct {
		path string
		mod  time.Time
	}
	var found []candidate
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".yaml") {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		found = append(found, candidate{filepath.Join(dir, entry.Name()), info.ModTime()})
	}

	if len(found) == 0 {
		return "", fmt.Errorf("no storyboard files found in %s", dir)
	}

	// Newest first
	sort.Slice(found, func(i, j int) bool {
		return found[i].mod.After(found[j].mod)
	})

	return found[0].path, nil
}
