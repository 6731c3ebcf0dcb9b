// Package catalog contains the static, read-only libraries the user picks
// from: songs, voices, subtitle colours and background videos.
package catalog

import (
	"sort"
	"strings"

	"github.com/ivlev/tattooreel/internal/asset"
)

// SubtitleColor is a selectable subtitle fill colour.
type SubtitleColor struct {
	Value string
	Label string
}

var songs = []asset.AudioTrack{
	{ID: "1", Title: "Whenever", Artist: "Macan", URL: "https://example.com/audio1.mp3"},
	{ID: "2", Title: "Water", Artist: "Tyla", URL: "https://example.com/audio2.mp3"},
	{ID: "3", Title: "Espresso", Artist: "Sabrina Carpenter", URL: "https://example.com/audio3.mp3"},
	{ID: "4", Title: "Texas Hold 'Em", Artist: "Beyoncé", URL: "https://example.com/audio4.mp3"},
	{ID: "5", Title: "Not Like Us", Artist: "Kendrick Lamar", URL: "https://example.com/audio5.mp3"},
	{ID: "6", Title: "Paint The Town Red", Artist: "Doja Cat", URL: "https://example.com/audio6.mp3"},
}

var voices = []asset.VoiceProfile{
	{ID: "v1", Name: "Alex", Accent: "American"},
	{ID: "v2", Name: "Sarah", Accent: "British"},
	{ID: "v3", Name: "Emily", Accent: "Australian"},
	{ID: "v4", Name: "Michael", Accent: "Canadian"},
	{ID: "v5", Name: "David", Accent: "Scottish"},
}

var colors = []SubtitleColor{
	{Value: "#FFFFFF", Label: "White"},
	{Value: "#F97316", Label: "Orange"},
	{Value: "#8B5CF6", Label: "Purple"},
	{Value: "#22C55E", Label: "Green"},
	{Value: "#3B82F6", Label: "Blue"},
	{Value: "#EF4444", Label: "Red"},
	{Value: "#F59E0B", Label: "Amber"},
	{Value: "#EC4899", Label: "Pink"},
}

var backgroundVideos = map[string][]asset.BackgroundVideoAsset{
	"minecraft": {
		{ID: "mc1", Title: "Minecraft Parkour Challenge", URL: "https://example.com/videos/minecraft-parkour-1.mp4", ThumbnailURL: "https://example.com/thumbnails/minecraft-parkour-1.jpg", Category: "minecraft"},
		{ID: "mc2", Title: "Epic Minecraft Jumps", URL: "https://example.com/videos/minecraft-parkour-2.mp4", ThumbnailURL: "https://example.com/thumbnails/minecraft-parkour-2.jpg", Category: "minecraft"},
		{ID: "mc3", Title: "Minecraft Obstacle Course", URL: "https://example.com/videos/minecraft-parkour-3.mp4", ThumbnailURL: "https://example.com/thumbnails/minecraft-parkour-3.jpg", Category: "minecraft"},
	},
	"gaming": {
		{ID: "gm1", Title: "Gaming Montage", URL: "https://example.com/videos/gaming-1.mp4", ThumbnailURL: "https://example.com/thumbnails/gaming-1.jpg", Category: "gaming"},
		{ID: "gm2", Title: "Epic Gaming Moments", URL: "https://example.com/videos/gaming-2.mp4", ThumbnailURL: "https://example.com/thumbnails/gaming-2.jpg", Category: "gaming"},
	},
	"nature": {
		{ID: "nat1", Title: "Serene Landscapes", URL: "https://example.com/videos/nature-1.mp4", ThumbnailURL: "https://example.com/thumbnails/nature-1.jpg", Category: "nature"},
		{ID: "nat2", Title: "Ocean Waves", URL: "https://example.com/videos/nature-2.mp4", ThumbnailURL: "https://example.com/thumbnails/nature-2.jpg", Category: "nature"},
	},
}

// DefaultCategory is the category shown first.
const DefaultCategory = "minecraft"

// Songs returns a copy of the song library.
func Songs() []asset.AudioTrack {
	return append([]asset.AudioTrack(nil), songs...)
}

// Voices returns a copy of the voice library.
func Voices() []asset.VoiceProfile {
	return append([]asset.VoiceProfile(nil), voices...)
}

// Colors returns a copy of the subtitle colour palette.
func Colors() []SubtitleColor {
	return append([]SubtitleColor(nil), colors...)
}

// Categories lists the background video categories in a stable order.
func Categories() []string {
	out := make([]string, 0, len(backgroundVideos))
	for c := range backgroundVideos {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

func Song(id string) (asset.AudioTrack, bool) {
	for _, s := range songs {
		if s.ID == id {
			return s, true
		}
	}
	return asset.AudioTrack{}, false
}

func Voice(id string) (asset.VoiceProfile, bool) {
	for _, v := range voices {
		if v.ID == id {
			return v, true
		}
	}
	return asset.VoiceProfile{}, false
}

func BackgroundVideo(id string) (asset.BackgroundVideoAsset, bool) {
	for _, vids := range backgroundVideos {
		for _, v := range vids {
			if v.ID == id {
				return v, true
			}
		}
	}
	return asset.BackgroundVideoAsset{}, false
}

// Color resolves a colour by value ("#F97316") or label ("orange").
func Color(key string) (SubtitleColor, bool) {
	for _, c := range colors {
		if strings.EqualFold(c.Value, key) || strings.EqualFold(c.Label, key) {
			return c, true
		}
	}
	return SubtitleColor{}, false
}

// SearchBackgroundVideos filters one category by a case-insensitive title
// substring. An empty query returns the whole category.
func SearchBackgroundVideos(category, query string) []asset.BackgroundVideoAsset {
	vids := backgroundVideos[category]
	q := strings.ToLower(strings.TrimSpace(query))
	out := make([]asset.BackgroundVideoAsset, 0, len(vids))
	for _, v := range vids {
		if q == "" || strings.Contains(strings.ToLower(v.Title), q) {
			out = append(out, v)
		}
	}
	return out
}
