package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "TATTOOREEL_"

type Config struct {
	Env             string        `yaml:"env" validate:"oneof=development production"`
	OutputDir       string        `yaml:"output_dir" validate:"required"`
	StoryboardDir   string        `yaml:"storyboard_dir" validate:"required"`
	Width           int           `yaml:"width" validate:"min=16,max=7680"`
	Height          int           `yaml:"height" validate:"min=16,max=7680"`
	Preset          string        `yaml:"preset" validate:"omitempty,oneof=16:9 9:16 4:5"`
	ContentDuration float64       `yaml:"content_duration" validate:"gte=1,lte=60"`
	CTATitle        string        `yaml:"cta_title" validate:"required"`
	CTAText         string        `yaml:"cta_text" validate:"required"`
	FontPath        string        `yaml:"font_path"`
	Encoder         string        `yaml:"encoder" validate:"oneof=mjpeg ffmpeg"`
	Container       string        `yaml:"container" validate:"oneof=webm mp4"`
	VideoCodec      string        `yaml:"video_codec"`
	Quality         int           `yaml:"quality" validate:"gte=0,lte=100"`
	PrimeTimeout    time.Duration `yaml:"prime_timeout" validate:"gt=0"`
	ImageEndpoint   string        `yaml:"image_endpoint" validate:"required,url"`
	HTTPTimeout     time.Duration `yaml:"http_timeout" validate:"gt=0"`
	PageURL         string        `yaml:"page_url" validate:"required,url"`
	ShowStats       bool          `yaml:"show_stats"`
	BuildVersion    string        `yaml:"-"`
}

// RenderParams is the slice of the configuration one render needs.
type RenderParams struct {
	Width, Height   int
	FPS             int
	ContentDuration float64
	CTADuration     float64
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Env:             "production",
		OutputDir:       "output",
		StoryboardDir:   "storyboards",
		Width:           1280,
		Height:          720,
		ContentDuration: 3,
		CTATitle:        "AI Tattoo Designer",
		CTAText:         "Create yours now!",
		Encoder:         "mjpeg",
		Container:       "webm",
		Quality:         85,
		PrimeTimeout:    10 * time.Second,
		ImageEndpoint:   "https://image.pollinations.ai/prompt/",
		HTTPTimeout:     60 * time.Second,
		PageURL:         "https://tattooreel.app/",
	}
}

// Load layers defaults, an optional YAML file and the environment (including
// .env files). Flags are applied by the caller afterwards.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	// Missing .env files are fine.
	_ = godotenv.Load(".env", ".env.local")
	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	var errs []error
	str := func(key string, dst *string) {
		if v, ok := lookup(EnvPrefix + key); ok && v != "" {
			*dst = v
		}
	}
	num := func(key string, dst *int) {
		if v, ok := lookup(EnvPrefix + key); ok && v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s%s: %w", EnvPrefix, key, err))
				return
			}
			*dst = n
		}
	}
	dur := func(key string, dst *time.Duration) {
		if v, ok := lookup(EnvPrefix + key); ok && v != "" {
			d, err := time.ParseDuration(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s%s: %w", EnvPrefix, key, err))
				return
			}
			*dst = d
		}
	}

	str("ENV", &c.Env)
	str("OUTPUT_DIR", &c.OutputDir)
	str("ENCODER", &c.Encoder)
	str("CONTAINER", &c.Container)
	str("VIDEO_CODEC", &c.VideoCodec)
	str("FONT_PATH", &c.FontPath)
	str("IMAGE_ENDPOINT", &c.ImageEndpoint)
	str("PAGE_URL", &c.PageURL)
	num("WIDTH", &c.Width)
	num("HEIGHT", &c.Height)
	num("QUALITY", &c.Quality)
	dur("PRIME_TIMEOUT", &c.PrimeTimeout)
	dur("HTTP_TIMEOUT", &c.HTTPTimeout)
	if v, ok := lookup(EnvPrefix + "CONTENT_DURATION"); ok && v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			errs = append(errs, fmt.Errorf("%sCONTENT_DURATION: %w", EnvPrefix, err))
		} else {
			c.ContentDuration = f
		}
	}
	return errors.Join(errs...)
}

// ApplyPreset overrides width and height for the named aspect preset.
func (c *Config) ApplyPreset() {
	switch c.Preset {
	case "16:9":
		c.Width, c.Height = 1280, 720
	case "9:16":
		c.Width, c.Height = 720, 1280
	case "4:5":
		c.Width, c.Height = 1080, 1350
	}
}

var validate = validator.New()

// Validate checks every field against its constraints.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if c.Width%2 != 0 || c.Height%2 != 0 {
		return fmt.Errorf("invalid config: frame size %dx%d must be even", c.Width, c.Height)
	}
	return nil
}

// Render returns the parameters of one render at the given frame rate.
func (c *Config) Render(fps int) RenderParams {
	return RenderParams{
		Width:           c.Width,
		Height:          c.Height,
		FPS:             fps,
		ContentDuration: c.ContentDuration,
		CTADuration:     3,
	}
}

// Container extension and MIME type for the ffmpeg encoder.
func (c *Config) ContainerInfo() (ext, mime string) {
	if strings.EqualFold(c.Container, "mp4") {
		return ".mp4", "video/mp4"
	}
	return ".webm", "video/webm"
}
