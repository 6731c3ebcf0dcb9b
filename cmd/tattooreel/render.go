package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/ivlev/tattooreel/internal/asset"
	"github.com/ivlev/tattooreel/internal/audio"
	"github.com/ivlev/tattooreel/internal/canvas"
	"github.com/ivlev/tattooreel/internal/capture"
	"github.com/ivlev/tattooreel/internal/catalog"
	"github.com/ivlev/tattooreel/internal/compose"
	"github.com/ivlev/tattooreel/internal/selection"
	"github.com/ivlev/tattooreel/internal/source"
	"github.com/ivlev/tattooreel/internal/subtitle"
	"github.com/ivlev/tattooreel/internal/system"
)

func runRender(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("render", flag.ContinueOnError)
	configPath := fs.String("config", "", "YAML config file")
	imagesFlag := fs.String("images", "", "Comma-separated design files or URLs, in display order")
	input := fs.String("input", "", "Folder or PDF flash sheet to import as designs")
	split := fs.Bool("split", false, "Cut flash sheet pages into individual designs")
	background := fs.String("background", "", "Background video: catalog id (mc1, gm2, ...) or a file/URL")
	songRef := fs.String("song", "", "Catalog song id, audio file, or \"latest\" (newest in input/audio)")
	voiceID := fs.String("voice", "", "Voice id for the voice-over script (v1..v5)")
	script := fs.String("script", "", "Voice-over script")
	var subs multiFlag
	fs.Var(&subs, "sub", "Subtitle \"text@start-end#color\", repeatable")
	storyboard := fs.String("storyboard", "", "Subtitle storyboard YAML, or \"latest\"")
	saveStoryboard := fs.Bool("save-storyboard", false, "Write the subtitles to storyboard_dir")
	duration := fs.Float64("duration", 0, "Content duration in seconds (CTA adds 3s)")
	encoder := fs.String("encoder", "", "mjpeg or ffmpeg")
	container := fs.String("container", "", "ffmpeg container: webm or mp4")
	preset := fs.String("preset", "", "Frame preset: 16:9, 9:16 (Shorts/TikTok), 4:5 (Instagram)")
	width := fs.Int("width", 0, "Frame width")
	height := fs.Int("height", 0, "Frame height")
	realtime := fs.Bool("realtime", false, "Pace frames on the wall clock instead of rendering as fast as possible")
	stats := fs.Bool("stats", false, "Print a performance report")
	if err := fs.Parse(args); err != nil {
		return err
	}

	a, err := newApp(*configPath)
	if err != nil {
		return err
	}
	cfg := a.cfg
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "duration":
			cfg.ContentDuration = *duration
		case "encoder":
			cfg.Encoder = *encoder
		case "container":
			cfg.Container = *container
		case "preset":
			cfg.Preset = *preset
		case "width":
			cfg.Width = *width
		case "height":
			cfg.Height = *height
		case "stats":
			cfg.ShowStats = *stats
		}
	})
	cfg.ApplyPreset()
	if err := cfg.Validate(); err != nil {
		return err
	}

	sel := selection.New()
	if err := sel.SetDuration(cfg.ContentDuration); err != nil {
		return err
	}

	// Designs
	var designs []asset.ImageAsset
	if *input != "" {
		imported, err := importDesigns(ctx, a, *input, "", 150, *split)
		if err != nil {
			return err
		}
		designs = append(designs, imported...)
	}
	next := time.Now()
	if n := len(designs); n > 0 {
		next = designs[n-1].CreatedAt.Add(time.Millisecond)
	}
	designs = append(designs, imagesFromFlag(*imagesFlag, next)...)
	if len(designs) > selection.GallerySize {
		a.log.Warn().Int("designs", len(designs)).Msgf("only the first %d designs are used", selection.GallerySize)
		designs = designs[:selection.GallerySize]
	}
	// The gallery is newest first; add in reverse so it matches display order.
	for i := len(designs) - 1; i >= 0; i-- {
		if err := sel.AddImage(designs[i]); err != nil {
			return err
		}
	}
	sel.SelectAll()

	if *background != "" {
		bg := resolveBackground(*background)
		sel.SetBackground(&bg)
		fmt.Printf("[*] Background: %s (%s)\n", bg.Title, bg.URL)
	} else {
		sel.SetMode(compose.ModeImages)
	}

	track, err := resolveSong(*songRef)
	if err != nil {
		return err
	}
	if track != nil {
		sel.SetSong(track)
		fmt.Printf("[*] Song: %s\n", track)
		if d, err := system.ProbeDuration(ctx, track.URL); err != nil {
			a.log.Debug().Err(err).Msg("song length unknown")
		} else if songLoops(d, cfg.ContentDuration) {
			a.log.Warn().Dur("length", d).Float64("video", cfg.ContentDuration+compose.CTADuration).
				Msg("song is shorter than the video and will loop")
		}
	}

	if *voiceID != "" {
		v, ok := catalog.Voice(*voiceID)
		if !ok {
			return fmt.Errorf("unknown voice %q", *voiceID)
		}
		sel.SetVoice(&v, *script)
	} else if *script != "" {
		sel.SetVoice(nil, *script)
	}

	// Subtitles
	tl := sel.Subtitles()
	if *storyboard != "" {
		path := *storyboard
		if path == "latest" {
			if path, err = subtitle.FindLatestStoryboard(cfg.StoryboardDir); err != nil {
				return err
			}
		}
		sb, err := subtitle.ReadStoryboard(path)
		if err != nil {
			return err
		}
		loaded, errs := sb.Timeline()
		for _, err := range errs {
			a.log.Warn().Err(err).Str("notice", compose.Notice(err)).Msg("storyboard cue skipped")
		}
		for _, c := range loaded.Snapshot() {
			if err := tl.Add(c); err != nil {
				a.log.Warn().Err(err).Str("notice", compose.Notice(err)).Msg("storyboard cue skipped")
			}
		}
		fmt.Printf("[*] Storyboard: %s (%d cues)\n", path, tl.Len())
	}
	for _, s := range subs {
		var prev *subtitle.Cue
		if last, ok := tl.Last(); ok {
			prev = &last
		}
		cue, err := parseCue(s, prev, cfg.ContentDuration)
		if err == nil {
			err = tl.Add(cue)
		}
		if err != nil {
			a.log.Warn().Err(err).Str("notice", compose.Notice(err)).Msg("subtitle skipped")
			continue
		}
		fmt.Printf("[*] Subtitle: %s\n", cue)
	}
	if *saveStoryboard && tl.Len() > 0 {
		path := subtitle.StoryboardPath(cfg.StoryboardDir)
		if err := subtitle.WriteStoryboard(subtitle.NewStoryboard(tl, cfg.ContentDuration), path); err != nil {
			return err
		}
		fmt.Printf("[+] Storyboard saved: %s\n", path)
	}

	req := sel.Request()
	if req.Voice != nil {
		fmt.Printf("[*] Voice: %s\n", req.Voice)
	}
	if req.Voice != nil || req.Script != "" {
		a.log.Info().Str("script", req.Script).Msg("voice-over is stored only, nothing is synthesized")
	}

	comp, err := newCompositor(a, *realtime)
	if err != nil {
		return err
	}

	rp := cfg.Render(capture.FrameRate)
	fmt.Println("--- [TATTOOREEL] ---")
	fmt.Printf("[*] Mode: %s | Images: %d | Subtitles: %d\n", req.Mode, len(req.Images), len(req.Subtitles))
	fmt.Printf("[*] Frame: %dx%d @ %d FPS | Content: %.1fs + CTA %.0fs | Encoder: %s\n",
		rp.Width, rp.Height, rp.FPS, rp.ContentDuration, rp.CTADuration, cfg.Encoder)
	fmt.Println("--------------------")

	video, err := comp.Render(ctx, req)
	if err != nil {
		return fmt.Errorf("%s: %w", compose.Notice(err), err)
	}

	if req.Audio != nil && cfg.Encoder != "ffmpeg" {
		if !system.HasFFmpeg() {
			a.log.Warn().Str("notice", "video saved without music").Msg("ffmpeg not found, skipping audio mux")
		} else if muxed, err := audio.Mux(ctx, video, req.Audio.URL); err != nil {
			a.log.Warn().Err(err).Str("notice", "video saved without music").Msg("audio mux failed")
		} else {
			video = muxed
		}
	}

	path, err := saveVideo(cfg.OutputDir, video, req.Subtitles)
	if err != nil {
		return a.notice(err, "download failed")
	}

	if cfg.ShowStats {
		report := comp.Report()
		report.BuildVersion = cfg.BuildVersion
		report.Host = system.CollectHostStats()
		fmt.Print(report)
	}
	fmt.Printf("[+++] Success! Result: %s\n", path)
	return nil
}

func newCompositor(a *app, realtime bool) (*compose.Compositor, error) {
	cfg := a.cfg
	fonts, err := canvas.LoadFonts(cfg.FontPath)
	if err != nil {
		return nil, err
	}

	var clock compose.Clock = compose.VirtualClock{}
	if realtime {
		clock = &compose.RealtimeClock{}
	}

	rp := cfg.Render(capture.FrameRate)
	return compose.New(compose.Options{
		Width:        rp.Width,
		Height:       rp.Height,
		FPS:          rp.FPS,
		PrimeTimeout: cfg.PrimeTimeout,
		CTATitle:     cfg.CTATitle,
		CTAText:      cfg.CTAText,
		Fonts:        fonts,
		Clock:        clock,
		Loader:       source.NewLoader(cfg.HTTPTimeout),
		NewEncoder:   encoderFactory(a),
		Log:          a.log,
	})
}

// encoderFactory picks the encoder from the configuration, falling back to
// MJPEG when ffmpeg is not installed.
func encoderFactory(a *app) func() capture.Encoder {
	cfg := a.cfg
	if cfg.Encoder == "ffmpeg" {
		if !system.HasFFmpeg() {
			a.log.Warn().Msg("ffmpeg not found, using the MJPEG encoder")
			cfg.Encoder = "mjpeg"
		} else {
			codec := cfg.VideoCodec
			if codec == "" {
				codec = system.BestEncoder(cfg.Container)
			}
			ext, mime := cfg.ContainerInfo()
			return func() capture.Encoder {
				return capture.NewFFmpegEncoder(codec, cfg.Quality, ext, mime)
			}
		}
	}
	return func() capture.Encoder { return capture.NewMJPEGEncoder(cfg.Quality) }
}

// imagesFromFlag turns a comma-separated list into gallery images with
// distinct creation times.
func imagesFromFlag(list string, now time.Time) []asset.ImageAsset {
	var out []asset.ImageAsset
	for _, p := range strings.Split(list, ",") {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		out = append(out, asset.ImageAsset{
			URL:       p,
			Prompt:    filepath.Base(p),
			CreatedAt: now.Add(time.Duration(len(out)) * time.Millisecond),
		})
	}
	return out
}

// songLoops reports whether a song of the given length runs out before the
// content and call-to-action phases end.
func songLoops(length time.Duration, content float64) bool {
	return length.Seconds() < content+compose.CTADuration
}

// resolveSong accepts a catalog id, "latest" or an audio file/URL.
func resolveSong(ref string) (*asset.AudioTrack, error) {
	switch ref {
	case "":
		return nil, nil
	case "latest":
		path, err := system.FindLatest(filepath.Join("input", "audio"), system.AudioExtensions)
		if err != nil {
			return nil, err
		}
		return &asset.AudioTrack{ID: "local", Title: filepath.Base(path), Artist: "local file", URL: path}, nil
	}
	if t, ok := catalog.Song(ref); ok {
		return &t, nil
	}
	if !strings.Contains(ref, "://") {
		if _, err := os.Stat(ref); err != nil {
			return nil, fmt.Errorf("unknown song %q", ref)
		}
	}
	return &asset.AudioTrack{ID: "local", Title: filepath.Base(ref), Artist: "local file", URL: ref}, nil
}

// resolveBackground accepts a catalog id or a video file/URL.
func resolveBackground(ref string) asset.BackgroundVideoAsset {
	if v, ok := catalog.BackgroundVideo(ref); ok {
		return v
	}
	return asset.BackgroundVideoAsset{ID: "custom", Title: filepath.Base(ref), URL: ref, Category: "custom"}
}

// parseCue reads "text@start-end#color". The window and colour are
// optional: "text@2" lasts the default cue length and "text" starts where
// prev ended.
func parseCue(arg string, prev *subtitle.Cue, duration float64) (subtitle.Cue, error) {
	cue := subtitle.DefaultCue(prev, duration)
	text, window := arg, ""
	if i := strings.LastIndex(arg, "@"); i >= 0 {
		text, window = arg[:i], arg[i+1:]
	}
	cue.Text = strings.TrimSpace(text)

	if i := strings.Index(window, "#"); i >= 0 {
		c, ok := catalog.Color(window[i+1:])
		if !ok {
			c, ok = catalog.Color("#" + window[i+1:])
		}
		if !ok {
			if _, err := canvas.ParseHex(window[i:]); err != nil {
				return subtitle.Cue{}, fmt.Errorf("%w: unknown colour %q", subtitle.ErrInvalidCue, window[i+1:])
			}
			c.Value = strings.ToUpper(window[i:])
		}
		cue.Color = c.Value
		window = window[:i]
	}

	if window == "" {
		return cue, nil
	}
	startStr, endStr, hasEnd := strings.Cut(window, "-")
	start, err := strconv.ParseFloat(startStr, 64)
	if err != nil {
		return subtitle.Cue{}, fmt.Errorf("%w: bad start %q", subtitle.ErrInvalidCue, startStr)
	}
	cue.Start = subtitle.Snap(start)
	cue.End = min(cue.Start+subtitle.DefaultCueLength, duration)
	if hasEnd {
		end, err := strconv.ParseFloat(endStr, 64)
		if err != nil {
			return subtitle.Cue{}, fmt.Errorf("%w: bad end %q", subtitle.ErrInvalidCue, endStr)
		}
		// Same rule as dragging the end handle: capped at the duration,
		// and a crossed window pulls the start back.
		cue.Start, cue.End = subtitle.AdjustEnd(cue.Start, end, duration)
	}
	return cue, nil
}

// saveVideo writes the video and, when there are subtitles, an SRT file
// with the same base name.
func saveVideo(dir string, video *asset.RenderedVideo, cues subtitle.Cues) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}
	path := filepath.Join(dir, video.FileName())
	if err := os.WriteFile(path, video.Data, 0644); err != nil {
		return "", err
	}
	if len(cues) == 0 {
		return path, nil
	}

	f, err := os.Create(strings.TrimSuffix(path, filepath.Ext(path)) + ".srt")
	if err != nil {
		return "", err
	}
	err = subtitle.WriteSRT(f, cues)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	return path, err
}
