package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/ivlev/tattooreel/internal/asset"
	"github.com/ivlev/tattooreel/internal/audio"
	"github.com/ivlev/tattooreel/internal/catalog"
	"github.com/ivlev/tattooreel/internal/imagegen"
	"github.com/ivlev/tattooreel/internal/share"
	"github.com/ivlev/tattooreel/internal/source"
	"github.com/ivlev/tattooreel/internal/system"
)

// videoExtensions are the containers the encoders produce.
var videoExtensions = []string{".avi", ".webm", ".mp4"}

func runGenerate(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("generate", flag.ContinueOnError)
	configPath := fs.String("config", "", "YAML config file")
	prompt := fs.String("prompt", "", "Tattoo idea, e.g. \"koi fish with waves\"")
	count := fs.Int("n", 1, "Number of designs")
	outDir := fs.String("out", "", "Download directory (default <output_dir>/designs)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	a, err := newApp(*configPath)
	if err != nil {
		return err
	}
	dir := *outDir
	if dir == "" {
		dir = filepath.Join(a.cfg.OutputDir, "designs")
	}

	client := imagegen.NewClient(imagegen.Options{
		BaseURL: a.cfg.ImageEndpoint,
		Timeout: a.cfg.HTTPTimeout,
		Log:     a.log,
	})

	var errs []error
	for i := 0; i < max(1, *count); i++ {
		img, err := client.GenerateImage(ctx, *prompt)
		if err != nil {
			errs = append(errs, a.notice(err, "generation failed"))
			if errors.Is(err, context.Canceled) || strings.TrimSpace(*prompt) == "" {
				break
			}
			continue
		}
		path, err := client.Download(ctx, img.URL, dir)
		if err != nil {
			errs = append(errs, a.notice(err, "download failed"))
			continue
		}
		fmt.Printf("[>] Ready: %d/%d %s\n", i+1, *count, path)
	}
	return errors.Join(errs...)
}

func runImport(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("import", flag.ContinueOnError)
	configPath := fs.String("config", "", "YAML config file")
	input := fs.String("input", "", "Folder with png/jpeg designs or a PDF flash sheet")
	outDir := fs.String("out", "", "Where page images are written (default <output_dir>/designs)")
	dpi := fs.Int("dpi", 150, "PDF render resolution")
	split := fs.Bool("split", false, "Cut each flash sheet page into its individual designs")
	if err := fs.Parse(args); err != nil {
		return err
	}

	a, err := newApp(*configPath)
	if err != nil {
		return err
	}
	images, err := importDesigns(ctx, a, *input, *outDir, *dpi, *split)
	if err != nil {
		return err
	}
	for _, img := range images {
		fmt.Printf("[>] %d %s\n", img.Key(), img.URL)
	}
	fmt.Printf("[+++] Imported %d designs\n", len(images))
	return nil
}

func importDesigns(ctx context.Context, a *app, input, outDir string, dpi int, split bool) ([]asset.ImageAsset, error) {
	if input == "" {
		return nil, errors.New("-input is required")
	}
	if outDir == "" {
		outDir = filepath.Join(a.cfg.OutputDir, "designs")
	}
	src, err := source.Open(input)
	if err != nil {
		return nil, a.notice(err, "import failed")
	}
	defer src.Close()

	fmt.Printf("[*] Source: %s | Pages: %d\n", input, src.PageCount())
	opts := source.ImportOptions{OutDir: outDir, Prompt: filepath.Base(input), DPI: dpi}
	if split {
		opts.Split = source.NewSheetSplitter()
	}
	images, err := source.Import(ctx, src, opts)
	if err != nil {
		return nil, a.notice(err, "import failed")
	}
	return images, nil
}

func runPreview(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("preview", flag.ContinueOnError)
	configPath := fs.String("config", "", "YAML config file")
	videoPath := fs.String("video", "", "Video to play (default: newest in output_dir)")
	songRef := fs.String("song", "", "Catalog song id, audio file, or \"latest\"")
	if err := fs.Parse(args); err != nil {
		return err
	}

	a, err := newApp(*configPath)
	if err != nil {
		return err
	}

	path := *videoPath
	if path == "" {
		path, err = system.FindLatest(a.cfg.OutputDir, videoExtensions)
		if err != nil {
			return a.notice(err, "no video to preview")
		}
	}
	track, err := resolveSong(*songRef)
	if err != nil {
		return err
	}

	fmt.Printf("[*] Preview: %s\n", path)
	if track != nil {
		fmt.Printf("[*] Song: %s\n", track)
	}

	transport := audio.NewVideoTransport(path)
	s := &audio.Synchronizer{
		NewPlayer: func(url string) audio.Player { return audio.NewProcessPlayer(url) },
		Log:       a.log,
	}
	s.Bind(ctx, track, transport)
	return transport.Run(ctx)
}

func runShare(args []string) error {
	fs := flag.NewFlagSet("share", flag.ContinueOnError)
	configPath := fs.String("config", "", "YAML config file")
	url := fs.String("url", "", "Address to share (default page_url)")
	qrPath := fs.String("qr", "", "QR code PNG (default <output_dir>/share-qr.png)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	a, err := newApp(*configPath)
	if err != nil {
		return err
	}
	link := *url
	if link == "" {
		link = a.cfg.PageURL
	}

	if err := share.CopyLink(link); err != nil {
		a.log.Warn().Err(err).Str("notice", "link not copied").Msg("clipboard")
	} else {
		fmt.Printf("[+] Link copied: %s\n", link)
	}

	path := *qrPath
	if path == "" {
		path = filepath.Join(a.cfg.OutputDir, "share-qr.png")
	}
	if err := share.WriteQR(link, path, 256); err != nil {
		return a.notice(err, "QR code not written")
	}
	fmt.Printf("[+++] QR code: %s\n", path)
	return nil
}

func runCatalog(w io.Writer, args []string) error {
	if len(args) == 0 {
		return errors.New("catalog: expected songs, voices, colors or videos")
	}
	kind := args[0]
	fs := flag.NewFlagSet("catalog", flag.ContinueOnError)
	category := fs.String("category", catalog.DefaultCategory, "Background video category")
	query := fs.String("q", "", "Filter background videos by title")
	if err := fs.Parse(args[1:]); err != nil {
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	defer tw.Flush()

	switch kind {
	case "songs":
		for _, s := range catalog.Songs() {
			fmt.Fprintf(tw, "%s\t%s\t%s\n", s.ID, s.Title, s.Artist)
		}
	case "voices":
		for _, v := range catalog.Voices() {
			fmt.Fprintf(tw, "%s\t%s\t%s\n", v.ID, v.Name, v.Accent)
		}
	case "colors":
		for _, c := range catalog.Colors() {
			fmt.Fprintf(tw, "%s\t%s\n", c.Value, c.Label)
		}
	case "videos":
		fmt.Fprintf(tw, "categories: %s\n", strings.Join(catalog.Categories(), ", "))
		for _, v := range catalog.SearchBackgroundVideos(*category, *query) {
			fmt.Fprintf(tw, "%s\t%s\t%s\n", v.ID, v.Title, v.Category)
		}
	default:
		return fmt.Errorf("catalog: unknown list %q", kind)
	}
	return nil
}
