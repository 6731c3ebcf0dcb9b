// Package source loads the visual inputs of a render: design images from
// URLs or local files, PDF flash sheets, and background video frames.
package source

import (
	"context"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gen2brain/go-fitz"
	"golang.org/x/image/draw"

	"github.com/ivlev/tattooreel/internal/asset"
)

// Source is a paged collection of design images.
type Source interface {
	PageCount() int
	RenderPage(index int, dpi int) (image.Image, error)
	Close() error
}

// Open picks a Source for path: a PDF flash sheet, a single image or a
// directory of images.
func Open(path string) (Source, error) {
	if strings.EqualFold(filepath.Ext(path), ".pdf") {
		return NewFitzPDFSource(path)
	}
	return NewImageSource(path)
}

type FitzPDFSource struct {
	doc *fitz.Document
}

func NewFitzPDFSource(path string) (*FitzPDFSource, error) {
	doc, err := fitz.New(path)
	if err != nil {
		return nil, err
	}
	return &FitzPDFSource{doc: doc}, nil
}

func (f *FitzPDFSource) PageCount() int {
	return f.doc.NumPage()
}

func (f *FitzPDFSource) RenderPage(index int, dpi int) (image.Image, error) {
	return f.doc.ImageDPI(index, float64(dpi))
}

func (f *FitzPDFSource) Close() error {
	return f.doc.Close()
}

// ImportOptions controls how a Source is written out as gallery images.
type ImportOptions struct {
	OutDir string
	Prompt string
	DPI    int
	// Split, when set, cuts each page into the designs it holds. Pages
	// with fewer than two designs are kept whole.
	Split *SheetSplitter
}

// Import renders every page of src into opts.OutDir as
// tattoo-design-<ms>.png and returns them as gallery images. Creation
// times are spaced one millisecond apart so each image keeps a distinct
// selection key.
func Import(ctx context.Context, src Source, opts ImportOptions) ([]asset.ImageAsset, error) {
	if err := os.MkdirAll(opts.OutDir, 0755); err != nil {
		return nil, err
	}

	base := time.Now().Truncate(time.Millisecond)
	images := make([]asset.ImageAsset, 0, src.PageCount())
	for i := 0; i < src.PageCount(); i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		page, err := src.RenderPage(i, opts.DPI)
		if err != nil {
			return nil, fmt.Errorf("render page %d: %w", i+1, err)
		}

		for _, img := range designs(page, opts.Split) {
			created := base.Add(time.Duration(len(images)) * time.Millisecond)
			path := filepath.Join(opts.OutDir, fmt.Sprintf("tattoo-design-%d.png", created.UnixMilli()))
			if err := writePNG(path, img); err != nil {
				return nil, err
			}
			images = append(images, asset.ImageAsset{
				URL:       path,
				Prompt:    fmt.Sprintf("%s #%d", opts.Prompt, len(images)+1),
				CreatedAt: created,
			})
		}
	}
	return images, nil
}

func designs(page image.Image, split *SheetSplitter) []image.Image {
	if split == nil {
		return []image.Image{page}
	}
	rects := split.Split(page)
	if len(rects) < 2 {
		return []image.Image{page}
	}
	out := make([]image.Image, len(rects))
	for i, r := range rects {
		crop := image.NewRGBA(image.Rect(0, 0, r.Dx(), r.Dy()))
		draw.Draw(crop, crop.Bounds(), page, r.Min, draw.Src)
		out[i] = crop
	}
	return out
}

func writePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
