package imagegen

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"
)

func pngBytes(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 4, 4))); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestGenerateImage(t *testing.T) {
	body := pngBytes(t)
	var mu sync.Mutex
	var paths, seeds []string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		paths = append(paths, r.URL.Path)
		seeds = append(seeds, r.URL.Query().Get("seed"))
		mu.Unlock()
		if strings.Contains(r.URL.Path, "broken") {
			w.Write([]byte("<html>busy</html>"))
			return
		}
		if strings.Contains(r.URL.Path, "down") {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "image/png")
		w.Write(body)
	}))
	defer srv.Close()

	c := NewClient(Options{BaseURL: srv.URL + "/prompt", HTTPClient: srv.Client()})
	fixed := time.UnixMilli(1718000000000)
	c.now = func() time.Time { return fixed }

	first, err := c.GenerateImage(context.Background(), "dragon on arm")
	if err != nil {
		t.Fatal(err)
	}
	second, err := c.GenerateImage(context.Background(), "rose")
	if err != nil {
		t.Fatal(err)
	}

	if paths[0] != "/prompt/tattoo design, dragon on arm, detailed, high quality" {
		t.Errorf("unexpected path %q", paths[0])
	}
	if seeds[0] != "1718000000000" || seeds[1] != "1718000000001" {
		t.Errorf("seeds must be the creation ms and distinct, got %v", seeds)
	}
	if first.Key() == second.Key() {
		t.Error("images generated in the same millisecond need distinct keys")
	}
	if !strings.Contains(first.URL, "seed=1718000000000") || first.Prompt != "dragon on arm" {
		t.Errorf("unexpected asset %+v", first)
	}

	for _, prompt := range []string{"", "   ", "broken", "down"} {
		if _, err := c.GenerateImage(context.Background(), prompt); !errors.Is(err, ErrGenerationFailed) {
			t.Errorf("prompt %q: expected ErrGenerationFailed, got %v", prompt, err)
		}
	}
}

func TestImageURLEscapesPrompt(t *testing.T) {
	c := NewClient(Options{})
	got := c.ImageURL("koi & lotus/wave", 7)
	want := "https://image.pollinations.ai/prompt/tattoo%20design%2C%20koi%20&%20lotus%2Fwave%2C%20detailed%2C%20high%20quality?seed=7"
	if got != want {
		t.Errorf("ImageURL = %s\nwant       %s", got, want)
	}
}

func TestDownload(t *testing.T) {
	body := pngBytes(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing" {
			http.NotFound(w, r)
			return
		}
		w.Write(body)
	}))
	defer srv.Close()

	c := NewClient(Options{HTTPClient: srv.Client()})
	dir := filepath.Join(t.TempDir(), "designs")

	path, err := c.Download(context.Background(), srv.URL+"/img", dir)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(filepath.Base(path), "tattoo-design-") || filepath.Ext(path) != ".png" {
		t.Errorf("unexpected file name %s", path)
	}
	data, err := os.ReadFile(path)
	if err != nil || !bytes.Equal(data, body) {
		t.Errorf("downloaded bytes differ: %v", err)
	}

	if _, err := c.Download(context.Background(), srv.URL+"/missing", dir); !errors.Is(err, ErrDownload) {
		t.Errorf("expected ErrDownload, got %v", err)
	}
}
