package share

import (
	"errors"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/atotto/clipboard"
)

func TestWriteQR(t *testing.T) {
	path := filepath.Join(t.TempDir(), "share", "qr.png")
	if err := WriteQR("https://tattooreel.app/", path, 128); err != nil {
		t.Fatal(err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatal(err)
	}
	if img.Bounds().Dx() != 128 || img.Bounds().Dy() != 128 {
		t.Errorf("expected 128x128, got %v", img.Bounds())
	}
}

func TestCopyLink(t *testing.T) {
	if clipboard.Unsupported {
		t.Skip("no clipboard on this system")
	}
	orig := writeClipboard
	defer func() { writeClipboard = orig }()

	var got string
	writeClipboard = func(s string) error {
		got = s
		return nil
	}
	if err := CopyLink("https://tattooreel.app/"); err != nil {
		t.Fatal(err)
	}
	if got != "https://tattooreel.app/" {
		t.Errorf("clipboard got %q", got)
	}

	writeClipboard = func(string) error { return errors.New("no display") }
	if err := CopyLink("x"); !errors.Is(err, ErrClipboard) {
		t.Errorf("expected ErrClipboard, got %v", err)
	}
}
