// Package share hands the page address to the user: on the clipboard and
// as a scannable QR code.
package share

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/atotto/clipboard"
	qrcode "github.com/skip2/go-qrcode"
)

// ErrClipboard is returned when the system clipboard is unavailable.
var ErrClipboard = errors.New("clipboard unavailable")

var writeClipboard = clipboard.WriteAll

// CopyLink puts url on the system clipboard.
func CopyLink(url string) error {
	if clipboard.Unsupported {
		return ErrClipboard
	}
	if err := writeClipboard(url); err != nil {
		return fmt.Errorf("%w: %v", ErrClipboard, err)
	}
	return nil
}

// WriteQR renders url as a size x size PNG QR code at path.
func WriteQR(url, path string, size int) error {
	if size <= 0 {
		size = 256
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return qrcode.WriteFile(url, qrcode.Medium, size, path)
}
