// Package content reads source files from disk and normalizes their text to UTF-8.
package content

import (
	"bytes"
	"errors"
	"io/fs"
	"os"
	"time"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/kailas-cloud/srcdex/internal/domain"
	"github.com/kailas-cloud/srcdex/internal/pathcodec"
)

var (
	bomUTF8    = []byte{0xEF, 0xBB, 0xBF}
	bomUTF16LE = []byte{0xFF, 0xFE}
	bomUTF16BE = []byte{0xFE, 0xFF}
)

// Loader reads files through the OS and answers filesystem queries on the
// native (pre-normalization) path.
type Loader struct{}

// NewLoader creates an OS-backed loader.
func NewLoader() *Loader {
	return &Loader{}
}

// ReadNormalized reads filename and returns its text as UTF-8.
// The handle is closed before returning.
func (l *Loader) ReadNormalized(filename string) (string, error) {
	raw, err := os.ReadFile(filename)
	if err != nil {
		return "", domain.NewIOError(filename, err)
	}
	text, err := Normalize(raw)
	if err != nil {
		return "", domain.NewEncodingError(filename, err)
	}
	return text, nil
}

// ModTime returns the modification time of filename.
func (l *Loader) ModTime(filename string) (time.Time, error) {
	info, err := os.Stat(filename)
	if err != nil {
		return time.Time{}, domain.NewIOError(filename, err)
	}
	return info.ModTime(), nil
}

// Exists reports whether filename exists. Only a not-exist condition yields
// false; any other stat failure is returned as ErrIO.
func (l *Loader) Exists(filename string) (bool, error) {
	_, err := os.Stat(filename)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, fs.ErrNotExist):
		return false, nil
	default:
		return false, domain.NewIOError(filename, err)
	}
}

// Normalize converts file bytes to UTF-8 text. A byte order mark selects
// UTF-8 or UTF-16 and is stripped; other input goes through the same
// detection as filenames.
func Normalize(raw []byte) (string, error) {
	if hasBOM(raw) {
		out, _, err := transform.Bytes(unicode.BOMOverride(transform.Nop), raw)
		if err != nil {
			return "", err
		}
		return string(out), nil
	}
	return pathcodec.ToUTF8(string(raw))
}

func hasBOM(raw []byte) bool {
	return bytes.HasPrefix(raw, bomUTF8) ||
		bytes.HasPrefix(raw, bomUTF16LE) ||
		bytes.HasPrefix(raw, bomUTF16BE)
}
