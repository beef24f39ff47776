// Package pathcodec converts filesystem paths into the catalog's canonical
// UTF-8 form and splits shortpaths into package and restpath.
package pathcodec

import (
	"fmt"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/japanese"

	"github.com/kailas-cloud/srcdex/internal/domain"
)

// Separator splits the package from the restpath in a shortpath.
const Separator = "/"

// candidates are tried in order for bytes that are not valid UTF-8.
// EUC-JP goes first: Shift_JIS decodes most EUC-JP bytes as half-width kana
// without complaint, while EUC-JP rejects typical Shift_JIS lead bytes.
var candidates = []encoding.Encoding{
	japanese.EUCJP,
	japanese.ShiftJIS,
}

// Normalize resolves filename to an absolute path and transcodes it to UTF-8.
// Normalize(Normalize(x)) == Normalize(x).
func Normalize(filename string) (string, error) {
	abs, err := filepath.Abs(filename)
	if err != nil {
		return "", domain.NewIOError(filename, err)
	}
	return ToUTF8(abs)
}

// ToUTF8 returns s unchanged when it is valid UTF-8, otherwise the first
// candidate decoding that yields no replacement characters, falling back to
// Windows-1252 which maps every byte.
func ToUTF8(s string) (string, error) {
	if utf8.ValidString(s) {
		return s, nil
	}
	for _, enc := range candidates {
		out, err := enc.NewDecoder().String(s)
		if err != nil {
			continue
		}
		if !strings.ContainsRune(out, utf8.RuneError) {
			return out, nil
		}
	}
	out, err := charmap.Windows1252.NewDecoder().String(s)
	if err != nil {
		return "", fmt.Errorf("decode %d bytes: %w: %w", len(s), domain.ErrEncoding, err)
	}
	return out, nil
}

// NormalizeRestpath converts a package-relative path to slash form in UTF-8.
func NormalizeRestpath(restpath string) (string, error) {
	return ToUTF8(filepath.ToSlash(filepath.Clean(restpath)))
}

// SplitShortpath splits "package/rest/of/path" on the first separator.
// Without a separator rest is empty, meaning "the whole package".
func SplitShortpath(shortpath string) (pkg, rest string) {
	pkg, rest, _ = strings.Cut(shortpath, Separator)
	return pkg, rest
}

// ParseShortpath is SplitShortpath for contexts that need a package component.
func ParseShortpath(shortpath string) (pkg, rest string, err error) {
	pkg, rest = SplitShortpath(shortpath)
	if pkg == "" {
		return "", "", fmt.Errorf("%q has no package component: %w", shortpath, domain.ErrInvalidShortpath)
	}
	return pkg, rest, nil
}

// JoinShortpath is the inverse of SplitShortpath.
func JoinShortpath(pkg, rest string) string {
	if rest == "" {
		return pkg
	}
	return pkg + Separator + rest
}

// SuffixOf returns the extension of the final path segment without its dot.
func SuffixOf(path string) string {
	return strings.TrimPrefix(filepath.Ext(path), ".")
}
