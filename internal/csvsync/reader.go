package csvsync

// reader.go normalizes spreadsheet exports before parsing:
//
//   - A UTF-8 BOM (0xEF 0xBB 0xBF) is removed. UTF-16 exports with a BOM are
//     decoded to UTF-8.
//   - Invalid UTF-8 sequences are replaced with U+FFFD.
//
// The order matters: the BOM is handled before sanitization, otherwise a
// UTF-16 file would be mangled byte by byte.

import (
	"fmt"
	"io"
	"os"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
)

// MaxCSVSize bounds how much of a CSV file is read.
const MaxCSVSize = 64 << 20

// NewReader wraps r with BOM handling and UTF-8 sanitization.
func NewReader(r io.Reader) io.Reader {
	return transform.NewReader(r, transform.Chain(
		unicode.BOMOverride(unicode.UTF8.NewDecoder()),
		runes.ReplaceIllFormed(),
	))
}

// ReadText reads all of r through NewReader.
func ReadText(r io.Reader) (string, error) {
	data, err := io.ReadAll(io.LimitReader(NewReader(r), MaxCSVSize))
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// ReadFile reads and normalizes the CSV file at path.
func ReadFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open csv %s: %w", path, err)
	}
	defer f.Close()

	text, err := ReadText(f)
	if err != nil {
		return "", fmt.Errorf("read csv %s: %w", path, err)
	}
	return text, nil
}
