package csvsync

// parse.go tokenizes delimited text following RFC 4180 with a configurable
// delimiter.
//
// encoding/csv is not used: it rejects bare quotes inside unquoted fields,
// treats a lone \r as data, and errors on text after a closing quote. The
// spreadsheet exports this tool reads rely on all three being tolerated.
//
// Rules:
//   - A field starting with '"' is quoted: everything up to the closing quote
//     is literal, including delimiters and line breaks; "" is an escaped quote.
//   - Anything between a closing quote and the next delimiter or line break is
//     dropped.
//   - \r\n, \n and \r all end a row.
//   - A trailing row made of one empty field (the final newline) is dropped.
//   - Rows may have any number of fields.
//
// An unterminated quoted field runs to the end of the input. Parse accepts
// that silently; ParseStrict reports it.

import (
	"errors"
	"fmt"
	"strings"

	"portfolio/internal/catalog"
)

// DefaultDelimiter separates fields in editor spreadsheets.
const DefaultDelimiter = ';'

// ErrUnterminatedQuote is reported by ParseStrict and Lint. It wraps catalog.ErrParse.
var ErrUnterminatedQuote = fmt.Errorf("unterminated quoted field: %w", catalog.ErrParse)

// Issue describes a malformed spot in the input.
type Issue struct {
	Row    int // 1-based row where the quoted field started
	Column int // 1-based field index
	Err    error
}

func (i Issue) Error() string {
	return fmt.Sprintf("row %d, field %d: %v", i.Row, i.Column, i.Err)
}

func (i Issue) Unwrap() error { return i.Err }

// Parse splits text into rows of fields. It never fails.
func Parse(text string, delim rune) [][]string {
	rows, _ := parse(text, delim)
	return rows
}

// ParseStrict is Parse, but an unterminated quoted field is an error.
func ParseStrict(text string, delim rune) ([][]string, error) {
	rows, issues := parse(text, delim)
	if len(issues) > 0 {
		return nil, issues[0]
	}
	return rows, nil
}

// Lint returns the malformed spots Parse tolerated.
func Lint(text string, delim rune) []Issue {
	_, issues := parse(text, delim)
	return issues
}

func parse(text string, delim rune) ([][]string, []Issue) {
	var (
		rows   [][]string
		issues []Issue
		field  strings.Builder
	)
	runes := []rune(text)
	n := len(runes)
	i := 0

	isBreak := func(r rune) bool { return r == '\n' || r == '\r' }

	for i < n {
		var row []string
		for {
			field.Reset()
			if i < n && runes[i] == '"' {
				start := i
				i++
				closed := false
				for i < n {
					if runes[i] == '"' {
						if i+1 < n && runes[i+1] == '"' {
							field.WriteRune('"')
							i += 2
							continue
						}
						i++
						closed = true
						break
					}
					field.WriteRune(runes[i])
					i++
				}
				if !closed {
					issues = append(issues, Issue{
						Row:    len(rows) + 1,
						Column: len(row) + 1,
						Err:    fmt.Errorf("quote opened at offset %d: %w", start, ErrUnterminatedQuote),
					})
				}
				for i < n && runes[i] != delim && !isBreak(runes[i]) {
					i++
				}
			} else {
				for i < n && runes[i] != delim && !isBreak(runes[i]) {
					field.WriteRune(runes[i])
					i++
				}
			}

			row = append(row, field.String())

			if i >= n {
				break
			}
			if runes[i] == delim {
				i++
				continue
			}
			if runes[i] == '\r' {
				i++
			}
			if i < n && runes[i] == '\n' {
				i++
			}
			break
		}

		if len(row) == 1 && row[0] == "" && i >= n {
			break
		}
		rows = append(rows, row)
	}

	return rows, issues
}

// IsUnterminatedQuote reports whether err comes from an unterminated quoted field.
func IsUnterminatedQuote(err error) bool {
	return errors.Is(err, ErrUnterminatedQuote)
}
