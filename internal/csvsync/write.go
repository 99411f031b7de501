package csvsync

import (
	"bufio"
	"io"
	"strings"
)

// Write serializes rows so that Parse returns them unchanged. A field is
// quoted when it contains the delimiter, a quote or a line break, or when it
// starts with a quote; quotes inside are doubled. Rows end with \n.
func Write(w io.Writer, rows [][]string, delim rune) error {
	bw := bufio.NewWriter(w)
	for _, row := range rows {
		for i, field := range row {
			if i > 0 {
				if _, err := bw.WriteRune(delim); err != nil {
					return err
				}
			}
			if _, err := bw.WriteString(quoteField(field, delim)); err != nil {
				return err
			}
		}
		if err := bw.WriteByte('\n'); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// Format is Write into a string.
func Format(rows [][]string, delim rune) string {
	var b strings.Builder
	_ = Write(&b, rows, delim)
	return b.String()
}

func quoteField(field string, delim rune) string {
	needs := strings.ContainsRune(field, delim) ||
		strings.ContainsAny(field, "\"\r\n")
	if !needs {
		return field
	}
	return `"` + strings.ReplaceAll(field, `"`, `""`) + `"`
}
