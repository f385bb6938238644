package logfile

import (
	"strings"
	"unicode/utf8"
)

// Decode converts raw file bytes to a string. Valid UTF-8 passes through
// unchanged; anything else is treated as Latin-1, mapping each byte to the
// code point of the same value. Older bus monitors write exports in the
// platform codepage, so a byte-preserving fallback beats replacement runes.
func Decode(data []byte) string {
	if utf8.Valid(data) {
		return string(data)
	}
	var b strings.Builder
	b.Grow(len(data))
	for _, c := range data {
		b.WriteRune(rune(c))
	}
	return b.String()
}

// SplitLines splits decoded content into lines, tolerating CRLF endings and
// dropping a trailing empty element produced by a final newline.
func SplitLines(content string) []string {
	if content == "" {
		return nil
	}
	lines := strings.Split(content, "\n")
	for i := range lines {
		lines[i] = strings.TrimSuffix(lines[i], "\r")
	}
	if n := len(lines); n > 0 && lines[n-1] == "" {
		lines = lines[:n-1]
	}
	return lines
}
