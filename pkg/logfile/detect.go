package logfile

import (
	"errors"
	"regexp"
	"strings"

	"github.com/user/bus-explorer-tui/pkg/models"
)

// ErrFormatUndetermined is reported when no line in the sniff window
// matches either layout. Callers surface it and must not guess a format.
var ErrFormatUndetermined = errors.New("cannot determine log format")

// sniffWindow is how many content lines DetectFormat examines.
const sniffWindow = 20

var addressShaped = regexp.MustCompile(`\d+/\d+/\d+`)

// DetectFormat classifies a log by sniffing its first content lines. Blank
// lines and separator banners (lines starting with "=") are skipped. A line
// splitting on "|" into more than 4 parts with an address-shaped 4th field
// wins as the pipe layout; otherwise a line containing ";" classifies the
// file as the delimited layout. The first matching line decides.
func DetectFormat(lines []string) models.Format {
	seen := 0
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "=") {
			continue
		}
		seen++
		if seen > sniffWindow {
			break
		}
		if strings.Contains(line, " | ") {
			parts := strings.Split(line, "|")
			if len(parts) > 4 && addressShaped.MatchString(parts[3]) {
				return models.FormatPipe
			}
		}
		if strings.Contains(line, ";") {
			return models.FormatDelimited
		}
	}
	return models.FormatUnknown
}
