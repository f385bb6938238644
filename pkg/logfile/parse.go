package logfile

import (
	"encoding/csv"
	"regexp"
	"strings"
	"time"

	"github.com/user/bus-explorer-tui/pkg/models"
)

// timestampLayout matches the producer's timestamp, subseconds stripped.
const timestampLayout = "2006-01-02 15:04:05"

var destKeyPrefix = regexp.MustCompile(`^\d+/\d+/\d+`)

// ParsedLine is the typed output of the line parser, before enrichment.
type ParsedLine struct {
	Timestamp  string
	Source     string
	Dest       string
	Payload    string
	HasPayload bool
}

// ParseLine extracts one ParsedLine from a raw line per the detected
// format. ok is false for blank, malformed, or out-of-window lines; such
// lines are skipped and must never abort ingestion.
//
// Pipe layout uses fields 0 (timestamp), 1 (source), 3 (dest), 5 (payload);
// the delimited layout uses fields 0, 1, 4 and 6. The destination key must
// start with an int/int/int address shape. When a time-of-day window is
// active, the timestamp's clock portion must fall inside it; a timestamp
// that fails to parse under an active window also skips the line.
func ParseLine(format models.Format, raw string, window models.TimeWindow) (ParsedLine, bool) {
	line := strings.TrimSpace(raw)
	if line == "" {
		return ParsedLine{}, false
	}

	var p ParsedLine
	switch format {
	case models.FormatPipe:
		parts := strings.Split(line, "|")
		if len(parts) <= 3 {
			return ParsedLine{}, false
		}
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		p.Timestamp = parts[0]
		p.Source = parts[1]
		p.Dest = parts[3]
		if len(parts) > 5 {
			p.Payload = parts[5]
			p.HasPayload = true
		}

	case models.FormatDelimited:
		reader := csv.NewReader(strings.NewReader(line))
		reader.Comma = ';'
		reader.LazyQuotes = true
		reader.FieldsPerRecord = -1
		row, err := reader.Read()
		if err != nil || len(row) <= 4 {
			return ParsedLine{}, false
		}
		for i := range row {
			row[i] = strings.TrimSpace(row[i])
		}
		p.Timestamp = row[0]
		p.Source = row[1]
		p.Dest = row[4]
		if len(row) > 6 {
			p.Payload = row[6]
			p.HasPayload = true
		}

	default:
		return ParsedLine{}, false
	}

	if p.Source == "" {
		p.Source = models.UnresolvedName
	}
	if p.Timestamp == "" || !destKeyPrefix.MatchString(p.Dest) {
		return ParsedLine{}, false
	}

	if window.Active() {
		ct, ok := clockOf(p.Timestamp)
		if !ok || !window.Contains(ct) {
			return ParsedLine{}, false
		}
	}

	return p, true
}

// clockOf extracts the time-of-day from a display timestamp, ignoring the
// subsecond fraction.
func clockOf(timestamp string) (models.ClockTime, bool) {
	trimmed, _, _ := strings.Cut(timestamp, ".")
	t, err := time.Parse(timestampLayout, strings.TrimSpace(trimmed))
	if err != nil {
		return models.ClockTime{}, false
	}
	return models.ClockTime{Hour: t.Hour(), Minute: t.Minute(), Second: t.Second()}, true
}
