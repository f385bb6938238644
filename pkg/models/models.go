package models

import (
	"fmt"
	"strings"
	"time"
)

// LogRecord represents a single enriched telegram from the bus log.
// Records are immutable once built; the log cache owns them after insert.
type LogRecord struct {
	Timestamp    string `json:"timestamp"`
	Source       string `json:"source"`
	SourceName   string `json:"sourceName"`
	Dest         string `json:"dest"`
	DestName     string `json:"destName"`
	Payload      string `json:"payload"`
	SearchString string `json:"-"`
}

// BuildSearchString returns the lower-cased concatenation of all record
// fields used as the match target for regex filters.
func BuildSearchString(timestamp, source, sourceName, dest, destName, payload string) string {
	return strings.ToLower(strings.Join([]string{
		timestamp, source, sourceName, dest, destName, payload,
	}, " "))
}

// PayloadSample is one historical payload observation for a group address.
type PayloadSample struct {
	Timestamp string `json:"timestamp"`
	Payload   string `json:"payload"`
}

// Format identifies the column layout of a log source.
type Format int

// Log file layouts
const (
	FormatUnknown Format = iota
	FormatPipe
	FormatDelimited
)

func (f Format) String() string {
	switch f {
	case FormatPipe:
		return "pipe"
	case FormatDelimited:
		return "delimited"
	default:
		return "unknown"
	}
}

// ClockTime is a time of day without a date, used by the time-of-day filter.
type ClockTime struct {
	Hour   int
	Minute int
	Second int
}

// ParseClockTime parses "HH:MM" or "HH:MM:SS".
func ParseClockTime(s string) (ClockTime, error) {
	var ct ClockTime
	s = strings.TrimSpace(s)
	switch strings.Count(s, ":") {
	case 1:
		if _, err := fmt.Sscanf(s, "%d:%d", &ct.Hour, &ct.Minute); err != nil {
			return ClockTime{}, fmt.Errorf("invalid time %q: %w", s, err)
		}
	case 2:
		if _, err := fmt.Sscanf(s, "%d:%d:%d", &ct.Hour, &ct.Minute, &ct.Second); err != nil {
			return ClockTime{}, fmt.Errorf("invalid time %q: %w", s, err)
		}
	default:
		return ClockTime{}, fmt.Errorf("invalid time %q: want HH:MM or HH:MM:SS", s)
	}
	if ct.Hour < 0 || ct.Hour > 23 || ct.Minute < 0 || ct.Minute > 59 || ct.Second < 0 || ct.Second > 59 {
		return ClockTime{}, fmt.Errorf("invalid time %q: component out of range", s)
	}
	return ct, nil
}

// Seconds returns the offset from midnight.
func (ct ClockTime) Seconds() int {
	return ct.Hour*3600 + ct.Minute*60 + ct.Second
}

func (ct ClockTime) String() string {
	if ct.Second > 0 {
		return fmt.Sprintf("%02d:%02d:%02d", ct.Hour, ct.Minute, ct.Second)
	}
	return fmt.Sprintf("%02d:%02d", ct.Hour, ct.Minute)
}

// TimeWindow is an optional inclusive time-of-day bound on ingested lines.
type TimeWindow struct {
	Start *ClockTime
	End   *ClockTime
}

// Active reports whether any bound is set.
func (w TimeWindow) Active() bool {
	return w.Start != nil || w.End != nil
}

// Contains reports whether ct falls inside the window, bounds inclusive.
func (w TimeWindow) Contains(ct ClockTime) bool {
	if w.Start != nil && ct.Seconds() < w.Start.Seconds() {
		return false
	}
	if w.End != nil && ct.Seconds() > w.End.Seconds() {
		return false
	}
	return true
}

// UnresolvedName is the display name for keys missing from the catalog.
const UnresolvedName = "N/A"

// Tunable defaults
const (
	DefaultMaxCacheSize   = 50000
	DefaultMaxRenderLines = 2000
	DefaultPollInterval   = 2 * time.Second
	DefaultIdleWindow     = time.Hour
)
