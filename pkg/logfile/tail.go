package logfile

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"time"
)

// Tracker follows a growing plain-text log by polling. It remembers the
// byte offset consumed so far plus the size and mtime seen on the last poll,
// so an unchanged file costs one stat call and nothing else.
type Tracker struct {
	path    string
	offset  int64
	size    int64
	modTime time.Time
}

// PollResult is the outcome of one poll. Exactly one of three shapes comes
// back: nothing changed (zero value), new complete lines (Lines non-nil),
// or Truncated, which means the file shrank and the caller must reload it
// from scratch.
type PollResult struct {
	Lines     []string
	Truncated bool
}

// NewTracker starts tracking path from offset, normally the byte size
// consumed by the initial full read.
func NewTracker(path string, offset int64) *Tracker {
	t := &Tracker{path: path, offset: offset}
	if fi, err := os.Stat(path); err == nil {
		t.size = fi.Size()
		t.modTime = fi.ModTime()
	}
	return t
}

// Offset returns the byte position the next poll will read from.
func (t *Tracker) Offset() int64 {
	return t.offset
}

// Poll checks the file for growth. A size below the remembered offset means
// rotation or truncation; the tracker resets and reports it so the caller
// reloads. Otherwise new bytes are read from the offset and split into
// lines, holding back a trailing partial line until its newline arrives.
func (t *Tracker) Poll() (PollResult, error) {
	fi, err := os.Stat(t.path)
	if err != nil {
		return PollResult{}, fmt.Errorf("stat log %s: %w", t.path, err)
	}

	if fi.Size() < t.offset {
		t.offset = 0
		t.size = fi.Size()
		t.modTime = fi.ModTime()
		return PollResult{Truncated: true}, nil
	}

	if fi.Size() == t.size && fi.ModTime().Equal(t.modTime) {
		return PollResult{}, nil
	}
	t.size = fi.Size()
	t.modTime = fi.ModTime()
	if fi.Size() == t.offset {
		return PollResult{}, nil
	}

	f, err := os.Open(t.path)
	if err != nil {
		return PollResult{}, fmt.Errorf("open log %s: %w", t.path, err)
	}
	defer f.Close()

	if _, err := f.Seek(t.offset, io.SeekStart); err != nil {
		return PollResult{}, fmt.Errorf("seek log %s: %w", t.path, err)
	}
	data, err := io.ReadAll(f)
	if err != nil {
		return PollResult{}, fmt.Errorf("read log %s: %w", t.path, err)
	}

	end := bytes.LastIndexByte(data, '\n')
	if end < 0 {
		return PollResult{}, nil
	}
	t.offset += int64(end + 1)

	return PollResult{Lines: SplitLines(Decode(data[:end+1]))}, nil
}
