package ui

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// TailScheduler decides when the log source is polled for new lines. It
// owns no pipeline state: the actual poll runs inside the update loop, and
// the scheduler only emits tick commands and tracks enablement, the poll
// interval and the idle window. When no interaction happened for the idle
// window, ticks are delivered but not acted on, so a forgotten session
// stops hitting the filesystem.
type TailScheduler struct {
	enabled         bool
	interval        time.Duration
	idleWindow      time.Duration
	lastPoll        time.Time
	lastInteraction time.Time
	newRecordCount  int
}

// NewTailScheduler creates a scheduler with the given poll interval and
// idle window. Intervals below one second are clamped to one second.
func NewTailScheduler(interval, idleWindow time.Duration) *TailScheduler {
	if interval < time.Second {
		interval = time.Second
	}

	return &TailScheduler{
		enabled:         false,
		interval:        interval,
		idleWindow:      idleWindow,
		lastPoll:        time.Now(),
		lastInteraction: time.Now(),
		newRecordCount:  0,
	}
}

// Enable enables tail polling.
func (ts *TailScheduler) Enable() error {
	if ts.enabled {
		return fmt.Errorf("tailing already enabled")
	}

	ts.enabled = true
	ts.newRecordCount = 0
	ts.lastPoll = time.Now()
	ts.lastInteraction = time.Now()

	return nil
}

// Disable disables tail polling.
func (ts *TailScheduler) Disable() error {
	if !ts.enabled {
		return fmt.Errorf("tailing not enabled")
	}

	ts.enabled = false

	return nil
}

// Toggle flips enablement and returns the new state.
func (ts *TailScheduler) Toggle() bool {
	if ts.enabled {
		_ = ts.Disable()
	} else {
		_ = ts.Enable()
	}
	return ts.enabled
}

// IsEnabled returns whether tail polling is enabled.
func (ts *TailScheduler) IsEnabled() bool {
	return ts.enabled
}

// MarkInteraction records a user interaction, resuming an idle-paused tail.
func (ts *TailScheduler) MarkInteraction() {
	ts.lastInteraction = time.Now()
}

// IdlePaused reports whether polling is suspended because the session has
// been idle longer than the idle window.
func (ts *TailScheduler) IdlePaused() bool {
	if ts.idleWindow <= 0 {
		return false
	}
	return time.Since(ts.lastInteraction) > ts.idleWindow
}

// ShouldPoll reports whether a tick should trigger an actual poll.
func (ts *TailScheduler) ShouldPoll() bool {
	return ts.enabled && !ts.IdlePaused()
}

// MarkPolled records that a poll just ran.
func (ts *TailScheduler) MarkPolled() {
	ts.lastPoll = time.Now()
}

// TickCmd returns the command that delivers the next tick message after
// the poll interval. The update loop re-arms it on every tick, keeping a
// single tick in flight.
func (ts *TailScheduler) TickCmd() tea.Cmd {
	return tea.Tick(ts.interval, func(t time.Time) tea.Msg {
		return tailTickMsg{at: t}
	})
}

// GetLastPollTime returns the time of the last poll.
func (ts *TailScheduler) GetLastPollTime() time.Time {
	return ts.lastPoll
}

// GetTimeSinceLastPoll returns the duration since the last poll.
func (ts *TailScheduler) GetTimeSinceLastPoll() time.Duration {
	return time.Since(ts.lastPoll)
}

// SetInterval sets the poll interval.
func (ts *TailScheduler) SetInterval(interval time.Duration) error {
	if interval < time.Second {
		return fmt.Errorf("interval must be at least 1 second")
	}

	ts.interval = interval
	return nil
}

// GetInterval returns the current poll interval.
func (ts *TailScheduler) GetInterval() time.Duration {
	return ts.interval
}

// IncrementNewRecordCount adds to the count of records appended by polls
// since the last reset.
func (ts *TailScheduler) IncrementNewRecordCount(count int) {
	ts.newRecordCount += count
}

// GetNewRecordCount returns the count of records appended by polls.
func (ts *TailScheduler) GetNewRecordCount() int {
	return ts.newRecordCount
}

// ResetNewRecordCount resets the appended record count.
func (ts *TailScheduler) ResetNewRecordCount() {
	ts.newRecordCount = 0
}
