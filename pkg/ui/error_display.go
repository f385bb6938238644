package ui

import (
	"time"

	"github.com/charmbracelet/lipgloss"
)

// ToastLevel distinguishes error toasts from status notices.
type ToastLevel int

// Toast levels
const (
	ToastInfo ToastLevel = iota
	ToastError
)

// Toast represents a single transient message.
type Toast struct {
	Text      string
	Level     ToastLevel
	Timestamp time.Time
	Duration  time.Duration
}

// ToastDisplay manages the transient messages shown above the footer:
// source errors, clipboard and export confirmations, filter store failures.
type ToastDisplay struct {
	messages []Toast
	maxSize  int
}

// NewToastDisplay creates an empty toast display.
func NewToastDisplay() *ToastDisplay {
	return &ToastDisplay{
		messages: []Toast{},
		maxSize:  10,
	}
}

// AddError adds an error message.
func (td *ToastDisplay) AddError(text string, duration time.Duration) {
	td.add(Toast{
		Text:      text,
		Level:     ToastError,
		Timestamp: time.Now(),
		Duration:  duration,
	})
}

// AddInfo adds a status notice.
func (td *ToastDisplay) AddInfo(text string, duration time.Duration) {
	td.add(Toast{
		Text:      text,
		Level:     ToastInfo,
		Timestamp: time.Now(),
		Duration:  duration,
	})
}

func (td *ToastDisplay) add(msg Toast) {
	td.messages = append(td.messages, msg)

	// Keep only maxSize messages
	if len(td.messages) > td.maxSize {
		td.messages = td.messages[len(td.messages)-td.maxSize:]
	}
}

// ClearExpired removes expired messages.
func (td *ToastDisplay) ClearExpired() {
	now := time.Now()
	var active []Toast

	for _, msg := range td.messages {
		if msg.Duration == 0 || now.Sub(msg.Timestamp) < msg.Duration {
			active = append(active, msg)
		}
	}

	td.messages = active
}

// GetLatest returns the most recent active message.
func (td *ToastDisplay) GetLatest() *Toast {
	td.ClearExpired()
	if len(td.messages) == 0 {
		return nil
	}
	return &td.messages[len(td.messages)-1]
}

// HasMessages returns true if there are active messages.
func (td *ToastDisplay) HasMessages() bool {
	td.ClearExpired()
	return len(td.messages) > 0
}

// RenderToast renders the latest message as a one-line toast notification.
func (td *ToastDisplay) RenderToast(width int) string {
	latest := td.GetLatest()
	if latest == nil {
		return ""
	}

	// Truncate message if needed
	msg := latest.Text
	if len(msg) > width-4 {
		msg = msg[:width-7] + "..."
	}

	color := lipgloss.Color("10") // Green
	prefix := "✓ "
	if latest.Level == ToastError {
		color = lipgloss.Color("9") // Red
		prefix = "⚠ "
	}

	style := lipgloss.NewStyle().
		Foreground(color).
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(color).
		Padding(0, 1).
		Width(width - 2)

	return style.Render(prefix + msg)
}

// Clear removes all messages.
func (td *ToastDisplay) Clear() {
	td.messages = []Toast{}
}
