package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/user/bus-explorer-tui/pkg/models"
)

// TimeFilterForm is the modal editing the time-of-day window. Both bounds
// are optional: an empty field leaves that side unbounded. Applying a
// changed window re-runs the full source load with the window active.
type TimeFilterForm struct {
	startInput textinput.Model
	endInput   textinput.Model
	field      int // 0=start, 1=end
	errText    string
}

// NewTimeFilterForm creates the form with both fields empty.
func NewTimeFilterForm() TimeFilterForm {
	start := textinput.New()
	start.Placeholder = "HH:MM[:SS]"
	start.CharLimit = 8
	start.Width = 12
	start.Prompt = ""

	end := textinput.New()
	end.Placeholder = "HH:MM[:SS]"
	end.CharLimit = 8
	end.Width = 12
	end.Prompt = ""

	return TimeFilterForm{
		startInput: start,
		endInput:   end,
	}
}

// Open pre-fills the form from the active window and focuses the start
// field.
func (tf *TimeFilterForm) Open(window models.TimeWindow) tea.Cmd {
	tf.errText = ""
	tf.field = 0

	tf.startInput.SetValue("")
	if window.Start != nil {
		tf.startInput.SetValue(window.Start.String())
	}
	tf.endInput.SetValue("")
	if window.End != nil {
		tf.endInput.SetValue(window.End.String())
	}

	tf.endInput.Blur()
	tf.startInput.CursorEnd()
	return tf.startInput.Focus()
}

// Close blurs both fields.
func (tf *TimeFilterForm) Close() {
	tf.startInput.Blur()
	tf.endInput.Blur()
	tf.errText = ""
}

// ToggleField moves focus between the start and end fields.
func (tf *TimeFilterForm) ToggleField() tea.Cmd {
	if tf.field == 0 {
		tf.field = 1
		tf.startInput.Blur()
		tf.endInput.CursorEnd()
		return tf.endInput.Focus()
	}
	tf.field = 0
	tf.endInput.Blur()
	tf.startInput.CursorEnd()
	return tf.startInput.Focus()
}

// ClearFields empties both inputs, describing a fully unbounded window.
func (tf *TimeFilterForm) ClearFields() {
	tf.startInput.SetValue("")
	tf.endInput.SetValue("")
	tf.errText = ""
}

// Update forwards a message to the focused field.
func (tf *TimeFilterForm) Update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	if tf.field == 0 {
		tf.startInput, cmd = tf.startInput.Update(msg)
	} else {
		tf.endInput, cmd = tf.endInput.Update(msg)
	}
	return cmd
}

// Window parses the form into a time window. Empty fields produce nil
// bounds; a start after the end is rejected.
func (tf *TimeFilterForm) Window() (models.TimeWindow, error) {
	var window models.TimeWindow

	if s := strings.TrimSpace(tf.startInput.Value()); s != "" {
		ct, err := models.ParseClockTime(s)
		if err != nil {
			return models.TimeWindow{}, fmt.Errorf("start: %w", err)
		}
		window.Start = &ct
	}

	if s := strings.TrimSpace(tf.endInput.Value()); s != "" {
		ct, err := models.ParseClockTime(s)
		if err != nil {
			return models.TimeWindow{}, fmt.Errorf("end: %w", err)
		}
		window.End = &ct
	}

	if window.Start != nil && window.End != nil && window.Start.Seconds() > window.End.Seconds() {
		return models.TimeWindow{}, fmt.Errorf("start %s is after end %s", window.Start, window.End)
	}

	return window, nil
}

// SetError displays a validation error in the form.
func (tf *TimeFilterForm) SetError(text string) {
	tf.errText = text
}

// Render renders the form as a centered modal box.
func (tf *TimeFilterForm) Render(width int) string {
	boxWidth := minInt(64, maxInt(44, width-8))

	startPrefix := " "
	endPrefix := " "
	if tf.field == 0 {
		startPrefix = "▶"
	} else {
		endPrefix = "▶"
	}

	var sb strings.Builder
	sb.WriteString(renderModalTitle("TIME FILTER", boxWidth) + "\n")
	sb.WriteString("┃ Show only telegrams inside a time of day window.\n")
	sb.WriteString(fmt.Sprintf("┃ %s Start: %s\n", startPrefix, tf.startInput.View()))
	sb.WriteString(fmt.Sprintf("┃ %s End:   %s\n", endPrefix, tf.endInput.View()))
	if tf.errText != "" {
		sb.WriteString("┃ " + lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Render("Error: "+tf.errText) + "\n")
	}
	sb.WriteString(renderModalDivider(boxWidth) + "\n")
	sb.WriteString("┃ " + lipgloss.NewStyle().Foreground(lipgloss.Color("244")).Render("Tab switch field | Ctrl+d clear | Enter apply | Esc cancel"))
	return sb.String()
}
