package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/user/bus-explorer-tui/pkg/models"
)

// LogPanel renders the projected telegram rows with a cursor and edge-
// triggered viewport scrolling. Rows arrive oldest first; follow mode keeps
// the viewport pinned to the newest row while the tail appends, and is
// dropped as soon as the user scrolls away from the bottom.
type LogPanel struct {
	rows           []models.LogRecord
	cursor         int
	scrollOffset   int
	viewportHeight int
	follow         bool
}

// NewLogPanel creates a log panel with the given viewport height.
func NewLogPanel(height int) *LogPanel {
	if height < 1 {
		height = 1
	}
	return &LogPanel{
		rows:           []models.LogRecord{},
		viewportHeight: height,
		follow:         true,
	}
}

// SetRows replaces the displayed rows. In follow mode the cursor sticks to
// the newest row; otherwise cursor and scroll are clamped into range.
func (lp *LogPanel) SetRows(rows []models.LogRecord) {
	lp.rows = rows
	if lp.follow {
		lp.cursor = maxInt(0, len(rows)-1)
		lp.scrollOffset = lp.maxScroll()
		return
	}
	if lp.cursor >= len(rows) {
		lp.cursor = maxInt(0, len(rows)-1)
	}
	if lp.scrollOffset > lp.maxScroll() {
		lp.scrollOffset = lp.maxScroll()
	}
	lp.ensureCursorVisible()
}

// CursorUp moves the cursor one row up and leaves follow mode.
func (lp *LogPanel) CursorUp() {
	if lp.cursor > 0 {
		lp.cursor--
	}
	lp.follow = false
	lp.ensureCursorVisible()
}

// CursorDown moves the cursor one row down; reaching the last row resumes
// follow mode.
func (lp *LogPanel) CursorDown() {
	if lp.cursor < len(lp.rows)-1 {
		lp.cursor++
	}
	if lp.cursor == len(lp.rows)-1 {
		lp.follow = true
	}
	lp.ensureCursorVisible()
}

// PageUp moves the cursor one viewport up.
func (lp *LogPanel) PageUp() {
	lp.cursor -= lp.viewportHeight
	if lp.cursor < 0 {
		lp.cursor = 0
	}
	lp.follow = false
	lp.ensureCursorVisible()
}

// PageDown moves the cursor one viewport down.
func (lp *LogPanel) PageDown() {
	lp.cursor += lp.viewportHeight
	if lp.cursor >= len(lp.rows) {
		lp.cursor = maxInt(0, len(lp.rows)-1)
	}
	if lp.cursor == len(lp.rows)-1 {
		lp.follow = true
	}
	lp.ensureCursorVisible()
}

// JumpToTop moves the cursor to the oldest row.
func (lp *LogPanel) JumpToTop() {
	lp.cursor = 0
	lp.scrollOffset = 0
	lp.follow = false
}

// JumpToBottom moves the cursor to the newest row and resumes follow mode.
func (lp *LogPanel) JumpToBottom() {
	lp.cursor = maxInt(0, len(lp.rows)-1)
	lp.scrollOffset = lp.maxScroll()
	lp.follow = true
}

// GetSelectedRecord returns the record under the cursor, or nil.
func (lp *LogPanel) GetSelectedRecord() *models.LogRecord {
	if lp.cursor < 0 || lp.cursor >= len(lp.rows) {
		return nil
	}
	return &lp.rows[lp.cursor]
}

// Rows returns all displayed rows, oldest first.
func (lp *LogPanel) Rows() []models.LogRecord {
	return lp.rows
}

// GetRowCount returns the number of displayed rows.
func (lp *LogPanel) GetRowCount() int {
	return len(lp.rows)
}

// Following reports whether the viewport is pinned to the newest row.
func (lp *LogPanel) Following() bool {
	return lp.follow
}

// SetViewportHeight resizes the viewport.
func (lp *LogPanel) SetViewportHeight(height int) {
	if height < 1 {
		height = 1
	}
	lp.viewportHeight = height
	if lp.follow {
		lp.scrollOffset = lp.maxScroll()
		return
	}
	if lp.scrollOffset > lp.maxScroll() {
		lp.scrollOffset = lp.maxScroll()
	}
	lp.ensureCursorVisible()
}

// VisibleBounds returns the 1-based row window currently on screen.
func (lp *LogPanel) VisibleBounds() (int, int) {
	if len(lp.rows) == 0 {
		return 0, 0
	}
	end := minInt(lp.scrollOffset+lp.viewportHeight, len(lp.rows))
	return lp.scrollOffset + 1, end
}

func (lp *LogPanel) maxScroll() int {
	return maxInt(0, len(lp.rows)-lp.viewportHeight)
}

func (lp *LogPanel) ensureCursorVisible() {
	if lp.cursor < lp.scrollOffset {
		lp.scrollOffset = lp.cursor
	}
	if lp.cursor >= lp.scrollOffset+lp.viewportHeight {
		lp.scrollOffset = lp.cursor - lp.viewportHeight + 1
	}
	if lp.scrollOffset < 0 {
		lp.scrollOffset = 0
	}
}

// RenderHeader renders the column header line.
func (lp *LogPanel) RenderHeader(width int) string {
	header := fmt.Sprintf("%-23s  %-20s  %-20s  %s", "TIMESTAMP", "SOURCE", "DESTINATION", "PAYLOAD")
	header = clipString(header, maxInt(0, width-2))
	return "┃ " + lipgloss.NewStyle().Foreground(lipgloss.Color("244")).Render(header)
}

// Render renders exactly viewportHeight body lines.
func (lp *LogPanel) Render(width int, focused bool) string {
	var sb strings.Builder

	if len(lp.rows) == 0 {
		empty := lipgloss.NewStyle().Foreground(lipgloss.Color("244")).Render("(no telegrams match the current filters)")
		sb.WriteString("┃ " + empty + "\n")
		for i := 1; i < lp.viewportHeight; i++ {
			sb.WriteString("┃ \n")
		}
		return strings.TrimRight(sb.String(), "\n")
	}

	start := lp.scrollOffset
	end := minInt(start+lp.viewportHeight, len(lp.rows))

	for i := start; i < end; i++ {
		row := clipString(formatRowText(lp.rows[i]), maxInt(0, width-2))
		switch {
		case i == lp.cursor && focused:
			row = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("230")).Background(lipgloss.Color("24")).Render(row)
		case i == lp.cursor:
			row = lipgloss.NewStyle().Foreground(lipgloss.Color("230")).Background(lipgloss.Color("238")).Render(row)
		case i%2 == 0:
			row = lipgloss.NewStyle().Foreground(lipgloss.Color("250")).Render(row)
		default:
			row = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Render(row)
		}
		sb.WriteString("┃ " + row + "\n")
	}

	for i := end - start; i < lp.viewportHeight; i++ {
		sb.WriteString("┃ \n")
	}

	return strings.TrimRight(sb.String(), "\n")
}

// formatRowText renders one record as a plain text row.
func formatRowText(rec models.LogRecord) string {
	return fmt.Sprintf("%-23s  %-20s  %-20s  %s",
		rec.Timestamp,
		clipString(formatAddressField(rec.Source, rec.SourceName), 20),
		clipString(formatAddressField(rec.Dest, rec.DestName), 20),
		rec.Payload,
	)
}

// formatAddressField joins an address key with its resolved name.
func formatAddressField(key, name string) string {
	if name == "" {
		return key
	}
	return key + " " + name
}

// clipString truncates to max display runes with an ellipsis.
func clipString(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	if max <= 3 {
		return string(runes[:max])
	}
	return string(runes[:max-3]) + "..."
}
