package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// renderHorizontalSplit renders panes side-by-side, top-aligned. Panes are
// expected to be pre-sized; lipgloss handles ANSI-aware padding.
func renderHorizontalSplit(panes ...string) string {
	if len(panes) == 0 {
		return ""
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, panes...)
}

// renderVerticalSplit stacks panes top to bottom.
func renderVerticalSplit(panes ...string) string {
	if len(panes) == 0 {
		return ""
	}
	return lipgloss.JoinVertical(lipgloss.Left, panes...)
}

// renderModalTitle draws the heavy top border of a modal or pane with an
// embedded title.
func renderModalTitle(title string, width int) string {
	head := "┏━━ " + title + " "
	fill := width - lipgloss.Width(head)
	if fill < 0 {
		fill = 0
	}
	return head + strings.Repeat("━", fill)
}

// renderModalDivider draws an interior divider row.
func renderModalDivider(width int) string {
	if width < 1 {
		return "┣"
	}
	return "┣" + strings.Repeat("━", width-1)
}

// renderPaneTitle draws a pane's top border with its title; the focused
// pane gets the highlighted border color.
func renderPaneTitle(title string, width int, focused bool) string {
	line := renderModalTitle(title, width)
	if focused {
		return lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true).Render(line)
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Render(line)
}

// renderPopupOver overlays popup centered on base. Popup lines replace base
// lines; the popup is assumed to be narrower than the full width.
func renderPopupOver(base, popup string, width, height int) string {
	baseLines := strings.Split(strings.TrimRight(base, "\n"), "\n")
	for len(baseLines) < height {
		baseLines = append(baseLines, "")
	}
	popupLines := strings.Split(strings.TrimRight(popup, "\n"), "\n")
	if len(popupLines) == 0 {
		return base
	}

	// One pad for all lines keeps the popup's left edge straight even when
	// its lines have different widths.
	popupWidth := 0
	for _, line := range popupLines {
		popupWidth = maxInt(popupWidth, lipgloss.Width(line))
	}
	leftPad := maxInt(0, (width-popupWidth)/2)
	pad := strings.Repeat(" ", leftPad)

	startRow := maxInt(1, (height-len(popupLines))/2)
	for i, line := range popupLines {
		row := startRow + i
		if row < 0 || row >= len(baseLines) {
			continue
		}
		baseLines[row] = pad + line
	}
	return strings.Join(baseLines, "\n")
}
