package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// helpGroupNames label the binding groups of KeyMap.FullHelp in order.
var helpGroupNames = []string{"Nav", "Panes", "Filter", "Logs", "Other"}

// HelpModal renders the key binding reference.
type HelpModal struct {
	visible bool
	width   int
	height  int
}

// NewHelpModal creates a hidden help modal.
func NewHelpModal() *HelpModal {
	return &HelpModal{
		visible: false,
		width:   80,
		height:  24,
	}
}

// SetVisible toggles visibility.
func (hm *HelpModal) SetVisible(visible bool) {
	hm.visible = visible
}

// IsVisible returns current visibility state.
func (hm *HelpModal) IsVisible() bool {
	return hm.visible
}

// Render renders the help modal over the full screen.
func (hm *HelpModal) Render(width, height int, keys KeyMap) string {
	if !hm.visible {
		return ""
	}

	hm.width = width
	hm.height = height

	content := hm.getHelpContent(keys)

	style := lipgloss.NewStyle().
		BorderStyle(lipgloss.DoubleBorder()).
		BorderForeground(lipgloss.Color("12")).
		Padding(1).
		Width(width - 4)

	return style.Render(content)
}

// getHelpContent builds the binding table from the declared key map, plus
// the bindings that live outside it.
func (hm *HelpModal) getHelpContent(keys KeyMap) string {
	var sb strings.Builder

	sb.WriteString(lipgloss.NewStyle().Bold(true).Render("BUS EXPLORER TUI HELP"))
	sb.WriteString("\n")
	sb.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color("244")).Render("Shortcut reference"))
	sb.WriteString("\n\n")

	var rows [][3]string
	for gi, group := range keys.FullHelp() {
		groupName := "Other"
		if gi < len(helpGroupNames) {
			groupName = helpGroupNames[gi]
		}
		for _, binding := range group {
			help := binding.Help()
			rows = append(rows, [3]string{groupName, help.Key, help.Desc})
		}
	}

	rows = append(rows,
		[3]string{"Other", "f6", "Toggle key mode (vim/standard)"},
		[3]string{"Modal", "tab", "Switch field or pane inside a modal"},
		[3]string{"Modal", "enter", "Apply modal input"},
	)

	sb.WriteString(hm.renderResponsiveTable(rows))

	return sb.String()
}

func (hm *HelpModal) renderResponsiveTable(rows [][3]string) string {
	var sb strings.Builder
	contentWidth := hm.width - 10
	if contentWidth < 56 {
		contentWidth = 56
	}

	headerStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("14"))
	separatorStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("241"))

	if contentWidth >= 90 {
		groupWidth := 8
		keyWidth := 24
		actionWidth := contentWidth - groupWidth - keyWidth - 6
		sb.WriteString(headerStyle.Render(fmt.Sprintf("%-*s %-*s %-*s\n", groupWidth, "GROUP", keyWidth, "KEY", actionWidth, "ACTION")))
		sb.WriteString(separatorStyle.Render(strings.Repeat("─", groupWidth+keyWidth+actionWidth+2)))
		sb.WriteString("\n")
		for _, row := range rows {
			actionLines := wrapWords(row[2], actionWidth)
			for i, line := range actionLines {
				groupCell := ""
				keyCell := ""
				if i == 0 {
					groupCell = row[0]
					keyCell = row[1]
				}
				sb.WriteString(fmt.Sprintf("%-*s %-*s %-*s\n", groupWidth, groupCell, keyWidth, keyCell, actionWidth, line))
			}
		}
		return sb.String()
	}

	keyWidth := 22
	actionWidth := contentWidth - keyWidth - 4
	sb.WriteString(headerStyle.Render(fmt.Sprintf("%-*s %-*s\n", keyWidth, "KEY", actionWidth, "ACTION")))
	sb.WriteString(separatorStyle.Render(strings.Repeat("─", keyWidth+actionWidth+1)))
	sb.WriteString("\n")
	for _, row := range rows {
		label := row[1]
		actionLines := wrapWords(row[2], actionWidth)
		for i, line := range actionLines {
			keyCell := ""
			if i == 0 {
				keyCell = label
			}
			sb.WriteString(fmt.Sprintf("%-*s %-*s\n", keyWidth, keyCell, actionWidth, line))
		}
	}
	return sb.String()
}

func wrapWords(input string, width int) []string {
	if width < 8 {
		return []string{input}
	}
	words := strings.Fields(input)
	if len(words) == 0 {
		return []string{""}
	}
	lines := make([]string, 0, 2)
	current := words[0]
	for _, w := range words[1:] {
		if len(current)+1+len(w) <= width {
			current += " " + w
			continue
		}
		lines = append(lines, current)
		current = w
	}
	lines = append(lines, current)
	return lines
}
