package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Prompt purposes: what the update loop does with a submitted value.
const (
	promptGlobalFilter = "global-filter"
	promptTreeFilter   = "tree-filter"
	promptFilterName   = "filter-name"
	promptFilterRule   = "filter-rule"
	promptExportPath   = "export-path"
)

// Prompt is the one-line text input modal shared by the global regex
// filter, the tree substring filter, filter naming and rule entry. The
// purpose string tells the update loop what the submitted value means.
type Prompt struct {
	input   textinput.Model
	title   string
	purpose string
	hint    string
	errText string
}

// NewPrompt creates an unfocused prompt.
func NewPrompt() Prompt {
	ti := textinput.New()
	ti.Placeholder = ""
	ti.CharLimit = 256
	ti.Width = 60
	ti.Prompt = "> "

	return Prompt{input: ti}
}

// Open prepares the prompt for a new question and focuses it.
func (p *Prompt) Open(title, purpose, hint, initial string) tea.Cmd {
	p.title = title
	p.purpose = purpose
	p.hint = hint
	p.errText = ""
	p.input.SetValue(initial)
	p.input.CursorEnd()
	return p.input.Focus()
}

// Close blurs the input and clears transient state.
func (p *Prompt) Close() {
	p.input.Blur()
	p.errText = ""
}

// Purpose returns what the prompt was opened for.
func (p *Prompt) Purpose() string {
	return p.purpose
}

// Value returns the current input text, trimmed.
func (p *Prompt) Value() string {
	return strings.TrimSpace(p.input.Value())
}

// SetError displays a validation error under the input.
func (p *Prompt) SetError(text string) {
	p.errText = text
}

// Update forwards a message to the text input.
func (p *Prompt) Update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	p.input, cmd = p.input.Update(msg)
	return cmd
}

// Render renders the prompt as a centered modal box.
func (p *Prompt) Render(width int) string {
	boxWidth := minInt(72, maxInt(40, width-8))

	var sb strings.Builder
	sb.WriteString(renderModalTitle(p.title, boxWidth) + "\n")
	sb.WriteString("┃ " + p.input.View() + "\n")
	if p.errText != "" {
		sb.WriteString("┃ " + lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Render("Error: "+p.errText) + "\n")
	}
	sb.WriteString(renderModalDivider(boxWidth) + "\n")
	hint := p.hint
	if hint == "" {
		hint = "Enter apply | Esc cancel"
	}
	sb.WriteString("┃ " + lipgloss.NewStyle().Foreground(lipgloss.Color("244")).Render(hint))
	return sb.String()
}
