package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/user/bus-explorer-tui/pkg/config"
	"github.com/user/bus-explorer-tui/pkg/tree"
)

// FiltersView is the named-filter manager modal: the stored filters with
// their activation state, and the rules of the highlighted filter. An
// active filter shows [*]; an inactive one shows the tri-state of its
// exact keys against the current selection, so overlap with a manual
// selection is visible at a glance.
type FiltersView struct {
	store    *config.FilterStore
	isActive func(string) bool
	selected func(string) bool

	cursor     int
	ruleCursor int
	pane       int // 0=filters, 1=rules
}

// NewFiltersView creates the view over the given store. isActive answers
// whether a named filter is toggled on; selected answers key membership in
// the current selection.
func NewFiltersView(store *config.FilterStore, isActive, selected func(string) bool) *FiltersView {
	return &FiltersView{
		store:    store,
		isActive: isActive,
		selected: selected,
	}
}

// Reset clamps cursors after a store mutation and returns to the filter
// pane.
func (fv *FiltersView) Reset() {
	names := fv.store.Names()
	if fv.cursor >= len(names) {
		fv.cursor = maxInt(0, len(names)-1)
	}
	rules := fv.currentRules()
	if fv.ruleCursor >= len(rules) {
		fv.ruleCursor = maxInt(0, len(rules)-1)
	}
	if len(rules) == 0 {
		fv.pane = 0
	}
}

// SelectedFilter returns the highlighted filter name, or "".
func (fv *FiltersView) SelectedFilter() string {
	names := fv.store.Names()
	if fv.cursor < 0 || fv.cursor >= len(names) {
		return ""
	}
	return names[fv.cursor]
}

// SelectedRule returns the highlighted rule when the rule pane is focused.
func (fv *FiltersView) SelectedRule() (string, bool) {
	if fv.pane != 1 {
		return "", false
	}
	rules := fv.currentRules()
	if fv.ruleCursor < 0 || fv.ruleCursor >= len(rules) {
		return "", false
	}
	return rules[fv.ruleCursor], true
}

// Pane returns the focused pane (0 filters, 1 rules).
func (fv *FiltersView) Pane() int {
	return fv.pane
}

// SwitchPane moves focus between the filter list and the rule list.
func (fv *FiltersView) SwitchPane() {
	if fv.pane == 0 && len(fv.currentRules()) > 0 {
		fv.pane = 1
		fv.ruleCursor = 0
		return
	}
	fv.pane = 0
}

// CursorUp moves up in the focused pane.
func (fv *FiltersView) CursorUp() {
	if fv.pane == 1 {
		if fv.ruleCursor > 0 {
			fv.ruleCursor--
		}
		return
	}
	if fv.cursor > 0 {
		fv.cursor--
		fv.ruleCursor = 0
	}
}

// CursorDown moves down in the focused pane.
func (fv *FiltersView) CursorDown() {
	if fv.pane == 1 {
		if fv.ruleCursor < len(fv.currentRules())-1 {
			fv.ruleCursor++
		}
		return
	}
	if fv.cursor < fv.store.Len()-1 {
		fv.cursor++
		fv.ruleCursor = 0
	}
}

func (fv *FiltersView) currentRules() []string {
	name := fv.SelectedFilter()
	if name == "" {
		return nil
	}
	return fv.store.Rules(name)
}

// filterPrefix renders the activation indicator for one filter.
func (fv *FiltersView) filterPrefix(name string) string {
	if fv.isActive(name) {
		return tree.StateAll.Prefix()
	}
	derived := fv.store.Get(name)
	if derived == nil || len(derived.Keys) == 0 {
		return tree.StateNone.Prefix()
	}
	keys := make([]string, 0, len(derived.Keys))
	for key := range derived.Keys {
		keys = append(keys, key)
	}
	state := tree.StateOfKeys(keys, fv.selected)
	if state == tree.StateAll {
		// Not toggled on; show as partial so [*] stays reserved for
		// active filters.
		state = tree.StatePartial
	}
	return state.Prefix()
}

// Render renders the manager as a centered modal box.
func (fv *FiltersView) Render(width int) string {
	boxWidth := minInt(76, maxInt(48, width-8))
	names := fv.store.Names()

	var sb strings.Builder
	sb.WriteString(renderModalTitle("NAMED FILTERS", boxWidth) + "\n")

	if len(names) == 0 {
		sb.WriteString("┃ " + lipgloss.NewStyle().Foreground(lipgloss.Color("244")).Render("(no named filters; press n to save the current selection)") + "\n")
	}

	for i, name := range names {
		derived := fv.store.Get(name)
		ruleCount := 0
		regexCount := 0
		if derived != nil {
			ruleCount = len(derived.Rules)
			regexCount = len(derived.Regexes)
		}
		summary := fmt.Sprintf("%d rules", ruleCount)
		if regexCount > 0 {
			summary = fmt.Sprintf("%d rules, %d regex", ruleCount, regexCount)
		}
		row := fmt.Sprintf("%s%s (%s)", fv.filterPrefix(name), name, summary)
		row = clipString(row, boxWidth-2)
		if i == fv.cursor && fv.pane == 0 {
			row = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("230")).Background(lipgloss.Color("24")).Render(row)
		} else if i == fv.cursor {
			row = lipgloss.NewStyle().Foreground(lipgloss.Color("230")).Render(row)
		}
		sb.WriteString("┃ " + row + "\n")
	}

	if name := fv.SelectedFilter(); name != "" {
		sb.WriteString(renderModalDivider(boxWidth) + "\n")
		sb.WriteString(fmt.Sprintf("┃ Rules of %s:\n", name))
		rules := fv.store.Rules(name)
		if len(rules) == 0 {
			sb.WriteString("┃   " + lipgloss.NewStyle().Foreground(lipgloss.Color("244")).Render("(empty)") + "\n")
		}
		for i, rule := range rules {
			row := clipString("- "+rule, boxWidth-4)
			if fv.pane == 1 && i == fv.ruleCursor {
				row = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("230")).Background(lipgloss.Color("24")).Render(row)
			}
			sb.WriteString("┃   " + row + "\n")
		}
	}

	sb.WriteString(renderModalDivider(boxWidth) + "\n")
	sb.WriteString("┃ " + lipgloss.NewStyle().Foreground(lipgloss.Color("244")).Render("space toggle | n new from selection | a add rule | d delete | Tab rules | Esc close"))
	return sb.String()
}
