package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/user/bus-explorer-tui/pkg/models"
	"github.com/user/bus-explorer-tui/pkg/tree"
)

// treeTab identifies one of the three catalog trees.
type treeTab int

// Tree tabs
const (
	tabFunctions treeTab = iota
	tabTopology
	tabBuilding
)

var treeTabNames = [3]string{"Functions", "Topology", "Building"}

// treeRow is one rendered line of the flattened tree.
type treeRow struct {
	node  *tree.Node
	depth int
}

// TreeView renders the three catalog trees with tri-state selection
// prefixes and payload annotations. It holds only view state: cursor,
// scroll, expansion and the per-tab substring filter. The canonical trees
// are immutable, and the view references nodes by ID without ever mutating
// them. Selection membership and payload history are read through
// callbacks into the core.
type TreeView struct {
	tabs     [3]tree.Data
	filtered [3]tree.Data
	queries  [3]string
	active   treeTab

	expanded       map[string]bool
	cursor         int
	scrollOffset   int
	viewportHeight int

	selected func(string) bool
	latest   func([]string, int) []models.PayloadSample
}

// NewTreeView creates an empty tree view. The selected callback answers
// whether a destination key is selected; latest returns recent payload
// samples for a key set.
func NewTreeView(height int, selected func(string) bool, latest func([]string, int) []models.PayloadSample) *TreeView {
	if height < 1 {
		height = 1
	}
	return &TreeView{
		expanded:       map[string]bool{},
		viewportHeight: height,
		selected:       selected,
		latest:         latest,
	}
}

// SetTrees installs freshly built canonical trees and resets filters and
// expansion. Top-level nodes start expanded so the view is not a wall of
// collapsed roots.
func (tv *TreeView) SetTrees(functions, topology, building tree.Data) {
	tv.tabs = [3]tree.Data{functions, topology, building}
	tv.filtered = tv.tabs
	tv.queries = [3]string{}
	tv.expanded = map[string]bool{}
	tv.cursor = 0
	tv.scrollOffset = 0

	for _, data := range tv.tabs {
		if data.Root == nil {
			continue
		}
		for _, child := range data.Root.Children {
			tv.expanded[child.ID] = true
		}
	}
}

// SetTab switches the active tree.
func (tv *TreeView) SetTab(t treeTab) {
	if t == tv.active {
		return
	}
	tv.active = t
	tv.cursor = 0
	tv.scrollOffset = 0
}

// ActiveTab returns the active tree tab.
func (tv *TreeView) ActiveTab() treeTab {
	return tv.active
}

// Query returns the substring filter of the active tab.
func (tv *TreeView) Query() string {
	return tv.queries[tv.active]
}

// SetQuery applies a substring filter to the active tab and expands every
// surviving branch so matches are visible.
func (tv *TreeView) SetQuery(query string) {
	tv.queries[tv.active] = query
	tv.filtered[tv.active] = tree.Filter(tv.tabs[tv.active], query)
	tv.cursor = 0
	tv.scrollOffset = 0

	if query == "" {
		return
	}
	var expand func(n *tree.Node)
	expand = func(n *tree.Node) {
		if n.Kind == tree.KindBranch {
			tv.expanded[n.ID] = true
			for _, child := range n.Children {
				expand(child)
			}
		}
	}
	if root := tv.filtered[tv.active].Root; root != nil {
		expand(root)
	}
}

// ClearQuery removes the active tab's substring filter.
func (tv *TreeView) ClearQuery() {
	tv.queries[tv.active] = ""
	tv.filtered[tv.active] = tv.tabs[tv.active]
	tv.cursor = 0
	tv.scrollOffset = 0
}

func (tv *TreeView) current() tree.Data {
	return tv.filtered[tv.active]
}

// visibleRows flattens the active tree honoring expansion state.
func (tv *TreeView) visibleRows() []treeRow {
	data := tv.current()
	if data.Empty() {
		return nil
	}
	var rows []treeRow
	var walk func(n *tree.Node, depth int)
	walk = func(n *tree.Node, depth int) {
		rows = append(rows, treeRow{node: n, depth: depth})
		if n.Kind == tree.KindBranch && tv.expanded[n.ID] {
			for _, child := range n.Children {
				walk(child, depth+1)
			}
		}
	}
	for _, child := range data.Root.Children {
		walk(child, 0)
	}
	return rows
}

// SelectedNode returns the node under the cursor, or nil.
func (tv *TreeView) SelectedNode() *tree.Node {
	rows := tv.visibleRows()
	if tv.cursor < 0 || tv.cursor >= len(rows) {
		return nil
	}
	return rows[tv.cursor].node
}

// CursorUp moves the cursor one row up.
func (tv *TreeView) CursorUp() {
	if tv.cursor > 0 {
		tv.cursor--
	}
	tv.ensureCursorVisible()
}

// CursorDown moves the cursor one row down.
func (tv *TreeView) CursorDown() {
	if tv.cursor < len(tv.visibleRows())-1 {
		tv.cursor++
	}
	tv.ensureCursorVisible()
}

// PageUp moves the cursor one viewport up.
func (tv *TreeView) PageUp() {
	tv.cursor -= tv.viewportHeight
	if tv.cursor < 0 {
		tv.cursor = 0
	}
	tv.ensureCursorVisible()
}

// PageDown moves the cursor one viewport down.
func (tv *TreeView) PageDown() {
	rows := len(tv.visibleRows())
	tv.cursor += tv.viewportHeight
	if tv.cursor >= rows {
		tv.cursor = maxInt(0, rows-1)
	}
	tv.ensureCursorVisible()
}

// JumpToTop moves the cursor to the first row.
func (tv *TreeView) JumpToTop() {
	tv.cursor = 0
	tv.scrollOffset = 0
}

// JumpToBottom moves the cursor to the last row.
func (tv *TreeView) JumpToBottom() {
	tv.cursor = maxInt(0, len(tv.visibleRows())-1)
	tv.ensureCursorVisible()
}

// Expand expands the branch under the cursor. Expanding an already
// expanded branch steps into its first child.
func (tv *TreeView) Expand() {
	node := tv.SelectedNode()
	if node == nil || node.Kind != tree.KindBranch {
		return
	}
	if !tv.expanded[node.ID] {
		tv.expanded[node.ID] = true
		return
	}
	if len(node.Children) > 0 {
		tv.CursorDown()
	}
}

// Collapse collapses the branch under the cursor; on a leaf or an already
// collapsed branch it jumps to the parent row.
func (tv *TreeView) Collapse() {
	node := tv.SelectedNode()
	if node == nil {
		return
	}
	if node.Kind == tree.KindBranch && tv.expanded[node.ID] {
		tv.expanded[node.ID] = false
		return
	}
	tv.jumpToParent(node)
}

// ToggleExpand flips the expansion of the branch under the cursor.
func (tv *TreeView) ToggleExpand() {
	node := tv.SelectedNode()
	if node == nil || node.Kind != tree.KindBranch {
		return
	}
	tv.expanded[node.ID] = !tv.expanded[node.ID]
}

func (tv *TreeView) jumpToParent(node *tree.Node) {
	rows := tv.visibleRows()
	depth := -1
	for i, row := range rows {
		if row.node == node {
			depth = row.depth
			for j := i - 1; j >= 0; j-- {
				if rows[j].depth < depth {
					tv.cursor = j
					tv.ensureCursorVisible()
					return
				}
			}
			return
		}
	}
}

// SetViewportHeight resizes the viewport.
func (tv *TreeView) SetViewportHeight(height int) {
	if height < 1 {
		height = 1
	}
	tv.viewportHeight = height
	tv.ensureCursorVisible()
}

func (tv *TreeView) ensureCursorVisible() {
	if tv.cursor < tv.scrollOffset {
		tv.scrollOffset = tv.cursor
	}
	if tv.cursor >= tv.scrollOffset+tv.viewportHeight {
		tv.scrollOffset = tv.cursor - tv.viewportHeight + 1
	}
	if tv.scrollOffset < 0 {
		tv.scrollOffset = 0
	}
}

// RenderTabs renders the tab bar line.
func (tv *TreeView) RenderTabs(width int) string {
	var parts []string
	for i, name := range treeTabNames {
		label := numberedTabLabel(i+1, name)
		if treeTab(i) == tv.active {
			label = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("229")).Background(lipgloss.Color("63")).Padding(0, 1).Render(label)
		} else {
			label = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Padding(0, 1).Render(label)
		}
		parts = append(parts, label)
	}
	line := "┃ " + strings.Join(parts, " ")
	if q := tv.Query(); q != "" {
		line += lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Render("  filter: " + q)
	}
	return line
}

func numberedTabLabel(n int, name string) string {
	return strings.TrimSpace(strings.Join([]string{string(rune('0' + n)), name}, " "))
}

// Render renders exactly viewportHeight body lines of the active tree.
func (tv *TreeView) Render(width int, focused bool) string {
	rows := tv.visibleRows()
	var sb strings.Builder

	if len(rows) == 0 {
		msg := "(no catalog loaded)"
		if tv.Query() != "" {
			msg = "(nothing matches the tree filter)"
		}
		sb.WriteString("┃ " + lipgloss.NewStyle().Foreground(lipgloss.Color("244")).Render(msg) + "\n")
		for i := 1; i < tv.viewportHeight; i++ {
			sb.WriteString("┃ \n")
		}
		return strings.TrimRight(sb.String(), "\n")
	}

	start := tv.scrollOffset
	end := minInt(start+tv.viewportHeight, len(rows))

	for i := start; i < end; i++ {
		line := tv.renderRow(rows[i], maxInt(0, width-2), i == tv.cursor, focused)
		sb.WriteString("┃ " + line + "\n")
	}
	for i := end - start; i < tv.viewportHeight; i++ {
		sb.WriteString("┃ \n")
	}

	return strings.TrimRight(sb.String(), "\n")
}

func (tv *TreeView) renderRow(row treeRow, width int, isCursor, focused bool) string {
	node := row.node
	indent := strings.Repeat("  ", row.depth)

	prefix := "    "
	if node.HasKeys() {
		prefix = tree.StateOf(node, tv.selected).Prefix()
	}

	glyph := ""
	if node.Kind == tree.KindBranch {
		if tv.expanded[node.ID] {
			glyph = "▾ "
		} else {
			glyph = "▸ "
		}
	}

	annotation := ""
	var annotationWidth int
	if node.Kind == tree.KindLeaf && node.HasKeys() && tv.latest != nil {
		samples := tv.latest(node.Keys(), 3)
		if len(samples) > 0 {
			annotation, annotationWidth = formatPayloadAnnotation(samples)
		}
	}

	plain := indent + prefix + glyph + node.Label
	budget := width - annotationWidth
	plain = clipString(plain, maxInt(8, budget))

	line := plain + annotation
	if isCursor && focused {
		return lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("230")).Background(lipgloss.Color("24")).Render(plain) + annotation
	}
	if isCursor {
		return lipgloss.NewStyle().Foreground(lipgloss.Color("230")).Background(lipgloss.Color("238")).Render(plain) + annotation
	}
	return line
}

// formatPayloadAnnotation renders " -> current (prev, prev2)" with the
// newest value bold. Returns the string and its display width.
func formatPayloadAnnotation(samples []models.PayloadSample) (string, int) {
	current := samples[0].Payload
	width := len([]rune(" -> " + current))

	older := make([]string, 0, len(samples)-1)
	for _, s := range samples[1:] {
		older = append(older, s.Payload)
	}

	text := " -> " + lipgloss.NewStyle().Bold(true).Render(current)
	if len(older) > 0 {
		suffix := " (" + strings.Join(older, ", ") + ")"
		text += suffix
		width += len([]rune(suffix))
	}
	return text, width
}
