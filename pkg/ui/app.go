package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/user/bus-explorer-tui/pkg/catalog"
	"github.com/user/bus-explorer-tui/pkg/config"
	"github.com/user/bus-explorer-tui/pkg/core"
	"github.com/user/bus-explorer-tui/pkg/models"
	"github.com/user/bus-explorer-tui/pkg/tree"
)

// App is the root Bubble Tea model. All pipeline state lives in the core
// and is mutated exclusively inside Update; commands only produce
// messages. The heavy initial load runs as a deferred command from Init
// and hands its results back in a single message, so the UI is
// interactive immediately and never shows a half-populated cache.
type App struct {
	core *core.Core
	cfg  config.Config
	keys KeyMap

	catalogPath string
	logPath     string
	demo        bool

	width  int
	height int

	focusedPane       string // "tree" or "logs"
	activeModalName   string
	previousModalName string

	treeView  *TreeView
	logPanel  *LogPanel
	filters   *FiltersView
	prompt    Prompt
	timeForm  TimeFilterForm
	detail    DetailModal
	helpModal *HelpModal
	toasts    *ToastDisplay
	scheduler *TailScheduler
	exporter  *Exporter
	clipboard *Clipboard

	projection   core.Projection
	loading      bool
	truncNote    string
	vimMode      bool
	exportCursor int
	exportFormat string
	ruleTarget   string
}

// sourcesLoadedMsg carries the results of the deferred catalog and log
// load. Partial outcomes are normal: a missing catalog still allows log
// browsing with unresolved names, and vice versa.
type sourcesLoadedMsg struct {
	catalog    *models.Catalog
	snapshot   *core.Snapshot
	catalogErr error
	sourceErr  error
}

type tailTickMsg struct {
	at time.Time
}

type clipboardResultMsg struct {
	what  string
	osc52 bool
}

type exportResultMsg struct {
	path string
	err  error
}

var exportFormats = []struct {
	key   string
	label string
}{
	{"csv", "CSV"},
	{"json", "JSON"},
	{"jsonl", "JSONL"},
	{"text", "Text (pipe layout)"},
}

// NewApp wires the UI around an already constructed core.
func NewApp(c *core.Core, cfg config.Config, catalogPath, logPath string, demo bool) *App {
	keys := DefaultKeyMap()
	if cfg.VimMode {
		keys.EnableVimKeys()
	}

	selection := c.Selection()
	history := c.History()

	app := &App{
		core:              c,
		cfg:               cfg,
		keys:              keys,
		catalogPath:       catalogPath,
		logPath:           logPath,
		demo:              demo,
		width:             120,
		height:            40,
		focusedPane:       "tree",
		activeModalName:   "none",
		previousModalName: "none",
		logPanel:          NewLogPanel(30),
		prompt:            NewPrompt(),
		timeForm:          NewTimeFilterForm(),
		helpModal:         NewHelpModal(),
		toasts:            NewToastDisplay(),
		scheduler:         NewTailScheduler(cfg.PollInterval(), cfg.IdleWindow()),
		exporter:          NewExporter(),
		clipboard:         NewClipboard(),
		vimMode:           cfg.VimMode,
		loading:           true,
	}
	app.treeView = NewTreeView(30, selection.Has, history.Latest)
	app.filters = NewFiltersView(c.Filters(), selection.FilterActive, selection.Has)
	return app
}

// Init kicks off the deferred source load and the first tail tick.
func (a *App) Init() tea.Cmd {
	return tea.Batch(a.loadSourcesCmd(), a.scheduler.TickCmd())
}

// loadSourcesCmd loads catalog and log off the event loop. The closure
// captures plain values only; results come back as one message.
func (a *App) loadSourcesCmd() tea.Cmd {
	catalogPath := a.catalogPath
	logPath := a.logPath
	window := a.core.TimeWindow()
	demo := a.demo

	return func() tea.Msg {
		if demo {
			cat := DemoCatalog()
			return sourcesLoadedMsg{catalog: cat, snapshot: DemoSnapshot(cat)}
		}

		var msg sourcesLoadedMsg
		if catalogPath != "" {
			msg.catalog, msg.catalogErr = catalog.Load(catalogPath)
		}
		if logPath != "" {
			msg.snapshot, msg.sourceErr = core.LoadSource(logPath, window, msg.catalog)
		}
		return msg
	}
}

// Update handles events and state mutations.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		return a, nil

	case sourcesLoadedMsg:
		a.loading = false
		if msg.catalogErr != nil {
			a.toasts.AddError(fmt.Sprintf("Catalog load failed: %v (r retries)", msg.catalogErr), 10*time.Second)
		}
		if msg.catalog != nil {
			a.core.SetCatalog(msg.catalog)
			a.core.Filters().Annotate = msg.catalog.GroupName
			a.treeView.SetTrees(
				catalog.BuildGroupTree(msg.catalog),
				catalog.BuildTopologyTree(msg.catalog),
				catalog.BuildBuildingTree(msg.catalog),
			)
		}
		if msg.sourceErr != nil {
			a.toasts.AddError(fmt.Sprintf("Source load failed: %v (r retries)", msg.sourceErr), 10*time.Second)
		}
		if msg.snapshot != nil {
			a.core.Commit(msg.snapshot)
			if a.core.Tailing() {
				if !a.scheduler.IsEnabled() {
					_ = a.scheduler.Enable()
				}
			} else if a.scheduler.IsEnabled() {
				_ = a.scheduler.Disable()
			}
		}
		a.refreshProjection()
		return a, nil

	case tailTickMsg:
		tick := a.scheduler.TickCmd()
		if !a.scheduler.ShouldPoll() || !a.core.Tailing() {
			return a, tick
		}
		before := a.core.Len()
		changed, err := a.core.Poll()
		a.scheduler.MarkPolled()
		if err != nil {
			a.toasts.AddError(fmt.Sprintf("Tail failed: %v (r reloads)", err), 10*time.Second)
		}
		if changed {
			a.scheduler.IncrementNewRecordCount(maxInt(0, a.core.Len()-before))
			a.refreshProjection()
		}
		return a, tick

	case clipboardResultMsg:
		note := fmt.Sprintf("Copied %s to clipboard", msg.what)
		if msg.osc52 {
			note = fmt.Sprintf("Copied %s via OSC 52", msg.what)
		}
		a.toasts.AddInfo(note, 4*time.Second)
		return a, nil

	case exportResultMsg:
		if msg.err != nil {
			a.toasts.AddError(fmt.Sprintf("Export failed: %v", msg.err), 10*time.Second)
		} else {
			a.toasts.AddInfo(fmt.Sprintf("Exported to %s", msg.path), 6*time.Second)
		}
		return a, nil

	case tea.KeyMsg:
		return a.handleKeyPress(msg)
	}

	// Everything else (cursor blink and friends) belongs to the focused
	// text input, if any.
	switch a.activeModalName {
	case "prompt":
		return a, a.prompt.Update(msg)
	case "time":
		return a, a.timeForm.Update(msg)
	}
	return a, nil
}

// refreshProjection re-runs the filter pipeline and hands the rows to the
// log panel. The truncation note sticks around while the projection stays
// capped and clears as soon as it fits again.
func (a *App) refreshProjection() {
	a.projection = a.core.Project()
	a.logPanel.SetRows(a.projection.Rows)
	if a.projection.FirstWarn {
		a.truncNote = fmt.Sprintf("showing newest %d of %d matching telegrams", len(a.projection.Rows), a.projection.Matched)
	}
	if !a.projection.Truncated {
		a.truncNote = ""
	}
}

func (a *App) openModal(name string) {
	a.previousModalName = a.activeModalName
	a.activeModalName = name
}

func (a *App) closeModal() {
	a.activeModalName = a.previousModalName
	a.previousModalName = "none"
}

func (a *App) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		a.persistOnExit()
		return a, tea.Quit
	}

	a.scheduler.MarkInteraction()
	a.scheduler.ResetNewRecordCount()

	switch a.activeModalName {
	case "help":
		return a.handleHelpModalKeys(msg)
	case "detail":
		return a.handleDetailModalKeys(msg)
	case "prompt":
		return a.handlePromptKeys(msg)
	case "time":
		return a.handleTimeFilterKeys(msg)
	case "filters":
		return a.handleFiltersModalKeys(msg)
	case "export":
		return a.handleExportModalKeys(msg)
	}
	return a.handleMainKeys(msg)
}

func (a *App) handleMainKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	treeFocused := a.focusedPane == "tree"

	switch {
	case key.Matches(msg, a.keys.Quit):
		a.persistOnExit()
		return a, tea.Quit

	case key.Matches(msg, a.keys.Help):
		a.helpModal.SetVisible(true)
		a.openModal("help")

	case key.Matches(msg, a.keys.SwitchFocus):
		if treeFocused {
			a.focusedPane = "logs"
		} else {
			a.focusedPane = "tree"
		}

	case key.Matches(msg, a.keys.TabFunctions):
		a.treeView.SetTab(tabFunctions)
		a.focusedPane = "tree"
	case key.Matches(msg, a.keys.TabTopology):
		a.treeView.SetTab(tabTopology)
		a.focusedPane = "tree"
	case key.Matches(msg, a.keys.TabBuilding):
		a.treeView.SetTab(tabBuilding)
		a.focusedPane = "tree"

	case key.Matches(msg, a.keys.Up):
		if treeFocused {
			a.treeView.CursorUp()
		} else {
			a.logPanel.CursorUp()
		}
	case key.Matches(msg, a.keys.Down):
		if treeFocused {
			a.treeView.CursorDown()
		} else {
			a.logPanel.CursorDown()
		}
	case key.Matches(msg, a.keys.PageUp):
		if treeFocused {
			a.treeView.PageUp()
		} else {
			a.logPanel.PageUp()
		}
	case key.Matches(msg, a.keys.PageDown):
		if treeFocused {
			a.treeView.PageDown()
		} else {
			a.logPanel.PageDown()
		}
	case key.Matches(msg, a.keys.Top):
		if treeFocused {
			a.treeView.JumpToTop()
		} else {
			a.logPanel.JumpToTop()
		}
	case key.Matches(msg, a.keys.Bottom):
		if treeFocused {
			a.treeView.JumpToBottom()
		} else {
			a.logPanel.JumpToBottom()
		}

	case key.Matches(msg, a.keys.Expand):
		if treeFocused {
			a.treeView.Expand()
		}
	case key.Matches(msg, a.keys.Collapse):
		if treeFocused {
			a.treeView.Collapse()
		}

	case key.Matches(msg, a.keys.ToggleSelect):
		if treeFocused {
			a.toggleSelectedNode()
		}

	case key.Matches(msg, a.keys.ClearSelect):
		a.core.ClearSelection()
		a.refreshProjection()

	case key.Matches(msg, a.keys.TreeFilter):
		if treeFocused {
			title := "FILTER " + strings.ToUpper(treeTabNames[a.treeView.ActiveTab()]) + " TREE"
			a.openModal("prompt")
			return a, a.prompt.Open(title, promptTreeFilter, "Substring, empty clears | Enter apply | Esc cancel", a.treeView.Query())
		}

	case key.Matches(msg, a.keys.GlobalFilter):
		a.openModal("prompt")
		return a, a.prompt.Open("SEARCH TELEGRAMS", promptGlobalFilter, "Case-insensitive regex, empty clears | Enter apply | Esc cancel", a.core.GlobalPattern())

	case key.Matches(msg, a.keys.TimeFilter):
		if a.demo {
			a.toasts.AddInfo("Time filter is not available with demo data", 4*time.Second)
			return a, nil
		}
		a.openModal("time")
		return a, a.timeForm.Open(a.core.TimeWindow())

	case key.Matches(msg, a.keys.NamedFilters):
		a.filters.Reset()
		a.openModal("filters")

	case key.Matches(msg, a.keys.Detail):
		if treeFocused {
			node := a.treeView.SelectedNode()
			if node == nil {
				return a, nil
			}
			if node.Kind == tree.KindBranch {
				a.treeView.ToggleExpand()
			} else {
				a.toggleSelectedNode()
			}
			return a, nil
		}
		rec := a.logPanel.GetSelectedRecord()
		if rec == nil {
			return a, nil
		}
		a.detail.Open(rec, a.core.History().Latest([]string{rec.Dest}, 3))
		a.openModal("detail")

	case key.Matches(msg, a.keys.CopyRow):
		rec := a.logPanel.GetSelectedRecord()
		if rec == nil {
			return a, nil
		}
		text, err := a.clipboard.FormatRecord(rec, "line")
		if err != nil {
			a.toasts.AddError(err.Error(), 6*time.Second)
			return a, nil
		}
		return a, copyCmd(text, "telegram")

	case key.Matches(msg, a.keys.CopyVisible):
		text, err := a.clipboard.FormatRecords(a.logPanel.Rows(), "line")
		if err != nil {
			a.toasts.AddError(err.Error(), 6*time.Second)
			return a, nil
		}
		return a, copyCmd(text, fmt.Sprintf("%d rows", a.logPanel.GetRowCount()))

	case key.Matches(msg, a.keys.Export):
		if a.logPanel.GetRowCount() == 0 {
			a.toasts.AddError("Nothing to export", 6*time.Second)
			return a, nil
		}
		a.exportCursor = 0
		a.openModal("export")

	case key.Matches(msg, a.keys.Reload):
		if a.demo {
			a.toasts.AddInfo("Demo data has nothing to reload", 4*time.Second)
			return a, nil
		}
		a.loading = true
		return a, a.loadSourcesCmd()

	case key.Matches(msg, a.keys.ToggleTailing):
		if a.demo || a.core.Archive() {
			a.toasts.AddInfo("Static sources are never tailed", 4*time.Second)
			return a, nil
		}
		if a.scheduler.Toggle() {
			a.toasts.AddInfo("Tailing resumed", 4*time.Second)
		} else {
			a.toasts.AddInfo("Tailing paused", 4*time.Second)
		}

	case key.Matches(msg, a.keys.Cancel):
		if treeFocused && a.treeView.Query() != "" {
			a.treeView.ClearQuery()
			return a, nil
		}
		if a.core.GlobalPattern() != "" {
			_ = a.core.SetGlobalPattern("")
			a.refreshProjection()
		}

	default:
		if msg.String() == "f6" {
			a.vimMode = !a.vimMode
			a.keys = DefaultKeyMap()
			if a.vimMode {
				a.keys.EnableVimKeys()
			}
		}
	}
	return a, nil
}

func (a *App) toggleSelectedNode() {
	node := a.treeView.SelectedNode()
	if node == nil {
		return
	}
	keys := node.Keys()
	if len(keys) == 0 {
		return
	}
	if a.core.ToggleNode(keys) {
		a.refreshProjection()
	}
}

func (a *App) handleHelpModalKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "q", "?":
		a.helpModal.SetVisible(false)
		a.closeModal()
	}
	return a, nil
}

func (a *App) handleDetailModalKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "q", "enter":
		a.detail.Close()
		a.closeModal()
	case "c":
		if rec := a.detail.Record(); rec != nil {
			if text, err := a.clipboard.FormatRecord(rec, "line"); err == nil {
				return a, copyCmd(text, "telegram")
			}
		}
	case "j":
		if rec := a.detail.Record(); rec != nil {
			if text, err := a.clipboard.FormatRecord(rec, "json"); err == nil {
				return a, copyCmd(text, "telegram JSON")
			}
		}
	}
	return a, nil
}

func (a *App) handlePromptKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		a.prompt.Close()
		a.closeModal()
		return a, nil
	case "enter":
		return a.applyPrompt()
	}
	return a, a.prompt.Update(msg)
}

func (a *App) applyPrompt() (tea.Model, tea.Cmd) {
	value := a.prompt.Value()

	switch a.prompt.Purpose() {
	case promptGlobalFilter:
		if err := a.core.SetGlobalPattern(value); err != nil {
			a.prompt.SetError(err.Error())
			return a, nil
		}
		a.refreshProjection()

	case promptTreeFilter:
		if value == "" {
			a.treeView.ClearQuery()
		} else {
			a.treeView.SetQuery(value)
		}

	case promptFilterName:
		if value == "" {
			a.prompt.SetError("filter name required")
			return a, nil
		}
		if err := a.core.SaveSelectionAsFilter(value); err != nil {
			a.prompt.SetError(err.Error())
			return a, nil
		}
		a.toasts.AddInfo(fmt.Sprintf("Saved selection as %q", value), 4*time.Second)
		a.filters.Reset()

	case promptFilterRule:
		if value == "" {
			a.prompt.SetError("rule required")
			return a, nil
		}
		if err := a.core.Filters().AddRule(a.ruleTarget, value); err != nil {
			a.prompt.SetError(err.Error())
			return a, nil
		}
		a.core.NoteFilterRulesChanged()
		a.toasts.AddInfo(fmt.Sprintf("Added rule to %q", a.ruleTarget), 4*time.Second)
		a.filters.Reset()
		a.refreshProjection()

	case promptExportPath:
		path := value
		if path == "" {
			path = a.exporter.GetDefaultFileName(a.exportFormat)
		}
		a.prompt.Close()
		a.closeModal()
		return a, a.exportCmd(a.exportFormat, path)
	}

	a.prompt.Close()
	a.closeModal()
	return a, nil
}

func (a *App) handleTimeFilterKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		a.timeForm.Close()
		a.closeModal()
		return a, nil
	case "tab":
		return a, a.timeForm.ToggleField()
	case "ctrl+d":
		a.timeForm.ClearFields()
		return a, nil
	case "enter":
		window, err := a.timeForm.Window()
		if err != nil {
			a.timeForm.SetError(err.Error())
			return a, nil
		}
		a.timeForm.Close()
		a.closeModal()
		if err := a.core.SetTimeWindow(window); err != nil {
			a.toasts.AddError(fmt.Sprintf("Reload with time filter failed: %v", err), 10*time.Second)
		}
		a.refreshProjection()
		return a, nil
	}
	return a, a.timeForm.Update(msg)
}

func (a *App) handleFiltersModalKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "q":
		a.closeModal()
	case "tab":
		a.filters.SwitchPane()
	case "up", "k":
		a.filters.CursorUp()
	case "down", "j":
		a.filters.CursorDown()
	case " ", "enter":
		if a.filters.Pane() != 0 {
			return a, nil
		}
		if name := a.filters.SelectedFilter(); name != "" {
			a.core.ToggleFilter(name)
			a.refreshProjection()
		}
	case "n":
		if a.core.Selection().Count() == 0 {
			a.toasts.AddError("Selection is empty; pick tree nodes first", 6*time.Second)
			return a, nil
		}
		a.openModal("prompt")
		return a, a.prompt.Open("SAVE SELECTION AS FILTER", promptFilterName, "Filter name | Enter save | Esc cancel", "")
	case "a":
		name := a.filters.SelectedFilter()
		if name == "" {
			return a, nil
		}
		a.ruleTarget = name
		a.openModal("prompt")
		return a, a.prompt.Open("ADD RULE TO "+strings.ToUpper(name), promptFilterRule, "Exact key (1/2/3) or regex | Enter add | Esc cancel", "")
	case "d":
		if a.filters.Pane() == 1 {
			name := a.filters.SelectedFilter()
			rule, ok := a.filters.SelectedRule()
			if !ok {
				return a, nil
			}
			if err := a.core.Filters().RemoveRule(name, rule); err != nil {
				a.toasts.AddError(fmt.Sprintf("Remove rule failed: %v", err), 8*time.Second)
				return a, nil
			}
			a.core.NoteFilterRulesChanged()
			a.filters.Reset()
			a.refreshProjection()
			return a, nil
		}
		name := a.filters.SelectedFilter()
		if name == "" {
			return a, nil
		}
		if err := a.core.DeleteFilter(name); err != nil {
			a.toasts.AddError(fmt.Sprintf("Delete failed: %v", err), 8*time.Second)
			return a, nil
		}
		a.toasts.AddInfo(fmt.Sprintf("Deleted filter %q", name), 4*time.Second)
		a.filters.Reset()
		a.refreshProjection()
	}
	return a, nil
}

func (a *App) handleExportModalKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "q":
		a.closeModal()
	case "up", "k":
		if a.exportCursor > 0 {
			a.exportCursor--
		}
	case "down", "j":
		if a.exportCursor < len(exportFormats)-1 {
			a.exportCursor++
		}
	case "1", "2", "3", "4":
		a.exportCursor = int(msg.String()[0] - '1')
		return a.openExportPathPrompt()
	case "enter":
		return a.openExportPathPrompt()
	}
	return a, nil
}

func (a *App) openExportPathPrompt() (tea.Model, tea.Cmd) {
	a.exportFormat = exportFormats[a.exportCursor].key
	a.activeModalName = "none"
	a.previousModalName = "none"
	a.openModal("prompt")
	return a, a.prompt.Open("EXPORT PATH", promptExportPath, "Enter write | Esc cancel", a.exporter.GetDefaultFileName(a.exportFormat))
}

// exportCmd writes the visible rows off the event loop. The row slice is
// never mutated after projection, so reading it from the command is safe.
func (a *App) exportCmd(format, path string) tea.Cmd {
	rows := a.logPanel.Rows()
	exporter := a.exporter
	return func() tea.Msg {
		err := exporter.Export(rows, format, path)
		return exportResultMsg{path: path, err: err}
	}
}

func (a *App) persistOnExit() {
	a.cfg.VimMode = a.vimMode
	_ = config.SaveConfig(a.cfg)

	if a.demo {
		return
	}
	state := config.State{
		LastCatalogPath: a.catalogPath,
		LastLogPath:     a.logPath,
	}
	window := a.core.TimeWindow()
	if window.Start != nil {
		state.TimeFilterStart = window.Start.String()
	}
	if window.End != nil {
		state.TimeFilterEnd = window.End.String()
	}
	_ = config.SaveState(state)
}

func (a *App) layoutSizes() (treeWidth, logsWidth, paneBody int) {
	treeWidth = maxInt(32, a.width*2/5)
	if a.width-treeWidth < 40 {
		treeWidth = maxInt(20, a.width/2)
	}
	logsWidth = maxInt(20, a.width-treeWidth)

	overhead := 3 // top bar, status line, footer
	if a.toasts.HasMessages() {
		overhead += 3
	}
	paneBody = maxInt(6, a.height-overhead-2)
	return treeWidth, logsWidth, paneBody
}

// View renders the full frame: top bar, tree and log panes side by side,
// status line, optional toast, footer, and the active modal on top.
func (a *App) View() string {
	treeWidth, logsWidth, paneBody := a.layoutSizes()
	a.treeView.SetViewportHeight(paneBody)
	a.logPanel.SetViewportHeight(paneBody)

	treeFocused := a.focusedPane == "tree"

	treePane := renderVerticalSplit(
		renderPaneTitle("CATALOG", treeWidth, treeFocused),
		a.treeView.RenderTabs(treeWidth),
		a.treeView.Render(treeWidth, treeFocused),
	)
	treePane = lipgloss.NewStyle().Width(treeWidth).Render(treePane)

	logsTitle := fmt.Sprintf("TELEGRAMS (%d)", a.logPanel.GetRowCount())
	logsPane := renderVerticalSplit(
		renderPaneTitle(logsTitle, logsWidth, !treeFocused),
		a.logPanel.RenderHeader(logsWidth),
		a.logPanel.Render(logsWidth, !treeFocused),
	)

	sections := []string{
		a.renderTopBar(),
		renderHorizontalSplit(treePane, logsPane),
		a.renderStatusLine(),
	}
	if a.toasts.HasMessages() {
		sections = append(sections, a.toasts.RenderToast(a.width))
	}
	sections = append(sections, a.renderFooter())
	base := renderVerticalSplit(sections...)

	switch a.activeModalName {
	case "help":
		return renderPopupOver(base, a.helpModal.Render(a.width, a.height, a.keys), a.width, a.height)
	case "detail":
		return renderPopupOver(base, a.detail.Render(a.width), a.width, a.height)
	case "prompt":
		return renderPopupOver(base, a.prompt.Render(a.width), a.width, a.height)
	case "time":
		return renderPopupOver(base, a.timeForm.Render(a.width), a.width, a.height)
	case "filters":
		return renderPopupOver(base, a.filters.Render(a.width), a.width, a.height)
	case "export":
		return renderPopupOver(base, a.renderExportModal(), a.width, a.height)
	}
	return base
}

func (a *App) renderTopBar() string {
	left := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("255")).Background(lipgloss.Color("27")).Padding(0, 1).Render("Bus Explorer")

	rightText := a.core.Path()
	if a.demo {
		rightText = "demo data"
	}
	if rightText == "" {
		rightText = "no source"
	}
	if format := a.core.Format(); format != models.FormatUnknown {
		rightText += "  " + format.String()
	}
	right := lipgloss.NewStyle().Foreground(lipgloss.Color("230")).Background(lipgloss.Color("31")).Padding(0, 1).Render(rightText)

	fill := maxInt(0, a.width-lipgloss.Width(left)-lipgloss.Width(right))
	return left + strings.Repeat(" ", fill) + right
}

func (a *App) tailStateLabel() string {
	switch {
	case a.demo:
		return "demo"
	case a.core.Archive():
		return "static archive"
	case !a.core.Tailing():
		return "tailing disabled"
	case !a.scheduler.IsEnabled():
		return "tail paused"
	case a.scheduler.IdlePaused():
		return "tail idle"
	default:
		if n := a.scheduler.GetNewRecordCount(); n > 0 {
			return fmt.Sprintf("tailing +%d", n)
		}
		return "tailing"
	}
}

func (a *App) filterSummary() []string {
	var parts []string
	if n := a.core.Selection().Count(); n > 0 {
		parts = append(parts, fmt.Sprintf("%d keys selected", n))
	}
	if active := a.core.Selection().ActiveFilters(); len(active) > 0 {
		parts = append(parts, "filters: "+strings.Join(active, ", "))
	}
	if pattern := a.core.GlobalPattern(); pattern != "" {
		parts = append(parts, fmt.Sprintf("regex: %q", pattern))
	}
	if window := a.core.TimeWindow(); window.Active() {
		parts = append(parts, "time: "+formatTimeWindow(window))
	}
	return parts
}

func formatTimeWindow(w models.TimeWindow) string {
	start, end := "*", "*"
	if w.Start != nil {
		start = w.Start.String()
	}
	if w.End != nil {
		end = w.End.String()
	}
	return start + "-" + end
}

func (a *App) renderStatusLine() string {
	start, end := a.logPanel.VisibleBounds()
	parts := []string{
		fmt.Sprintf("%d-%d/%d shown", start, end, a.logPanel.GetRowCount()),
		fmt.Sprintf("%d matched / %d cached", a.projection.Matched, a.core.Len()),
		a.tailStateLabel(),
	}
	parts = append(parts, a.filterSummary()...)
	if a.loading {
		parts = append(parts, "loading...")
	}

	line := "┃ " + strings.Join(parts, " | ")
	if a.truncNote != "" {
		line += lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Render("  ⚠ " + a.truncNote)
	}
	return line
}

func (a *App) renderFooter() string {
	var parts []string
	for _, binding := range a.keys.ShortHelp() {
		help := binding.Help()
		parts = append(parts, help.Key+" "+help.Desc)
	}
	mode := "standard"
	if a.vimMode {
		mode = "vim"
	}
	parts = append(parts, "f6 "+mode)
	return lipgloss.NewStyle().Foreground(lipgloss.Color("244")).Render("┃ " + strings.Join(parts, " | "))
}

func (a *App) renderExportModal() string {
	boxWidth := minInt(56, maxInt(40, a.width-8))

	var sb strings.Builder
	sb.WriteString(renderModalTitle("EXPORT VISIBLE ROWS", boxWidth) + "\n")
	for i, format := range exportFormats {
		prefix := "  "
		row := fmt.Sprintf("%d %s", i+1, format.label)
		if i == a.exportCursor {
			prefix = "▶ "
			row = lipgloss.NewStyle().Bold(true).Render(row)
		}
		sb.WriteString("┃ " + prefix + row + "\n")
	}
	sb.WriteString(renderModalDivider(boxWidth) + "\n")
	sb.WriteString(fmt.Sprintf("┃ %d rows will be written\n", a.logPanel.GetRowCount()))
	sb.WriteString("┃ " + lipgloss.NewStyle().Foreground(lipgloss.Color("244")).Render("j/k or 1-4 select | Enter choose file | Esc cancel"))
	return sb.String()
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
