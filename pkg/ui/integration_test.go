package ui

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/user/bus-explorer-tui/pkg/config"
	"github.com/user/bus-explorer-tui/pkg/core"
	"github.com/user/bus-explorer-tui/pkg/models"
)

const integrationCatalog = `{
  "devices": {
    "1.1.1": {"name": "Sensor A"},
    "1.1.2": {"name": "Thermostat"}
  },
  "group_addresses": {
    "1/2/3": {"name": "Temp", "dpt": {"main": 9, "sub": 1}},
    "1/2/4": {"name": "Setpoint", "dpt": {"main": 9, "sub": 1}}
  },
  "group_ranges": {
    "1": {"name": "HVAC", "group_ranges": {"1/2": {"name": "Temperatures"}}}
  },
  "communication_objects": {},
  "topology": {
    "areas": {
      "a1": {"address": 1, "name": "Backbone", "lines": {"l1": {"address": 1, "name": "Line 1"}}}
    }
  },
  "locations": {
    "b1": {"type": "Building", "name": "Office", "spaces": {
      "r1": {"type": "Room", "name": "Server Room", "devices": ["1.1.1", "1.1.2"]}
    }}
  }
}`

const integrationLog = `2024-01-01 08:15:00 | 1.1.1 | Low | 1/2/3 | GroupValueWrite | 20.1
2024-01-01 09:30:00 | 1.1.2 | Low | 1/2/4 | GroupValueWrite | 21.0
2024-01-01 10:00:00 | 1.1.1 | Low | 1/2/3 | GroupValueWrite | 21.5
this line is not a telegram
`

func pressKeys(t *testing.T, app *App, keys ...string) *App {
	t.Helper()
	for _, k := range keys {
		model, _ := app.Update(createKeyMessage(k))
		app = model.(*App)
	}
	return app
}

func typeText(t *testing.T, app *App, text string) *App {
	t.Helper()
	for _, r := range text {
		model, _ := app.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
		app = model.(*App)
	}
	return app
}

// TestIntegrationFullWorkflow walks the complete user workflow over real
// files: source loading with enrichment, tree selection, the global regex
// gate, named filters, tailing, the time-of-day window and export.
func TestIntegrationFullWorkflow(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	dir := t.TempDir()

	// STEP 1: Write the fixtures
	t.Log("STEP 1: Write catalog and log fixtures")
	catalogPath := filepath.Join(dir, "project.json")
	logPath := filepath.Join(dir, "bus.log")
	filtersPath := filepath.Join(dir, "filters.yaml")
	if err := os.WriteFile(catalogPath, []byte(integrationCatalog), 0600); err != nil {
		t.Fatalf("write catalog: %v", err)
	}
	if err := os.WriteFile(logPath, []byte(integrationLog), 0600); err != nil {
		t.Fatalf("write log: %v", err)
	}
	t.Log("✓ Fixtures written")

	// STEP 2: Boot the app and load both sources
	t.Log("\nSTEP 2: Boot the app and load both sources")
	cfg := config.DefaultConfig()
	filters := config.NewFilterStore(filtersPath)
	c := core.NewCore(nil, filters, cfg.MaxCacheSize, cfg.MaxRenderLines)
	app := NewApp(c, cfg, catalogPath, logPath, false)

	model, _ := app.Update(app.loadSourcesCmd()())
	app = model.(*App)

	if app.core.Len() != 3 {
		t.Fatalf("Expected 3 parsed records (1 malformed line skipped), got %d", app.core.Len())
	}
	if app.core.Format() != models.FormatPipe {
		t.Fatalf("Expected pipe format detected, got %v", app.core.Format())
	}
	if !app.core.Tailing() || !app.scheduler.IsEnabled() {
		t.Error("Expected a plain log file to tail")
	}
	rec := app.logPanel.GetSelectedRecord()
	if rec == nil {
		t.Fatal("Expected the newest record under the log cursor")
	}
	if rec.SourceName != "Sensor A" || rec.DestName != "Temp" {
		t.Errorf("Expected enriched names Sensor A / Temp, got %q / %q", rec.SourceName, rec.DestName)
	}
	if node := app.treeView.SelectedNode(); node == nil || !strings.Contains(node.Label, "HVAC") {
		t.Errorf("Expected group tree rooted at the HVAC main group, got %v", node)
	}
	t.Log("✓ Sources loaded and enriched")

	// STEP 3: Select one group address in the tree
	t.Log("\nSTEP 3: Select the Temp group address in the tree")
	app = pressKeys(t, app, "down", "enter", "down", "space")
	if !app.core.Selection().Has("1/2/3") {
		t.Fatalf("Expected key 1/2/3 selected, selection has %v", app.core.Selection().Keys())
	}
	if app.projection.Matched != 2 {
		t.Fatalf("Expected 2 telegrams for 1/2/3, got %d matched", app.projection.Matched)
	}
	for _, row := range app.logPanel.Rows() {
		if row.Dest != "1/2/3" {
			t.Errorf("Expected only 1/2/3 rows, found %s", row.Dest)
		}
	}
	t.Log("✓ Selection narrows the telegram list")

	// STEP 4: Gate the result with the global regex
	t.Log("\nSTEP 4: Apply and clear the global regex gate")
	app = pressKeys(t, app, "/")
	app = typeText(t, app, "21.5")
	app = pressKeys(t, app, "enter")
	if app.projection.Matched != 1 {
		t.Errorf("Expected the regex to cut the list to 1 row, got %d", app.projection.Matched)
	}
	app = pressKeys(t, app, "esc")
	if app.core.GlobalPattern() != "" {
		t.Errorf("Expected esc to clear the pattern, got %q", app.core.GlobalPattern())
	}
	if app.projection.Matched != 2 {
		t.Errorf("Expected 2 rows after clearing the regex, got %d", app.projection.Matched)
	}
	t.Log("✓ Global regex gates and clears")

	// STEP 5: Save the selection as a named filter and activate it
	t.Log("\nSTEP 5: Save the selection as a named filter")
	app = pressKeys(t, app, "n", "n")
	app = typeText(t, app, "temps")
	app = pressKeys(t, app, "enter")
	if app.core.Filters().Len() != 1 {
		t.Fatalf("Expected 1 stored filter, got %d", app.core.Filters().Len())
	}
	stored, err := os.ReadFile(filtersPath)
	if err != nil {
		t.Fatalf("read filter store: %v", err)
	}
	if !strings.Contains(string(stored), "temps:") {
		t.Error("Expected filter name in the store file")
	}
	if !strings.Contains(string(stored), "- 1/2/3 # Temp") {
		t.Errorf("Expected annotated exact-key rule, store holds:\n%s", stored)
	}

	app = pressKeys(t, app, "space", "esc", "u")
	if !app.core.Selection().FilterActive("temps") {
		t.Error("Expected the temps filter active")
	}
	if app.core.Selection().Count() != 0 {
		t.Errorf("Expected manual selection cleared, got %d keys", app.core.Selection().Count())
	}
	if app.projection.Matched != 2 {
		t.Errorf("Expected the active filter to keep matching 2 rows, got %d", app.projection.Matched)
	}
	t.Log("✓ Named filter saved, annotated and active")

	// STEP 6: Grow the log and poll
	t.Log("\nSTEP 6: Append telegrams and poll the tail")
	f, err := os.OpenFile(logPath, os.O_APPEND|os.O_WRONLY, 0600)
	if err != nil {
		t.Fatalf("open log for append: %v", err)
	}
	_, err = f.WriteString("2024-01-01 10:05:00 | 1.1.2 | Low | 1/2/3 | GroupValueWrite | 22.0\n" +
		"2024-01-01 23:59:00 | 1.1.1 | Low | 1/2/4 | GroupValueWrite | 19.5\n")
	f.Close()
	if err != nil {
		t.Fatalf("append to log: %v", err)
	}

	model, cmd := app.Update(tailTickMsg{at: time.Now()})
	app = model.(*App)
	if cmd == nil {
		t.Error("Expected the tick re-armed")
	}
	if app.core.Len() != 5 {
		t.Fatalf("Expected 5 records after polling, got %d", app.core.Len())
	}
	if app.scheduler.GetNewRecordCount() != 2 {
		t.Errorf("Expected 2 new records counted, got %d", app.scheduler.GetNewRecordCount())
	}
	if app.projection.Matched != 3 {
		t.Errorf("Expected 3 rows for the active filter after the append, got %d", app.projection.Matched)
	}
	t.Log("✓ Tail poll appended the new telegrams")

	// STEP 7: Restrict to a time-of-day window
	t.Log("\nSTEP 7: Apply a 09:00-11:00 time window")
	app = pressKeys(t, app, "t")
	if app.activeModalName != "time" {
		t.Fatalf("Expected time filter modal, got %q", app.activeModalName)
	}
	app = typeText(t, app, "09:00")
	app = pressKeys(t, app, "tab")
	app = typeText(t, app, "11:00")
	app = pressKeys(t, app, "enter")

	if !app.core.TimeWindow().Active() {
		t.Fatal("Expected an active time window")
	}
	if app.core.Len() != 3 {
		t.Errorf("Expected 3 records inside the window after reload, got %d", app.core.Len())
	}
	if app.projection.Matched != 2 {
		t.Errorf("Expected 2 filtered rows inside the window, got %d", app.projection.Matched)
	}
	t.Log("✓ Time window reloaded the source")

	// STEP 8: Export the visible rows
	t.Log("\nSTEP 8: Export the visible rows as CSV")
	exportPath := filepath.Join(dir, "out.csv")
	app = pressKeys(t, app, "e", "enter")
	if app.prompt.Purpose() != promptExportPath {
		t.Fatalf("Expected export path prompt, got %q", app.prompt.Purpose())
	}
	app.prompt.input.SetValue(exportPath)
	model, cmd = app.Update(createKeyMessage("enter"))
	app = model.(*App)
	if cmd == nil {
		t.Fatal("Expected an export command")
	}
	if result := cmd(); result.(exportResultMsg).err != nil {
		t.Fatalf("Export failed: %v", result.(exportResultMsg).err)
	}
	exported, err := os.ReadFile(exportPath)
	if err != nil {
		t.Fatalf("read export: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(exported)), "\n")
	if len(lines) != 3 {
		t.Fatalf("Expected header plus 2 rows, got %d lines", len(lines))
	}
	if !strings.HasPrefix(lines[0], "Timestamp,Source") {
		t.Errorf("Expected CSV header, got %q", lines[0])
	}
	if !strings.Contains(lines[1], "1/2/3") {
		t.Errorf("Expected exported rows for 1/2/3, got %q", lines[1])
	}
	t.Log("✓ Export written")

	// STEP 9: Quit persists the session state
	t.Log("\nSTEP 9: Quit and persist session state")
	_, cmd = app.Update(createKeyMessage("q"))
	if cmd == nil {
		t.Fatal("Expected q to quit")
	}
	statePath := filepath.Join(os.Getenv("XDG_CONFIG_HOME"), "bus-explorer-tui", "state.json")
	saved, err := os.ReadFile(statePath)
	if err != nil {
		t.Fatalf("read state: %v", err)
	}
	if !strings.Contains(string(saved), "bus.log") {
		t.Error("Expected last log path in the saved state")
	}
	if !strings.Contains(string(saved), "09:00") {
		t.Error("Expected the time window in the saved state")
	}
	t.Log("✓ Session state saved")
}
