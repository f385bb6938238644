package core

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/klauspost/compress/zip"

	"github.com/user/bus-explorer-tui/pkg/config"
	"github.com/user/bus-explorer-tui/pkg/logfile"
	"github.com/user/bus-explorer-tui/pkg/models"
)

func testCatalog() *models.Catalog {
	return &models.Catalog{
		Devices: map[string]models.Device{
			"1.1.1": {Name: "Sensor A"},
		},
		GroupAddresses: map[string]models.GroupAddress{
			"1/2/3": {Name: "Temp"},
			"2/0/1": {Name: "Light"},
		},
	}
}

func pipeLine(clock, source, dest, payload string) string {
	return fmt.Sprintf("2024-01-01 %s.000 | %s | x | %s | y | %s", clock, source, dest, payload)
}

func writeLog(t *testing.T, lines ...string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "bus.log")
	content := strings.Join(lines, "\n") + "\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("writing log fixture: %v", err)
	}
	return path
}

func appendLog(t *testing.T, path string, lines ...string) {
	t.Helper()
	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		t.Fatalf("opening log for append: %v", err)
	}
	defer f.Close()
	if _, err := f.WriteString(strings.Join(lines, "\n") + "\n"); err != nil {
		t.Fatalf("appending log fixture: %v", err)
	}
}

func newTestCore(t *testing.T, maxCache, maxRender int) *Core {
	t.Helper()
	store := config.NewFilterStore(filepath.Join(t.TempDir(), config.FiltersFileName))
	if err := store.Load(); err != nil {
		t.Fatalf("loading filter store: %v", err)
	}
	return NewCore(testCatalog(), store, maxCache, maxRender)
}

func openCore(t *testing.T, c *Core, path string) {
	t.Helper()
	snap, err := LoadSource(path, c.TimeWindow(), c.Catalog())
	if err != nil {
		t.Fatalf("LoadSource failed: %v", err)
	}
	c.Commit(snap)
}

func payloads(recs []models.LogRecord) []string {
	out := make([]string, len(recs))
	for i, r := range recs {
		out[i] = r.Payload
	}
	return out
}

func TestEndToEndEnrichSelectProject(t *testing.T) {
	path := writeLog(t,
		pipeLine("10:00:00", "1.1.1", "1/2/3", "21.5"),
		pipeLine("10:00:01", "1.1.1", "2/0/1", "on"),
	)
	c := newTestCore(t, 0, 0)
	openCore(t, c, path)

	if c.Len() != 2 {
		t.Fatalf("Expected 2 records, got %d", c.Len())
	}

	first := c.Project().Rows[0]
	if first.SourceName != "Sensor A" {
		t.Errorf("Expected SourceName 'Sensor A', got %s", first.SourceName)
	}
	if first.DestName != "Temp" {
		t.Errorf("Expected DestName 'Temp', got %s", first.DestName)
	}
	if first.Payload != "21.5" {
		t.Errorf("Expected payload '21.5', got %s", first.Payload)
	}

	// Selecting the key that owns 1/2/3 narrows the projection to exactly
	// that record.
	c.ToggleNode([]string{"1/2/3"})
	proj := c.Project()
	if len(proj.Rows) != 1 || proj.Rows[0].Dest != "1/2/3" {
		t.Fatalf("Expected only the 1/2/3 record, got %v", proj.Rows)
	}

	c.ToggleNode([]string{"1/2/3"})
	if got := len(c.Project().Rows); got != 2 {
		t.Errorf("Expected empty selection to show everything, got %d rows", got)
	}
}

func TestReloadIdempotent(t *testing.T) {
	path := writeLog(t,
		pipeLine("10:00:00", "1.1.1", "1/2/3", "1"),
		pipeLine("10:00:01", "1.1.1", "1/2/3", "2"),
		pipeLine("10:00:02", "1.1.1", "2/0/1", "3"),
	)
	c := newTestCore(t, 0, 0)
	openCore(t, c, path)
	first := payloads(c.Project().Rows)

	if err := c.Reload(); err != nil {
		t.Fatalf("Reload failed: %v", err)
	}
	second := payloads(c.Project().Rows)

	if len(first) != 3 || len(second) != 3 {
		t.Fatalf("Expected 3 rows both times, got %d and %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Errorf("Row %d: expected %s, got %s", i, first[i], second[i])
		}
	}
}

func TestTailEquivalence(t *testing.T) {
	chunks := [][]string{
		{pipeLine("10:00:00", "1.1.1", "1/2/3", "a"), pipeLine("10:00:01", "1.1.1", "1/2/3", "b")},
		{pipeLine("10:00:02", "1.1.1", "2/0/1", "c")},
		{pipeLine("10:00:03", "1.1.1", "1/2/3", "d"), pipeLine("10:00:04", "1.1.1", "2/0/1", "e")},
	}

	// Incremental: open on the first chunk, poll after each append.
	path := writeLog(t, chunks[0]...)
	tailed := newTestCore(t, 0, 0)
	openCore(t, tailed, path)
	for _, chunk := range chunks[1:] {
		appendLog(t, path, chunk...)
		changed, err := tailed.Poll()
		if err != nil {
			t.Fatalf("Poll failed: %v", err)
		}
		if !changed {
			t.Fatal("Expected poll to pick up appended lines")
		}
	}

	// One-shot: load the concatenation in a single pass.
	var all []string
	for _, chunk := range chunks {
		all = append(all, chunk...)
	}
	full := newTestCore(t, 0, 0)
	openCore(t, full, writeLog(t, all...))

	got := payloads(tailed.Project().Rows)
	want := payloads(full.Project().Rows)
	if len(got) != len(want) {
		t.Fatalf("Expected %d rows, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Row %d: expected %s, got %s", i, want[i], got[i])
		}
	}
}

func TestPollNoChangeIsNoOp(t *testing.T) {
	path := writeLog(t, pipeLine("10:00:00", "1.1.1", "1/2/3", "a"))
	c := newTestCore(t, 0, 0)
	openCore(t, c, path)

	changed, err := c.Poll()
	if err != nil {
		t.Fatalf("Poll failed: %v", err)
	}
	if changed {
		t.Error("Expected unchanged file to report no change")
	}
}

func TestPollTruncationReloads(t *testing.T) {
	long := make([]string, 8)
	for i := range long {
		long[i] = pipeLine(fmt.Sprintf("10:00:0%d", i), "1.1.1", "1/2/3", fmt.Sprintf("old%d", i))
	}
	path := writeLog(t, long...)
	c := newTestCore(t, 0, 0)
	openCore(t, c, path)

	// The file shrinks, so the remembered offset is past EOF.
	short := pipeLine("11:00:00", "1.1.1", "2/0/1", "fresh") + "\n"
	if err := os.WriteFile(path, []byte(short), 0o600); err != nil {
		t.Fatalf("truncating log: %v", err)
	}

	changed, err := c.Poll()
	if err != nil {
		t.Fatalf("Poll after truncation failed: %v", err)
	}
	if !changed {
		t.Fatal("Expected truncation to change the cache")
	}
	if c.Len() != 1 {
		t.Fatalf("Expected full reload with 1 record, got %d", c.Len())
	}
	if got := c.Project().Rows[0].Payload; got != "fresh" {
		t.Errorf("Expected payload 'fresh', got %s", got)
	}
	if !c.Tailing() {
		t.Error("Expected tailing to continue after truncation recovery")
	}
}

func TestPollVanishedFileDisablesTailing(t *testing.T) {
	path := writeLog(t, pipeLine("10:00:00", "1.1.1", "1/2/3", "a"))
	c := newTestCore(t, 0, 0)
	openCore(t, c, path)

	if err := os.Remove(path); err != nil {
		t.Fatalf("removing log: %v", err)
	}

	if _, err := c.Poll(); err == nil {
		t.Fatal("Expected error when the file vanished")
	}
	if c.Tailing() {
		t.Error("Expected tailing disabled after read failure")
	}
	if c.Len() != 1 {
		t.Errorf("Expected cache to survive the failure, got %d records", c.Len())
	}

	// Degraded state: further polls are silent no-ops.
	if changed, err := c.Poll(); changed || err != nil {
		t.Errorf("Expected degraded poll to be a no-op, got %v, %v", changed, err)
	}

	// Manual reload recovers once the file is back.
	if err := os.WriteFile(path, []byte(pipeLine("10:01:00", "1.1.1", "2/0/1", "back")+"\n"), 0o600); err != nil {
		t.Fatalf("recreating log: %v", err)
	}
	if err := c.Reload(); err != nil {
		t.Fatalf("Reload failed: %v", err)
	}
	if !c.Tailing() {
		t.Error("Expected tailing re-enabled after reload")
	}
}

func TestReloadFailureKeepsState(t *testing.T) {
	path := writeLog(t,
		pipeLine("10:00:00", "1.1.1", "1/2/3", "a"),
		pipeLine("10:00:01", "1.1.1", "1/2/3", "b"),
	)
	c := newTestCore(t, 0, 0)
	openCore(t, c, path)

	if err := os.Remove(path); err != nil {
		t.Fatalf("removing log: %v", err)
	}

	err := c.Reload()
	if !errors.Is(err, logfile.ErrSourceNotFound) {
		t.Fatalf("Expected ErrSourceNotFound, got %v", err)
	}
	if c.Len() != 2 {
		t.Errorf("Expected old cache intact after failed reload, got %d", c.Len())
	}
	if got := len(c.History().Latest([]string{"1/2/3"}, 3)); got != 2 {
		t.Errorf("Expected history intact after failed reload, got %d samples", got)
	}
}

func TestMalformedLineTolerance(t *testing.T) {
	lines := make([]string, 0, 100)
	for i := 0; i < 97; i++ {
		lines = append(lines, pipeLine("10:00:00", "1.1.1", "1/2/3", fmt.Sprintf("v%d", i)))
	}
	lines = append(lines, "garbage", "2024-01-01 | short", "also | not | parseable")
	path := writeLog(t, lines...)

	c := newTestCore(t, 0, 0)
	openCore(t, c, path)

	if c.Len() != 97 {
		t.Errorf("Expected 97 records from 100 lines, got %d", c.Len())
	}
}

func TestCoreEvictionBound(t *testing.T) {
	lines := make([]string, 8)
	for i := range lines {
		lines[i] = pipeLine(fmt.Sprintf("10:00:0%d", i), "1.1.1", "1/2/3", fmt.Sprintf("v%d", i))
	}
	path := writeLog(t, lines...)

	c := newTestCore(t, 5, 0)
	openCore(t, c, path)

	if c.Len() != 5 {
		t.Fatalf("Expected cache capped at 5, got %d", c.Len())
	}
	rows := c.Project().Rows
	if rows[0].Payload != "v3" || rows[len(rows)-1].Payload != "v7" {
		t.Errorf("Expected newest records v3..v7, got %v", payloads(rows))
	}
}

func TestArchiveNeverTails(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bus.zip")

	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("creating zip: %v", err)
	}
	zw := zip.NewWriter(f)
	w, err := zw.Create("export.log")
	if err != nil {
		t.Fatalf("creating zip member: %v", err)
	}
	fmt.Fprintln(w, pipeLine("10:00:00", "1.1.1", "1/2/3", "21.5"))
	if err := zw.Close(); err != nil {
		t.Fatalf("closing zip: %v", err)
	}
	f.Close()

	c := newTestCore(t, 0, 0)
	openCore(t, c, path)

	if c.Len() != 1 {
		t.Fatalf("Expected 1 record from archive, got %d", c.Len())
	}
	if !c.Archive() {
		t.Error("Expected Archive() true for zip source")
	}
	if c.Tailing() {
		t.Error("Expected archives never to tail")
	}
	if changed, err := c.Poll(); changed || err != nil {
		t.Errorf("Expected archive poll to be a no-op, got %v, %v", changed, err)
	}
}

func TestSetTimeWindowReloads(t *testing.T) {
	path := writeLog(t,
		pipeLine("08:30:00", "1.1.1", "1/2/3", "early"),
		pipeLine("12:15:00", "1.1.1", "1/2/3", "midday"),
		pipeLine("19:45:00", "1.1.1", "1/2/3", "late"),
	)
	c := newTestCore(t, 0, 0)
	openCore(t, c, path)

	start, err := models.ParseClockTime("10:00")
	if err != nil {
		t.Fatalf("ParseClockTime failed: %v", err)
	}
	end, err := models.ParseClockTime("14:00")
	if err != nil {
		t.Fatalf("ParseClockTime failed: %v", err)
	}

	if err := c.SetTimeWindow(models.TimeWindow{Start: &start, End: &end}); err != nil {
		t.Fatalf("SetTimeWindow failed: %v", err)
	}
	if c.Len() != 1 {
		t.Fatalf("Expected 1 record inside window, got %d", c.Len())
	}
	if got := c.Project().Rows[0].Payload; got != "midday" {
		t.Errorf("Expected 'midday', got %s", got)
	}

	// Clearing the window restores the full view.
	if err := c.SetTimeWindow(models.TimeWindow{}); err != nil {
		t.Fatalf("clearing window failed: %v", err)
	}
	if c.Len() != 3 {
		t.Errorf("Expected 3 records after clearing window, got %d", c.Len())
	}
}

func TestNamedFilterFeedsEvaluator(t *testing.T) {
	path := writeLog(t,
		pipeLine("10:00:00", "1.1.1", "1/2/3", "21.5"),
		pipeLine("10:00:01", "1.1.1", "2/0/1", "on"),
		pipeLine("10:00:02", "1.1.1", "3/3/3", "error high"),
	)
	c := newTestCore(t, 0, 0)
	openCore(t, c, path)

	if err := c.Filters().Put("watch", []string{"1/2/3", "error"}); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	c.ToggleFilter("watch")
	got := payloads(c.Project().Rows)
	if len(got) != 2 || got[0] != "21.5" || got[1] != "error high" {
		t.Fatalf("Expected [21.5, error high], got %v", got)
	}

	// A selected key unions with the filter pool.
	c.ToggleNode([]string{"2/0/1"})
	if got := len(c.Project().Rows); got != 3 {
		t.Errorf("Expected 3 rows with key unioned in, got %d", got)
	}

	// The global regex gates on top of the pool.
	if err := c.SetGlobalPattern("ERROR"); err != nil {
		t.Fatalf("SetGlobalPattern failed: %v", err)
	}
	rows := c.Project().Rows
	if len(rows) != 1 || rows[0].Dest != "3/3/3" {
		t.Fatalf("Expected only the error record, got %v", payloads(rows))
	}

	c.ToggleFilter("watch")
	if err := c.SetGlobalPattern(""); err != nil {
		t.Fatalf("clearing pattern failed: %v", err)
	}
	c.ToggleNode([]string{"2/0/1"})
	if got := len(c.Project().Rows); got != 3 {
		t.Errorf("Expected everything visible again, got %d rows", got)
	}
}

func TestSetGlobalPatternInvalid(t *testing.T) {
	c := newTestCore(t, 0, 0)
	if err := c.SetGlobalPattern("valid"); err != nil {
		t.Fatalf("SetGlobalPattern failed: %v", err)
	}
	if err := c.SetGlobalPattern("((("); err == nil {
		t.Fatal("Expected error for invalid pattern")
	}
	if c.GlobalPattern() != "valid" {
		t.Errorf("Expected pattern unchanged after failed compile, got %s", c.GlobalPattern())
	}
}

func TestSaveSelectionAsFilter(t *testing.T) {
	c := newTestCore(t, 0, 0)
	c.ToggleNode([]string{"1/2/10", "1/2/3"})

	if err := c.SaveSelectionAsFilter("mine"); err != nil {
		t.Fatalf("SaveSelectionAsFilter failed: %v", err)
	}

	rules := c.Filters().Rules("mine")
	if len(rules) != 2 || rules[0] != "1/2/3" || rules[1] != "1/2/10" {
		t.Errorf("Expected naturally ordered rules [1/2/3 1/2/10], got %v", rules)
	}
}

func TestDeleteFilterDeactivates(t *testing.T) {
	c := newTestCore(t, 0, 0)
	if err := c.Filters().Put("gone", []string{"1/2/3"}); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	c.ToggleFilter("gone")

	if err := c.DeleteFilter("gone"); err != nil {
		t.Fatalf("DeleteFilter failed: %v", err)
	}
	if c.Selection().FilterActive("gone") {
		t.Error("Expected deleted filter to be deactivated")
	}
	if c.Filters().Get("gone") != nil {
		t.Error("Expected filter removed from store")
	}
}

func TestLoadSourceUndeterminedFormat(t *testing.T) {
	path := writeLog(t, "just some prose", "more prose")
	_, err := LoadSource(path, models.TimeWindow{}, nil)
	if !errors.Is(err, logfile.ErrFormatUndetermined) {
		t.Fatalf("Expected ErrFormatUndetermined, got %v", err)
	}
}
