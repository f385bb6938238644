// Package core owns all mutable pipeline state of the explorer: the record
// cache, payload history, selection, named-filter activation and tail
// tracking live in one Core struct created at source-open time and passed
// explicitly. Nothing here is global and nothing here locks; mutation is
// driven single-threaded by the UI event loop.
package core

import (
	"fmt"
	"log/slog"
	"regexp"

	"github.com/user/bus-explorer-tui/pkg/config"
	"github.com/user/bus-explorer-tui/pkg/logfile"
	"github.com/user/bus-explorer-tui/pkg/models"
)

// Snapshot is the result of one full source load. It is produced off the
// event loop and committed into a Core on the loop, so a half-parsed file
// is never observable.
type Snapshot struct {
	Path    string
	Format  models.Format
	Records []models.LogRecord
	Archive bool
	Offset  int64
}

// LoadSource reads, format-detects, parses and enriches an entire log
// source. It mutates nothing; errors leave the caller's state untouched.
func LoadSource(path string, window models.TimeWindow, cat *models.Catalog) (*Snapshot, error) {
	content, err := logfile.ReadSource(path)
	if err != nil {
		return nil, err
	}

	format := logfile.DetectFormat(content.Lines)
	if format == models.FormatUnknown {
		return nil, fmt.Errorf("%w: %s", logfile.ErrFormatUndetermined, path)
	}

	return &Snapshot{
		Path:    path,
		Format:  format,
		Records: parseLines(content.Lines, format, window, cat),
		Archive: content.Archive,
		Offset:  content.Offset,
	}, nil
}

// parseLines runs the parse+enrich pipeline over raw lines. Malformed lines
// are skipped and counted, never fatal.
func parseLines(lines []string, format models.Format, window models.TimeWindow, cat *models.Catalog) []models.LogRecord {
	records := make([]models.LogRecord, 0, len(lines))
	skipped := 0
	for _, raw := range lines {
		parsed, ok := logfile.ParseLine(format, raw, window)
		if !ok {
			skipped++
			continue
		}
		records = append(records, logfile.Enrich(parsed, cat))
	}
	if skipped > 0 {
		slog.Debug("skipped unparseable lines", "count", skipped, "total", len(lines))
	}
	return records
}

// Core is the single holder of mutable explorer state.
type Core struct {
	cache     *Cache
	history   *History
	selection *Selection
	projector *Projector
	filters   *config.FilterStore

	catalog *models.Catalog
	window  models.TimeWindow

	globalPattern string
	global        *regexp.Regexp

	path            string
	format          models.Format
	archive         bool
	tracker         *logfile.Tracker
	tailingDisabled bool
}

// NewCore wires an empty core around a catalog and a filter store.
func NewCore(cat *models.Catalog, filters *config.FilterStore, maxCache, maxRender int) *Core {
	return &Core{
		cache:     NewCache(maxCache),
		history:   NewHistory(),
		selection: NewSelection(),
		projector: NewProjector(maxRender),
		filters:   filters,
		catalog:   cat,
	}
}

// Commit installs a loaded snapshot: the cache and payload history are
// rebuilt wholesale and tail tracking restarts from the snapshot offset.
// Archives never tail.
func (c *Core) Commit(snap *Snapshot) {
	c.path = snap.Path
	c.format = snap.Format
	c.archive = snap.Archive
	c.tailingDisabled = false

	c.cache.Replace(snap.Records)
	c.history.Clear()
	for _, rec := range snap.Records {
		if rec.Payload != "" {
			c.history.Record(rec.Dest, rec.Timestamp, rec.Payload)
		}
	}

	if snap.Archive {
		c.tracker = nil
	} else {
		c.tracker = logfile.NewTracker(snap.Path, snap.Offset)
	}
	c.projector.Reset()
}

// Reload loads the current source again in place. On failure the previous
// cache, history and tail state all stay intact.
func (c *Core) Reload() error {
	if c.path == "" {
		return nil
	}
	snap, err := LoadSource(c.path, c.window, c.catalog)
	if err != nil {
		return err
	}
	c.Commit(snap)
	return nil
}

// Poll performs one tail check. New lines are parsed with the format locked
// at load time and appended; a shrunken file triggers a full reload. The
// returned bool reports whether the cache changed. A read failure disables
// tailing until the next successful reload.
func (c *Core) Poll() (bool, error) {
	if c.tracker == nil || c.tailingDisabled {
		return false, nil
	}

	res, err := c.tracker.Poll()
	if err != nil {
		c.tailingDisabled = true
		return false, err
	}

	if res.Truncated {
		if err := c.Reload(); err != nil {
			c.tailingDisabled = true
			return false, err
		}
		return true, nil
	}

	if len(res.Lines) == 0 {
		return false, nil
	}

	records := parseLines(res.Lines, c.format, c.window, c.catalog)
	if len(records) == 0 {
		return false, nil
	}
	c.cache.Append(records...)
	for _, rec := range records {
		if rec.Payload != "" {
			c.history.Record(rec.Dest, rec.Timestamp, rec.Payload)
		}
	}
	return true, nil
}

// SetCatalog swaps the enrichment catalog. Existing records keep their old
// names until the next reload.
func (c *Core) SetCatalog(cat *models.Catalog) {
	c.catalog = cat
}

// Catalog returns the active catalog, possibly nil before the first load.
func (c *Core) Catalog() *models.Catalog {
	return c.catalog
}

// SetTimeWindow installs a time-of-day window and reloads the source, since
// the window filters at parse time.
func (c *Core) SetTimeWindow(window models.TimeWindow) error {
	c.window = window
	c.projector.Reset()
	return c.Reload()
}

// TimeWindow returns the active time-of-day window.
func (c *Core) TimeWindow() models.TimeWindow {
	return c.window
}

// SetGlobalPattern compiles and installs the global AND regex. An empty
// pattern clears it. The truncation warning re-arms on every change.
func (c *Core) SetGlobalPattern(pattern string) error {
	rx, err := CompileGlobal(pattern)
	if err != nil {
		return err
	}
	c.globalPattern = pattern
	c.global = rx
	c.projector.Reset()
	return nil
}

// GlobalPattern returns the raw global regex pattern, "" when unset.
func (c *Core) GlobalPattern() string {
	return c.globalPattern
}

// ToggleNode toggles a node's descendant key set in the selection and
// reports whether the selection changed.
func (c *Core) ToggleNode(keys []string) bool {
	changed := c.selection.Toggle(keys)
	if changed {
		c.projector.Reset()
	}
	return changed
}

// ToggleFilter flips a named filter's activation and reports the new state.
func (c *Core) ToggleFilter(name string) bool {
	active := c.selection.ToggleFilter(name)
	c.projector.Reset()
	return active
}

// ClearSelection drops all selected keys, leaving named-filter activation
// untouched.
func (c *Core) ClearSelection() {
	c.selection.Clear()
	c.projector.Reset()
}

// SaveSelectionAsFilter persists the currently selected keys as a named
// filter.
func (c *Core) SaveSelectionAsFilter(name string) error {
	return c.filters.Put(name, c.selection.Keys())
}

// DeleteFilter removes a named filter from the store and deactivates it.
func (c *Core) DeleteFilter(name string) error {
	if err := c.filters.Delete(name); err != nil {
		return err
	}
	c.selection.DropFilter(name)
	c.projector.Reset()
	return nil
}

// NoteFilterRulesChanged re-arms the one-shot truncation warning after a
// named filter's rules were edited in place; an active filter's rule set
// is part of the filter state.
func (c *Core) NoteFilterRulesChanged() {
	c.projector.Reset()
}

// Evaluator derives the current visibility test: selected keys and active
// named-filter keys pool into the OR stage, active named-filter regexes
// extend it, and the global regex gates the result.
func (c *Core) Evaluator() Evaluator {
	orKeys := make(map[string]struct{})
	for _, key := range c.selection.Keys() {
		orKeys[key] = struct{}{}
	}

	var regexes []*regexp.Regexp
	for _, name := range c.selection.ActiveFilters() {
		nf := c.filters.Get(name)
		if nf == nil {
			continue
		}
		for key := range nf.Keys {
			orKeys[key] = struct{}{}
		}
		regexes = append(regexes, nf.Regexes...)
	}

	return NewEvaluator(orKeys, regexes, c.global)
}

// Project filters the cache through the current evaluator and applies the
// render cap.
func (c *Core) Project() Projection {
	return c.projector.Project(c.cache.Records(), c.Evaluator())
}

// Selection exposes selection state for tree rendering.
func (c *Core) Selection() *Selection {
	return c.selection
}

// History exposes per-destination payload history for annotations.
func (c *Core) History() *History {
	return c.history
}

// Filters exposes the named-filter store.
func (c *Core) Filters() *config.FilterStore {
	return c.filters
}

// Len returns the number of cached records.
func (c *Core) Len() int {
	return c.cache.Len()
}

// Path returns the open source path, "" before the first load.
func (c *Core) Path() string {
	return c.path
}

// Format returns the detected log format.
func (c *Core) Format() models.Format {
	return c.format
}

// Archive reports whether the source is a static archive, which never
// tails.
func (c *Core) Archive() bool {
	return c.archive
}

// Tailing reports whether poll ticks currently read the source.
func (c *Core) Tailing() bool {
	return c.tracker != nil && !c.tailingDisabled
}
