package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// FiltersFileName is the default named-filter store placed next to the log.
const FiltersFileName = "named_filters.yaml"

// exactKeyRule is the strict destination-key shape; anything else in a rule
// list is treated as a regex.
var exactKeyRule = regexp.MustCompile(`^\d+/\d+/\d+$`)

// NamedFilter is one persisted selection group: the ordered rule strings as
// written in the store, plus the derived exact-key set and compiled
// regexes the filter engine consumes.
type NamedFilter struct {
	Name    string
	Rules   []string
	Keys    map[string]struct{}
	Regexes []*regexp.Regexp
}

// FilterStore persists named filters in a human-editable YAML file mapping
// filter name to rule list. The whole store is reloaded after every save so
// in-memory state never drifts from the file, even when the user edits it
// by hand between mutations.
type FilterStore struct {
	path    string
	rules   map[string][]string
	derived map[string]*NamedFilter

	// Annotate resolves a destination key to a display name for the
	// comment written after exact-key rules. Optional.
	Annotate func(key string) string
}

// DefaultFiltersPath places the store next to the log file.
func DefaultFiltersPath(logPath string) string {
	return filepath.Join(filepath.Dir(logPath), FiltersFileName)
}

// NewFilterStore builds a store over path without touching the disk.
func NewFilterStore(path string) *FilterStore {
	return &FilterStore{
		path:    path,
		rules:   map[string][]string{},
		derived: map[string]*NamedFilter{},
	}
}

// Path returns the backing file path.
func (fs *FilterStore) Path() string {
	return fs.path
}

// Load reads the store wholesale. A missing file is an empty store, not an
// error; it is created on the first save.
func (fs *FilterStore) Load() error {
	fs.rules = map[string][]string{}
	fs.derived = map[string]*NamedFilter{}

	data, err := os.ReadFile(fs.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read filters %s: %w", fs.path, err)
	}

	var raw map[string][]string
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("parse filters %s: %w", fs.path, err)
	}

	for name, rules := range raw {
		clean := make([]string, 0, len(rules))
		for _, rule := range rules {
			if rule = strings.TrimSpace(rule); rule != "" {
				clean = append(clean, rule)
			}
		}
		fs.rules[name] = clean
		fs.derived[name] = deriveFilter(name, clean)
	}
	return nil
}

// deriveFilter classifies each rule: a strict int/int/int string is an
// exact key, everything else compiles as a case-insensitive regex. Rules
// failing to compile are dropped with a debug log, never fatal.
func deriveFilter(name string, rules []string) *NamedFilter {
	nf := &NamedFilter{
		Name:  name,
		Rules: rules,
		Keys:  map[string]struct{}{},
	}
	for _, rule := range rules {
		if exactKeyRule.MatchString(rule) {
			nf.Keys[rule] = struct{}{}
			continue
		}
		rx, err := regexp.Compile("(?i)" + rule)
		if err != nil {
			slog.Debug("skipping invalid filter rule", "filter", name, "rule", rule, "error", err)
			continue
		}
		nf.Regexes = append(nf.Regexes, rx)
	}
	return nf
}

// Save writes the store as commented YAML and reloads it wholesale. Exact
// keys get a trailing "# <group name>" comment when an annotator is set.
func (fs *FilterStore) Save() error {
	var b strings.Builder
	b.WriteString("# Named selection groups\n\n")

	names := fs.Names()
	for _, name := range names {
		rules := fs.rules[name]
		if len(rules) == 0 {
			b.WriteString(yamlScalar(name) + ": []\n\n")
			continue
		}
		b.WriteString(yamlScalar(name) + ":\n")
		for _, rule := range rules {
			b.WriteString("  - " + yamlScalar(rule))
			if exactKeyRule.MatchString(rule) && fs.Annotate != nil {
				b.WriteString(" # " + fs.Annotate(rule))
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	if err := os.WriteFile(fs.path, []byte(b.String()), 0600); err != nil {
		return fmt.Errorf("write filters %s: %w", fs.path, err)
	}
	return fs.Load()
}

// yamlScalar quotes a value only when writing it plain would change its
// meaning in the hand-built YAML.
func yamlScalar(s string) string {
	if s == "" || strings.ContainsAny(s, ":#\"'{}[]&*!|>%@`,\n") || s != strings.TrimSpace(s) {
		return strconv.Quote(s)
	}
	return s
}

// Names returns all filter names sorted.
func (fs *FilterStore) Names() []string {
	names := make([]string, 0, len(fs.rules))
	for name := range fs.rules {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Get returns the derived filter, nil when absent.
func (fs *FilterStore) Get(name string) *NamedFilter {
	return fs.derived[name]
}

// Rules returns the raw rule strings of a filter.
func (fs *FilterStore) Rules(name string) []string {
	return fs.rules[name]
}

// Len returns the number of filters.
func (fs *FilterStore) Len() int {
	return len(fs.rules)
}

// Put creates or replaces a filter and persists the store.
func (fs *FilterStore) Put(name string, rules []string) error {
	fs.rules[name] = rules
	return fs.Save()
}

// Delete removes a filter and persists the store.
func (fs *FilterStore) Delete(name string) error {
	if _, ok := fs.rules[name]; !ok {
		return nil
	}
	delete(fs.rules, name)
	return fs.Save()
}

// AddRule appends one rule to a filter, creating the filter if needed, and
// persists the store.
func (fs *FilterStore) AddRule(name, rule string) error {
	rule = strings.TrimSpace(rule)
	if rule == "" {
		return nil
	}
	fs.rules[name] = append(fs.rules[name], rule)
	return fs.Save()
}

// RemoveRule deletes the first occurrence of rule from a filter and
// persists the store.
func (fs *FilterStore) RemoveRule(name, rule string) error {
	rules, ok := fs.rules[name]
	if !ok {
		return nil
	}
	for i, r := range rules {
		if r == rule {
			fs.rules[name] = append(rules[:i:i], rules[i+1:]...)
			return fs.Save()
		}
	}
	return nil
}
