package core

import (
	"sort"

	"github.com/user/bus-explorer-tui/pkg/tree"
)

// Selection tracks the destination keys chosen in the trees plus the names
// of the active named filters. The effective OR pool the evaluator consumes
// is derived from both (see Core.Evaluator).
type Selection struct {
	keys    map[string]struct{}
	filters map[string]struct{}
}

// NewSelection builds an empty selection.
func NewSelection() *Selection {
	return &Selection{
		keys:    map[string]struct{}{},
		filters: map[string]struct{}{},
	}
}

// Has reports whether key is individually selected.
func (s *Selection) Has(key string) bool {
	_, ok := s.keys[key]
	return ok
}

// Toggle flips the selection of a node's descendant key set: if every key
// is already selected the whole set is removed, otherwise the whole set is
// added, so a partial selection always promotes to full. An empty set is a
// no-op. Reports whether anything changed.
func (s *Selection) Toggle(keys []string) bool {
	if len(keys) == 0 {
		return false
	}
	all := true
	for _, k := range keys {
		if _, ok := s.keys[k]; !ok {
			all = false
			break
		}
	}
	if all {
		for _, k := range keys {
			delete(s.keys, k)
		}
		return true
	}
	for _, k := range keys {
		s.keys[k] = struct{}{}
	}
	return true
}

// Clear drops all selected keys, leaving filter activation untouched.
func (s *Selection) Clear() {
	s.keys = map[string]struct{}{}
}

// Count returns the number of individually selected keys.
func (s *Selection) Count() int {
	return len(s.keys)
}

// Keys returns the selected keys in natural order, for display and for
// creating a named filter from the current selection.
func (s *Selection) Keys() []string {
	out := make([]string, 0, len(s.keys))
	for k := range s.keys {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return tree.Less(out[i], out[j]) })
	return out
}

// ToggleFilter flips a named filter's active state and reports the new one.
func (s *Selection) ToggleFilter(name string) bool {
	if _, ok := s.filters[name]; ok {
		delete(s.filters, name)
		return false
	}
	s.filters[name] = struct{}{}
	return true
}

// FilterActive reports whether the named filter is active.
func (s *Selection) FilterActive(name string) bool {
	_, ok := s.filters[name]
	return ok
}

// DropFilter deactivates a deleted filter so a stale name never feeds the
// OR pool.
func (s *Selection) DropFilter(name string) {
	delete(s.filters, name)
}

// ActiveFilters returns the active filter names sorted.
func (s *Selection) ActiveFilters() []string {
	out := make([]string, 0, len(s.filters))
	for name := range s.filters {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
