package core

import (
	"fmt"
	"regexp"

	"github.com/user/bus-explorer-tui/pkg/models"
)

// Evaluator decides record visibility. The OR pool (selected keys plus
// active named-filter keys and regexes) admits records; an empty pool
// admits everything. The global regex is an additional AND gate on top.
type Evaluator struct {
	orKeys  map[string]struct{}
	regexes []*regexp.Regexp
	global  *regexp.Regexp
}

// NewEvaluator assembles an evaluator from the derived filter state.
func NewEvaluator(orKeys map[string]struct{}, regexes []*regexp.Regexp, global *regexp.Regexp) Evaluator {
	return Evaluator{orKeys: orKeys, regexes: regexes, global: global}
}

// Visible applies the OR-pool-then-AND-regex rule to one record.
func (e Evaluator) Visible(rec models.LogRecord) bool {
	orMatch := len(e.orKeys) == 0 && len(e.regexes) == 0
	if !orMatch {
		_, orMatch = e.orKeys[rec.Dest]
	}
	if !orMatch {
		for _, rx := range e.regexes {
			if rx.MatchString(rec.SearchString) {
				orMatch = true
				break
			}
		}
	}
	if !orMatch {
		return false
	}
	return e.global == nil || e.global.MatchString(rec.SearchString)
}

// CompileGlobal compiles a user-entered global filter pattern,
// case-insensitive like every regex in the filter engine. An empty pattern
// clears the gate.
func CompileGlobal(pattern string) (*regexp.Regexp, error) {
	if pattern == "" {
		return nil, nil
	}
	rx, err := regexp.Compile("(?i)" + pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid filter pattern %q: %w", pattern, err)
	}
	return rx, nil
}
