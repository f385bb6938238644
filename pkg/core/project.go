package core

import (
	"github.com/user/bus-explorer-tui/pkg/models"
)

// Projection is the rendered view of the cache after filtering: the rows to
// draw (newest kept when over the cap), how many records matched before
// capping, and whether this projection crossed the cap for the first time
// since the filters last changed.
type Projection struct {
	Rows      []models.LogRecord
	Matched   int
	Truncated bool
	FirstWarn bool
}

// Projector maps the cache through an evaluator into the capped row set.
// The truncation warning fires once per filter change, not once per frame.
type Projector struct {
	maxRows int
	warned  bool
}

// NewProjector builds a projector capped at maxRows rendered rows.
func NewProjector(maxRows int) *Projector {
	if maxRows <= 0 {
		maxRows = models.DefaultMaxRenderLines
	}
	return &Projector{maxRows: maxRows}
}

// Reset clears the one-shot truncation warning; call it whenever the
// filter state changes.
func (p *Projector) Reset() {
	p.warned = false
}

// Project filters records and caps the result to the newest rows.
func (p *Projector) Project(records []models.LogRecord, ev Evaluator) Projection {
	rows := make([]models.LogRecord, 0, len(records))
	for _, rec := range records {
		if ev.Visible(rec) {
			rows = append(rows, rec)
		}
	}

	proj := Projection{Matched: len(rows)}
	if len(rows) > p.maxRows {
		rows = rows[len(rows)-p.maxRows:]
		proj.Truncated = true
		if !p.warned {
			p.warned = true
			proj.FirstWarn = true
		}
	}
	proj.Rows = rows
	return proj
}
