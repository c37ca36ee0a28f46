// Package project ingests schedule input rows from CSV or JSON, validates
// them into a typed record schema, and assembles the precedence network.
package project

import (
	"fmt"
	"strings"
	"time"

	"github.com/ljanicek/critpath/internal/constraint"
	"github.com/ljanicek/critpath/internal/cpm"
	"github.com/ljanicek/critpath/internal/graph"
)

// Record is one validated input row. Dates are zero when the corresponding
// column was absent or empty.
type Record struct {
	ID           string
	Name         string
	Duration     int
	Predecessors string // bare id list, implicit FS with zero lag
	Constraints  string // constraint grammar; wins over Predecessors when set
	StartDate    time.Time
	EndDate      time.Time
}

// Input dates are day-first.
var dateLayouts = []string{"02/01/2006", "2/1/2006", "02-01-2006"}

// ParseDate parses a day-first calendar date. An empty string yields the
// zero time with no error.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q (want day-first, e.g. 31/01/2026)", s)
}

// BuildGraph assembles the precedence network from records. All activities
// are declared before any edge, so constraints may reference rows in any
// order. Per row, a non-empty constraint expression takes precedence and the
// bare predecessor list is ignored. The int return is the total count of
// malformed constraint tokens that were skipped; structural errors stop the
// build with no partial result.
func BuildGraph(records []Record, opts cpm.Options) (*graph.Graph, int, error) {
	b := graph.NewBuilder()
	for _, rec := range records {
		if err := b.AddActivity(rec.ID, rec.Name, rec.Duration); err != nil {
			return nil, 0, err
		}
	}

	skipped := 0
	for _, rec := range records {
		var rels []constraint.Relation
		if strings.TrimSpace(rec.Constraints) != "" {
			var n int
			rels, n = constraint.Parse(rec.Constraints, opts.Delimiter)
			skipped += n
		} else {
			rels = constraint.ParsePredecessors(rec.Predecessors)
		}
		for _, rel := range rels {
			if err := b.AddEdge(rel.Predecessor, rec.ID, rel.Type, rel.Lag); err != nil {
				return nil, 0, fmt.Errorf("activity %q: %w", rec.ID, err)
			}
		}
	}

	g, err := b.Build()
	if err != nil {
		return nil, 0, err
	}
	return g, skipped, nil
}

// ApplySuppliedDates overwrites each row's calendar dates with the dates
// carried by its input record. Rows whose record has no dates keep whatever
// the computed anchoring set (or stay zero).
func ApplySuppliedDates(result *cpm.Result, records []Record) {
	byID := make(map[string]Record, len(records))
	for _, rec := range records {
		byID[rec.ID] = rec
	}
	for i := range result.Rows {
		rec, ok := byID[result.Rows[i].ID]
		if !ok {
			continue
		}
		if !rec.StartDate.IsZero() {
			result.Rows[i].Start = rec.StartDate
		}
		if !rec.EndDate.IsZero() {
			result.Rows[i].End = rec.EndDate
		}
	}
}
