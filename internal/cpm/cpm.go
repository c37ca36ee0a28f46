// Package cpm computes Critical Path Method timing over a validated
// precedence network: a forward pass for earliest times, a backward pass for
// latest times, then float and the critical activity sequence.
package cpm

import (
	"sort"
	"time"

	"github.com/ljanicek/critpath/internal/constraint"
	"github.com/ljanicek/critpath/internal/graph"
)

// Analyze runs the full analysis on g. The graph must come from a successful
// Build, so it is acyclic and carries a deterministic topological order; the
// whole computation is O(V + E) and pure.
func Analyze(g *graph.Graph) (*Result, error) {
	result := &Result{
		Schedules: make(map[string]*Schedule, g.Count()),
		TopoOrder: g.TopoOrder,
	}
	for _, id := range g.TopoOrder {
		result.Schedules[id] = &Schedule{ActivityID: id}
	}

	forwardPass(g, result)

	for _, s := range result.Schedules {
		if s.EF > result.ProjectDuration {
			result.ProjectDuration = s.EF
		}
	}

	backwardPass(g, result)

	if err := compile(g, result); err != nil {
		return nil, err
	}
	return result, nil
}

// forwardPass computes ES and EF in topological order, so every
// predecessor's times are final before a node is folded. Correct for any
// DAG shape, reconverging diamonds included.
func forwardPass(g *graph.Graph, result *Result) {
	for _, id := range g.TopoOrder {
		s := result.Schedules[id]
		d := g.Activities[id].Duration

		es := 0
		for i, e := range g.In(id) {
			pred := result.Schedules[e.Pred]
			var c int
			switch e.Type {
			case constraint.FinishToStart:
				c = pred.EF + e.Lag
			case constraint.StartToStart:
				c = pred.ES + e.Lag
			case constraint.FinishToFinish:
				c = pred.EF + e.Lag - d
			case constraint.StartToFinish:
				c = pred.ES + e.Lag - d
			}
			// Max-reduction over contributions. The first edge seeds the
			// value so that an all-negative constraint set yields a negative
			// ES instead of clamping at the arbitrary zero origin.
			if i == 0 || c > es {
				es = c
			}
		}
		s.ES = es
		s.EF = es + d
	}
}

// backwardPass computes LF and LS in reverse topological order, the
// min-reduction mirror of the forward pass. Activities with no successors
// bound at the project duration.
func backwardPass(g *graph.Graph, result *Result) {
	for i := len(g.TopoOrder) - 1; i >= 0; i-- {
		id := g.TopoOrder[i]
		s := result.Schedules[id]
		d := g.Activities[id].Duration

		// Min-reduction seeded at the project duration: a negative lag can
		// never push LF past the end of the project.
		lf := result.ProjectDuration
		for _, e := range g.Out(id) {
			succ := result.Schedules[e.Succ]
			var c int
			switch e.Type {
			case constraint.FinishToStart:
				c = succ.LS - e.Lag
			case constraint.StartToStart:
				c = succ.LS - e.Lag
			case constraint.FinishToFinish:
				c = succ.LF - e.Lag
			case constraint.StartToFinish:
				c = succ.ES - e.Lag
			}
			if c < lf {
				lf = c
			}
		}
		s.LF = lf
		s.LS = lf - d
	}
}

// compile derives float and criticality, orders the output rows, and groups
// activities into ES levels. Float is cross-checked on both sides of the
// schedule; a mismatch is an engine defect and aborts the run.
func compile(g *graph.Graph, result *Result) error {
	for _, id := range result.TopoOrder {
		s := result.Schedules[id]
		startFloat := s.LS - s.ES
		finishFloat := s.LF - s.EF
		if startFloat != finishFloat {
			return &InvariantError{ActivityID: id, StartFloat: startFloat, FinishFloat: finishFloat}
		}
		s.Float = startFloat
		s.Critical = startFloat == 0
	}

	rows := make([]Row, 0, g.Count())
	for _, id := range result.TopoOrder {
		s := result.Schedules[id]
		a := g.Activities[id]
		rows = append(rows, Row{
			ID:       a.ID,
			Name:     a.Name,
			Duration: a.Duration,
			ES:       s.ES,
			EF:       s.EF,
			LS:       s.LS,
			LF:       s.LF,
			Float:    s.Float,
			Critical: s.Critical,
		})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].ES != rows[j].ES {
			return rows[i].ES < rows[j].ES
		}
		return rows[i].ID < rows[j].ID
	})
	result.Rows = rows

	// The critical "path" is the critical set in start order: the node-level
	// float flag decides membership, with no edge-level zero-slack check
	// between consecutive entries. Under FF/SF relations the sequence is
	// therefore a display ordering, not a verified connected walk.
	for _, row := range rows {
		if row.Critical {
			result.CriticalPath = append(result.CriticalPath, row.ID)
		}
	}

	result.Levels = computeLevels(result)
	return nil
}

// computeLevels groups activities by earliest start. Within a level the
// activities are independent of each other, so the grouping doubles as a
// parallelism view of the schedule.
func computeLevels(result *Result) []Level {
	esGroups := make(map[int][]string)
	for _, id := range result.TopoOrder {
		es := result.Schedules[id].ES
		esGroups[es] = append(esGroups[es], id)
	}

	esValues := make([]int, 0, len(esGroups))
	for es := range esGroups {
		esValues = append(esValues, es)
	}
	sort.Ints(esValues)

	levels := make([]Level, len(esValues))
	for i, es := range esValues {
		ids := esGroups[es]
		sort.Strings(ids)

		hasCritical := false
		for _, id := range ids {
			result.Schedules[id].Level = i
			if result.Schedules[id].Critical {
				hasCritical = true
			}
		}

		// Critical activities first within the level.
		sort.SliceStable(ids, func(a, b int) bool {
			aCrit := result.Schedules[ids[a]].Critical
			bCrit := result.Schedules[ids[b]].Critical
			return aCrit && !bCrit
		})

		levels[i] = Level{Index: i, ES: es, ActivityIDs: ids, Critical: hasCritical}
	}
	return levels
}

// Anchor fills each row's calendar Start/End by adding its day offsets to
// epoch. The engine works in relative offsets; this is where a caller pins
// them to real dates.
func (r *Result) Anchor(epoch time.Time) {
	for i := range r.Rows {
		r.Rows[i].Start = epoch.AddDate(0, 0, r.Rows[i].ES)
		r.Rows[i].End = epoch.AddDate(0, 0, r.Rows[i].EF)
	}
}
