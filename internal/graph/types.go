package graph

import "github.com/ljanicek/critpath/internal/constraint"

// Activity is a single schedulable unit of work. Immutable once the graph
// is built.
type Activity struct {
	ID       string
	Name     string
	Duration int // non-negative, in days
}

// Edge is a typed, lagged precedence relation between two activities.
type Edge struct {
	Pred string
	Succ string
	Type constraint.RelType
	Lag  int
}

// Graph is a validated, acyclic precedence network. Construct one through
// Builder; a Graph is never mutated after Build returns it.
type Graph struct {
	Activities map[string]*Activity
	TopoOrder  []string // Kahn order, lexicographic tie-break, fixed across runs

	in  map[string][]*Edge // edges arriving at key, sorted by Pred
	out map[string][]*Edge // edges leaving key, sorted by Succ
}

// In returns the edges whose successor is id.
func (g *Graph) In(id string) []*Edge { return g.in[id] }

// Out returns the edges whose predecessor is id.
func (g *Graph) Out(id string) []*Edge { return g.out[id] }

// Count returns the number of activities in the graph.
func (g *Graph) Count() int { return len(g.Activities) }
