// Package graph owns the activity set and the typed precedence edges of a
// schedule, and validates that they form a DAG.
package graph

import (
	"sort"

	"github.com/ljanicek/critpath/internal/constraint"
)

// Builder accumulates activities and edges, then validates the result into
// an immutable Graph. Zero value is not usable; call NewBuilder.
type Builder struct {
	activities map[string]*Activity
	edges      map[[2]string]*Edge
}

// NewBuilder returns an empty schedule builder.
func NewBuilder() *Builder {
	return &Builder{
		activities: make(map[string]*Activity),
		edges:      make(map[[2]string]*Edge),
	}
}

// AddActivity registers an activity. The id must be unique and the duration
// non-negative.
func (b *Builder) AddActivity(id, name string, duration int) error {
	if _, ok := b.activities[id]; ok {
		return &DuplicateActivityError{ID: id}
	}
	if duration < 0 {
		return &InvalidDurationError{ID: id, Duration: duration}
	}
	b.activities[id] = &Activity{ID: id, Name: name, Duration: duration}
	return nil
}

// AddEdge registers a typed precedence relation. Both endpoints must already
// be declared. Edges are keyed by (pred, succ): a later call for the same
// pair overwrites the earlier type and lag.
func (b *Builder) AddEdge(pred, succ string, typ constraint.RelType, lag int) error {
	if _, ok := b.activities[pred]; !ok {
		return &UnknownActivityError{ID: pred}
	}
	if _, ok := b.activities[succ]; !ok {
		return &UnknownActivityError{ID: succ}
	}
	if pred == succ {
		return &SelfLoopError{ID: pred}
	}
	b.edges[[2]string{pred, succ}] = &Edge{Pred: pred, Succ: succ, Type: typ, Lag: lag}
	return nil
}

// Build validates the accumulated network and returns the finished Graph
// along with its topological order. A cyclic network yields a *CycleError
// naming the activities on one discovered cycle.
func (b *Builder) Build() (*Graph, error) {
	g := &Graph{
		Activities: b.activities,
		in:         make(map[string][]*Edge),
		out:        make(map[string][]*Edge),
	}
	for _, e := range b.edges {
		g.out[e.Pred] = append(g.out[e.Pred], e)
		g.in[e.Succ] = append(g.in[e.Succ], e)
	}

	// Sorted adjacency keeps every downstream fold deterministic.
	for id := range g.out {
		sort.Slice(g.out[id], func(i, j int) bool { return g.out[id][i].Succ < g.out[id][j].Succ })
	}
	for id := range g.in {
		sort.Slice(g.in[id], func(i, j int) bool { return g.in[id][i].Pred < g.in[id][j].Pred })
	}

	order, ok := topoSort(g)
	if !ok {
		return nil, &CycleError{Nodes: g.findCycle()}
	}
	g.TopoOrder = order
	return g, nil
}

// topoSort runs Kahn's algorithm. Nodes that become ready together are
// ordered lexicographically so that repeated runs on identical input always
// produce the same order. Returns ok=false when a cycle prevents a full
// ordering.
func topoSort(g *Graph) ([]string, bool) {
	inDegree := make(map[string]int, len(g.Activities))
	for id := range g.Activities {
		inDegree[id] = len(g.in[id])
	}

	var queue []string
	for id := range g.Activities {
		if inDegree[id] == 0 {
			queue = append(queue, id)
		}
	}
	sort.Strings(queue)

	var order []string
	for len(queue) > 0 {
		node := queue[0]
		queue = queue[1:]
		order = append(order, node)

		var newReady []string
		for _, e := range g.out[node] {
			inDegree[e.Succ]--
			if inDegree[e.Succ] == 0 {
				newReady = append(newReady, e.Succ)
			}
		}
		sort.Strings(newReady)
		queue = append(queue, newReady...)
	}

	if len(order) != len(g.Activities) {
		return nil, false
	}
	return order, true
}

// findCycle locates one cycle via DFS coloring: white (unvisited), gray
// (in progress), black (done). Returns the cycle's activity ids in forward
// order, each exactly once. Only called after topoSort has failed, so a
// cycle is known to exist.
func (g *Graph) findCycle() []string {
	const (
		white = 0
		gray  = 1
		black = 2
	)

	color := make(map[string]int)
	parent := make(map[string]string)

	var dfs func(node string) []string
	dfs = func(node string) []string {
		color[node] = gray
		for _, e := range g.out[node] {
			next := e.Succ
			if color[next] == gray {
				// Walk parents back to the gray node to reconstruct the loop.
				cycle := []string{node}
				cur := node
				for cur != next {
					cur = parent[cur]
					cycle = append(cycle, cur)
				}
				for i, j := 0, len(cycle)-1; i < j; i, j = i+1, j-1 {
					cycle[i], cycle[j] = cycle[j], cycle[i]
				}
				return cycle
			}
			if color[next] == white {
				parent[next] = node
				if cycle := dfs(next); cycle != nil {
					return cycle
				}
			}
		}
		color[node] = black
		return nil
	}

	ids := make([]string, 0, len(g.Activities))
	for id := range g.Activities {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		if color[id] == white {
			if cycle := dfs(id); cycle != nil {
				return cycle
			}
		}
	}
	return nil
}
