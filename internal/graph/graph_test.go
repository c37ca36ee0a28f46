package graph

import (
	"errors"
	"sort"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/ljanicek/critpath/internal/constraint"
)

func mustAdd(t *testing.T, b *Builder, id string, duration int) {
	t.Helper()
	if err := b.AddActivity(id, id, duration); err != nil {
		t.Fatalf("add activity %s: %v", id, err)
	}
}

func mustEdge(t *testing.T, b *Builder, pred, succ string) {
	t.Helper()
	if err := b.AddEdge(pred, succ, constraint.FinishToStart, 0); err != nil {
		t.Fatalf("add edge %s->%s: %v", pred, succ, err)
	}
}

func TestAddActivity_Duplicate(t *testing.T) {
	b := NewBuilder()
	mustAdd(t, b, "a", 1)

	err := b.AddActivity("a", "again", 2)
	var dup *DuplicateActivityError
	if !errors.As(err, &dup) {
		t.Fatalf("expected DuplicateActivityError, got %v", err)
	}
	if dup.ID != "a" {
		t.Errorf("expected offending id a, got %q", dup.ID)
	}
}

func TestAddActivity_NegativeDuration(t *testing.T) {
	b := NewBuilder()
	err := b.AddActivity("a", "A", -3)
	var inv *InvalidDurationError
	if !errors.As(err, &inv) {
		t.Fatalf("expected InvalidDurationError, got %v", err)
	}
	if inv.Duration != -3 {
		t.Errorf("expected duration -3 in error, got %d", inv.Duration)
	}
}

func TestAddEdge_UnknownEndpoints(t *testing.T) {
	b := NewBuilder()
	mustAdd(t, b, "a", 1)

	var unknown *UnknownActivityError
	if err := b.AddEdge("ghost", "a", constraint.FinishToStart, 0); !errors.As(err, &unknown) {
		t.Fatalf("expected UnknownActivityError for predecessor, got %v", err)
	}
	if unknown.ID != "ghost" {
		t.Errorf("expected offending id ghost, got %q", unknown.ID)
	}
	if err := b.AddEdge("a", "ghost", constraint.FinishToStart, 0); !errors.As(err, &unknown) {
		t.Fatalf("expected UnknownActivityError for successor, got %v", err)
	}
}

func TestAddEdge_SelfLoop(t *testing.T) {
	b := NewBuilder()
	mustAdd(t, b, "a", 1)

	var loop *SelfLoopError
	if err := b.AddEdge("a", "a", constraint.StartToStart, 1); !errors.As(err, &loop) {
		t.Fatalf("expected SelfLoopError, got %v", err)
	}
}

func TestAddEdge_ReplaceOnWrite(t *testing.T) {
	b := NewBuilder()
	mustAdd(t, b, "a", 1)
	mustAdd(t, b, "b", 1)
	if err := b.AddEdge("a", "b", constraint.FinishToStart, 0); err != nil {
		t.Fatal(err)
	}
	if err := b.AddEdge("a", "b", constraint.StartToStart, 3); err != nil {
		t.Fatal(err)
	}

	g, err := b.Build()
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	in := g.In("b")
	if len(in) != 1 {
		t.Fatalf("expected 1 edge into b, got %d", len(in))
	}
	if in[0].Type != constraint.StartToStart || in[0].Lag != 3 {
		t.Errorf("expected the later SS+3 edge to win, got %s lag %d", in[0].Type, in[0].Lag)
	}
}

func TestBuild_CycleDetection(t *testing.T) {
	b := NewBuilder()
	mustAdd(t, b, "a", 1)
	mustAdd(t, b, "b", 1)
	mustAdd(t, b, "c", 1)
	mustEdge(t, b, "a", "b")
	mustEdge(t, b, "b", "c")
	mustEdge(t, b, "c", "a")

	_, err := b.Build()
	var cycle *CycleError
	if !errors.As(err, &cycle) {
		t.Fatalf("expected CycleError, got %v", err)
	}

	got := append([]string(nil), cycle.Nodes...)
	sort.Strings(got)
	if diff := cmp.Diff([]string{"a", "b", "c"}, got); diff != "" {
		t.Errorf("cycle node set mismatch (-want +got):\n%s", diff)
	}
}

func TestBuild_CycleDoesNotImplicateOutsiders(t *testing.T) {
	b := NewBuilder()
	for _, id := range []string{"a", "b", "c", "out"} {
		mustAdd(t, b, id, 1)
	}
	mustEdge(t, b, "out", "a")
	mustEdge(t, b, "a", "b")
	mustEdge(t, b, "b", "c")
	mustEdge(t, b, "c", "a")

	_, err := b.Build()
	var cycle *CycleError
	if !errors.As(err, &cycle) {
		t.Fatalf("expected CycleError, got %v", err)
	}
	for _, id := range cycle.Nodes {
		if id == "out" {
			t.Errorf("activity outside the cycle reported in %v", cycle.Nodes)
		}
	}
}

func TestBuild_TopoOrderIsDeterministic(t *testing.T) {
	b := NewBuilder()
	// Insert out of order; ties break lexicographically.
	for _, id := range []string{"c", "a", "b"} {
		mustAdd(t, b, id, 1)
	}

	g, err := b.Build()
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if diff := cmp.Diff([]string{"a", "b", "c"}, g.TopoOrder); diff != "" {
		t.Errorf("topo order mismatch (-want +got):\n%s", diff)
	}
}

func TestBuild_DiamondOrder(t *testing.T) {
	b := NewBuilder()
	for _, id := range []string{"d", "c", "b", "a"} {
		mustAdd(t, b, id, 1)
	}
	mustEdge(t, b, "a", "b")
	mustEdge(t, b, "a", "c")
	mustEdge(t, b, "b", "d")
	mustEdge(t, b, "c", "d")

	g, err := b.Build()
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if diff := cmp.Diff([]string{"a", "b", "c", "d"}, g.TopoOrder); diff != "" {
		t.Errorf("topo order mismatch (-want +got):\n%s", diff)
	}
}

func TestBuild_IsolatedActivities(t *testing.T) {
	b := NewBuilder()
	mustAdd(t, b, "solo", 4)

	g, err := b.Build()
	if err != nil {
		t.Fatalf("isolated activity should be valid: %v", err)
	}
	if g.Count() != 1 || len(g.In("solo")) != 0 || len(g.Out("solo")) != 0 {
		t.Errorf("unexpected graph shape for isolated activity")
	}
}
