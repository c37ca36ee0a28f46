package project

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/ljanicek/critpath/internal/constraint"
	"github.com/ljanicek/critpath/internal/cpm"
	"github.com/ljanicek/critpath/internal/graph"
)

const sampleCSV = `Activity ID,Activity Name,Duration,Predecessors
A,Excavation,5,
B,Foundation,3,A
C,Framing,4,B
D,Electrical,2,B
E,Roofing,3,"C,D"
`

func TestLoadCSV_Sample(t *testing.T) {
	records, err := LoadCSV(strings.NewReader(sampleCSV))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(records) != 5 {
		t.Fatalf("expected 5 records, got %d", len(records))
	}

	want := Record{ID: "E", Name: "Roofing", Duration: 3, Predecessors: "C,D"}
	if diff := cmp.Diff(want, records[4]); diff != "" {
		t.Errorf("record E mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadCSV_EndToEnd(t *testing.T) {
	records, err := LoadCSV(strings.NewReader(sampleCSV))
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	g, skipped, err := BuildGraph(records, cpm.DefaultOptions())
	if err != nil {
		t.Fatalf("build graph: %v", err)
	}
	if skipped != 0 {
		t.Errorf("expected 0 skipped tokens, got %d", skipped)
	}

	result, err := cpm.Analyze(g)
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if result.ProjectDuration != 15 {
		t.Errorf("expected project duration 15, got %d", result.ProjectDuration)
	}
	if diff := cmp.Diff([]string{"A", "B", "C", "E"}, result.CriticalPath); diff != "" {
		t.Errorf("critical path mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadCSV_HeaderAliases(t *testing.T) {
	in := "ActivityID,ActivityName,Duration,LogicConstraints\n" +
		"A,Dig,5,\n" +
		"B,Pour,3,A[SS+2]\n"
	records, err := LoadCSV(strings.NewReader(in))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if records[1].Constraints != "A[SS+2]" {
		t.Errorf("expected LogicConstraints mapped to Constraints, got %q", records[1].Constraints)
	}
}

func TestLoadCSV_Dates(t *testing.T) {
	in := "ActivityID,Duration,StartDate,EndDate\nA,5,01/09/2026,06/09/2026\n"
	records, err := LoadCSV(strings.NewReader(in))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	// Day-first: 01/09/2026 is 1 September.
	want := time.Date(2026, time.September, 1, 0, 0, 0, 0, time.UTC)
	if !records[0].StartDate.Equal(want) {
		t.Errorf("expected start %v, got %v", want, records[0].StartDate)
	}
}

func TestLoadCSV_Errors(t *testing.T) {
	cases := []struct {
		name string
		in   string
	}{
		{"empty input", ""},
		{"missing id column", "Name,Duration\nDig,5\n"},
		{"blank id", "ActivityID,Duration\n,5\n"},
		{"non-integer duration", "ActivityID,Duration\nA,five\n"},
		{"bad date", "ActivityID,Duration,StartDate\nA,5,September 1\n"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := LoadCSV(strings.NewReader(tc.in)); err == nil {
				t.Errorf("expected error for %s", tc.name)
			}
		})
	}
}

func TestLoadJSON_Array(t *testing.T) {
	in := `[
		{"id": "A", "name": "Dig", "duration": 5},
		{"id": "B", "name": "Pour", "duration": 3, "predecessors": "A"}
	]`
	records, err := LoadJSON([]byte(in))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	want := []Record{
		{ID: "A", Name: "Dig", Duration: 5},
		{ID: "B", Name: "Pour", Duration: 3, Predecessors: "A"},
	}
	if diff := cmp.Diff(want, records); diff != "" {
		t.Errorf("records mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadJSON_ObjectWithAliases(t *testing.T) {
	in := `{"activities": [
		{"ActivityID": "A", "ActivityName": "Dig", "Duration": 5, "start_date": "01/09/2026"},
		{"ActivityID": "B", "Duration": 3, "LogicConstraints": "A[FF+1]"}
	]}`
	records, err := LoadJSON([]byte(in))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if records[0].Name != "Dig" || records[0].StartDate.IsZero() {
		t.Errorf("aliased fields not mapped: %+v", records[0])
	}
	if records[1].Constraints != "A[FF+1]" {
		t.Errorf("expected LogicConstraints alias, got %q", records[1].Constraints)
	}
}

func TestLoadJSON_Errors(t *testing.T) {
	cases := []struct {
		name string
		in   string
	}{
		{"invalid json", "{"},
		{"not an array", `{"foo": 1}`},
		{"missing id", `[{"duration": 5}]`},
		{"non-numeric duration", `[{"id": "A", "duration": "five"}]`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := LoadJSON([]byte(tc.in)); err == nil {
				t.Errorf("expected error for %s", tc.name)
			}
		})
	}
}

func TestBuildGraph_ConstraintWinsOverPredecessors(t *testing.T) {
	records := []Record{
		{ID: "A", Duration: 5},
		{ID: "B", Duration: 3, Predecessors: "A", Constraints: "A[SS+2]"},
	}
	g, _, err := BuildGraph(records, cpm.DefaultOptions())
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	in := g.In("B")
	if len(in) != 1 || in[0].Type != constraint.StartToStart || in[0].Lag != 2 {
		t.Errorf("expected the constraint column's SS+2 edge, got %+v", in)
	}
}

func TestBuildGraph_SkipCount(t *testing.T) {
	records := []Record{
		{ID: "A", Duration: 5},
		{ID: "B", Duration: 3, Constraints: "A[FS+5];BOGUS"},
	}
	opts := cpm.DefaultOptions()
	opts.Delimiter = constraint.Semicolon

	_, skipped, err := BuildGraph(records, opts)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if skipped != 1 {
		t.Errorf("expected skip count 1, got %d", skipped)
	}
}

func TestBuildGraph_TypedErrors(t *testing.T) {
	t.Run("unknown predecessor", func(t *testing.T) {
		records := []Record{{ID: "A", Duration: 5, Predecessors: "GHOST"}}
		_, _, err := BuildGraph(records, cpm.DefaultOptions())
		var unknown *graph.UnknownActivityError
		if !errors.As(err, &unknown) {
			t.Fatalf("expected UnknownActivityError, got %v", err)
		}
	})

	t.Run("duplicate id", func(t *testing.T) {
		records := []Record{{ID: "A", Duration: 5}, {ID: "A", Duration: 2}}
		_, _, err := BuildGraph(records, cpm.DefaultOptions())
		var dup *graph.DuplicateActivityError
		if !errors.As(err, &dup) {
			t.Fatalf("expected DuplicateActivityError, got %v", err)
		}
	})

	t.Run("negative duration", func(t *testing.T) {
		records := []Record{{ID: "A", Duration: -1}}
		_, _, err := BuildGraph(records, cpm.DefaultOptions())
		var inv *graph.InvalidDurationError
		if !errors.As(err, &inv) {
			t.Fatalf("expected InvalidDurationError, got %v", err)
		}
	})

	t.Run("cycle", func(t *testing.T) {
		records := []Record{
			{ID: "A", Duration: 1, Predecessors: "C"},
			{ID: "B", Duration: 1, Predecessors: "A"},
			{ID: "C", Duration: 1, Predecessors: "B"},
		}
		_, _, err := BuildGraph(records, cpm.DefaultOptions())
		var cycle *graph.CycleError
		if !errors.As(err, &cycle) {
			t.Fatalf("expected CycleError, got %v", err)
		}
	})
}

func TestApplySuppliedDates(t *testing.T) {
	records := []Record{
		{ID: "A", Duration: 5, StartDate: time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC),
			EndDate: time.Date(2026, 9, 6, 0, 0, 0, 0, time.UTC)},
		{ID: "B", Duration: 3, Predecessors: "A"},
	}
	g, _, err := BuildGraph(records, cpm.DefaultOptions())
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	result, err := cpm.Analyze(g)
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}

	ApplySuppliedDates(result, records)

	for _, row := range result.Rows {
		switch row.ID {
		case "A":
			if row.Start.IsZero() || !row.Start.Equal(records[0].StartDate) {
				t.Errorf("A: expected supplied start date, got %v", row.Start)
			}
		case "B":
			if !row.Start.IsZero() {
				t.Errorf("B: expected no date without a supplied one, got %v", row.Start)
			}
		}
	}
}
