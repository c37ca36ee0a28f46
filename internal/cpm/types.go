package cpm

import (
	"fmt"
	"time"

	"github.com/ljanicek/critpath/internal/constraint"
)

// DateMode selects where an activity's calendar dates come from.
type DateMode int

const (
	// DateComputed derives Start/End from the engine's day offsets plus a
	// caller-supplied anchor epoch.
	DateComputed DateMode = iota
	// DateSupplied takes Start/End from the input rows' own date columns.
	DateSupplied
)

// Options is the single configuration surface of the engine. The historical
// pipeline variants differed only in these knobs.
type Options struct {
	DateMode  DateMode
	Delimiter constraint.Delimiter
}

// DefaultOptions is computed offsets with comma-delimited constraints.
func DefaultOptions() Options {
	return Options{DateMode: DateComputed, Delimiter: constraint.Comma}
}

// Schedule holds the timing of a single activity. ES/EF are written by the
// forward pass, LS/LF by the backward pass, Float/Critical by the result
// compiler; no pass touches another pass's fields.
type Schedule struct {
	ActivityID string
	ES, EF     int // earliest start/finish
	LS, LF     int // latest start/finish
	Float      int // LS - ES
	Critical   bool
	Level      int // index of the activity's ES level
}

// Row is one output line of the analysis, ready for display or export.
// Start/End are zero unless calendar anchoring was applied.
type Row struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	Duration int       `json:"duration"`
	ES       int       `json:"es"`
	EF       int       `json:"ef"`
	LS       int       `json:"ls"`
	LF       int       `json:"lf"`
	Float    int       `json:"float"`
	Critical bool      `json:"critical"`
	Start    time.Time `json:"start,omitzero"`
	End      time.Time `json:"end,omitzero"`
}

// Level is a group of activities sharing the same earliest start. Activities
// within a level have no data dependency on one another.
type Level struct {
	Index       int
	ES          int
	ActivityIDs []string
	Critical    bool // true if the level contains a critical activity
}

// Result is the complete analysis of one schedule.
type Result struct {
	Schedules       map[string]*Schedule
	Rows            []Row    // sorted by ES, ties by id
	CriticalPath    []string // critical activity ids by ascending ES
	ProjectDuration int      // max EF across all activities
	Levels          []Level
	TopoOrder       []string
}

// InvariantError reports float computed two inconsistent ways. It indicates
// a defect in the engine, never bad user input.
type InvariantError struct {
	ActivityID  string
	StartFloat  int // LS - ES
	FinishFloat int // LF - EF
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("float invariant violated for %q: LS-ES=%d, LF-EF=%d",
		e.ActivityID, e.StartFloat, e.FinishFloat)
}
