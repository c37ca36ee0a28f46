package graph

import (
	"fmt"
	"strings"
)

// DuplicateActivityError reports a second AddActivity call for an id already
// in the builder.
type DuplicateActivityError struct {
	ID string
}

func (e *DuplicateActivityError) Error() string {
	return fmt.Sprintf("duplicate activity %q", e.ID)
}

// InvalidDurationError reports a negative duration.
type InvalidDurationError struct {
	ID       string
	Duration int
}

func (e *InvalidDurationError) Error() string {
	return fmt.Sprintf("activity %q: invalid duration %d", e.ID, e.Duration)
}

// UnknownActivityError reports an edge endpoint that names no declared
// activity.
type UnknownActivityError struct {
	ID string
}

func (e *UnknownActivityError) Error() string {
	return fmt.Sprintf("unknown activity %q", e.ID)
}

// SelfLoopError reports an edge from an activity to itself.
type SelfLoopError struct {
	ID string
}

func (e *SelfLoopError) Error() string {
	return fmt.Sprintf("activity %q depends on itself", e.ID)
}

// CycleError reports that the precedence network is not acyclic. Nodes holds
// the activity ids on one discovered cycle in traversal order, each id once.
type CycleError struct {
	Nodes []string
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("dependency cycle: %s", strings.Join(e.Nodes, " -> "))
}
