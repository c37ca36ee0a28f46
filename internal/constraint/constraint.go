// Package constraint parses precedence constraint expressions like
// "A[FS+5];B[SS-2]" into typed relations.
package constraint

import (
	"regexp"
	"strings"
)

// RelType is one of the four standard precedence relation types.
type RelType string

const (
	FinishToStart  RelType = "FS"
	StartToStart   RelType = "SS"
	FinishToFinish RelType = "FF"
	StartToFinish  RelType = "SF"
)

// Valid reports whether t is one of the four known relation types.
// Matching is case-sensitive: "fs" is not a relation type.
func (t RelType) Valid() bool {
	switch t {
	case FinishToStart, StartToStart, FinishToFinish, StartToFinish:
		return true
	}
	return false
}

// Relation is a single parsed precedence constraint: the named predecessor
// must relate to the activity carrying the constraint by Type, offset by Lag
// days (negative lag = lead).
type Relation struct {
	Predecessor string
	Type        RelType
	Lag         int
}

// Delimiter separates tokens in a constraint expression. Fixed per call site.
type Delimiter rune

const (
	Comma     Delimiter = ','
	Semicolon Delimiter = ';'
)

// token is <predecessor-id>[<relation-code><signed-lag>?], e.g. "A[FS+5]",
// "foundation[FF]". The lag sign is mandatory when a lag is present.
var tokenRe = regexp.MustCompile(`^([^\[\]]+?)\s*\[(FS|SS|FF|SF)([+-][0-9]+)?\]$`)

// Parse splits expr on delim and parses each token against the constraint
// grammar. Malformed tokens are dropped, not fatal: the second return value
// counts them so the caller can decide whether to warn. An empty or
// whitespace-only expr yields (nil, 0). Parse has no side effects.
func Parse(expr string, delim Delimiter) ([]Relation, int) {
	if strings.TrimSpace(expr) == "" {
		return nil, 0
	}

	var rels []Relation
	skipped := 0
	for _, raw := range strings.Split(expr, string(delim)) {
		tok := strings.TrimSpace(raw)
		if tok == "" {
			continue
		}
		rel, ok := parseToken(tok)
		if !ok {
			skipped++
			continue
		}
		rels = append(rels, rel)
	}
	return rels, skipped
}

func parseToken(tok string) (Relation, bool) {
	m := tokenRe.FindStringSubmatch(tok)
	if m == nil {
		return Relation{}, false
	}
	pred := strings.TrimSpace(m[1])
	if pred == "" {
		return Relation{}, false
	}
	lag := 0
	if m[3] != "" {
		// Sign and digits already vetted by the pattern.
		n := 0
		for _, c := range m[3][1:] {
			n = n*10 + int(c-'0')
		}
		if m[3][0] == '-' {
			n = -n
		}
		lag = n
	}
	return Relation{Predecessor: pred, Type: RelType(m[2]), Lag: lag}, true
}

// ParsePredecessors parses a bare comma-separated predecessor list
// ("A,B,C") into implicit finish-to-start relations with zero lag.
func ParsePredecessors(list string) []Relation {
	if strings.TrimSpace(list) == "" {
		return nil
	}
	var rels []Relation
	for _, raw := range strings.Split(list, ",") {
		id := strings.TrimSpace(raw)
		if id == "" {
			continue
		}
		rels = append(rels, Relation{Predecessor: id, Type: FinishToStart})
	}
	return rels
}
