package project

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
)

// Column aliases, keyed by normalized header (lowercase, spaces and
// underscores removed). Both the "ActivityID" and "Activity ID" spellings
// seen in historical project files map to the same field.
const (
	colID           = "activityid"
	colName         = "activityname"
	colDuration     = "duration"
	colPredecessors = "predecessors"
	colConstraint   = "constraint"
	colLogic        = "logicconstraints"
	colStart        = "startdate"
	colEnd          = "enddate"
)

func normalizeHeader(h string) string {
	h = strings.ToLower(strings.TrimSpace(h))
	h = strings.ReplaceAll(h, " ", "")
	h = strings.ReplaceAll(h, "_", "")
	return h
}

// LoadCSV reads schedule records from header-driven CSV. The ActivityID
// column is required; every other column is optional.
func LoadCSV(r io.Reader) ([]Record, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("empty input: missing header row")
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[normalizeHeader(h)] = i
	}
	if _, ok := cols[colID]; !ok {
		return nil, fmt.Errorf("missing required column ActivityID")
	}

	field := func(row []string, col string) string {
		i, ok := cols[col]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	var records []Record
	line := 1
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}
		line++

		rec := Record{
			ID:           field(row, colID),
			Name:         field(row, colName),
			Predecessors: field(row, colPredecessors),
			Constraints:  field(row, colConstraint),
		}
		if rec.ID == "" {
			return nil, fmt.Errorf("line %d: empty ActivityID", line)
		}
		if rec.Constraints == "" {
			rec.Constraints = field(row, colLogic)
		}
		if d := field(row, colDuration); d != "" {
			n, err := strconv.Atoi(d)
			if err != nil {
				return nil, fmt.Errorf("line %d: duration %q is not an integer", line, d)
			}
			rec.Duration = n
		}
		if rec.StartDate, err = ParseDate(field(row, colStart)); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		if rec.EndDate, err = ParseDate(field(row, colEnd)); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		records = append(records, rec)
	}
	return records, nil
}

// LoadJSON reads schedule records from a JSON document: either a top-level
// array of activity objects or an object with an "activities" array. Field
// lookup is alias-tolerant, matching the CSV column names.
func LoadJSON(data []byte) ([]Record, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("invalid JSON input")
	}
	doc := gjson.ParseBytes(data)
	list := doc
	if doc.IsObject() {
		list = doc.Get("activities")
	}
	if !list.IsArray() {
		return nil, fmt.Errorf("expected a JSON array of activities")
	}

	var records []Record
	var firstErr error
	i := 0
	list.ForEach(func(_, item gjson.Result) bool {
		i++
		rec := Record{
			ID:           pick(item, "id", "activity_id", "ActivityID"),
			Name:         pick(item, "name", "activity_name", "ActivityName"),
			Predecessors: pick(item, "predecessors", "Predecessors"),
			Constraints:  pick(item, "constraint", "constraints", "logic_constraints", "LogicConstraints"),
		}
		if rec.ID == "" {
			firstErr = fmt.Errorf("activity %d: missing id", i)
			return false
		}
		if dur := firstOf(item, "duration", "Duration"); dur.Exists() {
			if dur.Type != gjson.Number {
				firstErr = fmt.Errorf("activity %q: duration is not a number", rec.ID)
				return false
			}
			rec.Duration = int(dur.Int())
		}
		var err error
		if rec.StartDate, err = ParseDate(pick(item, "start_date", "StartDate")); err != nil {
			firstErr = fmt.Errorf("activity %q: %w", rec.ID, err)
			return false
		}
		if rec.EndDate, err = ParseDate(pick(item, "end_date", "EndDate")); err != nil {
			firstErr = fmt.Errorf("activity %q: %w", rec.ID, err)
			return false
		}
		records = append(records, rec)
		return true
	})
	if firstErr != nil {
		return nil, firstErr
	}
	return records, nil
}

func firstOf(item gjson.Result, keys ...string) gjson.Result {
	for _, k := range keys {
		if v := item.Get(k); v.Exists() {
			return v
		}
	}
	return gjson.Result{}
}

func pick(item gjson.Result, keys ...string) string {
	return strings.TrimSpace(firstOf(item, keys...).String())
}
