// Package reporter renders analysis results for the terminal and for
// machine consumption.
package reporter

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/ljanicek/critpath/internal/cpm"
	"github.com/ljanicek/critpath/internal/ui"
)

// ganttWidth is the maximum bar-area width in characters; longer projects
// are scaled down to fit.
const ganttWidth = 60

const dateLayout = "02/01/2006"

// Reporter formats a single analysis result.
type Reporter struct {
	Result *cpm.Result
}

// New creates a Reporter for result.
func New(result *cpm.Result) *Reporter {
	return &Reporter{Result: result}
}

// PrintTable writes the per-activity timing table. Calendar columns appear
// only when at least one row carries anchored dates.
func (r *Reporter) PrintTable(w io.Writer) {
	withDates := false
	for _, row := range r.Result.Rows {
		if !row.Start.IsZero() || !row.End.IsZero() {
			withDates = true
			break
		}
	}

	fmt.Fprintf(w, "  %-2s %-10s %-24s %4s %5s %5s %5s %5s %6s %-9s",
		"", ui.BoldWhite("ID"), ui.BoldWhite("Name"), "Dur", "ES", "EF", "LS", "LF", "Float", "Critical")
	if withDates {
		fmt.Fprintf(w, " %-10s %-10s", "Start", "End")
	}
	fmt.Fprintln(w)

	for _, row := range r.Result.Rows {
		marker := "  "
		critical := ui.Dim("no")
		if row.Critical {
			marker = ui.BoldYellow("⚡")
			critical = ui.BoldRed("yes")
		}

		name := row.Name
		if len(name) > 24 {
			name = name[:21] + "..."
		}

		fmt.Fprintf(w, "  %-2s %-10s %-24s %4d %5d %5d %5d %5d %6d %-9s",
			marker, ui.BoldMagenta(row.ID), name,
			row.Duration, row.ES, row.EF, row.LS, row.LF, row.Float, critical)
		if withDates {
			start, end := "-", "-"
			if !row.Start.IsZero() {
				start = row.Start.Format(dateLayout)
			}
			if !row.End.IsZero() {
				end = row.End.Format(dateLayout)
			}
			fmt.Fprintf(w, " %-10s %-10s", start, end)
		}
		fmt.Fprintln(w)
	}
}

// PrintGantt writes an ASCII bar chart, one row per activity in start order,
// critical bars highlighted. One character is one day until the project is
// too long to fit, then days are bucketed.
func (r *Reporter) PrintGantt(w io.Writer) {
	if len(r.Result.Rows) == 0 {
		return
	}

	// The time origin can sit before day zero when leads pull an activity
	// negative.
	origin := 0
	span := r.Result.ProjectDuration
	for _, row := range r.Result.Rows {
		if row.ES < origin {
			origin = row.ES
		}
	}
	span -= origin
	if span < 1 {
		span = 1
	}
	step := (span + ganttWidth - 1) / ganttWidth
	if step < 1 {
		step = 1
	}

	for _, row := range r.Result.Rows {
		offset := (row.ES - origin) / step
		width := (row.Duration + step - 1) / step
		if width < 1 {
			width = 1
		}

		bar := strings.Repeat("█", width)
		if row.Critical {
			bar = ui.Red(bar)
		} else {
			bar = ui.Cyan(bar)
		}

		label := row.ID + " - " + row.Name
		if len(label) > 22 {
			label = label[:19] + "..."
		}
		fmt.Fprintf(w, "  %-22s |%s%s| %d..%d\n",
			label, strings.Repeat(" ", offset), bar, row.ES, row.EF)
	}
	if step > 1 {
		fmt.Fprintf(w, "  %s\n", ui.Dim(fmt.Sprintf("(1 column = %d days)", step)))
	}
}

// PrintSummary writes the critical path and total duration footer.
func (r *Reporter) PrintSummary(w io.Writer) {
	fmt.Fprintf(w, "\nCritical Path:    %s\n",
		ui.BoldYellow("⚡ "+strings.Join(r.Result.CriticalPath, " → ")))
	fmt.Fprintf(w, "Project Duration: %s\n",
		ui.Bold(fmt.Sprintf("%d days", r.Result.ProjectDuration)))
}

// JSON returns the machine-readable result.
func (r *Reporter) JSON() ([]byte, error) {
	type level struct {
		Index      int      `json:"index"`
		ES         int      `json:"es"`
		Activities []string `json:"activities"`
		Critical   bool     `json:"critical"`
	}

	type output struct {
		ProjectDuration int       `json:"project_duration"`
		CriticalPath    []string  `json:"critical_path"`
		Rows            []cpm.Row `json:"activities"`
		Levels          []level   `json:"levels"`
	}

	o := output{
		ProjectDuration: r.Result.ProjectDuration,
		CriticalPath:    r.Result.CriticalPath,
		Rows:            r.Result.Rows,
	}
	for _, l := range r.Result.Levels {
		o.Levels = append(o.Levels, level{
			Index:      l.Index,
			ES:         l.ES,
			Activities: l.ActivityIDs,
			Critical:   l.Critical,
		})
	}
	return json.MarshalIndent(o, "", "  ")
}
