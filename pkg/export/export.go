// Package export writes analysis reports in formats consumed by downstream
// tooling.
package export

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"strconv"

	"github.com/mreynaud/schedcore/core/scheduling"
)

// WriteJSON writes any report to w as indented JSON.
func WriteJSON(w io.Writer, report any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}

// WriteCriticalPathCSV writes the per-task timing detail as CSV.
func WriteCriticalPathCSV(w io.Writer, rep *scheduling.CriticalPathReport) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"task_id", "duration_days", "es", "ef", "ls", "lf", "total_float", "free_float", "critical"}); err != nil {
		return err
	}
	for _, t := range rep.Tasks {
		rec := []string{
			t.TaskID,
			days(t.DurationDays),
			days(t.EarliestStart),
			days(t.EarliestEnd),
			days(t.LatestStart),
			days(t.LatestEnd),
			days(t.TotalFloat),
			days(t.FreeFloat),
			strconv.FormatBool(t.Critical),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func days(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
