// Package eligibility decides whether a student's batch matches a job's
// eligibility list.
package eligibility

import (
	"slices"
	"strconv"
	"strings"
)

// Batch is the pair of years a profile declares.
type Batch struct {
	Start int
	End   int
}

// Result carries the decision and the label that was compared.
type Result struct {
	Eligible bool   `json:"eligible"`
	Batch    string `json:"batch"`
}

// Normalize replaces en-dashes with hyphens and trims surrounding whitespace.
func Normalize(s string) string {
	return strings.TrimSpace(strings.ReplaceAll(s, "–", "-"))
}

// Label derives the batch label. A three-year span is reported as four years
// ending at End (lateral entry), anything else verbatim.
func Label(start, end int) string {
	if end-start == 3 {
		return strconv.Itoa(start-1) + "-" + strconv.Itoa(end)
	}
	return strconv.Itoa(start) + "-" + strconv.Itoa(end)
}

// Evaluate compares the batch label against the normalized eligibility list.
// A nil batch or missing years are never eligible; an empty list admits nobody.
func Evaluate(batch *Batch, eligibility []string) Result {
	if batch == nil || batch.Start == 0 || batch.End == 0 {
		return Result{}
	}
	label := Label(batch.Start, batch.End)
	allowed := make([]string, 0, len(eligibility))
	for _, e := range eligibility {
		allowed = append(allowed, Normalize(e))
	}
	return Result{Eligible: slices.Contains(allowed, label), Batch: label}
}
