// Package deadline classifies posting deadlines and webinar dates relative to
// the request time.
package deadline

import (
	"fmt"
	"time"
)

// Kind selects the label variant.
type Kind string

const (
	KindJob     Kind = "job"
	KindTest    Kind = "test"
	KindWebinar Kind = "webinar"
)

// Status values.
const (
	StatusExpired   = "expired"
	StatusCompleted = "completed"
	StatusToday     = "today"
	StatusUrgent    = "urgent"
	StatusUpcoming  = "upcoming"
	StatusSoon      = "soon"
	StatusNormal    = "normal"
)

const day = 24 * time.Hour

// Status is the derived, display-ready classification.
type Status struct {
	Status   string `json:"status"`
	Color    string `json:"color"`
	Text     string `json:"text"`
	DaysLeft int    `json:"daysLeft"`
}

// Past reports whether the target lies before the reference time.
func (s Status) Past() bool {
	return s.Status == StatusExpired || s.Status == StatusCompleted
}

// DaysUntil is floor((target-now) / 24h). Any instant after target is day -1
// or earlier.
func DaysUntil(target, now time.Time) int {
	diff := target.Sub(now)
	days := diff / day
	if diff < 0 && diff%day != 0 {
		days--
	}
	return int(days)
}

// Classify derives the status for target as seen at now.
// Jobs have no "today" bucket: a deadline later today reads "0 days left".
func Classify(kind Kind, target, now time.Time) Status {
	days := DaysUntil(target, now)
	switch kind {
	case KindWebinar:
		return classifyWebinar(days)
	case KindTest:
		if days == 0 {
			return Status{Status: StatusToday, Color: "orange", Text: "Today", DaysLeft: 0}
		}
		return classifyDeadline(days)
	default:
		return classifyDeadline(days)
	}
}

// ClassifyPtr is Classify for optional targets; nil yields nil.
func ClassifyPtr(kind Kind, target *time.Time, now time.Time) *Status {
	if target == nil || target.IsZero() {
		return nil
	}
	s := Classify(kind, *target, now)
	return &s
}

// IsPast reports now > deadline. A deadline equal to now is still open.
// It agrees with Classify(...).Past() for every kind.
func IsPast(deadline, now time.Time) bool {
	return DaysUntil(deadline, now) < 0
}

func classifyDeadline(days int) Status {
	left := fmt.Sprintf("%d days left", days)
	switch {
	case days < 0:
		return Status{Status: StatusExpired, Color: "red", Text: "Expired", DaysLeft: days}
	case days <= 3:
		return Status{Status: StatusUrgent, Color: "orange", Text: left, DaysLeft: days}
	case days <= 7:
		return Status{Status: StatusSoon, Color: "yellow", Text: left, DaysLeft: days}
	default:
		return Status{Status: StatusNormal, Color: "green", Text: left, DaysLeft: days}
	}
}

func classifyWebinar(days int) Status {
	in := fmt.Sprintf("In %d days", days)
	switch {
	case days < 0:
		return Status{Status: StatusCompleted, Color: "gray", Text: "Completed", DaysLeft: days}
	case days == 0:
		return Status{Status: StatusToday, Color: "red", Text: "Today!", DaysLeft: 0}
	case days <= 3:
		return Status{Status: StatusUpcoming, Color: "orange", Text: in, DaysLeft: days}
	case days <= 7:
		return Status{Status: StatusSoon, Color: "yellow", Text: in, DaysLeft: days}
	default:
		return Status{Status: StatusNormal, Color: "green", Text: in, DaysLeft: days}
	}
}
