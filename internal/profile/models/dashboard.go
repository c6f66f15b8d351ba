package models

import (
	"time"

	posting "placement/internal/posting/models"
)

// AppliedJob is a job on the caller's dashboard with their own application state.
type AppliedJob struct {
	posting.JobView
	AppliedAt         time.Time                 `json:"appliedAt"`
	ApplicationStatus posting.ApplicationStatus `json:"applicationStatus,omitempty"`
}

type AppliedTest struct {
	posting.TestView
	AppliedAt time.Time `json:"appliedAt"`
}

type RegisteredWebinar struct {
	posting.WebinarView
	AppliedAt time.Time `json:"appliedAt"`
}

// Dashboard lists the caller's postings, most recent membership first.
type Dashboard struct {
	Jobs     []AppliedJob        `json:"jobs"`
	Tests    []AppliedTest       `json:"tests"`
	Webinars []RegisteredWebinar `json:"webinars"`
}
