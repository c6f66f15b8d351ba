package models

import (
	"time"

	posting "placement/internal/posting/models"
)

// JobApplication is a structured job application from the caller.
type JobApplication struct {
	Email     string
	Responses []posting.Response
	AppliedAt time.Time
}

// Registration applies to a test or registers for a webinar.
type Registration struct {
	Email string
}

// NotInterestedRequest records that the caller declines a job.
type NotInterestedRequest struct {
	Email         string
	NotInterested bool
}

// StatusUpdate is an admin transition of one application.
type StatusUpdate struct {
	ApplicationEmail string
	NewStatus        posting.ApplicationStatus
}

// Outcome is the result of a lifecycle write: a user-facing message and the
// posting's applicant count after the write.
type Outcome struct {
	Message string
	Count   int
}
