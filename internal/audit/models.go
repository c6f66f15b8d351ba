package audit

import "time"

// Action names a recorded lifecycle or admin change.
type Action string

const (
	ActionJobApplied        Action = "job_applied"
	ActionJobWithdrawn      Action = "job_withdrawn"
	ActionJobNotInterested  Action = "job_not_interested"
	ActionApplicationStatus Action = "application_status_updated"
	ActionTestApplied       Action = "test_applied"
	ActionTestWithdrawn     Action = "test_withdrawn"
	ActionWebinarRegistered Action = "webinar_registered"
	ActionWebinarWithdrawn  Action = "webinar_withdrawn"
	ActionPostingCreated    Action = "posting_created"
	ActionPostingUpdated    Action = "posting_updated"
	ActionPostingDeleted    Action = "posting_deleted"
	ActionProfileSaved      Action = "profile_saved"
)

// Event is emitted after a successful write. Keep it transport-agnostic so
// sinks can fan out.
type Event struct {
	ID          string    `json:"id"`
	Timestamp   time.Time `json:"timestamp"`
	Action      Action    `json:"action"`
	Actor       string    `json:"actor"`
	Subject     string    `json:"subject,omitempty"`
	PostingKind string    `json:"postingKind,omitempty"`
	PostingID   string    `json:"postingId,omitempty"`
	Detail      string    `json:"detail,omitempty"`
	RequestID   string    `json:"requestId,omitempty"`
}
