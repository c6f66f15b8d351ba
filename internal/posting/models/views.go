package models

import (
	"time"

	"placement/internal/deadline"
)

// JobView is a job with its deadline classification for the request time.
type JobView struct {
	*Job
	DeadlineStatus *deadline.Status `json:"deadlineStatus,omitempty"`
}

// TestView is a test with its deadline classification.
type TestView struct {
	*Test
	DeadlineStatus *deadline.Status `json:"deadlineStatus,omitempty"`
}

// WebinarView is a webinar classified by its date.
type WebinarView struct {
	*Webinar
	DeadlineStatus *deadline.Status `json:"deadlineStatus,omitempty"`
}

func NewJobView(j *Job, now time.Time) JobView {
	return JobView{Job: j, DeadlineStatus: deadline.ClassifyPtr(deadline.KindJob, j.Deadline, now)}
}

func NewTestView(t *Test, now time.Time) TestView {
	return TestView{Test: t, DeadlineStatus: deadline.ClassifyPtr(deadline.KindTest, t.Deadline, now)}
}

func NewWebinarView(w *Webinar, now time.Time) WebinarView {
	return WebinarView{Webinar: w, DeadlineStatus: deadline.ClassifyPtr(deadline.KindWebinar, w.Date, now)}
}

// StudentSummary is a registrant or opt-out joined with their profile, or just
// the email when no profile exists.
type StudentSummary struct {
	Email            string `json:"email"`
	Name             string `json:"name,omitempty"`
	CollegeEmail     string `json:"collegeEmail,omitempty"`
	PersonalEmail    string `json:"personalEmail,omitempty"`
	EnrollmentNumber string `json:"enrollmentNumber,omitempty"`
	Department       string `json:"department,omitempty"`
	BatchStart       int    `json:"batchStart,omitempty"`
	BatchEnd         int    `json:"batchEnd,omitempty"`
	Phone            string `json:"phone,omitempty"`
	Resume           string `json:"resume,omitempty"`
}
