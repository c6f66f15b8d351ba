package models

import (
	"slices"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"

	"placement/internal/deadline"
)

// Kind names a posting type.
type Kind string

const (
	KindJob     Kind = "job"
	KindTest    Kind = "test"
	KindWebinar Kind = "webinar"
)

// Label is the capitalised kind used in user-facing messages.
func (k Kind) Label() string {
	switch k {
	case KindJob:
		return "Job"
	case KindTest:
		return "Test"
	case KindWebinar:
		return "Webinar"
	}
	return string(k)
}

// DeadlineKind maps the posting kind to its classifier variant.
func (k Kind) DeadlineKind() deadline.Kind {
	return deadline.Kind(k)
}

// ApplicationStatus is the admin-controlled state of a job application.
type ApplicationStatus string

const (
	StatusPending  ApplicationStatus = "pending"
	StatusReviewed ApplicationStatus = "reviewed"
	StatusAccepted ApplicationStatus = "accepted"
	StatusRejected ApplicationStatus = "rejected"
)

// IsValid reports whether s is on the allow-list.
func (s ApplicationStatus) IsValid() bool {
	switch s {
	case StatusPending, StatusReviewed, StatusAccepted, StatusRejected:
		return true
	}
	return false
}

// ExtraField is an admin-supplied label/value pair shown on the posting.
type ExtraField struct {
	FieldName  string `bson:"fieldName" json:"fieldName"`
	FieldValue string `bson:"fieldValue" json:"fieldValue"`
}

// InputField describes a question the applicant must answer.
type InputField struct {
	FieldName   string   `bson:"fieldName" json:"fieldName"`
	Type        string   `bson:"type" json:"type"`
	Placeholder string   `bson:"placeholder,omitempty" json:"placeholder,omitempty"`
	Required    bool     `bson:"required" json:"required"`
	Options     []string `bson:"options,omitempty" json:"options,omitempty"`
}

// HasOptions reports whether the answer must be one of Options.
func (f InputField) HasOptions() bool {
	return (f.Type == "select" || f.Type == "radio") && len(f.Options) > 0
}

// MultiChoice reports whether the answer is a list drawn from Options.
func (f InputField) MultiChoice() bool {
	return f.Type == "checkbox" && len(f.Options) > 0
}

// Response is one answer in a job application. Absent marks an incoming
// answer that carried no value at all and is never stored.
type Response struct {
	FieldName string `bson:"fieldName" json:"fieldName"`
	Value     any    `bson:"value" json:"value"`
	Absent    bool   `bson:"-" json:"-"`
}

// Application is a job applicant entry.
type Application struct {
	Email         string            `bson:"email" json:"email"`
	Responses     []Response        `bson:"responses" json:"responses"`
	AppliedAt     time.Time         `bson:"appliedAt" json:"appliedAt"`
	ApplicantName string            `bson:"applicantName" json:"applicantName"`
	Status        ApplicationStatus `bson:"status" json:"status"`
	UpdatedAt     *time.Time        `bson:"updatedAt,omitempty" json:"updatedAt,omitempty"`
}

// Job is a job posting.
type Job struct {
	ID                    bson.ObjectID `bson:"_id" json:"_id"`
	Company               string        `bson:"company" json:"company"`
	Role                  string        `bson:"role" json:"role"`
	Location              string        `bson:"location" json:"location"`
	Description           string        `bson:"description" json:"description"`
	Deadline              *time.Time    `bson:"deadline,omitempty" json:"deadline,omitempty"`
	PostedAt              *time.Time    `bson:"postedAt,omitempty" json:"postedAt,omitempty"`
	JobDescriptionPdf     string        `bson:"jobDescriptionPdf,omitempty" json:"jobDescriptionPdf,omitempty"`
	PdfURL                string        `bson:"pdfUrl,omitempty" json:"pdfUrl,omitempty"`
	LinkToApply           string        `bson:"linkToApply,omitempty" json:"linkToApply,omitempty"`
	Eligibility           []string      `bson:"eligibility" json:"eligibility"`
	ExtraFields           []ExtraField  `bson:"extraFields" json:"extraFields"`
	InputFields           []InputField  `bson:"inputFields" json:"inputFields"`
	StudentsApplied       []Application `bson:"studentsApplied" json:"studentsApplied"`
	StudentsNotInterested []string      `bson:"studentsNotInterested" json:"studentsNotInterested"`
	CreatedAt             time.Time     `bson:"createdAt" json:"createdAt"`
	UpdatedAt             time.Time     `bson:"updatedAt" json:"updatedAt"`
}

// HasApplicant reports whether email already applied.
func (j *Job) HasApplicant(email string) bool {
	return j.applicationIndex(email) >= 0
}

// Application returns the entry for email, if any.
func (j *Job) Application(email string) (*Application, bool) {
	i := j.applicationIndex(email)
	if i < 0 {
		return nil, false
	}
	return &j.StudentsApplied[i], true
}

func (j *Job) applicationIndex(email string) int {
	return slices.IndexFunc(j.StudentsApplied, func(a Application) bool { return a.Email == email })
}

// IsNotInterested reports whether email opted out.
func (j *Job) IsNotInterested(email string) bool {
	return slices.Contains(j.StudentsNotInterested, email)
}

// Clone returns a deep copy safe to hand out of a store.
func (j *Job) Clone() *Job {
	c := *j
	c.Deadline = cloneTime(j.Deadline)
	c.PostedAt = cloneTime(j.PostedAt)
	c.Eligibility = slices.Clone(j.Eligibility)
	c.ExtraFields = slices.Clone(j.ExtraFields)
	c.InputFields = make([]InputField, len(j.InputFields))
	for i, f := range j.InputFields {
		f.Options = slices.Clone(f.Options)
		c.InputFields[i] = f
	}
	c.StudentsApplied = make([]Application, len(j.StudentsApplied))
	for i, a := range j.StudentsApplied {
		a.Responses = slices.Clone(a.Responses)
		a.UpdatedAt = cloneTime(a.UpdatedAt)
		c.StudentsApplied[i] = a
	}
	c.StudentsNotInterested = slices.Clone(j.StudentsNotInterested)
	return &c
}

// Test is an assessment posting. Registrants are bare emails.
type Test struct {
	ID              bson.ObjectID `bson:"_id" json:"_id"`
	Title           string        `bson:"title" json:"title"`
	Description     string        `bson:"description" json:"description"`
	Date            *time.Time    `bson:"date,omitempty" json:"date,omitempty"`
	Deadline        *time.Time    `bson:"deadline,omitempty" json:"deadline,omitempty"`
	Duration        string        `bson:"duration,omitempty" json:"duration,omitempty"`
	Mode            string        `bson:"mode,omitempty" json:"mode,omitempty"`
	Link            string        `bson:"link,omitempty" json:"link,omitempty"`
	PdfURL          string        `bson:"pdfUrl,omitempty" json:"pdfUrl,omitempty"`
	ExtraFields     []ExtraField  `bson:"extraFields" json:"extraFields"`
	StudentsApplied []string      `bson:"studentsApplied" json:"studentsApplied"`
	CreatedAt       time.Time     `bson:"createdAt" json:"createdAt"`
	UpdatedAt       time.Time     `bson:"updatedAt" json:"updatedAt"`
}

// HasApplicant reports whether email registered.
func (t *Test) HasApplicant(email string) bool {
	return slices.Contains(t.StudentsApplied, email)
}

// Clone returns a deep copy.
func (t *Test) Clone() *Test {
	c := *t
	c.Date = cloneTime(t.Date)
	c.Deadline = cloneTime(t.Deadline)
	c.ExtraFields = slices.Clone(t.ExtraFields)
	c.StudentsApplied = slices.Clone(t.StudentsApplied)
	return &c
}

// Webinar is a scheduled session. Registrants are bare emails.
type Webinar struct {
	ID              bson.ObjectID `bson:"_id" json:"_id"`
	Title           string        `bson:"title" json:"title"`
	Description     string        `bson:"description" json:"description"`
	Date            *time.Time    `bson:"date,omitempty" json:"date,omitempty"`
	Time            string        `bson:"time,omitempty" json:"time,omitempty"`
	Duration        string        `bson:"duration,omitempty" json:"duration,omitempty"`
	Mode            string        `bson:"mode,omitempty" json:"mode,omitempty"`
	Link            string        `bson:"link,omitempty" json:"link,omitempty"`
	StudentsApplied []string      `bson:"studentsApplied" json:"studentsApplied"`
	CreatedAt       time.Time     `bson:"createdAt" json:"createdAt"`
	UpdatedAt       time.Time     `bson:"updatedAt" json:"updatedAt"`
}

// HasApplicant reports whether email registered.
func (w *Webinar) HasApplicant(email string) bool {
	return slices.Contains(w.StudentsApplied, email)
}

// Clone returns a deep copy.
func (w *Webinar) Clone() *Webinar {
	c := *w
	c.Date = cloneTime(w.Date)
	c.StudentsApplied = slices.Clone(w.StudentsApplied)
	return &c
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
