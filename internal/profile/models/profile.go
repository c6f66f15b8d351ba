package models

import (
	"slices"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"

	"placement/internal/eligibility"
	posting "placement/internal/posting/models"
	dErrors "placement/pkg/domain-errors"
)

// Membership records that the profile applied or registered for a posting.
// Entries are keyed by the posting's own id field, so only the one matching
// the list the entry lives in is set.
type Membership struct {
	JobID     bson.ObjectID `bson:"jobId,omitempty" json:"jobId,omitzero"`
	TestID    bson.ObjectID `bson:"testId,omitempty" json:"testId,omitzero"`
	WebinarID bson.ObjectID `bson:"webinarId,omitempty" json:"webinarId,omitzero"`
	AppliedAt time.Time     `bson:"appliedAt" json:"appliedAt"`
}

// NewMembership builds the entry stored in kind's list.
func NewMembership(kind posting.Kind, id bson.ObjectID, appliedAt time.Time) Membership {
	m := Membership{AppliedAt: appliedAt}
	switch kind {
	case posting.KindJob:
		m.JobID = id
	case posting.KindTest:
		m.TestID = id
	case posting.KindWebinar:
		m.WebinarID = id
	}
	return m
}

// PostingID returns the id of the posting the entry refers to.
func (m Membership) PostingID() bson.ObjectID {
	switch {
	case !m.JobID.IsZero():
		return m.JobID
	case !m.TestID.IsZero():
		return m.TestID
	default:
		return m.WebinarID
	}
}

// IDField is the key holding the posting id inside kind's entries.
func IDField(kind posting.Kind) string {
	switch kind {
	case posting.KindTest:
		return "testId"
	case posting.KindWebinar:
		return "webinarId"
	default:
		return "jobId"
	}
}

// Profile is a student record keyed by college email.
type Profile struct {
	ID                bson.ObjectID `bson:"_id,omitempty" json:"_id,omitempty"`
	CollegeEmail      string        `bson:"collegeEmail" json:"collegeEmail"`
	Name              string        `bson:"name" json:"name"`
	PersonalEmail     string        `bson:"personalEmail,omitempty" json:"personalEmail,omitempty"`
	EnrollmentNumber  string        `bson:"enrollmentNumber,omitempty" json:"enrollmentNumber,omitempty"`
	Department        string        `bson:"department,omitempty" json:"department,omitempty"`
	BatchStart        int           `bson:"batchStart,omitempty" json:"batchStart,omitempty"`
	BatchEnd          int           `bson:"batchEnd,omitempty" json:"batchEnd,omitempty"`
	Phone             string        `bson:"phone,omitempty" json:"phone,omitempty"`
	TenthPercentage   float64       `bson:"tenthPercentage,omitempty" json:"tenthPercentage,omitempty"`
	TwelfthPercentage float64       `bson:"twelfthPercentage,omitempty" json:"twelfthPercentage,omitempty"`
	CollegeGPA        float64       `bson:"collegeGPA,omitempty" json:"collegeGPA,omitempty"`
	Linkedin          string        `bson:"linkedin,omitempty" json:"linkedin,omitempty"`
	Github            string        `bson:"github,omitempty" json:"github,omitempty"`
	Leetcode          string        `bson:"leetcode,omitempty" json:"leetcode,omitempty"`
	Resume            string        `bson:"resume,omitempty" json:"resume,omitempty"`
	Status            string        `bson:"status,omitempty" json:"status,omitempty"`
	Jobs              []Membership  `bson:"jobs" json:"jobs"`
	Tests             []Membership  `bson:"tests" json:"tests"`
	Webinars          []Membership  `bson:"webinars" json:"webinars"`
	CreatedAt         time.Time     `bson:"createdAt" json:"createdAt"`
	UpdatedAt         time.Time     `bson:"updatedAt" json:"updatedAt"`
}

// Batch returns the eligibility input for this profile.
func (p *Profile) Batch() *eligibility.Batch {
	if p == nil {
		return nil
	}
	return &eligibility.Batch{Start: p.BatchStart, End: p.BatchEnd}
}

// Memberships returns the list for kind.
func (p *Profile) Memberships(kind posting.Kind) []Membership {
	switch kind {
	case posting.KindJob:
		return p.Jobs
	case posting.KindTest:
		return p.Tests
	case posting.KindWebinar:
		return p.Webinars
	}
	return nil
}

// HasMembership reports whether the profile already lists the posting.
func (p *Profile) HasMembership(kind posting.Kind, id bson.ObjectID) bool {
	return slices.ContainsFunc(p.Memberships(kind), func(m Membership) bool { return m.PostingID() == id })
}

// AddMembership appends an entry; false when it already exists.
func (p *Profile) AddMembership(kind posting.Kind, m Membership) bool {
	if p.HasMembership(kind, m.PostingID()) {
		return false
	}
	list := p.listFor(kind)
	if list == nil {
		return false
	}
	*list = append(*list, m)
	return true
}

// RemoveMembership drops the entry and returns it; false when absent.
func (p *Profile) RemoveMembership(kind posting.Kind, id bson.ObjectID) (Membership, int, bool) {
	list := p.listFor(kind)
	if list == nil {
		return Membership{}, -1, false
	}
	i := slices.IndexFunc(*list, func(m Membership) bool { return m.PostingID() == id })
	if i < 0 {
		return Membership{}, -1, false
	}
	removed := (*list)[i]
	*list = slices.Delete(*list, i, i+1)
	return removed, i, true
}

// InsertMembership puts m back at index i (used to undo a removal).
func (p *Profile) InsertMembership(kind posting.Kind, i int, m Membership) {
	list := p.listFor(kind)
	if list == nil {
		return
	}
	if i < 0 || i > len(*list) {
		i = len(*list)
	}
	*list = slices.Insert(*list, i, m)
}

// PostingIDs returns the ids in the kind's list.
func (p *Profile) PostingIDs(kind posting.Kind) []bson.ObjectID {
	ms := p.Memberships(kind)
	ids := make([]bson.ObjectID, 0, len(ms))
	for _, m := range ms {
		ids = append(ids, m.PostingID())
	}
	return ids
}

// Clone returns a deep copy.
func (p *Profile) Clone() *Profile {
	c := *p
	c.Jobs = slices.Clone(p.Jobs)
	c.Tests = slices.Clone(p.Tests)
	c.Webinars = slices.Clone(p.Webinars)
	return &c
}

func (p *Profile) listFor(kind posting.Kind) *[]Membership {
	switch kind {
	case posting.KindJob:
		return &p.Jobs
	case posting.KindTest:
		return &p.Tests
	case posting.KindWebinar:
		return &p.Webinars
	}
	return nil
}

// ProfileInput is the register-or-update payload. The college email comes from
// the verified identity and cannot be changed.
type ProfileInput struct {
	Name              string  `json:"name"`
	PersonalEmail     string  `json:"personalEmail"`
	EnrollmentNumber  string  `json:"enrollmentNumber"`
	Department        string  `json:"department"`
	BatchStart        int     `json:"batchStart"`
	BatchEnd          int     `json:"batchEnd"`
	Phone             string  `json:"phone"`
	TenthPercentage   float64 `json:"tenthPercentage"`
	TwelfthPercentage float64 `json:"twelfthPercentage"`
	CollegeGPA        float64 `json:"collegeGPA"`
	Linkedin          string  `json:"linkedin"`
	Github            string  `json:"github"`
	Leetcode          string  `json:"leetcode"`
	Resume            string  `json:"resume"`
}

// Normalize trims free-text fields.
func (in *ProfileInput) Normalize() {
	in.Name = strings.TrimSpace(in.Name)
	in.PersonalEmail = strings.TrimSpace(in.PersonalEmail)
	in.EnrollmentNumber = strings.TrimSpace(in.EnrollmentNumber)
	in.Department = strings.TrimSpace(in.Department)
	in.Phone = strings.TrimSpace(in.Phone)
}

// Validate checks the batch range and percentages.
func (in *ProfileInput) Validate() error {
	if in.Name == "" {
		return dErrors.New(dErrors.CodeValidation, "name is required")
	}
	if in.BatchStart != 0 || in.BatchEnd != 0 {
		if in.BatchStart == 0 || in.BatchEnd == 0 {
			return dErrors.New(dErrors.CodeValidation, "batchStart and batchEnd must be set together")
		}
		if in.BatchEnd <= in.BatchStart {
			return dErrors.New(dErrors.CodeValidation, "batchEnd must be after batchStart")
		}
	}
	for name, v := range map[string]float64{
		"tenthPercentage":   in.TenthPercentage,
		"twelfthPercentage": in.TwelfthPercentage,
	} {
		if v < 0 || v > 100 {
			return dErrors.New(dErrors.CodeValidation, name+" must be between 0 and 100")
		}
	}
	if in.CollegeGPA < 0 || in.CollegeGPA > 10 {
		return dErrors.New(dErrors.CodeValidation, "collegeGPA must be between 0 and 10")
	}
	return nil
}

// ApplyTo copies editable fields onto p.
func (in *ProfileInput) ApplyTo(p *Profile) {
	p.Name = in.Name
	p.PersonalEmail = in.PersonalEmail
	p.EnrollmentNumber = in.EnrollmentNumber
	p.Department = in.Department
	p.BatchStart = in.BatchStart
	p.BatchEnd = in.BatchEnd
	p.Phone = in.Phone
	p.TenthPercentage = in.TenthPercentage
	p.TwelfthPercentage = in.TwelfthPercentage
	p.CollegeGPA = in.CollegeGPA
	p.Linkedin = in.Linkedin
	p.Github = in.Github
	p.Leetcode = in.Leetcode
	p.Resume = in.Resume
}

// Summary projects the profile for admin applicant views.
func (p *Profile) Summary(email string) posting.StudentSummary {
	return posting.StudentSummary{
		Email:            email,
		Name:             p.Name,
		CollegeEmail:     p.CollegeEmail,
		PersonalEmail:    p.PersonalEmail,
		EnrollmentNumber: p.EnrollmentNumber,
		Department:       p.Department,
		BatchStart:       p.BatchStart,
		BatchEnd:         p.BatchEnd,
		Phone:            p.Phone,
		Resume:           p.Resume,
	}
}
