package models

import (
	"strings"
	"time"

	dErrors "placement/pkg/domain-errors"
)

var inputFieldTypes = map[string]bool{
	"text": true, "textarea": true, "number": true, "email": true,
	"url": true, "date": true, "select": true, "radio": true, "checkbox": true,
}

// JobInput is the admin payload for creating or replacing a job's content.
type JobInput struct {
	Company           string       `json:"company"`
	Role              string       `json:"role"`
	Location          string       `json:"location"`
	Description       string       `json:"description"`
	Deadline          *time.Time   `json:"deadline"`
	JobDescriptionPdf string       `json:"jobDescriptionPdf"`
	PdfURL            string       `json:"pdfUrl"`
	LinkToApply       string       `json:"linkToApply"`
	Eligibility       []string     `json:"eligibility"`
	ExtraFields       []ExtraField `json:"extraFields"`
	InputFields       []InputField `json:"inputFields"`
}

// Normalize trims free-text fields.
func (in *JobInput) Normalize() {
	in.Company = strings.TrimSpace(in.Company)
	in.Role = strings.TrimSpace(in.Role)
	in.Location = strings.TrimSpace(in.Location)
	for i := range in.InputFields {
		in.InputFields[i].FieldName = strings.TrimSpace(in.InputFields[i].FieldName)
		in.InputFields[i].Type = strings.ToLower(strings.TrimSpace(in.InputFields[i].Type))
	}
}

// Validate checks required fields and input field definitions.
func (in *JobInput) Validate() error {
	if in.Company == "" {
		return dErrors.New(dErrors.CodeValidation, "company is required")
	}
	if in.Role == "" {
		return dErrors.New(dErrors.CodeValidation, "role is required")
	}
	seen := make(map[string]bool, len(in.InputFields))
	for _, f := range in.InputFields {
		if f.FieldName == "" {
			return dErrors.New(dErrors.CodeValidation, "input field name is required")
		}
		if seen[f.FieldName] {
			return dErrors.New(dErrors.CodeValidation, "duplicate input field: "+f.FieldName)
		}
		seen[f.FieldName] = true
		if f.Type == "" {
			continue
		}
		if !inputFieldTypes[f.Type] {
			return dErrors.New(dErrors.CodeValidation, "unsupported input field type: "+f.Type)
		}
	}
	return nil
}

// ApplyTo copies content onto j, leaving applicant lists untouched.
func (in *JobInput) ApplyTo(j *Job) {
	j.Company = in.Company
	j.Role = in.Role
	j.Location = in.Location
	j.Description = in.Description
	j.Deadline = in.Deadline
	j.JobDescriptionPdf = in.JobDescriptionPdf
	j.PdfURL = in.PdfURL
	j.LinkToApply = in.LinkToApply
	j.Eligibility = nonNil(in.Eligibility)
	j.ExtraFields = nonNil(in.ExtraFields)
	j.InputFields = nonNil(in.InputFields)
}

// TestInput is the admin payload for a test.
type TestInput struct {
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Date        *time.Time   `json:"date"`
	Deadline    *time.Time   `json:"deadline"`
	Duration    string       `json:"duration"`
	Mode        string       `json:"mode"`
	Link        string       `json:"link"`
	PdfURL      string       `json:"pdfUrl"`
	ExtraFields []ExtraField `json:"extraFields"`
}

func (in *TestInput) Normalize() {
	in.Title = strings.TrimSpace(in.Title)
}

func (in *TestInput) Validate() error {
	if in.Title == "" {
		return dErrors.New(dErrors.CodeValidation, "title is required")
	}
	return nil
}

func (in *TestInput) ApplyTo(t *Test) {
	t.Title = in.Title
	t.Description = in.Description
	t.Date = in.Date
	t.Deadline = in.Deadline
	t.Duration = in.Duration
	t.Mode = in.Mode
	t.Link = in.Link
	t.PdfURL = in.PdfURL
	t.ExtraFields = nonNil(in.ExtraFields)
}

// WebinarInput is the admin payload for a webinar.
type WebinarInput struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Date        *time.Time `json:"date"`
	Time        string     `json:"time"`
	Duration    string     `json:"duration"`
	Mode        string     `json:"mode"`
	Link        string     `json:"link"`
}

func (in *WebinarInput) Normalize() {
	in.Title = strings.TrimSpace(in.Title)
}

func (in *WebinarInput) Validate() error {
	if in.Title == "" {
		return dErrors.New(dErrors.CodeValidation, "title is required")
	}
	if in.Date == nil {
		return dErrors.New(dErrors.CodeValidation, "date is required")
	}
	return nil
}

func (in *WebinarInput) ApplyTo(w *Webinar) {
	w.Title = in.Title
	w.Description = in.Description
	w.Date = in.Date
	w.Time = in.Time
	w.Duration = in.Duration
	w.Mode = in.Mode
	w.Link = in.Link
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
