package sentinel

import "errors"

// Sentinel errors for store facts. Profile and posting stores return these
// (optionally wrapped) and services translate them into domain errors.
//
//   - ErrNotFound: document, applicant entry or membership entry does not exist
//   - ErrConflict: a conditional write found the email or posting already present
//   - ErrUnavailable: the backing store cannot be reached
//
// For validation errors (bad input, missing fields), use pkg/domain-errors directly.
var (
	ErrNotFound    = errors.New("not found")
	ErrConflict    = errors.New("conflict")
	ErrUnavailable = errors.New("unavailable")
)
