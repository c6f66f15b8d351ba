package service

import (
	"fmt"
	"slices"
	"strings"

	posting "placement/internal/posting/models"
	dErrors "placement/pkg/domain-errors"
)

// validateResponses checks answers against the job's input fields: required
// fields carry a non-blank value, select and radio answers are one of the
// options and checkbox answers are a list of options. Other field types take
// free input even when options are configured. Answers to fields the job does
// not ask are kept verbatim.
func validateResponses(fields []posting.InputField, responses []posting.Response) error {
	byName := make(map[string]any, len(responses))
	for _, r := range responses {
		byName[strings.TrimSpace(r.FieldName)] = r.Value
	}
	for _, f := range fields {
		v, ok := byName[f.FieldName]
		if !ok || isBlank(v) {
			if f.Required {
				return dErrors.New(dErrors.CodeBadRequest, fmt.Sprintf("%s is required", f.FieldName))
			}
			continue
		}
		if !f.HasOptions() && !f.MultiChoice() {
			continue
		}
		if !answersFromOptions(f, v) {
			return dErrors.New(dErrors.CodeBadRequest, fmt.Sprintf("Invalid option for %s", f.FieldName))
		}
	}
	return nil
}

func answersFromOptions(f posting.InputField, v any) bool {
	switch val := v.(type) {
	case string:
		return f.HasOptions() && slices.Contains(f.Options, val)
	case []any:
		if !f.MultiChoice() {
			return false
		}
		for _, item := range val {
			s, ok := item.(string)
			if !ok || !slices.Contains(f.Options, s) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

func isBlank(v any) bool {
	switch val := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(val) == ""
	case []any:
		return len(val) == 0
	}
	return false
}
