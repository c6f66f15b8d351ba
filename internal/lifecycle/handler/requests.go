package handler

import (
	"encoding/json"
	"time"

	"placement/internal/lifecycle/models"
	posting "placement/internal/posting/models"
	dErrors "placement/pkg/domain-errors"
)

type ApplyJobRequest struct {
	Email     string            `json:"email"`
	Responses []ResponseRequest `json:"responses"`
	AppliedAt *time.Time        `json:"appliedAt"`
}

// ResponseRequest keeps the raw value so an absent value can be told apart
// from an explicit null.
type ResponseRequest struct {
	FieldName string          `json:"fieldName"`
	Value     json.RawMessage `json:"value"`
}

// ToModel converts the body. A response without a value is passed on as Absent
// so the service can reject it after checking who is applying.
func (r *ApplyJobRequest) ToModel() (models.JobApplication, error) {
	out := models.JobApplication{Email: r.Email}
	if r.AppliedAt != nil {
		out.AppliedAt = *r.AppliedAt
	}
	if r.Responses == nil {
		return out, nil
	}
	out.Responses = make([]posting.Response, 0, len(r.Responses))
	for _, resp := range r.Responses {
		if len(resp.Value) == 0 {
			out.Responses = append(out.Responses, posting.Response{FieldName: resp.FieldName, Absent: true})
			continue
		}
		var v any
		if err := json.Unmarshal(resp.Value, &v); err != nil {
			return models.JobApplication{}, dErrors.Wrap(err, dErrors.CodeBadRequest, "invalid response value")
		}
		out.Responses = append(out.Responses, posting.Response{FieldName: resp.FieldName, Value: v})
	}
	return out, nil
}

type RegistrationRequest struct {
	Email string `json:"email"`
}

type NotInterestedRequest struct {
	Email         string `json:"email"`
	NotInterested bool   `json:"notInterested"`
}

type StatusUpdateRequest struct {
	ApplicationEmail string `json:"applicationEmail"`
	NewStatus        string `json:"newStatus"`
}
