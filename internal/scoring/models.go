package scoring

import (
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// Request is the body sent to the scoring service.
type Request struct {
	CandidateID string `json:"candidate_id" validate:"required"`
	OfferID     string `json:"offer_id" validate:"required"`
	OfferType   string `json:"offer_type" validate:"required,oneof=JOB CONSULTATION FUNDING"`
}

var validate = validator.New()

// Validate checks the request shape before it goes on the wire.
func (r *Request) Validate() error {
	return validate.Struct(r)
}

// Response is the scoring service's success body. Numeric fields are left loosely
// typed; the service has been seen to send nulls and numeric strings.
type Response struct {
	CompatibilityScore interface{}            `json:"compatibility_score"`
	DetailedScores     map[string]interface{} `json:"detailed_scores"`
	Recommendation     string                 `json:"recommendation"`
	AnalysisDate       string                 `json:"analysis_date"`
	ScoreSaved         bool                   `json:"score_saved"`
}

var analysisDateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// ParsedAnalysisDate parses analysis_date. Timestamps without a zone are read as UTC.
func (r *Response) ParsedAnalysisDate() (time.Time, bool) {
	raw := strings.TrimSpace(r.AnalysisDate)
	if raw == "" {
		return time.Time{}, false
	}
	for _, layout := range analysisDateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

// errorBody is what the service sends alongside non-2xx statuses.
type errorBody struct {
	Detail  interface{} `json:"detail"`
	Message string      `json:"message"`
	Error   string      `json:"error"`
}
