// internal/workers/compatibility/analyze-compatibility/models.go
package analyzecompatibility

import "compatibility-workers/internal/compatibility"

// Input is read from the job variables. OfferType is optional; when absent it is
// looked up from the offer.
type Input struct {
	CandidateID string `json:"candidateId"`
	OfferID     string `json:"offerId"`
	OfferType   string `json:"offerType,omitempty"`
}

type Output struct {
	Analysis *compatibility.Analysis `json:"analysis"`
}

const inputSchema = `{
	"type": "object",
	"required": ["candidateId", "offerId"],
	"properties": {
		"candidateId": {"type": "string", "minLength": 1},
		"offerId": {"type": "string", "minLength": 1},
		"offerType": {"type": ["string", "null"]}
	}
}`
