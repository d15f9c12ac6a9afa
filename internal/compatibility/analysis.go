package compatibility

import "time"

// Analysis is the consolidated result for one (candidate, offer) pair. It is built
// once per Analyze call and not modified afterwards.
type Analysis struct {
	CandidateID            string                 `json:"candidateId"`
	OfferID                string                 `json:"offerId"`
	OfferKind              OfferKind              `json:"offerType"`
	CompatibilityScore     float64                `json:"compatibilityScore"`
	DetailedScores         SubScores              `json:"detailedScores"`
	Tier                   Tier                   `json:"tier"`
	RecommendationCategory RecommendationCategory `json:"recommendationCategory"`
	Strengths              []string               `json:"strengths"`
	Weaknesses             []string               `json:"weaknesses"`
	Recommendations        []string               `json:"recommendations"`
	ServiceRecommendation  string                 `json:"serviceRecommendation,omitempty"`
	AnalysisDate           time.Time              `json:"analysisDate"`
	ScoreSaved             bool                   `json:"scoreSaved"`
}
