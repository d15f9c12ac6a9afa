package compatibility

// TierLevel names a band of the overall compatibility score.
type TierLevel string

const (
	TierExcellent TierLevel = "excellent"
	TierVeryGood  TierLevel = "very-good"
	TierGood      TierLevel = "good"
	TierAverage   TierLevel = "average"
	TierWeak      TierLevel = "weak"
	TierVeryWeak  TierLevel = "very-weak"
)

// RecommendationCategory is the coarse verdict derived from the tier.
type RecommendationCategory string

const (
	Recommend    RecommendationCategory = "RECOMMEND"
	Consider     RecommendationCategory = "CONSIDER"
	NotRecommend RecommendationCategory = "NOT_RECOMMEND"
)

// Tier is the qualitative label rendered for an overall score.
type Tier struct {
	Level                  TierLevel              `json:"level"`
	Text                   string                 `json:"text"`
	ColorClass             string                 `json:"colorClass"`
	RecommendationCategory RecommendationCategory `json:"recommendationCategory"`
}

type tierBand struct {
	min  float64
	tier Tier
}

// tierBands is ordered by descending lower bound; the last band has no lower bound.
var tierBands = []tierBand{
	{90, Tier{TierExcellent, "Excellente compatibilité", "text-success", Recommend}},
	{80, Tier{TierVeryGood, "Très bonne compatibilité", "text-success", Recommend}},
	{70, Tier{TierGood, "Bonne compatibilité", "text-info", Consider}},
	{60, Tier{TierAverage, "Compatibilité moyenne", "text-warning", Consider}},
	{50, Tier{TierWeak, "Compatibilité faible", "text-orange", NotRecommend}},
}

var veryWeakTier = Tier{TierVeryWeak, "Compatibilité très faible", "text-danger", NotRecommend}

// ClassifyTier maps any score onto exactly one tier. Scores above 100 land in
// excellent; scores below 0 (and NaN) land in very-weak.
func ClassifyTier(score float64) Tier {
	for _, band := range tierBands {
		if score >= band.min {
			return band.tier
		}
	}
	return veryWeakTier
}
