package compatibility

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyTier_Breakpoints(t *testing.T) {
	tests := []struct {
		score    float64
		level    TierLevel
		category RecommendationCategory
	}{
		{100, TierExcellent, Recommend},
		{92.3, TierExcellent, Recommend},
		{90, TierExcellent, Recommend},
		{89.9, TierVeryGood, Recommend},
		{80, TierVeryGood, Recommend},
		{79.9, TierGood, Consider},
		{70, TierGood, Consider},
		{69.9, TierAverage, Consider},
		{60, TierAverage, Consider},
		{59.9, TierWeak, NotRecommend},
		{50, TierWeak, NotRecommend},
		{49.9, TierVeryWeak, NotRecommend},
		{0, TierVeryWeak, NotRecommend},
	}

	for _, tt := range tests {
		tier := ClassifyTier(tt.score)
		assert.Equal(t, tt.level, tier.Level, "score %v", tt.score)
		assert.Equal(t, tt.category, tier.RecommendationCategory, "score %v", tt.score)
		assert.NotEmpty(t, tier.Text)
		assert.NotEmpty(t, tier.ColorClass)
	}
}

func TestClassifyTier_OutOfRangeClamps(t *testing.T) {
	assert.Equal(t, TierExcellent, ClassifyTier(250).Level)
	assert.Equal(t, TierExcellent, ClassifyTier(math.Inf(1)).Level)
	assert.Equal(t, TierVeryWeak, ClassifyTier(-5).Level)
	assert.Equal(t, TierVeryWeak, ClassifyTier(math.Inf(-1)).Level)
	assert.Equal(t, TierVeryWeak, ClassifyTier(math.NaN()).Level)
}

// Walking the whole range must move through the six tiers in order, each once.
func TestClassifyTier_ContiguousPartition(t *testing.T) {
	var seen []TierLevel
	for s := 0.0; s <= 100.0; s += 0.1 {
		level := ClassifyTier(FormatScore(s)).Level
		if len(seen) == 0 || seen[len(seen)-1] != level {
			seen = append(seen, level)
		}
	}

	assert.Equal(t, []TierLevel{TierVeryWeak, TierWeak, TierAverage, TierGood, TierVeryGood, TierExcellent}, seen)
}

func TestClassifyTier_Scenario(t *testing.T) {
	tier := ClassifyTier(FormatScore(92.34))

	assert.Equal(t, TierExcellent, tier.Level)
	assert.Equal(t, Recommend, tier.RecommendationCategory)
}
