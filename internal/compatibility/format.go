package compatibility

import (
	"math"
	"strconv"
	"strings"
)

// directRoundLimit bounds the magnitudes rounded by scaling; past it score*10 loses
// precision and eventually overflows, so only the fractional part is rounded.
const directRoundLimit = 1e9

// FormatScore rounds a score to one decimal, half away from zero. Range is not checked:
// values outside [0,100] are formatted as given. NaN and infinities become 0.
func FormatScore(score float64) float64 {
	if math.IsNaN(score) || math.IsInf(score, 0) {
		return 0
	}
	if math.Abs(score) < directRoundLimit {
		return math.Round(score*10) / 10
	}
	whole, frac := math.Modf(score)
	return whole + math.Round(frac*10)/10
}

// FormatValue coerces a loosely typed score (as decoded from JSON) to a number and
// formats it. Missing, null and non-numeric values count as 0.
func FormatValue(v interface{}) float64 {
	return FormatScore(toFloat(v))
}

func toFloat(v interface{}) float64 {
	switch n := v.(type) {
	case nil:
		return 0
	case float64:
		return n
	case float32:
		return float64(n)
	case int:
		return float64(n)
	case int32:
		return float64(n)
	case int64:
		return float64(n)
	case *float64:
		if n == nil {
			return 0
		}
		return *n
	case interface{ Float64() (float64, error) }:
		f, err := n.Float64()
		if err != nil {
			return 0
		}
		return f
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0
		}
		return f
	default:
		return 0
	}
}
