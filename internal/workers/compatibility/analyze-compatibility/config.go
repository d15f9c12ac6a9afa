// internal/workers/compatibility/analyze-compatibility/config.go
package analyzecompatibility

import (
	"time"

	"compatibility-workers/internal/common/config"
)

type Config struct {
	// Timeout bounds one analysis, including the scoring call, and is the TTL of the
	// in-flight lock.
	Timeout time.Duration
}

func LoadConfig(cfg *config.Config) *Config {
	return &Config{
		Timeout: config.ScoringTimeout(cfg, TaskType),
	}
}
