// internal/workers/compatibility/analyze-compatibility/guard.go
package analyzecompatibility

import (
	"context"
	"time"

	apperrors "compatibility-workers/internal/common/errors"
	"compatibility-workers/internal/common/logger"

	"github.com/google/uuid"
)

const (
	lockKeyPrefix      = "compat:inflight:"
	lockReleaseTimeout = 2 * time.Second
)

// Locker is a TTL lock keyed by string; *database.RedisClient implements it.
type Locker interface {
	AcquireLock(ctx context.Context, key, token string, ttl time.Duration) (bool, error)
	ReleaseLock(ctx context.Context, key, token string) (bool, error)
}

// InFlightGuard keeps at most one analysis running per (candidate, offer) pair across
// all worker instances. When the lock store is unreachable the guard lets the analysis
// through and logs a warning.
type InFlightGuard struct {
	locker Locker
	ttl    time.Duration
	logger logger.Logger
}

func NewInFlightGuard(locker Locker, ttl time.Duration, log logger.Logger) *InFlightGuard {
	return &InFlightGuard{locker: locker, ttl: ttl, logger: log}
}

func lockKey(candidateID, offerID string) string {
	return lockKeyPrefix + candidateID + ":" + offerID
}

// Acquire takes the pair's lock. The returned release func is always safe to call.
func (g *InFlightGuard) Acquire(ctx context.Context, candidateID, offerID string) (func(), error) {
	noop := func() {}
	if g == nil || g.locker == nil {
		return noop, nil
	}

	key := lockKey(candidateID, offerID)
	token := uuid.NewString()

	ok, err := g.locker.AcquireLock(ctx, key, token, g.ttl)
	if err != nil {
		g.logger.Warn("in-flight lock unavailable, continuing without it", map[string]interface{}{
			"lockKey": key,
			"error":   err.Error(),
		})
		return noop, nil
	}
	if !ok {
		return noop, apperrors.NewAnalysisInProgressError(candidateID, offerID)
	}

	return func() {
		// The job context may already be done; release on a fresh one.
		releaseCtx, cancel := context.WithTimeout(context.Background(), lockReleaseTimeout)
		defer cancel()
		if _, err := g.locker.ReleaseLock(releaseCtx, key, token); err != nil {
			g.logger.Warn("failed to release in-flight lock", map[string]interface{}{
				"lockKey": key,
				"error":   err.Error(),
			})
		}
	}, nil
}
