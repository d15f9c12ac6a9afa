// Package offers resolves marketplace offer metadata needed before scoring.
package offers

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	apperrors "compatibility-workers/internal/common/errors"
	"compatibility-workers/internal/common/logger"

	"github.com/redis/go-redis/v9"
)

const (
	cacheKeyPrefix = "offer:type:"
	offerTypeQuery = `SELECT offer_type FROM offers WHERE id = $1`
	dbServiceName  = "postgres"
)

// RowQuerier runs single-row queries; *database.PostgresClient implements it.
type RowQuerier interface {
	QueryRow(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// Cache is a string key/value store with expiry; *database.RedisClient implements it.
// A missing key is reported as redis.Nil.
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
}

// Directory looks up an offer's type alias in Postgres behind a Redis read-through
// cache. The returned alias is stored as-is; normalization is the analyzer's job.
type Directory struct {
	db       RowQuerier
	cache    Cache
	cacheTTL time.Duration
	logger   logger.Logger
}

// NewDirectory builds a directory over db. cache may be nil.
func NewDirectory(db RowQuerier, cache Cache, cacheTTL time.Duration, log logger.Logger) *Directory {
	return &Directory{
		db:       db,
		cache:    cache,
		cacheTTL: cacheTTL,
		logger:   log.WithFields(map[string]interface{}{"component": "offer-directory"}),
	}
}

func cacheKey(offerID string) string {
	return cacheKeyPrefix + offerID
}

// OfferType returns the stored type alias of offerID. Cache failures are logged and
// skipped; a missing offer is NOT_FOUND, a query cut off by the deadline is TIMEOUT and
// any other database failure is OFFER_LOOKUP_FAILED.
func (d *Directory) OfferType(ctx context.Context, offerID string) (string, error) {
	key := cacheKey(offerID)

	if d.cache != nil {
		alias, err := d.cache.Get(ctx, key)
		switch {
		case err == nil && alias != "":
			return alias, nil
		case err != nil && !errors.Is(err, redis.Nil):
			d.logger.Warn("offer type cache read failed", map[string]interface{}{
				"offerId": offerID,
				"error":   err.Error(),
			})
		}
	}

	var alias string
	if err := d.db.QueryRow(ctx, offerTypeQuery, offerID).Scan(&alias); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", apperrors.NewNotFoundError("offer", offerID)
		}
		ctxErr := ctx.Err()
		if errors.Is(ctxErr, context.Canceled) {
			return "", ctxErr
		}
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctxErr, context.DeadlineExceeded) {
			return "", apperrors.NewTimeoutError(dbServiceName, err)
		}
		return "", apperrors.NewOfferLookupFailedError(offerID, err)
	}

	alias = strings.TrimSpace(alias)
	if alias == "" {
		return "", apperrors.NewNotFoundError("offer type", offerID)
	}

	if d.cache != nil {
		if err := d.cache.Set(ctx, key, alias, d.cacheTTL); err != nil {
			d.logger.Warn("offer type cache write failed", map[string]interface{}{
				"offerId": offerID,
				"error":   err.Error(),
			})
		}
	}

	return alias, nil
}
