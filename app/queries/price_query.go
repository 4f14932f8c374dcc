package queries

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/gilanghuda/crewhub-backend/app/models"
	"github.com/gilanghuda/crewhub-backend/pkg/apperror"
	"github.com/gilanghuda/crewhub-backend/pkg/cache"
	"github.com/gilanghuda/crewhub-backend/pkg/database"
	"github.com/gilanghuda/crewhub-backend/pkg/logger"
)

// PriceQueries reads the price catalog. Cache is optional; lookups fall back
// to the database whenever Redis is absent or failing.
type PriceQueries struct {
	DB    *database.DB
	Cache cache.Cache
	TTL   time.Duration
}

func servicePriceKey(title string) string {
	return "price:service:" + strings.ToLower(strings.TrimSpace(title))
}

func extensionPriceKey(minutes int) string {
	return "price:extension:" + strconv.Itoa(minutes)
}

// ServicePrice returns the catalog price for a service title, matched case-insensitively.
func (q *PriceQueries) ServicePrice(ctx context.Context, title string) (int64, error) {
	key := servicePriceKey(title)
	if v, ok := q.cached(ctx, key); ok {
		return v, nil
	}

	row := &models.ServicePrice{}
	err := q.DB.Conn(ctx).
		Where("LOWER(title) = ?", strings.ToLower(strings.TrimSpace(title))).
		First(row).Error
	if err != nil {
		if isNotFound(err) {
			return 0, apperror.NotFound("no price configured for service " + title)
		}
		return 0, dbError(err, "unable to get service price")
	}
	q.store(ctx, key, row.Price)
	return row.Price, nil
}

// ExtensionPrice returns the price of extending a chat session by minutes.
func (q *PriceQueries) ExtensionPrice(ctx context.Context, minutes int) (int64, error) {
	key := extensionPriceKey(minutes)
	if v, ok := q.cached(ctx, key); ok {
		return v, nil
	}

	row := &models.ExtensionPrice{}
	err := q.DB.Conn(ctx).Where("minutes = ?", minutes).First(row).Error
	if err != nil {
		if isNotFound(err) {
			return 0, apperror.NotFound("no extension price configured for " + strconv.Itoa(minutes) + " minutes")
		}
		return 0, dbError(err, "unable to get extension price")
	}
	q.store(ctx, key, row.Price)
	return row.Price, nil
}

// UpsertServicePrice changes a catalog entry and drops its cached value.
func (q *PriceQueries) UpsertServicePrice(ctx context.Context, title string, price int64) error {
	row := &models.ServicePrice{}
	err := q.DB.Conn(ctx).Where("title = ?", title).
		Assign(models.ServicePrice{Price: price}).
		FirstOrCreate(row, models.ServicePrice{Title: title}).Error
	if err != nil {
		return dbError(err, "unable to save service price")
	}
	if q.Cache != nil {
		if err := q.Cache.Del(ctx, servicePriceKey(title)); err != nil {
			logger.Warn("price cache invalidation failed", "key", servicePriceKey(title), "error", err)
		}
	}
	return nil
}

func (q *PriceQueries) cached(ctx context.Context, key string) (int64, bool) {
	if q.Cache == nil {
		return 0, false
	}
	raw, err := q.Cache.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, cache.ErrMiss) {
			logger.Warn("price cache read failed", "key", key, "error", err)
		}
		return 0, false
	}
	v, err := strconv.ParseInt(string(raw), 10, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

func (q *PriceQueries) store(ctx context.Context, key string, v int64) {
	if q.Cache == nil {
		return
	}
	ttl := q.TTL
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	if err := q.Cache.Set(ctx, key, []byte(strconv.FormatInt(v, 10)), ttl); err != nil {
		logger.Warn("price cache write failed", "key", key, "error", err)
	}
}
