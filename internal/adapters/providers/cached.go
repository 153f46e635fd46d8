package providers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/datenight/planner/internal/adapters/cache"
	"github.com/datenight/planner/internal/domain/aggregate"
	"github.com/datenight/planner/internal/domain/model"
	"github.com/datenight/planner/pkg/logger"
	"github.com/datenight/planner/pkg/metrics"
)

// Cache lookup results recorded in metrics.
const (
	cacheHit    = "hit"
	cacheMiss   = "miss"
	cacheError  = "error"
	cacheBypass = "bypass"
)

// Cached decorates a provider with a response cache. Cache failures degrade
// to a live call. ForceFresh requests skip the read but still refresh the entry.
type Cached struct {
	next  aggregate.Provider
	store cache.Store
	ttl   time.Duration
	log   logger.Logger
}

// NewCached wraps next with store. log may be nil.
func NewCached(next aggregate.Provider, store cache.Store, ttl time.Duration, log logger.Logger) *Cached {
	return &Cached{next: next, store: store, ttl: ttl, log: log}
}

// Name implements aggregate.Provider.
func (c *Cached) Name() string { return c.next.Name() }

// Enabled implements aggregate.Provider.
func (c *Cached) Enabled() bool { return c.next.Enabled() }

// Search implements aggregate.Provider.
func (c *Cached) Search(ctx context.Context, req model.SearchRequest) ([]model.Venue, error) {
	if !c.next.Enabled() {
		return []model.Venue{}, nil
	}
	key := CacheKey(c.next.Name(), req)

	if req.ForceFresh {
		metrics.RecordCacheRequest(cacheBypass)
	} else if venues, ok := c.read(ctx, key); ok {
		// The key rounds the center, so distances are recomputed.
		return withDistances(req, venues), nil
	}

	venues, err := c.next.Search(ctx, req)
	if err != nil {
		return nil, err
	}
	c.write(ctx, key, venues)
	return venues, nil
}

func (c *Cached) read(ctx context.Context, key string) ([]model.Venue, bool) {
	b, err := c.store.Get(ctx, key)
	if err != nil {
		if errors.Is(err, cache.ErrMiss) {
			metrics.RecordCacheRequest(cacheMiss)
		} else {
			metrics.RecordCacheRequest(cacheError)
			c.warn(ctx, "cache read failed", key, err)
		}
		return nil, false
	}
	var venues []model.Venue
	if err := json.Unmarshal(b, &venues); err != nil {
		metrics.RecordCacheRequest(cacheError)
		c.warn(ctx, "cache entry corrupt", key, err)
		return nil, false
	}
	metrics.RecordCacheRequest(cacheHit)
	return venues, true
}

func (c *Cached) write(ctx context.Context, key string, venues []model.Venue) {
	b, err := json.Marshal(venues)
	if err != nil {
		c.warn(ctx, "cache encode failed", key, err)
		return
	}
	if err := c.store.Set(ctx, key, b, c.ttl); err != nil {
		c.warn(ctx, "cache write failed", key, err)
	}
}

func (c *Cached) warn(ctx context.Context, msg, key string, err error) {
	if c.log == nil {
		return
	}
	c.log.Warn(ctx, msg, logger.String("provider", c.next.Name()), logger.String("key", key), logger.Error(err))
}

// CacheKey identifies a provider response: provider name plus the request
// normalized to the fields that change what the provider returns.
func CacheKey(provider string, req model.SearchRequest) string {
	return fmt.Sprintf("%s|%s|%.4f,%.4f|%d|%s|%s",
		provider,
		req.Kind,
		round4(req.Center.Lat), round4(req.Center.Lng),
		int(math.Round(req.RadiusMeters)),
		strings.ToLower(strings.TrimSpace(req.Term())),
		req.Price,
	)
}

func round4(x float64) float64 {
	return math.Round(x*1e4) / 1e4
}
