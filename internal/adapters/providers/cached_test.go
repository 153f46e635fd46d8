package providers

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/datenight/planner/internal/adapters/cache"
	"github.com/datenight/planner/internal/domain/model"
)

type countingProvider struct {
	calls  int
	venues []model.Venue
	err    error
}

func (p *countingProvider) Name() string  { return "counting" }
func (p *countingProvider) Enabled() bool { return true }
func (p *countingProvider) Search(context.Context, model.SearchRequest) ([]model.Venue, error) {
	p.calls++
	return p.venues, p.err
}

type brokenStore struct{}

func (brokenStore) Get(context.Context, string) ([]byte, error) { return nil, errors.New("down") }
func (brokenStore) Set(context.Context, string, []byte, time.Duration) error {
	return errors.New("down")
}

func TestCachedServesRepeatSearches(t *testing.T) {
	ctx := context.Background()
	next := &countingProvider{venues: []model.Venue{{ID: "1", Name: "Bestia", Location: model.Coordinate{Lat: 34.0339, Lng: -118.2294}}}}
	c := NewCached(next, cache.NewMemory(), time.Minute, nil)

	req := restaurantRequest()
	first, err := c.Search(ctx, req)
	require.NoError(t, err)
	require.Len(t, first, 1)

	// A center within the rounding window hits the same entry.
	req.Center.Lat += 0.00001
	second, err := c.Search(ctx, req)
	require.NoError(t, err)
	require.Equal(t, 1, next.calls)
	require.Equal(t, "Bestia", second[0].Name)
	require.Greater(t, second[0].Distance, 0.0)
}

func TestCachedForceFreshBypassesRead(t *testing.T) {
	ctx := context.Background()
	next := &countingProvider{venues: []model.Venue{{ID: "1"}}}
	store := cache.NewMemory()
	c := NewCached(next, store, time.Minute, nil)

	req := restaurantRequest()
	_, err := c.Search(ctx, req)
	require.NoError(t, err)

	req.ForceFresh = true
	_, err = c.Search(ctx, req)
	require.NoError(t, err)
	require.Equal(t, 2, next.calls)

	req.ForceFresh = false
	_, err = c.Search(ctx, req)
	require.NoError(t, err)
	require.Equal(t, 2, next.calls, "fresh results are written back")
}

func TestCachedDegradesOnStoreFailure(t *testing.T) {
	next := &countingProvider{venues: []model.Venue{{ID: "1"}}}
	c := NewCached(next, brokenStore{}, time.Minute, nil)

	venues, err := c.Search(context.Background(), restaurantRequest())
	require.NoError(t, err)
	require.Len(t, venues, 1)
}

func TestCachedDoesNotStoreErrors(t *testing.T) {
	ctx := context.Background()
	next := &countingProvider{err: errors.New("boom")}
	store := cache.NewMemory()
	c := NewCached(next, store, time.Minute, nil)

	_, err := c.Search(ctx, restaurantRequest())
	require.Error(t, err)
	require.Zero(t, store.Len())
	require.Equal(t, "counting", c.Name())
	require.True(t, c.Enabled())
}

func TestCacheKey(t *testing.T) {
	a := restaurantRequest()
	b := restaurantRequest()
	b.Cuisine = "  ITALIAN "
	require.Equal(t, CacheKey("google", a), CacheKey("google", b))

	b.Price = model.PriceBudget
	require.NotEqual(t, CacheKey("google", a), CacheKey("google", b))
	require.NotEqual(t, CacheKey("google", a), CacheKey("foursquare", a))

	seed := int64(4)
	c := restaurantRequest()
	c.Seed = &seed
	c.Exclude = []string{"x"}
	require.Equal(t, CacheKey("google", a), CacheKey("google", c), "ordering inputs do not split the cache")
}
