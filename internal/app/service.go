// Package service wires the aggregation, filtering, scoring and ordering
// stages into the search and plan operations required by the HTTP API.
package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/datenight/planner/internal/domain/aggregate"
	"github.com/datenight/planner/internal/domain/dedupe"
	"github.com/datenight/planner/internal/domain/model"
	"github.com/datenight/planner/internal/domain/plan"
	"github.com/datenight/planner/internal/domain/quality"
	"github.com/datenight/planner/internal/domain/ranking"
	"github.com/datenight/planner/internal/domain/scoring"
	"github.com/datenight/planner/pkg/logger"
	"github.com/datenight/planner/pkg/metrics"
)

const defaultMaxExcludeIDs = 100

// Service implements the API dependencies for searches and plans.
// It holds no per-request state; counters are for /stats only.
type Service struct {
	providers []aggregate.Provider

	aggregator *aggregate.Aggregator
	merger     dedupe.Merger
	filter     *quality.Filter
	scorer     *scoring.Scorer
	orderer    *ranking.Orderer
	builder    *plan.Builder

	maxExcludeIDs   int
	maxPairDistance float64
	cacheBackend    string
	newSeed         func() int64

	searches atomic.Int64
	plans    atomic.Int64

	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithProviders sets the provider list. Disabled providers may be included;
// they are skipped by the aggregator.
func WithProviders(providers ...aggregate.Provider) Option {
	return func(s *Service) {
		s.providers = providers
	}
}

// WithAggregator replaces the default aggregator.
func WithAggregator(a *aggregate.Aggregator) Option {
	return func(s *Service) {
		if a != nil {
			s.aggregator = a
		}
	}
}

// WithMerger replaces the default merger.
func WithMerger(m dedupe.Merger) Option {
	return func(s *Service) {
		if m != nil {
			s.merger = m
		}
	}
}

// WithFloors sets the quality floors.
func WithFloors(f quality.Floors) Option {
	return func(s *Service) {
		s.filter = quality.NewFilter(f)
	}
}

// WithScorer replaces the default scorer.
func WithScorer(sc *scoring.Scorer) Option {
	return func(s *Service) {
		if sc != nil {
			s.scorer = sc
		}
	}
}

// WithSurpriseLimit sets how many results a surprise search returns.
func WithSurpriseLimit(n int) Option {
	return func(s *Service) {
		s.orderer = ranking.NewOrderer(ranking.WithSurpriseLimit(n))
	}
}

// WithMaxExcludeIDs caps the exclusion set accepted per request.
func WithMaxExcludeIDs(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxExcludeIDs = n
		}
	}
}

// WithMaxPairDistance sets the default restaurant to activity distance cap
// in miles used when a plan request does not carry its own.
func WithMaxPairDistance(miles float64) Option {
	return func(s *Service) {
		if miles >= 0 {
			s.maxPairDistance = miles
		}
	}
}

// WithCacheBackend records the configured cache backend for Stats.
func WithCacheBackend(name string) Option {
	return func(s *Service) {
		s.cacheBackend = name
	}
}

// WithSeedSource sets the generator used for forceFresh seeds.
func WithSeedSource(fn func() int64) Option {
	return func(s *Service) {
		if fn != nil {
			s.newSeed = fn
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		merger:        dedupe.NewMerger(),
		filter:        quality.NewFilter(quality.DefaultFloors()),
		scorer:        scoring.NewScorer(),
		orderer:       ranking.NewOrderer(),
		builder:       plan.NewBuilder(),
		maxExcludeIDs: defaultMaxExcludeIDs,
		newSeed:       func() int64 { return rand.Int64N(1_000_000_000) },
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}
	if s.aggregator == nil {
		s.aggregator = aggregate.New(aggregate.WithLogger(s.logger))
	}
	metrics.UpdateEnabledProviders(len(aggregate.Enabled(s.providers)))
	return s
}

// Search validates req and runs the pipeline for its kind.
func (s *Service) Search(ctx context.Context, req model.SearchRequest) (model.SearchResponse, error) {
	if err := req.Validate(); err != nil {
		return model.SearchResponse{}, err
	}
	req = s.normalize(req)

	start := time.Now()
	resp := s.run(ctx, req)
	elapsed := float64(time.Since(start).Microseconds()) / 1000

	s.searches.Add(1)
	metrics.RecordSearch(string(req.Kind), elapsed, len(resp.Items))
	s.logger.Info(ctx, "search served",
		logger.String("kind", string(req.Kind)),
		logger.String("term", req.Term()),
		logger.Int("results", len(resp.Items)),
		logger.Float64("durationMs", elapsed),
	)
	return resp, nil
}

// SearchRestaurants runs a restaurant search.
func (s *Service) SearchRestaurants(ctx context.Context, req model.SearchRequest) (model.SearchResponse, error) {
	req.Kind = model.SearchRestaurants
	return s.Search(ctx, req)
}

// SearchActivities runs an activity search.
func (s *Service) SearchActivities(ctx context.Context, req model.SearchRequest) (model.SearchResponse, error) {
	req.Kind = model.SearchActivities
	return s.Search(ctx, req)
}

// normalize fills defaults that depend on service configuration.
func (s *Service) normalize(req model.SearchRequest) model.SearchRequest {
	if req.Novelty == "" {
		req.Novelty = model.NoveltyBalanced
	}
	if len(req.Exclude) > s.maxExcludeIDs {
		req.Exclude = req.Exclude[:s.maxExcludeIDs]
	}
	if req.ForceFresh && req.Seed == nil {
		seed := s.newSeed()
		req.Seed = &seed
	}
	return req
}

// run executes aggregate, merge, exclude, filter, score and order.
func (s *Service) run(ctx context.Context, req model.SearchRequest) model.SearchResponse {
	agg := s.aggregator.Search(ctx, s.providers, req)

	merged, dupes := s.merger.Merge(agg.Lists)
	metrics.RecordMergedDuplicates(dupes)
	if req.Kind == model.SearchRestaurants {
		ranking.SortByRating(merged)
	}
	merged = ranking.PreferCity(merged, req.TargetCity)

	// Previously shown venues are counted as such even when they would
	// also fail a quality floor.
	excluded := make(map[string]int)
	unseen, shown := ranking.Exclude(merged, req.Exclude)
	if shown > 0 {
		excluded[ranking.ReasonPreviouslyShown] = shown
		metrics.RecordExclusions(ranking.ReasonPreviouslyShown, shown)
	}

	kept, dropped := s.filter.Filter(unseen)
	for reason, n := range dropped {
		excluded[reason] = n
		metrics.RecordQualityDrops(reason, n)
	}

	scored := make([]model.ScoredVenue, len(kept))
	for i, v := range kept {
		scored[i] = s.scorer.Apply(v, req.Novelty)
		if req.Kind == model.SearchActivities {
			scored[i].DateWorthiness = scoring.DateWorthiness(v)
		}
	}

	items := s.orderer.Order(req.Kind, scored, req.Seed, req.Surprise)
	s.logger.Debug(ctx, "search pipeline",
		logger.Int("raw", len(agg.All())),
		logger.Int("merged", len(merged)),
		logger.Int("duplicates", dupes),
		logger.Int("kept", len(kept)),
		logger.Int("failedProviders", len(agg.Failures)),
	)

	return model.SearchResponse{
		Items:                  items,
		ProviderStats:          agg.Stats,
		ExcludedCountsByReason: excluded,
		ForceFresh:             req.ForceFresh,
		Seed:                   req.Seed,
	}
}

// PlanRequest describes one plan build: the searches backing each half and
// how to pick from the ranked lists.
type PlanRequest struct {
	Mode        model.PlanMode
	Center      model.Coordinate
	Restaurants model.SearchRequest
	Activities  model.SearchRequest
	Preferences plan.Preferences

	// Explicit indices into the ranked lists, used for swaps. When both are
	// nil the builder picks by preference.
	RestaurantIndex *int
	ActivityIndex   *int
}

// PlanResult is a built plan plus the ranked lists it was picked from.
type PlanResult struct {
	Plan        model.Plan
	Restaurants model.SearchResponse
	Activities  model.SearchResponse
}

// BuildPlan runs the searches the mode requires concurrently and pairs the
// results. Each search runs only for the halves the mode includes.
func (s *Service) BuildPlan(ctx context.Context, req PlanRequest) (PlanResult, error) {
	if req.Mode == "" {
		req.Mode = model.PlanBoth
	}
	if req.Center == (model.Coordinate{}) {
		req.Center = req.Restaurants.Center
		if req.Mode == model.PlanActivityOnly {
			req.Center = req.Activities.Center
		}
	}
	wantRestaurant := req.Mode == model.PlanBoth || req.Mode == model.PlanRestaurantOnly
	wantActivity := req.Mode == model.PlanBoth || req.Mode == model.PlanActivityOnly
	if !wantRestaurant && !wantActivity {
		return PlanResult{}, fmt.Errorf("%w: %w: %q", model.ErrInvalidRequest, plan.ErrUnknownMode, req.Mode)
	}

	var res PlanResult
	g, gctx := errgroup.WithContext(ctx)
	if wantRestaurant {
		g.Go(func() error {
			var err error
			res.Restaurants, err = s.SearchRestaurants(gctx, req.Restaurants)
			return err
		})
	}
	if wantActivity {
		g.Go(func() error {
			var err error
			res.Activities, err = s.SearchActivities(gctx, req.Activities)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return PlanResult{}, err
	}

	prefs := req.Preferences
	if prefs.MaxPairDistance == 0 {
		prefs.MaxPairDistance = s.maxPairDistance
	}
	criteria := plan.Criteria{Mode: req.Mode, Center: req.Center, Preferences: prefs}

	var err error
	if req.RestaurantIndex != nil || req.ActivityIndex != nil {
		res.Plan, err = s.builder.BuildFromIndices(res.Restaurants.Items, res.Activities.Items, criteria,
			deref(req.RestaurantIndex), deref(req.ActivityIndex))
	} else {
		res.Plan, err = s.builder.Build(res.Restaurants.Items, res.Activities.Items, criteria)
	}
	if err != nil {
		if !errors.Is(err, plan.ErrEmptyPlan) {
			err = fmt.Errorf("%w: %w", model.ErrInvalidRequest, err)
		}
		return PlanResult{}, err
	}

	s.plans.Add(1)
	metrics.RecordPlanBuilt(string(res.Plan.Mode))
	s.logger.Info(ctx, "plan built",
		logger.String("planID", res.Plan.ID),
		logger.String("mode", string(res.Plan.Mode)),
		logger.Int("restaurantIndex", res.Plan.RestaurantIndex),
		logger.Int("activityIndex", res.Plan.ActivityIndex),
	)
	return res, nil
}

func deref(p *int) int {
	if p == nil {
		return 0
	}
	return *p
}

// Stats is a snapshot of service state for the /stats endpoint.
type Stats struct {
	EnabledProviders []string `json:"enabledProviders"`
	CacheBackend     string   `json:"cacheBackend"`
	SearchesServed   int64    `json:"searchesServed"`
	PlansBuilt       int64    `json:"plansBuilt"`
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() Stats {
	enabled := aggregate.Enabled(s.providers)
	names := make([]string, len(enabled))
	for i, p := range enabled {
		names[i] = p.Name()
	}
	return Stats{
		EnabledProviders: names,
		CacheBackend:     s.cacheBackend,
		SearchesServed:   s.searches.Load(),
		PlansBuilt:       s.plans.Load(),
	}
}
