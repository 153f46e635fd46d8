// Package aggregate fans a search out to every enabled provider and settles
// all of them, keeping successes and recording failures.
package aggregate

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/datenight/planner/internal/domain/model"
	"github.com/datenight/planner/pkg/logger"
	"github.com/datenight/planner/pkg/metrics"
)

const defaultProviderTimeout = 8 * time.Second

// Failure reasons recorded per provider.
const (
	ReasonTimeout  = "timeout"
	ReasonCanceled = "canceled"
	ReasonPanic    = "panic"
	ReasonError    = "error"
)

// Provider is one external place-search integration.
type Provider interface {
	// Name identifies the provider in stats and logs.
	Name() string
	// Enabled is a static capability flag resolved at construction.
	Enabled() bool
	// Search returns normalized venues. No results is an empty list, not an error.
	Search(ctx context.Context, req model.SearchRequest) ([]model.Venue, error)
}

// Result is the settled outcome of one fan-out.
type Result struct {
	// Lists holds one list per enabled provider in the order they were passed.
	// Failed providers contribute an empty list.
	Lists [][]model.Venue
	// Stats maps provider name to result count; failures count as 0.
	Stats map[string]int
	// Failures maps provider name to a failure description.
	Failures map[string]string
}

// All returns the concatenation of every provider's results.
func (r Result) All() []model.Venue {
	n := 0
	for _, l := range r.Lists {
		n += len(l)
	}
	out := make([]model.Venue, 0, n)
	for _, l := range r.Lists {
		out = append(out, l...)
	}
	return out
}

// Option applies a configuration option to the Aggregator.
type Option func(*Aggregator)

// WithProviderTimeout bounds each individual provider call.
func WithProviderTimeout(d time.Duration) Option {
	return func(a *Aggregator) {
		if d > 0 {
			a.timeout = d
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(a *Aggregator) {
		if l != nil {
			a.log = l
		}
	}
}

// Aggregator runs providers concurrently. It holds no per-search state.
type Aggregator struct {
	timeout time.Duration
	log     logger.Logger
}

// New creates an Aggregator with configuration options.
func New(opts ...Option) *Aggregator {
	a := &Aggregator{timeout: defaultProviderTimeout}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Enabled filters providers down to those whose capability flag is on.
func Enabled(providers []Provider) []Provider {
	out := make([]Provider, 0, len(providers))
	for _, p := range providers {
		if p != nil && p.Enabled() {
			out = append(out, p)
		}
	}
	return out
}

// Search invokes every enabled provider concurrently and waits for all of
// them. A failing or slow provider never affects its siblings.
func (a *Aggregator) Search(ctx context.Context, providers []Provider, req model.SearchRequest) Result {
	enabled := Enabled(providers)
	res := Result{
		Lists:    make([][]model.Venue, len(enabled)),
		Stats:    make(map[string]int, len(enabled)),
		Failures: make(map[string]string),
	}
	if len(enabled) == 0 {
		if a.log != nil {
			a.log.Debug(ctx, "no providers enabled")
		}
		return res
	}

	errs := make([]error, len(enabled))
	var g errgroup.Group
	for i, p := range enabled {
		g.Go(func() error {
			start := time.Now()
			venues, err := a.call(ctx, p, req)
			latency := float64(time.Since(start).Microseconds()) / 1000
			if err != nil {
				errs[i] = err
				return nil
			}
			res.Lists[i] = venues
			metrics.RecordProviderResults(p.Name(), len(venues), latency)
			return nil
		})
	}
	_ = g.Wait() // goroutines never return an error

	for i, p := range enabled {
		name := p.Name()
		if err := errs[i]; err != nil {
			reason := classify(err)
			res.Stats[name] = 0
			res.Failures[name] = err.Error()
			metrics.RecordProviderFailure(name, reason)
			if a.log != nil {
				a.log.Warn(ctx, "provider request failed",
					logger.String("provider", name),
					logger.String("reason", reason),
					logger.Error(err))
			}
			continue
		}
		res.Stats[name] = len(res.Lists[i])
	}
	return res
}

type panicError struct{ v any }

func (e panicError) Error() string { return fmt.Sprintf("provider panicked: %v", e.v) }

// call runs one provider under its own timeout. The provider goroutine is
// abandoned, not awaited, when the deadline passes first.
func (a *Aggregator) call(ctx context.Context, p Provider, req model.SearchRequest) ([]model.Venue, error) {
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	type outcome struct {
		venues []model.Venue
		err    error
	}
	done := make(chan outcome, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- outcome{err: panicError{v: r}}
			}
		}()
		v, e := p.Search(ctx, req)
		done <- outcome{venues: v, err: e}
	}()

	select {
	case o := <-done:
		if o.err != nil {
			return nil, fmt.Errorf("%s: %w", p.Name(), o.err)
		}
		return o.venues, nil
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", p.Name(), ctx.Err())
	}
}

func classify(err error) string {
	var pe panicError
	switch {
	case errors.As(err, &pe):
		return ReasonPanic
	case errors.Is(err, context.DeadlineExceeded):
		return ReasonTimeout
	case errors.Is(err, context.Canceled):
		return ReasonCanceled
	default:
		return ReasonError
	}
}
