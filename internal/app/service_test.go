package service_test

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"

	service "github.com/datenight/planner/internal/app"
	"github.com/datenight/planner/internal/domain/model"
	"github.com/datenight/planner/internal/domain/plan"
	"github.com/datenight/planner/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	// Initialize logging for tests
	err := logger.Init()
	if err != nil {
		panic(err)
	}
}

type fakeProvider struct {
	name    string
	enabled bool
	byKind  map[model.SearchKind][]model.Venue
	err     error
	calls   atomic.Int32
}

func (f *fakeProvider) Name() string  { return f.name }
func (f *fakeProvider) Enabled() bool { return f.enabled }

func (f *fakeProvider) Search(_ context.Context, req model.SearchRequest) ([]model.Venue, error) {
	f.calls.Add(1)
	if f.err != nil {
		return nil, f.err
	}
	return f.byKind[req.Kind], nil
}

var center = model.Coordinate{Lat: 34.05, Lng: -118.24}

func restaurant(id, name string, rating float64, reviews, price int, lat float64) model.Venue {
	return model.Venue{
		ID:             id,
		Name:           name,
		Rating:         rating,
		ReviewCount:    reviews,
		PriceLevel:     price,
		Location:       model.Coordinate{Lat: lat, Lng: -118.2294},
		Category:       model.CategoryRestaurant,
		Provider:       model.ProviderGoogle,
		HasPremiumData: true,
		HasPhotos:      true,
		Types:          []string{"restaurant"},
	}
}

func activity(id, name string, rating float64, reviews int, lat float64, types ...string) model.Venue {
	return model.Venue{
		ID:             id,
		Name:           name,
		Rating:         rating,
		ReviewCount:    reviews,
		Location:       model.Coordinate{Lat: lat, Lng: -118.25},
		Category:       model.CategoryActivity,
		Provider:       model.ProviderFoursquare,
		HasPremiumData: true,
		Types:          types,
	}
}

func newProviders() (*fakeProvider, *fakeProvider) {
	bestiaCopy := restaurant("f1", "Bestia", 4.5, 300, 3, 34.0339)
	bestiaCopy.Provider = model.ProviderFoursquare

	google := &fakeProvider{
		name:    model.ProviderGoogle,
		enabled: true,
		byKind: map[model.SearchKind][]model.Venue{
			model.SearchRestaurants: {
				restaurant("g1", "Bestia", 4.6, 1200, 3, 34.0339),
				restaurant("g2", "Low Rated Diner", 3.2, 400, 1, 34.0400),
				restaurant("g3", "Quiet Trattoria", 4.7, 120, 2, 34.0450),
				restaurant("g4", "Shown Before", 4.4, 200, 2, 34.0500),
			},
		},
	}
	foursquare := &fakeProvider{
		name:    model.ProviderFoursquare,
		enabled: true,
		byKind: map[model.SearchKind][]model.Venue{
			model.SearchRestaurants: {bestiaCopy},
			model.SearchActivities: {
				activity("a1", "Blue Whale Jazz Club", 4.6, 250, 34.0600, "jazz club"),
				activity("a2", "Lucky Strike Bowling", 4.1, 80, 34.0700, "bowling alley"),
			},
		},
	}
	return google, foursquare
}

func restaurantSearch() model.SearchRequest {
	return model.SearchRequest{
		Center:       center,
		RadiusMeters: 8046,
		Cuisine:      "italian",
	}
}

func activitySearch() model.SearchRequest {
	return model.SearchRequest{
		Center:       center,
		RadiusMeters: 8046,
		Keyword:      "date night",
	}
}

func names(items []model.ScoredVenue) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.Name
	}
	return out
}

func TestService_SearchRestaurants(t *testing.T) {
	Convey("Given a service with two providers", t, func() {
		ctx := context.Background()
		google, foursquare := newProviders()
		svc := service.New(service.WithProviders(google, foursquare))

		Convey("When searching restaurants", func() {
			req := restaurantSearch()
			req.Exclude = []string{"g4"}
			resp, err := svc.SearchRestaurants(ctx, req)

			Convey("Then duplicates are merged and the better record survives", func() {
				So(err, ShouldBeNil)
				So(names(resp.Items), ShouldResemble, []string{"Bestia", "Quiet Trattoria"})
				So(resp.Items[0].ID, ShouldEqual, "g1")
				So(resp.Items[0].Provider, ShouldEqual, model.ProviderGoogle)
			})

			Convey("Then provider stats count raw results per provider", func() {
				So(resp.ProviderStats, ShouldResemble, map[string]int{
					model.ProviderGoogle:     4,
					model.ProviderFoursquare: 1,
				})
			})

			Convey("Then drops are counted by reason", func() {
				So(resp.ExcludedCountsByReason["lowRating"], ShouldEqual, 1)
				So(resp.ExcludedCountsByReason["previouslyShown"], ShouldEqual, 1)
			})

			Convey("Then every item is scored", func() {
				for _, it := range resp.Items {
					So(it.UniquenessScore, ShouldBeBetweenOrEqual, 0.1, 3.0)
				}
			})
		})

		Convey("When excluded venues would also fail a quality floor", func() {
			google.byKind[model.SearchRestaurants] = append(google.byKind[model.SearchRestaurants],
				restaurant("g5", "Brand New Bistro", 4.6, 3, 2, 34.0600))
			req := restaurantSearch()
			req.Exclude = []string{"g5", "g2"}
			resp, err := svc.SearchRestaurants(ctx, req)

			Convey("Then they are counted as previously shown only", func() {
				So(err, ShouldBeNil)
				So(resp.ExcludedCountsByReason["previouslyShown"], ShouldEqual, 2)
				So(resp.ExcludedCountsByReason, ShouldNotContainKey, "fewReviews")
				So(resp.ExcludedCountsByReason, ShouldNotContainKey, "lowRating")
				So(names(resp.Items), ShouldNotContain, "Brand New Bistro")
			})
		})

		Convey("When the request is invalid", func() {
			req := restaurantSearch()
			req.Cuisine = ""
			_, err := svc.SearchRestaurants(ctx, req)

			Convey("Then it is rejected before any provider is called", func() {
				So(errors.Is(err, model.ErrInvalidRequest), ShouldBeTrue)
				So(google.calls.Load(), ShouldEqual, 0)
				So(foursquare.calls.Load(), ShouldEqual, 0)
			})
		})

		Convey("When one provider fails", func() {
			foursquare.err = errors.New("503 from upstream")
			resp, err := svc.SearchRestaurants(ctx, restaurantSearch())

			Convey("Then the search still succeeds with the other provider", func() {
				So(err, ShouldBeNil)
				So(resp.ProviderStats[model.ProviderFoursquare], ShouldEqual, 0)
				So(resp.ProviderStats[model.ProviderGoogle], ShouldEqual, 4)
				So(len(resp.Items), ShouldEqual, 3)
			})
		})

		Convey("When the exclusion set exceeds the cap", func() {
			capped := service.New(service.WithProviders(google, foursquare), service.WithMaxExcludeIDs(1))
			req := restaurantSearch()
			req.Exclude = []string{"unknown", "g4"}
			resp, err := capped.SearchRestaurants(ctx, req)

			Convey("Then only the first ids are applied", func() {
				So(err, ShouldBeNil)
				So(resp.ExcludedCountsByReason, ShouldNotContainKey, "previouslyShown")
				So(names(resp.Items), ShouldContain, "Shown Before")
			})
		})
	})
}

func TestService_SearchEdgeCases(t *testing.T) {
	Convey("Given a service without providers", t, func() {
		svc := service.New()

		Convey("When searching", func() {
			resp, err := svc.SearchActivities(context.Background(), activitySearch())

			Convey("Then the result is empty and not an error", func() {
				So(err, ShouldBeNil)
				So(resp.Items, ShouldBeEmpty)
				So(resp.ProviderStats, ShouldBeEmpty)
			})
		})
	})

	Convey("Given a service with a fixed seed source", t, func() {
		google, foursquare := newProviders()
		svc := service.New(
			service.WithProviders(google, foursquare),
			service.WithSeedSource(func() int64 { return 42 }),
		)

		Convey("When forceFresh is set without a seed", func() {
			req := restaurantSearch()
			req.ForceFresh = true
			resp, err := svc.SearchRestaurants(context.Background(), req)

			Convey("Then a seed is generated and echoed", func() {
				So(err, ShouldBeNil)
				So(resp.ForceFresh, ShouldBeTrue)
				So(resp.Seed, ShouldNotBeNil)
				So(*resp.Seed, ShouldEqual, 42)
			})
		})

		Convey("When forceFresh is set with a seed", func() {
			seed := int64(7)
			req := restaurantSearch()
			req.ForceFresh = true
			req.Seed = &seed
			resp, err := svc.SearchRestaurants(context.Background(), req)

			Convey("Then the caller's seed is kept", func() {
				So(err, ShouldBeNil)
				So(*resp.Seed, ShouldEqual, 7)
			})
		})
	})
}

func TestService_SeedAndSurprise(t *testing.T) {
	Convey("Given a provider returning many restaurants", t, func() {
		var many []model.Venue
		for i := range 20 {
			many = append(many, restaurant(fmt.Sprintf("r%02d", i), fmt.Sprintf("Place Number %02d", i),
				4.0+float64(i%10)/10, 60+i*10, 1+i%4, 34.0+float64(i)*0.01))
		}
		p := &fakeProvider{
			name:    model.ProviderGoogle,
			enabled: true,
			byKind:  map[model.SearchKind][]model.Venue{model.SearchRestaurants: many},
		}
		svc := service.New(service.WithProviders(p), service.WithSurpriseLimit(15))
		ctx := context.Background()

		Convey("When searching twice with the same seed", func() {
			seed := int64(1234)
			req := restaurantSearch()
			req.Seed = &seed
			first, err1 := svc.SearchRestaurants(ctx, req)
			second, err2 := svc.SearchRestaurants(ctx, req)

			Convey("Then the order is identical", func() {
				So(err1, ShouldBeNil)
				So(err2, ShouldBeNil)
				So(len(first.Items), ShouldEqual, 20)
				So(names(first.Items), ShouldResemble, names(second.Items))
			})
		})

		Convey("When surprise is requested with a seed", func() {
			seed := int64(99)
			req := restaurantSearch()
			req.Seed = &seed
			req.Surprise = true
			surprise, err := svc.SearchRestaurants(ctx, req)
			plain, _ := svc.SearchRestaurants(ctx, restaurantSearch())

			Convey("Then results are truncated in ranked order without shuffling", func() {
				So(err, ShouldBeNil)
				So(len(surprise.Items), ShouldEqual, 15)
				So(names(surprise.Items), ShouldResemble, names(plain.Items)[:15])
			})
		})
	})
}

func TestService_SearchActivities(t *testing.T) {
	Convey("Given a service with activity results", t, func() {
		google, foursquare := newProviders()
		svc := service.New(service.WithProviders(google, foursquare))

		Convey("When searching activities", func() {
			resp, err := svc.SearchActivities(context.Background(), activitySearch())

			Convey("Then items carry a date-worthiness score", func() {
				So(err, ShouldBeNil)
				So(names(resp.Items), ShouldResemble, []string{"Blue Whale Jazz Club", "Lucky Strike Bowling"})
				So(resp.Items[0].DateWorthiness, ShouldBeGreaterThan, 0)
				So(resp.ProviderStats[model.ProviderGoogle], ShouldEqual, 0)
			})
		})

		Convey("When the keyword is missing", func() {
			req := activitySearch()
			req.Keyword = ""
			_, err := svc.SearchActivities(context.Background(), req)

			Convey("Then the request is invalid", func() {
				So(errors.Is(err, model.ErrInvalidRequest), ShouldBeTrue)
			})
		})
	})
}

func TestService_BuildPlan(t *testing.T) {
	Convey("Given a service with restaurant and activity results", t, func() {
		ctx := context.Background()
		google, foursquare := newProviders()
		svc := service.New(service.WithProviders(google, foursquare))
		req := service.PlanRequest{
			Mode:        model.PlanBoth,
			Restaurants: restaurantSearch(),
			Activities:  activitySearch(),
		}

		Convey("When building a default plan", func() {
			res, err := svc.BuildPlan(ctx, req)

			Convey("Then the top entry of each list is paired", func() {
				So(err, ShouldBeNil)
				So(res.Plan.ID, ShouldNotBeEmpty)
				So(res.Plan.Restaurant.Name, ShouldEqual, "Bestia")
				So(res.Plan.Activity.Name, ShouldEqual, "Blue Whale Jazz Club")
				So(res.Plan.ToRestaurant, ShouldNotBeNil)
				So(res.Plan.ToActivity, ShouldNotBeNil)
				So(res.Plan.Between, ShouldNotBeNil)
				So(len(res.Restaurants.Items), ShouldEqual, 3)
			})
		})

		Convey("When preferences favor bowling", func() {
			req.Preferences = plan.Preferences{ActivityTypes: []string{"bowling"}}
			res, err := svc.BuildPlan(ctx, req)

			Convey("Then the first matching activity is chosen", func() {
				So(err, ShouldBeNil)
				So(res.Plan.Activity.Name, ShouldEqual, "Lucky Strike Bowling")
				So(res.Plan.ActivityIndex, ShouldEqual, 1)
			})
		})

		Convey("When swapping to explicit indices", func() {
			ri, ai := 1, 1
			req.RestaurantIndex = &ri
			req.ActivityIndex = &ai
			res, err := svc.BuildPlan(ctx, req)

			Convey("Then those entries are used", func() {
				So(err, ShouldBeNil)
				So(res.Plan.RestaurantIndex, ShouldEqual, 1)
				So(res.Plan.ActivityIndex, ShouldEqual, 1)
				So(res.Plan.Activity.Name, ShouldEqual, "Lucky Strike Bowling")
			})
		})

		Convey("When an index is out of range", func() {
			ri := 10
			req.RestaurantIndex = &ri
			_, err := svc.BuildPlan(ctx, req)

			Convey("Then the request is invalid", func() {
				So(errors.Is(err, model.ErrInvalidRequest), ShouldBeTrue)
				So(errors.Is(err, plan.ErrIndexOutOfRange), ShouldBeTrue)
			})
		})

		Convey("When only a restaurant is wanted", func() {
			req.Mode = model.PlanRestaurantOnly
			req.Activities = model.SearchRequest{}
			res, err := svc.BuildPlan(ctx, req)

			Convey("Then the activity search is skipped", func() {
				So(err, ShouldBeNil)
				So(res.Plan.Restaurant, ShouldNotBeNil)
				So(res.Plan.Activity, ShouldBeNil)
				So(res.Plan.Between, ShouldBeNil)
			})
		})

		Convey("When the mode is unknown", func() {
			req.Mode = "brunch"
			_, err := svc.BuildPlan(ctx, req)

			Convey("Then the request is invalid", func() {
				So(errors.Is(err, model.ErrInvalidRequest), ShouldBeTrue)
			})
		})

		Convey("When both searches come back empty", func() {
			empty := service.New()
			_, err := empty.BuildPlan(ctx, req)

			Convey("Then no plan is constructed", func() {
				So(errors.Is(err, plan.ErrEmptyPlan), ShouldBeTrue)
			})
		})
	})
}

func TestService_GetStats(t *testing.T) {
	Convey("Given a service with one disabled provider", t, func() {
		google, foursquare := newProviders()
		foursquare.enabled = false
		svc := service.New(service.WithProviders(google, foursquare), service.WithCacheBackend("memory"))

		Convey("When a search has been served", func() {
			_, err := svc.SearchRestaurants(context.Background(), restaurantSearch())
			stats := svc.GetStats()

			Convey("Then stats reflect enabled providers and counters", func() {
				So(err, ShouldBeNil)
				So(stats.EnabledProviders, ShouldResemble, []string{model.ProviderGoogle})
				So(stats.CacheBackend, ShouldEqual, "memory")
				So(stats.SearchesServed, ShouldEqual, 1)
				So(stats.PlansBuilt, ShouldEqual, 0)
			})
		})
	})
}
