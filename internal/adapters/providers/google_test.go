package providers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/datenight/planner/internal/domain/model"
)

const googleNearbyFixture = `{
  "status": "OK",
  "results": [
    {
      "place_id": "g-bestia",
      "name": "Bestia",
      "vicinity": "2121 E 7th Pl, Los Angeles",
      "rating": 4.6,
      "user_ratings_total": 1200,
      "price_level": 3,
      "types": ["restaurant", "food", "point_of_interest"],
      "business_status": "OPERATIONAL",
      "photos": [{"photo_reference": "abc"}],
      "geometry": {"location": {"lat": 34.0339, "lng": -118.2294}}
    },
    {
      "place_id": "g-walmart",
      "name": "Walmart Supercenter",
      "vicinity": "1 Big Box Way",
      "rating": 4.0,
      "user_ratings_total": 900,
      "types": ["restaurant", "department_store"],
      "geometry": {"location": {"lat": 34.04, "lng": -118.24}}
    },
    {
      "place_id": "g-ghost",
      "name": "Ghost Kitchen 42",
      "vicinity": "Nowhere",
      "rating": 0,
      "user_ratings_total": 0,
      "types": ["restaurant"],
      "geometry": {"location": {"lat": 34.05, "lng": -118.25}}
    },
    {
      "place_id": "g-closed",
      "name": "Closed Bistro",
      "rating": 4.9,
      "user_ratings_total": 300,
      "business_status": "CLOSED_PERMANENTLY",
      "geometry": {"location": {"lat": 34.05, "lng": -118.25}}
    }
  ]
}`

func restaurantRequest() model.SearchRequest {
	return model.SearchRequest{
		Kind:         model.SearchRestaurants,
		Center:       model.Coordinate{Lat: 34.05, Lng: -118.24},
		RadiusMeters: 8046,
		Cuisine:      "italian",
		Price:        model.PriceUpscale,
	}
}

func TestGoogleSearch(t *testing.T) {
	var gotQuery map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/maps/api/place/nearbysearch/json", r.URL.Path)
		gotQuery = map[string]string{}
		for k := range r.URL.Query() {
			gotQuery[k] = r.URL.Query().Get(k)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(googleNearbyFixture))
	}))
	defer srv.Close()

	g := NewGoogle("secret", WithGoogleBaseURL(srv.URL))
	require.True(t, g.Enabled())
	require.Equal(t, model.ProviderGoogle, g.Name())

	venues, err := g.Search(context.Background(), restaurantRequest())
	require.NoError(t, err)

	require.Equal(t, "secret", gotQuery["key"])
	require.Equal(t, "italian", gotQuery["keyword"])
	require.Equal(t, "restaurant", gotQuery["type"])
	require.Equal(t, "3", gotQuery["minprice"])
	require.Equal(t, "4", gotQuery["maxprice"])
	require.Equal(t, "8046", gotQuery["radius"])

	require.Len(t, venues, 1, "retail, ghost and closed listings are dropped")
	v := venues[0]
	require.Equal(t, "g-bestia", v.ID)
	require.Equal(t, 4.6, v.Rating)
	require.Equal(t, 1200, v.ReviewCount)
	require.Equal(t, 3, v.PriceLevel)
	require.True(t, v.HasPremiumData)
	require.True(t, v.HasPhotos)
	require.Equal(t, model.CategoryRestaurant, v.Category)
	require.Contains(t, v.Types, "point of interest")
	require.InDelta(t, 1.27, v.Distance, 0.02)
}

func TestGoogleZeroResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"status":"ZERO_RESULTS","results":[]}`))
	}))
	defer srv.Close()

	venues, err := NewGoogle("k", WithGoogleBaseURL(srv.URL)).Search(context.Background(), restaurantRequest())
	require.NoError(t, err)
	require.NotNil(t, venues)
	require.Empty(t, venues)
}

func TestGoogleErrors(t *testing.T) {
	t.Run("denied status", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"status":"REQUEST_DENIED","error_message":"bad key"}`))
		}))
		defer srv.Close()

		_, err := NewGoogle("k", WithGoogleBaseURL(srv.URL)).Search(context.Background(), restaurantRequest())
		require.Error(t, err)
		require.True(t, errors.Is(err, ErrUpstream))
		require.Contains(t, err.Error(), "bad key")
	})

	t.Run("non-2xx", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, "overloaded", http.StatusServiceUnavailable)
		}))
		defer srv.Close()

		_, err := NewGoogle("k", WithGoogleBaseURL(srv.URL)).Search(context.Background(), restaurantRequest())
		require.ErrorIs(t, err, ErrUpstream)
		require.Contains(t, err.Error(), "status=503")
	})

	t.Run("malformed payload", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"status":`))
		}))
		defer srv.Close()

		_, err := NewGoogle("k", WithGoogleBaseURL(srv.URL)).Search(context.Background(), restaurantRequest())
		require.ErrorIs(t, err, ErrUpstream)
	})
}

func TestGoogleDisabled(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) { called = true }))
	defer srv.Close()

	g := NewGoogle("  ", WithGoogleBaseURL(srv.URL))
	require.False(t, g.Enabled())

	venues, err := g.Search(context.Background(), restaurantRequest())
	require.NoError(t, err)
	require.Empty(t, venues)
	require.False(t, called)
}
