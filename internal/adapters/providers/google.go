package providers

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/datenight/planner/internal/domain/model"
)

const defaultGoogleBaseURL = "https://maps.googleapis.com"

// Google status values that are not failures.
const (
	googleStatusOK          = "OK"
	googleStatusZeroResults = "ZERO_RESULTS"
)

// GoogleOption configures the Google adapter.
type GoogleOption func(*Google)

// WithGoogleBaseURL overrides the API host.
func WithGoogleBaseURL(u string) GoogleOption {
	return func(g *Google) {
		if strings.TrimSpace(u) != "" {
			g.baseURL = u
		}
	}
}

// WithGoogleHTTPClient overrides the HTTP client.
func WithGoogleHTTPClient(hc *http.Client) GoogleOption {
	return func(g *Google) { g.hc = hc }
}

// WithGoogleRules overrides the exclusion rules.
func WithGoogleRules(r Rules) GoogleOption {
	return func(g *Google) { g.rules = r }
}

// Google searches the Places nearby-search endpoint. Every result carries
// rating data, so venues are marked as having premium data.
type Google struct {
	common
	apiKey  string
	baseURL string
	hc      *http.Client
	client  jsonClient
}

// NewGoogle creates the adapter. It is enabled only when apiKey is set.
func NewGoogle(apiKey string, opts ...GoogleOption) *Google {
	g := &Google{
		common:  common{name: model.ProviderGoogle, enabled: strings.TrimSpace(apiKey) != "", rules: DefaultRules()},
		apiKey:  apiKey,
		baseURL: defaultGoogleBaseURL,
	}
	for _, opt := range opts {
		opt(g)
	}
	g.client = newJSONClient(g.baseURL, g.hc)
	return g
}

// Search implements aggregate.Provider.
func (g *Google) Search(ctx context.Context, req model.SearchRequest) ([]model.Venue, error) {
	if !g.enabled {
		return []model.Venue{}, nil
	}

	q := url.Values{}
	q.Set("location", fmt.Sprintf("%f,%f", req.Center.Lat, req.Center.Lng))
	q.Set("radius", strconv.Itoa(int(req.RadiusMeters)))
	q.Set("key", g.apiKey)
	if term := strings.TrimSpace(req.Term()); term != "" {
		q.Set("keyword", term)
	}
	if req.Kind == model.SearchRestaurants {
		q.Set("type", "restaurant")
		if lo, hi, ok := req.Price.Levels(); ok {
			q.Set("minprice", strconv.Itoa(lo))
			q.Set("maxprice", strconv.Itoa(hi))
		}
	}

	var resp googleResponse
	if err := g.client.get(ctx, "/maps/api/place/nearbysearch/json", q, nil, &resp); err != nil {
		return nil, err
	}
	switch resp.Status {
	case googleStatusOK:
	case googleStatusZeroResults:
		return []model.Venue{}, nil
	default:
		return nil, fmt.Errorf("%w: status=%s message=%s", ErrUpstream, resp.Status, resp.ErrorMessage)
	}

	venues := make([]model.Venue, 0, len(resp.Results))
	for _, r := range resp.Results {
		if r.BusinessStatus != "" && r.BusinessStatus != "OPERATIONAL" {
			continue
		}
		venues = append(venues, r.venue(req.Category()))
	}
	return g.finish(req, venues), nil
}

type googleResponse struct {
	Results      []googlePlace `json:"results"`
	Status       string        `json:"status"`
	ErrorMessage string        `json:"error_message"`
}

type googlePlace struct {
	PlaceID          string         `json:"place_id"`
	Name             string         `json:"name"`
	Vicinity         string         `json:"vicinity"`
	FormattedAddress string         `json:"formatted_address"`
	Rating           float64        `json:"rating"`
	UserRatingsTotal int            `json:"user_ratings_total"`
	PriceLevel       int            `json:"price_level"`
	Types            []string       `json:"types"`
	BusinessStatus   string         `json:"business_status"`
	Photos           []googlePhoto  `json:"photos"`
	Geometry         googleGeometry `json:"geometry"`
}

type googleGeometry struct {
	Location struct {
		Lat float64 `json:"lat"`
		Lng float64 `json:"lng"`
	} `json:"location"`
}

type googlePhoto struct {
	PhotoReference string `json:"photo_reference"`
}

func (p googlePlace) venue(cat model.Category) model.Venue {
	addr := p.Vicinity
	if addr == "" {
		addr = p.FormattedAddress
	}
	return model.Venue{
		ID:             p.PlaceID,
		Name:           p.Name,
		Address:        addr,
		Rating:         clampRating(p.Rating),
		ReviewCount:    max(p.UserRatingsTotal, 0),
		Location:       model.Coordinate{Lat: p.Geometry.Location.Lat, Lng: p.Geometry.Location.Lng},
		Category:       cat,
		Provider:       model.ProviderGoogle,
		PriceLevel:     p.PriceLevel,
		HasPremiumData: true,
		HasPhotos:      len(p.Photos) > 0,
		Types:          normalizeTypes(p.Types),
	}
}

func clampRating(r float64) float64 {
	switch {
	case r < 0:
		return 0
	case r > 5:
		return 5
	default:
		return r
	}
}
