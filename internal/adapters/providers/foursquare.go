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

const (
	defaultFoursquareBaseURL = "https://api.foursquare.com"
	foursquareDiningCategory = "13065"
	foursquareLimit          = 50
	foursquareMaxRadius      = 100000
	foursquareFields         = "fsq_id,name,location,geocodes,categories,chains,rating,stats,price,photos"
)

// FoursquareOption configures the Foursquare adapter.
type FoursquareOption func(*Foursquare)

// WithFoursquareBaseURL overrides the API host.
func WithFoursquareBaseURL(u string) FoursquareOption {
	return func(f *Foursquare) {
		if strings.TrimSpace(u) != "" {
			f.baseURL = u
		}
	}
}

// WithFoursquareHTTPClient overrides the HTTP client.
func WithFoursquareHTTPClient(hc *http.Client) FoursquareOption {
	return func(f *Foursquare) { f.hc = hc }
}

// WithFoursquareRules overrides the exclusion rules.
func WithFoursquareRules(r Rules) FoursquareOption {
	return func(f *Foursquare) { f.rules = r }
}

// Foursquare searches the Places v3 API. Rating and review data are only
// present on premium tiers, so venues without them are flagged accordingly.
type Foursquare struct {
	common
	apiKey  string
	baseURL string
	hc      *http.Client
	client  jsonClient
}

// NewFoursquare creates the adapter. It is enabled only when apiKey is set.
func NewFoursquare(apiKey string, opts ...FoursquareOption) *Foursquare {
	f := &Foursquare{
		common:  common{name: model.ProviderFoursquare, enabled: strings.TrimSpace(apiKey) != "", rules: DefaultRules()},
		apiKey:  apiKey,
		baseURL: defaultFoursquareBaseURL,
	}
	for _, opt := range opts {
		opt(f)
	}
	f.client = newJSONClient(f.baseURL, f.hc)
	return f
}

// Search implements aggregate.Provider.
func (f *Foursquare) Search(ctx context.Context, req model.SearchRequest) ([]model.Venue, error) {
	if !f.enabled {
		return []model.Venue{}, nil
	}

	q := url.Values{}
	q.Set("ll", fmt.Sprintf("%f,%f", req.Center.Lat, req.Center.Lng))
	q.Set("radius", strconv.Itoa(min(int(req.RadiusMeters), foursquareMaxRadius)))
	q.Set("limit", strconv.Itoa(foursquareLimit))
	q.Set("fields", foursquareFields)
	if term := strings.TrimSpace(req.Term()); term != "" {
		q.Set("query", term)
	}
	if req.Kind == model.SearchRestaurants {
		q.Set("categories", foursquareDiningCategory)
		if lo, hi, ok := req.Price.Levels(); ok {
			q.Set("min_price", strconv.Itoa(lo))
			q.Set("max_price", strconv.Itoa(hi))
		}
	}

	var resp foursquareResponse
	headers := map[string]string{"Authorization": f.apiKey}
	if err := f.client.get(ctx, "/v3/places/search", q, headers, &resp); err != nil {
		return nil, err
	}

	venues := make([]model.Venue, 0, len(resp.Results))
	for _, p := range resp.Results {
		venues = append(venues, p.venue(req.Category()))
	}
	return f.finish(req, venues), nil
}

type foursquareResponse struct {
	Results []foursquarePlace `json:"results"`
}

type foursquarePlace struct {
	FsqID    string `json:"fsq_id"`
	Name     string `json:"name"`
	Location struct {
		FormattedAddress string `json:"formatted_address"`
		Address          string `json:"address"`
		Locality         string `json:"locality"`
	} `json:"location"`
	Geocodes struct {
		Main struct {
			Latitude  float64 `json:"latitude"`
			Longitude float64 `json:"longitude"`
		} `json:"main"`
	} `json:"geocodes"`
	Categories []foursquareNamed `json:"categories"`
	Chains     []foursquareNamed `json:"chains"`
	Rating     *float64          `json:"rating"` // 0..10 scale
	Stats      *struct {
		TotalRatings int `json:"total_ratings"`
	} `json:"stats"`
	Price  int               `json:"price"`
	Photos []foursquarePhoto `json:"photos"`
}

type foursquareNamed struct {
	Name string `json:"name"`
}

type foursquarePhoto struct {
	ID string `json:"id"`
}

func (p foursquarePlace) venue(cat model.Category) model.Venue {
	v := model.Venue{
		ID:         p.FsqID,
		Name:       p.Name,
		Address:    p.address(),
		Location:   model.Coordinate{Lat: p.Geocodes.Main.Latitude, Lng: p.Geocodes.Main.Longitude},
		Category:   cat,
		Provider:   model.ProviderFoursquare,
		PriceLevel: p.Price,
		HasPhotos:  len(p.Photos) > 0,
	}
	for _, c := range p.Categories {
		if n := strings.TrimSpace(c.Name); n != "" {
			v.Types = append(v.Types, strings.ToLower(n))
		}
	}
	for _, c := range p.Chains {
		if n := strings.TrimSpace(c.Name); n != "" {
			v.Chains = append(v.Chains, n)
		}
	}
	if p.Rating != nil {
		v.HasPremiumData = true
		v.Rating = clampRating(*p.Rating / 2)
		if p.Stats != nil {
			v.ReviewCount = max(p.Stats.TotalRatings, 0)
		}
	}
	return v
}

func (p foursquarePlace) address() string {
	if p.Location.FormattedAddress != "" {
		return p.Location.FormattedAddress
	}
	if p.Location.Locality != "" && p.Location.Address != "" {
		return p.Location.Address + ", " + p.Location.Locality
	}
	return p.Location.Address
}
