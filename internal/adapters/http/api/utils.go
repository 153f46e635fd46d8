package api

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/datenight/planner/internal/domain/model"
	"github.com/datenight/planner/internal/domain/plan"
)

// searchParams is the inbound search shape shared by the query string of the
// search endpoints and the JSON body of POST /v1/plans.
type searchParams struct {
	Lat             *float64 `json:"lat" validate:"required"`
	Lng             *float64 `json:"lng" validate:"required"`
	RadiusMiles     *float64 `json:"radiusMiles" validate:"required"`
	Keyword         string   `json:"keyword,omitempty"`
	Cuisine         string   `json:"cuisine,omitempty"`
	PriceLevel      string   `json:"priceLevel,omitempty"`
	TargetCity      string   `json:"targetCity,omitempty"`
	NoveltyMode     string   `json:"noveltyMode,omitempty"`
	Seed            *int64   `json:"seed,omitempty"`
	ForceFresh      bool     `json:"forceFresh,omitempty"`
	SurpriseMe      bool     `json:"surpriseMe,omitempty"`
	ExcludePlaceIDs []string `json:"excludePlaceIds,omitempty"`
}

// parseSearchQuery reads searchParams from a query string. Malformed numbers
// and booleans are reported instead of being silently dropped.
func parseSearchQuery(q url.Values) (searchParams, error) {
	var (
		p   searchParams
		err error
	)
	if p.Lat, err = optionalFloat(q, "lat"); err != nil {
		return p, err
	}
	if p.Lng, err = optionalFloat(q, "lng"); err != nil {
		return p, err
	}
	if p.RadiusMiles, err = optionalFloat(q, "radiusMiles"); err != nil {
		return p, err
	}
	if s := q.Get("seed"); s != "" {
		seed, perr := strconv.ParseInt(s, 10, 64)
		if perr != nil {
			return p, fmt.Errorf("seed: %w", perr)
		}
		p.Seed = &seed
	}
	if p.ForceFresh, err = optionalBool(q, "forceFresh"); err != nil {
		return p, err
	}
	if p.SurpriseMe, err = optionalBool(q, "surpriseMe"); err != nil {
		return p, err
	}
	p.Keyword = q.Get("keyword")
	p.Cuisine = q.Get("cuisine")
	p.PriceLevel = q.Get("priceLevel")
	p.TargetCity = q.Get("targetCity")
	p.NoveltyMode = q.Get("noveltyMode")
	p.ExcludePlaceIDs = splitIDs(q["excludePlaceIds"])
	return p, nil
}

// request converts p to a SearchRequest of kind. Errors wrap ErrInvalidRequest.
func (p searchParams) request(kind model.SearchKind) (model.SearchRequest, error) {
	if err := model.ValidateStruct(p); err != nil {
		return model.SearchRequest{}, err
	}
	novelty, err := model.ParseNoveltyMode(p.NoveltyMode)
	if err != nil {
		return model.SearchRequest{}, err
	}
	req := model.SearchRequest{
		Kind:         kind,
		Center:       model.Coordinate{Lat: *p.Lat, Lng: *p.Lng},
		RadiusMeters: *p.RadiusMiles * model.MetersPerMile,
		TargetCity:   strings.TrimSpace(p.TargetCity),
		Novelty:      novelty,
		Seed:         p.Seed,
		ForceFresh:   p.ForceFresh,
		Surprise:     p.SurpriseMe,
		Exclude:      p.ExcludePlaceIDs,
	}
	if kind == model.SearchRestaurants {
		req.Cuisine = strings.TrimSpace(p.Cuisine)
		if req.Price, err = model.ParsePriceTier(p.PriceLevel); err != nil {
			return model.SearchRequest{}, err
		}
	} else {
		req.Keyword = strings.TrimSpace(p.Keyword)
	}
	return req, nil
}

// preferencesBody mirrors plan.Preferences on the wire.
type preferencesBody struct {
	Cuisines             []string `json:"cuisines,omitempty"`
	ActivityTypes        []string `json:"activityTypes,omitempty"`
	Setting              string   `json:"setting,omitempty" validate:"omitempty,oneof=indoor outdoor"`
	PreferNovel          bool     `json:"preferNovel,omitempty"`
	MaxPairDistanceMiles float64  `json:"maxPairDistanceMiles,omitempty" validate:"gte=0"`
}

func (b *preferencesBody) preferences() plan.Preferences {
	if b == nil {
		return plan.Preferences{}
	}
	return plan.Preferences{
		Cuisines:        b.Cuisines,
		ActivityTypes:   b.ActivityTypes,
		Setting:         plan.Setting(b.Setting),
		PreferNovel:     b.PreferNovel,
		MaxPairDistance: b.MaxPairDistanceMiles,
	}
}

func optionalFloat(q url.Values, key string) (*float64, error) {
	s := q.Get(key)
	if s == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", key, err)
	}
	return &f, nil
}

func optionalBool(q url.Values, key string) (bool, error) {
	s := q.Get(key)
	if s == "" {
		return false, nil
	}
	b, err := strconv.ParseBool(s)
	if err != nil {
		return false, fmt.Errorf("%s: %w", key, err)
	}
	return b, nil
}

// splitIDs accepts both repeated and comma-separated id parameters.
func splitIDs(values []string) []string {
	var out []string
	for _, v := range values {
		for _, id := range strings.Split(v, ",") {
			if id = strings.TrimSpace(id); id != "" {
				out = append(out, id)
			}
		}
	}
	return out
}
