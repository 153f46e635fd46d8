// Package providers adapts external place-search APIs to normalized venues.
package providers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/datenight/planner/internal/domain/exclusion"
	"github.com/datenight/planner/internal/domain/geo"
	"github.com/datenight/planner/internal/domain/model"
	"github.com/datenight/planner/pkg/metrics"
)

const (
	defaultHTTPTimeout = 10 * time.Second
	maxErrorBody       = 4 << 10
	maxResponseBody    = 4 << 20
)

// ErrUpstream marks a non-2xx or malformed provider response.
var ErrUpstream = errors.New("upstream provider error")

// jsonClient performs GET requests and decodes JSON bodies.
type jsonClient struct {
	baseURL    string
	httpClient *http.Client
}

func newJSONClient(baseURL string, hc *http.Client) jsonClient {
	if hc == nil {
		hc = &http.Client{Timeout: defaultHTTPTimeout}
	}
	return jsonClient{baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"), httpClient: hc}
}

func (c jsonClient) get(ctx context.Context, path string, query url.Values, headers map[string]string, out any) error {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return fmt.Errorf("%w: status=%d body=%s", ErrUpstream, resp.StatusCode, strings.TrimSpace(string(payload)))
	}

	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBody)).Decode(out); err != nil {
		return fmt.Errorf("%w: decode response: %v", ErrUpstream, err)
	}
	return nil
}

// common holds what every concrete adapter shares.
type common struct {
	name    string
	enabled bool
	rules   Rules
}

func (c common) Name() string  { return c.name }
func (c common) Enabled() bool { return c.enabled }

// Rules are the exclusion rules injected into adapters per search kind.
type Rules struct {
	Restaurant exclusion.Rules
	Activity   exclusion.Rules
	// GhostListings drops venues with premium data but zero reviews.
	GhostListings bool
}

// DefaultRules returns the shared exclusion rule set.
func DefaultRules() Rules {
	return Rules{
		Restaurant:    exclusion.RestaurantRules(),
		Activity:      exclusion.ActivityRules(),
		GhostListings: true,
	}
}

// withDistances sets each venue's distance from the search center.
func withDistances(req model.SearchRequest, venues []model.Venue) []model.Venue {
	for i := range venues {
		venues[i].Distance = geo.HaversineMiles(req.Center, venues[i].Location)
	}
	return venues
}

// finish computes distances from the search center and applies exclusion rules.
func (c common) finish(req model.SearchRequest, venues []model.Venue) []model.Venue {
	venues = withDistances(req, venues)

	rules := c.rules.Activity
	if req.Kind == model.SearchRestaurants {
		rules = c.rules.Restaurant
	}
	if c.rules.GhostListings {
		rules = append(append(exclusion.Rules{}, rules...), exclusion.GhostListings())
	}

	kept, dropped := rules.Apply(req.Term(), venues)
	for reason, n := range dropped {
		metrics.RecordExclusions(string(reason), n)
	}
	return kept
}

func normalizeTypes(raw []string) []string {
	out := make([]string, 0, len(raw))
	for _, t := range raw {
		if n := exclusion.NormalizeType(t); n != "" {
			out = append(out, n)
		}
	}
	return out
}
