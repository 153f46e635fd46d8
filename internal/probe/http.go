package probe

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/datenight/planner/pkg/logger"
	"github.com/google/uuid"
)

// HTTPClient wraps http.Client with timeout
type HTTPClient struct {
	client *http.Client
}

// newHTTPClient creates a new HTTP client with timeout
func newHTTPClient(timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

// Get performs a GET request tagged with a fresh request ID
func (c *HTTPClient) Get(ctx context.Context, rawURL string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("X-Request-ID", "probe-"+uuid.NewString())
	return c.client.Do(req)
}

// search runs one search and decodes the body on 200.
func (c *HTTPClient) search(ctx context.Context, baseURL string, q Query, extra url.Values) (int, SearchResponse, error) {
	var out SearchResponse

	resp, err := c.Get(ctx, searchURL(baseURL, q, extra))
	if err != nil {
		return 0, out, err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, out, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != StatusOK {
		return resp.StatusCode, out, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return resp.StatusCode, out, fmt.Errorf("failed to decode response: %w", err)
	}
	return resp.StatusCode, out, nil
}

// searchURL builds the endpoint URL for q. extra values override q's fields.
func searchURL(baseURL string, q Query, extra url.Values) string {
	v := url.Values{}
	v.Set("lat", strconv.FormatFloat(q.Lat, 'f', -1, 64))
	v.Set("lng", strconv.FormatFloat(q.Lng, 'f', -1, 64))
	v.Set("radiusMiles", strconv.FormatFloat(q.RadiusMiles, 'f', -1, 64))
	if q.Keyword != "" {
		v.Set("keyword", q.Keyword)
	}
	if q.Cuisine != "" {
		v.Set("cuisine", q.Cuisine)
	}
	if q.NoveltyMode != "" {
		v.Set("noveltyMode", q.NoveltyMode)
	}
	for k, vals := range extra {
		v[k] = vals
	}
	return strings.TrimRight(baseURL, "/") + "/v1/" + q.Kind + "/search?" + v.Encode()
}

// runSearches submits queries concurrently using a worker pool.
func runSearches(ctx context.Context, config *Config, queries []Query, stats *Stats) []Result {
	logger.Get().Info(ctx, "submitting searches",
		logger.Int("searches", len(queries)),
		logger.Int("workers", config.Workers))

	client := newHTTPClient(config.Timeout)
	results := make([]Result, len(queries))

	var (
		successful int64
		failed     int64
		submitted  int64
	)

	type job struct {
		index int
		query Query
	}
	jobs := make(chan job, config.Workers*WorkerChannelMultiplier)
	var wg sync.WaitGroup

	for i := 0; i < config.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range jobs {
				if ctx.Err() != nil {
					return
				}
				status, resp, err := client.search(ctx, config.BaseURL, j.query, nil)
				res := Result{Query: j.query, Status: status, Response: resp}
				atomic.AddInt64(&submitted, 1)
				if err != nil {
					res.Error = err.Error()
					atomic.AddInt64(&failed, 1)
					if config.Verbose {
						logger.Get().Warn(ctx, "search failed", logger.String("kind", j.query.Kind), logger.Error(err))
					}
				} else {
					atomic.AddInt64(&successful, 1)
				}
				results[j.index] = res
			}
		}()
	}

	go func() {
		defer close(jobs)
		for i, q := range queries {
			select {
			case <-ctx.Done():
				return
			case jobs <- job{index: i, query: q}:
			}
		}
	}()

	wg.Wait()

	stats.SearchesSubmitted = int(atomic.LoadInt64(&submitted))
	stats.SearchesSuccessful = int(atomic.LoadInt64(&successful))
	stats.SearchesFailed = int(atomic.LoadInt64(&failed))
	for _, r := range results {
		if r.Error != "" || r.Status == 0 {
			continue
		}
		stats.ItemsReturned += len(r.Response.Items)
		if len(r.Response.Items) == 0 {
			stats.EmptyResults++
		}
	}

	logger.Get().Info(ctx, "search submission completed",
		logger.Int("successful", stats.SearchesSuccessful),
		logger.Int("failed", stats.SearchesFailed),
		logger.Int("empty", stats.EmptyResults))
	return results
}
