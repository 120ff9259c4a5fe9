package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/pageza/macrolog/backend/internal/logger"
	"github.com/pageza/macrolog/backend/internal/model"
)

const (
	// MinQueryLength is the shortest trimmed query that triggers a lookup.
	MinQueryLength = 2

	maxSearchResponseBytes = 8 << 20
	searchFields           = "code,product_name,generic_name,nutriments,serving_size"
)

// FoodSearchConfig configures the remote food database client
type FoodSearchConfig struct {
	BaseURL       string
	UserAgent     string
	PageSize      int
	Timeout       time.Duration
	RatePerMinute int
}

// FoodSearchClient queries the remote food database and normalizes the
// products it returns.
type FoodSearchClient struct {
	baseURL   string
	userAgent string
	pageSize  int
	timeout   time.Duration
	client    *http.Client
	limiter   *rate.Limiter
	log       *logger.Logger
}

// NewFoodSearchClient creates a new FoodSearchClient instance
func NewFoodSearchClient(cfg FoodSearchConfig, log *logger.Logger) *FoodSearchClient {
	if log == nil {
		log = logger.Discard()
	}
	limiter := rate.NewLimiter(rate.Inf, 0)
	if cfg.RatePerMinute > 0 {
		limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(cfg.RatePerMinute)), cfg.RatePerMinute)
	}
	return &FoodSearchClient{
		baseURL:   cfg.BaseURL,
		userAgent: cfg.UserAgent,
		pageSize:  cfg.PageSize,
		timeout:   cfg.Timeout,
		client:    &http.Client{},
		limiter:   limiter,
		log:       log.WithComponent("food_search"),
	}
}

// NormalizeQuery trims a raw query and reports whether it is long enough
// to search for.
func NormalizeQuery(query string) (string, bool) {
	q := strings.TrimSpace(query)
	return q, len([]rune(q)) >= MinQueryLength
}

// Search runs one lookup. Every failure mode wraps ErrSearchUnavailable.
func (c *FoodSearchClient) Search(ctx context.Context, query string) ([]model.MacroRecord, error) {
	q, ok := NormalizeQuery(query)
	if !ok {
		return []model.MacroRecord{}, nil
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: rate limiter: %v", ErrSearchUnavailable, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.searchURL(q), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %v", ErrSearchUnavailable, err)
	}
	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSearchUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("%w: status %d", ErrSearchUnavailable, resp.StatusCode)
	}

	var payload model.SearchResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxSearchResponseBytes)).Decode(&payload); err != nil {
		return nil, fmt.Errorf("%w: decode response: %v", ErrSearchUnavailable, err)
	}

	records := Normalize(payload.Products)
	c.log.Debug("food search completed",
		"query", q,
		"raw_count", len(payload.Products),
		"candidates", len(records),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return records, nil
}

func (c *FoodSearchClient) searchURL(query string) string {
	params := url.Values{}
	params.Set("search_terms", query)
	params.Set("search_simple", "1")
	params.Set("action", "process")
	params.Set("json", "1")
	params.Set("page_size", strconv.Itoa(c.pageSize))
	params.Set("fields", searchFields)

	sep := "?"
	if strings.Contains(c.baseURL, "?") {
		sep = "&"
	}
	return c.baseURL + sep + params.Encode()
}
