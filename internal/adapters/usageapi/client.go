// Package usageapi is the HTTP client for the upstream voice-channel usage API.
package usageapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/okian/vcdash/internal/domain/usage"
	"github.com/okian/vcdash/pkg/logger"
	"github.com/okian/vcdash/pkg/metrics"
)

// Endpoint names, relative to /api/v1/.
const (
	EndpointWeekly  = "weekly-usage"
	EndpointToday   = "today-usage"
	EndpointTotal   = "total-usage"
	EndpointRanking = "ranking"
	EndpointMonthly = "monthly-report"
)

const (
	apiPrefix      = "/api/v1/"
	defaultTimeout = 5 * time.Second
	defaultMaxBody = 8 << 20
)

// Client fetches usage data. It is safe for concurrent use.
type Client struct {
	baseURL string
	timeout time.Duration
	maxBody int64
	http    *http.Client
	logger  logger.Logger

	cacheSize int
	cacheTTL  time.Duration
	cache     Cache
}

// New constructs a Client. Without options it targets http://localhost:8000
// and does not cache.
func New(opts ...Option) *Client {
	c := &Client{
		baseURL: "http://localhost:8000",
		timeout: defaultTimeout,
		maxBody: defaultMaxBody,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.http == nil {
		c.http = &http.Client{Timeout: c.timeout}
	}
	// Entries without a lifetime would never see new data.
	if c.cache == nil && c.cacheSize > 0 && c.cacheTTL > 0 {
		c.cache = NewMemoryCache(c.cacheSize, c.cacheTTL)
	}
	return c
}

// FetchWeeklyUsage returns the raw per-day, per-channel records of the last week.
func (c *Client) FetchWeeklyUsage(ctx context.Context) ([]usage.RawRecord, error) {
	body, err := c.get(ctx, EndpointWeekly, nil)
	if err != nil {
		return nil, err
	}
	recs, err := usage.DecodeRecords(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrDecode, EndpointWeekly, err)
	}
	return recs, nil
}

// FetchTodayUsage returns today's per-channel totals.
func (c *Client) FetchTodayUsage(ctx context.Context) ([]usage.ChannelUsage, error) {
	var out []usage.ChannelUsage
	if err := c.getJSON(ctx, EndpointToday, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// FetchTotalUsage returns all-time per-channel totals, largest first.
func (c *Client) FetchTotalUsage(ctx context.Context) ([]usage.ChannelUsage, error) {
	var out []usage.ChannelUsage
	if err := c.getJSON(ctx, EndpointTotal, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// FetchRanking returns the top channels by usage.
func (c *Client) FetchRanking(ctx context.Context) ([]usage.RankedUsage, error) {
	var out []usage.RankedUsage
	if err := c.getJSON(ctx, EndpointRanking, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// FetchMonthlyReport returns the total and per-day usage of one month.
func (c *Client) FetchMonthlyReport(ctx context.Context, year, month int) (usage.MonthlyReport, error) {
	if month < 1 || month > 12 || year < 1 {
		return usage.MonthlyReport{}, fmt.Errorf("%w: year=%d month=%d", ErrInvalidArgument, year, month)
	}
	q := url.Values{}
	q.Set("year", strconv.Itoa(year))
	q.Set("month", strconv.Itoa(month))

	var out usage.MonthlyReport
	if err := c.getJSON(ctx, EndpointMonthly, q, &out); err != nil {
		return usage.MonthlyReport{}, err
	}
	if out.DailyUsage == nil {
		out.DailyUsage = []usage.DailyUsage{}
	}
	return out, nil
}

func (c *Client) getJSON(ctx context.Context, endpoint string, q url.Values, v any) error {
	body, err := c.get(ctx, endpoint, q)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrDecode, endpoint, err)
	}
	return nil
}

// get performs a GET and returns the body of a 2xx response, consulting the
// cache first.
func (c *Client) get(ctx context.Context, endpoint string, q url.Values) ([]byte, error) {
	u := c.baseURL + apiPrefix + endpoint
	if len(q) > 0 {
		u += "?" + q.Encode()
	}

	if c.cache != nil {
		if body, ok := c.cache.Get(ctx, u); ok {
			metrics.RecordCacheHit()
			metrics.RecordUpstreamRequest(endpoint, "cached")
			return body, nil
		}
		metrics.RecordCacheMiss()
	}

	start := time.Now()
	body, err := c.do(ctx, u)
	metrics.RecordUpstreamLatency(endpoint, float64(time.Since(start).Microseconds())/1000)
	if err != nil {
		metrics.RecordUpstreamRequest(endpoint, outcome(err))
		c.warn(ctx, "usage api request failed", logger.String("endpoint", endpoint), logger.Error(err))
		return nil, err
	}
	metrics.RecordUpstreamRequest(endpoint, "ok")

	if c.cache != nil {
		c.cache.Add(ctx, u, body)
	}
	return body, nil
}

func (c *Client) do(ctx context.Context, u string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRequest, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRequest, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBody+1))
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %w", ErrRequest, err)
	}
	if int64(len(body)) > c.maxBody {
		return nil, fmt.Errorf("%w: %s response too large (over %d bytes)", ErrRequest, u, c.maxBody)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: %s returned %d", ErrUnexpectedStatus, u, resp.StatusCode)
	}
	return body, nil
}

func (c *Client) warn(ctx context.Context, msg string, fields ...logger.Field) {
	if c.logger != nil {
		c.logger.Warn(ctx, msg, fields...)
	}
}

func outcome(err error) string {
	switch {
	case errors.Is(err, ErrUnexpectedStatus):
		return "status"
	case errors.Is(err, ErrRequest):
		return "transport"
	default:
		return "error"
	}
}
