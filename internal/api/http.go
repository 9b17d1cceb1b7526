package api

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

	"github.com/supervisitor20/myreports/internal/filter"
	"github.com/supervisitor20/myreports/internal/logging"
	"github.com/supervisitor20/myreports/internal/model"
)

// Options configures an HTTPClient.
type Options struct {
	BaseURL    string
	Timeout    time.Duration
	RateLimit  time.Duration // minimum spacing between requests; 0 disables
	MaxRetries int
	CSRFToken  string
	// Backoffs are the waits between retries, indexed by attempt. The last
	// entry is reused for later attempts.
	Backoffs []time.Duration
}

// HTTPClient talks to the reporting backend's form-encoded JSON API.
type HTTPClient struct {
	base       string
	csrf       string
	client     *http.Client
	limiter    *rate.Limiter
	maxRetries int
	backoffs   []time.Duration
}

var _ Client = (*HTTPClient)(nil)

// NewHTTPClient creates a client for the backend at opts.BaseURL.
func NewHTTPClient(opts Options) *HTTPClient {
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.MaxRetries < 0 {
		opts.MaxRetries = 0
	}
	if len(opts.Backoffs) == 0 {
		opts.Backoffs = []time.Duration{1 * time.Second, 2 * time.Second, 4 * time.Second}
	}
	limit := rate.Inf
	if opts.RateLimit > 0 {
		limit = rate.Every(opts.RateLimit)
	}
	return &HTTPClient{
		base:       strings.TrimRight(opts.BaseURL, "/"),
		csrf:       opts.CSRFToken,
		client:     &http.Client{Timeout: opts.Timeout},
		limiter:    rate.NewLimiter(limit, 1),
		maxRetries: opts.MaxRetries,
		backoffs:   opts.Backoffs,
	}
}

type filtersResponse struct {
	Filters       filter.Interface `json:"filters"`
	Help          map[string]bool  `json:"help"`
	DefaultFilter map[string]any   `json:"default_filter"`
}

// GetFilters fetches the filter interface for reportDataID.
func (c *HTTPClient) GetFilters(ctx context.Context, reportDataID string) (FilterInterface, error) {
	var resp filtersResponse
	if err := c.post(ctx, "/reports/api/filters", url.Values{"report_data_id": {reportDataID}}, &resp); err != nil {
		return FilterInterface{}, fmt.Errorf("get filters: %w", err)
	}
	fields := make(filter.Interface, len(resp.Filters))
	for i, f := range resp.Filters {
		f.Help = resp.Help[f.Name]
		fields[i] = f
	}
	if resp.DefaultFilter == nil {
		resp.DefaultFilter = map[string]any{}
	}
	return FilterInterface{Fields: fields, DefaultFilter: resp.DefaultFilter}, nil
}

// GetDefaultReportName asks the backend for a suggested report name.
func (c *HTTPClient) GetDefaultReportName(ctx context.Context, reportDataID string) (string, error) {
	var resp struct {
		Name string `json:"name"`
	}
	if err := c.post(ctx, "/reports/api/default_report_name", url.Values{"report_data_id": {reportDataID}}, &resp); err != nil {
		return "", fmt.Errorf("get default report name: %w", err)
	}
	return resp.Name, nil
}

// GetHelp fetches candidate values for field.
func (c *HTTPClient) GetHelp(ctx context.Context, reportDataID string, wire map[string]any, field, partial string) ([]model.Item, error) {
	encoded, err := json.Marshal(wire)
	if err != nil {
		return nil, fmt.Errorf("marshal filter: %w", err)
	}
	form := url.Values{
		"report_data_id": {reportDataID},
		"filter":         {string(encoded)},
		"help":           {field},
		"partial":        {partial},
	}
	var items []model.Item
	if err := c.post(ctx, "/reports/api/help", form, &items); err != nil {
		return nil, fmt.Errorf("get help for %s: %w", field, err)
	}
	if items == nil {
		items = []model.Item{}
	}
	return items, nil
}

// GetSetUpMenuChoices fetches the report type menu narrowed by the given
// selections. Empty arguments leave that level unselected.
func (c *HTTPClient) GetSetUpMenuChoices(ctx context.Context, intention, category, dataSet string) (model.MenuChoices, error) {
	form := url.Values{
		"reporting_type": {intention},
		"report_type":    {category},
		"data_type":      {dataSet},
	}
	var resp struct {
		ReportingTypes []model.Item `json:"reporting_types"`
		ReportTypes    []model.Item `json:"report_types"`
		DataTypes      []model.Item `json:"data_types"`
		ReportDataID   any          `json:"report_data_id"`
	}
	if err := c.post(ctx, "/reports/api/select_data_type_api", form, &resp); err != nil {
		return model.MenuChoices{}, fmt.Errorf("get set-up menu: %w", err)
	}
	return model.MenuChoices{
		Intentions:   resp.ReportingTypes,
		Categories:   resp.ReportTypes,
		DataSets:     resp.DataTypes,
		ReportDataID: idString(resp.ReportDataID),
	}, nil
}

// RunReport starts a report. HTTP 400 responses carrying per-field messages
// become *FieldErrors.
func (c *HTTPClient) RunReport(ctx context.Context, reportDataID, name string, wire map[string]any) (ReportHandle, error) {
	encoded, err := json.Marshal(wire)
	if err != nil {
		return ReportHandle{}, fmt.Errorf("marshal filter: %w", err)
	}
	form := url.Values{
		"report_data_id": {reportDataID},
		"name":           {name},
		"filter":         {string(encoded)},
	}
	var resp struct {
		ID      any `json:"id"`
		Records int `json:"records"`
	}
	if err := c.post(ctx, "/reports/api/run_report", form, &resp); err != nil {
		return ReportHandle{}, fmt.Errorf("run report: %w", err)
	}
	return ReportHandle{ID: idString(resp.ID), Records: resp.Records}, nil
}

func idString(v any) string {
	switch id := v.(type) {
	case nil:
		return ""
	case string:
		return id
	case float64:
		return strconv.FormatFloat(id, 'f', -1, 64)
	default:
		return fmt.Sprint(id)
	}
}

func (c *HTTPClient) post(ctx context.Context, path string, form url.Values, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}
	body, err := c.doWithRetry(ctx, c.base+path, form.Encode())
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("parse response: %w", err)
	}
	return nil
}

// doWithRetry retries on transport failures, 429 and 5xx with backoff,
// honouring Retry-After on 429.
func (c *HTTPClient) doWithRetry(ctx context.Context, endpoint, form string) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form))
		if err != nil {
			return nil, fmt.Errorf("create request: %w", err)
		}
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		req.Header.Set("Accept", "application/json")
		if c.csrf != "" {
			req.Header.Set("X-CSRFToken", c.csrf)
		}

		resp, err := c.client.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, fmt.Errorf("request cancelled: %w", ctx.Err())
			}
			lastErr = fmt.Errorf("request failed: %w", err)
			if werr := c.wait(ctx, attempt, c.backoff(attempt)); werr != nil {
				return nil, werr
			}
			continue
		}

		body, readErr := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
		resp.Body.Close()
		if readErr != nil {
			lastErr = fmt.Errorf("read response: %w", readErr)
			if werr := c.wait(ctx, attempt, c.backoff(attempt)); werr != nil {
				return nil, werr
			}
			continue
		}

		switch {
		case resp.StatusCode == http.StatusOK:
			return body, nil
		case resp.StatusCode == http.StatusBadRequest:
			if fe := parseFieldErrors(body); fe != nil {
				return nil, fe
			}
			return nil, &StatusError{Code: resp.StatusCode, Body: string(body)}
		case resp.StatusCode == http.StatusNotFound:
			return nil, ErrNotFound
		case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
			lastErr = &StatusError{Code: resp.StatusCode, Body: string(body)}
			delay := c.backoff(attempt)
			if resp.StatusCode == http.StatusTooManyRequests {
				delay = retryAfter(resp.Header.Get("Retry-After"), delay)
			}
			logging.Debug("retrying backend request", "url", endpoint, "status", resp.StatusCode, "attempt", attempt+1)
			if werr := c.wait(ctx, attempt, delay); werr != nil {
				return nil, werr
			}
			continue
		default:
			return nil, &StatusError{Code: resp.StatusCode, Body: string(body)}
		}
	}
	return nil, fmt.Errorf("backend request failed after %d retries: %w", c.maxRetries, lastErr)
}

func (c *HTTPClient) backoff(attempt int) time.Duration {
	if attempt < len(c.backoffs) {
		return c.backoffs[attempt]
	}
	return c.backoffs[len(c.backoffs)-1]
}

// wait sleeps before the next attempt, skipping the sleep after the last.
func (c *HTTPClient) wait(ctx context.Context, attempt int, d time.Duration) error {
	if attempt >= c.maxRetries {
		return nil
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}

func retryAfter(header string, fallback time.Duration) time.Duration {
	seconds, err := strconv.Atoi(header)
	if err != nil || seconds <= 0 {
		return fallback
	}
	d := time.Duration(seconds) * time.Second
	if d > 30*time.Second {
		d = 30 * time.Second
	}
	return d
}

// parseFieldErrors reads a {"field": ["message", ...]} payload. Anything
// else returns nil.
func parseFieldErrors(body []byte) *FieldErrors {
	var fields map[string][]string
	if err := json.Unmarshal(body, &fields); err != nil || len(fields) == 0 {
		return nil
	}
	return &FieldErrors{Fields: fields}
}
