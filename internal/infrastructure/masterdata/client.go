// Package masterdata is the REST client for the back-office master data
// service: farmers, branches, routes, rate configuration, bill period
// definitions and the collection records themselves. The engine never owns
// this data; every settlement run fetches what it needs in full before any
// calculation starts.
package masterdata

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"

	"milkbill/internal/core/apperror"
	"milkbill/internal/core/id"
	"milkbill/internal/domain/billing"
	"milkbill/internal/domain/billperiod"
	"milkbill/internal/domain/collection"
	"milkbill/internal/domain/rates"
)

// Farmer is a supplier master record.
type Farmer struct {
	ID      string `json:"id"`
	Code    string `json:"code"`
	Name    string `json:"name"`
	RouteID string `json:"routeId,omitempty"`
	Active  bool   `json:"active"`
}

// Branch is a collection or processing unit.
type Branch struct {
	ID        id.ID  `json:"id"`
	Name      string `json:"name"`
	ShortCode string `json:"shortCode"`
}

// Route is a milk collection route.
type Route struct {
	ID       id.ID  `json:"id"`
	Name     string `json:"name"`
	BranchID id.ID  `json:"branchId"`
}

// Compile-time check: the client serves the settlement reads.
var _ billing.MasterData = (*Client)(nil)

// Client is a resty-backed master data client.
type Client struct {
	httpClient *resty.Client

	codeMu sync.RWMutex
	codes  map[id.ID]string
}

// Config holds master data client configuration.
type Config struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// NewClient builds a master data client.
func NewClient(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	restyClient := resty.New()
	restyClient.
		SetBaseURL(strings.TrimSuffix(cfg.BaseURL, "/")).
		SetHeader("Content-Type", "application/json").
		SetTimeout(timeout).
		SetRetryCount(2).
		SetRetryWaitTime(500 * time.Millisecond)

	if cfg.APIKey != "" {
		restyClient.SetHeader("Authorization", "Bearer "+cfg.APIKey)
	}

	return &Client{
		httpClient: restyClient,
		codes:      make(map[id.ID]string),
	}
}

// get fetches a resource into out, mapping any failure to an upstream error
// so the caller renders "report generation failed" rather than empty data.
func (c *Client) get(ctx context.Context, resource string, query map[string]string, out any) error {
	req := c.httpClient.R().
		SetContext(ctx).
		SetResult(out)
	if len(query) > 0 {
		req.SetQueryParams(query)
	}

	resp, err := req.Get(resource)
	if err != nil {
		return apperror.NewUpstream(resource, err)
	}
	// 404 means the resource does not exist, which callers treat as data
	// (a farmer without a rate override falls back to common rates). Every
	// other failure is the service being unavailable.
	if resp.StatusCode() == http.StatusNotFound {
		return apperror.NewNotFound(resource, "")
	}
	if resp.StatusCode() >= http.StatusBadRequest {
		return apperror.NewUpstream(resource, fmt.Errorf("status %d", resp.StatusCode()))
	}
	return nil
}

// Collections fetches collection records, optionally narrowed by farmer and
// date range.
func (c *Client) Collections(ctx context.Context, params billing.CollectionQuery) ([]collection.Record, error) {
	query := map[string]string{}
	if params.FarmerID != "" {
		query["farmerId"] = params.FarmerID
	}
	if params.DateFrom != "" {
		query["dateFrom"] = params.DateFrom
	}
	if params.DateTo != "" {
		query["dateTo"] = params.DateTo
	}

	var records []collection.Record
	if err := c.get(ctx, "/collections", query, &records); err != nil {
		return nil, err
	}
	return records, nil
}

// Farmers fetches all farmer master records.
func (c *Client) Farmers(ctx context.Context) ([]Farmer, error) {
	var farmers []Farmer
	if err := c.get(ctx, "/farmers", nil, &farmers); err != nil {
		return nil, err
	}
	return farmers, nil
}

// BillPeriods fetches the recurring period definitions.
func (c *Client) BillPeriods(ctx context.Context) ([]billperiod.Definition, error) {
	var defs []billperiod.Definition
	if err := c.get(ctx, "/bill-periods", nil, &defs); err != nil {
		return nil, err
	}
	return defs, nil
}

// LockedPeriods fetches the composite keys of locked period instances.
func (c *Client) LockedPeriods(ctx context.Context) ([]string, error) {
	var keys []string
	if err := c.get(ctx, "/locked-periods", nil, &keys); err != nil {
		return nil, err
	}
	return keys, nil
}

// Adjustments fetches master additions and deductions, optionally narrowed
// by farmer and period.
func (c *Client) Adjustments(ctx context.Context, farmerID, periodID string) ([]billing.MasterAdjustment, error) {
	query := map[string]string{}
	if farmerID != "" {
		query["farmerId"] = farmerID
	}
	if periodID != "" {
		query["billPeriodId"] = periodID
	}

	var adjustments []billing.MasterAdjustment
	if err := c.get(ctx, "/additions-deductions", query, &adjustments); err != nil {
		return nil, err
	}
	return adjustments, nil
}

// Branches fetches all branch/unit records.
func (c *Client) Branches(ctx context.Context) ([]Branch, error) {
	var branches []Branch
	if err := c.get(ctx, "/branches", nil, &branches); err != nil {
		return nil, err
	}
	return branches, nil
}

// Routes fetches milk route records.
func (c *Client) Routes(ctx context.Context) ([]Route, error) {
	var routes []Route
	if err := c.get(ctx, "/milk-routes", nil, &routes); err != nil {
		return nil, err
	}
	return routes, nil
}

// FarmerRates fetches a farmer's rate configuration override.
func (c *Client) FarmerRates(ctx context.Context, farmerID string) (rates.FarmerRateConfig, error) {
	var cfg rates.FarmerRateConfig
	if err := c.get(ctx, "/rate-configs/"+farmerID, nil, &cfg); err != nil {
		return rates.FarmerRateConfig{}, err
	}
	return cfg, nil
}

// CommonRates fetches the society-wide default rate configuration.
func (c *Client) CommonRates(ctx context.Context) (rates.CommonRateConfig, error) {
	var cfg rates.CommonRateConfig
	if err := c.get(ctx, "/rate-configs/common", nil, &cfg); err != nil {
		return rates.CommonRateConfig{}, err
	}
	return cfg, nil
}

// Ping checks reachability of the master data service. Used by the
// readiness probe.
func (c *Client) Ping(ctx context.Context) error {
	resp, err := c.httpClient.R().SetContext(ctx).Get("/health")
	if err != nil {
		return apperror.NewUpstream("/health", err)
	}
	if resp.StatusCode() >= http.StatusInternalServerError {
		return apperror.NewUpstream("/health", fmt.Errorf("status %d", resp.StatusCode()))
	}
	return nil
}

// ShortCode resolves a unit id to its short code, caching resolved codes
// for the process lifetime. Implements the unit directory used by DC number
// generation.
func (c *Client) ShortCode(ctx context.Context, unitID id.ID) (string, error) {
	c.codeMu.RLock()
	code, ok := c.codes[unitID]
	c.codeMu.RUnlock()
	if ok {
		return code, nil
	}

	branches, err := c.Branches(ctx)
	if err != nil {
		return "", err
	}

	c.codeMu.Lock()
	for _, b := range branches {
		if b.ShortCode != "" {
			c.codes[b.ID] = b.ShortCode
		}
	}
	code, ok = c.codes[unitID]
	c.codeMu.Unlock()

	if !ok {
		return "", apperror.NewNotFound("branch", unitID.String())
	}
	return code, nil
}
