package upstream

import (
	"context"
	"net/url"
	"strconv"

	"github.com/cardsnipe/engine/internal/models"
)

// GetDeals fetches the filtered, sorted listing set. In live mode the server
// applies the filters; the engine does not re-filter the result.
func (c *Client) GetDeals(ctx context.Context, f models.DealFilters) ([]models.Listing, error) {
	query := url.Values{}
	if f.Sport != "" && f.Sport != "all" {
		query.Set("sport", f.Sport)
	}
	if f.Type != "" && f.Type != "all" {
		query.Set("type", f.Type)
	}
	if f.MinDealScore > 0 {
		query.Set("minDealScore", strconv.Itoa(f.MinDealScore))
	}
	if f.Search != "" {
		query.Set("search", f.Search)
	}
	if f.Grade != "" && f.Grade != "all" {
		query.Set("grade", f.Grade)
	}
	sortBy := f.SortBy
	if sortBy == "" {
		sortBy = "dealScore"
	}
	query.Set("sortBy", sortBy)

	var listings []models.Listing
	if err := c.get(ctx, "/api/deals", query, &listings); err != nil {
		return nil, err
	}
	return listings, nil
}

// GetStats fetches the server-computed aggregate deal stats.
func (c *Client) GetStats(ctx context.Context) (*models.DealStats, error) {
	var stats models.DealStats
	if err := c.get(ctx, "/api/stats", nil, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

// GetSettings fetches the scanner settings record.
func (c *Client) GetSettings(ctx context.Context) (*models.Settings, error) {
	var settings models.Settings
	if err := c.get(ctx, "/api/settings", nil, &settings); err != nil {
		return nil, err
	}
	return &settings, nil
}

// UpdateSettings writes the settings record and returns the stored copy.
func (c *Client) UpdateSettings(ctx context.Context, settings models.Settings) (*models.Settings, error) {
	env, err := c.request(ctx, "POST", "/api/settings", nil, settings)
	if err != nil {
		return nil, err
	}
	var stored models.Settings
	if err := unmarshalData(env, &stored); err != nil {
		return nil, err
	}
	return &stored, nil
}

// ScanLogQuery filters the scan-log fetch.
type ScanLogQuery struct {
	Outcome models.ScanOutcome
	Sport   models.Sport
	Limit   int
}

// GetScanLog fetches recent scan-log entries, newest first.
func (c *Client) GetScanLog(ctx context.Context, q ScanLogQuery) ([]models.ScanLogEntry, error) {
	query := url.Values{}
	if q.Outcome != "" {
		query.Set("outcome", string(q.Outcome))
	}
	if q.Sport != "" {
		query.Set("sport", string(q.Sport))
	}
	limit := q.Limit
	if limit <= 0 {
		limit = 100
	}
	query.Set("limit", strconv.Itoa(limit))

	var entries []models.ScanLogEntry
	if err := c.get(ctx, "/api/scan-log", query, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// GetScanCount fetches the scanner's evaluated-listings counter.
func (c *Client) GetScanCount(ctx context.Context) (*models.ScanCount, error) {
	var count models.ScanCount
	if err := c.get(ctx, "/api/scan-count", nil, &count); err != nil {
		return nil, err
	}
	return &count, nil
}
