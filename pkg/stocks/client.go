// Package stocks queries the remote market-data and analytics service. All
// calls are opaque remote reads over the authorized API client; no analytics
// are computed locally. Errors surface through the apiclient taxonomy.
package stocks

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/dmitrymomot/stockdash/pkg/apiclient"
)

// Client issues the /etl calls. Zero value is not usable; use New.
type Client struct {
	api *apiclient.Client
}

// New wraps an API client. Panics on nil: a stocks client without transport
// is a misconfiguration, not a runtime condition.
func New(api *apiclient.Client) *Client {
	if api == nil {
		panic("stocks: api client is required")
	}
	return &Client{api: api}
}

// RunETL triggers the ingestion pipeline for a ticker.
func (c *Client) RunETL(ctx context.Context, ticker string) error {
	return c.api.Post(ctx, "/etl/"+url.PathEscape(ticker)+"/run", nil, nil)
}

// Results fetches the latest quote produced by the pipeline.
func (c *Client) Results(ctx context.Context, ticker string) (*Stock, error) {
	var stock Stock
	if err := c.api.Get(ctx, "/etl/"+url.PathEscape(ticker)+"/results", nil, &stock); err != nil {
		return nil, err
	}
	return &stock, nil
}

// History fetches the raw price history of a ticker.
func (c *Client) History(ctx context.Context, ticker string) ([]HistoryPoint, error) {
	var points []HistoryPoint
	if err := c.api.Get(ctx, "/etl/"+url.PathEscape(ticker)+"/history", nil, &points); err != nil {
		return nil, err
	}
	return points, nil
}

// MarketSummary aggregates the given tickers.
func (c *Client) MarketSummary(ctx context.Context, tickers []string) (*MarketSummary, error) {
	query := url.Values{}
	query.Set("tickers", strings.Join(tickers, ","))

	var summary MarketSummary
	if err := c.api.Get(ctx, "/etl/analytics/summary/", query, &summary); err != nil {
		return nil, err
	}
	return &summary, nil
}

// Correlation fetches the analytics narrative for a ticker.
func (c *Client) Correlation(ctx context.Context, ticker string) (*Correlation, error) {
	var corr Correlation
	if err := c.api.Get(ctx, "/etl/analytics/correlation/"+url.PathEscape(ticker), nil, &corr); err != nil {
		return nil, err
	}
	return &corr, nil
}

// Trends buckets the given tickers by direction.
func (c *Client) Trends(ctx context.Context, tickers []string) (*TrendAnalysis, error) {
	query := url.Values{}
	query.Set("tickers", strings.Join(tickers, ","))

	var trends TrendAnalysis
	if err := c.api.Get(ctx, "/etl/analytics/trends", query, &trends); err != nil {
		return nil, err
	}
	return &trends, nil
}

// AnalyticsHistory fetches the analytics-side history of a ticker.
func (c *Client) AnalyticsHistory(ctx context.Context, ticker string) ([]HistoryPoint, error) {
	var points []HistoryPoint
	if err := c.api.Get(ctx, "/etl/analytics/history/"+url.PathEscape(ticker), nil, &points); err != nil {
		return nil, err
	}
	return points, nil
}

// Prediction fetches the forward-looking call for a ticker.
func (c *Client) Prediction(ctx context.Context, ticker string) (*Prediction, error) {
	var pred Prediction
	if err := c.api.Get(ctx, "/etl/analytics/prediction/"+url.PathEscape(ticker), nil, &pred); err != nil {
		return nil, err
	}
	return &pred, nil
}

// GenerateVideo runs the video generation pipeline and streams the result.
// The caller owns the reader and must close it.
func (c *Client) GenerateVideo(ctx context.Context, ticker string) (io.ReadCloser, error) {
	return c.api.Stream(ctx, http.MethodPost, "/etl/video-generation/"+url.PathEscape(ticker)+"/run")
}
