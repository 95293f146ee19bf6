// Package marketdata fetches current prices for portfolio holdings. The
// live position set is built by repricing the latest snapshot's holdings
// with these quotes.
package marketdata

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/pdekker/Portfolio-Dashboard-Analytics/internal/apperrors"
)

// Client defines the interface for fetching current quotes.
// This interface enables dependency injection and testing with mock implementations.
type Client interface {
	LatestQuote(ctx context.Context, symbol string) (Quote, error)
}

// YahooClient fetches quotes from the Yahoo Finance chart API.
type YahooClient struct {
	httpClient *http.Client
	baseURL    string
}

// NewYahooClient creates a new Yahoo Finance quote client with default HTTP
// settings.
func NewYahooClient() *YahooClient {
	return &YahooClient{
		httpClient: &http.Client{Timeout: 15 * time.Second},
		baseURL:    "https://query1.finance.yahoo.com",
	}
}

// NewYahooClientWithBaseURL creates a client pointed at an alternate
// endpoint. Used by tests to target a local mock server.
func NewYahooClientWithBaseURL(baseURL string) *YahooClient {
	client := NewYahooClient()
	client.baseURL = baseURL
	return client
}

// LatestQuote fetches the most recent price for a symbol. It prefers the
// regular-market price from the chart metadata and falls back to the last
// non-zero daily close when the metadata omits it.
func (c *YahooClient) LatestQuote(ctx context.Context, symbol string) (Quote, error) {
	queryURL := fmt.Sprintf("%s/v8/finance/chart/%s?interval=1d&range=5d", c.baseURL, url.PathEscape(symbol))

	response, err := c.queryChart(ctx, queryURL)
	if err != nil {
		return Quote{}, err
	}
	if len(response.Chart.Result) == 0 {
		return Quote{}, fmt.Errorf("%w: %s", apperrors.ErrQuoteNotFound, symbol)
	}

	result := response.Chart.Result[0]
	quote := Quote{
		Symbol:   result.Meta.Symbol,
		Currency: result.Meta.Currency,
	}
	if quote.Symbol == "" {
		quote.Symbol = symbol
	}

	if result.Meta.RegularMarketPrice > 0 {
		quote.Price = result.Meta.RegularMarketPrice
		quote.UpdatedAt = time.Unix(result.Meta.RegularMarketTime, 0).UTC()
		return quote, nil
	}

	// Fall back to the latest daily close. Holidays and half-days can leave
	// trailing zero entries, so walk backwards to the last real price.
	if len(result.Indicators.Quote) > 0 {
		closes := result.Indicators.Quote[0].Close
		for i := len(closes) - 1; i >= 0; i-- {
			if closes[i] > 0 {
				quote.Price = closes[i]
				if i < len(result.Timestamp) {
					quote.UpdatedAt = time.Unix(result.Timestamp[i], 0).UTC()
				}
				return quote, nil
			}
		}
	}

	return Quote{}, fmt.Errorf("%w: %s has no usable price data", apperrors.ErrQuoteNotFound, symbol)
}

// queryChart executes one chart API request and parses the response. Sets a
// browser-like User-Agent; the API blocks default Go client agents.
func (c *YahooClient) queryChart(ctx context.Context, queryURL string) (chartResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, queryURL, nil)
	if err != nil {
		return chartResponse{}, err
	}

	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return chartResponse{}, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return chartResponse{}, err
	}

	var response chartResponse
	if err := json.Unmarshal(data, &response); err != nil {
		return chartResponse{}, err
	}

	if response.Chart.Error != nil {
		return response, fmt.Errorf("quote provider error: %s", *response.Chart.Error)
	}

	return response, nil
}
