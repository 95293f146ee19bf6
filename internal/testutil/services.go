package testutil

import (
	"context"
	"database/sql"
	"fmt"
	"testing"

	"github.com/pdekker/Portfolio-Dashboard-Analytics/internal/config"
	"github.com/pdekker/Portfolio-Dashboard-Analytics/internal/marketdata"
	"github.com/pdekker/Portfolio-Dashboard-Analytics/internal/repository"
	"github.com/pdekker/Portfolio-Dashboard-Analytics/internal/service"
)

// StaticQuoteClient serves fixed quotes keyed by symbol, for tests that need
// live repricing without a network.
type StaticQuoteClient struct {
	Quotes map[string]marketdata.Quote
}

// LatestQuote returns the canned quote or an error for unknown symbols.
func (c *StaticQuoteClient) LatestQuote(_ context.Context, symbol string) (marketdata.Quote, error) {
	quote, ok := c.Quotes[symbol]
	if !ok {
		return marketdata.Quote{}, fmt.Errorf("no quote for %s", symbol)
	}
	return quote, nil
}

// NewTestSnapshotService builds a snapshot service over the test database
// with a 30-day default window.
func NewTestSnapshotService(t *testing.T, db *sql.DB) *service.SnapshotService {
	t.Helper()
	return service.NewSnapshotService(repository.NewSnapshotRepository(db), 30)
}

// NewTestAnalyticsService builds the full analytics stack over the test
// database, with quotes served from the given client.
func NewTestAnalyticsService(t *testing.T, db *sql.DB, client marketdata.Client) *service.AnalyticsService {
	t.Helper()
	snapshotService := NewTestSnapshotService(t, db)
	liveService := service.NewLiveService(snapshotService, client)
	return service.NewAnalyticsService(snapshotService, liveService, config.AnalyticsConfig{
		RiskFreeRatePercent: 2.0,
		TradingDaysPerYear:  252,
		StalePriceHours:     48,
		DefaultDaysBack:     30,
	})
}

// NewTestSavedViewService builds a saved-view service over the test
// database.
func NewTestSavedViewService(t *testing.T, db *sql.DB) *service.SavedViewService {
	t.Helper()
	return service.NewSavedViewService(repository.NewSavedViewRepository(db))
}
