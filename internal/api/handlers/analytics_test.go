package handlers_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/pdekker/Portfolio-Dashboard-Analytics/internal/api/handlers"
	"github.com/pdekker/Portfolio-Dashboard-Analytics/internal/model"
	"github.com/pdekker/Portfolio-Dashboard-Analytics/internal/testutil"
)

func seedAnalyticsHandler(t *testing.T) *handlers.AnalyticsHandler {
	t.Helper()
	db := testutil.SetupTestDB(t)
	svc := testutil.NewTestAnalyticsService(t, db, &testutil.StaticQuoteClient{})

	snapshotService := testutil.NewTestSnapshotService(t, db)
	for date, value := range map[string]float64{"2024-02-01": 1000, "2024-02-02": 1100} {
		snapshot := testutil.SnapshotOf(date, testutil.Record(model.AssetTypeSecurity, "AAPL", 1, value))
		if err := snapshotService.ReplaceSnapshot(snapshot); err != nil {
			t.Fatalf("ReplaceSnapshot(%s) returned unexpected error: %v", date, err)
		}
	}
	return handlers.NewAnalyticsHandler(svc)
}

// TestAnalyticsHandler_Aggregate tests the aggregation endpoint's success
// and validation paths.
//
// WHY: This is the dashboard's primary endpoint; both the JSON shape and
// the 400-on-bad-parameters contract are load-bearing for the frontend.
func TestAnalyticsHandler_Aggregate(t *testing.T) {
	handler := seedAnalyticsHandler(t)

	t.Run("returns aggregation for a valid range", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/analytics/aggregate?start_date=2024-02-01&end_date=2024-02-02", nil)
		w := httptest.NewRecorder()

		handler.Aggregate(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
		}

		var response model.AggregationResult
		if err := json.NewDecoder(w.Body).Decode(&response); err != nil {
			t.Fatalf("Failed to decode response: %v", err)
		}
		if len(response.Dates) != 2 {
			t.Errorf("Expected 2 dates, got %d", len(response.Dates))
		}
		if len(response.Rows) != 1 {
			t.Errorf("Expected 1 row, got %d", len(response.Rows))
		}
		if got := response.TotalsByDate["2024-02-02"].DayChange; got != 100 {
			t.Errorf("Expected day change 100, got %v", got)
		}
	})

	t.Run("rejects invalid parameters with 400", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/analytics/aggregate?group_by=flavor", nil)
		w := httptest.NewRecorder()

		handler.Aggregate(w, req)

		if w.Code != http.StatusBadRequest {
			t.Errorf("Expected status 400, got %d", w.Code)
		}
		if !strings.Contains(w.Body.String(), "validation failed") {
			t.Errorf("Expected validation error body, got %s", w.Body.String())
		}
	})
}

// TestAnalyticsHandler_Compare tests the comparison endpoint including the
// 404 for a date with no snapshot.
func TestAnalyticsHandler_Compare(t *testing.T) {
	handler := seedAnalyticsHandler(t)

	t.Run("diffs two snapshot dates", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/analytics/compare?start_date=2024-02-01&end_date=2024-02-02", nil)
		w := httptest.NewRecorder()

		handler.Compare(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
		}

		var response model.ComparisonResult
		if err := json.NewDecoder(w.Body).Decode(&response); err != nil {
			t.Fatalf("Failed to decode response: %v", err)
		}
		if response.Summary.TotalChange != 100 {
			t.Errorf("Expected total change 100, got %v", response.Summary.TotalChange)
		}
	})

	t.Run("missing snapshot date returns 404", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/analytics/compare?start_date=2024-02-01&end_date=2024-02-20", nil)
		w := httptest.NewRecorder()

		handler.Compare(w, req)

		if w.Code != http.StatusNotFound {
			t.Errorf("Expected status 404, got %d", w.Code)
		}
	})

	t.Run("missing dates return 400", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/analytics/compare", nil)
		w := httptest.NewRecorder()

		handler.Compare(w, req)

		if w.Code != http.StatusBadRequest {
			t.Errorf("Expected status 400, got %d", w.Code)
		}
	})
}

// TestAnalyticsHandler_Attribution tests the attribution endpoint's success
// path and the 404 for an empty snapshot history.
//
// WHY: The handler maps ErrEmptyStore to 404 via errors.Is, which only works
// while every service wrap keeps the sentinel on the error chain. A severed
// chain would turn every fresh-install request into a 500.
func TestAnalyticsHandler_Attribution(t *testing.T) {
	t.Run("decomposes the period change", func(t *testing.T) {
		handler := seedAnalyticsHandler(t)
		req := httptest.NewRequest(http.MethodGet, "/api/analytics/attribution?start_date=2024-02-01&end_date=2024-02-02", nil)
		w := httptest.NewRecorder()

		handler.Attribution(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
		}
		var response model.AttributionResult
		if err := json.NewDecoder(w.Body).Decode(&response); err != nil {
			t.Fatalf("Failed to decode response: %v", err)
		}
		if response.Total.Change != 100 {
			t.Errorf("Expected total change 100, got %v", response.Total.Change)
		}
	})

	t.Run("empty history returns 404", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		handler := handlers.NewAnalyticsHandler(testutil.NewTestAnalyticsService(t, db, &testutil.StaticQuoteClient{}))

		req := httptest.NewRequest(http.MethodGet, "/api/analytics/attribution", nil)
		w := httptest.NewRecorder()

		handler.Attribution(w, req)

		if w.Code != http.StatusNotFound {
			t.Errorf("Expected status 404, got %d: %s", w.Code, w.Body.String())
		}
	})
}

// TestAnalyticsHandler_ExportAggregate tests the CSV download headers and
// body shape.
func TestAnalyticsHandler_ExportAggregate(t *testing.T) {
	handler := seedAnalyticsHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/api/analytics/aggregate/export?start_date=2024-02-01&end_date=2024-02-02", nil)
	w := httptest.NewRecorder()

	handler.ExportAggregate(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	if got := w.Header().Get("Content-Type"); got != "text/csv" {
		t.Errorf("Expected text/csv content type, got %q", got)
	}
	if got := w.Header().Get("Content-Disposition"); !strings.Contains(got, "attachment") {
		t.Errorf("Expected attachment disposition, got %q", got)
	}

	lines := strings.Split(strings.TrimSpace(w.Body.String()), "\n")
	// Header + AAPL row + totals footer
	if len(lines) != 3 {
		t.Errorf("Expected 3 CSV lines, got %d: %v", len(lines), lines)
	}
	if !strings.HasPrefix(lines[0], "group,assetType") {
		t.Errorf("Unexpected CSV header: %s", lines[0])
	}
}
