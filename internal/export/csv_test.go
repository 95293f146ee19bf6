package export_test

import (
	"bytes"
	"encoding/csv"
	"testing"

	"github.com/pdekker/Portfolio-Dashboard-Analytics/internal/engine"
	"github.com/pdekker/Portfolio-Dashboard-Analytics/internal/export"
	"github.com/pdekker/Portfolio-Dashboard-Analytics/internal/model"
	"github.com/pdekker/Portfolio-Dashboard-Analytics/internal/testutil"
)

// TestWriteAggregationCSV tests the flat export layout: header, one row per
// position, empty cells for unobserved dates, and a totals footer.
//
// WHY: The CSV is consumed by spreadsheets; a shifted column or a zero
// where a position simply was not held yet would corrupt downstream
// analysis invisibly.
func TestWriteAggregationCSV(t *testing.T) {
	aapl := testutil.Record(model.AssetTypeSecurity, "AAPL", 1, 1000)
	btc := testutil.Record(model.AssetTypeCrypto, "BTC", 1, 500)
	store := testutil.StoreOf(
		testutil.SnapshotOf("2024-02-01", aapl),
		testutil.SnapshotOf("2024-02-02", aapl, btc),
	)
	result := engine.Aggregate(store, engine.AggregateInput{})

	var buf bytes.Buffer
	if err := export.WriteAggregationCSV(&buf, result); err != nil {
		t.Fatalf("WriteAggregationCSV() returned unexpected error: %v", err)
	}

	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("Exported CSV failed to parse: %v", err)
	}

	// Header + 2 position rows + totals footer
	if len(records) != 4 {
		t.Fatalf("Expected 4 CSV records, got %d", len(records))
	}

	header := records[0]
	if header[0] != "group" || header[1] != "assetType" {
		t.Errorf("Unexpected header start: %v", header[:2])
	}
	if header[len(header)-2] != "2024-02-01" || header[len(header)-1] != "2024-02-02" {
		t.Errorf("Expected trailing date columns, got %v", header)
	}

	// Canonical key order puts BTC (crypto) before AAPL (security)
	btcRow := records[1]
	if btcRow[1] != "crypto" || btcRow[2] != "BTC" {
		t.Fatalf("Expected BTC row first, got %v", btcRow)
	}
	// BTC was not held on the first date: empty cell, not zero
	if btcRow[len(btcRow)-2] != "" {
		t.Errorf("Expected empty cell for unobserved date, got %q", btcRow[len(btcRow)-2])
	}
	if btcRow[len(btcRow)-1] != "500" {
		t.Errorf("Expected BTC value 500 on second date, got %q", btcRow[len(btcRow)-1])
	}

	totals := records[3]
	if totals[4] != "Total" {
		t.Errorf("Expected totals footer, got %v", totals)
	}
	if totals[len(totals)-1] != "1500" {
		t.Errorf("Expected grand total 1500, got %q", totals[len(totals)-1])
	}
}

// TestWriteAggregationCSV_Grouped tests that grouped exports carry the
// group label on every member row.
func TestWriteAggregationCSV_Grouped(t *testing.T) {
	store := testutil.StoreOf(testutil.SnapshotOf("2024-02-01",
		testutil.Record(model.AssetTypeSecurity, "AAPL", 1, 1000),
		testutil.Record(model.AssetTypeCash, "USD", 1, 200),
	))
	result := engine.Aggregate(store, engine.AggregateInput{GroupBy: model.GroupByAssetType})

	var buf bytes.Buffer
	if err := export.WriteAggregationCSV(&buf, result); err != nil {
		t.Fatalf("WriteAggregationCSV() returned unexpected error: %v", err)
	}

	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("Exported CSV failed to parse: %v", err)
	}

	// Header + cash row + security row + totals footer
	if len(records) != 4 {
		t.Fatalf("Expected 4 CSV records, got %d", len(records))
	}
	if records[1][0] != "cash" || records[1][2] != "USD" {
		t.Errorf("Expected cash group row first, got %v", records[1])
	}
	if records[2][0] != "security" || records[2][2] != "AAPL" {
		t.Errorf("Expected security group row second, got %v", records[2])
	}
}
