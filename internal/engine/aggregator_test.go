package engine_test

import (
	"math"
	"reflect"
	"testing"

	"github.com/pdekker/Portfolio-Dashboard-Analytics/internal/engine"
	"github.com/pdekker/Portfolio-Dashboard-Analytics/internal/model"
	"github.com/pdekker/Portfolio-Dashboard-Analytics/internal/testutil"
)

const tolerance = 1e-9

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < tolerance
}

func threeDateStore() model.SnapshotStore {
	aapl1 := testutil.Record(model.AssetTypeSecurity, "AAPL", 1, 1000)
	aapl1.Sector = "Technology"
	aapl2 := testutil.Record(model.AssetTypeSecurity, "AAPL", 1, 1100)
	aapl2.Sector = "Technology"
	aapl3 := testutil.Record(model.AssetTypeSecurity, "AAPL", 1, 1050)
	aapl3.Sector = "Technology"

	btc2 := testutil.Record(model.AssetTypeCrypto, "BTC", 2, 500)
	btc3 := testutil.Record(model.AssetTypeCrypto, "BTC", 2, 600)

	cash := testutil.Record(model.AssetTypeCash, "USD", 1, 200)

	return testutil.StoreOf(
		testutil.SnapshotOf("2024-01-01", aapl1, cash),
		testutil.SnapshotOf("2024-01-02", aapl2, btc2, cash),
		testutil.SnapshotOf("2024-01-03", aapl3, btc3, cash),
	)
}

// TestAggregate_Totals tests per-date grand totals and day changes.
//
// WHY: The totals row drives the dashboard's headline numbers. Day change
// must compare consecutive visible dates only and the first date must report
// zero rather than failing or inventing a baseline.
func TestAggregate_Totals(t *testing.T) {
	store := threeDateStore()

	result := engine.Aggregate(store, engine.AggregateInput{})

	if len(result.Dates) != 3 {
		t.Fatalf("Expected 3 visible dates, got %d", len(result.Dates))
	}

	day1 := result.TotalsByDate["2024-01-01"]
	if !almostEqual(day1.Value, 1200) {
		t.Errorf("Expected day 1 value 1200, got %f", day1.Value)
	}
	if day1.DayChange != 0 || day1.DayChangePercent != 0 {
		t.Errorf("First visible date must have zero day change, got %f / %f", day1.DayChange, day1.DayChangePercent)
	}
	if day1.PositionCount != 2 {
		t.Errorf("Expected 2 positions on day 1, got %d", day1.PositionCount)
	}

	day2 := result.TotalsByDate["2024-01-02"]
	if !almostEqual(day2.Value, 1800) {
		t.Errorf("Expected day 2 value 1800, got %f", day2.Value)
	}
	if !almostEqual(day2.DayChange, 600) {
		t.Errorf("Expected day 2 change 600, got %f", day2.DayChange)
	}
	if !almostEqual(day2.DayChangePercent, 50) {
		t.Errorf("Expected day 2 change percent 50, got %f", day2.DayChangePercent)
	}

	day3 := result.TotalsByDate["2024-01-03"]
	if !almostEqual(day3.Value, 1850) {
		t.Errorf("Expected day 3 value 1850, got %f", day3.Value)
	}
	if !almostEqual(day3.DayChange, 50) {
		t.Errorf("Expected day 3 change 50, got %f", day3.DayChange)
	}
}

// TestAggregate_Idempotence tests that repeated aggregation with identical
// inputs is deeply equal, including row order.
//
// WHY: Callers memoize aggregation results keyed by input; any
// nondeterminism (for example from map iteration order) would break cache
// comparisons and cause visible row reshuffling on refresh.
func TestAggregate_Idempotence(t *testing.T) {
	store := threeDateStore()
	in := engine.AggregateInput{
		GroupBy: model.GroupByAssetType,
		Sort:    &model.SortDirective{Date: "2024-01-03"},
	}

	first := engine.Aggregate(store, in)
	second := engine.Aggregate(store, in)

	if !reflect.DeepEqual(first, second) {
		t.Error("Aggregate is not deterministic for identical inputs")
	}
}

// TestAggregate_AbsenceIsNotZero tests the per-row value series for
// positions that open mid-range.
//
// WHY: Renderers must distinguish "no snapshot entry" from "worth zero"; a
// fabricated zero would draw a misleading cliff in the chart and poison
// day-change calculations.
func TestAggregate_AbsenceIsNotZero(t *testing.T) {
	store := threeDateStore()

	result := engine.Aggregate(store, engine.AggregateInput{})

	var btc model.AggregateRow
	found := false
	for _, row := range result.Rows {
		if row.Key.Identifier == "BTC" {
			btc = row
			found = true
		}
	}
	if !found {
		t.Fatal("BTC row missing from aggregation")
	}

	if _, ok := btc.ValuesByDate["2024-01-01"]; ok {
		t.Error("BTC must have no entry for a date before it was opened")
	}
	if value := btc.ValuesByDate["2024-01-02"]; !almostEqual(value, 500) {
		t.Errorf("Expected BTC value 500 on open date, got %f", value)
	}

	// Day change exists only where both the date and its predecessor were
	// observed.
	if _, ok := btc.DayChangeByDate["2024-01-02"]; ok {
		t.Error("BTC must have no day change for its first observed date")
	}
	if change := btc.DayChangeByDate["2024-01-03"]; !almostEqual(change, 100) {
		t.Errorf("Expected BTC day change 100, got %f", change)
	}
}

// TestAggregate_Filters tests asset-type, account and search filtering.
//
// WHY: Filters feed every engine entry point; a predicate that leaks
// non-matching records would corrupt totals everywhere at once.
func TestAggregate_Filters(t *testing.T) {
	store := threeDateStore()

	t.Run("asset type allow-set", func(t *testing.T) {
		result := engine.Aggregate(store, engine.AggregateInput{
			Filter: model.FilterSet{AssetTypes: []model.AssetType{model.AssetTypeCrypto}},
		})

		if len(result.Rows) != 1 || result.Rows[0].Key.Identifier != "BTC" {
			t.Fatalf("Expected only the BTC row, got %d rows", len(result.Rows))
		}
		if !almostEqual(result.TotalsByDate["2024-01-03"].Value, 600) {
			t.Errorf("Filtered totals must cover matching positions only, got %f",
				result.TotalsByDate["2024-01-03"].Value)
		}
	})

	t.Run("account allow-set", func(t *testing.T) {
		result := engine.Aggregate(store, engine.AggregateInput{
			Filter: model.FilterSet{AccountIDs: []int{1}},
		})

		for _, row := range result.Rows {
			if row.Key.AccountID != 1 {
				t.Errorf("Row %s leaked through account filter", row.Key)
			}
		}
		if len(result.Rows) != 2 {
			t.Errorf("Expected 2 rows for account 1, got %d", len(result.Rows))
		}
	})

	t.Run("case-insensitive search", func(t *testing.T) {
		result := engine.Aggregate(store, engine.AggregateInput{
			Filter: model.FilterSet{Search: "aapl"},
		})

		if len(result.Rows) != 1 || result.Rows[0].Key.Identifier != "AAPL" {
			t.Fatalf("Expected only the AAPL row, got %d rows", len(result.Rows))
		}
	})
}

// TestAggregate_Grouping tests grouped output and the conservation property.
//
// WHY: Users pivot between groupings constantly; the sum of group totals
// must equal the grand totals on every date or the view silently loses
// money.
func TestAggregate_Grouping(t *testing.T) {
	store := threeDateStore()

	result := engine.Aggregate(store, engine.AggregateInput{GroupBy: model.GroupByAssetType})

	if result.Rows != nil {
		t.Error("Grouped output must not also carry flat rows")
	}
	if len(result.Groups) != 3 {
		t.Fatalf("Expected 3 asset-type groups, got %d", len(result.Groups))
	}

	for _, date := range result.Dates {
		var groupSum float64
		for _, group := range result.Groups {
			groupSum += group.TotalsByDate[date].Value
		}
		if !almostEqual(groupSum, result.TotalsByDate[date].Value) {
			t.Errorf("Group totals on %s sum to %f, grand total is %f",
				date, groupSum, result.TotalsByDate[date].Value)
		}
	}
}

// TestAggregate_SectorGroupingUnknownBucket tests the fallback bucket for
// records without a sector.
//
// WHY: Upstream data frequently omits sector for cash and crypto; dropping
// those records would break conservation between groupings.
func TestAggregate_SectorGroupingUnknownBucket(t *testing.T) {
	store := threeDateStore()

	result := engine.Aggregate(store, engine.AggregateInput{GroupBy: model.GroupBySector})

	found := false
	for _, group := range result.Groups {
		if group.GroupKey == "Unknown" {
			found = true
			if len(group.Rows) != 2 {
				t.Errorf("Expected 2 sector-less rows in Unknown bucket, got %d", len(group.Rows))
			}
		}
	}
	if !found {
		t.Error("Records without a sector must land in the Unknown bucket")
	}
}

// TestAggregate_GroupingFieldChangeKeepsConservation tests conservation when
// a position's grouping field changes within the visible range.
//
// WHY: Sector reclassifications happen between captures. The position's
// whole history must follow it into its latest bucket; recomputing buckets
// per date would drop the earlier observations from every group total.
func TestAggregate_GroupingFieldChangeKeepsConservation(t *testing.T) {
	before := testutil.Record(model.AssetTypeSecurity, "XOM", 1, 1000)
	before.Sector = "Tech"
	after := testutil.Record(model.AssetTypeSecurity, "XOM", 1, 1200)
	after.Sector = "Energy"

	store := testutil.StoreOf(
		testutil.SnapshotOf("2024-01-01", before),
		testutil.SnapshotOf("2024-01-02", after),
	)

	result := engine.Aggregate(store, engine.AggregateInput{GroupBy: model.GroupBySector})

	if len(result.Groups) != 1 {
		t.Fatalf("Expected 1 group for the reclassified position, got %d", len(result.Groups))
	}
	group := result.Groups[0]
	if group.GroupKey != "Energy" {
		t.Errorf("Expected latest sector Energy to own the row, got %q", group.GroupKey)
	}

	for _, date := range result.Dates {
		var groupSum float64
		for _, g := range result.Groups {
			groupSum += g.TotalsByDate[date].Value
		}
		if !almostEqual(groupSum, result.TotalsByDate[date].Value) {
			t.Errorf("Group totals on %s sum to %f, grand total is %f",
				date, groupSum, result.TotalsByDate[date].Value)
		}
	}

	if got := group.TotalsByDate["2024-01-01"].Value; !almostEqual(got, 1000) {
		t.Errorf("Expected the pre-change observation in the Energy bucket, got %f", got)
	}
	if got := group.TotalsByDate["2024-01-02"].DayChange; !almostEqual(got, 200) {
		t.Errorf("Expected day change 200 within the bucket, got %f", got)
	}
}

// TestAggregate_Sort tests value sorting on a date column.
//
// WHY: The original dashboard sorts holdings by a clicked date column;
// direction defaults to descending and ties must not reshuffle.
func TestAggregate_Sort(t *testing.T) {
	store := threeDateStore()

	t.Run("descending by default", func(t *testing.T) {
		result := engine.Aggregate(store, engine.AggregateInput{
			Sort: &model.SortDirective{Date: "2024-01-03"},
		})

		values := make([]float64, len(result.Rows))
		for i, row := range result.Rows {
			values[i] = row.ValuesByDate["2024-01-03"]
		}
		for i := 1; i < len(values); i++ {
			if values[i] > values[i-1] {
				t.Fatalf("Rows not in descending value order: %v", values)
			}
		}
	})

	t.Run("ascending when reversed", func(t *testing.T) {
		result := engine.Aggregate(store, engine.AggregateInput{
			Sort: &model.SortDirective{Date: "2024-01-03", Ascending: true},
		})

		if result.Rows[0].Key.Identifier != "USD" {
			t.Errorf("Expected smallest position first, got %s", result.Rows[0].Key.Identifier)
		}
	})
}

// TestAggregate_EmptyStore tests aggregation over a store with no dates.
//
// WHY: A fresh install has no snapshots yet; the engine must return an
// empty result, not panic or error.
func TestAggregate_EmptyStore(t *testing.T) {
	result := engine.Aggregate(testutil.StoreOf(), engine.AggregateInput{})

	if len(result.Dates) != 0 || len(result.Rows) != 0 {
		t.Errorf("Expected empty result for empty store, got %d dates / %d rows",
			len(result.Dates), len(result.Rows))
	}
}
