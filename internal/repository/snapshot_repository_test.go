package repository_test

import (
	"testing"
	"time"

	"github.com/pdekker/Portfolio-Dashboard-Analytics/internal/model"
	"github.com/pdekker/Portfolio-Dashboard-Analytics/internal/repository"
	"github.com/pdekker/Portfolio-Dashboard-Analytics/internal/testutil"
)

// TestSnapshotRepository_RoundTrip tests that a persisted snapshot reads
// back with the same positions and totals.
//
// WHY: The repository flattens struct-keyed position maps into rows and
// reassembles them on read. Any column mismatch or key reconstruction bug
// would silently corrupt every analytics result downstream.
func TestSnapshotRepository_RoundTrip(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewSnapshotRepository(db)

	purchase := time.Date(2023, 6, 15, 0, 0, 0, 0, time.UTC)
	aapl := testutil.Record(model.AssetTypeSecurity, "AAPL", 1, 1000)
	aapl.Sector = "Technology"
	aapl.PurchaseDate = &purchase
	aapl.HoldingTerm = model.HoldingTermLong
	cash := testutil.Record(model.AssetTypeCash, "USD", 2, 250)

	stored := testutil.SnapshotOf("2024-02-01", aapl, cash)
	if err := repo.ReplaceSnapshot(stored); err != nil {
		t.Fatalf("ReplaceSnapshot() returned unexpected error: %v", err)
	}

	snapshots, err := repo.GetSnapshots("2024-02-01", "2024-02-01")
	if err != nil {
		t.Fatalf("GetSnapshots() returned unexpected error: %v", err)
	}
	if len(snapshots) != 1 {
		t.Fatalf("Expected 1 snapshot, got %d", len(snapshots))
	}

	loaded := snapshots[0]
	if loaded.Date != "2024-02-01" {
		t.Errorf("Expected date 2024-02-01, got %s", loaded.Date)
	}
	if len(loaded.Positions) != 2 {
		t.Fatalf("Expected 2 positions, got %d", len(loaded.Positions))
	}

	got, ok := loaded.Positions[aapl.Key]
	if !ok {
		t.Fatalf("AAPL position missing after round trip")
	}
	if got.CurrentValue != 1000 {
		t.Errorf("Expected current value 1000, got %v", got.CurrentValue)
	}
	if got.Sector != "Technology" {
		t.Errorf("Expected sector Technology, got %q", got.Sector)
	}
	if got.HoldingTerm != model.HoldingTermLong {
		t.Errorf("Expected long holding term, got %q", got.HoldingTerm)
	}
	if got.PurchaseDate == nil || !got.PurchaseDate.Equal(purchase) {
		t.Errorf("Expected purchase date %v, got %v", purchase, got.PurchaseDate)
	}
	if !got.PriceUpdatedAt.Equal(aapl.PriceUpdatedAt) {
		t.Errorf("Expected price updated at %v, got %v", aapl.PriceUpdatedAt, got.PriceUpdatedAt)
	}

	if loaded.Totals.Value != stored.Totals.Value {
		t.Errorf("Expected totals value %v, got %v", stored.Totals.Value, loaded.Totals.Value)
	}
}

// TestSnapshotRepository_ReplaceIsIdempotent tests that re-capturing a date
// replaces rather than accumulates rows.
//
// WHY: Scheduled and manual captures can both run on the same day. The
// unique constraint would reject duplicates, so replacement must delete the
// old rows in the same transaction.
func TestSnapshotRepository_ReplaceIsIdempotent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewSnapshotRepository(db)

	first := testutil.SnapshotOf("2024-02-01",
		testutil.Record(model.AssetTypeSecurity, "AAPL", 1, 1000),
		testutil.Record(model.AssetTypeSecurity, "MSFT", 1, 500),
	)
	if err := repo.ReplaceSnapshot(first); err != nil {
		t.Fatalf("ReplaceSnapshot() returned unexpected error: %v", err)
	}

	// Second capture for the same date drops MSFT and reprices AAPL
	second := testutil.SnapshotOf("2024-02-01",
		testutil.Record(model.AssetTypeSecurity, "AAPL", 1, 1100),
	)
	if err := repo.ReplaceSnapshot(second); err != nil {
		t.Fatalf("ReplaceSnapshot() retry returned unexpected error: %v", err)
	}

	snapshots, err := repo.GetSnapshots("2024-02-01", "2024-02-01")
	if err != nil {
		t.Fatalf("GetSnapshots() returned unexpected error: %v", err)
	}
	if len(snapshots) != 1 {
		t.Fatalf("Expected 1 snapshot, got %d", len(snapshots))
	}
	if len(snapshots[0].Positions) != 1 {
		t.Errorf("Expected 1 position after replacement, got %d", len(snapshots[0].Positions))
	}
	key := model.PositionKey{AssetType: model.AssetTypeSecurity, Identifier: "AAPL", AccountID: 1}
	if got := snapshots[0].Positions[key].CurrentValue; got != 1100 {
		t.Errorf("Expected replaced value 1100, got %v", got)
	}
}

// TestSnapshotRepository_GetSnapshotsRange tests date-range filtering and
// ordering.
//
// WHY: The engine's day-change math depends on snapshots arriving in
// ascending date order, and range endpoints must be inclusive so a
// single-day query works.
func TestSnapshotRepository_GetSnapshotsRange(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewSnapshotRepository(db)

	for _, date := range []string{"2024-02-03", "2024-02-01", "2024-02-02"} {
		snapshot := testutil.SnapshotOf(date, testutil.Record(model.AssetTypeSecurity, "AAPL", 1, 1000))
		if err := repo.ReplaceSnapshot(snapshot); err != nil {
			t.Fatalf("ReplaceSnapshot(%s) returned unexpected error: %v", date, err)
		}
	}

	snapshots, err := repo.GetSnapshots("2024-02-01", "2024-02-02")
	if err != nil {
		t.Fatalf("GetSnapshots() returned unexpected error: %v", err)
	}
	if len(snapshots) != 2 {
		t.Fatalf("Expected 2 snapshots in range, got %d", len(snapshots))
	}
	if snapshots[0].Date != "2024-02-01" || snapshots[1].Date != "2024-02-02" {
		t.Errorf("Expected ascending dates, got %s then %s", snapshots[0].Date, snapshots[1].Date)
	}

	dates, err := repo.GetDates()
	if err != nil {
		t.Fatalf("GetDates() returned unexpected error: %v", err)
	}
	want := []string{"2024-02-01", "2024-02-02", "2024-02-03"}
	if len(dates) != len(want) {
		t.Fatalf("Expected %d dates, got %d", len(want), len(dates))
	}
	for i, date := range want {
		if dates[i] != date {
			t.Errorf("Expected date %s at index %d, got %s", date, i, dates[i])
		}
	}
}

// TestSnapshotRepository_DateFormatSurvivesStorage tests that stored dates
// read back as the exact YYYY-MM-DD strings they were written as, and that a
// returned date can be used directly to re-query its snapshot.
//
// WHY: Snapshot dates are the keys of the store and of every totals map; the
// latest-snapshot lookup feeds GetDates output straight back into a range
// query. The driver rewrites DATE-typed columns into RFC3339 timestamps on
// read, which breaks that cycle, so the schema must keep dates as TEXT.
func TestSnapshotRepository_DateFormatSurvivesStorage(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewSnapshotRepository(db)

	snapshot := testutil.SnapshotOf("2024-03-01", testutil.Record(model.AssetTypeSecurity, "AAPL", 1, 1000))
	if err := repo.ReplaceSnapshot(snapshot); err != nil {
		t.Fatalf("ReplaceSnapshot() returned unexpected error: %v", err)
	}

	dates, err := repo.GetDates()
	if err != nil {
		t.Fatalf("GetDates() returned unexpected error: %v", err)
	}
	if len(dates) != 1 || dates[0] != "2024-03-01" {
		t.Fatalf("Expected dates [2024-03-01], got %v", dates)
	}

	// The returned date must work verbatim as a query bound.
	snapshots, err := repo.GetSnapshots(dates[0], dates[0])
	if err != nil {
		t.Fatalf("GetSnapshots() returned unexpected error: %v", err)
	}
	if len(snapshots) != 1 {
		t.Fatalf("Expected 1 snapshot when re-querying with returned date, got %d", len(snapshots))
	}
	if snapshots[0].Date != "2024-03-01" {
		t.Errorf("Expected snapshot date 2024-03-01, got %s", snapshots[0].Date)
	}
}
