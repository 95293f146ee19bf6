package testutil

import (
	"time"

	"github.com/pdekker/Portfolio-Dashboard-Analytics/internal/model"
)

// FixedNow is the reference evaluation time used by tests that exercise
// staleness logic, so results never depend on the wall clock.
var FixedNow = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

// Record builds a position record with internally consistent derived fields:
// price 100, quantity value/100, cost basis 80% of value. Tests adjust
// individual fields afterwards when exercising inconsistent upstream data.
func Record(assetType model.AssetType, identifier string, accountID int, value float64) model.PositionRecord {
	const price = 100.0
	cost := value * 0.8
	record := model.PositionRecord{
		Key: model.PositionKey{
			AssetType:  assetType,
			Identifier: identifier,
			AccountID:  accountID,
		},
		Name:           identifier,
		AccountName:    "Brokerage",
		Quantity:       value / price,
		CurrentPrice:   price,
		CurrentValue:   value,
		TotalCostBasis: cost,
		CostPerUnit:    price * 0.8,
		GainLossAmount: value - cost,
		PriceUpdatedAt: FixedNow.Add(-1 * time.Hour),
	}
	if cost > 0 {
		record.GainLossPercent = (value - cost) / cost * 100
	}
	return record
}

// SnapshotOf builds a snapshot for a date from the given records, computing
// totals the same way production snapshot construction does.
func SnapshotOf(date string, records ...model.PositionRecord) model.Snapshot {
	positions := make(map[model.PositionKey]model.PositionRecord, len(records))
	for _, record := range records {
		positions[record.Key] = record
	}
	return model.NewSnapshot(date, positions)
}

// StoreOf builds a snapshot store from snapshots in any order.
func StoreOf(snapshots ...model.Snapshot) model.SnapshotStore {
	return model.NewSnapshotStore(snapshots)
}

// LiveSetOf builds a live position set evaluated at FixedNow.
func LiveSetOf(records ...model.PositionRecord) model.LivePositionSet {
	positions := make(map[model.PositionKey]model.PositionRecord, len(records))
	for _, record := range records {
		positions[record.Key] = record
	}
	return model.LivePositionSet{Positions: positions, AsOf: FixedNow}
}
