package model

import (
	"sort"
	"time"
)

// DateFormat is the canonical YYYY-MM-DD layout used for snapshot dates.
// Snapshots are keyed by formatted date strings so that map lookups and JSON
// payloads share one representation.
const DateFormat = "2006-01-02"

// SnapshotTotals holds the aggregate sums over a snapshot's positions.
// Totals are computed once at construction and never drift from the position
// map because snapshots are immutable after construction.
type SnapshotTotals struct {
	Value         float64 `json:"value"`
	CostBasis     float64 `json:"costBasis"`
	GainLoss      float64 `json:"gainLoss"`
	Income        float64 `json:"income"`
	PositionCount int     `json:"positionCount"`
}

// Snapshot is a dated, point-in-time capture of all positions, keyed by
// PositionKey. The engine treats snapshots as read-only input.
type Snapshot struct {
	Date      string                         `json:"date"` // YYYY-MM-DD
	Positions map[PositionKey]PositionRecord `json:"positions"`
	Totals    SnapshotTotals                 `json:"totals"`
}

// NewSnapshot builds a snapshot for the given date and computes its totals
// from the position records.
func NewSnapshot(date string, positions map[PositionKey]PositionRecord) Snapshot {
	return Snapshot{
		Date:      date,
		Positions: positions,
		Totals:    computeTotals(positions),
	}
}

// computeTotals sums value, cost basis, gain/loss and income over a position
// map. Missing fields contribute zero.
func computeTotals(positions map[PositionKey]PositionRecord) SnapshotTotals {
	totals := SnapshotTotals{PositionCount: len(positions)}
	for _, p := range positions {
		totals.Value += p.CurrentValue
		totals.CostBasis += p.TotalCostBasis
		totals.GainLoss += p.GainLossAmount
		totals.Income += p.IncomeAnnual
	}
	return totals
}

// SnapshotStore is an immutable, date-indexed collection of snapshots.
// Dates are kept sorted ascending. The store is constructed wholesale by the
// data-loading layer and never mutated afterwards; analytics components only
// read from it.
type SnapshotStore struct {
	Dates     []string            `json:"dates"` // Ascending YYYY-MM-DD
	Snapshots map[string]Snapshot `json:"snapshots"`
}

// NewSnapshotStore builds a store from a set of snapshots, ordering the date
// index ascending. Duplicate dates keep the last snapshot supplied.
func NewSnapshotStore(snapshots []Snapshot) SnapshotStore {
	byDate := make(map[string]Snapshot, len(snapshots))
	for _, snap := range snapshots {
		byDate[snap.Date] = snap
	}

	dates := make([]string, 0, len(byDate))
	for date := range byDate {
		dates = append(dates, date)
	}
	sort.Strings(dates)

	return SnapshotStore{Dates: dates, Snapshots: byDate}
}

// Latest returns the most recent snapshot in the store. The boolean is false
// when the store is empty.
func (s SnapshotStore) Latest() (Snapshot, bool) {
	if len(s.Dates) == 0 {
		return Snapshot{}, false
	}
	return s.Snapshots[s.Dates[len(s.Dates)-1]], true
}

// DatesBetween returns the store's dates that fall inside [start, end],
// preserving ascending order. Empty bounds are treated as open.
func (s SnapshotStore) DatesBetween(start, end string) []string {
	dates := []string{}
	for _, date := range s.Dates {
		if start != "" && date < start {
			continue
		}
		if end != "" && date > end {
			continue
		}
		dates = append(dates, date)
	}
	return dates
}

// LivePositionSet is the current position set computed from live market data.
// It is the source of truth independent of persisted snapshots and carries
// the evaluation time so staleness checks are reproducible.
type LivePositionSet struct {
	Positions map[PositionKey]PositionRecord `json:"positions"`
	AsOf      time.Time                      `json:"asOf"`
}
