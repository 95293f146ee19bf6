// Package engine implements the analytics core of the portfolio dashboard:
// time-series aggregation, two-point comparison, risk metrics, gain/loss
// attribution and live-vs-snapshot reconciliation.
//
// Every entry point is a pure function of its explicit arguments. The engine
// holds no state, performs no I/O, and never mutates the snapshot store or
// live position set passed in; repeated invocation with identical inputs
// yields identical output, including row order. Callers that want caching
// key it on a hash of the inputs.
//
// Malformed individual records never abort a computation. Missing numeric
// fields contribute zero, and any division with a potentially zero
// denominator is special-cased to zero (or to the documented full-gain
// convention in comparisons) instead of producing NaN or Inf.
package engine

import (
	"sort"

	"github.com/pdekker/Portfolio-Dashboard-Analytics/internal/model"
)

// lessKey orders position keys by asset type, identifier, then account.
// All engine output ordering falls back to this ordering on ties so results
// are deterministic regardless of map iteration order.
func lessKey(a, b model.PositionKey) bool {
	if a.AssetType != b.AssetType {
		return a.AssetType < b.AssetType
	}
	if a.Identifier != b.Identifier {
		return a.Identifier < b.Identifier
	}
	return a.AccountID < b.AccountID
}

// sortedKeys returns a position map's keys in canonical order.
func sortedKeys(positions map[model.PositionKey]model.PositionRecord) []model.PositionKey {
	keys := make([]model.PositionKey, 0, len(positions))
	for key := range positions {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool { return lessKey(keys[i], keys[j]) })
	return keys
}

// filterPositions returns the subset of a position map passing the filter.
// The input map is never modified.
func filterPositions(positions map[model.PositionKey]model.PositionRecord, filter model.FilterSet) map[model.PositionKey]model.PositionRecord {
	filtered := make(map[model.PositionKey]model.PositionRecord, len(positions))
	for key, record := range positions {
		if filter.Matches(record) {
			filtered[key] = record
		}
	}
	return filtered
}

// unionKeys returns the canonical-ordered union of two position maps' keys.
func unionKeys(a, b map[model.PositionKey]model.PositionRecord) []model.PositionKey {
	seen := make(map[model.PositionKey]bool, len(a)+len(b))
	for key := range a {
		seen[key] = true
	}
	for key := range b {
		seen[key] = true
	}

	keys := make([]model.PositionKey, 0, len(seen))
	for key := range seen {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool { return lessKey(keys[i], keys[j]) })
	return keys
}
