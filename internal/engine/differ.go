package engine

import (
	"math"
	"sort"

	"github.com/pdekker/Portfolio-Dashboard-Analytics/internal/model"
)

// Compare computes a two-point comparison between position sets A and B:
// two snapshot dates, or the live set against a snapshot. Both maps are
// read-only inputs; the same filter predicates as aggregation apply to each
// side before matching.
//
// Every key in the filtered union gets exactly one row. A key absent from A
// is "new", absent from B is "closed", present on both sides "matched".
// Rows are ordered by absolute delta descending, the largest movers first
// regardless of sign, with the canonical key order breaking ties.
func Compare(a, b map[model.PositionKey]model.PositionRecord, filter model.FilterSet) model.ComparisonResult {
	filteredA := filterPositions(a, filter)
	filteredB := filterPositions(b, filter)

	keys := unionKeys(filteredA, filteredB)

	rows := make([]model.ComparisonRow, 0, len(keys))
	summary := model.ComparisonSummary{}

	for _, key := range keys {
		recordA, inA := filteredA[key]
		recordB, inB := filteredB[key]

		row := model.ComparisonRow{Key: key}
		switch {
		case !inA && inB:
			row.Status = model.StatusNew
			summary.NewCount++
		case inA && !inB:
			row.Status = model.StatusClosed
			summary.ClosedCount++
		default:
			row.Status = model.StatusMatched
			summary.MatchedCount++
		}

		if inA {
			row.ValueA = recordA.CurrentValue
			row.QuantityA = recordA.Quantity
			row.PriceA = recordA.CurrentPrice
			row.Name = recordA.Name
		}
		if inB {
			row.ValueB = recordB.CurrentValue
			row.QuantityB = recordB.Quantity
			row.PriceB = recordB.CurrentPrice
			row.Name = recordB.Name
		}

		row.Delta = row.ValueB - row.ValueA
		row.DeltaPercent = changePercent(row.Delta, row.ValueA, row.ValueB)

		summary.TotalA += row.ValueA
		summary.TotalB += row.ValueB
		if row.Delta > 0 {
			summary.WinnersCount++
		} else if row.Delta < 0 {
			summary.LosersCount++
		}

		rows = append(rows, row)
	}

	summary.TotalChange = summary.TotalB - summary.TotalA
	summary.TotalChangePercent = changePercent(summary.TotalChange, summary.TotalA, summary.TotalB)

	sort.SliceStable(rows, func(i, j int) bool {
		return math.Abs(rows[i].Delta) > math.Abs(rows[j].Delta)
	})

	return model.ComparisonResult{Rows: rows, Summary: summary}
}

// changePercent is the comparison percentage convention: delta relative to
// the A-side value when there is one; a position appearing from nothing is a
// full (100%) gain, and a zero-to-zero pair is 0. This avoids dividing by
// zero while still signaling new positions.
func changePercent(delta, valueA, valueB float64) float64 {
	if valueA > 0 {
		return delta / valueA * 100
	}
	if valueB > 0 {
		return 100
	}
	return 0
}
