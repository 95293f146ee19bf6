package engine

import (
	"math"
	"sort"

	"github.com/pdekker/Portfolio-Dashboard-Analytics/internal/model"
)

// Attribute decomposes the portfolio's value change between two dates into
// per-asset-type, per-sector and per-position contributions. The dates need
// not be the range endpoints; any two visible dates work.
//
// A position absent at a date contributes zero there, which correctly folds
// newly opened positions (zero start) and fully closed positions (zero end)
// into the decomposition as full contributors. Positions observed at neither
// date are left out entirely. Records without a sector accumulate into the
// literal "Unknown" bucket rather than being dropped.
//
// Contribution percentages are relative to the total start value. When that
// total is zero the decomposition is degenerate and every contribution,
// including the total's own change percent, is reported as zero.
func Attribute(rows []model.AggregateRow, start, end string) model.AttributionResult {
	result := model.AttributionResult{
		ByAssetType: map[model.AssetType]model.AttributionEntry{},
		BySector:    map[string]model.AttributionEntry{},
		ByPosition:  []model.AttributionEntry{},
	}

	for _, row := range rows {
		startValue, atStart := row.ValuesByDate[start]
		endValue, atEnd := row.ValuesByDate[end]
		if !atStart && !atEnd {
			continue
		}

		change := endValue - startValue
		result.Total.StartValue += startValue
		result.Total.EndValue += endValue
		result.Total.Change += change

		result.ByPosition = append(result.ByPosition, model.AttributionEntry{
			DimensionValue: row.Key.String(),
			StartValue:     startValue,
			EndValue:       endValue,
			Change:         change,
		})

		assetEntry := result.ByAssetType[row.Key.AssetType]
		assetEntry.DimensionValue = string(row.Key.AssetType)
		assetEntry.StartValue += startValue
		assetEntry.EndValue += endValue
		assetEntry.Change += change
		result.ByAssetType[row.Key.AssetType] = assetEntry

		sector := row.Record.Sector
		if sector == "" {
			sector = "Unknown"
		}
		sectorEntry := result.BySector[sector]
		sectorEntry.DimensionValue = sector
		sectorEntry.StartValue += startValue
		sectorEntry.EndValue += endValue
		sectorEntry.Change += change
		result.BySector[sector] = sectorEntry
	}

	if result.Total.StartValue != 0 {
		result.Total.ChangePercent = result.Total.Change / result.Total.StartValue * 100

		for assetType, entry := range result.ByAssetType {
			entry.ContributionPercent = entry.Change / result.Total.StartValue * 100
			result.ByAssetType[assetType] = entry
		}
		for sector, entry := range result.BySector {
			entry.ContributionPercent = entry.Change / result.Total.StartValue * 100
			result.BySector[sector] = entry
		}
		for i := range result.ByPosition {
			result.ByPosition[i].ContributionPercent = result.ByPosition[i].Change / result.Total.StartValue * 100
		}
	}

	sort.SliceStable(result.ByPosition, func(i, j int) bool {
		pi, pj := result.ByPosition[i], result.ByPosition[j]
		if math.Abs(pi.ContributionPercent) != math.Abs(pj.ContributionPercent) {
			return math.Abs(pi.ContributionPercent) > math.Abs(pj.ContributionPercent)
		}
		if math.Abs(pi.Change) != math.Abs(pj.Change) {
			return math.Abs(pi.Change) > math.Abs(pj.Change)
		}
		return pi.DimensionValue < pj.DimensionValue
	})

	return result
}
