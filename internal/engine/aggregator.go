package engine

import (
	"fmt"
	"sort"

	"github.com/pdekker/Portfolio-Dashboard-Analytics/internal/model"
)

// AggregateInput bundles the Aggregator's parameters. Every setting the
// dashboard keeps in UI state (visible range, filters, grouping, sort) is an
// explicit argument here so each aggregation is reproducible in isolation.
type AggregateInput struct {
	// VisibleDates restricts the aggregation to a sub-range of the store's
	// dates. Nil means all dates. Dates without a snapshot are skipped.
	VisibleDates []string

	Filter  model.FilterSet
	GroupBy model.GroupBy

	// Sort orders rows by their value on a specific date. Nil keeps the
	// canonical key order.
	Sort *model.SortDirective

	// Lots optionally decomposes each position into tax lots. Nil disables
	// lot expansion.
	Lots model.LotAllocator
}

// Aggregate builds filtered, optionally grouped, time-series rollups from a
// snapshot store.
//
// For each visible date the snapshot's positions are filtered, accumulated
// into that date's grand totals, and folded into the position's per-date
// value series keyed by PositionKey, so one holding's row is assembled
// incrementally across dates. A position absent on some dates simply has no
// entry for those dates; absence is distinct from a zero value.
//
// Day-over-day change for both the grand totals and individual rows is the
// difference against the previous visible date. The first visible date has
// no previous date and reports zero.
//
// With grouping active, rows are additionally bucketed by the grouping
// dimension and each bucket carries its own per-date totals. The sum of
// group totals on any date equals the grand totals for that date.
func Aggregate(store model.SnapshotStore, in AggregateInput) model.AggregationResult {
	dates := visibleDates(store, in.VisibleDates)

	rowIndex := make(map[model.PositionKey]*model.AggregateRow)
	rowOrder := []model.PositionKey{}
	totalsByDate := make(map[string]model.DateTotals, len(dates))

	prevDate := ""
	for _, date := range dates {
		snapshot := store.Snapshots[date]

		totals := model.DateTotals{}
		for _, key := range sortedKeys(snapshot.Positions) {
			record := snapshot.Positions[key]
			if !in.Filter.Matches(record) {
				continue
			}

			totals.Value += record.CurrentValue
			totals.CostBasis += record.TotalCostBasis
			totals.GainLoss += record.GainLossAmount
			totals.Income += record.IncomeAnnual
			totals.PositionCount++

			row, exists := rowIndex[key]
			if !exists {
				row = &model.AggregateRow{
					Key:          key,
					ValuesByDate: make(map[string]float64, len(dates)),
				}
				rowIndex[key] = row
				rowOrder = append(rowOrder, key)
			}
			// Later dates overwrite so the row carries the most recent
			// observation within the visible range.
			row.Record = record
			row.ValuesByDate[date] = record.CurrentValue
		}

		if prevDate != "" {
			prev := totalsByDate[prevDate]
			totals.DayChange = totals.Value - prev.Value
			if prev.Value > 0 {
				totals.DayChangePercent = totals.DayChange / prev.Value * 100
			}
		}
		totalsByDate[date] = totals
		prevDate = date
	}

	// Canonical base order; a sort directive is applied stably on top so
	// ties retain this order.
	sort.Slice(rowOrder, func(i, j int) bool { return lessKey(rowOrder[i], rowOrder[j]) })

	rows := make([]model.AggregateRow, 0, len(rowOrder))
	for _, key := range rowOrder {
		row := rowIndex[key]
		attachDayChanges(row, dates)
		if in.Lots != nil {
			row.Lots = in.Lots(row.Record)
		}
		rows = append(rows, *row)
	}

	if in.Sort != nil {
		sortRowsByDate(rows, *in.Sort)
	}

	result := model.AggregationResult{
		Dates:        dates,
		TotalsByDate: totalsByDate,
	}

	if in.GroupBy == model.GroupByNone || in.GroupBy == "" {
		result.Rows = rows
		return result
	}

	result.Groups = groupRows(store, rows, dates, in)
	return result
}

// visibleDates resolves the requested sub-range against the store, keeping
// only dates that actually have a snapshot, in ascending order.
func visibleDates(store model.SnapshotStore, requested []string) []string {
	if requested == nil {
		return append([]string{}, store.Dates...)
	}

	dates := []string{}
	for _, date := range requested {
		if _, ok := store.Snapshots[date]; ok {
			dates = append(dates, date)
		}
	}
	sort.Strings(dates)
	return dates
}

// attachDayChanges fills a row's per-date change series. A change entry
// exists only where the position has values on both the date and the
// previous visible date; renderers treat missing entries as "not comparable"
// rather than zero.
func attachDayChanges(row *model.AggregateRow, dates []string) {
	changes := make(map[string]float64)
	for i := 1; i < len(dates); i++ {
		value, ok := row.ValuesByDate[dates[i]]
		if !ok {
			continue
		}
		prev, ok := row.ValuesByDate[dates[i-1]]
		if !ok {
			continue
		}
		changes[dates[i]] = value - prev
	}
	if len(changes) > 0 {
		row.DayChangeByDate = changes
	}
}

// sortRowsByDate stably sorts rows on their value for the directive's date,
// descending unless explicitly reversed. Rows with no entry on that date
// sort as zero.
func sortRowsByDate(rows []model.AggregateRow, directive model.SortDirective) {
	sort.SliceStable(rows, func(i, j int) bool {
		vi := rows[i].ValuesByDate[directive.Date]
		vj := rows[j].ValuesByDate[directive.Date]
		if directive.Ascending {
			return vi < vj
		}
		return vi > vj
	})
}

// groupRows buckets the assembled rows by the grouping dimension and
// computes per-group, per-date totals by re-walking the snapshots so that
// cost basis, gain/loss and income are accumulated from each date's actual
// records, not just the value series.
func groupRows(store model.SnapshotStore, rows []model.AggregateRow, dates []string, in AggregateInput) []model.GroupRow {
	groupIndex := make(map[string]*model.GroupRow)
	groupOrder := []string{}
	bucketByKey := make(map[model.PositionKey]string, len(rows))

	for _, row := range rows {
		groupKey, label := groupKeyFor(row.Record, in.GroupBy)
		bucketByKey[row.Key] = groupKey
		group, exists := groupIndex[groupKey]
		if !exists {
			group = &model.GroupRow{
				GroupKey:     groupKey,
				Label:        label,
				TotalsByDate: make(map[string]model.DateTotals, len(dates)),
			}
			groupIndex[groupKey] = group
			groupOrder = append(groupOrder, groupKey)
		}
		group.Rows = append(group.Rows, row)
	}

	// Accumulate group totals from each date's records. Bucket membership is
	// resolved by PositionKey against the row's bucket, not recomputed from
	// that date's record: a position whose grouping field changed mid-range
	// stays in one bucket for every date, so each record lands in exactly one
	// bucket per date and group totals sum to the grand totals.
	prevDate := ""
	for _, date := range dates {
		snapshot := store.Snapshots[date]
		for _, key := range sortedKeys(snapshot.Positions) {
			record := snapshot.Positions[key]
			if !in.Filter.Matches(record) {
				continue
			}
			groupKey, ok := bucketByKey[key]
			if !ok {
				continue
			}
			group := groupIndex[groupKey]
			totals := group.TotalsByDate[date]
			totals.Value += record.CurrentValue
			totals.CostBasis += record.TotalCostBasis
			totals.GainLoss += record.GainLossAmount
			totals.Income += record.IncomeAnnual
			totals.PositionCount++
			group.TotalsByDate[date] = totals
		}

		if prevDate != "" {
			for _, group := range groupIndex {
				totals, ok := group.TotalsByDate[date]
				if !ok {
					continue
				}
				prev := group.TotalsByDate[prevDate]
				totals.DayChange = totals.Value - prev.Value
				if prev.Value > 0 {
					totals.DayChangePercent = totals.DayChange / prev.Value * 100
				}
				group.TotalsByDate[date] = totals
			}
		}
		prevDate = date
	}

	if in.Sort == nil {
		sort.Strings(groupOrder)
	} else {
		sortDate := in.Sort.Date
		ascending := in.Sort.Ascending
		sort.SliceStable(groupOrder, func(i, j int) bool {
			vi := groupIndex[groupOrder[i]].TotalsByDate[sortDate].Value
			vj := groupIndex[groupOrder[j]].TotalsByDate[sortDate].Value
			if ascending {
				return vi < vj
			}
			return vi > vj
		})
	}

	groups := make([]model.GroupRow, 0, len(groupOrder))
	for _, groupKey := range groupOrder {
		groups = append(groups, *groupIndex[groupKey])
	}
	return groups
}

// groupKeyFor maps a record to its aggregation bucket for the given
// dimension. Records with an empty sector land in the literal "Unknown"
// bucket rather than being dropped; empty holding terms bucket under
// "unspecified".
func groupKeyFor(record model.PositionRecord, groupBy model.GroupBy) (key, label string) {
	switch groupBy {
	case model.GroupByAssetType:
		return string(record.Key.AssetType), string(record.Key.AssetType)
	case model.GroupByAccount:
		key = fmt.Sprintf("account-%d", record.Key.AccountID)
		label = record.AccountName
		if label == "" {
			label = fmt.Sprintf("Account %d", record.Key.AccountID)
		}
		return key, label
	case model.GroupBySector:
		sector := record.Sector
		if sector == "" {
			sector = "Unknown"
		}
		return sector, sector
	case model.GroupByHoldingTerm:
		term := string(record.HoldingTerm)
		if term == "" {
			term = "unspecified"
		}
		return term, term
	default:
		return "all", "All positions"
	}
}
