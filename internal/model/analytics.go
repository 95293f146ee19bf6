package model

import "strings"

// GroupBy selects the aggregation dimension for position rollups.
type GroupBy string

// Supported grouping dimensions.
const (
	GroupByNone        GroupBy = "none"
	GroupByAssetType   GroupBy = "asset_type"
	GroupByAccount     GroupBy = "account"
	GroupBySector      GroupBy = "sector"
	GroupByHoldingTerm GroupBy = "holding_term"
)

// ValidGroupBys is the set of grouping dimensions accepted from request
// parameters.
var ValidGroupBys = map[GroupBy]bool{
	GroupByNone:        true,
	GroupByAssetType:   true,
	GroupByAccount:     true,
	GroupBySector:      true,
	GroupByHoldingTerm: true,
}

// FilterSet holds the position filters shared by all analytics operations.
// Empty allow-sets and an empty search string match everything, so the zero
// value is "no filtering".
type FilterSet struct {
	AssetTypes []AssetType `json:"assetTypes,omitempty"`
	AccountIDs []int       `json:"accountIds,omitempty"`
	Search     string      `json:"search,omitempty"`
}

// Matches reports whether a record passes every filter predicate. The search
// term matches case-insensitively against the identifier and display name.
func (f FilterSet) Matches(record PositionRecord) bool {
	if len(f.AssetTypes) > 0 {
		found := false
		for _, t := range f.AssetTypes {
			if record.Key.AssetType == t {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}

	if len(f.AccountIDs) > 0 {
		found := false
		for _, id := range f.AccountIDs {
			if record.Key.AccountID == id {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}

	if f.Search != "" {
		needle := strings.ToLower(f.Search)
		if !strings.Contains(strings.ToLower(record.Key.Identifier), needle) &&
			!strings.Contains(strings.ToLower(record.Name), needle) {
			return false
		}
	}

	return true
}

// SortDirective orders aggregation rows by their value on a specific date.
// Descending is the default direction; Ascending reverses it.
type SortDirective struct {
	Date      string `json:"date"` // YYYY-MM-DD
	Ascending bool   `json:"ascending"`
}

// DateTotals holds the aggregate state of a set of positions on one date,
// including the change versus the previous visible date. DayChange and
// DayChangePercent are zero on the first visible date.
type DateTotals struct {
	Value            float64 `json:"value"`
	CostBasis        float64 `json:"costBasis"`
	GainLoss         float64 `json:"gainLoss"`
	Income           float64 `json:"income"`
	PositionCount    int     `json:"positionCount"`
	DayChange        float64 `json:"dayChange"`
	DayChangePercent float64 `json:"dayChangePercent"`
}

// TaxLot is one synthetic purchase batch of a position, produced by a
// caller-supplied allocation policy. Lot quantities and cost bases sum back
// to the parent position.
type TaxLot struct {
	LotNumber    int     `json:"lotNumber"`
	Quantity     float64 `json:"quantity"`
	CostBasis    float64 `json:"costBasis"`
	CostPerUnit  float64 `json:"costPerUnit"`
	CurrentValue float64 `json:"currentValue"`
	PurchaseDate *string `json:"purchaseDate,omitempty"` // YYYY-MM-DD
}

// LotAllocator decomposes a position into tax lots. The engine never invents
// lot history itself; callers that track purchase batches supply the policy.
type LotAllocator func(record PositionRecord) []TaxLot

// AggregateRow is one position's assembled time series across the visible
// dates. ValuesByDate has an entry only for dates the position was actually
// observed on; absence is distinct from a zero value. DayChangeByDate has an
// entry only where both the date and the previous visible date were observed.
type AggregateRow struct {
	Key             PositionKey        `json:"key"`
	Record          PositionRecord     `json:"record"` // Latest observation in range
	ValuesByDate    map[string]float64 `json:"valuesByDate"`
	DayChangeByDate map[string]float64 `json:"dayChangeByDate,omitempty"`
	Lots            []TaxLot           `json:"lots,omitempty"`
}

// GroupRow is one aggregation bucket with its member rows and per-date
// totals.
type GroupRow struct {
	GroupKey     string                `json:"groupKey"`
	Label        string                `json:"label"`
	Rows         []AggregateRow        `json:"rows"`
	TotalsByDate map[string]DateTotals `json:"totalsByDate"`
}

// AggregationResult is the Aggregator's output: either flat rows (grouping
// none) or grouped rows, plus grand totals per visible date. Dates preserves
// the visible date order the totals were computed over.
type AggregationResult struct {
	Dates        []string              `json:"dates"`
	Rows         []AggregateRow        `json:"rows,omitempty"`
	Groups       []GroupRow            `json:"groups,omitempty"`
	TotalsByDate map[string]DateTotals `json:"totalsByDate"`
}

// ComparisonStatus classifies a position's presence across the two sides of
// a comparison.
type ComparisonStatus string

// Comparison statuses.
const (
	StatusNew     ComparisonStatus = "new"     // Absent from A, present in B
	StatusClosed  ComparisonStatus = "closed"  // Present in A, absent from B
	StatusMatched ComparisonStatus = "matched" // Present on both sides
)

// ComparisonRow is the two-point comparison of one position.
type ComparisonRow struct {
	Key          PositionKey      `json:"key"`
	Name         string           `json:"name"`
	ValueA       float64          `json:"valueA"`
	ValueB       float64          `json:"valueB"`
	Delta        float64          `json:"delta"`
	DeltaPercent float64          `json:"deltaPercent"`
	QuantityA    float64          `json:"quantityA"`
	QuantityB    float64          `json:"quantityB"`
	PriceA       float64          `json:"priceA"`
	PriceB       float64          `json:"priceB"`
	Status       ComparisonStatus `json:"status"`
}

// ComparisonSummary aggregates a comparison's rows.
type ComparisonSummary struct {
	TotalA             float64 `json:"totalA"`
	TotalB             float64 `json:"totalB"`
	TotalChange        float64 `json:"totalChange"`
	TotalChangePercent float64 `json:"totalChangePercent"`
	WinnersCount       int     `json:"winnersCount"`
	LosersCount        int     `json:"losersCount"`
	NewCount           int     `json:"newCount"`
	ClosedCount        int     `json:"closedCount"`
	MatchedCount       int     `json:"matchedCount"`
}

// ComparisonResult is the Differ's output: one row per position in the key
// union, ordered by absolute delta descending, plus summary counts.
type ComparisonResult struct {
	Rows    []ComparisonRow   `json:"rows"`
	Summary ComparisonSummary `json:"summary"`
}

// RiskResult holds the derived risk metrics over the visible date range.
// The zero value is the documented sentinel for ranges with fewer than two
// dates, where returns are undefined.
type RiskResult struct {
	VolatilityAnnualizedPercent float64               `json:"volatilityAnnualizedPercent"`
	SharpeRatio                 float64               `json:"sharpeRatio"`
	Concentration               map[AssetType]float64 `json:"concentration"` // Percent of latest total
}

// AttributionEntry is one bucket's (or position's) contribution to the
// period's total value change.
type AttributionEntry struct {
	DimensionValue      string  `json:"dimensionValue"`
	StartValue          float64 `json:"startValue"`
	EndValue            float64 `json:"endValue"`
	Change              float64 `json:"change"`
	ContributionPercent float64 `json:"contributionPercent"`
}

// AttributionTotal is the portfolio-level change over the attribution period.
type AttributionTotal struct {
	StartValue    float64 `json:"startValue"`
	EndValue      float64 `json:"endValue"`
	Change        float64 `json:"change"`
	ChangePercent float64 `json:"changePercent"`
}

// AttributionResult decomposes a period's total change into asset-type,
// sector and per-position contributions. ByPosition is ordered by absolute
// contribution descending.
type AttributionResult struct {
	Total       AttributionTotal               `json:"total"`
	ByAssetType map[AssetType]AttributionEntry `json:"byAssetType"`
	BySector    map[string]AttributionEntry    `json:"bySector"`
	ByPosition  []AttributionEntry             `json:"byPosition"`
}

// DiscrepancyKind classifies a reconciliation finding.
type DiscrepancyKind string

// Discrepancy kinds.
const (
	DiscrepancyMissingInSnapshot DiscrepancyKind = "missing_in_snapshot"
	DiscrepancyMissingInLive     DiscrepancyKind = "missing_in_live"
	DiscrepancyValueMismatch     DiscrepancyKind = "value_mismatch"
	DiscrepancyStalePrice        DiscrepancyKind = "stale_price"
)

// Severity grades a discrepancy.
type Severity string

// Severity levels.
const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// DiscrepancyRecord is one reconciliation finding between the live position
// set and the latest snapshot. Discrepancies are data, not errors: the
// reconciler reports them and leaves resolution to the caller.
type DiscrepancyRecord struct {
	Key       PositionKey     `json:"key"`
	Kind      DiscrepancyKind `json:"kind"`
	Severity  Severity        `json:"severity"`
	Magnitude float64         `json:"magnitude"`
	Message   string          `json:"message"`
}
