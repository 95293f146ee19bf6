package service

import (
	"context"
	"fmt"
	"time"

	"github.com/pdekker/Portfolio-Dashboard-Analytics/internal/apperrors"
	"github.com/pdekker/Portfolio-Dashboard-Analytics/internal/config"
	"github.com/pdekker/Portfolio-Dashboard-Analytics/internal/engine"
	"github.com/pdekker/Portfolio-Dashboard-Analytics/internal/model"
)

// AnalyticsService is the entry point for the dashboard's analytics
// operations. It loads snapshot stores and live position sets, hands them to
// the pure engine functions, and rounds monetary values in the results for
// API responses.
type AnalyticsService struct {
	snapshotService *SnapshotService
	liveService     *LiveService
	analyticsConfig config.AnalyticsConfig
}

// NewAnalyticsService creates a new AnalyticsService with the provided
// dependencies. analyticsConfig supplies the risk and reconciliation
// tunables.
func NewAnalyticsService(
	snapshotService *SnapshotService,
	liveService *LiveService,
	analyticsConfig config.AnalyticsConfig,
) *AnalyticsService {
	return &AnalyticsService{
		snapshotService: snapshotService,
		liveService:     liveService,
		analyticsConfig: analyticsConfig,
	}
}

// AggregateRequest bundles the caller-facing aggregation parameters.
type AggregateRequest struct {
	StartDate string               // YYYY-MM-DD, empty means default range
	EndDate   string               // YYYY-MM-DD, empty means today
	Filter    model.FilterSet
	GroupBy   model.GroupBy
	Sort      *model.SortDirective
	LotCount  int                  // >0 decomposes positions into that many even tax lots
}

// Aggregate computes filtered, optionally grouped, per-date rollups over the
// requested snapshot range.
func (s *AnalyticsService) Aggregate(req AggregateRequest) (model.AggregationResult, error) {
	store, err := s.snapshotService.LoadStore(req.StartDate, req.EndDate)
	if err != nil {
		return model.AggregationResult{}, fmt.Errorf("%w: %w", apperrors.ErrFailedToAggregate, err)
	}

	in := engine.AggregateInput{
		Filter:  req.Filter,
		GroupBy: req.GroupBy,
		Sort:    req.Sort,
	}
	if req.LotCount > 0 {
		in.Lots = engine.EvenLots(req.LotCount)
	}

	result := engine.Aggregate(store, in)
	roundAggregation(&result)
	return result, nil
}

// Compare diffs the snapshots of two dates. Both dates must have a persisted
// snapshot.
func (s *AnalyticsService) Compare(startDate, endDate string, filter model.FilterSet) (model.ComparisonResult, error) {
	start, err := s.snapshotService.GetSnapshot(startDate)
	if err != nil {
		return model.ComparisonResult{}, fmt.Errorf("%w: %w", apperrors.ErrFailedToCompare, err)
	}
	end, err := s.snapshotService.GetSnapshot(endDate)
	if err != nil {
		return model.ComparisonResult{}, fmt.Errorf("%w: %w", apperrors.ErrFailedToCompare, err)
	}

	result := engine.Compare(start.Positions, end.Positions, filter)
	roundComparison(&result)
	return result, nil
}

// CompareLive diffs the latest persisted snapshot against the live position
// set, answering "what moved since the last capture". Positions absent from
// the live set report as closed.
func (s *AnalyticsService) CompareLive(ctx context.Context, filter model.FilterSet) (model.ComparisonResult, error) {
	snapshot, err := s.snapshotService.GetLatestSnapshot()
	if err != nil {
		return model.ComparisonResult{}, fmt.Errorf("%w: %w", apperrors.ErrFailedToCompare, err)
	}
	live, err := s.liveService.BuildLivePositions(ctx)
	if err != nil {
		return model.ComparisonResult{}, fmt.Errorf("%w: %w", apperrors.ErrFailedToCompare, err)
	}

	result := engine.Compare(snapshot.Positions, live.Positions, filter)
	roundComparison(&result)
	return result, nil
}

// AnalyzeRisk computes volatility, Sharpe ratio and concentration over the
// requested snapshot range, after applying the filter.
func (s *AnalyticsService) AnalyzeRisk(startDate, endDate string, filter model.FilterSet) (model.RiskResult, error) {
	store, err := s.snapshotService.LoadStore(startDate, endDate)
	if err != nil {
		return model.RiskResult{}, fmt.Errorf("%w: %w", apperrors.ErrFailedToAnalyzeRisk, err)
	}

	aggregated := engine.Aggregate(store, engine.AggregateInput{Filter: filter})
	result := engine.AnalyzeRisk(aggregated.Rows, aggregated.Dates, s.riskParams())
	roundRisk(&result)
	return result, nil
}

// Attribute decomposes the value change between the range's first and last
// snapshot dates into per-position, per-asset-type and per-sector
// contributions.
func (s *AnalyticsService) Attribute(startDate, endDate string, filter model.FilterSet) (model.AttributionResult, error) {
	store, err := s.snapshotService.LoadStore(startDate, endDate)
	if err != nil {
		return model.AttributionResult{}, fmt.Errorf("%w: %w", apperrors.ErrFailedToAttribute, err)
	}
	if len(store.Dates) == 0 {
		return model.AttributionResult{}, fmt.Errorf("%w: %w", apperrors.ErrFailedToAttribute, apperrors.ErrEmptyStore)
	}

	aggregated := engine.Aggregate(store, engine.AggregateInput{Filter: filter})
	first := store.Dates[0]
	last := store.Dates[len(store.Dates)-1]

	result := engine.Attribute(aggregated.Rows, first, last)
	roundAttribution(&result)
	return result, nil
}

// Reconcile checks the live position set against the latest persisted
// snapshot and returns the discrepancies ordered by magnitude.
func (s *AnalyticsService) Reconcile(ctx context.Context, filter model.FilterSet) ([]model.DiscrepancyRecord, error) {
	snapshot, err := s.snapshotService.GetLatestSnapshot()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", apperrors.ErrFailedToReconcile, err)
	}
	live, err := s.liveService.BuildLivePositions(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", apperrors.ErrFailedToReconcile, err)
	}

	records := engine.Reconcile(live, snapshot, filter, s.reconcileThresholds(), live.AsOf)
	for i := range records {
		records[i].Magnitude = round(records[i].Magnitude)
	}
	return records, nil
}

// riskParams builds engine risk parameters from configuration, falling back
// to the engine defaults for unset values.
func (s *AnalyticsService) riskParams() engine.RiskParams {
	params := engine.DefaultRiskParams()
	if s.analyticsConfig.RiskFreeRatePercent != 0 {
		params.RiskFreeRatePercent = s.analyticsConfig.RiskFreeRatePercent
	}
	if s.analyticsConfig.TradingDaysPerYear > 0 {
		params.TradingDaysPerYear = s.analyticsConfig.TradingDaysPerYear
	}
	return params
}

// reconcileThresholds builds engine reconciliation thresholds from
// configuration.
func (s *AnalyticsService) reconcileThresholds() engine.ReconcileThresholds {
	thresholds := engine.DefaultReconcileThresholds()
	if s.analyticsConfig.StalePriceHours > 0 {
		thresholds.StalePriceAfter = time.Duration(s.analyticsConfig.StalePriceHours) * time.Hour
	}
	return thresholds
}

// roundAggregation rounds the monetary fields of an aggregation result in
// place.
func roundAggregation(result *model.AggregationResult) {
	for date, totals := range result.TotalsByDate {
		result.TotalsByDate[date] = roundDateTotals(totals)
	}
	for i := range result.Rows {
		roundRow(&result.Rows[i])
	}
	for g := range result.Groups {
		group := &result.Groups[g]
		for date, totals := range group.TotalsByDate {
			group.TotalsByDate[date] = roundDateTotals(totals)
		}
		for i := range group.Rows {
			roundRow(&group.Rows[i])
		}
	}
}

func roundRow(row *model.AggregateRow) {
	for date, value := range row.ValuesByDate {
		row.ValuesByDate[date] = round(value)
	}
	for date, change := range row.DayChangeByDate {
		row.DayChangeByDate[date] = round(change)
	}
	for i := range row.Lots {
		lot := &row.Lots[i]
		lot.CostBasis = round(lot.CostBasis)
		lot.CostPerUnit = round(lot.CostPerUnit)
		lot.CurrentValue = round(lot.CurrentValue)
	}
}

func roundDateTotals(totals model.DateTotals) model.DateTotals {
	totals.Value = round(totals.Value)
	totals.CostBasis = round(totals.CostBasis)
	totals.GainLoss = round(totals.GainLoss)
	totals.Income = round(totals.Income)
	totals.DayChange = round(totals.DayChange)
	totals.DayChangePercent = round(totals.DayChangePercent)
	return totals
}

// roundComparison rounds the monetary fields of a comparison result in
// place.
func roundComparison(result *model.ComparisonResult) {
	for i := range result.Rows {
		row := &result.Rows[i]
		row.ValueA = round(row.ValueA)
		row.ValueB = round(row.ValueB)
		row.Delta = round(row.Delta)
		row.DeltaPercent = round(row.DeltaPercent)
	}
	result.Summary.TotalA = round(result.Summary.TotalA)
	result.Summary.TotalB = round(result.Summary.TotalB)
	result.Summary.TotalChange = round(result.Summary.TotalChange)
	result.Summary.TotalChangePercent = round(result.Summary.TotalChangePercent)
}

// roundRisk rounds the derived risk metrics in place.
func roundRisk(result *model.RiskResult) {
	result.VolatilityAnnualizedPercent = round(result.VolatilityAnnualizedPercent)
	result.SharpeRatio = round(result.SharpeRatio)
	for assetType, percent := range result.Concentration {
		result.Concentration[assetType] = round(percent)
	}
}

// roundAttribution rounds an attribution result in place.
func roundAttribution(result *model.AttributionResult) {
	for i := range result.ByPosition {
		result.ByPosition[i] = roundAttributionEntry(result.ByPosition[i])
	}
	for assetType, entry := range result.ByAssetType {
		result.ByAssetType[assetType] = roundAttributionEntry(entry)
	}
	for sector, entry := range result.BySector {
		result.BySector[sector] = roundAttributionEntry(entry)
	}
	result.Total.StartValue = round(result.Total.StartValue)
	result.Total.EndValue = round(result.Total.EndValue)
	result.Total.Change = round(result.Total.Change)
	result.Total.ChangePercent = round(result.Total.ChangePercent)
}

func roundAttributionEntry(entry model.AttributionEntry) model.AttributionEntry {
	entry.StartValue = round(entry.StartValue)
	entry.EndValue = round(entry.EndValue)
	entry.Change = round(entry.Change)
	entry.ContributionPercent = round(entry.ContributionPercent)
	return entry
}
