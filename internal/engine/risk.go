package engine

import (
	"math"

	"github.com/pdekker/Portfolio-Dashboard-Analytics/internal/model"
)

// RiskParams holds the tunable inputs of the risk calculation. The original
// dashboard hard-coded all three; they are configuration here so callers can
// override the risk-free rate or annualization without touching the math.
type RiskParams struct {
	// RiskFreeRatePercent is the annualized risk-free return subtracted in
	// the Sharpe numerator, in percent.
	RiskFreeRatePercent float64

	// TradingDaysPerYear annualizes daily returns. Equity convention is 252.
	TradingDaysPerYear int
}

// DefaultRiskParams returns the standard parameters: 2% risk-free rate,
// 252-day annualization.
func DefaultRiskParams() RiskParams {
	return RiskParams{
		RiskFreeRatePercent: 2.0,
		TradingDaysPerYear:  252,
	}
}

// AnalyzeRisk derives volatility, Sharpe ratio and asset-type concentration
// from the Aggregator's flat rows over the given visible dates.
//
// The daily return series is built from the per-date totals of the rows,
// skipping any step whose prior total is zero. Volatility is the population
// standard deviation of realized returns (not a sample-corrected estimator),
// annualized by the square root of the trading-day count, in percent. The
// Sharpe ratio uses the annualized mean return over the same series.
//
// Concentration is each asset type's share of total value on the latest
// visible date, in percent.
//
// With fewer than two visible dates returns are undefined; the zero result
// (with an empty, non-nil concentration map) is the documented sentinel, not
// an error.
func AnalyzeRisk(rows []model.AggregateRow, dates []string, params RiskParams) model.RiskResult {
	result := model.RiskResult{Concentration: map[model.AssetType]float64{}}
	if len(dates) < 2 {
		return result
	}

	totals := make([]float64, len(dates))
	for i, date := range dates {
		for _, row := range rows {
			totals[i] += row.ValuesByDate[date]
		}
	}

	returns := []float64{}
	for i := 1; i < len(totals); i++ {
		if totals[i-1] == 0 {
			continue
		}
		returns = append(returns, (totals[i]-totals[i-1])/totals[i-1])
	}

	if len(returns) > 0 {
		mean := 0.0
		for _, r := range returns {
			mean += r
		}
		mean /= float64(len(returns))

		variance := 0.0
		for _, r := range returns {
			variance += (r - mean) * (r - mean)
		}
		variance /= float64(len(returns))

		annualization := float64(params.TradingDaysPerYear)
		result.VolatilityAnnualizedPercent = math.Sqrt(variance) * math.Sqrt(annualization) * 100
		if result.VolatilityAnnualizedPercent > 0 {
			result.SharpeRatio = (mean*annualization*100 - params.RiskFreeRatePercent) / result.VolatilityAnnualizedPercent
		}
	}

	latest := dates[len(dates)-1]
	latestTotal := totals[len(totals)-1]
	if latestTotal > 0 {
		for _, row := range rows {
			value, ok := row.ValuesByDate[latest]
			if !ok {
				continue
			}
			result.Concentration[row.Key.AssetType] += value / latestTotal * 100
		}
	}

	return result
}
