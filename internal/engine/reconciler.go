package engine

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/pdekker/Portfolio-Dashboard-Analytics/internal/model"
)

// ReconcileThresholds holds the named tolerances of the reconciliation
// classification. The original dashboard buried these as magic numbers; they
// are overridable configuration here, with the historical values preserved
// as the defaults.
type ReconcileThresholds struct {
	// ValueMismatchWarnPercent is the relative value difference above which
	// a matched position is flagged at all.
	ValueMismatchWarnPercent float64

	// ValueMismatchErrorPercent escalates a mismatch from warning to error.
	ValueMismatchErrorPercent float64

	// StalePriceAfter flags security prices not refreshed within this
	// window.
	StalePriceAfter time.Duration
}

// DefaultReconcileThresholds returns the historical thresholds: 1% warn,
// 5% error, 48 hour staleness window.
func DefaultReconcileThresholds() ReconcileThresholds {
	return ReconcileThresholds{
		ValueMismatchWarnPercent:  1,
		ValueMismatchErrorPercent: 5,
		StalePriceAfter:           48 * time.Hour,
	}
}

// Reconcile matches the live position set against a persisted snapshot by
// PositionKey and classifies the discrepancies. It is a pure classification
// step: neither source is mutated and nothing is resolved automatically.
// Every finding is data for the caller to act on, never an error.
//
// Per key in the filtered union:
//   - present only in live: the snapshot is behind (missing_in_snapshot).
//   - present only in the snapshot: the holding disappeared from live data
//     (missing_in_live), with the full snapshot value as magnitude.
//   - present in both: the relative value difference against the snapshot
//     value decides whether a value_mismatch is emitted, at error severity
//     above the error threshold and warning severity above the warn
//     threshold. The magnitude is the absolute value difference.
//
// Independently of matching, any snapshot security whose price was last
// updated before now minus the staleness window gets an informational
// stale_price record with the age in hours as magnitude. Records with no
// price timestamp at all are skipped rather than reported as infinitely
// stale.
//
// Results are ordered by magnitude descending so the largest discrepancies
// surface first.
func Reconcile(
	live model.LivePositionSet,
	snapshot model.Snapshot,
	filter model.FilterSet,
	thresholds ReconcileThresholds,
	now time.Time,
) []model.DiscrepancyRecord {
	livePositions := filterPositions(live.Positions, filter)
	snapshotPositions := filterPositions(snapshot.Positions, filter)

	records := []model.DiscrepancyRecord{}

	for _, key := range unionKeys(livePositions, snapshotPositions) {
		liveRecord, inLive := livePositions[key]
		snapshotRecord, inSnapshot := snapshotPositions[key]

		switch {
		case inLive && !inSnapshot:
			records = append(records, model.DiscrepancyRecord{
				Key:       key,
				Kind:      model.DiscrepancyMissingInSnapshot,
				Severity:  model.SeverityWarning,
				Magnitude: liveRecord.CurrentValue,
				Message: fmt.Sprintf("%s present in live data (value %.2f) but absent from snapshot %s",
					key, liveRecord.CurrentValue, snapshot.Date),
			})

		case !inLive && inSnapshot:
			records = append(records, model.DiscrepancyRecord{
				Key:       key,
				Kind:      model.DiscrepancyMissingInLive,
				Severity:  model.SeverityWarning,
				Magnitude: snapshotRecord.CurrentValue,
				Message: fmt.Sprintf("%s present in snapshot %s (value %.2f) but absent from live data",
					key, snapshot.Date, snapshotRecord.CurrentValue),
			})

		default:
			// Divide by the absolute snapshot value so negative-value records
			// (shorts, liabilities) still yield a positive percent difference.
			percentDiff := 0.0
			if snapshotRecord.CurrentValue != 0 {
				percentDiff = math.Abs(liveRecord.CurrentValue-snapshotRecord.CurrentValue) /
					math.Abs(snapshotRecord.CurrentValue) * 100
			}
			if percentDiff > thresholds.ValueMismatchWarnPercent {
				severity := model.SeverityWarning
				if percentDiff > thresholds.ValueMismatchErrorPercent {
					severity = model.SeverityError
				}
				records = append(records, model.DiscrepancyRecord{
					Key:       key,
					Kind:      model.DiscrepancyValueMismatch,
					Severity:  severity,
					Magnitude: math.Abs(liveRecord.CurrentValue - snapshotRecord.CurrentValue),
					Message: fmt.Sprintf("%s live value %.2f differs from snapshot value %.2f by %.1f%%",
						key, liveRecord.CurrentValue, snapshotRecord.CurrentValue, percentDiff),
				})
			}
		}
	}

	for _, key := range sortedKeys(snapshotPositions) {
		record := snapshotPositions[key]
		if record.Key.AssetType != model.AssetTypeSecurity {
			continue
		}
		if record.PriceUpdatedAt.IsZero() {
			continue
		}
		age := now.Sub(record.PriceUpdatedAt)
		if age <= thresholds.StalePriceAfter {
			continue
		}
		records = append(records, model.DiscrepancyRecord{
			Key:       key,
			Kind:      model.DiscrepancyStalePrice,
			Severity:  model.SeverityInfo,
			Magnitude: age.Hours(),
			Message: fmt.Sprintf("%s price last updated %.0f hours ago",
				key, age.Hours()),
		})
	}

	sort.SliceStable(records, func(i, j int) bool {
		if records[i].Magnitude != records[j].Magnitude {
			return records[i].Magnitude > records[j].Magnitude
		}
		return lessKey(records[i].Key, records[j].Key)
	})

	return records
}
