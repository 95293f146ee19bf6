// Package export serializes analytics results for download. The dashboard
// offers aggregation exports as CSV; rows follow the aggregation's own
// ordering so the file matches what the user sees on screen.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/pdekker/Portfolio-Dashboard-Analytics/internal/apperrors"
	"github.com/pdekker/Portfolio-Dashboard-Analytics/internal/model"
)

// WriteAggregationCSV writes an aggregation result as CSV. The header
// carries the fixed position columns followed by one value column per
// visible date. Grouped results emit a group column; flat results leave it
// empty. A final row carries the grand totals per date.
//
// Dates without an observation for a position produce an empty cell, not a
// zero, preserving the absence-versus-zero distinction.
func WriteAggregationCSV(w io.Writer, result model.AggregationResult) error {
	writer := csv.NewWriter(w)

	header := []string{"group", "assetType", "identifier", "accountId", "name", "sector", "quantity", "currentPrice", "gainLoss"}
	header = append(header, result.Dates...)
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("%w: %v", apperrors.ErrFailedToExport, err)
	}

	if len(result.Groups) > 0 {
		for _, group := range result.Groups {
			for _, row := range group.Rows {
				if err := writer.Write(rowRecord(group.Label, row, result.Dates)); err != nil {
					return fmt.Errorf("%w: %v", apperrors.ErrFailedToExport, err)
				}
			}
		}
	} else {
		for _, row := range result.Rows {
			if err := writer.Write(rowRecord("", row, result.Dates)); err != nil {
				return fmt.Errorf("%w: %v", apperrors.ErrFailedToExport, err)
			}
		}
	}

	if err := writer.Write(totalsRecord(result)); err != nil {
		return fmt.Errorf("%w: %v", apperrors.ErrFailedToExport, err)
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("%w: %v", apperrors.ErrFailedToExport, err)
	}
	return nil
}

// rowRecord renders one position row: fixed columns then per-date values.
func rowRecord(groupLabel string, row model.AggregateRow, dates []string) []string {
	record := []string{
		groupLabel,
		string(row.Key.AssetType),
		row.Key.Identifier,
		strconv.Itoa(row.Key.AccountID),
		row.Record.Name,
		row.Record.Sector,
		formatAmount(row.Record.Quantity),
		formatAmount(row.Record.CurrentPrice),
		formatAmount(row.Record.GainLossAmount),
	}
	for _, date := range dates {
		if value, ok := row.ValuesByDate[date]; ok {
			record = append(record, formatAmount(value))
		} else {
			record = append(record, "")
		}
	}
	return record
}

// totalsRecord renders the grand-totals footer row.
func totalsRecord(result model.AggregationResult) []string {
	record := []string{"", "", "", "", "Total", "", "", "", ""}
	for _, date := range result.Dates {
		record = append(record, formatAmount(result.TotalsByDate[date].Value))
	}
	return record
}

// formatAmount renders a float without trailing-zero noise.
func formatAmount(value float64) string {
	return strconv.FormatFloat(value, 'f', -1, 64)
}
