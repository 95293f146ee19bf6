package repository

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/pdekker/Portfolio-Dashboard-Analytics/internal/model"
)

// SnapshotRepository provides data access methods for the position_snapshot
// table. It persists daily position captures and reassembles them into the
// immutable SnapshotStore the analytics engine reads.
type SnapshotRepository struct {
	db *sql.DB
}

// NewSnapshotRepository creates a new SnapshotRepository with the provided database connection.
func NewSnapshotRepository(db *sql.DB) *SnapshotRepository {
	return &SnapshotRepository{db: db}
}

const snapshotColumns = `
	snapshot_date, asset_type, identifier, account_id,
	name, account_name, institution, sector, industry,
	quantity, current_price, current_value, total_cost_basis, cost_per_unit,
	gain_loss_amount, gain_loss_percent, income_annual,
	purchase_date, holding_term, price_updated_at
`

// GetSnapshots retrieves all position rows between the two dates (inclusive,
// YYYY-MM-DD) and assembles them into per-date snapshots. Dates with no rows
// are simply absent from the result.
func (r *SnapshotRepository) GetSnapshots(startDate, endDate string) ([]model.Snapshot, error) {
	query := `
          SELECT ` + snapshotColumns + `
          FROM position_snapshot
          WHERE snapshot_date >= ? AND snapshot_date <= ?
          ORDER BY snapshot_date ASC
      `

	rows, err := r.db.Query(query, startDate, endDate)
	if err != nil {
		return nil, fmt.Errorf("failed to query position_snapshot table: %w", err)
	}
	defer rows.Close()

	positionsByDate := map[string]map[model.PositionKey]model.PositionRecord{}
	dates := []string{}

	for rows.Next() {
		date, record, err := scanPositionRow(rows)
		if err != nil {
			return nil, err
		}

		if positionsByDate[date] == nil {
			positionsByDate[date] = map[model.PositionKey]model.PositionRecord{}
			dates = append(dates, date)
		}
		positionsByDate[date][record.Key] = record
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating position_snapshot table: %w", err)
	}

	snapshots := make([]model.Snapshot, 0, len(dates))
	for _, date := range dates {
		snapshots = append(snapshots, model.NewSnapshot(date, positionsByDate[date]))
	}
	return snapshots, nil
}

// GetDates returns the distinct snapshot dates present in the table,
// ascending.
func (r *SnapshotRepository) GetDates() ([]string, error) {
	rows, err := r.db.Query(`SELECT DISTINCT snapshot_date FROM position_snapshot ORDER BY snapshot_date ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query snapshot dates: %w", err)
	}
	defer rows.Close()

	dates := []string{}
	for rows.Next() {
		var date string
		if err := rows.Scan(&date); err != nil {
			return nil, fmt.Errorf("failed to scan snapshot date: %w", err)
		}
		dates = append(dates, date)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating snapshot dates: %w", err)
	}
	return dates, nil
}

// ReplaceSnapshot atomically replaces all position rows for a date with the
// given snapshot's positions. Re-capturing a date is idempotent: the old
// rows are deleted in the same transaction that inserts the new ones.
func (r *SnapshotRepository) ReplaceSnapshot(snapshot model.Snapshot) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin snapshot transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // rollback after commit is a no-op

	if _, err := tx.Exec(`DELETE FROM position_snapshot WHERE snapshot_date = ?`, snapshot.Date); err != nil {
		return fmt.Errorf("failed to clear snapshot date %s: %w", snapshot.Date, err)
	}

	insert := `
          INSERT INTO position_snapshot (id, ` + snapshotColumns + `)
          VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
      `
	stmt, err := tx.Prepare(insert)
	if err != nil {
		return fmt.Errorf("failed to prepare snapshot insert: %w", err)
	}
	defer stmt.Close()

	for _, record := range snapshot.Positions {
		var purchaseDate *string
		if record.PurchaseDate != nil {
			formatted := record.PurchaseDate.Format(model.DateFormat)
			purchaseDate = &formatted
		}
		var holdingTerm *string
		if record.HoldingTerm != "" {
			term := string(record.HoldingTerm)
			holdingTerm = &term
		}
		var priceUpdatedAt *time.Time
		if !record.PriceUpdatedAt.IsZero() {
			updatedAt := record.PriceUpdatedAt.UTC()
			priceUpdatedAt = &updatedAt
		}

		_, err := stmt.Exec(
			uuid.New().String(),
			snapshot.Date,
			string(record.Key.AssetType),
			record.Key.Identifier,
			record.Key.AccountID,
			record.Name,
			record.AccountName,
			record.Institution,
			record.Sector,
			record.Industry,
			record.Quantity,
			record.CurrentPrice,
			record.CurrentValue,
			record.TotalCostBasis,
			record.CostPerUnit,
			record.GainLossAmount,
			record.GainLossPercent,
			record.IncomeAnnual,
			purchaseDate,
			holdingTerm,
			priceUpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert snapshot row for %s: %w", record.Key, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit snapshot for %s: %w", snapshot.Date, err)
	}
	return nil
}

// scanPositionRow scans one position_snapshot row into a record plus its
// snapshot date. Nullable columns map onto the record's optional fields.
func scanPositionRow(rows *sql.Rows) (string, model.PositionRecord, error) {
	var (
		date           string
		assetType      string
		record         model.PositionRecord
		name           sql.NullString
		accountName    sql.NullString
		institution    sql.NullString
		sector         sql.NullString
		industry       sql.NullString
		purchaseDate   sql.NullString
		holdingTerm    sql.NullString
		priceUpdatedAt sql.NullTime
	)

	err := rows.Scan(
		&date,
		&assetType,
		&record.Key.Identifier,
		&record.Key.AccountID,
		&name,
		&accountName,
		&institution,
		&sector,
		&industry,
		&record.Quantity,
		&record.CurrentPrice,
		&record.CurrentValue,
		&record.TotalCostBasis,
		&record.CostPerUnit,
		&record.GainLossAmount,
		&record.GainLossPercent,
		&record.IncomeAnnual,
		&purchaseDate,
		&holdingTerm,
		&priceUpdatedAt,
	)
	if err != nil {
		return "", model.PositionRecord{}, fmt.Errorf("failed to scan position_snapshot row: %w", err)
	}

	record.Key.AssetType = model.AssetType(assetType)
	record.Name = name.String
	record.AccountName = accountName.String
	record.Institution = institution.String
	record.Sector = sector.String
	record.Industry = industry.String
	record.HoldingTerm = model.HoldingTerm(holdingTerm.String)
	if priceUpdatedAt.Valid {
		record.PriceUpdatedAt = priceUpdatedAt.Time.UTC()
	}
	if purchaseDate.Valid {
		if parsed, err := time.Parse(model.DateFormat, purchaseDate.String); err == nil {
			parsed = parsed.UTC()
			record.PurchaseDate = &parsed
		}
	}

	return date, record, nil
}
