package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/pdekker/Portfolio-Dashboard-Analytics/internal/apperrors"
	"github.com/pdekker/Portfolio-Dashboard-Analytics/internal/model"
)

// SavedViewRepository provides data access methods for the saved_view table.
// Views persist filter/grouping/sort presets; the stored settings are handed
// back verbatim as engine arguments on load.
type SavedViewRepository struct {
	db *sql.DB
}

// NewSavedViewRepository creates a new SavedViewRepository with the provided database connection.
func NewSavedViewRepository(db *sql.DB) *SavedViewRepository {
	return &SavedViewRepository{db: db}
}

// GetSavedViews retrieves all saved views ordered by name.
func (r *SavedViewRepository) GetSavedViews() ([]model.SavedView, error) {
	query := `
          SELECT id, name, asset_types, account_ids, search, group_by,
                 sort_date, sort_ascending, compare_start, compare_end,
                 created_at, updated_at
          FROM saved_view
          ORDER BY name ASC
      `

	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query saved_view table: %w", err)
	}
	defer rows.Close()

	views := []model.SavedView{}
	for rows.Next() {
		view, err := scanSavedView(rows.Scan)
		if err != nil {
			return nil, err
		}
		views = append(views, view)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating saved_view table: %w", err)
	}
	return views, nil
}

// GetSavedViewOnID retrieves a single saved view by its ID.
func (r *SavedViewRepository) GetSavedViewOnID(viewID string) (model.SavedView, error) {
	query := `
          SELECT id, name, asset_types, account_ids, search, group_by,
                 sort_date, sort_ascending, compare_start, compare_end,
                 created_at, updated_at
          FROM saved_view
          WHERE id = ?
      `

	view, err := scanSavedView(r.db.QueryRow(query, viewID).Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return model.SavedView{}, apperrors.ErrSavedViewNotFound
	}
	if err != nil {
		return model.SavedView{}, err
	}
	return view, nil
}

// UpsertSavedView inserts a view or, when the ID already exists, updates it
// in place. The caller assigns the ID.
func (r *SavedViewRepository) UpsertSavedView(view model.SavedView) error {
	query := `
          INSERT INTO saved_view (id, name, asset_types, account_ids, search, group_by,
                                  sort_date, sort_ascending, compare_start, compare_end,
                                  created_at, updated_at)
          VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
          ON CONFLICT(id) DO UPDATE SET
              name = excluded.name,
              asset_types = excluded.asset_types,
              account_ids = excluded.account_ids,
              search = excluded.search,
              group_by = excluded.group_by,
              sort_date = excluded.sort_date,
              sort_ascending = excluded.sort_ascending,
              compare_start = excluded.compare_start,
              compare_end = excluded.compare_end,
              updated_at = excluded.updated_at
      `

	assetTypes := make([]string, len(view.AssetTypes))
	for i, t := range view.AssetTypes {
		assetTypes[i] = string(t)
	}
	accountIDs := make([]string, len(view.AccountIDs))
	for i, id := range view.AccountIDs {
		accountIDs[i] = strconv.Itoa(id)
	}

	_, err := r.db.Exec(query,
		view.ID,
		view.Name,
		strings.Join(assetTypes, ","),
		strings.Join(accountIDs, ","),
		view.Search,
		string(view.GroupBy),
		view.SortDate,
		view.SortAscending,
		view.CompareStart,
		view.CompareEnd,
		view.CreatedAt.UTC(),
		view.UpdatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert saved view %s: %w", view.Name, err)
	}
	return nil
}

// DeleteSavedView removes a saved view by ID. Deleting a missing view
// returns ErrSavedViewNotFound.
func (r *SavedViewRepository) DeleteSavedView(viewID string) error {
	result, err := r.db.Exec(`DELETE FROM saved_view WHERE id = ?`, viewID)
	if err != nil {
		return fmt.Errorf("failed to delete saved view: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check saved view deletion: %w", err)
	}
	if affected == 0 {
		return apperrors.ErrSavedViewNotFound
	}
	return nil
}

// scanSavedView scans one saved_view row through the given scan function so
// it works for both Query and QueryRow paths.
func scanSavedView(scan func(...any) error) (model.SavedView, error) {
	var (
		view         model.SavedView
		assetTypes   sql.NullString
		accountIDs   sql.NullString
		search       sql.NullString
		groupBy      string
		sortDate     sql.NullString
		compareStart sql.NullString
		compareEnd   sql.NullString
		createdAt    time.Time
		updatedAt    time.Time
	)

	err := scan(
		&view.ID,
		&view.Name,
		&assetTypes,
		&accountIDs,
		&search,
		&groupBy,
		&sortDate,
		&view.SortAscending,
		&compareStart,
		&compareEnd,
		&createdAt,
		&updatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return model.SavedView{}, err
	}
	if err != nil {
		return model.SavedView{}, fmt.Errorf("failed to scan saved_view row: %w", err)
	}

	if assetTypes.String != "" {
		for _, t := range strings.Split(assetTypes.String, ",") {
			view.AssetTypes = append(view.AssetTypes, model.AssetType(t))
		}
	}
	if accountIDs.String != "" {
		for _, raw := range strings.Split(accountIDs.String, ",") {
			id, err := strconv.Atoi(raw)
			if err != nil {
				return model.SavedView{}, fmt.Errorf("corrupt account ID %q in saved view: %w", raw, err)
			}
			view.AccountIDs = append(view.AccountIDs, id)
		}
	}
	view.Search = search.String
	view.GroupBy = model.GroupBy(groupBy)
	view.SortDate = sortDate.String
	view.CompareStart = compareStart.String
	view.CompareEnd = compareEnd.String
	view.CreatedAt = createdAt.UTC()
	view.UpdatedAt = updatedAt.UTC()

	return view, nil
}
