package service

import (
	"fmt"
	"time"

	"github.com/pdekker/Portfolio-Dashboard-Analytics/internal/apperrors"
	"github.com/pdekker/Portfolio-Dashboard-Analytics/internal/model"
	"github.com/pdekker/Portfolio-Dashboard-Analytics/internal/repository"
)

// SnapshotService handles snapshot persistence business logic. It loads
// date ranges of persisted snapshots into the in-memory store the engine
// consumes, and captures new snapshots from live position data.
type SnapshotService struct {
	snapshotRepo    *repository.SnapshotRepository
	defaultDaysBack int
}

// NewSnapshotService creates a new SnapshotService with the provided repository.
// defaultDaysBack controls how far back LoadStore reaches when the caller
// omits a start date.
func NewSnapshotService(snapshotRepo *repository.SnapshotRepository, defaultDaysBack int) *SnapshotService {
	return &SnapshotService{
		snapshotRepo:    snapshotRepo,
		defaultDaysBack: defaultDaysBack,
	}
}

// LoadStore loads all snapshots between startDate and endDate (inclusive,
// YYYY-MM-DD) into a SnapshotStore. An empty endDate defaults to today; an
// empty startDate defaults to defaultDaysBack days before the end date.
//
// Dates without a persisted snapshot are simply absent from the store. The
// engine treats absence as "not observed", not as zero, so gaps in the
// capture history do not distort day changes or returns.
func (s *SnapshotService) LoadStore(startDate, endDate string) (model.SnapshotStore, error) {
	start, end, err := resolveRange(startDate, endDate, s.defaultDaysBack)
	if err != nil {
		return model.SnapshotStore{}, err
	}

	snapshots, err := s.snapshotRepo.GetSnapshots(start, end)
	if err != nil {
		return model.SnapshotStore{}, fmt.Errorf("%w: %v", apperrors.ErrFailedToLoadSnapshots, err)
	}

	return model.NewSnapshotStore(snapshots), nil
}

// GetSnapshot loads the single snapshot for one date. Returns
// ErrSnapshotNotFound when no snapshot exists for that date.
func (s *SnapshotService) GetSnapshot(date string) (model.Snapshot, error) {
	snapshots, err := s.snapshotRepo.GetSnapshots(date, date)
	if err != nil {
		return model.Snapshot{}, fmt.Errorf("%w: %v", apperrors.ErrFailedToLoadSnapshots, err)
	}
	if len(snapshots) == 0 {
		return model.Snapshot{}, fmt.Errorf("%w: %s", apperrors.ErrSnapshotNotFound, date)
	}
	return snapshots[0], nil
}

// GetLatestSnapshot loads the most recent persisted snapshot. Returns
// ErrSnapshotNotFound when no snapshots have been captured yet.
func (s *SnapshotService) GetLatestSnapshot() (model.Snapshot, error) {
	dates, err := s.snapshotRepo.GetDates()
	if err != nil {
		return model.Snapshot{}, fmt.Errorf("%w: %v", apperrors.ErrFailedToLoadSnapshots, err)
	}
	if len(dates) == 0 {
		return model.Snapshot{}, apperrors.ErrSnapshotNotFound
	}
	return s.GetSnapshot(dates[len(dates)-1])
}

// GetDates returns all dates that have a persisted snapshot, ascending.
func (s *SnapshotService) GetDates() ([]string, error) {
	dates, err := s.snapshotRepo.GetDates()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrFailedToLoadSnapshots, err)
	}
	return dates, nil
}

// CaptureSnapshot persists the live position set as the snapshot for the
// live set's evaluation date, replacing any snapshot already stored for that
// date. Capturing twice on the same day is therefore idempotent apart from
// intraday price movement.
func (s *SnapshotService) CaptureSnapshot(live model.LivePositionSet) (model.Snapshot, error) {
	date := live.AsOf.UTC().Format(model.DateFormat)
	snapshot := model.NewSnapshot(date, live.Positions)

	if err := s.snapshotRepo.ReplaceSnapshot(snapshot); err != nil {
		return model.Snapshot{}, fmt.Errorf("%w: %v", apperrors.ErrFailedToCaptureSnapshot, err)
	}

	return snapshot, nil
}

// ReplaceSnapshot stores an externally supplied snapshot, replacing any
// existing snapshot for the same date. Used for backfilling history from
// imports.
func (s *SnapshotService) ReplaceSnapshot(snapshot model.Snapshot) error {
	if _, err := time.Parse(model.DateFormat, snapshot.Date); err != nil {
		return fmt.Errorf("%w: %s", apperrors.ErrInvalidDateRange, snapshot.Date)
	}
	if err := s.snapshotRepo.ReplaceSnapshot(snapshot); err != nil {
		return fmt.Errorf("%w: %v", apperrors.ErrFailedToReplaceSnapshot, err)
	}
	return nil
}

// resolveRange applies range defaults and validates date ordering. Both
// returned dates are YYYY-MM-DD.
func resolveRange(startDate, endDate string, defaultDaysBack int) (string, string, error) {
	if endDate == "" {
		endDate = time.Now().UTC().Format(model.DateFormat)
	}
	end, err := time.Parse(model.DateFormat, endDate)
	if err != nil {
		return "", "", fmt.Errorf("%w: %s", apperrors.ErrInvalidDateRange, endDate)
	}

	if startDate == "" {
		startDate = end.AddDate(0, 0, -defaultDaysBack).Format(model.DateFormat)
	}
	start, err := time.Parse(model.DateFormat, startDate)
	if err != nil {
		return "", "", fmt.Errorf("%w: %s", apperrors.ErrInvalidDateRange, startDate)
	}

	if start.After(end) {
		return "", "", fmt.Errorf("%w: %s is after %s", apperrors.ErrInvalidDateRange, startDate, endDate)
	}

	return startDate, endDate, nil
}
