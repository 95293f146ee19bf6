package service

import (
	"database/sql"
	"fmt"

	"github.com/pdekker/Portfolio-Dashboard-Analytics/internal/apperrors"
	"github.com/pdekker/Portfolio-Dashboard-Analytics/internal/database"
	"github.com/pdekker/Portfolio-Dashboard-Analytics/internal/repository"
	"github.com/pdekker/Portfolio-Dashboard-Analytics/internal/version"
)

// SystemStatus summarizes the running instance for the dashboard's about
// panel: build version plus the state of the snapshot history.
type SystemStatus struct {
	Version       string `json:"version"`
	SnapshotCount int    `json:"snapshotCount"`
	LatestDate    string `json:"latestDate,omitempty"`
}

// SystemService handles health, version and status reporting.
type SystemService struct {
	db           *sql.DB
	snapshotRepo *repository.SnapshotRepository
}

// NewSystemService creates a new SystemService.
func NewSystemService(db *sql.DB, snapshotRepo *repository.SnapshotRepository) *SystemService {
	return &SystemService{
		db:           db,
		snapshotRepo: snapshotRepo,
	}
}

// CheckHealth checks database connectivity.
func (s *SystemService) CheckHealth() error {
	return database.HealthCheck(s.db)
}

// CheckVersion returns the build version string.
func (s *SystemService) CheckVersion() string {
	return version.Version
}

// Status reports the build version and snapshot history state.
func (s *SystemService) Status() (SystemStatus, error) {
	dates, err := s.snapshotRepo.GetDates()
	if err != nil {
		return SystemStatus{}, fmt.Errorf("%w: %v", apperrors.ErrFailedToGetVersionInfo, err)
	}

	status := SystemStatus{
		Version:       version.Version,
		SnapshotCount: len(dates),
	}
	if len(dates) > 0 {
		status.LatestDate = dates[len(dates)-1]
	}
	return status, nil
}
