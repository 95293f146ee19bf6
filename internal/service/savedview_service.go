package service

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/pdekker/Portfolio-Dashboard-Analytics/internal/apperrors"
	"github.com/pdekker/Portfolio-Dashboard-Analytics/internal/model"
	"github.com/pdekker/Portfolio-Dashboard-Analytics/internal/repository"
)

// SavedViewService handles saved-view business logic. Views are named
// presets of filter, grouping and sort settings; the service validates and
// persists them but never interprets them, the analytics layer replays the
// stored settings verbatim.
type SavedViewService struct {
	savedViewRepo *repository.SavedViewRepository
}

// NewSavedViewService creates a new SavedViewService with the provided repository.
func NewSavedViewService(savedViewRepo *repository.SavedViewRepository) *SavedViewService {
	return &SavedViewService{savedViewRepo: savedViewRepo}
}

// GetSavedViews retrieves all saved views, ordered by name.
func (s *SavedViewService) GetSavedViews() ([]model.SavedView, error) {
	views, err := s.savedViewRepo.GetSavedViews()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrFailedToRetrieveViews, err)
	}
	return views, nil
}

// GetSavedView retrieves a single saved view by ID.
func (s *SavedViewService) GetSavedView(viewID string) (model.SavedView, error) {
	if viewID == "" {
		return model.SavedView{}, apperrors.ErrEmptyID
	}
	return s.savedViewRepo.GetSavedViewOnID(viewID)
}

// CreateSavedView validates and persists a new view, assigning it a fresh
// UUID.
func (s *SavedViewService) CreateSavedView(view model.SavedView) (model.SavedView, error) {
	if err := validateView(view); err != nil {
		return model.SavedView{}, err
	}

	now := time.Now().UTC()
	view.ID = uuid.New().String()
	view.CreatedAt = now
	view.UpdatedAt = now

	if err := s.savedViewRepo.UpsertSavedView(view); err != nil {
		return model.SavedView{}, fmt.Errorf("%w: %v", apperrors.ErrFailedToSaveView, err)
	}
	return view, nil
}

// UpdateSavedView validates and persists changes to an existing view. The
// original creation time is preserved.
func (s *SavedViewService) UpdateSavedView(view model.SavedView) (model.SavedView, error) {
	if view.ID == "" {
		return model.SavedView{}, apperrors.ErrEmptyID
	}
	if err := validateView(view); err != nil {
		return model.SavedView{}, err
	}

	existing, err := s.savedViewRepo.GetSavedViewOnID(view.ID)
	if err != nil {
		return model.SavedView{}, err
	}

	view.CreatedAt = existing.CreatedAt
	view.UpdatedAt = time.Now().UTC()

	if err := s.savedViewRepo.UpsertSavedView(view); err != nil {
		return model.SavedView{}, fmt.Errorf("%w: %v", apperrors.ErrFailedToSaveView, err)
	}
	return view, nil
}

// DeleteSavedView removes a view by ID.
func (s *SavedViewService) DeleteSavedView(viewID string) error {
	if viewID == "" {
		return apperrors.ErrEmptyID
	}
	if err := s.savedViewRepo.DeleteSavedView(viewID); err != nil {
		return err
	}
	return nil
}

// validateView checks the fields a view cannot be stored without.
func validateView(view model.SavedView) error {
	if view.Name == "" {
		return apperrors.ErrViewNameRequired
	}
	if view.GroupBy != "" && !model.ValidGroupBys[view.GroupBy] {
		return fmt.Errorf("%w: %s", apperrors.ErrInvalidGroupBy, view.GroupBy)
	}
	for _, assetType := range view.AssetTypes {
		if !model.ValidAssetTypes[assetType] {
			return fmt.Errorf("%w: %s", apperrors.ErrInvalidAssetType, assetType)
		}
	}
	if view.SortDate != "" {
		if _, err := time.Parse(model.DateFormat, view.SortDate); err != nil {
			return fmt.Errorf("%w: %s", apperrors.ErrInvalidDateRange, view.SortDate)
		}
	}
	return nil
}
