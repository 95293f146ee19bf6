package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/pdekker/Portfolio-Dashboard-Analytics/internal/api/response"
	"github.com/pdekker/Portfolio-Dashboard-Analytics/internal/apperrors"
	"github.com/pdekker/Portfolio-Dashboard-Analytics/internal/model"
	"github.com/pdekker/Portfolio-Dashboard-Analytics/internal/service"
	"github.com/pdekker/Portfolio-Dashboard-Analytics/internal/validation"
)

// SavedViewHandler handles saved-view HTTP requests
type SavedViewHandler struct {
	savedViewService *service.SavedViewService
}

// NewSavedViewHandler creates a new SavedViewHandler
func NewSavedViewHandler(savedViewService *service.SavedViewService) *SavedViewHandler {
	return &SavedViewHandler{
		savedViewService: savedViewService,
	}
}

// Views handles GET requests for all saved views.
func (h *SavedViewHandler) Views(w http.ResponseWriter, r *http.Request) {
	views, err := h.savedViewService.GetSavedViews()
	if err != nil {
		response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToRetrieveViews.Error(), err.Error())
		return
	}
	response.RespondJSON(w, http.StatusOK, views)
}

// View handles GET requests for a single saved view.
func (h *SavedViewHandler) View(w http.ResponseWriter, r *http.Request) {
	viewID := chi.URLParam(r, "id")
	if err := validation.ValidateUUID(viewID); err != nil {
		response.RespondError(w, http.StatusBadRequest, apperrors.ErrInvalidUUID.Error(), err.Error())
		return
	}

	view, err := h.savedViewService.GetSavedView(viewID)
	if err != nil {
		if errors.Is(err, apperrors.ErrSavedViewNotFound) {
			response.RespondError(w, http.StatusNotFound, apperrors.ErrSavedViewNotFound.Error(), err.Error())
			return
		}
		response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToRetrieveViews.Error(), err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, view)
}

// CreateView handles POST requests persisting a new saved view.
func (h *SavedViewHandler) CreateView(w http.ResponseWriter, r *http.Request) {
	var view model.SavedView
	if err := json.NewDecoder(r.Body).Decode(&view); err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	created, err := h.savedViewService.CreateSavedView(view)
	if err != nil {
		if errors.Is(err, apperrors.ErrViewNameRequired) ||
			errors.Is(err, apperrors.ErrInvalidGroupBy) ||
			errors.Is(err, apperrors.ErrInvalidAssetType) ||
			errors.Is(err, apperrors.ErrInvalidDateRange) {
			response.RespondError(w, http.StatusBadRequest, "validation failed", err.Error())
			return
		}
		response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToSaveView.Error(), err.Error())
		return
	}

	response.RespondJSON(w, http.StatusCreated, created)
}

// UpdateView handles PUT requests replacing a saved view's settings.
func (h *SavedViewHandler) UpdateView(w http.ResponseWriter, r *http.Request) {
	viewID := chi.URLParam(r, "id")
	if err := validation.ValidateUUID(viewID); err != nil {
		response.RespondError(w, http.StatusBadRequest, apperrors.ErrInvalidUUID.Error(), err.Error())
		return
	}

	var view model.SavedView
	if err := json.NewDecoder(r.Body).Decode(&view); err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	view.ID = viewID

	updated, err := h.savedViewService.UpdateSavedView(view)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrSavedViewNotFound):
			response.RespondError(w, http.StatusNotFound, apperrors.ErrSavedViewNotFound.Error(), err.Error())
		case errors.Is(err, apperrors.ErrViewNameRequired),
			errors.Is(err, apperrors.ErrInvalidGroupBy),
			errors.Is(err, apperrors.ErrInvalidAssetType),
			errors.Is(err, apperrors.ErrInvalidDateRange):
			response.RespondError(w, http.StatusBadRequest, "validation failed", err.Error())
		default:
			response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToSaveView.Error(), err.Error())
		}
		return
	}

	response.RespondJSON(w, http.StatusOK, updated)
}

// DeleteView handles DELETE requests removing a saved view.
func (h *SavedViewHandler) DeleteView(w http.ResponseWriter, r *http.Request) {
	viewID := chi.URLParam(r, "id")
	if err := validation.ValidateUUID(viewID); err != nil {
		response.RespondError(w, http.StatusBadRequest, apperrors.ErrInvalidUUID.Error(), err.Error())
		return
	}

	if err := h.savedViewService.DeleteSavedView(viewID); err != nil {
		if errors.Is(err, apperrors.ErrSavedViewNotFound) {
			response.RespondError(w, http.StatusNotFound, apperrors.ErrSavedViewNotFound.Error(), err.Error())
			return
		}
		response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToDeleteView.Error(), err.Error())
		return
	}

	response.RespondJSON(w, http.StatusNoContent, nil)
}
