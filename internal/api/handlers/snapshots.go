package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"sort"

	"github.com/go-chi/chi/v5"

	"github.com/pdekker/Portfolio-Dashboard-Analytics/internal/api/response"
	"github.com/pdekker/Portfolio-Dashboard-Analytics/internal/apperrors"
	"github.com/pdekker/Portfolio-Dashboard-Analytics/internal/model"
	"github.com/pdekker/Portfolio-Dashboard-Analytics/internal/service"
	"github.com/pdekker/Portfolio-Dashboard-Analytics/internal/validation"
)

// SnapshotHandler handles snapshot-related HTTP requests
type SnapshotHandler struct {
	snapshotService *service.SnapshotService
	liveService     *service.LiveService
}

// NewSnapshotHandler creates a new SnapshotHandler
func NewSnapshotHandler(snapshotService *service.SnapshotService, liveService *service.LiveService) *SnapshotHandler {
	return &SnapshotHandler{
		snapshotService: snapshotService,
		liveService:     liveService,
	}
}

// Dates handles GET requests for the list of captured snapshot dates.
func (h *SnapshotHandler) Dates(w http.ResponseWriter, r *http.Request) {
	dates, err := h.snapshotService.GetDates()
	if err != nil {
		response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToLoadSnapshots.Error(), err.Error())
		return
	}
	response.RespondJSON(w, http.StatusOK, dates)
}

// Snapshot handles GET requests for one date's snapshot.
func (h *SnapshotHandler) Snapshot(w http.ResponseWriter, r *http.Request) {
	date := chi.URLParam(r, "date")
	if err := validation.ValidateDate(date); err != nil {
		response.RespondError(w, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	snapshot, err := h.snapshotService.GetSnapshot(date)
	if err != nil {
		if errors.Is(err, apperrors.ErrSnapshotNotFound) {
			response.RespondError(w, http.StatusNotFound, apperrors.ErrSnapshotNotFound.Error(), err.Error())
			return
		}
		response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToLoadSnapshots.Error(), err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, snapshotPayload(snapshot))
}

// Capture handles POST requests that build the live position set and persist
// it as today's snapshot.
func (h *SnapshotHandler) Capture(w http.ResponseWriter, r *http.Request) {
	live, err := h.liveService.BuildLivePositions(r.Context())
	if err != nil {
		if errors.Is(err, apperrors.ErrSnapshotNotFound) {
			response.RespondError(w, http.StatusConflict, "no snapshot history to derive holdings from", err.Error())
			return
		}
		response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToBuildLivePositions.Error(), err.Error())
		return
	}

	snapshot, err := h.snapshotService.CaptureSnapshot(live)
	if err != nil {
		response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToCaptureSnapshot.Error(), err.Error())
		return
	}

	response.RespondJSON(w, http.StatusCreated, snapshotPayload(snapshot))
}

// ReplaceRequest is the import payload for a backfilled snapshot.
type ReplaceRequest struct {
	Positions []model.PositionRecord `json:"positions"`
}

// Replace handles PUT requests storing an externally supplied snapshot for a
// date, replacing any existing capture.
func (h *SnapshotHandler) Replace(w http.ResponseWriter, r *http.Request) {
	date := chi.URLParam(r, "date")
	if err := validation.ValidateDate(date); err != nil {
		response.RespondError(w, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	var req ReplaceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	positions := make(map[model.PositionKey]model.PositionRecord, len(req.Positions))
	for _, record := range req.Positions {
		if !model.ValidAssetTypes[record.Key.AssetType] {
			response.RespondError(w, http.StatusBadRequest, apperrors.ErrInvalidAssetType.Error(), string(record.Key.AssetType))
			return
		}
		if record.Key.Identifier == "" {
			response.RespondError(w, http.StatusBadRequest, apperrors.ErrMissingRequiredField.Error(), "key.identifier")
			return
		}
		positions[record.Key] = record
	}

	snapshot := model.NewSnapshot(date, positions)
	if err := h.snapshotService.ReplaceSnapshot(snapshot); err != nil {
		response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToReplaceSnapshot.Error(), err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, snapshotPayload(snapshot))
}

// SnapshotResponse represents a snapshot with positions flattened to a list
// sorted by key, so clients get a stable order instead of map iteration order.
type SnapshotResponse struct {
	Date      string                 `json:"date"`
	Positions []model.PositionRecord `json:"positions"`
	Totals    model.SnapshotTotals   `json:"totals"`
}

func snapshotPayload(snapshot model.Snapshot) SnapshotResponse {
	positions := make([]model.PositionRecord, 0, len(snapshot.Positions))
	for _, record := range snapshot.Positions {
		positions = append(positions, record)
	}
	sort.Slice(positions, func(i, j int) bool {
		return positions[i].Key.String() < positions[j].Key.String()
	})
	return SnapshotResponse{
		Date:      snapshot.Date,
		Positions: positions,
		Totals:    snapshot.Totals,
	}
}
