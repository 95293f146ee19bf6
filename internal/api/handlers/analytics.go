package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/pdekker/Portfolio-Dashboard-Analytics/internal/api/request"
	"github.com/pdekker/Portfolio-Dashboard-Analytics/internal/api/response"
	"github.com/pdekker/Portfolio-Dashboard-Analytics/internal/apperrors"
	"github.com/pdekker/Portfolio-Dashboard-Analytics/internal/export"
	"github.com/pdekker/Portfolio-Dashboard-Analytics/internal/service"
)

// AnalyticsHandler handles analytics-related HTTP requests
type AnalyticsHandler struct {
	analyticsService *service.AnalyticsService
}

// NewAnalyticsHandler creates a new AnalyticsHandler
func NewAnalyticsHandler(analyticsService *service.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{
		analyticsService: analyticsService,
	}
}

// Aggregate handles GET requests for filtered, optionally grouped, per-date
// position rollups over a snapshot range.
func (h *AnalyticsHandler) Aggregate(w http.ResponseWriter, r *http.Request) {
	req, err := request.ParseAggregateRequest(r.URL.Query())
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	result, err := h.analyticsService.Aggregate(req)
	if err != nil {
		response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToAggregate.Error(), err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, result)
}

// ExportAggregate handles GET requests for a CSV download of an aggregation.
// It accepts the same query parameters as Aggregate.
func (h *AnalyticsHandler) ExportAggregate(w http.ResponseWriter, r *http.Request) {
	req, err := request.ParseAggregateRequest(r.URL.Query())
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	result, err := h.analyticsService.Aggregate(req)
	if err != nil {
		response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToExport.Error(), err.Error())
		return
	}

	filename := "positions-" + time.Now().UTC().Format("2006-01-02") + ".csv"
	response.StartCSVDownload(w, filename)
	if err := export.WriteAggregationCSV(w, result); err != nil {
		// Headers are already sent; all we can do is log via the middleware
		// by letting the connection error surface.
		return
	}
}

// Compare handles GET requests to diff the snapshots of two dates.
func (h *AnalyticsHandler) Compare(w http.ResponseWriter, r *http.Request) {
	startDate, endDate, err := request.ParseComparisonDates(r.URL.Query())
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "validation failed", err.Error())
		return
	}
	filter, err := request.ParseFilterSet(r.URL.Query())
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	result, err := h.analyticsService.Compare(startDate, endDate, filter)
	if err != nil {
		if errors.Is(err, apperrors.ErrSnapshotNotFound) {
			response.RespondError(w, http.StatusNotFound, apperrors.ErrSnapshotNotFound.Error(), err.Error())
			return
		}
		response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToCompare.Error(), err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, result)
}

// CompareLive handles GET requests to diff the latest snapshot against the
// live position set.
func (h *AnalyticsHandler) CompareLive(w http.ResponseWriter, r *http.Request) {
	filter, err := request.ParseFilterSet(r.URL.Query())
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	result, err := h.analyticsService.CompareLive(r.Context(), filter)
	if err != nil {
		if errors.Is(err, apperrors.ErrSnapshotNotFound) {
			response.RespondError(w, http.StatusNotFound, apperrors.ErrSnapshotNotFound.Error(), err.Error())
			return
		}
		response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToCompare.Error(), err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, result)
}

// Risk handles GET requests for volatility, Sharpe ratio and concentration
// over a snapshot range.
func (h *AnalyticsHandler) Risk(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	startDate, endDate := query.Get("start_date"), query.Get("end_date")
	filter, err := request.ParseFilterSet(query)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	result, err := h.analyticsService.AnalyzeRisk(startDate, endDate, filter)
	if err != nil {
		response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToAnalyzeRisk.Error(), err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, result)
}

// Attribution handles GET requests decomposing a period's change into
// position, asset-type and sector contributions.
func (h *AnalyticsHandler) Attribution(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	startDate, endDate := query.Get("start_date"), query.Get("end_date")
	filter, err := request.ParseFilterSet(query)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	result, err := h.analyticsService.Attribute(startDate, endDate, filter)
	if err != nil {
		if errors.Is(err, apperrors.ErrEmptyStore) {
			response.RespondError(w, http.StatusNotFound, apperrors.ErrEmptyStore.Error(), err.Error())
			return
		}
		response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToAttribute.Error(), err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, result)
}

// Reconcile handles GET requests checking the live position set against the
// latest snapshot.
func (h *AnalyticsHandler) Reconcile(w http.ResponseWriter, r *http.Request) {
	filter, err := request.ParseFilterSet(r.URL.Query())
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	records, err := h.analyticsService.Reconcile(r.Context(), filter)
	if err != nil {
		if errors.Is(err, apperrors.ErrSnapshotNotFound) {
			response.RespondError(w, http.StatusNotFound, apperrors.ErrSnapshotNotFound.Error(), err.Error())
			return
		}
		response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToReconcile.Error(), err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, records)
}
