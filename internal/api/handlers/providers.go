package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/pdekker/Portfolio-Dashboard-Analytics/internal/api/response"
	"github.com/pdekker/Portfolio-Dashboard-Analytics/internal/apperrors"
	"github.com/pdekker/Portfolio-Dashboard-Analytics/internal/service"
)

// ProviderHandler handles market-data provider credential requests
type ProviderHandler struct {
	providerService *service.ProviderService
}

// NewProviderHandler creates a new ProviderHandler
func NewProviderHandler(providerService *service.ProviderService) *ProviderHandler {
	return &ProviderHandler{
		providerService: providerService,
	}
}

// TokenRequest is the payload for storing a provider API token.
type TokenRequest struct {
	Token string `json:"token"`
}

// TokenResponse carries the masked token for configuration screens.
type TokenResponse struct {
	Provider    string `json:"provider"`
	MaskedToken string `json:"maskedToken"`
}

// SetToken handles PUT requests storing a provider's API token. The token
// is encrypted at rest and never returned in full.
func (h *ProviderHandler) SetToken(w http.ResponseWriter, r *http.Request) {
	provider := chi.URLParam(r, "provider")

	var req TokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := h.providerService.SetToken(provider, req.Token); err != nil {
		if errors.Is(err, apperrors.ErrMissingRequiredField) {
			response.RespondError(w, http.StatusBadRequest, apperrors.ErrMissingRequiredField.Error(), "token")
			return
		}
		response.RespondError(w, http.StatusInternalServerError, "failed to store provider token", err.Error())
		return
	}

	response.RespondJSON(w, http.StatusNoContent, nil)
}

// Token handles GET requests returning the stored token in masked form.
func (h *ProviderHandler) Token(w http.ResponseWriter, r *http.Request) {
	provider := chi.URLParam(r, "provider")

	masked, err := h.providerService.GetMaskedToken(provider)
	if err != nil {
		if errors.Is(err, apperrors.ErrProviderConfigNotFound) {
			response.RespondError(w, http.StatusNotFound, apperrors.ErrProviderConfigNotFound.Error(), err.Error())
			return
		}
		response.RespondError(w, http.StatusInternalServerError, "failed to read provider token", err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, TokenResponse{Provider: provider, MaskedToken: masked})
}
