package service

import (
	"strings"

	"github.com/pdekker/Portfolio-Dashboard-Analytics/internal/apperrors"
	"github.com/pdekker/Portfolio-Dashboard-Analytics/internal/repository"
)

// ProviderService manages market-data provider credentials. Tokens are
// stored encrypted at rest; reads through this service return a masked form
// suitable for display, never the raw token.
type ProviderService struct {
	providerRepo *repository.ProviderRepository
}

// NewProviderService creates a new ProviderService with the provided repository.
func NewProviderService(providerRepo *repository.ProviderRepository) *ProviderService {
	return &ProviderService{providerRepo: providerRepo}
}

// SetToken stores a provider API token, replacing any existing one.
func (s *ProviderService) SetToken(provider, token string) error {
	if provider == "" || token == "" {
		return apperrors.ErrMissingRequiredField
	}
	return s.providerRepo.SetToken(provider, token)
}

// GetMaskedToken returns the stored token with all but the last four
// characters masked, for configuration screens.
func (s *ProviderService) GetMaskedToken(provider string) (string, error) {
	token, err := s.providerRepo.GetToken(provider)
	if err != nil {
		return "", err
	}
	return maskToken(token), nil
}

// maskToken hides all but the trailing four characters. Short tokens are
// fully masked.
func maskToken(token string) string {
	if len(token) <= 4 {
		return strings.Repeat("*", len(token))
	}
	return strings.Repeat("*", len(token)-4) + token[len(token)-4:]
}
