package validation

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/pdekker/Portfolio-Dashboard-Analytics/internal/model"
)

// Common validation errors
var (
	ErrInvalidUUID      = fmt.Errorf("invalid UUID format")
	ErrInvalidDate      = fmt.Errorf("invalid date format")
	ErrInvalidDateRange = fmt.Errorf("invalid date range")
)

// Error collects field-level validation failures for one request.
type Error struct {
	Fields map[string]string
}

func (e *Error) Error() string {
	msgs := make([]string, 0, len(e.Fields))
	for field, msg := range e.Fields {
		msgs = append(msgs, fmt.Sprintf("%s: %s", field, msg))
	}
	return strings.Join(msgs, "; ")
}

// ValidateUUID checks if a string is a valid UUID
func ValidateUUID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidUUID, id)
	}
	return nil
}

// ValidateDate checks if a string is a valid YYYY-MM-DD date
func ValidateDate(date string) error {
	if _, err := time.Parse(model.DateFormat, date); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidDate, date)
	}
	return nil
}

// ValidateDateRange checks both dates and that start does not come after
// end. Empty strings pass; the caller applies its own range defaults.
func ValidateDateRange(startDate, endDate string) error {
	if startDate != "" {
		if err := ValidateDate(startDate); err != nil {
			return err
		}
	}
	if endDate != "" {
		if err := ValidateDate(endDate); err != nil {
			return err
		}
	}
	if startDate != "" && endDate != "" && startDate > endDate {
		return fmt.Errorf("%w: %s is after %s", ErrInvalidDateRange, startDate, endDate)
	}
	return nil
}

// ValidateAssetType checks an asset type against the accepted set
func ValidateAssetType(assetType string) error {
	if !model.ValidAssetTypes[model.AssetType(assetType)] {
		return fmt.Errorf("invalid asset type: %s", assetType)
	}
	return nil
}

// ValidateGroupBy checks a grouping dimension against the accepted set
func ValidateGroupBy(groupBy string) error {
	if !model.ValidGroupBys[model.GroupBy(groupBy)] {
		return fmt.Errorf("invalid group_by: %s", groupBy)
	}
	return nil
}
