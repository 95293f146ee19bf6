package request

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/pdekker/Portfolio-Dashboard-Analytics/internal/model"
	"github.com/pdekker/Portfolio-Dashboard-Analytics/internal/service"
	"github.com/pdekker/Portfolio-Dashboard-Analytics/internal/validation"
)

// ParseFilterSet extracts and validates filter parameters from query values.
//
// Parameters are expected as comma-separated strings (asset_types,
// account_ids) or single values (search). All parameters are optional; an
// empty filter matches everything.
//
// Validation rules:
//   - asset_types: Must be valid asset types (security, cash, crypto, metal, other)
//   - account_ids: Must be integers
//   - search: Free text, matched case-insensitively against identifier and name
//
// Returns an error if any parameter fails validation.
func ParseFilterSet(query url.Values) (model.FilterSet, error) {
	filter := model.FilterSet{
		Search: strings.TrimSpace(query.Get("search")),
	}

	// Parse asset types (comma-separated)
	if assetTypesParam := query.Get("asset_types"); assetTypesParam != "" {
		for _, raw := range strings.Split(assetTypesParam, ",") {
			assetType := strings.TrimSpace(strings.ToLower(raw))
			if err := validation.ValidateAssetType(assetType); err != nil {
				return model.FilterSet{}, err
			}
			filter.AssetTypes = append(filter.AssetTypes, model.AssetType(assetType))
		}
	}

	// Parse account IDs (comma-separated integers)
	if accountIDsParam := query.Get("account_ids"); accountIDsParam != "" {
		for _, raw := range strings.Split(accountIDsParam, ",") {
			accountID, err := strconv.Atoi(strings.TrimSpace(raw))
			if err != nil {
				return model.FilterSet{}, fmt.Errorf("invalid account_id: %s", raw)
			}
			filter.AccountIDs = append(filter.AccountIDs, accountID)
		}
	}

	return filter, nil
}

// ParseAggregateRequest extracts and validates the full aggregation request
// from query values: date range, filters, grouping, sorting and tax-lot
// expansion.
//
// Validation rules:
//   - start_date/end_date: Must be YYYY-MM-DD; both optional
//   - group_by: Must be a valid grouping dimension (defaults to none)
//   - sort_date: Must be YYYY-MM-DD; enables sorting rows by value on that date
//   - sort_dir: Must be "asc" or "desc" (defaults to "desc")
//   - lots: Must be a positive integer; enables even tax-lot expansion
//
// Returns an error if any parameter fails validation.
func ParseAggregateRequest(query url.Values) (service.AggregateRequest, error) {
	req := service.AggregateRequest{
		StartDate: query.Get("start_date"),
		EndDate:   query.Get("end_date"),
		GroupBy:   model.GroupByNone,
	}

	if err := validation.ValidateDateRange(req.StartDate, req.EndDate); err != nil {
		return service.AggregateRequest{}, err
	}

	filter, err := ParseFilterSet(query)
	if err != nil {
		return service.AggregateRequest{}, err
	}
	req.Filter = filter

	if groupByParam := query.Get("group_by"); groupByParam != "" {
		groupBy := strings.TrimSpace(strings.ToLower(groupByParam))
		if err := validation.ValidateGroupBy(groupBy); err != nil {
			return service.AggregateRequest{}, err
		}
		req.GroupBy = model.GroupBy(groupBy)
	}

	if sortDateParam := query.Get("sort_date"); sortDateParam != "" {
		if err := validation.ValidateDate(sortDateParam); err != nil {
			return service.AggregateRequest{}, err
		}
		ascending, err := parseSortDir(query.Get("sort_dir"))
		if err != nil {
			return service.AggregateRequest{}, err
		}
		req.Sort = &model.SortDirective{Date: sortDateParam, Ascending: ascending}
	}

	if lotsParam := query.Get("lots"); lotsParam != "" {
		lotCount, err := strconv.Atoi(lotsParam)
		if err != nil || lotCount <= 0 {
			return service.AggregateRequest{}, fmt.Errorf("invalid lots: %s", lotsParam)
		}
		req.LotCount = lotCount
	}

	return req, nil
}

// ParseComparisonDates extracts and validates the two snapshot dates of a
// comparison request. Both are required.
func ParseComparisonDates(query url.Values) (string, string, error) {
	startDate := query.Get("start_date")
	endDate := query.Get("end_date")
	if startDate == "" || endDate == "" {
		return "", "", fmt.Errorf("start_date and end_date are required")
	}
	if err := validation.ValidateDateRange(startDate, endDate); err != nil {
		return "", "", err
	}
	return startDate, endDate, nil
}

// parseSortDir maps the sort_dir parameter to an ascending flag, defaulting
// to descending.
func parseSortDir(sortDirParam string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(sortDirParam)) {
	case "", "desc":
		return false, nil
	case "asc":
		return true, nil
	default:
		return false, fmt.Errorf("invalid sort_dir: %s (must be 'asc' or 'desc')", sortDirParam)
	}
}
