package model

import "time"

// SavedView is a named preset of filter, grouping and sort settings.
// Views are opaque to the analytics engine: the persistence layer stores
// them and hands the settings back verbatim as engine arguments on load.
type SavedView struct {
	ID            string      `json:"id"`
	Name          string      `json:"name"`
	AssetTypes    []AssetType `json:"assetTypes,omitempty"`
	AccountIDs    []int       `json:"accountIds,omitempty"`
	Search        string      `json:"search,omitempty"`
	GroupBy       GroupBy     `json:"groupBy"`
	SortDate      string      `json:"sortDate,omitempty"` // YYYY-MM-DD
	SortAscending bool        `json:"sortAscending"`
	CompareStart  string      `json:"compareStart,omitempty"` // YYYY-MM-DD
	CompareEnd    string      `json:"compareEnd,omitempty"`   // YYYY-MM-DD
	CreatedAt     time.Time   `json:"createdAt"`
	UpdatedAt     time.Time   `json:"updatedAt"`
}

// FilterSet assembles the view's filter predicates in the argument shape the
// engine consumes.
func (v SavedView) FilterSet() FilterSet {
	return FilterSet{
		AssetTypes: v.AssetTypes,
		AccountIDs: v.AccountIDs,
		Search:     v.Search,
	}
}
