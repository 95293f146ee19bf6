package apperrors

import "errors"

// Domain entity errors represent missing or invalid entities in the system.
// These errors indicate that a requested resource does not exist.
var (
	// ErrSnapshotNotFound indicates that no snapshot exists for the given date.
	ErrSnapshotNotFound = errors.New("snapshot not found")

	// ErrSavedViewNotFound indicates that a saved view with the given ID does not exist.
	ErrSavedViewNotFound = errors.New("saved view not found")

	// ErrProviderConfigNotFound indicates the market-data provider has not been configured.
	ErrProviderConfigNotFound = errors.New("provider configuration not found")

	// ErrQuoteNotFound indicates that a symbol lookup returned no price data.
	ErrQuoteNotFound = errors.New("quote not found")
)

// Business logic errors represent validation failures or constraint violations.
// These errors indicate that an operation cannot be completed due to business rules.
var (
	// ErrInvalidDateRange indicates that the provided date range is invalid
	// (e.g., start date is after end date).
	ErrInvalidDateRange = errors.New("invalid date range")

	// ErrInvalidUUID indicates that a provided ID is not a valid UUID format.
	ErrInvalidUUID = errors.New("invalid UUID format")

	// ErrEmptyID indicates that a required ID parameter is empty or missing.
	ErrEmptyID = errors.New("ID cannot be empty")

	// ErrEmptyStore indicates that an analytics operation requiring snapshot
	// history was invoked against a store with no dates.
	ErrEmptyStore = errors.New("snapshot store has no dates")

	// ErrInvalidAssetType indicates an unrecognized asset type parameter.
	ErrInvalidAssetType = errors.New("invalid asset type")

	// ErrInvalidGroupBy indicates an unrecognized grouping dimension parameter.
	ErrInvalidGroupBy = errors.New("invalid grouping dimension")

	// ErrDuplicateEntry indicates that an entity with the same unique constraint already exists.
	ErrDuplicateEntry = errors.New("duplicate entry")

	// ErrViewNameRequired indicates a saved view was submitted without a name.
	ErrViewNameRequired = errors.New("view name is required")
)

// Operation failure errors represent system-level failures when retrieving or processing data.
// These errors indicate that an operation failed, but not due to missing entities or validation issues.
var (
	// Snapshot operation errors
	ErrFailedToLoadSnapshots   = errors.New("failed to load snapshots")
	ErrFailedToCaptureSnapshot = errors.New("failed to capture snapshot")
	ErrFailedToReplaceSnapshot = errors.New("failed to replace snapshot")

	// Analytics operation errors
	ErrFailedToAggregate   = errors.New("failed to aggregate positions")
	ErrFailedToCompare     = errors.New("failed to compare position sets")
	ErrFailedToAnalyzeRisk = errors.New("failed to analyze risk")
	ErrFailedToAttribute   = errors.New("failed to attribute gains")
	ErrFailedToReconcile   = errors.New("failed to reconcile positions")

	// Live data operation errors
	ErrFailedToFetchQuotes        = errors.New("failed to fetch live quotes")
	ErrFailedToBuildLivePositions = errors.New("failed to build live position set")

	// Saved view operation errors
	ErrFailedToRetrieveViews = errors.New("failed to retrieve saved views")
	ErrFailedToSaveView      = errors.New("failed to save view")
	ErrFailedToDeleteView    = errors.New("failed to delete view")

	// Export operation errors
	ErrFailedToExport = errors.New("failed to export aggregation")

	// System operation errors
	ErrFailedToGetVersionInfo = errors.New("failed to get version information")
)

// Data integrity errors represent inconsistencies or corruption in the data.
var (
	// ErrDataInconsistency indicates that the data is in an inconsistent state
	// (e.g., a snapshot row references a date with no snapshot header).
	ErrDataInconsistency = errors.New("data inconsistency detected")

	// ErrMissingRequiredField indicates that a required field is missing or empty.
	ErrMissingRequiredField = errors.New("missing required field")
)
