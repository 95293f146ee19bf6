package model

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// AssetType classifies the broad kind of asset a position represents.
// It is the first component of a PositionKey and drives type-level
// aggregation and concentration calculations.
type AssetType string

// Supported asset types.
const (
	AssetTypeSecurity AssetType = "security"
	AssetTypeCash     AssetType = "cash"
	AssetTypeCrypto   AssetType = "crypto"
	AssetTypeMetal    AssetType = "metal"
	AssetTypeOther    AssetType = "other"
)

// ValidAssetTypes is the set of asset types accepted from request parameters.
var ValidAssetTypes = map[AssetType]bool{
	AssetTypeSecurity: true,
	AssetTypeCash:     true,
	AssetTypeCrypto:   true,
	AssetTypeMetal:    true,
	AssetTypeOther:    true,
}

// HoldingTerm indicates whether a position qualifies for long-term
// capital-gains treatment. Empty when the purchase date is unknown.
type HoldingTerm string

// Holding term values.
const (
	HoldingTermShort HoldingTerm = "short"
	HoldingTermLong  HoldingTerm = "long"
)

// PositionKey is the composite identity of one economic holding:
// (asset type, identifier, account). Two records with equal keys observed on
// different dates, or one from a snapshot and one from live data, are the
// same holding at different points in time. The key is comparable and is used
// directly as a map key throughout the engine.
type PositionKey struct {
	AssetType  AssetType `json:"assetType"`
	Identifier string    `json:"identifier"`
	AccountID  int       `json:"accountId"`
}

// String renders the key in its canonical "type|identifier|account" form,
// used in API payloads and log messages.
func (k PositionKey) String() string {
	return fmt.Sprintf("%s|%s|%d", k.AssetType, k.Identifier, k.AccountID)
}

// MarshalText lets maps keyed by PositionKey serialize to JSON objects with
// the canonical string form as the key.
func (k PositionKey) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText parses the canonical "type|identifier|account" form.
func (k *PositionKey) UnmarshalText(text []byte) error {
	parts := strings.SplitN(string(text), "|", 3)
	if len(parts) != 3 {
		return fmt.Errorf("invalid position key: %s", text)
	}
	accountID, err := strconv.Atoi(parts[2])
	if err != nil {
		return fmt.Errorf("invalid position key account: %s", text)
	}
	k.AssetType = AssetType(parts[0])
	k.Identifier = parts[1]
	k.AccountID = accountID
	return nil
}

// PositionRecord is one observation of a holding, either on a snapshot date
// or from live market data. All numeric fields default to zero when the
// upstream source omits them; the engine never rejects a record over a
// missing or inconsistent field.
type PositionRecord struct {
	Key             PositionKey `json:"key"`
	Name            string      `json:"name"`
	AccountName     string      `json:"accountName"`
	Institution     string      `json:"institution"`
	Sector          string      `json:"sector"`
	Industry        string      `json:"industry"`
	Quantity        float64     `json:"quantity"`
	CurrentPrice    float64     `json:"currentPrice"`
	CurrentValue    float64     `json:"currentValue"`    // Nominally quantity * currentPrice
	TotalCostBasis  float64     `json:"totalCostBasis"`  // Aggregate cost across all lots
	CostPerUnit     float64     `json:"costPerUnit"`     // Average cost per unit
	GainLossAmount  float64     `json:"gainLossAmount"`  // currentValue - totalCostBasis
	GainLossPercent float64     `json:"gainLossPercent"` // Gain/loss relative to cost basis
	IncomeAnnual    float64     `json:"incomeAnnual"`    // Projected annual dividend/interest income
	PurchaseDate    *time.Time  `json:"purchaseDate,omitempty"`
	HoldingTerm     HoldingTerm `json:"holdingTerm,omitempty"`
	PriceUpdatedAt  time.Time   `json:"priceUpdatedAt"`
}
