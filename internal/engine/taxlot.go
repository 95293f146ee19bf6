package engine

import "github.com/pdekker/Portfolio-Dashboard-Analytics/internal/model"

// EvenLots returns a lot allocator that splits a position into n equal
// synthetic lots. The last lot absorbs rounding remainders so the lots sum
// back to the parent's quantity, cost basis and value exactly.
//
// This is the default policy for callers that track no purchase history; a
// caller with real lot data supplies its own allocator instead, since the
// engine never fabricates lot history.
func EvenLots(n int) model.LotAllocator {
	return func(record model.PositionRecord) []model.TaxLot {
		if n <= 0 || record.Quantity <= 0 {
			return nil
		}

		var purchaseDate *string
		if record.PurchaseDate != nil {
			formatted := record.PurchaseDate.Format(model.DateFormat)
			purchaseDate = &formatted
		}

		lots := make([]model.TaxLot, n)
		quantityPer := record.Quantity / float64(n)
		costPer := record.TotalCostBasis / float64(n)
		valuePer := record.CurrentValue / float64(n)

		var quantitySum, costSum, valueSum float64
		for i := 0; i < n; i++ {
			lot := model.TaxLot{
				LotNumber:    i + 1,
				Quantity:     quantityPer,
				CostBasis:    costPer,
				CurrentValue: valuePer,
				PurchaseDate: purchaseDate,
			}
			if i == n-1 {
				lot.Quantity = record.Quantity - quantitySum
				lot.CostBasis = record.TotalCostBasis - costSum
				lot.CurrentValue = record.CurrentValue - valueSum
			}
			if lot.Quantity > 0 {
				lot.CostPerUnit = lot.CostBasis / lot.Quantity
			}
			quantitySum += lot.Quantity
			costSum += lot.CostBasis
			valueSum += lot.CurrentValue
			lots[i] = lot
		}
		return lots
	}
}
