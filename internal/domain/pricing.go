package domain

import (
	"github.com/shopspring/decimal"
)

// Prices are stored as plain floats in the documents; all arithmetic goes
// through decimals so totals and percentages stay consistent to 2 decimals.

// Round2 rounds a monetary value to 2 decimal places
func Round2(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}

// LineTotal computes quantity x unitPrice rounded to 2 decimals
func LineTotal(quantity int, unitPrice float64) float64 {
	return decimal.NewFromFloat(unitPrice).
		Mul(decimal.NewFromInt(int64(quantity))).
		Round(2).
		InexactFloat64()
}

// SumTotals adds already-rounded line totals without reintroducing float drift
func SumTotals(totals ...float64) float64 {
	sum := decimal.Zero
	for _, t := range totals {
		sum = sum.Add(decimal.NewFromFloat(t))
	}
	return sum.Round(2).InexactFloat64()
}

// LandedCost is the per-unit cost basis: unit cost plus allocated shipping
func LandedCost(unitCost, shippingCostPerUnit float64) float64 {
	return decimal.NewFromFloat(unitCost).
		Add(decimal.NewFromFloat(shippingCostPerUnit)).
		Round(2).
		InexactFloat64()
}

// MarginPercent computes (sellingPrice - landedCost) / landedCost x 100.
// A zero cost basis yields 0 rather than a division error; manual adjustment
// batches carry no cost basis.
func MarginPercent(sellingPrice, unitCost, shippingCostPerUnit float64) float64 {
	landed := decimal.NewFromFloat(unitCost).Add(decimal.NewFromFloat(shippingCostPerUnit))
	if landed.IsZero() {
		return 0
	}

	return decimal.NewFromFloat(sellingPrice).
		Sub(landed).
		Div(landed).
		Mul(decimal.NewFromInt(100)).
		Round(2).
		InexactFloat64()
}

// MarkupPrice derives a selling price from a cost basis and a markup percent
func MarkupPrice(unitCost, shippingCostPerUnit, markupPercent float64) float64 {
	landed := decimal.NewFromFloat(unitCost).Add(decimal.NewFromFloat(shippingCostPerUnit))
	factor := decimal.NewFromFloat(markupPercent).
		Div(decimal.NewFromInt(100)).
		Add(decimal.NewFromInt(1))
	return landed.Mul(factor).Round(2).InexactFloat64()
}

// TurnoverRate computes sold / (currentStock + sold) x 100 over a window
func TurnoverRate(sold, currentStock int) float64 {
	denom := sold + currentStock
	if denom == 0 {
		return 0
	}

	return decimal.NewFromInt(int64(sold)).
		Div(decimal.NewFromInt(int64(denom))).
		Mul(decimal.NewFromInt(100)).
		Round(2).
		InexactFloat64()
}
