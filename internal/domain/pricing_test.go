package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLineTotal(t *testing.T) {
	assert.Equal(t, 30.30, LineTotal(3, 10.10))
	assert.Equal(t, 0.66, LineTotal(2, 0.33))
	assert.Equal(t, 0.0, LineTotal(0, 9.99))

	// Classic float trap: 3 x 0.1 must be exactly 0.30
	assert.Equal(t, 0.30, LineTotal(3, 0.1))
}

func TestSumTotals(t *testing.T) {
	assert.Equal(t, 30.96, SumTotals(30.30, 0.66))
	assert.Equal(t, 0.30, SumTotals(0.10, 0.10, 0.10))
	assert.Equal(t, 0.0, SumTotals())
}

func TestLandedCost(t *testing.T) {
	assert.Equal(t, 3.00, LandedCost(2.50, 0.50))
	assert.Equal(t, 2.50, LandedCost(2.50, 0))
}

func TestMarginPercent(t *testing.T) {
	// (5 - 3) / 3 x 100 = 66.67
	assert.Equal(t, 66.67, MarginPercent(5.00, 2.50, 0.50))

	// Selling below cost goes negative
	assert.Equal(t, -20.0, MarginPercent(4.00, 5.00, 0))

	// No cost basis yields zero, not a division error
	assert.Equal(t, 0.0, MarginPercent(5.00, 0, 0))
}

func TestMarkupPrice(t *testing.T) {
	assert.Equal(t, 3.90, MarkupPrice(2.50, 0.50, 30))
	assert.Equal(t, 3.00, MarkupPrice(2.50, 0.50, 0))
}

func TestTurnoverRate(t *testing.T) {
	// 40 sold, 60 in stock: 40/100 = 40%
	assert.Equal(t, 40.0, TurnoverRate(40, 60))

	// Everything sold
	assert.Equal(t, 100.0, TurnoverRate(10, 0))

	// Nothing sold, stock present
	assert.Equal(t, 0.0, TurnoverRate(0, 50))

	// No activity at all
	assert.Equal(t, 0.0, TurnoverRate(0, 0))

	// 1/3 rounds to 33.33
	assert.Equal(t, 33.33, TurnoverRate(1, 2))
}

func TestRound2(t *testing.T) {
	assert.Equal(t, 1.01, Round2(1.005))
	assert.Equal(t, 2.67, Round2(2.666666))
	assert.Equal(t, -0.5, Round2(-0.5))
}
