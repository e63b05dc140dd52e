package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeBatch(t *testing.T, quantity int, createdAt time.Time) *StockBatch {
	t.Helper()
	batch, err := NewStockBatch("t1", "prod-1", "wh-1", quantity, 2.50, 0.50, 5.00)
	require.NoError(t, err)
	batch.CreatedAt = createdAt
	batch.UpdatedAt = createdAt
	return batch
}

func TestNewStockBatch(t *testing.T) {
	batch, err := NewStockBatch("t1", "prod-1", "wh-1", 100, 2.50, 0.50, 5.00)
	require.NoError(t, err)

	assert.Equal(t, 100, batch.Quantity)
	assert.Equal(t, 100, batch.Remaining)
	assert.False(t, batch.Depleted)
	assert.Equal(t, GradeA, batch.QualityGrade)
	assert.Equal(t, int64(1), batch.Version)
	assert.NotEmpty(t, batch.BatchNumber)
}

func TestNewStockBatchValidation(t *testing.T) {
	_, err := NewStockBatch("t1", "prod-1", "wh-1", 0, 1, 0, 1)
	assert.ErrorIs(t, err, ErrInvalidQuantity)

	_, err = NewStockBatch("t1", "prod-1", "wh-1", -5, 1, 0, 1)
	assert.ErrorIs(t, err, ErrInvalidQuantity)

	_, err = NewStockBatch("t1", "prod-1", "wh-1", 10, 1, 0, -1)
	assert.ErrorIs(t, err, ErrNegativeSellingPrice)
}

func TestNewAdjustmentBatch(t *testing.T) {
	batch, err := NewAdjustmentBatch("t1", "prod-1", "wh-1", 25, 4.00, "cycle count correction")
	require.NoError(t, err)

	assert.Equal(t, 0.0, batch.UnitCost)
	assert.Equal(t, 0.0, batch.ShippingCostPerUnit)
	assert.Equal(t, "cycle count correction", batch.Notes)
	require.NotNil(t, batch.ExpiryDate)
	assert.WithinDuration(t, batch.CreatedAt.AddDate(1, 0, 0), *batch.ExpiryDate, time.Second)
}

func TestConsume(t *testing.T) {
	now := time.Now().UTC()
	batch := makeBatch(t, 10, now)

	require.NoError(t, batch.Consume(4))
	assert.Equal(t, 6, batch.Remaining)
	assert.False(t, batch.Depleted)

	require.NoError(t, batch.Consume(6))
	assert.Equal(t, 0, batch.Remaining)
	assert.True(t, batch.Depleted)

	assert.ErrorIs(t, batch.Consume(1), ErrBatchDepleted)
}

func TestConsumeOverdraw(t *testing.T) {
	batch := makeBatch(t, 5, time.Now().UTC())
	err := batch.Consume(6)
	assert.ErrorIs(t, err, ErrInsufficientStock)
	assert.Equal(t, 5, batch.Remaining)
}

func TestConsumeInvalidQuantity(t *testing.T) {
	batch := makeBatch(t, 5, time.Now().UTC())
	assert.ErrorIs(t, batch.Consume(0), ErrInvalidQuantity)
	assert.ErrorIs(t, batch.Consume(-2), ErrInvalidQuantity)
}

func TestMirrorTo(t *testing.T) {
	batch := makeBatch(t, 100, time.Now().UTC())
	expiry := time.Now().UTC().AddDate(0, 3, 0)
	batch.ExpiryDate = &expiry
	batch.QualityGrade = GradeB

	mirror := batch.MirrorTo("wh-2", 30)

	assert.Equal(t, "wh-2", mirror.WarehouseID)
	assert.Equal(t, 30, mirror.Quantity)
	assert.Equal(t, 30, mirror.Remaining)
	assert.Equal(t, batch.UnitCost, mirror.UnitCost)
	assert.Equal(t, batch.SellingPrice, mirror.SellingPrice)
	assert.Equal(t, batch.BatchNumber, mirror.BatchNumber)
	assert.Equal(t, GradeB, mirror.QualityGrade)
	require.NotNil(t, mirror.ExpiryDate)
	assert.Equal(t, expiry, *mirror.ExpiryDate)
	assert.Equal(t, int64(1), mirror.Version)
	assert.NotEqual(t, batch.ID, mirror.ID)
}

func TestPlanConsumptionFIFO(t *testing.T) {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	oldest := makeBatch(t, 10, base)
	middle := makeBatch(t, 20, base.Add(24*time.Hour))
	newest := makeBatch(t, 30, base.Add(48*time.Hour))

	// Deliberately out of order
	list := BatchList{newest, oldest, middle}

	plan, shortfall := list.PlanConsumption(25)
	require.Equal(t, 0, shortfall)
	require.Len(t, plan, 2)

	assert.Equal(t, oldest.ID, plan[0].Batch.ID)
	assert.Equal(t, 10, plan[0].Take)
	assert.Equal(t, middle.ID, plan[1].Batch.ID)
	assert.Equal(t, 15, plan[1].Take)
}

func TestPlanConsumptionShortfall(t *testing.T) {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	list := BatchList{makeBatch(t, 10, base), makeBatch(t, 5, base.Add(time.Hour))}

	plan, shortfall := list.PlanConsumption(40)
	assert.Equal(t, 25, shortfall)
	require.Len(t, plan, 2)
	assert.Equal(t, 10, plan[0].Take)
	assert.Equal(t, 5, plan[1].Take)
}

func TestPlanConsumptionSkipsDepleted(t *testing.T) {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	drained := makeBatch(t, 10, base)
	require.NoError(t, drained.Consume(10))
	fresh := makeBatch(t, 10, base.Add(time.Hour))

	plan, shortfall := BatchList{drained, fresh}.PlanConsumption(5)
	require.Equal(t, 0, shortfall)
	require.Len(t, plan, 1)
	assert.Equal(t, fresh.ID, plan[0].Batch.ID)
}

func TestPlanConsumptionTieBreaksOnID(t *testing.T) {
	at := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	a := makeBatch(t, 5, at)
	b := makeBatch(t, 5, at)

	first, second := a, b
	if b.ID.Hex() < a.ID.Hex() {
		first, second = b, a
	}

	plan, _ := BatchList{a, b}.PlanConsumption(7)
	require.Len(t, plan, 2)
	assert.Equal(t, first.ID, plan[0].Batch.ID)
	assert.Equal(t, second.ID, plan[1].Batch.ID)
}

func TestTotalRemaining(t *testing.T) {
	base := time.Now().UTC()
	a := makeBatch(t, 10, base)
	b := makeBatch(t, 20, base)
	require.NoError(t, b.Consume(5))
	c := makeBatch(t, 5, base)
	require.NoError(t, c.Consume(5))

	assert.Equal(t, 25, BatchList{a, b, c}.TotalRemaining())
}

func TestWeightedAverageSellingPrice(t *testing.T) {
	base := time.Now().UTC()
	a := makeBatch(t, 10, base)
	a.SellingPrice = 4.00
	b := makeBatch(t, 30, base)
	b.SellingPrice = 6.00

	// (10*4 + 30*6) / 40 = 5.50
	assert.Equal(t, 5.50, BatchList{a, b}.WeightedAverageSellingPrice())

	assert.Equal(t, 0.0, BatchList{}.WeightedAverageSellingPrice())
}

func TestExpiresWithin(t *testing.T) {
	now := time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC)
	batch := makeBatch(t, 10, now)

	assert.False(t, batch.ExpiresWithin(7, now))

	expiry := now.AddDate(0, 0, 5)
	batch.ExpiryDate = &expiry
	assert.True(t, batch.ExpiresWithin(7, now))
	assert.False(t, batch.ExpiresWithin(3, now))
}
