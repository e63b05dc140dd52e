package application

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opsdash/platform/internal/domain"
)

type analyticsFixture struct {
	service  *AnalyticsService
	batches  *fakeBatchRepo
	products *fakeProductRepo
	sales    *fakeSaleRepo
}

func newAnalyticsFixture(t *testing.T) *analyticsFixture {
	t.Helper()
	batches := &fakeBatchRepo{}
	products := &fakeProductRepo{}
	sales := &fakeSaleRepo{}
	return &analyticsFixture{
		service:  NewAnalyticsService(batches, products, sales, testLogger()),
		batches:  batches,
		products: products,
		sales:    sales,
	}
}

func (f *analyticsFixture) addProduct(t *testing.T, name, sku string) *domain.Product {
	t.Helper()
	product := domain.NewProduct(testTenant, sku, name, "general", "unit")
	f.products.add(product)
	return product
}

func (f *analyticsFixture) addBatch(t *testing.T, productID string, remaining int, ageDays int, expiry *time.Time) *domain.StockBatch {
	t.Helper()
	batch, err := domain.NewStockBatch(testTenant, productID, "wh-1", remaining, 2.00, 0.50, 5.00)
	require.NoError(t, err)
	batch.CreatedAt = time.Now().UTC().AddDate(0, 0, -ageDays)
	batch.ExpiryDate = expiry
	f.batches.batches = append(f.batches.batches, batch)
	return batch
}

func (f *analyticsFixture) addSale(t *testing.T, productID string, quantity int, unitPrice, costOfGoods float64, ageDays int) {
	t.Helper()
	sale, err := domain.NewSale(testTenant, productID, "wh-1", "clerk", quantity, unitPrice)
	require.NoError(t, err)
	sale.CostOfGoods = costOfGoods
	sale.SoldAt = time.Now().UTC().AddDate(0, 0, -ageDays)
	f.sales.sales = append(f.sales.sales, sale)
}

func TestTurnover(t *testing.T) {
	f := newAnalyticsFixture(t)
	fast := f.addProduct(t, "Fast Mover", "SKU-FAST-01")
	slow := f.addProduct(t, "Shelf Warmer", "SKU-SLOW-01")

	// 40 sold, 60 on hand: 40%
	f.addBatch(t, fast.ID.Hex(), 60, 5, nil)
	f.addSale(t, fast.ID.Hex(), 40, 8.00, 100.00, 3)

	// Stock but no sales inside the window
	f.addBatch(t, slow.ID.Hex(), 25, 10, nil)

	entries, err := f.service.Turnover(context.Background(), testTenant, 30)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	// Sorted by rate descending
	assert.Equal(t, "Fast Mover", entries[0].ProductName)
	assert.Equal(t, 40.0, entries[0].TurnoverRate)
	assert.Equal(t, 40, entries[0].UnitsSold)
	assert.Equal(t, 60, entries[0].CurrentStock)
	assert.False(t, entries[0].SlowMoving)

	assert.Equal(t, "Shelf Warmer", entries[1].ProductName)
	assert.Equal(t, 0.0, entries[1].TurnoverRate)
	assert.True(t, entries[1].SlowMoving)
}

func TestTurnoverIgnoresSalesOutsideWindow(t *testing.T) {
	f := newAnalyticsFixture(t)
	product := f.addProduct(t, "Seasonal", "SKU-SEA-01")

	f.addBatch(t, product.ID.Hex(), 10, 5, nil)
	f.addSale(t, product.ID.Hex(), 50, 8.00, 100.00, 45)

	entries, err := f.service.Turnover(context.Background(), testTenant, 30)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, 0, entries[0].UnitsSold)
	assert.True(t, entries[0].SlowMoving)
}

func TestTurnoverOmitsInactiveProducts(t *testing.T) {
	f := newAnalyticsFixture(t)
	f.addProduct(t, "Ghost", "SKU-GHOST-01")

	entries, err := f.service.Turnover(context.Background(), testTenant, 30)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestProfitability(t *testing.T) {
	f := newAnalyticsFixture(t)
	winner := f.addProduct(t, "Winner", "SKU-WIN-01")
	loser := f.addProduct(t, "Loser", "SKU-LOSE-01")

	// Two sales aggregate: revenue 80 + 40 = 120, cost 50 + 25 = 75
	f.addSale(t, winner.ID.Hex(), 10, 8.00, 50.00, 2)
	f.addSale(t, winner.ID.Hex(), 5, 8.00, 25.00, 4)

	// Sold below cost
	f.addSale(t, loser.ID.Hex(), 10, 3.00, 40.00, 1)

	entries, err := f.service.Profitability(context.Background(), testTenant, 30)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	assert.Equal(t, "Winner", entries[0].ProductName)
	assert.Equal(t, 120.00, entries[0].Revenue)
	assert.Equal(t, 75.00, entries[0].CostOfGoods)
	assert.Equal(t, 45.00, entries[0].GrossProfit)
	assert.Equal(t, 60.0, entries[0].MarginPercent)

	assert.Equal(t, "Loser", entries[1].ProductName)
	assert.Equal(t, -10.00, entries[1].GrossProfit)
	assert.Equal(t, -25.0, entries[1].MarginPercent)
}

func TestSlowMoving(t *testing.T) {
	f := newAnalyticsFixture(t)
	product := f.addProduct(t, "Dust Collector", "SKU-DUST-01")

	stale := f.addBatch(t, product.ID.Hex(), 12, 90, nil)
	f.addBatch(t, product.ID.Hex(), 30, 10, nil)
	drained := f.addBatch(t, product.ID.Hex(), 8, 120, nil)
	require.NoError(t, drained.Consume(8))

	batches, err := f.service.SlowMoving(context.Background(), testTenant, 60)
	require.NoError(t, err)
	require.Len(t, batches, 1)
	assert.Equal(t, stale.ID.Hex(), batches[0].ID)
	assert.Equal(t, 12, batches[0].Remaining)
}

func TestExpiryAlerts(t *testing.T) {
	f := newAnalyticsFixture(t)
	product := f.addProduct(t, "Perishable", "SKU-PER-01")
	now := time.Now().UTC()

	critical := now.AddDate(0, 0, 3)
	warning := now.AddDate(0, 0, 10)
	info := now.AddDate(0, 0, 25)
	far := now.AddDate(0, 0, 90)

	f.addBatch(t, product.ID.Hex(), 5, 1, &critical)
	f.addBatch(t, product.ID.Hex(), 10, 1, &warning)
	f.addBatch(t, product.ID.Hex(), 15, 1, &info)
	f.addBatch(t, product.ID.Hex(), 20, 1, &far)

	alerts, err := f.service.ExpiryAlerts(context.Background(), testTenant, 30)
	require.NoError(t, err)
	require.Len(t, alerts, 3)

	// Soonest expiry first
	assert.Equal(t, "critical", alerts[0].Severity)
	assert.Equal(t, 5, alerts[0].Remaining)
	assert.Equal(t, "warning", alerts[1].Severity)
	assert.Equal(t, "info", alerts[2].Severity)
}

func TestExpiryAlertsRoundPartialDaysUp(t *testing.T) {
	f := newAnalyticsFixture(t)
	product := f.addProduct(t, "Perishable", "SKU-PER-03")
	edge := time.Now().UTC().Add(7*24*time.Hour + 12*time.Hour)

	f.addBatch(t, product.ID.Hex(), 5, 1, &edge)

	alerts, err := f.service.ExpiryAlerts(context.Background(), testTenant, 30)
	require.NoError(t, err)
	require.Len(t, alerts, 1)

	// 7.5 days out is 8 days left: warning, not critical
	assert.Equal(t, 8, alerts[0].DaysLeft)
	assert.Equal(t, "warning", alerts[0].Severity)
}

func TestExpiryAlertsSkipDepleted(t *testing.T) {
	f := newAnalyticsFixture(t)
	product := f.addProduct(t, "Perishable", "SKU-PER-02")
	soon := time.Now().UTC().AddDate(0, 0, 2)

	batch := f.addBatch(t, product.ID.Hex(), 5, 1, &soon)
	require.NoError(t, batch.Consume(5))

	alerts, err := f.service.ExpiryAlerts(context.Background(), testTenant, 30)
	require.NoError(t, err)
	assert.Empty(t, alerts)
}
