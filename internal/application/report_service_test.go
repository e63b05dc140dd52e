package application

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func newReportFixture(t *testing.T) (*ReportService, *analyticsFixture) {
	t.Helper()
	af := newAnalyticsFixture(t)
	stock := NewStockService(af.batches, af.products, af.sales, &fakeUnitOfWork{}, &fakePublisher{}, testMetrics(), testLogger())
	return NewReportService(stock, af.service, testLogger()), af
}

func TestWarehouseStockReport(t *testing.T) {
	service, af := newReportFixture(t)
	product := af.addProduct(t, "Olive Oil", "SKU-OIL-01")
	af.addBatch(t, product.ID.Hex(), 24, 3, nil)

	data, err := service.WarehouseStockReport(context.Background(), testTenant, "wh-1")
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	rows, err := f.GetRows("Warehouse Stock")
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, "product_id", rows[0][0])
	assert.Equal(t, "product_name", rows[0][1])

	assert.Equal(t, product.ID.Hex(), rows[1][0])
	assert.Equal(t, "Olive Oil", rows[1][1])
	assert.Equal(t, "SKU-OIL-01", rows[1][2])
	assert.Equal(t, "24", rows[1][4])
}

func TestWarehouseStockReportEmpty(t *testing.T) {
	service, _ := newReportFixture(t)

	data, err := service.WarehouseStockReport(context.Background(), testTenant, "wh-1")
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	rows, err := f.GetRows("Warehouse Stock")
	require.NoError(t, err)
	require.Len(t, rows, 1)
}

func TestExpiryReport(t *testing.T) {
	service, af := newReportFixture(t)
	product := af.addProduct(t, "Yogurt", "SKU-YOG-01")
	soon := time.Now().UTC().AddDate(0, 0, 3)
	batch := af.addBatch(t, product.ID.Hex(), 12, 1, &soon)

	data, err := service.ExpiryReport(context.Background(), testTenant, 30)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	rows, err := f.GetRows("Expiry Alerts")
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, "severity", rows[0][0])
	assert.Equal(t, "critical", rows[1][0])
	assert.Equal(t, batch.BatchNumber, rows[1][1])
	assert.Equal(t, soon.Format("2006-01-02"), rows[1][5])
}
