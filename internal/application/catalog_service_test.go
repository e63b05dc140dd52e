package application

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opsdash/platform/internal/domain"
	"github.com/opsdash/platform/pkg/errors"
)

func newCatalogService() (*CatalogService, *fakeProductRepo, *fakeTransportRepo) {
	products := &fakeProductRepo{}
	transports := &fakeTransportRepo{}
	service := NewCatalogService(products, &fakeWarehouseRepo{}, transports, testLogger())
	return service, products, transports
}

func TestCreateProduct(t *testing.T) {
	service, _, _ := newCatalogService()

	product, err := service.CreateProduct(context.Background(), testTenant, CreateProductCommand{
		SKU:          "SKU-OIL-01",
		Name:         "Olive Oil 1L",
		Category:     "groceries",
		Unit:         "bottle",
		ReorderPoint: 12,
	})
	require.NoError(t, err)
	assert.Equal(t, 0, product.Stock)
	assert.Equal(t, 12, product.ReorderPoint)
	assert.False(t, product.ID.IsZero())
}

func TestCreateProductDuplicateSKU(t *testing.T) {
	service, _, _ := newCatalogService()

	_, err := service.CreateProduct(context.Background(), testTenant, CreateProductCommand{
		SKU: "SKU-OIL-01", Name: "Olive Oil 1L",
	})
	require.NoError(t, err)

	_, err = service.CreateProduct(context.Background(), testTenant, CreateProductCommand{
		SKU: "SKU-OIL-01", Name: "Olive Oil 1L, relabeled",
	})
	appErr, ok := errors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, 409, appErr.HTTPStatus)
}

func TestGetProductNotFound(t *testing.T) {
	service, _, _ := newCatalogService()

	_, err := service.GetProduct(context.Background(), testTenant, "65b1f0c4a7e9d3128c000000")
	appErr, ok := errors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, 404, appErr.HTTPStatus)
}

func TestCreateWarehouse(t *testing.T) {
	service, _, _ := newCatalogService()

	warehouse, err := service.CreateWarehouse(context.Background(), testTenant, CreateWarehouseCommand{
		Code: "WH-HH", Name: "North Hub", City: "Hamburg", Capacity: 5000,
	})
	require.NoError(t, err)
	assert.True(t, warehouse.Active)
	assert.Equal(t, 5000, warehouse.Capacity)
}

func TestListAvailableTransports(t *testing.T) {
	service, _, transports := newCatalogService()

	created, err := service.CreateTransport(context.Background(), testTenant, CreateTransportCommand{
		Identifier: "TRUCK-42", VehicleType: "box-truck", Refrigerated: true,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.TransportAvailable, created.Status)

	busy, err := service.CreateTransport(context.Background(), testTenant, CreateTransportCommand{
		Identifier: "TRUCK-7", VehicleType: "van",
	})
	require.NoError(t, err)
	require.NoError(t, transports.UpdateStatus(context.Background(), testTenant, busy.ID.Hex(), domain.TransportInUse))

	available, err := service.ListAvailableTransports(context.Background(), testTenant)
	require.NoError(t, err)
	require.Len(t, available, 1)
	assert.Equal(t, "TRUCK-42", available[0].Identifier)
}
