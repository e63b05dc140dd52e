package application

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opsdash/platform/internal/domain"
	"github.com/opsdash/platform/pkg/errors"
)

type shipmentFixture struct {
	service     *ShipmentService
	shipments   *fakeShipmentRepo
	warehouses  *fakeWarehouseRepo
	transports  *fakeTransportRepo
	uow         *fakeUnitOfWork
	publisher   *fakePublisher
	origin      *domain.Warehouse
	destination *domain.Warehouse
	transport   *domain.Transport
}

func newShipmentFixture(t *testing.T) *shipmentFixture {
	t.Helper()

	shipments := &fakeShipmentRepo{}
	warehouses := &fakeWarehouseRepo{}
	transports := &fakeTransportRepo{}
	uow := &fakeUnitOfWork{}
	publisher := &fakePublisher{}

	origin := domain.NewWarehouse(testTenant, "WH-A", "North Hub", "Hamburg")
	destination := domain.NewWarehouse(testTenant, "WH-B", "South Hub", "Munich")
	warehouses.add(origin)
	warehouses.add(destination)

	transport := domain.NewTransport(testTenant, "TRUCK-42", "box-truck", false)
	transports.add(transport)

	service := NewShipmentService(shipments, warehouses, transports, uow, publisher, testMetrics(), testLogger())
	return &shipmentFixture{
		service:     service,
		shipments:   shipments,
		warehouses:  warehouses,
		transports:  transports,
		uow:         uow,
		publisher:   publisher,
		origin:      origin,
		destination: destination,
		transport:   transport,
	}
}

func (f *shipmentFixture) createShipment(t *testing.T) *ShipmentDTO {
	t.Helper()
	dto, err := f.service.CreateShipment(context.Background(), testTenant, CreateShipmentCommand{
		OriginWarehouseID:      f.origin.ID.Hex(),
		DestinationWarehouseID: f.destination.ID.Hex(),
		TransportID:            f.transport.ID.Hex(),
		Items: []ShipmentItemInput{
			{ProductID: "prod-1", Quantity: 3, UnitPrice: 10.10},
		},
		Priority: "high",
	})
	require.NoError(t, err)
	return dto
}

func TestCreateShipment(t *testing.T) {
	f := newShipmentFixture(t)

	dto := f.createShipment(t)

	assert.Equal(t, "pending", dto.Status)
	assert.Equal(t, "high", dto.Priority)
	assert.Equal(t, 30.30, dto.TotalValue)
	assert.ElementsMatch(t, []string{"in-transit", "cancelled"}, dto.AllowedTransitions)

	// Assigned vehicle is now in use
	assert.Equal(t, domain.TransportInUse, f.transport.Status)
	assert.Contains(t, f.publisher.eventTypes(), "shipment.created")
}

func TestCreateShipmentTransportBusy(t *testing.T) {
	f := newShipmentFixture(t)
	f.transport.Status = domain.TransportInUse

	_, err := f.service.CreateShipment(context.Background(), testTenant, CreateShipmentCommand{
		OriginWarehouseID:      f.origin.ID.Hex(),
		DestinationWarehouseID: f.destination.ID.Hex(),
		TransportID:            f.transport.ID.Hex(),
		Items:                  []ShipmentItemInput{{ProductID: "p", Quantity: 1}},
	})
	appErr, ok := errors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, 409, appErr.HTTPStatus)
}

func TestCreateShipmentUnknownWarehouse(t *testing.T) {
	f := newShipmentFixture(t)

	_, err := f.service.CreateShipment(context.Background(), testTenant, CreateShipmentCommand{
		OriginWarehouseID:      "65b1f0c4a7e9d3128c000000",
		DestinationWarehouseID: f.destination.ID.Hex(),
		Items:                  []ShipmentItemInput{{ProductID: "p", Quantity: 1}},
	})
	appErr, ok := errors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, 404, appErr.HTTPStatus)
}

func TestUpdateStatusHappyPath(t *testing.T) {
	f := newShipmentFixture(t)
	created := f.createShipment(t)

	inTransit, err := f.service.UpdateStatus(context.Background(), testTenant, UpdateShipmentStatusCommand{
		ShipmentID: created.ID,
		Status:     "in-transit",
	})
	require.NoError(t, err)
	assert.NotNil(t, inTransit.ActualPickupDate)
	assert.Equal(t, domain.TransportInUse, f.transport.Status)

	delivered, err := f.service.UpdateStatus(context.Background(), testTenant, UpdateShipmentStatusCommand{
		ShipmentID: created.ID,
		Status:     "delivered",
		Notes:      "signed by receiving clerk",
	})
	require.NoError(t, err)
	assert.NotNil(t, delivered.ActualDeliveryDate)
	assert.Equal(t, "signed by receiving clerk", delivered.DeliveryNotes)
	assert.Empty(t, delivered.AllowedTransitions)

	// Delivery releases the vehicle
	assert.Equal(t, domain.TransportAvailable, f.transport.Status)
	assert.Contains(t, f.publisher.eventTypes(), "shipment.status-changed")
}

func TestUpdateStatusRejectsInvalidTransition(t *testing.T) {
	f := newShipmentFixture(t)
	created := f.createShipment(t)

	_, err := f.service.UpdateStatus(context.Background(), testTenant, UpdateShipmentStatusCommand{
		ShipmentID: created.ID,
		Status:     "delivered",
	})
	appErr, ok := errors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, 409, appErr.HTTPStatus)

	// Vehicle stays assigned
	assert.Equal(t, domain.TransportInUse, f.transport.Status)
}

func TestCancelReleasesTransport(t *testing.T) {
	f := newShipmentFixture(t)
	created := f.createShipment(t)

	_, err := f.service.UpdateStatus(context.Background(), testTenant, UpdateShipmentStatusCommand{
		ShipmentID: created.ID,
		Status:     "cancelled",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.TransportAvailable, f.transport.Status)
}

func TestUpdateLocation(t *testing.T) {
	f := newShipmentFixture(t)
	created := f.createShipment(t)

	lat, lng := 53.55, 9.99
	dto, err := f.service.UpdateLocation(context.Background(), testTenant, UpdateShipmentLocationCommand{
		ShipmentID: created.ID,
		Latitude:   &lat,
		Longitude:  &lng,
		Address:    "Hamburg depot",
	})
	require.NoError(t, err)

	require.NotNil(t, dto.CurrentLocation)
	assert.Equal(t, "Hamburg depot", dto.CurrentLocation.Address)
	assert.Len(t, dto.LocationHistory, 1)
}

func TestUpdateLocationRejectedWhenTerminal(t *testing.T) {
	f := newShipmentFixture(t)
	created := f.createShipment(t)

	_, err := f.service.UpdateStatus(context.Background(), testTenant, UpdateShipmentStatusCommand{
		ShipmentID: created.ID, Status: "cancelled",
	})
	require.NoError(t, err)

	_, err = f.service.UpdateLocation(context.Background(), testTenant, UpdateShipmentLocationCommand{
		ShipmentID: created.ID,
		Address:    "nowhere",
	})
	appErr, ok := errors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, 409, appErr.HTTPStatus)
}

func TestPerformQualityCheckReplacesPrevious(t *testing.T) {
	f := newShipmentFixture(t)
	created := f.createShipment(t)

	_, err := f.service.PerformQualityCheck(context.Background(), testTenant, PerformQualityCheckCommand{
		ShipmentID:  created.ID,
		PerformedBy: "inspector-1",
		Results:     "crate damage",
		Issues:      []string{"crushed corner"},
		Approved:    false,
	})
	require.NoError(t, err)

	dto, err := f.service.PerformQualityCheck(context.Background(), testTenant, PerformQualityCheckCommand{
		ShipmentID:  created.ID,
		PerformedBy: "inspector-2",
		Results:     "repacked",
		Approved:    true,
	})
	require.NoError(t, err)

	require.NotNil(t, dto.QualityCheck)
	assert.Equal(t, "inspector-2", dto.QualityCheck.PerformedBy)
	assert.True(t, dto.QualityCheck.Approved)
	assert.Contains(t, f.publisher.eventTypes(), "shipment.quality-checked")
}

func TestDeleteShipment(t *testing.T) {
	f := newShipmentFixture(t)
	created := f.createShipment(t)

	require.NoError(t, f.service.DeleteShipment(context.Background(), testTenant, created.ID))

	// Deleted shipments vanish from reads and release their vehicle
	_, err := f.service.GetShipment(context.Background(), testTenant, created.ID)
	appErr, ok := errors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, 404, appErr.HTTPStatus)
	assert.Equal(t, domain.TransportAvailable, f.transport.Status)
	assert.Contains(t, f.publisher.eventTypes(), "shipment.deleted")
}

func TestTrackShipment(t *testing.T) {
	f := newShipmentFixture(t)
	created := f.createShipment(t)

	dto, err := f.service.TrackShipment(context.Background(), testTenant, created.TrackingNumber)
	require.NoError(t, err)
	assert.Equal(t, created.ID, dto.ID)

	_, err = f.service.TrackShipment(context.Background(), testTenant, "TRK-NOPE")
	appErr, ok := errors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, 404, appErr.HTTPStatus)
}

func TestListShipmentsFilters(t *testing.T) {
	f := newShipmentFixture(t)
	created := f.createShipment(t)
	_, err := f.service.UpdateStatus(context.Background(), testTenant, UpdateShipmentStatusCommand{
		ShipmentID: created.ID, Status: "in-transit",
	})
	require.NoError(t, err)

	inTransit, err := f.service.ListShipments(context.Background(), testTenant, ListShipmentsQuery{
		Status: "in-transit", Page: 1, PageSize: 50,
	})
	require.NoError(t, err)
	assert.Len(t, inTransit, 1)

	pending, err := f.service.ListShipments(context.Background(), testTenant, ListShipmentsQuery{
		Status: "pending", Page: 1, PageSize: 50,
	})
	require.NoError(t, err)
	assert.Empty(t, pending)
}
