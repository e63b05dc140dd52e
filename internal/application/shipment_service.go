package application

import (
	"context"
	"fmt"
	"time"

	"github.com/opsdash/platform/internal/domain"
	"github.com/opsdash/platform/pkg/errors"
	"github.com/opsdash/platform/pkg/logging"
	"github.com/opsdash/platform/pkg/metrics"
)

// ShipmentService handles the shipment lifecycle: creation, status
// transitions, route tracking, quality checks and soft deletion.
type ShipmentService struct {
	shipments  domain.ShipmentRepository
	warehouses domain.WarehouseRepository
	transports domain.TransportRepository
	uow        domain.UnitOfWork
	publisher  domain.EventPublisher
	metrics    *metrics.Metrics
	logger     *logging.Logger
}

// NewShipmentService creates a ShipmentService
func NewShipmentService(
	shipments domain.ShipmentRepository,
	warehouses domain.WarehouseRepository,
	transports domain.TransportRepository,
	uow domain.UnitOfWork,
	publisher domain.EventPublisher,
	m *metrics.Metrics,
	logger *logging.Logger,
) *ShipmentService {
	return &ShipmentService{
		shipments:  shipments,
		warehouses: warehouses,
		transports: transports,
		uow:        uow,
		publisher:  publisher,
		metrics:    m,
		logger:     logger.WithComponent("shipment-service"),
	}
}

func (s *ShipmentService) publishEvents(ctx context.Context, shipment *domain.Shipment) {
	if s.publisher == nil {
		shipment.ClearEvents()
		return
	}
	for _, event := range shipment.Events() {
		if err := s.publisher.Publish(ctx, event); err != nil {
			s.logger.WithContext(ctx).Error("Failed to publish event",
				"eventType", event.EventType(), "shipmentId", event.AggregateID(), "error", err)
		}
	}
	shipment.ClearEvents()
}

func (s *ShipmentService) load(ctx context.Context, tenantID, id string) (*domain.Shipment, error) {
	shipment, err := s.shipments.FindByID(ctx, tenantID, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load shipment: %w", err)
	}
	if shipment == nil || shipment.DelFlag {
		return nil, errors.ErrNotFoundWithID("shipment", id)
	}
	return shipment, nil
}

// CreateShipment registers a pending shipment. Both warehouses must exist and
// differ; an assigned vehicle must be available and flips to in-use in the
// same transaction.
func (s *ShipmentService) CreateShipment(ctx context.Context, tenantID string, cmd CreateShipmentCommand) (*ShipmentDTO, error) {
	origin, err := s.warehouses.FindByID(ctx, tenantID, cmd.OriginWarehouseID)
	if err != nil {
		return nil, fmt.Errorf("failed to load origin warehouse: %w", err)
	}
	if origin == nil {
		return nil, errors.ErrNotFoundWithID("warehouse", cmd.OriginWarehouseID)
	}

	destination, err := s.warehouses.FindByID(ctx, tenantID, cmd.DestinationWarehouseID)
	if err != nil {
		return nil, fmt.Errorf("failed to load destination warehouse: %w", err)
	}
	if destination == nil {
		return nil, errors.ErrNotFoundWithID("warehouse", cmd.DestinationWarehouseID)
	}

	var transport *domain.Transport
	if cmd.TransportID != "" {
		transport, err = s.transports.FindByID(ctx, tenantID, cmd.TransportID)
		if err != nil {
			return nil, fmt.Errorf("failed to load transport: %w", err)
		}
		if transport == nil {
			return nil, errors.ErrNotFoundWithID("transport", cmd.TransportID)
		}
		if !transport.Assignable() {
			return nil, errors.ErrConflict(fmt.Sprintf("transport %s is %s", transport.Identifier, transport.Status))
		}
	}

	items := make([]domain.ShipmentItem, 0, len(cmd.Items))
	for _, in := range cmd.Items {
		items = append(items, domain.ShipmentItem{
			ProductID:   in.ProductID,
			ProductName: in.ProductName,
			Quantity:    in.Quantity,
			UnitPrice:   in.UnitPrice,
			Condition:   domain.ItemCondition(in.Condition),
			BatchNumber: in.BatchNumber,
			ExpiryDate:  in.ExpiryDate,
		})
	}

	shipment, err := domain.NewShipment(tenantID, cmd.OriginWarehouseID, cmd.DestinationWarehouseID, cmd.TransportID, items, domain.ShipmentPriority(cmd.Priority))
	if err != nil {
		return nil, errors.ErrValidation(err.Error())
	}
	shipment.ScheduledPickupDate = cmd.ScheduledPickupDate
	shipment.ScheduledDeliveryDate = cmd.ScheduledDeliveryDate
	shipment.Insured = cmd.Insured
	shipment.InsuranceValue = cmd.InsuranceValue
	if cmd.TemperatureMin != nil && cmd.TemperatureMax != nil {
		shipment.TemperatureRange = &domain.TemperatureRange{Min: *cmd.TemperatureMin, Max: *cmd.TemperatureMax}
	}

	err = s.uow.WithinTransaction(ctx, func(txCtx context.Context) error {
		if err := s.shipments.Insert(txCtx, shipment); err != nil {
			return fmt.Errorf("failed to insert shipment: %w", err)
		}
		if transport != nil {
			return s.transports.UpdateStatus(txCtx, tenantID, cmd.TransportID, domain.TransportInUse)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.RecordShipmentCreated(string(shipment.Priority))
	s.publishEvents(ctx, shipment)

	s.logger.WithContext(ctx).Info("Created shipment",
		"shipmentNumber", shipment.ShipmentNumber, "origin", cmd.OriginWarehouseID,
		"destination", cmd.DestinationWarehouseID, "totalValue", shipment.TotalValue)

	dto := ToShipmentDTO(shipment)
	return &dto, nil
}

// UpdateStatus applies a lifecycle transition. Delivery and cancellation
// release the assigned vehicle in the same transaction.
func (s *ShipmentService) UpdateStatus(ctx context.Context, tenantID string, cmd UpdateShipmentStatusCommand) (*ShipmentDTO, error) {
	shipment, err := s.load(ctx, tenantID, cmd.ShipmentID)
	if err != nil {
		return nil, err
	}

	to := domain.ShipmentStatus(cmd.Status)
	if err := shipment.ChangeStatus(to, cmd.Notes, time.Now().UTC()); err != nil {
		return nil, errors.ErrConflict(err.Error())
	}

	releaseTransport := shipment.TransportID != "" &&
		(to == domain.ShipmentDelivered || to == domain.ShipmentCancelled)

	err = s.uow.WithinTransaction(ctx, func(txCtx context.Context) error {
		if err := s.shipments.Update(txCtx, shipment); err != nil {
			return fmt.Errorf("failed to update shipment: %w", err)
		}
		if releaseTransport {
			return s.transports.UpdateStatus(txCtx, tenantID, shipment.TransportID, domain.TransportAvailable)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.RecordShipmentStatusChange(string(to))
	s.publishEvents(ctx, shipment)

	s.logger.WithContext(ctx).Info("Updated shipment status",
		"shipmentNumber", shipment.ShipmentNumber, "status", cmd.Status)

	dto := ToShipmentDTO(shipment)
	return &dto, nil
}

// UpdateLocation records a route point and, when a reading is supplied, the
// current cargo temperature
func (s *ShipmentService) UpdateLocation(ctx context.Context, tenantID string, cmd UpdateShipmentLocationCommand) (*ShipmentDTO, error) {
	shipment, err := s.load(ctx, tenantID, cmd.ShipmentID)
	if err != nil {
		return nil, err
	}

	if shipment.Terminal() {
		return nil, errors.ErrConflict(fmt.Sprintf("shipment %s is %s", shipment.ShipmentNumber, shipment.Status))
	}

	shipment.RecordLocation(domain.LocationUpdate{
		Latitude:   cmd.Latitude,
		Longitude:  cmd.Longitude,
		Address:    cmd.Address,
		Notes:      cmd.Notes,
		RecordedAt: time.Now().UTC(),
	})
	if cmd.Temperature != nil {
		shipment.CurrentTemperature = cmd.Temperature
		if shipment.TemperatureBreached() {
			s.logger.WithContext(ctx).Warn("Temperature out of range",
				"shipmentNumber", shipment.ShipmentNumber, "temperature", *cmd.Temperature)
		}
	}

	if err := s.shipments.Update(ctx, shipment); err != nil {
		return nil, fmt.Errorf("failed to update shipment: %w", err)
	}

	s.publishEvents(ctx, shipment)

	dto := ToShipmentDTO(shipment)
	return &dto, nil
}

// PerformQualityCheck records an inspection, replacing any previous result
func (s *ShipmentService) PerformQualityCheck(ctx context.Context, tenantID string, cmd PerformQualityCheckCommand) (*ShipmentDTO, error) {
	shipment, err := s.load(ctx, tenantID, cmd.ShipmentID)
	if err != nil {
		return nil, err
	}

	shipment.PerformQualityCheck(cmd.PerformedBy, cmd.Results, cmd.Issues, cmd.Approved, time.Now().UTC())

	if err := s.shipments.Update(ctx, shipment); err != nil {
		return nil, fmt.Errorf("failed to update shipment: %w", err)
	}

	s.publishEvents(ctx, shipment)

	s.logger.WithContext(ctx).Info("Performed quality check",
		"shipmentNumber", shipment.ShipmentNumber, "performedBy", cmd.PerformedBy,
		"approved", cmd.Approved, "issues", len(cmd.Issues))

	dto := ToShipmentDTO(shipment)
	return &dto, nil
}

// DeleteShipment soft-deletes a shipment and releases its vehicle
func (s *ShipmentService) DeleteShipment(ctx context.Context, tenantID, id string) error {
	shipment, err := s.load(ctx, tenantID, id)
	if err != nil {
		return err
	}

	releaseTransport := shipment.TransportID != "" && !shipment.Terminal()

	err = s.uow.WithinTransaction(ctx, func(txCtx context.Context) error {
		if err := s.shipments.SoftDelete(txCtx, tenantID, id); err != nil {
			return fmt.Errorf("failed to delete shipment: %w", err)
		}
		if releaseTransport {
			return s.transports.UpdateStatus(txCtx, tenantID, shipment.TransportID, domain.TransportAvailable)
		}
		return nil
	})
	if err != nil {
		return err
	}

	if s.publisher != nil {
		event := domain.ShipmentDeletedEvent{
			ShipmentID:     shipment.ID.Hex(),
			TenantID:       tenantID,
			ShipmentNumber: shipment.ShipmentNumber,
			OccurredAt:     time.Now().UTC(),
		}
		if err := s.publisher.Publish(ctx, event); err != nil {
			s.logger.WithContext(ctx).Error("Failed to publish event",
				"eventType", event.EventType(), "shipmentId", event.ShipmentID, "error", err)
		}
	}

	s.logger.WithContext(ctx).Info("Deleted shipment", "shipmentNumber", shipment.ShipmentNumber)
	return nil
}

// GetShipment returns one shipment by ID
func (s *ShipmentService) GetShipment(ctx context.Context, tenantID, id string) (*ShipmentDTO, error) {
	shipment, err := s.load(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}

	dto := ToShipmentDTO(shipment)
	return &dto, nil
}

// TrackShipment returns one shipment by its tracking number
func (s *ShipmentService) TrackShipment(ctx context.Context, tenantID, trackingNumber string) (*ShipmentDTO, error) {
	shipment, err := s.shipments.FindByTracking(ctx, tenantID, trackingNumber)
	if err != nil {
		return nil, fmt.Errorf("failed to load shipment: %w", err)
	}
	if shipment == nil || shipment.DelFlag {
		return nil, errors.ErrNotFound("shipment")
	}

	dto := ToShipmentDTO(shipment)
	return &dto, nil
}

// ListShipments returns shipments matching the query, newest first
func (s *ShipmentService) ListShipments(ctx context.Context, tenantID string, query ListShipmentsQuery) ([]ShipmentDTO, error) {
	filter := domain.ShipmentFilter{
		Status:      domain.ShipmentStatus(query.Status),
		WarehouseID: query.WarehouseID,
		Priority:    domain.ShipmentPriority(query.Priority),
		Limit:       query.PageSize,
		Offset:      (query.Page - 1) * query.PageSize,
	}

	shipments, err := s.shipments.Find(ctx, tenantID, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list shipments: %w", err)
	}

	return ToShipmentDTOs(shipments), nil
}
