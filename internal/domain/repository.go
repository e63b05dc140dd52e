package domain

import (
	"context"
	"time"
)

// BatchRepository persists the stock batch ledger
type BatchRepository interface {
	Insert(ctx context.Context, batch *StockBatch) error
	FindByID(ctx context.Context, id string) (*StockBatch, error)

	// FindActive returns non-depleted batches for a product in a warehouse,
	// oldest first
	FindActive(ctx context.Context, tenantID, warehouseID, productID string) (BatchList, error)

	// FindByWarehouse returns all non-depleted batches in a warehouse
	FindByWarehouse(ctx context.Context, tenantID, warehouseID string) (BatchList, error)

	// FindExpiring returns batches with stock whose expiry falls on or before
	// the cutoff
	FindExpiring(ctx context.Context, tenantID string, cutoff time.Time) (BatchList, error)

	FindAll(ctx context.Context, tenantID string) (BatchList, error)

	// UpdateConsumption persists remaining/depleted conditioned on the version
	// the batch was read at; a concurrent writer surfaces as ErrVersionConflict
	UpdateConsumption(ctx context.Context, batch *StockBatch) error

	UpdatePrice(ctx context.Context, tenantID, batchID string, sellingPrice float64, expiryDate *time.Time) (*StockBatch, error)

	// DeleteByProductWarehouse hard-deletes a product's batches from one
	// warehouse, returning the units removed
	DeleteByProductWarehouse(ctx context.Context, tenantID, warehouseID, productID string) (int, error)
}

// ProductRepository persists the product catalog
type ProductRepository interface {
	Insert(ctx context.Context, product *Product) error
	FindByID(ctx context.Context, tenantID, id string) (*Product, error)
	FindBySKU(ctx context.Context, tenantID, sku string) (*Product, error)
	FindAll(ctx context.Context, tenantID string) ([]*Product, error)

	// IncrementStock adjusts the denormalized total stock counter
	IncrementStock(ctx context.Context, tenantID, id string, delta int) error
}

// WarehouseRepository persists warehouses
type WarehouseRepository interface {
	Insert(ctx context.Context, warehouse *Warehouse) error
	FindByID(ctx context.Context, tenantID, id string) (*Warehouse, error)
	FindAll(ctx context.Context, tenantID string) ([]*Warehouse, error)
}

// TransportRepository persists vehicles
type TransportRepository interface {
	Insert(ctx context.Context, transport *Transport) error
	FindByID(ctx context.Context, tenantID, id string) (*Transport, error)
	FindAvailable(ctx context.Context, tenantID string) ([]*Transport, error)
	UpdateStatus(ctx context.Context, tenantID, id string, status TransportStatus) error
}

// ShipmentFilter narrows shipment list queries
type ShipmentFilter struct {
	Status      ShipmentStatus
	WarehouseID string
	Priority    ShipmentPriority
	Limit       int64
	Offset      int64
}

// ShipmentRepository persists shipments; all reads exclude soft-deleted docs
type ShipmentRepository interface {
	Insert(ctx context.Context, shipment *Shipment) error
	FindByID(ctx context.Context, tenantID, id string) (*Shipment, error)
	FindByTracking(ctx context.Context, tenantID, trackingNumber string) (*Shipment, error)
	Find(ctx context.Context, tenantID string, filter ShipmentFilter) ([]*Shipment, error)
	Update(ctx context.Context, shipment *Shipment) error
	SoftDelete(ctx context.Context, tenantID, id string) error
}

// SaleRepository persists sale records
type SaleRepository interface {
	Insert(ctx context.Context, sale *Sale) error
	FindSince(ctx context.Context, tenantID string, since time.Time) ([]*Sale, error)
	FindByProduct(ctx context.Context, tenantID, productID string, since time.Time) ([]*Sale, error)
}

// UnitOfWork runs a function inside a storage transaction. The context passed
// to fn must be used for every repository call inside it.
type UnitOfWork interface {
	WithinTransaction(ctx context.Context, fn func(txCtx context.Context) error) error
}

// EventPublisher delivers domain events to the broker. Publishing happens
// after commit and is best-effort; failures are logged, never rolled back.
type EventPublisher interface {
	Publish(ctx context.Context, event DomainEvent) error
}
