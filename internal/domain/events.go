package domain

import "time"

// DomainEvent is raised by aggregates when business state changes. Events are
// published to the broker after the owning transaction commits.
type DomainEvent interface {
	EventType() string
	AggregateID() string
}

// StockAdjustedEvent is raised when a manual adjustment changes warehouse stock
type StockAdjustedEvent struct {
	ProductID   string    `json:"productId"`
	WarehouseID string    `json:"warehouseId"`
	TenantID    string    `json:"tenantId"`
	Delta       int       `json:"delta"`
	Reason      string    `json:"reason,omitempty"`
	NewTotal    int       `json:"newTotal"`
	OccurredAt  time.Time `json:"occurredAt"`
}

func (e StockAdjustedEvent) EventType() string   { return "stock.adjusted" }
func (e StockAdjustedEvent) AggregateID() string { return e.ProductID }

// StockTransferredEvent is raised when stock moves between warehouses
type StockTransferredEvent struct {
	ProductID              string    `json:"productId"`
	SourceWarehouseID      string    `json:"sourceWarehouseId"`
	DestinationWarehouseID string    `json:"destinationWarehouseId"`
	TenantID               string    `json:"tenantId"`
	Quantity               int       `json:"quantity"`
	BatchesDrained         int       `json:"batchesDrained"`
	OccurredAt             time.Time `json:"occurredAt"`
}

func (e StockTransferredEvent) EventType() string   { return "stock.transferred" }
func (e StockTransferredEvent) AggregateID() string { return e.ProductID }

// BatchPriceUpdatedEvent is raised when a batch's selling price changes
type BatchPriceUpdatedEvent struct {
	BatchID      string    `json:"batchId"`
	ProductID    string    `json:"productId"`
	WarehouseID  string    `json:"warehouseId"`
	TenantID     string    `json:"tenantId"`
	SellingPrice float64   `json:"sellingPrice"`
	OccurredAt   time.Time `json:"occurredAt"`
}

func (e BatchPriceUpdatedEvent) EventType() string   { return "batch.price-updated" }
func (e BatchPriceUpdatedEvent) AggregateID() string { return e.BatchID }

// ProductRemovedFromWarehouseEvent is raised when a product's batches are
// purged from one warehouse
type ProductRemovedFromWarehouseEvent struct {
	ProductID    string    `json:"productId"`
	WarehouseID  string    `json:"warehouseId"`
	TenantID     string    `json:"tenantId"`
	UnitsRemoved int       `json:"unitsRemoved"`
	OccurredAt   time.Time `json:"occurredAt"`
}

func (e ProductRemovedFromWarehouseEvent) EventType() string   { return "stock.product-removed" }
func (e ProductRemovedFromWarehouseEvent) AggregateID() string { return e.ProductID }

// SaleRecordedEvent is raised when a sale drains warehouse stock
type SaleRecordedEvent struct {
	SaleID      string    `json:"saleId"`
	SaleNumber  string    `json:"saleNumber"`
	ProductID   string    `json:"productId"`
	WarehouseID string    `json:"warehouseId"`
	TenantID    string    `json:"tenantId"`
	Quantity    int       `json:"quantity"`
	TotalPrice  float64   `json:"totalPrice"`
	OccurredAt  time.Time `json:"occurredAt"`
}

func (e SaleRecordedEvent) EventType() string   { return "sale.recorded" }
func (e SaleRecordedEvent) AggregateID() string { return e.SaleID }

// ShipmentCreatedEvent is raised when a shipment is registered
type ShipmentCreatedEvent struct {
	ShipmentID             string    `json:"shipmentId"`
	TenantID               string    `json:"tenantId"`
	ShipmentNumber         string    `json:"shipmentNumber"`
	OriginWarehouseID      string    `json:"originWarehouseId"`
	DestinationWarehouseID string    `json:"destinationWarehouseId"`
	TotalValue             float64   `json:"totalValue"`
	Priority               string    `json:"priority"`
	OccurredAt             time.Time `json:"occurredAt"`
}

func (e ShipmentCreatedEvent) EventType() string   { return "shipment.created" }
func (e ShipmentCreatedEvent) AggregateID() string { return e.ShipmentID }

// ShipmentStatusChangedEvent is raised on every lifecycle transition
type ShipmentStatusChangedEvent struct {
	ShipmentID     string    `json:"shipmentId"`
	TenantID       string    `json:"tenantId"`
	ShipmentNumber string    `json:"shipmentNumber"`
	FromStatus     string    `json:"fromStatus"`
	ToStatus       string    `json:"toStatus"`
	Notes          string    `json:"notes,omitempty"`
	OccurredAt     time.Time `json:"occurredAt"`
}

func (e ShipmentStatusChangedEvent) EventType() string   { return "shipment.status-changed" }
func (e ShipmentStatusChangedEvent) AggregateID() string { return e.ShipmentID }

// ShipmentLocationUpdatedEvent is raised when a route point is recorded
type ShipmentLocationUpdatedEvent struct {
	ShipmentID     string    `json:"shipmentId"`
	TenantID       string    `json:"tenantId"`
	ShipmentNumber string    `json:"shipmentNumber"`
	Address        string    `json:"address,omitempty"`
	OccurredAt     time.Time `json:"occurredAt"`
}

func (e ShipmentLocationUpdatedEvent) EventType() string   { return "shipment.location-updated" }
func (e ShipmentLocationUpdatedEvent) AggregateID() string { return e.ShipmentID }

// QualityCheckPerformedEvent is raised when an inspection is recorded
type QualityCheckPerformedEvent struct {
	ShipmentID     string    `json:"shipmentId"`
	TenantID       string    `json:"tenantId"`
	ShipmentNumber string    `json:"shipmentNumber"`
	PerformedBy    string    `json:"performedBy"`
	Approved       bool      `json:"approved"`
	IssueCount     int       `json:"issueCount"`
	OccurredAt     time.Time `json:"occurredAt"`
}

func (e QualityCheckPerformedEvent) EventType() string   { return "shipment.quality-checked" }
func (e QualityCheckPerformedEvent) AggregateID() string { return e.ShipmentID }

// ShipmentDeletedEvent is raised when a shipment is soft-deleted
type ShipmentDeletedEvent struct {
	ShipmentID     string    `json:"shipmentId"`
	TenantID       string    `json:"tenantId"`
	ShipmentNumber string    `json:"shipmentNumber"`
	OccurredAt     time.Time `json:"occurredAt"`
}

func (e ShipmentDeletedEvent) EventType() string   { return "shipment.deleted" }
func (e ShipmentDeletedEvent) AggregateID() string { return e.ShipmentID }
