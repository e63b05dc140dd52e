package domain

import "errors"

// Sentinel errors surfaced by the stock ledger and shipment lifecycle
var (
	ErrInsufficientStock       = errors.New("insufficient stock in source warehouse")
	ErrSameWarehouse           = errors.New("invalid transfer: destination warehouse must differ from source")
	ErrZeroAdjustment          = errors.New("invalid adjustment: delta must be non-zero")
	ErrInvalidQuantity         = errors.New("invalid quantity: must be positive")
	ErrBatchDepleted           = errors.New("batch is depleted")
	ErrVersionConflict         = errors.New("batch was modified concurrently")
	ErrInvalidStatusTransition = errors.New("invalid shipment status transition")
	ErrShipmentDeleted         = errors.New("shipment not found")
	ErrNegativeSellingPrice    = errors.New("invalid selling price: must not be negative")
	ErrEmptyShipmentItems      = errors.New("invalid shipment: at least one line item is required")
)
