package application

import "time"

// AdjustStockCommand applies a manual stock correction. A positive delta
// creates an adjustment batch; a negative delta drains batches oldest-first.
type AdjustStockCommand struct {
	ProductID    string  `json:"productId" binding:"required,object_id"`
	WarehouseID  string  `json:"warehouseId" binding:"required,object_id"`
	Delta        int     `json:"delta" binding:"required"`
	Reason       string  `json:"reason" binding:"required,max=500"`
	SellingPrice float64 `json:"sellingPrice,omitempty" binding:"omitempty,gte=0"`
}

// TransferStockCommand moves quantity units between warehouses
type TransferStockCommand struct {
	ProductID              string `json:"productId" binding:"required,object_id"`
	SourceWarehouseID      string `json:"sourceWarehouseId" binding:"required,object_id"`
	DestinationWarehouseID string `json:"destinationWarehouseId" binding:"required,object_id"`
	Quantity               int    `json:"quantity" binding:"required,gt=0"`
}

// ReceiveStockCommand books new goods into a warehouse as a fresh batch
type ReceiveStockCommand struct {
	ProductID           string     `json:"productId" binding:"required,object_id"`
	WarehouseID         string     `json:"warehouseId" binding:"required,object_id"`
	Quantity            int        `json:"quantity" binding:"required,gt=0"`
	UnitCost            float64    `json:"unitCost" binding:"gte=0"`
	ShippingCostPerUnit float64    `json:"shippingCostPerUnit" binding:"gte=0"`
	SellingPrice        float64    `json:"sellingPrice" binding:"gte=0"`
	ExpiryDate          *time.Time `json:"expiryDate,omitempty"`
	QualityGrade        string     `json:"qualityGrade,omitempty" binding:"omitempty,quality_grade"`
	Notes               string     `json:"notes,omitempty" binding:"max=500"`
}

// BatchPriceUpdate is one entry in a bulk price update
type BatchPriceUpdate struct {
	BatchID      string     `json:"batchId" binding:"required,object_id"`
	SellingPrice float64    `json:"sellingPrice" binding:"gte=0"`
	ExpiryDate   *time.Time `json:"expiryDate,omitempty"`
}

// UpdateBatchPricesCommand updates selling prices across batches in one call
type UpdateBatchPricesCommand struct {
	Updates []BatchPriceUpdate `json:"updates" binding:"required,min=1,dive"`
}

// RemoveProductCommand purges a product's batches from one warehouse
type RemoveProductCommand struct {
	ProductID   string `json:"productId" binding:"required,object_id"`
	WarehouseID string `json:"warehouseId" binding:"required,object_id"`
}

// RecordSaleCommand books a sale against a warehouse's stock
type RecordSaleCommand struct {
	ProductID   string  `json:"productId" binding:"required,object_id"`
	WarehouseID string  `json:"warehouseId" binding:"required,object_id"`
	Quantity    int     `json:"quantity" binding:"required,gt=0"`
	UnitPrice   float64 `json:"unitPrice" binding:"gte=0"`
	SoldBy      string  `json:"soldBy,omitempty"`
}

// ShipmentItemInput is one product line on a shipment request
type ShipmentItemInput struct {
	ProductID   string     `json:"productId" binding:"required,object_id" validate:"required,object_id"`
	ProductName string     `json:"productName,omitempty"`
	Quantity    int        `json:"quantity" binding:"required,gt=0" validate:"required,gt=0"`
	UnitPrice   float64    `json:"unitPrice" binding:"gte=0" validate:"gte=0"`
	Condition   string     `json:"condition,omitempty" binding:"omitempty,item_condition" validate:"omitempty,item_condition"`
	BatchNumber string     `json:"batchNumber,omitempty"`
	ExpiryDate  *time.Time `json:"expiryDate,omitempty"`
}

// CreateShipmentCommand registers a shipment between two warehouses
type CreateShipmentCommand struct {
	OriginWarehouseID      string              `json:"originWarehouseId" binding:"required,object_id"`
	DestinationWarehouseID string              `json:"destinationWarehouseId" binding:"required,object_id"`
	TransportID            string              `json:"transportId,omitempty" binding:"omitempty,object_id"`
	Items                  []ShipmentItemInput `json:"items" binding:"required,min=1,dive"`
	Priority               string              `json:"priority,omitempty" binding:"omitempty,shipment_priority"`
	ScheduledPickupDate    *time.Time          `json:"scheduledPickupDate,omitempty"`
	ScheduledDeliveryDate  *time.Time          `json:"scheduledDeliveryDate,omitempty"`
	TemperatureMin         *float64            `json:"temperatureMin,omitempty"`
	TemperatureMax         *float64            `json:"temperatureMax,omitempty"`
	Insured                bool                `json:"insured,omitempty"`
	InsuranceValue         float64             `json:"insuranceValue,omitempty" binding:"gte=0"`
}

// UpdateShipmentStatusCommand applies a lifecycle transition
type UpdateShipmentStatusCommand struct {
	ShipmentID string `json:"-"`
	Status     string `json:"status" binding:"required"`
	Notes      string `json:"notes,omitempty" binding:"max=1000"`
}

// UpdateShipmentLocationCommand records a route point
type UpdateShipmentLocationCommand struct {
	ShipmentID  string   `json:"-"`
	Latitude    *float64 `json:"latitude,omitempty" binding:"omitempty,gte=-90,lte=90"`
	Longitude   *float64 `json:"longitude,omitempty" binding:"omitempty,gte=-180,lte=180"`
	Address     string   `json:"address,omitempty" binding:"max=500"`
	Notes       string   `json:"notes,omitempty" binding:"max=500"`
	Temperature *float64 `json:"temperature,omitempty"`
}

// PerformQualityCheckCommand records an inspection on a shipment
type PerformQualityCheckCommand struct {
	ShipmentID  string   `json:"-"`
	PerformedBy string   `json:"performedBy" binding:"required"`
	Results     string   `json:"results,omitempty" binding:"max=2000"`
	Issues      []string `json:"issues,omitempty"`
	Approved    bool     `json:"approved"`
}

// ListShipmentsQuery narrows the shipment listing
type ListShipmentsQuery struct {
	Status      string `form:"status" binding:"omitempty"`
	WarehouseID string `form:"warehouseId" binding:"omitempty,object_id"`
	Priority    string `form:"priority" binding:"omitempty,shipment_priority"`
	Page        int64  `form:"page,default=1" binding:"gte=1"`
	PageSize    int64  `form:"pageSize,default=50" binding:"gte=1,lte=200"`
}
