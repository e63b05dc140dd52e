package application

import "time"

// StockBatchDTO is the API representation of a batch
type StockBatchDTO struct {
	ID                  string     `json:"id"`
	ProductID           string     `json:"productId"`
	WarehouseID         string     `json:"warehouseId"`
	BatchNumber         string     `json:"batchNumber"`
	Quantity            int        `json:"quantity"`
	Remaining           int        `json:"remaining"`
	UnitCost            float64    `json:"unitCost"`
	ShippingCostPerUnit float64    `json:"shippingCostPerUnit"`
	SellingPrice        float64    `json:"sellingPrice"`
	MarginPercent       float64    `json:"marginPercent"`
	ExpiryDate          *time.Time `json:"expiryDate,omitempty"`
	QualityGrade        string     `json:"qualityGrade"`
	Depleted            bool       `json:"depleted"`
	Notes               string     `json:"notes,omitempty"`
	CreatedAt           time.Time  `json:"createdAt"`
	UpdatedAt           time.Time  `json:"updatedAt"`
}

// WarehouseStockDTO summarizes one product's stock in a warehouse
type WarehouseStockDTO struct {
	ProductID           string          `json:"productId"`
	ProductName         string          `json:"productName,omitempty"`
	SKU                 string          `json:"sku,omitempty"`
	TotalRemaining      int             `json:"totalRemaining"`
	AverageSellingPrice float64         `json:"averageSellingPrice"`
	Batches             []StockBatchDTO `json:"batches"`
}

// AdjustmentResultDTO reports the outcome of a manual stock correction
type AdjustmentResultDTO struct {
	ProductID      string `json:"productId"`
	WarehouseID    string `json:"warehouseId"`
	Delta          int    `json:"delta"`
	UnitsApplied   int    `json:"unitsApplied"`
	BatchesTouched int    `json:"batchesTouched"`
	NewTotalStock  int    `json:"newTotalStock"`
}

// TransferResultDTO reports a completed warehouse transfer
type TransferResultDTO struct {
	ProductID              string `json:"productId"`
	SourceWarehouseID      string `json:"sourceWarehouseId"`
	DestinationWarehouseID string `json:"destinationWarehouseId"`
	Quantity               int    `json:"quantity"`
	BatchesDrained         int    `json:"batchesDrained"`
	BatchesCreated         int    `json:"batchesCreated"`
}

// PriceUpdateResultDTO reports a bulk price update
type PriceUpdateResultDTO struct {
	Updated int      `json:"updated"`
	Failed  int      `json:"failed"`
	Errors  []string `json:"errors,omitempty"`
}

// RemovalResultDTO reports a product purge from a warehouse
type RemovalResultDTO struct {
	ProductID    string `json:"productId"`
	WarehouseID  string `json:"warehouseId"`
	UnitsRemoved int    `json:"unitsRemoved"`
}

// SaleDTO is the API representation of a sale
type SaleDTO struct {
	ID          string    `json:"id"`
	SaleNumber  string    `json:"saleNumber"`
	ProductID   string    `json:"productId"`
	WarehouseID string    `json:"warehouseId"`
	Quantity    int       `json:"quantity"`
	UnitPrice   float64   `json:"unitPrice"`
	TotalPrice  float64   `json:"totalPrice"`
	CostOfGoods float64   `json:"costOfGoods"`
	GrossProfit float64   `json:"grossProfit"`
	SoldBy      string    `json:"soldBy,omitempty"`
	SoldAt      time.Time `json:"soldAt"`
}

// ShipmentItemDTO is one line on a shipment response
type ShipmentItemDTO struct {
	ProductID   string     `json:"productId"`
	ProductName string     `json:"productName,omitempty"`
	Quantity    int        `json:"quantity"`
	UnitPrice   float64    `json:"unitPrice"`
	TotalValue  float64    `json:"totalValue"`
	Condition   string     `json:"condition"`
	BatchNumber string     `json:"batchNumber,omitempty"`
	ExpiryDate  *time.Time `json:"expiryDate,omitempty"`
}

// LocationDTO is a recorded route point
type LocationDTO struct {
	Latitude   *float64  `json:"latitude,omitempty"`
	Longitude  *float64  `json:"longitude,omitempty"`
	Address    string    `json:"address,omitempty"`
	Notes      string    `json:"notes,omitempty"`
	RecordedAt time.Time `json:"recordedAt"`
}

// QualityCheckDTO is the latest inspection on a shipment
type QualityCheckDTO struct {
	PerformedBy string    `json:"performedBy"`
	Results     string    `json:"results,omitempty"`
	Issues      []string  `json:"issues,omitempty"`
	Approved    bool      `json:"approved"`
	PerformedAt time.Time `json:"performedAt"`
}

// ShipmentDTO is the API representation of a shipment
type ShipmentDTO struct {
	ID                     string            `json:"id"`
	ShipmentNumber         string            `json:"shipmentNumber"`
	TrackingNumber         string            `json:"trackingNumber"`
	OriginWarehouseID      string            `json:"originWarehouseId"`
	DestinationWarehouseID string            `json:"destinationWarehouseId"`
	TransportID            string            `json:"transportId,omitempty"`
	Items                  []ShipmentItemDTO `json:"items"`
	TotalValue             float64           `json:"totalValue"`
	Status                 string            `json:"status"`
	Priority               string            `json:"priority"`
	AllowedTransitions     []string          `json:"allowedTransitions"`
	ScheduledPickupDate    *time.Time        `json:"scheduledPickupDate,omitempty"`
	ScheduledDeliveryDate  *time.Time        `json:"scheduledDeliveryDate,omitempty"`
	ActualPickupDate       *time.Time        `json:"actualPickupDate,omitempty"`
	ActualDeliveryDate     *time.Time        `json:"actualDeliveryDate,omitempty"`
	CurrentLocation        *LocationDTO      `json:"currentLocation,omitempty"`
	LocationHistory        []LocationDTO     `json:"locationHistory,omitempty"`
	CurrentTemperature     *float64          `json:"currentTemperature,omitempty"`
	TemperatureBreached    bool              `json:"temperatureBreached"`
	Insured                bool              `json:"insured"`
	InsuranceValue         float64           `json:"insuranceValue,omitempty"`
	QualityCheck           *QualityCheckDTO  `json:"qualityCheck,omitempty"`
	DeliveryNotes          string            `json:"deliveryNotes,omitempty"`
	CreatedAt              time.Time         `json:"createdAt"`
	UpdatedAt              time.Time         `json:"updatedAt"`
}

// TurnoverEntryDTO is one product's turnover over the analysis window
type TurnoverEntryDTO struct {
	ProductID    string  `json:"productId"`
	ProductName  string  `json:"productName,omitempty"`
	UnitsSold    int     `json:"unitsSold"`
	CurrentStock int     `json:"currentStock"`
	TurnoverRate float64 `json:"turnoverRate"`
	SlowMoving   bool    `json:"slowMoving"`
}

// ProfitabilityEntryDTO is one product's margin summary
type ProfitabilityEntryDTO struct {
	ProductID     string  `json:"productId"`
	ProductName   string  `json:"productName,omitempty"`
	Revenue       float64 `json:"revenue"`
	CostOfGoods   float64 `json:"costOfGoods"`
	GrossProfit   float64 `json:"grossProfit"`
	MarginPercent float64 `json:"marginPercent"`
}

// ExpiryAlertDTO is one batch nearing expiry
type ExpiryAlertDTO struct {
	BatchID     string    `json:"batchId"`
	BatchNumber string    `json:"batchNumber"`
	ProductID   string    `json:"productId"`
	WarehouseID string    `json:"warehouseId"`
	Remaining   int       `json:"remaining"`
	ExpiryDate  time.Time `json:"expiryDate"`
	DaysLeft    int       `json:"daysLeft"`
	Severity    string    `json:"severity"`
}
