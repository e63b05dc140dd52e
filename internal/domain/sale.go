package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Sale records an outbound sale fulfilled from a warehouse's batch stock.
// Cost figures are captured at sale time from the drained batches so margin
// reporting does not depend on later price edits.
type Sale struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	TenantID    string             `bson:"tenantId" json:"tenantId"`
	SaleNumber  string             `bson:"saleNumber" json:"saleNumber"`
	ProductID   string             `bson:"productId" json:"productId"`
	WarehouseID string             `bson:"warehouseId" json:"warehouseId"`
	Quantity    int                `bson:"quantity" json:"quantity"`
	UnitPrice   float64            `bson:"unitPrice" json:"unitPrice"`
	TotalPrice  float64            `bson:"totalPrice" json:"totalPrice"`

	// CostOfGoods is the landed cost of the units drained, FIFO order
	CostOfGoods float64 `bson:"costOfGoods" json:"costOfGoods"`

	SoldBy    string    `bson:"soldBy,omitempty" json:"soldBy,omitempty"`
	SoldAt    time.Time `bson:"soldAt" json:"soldAt"`
	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
}

// NewSale creates a sale record priced at unitPrice per unit
func NewSale(tenantID, productID, warehouseID, soldBy string, quantity int, unitPrice float64) (*Sale, error) {
	if quantity <= 0 {
		return nil, ErrInvalidQuantity
	}

	now := time.Now().UTC()
	return &Sale{
		ID:          primitive.NewObjectID(),
		TenantID:    tenantID,
		SaleNumber:  GenerateSaleNumber(),
		ProductID:   productID,
		WarehouseID: warehouseID,
		Quantity:    quantity,
		UnitPrice:   unitPrice,
		TotalPrice:  LineTotal(quantity, unitPrice),
		SoldBy:      soldBy,
		SoldAt:      now,
		CreatedAt:   now,
	}, nil
}

// GrossProfit is revenue minus the FIFO cost of goods, 2 decimals
func (s *Sale) GrossProfit() float64 {
	return Round2(s.TotalPrice - s.CostOfGoods)
}
