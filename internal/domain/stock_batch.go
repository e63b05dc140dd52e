package domain

import (
	"fmt"
	"sort"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// QualityGrade classifies the condition of goods in a batch
type QualityGrade string

const (
	GradeA QualityGrade = "A"
	GradeB QualityGrade = "B"
	GradeC QualityGrade = "C"
)

// StockBatch is a lot of a product received into a warehouse. Consumption
// drains batches oldest-first; a batch is never deleted by consumption, only
// marked depleted so the cost history stays queryable.
type StockBatch struct {
	ID                  primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	TenantID            string             `bson:"tenantId" json:"tenantId"`
	ProductID           string             `bson:"productId" json:"productId"`
	WarehouseID         string             `bson:"warehouseId" json:"warehouseId"`
	BatchNumber         string             `bson:"batchNumber" json:"batchNumber"`
	Quantity            int                `bson:"quantity" json:"quantity"`
	Remaining           int                `bson:"remaining" json:"remaining"`
	UnitCost            float64            `bson:"unitCost" json:"unitCost"`
	ShippingCostPerUnit float64            `bson:"shippingCostPerUnit" json:"shippingCostPerUnit"`
	SellingPrice        float64            `bson:"sellingPrice" json:"sellingPrice"`
	ExpiryDate          *time.Time         `bson:"expiryDate,omitempty" json:"expiryDate,omitempty"`
	QualityGrade        QualityGrade       `bson:"qualityGrade" json:"qualityGrade"`
	Depleted            bool               `bson:"depleted" json:"depleted"`
	Notes               string             `bson:"notes,omitempty" json:"notes,omitempty"`

	// Version is the optimistic concurrency token; every persisted mutation
	// increments it and conditions on the previously read value.
	Version int64 `bson:"version" json:"version"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

// NewStockBatch creates a batch for goods received into a warehouse
func NewStockBatch(tenantID, productID, warehouseID string, quantity int, unitCost, shippingCostPerUnit, sellingPrice float64) (*StockBatch, error) {
	if quantity <= 0 {
		return nil, ErrInvalidQuantity
	}
	if sellingPrice < 0 {
		return nil, ErrNegativeSellingPrice
	}

	now := time.Now().UTC()
	return &StockBatch{
		ID:                  primitive.NewObjectID(),
		TenantID:            tenantID,
		ProductID:           productID,
		WarehouseID:         warehouseID,
		BatchNumber:         GenerateBatchNumber(),
		Quantity:            quantity,
		Remaining:           quantity,
		UnitCost:            unitCost,
		ShippingCostPerUnit: shippingCostPerUnit,
		SellingPrice:        sellingPrice,
		QualityGrade:        GradeA,
		Version:             1,
		CreatedAt:           now,
		UpdatedAt:           now,
	}, nil
}

// NewAdjustmentBatch creates a batch for a positive manual stock correction.
// Adjustment lots carry no cost basis and default to a one-year expiry so
// they eventually surface in expiry reviews.
func NewAdjustmentBatch(tenantID, productID, warehouseID string, quantity int, sellingPrice float64, reason string) (*StockBatch, error) {
	batch, err := NewStockBatch(tenantID, productID, warehouseID, quantity, 0, 0, sellingPrice)
	if err != nil {
		return nil, err
	}
	expiry := batch.CreatedAt.AddDate(1, 0, 0)
	batch.ExpiryDate = &expiry
	batch.Notes = reason
	return batch, nil
}

// MirrorTo clones this batch into the destination warehouse for the quantity
// taken from it during a transfer. The clone keeps the source's cost basis and
// price so FIFO valuation survives the move.
func (b *StockBatch) MirrorTo(destinationWarehouseID string, quantity int) *StockBatch {
	now := time.Now().UTC()
	return &StockBatch{
		ID:                  primitive.NewObjectID(),
		TenantID:            b.TenantID,
		ProductID:           b.ProductID,
		WarehouseID:         destinationWarehouseID,
		BatchNumber:         b.BatchNumber,
		Quantity:            quantity,
		Remaining:           quantity,
		UnitCost:            b.UnitCost,
		ShippingCostPerUnit: b.ShippingCostPerUnit,
		SellingPrice:        b.SellingPrice,
		ExpiryDate:          b.ExpiryDate,
		QualityGrade:        b.QualityGrade,
		Version:             1,
		CreatedAt:           now,
		UpdatedAt:           now,
	}
}

// Consume drains quantity units from the batch, marking it depleted when the
// remainder reaches zero
func (b *StockBatch) Consume(quantity int) error {
	if quantity <= 0 {
		return ErrInvalidQuantity
	}
	if b.Depleted || b.Remaining == 0 {
		return ErrBatchDepleted
	}
	if quantity > b.Remaining {
		return fmt.Errorf("%w: batch %s has %d remaining, requested %d", ErrInsufficientStock, b.BatchNumber, b.Remaining, quantity)
	}

	b.Remaining -= quantity
	if b.Remaining == 0 {
		b.Depleted = true
	}
	b.UpdatedAt = time.Now().UTC()
	return nil
}

// Available reports whether the batch still holds stock
func (b *StockBatch) Available() bool {
	return !b.Depleted && b.Remaining > 0
}

// Margin is the batch's margin percent over its landed cost
func (b *StockBatch) Margin() float64 {
	return MarginPercent(b.SellingPrice, b.UnitCost, b.ShippingCostPerUnit)
}

// ExpiresWithin reports whether the batch has an expiry date inside the window
func (b *StockBatch) ExpiresWithin(days int, now time.Time) bool {
	if b.ExpiryDate == nil {
		return false
	}
	return !b.ExpiryDate.After(now.AddDate(0, 0, days))
}

// BatchList is a set of batches for one product in one warehouse
type BatchList []*StockBatch

// SortFIFO orders batches oldest-first; ties break on ID so the order is stable
func (l BatchList) SortFIFO() {
	sort.SliceStable(l, func(i, j int) bool {
		if l[i].CreatedAt.Equal(l[j].CreatedAt) {
			return l[i].ID.Hex() < l[j].ID.Hex()
		}
		return l[i].CreatedAt.Before(l[j].CreatedAt)
	})
}

// TotalRemaining sums the undrained units across the list
func (l BatchList) TotalRemaining() int {
	total := 0
	for _, b := range l {
		if b.Available() {
			total += b.Remaining
		}
	}
	return total
}

// ConsumptionStep records one batch drain inside a consumption plan
type ConsumptionStep struct {
	Batch *StockBatch
	Take  int
}

// PlanConsumption walks the list oldest-first and returns the drains needed to
// satisfy quantity. When the list cannot cover the full quantity the returned
// shortfall is positive and the plan drains everything available; callers
// decide whether partial drain is acceptable.
func (l BatchList) PlanConsumption(quantity int) ([]ConsumptionStep, int) {
	l.SortFIFO()

	var plan []ConsumptionStep
	remaining := quantity
	for _, b := range l {
		if remaining == 0 {
			break
		}
		if !b.Available() {
			continue
		}

		take := b.Remaining
		if take > remaining {
			take = remaining
		}
		plan = append(plan, ConsumptionStep{Batch: b, Take: take})
		remaining -= take
	}

	return plan, remaining
}

// WeightedAverageSellingPrice averages selling price over remaining units
func (l BatchList) WeightedAverageSellingPrice() float64 {
	totalUnits := 0
	totalValue := 0.0
	for _, b := range l {
		if !b.Available() {
			continue
		}
		totalUnits += b.Remaining
		totalValue += float64(b.Remaining) * b.SellingPrice
	}
	if totalUnits == 0 {
		return 0
	}
	return Round2(totalValue / float64(totalUnits))
}
