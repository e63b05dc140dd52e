package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Product is the catalog entry for goods tracked across warehouses. Stock is
// a denormalized counter maintained in the same transaction as the batch
// writes that change it.
type Product struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	TenantID    string             `bson:"tenantId" json:"tenantId"`
	SKU         string             `bson:"sku" json:"sku"`
	Name        string             `bson:"name" json:"name"`
	Description string             `bson:"description,omitempty" json:"description,omitempty"`
	Category    string             `bson:"category,omitempty" json:"category,omitempty"`
	Unit        string             `bson:"unit,omitempty" json:"unit,omitempty"`

	// Stock is the total across all warehouses; per-warehouse numbers come
	// from the batch ledger.
	Stock int `bson:"stock" json:"stock"`

	ReorderPoint int       `bson:"reorderPoint,omitempty" json:"reorderPoint,omitempty"`
	DelFlag      bool      `bson:"del_flag" json:"-"`
	CreatedAt    time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time `bson:"updatedAt" json:"updatedAt"`
}

// NewProduct creates a catalog entry with zero stock
func NewProduct(tenantID, sku, name, category, unit string) *Product {
	now := time.Now().UTC()
	return &Product{
		ID:        primitive.NewObjectID(),
		TenantID:  tenantID,
		SKU:       sku,
		Name:      name,
		Category:  category,
		Unit:      unit,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// BelowReorderPoint reports whether total stock has fallen to the reorder level
func (p *Product) BelowReorderPoint() bool {
	return p.ReorderPoint > 0 && p.Stock <= p.ReorderPoint
}
