package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Warehouse is a physical stock location belonging to a tenant
type Warehouse struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	TenantID  string             `bson:"tenantId" json:"tenantId"`
	Code      string             `bson:"code" json:"code"`
	Name      string             `bson:"name" json:"name"`
	Address   string             `bson:"address,omitempty" json:"address,omitempty"`
	City      string             `bson:"city,omitempty" json:"city,omitempty"`
	Country   string             `bson:"country,omitempty" json:"country,omitempty"`
	Capacity  int                `bson:"capacity,omitempty" json:"capacity,omitempty"`
	Active    bool               `bson:"active" json:"active"`
	DelFlag   bool               `bson:"del_flag" json:"-"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// NewWarehouse creates an active warehouse
func NewWarehouse(tenantID, code, name, city string) *Warehouse {
	now := time.Now().UTC()
	return &Warehouse{
		ID:        primitive.NewObjectID(),
		TenantID:  tenantID,
		Code:      code,
		Name:      name,
		City:      city,
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}
}
