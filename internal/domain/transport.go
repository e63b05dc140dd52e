package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TransportStatus tracks vehicle availability
type TransportStatus string

const (
	TransportAvailable   TransportStatus = "available"
	TransportInUse       TransportStatus = "in-use"
	TransportMaintenance TransportStatus = "maintenance"
)

// Transport is a vehicle assignable to shipments. Assignment flips it to
// in-use; delivery or cancellation releases it back to available.
type Transport struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	TenantID     string             `bson:"tenantId" json:"tenantId"`
	Identifier   string             `bson:"identifier" json:"identifier"`
	VehicleType  string             `bson:"vehicleType" json:"vehicleType"`
	Capacity     float64            `bson:"capacity,omitempty" json:"capacity,omitempty"`
	Refrigerated bool               `bson:"refrigerated" json:"refrigerated"`
	Status       TransportStatus    `bson:"status" json:"status"`
	DelFlag      bool               `bson:"del_flag" json:"-"`
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// NewTransport creates an available vehicle
func NewTransport(tenantID, identifier, vehicleType string, refrigerated bool) *Transport {
	now := time.Now().UTC()
	return &Transport{
		ID:           primitive.NewObjectID(),
		TenantID:     tenantID,
		Identifier:   identifier,
		VehicleType:  vehicleType,
		Refrigerated: refrigerated,
		Status:       TransportAvailable,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// Assignable reports whether the vehicle can take a new shipment
func (t *Transport) Assignable() bool {
	return t.Status == TransportAvailable
}
