package domain

import (
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ShipmentStatus is the lifecycle state of a shipment
type ShipmentStatus string

const (
	ShipmentPending   ShipmentStatus = "pending"
	ShipmentInTransit ShipmentStatus = "in-transit"
	ShipmentDelivered ShipmentStatus = "delivered"
	ShipmentCancelled ShipmentStatus = "cancelled"
	ShipmentDelayed   ShipmentStatus = "delayed"
	ShipmentDamaged   ShipmentStatus = "damaged"
)

// ShipmentPriority orders dispatch urgency
type ShipmentPriority string

const (
	PriorityLow    ShipmentPriority = "low"
	PriorityMedium ShipmentPriority = "medium"
	PriorityHigh   ShipmentPriority = "high"
	PriorityUrgent ShipmentPriority = "urgent"
)

// ItemCondition tracks the state of a line item's goods
type ItemCondition string

const (
	ConditionGood    ItemCondition = "good"
	ConditionDamaged ItemCondition = "damaged"
	ConditionExpired ItemCondition = "expired"
)

// shipmentTransitions is the full state machine. Delivered and cancelled are
// terminal; a delayed or damaged shipment can resume transit or be cancelled.
var shipmentTransitions = map[ShipmentStatus][]ShipmentStatus{
	ShipmentPending:   {ShipmentInTransit, ShipmentCancelled},
	ShipmentInTransit: {ShipmentDelivered, ShipmentDelayed, ShipmentDamaged, ShipmentCancelled},
	ShipmentDelayed:   {ShipmentInTransit, ShipmentDelivered, ShipmentDamaged, ShipmentCancelled},
	ShipmentDamaged:   {ShipmentInTransit, ShipmentCancelled},
	ShipmentDelivered: {},
	ShipmentCancelled: {},
}

// CanTransition reports whether the status change is allowed
func CanTransition(from, to ShipmentStatus) bool {
	for _, allowed := range shipmentTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// AllowedTransitions lists the statuses reachable from the given one
func AllowedTransitions(from ShipmentStatus) []ShipmentStatus {
	return shipmentTransitions[from]
}

// ShipmentItem is one product line on a shipment
type ShipmentItem struct {
	ProductID   string        `bson:"productId" json:"productId"`
	ProductName string        `bson:"productName,omitempty" json:"productName,omitempty"`
	Quantity    int           `bson:"quantity" json:"quantity"`
	UnitPrice   float64       `bson:"unitPrice" json:"unitPrice"`
	TotalValue  float64       `bson:"totalValue" json:"totalValue"`
	Condition   ItemCondition `bson:"condition" json:"condition"`
	BatchNumber string        `bson:"batchNumber,omitempty" json:"batchNumber,omitempty"`
	ExpiryDate  *time.Time    `bson:"expiryDate,omitempty" json:"expiryDate,omitempty"`
}

// LocationUpdate is a point on the shipment's route
type LocationUpdate struct {
	Latitude   *float64  `bson:"latitude,omitempty" json:"latitude,omitempty"`
	Longitude  *float64  `bson:"longitude,omitempty" json:"longitude,omitempty"`
	Address    string    `bson:"address,omitempty" json:"address,omitempty"`
	Notes      string    `bson:"notes,omitempty" json:"notes,omitempty"`
	RecordedAt time.Time `bson:"recordedAt" json:"recordedAt"`
}

// TemperatureRange is the allowed band for temperature-controlled cargo
type TemperatureRange struct {
	Min float64 `bson:"min" json:"min"`
	Max float64 `bson:"max" json:"max"`
}

// QualityCheck records the inspection performed on a shipment. Re-running an
// inspection overwrites the previous result; only the latest check is kept.
type QualityCheck struct {
	PerformedBy string    `bson:"performedBy" json:"performedBy"`
	Results     string    `bson:"results,omitempty" json:"results,omitempty"`
	Issues      []string  `bson:"issues,omitempty" json:"issues,omitempty"`
	Approved    bool      `bson:"approved" json:"approved"`
	PerformedAt time.Time `bson:"performedAt" json:"performedAt"`
}

// Shipment is a movement of goods between two warehouses on an assigned
// vehicle. It carries its route history, the latest quality inspection and a
// soft-delete flag; reads always filter deleted shipments out.
type Shipment struct {
	ID                     primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	TenantID               string             `bson:"tenantId" json:"tenantId"`
	ShipmentNumber         string             `bson:"shipmentNumber" json:"shipmentNumber"`
	TrackingNumber         string             `bson:"trackingNumber" json:"trackingNumber"`
	OriginWarehouseID      string             `bson:"originWarehouseId" json:"originWarehouseId"`
	DestinationWarehouseID string             `bson:"destinationWarehouseId" json:"destinationWarehouseId"`
	TransportID            string             `bson:"transportId,omitempty" json:"transportId,omitempty"`
	Items                  []ShipmentItem     `bson:"items" json:"items"`
	TotalValue             float64            `bson:"totalValue" json:"totalValue"`
	Status                 ShipmentStatus     `bson:"status" json:"status"`
	Priority               ShipmentPriority   `bson:"priority" json:"priority"`
	ScheduledPickupDate    *time.Time         `bson:"scheduledPickupDate,omitempty" json:"scheduledPickupDate,omitempty"`
	ScheduledDeliveryDate  *time.Time         `bson:"scheduledDeliveryDate,omitempty" json:"scheduledDeliveryDate,omitempty"`
	ActualPickupDate       *time.Time         `bson:"actualPickupDate,omitempty" json:"actualPickupDate,omitempty"`
	ActualDeliveryDate     *time.Time         `bson:"actualDeliveryDate,omitempty" json:"actualDeliveryDate,omitempty"`
	CurrentLocation        *LocationUpdate    `bson:"currentLocation,omitempty" json:"currentLocation,omitempty"`
	LocationHistory        []LocationUpdate   `bson:"locationHistory,omitempty" json:"locationHistory,omitempty"`
	TemperatureRange       *TemperatureRange  `bson:"temperatureRange,omitempty" json:"temperatureRange,omitempty"`
	CurrentTemperature     *float64           `bson:"currentTemperature,omitempty" json:"currentTemperature,omitempty"`
	Insured                bool               `bson:"insured" json:"insured"`
	InsuranceValue         float64            `bson:"insuranceValue,omitempty" json:"insuranceValue,omitempty"`
	QualityCheck           *QualityCheck      `bson:"qualityCheck,omitempty" json:"qualityCheck,omitempty"`
	DeliveryNotes          string             `bson:"deliveryNotes,omitempty" json:"deliveryNotes,omitempty"`
	DelFlag                bool               `bson:"del_flag" json:"-"`
	CreatedAt              time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt              time.Time          `bson:"updatedAt" json:"updatedAt"`

	// Events accumulated during this in-memory lifecycle; published after commit
	events []DomainEvent
}

// NewShipment creates a pending shipment, computing line and total values
// from the submitted quantities and prices
func NewShipment(tenantID, originWarehouseID, destinationWarehouseID, transportID string, items []ShipmentItem, priority ShipmentPriority) (*Shipment, error) {
	if len(items) == 0 {
		return nil, ErrEmptyShipmentItems
	}
	if originWarehouseID == destinationWarehouseID {
		return nil, ErrSameWarehouse
	}

	totals := make([]float64, 0, len(items))
	for i := range items {
		if items[i].Quantity <= 0 {
			return nil, fmt.Errorf("%w: item %s", ErrInvalidQuantity, items[i].ProductID)
		}
		if items[i].Condition == "" {
			items[i].Condition = ConditionGood
		}
		items[i].TotalValue = LineTotal(items[i].Quantity, items[i].UnitPrice)
		totals = append(totals, items[i].TotalValue)
	}

	if priority == "" {
		priority = PriorityMedium
	}

	now := time.Now().UTC()
	s := &Shipment{
		ID:                     primitive.NewObjectID(),
		TenantID:               tenantID,
		ShipmentNumber:         GenerateShipmentNumber(),
		TrackingNumber:         GenerateTrackingNumber(),
		OriginWarehouseID:      originWarehouseID,
		DestinationWarehouseID: destinationWarehouseID,
		TransportID:            transportID,
		Items:                  items,
		TotalValue:             SumTotals(totals...),
		Status:                 ShipmentPending,
		Priority:               priority,
		CreatedAt:              now,
		UpdatedAt:              now,
	}

	s.addEvent(ShipmentCreatedEvent{
		ShipmentID:             s.ID.Hex(),
		TenantID:               tenantID,
		ShipmentNumber:         s.ShipmentNumber,
		OriginWarehouseID:      originWarehouseID,
		DestinationWarehouseID: destinationWarehouseID,
		TotalValue:             s.TotalValue,
		Priority:               string(priority),
		OccurredAt:             now,
	})

	return s, nil
}

// ChangeStatus applies a lifecycle transition. Moving to in-transit stamps the
// actual pickup date (first time only); delivering stamps the delivery date
// and stores the delivery notes.
func (s *Shipment) ChangeStatus(to ShipmentStatus, notes string, now time.Time) error {
	if !CanTransition(s.Status, to) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidStatusTransition, s.Status, to)
	}

	from := s.Status
	s.Status = to
	s.UpdatedAt = now

	switch to {
	case ShipmentInTransit:
		if s.ActualPickupDate == nil {
			t := now
			s.ActualPickupDate = &t
		}
	case ShipmentDelivered:
		t := now
		s.ActualDeliveryDate = &t
		if notes != "" {
			s.DeliveryNotes = notes
		}
	}

	s.addEvent(ShipmentStatusChangedEvent{
		ShipmentID:     s.ID.Hex(),
		TenantID:       s.TenantID,
		ShipmentNumber: s.ShipmentNumber,
		FromStatus:     string(from),
		ToStatus:       string(to),
		Notes:          notes,
		OccurredAt:     now,
	})

	return nil
}

// RecordLocation appends a route point and promotes it to the current location
func (s *Shipment) RecordLocation(update LocationUpdate) {
	if update.RecordedAt.IsZero() {
		update.RecordedAt = time.Now().UTC()
	}

	s.LocationHistory = append(s.LocationHistory, update)
	s.CurrentLocation = &update
	s.UpdatedAt = update.RecordedAt

	s.addEvent(ShipmentLocationUpdatedEvent{
		ShipmentID:     s.ID.Hex(),
		TenantID:       s.TenantID,
		ShipmentNumber: s.ShipmentNumber,
		Address:        update.Address,
		OccurredAt:     update.RecordedAt,
	})
}

// PerformQualityCheck records an inspection, replacing any previous result
func (s *Shipment) PerformQualityCheck(performedBy, results string, issues []string, approved bool, now time.Time) {
	s.QualityCheck = &QualityCheck{
		PerformedBy: performedBy,
		Results:     results,
		Issues:      issues,
		Approved:    approved,
		PerformedAt: now,
	}
	s.UpdatedAt = now

	s.addEvent(QualityCheckPerformedEvent{
		ShipmentID:     s.ID.Hex(),
		TenantID:       s.TenantID,
		ShipmentNumber: s.ShipmentNumber,
		PerformedBy:    performedBy,
		Approved:       approved,
		IssueCount:     len(issues),
		OccurredAt:     now,
	})
}

// MarkDeleted soft-deletes the shipment
func (s *Shipment) MarkDeleted(now time.Time) {
	s.DelFlag = true
	s.UpdatedAt = now
}

// Terminal reports whether the shipment has reached a final status
func (s *Shipment) Terminal() bool {
	return len(shipmentTransitions[s.Status]) == 0
}

// TemperatureBreached reports whether the last reading fell outside the band
func (s *Shipment) TemperatureBreached() bool {
	if s.TemperatureRange == nil || s.CurrentTemperature == nil {
		return false
	}
	t := *s.CurrentTemperature
	return t < s.TemperatureRange.Min || t > s.TemperatureRange.Max
}

func (s *Shipment) addEvent(e DomainEvent) {
	s.events = append(s.events, e)
}

// Events returns the accumulated domain events
func (s *Shipment) Events() []DomainEvent {
	return s.events
}

// ClearEvents drops accumulated events after they have been published
func (s *Shipment) ClearEvents() {
	s.events = nil
}
