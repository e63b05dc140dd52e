package application

import (
	"github.com/opsdash/platform/internal/domain"
)

// ToStockBatchDTO converts a batch to its API representation
func ToStockBatchDTO(b *domain.StockBatch) StockBatchDTO {
	return StockBatchDTO{
		ID:                  b.ID.Hex(),
		ProductID:           b.ProductID,
		WarehouseID:         b.WarehouseID,
		BatchNumber:         b.BatchNumber,
		Quantity:            b.Quantity,
		Remaining:           b.Remaining,
		UnitCost:            b.UnitCost,
		ShippingCostPerUnit: b.ShippingCostPerUnit,
		SellingPrice:        b.SellingPrice,
		MarginPercent:       b.Margin(),
		ExpiryDate:          b.ExpiryDate,
		QualityGrade:        string(b.QualityGrade),
		Depleted:            b.Depleted,
		Notes:               b.Notes,
		CreatedAt:           b.CreatedAt,
		UpdatedAt:           b.UpdatedAt,
	}
}

// ToStockBatchDTOs converts a batch list
func ToStockBatchDTOs(batches domain.BatchList) []StockBatchDTO {
	dtos := make([]StockBatchDTO, 0, len(batches))
	for _, b := range batches {
		dtos = append(dtos, ToStockBatchDTO(b))
	}
	return dtos
}

// ToSaleDTO converts a sale to its API representation
func ToSaleDTO(s *domain.Sale) SaleDTO {
	return SaleDTO{
		ID:          s.ID.Hex(),
		SaleNumber:  s.SaleNumber,
		ProductID:   s.ProductID,
		WarehouseID: s.WarehouseID,
		Quantity:    s.Quantity,
		UnitPrice:   s.UnitPrice,
		TotalPrice:  s.TotalPrice,
		CostOfGoods: s.CostOfGoods,
		GrossProfit: s.GrossProfit(),
		SoldBy:      s.SoldBy,
		SoldAt:      s.SoldAt,
	}
}

func toLocationDTO(l *domain.LocationUpdate) *LocationDTO {
	if l == nil {
		return nil
	}
	return &LocationDTO{
		Latitude:   l.Latitude,
		Longitude:  l.Longitude,
		Address:    l.Address,
		Notes:      l.Notes,
		RecordedAt: l.RecordedAt,
	}
}

// ToShipmentDTO converts a shipment to its API representation
func ToShipmentDTO(s *domain.Shipment) ShipmentDTO {
	items := make([]ShipmentItemDTO, 0, len(s.Items))
	for _, it := range s.Items {
		items = append(items, ShipmentItemDTO{
			ProductID:   it.ProductID,
			ProductName: it.ProductName,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
			TotalValue:  it.TotalValue,
			Condition:   string(it.Condition),
			BatchNumber: it.BatchNumber,
			ExpiryDate:  it.ExpiryDate,
		})
	}

	history := make([]LocationDTO, 0, len(s.LocationHistory))
	for i := range s.LocationHistory {
		history = append(history, *toLocationDTO(&s.LocationHistory[i]))
	}

	transitions := domain.AllowedTransitions(s.Status)
	allowed := make([]string, 0, len(transitions))
	for _, t := range transitions {
		allowed = append(allowed, string(t))
	}

	dto := ShipmentDTO{
		ID:                     s.ID.Hex(),
		ShipmentNumber:         s.ShipmentNumber,
		TrackingNumber:         s.TrackingNumber,
		OriginWarehouseID:      s.OriginWarehouseID,
		DestinationWarehouseID: s.DestinationWarehouseID,
		TransportID:            s.TransportID,
		Items:                  items,
		TotalValue:             s.TotalValue,
		Status:                 string(s.Status),
		Priority:               string(s.Priority),
		AllowedTransitions:     allowed,
		ScheduledPickupDate:    s.ScheduledPickupDate,
		ScheduledDeliveryDate:  s.ScheduledDeliveryDate,
		ActualPickupDate:       s.ActualPickupDate,
		ActualDeliveryDate:     s.ActualDeliveryDate,
		CurrentLocation:        toLocationDTO(s.CurrentLocation),
		LocationHistory:        history,
		CurrentTemperature:     s.CurrentTemperature,
		TemperatureBreached:    s.TemperatureBreached(),
		Insured:                s.Insured,
		InsuranceValue:         s.InsuranceValue,
		DeliveryNotes:          s.DeliveryNotes,
		CreatedAt:              s.CreatedAt,
		UpdatedAt:              s.UpdatedAt,
	}

	if s.QualityCheck != nil {
		dto.QualityCheck = &QualityCheckDTO{
			PerformedBy: s.QualityCheck.PerformedBy,
			Results:     s.QualityCheck.Results,
			Issues:      s.QualityCheck.Issues,
			Approved:    s.QualityCheck.Approved,
			PerformedAt: s.QualityCheck.PerformedAt,
		}
	}

	return dto
}

// ToShipmentDTOs converts a shipment list
func ToShipmentDTOs(shipments []*domain.Shipment) []ShipmentDTO {
	dtos := make([]ShipmentDTO, 0, len(shipments))
	for _, s := range shipments {
		dtos = append(dtos, ToShipmentDTO(s))
	}
	return dtos
}
