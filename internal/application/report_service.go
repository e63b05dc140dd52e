package application

import (
	"bytes"
	"context"
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/opsdash/platform/pkg/logging"
)

// ReportService renders dashboard data as xlsx workbooks for the download
// buttons. Sheets are built from the same service reads the JSON endpoints
// use, so figures always match what the dashboard shows.
type ReportService struct {
	stock     *StockService
	analytics *AnalyticsService
	logger    *logging.Logger
}

// NewReportService creates a ReportService
func NewReportService(stock *StockService, analytics *AnalyticsService, logger *logging.Logger) *ReportService {
	return &ReportService{
		stock:     stock,
		analytics: analytics,
		logger:    logger.WithComponent("report-service"),
	}
}

// WarehouseStockReport renders one warehouse's stock as an xlsx workbook
func (s *ReportService) WarehouseStockReport(ctx context.Context, tenantID, warehouseID string) ([]byte, error) {
	entries, err := s.stock.GetWarehouseStock(ctx, tenantID, warehouseID)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	sheet := f.GetSheetName(f.GetActiveSheetIndex())
	_ = f.SetSheetName(sheet, "Warehouse Stock")
	sheet = "Warehouse Stock"

	header := []interface{}{
		"product_id", "product_name", "sku", "batch_number", "quantity",
		"remaining", "unit_cost", "shipping_cost_per_unit", "selling_price",
		"margin_percent", "quality_grade", "expiry_date", "created_at",
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return nil, fmt.Errorf("failed to write header row: %w", err)
	}

	row := 2
	for _, entry := range entries {
		for _, b := range entry.Batches {
			expiry := ""
			if b.ExpiryDate != nil {
				expiry = b.ExpiryDate.Format("2006-01-02")
			}
			values := []interface{}{
				entry.ProductID, entry.ProductName, entry.SKU, b.BatchNumber,
				b.Quantity, b.Remaining, b.UnitCost, b.ShippingCostPerUnit,
				b.SellingPrice, b.MarginPercent, b.QualityGrade, expiry,
				b.CreatedAt.Format("2006-01-02 15:04"),
			}
			cell, err := excelize.CoordinatesToCellName(1, row)
			if err != nil {
				return nil, fmt.Errorf("failed to compute cell name: %w", err)
			}
			if err := f.SetSheetRow(sheet, cell, &values); err != nil {
				return nil, fmt.Errorf("failed to write row %d: %w", row, err)
			}
			row++
		}
	}

	s.logger.WithContext(ctx).Info("Generated warehouse stock report",
		"warehouseId", warehouseID, "rows", row-2)

	return workbookBytes(f)
}

// ExpiryReport renders the expiry alerts as an xlsx workbook
func (s *ReportService) ExpiryReport(ctx context.Context, tenantID string, windowDays int) ([]byte, error) {
	alerts, err := s.analytics.ExpiryAlerts(ctx, tenantID, windowDays)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	sheet := f.GetSheetName(f.GetActiveSheetIndex())
	_ = f.SetSheetName(sheet, "Expiry Alerts")
	sheet = "Expiry Alerts"

	header := []interface{}{
		"severity", "batch_number", "product_id", "warehouse_id",
		"remaining", "expiry_date", "days_left",
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return nil, fmt.Errorf("failed to write header row: %w", err)
	}

	for i, alert := range alerts {
		values := []interface{}{
			alert.Severity, alert.BatchNumber, alert.ProductID, alert.WarehouseID,
			alert.Remaining, alert.ExpiryDate.Format("2006-01-02"), alert.DaysLeft,
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, fmt.Errorf("failed to compute cell name: %w", err)
		}
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return nil, fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}

	s.logger.WithContext(ctx).Info("Generated expiry report", "rows", len(alerts))

	return workbookBytes(f)
}

func workbookBytes(f *excelize.File) ([]byte, error) {
	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("failed to serialize workbook: %w", err)
	}
	return buf.Bytes(), nil
}
