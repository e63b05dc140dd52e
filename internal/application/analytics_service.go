package application

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/opsdash/platform/internal/domain"
	"github.com/opsdash/platform/pkg/logging"
)

// Analysis window and thresholds for the dashboard aggregates
const (
	DefaultTurnoverWindowDays = 30
	SlowMovingAgeDays         = 60
	ExpiryCriticalDays        = 7
	ExpiryWarningDays         = 14
	DefaultExpiryWindowDays   = 30
)

// AnalyticsService computes the dashboard aggregates. All computation happens
// in memory after a bulk fetch; nothing here writes.
type AnalyticsService struct {
	batches  domain.BatchRepository
	products domain.ProductRepository
	sales    domain.SaleRepository
	logger   *logging.Logger
}

// NewAnalyticsService creates an AnalyticsService
func NewAnalyticsService(
	batches domain.BatchRepository,
	products domain.ProductRepository,
	sales domain.SaleRepository,
	logger *logging.Logger,
) *AnalyticsService {
	return &AnalyticsService{
		batches:  batches,
		products: products,
		sales:    sales,
		logger:   logger.WithComponent("analytics-service"),
	}
}

func (s *AnalyticsService) productNames(ctx context.Context, tenantID string) (map[string]string, error) {
	products, err := s.products.FindAll(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to load products: %w", err)
	}
	names := make(map[string]string, len(products))
	for _, p := range products {
		names[p.ID.Hex()] = p.Name
	}
	return names, nil
}

// Turnover computes per-product turnover over a trailing window:
// sold / (currentStock + sold) x 100. Products with neither sales nor stock
// are omitted.
func (s *AnalyticsService) Turnover(ctx context.Context, tenantID string, windowDays int) ([]TurnoverEntryDTO, error) {
	if windowDays <= 0 {
		windowDays = DefaultTurnoverWindowDays
	}
	since := time.Now().UTC().AddDate(0, 0, -windowDays)

	salesList, err := s.sales.FindSince(ctx, tenantID, since)
	if err != nil {
		return nil, fmt.Errorf("failed to load sales: %w", err)
	}

	sold := make(map[string]int)
	for _, sale := range salesList {
		sold[sale.ProductID] += sale.Quantity
	}

	batches, err := s.batches.FindAll(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to load batches: %w", err)
	}

	stock := make(map[string]int)
	for _, b := range batches {
		if b.Available() {
			stock[b.ProductID] += b.Remaining
		}
	}

	names, err := s.productNames(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	entries := make([]TurnoverEntryDTO, 0)
	appendEntry := func(productID string) {
		if seen[productID] {
			return
		}
		seen[productID] = true

		unitsSold := sold[productID]
		currentStock := stock[productID]
		if unitsSold == 0 && currentStock == 0 {
			return
		}

		rate := domain.TurnoverRate(unitsSold, currentStock)
		entries = append(entries, TurnoverEntryDTO{
			ProductID:    productID,
			ProductName:  names[productID],
			UnitsSold:    unitsSold,
			CurrentStock: currentStock,
			TurnoverRate: rate,
			SlowMoving:   unitsSold == 0 && currentStock > 0,
		})
	}

	for productID := range sold {
		appendEntry(productID)
	}
	for productID := range stock {
		appendEntry(productID)
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].TurnoverRate == entries[j].TurnoverRate {
			return entries[i].ProductID < entries[j].ProductID
		}
		return entries[i].TurnoverRate > entries[j].TurnoverRate
	})

	return entries, nil
}

// Profitability computes per-product revenue, FIFO cost and margin from the
// sales booked in the trailing window
func (s *AnalyticsService) Profitability(ctx context.Context, tenantID string, windowDays int) ([]ProfitabilityEntryDTO, error) {
	if windowDays <= 0 {
		windowDays = DefaultTurnoverWindowDays
	}
	since := time.Now().UTC().AddDate(0, 0, -windowDays)

	salesList, err := s.sales.FindSince(ctx, tenantID, since)
	if err != nil {
		return nil, fmt.Errorf("failed to load sales: %w", err)
	}

	type acc struct {
		revenue float64
		cost    float64
	}
	byProduct := make(map[string]*acc)
	for _, sale := range salesList {
		a := byProduct[sale.ProductID]
		if a == nil {
			a = &acc{}
			byProduct[sale.ProductID] = a
		}
		a.revenue += sale.TotalPrice
		a.cost += sale.CostOfGoods
	}

	names, err := s.productNames(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	entries := make([]ProfitabilityEntryDTO, 0, len(byProduct))
	for productID, a := range byProduct {
		revenue := domain.Round2(a.revenue)
		cost := domain.Round2(a.cost)
		entries = append(entries, ProfitabilityEntryDTO{
			ProductID:     productID,
			ProductName:   names[productID],
			Revenue:       revenue,
			CostOfGoods:   cost,
			GrossProfit:   domain.Round2(revenue - cost),
			MarginPercent: domain.MarginPercent(revenue, cost, 0),
		})
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].GrossProfit == entries[j].GrossProfit {
			return entries[i].ProductID < entries[j].ProductID
		}
		return entries[i].GrossProfit > entries[j].GrossProfit
	})

	return entries, nil
}

// SlowMoving returns batches older than the age cutoff that still hold stock
func (s *AnalyticsService) SlowMoving(ctx context.Context, tenantID string, ageDays int) ([]StockBatchDTO, error) {
	if ageDays <= 0 {
		ageDays = SlowMovingAgeDays
	}
	cutoff := time.Now().UTC().AddDate(0, 0, -ageDays)

	batches, err := s.batches.FindAll(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to load batches: %w", err)
	}

	stale := make(domain.BatchList, 0)
	for _, b := range batches {
		if b.Available() && b.CreatedAt.Before(cutoff) {
			stale = append(stale, b)
		}
	}
	stale.SortFIFO()

	return ToStockBatchDTOs(stale), nil
}

// ExpiryAlerts returns batches with stock expiring inside the window, bucketed
// by severity: critical within 7 days, warning within 14, info otherwise
func (s *AnalyticsService) ExpiryAlerts(ctx context.Context, tenantID string, windowDays int) ([]ExpiryAlertDTO, error) {
	if windowDays <= 0 {
		windowDays = DefaultExpiryWindowDays
	}
	now := time.Now().UTC()
	cutoff := now.AddDate(0, 0, windowDays)

	batches, err := s.batches.FindExpiring(ctx, tenantID, cutoff)
	if err != nil {
		return nil, fmt.Errorf("failed to load expiring batches: %w", err)
	}

	alerts := make([]ExpiryAlertDTO, 0, len(batches))
	for _, b := range batches {
		if !b.Available() || b.ExpiryDate == nil {
			continue
		}

		// Partial days round up: 7.5 days out is 8 days left, not 7
		daysLeft := int(math.Ceil(b.ExpiryDate.Sub(now).Hours() / 24))
		severity := "info"
		switch {
		case daysLeft <= ExpiryCriticalDays:
			severity = "critical"
		case daysLeft <= ExpiryWarningDays:
			severity = "warning"
		}

		alerts = append(alerts, ExpiryAlertDTO{
			BatchID:     b.ID.Hex(),
			BatchNumber: b.BatchNumber,
			ProductID:   b.ProductID,
			WarehouseID: b.WarehouseID,
			Remaining:   b.Remaining,
			ExpiryDate:  *b.ExpiryDate,
			DaysLeft:    daysLeft,
			Severity:    severity,
		})
	}

	sort.Slice(alerts, func(i, j int) bool {
		return alerts[i].ExpiryDate.Before(alerts[j].ExpiryDate)
	})

	return alerts, nil
}
