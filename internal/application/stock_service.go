package application

import (
	"context"
	stderrors "errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/opsdash/platform/internal/domain"
	"github.com/opsdash/platform/pkg/errors"
	"github.com/opsdash/platform/pkg/logging"
	"github.com/opsdash/platform/pkg/metrics"
)

// maxVersionRetries bounds the optimistic concurrency retry loop on batch
// drains. Each retry re-reads the batch set before re-planning.
const maxVersionRetries = 3

// priceUpdateConcurrency caps parallel workers in bulk price updates
const priceUpdateConcurrency = 8

// StockService handles the stock ledger use cases: receiving, adjustments,
// transfers, sales, price updates and warehouse views.
type StockService struct {
	batches   domain.BatchRepository
	products  domain.ProductRepository
	sales     domain.SaleRepository
	uow       domain.UnitOfWork
	publisher domain.EventPublisher
	metrics   *metrics.Metrics
	logger    *logging.Logger
}

// NewStockService creates a StockService
func NewStockService(
	batches domain.BatchRepository,
	products domain.ProductRepository,
	sales domain.SaleRepository,
	uow domain.UnitOfWork,
	publisher domain.EventPublisher,
	m *metrics.Metrics,
	logger *logging.Logger,
) *StockService {
	return &StockService{
		batches:   batches,
		products:  products,
		sales:     sales,
		uow:       uow,
		publisher: publisher,
		metrics:   m,
		logger:    logger.WithComponent("stock-service"),
	}
}

// publish delivers an event after commit; failures are logged, never returned
func (s *StockService) publish(ctx context.Context, event domain.DomainEvent) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.WithContext(ctx).Error("Failed to publish event",
			"eventType", event.EventType(), "aggregateId", event.AggregateID(), "error", err)
	}
}

// ReceiveStock books new goods into a warehouse as a fresh batch and bumps
// the product's total stock in the same transaction
func (s *StockService) ReceiveStock(ctx context.Context, tenantID string, cmd ReceiveStockCommand) (*StockBatchDTO, error) {
	product, err := s.products.FindByID(ctx, tenantID, cmd.ProductID)
	if err != nil {
		return nil, fmt.Errorf("failed to load product: %w", err)
	}
	if product == nil {
		return nil, errors.ErrNotFoundWithID("product", cmd.ProductID)
	}

	batch, err := domain.NewStockBatch(tenantID, cmd.ProductID, cmd.WarehouseID, cmd.Quantity, cmd.UnitCost, cmd.ShippingCostPerUnit, cmd.SellingPrice)
	if err != nil {
		return nil, errors.ErrValidation(err.Error())
	}
	batch.ExpiryDate = cmd.ExpiryDate
	batch.Notes = cmd.Notes
	if cmd.QualityGrade != "" {
		batch.QualityGrade = domain.QualityGrade(cmd.QualityGrade)
	}

	err = s.uow.WithinTransaction(ctx, func(txCtx context.Context) error {
		if err := s.batches.Insert(txCtx, batch); err != nil {
			return fmt.Errorf("failed to insert batch: %w", err)
		}
		return s.products.IncrementStock(txCtx, tenantID, cmd.ProductID, cmd.Quantity)
	})
	if err != nil {
		return nil, err
	}

	s.logger.WithContext(ctx).Info("Received stock",
		"productId", cmd.ProductID, "warehouseId", cmd.WarehouseID,
		"batchNumber", batch.BatchNumber, "quantity", cmd.Quantity)

	dto := ToStockBatchDTO(batch)
	return &dto, nil
}

// AdjustStock applies a manual stock correction. A positive delta creates an
// adjustment batch with no cost basis; a negative delta drains batches
// oldest-first and stops without error when stock runs out before the delta
// is covered.
func (s *StockService) AdjustStock(ctx context.Context, tenantID string, cmd AdjustStockCommand) (*AdjustmentResultDTO, error) {
	if cmd.Delta == 0 {
		return nil, errors.ErrValidation(domain.ErrZeroAdjustment.Error())
	}

	product, err := s.products.FindByID(ctx, tenantID, cmd.ProductID)
	if err != nil {
		return nil, fmt.Errorf("failed to load product: %w", err)
	}
	if product == nil {
		return nil, errors.ErrNotFoundWithID("product", cmd.ProductID)
	}

	var result *AdjustmentResultDTO
	if cmd.Delta > 0 {
		result, err = s.adjustUp(ctx, tenantID, cmd)
	} else {
		result, err = s.adjustDown(ctx, tenantID, cmd)
	}
	if err != nil {
		return nil, err
	}

	// The aggregate loaded above predates the transaction's counter $inc;
	// re-read so the result and event carry the committed total.
	updated, err := s.products.FindByID(ctx, tenantID, cmd.ProductID)
	if err != nil {
		return nil, fmt.Errorf("failed to reload product: %w", err)
	}
	if updated != nil {
		result.NewTotalStock = updated.Stock
	}

	direction := "increase"
	if cmd.Delta < 0 {
		direction = "decrease"
	}
	s.metrics.RecordStockAdjustment(direction)

	s.publish(ctx, domain.StockAdjustedEvent{
		ProductID:   cmd.ProductID,
		WarehouseID: cmd.WarehouseID,
		TenantID:    tenantID,
		Delta:       cmd.Delta,
		Reason:      cmd.Reason,
		NewTotal:    result.NewTotalStock,
		OccurredAt:  time.Now().UTC(),
	})

	s.logger.WithContext(ctx).Info("Adjusted stock",
		"productId", cmd.ProductID, "warehouseId", cmd.WarehouseID,
		"delta", cmd.Delta, "unitsApplied", result.UnitsApplied, "reason", cmd.Reason)

	return result, nil
}

func (s *StockService) adjustUp(ctx context.Context, tenantID string, cmd AdjustStockCommand) (*AdjustmentResultDTO, error) {
	batch, err := domain.NewAdjustmentBatch(tenantID, cmd.ProductID, cmd.WarehouseID, cmd.Delta, cmd.SellingPrice, cmd.Reason)
	if err != nil {
		return nil, errors.ErrValidation(err.Error())
	}

	err = s.uow.WithinTransaction(ctx, func(txCtx context.Context) error {
		if err := s.batches.Insert(txCtx, batch); err != nil {
			return fmt.Errorf("failed to insert adjustment batch: %w", err)
		}
		return s.products.IncrementStock(txCtx, tenantID, cmd.ProductID, cmd.Delta)
	})
	if err != nil {
		return nil, err
	}

	return &AdjustmentResultDTO{
		ProductID:      cmd.ProductID,
		WarehouseID:    cmd.WarehouseID,
		Delta:          cmd.Delta,
		UnitsApplied:   cmd.Delta,
		BatchesTouched: 1,
	}, nil
}

func (s *StockService) adjustDown(ctx context.Context, tenantID string, cmd AdjustStockCommand) (*AdjustmentResultDTO, error) {
	need := -cmd.Delta

	var lastErr error
	for attempt := 0; attempt < maxVersionRetries; attempt++ {
		active, err := s.batches.FindActive(ctx, tenantID, cmd.WarehouseID, cmd.ProductID)
		if err != nil {
			return nil, fmt.Errorf("failed to load batches: %w", err)
		}

		// Negative corrections drain what is there; a shortfall is not an
		// error, the correction simply bottoms out at zero.
		plan, _ := active.PlanConsumption(need)
		applied := 0
		for _, step := range plan {
			applied += step.Take
		}

		err = s.uow.WithinTransaction(ctx, func(txCtx context.Context) error {
			for _, step := range plan {
				if err := step.Batch.Consume(step.Take); err != nil {
					return err
				}
				if err := s.batches.UpdateConsumption(txCtx, step.Batch); err != nil {
					return err
				}
			}
			if applied == 0 {
				return nil
			}
			return s.products.IncrementStock(txCtx, tenantID, cmd.ProductID, -applied)
		})
		if err == nil {
			return &AdjustmentResultDTO{
				ProductID:      cmd.ProductID,
				WarehouseID:    cmd.WarehouseID,
				Delta:          cmd.Delta,
				UnitsApplied:   applied,
				BatchesTouched: len(plan),
			}, nil
		}
		if !stderrors.Is(err, domain.ErrVersionConflict) {
			return nil, err
		}
		lastErr = err
		s.logger.WithContext(ctx).Warn("Retrying adjustment after concurrent batch change",
			"productId", cmd.ProductID, "attempt", attempt+1)
	}

	return nil, errors.ErrConflict(fmt.Sprintf("stock adjustment kept conflicting after %d attempts: %v", maxVersionRetries, lastErr))
}

// TransferStock moves quantity units between warehouses. Validation is
// fail-fast: when the source cannot cover the full quantity nothing is
// written and a conflict error is returned.
func (s *StockService) TransferStock(ctx context.Context, tenantID string, cmd TransferStockCommand) (*TransferResultDTO, error) {
	if cmd.SourceWarehouseID == cmd.DestinationWarehouseID {
		return nil, errors.ErrValidation(domain.ErrSameWarehouse.Error())
	}

	product, err := s.products.FindByID(ctx, tenantID, cmd.ProductID)
	if err != nil {
		return nil, fmt.Errorf("failed to load product: %w", err)
	}
	if product == nil {
		return nil, errors.ErrNotFoundWithID("product", cmd.ProductID)
	}

	var lastErr error
	for attempt := 0; attempt < maxVersionRetries; attempt++ {
		active, err := s.batches.FindActive(ctx, tenantID, cmd.SourceWarehouseID, cmd.ProductID)
		if err != nil {
			return nil, fmt.Errorf("failed to load source batches: %w", err)
		}

		if available := active.TotalRemaining(); available < cmd.Quantity {
			s.metrics.RecordStockTransfer(false)
			return nil, errors.ErrConflict(fmt.Sprintf("%s: %d available, %d requested",
				domain.ErrInsufficientStock.Error(), available, cmd.Quantity))
		}

		plan, shortfall := active.PlanConsumption(cmd.Quantity)
		if shortfall > 0 {
			// TotalRemaining said we had enough; treat as a concurrent change
			lastErr = domain.ErrVersionConflict
			continue
		}

		created := make([]*domain.StockBatch, 0, len(plan))
		err = s.uow.WithinTransaction(ctx, func(txCtx context.Context) error {
			for _, step := range plan {
				if err := step.Batch.Consume(step.Take); err != nil {
					return err
				}
				if err := s.batches.UpdateConsumption(txCtx, step.Batch); err != nil {
					return err
				}

				mirror := step.Batch.MirrorTo(cmd.DestinationWarehouseID, step.Take)
				if err := s.batches.Insert(txCtx, mirror); err != nil {
					return err
				}
				created = append(created, mirror)
			}
			// Total stock across warehouses is unchanged by a transfer
			return nil
		})
		if err == nil {
			s.metrics.RecordStockTransfer(true)
			s.publish(ctx, domain.StockTransferredEvent{
				ProductID:              cmd.ProductID,
				SourceWarehouseID:      cmd.SourceWarehouseID,
				DestinationWarehouseID: cmd.DestinationWarehouseID,
				TenantID:               tenantID,
				Quantity:               cmd.Quantity,
				BatchesDrained:         len(plan),
				OccurredAt:             time.Now().UTC(),
			})
			s.logger.WithContext(ctx).Info("Transferred stock",
				"productId", cmd.ProductID, "from", cmd.SourceWarehouseID,
				"to", cmd.DestinationWarehouseID, "quantity", cmd.Quantity)

			return &TransferResultDTO{
				ProductID:              cmd.ProductID,
				SourceWarehouseID:      cmd.SourceWarehouseID,
				DestinationWarehouseID: cmd.DestinationWarehouseID,
				Quantity:               cmd.Quantity,
				BatchesDrained:         len(plan),
				BatchesCreated:         len(created),
			}, nil
		}
		if !stderrors.Is(err, domain.ErrVersionConflict) {
			s.metrics.RecordStockTransfer(false)
			return nil, err
		}
		lastErr = err
		s.logger.WithContext(ctx).Warn("Retrying transfer after concurrent batch change",
			"productId", cmd.ProductID, "attempt", attempt+1)
	}

	s.metrics.RecordStockTransfer(false)
	return nil, errors.ErrConflict(fmt.Sprintf("stock transfer kept conflicting after %d attempts: %v", maxVersionRetries, lastErr))
}

// RecordSale drains stock oldest-first and books a sale record with the FIFO
// cost of the drained units. Insufficient stock fails the sale outright.
func (s *StockService) RecordSale(ctx context.Context, tenantID string, cmd RecordSaleCommand) (*SaleDTO, error) {
	product, err := s.products.FindByID(ctx, tenantID, cmd.ProductID)
	if err != nil {
		return nil, fmt.Errorf("failed to load product: %w", err)
	}
	if product == nil {
		return nil, errors.ErrNotFoundWithID("product", cmd.ProductID)
	}

	var lastErr error
	for attempt := 0; attempt < maxVersionRetries; attempt++ {
		active, err := s.batches.FindActive(ctx, tenantID, cmd.WarehouseID, cmd.ProductID)
		if err != nil {
			return nil, fmt.Errorf("failed to load batches: %w", err)
		}

		if available := active.TotalRemaining(); available < cmd.Quantity {
			return nil, errors.ErrConflict(fmt.Sprintf("%s: %d available, %d requested",
				domain.ErrInsufficientStock.Error(), available, cmd.Quantity))
		}

		unitPrice := cmd.UnitPrice
		if unitPrice == 0 {
			unitPrice = active.WeightedAverageSellingPrice()
		}

		plan, shortfall := active.PlanConsumption(cmd.Quantity)
		if shortfall > 0 {
			lastErr = domain.ErrVersionConflict
			continue
		}

		sale, err := domain.NewSale(tenantID, cmd.ProductID, cmd.WarehouseID, cmd.SoldBy, cmd.Quantity, unitPrice)
		if err != nil {
			return nil, errors.ErrValidation(err.Error())
		}

		cost := 0.0
		for _, step := range plan {
			cost += float64(step.Take) * domain.LandedCost(step.Batch.UnitCost, step.Batch.ShippingCostPerUnit)
		}
		sale.CostOfGoods = domain.Round2(cost)

		err = s.uow.WithinTransaction(ctx, func(txCtx context.Context) error {
			for _, step := range plan {
				if err := step.Batch.Consume(step.Take); err != nil {
					return err
				}
				if err := s.batches.UpdateConsumption(txCtx, step.Batch); err != nil {
					return err
				}
			}
			if err := s.sales.Insert(txCtx, sale); err != nil {
				return fmt.Errorf("failed to insert sale: %w", err)
			}
			return s.products.IncrementStock(txCtx, tenantID, cmd.ProductID, -cmd.Quantity)
		})
		if err == nil {
			s.metrics.RecordSale()
			s.publish(ctx, domain.SaleRecordedEvent{
				SaleID:      sale.ID.Hex(),
				SaleNumber:  sale.SaleNumber,
				ProductID:   cmd.ProductID,
				WarehouseID: cmd.WarehouseID,
				TenantID:    tenantID,
				Quantity:    cmd.Quantity,
				TotalPrice:  sale.TotalPrice,
				OccurredAt:  time.Now().UTC(),
			})
			s.logger.WithContext(ctx).Info("Recorded sale",
				"saleNumber", sale.SaleNumber, "productId", cmd.ProductID,
				"warehouseId", cmd.WarehouseID, "quantity", cmd.Quantity)

			dto := ToSaleDTO(sale)
			return &dto, nil
		}
		if !stderrors.Is(err, domain.ErrVersionConflict) {
			return nil, err
		}
		lastErr = err
	}

	return nil, errors.ErrConflict(fmt.Sprintf("sale kept conflicting after %d attempts: %v", maxVersionRetries, lastErr))
}

// GetWarehouseStock returns every product's batches and totals in a warehouse
func (s *StockService) GetWarehouseStock(ctx context.Context, tenantID, warehouseID string) ([]WarehouseStockDTO, error) {
	batches, err := s.batches.FindByWarehouse(ctx, tenantID, warehouseID)
	if err != nil {
		return nil, fmt.Errorf("failed to load warehouse batches: %w", err)
	}

	byProduct := make(map[string]domain.BatchList)
	order := make([]string, 0)
	for _, b := range batches {
		if _, seen := byProduct[b.ProductID]; !seen {
			order = append(order, b.ProductID)
		}
		byProduct[b.ProductID] = append(byProduct[b.ProductID], b)
	}

	products, err := s.products.FindAll(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to load products: %w", err)
	}
	names := make(map[string]*domain.Product, len(products))
	for _, p := range products {
		names[p.ID.Hex()] = p
	}

	result := make([]WarehouseStockDTO, 0, len(order))
	for _, productID := range order {
		list := byProduct[productID]
		list.SortFIFO()

		entry := WarehouseStockDTO{
			ProductID:           productID,
			TotalRemaining:      list.TotalRemaining(),
			AverageSellingPrice: list.WeightedAverageSellingPrice(),
			Batches:             ToStockBatchDTOs(list),
		}
		if p, ok := names[productID]; ok {
			entry.ProductName = p.Name
			entry.SKU = p.SKU
		}
		result = append(result, entry)
	}

	return result, nil
}

// UpdateBatchPrices applies selling price updates across batches in parallel.
// Individual failures do not abort the rest; the result reports both counts.
func (s *StockService) UpdateBatchPrices(ctx context.Context, tenantID string, cmd UpdateBatchPricesCommand) (*PriceUpdateResultDTO, error) {
	var (
		mu     sync.Mutex
		result PriceUpdateResultDTO
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(priceUpdateConcurrency)

	for _, update := range cmd.Updates {
		update := update
		g.Go(func() error {
			if update.SellingPrice < 0 {
				mu.Lock()
				result.Failed++
				result.Errors = append(result.Errors, fmt.Sprintf("batch %s: %s", update.BatchID, domain.ErrNegativeSellingPrice.Error()))
				mu.Unlock()
				return nil
			}

			batch, err := s.batches.UpdatePrice(gctx, tenantID, update.BatchID, update.SellingPrice, update.ExpiryDate)
			if err != nil {
				mu.Lock()
				result.Failed++
				result.Errors = append(result.Errors, fmt.Sprintf("batch %s: %v", update.BatchID, err))
				mu.Unlock()
				return nil
			}

			s.publish(gctx, domain.BatchPriceUpdatedEvent{
				BatchID:      update.BatchID,
				ProductID:    batch.ProductID,
				WarehouseID:  batch.WarehouseID,
				TenantID:     tenantID,
				SellingPrice: update.SellingPrice,
				OccurredAt:   time.Now().UTC(),
			})

			mu.Lock()
			result.Updated++
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	s.logger.WithContext(ctx).Info("Updated batch prices",
		"updated", result.Updated, "failed", result.Failed)
	return &result, nil
}

// RemoveProductFromWarehouse purges a product's batches from one warehouse
// and shrinks the product's total stock by the units removed
func (s *StockService) RemoveProductFromWarehouse(ctx context.Context, tenantID string, cmd RemoveProductCommand) (*RemovalResultDTO, error) {
	product, err := s.products.FindByID(ctx, tenantID, cmd.ProductID)
	if err != nil {
		return nil, fmt.Errorf("failed to load product: %w", err)
	}
	if product == nil {
		return nil, errors.ErrNotFoundWithID("product", cmd.ProductID)
	}

	var unitsRemoved int
	err = s.uow.WithinTransaction(ctx, func(txCtx context.Context) error {
		removed, err := s.batches.DeleteByProductWarehouse(txCtx, tenantID, cmd.WarehouseID, cmd.ProductID)
		if err != nil {
			return fmt.Errorf("failed to delete batches: %w", err)
		}
		unitsRemoved = removed
		if unitsRemoved == 0 {
			return nil
		}
		return s.products.IncrementStock(txCtx, tenantID, cmd.ProductID, -unitsRemoved)
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, domain.ProductRemovedFromWarehouseEvent{
		ProductID:    cmd.ProductID,
		WarehouseID:  cmd.WarehouseID,
		TenantID:     tenantID,
		UnitsRemoved: unitsRemoved,
		OccurredAt:   time.Now().UTC(),
	})

	s.logger.WithContext(ctx).Info("Removed product from warehouse",
		"productId", cmd.ProductID, "warehouseId", cmd.WarehouseID, "unitsRemoved", unitsRemoved)

	return &RemovalResultDTO{
		ProductID:    cmd.ProductID,
		WarehouseID:  cmd.WarehouseID,
		UnitsRemoved: unitsRemoved,
	}, nil
}
