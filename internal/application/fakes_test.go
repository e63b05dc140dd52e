package application

import (
	"context"
	"sync"
	"time"

	"github.com/opsdash/platform/internal/domain"
	"github.com/opsdash/platform/pkg/logging"
	"github.com/opsdash/platform/pkg/metrics"
)

func testLogger() *logging.Logger {
	config := logging.DefaultConfig("test")
	config.Output = nopWriter{}
	return logging.New(config)
}

type nopWriter struct{}

func (nopWriter) Write(p []byte) (int, error) { return len(p), nil }

func testMetrics() *metrics.Metrics {
	return metrics.New(metrics.DefaultConfig("test"))
}

// fakeUnitOfWork runs the function directly; no transactional semantics
type fakeUnitOfWork struct {
	calls int
	err   error
}

func (f *fakeUnitOfWork) WithinTransaction(ctx context.Context, fn func(txCtx context.Context) error) error {
	f.calls++
	if f.err != nil {
		return f.err
	}
	return fn(ctx)
}

// fakePublisher collects published events
type fakePublisher struct {
	mu     sync.Mutex
	events []domain.DomainEvent
	err    error
}

func (f *fakePublisher) Publish(ctx context.Context, event domain.DomainEvent) error {
	if f.err != nil {
		return f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, event)
	return nil
}

func (f *fakePublisher) eventTypes() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	types := make([]string, 0, len(f.events))
	for _, e := range f.events {
		types = append(types, e.EventType())
	}
	return types
}

// fakeBatchRepo keeps batches in memory with FIFO-ordered reads
type fakeBatchRepo struct {
	mu                sync.Mutex
	batches           []*domain.StockBatch
	findErr           error
	insertErr         error
	consumeErrOnce    error
	updatePriceErr    error
	consumptionWrites int
}

func (f *fakeBatchRepo) Insert(ctx context.Context, batch *domain.StockBatch) error {
	if f.insertErr != nil {
		return f.insertErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.batches = append(f.batches, batch)
	return nil
}

func (f *fakeBatchRepo) FindByID(ctx context.Context, id string) (*domain.StockBatch, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, b := range f.batches {
		if b.ID.Hex() == id {
			return b, nil
		}
	}
	return nil, nil
}

func (f *fakeBatchRepo) filtered(match func(*domain.StockBatch) bool) domain.BatchList {
	f.mu.Lock()
	defer f.mu.Unlock()
	var list domain.BatchList
	for _, b := range f.batches {
		if match(b) {
			list = append(list, b)
		}
	}
	list.SortFIFO()
	return list
}

func (f *fakeBatchRepo) FindActive(ctx context.Context, tenantID, warehouseID, productID string) (domain.BatchList, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	return f.filtered(func(b *domain.StockBatch) bool {
		return b.TenantID == tenantID && b.WarehouseID == warehouseID && b.ProductID == productID && !b.Depleted
	}), nil
}

func (f *fakeBatchRepo) FindByWarehouse(ctx context.Context, tenantID, warehouseID string) (domain.BatchList, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	return f.filtered(func(b *domain.StockBatch) bool {
		return b.TenantID == tenantID && b.WarehouseID == warehouseID && !b.Depleted
	}), nil
}

func (f *fakeBatchRepo) FindExpiring(ctx context.Context, tenantID string, cutoff time.Time) (domain.BatchList, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	return f.filtered(func(b *domain.StockBatch) bool {
		return b.TenantID == tenantID && !b.Depleted && b.ExpiryDate != nil && !b.ExpiryDate.After(cutoff)
	}), nil
}

func (f *fakeBatchRepo) FindAll(ctx context.Context, tenantID string) (domain.BatchList, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	return f.filtered(func(b *domain.StockBatch) bool {
		return b.TenantID == tenantID
	}), nil
}

func (f *fakeBatchRepo) UpdateConsumption(ctx context.Context, batch *domain.StockBatch) error {
	if f.consumeErrOnce != nil {
		err := f.consumeErrOnce
		f.consumeErrOnce = nil
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.consumptionWrites++
	batch.Version++
	return nil
}

func (f *fakeBatchRepo) UpdatePrice(ctx context.Context, tenantID, batchID string, sellingPrice float64, expiryDate *time.Time) (*domain.StockBatch, error) {
	if f.updatePriceErr != nil {
		return nil, f.updatePriceErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, b := range f.batches {
		if b.ID.Hex() == batchID && b.TenantID == tenantID {
			b.SellingPrice = sellingPrice
			if expiryDate != nil {
				b.ExpiryDate = expiryDate
			}
			return b, nil
		}
	}
	return nil, domain.ErrBatchDepleted
}

func (f *fakeBatchRepo) DeleteByProductWarehouse(ctx context.Context, tenantID, warehouseID, productID string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	units := 0
	kept := f.batches[:0]
	for _, b := range f.batches {
		if b.TenantID == tenantID && b.WarehouseID == warehouseID && b.ProductID == productID {
			if b.Available() {
				units += b.Remaining
			}
			continue
		}
		kept = append(kept, b)
	}
	f.batches = kept
	return units, nil
}

// fakeProductRepo keeps products in memory
type fakeProductRepo struct {
	mu       sync.Mutex
	products map[string]*domain.Product
	incErr   error
}

func (f *fakeProductRepo) add(p *domain.Product) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.products == nil {
		f.products = make(map[string]*domain.Product)
	}
	f.products[p.ID.Hex()] = p
}

func (f *fakeProductRepo) Insert(ctx context.Context, product *domain.Product) error {
	f.add(product)
	return nil
}

func (f *fakeProductRepo) FindByID(ctx context.Context, tenantID, id string) (*domain.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p := f.products[id]
	if p == nil || p.TenantID != tenantID {
		return nil, nil
	}
	return p, nil
}

func (f *fakeProductRepo) FindBySKU(ctx context.Context, tenantID, sku string) (*domain.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.products {
		if p.TenantID == tenantID && p.SKU == sku {
			return p, nil
		}
	}
	return nil, nil
}

func (f *fakeProductRepo) FindAll(ctx context.Context, tenantID string) ([]*domain.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var list []*domain.Product
	for _, p := range f.products {
		if p.TenantID == tenantID {
			list = append(list, p)
		}
	}
	return list, nil
}

func (f *fakeProductRepo) IncrementStock(ctx context.Context, tenantID, id string, delta int) error {
	if f.incErr != nil {
		return f.incErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if p := f.products[id]; p != nil {
		p.Stock += delta
	}
	return nil
}

// fakeSaleRepo keeps sales in memory
type fakeSaleRepo struct {
	mu    sync.Mutex
	sales []*domain.Sale
}

func (f *fakeSaleRepo) Insert(ctx context.Context, sale *domain.Sale) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sales = append(f.sales, sale)
	return nil
}

func (f *fakeSaleRepo) FindSince(ctx context.Context, tenantID string, since time.Time) ([]*domain.Sale, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var list []*domain.Sale
	for _, s := range f.sales {
		if s.TenantID == tenantID && !s.SoldAt.Before(since) {
			list = append(list, s)
		}
	}
	return list, nil
}

func (f *fakeSaleRepo) FindByProduct(ctx context.Context, tenantID, productID string, since time.Time) ([]*domain.Sale, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var list []*domain.Sale
	for _, s := range f.sales {
		if s.TenantID == tenantID && s.ProductID == productID && !s.SoldAt.Before(since) {
			list = append(list, s)
		}
	}
	return list, nil
}

// fakeShipmentRepo keeps shipments in memory
type fakeShipmentRepo struct {
	mu        sync.Mutex
	shipments map[string]*domain.Shipment
	insertErr error
	updateErr error
}

func (f *fakeShipmentRepo) Insert(ctx context.Context, shipment *domain.Shipment) error {
	if f.insertErr != nil {
		return f.insertErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.shipments == nil {
		f.shipments = make(map[string]*domain.Shipment)
	}
	f.shipments[shipment.ID.Hex()] = shipment
	return nil
}

func (f *fakeShipmentRepo) FindByID(ctx context.Context, tenantID, id string) (*domain.Shipment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s := f.shipments[id]
	if s == nil || s.TenantID != tenantID {
		return nil, nil
	}
	return s, nil
}

func (f *fakeShipmentRepo) FindByTracking(ctx context.Context, tenantID, trackingNumber string) (*domain.Shipment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, s := range f.shipments {
		if s.TenantID == tenantID && s.TrackingNumber == trackingNumber {
			return s, nil
		}
	}
	return nil, nil
}

func (f *fakeShipmentRepo) Find(ctx context.Context, tenantID string, filter domain.ShipmentFilter) ([]*domain.Shipment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var list []*domain.Shipment
	for _, s := range f.shipments {
		if s.TenantID != tenantID || s.DelFlag {
			continue
		}
		if filter.Status != "" && s.Status != filter.Status {
			continue
		}
		if filter.Priority != "" && s.Priority != filter.Priority {
			continue
		}
		if filter.WarehouseID != "" && s.OriginWarehouseID != filter.WarehouseID && s.DestinationWarehouseID != filter.WarehouseID {
			continue
		}
		list = append(list, s)
	}
	return list, nil
}

func (f *fakeShipmentRepo) Update(ctx context.Context, shipment *domain.Shipment) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.shipments[shipment.ID.Hex()] = shipment
	return nil
}

func (f *fakeShipmentRepo) SoftDelete(ctx context.Context, tenantID, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if s := f.shipments[id]; s != nil && s.TenantID == tenantID {
		s.DelFlag = true
	}
	return nil
}

// fakeWarehouseRepo keeps warehouses in memory
type fakeWarehouseRepo struct {
	mu         sync.Mutex
	warehouses map[string]*domain.Warehouse
}

func (f *fakeWarehouseRepo) add(w *domain.Warehouse) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.warehouses == nil {
		f.warehouses = make(map[string]*domain.Warehouse)
	}
	f.warehouses[w.ID.Hex()] = w
}

func (f *fakeWarehouseRepo) Insert(ctx context.Context, warehouse *domain.Warehouse) error {
	f.add(warehouse)
	return nil
}

func (f *fakeWarehouseRepo) FindByID(ctx context.Context, tenantID, id string) (*domain.Warehouse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	w := f.warehouses[id]
	if w == nil || w.TenantID != tenantID {
		return nil, nil
	}
	return w, nil
}

func (f *fakeWarehouseRepo) FindAll(ctx context.Context, tenantID string) ([]*domain.Warehouse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var list []*domain.Warehouse
	for _, w := range f.warehouses {
		if w.TenantID == tenantID {
			list = append(list, w)
		}
	}
	return list, nil
}

// fakeTransportRepo keeps vehicles in memory
type fakeTransportRepo struct {
	mu         sync.Mutex
	transports map[string]*domain.Transport
	statusErr  error
}

func (f *fakeTransportRepo) add(tr *domain.Transport) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.transports == nil {
		f.transports = make(map[string]*domain.Transport)
	}
	f.transports[tr.ID.Hex()] = tr
}

func (f *fakeTransportRepo) Insert(ctx context.Context, transport *domain.Transport) error {
	f.add(transport)
	return nil
}

func (f *fakeTransportRepo) FindByID(ctx context.Context, tenantID, id string) (*domain.Transport, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	tr := f.transports[id]
	if tr == nil || tr.TenantID != tenantID {
		return nil, nil
	}
	return tr, nil
}

func (f *fakeTransportRepo) FindAvailable(ctx context.Context, tenantID string) ([]*domain.Transport, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var list []*domain.Transport
	for _, tr := range f.transports {
		if tr.TenantID == tenantID && tr.Status == domain.TransportAvailable {
			list = append(list, tr)
		}
	}
	return list, nil
}

func (f *fakeTransportRepo) UpdateStatus(ctx context.Context, tenantID, id string, status domain.TransportStatus) error {
	if f.statusErr != nil {
		return f.statusErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if tr := f.transports[id]; tr != nil && tr.TenantID == tenantID {
		tr.Status = status
	}
	return nil
}
