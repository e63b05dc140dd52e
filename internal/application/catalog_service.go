package application

import (
	"context"
	"fmt"

	"github.com/opsdash/platform/internal/domain"
	"github.com/opsdash/platform/pkg/errors"
	"github.com/opsdash/platform/pkg/logging"
)

// CreateProductCommand registers a catalog entry
type CreateProductCommand struct {
	SKU          string `json:"sku" binding:"required,sku"`
	Name         string `json:"name" binding:"required,max=200"`
	Description  string `json:"description,omitempty" binding:"max=2000"`
	Category     string `json:"category,omitempty" binding:"max=100"`
	Unit         string `json:"unit,omitempty" binding:"max=20"`
	ReorderPoint int    `json:"reorderPoint,omitempty" binding:"gte=0"`
}

// CreateWarehouseCommand registers a stock location
type CreateWarehouseCommand struct {
	Code     string `json:"code" binding:"required,max=20"`
	Name     string `json:"name" binding:"required,max=200"`
	Address  string `json:"address,omitempty" binding:"max=500"`
	City     string `json:"city,omitempty" binding:"max=100"`
	Country  string `json:"country,omitempty" binding:"max=100"`
	Capacity int    `json:"capacity,omitempty" binding:"gte=0"`
}

// CreateTransportCommand registers a vehicle
type CreateTransportCommand struct {
	Identifier   string  `json:"identifier" binding:"required,max=50"`
	VehicleType  string  `json:"vehicleType" binding:"required,max=50"`
	Capacity     float64 `json:"capacity,omitempty" binding:"gte=0"`
	Refrigerated bool    `json:"refrigerated,omitempty"`
}

// CatalogService handles the reference data behind the dashboard: products,
// warehouses and vehicles
type CatalogService struct {
	products   domain.ProductRepository
	warehouses domain.WarehouseRepository
	transports domain.TransportRepository
	logger     *logging.Logger
}

// NewCatalogService creates a CatalogService
func NewCatalogService(
	products domain.ProductRepository,
	warehouses domain.WarehouseRepository,
	transports domain.TransportRepository,
	logger *logging.Logger,
) *CatalogService {
	return &CatalogService{
		products:   products,
		warehouses: warehouses,
		transports: transports,
		logger:     logger.WithComponent("catalog-service"),
	}
}

// CreateProduct registers a catalog entry; the SKU must be unique per tenant
func (s *CatalogService) CreateProduct(ctx context.Context, tenantID string, cmd CreateProductCommand) (*domain.Product, error) {
	existing, err := s.products.FindBySKU(ctx, tenantID, cmd.SKU)
	if err != nil {
		return nil, fmt.Errorf("failed to check SKU: %w", err)
	}
	if existing != nil {
		return nil, errors.ErrConflict(fmt.Sprintf("product with SKU %s already exists", cmd.SKU))
	}

	product := domain.NewProduct(tenantID, cmd.SKU, cmd.Name, cmd.Category, cmd.Unit)
	product.Description = cmd.Description
	product.ReorderPoint = cmd.ReorderPoint

	if err := s.products.Insert(ctx, product); err != nil {
		return nil, err
	}

	s.logger.WithContext(ctx).Info("Created product", "sku", cmd.SKU, "name", cmd.Name)
	return product, nil
}

// GetProduct returns one catalog entry
func (s *CatalogService) GetProduct(ctx context.Context, tenantID, id string) (*domain.Product, error) {
	product, err := s.products.FindByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, errors.ErrNotFoundWithID("product", id)
	}
	return product, nil
}

// ListProducts returns the tenant's catalog
func (s *CatalogService) ListProducts(ctx context.Context, tenantID string) ([]*domain.Product, error) {
	return s.products.FindAll(ctx, tenantID)
}

// CreateWarehouse registers a stock location
func (s *CatalogService) CreateWarehouse(ctx context.Context, tenantID string, cmd CreateWarehouseCommand) (*domain.Warehouse, error) {
	warehouse := domain.NewWarehouse(tenantID, cmd.Code, cmd.Name, cmd.City)
	warehouse.Address = cmd.Address
	warehouse.Country = cmd.Country
	warehouse.Capacity = cmd.Capacity

	if err := s.warehouses.Insert(ctx, warehouse); err != nil {
		return nil, err
	}

	s.logger.WithContext(ctx).Info("Created warehouse", "code", cmd.Code, "name", cmd.Name)
	return warehouse, nil
}

// ListWarehouses returns the tenant's warehouses
func (s *CatalogService) ListWarehouses(ctx context.Context, tenantID string) ([]*domain.Warehouse, error) {
	return s.warehouses.FindAll(ctx, tenantID)
}

// CreateTransport registers a vehicle, available for assignment
func (s *CatalogService) CreateTransport(ctx context.Context, tenantID string, cmd CreateTransportCommand) (*domain.Transport, error) {
	transport := domain.NewTransport(tenantID, cmd.Identifier, cmd.VehicleType, cmd.Refrigerated)
	transport.Capacity = cmd.Capacity

	if err := s.transports.Insert(ctx, transport); err != nil {
		return nil, err
	}

	s.logger.WithContext(ctx).Info("Created transport", "identifier", cmd.Identifier)
	return transport, nil
}

// ListAvailableTransports returns vehicles ready for assignment
func (s *CatalogService) ListAvailableTransports(ctx context.Context, tenantID string) ([]*domain.Transport, error) {
	return s.transports.FindAvailable(ctx, tenantID)
}
