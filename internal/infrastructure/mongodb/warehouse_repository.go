package mongodb

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/opsdash/platform/internal/domain"
	"github.com/opsdash/platform/pkg/errors"
	"github.com/opsdash/platform/pkg/mongodb"
)

// WarehouseRepository persists warehouses in the warehouses collection
type WarehouseRepository struct {
	collection *mongo.Collection
}

// NewWarehouseRepository creates a WarehouseRepository and ensures its indexes
func NewWarehouseRepository(db *mongo.Database) *WarehouseRepository {
	repo := &WarehouseRepository{collection: db.Collection("warehouses")}
	repo.ensureIndexes(context.Background())
	return repo
}

func (r *WarehouseRepository) ensureIndexes(ctx context.Context) {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "tenantId", Value: 1}, {Key: "code", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	}
	r.collection.Indexes().CreateMany(ctx, indexes)
}

// Insert stores a new warehouse
func (r *WarehouseRepository) Insert(ctx context.Context, warehouse *domain.Warehouse) error {
	if _, err := r.collection.InsertOne(ctx, warehouse); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return errors.ErrConflict(fmt.Sprintf("warehouse code %s already exists", warehouse.Code))
		}
		return fmt.Errorf("failed to insert warehouse: %w", err)
	}
	return nil
}

// FindByID loads one warehouse; returns nil when not found
func (r *WarehouseRepository) FindByID(ctx context.Context, tenantID, id string) (*domain.Warehouse, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, errors.ErrValidation(fmt.Sprintf("invalid warehouse id: %s", id))
	}

	filter := mongodb.NotDeleted(bson.M{"_id": oid, "tenantId": tenantID})

	var warehouse domain.Warehouse
	err = r.collection.FindOne(ctx, filter).Decode(&warehouse)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find warehouse: %w", err)
	}
	return &warehouse, nil
}

// FindAll returns the tenant's warehouses
func (r *WarehouseRepository) FindAll(ctx context.Context, tenantID string) ([]*domain.Warehouse, error) {
	filter := mongodb.NotDeleted(bson.M{"tenantId": tenantID})
	opts := options.Find().SetSort(bson.D{{Key: "code", Value: 1}})

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query warehouses: %w", err)
	}
	defer cursor.Close(ctx)

	var warehouses []*domain.Warehouse
	if err := cursor.All(ctx, &warehouses); err != nil {
		return nil, fmt.Errorf("failed to decode warehouses: %w", err)
	}
	return warehouses, nil
}
