package mongodb

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/opsdash/platform/internal/domain"
	"github.com/opsdash/platform/pkg/errors"
)

// BatchRepository persists the stock batch ledger in the stock_batches
// collection
type BatchRepository struct {
	collection *mongo.Collection
}

// NewBatchRepository creates a BatchRepository and ensures its indexes
func NewBatchRepository(db *mongo.Database) *BatchRepository {
	repo := &BatchRepository{collection: db.Collection("stock_batches")}
	repo.ensureIndexes(context.Background())
	return repo
}

func (r *BatchRepository) ensureIndexes(ctx context.Context) {
	indexes := []mongo.IndexModel{
		// FIFO walk per product per warehouse
		{Keys: bson.D{
			{Key: "tenantId", Value: 1},
			{Key: "warehouseId", Value: 1},
			{Key: "productId", Value: 1},
			{Key: "depleted", Value: 1},
			{Key: "createdAt", Value: 1},
		}},
		// Warehouse stock view
		{Keys: bson.D{
			{Key: "tenantId", Value: 1},
			{Key: "warehouseId", Value: 1},
			{Key: "depleted", Value: 1},
		}},
		// Expiry alert scan
		{Keys: bson.D{
			{Key: "tenantId", Value: 1},
			{Key: "expiryDate", Value: 1},
		}},
		{Keys: bson.D{{Key: "batchNumber", Value: 1}}},
	}
	r.collection.Indexes().CreateMany(ctx, indexes)
}

// Insert stores a new batch
func (r *BatchRepository) Insert(ctx context.Context, batch *domain.StockBatch) error {
	if _, err := r.collection.InsertOne(ctx, batch); err != nil {
		return fmt.Errorf("failed to insert batch: %w", err)
	}
	return nil
}

// FindByID loads one batch; returns nil when not found
func (r *BatchRepository) FindByID(ctx context.Context, id string) (*domain.StockBatch, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, errors.ErrValidation(fmt.Sprintf("invalid batch id: %s", id))
	}

	var batch domain.StockBatch
	err = r.collection.FindOne(ctx, bson.M{"_id": oid}).Decode(&batch)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find batch: %w", err)
	}
	return &batch, nil
}

func (r *BatchRepository) findList(ctx context.Context, filter bson.M) (domain.BatchList, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}, {Key: "_id", Value: 1}})
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query batches: %w", err)
	}
	defer cursor.Close(ctx)

	var batches domain.BatchList
	if err := cursor.All(ctx, &batches); err != nil {
		return nil, fmt.Errorf("failed to decode batches: %w", err)
	}
	return batches, nil
}

// FindActive returns non-depleted batches for a product in a warehouse,
// oldest first
func (r *BatchRepository) FindActive(ctx context.Context, tenantID, warehouseID, productID string) (domain.BatchList, error) {
	return r.findList(ctx, bson.M{
		"tenantId":    tenantID,
		"warehouseId": warehouseID,
		"productId":   productID,
		"depleted":    false,
	})
}

// FindByWarehouse returns all non-depleted batches in a warehouse
func (r *BatchRepository) FindByWarehouse(ctx context.Context, tenantID, warehouseID string) (domain.BatchList, error) {
	return r.findList(ctx, bson.M{
		"tenantId":    tenantID,
		"warehouseId": warehouseID,
		"depleted":    false,
	})
}

// FindExpiring returns batches with stock expiring on or before the cutoff
func (r *BatchRepository) FindExpiring(ctx context.Context, tenantID string, cutoff time.Time) (domain.BatchList, error) {
	return r.findList(ctx, bson.M{
		"tenantId":   tenantID,
		"depleted":   false,
		"expiryDate": bson.M{"$ne": nil, "$lte": cutoff},
	})
}

// FindAll returns every batch for the tenant
func (r *BatchRepository) FindAll(ctx context.Context, tenantID string) (domain.BatchList, error) {
	return r.findList(ctx, bson.M{"tenantId": tenantID})
}

// UpdateConsumption persists remaining/depleted conditioned on the version the
// batch was read at. A concurrent writer surfaces as ErrVersionConflict; the
// in-memory version advances only on success.
func (r *BatchRepository) UpdateConsumption(ctx context.Context, batch *domain.StockBatch) error {
	filter := bson.M{"_id": batch.ID, "version": batch.Version}
	update := bson.M{
		"$set": bson.M{
			"remaining": batch.Remaining,
			"depleted":  batch.Depleted,
			"updatedAt": time.Now().UTC(),
		},
		"$inc": bson.M{"version": 1},
	}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to update batch %s: %w", batch.ID.Hex(), err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("batch %s: %w", batch.ID.Hex(), domain.ErrVersionConflict)
	}

	batch.Version++
	return nil
}

// UpdatePrice sets a batch's selling price and, optionally, its expiry date,
// returning the updated document
func (r *BatchRepository) UpdatePrice(ctx context.Context, tenantID, batchID string, sellingPrice float64, expiryDate *time.Time) (*domain.StockBatch, error) {
	oid, err := primitive.ObjectIDFromHex(batchID)
	if err != nil {
		return nil, errors.ErrValidation(fmt.Sprintf("invalid batch id: %s", batchID))
	}

	set := bson.M{
		"sellingPrice": sellingPrice,
		"updatedAt":    time.Now().UTC(),
	}
	if expiryDate != nil {
		set["expiryDate"] = expiryDate
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	filter := bson.M{"_id": oid, "tenantId": tenantID}

	var batch domain.StockBatch
	err = r.collection.FindOneAndUpdate(ctx, filter, bson.M{"$set": set, "$inc": bson.M{"version": 1}}, opts).Decode(&batch)
	if err == mongo.ErrNoDocuments {
		return nil, errors.ErrNotFoundWithID("batch", batchID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update batch price: %w", err)
	}
	return &batch, nil
}

// DeleteByProductWarehouse hard-deletes a product's batches from one
// warehouse, returning the total units removed
func (r *BatchRepository) DeleteByProductWarehouse(ctx context.Context, tenantID, warehouseID, productID string) (int, error) {
	filter := bson.M{
		"tenantId":    tenantID,
		"warehouseId": warehouseID,
		"productId":   productID,
	}

	// Sum the remaining units before deleting so the caller can shrink the
	// denormalized product counter by the same amount
	batches, err := r.findList(ctx, filter)
	if err != nil {
		return 0, err
	}
	units := 0
	for _, b := range batches {
		if b.Available() {
			units += b.Remaining
		}
	}

	if _, err := r.collection.DeleteMany(ctx, filter); err != nil {
		return 0, fmt.Errorf("failed to delete batches: %w", err)
	}
	return units, nil
}
