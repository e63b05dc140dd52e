package mongodb

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/opsdash/platform/internal/domain"
)

// SaleRepository persists sale records in the sales collection
type SaleRepository struct {
	collection *mongo.Collection
}

// NewSaleRepository creates a SaleRepository and ensures its indexes
func NewSaleRepository(db *mongo.Database) *SaleRepository {
	repo := &SaleRepository{collection: db.Collection("sales")}
	repo.ensureIndexes(context.Background())
	return repo
}

func (r *SaleRepository) ensureIndexes(ctx context.Context) {
	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "tenantId", Value: 1}, {Key: "soldAt", Value: -1}}},
		{Keys: bson.D{
			{Key: "tenantId", Value: 1},
			{Key: "productId", Value: 1},
			{Key: "soldAt", Value: -1},
		}},
	}
	r.collection.Indexes().CreateMany(ctx, indexes)
}

// Insert stores a new sale record
func (r *SaleRepository) Insert(ctx context.Context, sale *domain.Sale) error {
	if _, err := r.collection.InsertOne(ctx, sale); err != nil {
		return fmt.Errorf("failed to insert sale: %w", err)
	}
	return nil
}

func (r *SaleRepository) findList(ctx context.Context, filter bson.M) ([]*domain.Sale, error) {
	opts := options.Find().SetSort(bson.D{{Key: "soldAt", Value: -1}})
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query sales: %w", err)
	}
	defer cursor.Close(ctx)

	var sales []*domain.Sale
	if err := cursor.All(ctx, &sales); err != nil {
		return nil, fmt.Errorf("failed to decode sales: %w", err)
	}
	return sales, nil
}

// FindSince returns sales booked on or after the given time
func (r *SaleRepository) FindSince(ctx context.Context, tenantID string, since time.Time) ([]*domain.Sale, error) {
	return r.findList(ctx, bson.M{
		"tenantId": tenantID,
		"soldAt":   bson.M{"$gte": since},
	})
}

// FindByProduct returns one product's sales since the given time
func (r *SaleRepository) FindByProduct(ctx context.Context, tenantID, productID string, since time.Time) ([]*domain.Sale, error) {
	return r.findList(ctx, bson.M{
		"tenantId":  tenantID,
		"productId": productID,
		"soldAt":    bson.M{"$gte": since},
	})
}
