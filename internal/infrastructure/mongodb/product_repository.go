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
	"github.com/opsdash/platform/pkg/mongodb"
)

// ProductRepository persists the product catalog in the products collection
type ProductRepository struct {
	collection *mongo.Collection
}

// NewProductRepository creates a ProductRepository and ensures its indexes
func NewProductRepository(db *mongo.Database) *ProductRepository {
	repo := &ProductRepository{collection: db.Collection("products")}
	repo.ensureIndexes(context.Background())
	return repo
}

func (r *ProductRepository) ensureIndexes(ctx context.Context) {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "tenantId", Value: 1}, {Key: "sku", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{Keys: bson.D{{Key: "tenantId", Value: 1}, {Key: "category", Value: 1}}},
	}
	r.collection.Indexes().CreateMany(ctx, indexes)
}

// Insert stores a new product
func (r *ProductRepository) Insert(ctx context.Context, product *domain.Product) error {
	if _, err := r.collection.InsertOne(ctx, product); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return errors.ErrConflict(fmt.Sprintf("product with SKU %s already exists", product.SKU))
		}
		return fmt.Errorf("failed to insert product: %w", err)
	}
	return nil
}

// FindByID loads one product; returns nil when not found
func (r *ProductRepository) FindByID(ctx context.Context, tenantID, id string) (*domain.Product, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, errors.ErrValidation(fmt.Sprintf("invalid product id: %s", id))
	}

	filter := mongodb.NotDeleted(bson.M{"_id": oid, "tenantId": tenantID})

	var product domain.Product
	err = r.collection.FindOne(ctx, filter).Decode(&product)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find product: %w", err)
	}
	return &product, nil
}

// FindBySKU loads one product by SKU; returns nil when not found
func (r *ProductRepository) FindBySKU(ctx context.Context, tenantID, sku string) (*domain.Product, error) {
	filter := mongodb.NotDeleted(bson.M{"tenantId": tenantID, "sku": sku})

	var product domain.Product
	err := r.collection.FindOne(ctx, filter).Decode(&product)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find product: %w", err)
	}
	return &product, nil
}

// FindAll returns the tenant's catalog
func (r *ProductRepository) FindAll(ctx context.Context, tenantID string) ([]*domain.Product, error) {
	filter := mongodb.NotDeleted(bson.M{"tenantId": tenantID})
	opts := options.Find().SetSort(bson.D{{Key: "name", Value: 1}})

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer cursor.Close(ctx)

	var products []*domain.Product
	if err := cursor.All(ctx, &products); err != nil {
		return nil, fmt.Errorf("failed to decode products: %w", err)
	}
	return products, nil
}

// IncrementStock adjusts the denormalized total stock counter
func (r *ProductRepository) IncrementStock(ctx context.Context, tenantID, id string, delta int) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return errors.ErrValidation(fmt.Sprintf("invalid product id: %s", id))
	}

	filter := bson.M{"_id": oid, "tenantId": tenantID}
	update := bson.M{
		"$inc": bson.M{"stock": delta},
		"$set": bson.M{"updatedAt": time.Now().UTC()},
	}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to increment stock: %w", err)
	}
	if result.MatchedCount == 0 {
		return errors.ErrNotFoundWithID("product", id)
	}
	return nil
}
