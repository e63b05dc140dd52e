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

// ShipmentRepository persists shipments; every read filters soft-deleted docs
type ShipmentRepository struct {
	collection *mongo.Collection
}

// NewShipmentRepository creates a ShipmentRepository and ensures its indexes
func NewShipmentRepository(db *mongo.Database) *ShipmentRepository {
	repo := &ShipmentRepository{collection: db.Collection("shipments")}
	repo.ensureIndexes(context.Background())
	return repo
}

func (r *ShipmentRepository) ensureIndexes(ctx context.Context) {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "shipmentNumber", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{Keys: bson.D{{Key: "tenantId", Value: 1}, {Key: "trackingNumber", Value: 1}}},
		{Keys: bson.D{
			{Key: "tenantId", Value: 1},
			{Key: "status", Value: 1},
			{Key: "createdAt", Value: -1},
		}},
		{Keys: bson.D{
			{Key: "tenantId", Value: 1},
			{Key: "originWarehouseId", Value: 1},
		}},
		{Keys: bson.D{
			{Key: "tenantId", Value: 1},
			{Key: "destinationWarehouseId", Value: 1},
		}},
	}
	r.collection.Indexes().CreateMany(ctx, indexes)
}

// Insert stores a new shipment
func (r *ShipmentRepository) Insert(ctx context.Context, shipment *domain.Shipment) error {
	if _, err := r.collection.InsertOne(ctx, shipment); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return errors.ErrConflict(fmt.Sprintf("shipment number %s already exists", shipment.ShipmentNumber))
		}
		return fmt.Errorf("failed to insert shipment: %w", err)
	}
	return nil
}

// FindByID loads one shipment; returns nil when not found or deleted
func (r *ShipmentRepository) FindByID(ctx context.Context, tenantID, id string) (*domain.Shipment, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, errors.ErrValidation(fmt.Sprintf("invalid shipment id: %s", id))
	}

	filter := mongodb.NotDeleted(bson.M{"_id": oid, "tenantId": tenantID})

	var shipment domain.Shipment
	err = r.collection.FindOne(ctx, filter).Decode(&shipment)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find shipment: %w", err)
	}
	return &shipment, nil
}

// FindByTracking loads one shipment by tracking number
func (r *ShipmentRepository) FindByTracking(ctx context.Context, tenantID, trackingNumber string) (*domain.Shipment, error) {
	filter := mongodb.NotDeleted(bson.M{"tenantId": tenantID, "trackingNumber": trackingNumber})

	var shipment domain.Shipment
	err := r.collection.FindOne(ctx, filter).Decode(&shipment)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find shipment: %w", err)
	}
	return &shipment, nil
}

// Find returns shipments matching the filter, newest first
func (r *ShipmentRepository) Find(ctx context.Context, tenantID string, filter domain.ShipmentFilter) ([]*domain.Shipment, error) {
	query := bson.M{"tenantId": tenantID}
	if filter.Status != "" {
		query["status"] = filter.Status
	}
	if filter.Priority != "" {
		query["priority"] = filter.Priority
	}
	if filter.WarehouseID != "" {
		query["$or"] = []bson.M{
			{"originWarehouseId": filter.WarehouseID},
			{"destinationWarehouseId": filter.WarehouseID},
		}
	}
	query = mongodb.NotDeleted(query)

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	if filter.Limit > 0 {
		opts.SetLimit(filter.Limit).SetSkip(filter.Offset)
	}

	cursor, err := r.collection.Find(ctx, query, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query shipments: %w", err)
	}
	defer cursor.Close(ctx)

	var shipments []*domain.Shipment
	if err := cursor.All(ctx, &shipments); err != nil {
		return nil, fmt.Errorf("failed to decode shipments: %w", err)
	}
	return shipments, nil
}

// Update replaces the shipment document
func (r *ShipmentRepository) Update(ctx context.Context, shipment *domain.Shipment) error {
	shipment.UpdatedAt = time.Now().UTC()
	filter := bson.M{"_id": shipment.ID, "tenantId": shipment.TenantID}

	result, err := r.collection.ReplaceOne(ctx, filter, shipment)
	if err != nil {
		return fmt.Errorf("failed to update shipment: %w", err)
	}
	if result.MatchedCount == 0 {
		return errors.ErrNotFoundWithID("shipment", shipment.ID.Hex())
	}
	return nil
}

// SoftDelete flags the shipment deleted; the document stays queryable for audit
func (r *ShipmentRepository) SoftDelete(ctx context.Context, tenantID, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return errors.ErrValidation(fmt.Sprintf("invalid shipment id: %s", id))
	}

	filter := mongodb.NotDeleted(bson.M{"_id": oid, "tenantId": tenantID})
	update := bson.M{"$set": bson.M{"del_flag": true, "updatedAt": time.Now().UTC()}}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to delete shipment: %w", err)
	}
	if result.MatchedCount == 0 {
		return errors.ErrNotFoundWithID("shipment", id)
	}
	return nil
}
