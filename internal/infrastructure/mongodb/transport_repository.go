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

// TransportRepository persists vehicles in the transports collection
type TransportRepository struct {
	collection *mongo.Collection
}

// NewTransportRepository creates a TransportRepository and ensures its indexes
func NewTransportRepository(db *mongo.Database) *TransportRepository {
	repo := &TransportRepository{collection: db.Collection("transports")}
	repo.ensureIndexes(context.Background())
	return repo
}

func (r *TransportRepository) ensureIndexes(ctx context.Context) {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "tenantId", Value: 1}, {Key: "identifier", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{Keys: bson.D{{Key: "tenantId", Value: 1}, {Key: "status", Value: 1}}},
	}
	r.collection.Indexes().CreateMany(ctx, indexes)
}

// Insert stores a new vehicle
func (r *TransportRepository) Insert(ctx context.Context, transport *domain.Transport) error {
	if _, err := r.collection.InsertOne(ctx, transport); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return errors.ErrConflict(fmt.Sprintf("transport %s already exists", transport.Identifier))
		}
		return fmt.Errorf("failed to insert transport: %w", err)
	}
	return nil
}

// FindByID loads one vehicle; returns nil when not found
func (r *TransportRepository) FindByID(ctx context.Context, tenantID, id string) (*domain.Transport, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, errors.ErrValidation(fmt.Sprintf("invalid transport id: %s", id))
	}

	filter := mongodb.NotDeleted(bson.M{"_id": oid, "tenantId": tenantID})

	var transport domain.Transport
	err = r.collection.FindOne(ctx, filter).Decode(&transport)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find transport: %w", err)
	}
	return &transport, nil
}

// FindAvailable returns vehicles ready for assignment
func (r *TransportRepository) FindAvailable(ctx context.Context, tenantID string) ([]*domain.Transport, error) {
	filter := mongodb.NotDeleted(bson.M{"tenantId": tenantID, "status": domain.TransportAvailable})
	opts := options.Find().SetSort(bson.D{{Key: "identifier", Value: 1}})

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query transports: %w", err)
	}
	defer cursor.Close(ctx)

	var transports []*domain.Transport
	if err := cursor.All(ctx, &transports); err != nil {
		return nil, fmt.Errorf("failed to decode transports: %w", err)
	}
	return transports, nil
}

// UpdateStatus moves a vehicle between available, in-use and maintenance
func (r *TransportRepository) UpdateStatus(ctx context.Context, tenantID, id string, status domain.TransportStatus) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return errors.ErrValidation(fmt.Sprintf("invalid transport id: %s", id))
	}

	filter := bson.M{"_id": oid, "tenantId": tenantID}
	update := bson.M{"$set": bson.M{"status": status, "updatedAt": time.Now().UTC()}}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to update transport status: %w", err)
	}
	if result.MatchedCount == 0 {
		return errors.ErrNotFoundWithID("transport", id)
	}
	return nil
}
