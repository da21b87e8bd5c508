package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/divesh330/timevault/internal/db"
	"github.com/divesh330/timevault/internal/models"
)

const listingsCollection = "listings"

// mongoListingRepository implements ListingRepository over MongoDB.
type mongoListingRepository struct {
	coll *mongo.Collection
}

// NewMongoListingRepository creates a ListingRepository backed by MongoDB.
func NewMongoListingRepository(database *mongo.Database) ListingRepository {
	return &mongoListingRepository{coll: database.Collection(listingsCollection)}
}

func (r *mongoListingRepository) Insert(ctx context.Context, listing *models.Listing) error {
	if listing.ID == "" {
		listing.ID = uuid.NewString()
	}
	_, err := r.coll.InsertOne(ctx, listing)
	if err != nil {
		if db.IsDuplicateKeyError(err) {
			// Partial unique index on serial_number over non-terminal statuses.
			return ErrDuplicate
		}
		return fmt.Errorf("failed to insert listing %s: %w", listing.ID, err)
	}
	return nil
}

func (r *mongoListingRepository) FindByID(ctx context.Context, id string) (*models.Listing, error) {
	var listing models.Listing
	err := db.TryRead(func() error {
		return r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&listing)
	})
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("error finding listing %s: %w", id, err)
	}
	return &listing, nil
}

func (r *mongoListingRepository) Update(ctx context.Context, id string, set map[string]interface{}) (*models.Listing, error) {
	setDoc := bson.M{}
	for key, value := range set {
		setDoc[key] = value
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var updated models.Listing
	err := r.coll.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": setDoc}, opts).Decode(&updated)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to update listing %s: %w", id, err)
	}
	return &updated, nil
}

func (r *mongoListingRepository) Find(ctx context.Context, filter ListingFilter) ([]models.Listing, error) {
	query := bson.M{}
	if filter.Status != nil {
		query["status"] = *filter.Status
	}
	if filter.Brand != nil {
		query["brand"] = *filter.Brand
	}
	if filter.Condition != nil {
		query["condition"] = *filter.Condition
	}
	if filter.MinPrice != nil || filter.MaxPrice != nil {
		price := bson.M{}
		if filter.MinPrice != nil {
			price["$gte"] = *filter.MinPrice
		}
		if filter.MaxPrice != nil {
			price["$lte"] = *filter.MaxPrice
		}
		query["price"] = price
	}

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	if filter.Limit > 0 {
		opts.SetLimit(filter.Limit)
	}

	var results []models.Listing
	err := db.TryRead(func() error {
		cursor, findErr := r.coll.Find(ctx, query, opts)
		if findErr != nil {
			return findErr
		}
		defer cursor.Close(ctx)
		results = results[:0]
		return cursor.All(ctx, &results)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to query listings: %w", err)
	}
	return results, nil
}

func (r *mongoListingRepository) CountSerialConflicts(ctx context.Context, serial, excludeID string) (int64, error) {
	query := bson.M{
		"serial_number": serial,
		"status": bson.M{"$in": bson.A{
			models.ListingStatusActive,
			models.ListingStatusPending,
		}},
	}
	if excludeID != "" {
		query["_id"] = bson.M{"$ne": excludeID}
	}

	var count int64
	err := db.TryRead(func() error {
		var countErr error
		count, countErr = r.coll.CountDocuments(ctx, query)
		return countErr
	})
	if err != nil {
		return 0, fmt.Errorf("failed to count serial conflicts for %q: %w", serial, err)
	}
	return count, nil
}

func (r *mongoListingRepository) TransitionStatus(ctx context.Context, id string, from, to models.ListingStatus) (bool, error) {
	filter := bson.M{"_id": id, "status": from}
	update := bson.M{"$set": bson.M{
		"status":     to,
		"updated_at": time.Now().UTC(),
	}}
	result, err := r.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, fmt.Errorf("db error transitioning listing %s %s->%s: %w", id, from, to, err)
	}
	return result.MatchedCount == 1, nil
}

func (r *mongoListingRepository) SetStatus(ctx context.Context, id string, status models.ListingStatus) error {
	update := bson.M{"$set": bson.M{
		"status":     status,
		"updated_at": time.Now().UTC(),
	}}
	result, err := r.coll.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return fmt.Errorf("db error setting listing %s status to %s: %w", id, status, err)
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
