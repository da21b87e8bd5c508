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

const transactionsCollection = "transactions"

// mongoTransactionRepository implements TransactionRepository over MongoDB.
type mongoTransactionRepository struct {
	coll *mongo.Collection
}

// NewMongoTransactionRepository creates a TransactionRepository backed by MongoDB.
func NewMongoTransactionRepository(database *mongo.Database) TransactionRepository {
	return &mongoTransactionRepository{coll: database.Collection(transactionsCollection)}
}

func (r *mongoTransactionRepository) Insert(ctx context.Context, txn *models.Transaction) error {
	if txn.ID == "" {
		txn.ID = uuid.NewString()
	}
	if _, err := r.coll.InsertOne(ctx, txn); err != nil {
		return fmt.Errorf("failed to insert transaction %s: %w", txn.ID, err)
	}
	return nil
}

func (r *mongoTransactionRepository) FindByID(ctx context.Context, id string) (*models.Transaction, error) {
	var txn models.Transaction
	err := db.TryRead(func() error {
		return r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&txn)
	})
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("error finding transaction %s: %w", id, err)
	}
	return &txn, nil
}

func (r *mongoTransactionRepository) FindByBuyer(ctx context.Context, buyerID string) ([]models.Transaction, error) {
	return r.findBy(ctx, bson.M{"buyer_id": buyerID})
}

func (r *mongoTransactionRepository) FindBySeller(ctx context.Context, sellerID string) ([]models.Transaction, error) {
	return r.findBy(ctx, bson.M{"seller_id": sellerID})
}

func (r *mongoTransactionRepository) findBy(ctx context.Context, query bson.M) ([]models.Transaction, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	var results []models.Transaction
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
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	return results, nil
}

func (r *mongoTransactionRepository) TransitionStatus(ctx context.Context, id string, from, to models.TransactionStatus, completedAt *time.Time) (bool, error) {
	setDoc := bson.M{
		"status":     to,
		"updated_at": time.Now().UTC(),
	}
	if completedAt != nil {
		setDoc["completed_at"] = *completedAt
	}
	result, err := r.coll.UpdateOne(ctx, bson.M{"_id": id, "status": from}, bson.M{"$set": setDoc})
	if err != nil {
		return false, fmt.Errorf("db error transitioning transaction %s %s->%s: %w", id, from, to, err)
	}
	return result.MatchedCount == 1, nil
}
