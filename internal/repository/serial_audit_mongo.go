package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/divesh330/timevault/internal/models"
)

const serialAuditCollection = "serial_audit"

// mongoSerialAuditRepository implements SerialAuditRepository over MongoDB.
type mongoSerialAuditRepository struct {
	coll *mongo.Collection
}

// NewMongoSerialAuditRepository creates a SerialAuditRepository backed by MongoDB.
func NewMongoSerialAuditRepository(database *mongo.Database) SerialAuditRepository {
	return &mongoSerialAuditRepository{coll: database.Collection(serialAuditCollection)}
}

func (r *mongoSerialAuditRepository) Insert(ctx context.Context, entry *models.SerialAudit) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if _, err := r.coll.InsertOne(ctx, entry); err != nil {
		return fmt.Errorf("failed to insert serial audit record for %s: %w", entry.ListingID, err)
	}
	return nil
}

// NewMongoRepositories bundles all Mongo-backed repositories.
func NewMongoRepositories(database *mongo.Database) *Repositories {
	return &Repositories{
		Listings:     NewMongoListingRepository(database),
		Transactions: NewMongoTransactionRepository(database),
		Users:        NewMongoUserRepository(database),
		SerialAudits: NewMongoSerialAuditRepository(database),
	}
}
