package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/divesh330/timevault/internal/db"
	"github.com/divesh330/timevault/internal/models"
)

const usersCollection = "users"

// mongoUserRepository implements UserRepository over MongoDB.
type mongoUserRepository struct {
	coll *mongo.Collection
}

// NewMongoUserRepository creates a UserRepository backed by MongoDB.
func NewMongoUserRepository(database *mongo.Database) UserRepository {
	return &mongoUserRepository{coll: database.Collection(usersCollection)}
}

func (r *mongoUserRepository) Insert(ctx context.Context, user *models.User) error {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	if _, err := r.coll.InsertOne(ctx, user); err != nil {
		if db.IsDuplicateKeyError(err) {
			// Unique index on email.
			return ErrDuplicate
		}
		return fmt.Errorf("failed to insert user %s: %w", user.ID, err)
	}
	return nil
}

func (r *mongoUserRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	return r.findOne(ctx, bson.M{"_id": id, "deleted": false})
}

func (r *mongoUserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.findOne(ctx, bson.M{"email": email, "deleted": false})
}

func (r *mongoUserRepository) findOne(ctx context.Context, query bson.M) (*models.User, error) {
	var user models.User
	err := db.TryRead(func() error {
		return r.coll.FindOne(ctx, query).Decode(&user)
	})
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("error finding user: %w", err)
	}
	return &user, nil
}
