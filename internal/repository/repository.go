// Package repository abstracts the document store behind one interface per
// collection, so the managers in internal/services are written once and run
// against either MongoDB or the in-memory demo store.
package repository

import (
	"context"
	"errors"
	"time"

	"github.com/divesh330/timevault/internal/models"
)

var (
	// ErrNotFound is returned when no document matches the given ID or filter.
	ErrNotFound = errors.New("document not found")
	// ErrDuplicate is returned when an insert violates a uniqueness constraint.
	ErrDuplicate = errors.New("duplicate document")
)

// ListingFilter holds the equality/range predicates for listing queries.
// Nil fields are not applied. Results are ordered by created_at descending
// and bounded by Limit.
type ListingFilter struct {
	Status    *models.ListingStatus
	Brand     *string
	Condition *models.Condition
	MinPrice  *float64
	MaxPrice  *float64
	Limit     int64
}

// ListingRepository is the store surface of the listing lifecycle manager.
type ListingRepository interface {
	Insert(ctx context.Context, listing *models.Listing) error
	FindByID(ctx context.Context, id string) (*models.Listing, error)
	// Update applies a partial update and returns the updated listing.
	Update(ctx context.Context, id string, set map[string]interface{}) (*models.Listing, error)
	Find(ctx context.Context, filter ListingFilter) ([]models.Listing, error)
	// CountSerialConflicts counts listings holding the serial in a
	// non-terminal status (active or pending), excluding excludeID if set.
	CountSerialConflicts(ctx context.Context, serial, excludeID string) (int64, error)
	// TransitionStatus is a compare-and-set: it moves the listing from
	// `from` to `to` only if it is still in `from`, and reports whether
	// the write won. Racing callers observe false and must treat the
	// listing as unavailable.
	TransitionStatus(ctx context.Context, id string, from, to models.ListingStatus) (bool, error)
	// SetStatus forces the status unconditionally (soft delete path,
	// which is idempotent by contract).
	SetStatus(ctx context.Context, id string, status models.ListingStatus) error
}

// TransactionRepository is the store surface of the transaction workflow manager.
type TransactionRepository interface {
	Insert(ctx context.Context, txn *models.Transaction) error
	FindByID(ctx context.Context, id string) (*models.Transaction, error)
	// FindByBuyer and FindBySeller return transactions ordered by
	// created_at descending.
	FindByBuyer(ctx context.Context, buyerID string) ([]models.Transaction, error)
	FindBySeller(ctx context.Context, sellerID string) ([]models.Transaction, error)
	// TransitionStatus is a compare-and-set over the transaction status.
	// completedAt, when non-nil, is persisted alongside the transition.
	TransitionStatus(ctx context.Context, id string, from, to models.TransactionStatus, completedAt *time.Time) (bool, error)
}

// UserRepository is the store surface of the user service.
type UserRepository interface {
	// Insert returns ErrDuplicate when the email is already taken.
	Insert(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, id string) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
}

// SerialAuditRepository persists best-effort serial validation records.
type SerialAuditRepository interface {
	Insert(ctx context.Context, entry *models.SerialAudit) error
}

// Repositories bundles the per-collection repositories for wiring.
type Repositories struct {
	Listings     ListingRepository
	Transactions TransactionRepository
	Users        UserRepository
	SerialAudits SerialAuditRepository
}
