// Package memory provides the demo-mode document store: the same repository
// contracts as the MongoDB implementations, backed by mutex-guarded maps.
// Compare-and-set transitions run under the store lock, so racing
// createTransaction calls resolve to a single winner just like with the
// Mongo filtered update.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/divesh330/timevault/internal/models"
	"github.com/divesh330/timevault/internal/repository"
)

// Store holds all demo-mode collections behind a single mutex.
type Store struct {
	mu           sync.RWMutex
	listings     map[string]models.Listing
	transactions map[string]models.Transaction
	users        map[string]models.User
	audits       []models.SerialAudit
}

// NewStore creates an empty in-memory store.
func NewStore() *Store {
	return &Store{
		listings:     make(map[string]models.Listing),
		transactions: make(map[string]models.Transaction),
		users:        make(map[string]models.User),
	}
}

// NewRepositories bundles the in-memory repositories over a fresh store.
func NewRepositories() *repository.Repositories {
	s := NewStore()
	return &repository.Repositories{
		Listings:     &listingRepository{store: s},
		Transactions: &transactionRepository{store: s},
		Users:        &userRepository{store: s},
		SerialAudits: &serialAuditRepository{store: s},
	}
}

// --- Listings ---

type listingRepository struct {
	store *Store
}

func (r *listingRepository) Insert(ctx context.Context, listing *models.Listing) error {
	if listing.ID == "" {
		listing.ID = uuid.NewString()
	}
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, existing := range r.store.listings {
		if existing.SerialNumber == listing.SerialNumber && !existing.Status.Terminal() {
			return repository.ErrDuplicate
		}
	}
	r.store.listings[listing.ID] = *listing
	return nil
}

func (r *listingRepository) FindByID(ctx context.Context, id string) (*models.Listing, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	listing, ok := r.store.listings[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &listing, nil
}

func (r *listingRepository) Update(ctx context.Context, id string, set map[string]interface{}) (*models.Listing, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	listing, ok := r.store.listings[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	applyListingSet(&listing, set)
	r.store.listings[id] = listing
	return &listing, nil
}

// applyListingSet mirrors a Mongo $set over the BSON field names the
// services use for partial updates.
func applyListingSet(listing *models.Listing, set map[string]interface{}) {
	for key, value := range set {
		switch key {
		case "title":
			listing.Title = value.(string)
		case "brand":
			listing.Brand = value.(string)
		case "description":
			listing.Description = value.(string)
		case "condition":
			listing.Condition = value.(models.Condition)
		case "price":
			listing.Price = value.(float64)
		case "serial_number":
			listing.SerialNumber = value.(string)
		case "status":
			listing.Status = value.(models.ListingStatus)
		case "updated_at":
			listing.UpdatedAt = value.(time.Time)
		}
	}
}

func (r *listingRepository) Find(ctx context.Context, filter repository.ListingFilter) ([]models.Listing, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	results := make([]models.Listing, 0)
	for _, listing := range r.store.listings {
		if filter.Status != nil && listing.Status != *filter.Status {
			continue
		}
		if filter.Brand != nil && !strings.EqualFold(listing.Brand, *filter.Brand) {
			continue
		}
		if filter.Condition != nil && listing.Condition != *filter.Condition {
			continue
		}
		if filter.MinPrice != nil && listing.Price < *filter.MinPrice {
			continue
		}
		if filter.MaxPrice != nil && listing.Price > *filter.MaxPrice {
			continue
		}
		results = append(results, listing)
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].CreatedAt.After(results[j].CreatedAt)
	})
	if filter.Limit > 0 && int64(len(results)) > filter.Limit {
		results = results[:filter.Limit]
	}
	return results, nil
}

func (r *listingRepository) CountSerialConflicts(ctx context.Context, serial, excludeID string) (int64, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	var count int64
	for _, listing := range r.store.listings {
		if listing.ID == excludeID {
			continue
		}
		if listing.SerialNumber == serial && !listing.Status.Terminal() {
			count++
		}
	}
	return count, nil
}

func (r *listingRepository) TransitionStatus(ctx context.Context, id string, from, to models.ListingStatus) (bool, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	listing, ok := r.store.listings[id]
	if !ok || listing.Status != from {
		return false, nil
	}
	listing.Status = to
	listing.UpdatedAt = time.Now().UTC()
	r.store.listings[id] = listing
	return true, nil
}

func (r *listingRepository) SetStatus(ctx context.Context, id string, status models.ListingStatus) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	listing, ok := r.store.listings[id]
	if !ok {
		return repository.ErrNotFound
	}
	listing.Status = status
	listing.UpdatedAt = time.Now().UTC()
	r.store.listings[id] = listing
	return nil
}

// --- Transactions ---

type transactionRepository struct {
	store *Store
}

func (r *transactionRepository) Insert(ctx context.Context, txn *models.Transaction) error {
	if txn.ID == "" {
		txn.ID = uuid.NewString()
	}
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.transactions[txn.ID] = *txn
	return nil
}

func (r *transactionRepository) FindByID(ctx context.Context, id string) (*models.Transaction, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	txn, ok := r.store.transactions[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &txn, nil
}

func (r *transactionRepository) FindByBuyer(ctx context.Context, buyerID string) ([]models.Transaction, error) {
	return r.findBy(func(t models.Transaction) bool { return t.BuyerID == buyerID })
}

func (r *transactionRepository) FindBySeller(ctx context.Context, sellerID string) ([]models.Transaction, error) {
	return r.findBy(func(t models.Transaction) bool { return t.SellerID == sellerID })
}

func (r *transactionRepository) findBy(match func(models.Transaction) bool) ([]models.Transaction, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	results := make([]models.Transaction, 0)
	for _, txn := range r.store.transactions {
		if match(txn) {
			results = append(results, txn)
		}
	}
	sort.Slice(results, func(i, j int) bool {
		return results[i].CreatedAt.After(results[j].CreatedAt)
	})
	return results, nil
}

func (r *transactionRepository) TransitionStatus(ctx context.Context, id string, from, to models.TransactionStatus, completedAt *time.Time) (bool, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	txn, ok := r.store.transactions[id]
	if !ok || txn.Status != from {
		return false, nil
	}
	txn.Status = to
	txn.UpdatedAt = time.Now().UTC()
	if completedAt != nil {
		txn.CompletedAt = completedAt
	}
	r.store.transactions[id] = txn
	return true, nil
}

// --- Users ---

type userRepository struct {
	store *Store
}

func (r *userRepository) Insert(ctx context.Context, user *models.User) error {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, existing := range r.store.users {
		if strings.EqualFold(existing.Email, user.Email) {
			return repository.ErrDuplicate
		}
	}
	r.store.users[user.ID] = *user
	return nil
}

func (r *userRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	user, ok := r.store.users[id]
	if !ok || user.Deleted {
		return nil, repository.ErrNotFound
	}
	return &user, nil
}

func (r *userRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	for _, user := range r.store.users {
		if strings.EqualFold(user.Email, email) && !user.Deleted {
			u := user
			return &u, nil
		}
	}
	return nil, repository.ErrNotFound
}

// --- Serial audit ---

type serialAuditRepository struct {
	store *Store
}

func (r *serialAuditRepository) Insert(ctx context.Context, entry *models.SerialAudit) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.audits = append(r.store.audits, *entry)
	return nil
}
