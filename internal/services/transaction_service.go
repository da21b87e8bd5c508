package services

import (
	"context"
	"errors"
	"log"
	"sort"
	"time"

	"github.com/divesh330/timevault/internal/errs"
	"github.com/divesh330/timevault/internal/models"
	"github.com/divesh330/timevault/internal/payment"
	"github.com/divesh330/timevault/internal/repository"
)

// Transaction query types for GetUserTransactions.
const (
	TransactionTypeAll       = "all"
	TransactionTypePurchases = "purchases"
	TransactionTypeSales     = "sales"
)

// UserTransaction is a transaction tagged with the user's side of it.
type UserTransaction struct {
	models.Transaction
	Type string `json:"type"` // "purchase" or "sale"
}

// TransactionDetail is a transaction enriched with its listing and the
// public profiles of both parties.
type TransactionDetail struct {
	models.Transaction
	Watch  *models.Listing   `json:"watch,omitempty"`
	Buyer  models.PublicUser `json:"buyer"`
	Seller models.PublicUser `json:"seller"`
}

// TransactionNotifier is notified fire-and-forget when a transaction
// completes. Implementations must never fail the triggering operation.
type TransactionNotifier interface {
	TransactionCompleted(ctx context.Context, txn *models.Transaction)
}

// ITransactionService defines the interface for the purchase workflow.
type ITransactionService interface {
	CreateTransaction(ctx context.Context, buyerID, watchID, shippingInfo, trackingID string) (*models.Transaction, error)
	GetUserTransactions(ctx context.Context, userID, transactionType string) ([]UserTransaction, error)
	GetTransactionByID(ctx context.Context, callerID, id string) (*TransactionDetail, error)
	UpdateTransactionStatus(ctx context.Context, callerID, id, newStatus string) (*models.Transaction, error)
}

// transactionService implements ITransactionService.
type transactionService struct {
	transactions repository.TransactionRepository
	listings     repository.ListingRepository
	users        repository.UserRepository
	processor    payment.Processor
	notifier     TransactionNotifier
}

// NewTransactionService creates a new TransactionService.
func NewTransactionService(
	transactions repository.TransactionRepository,
	listings repository.ListingRepository,
	users repository.UserRepository,
	processor payment.Processor,
	notifier TransactionNotifier,
) ITransactionService {
	return &transactionService{
		transactions: transactions,
		listings:     listings,
		users:        users,
		processor:    processor,
		notifier:     notifier,
	}
}

// CreateTransaction starts a purchase against an active listing. The listing
// moves active->pending through a compare-and-set, so of two buyers racing on
// the same listing exactly one wins; the loser observes ListingNotAvailable.
// The payment step runs before the CAS and holds no lock on the listing: the
// availability re-check after the payment delay is the CAS itself.
func (s *transactionService) CreateTransaction(ctx context.Context, buyerID, watchID, shippingInfo, trackingID string) (*models.Transaction, error) {
	listing, err := s.listings.FindByID(ctx, watchID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, errs.New(errs.KindNotFound, "listing %s not found", watchID)
		}
		return nil, errs.Wrap(errs.KindStoreUnavailable, err, "failed to load listing %s", watchID)
	}
	if listing.Status != models.ListingStatusActive {
		return nil, errs.New(errs.KindListingNotAvailable, "listing %s is not available for purchase", watchID)
	}
	if listing.SellerID == buyerID {
		return nil, errs.New(errs.KindSelfPurchase, "buyers cannot purchase their own listing")
	}

	if err := s.processor.Process(ctx); err != nil {
		// No writes have happened yet: a declined payment leaves no trace.
		return nil, errs.Wrap(errs.KindPaymentFailed, err, "payment failed for listing %s", watchID)
	}

	won, err := s.listings.TransitionStatus(ctx, watchID, models.ListingStatusActive, models.ListingStatusPending)
	if err != nil {
		return nil, errs.Wrap(errs.KindStoreUnavailable, err, "failed to reserve listing %s", watchID)
	}
	if !won {
		// Sold, removed, or reserved by a concurrent buyer during the payment step.
		return nil, errs.New(errs.KindListingNotAvailable, "listing %s is not available for purchase", watchID)
	}

	now := time.Now().UTC()
	txn := &models.Transaction{
		BuyerID:      buyerID,
		SellerID:     listing.SellerID,
		WatchID:      listing.ID,
		Price:        listing.Price, // snapshot: later listing edits do not touch it
		Status:       models.TransactionStatusPending,
		TrackingID:   trackingID,
		ShippingInfo: shippingInfo,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.transactions.Insert(ctx, txn); err != nil {
		// Release the reservation so the listing does not stay stuck in pending.
		if _, compErr := s.listings.TransitionStatus(ctx, watchID, models.ListingStatusPending, models.ListingStatusActive); compErr != nil {
			log.Printf("CRITICAL: listing %s reserved but transaction insert failed and release also failed: %v", watchID, compErr)
		}
		return nil, errs.Wrap(errs.KindStoreUnavailable, err, "failed to create transaction for listing %s", watchID)
	}

	return txn, nil
}

// GetUserTransactions returns the user's transactions, tagged with the side
// the user is on, newest first.
func (s *transactionService) GetUserTransactions(ctx context.Context, userID, transactionType string) ([]UserTransaction, error) {
	var results []UserTransaction

	if transactionType != TransactionTypeAll &&
		transactionType != TransactionTypePurchases &&
		transactionType != TransactionTypeSales {
		return nil, errs.New(errs.KindValidation, "invalid transaction type %q: expected all, purchases or sales", transactionType)
	}

	if transactionType == TransactionTypeAll || transactionType == TransactionTypePurchases {
		purchases, err := s.transactions.FindByBuyer(ctx, userID)
		if err != nil {
			return nil, errs.Wrap(errs.KindStoreUnavailable, err, "failed to load purchases for user %s", userID)
		}
		for _, txn := range purchases {
			results = append(results, UserTransaction{Transaction: txn, Type: "purchase"})
		}
	}
	if transactionType == TransactionTypeAll || transactionType == TransactionTypeSales {
		sales, err := s.transactions.FindBySeller(ctx, userID)
		if err != nil {
			return nil, errs.Wrap(errs.KindStoreUnavailable, err, "failed to load sales for user %s", userID)
		}
		for _, txn := range sales {
			results = append(results, UserTransaction{Transaction: txn, Type: "sale"})
		}
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].CreatedAt.After(results[j].CreatedAt)
	})
	return results, nil
}

// GetTransactionByID returns a single transaction, enriched with the listing
// and both parties' public profiles. Only the buyer and the seller may see it.
func (s *transactionService) GetTransactionByID(ctx context.Context, callerID, id string) (*TransactionDetail, error) {
	txn, err := s.findTransaction(ctx, id)
	if err != nil {
		return nil, err
	}
	if callerID != txn.BuyerID && callerID != txn.SellerID {
		return nil, errs.New(errs.KindForbidden, "only the buyer or seller may view transaction %s", id)
	}

	detail := &TransactionDetail{Transaction: *txn}

	// Enrichment is best-effort for the listing (it is never deleted
	// physically, but guard anyway); party profiles must resolve.
	if listing, err := s.listings.FindByID(ctx, txn.WatchID); err == nil {
		detail.Watch = listing
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, errs.Wrap(errs.KindStoreUnavailable, err, "failed to load listing %s", txn.WatchID)
	}

	buyer, err := s.users.FindByID(ctx, txn.BuyerID)
	if err != nil {
		return nil, errs.Wrap(errs.KindStoreUnavailable, err, "failed to load buyer %s", txn.BuyerID)
	}
	seller, err := s.users.FindByID(ctx, txn.SellerID)
	if err != nil {
		return nil, errs.Wrap(errs.KindStoreUnavailable, err, "failed to load seller %s", txn.SellerID)
	}
	detail.Buyer = buyer.Public()
	detail.Seller = seller.Public()

	return detail, nil
}

// UpdateTransactionStatus applies a seller-initiated status transition and
// its listing side effect:
//
//	pending -> completed   listing pending -> sold, completedAt set
//	pending -> cancelled   listing pending -> active
//	pending -> refunded    listing unchanged
//
// Terminal transaction states are immutable; any transition out of them
// fails with InvalidStateTransition.
func (s *transactionService) UpdateTransactionStatus(ctx context.Context, callerID, id, newStatus string) (*models.Transaction, error) {
	target := models.TransactionStatus(newStatus)
	if !target.Valid() {
		return nil, errs.New(errs.KindInvalidStatus,
			"invalid status %q: expected pending, completed, cancelled or refunded", newStatus)
	}

	txn, err := s.findTransaction(ctx, id)
	if err != nil {
		return nil, err
	}
	if callerID != txn.SellerID {
		return nil, errs.New(errs.KindForbidden, "only the seller may update transaction %s", id)
	}
	if txn.Status != models.TransactionStatusPending || target == models.TransactionStatusPending {
		return nil, errs.New(errs.KindInvalidStateTransition,
			"transaction %s cannot move from %s to %s", id, txn.Status, target)
	}

	var completedAt *time.Time
	if target == models.TransactionStatusCompleted {
		now := time.Now().UTC()
		completedAt = &now
	}

	won, err := s.transactions.TransitionStatus(ctx, id, models.TransactionStatusPending, target, completedAt)
	if err != nil {
		return nil, errs.Wrap(errs.KindStoreUnavailable, err, "failed to update transaction %s", id)
	}
	if !won {
		// A concurrent update already moved the transaction out of pending.
		return nil, errs.New(errs.KindInvalidStateTransition,
			"transaction %s is no longer pending", id)
	}

	// Listing side effect per the state machine. A failed side effect is a
	// store-level inconsistency: the transaction transition already won, so
	// log loudly instead of reporting a failure for a change that happened.
	switch target {
	case models.TransactionStatusCompleted:
		if ok, err := s.listings.TransitionStatus(ctx, txn.WatchID, models.ListingStatusPending, models.ListingStatusSold); err != nil || !ok {
			log.Printf("CRITICAL: transaction %s completed but listing %s could not move pending->sold (ok=%t): %v", id, txn.WatchID, ok, err)
		}
	case models.TransactionStatusCancelled:
		if ok, err := s.listings.TransitionStatus(ctx, txn.WatchID, models.ListingStatusPending, models.ListingStatusActive); err != nil || !ok {
			log.Printf("CRITICAL: transaction %s cancelled but listing %s could not move pending->active (ok=%t): %v", id, txn.WatchID, ok, err)
		}
	case models.TransactionStatusRefunded:
		// Listing unchanged.
	}

	txn.Status = target
	txn.UpdatedAt = time.Now().UTC()
	txn.CompletedAt = completedAt

	if target == models.TransactionStatusCompleted {
		s.notifier.TransactionCompleted(ctx, txn)
	}

	return txn, nil
}

func (s *transactionService) findTransaction(ctx context.Context, id string) (*models.Transaction, error) {
	txn, err := s.transactions.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, errs.New(errs.KindNotFound, "transaction %s not found", id)
		}
		return nil, errs.Wrap(errs.KindStoreUnavailable, err, "failed to load transaction %s", id)
	}
	return txn, nil
}
