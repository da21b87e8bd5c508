package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/divesh330/timevault/internal/audit"
	"github.com/divesh330/timevault/internal/config"
	"github.com/divesh330/timevault/internal/errs"
	"github.com/divesh330/timevault/internal/models"
	"github.com/divesh330/timevault/internal/repository"
)

// CreateListingInput holds the fields for a new listing.
// Description is the only optional field.
type CreateListingInput struct {
	Title        string
	Brand        string
	Condition    string
	SerialNumber string
	Description  string
	Price        float64
}

// UpdateListingInput holds a partial update; nil fields are left unchanged.
type UpdateListingInput struct {
	Title        *string
	Brand        *string
	Condition    *string
	SerialNumber *string
	Description  *string
	Price        *float64
}

// ListingFilters holds the query predicates for ListListings.
type ListingFilters struct {
	Status    *string
	Brand     *string
	Condition *string
	MinPrice  *float64
	MaxPrice  *float64
	Limit     int
}

// IListingService defines the interface for listing lifecycle operations.
type IListingService interface {
	CreateListing(ctx context.Context, sellerID string, in CreateListingInput) (*models.Listing, error)
	GetListingByID(ctx context.Context, id string) (*models.Listing, error)
	UpdateListing(ctx context.Context, callerID, id string, in UpdateListingInput) (*models.Listing, error)
	RemoveListing(ctx context.Context, callerID string, callerRole models.Role, id string) error
	ListListings(ctx context.Context, filters ListingFilters) ([]models.Listing, error)
}

// listingService implements IListingService.
type listingService struct {
	listings repository.ListingRepository
	cfg      *config.Config
	recorder audit.Recorder
}

// NewListingService creates a new ListingService.
func NewListingService(listings repository.ListingRepository, cfg *config.Config, recorder audit.Recorder) IListingService {
	return &listingService{listings: listings, cfg: cfg, recorder: recorder}
}

// CreateListing validates the serial number, enforces its uniqueness across
// non-terminal listings, and creates the listing in status active.
func (s *listingService) CreateListing(ctx context.Context, sellerID string, in CreateListingInput) (*models.Listing, error) {
	if err := validateCreateInput(in); err != nil {
		return nil, err
	}
	brand := strings.ToLower(in.Brand)

	if err := ValidateSerialFormat(brand, in.SerialNumber); err != nil {
		return nil, err
	}

	count, err := s.listings.CountSerialConflicts(ctx, in.SerialNumber, "")
	if err != nil {
		return nil, errs.Wrap(errs.KindStoreUnavailable, err, "failed to check serial number uniqueness")
	}
	if count > 0 {
		return nil, errs.New(errs.KindDuplicateSerialNumber,
			"an active or pending listing with serial number %q already exists", in.SerialNumber)
	}

	now := time.Now().UTC()
	listing := &models.Listing{
		SellerID:     sellerID,
		Brand:        brand,
		Title:        in.Title,
		Description:  in.Description,
		Condition:    models.Condition(in.Condition),
		Price:        in.Price,
		SerialNumber: in.SerialNumber,
		Status:       models.ListingStatusActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.listings.Insert(ctx, listing); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			// Lost a race with a concurrent create holding the same serial.
			return nil, errs.New(errs.KindDuplicateSerialNumber,
				"an active or pending listing with serial number %q already exists", in.SerialNumber)
		}
		return nil, errs.Wrap(errs.KindStoreUnavailable, err, "failed to create listing")
	}

	// Best-effort audit of the validated serial; never fails the create.
	s.recorder.Record(ctx, models.SerialAudit{
		SerialNumber: listing.SerialNumber,
		Brand:        listing.Brand,
		ListingID:    listing.ID,
		SellerID:     listing.SellerID,
		RecordedAt:   now,
	})

	return listing, nil
}

func validateCreateInput(in CreateListingInput) error {
	switch {
	case strings.TrimSpace(in.Title) == "":
		return errs.New(errs.KindValidation, "title is required")
	case strings.TrimSpace(in.Brand) == "":
		return errs.New(errs.KindValidation, "brand is required")
	case strings.TrimSpace(in.SerialNumber) == "":
		return errs.New(errs.KindValidation, "serial number is required")
	case in.Price < 0:
		return errs.New(errs.KindValidation, "price must be non-negative")
	case !models.Condition(in.Condition).Valid():
		return errs.New(errs.KindValidation, "invalid condition %q", in.Condition)
	}
	return nil
}

// GetListingByID fetches a single listing.
func (s *listingService) GetListingByID(ctx context.Context, id string) (*models.Listing, error) {
	listing, err := s.listings.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, errs.New(errs.KindNotFound, "listing %s not found", id)
		}
		return nil, errs.Wrap(errs.KindStoreUnavailable, err, "failed to load listing %s", id)
	}
	return listing, nil
}

// UpdateListing applies a partial update by the listing's seller. A changed
// serial number is re-validated and re-checked for duplicates, excluding the
// listing itself from the scan.
func (s *listingService) UpdateListing(ctx context.Context, callerID, id string, in UpdateListingInput) (*models.Listing, error) {
	listing, err := s.GetListingByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if listing.SellerID != callerID {
		return nil, errs.New(errs.KindForbidden, "only the seller may update listing %s", id)
	}

	set := map[string]interface{}{}
	if in.Title != nil {
		if strings.TrimSpace(*in.Title) == "" {
			return nil, errs.New(errs.KindValidation, "title must not be empty")
		}
		set["title"] = *in.Title
	}
	if in.Description != nil {
		set["description"] = *in.Description
	}
	if in.Condition != nil {
		if !models.Condition(*in.Condition).Valid() {
			return nil, errs.New(errs.KindValidation, "invalid condition %q", *in.Condition)
		}
		set["condition"] = models.Condition(*in.Condition)
	}
	if in.Price != nil {
		if *in.Price < 0 {
			return nil, errs.New(errs.KindValidation, "price must be non-negative")
		}
		set["price"] = *in.Price
	}

	// The serial must satisfy the (possibly updated) brand's format rule.
	brand := listing.Brand
	if in.Brand != nil {
		brand = strings.ToLower(*in.Brand)
		set["brand"] = brand
	}
	serial := listing.SerialNumber
	serialChanged := in.SerialNumber != nil && *in.SerialNumber != listing.SerialNumber
	if serialChanged {
		serial = *in.SerialNumber
		set["serial_number"] = serial
	}
	if serialChanged || (in.Brand != nil && brand != listing.Brand) {
		if err := ValidateSerialFormat(brand, serial); err != nil {
			return nil, err
		}
	}
	if serialChanged {
		count, err := s.listings.CountSerialConflicts(ctx, serial, id)
		if err != nil {
			return nil, errs.Wrap(errs.KindStoreUnavailable, err, "failed to check serial number uniqueness")
		}
		if count > 0 {
			return nil, errs.New(errs.KindDuplicateSerialNumber,
				"an active or pending listing with serial number %q already exists", serial)
		}
	}

	if len(set) == 0 {
		return nil, errs.New(errs.KindValidation, "no fields provided for update")
	}
	set["updated_at"] = time.Now().UTC()

	updated, err := s.listings.Update(ctx, id, set)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, errs.New(errs.KindNotFound, "listing %s not found", id)
		}
		return nil, errs.Wrap(errs.KindStoreUnavailable, err, "failed to update listing %s", id)
	}
	return updated, nil
}

// RemoveListing soft-deletes a listing: the status moves to removed and the
// document stays in the store. Removing an already-removed listing succeeds
// silently. Allowed for the seller or an admin.
func (s *listingService) RemoveListing(ctx context.Context, callerID string, callerRole models.Role, id string) error {
	listing, err := s.GetListingByID(ctx, id)
	if err != nil {
		return err
	}
	if listing.SellerID != callerID && callerRole != models.RoleAdmin {
		return errs.New(errs.KindForbidden, "only the seller or an admin may remove listing %s", id)
	}
	if listing.Status == models.ListingStatusRemoved {
		return nil // idempotent
	}
	if err := s.listings.SetStatus(ctx, id, models.ListingStatusRemoved); err != nil {
		return errs.Wrap(errs.KindStoreUnavailable, err, "failed to remove listing %s", id)
	}
	return nil
}

// ListListings returns listings matching the given equality/range filters,
// newest first. Results are always bounded: a missing or out-of-range limit
// falls back to the configured defaults.
func (s *listingService) ListListings(ctx context.Context, filters ListingFilters) ([]models.Listing, error) {
	repoFilter := repository.ListingFilter{
		MinPrice: filters.MinPrice,
		MaxPrice: filters.MaxPrice,
	}

	status := models.ListingStatusActive
	if filters.Status != nil {
		status = models.ListingStatus(*filters.Status)
		if !status.Valid() {
			return nil, errs.New(errs.KindValidation, "invalid status %q", *filters.Status)
		}
	}
	repoFilter.Status = &status

	if filters.Brand != nil {
		brand := strings.ToLower(*filters.Brand)
		repoFilter.Brand = &brand
	}
	if filters.Condition != nil {
		condition := models.Condition(*filters.Condition)
		if !condition.Valid() {
			return nil, errs.New(errs.KindValidation, "invalid condition %q", *filters.Condition)
		}
		repoFilter.Condition = &condition
	}
	if filters.MinPrice != nil && filters.MaxPrice != nil && *filters.MinPrice > *filters.MaxPrice {
		return nil, errs.New(errs.KindValidation, "min_price must not exceed max_price")
	}

	limit := filters.Limit
	if limit <= 0 {
		limit = s.cfg.DefaultListingLimit
	}
	if limit > s.cfg.MaxListingLimit {
		limit = s.cfg.MaxListingLimit
	}
	repoFilter.Limit = int64(limit)

	listings, err := s.listings.Find(ctx, repoFilter)
	if err != nil {
		return nil, errs.Wrap(errs.KindStoreUnavailable, err, "failed to query listings")
	}
	return listings, nil
}
