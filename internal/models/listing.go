package models

import (
	"time"
)

// ListingStatus is the lifecycle state of a watch listing.
type ListingStatus string

const (
	ListingStatusActive  ListingStatus = "active"
	ListingStatusPending ListingStatus = "pending" // reserved by an open transaction
	ListingStatusSold    ListingStatus = "sold"
	ListingStatusRemoved ListingStatus = "removed" // soft-deleted by the seller or an admin
)

// Valid reports whether s is one of the known listing statuses.
func (s ListingStatus) Valid() bool {
	switch s {
	case ListingStatusActive, ListingStatusPending, ListingStatusSold, ListingStatusRemoved:
		return true
	}
	return false
}

// Terminal reports whether the status frees up the listing's serial number.
// Duplicate detection only scans active and pending listings.
func (s ListingStatus) Terminal() bool {
	return s == ListingStatusSold || s == ListingStatusRemoved
}

// Condition describes the physical condition of a watch.
type Condition string

const (
	ConditionNew       Condition = "new"
	ConditionExcellent Condition = "excellent"
	ConditionGood      Condition = "good"
	ConditionFair      Condition = "fair"
	ConditionPoor      Condition = "poor"
)

// Valid reports whether c is one of the known conditions.
func (c Condition) Valid() bool {
	switch c {
	case ConditionNew, ConditionExcellent, ConditionGood, ConditionFair, ConditionPoor:
		return true
	}
	return false
}

// Listing represents a watch offered for sale.
type Listing struct {
	ID           string        `bson:"_id,omitempty" json:"id"`
	SellerID     string        `bson:"seller_id" json:"seller_id"`
	Brand        string        `bson:"brand" json:"brand"`
	Title        string        `bson:"title" json:"title"`
	Description  string        `bson:"description,omitempty" json:"description,omitempty"`
	Condition    Condition     `bson:"condition" json:"condition"`
	Price        float64       `bson:"price" json:"price"`
	SerialNumber string        `bson:"serial_number" json:"serial_number"`
	Status       ListingStatus `bson:"status" json:"status"`
	CreatedAt    time.Time     `bson:"created_at" json:"created_at"`
	UpdatedAt    time.Time     `bson:"updated_at" json:"updated_at"`
}
