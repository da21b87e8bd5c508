package models

import (
	"time"
)

// TransactionStatus is the lifecycle state of a purchase transaction.
type TransactionStatus string

const (
	TransactionStatusPending   TransactionStatus = "pending"
	TransactionStatusCompleted TransactionStatus = "completed"
	TransactionStatusCancelled TransactionStatus = "cancelled"
	TransactionStatusRefunded  TransactionStatus = "refunded"
)

// Valid reports whether s is one of the known transaction statuses.
func (s TransactionStatus) Valid() bool {
	switch s {
	case TransactionStatusPending, TransactionStatusCompleted, TransactionStatusCancelled, TransactionStatusRefunded:
		return true
	}
	return false
}

// Terminal reports whether no further transitions are allowed out of s.
func (s TransactionStatus) Terminal() bool {
	return s == TransactionStatusCompleted || s == TransactionStatusCancelled || s == TransactionStatusRefunded
}

// Transaction represents a purchase workflow instance linking a buyer,
// a seller and a listing. Price is snapshotted from the listing at
// creation time and never reconciled with later listing edits.
type Transaction struct {
	ID           string            `bson:"_id,omitempty" json:"id"`
	BuyerID      string            `bson:"buyer_id" json:"buyer_id"`
	SellerID     string            `bson:"seller_id" json:"seller_id"`
	WatchID      string            `bson:"watch_id" json:"watch_id"`
	Price        float64           `bson:"price" json:"price"`
	Status       TransactionStatus `bson:"status" json:"status"`
	TrackingID   string            `bson:"tracking_id,omitempty" json:"tracking_id,omitempty"`
	ShippingInfo string            `bson:"shipping_info,omitempty" json:"shipping_info,omitempty"`
	CreatedAt    time.Time         `bson:"created_at" json:"created_at"`
	UpdatedAt    time.Time         `bson:"updated_at" json:"updated_at"`
	CompletedAt  *time.Time        `bson:"completed_at,omitempty" json:"completed_at,omitempty"`
}
