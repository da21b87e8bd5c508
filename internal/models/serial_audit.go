package models

import (
	"time"
)

// SerialAudit records a successfully validated serial number at listing
// creation. Writes are best-effort: a failure to record must never fail
// the listing operation itself.
type SerialAudit struct {
	ID           string    `bson:"_id,omitempty" json:"id"`
	SerialNumber string    `bson:"serial_number" json:"serial_number"`
	Brand        string    `bson:"brand" json:"brand"`
	ListingID    string    `bson:"listing_id" json:"listing_id"`
	SellerID     string    `bson:"seller_id" json:"seller_id"`
	RecordedAt   time.Time `bson:"recorded_at" json:"recorded_at"`
}
