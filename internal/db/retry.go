package db

import (
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
)

// Operation is a function that performs an action and returns an error if it fails.
type Operation func() error

// IsRetryable is a predicate deciding whether a failed attempt may be retried.
type IsRetryable func(err error) bool

const DefaultMaxRetries = 3

// TryRead executes an idempotent read with default retry settings for
// transient store failures. Writes must not go through this helper: without
// idempotency keys a blind write retry can double-apply.
func TryRead(op Operation) error {
	return WithRetries(op, DefaultMaxRetries, IsTransientError)
}

// WithRetries executes an operation with a retry mechanism.
// It attempts the operation up to 1+maxRetries times with a simple
// incremental backoff between attempts.
func WithRetries(op Operation, maxRetries int, retryable IsRetryable) error {
	var err error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		err = op()
		if err == nil {
			return nil // Success
		}

		if attempt == maxRetries {
			break
		}

		if retryable(err) {
			time.Sleep(time.Duration(50*(attempt+1)) * time.Millisecond)
		} else {
			return err // Not retryable, return immediately
		}
	}
	return err // All attempts failed or last attempt failed
}

// IsTransientError reports whether an error from MongoDB is a transient
// network or timeout failure worth retrying for idempotent reads.
func IsTransientError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, mongo.ErrNoDocuments) {
		return false
	}
	return mongo.IsNetworkError(err) || mongo.IsTimeout(err)
}

// IsDuplicateKeyError checks if an error from MongoDB is a duplicate key
// error (code 11000). Used to map unique-index violations onto domain
// conflicts (duplicate serial number, duplicate email).
func IsDuplicateKeyError(err error) bool {
	var e mongo.WriteException
	if errors.As(err, &e) {
		for _, we := range e.WriteErrors {
			if we.Code == 11000 {
				return true
			}
		}
	}
	// Also check for BulkWriteException, which can contain duplicate key errors
	var bwe mongo.BulkWriteException
	if errors.As(err, &bwe) {
		for _, writeError := range bwe.WriteErrors {
			if writeError.Code == 11000 {
				return true
			}
		}
	}
	return false
}
