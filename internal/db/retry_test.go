package db

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/mongo"
)

func mockDuplicateKeyError() error {
	return mongo.WriteException{
		WriteErrors: []mongo.WriteError{
			{Code: 11000, Message: "E11000 duplicate key error"},
		},
	}
}

func TestWithRetries_SuccessfulFirstAttempt(t *testing.T) {
	attempts := 0
	op := func() error {
		attempts++
		return nil
	}

	err := WithRetries(op, 3, IsTransientError)
	assert.NoError(t, err)
	assert.Equal(t, 1, attempts)
}

func TestWithRetries_NonRetryableFailsImmediately(t *testing.T) {
	attempts := 0
	permanent := errors.New("permanent failure")
	op := func() error {
		attempts++
		return permanent
	}

	err := WithRetries(op, 3, IsTransientError)
	assert.ErrorIs(t, err, permanent)
	assert.Equal(t, 1, attempts)
}

func TestWithRetries_ExhaustRetries(t *testing.T) {
	attempts := 0
	flaky := errors.New("transient failure")
	op := func() error {
		attempts++
		return flaky
	}

	err := WithRetries(op, 2, func(error) bool { return true })
	assert.ErrorIs(t, err, flaky)
	assert.Equal(t, 3, attempts) // initial attempt + 2 retries
}

func TestWithRetries_RecoversAfterTransientFailure(t *testing.T) {
	attempts := 0
	op := func() error {
		attempts++
		if attempts < 3 {
			return errors.New("transient failure")
		}
		return nil
	}

	err := WithRetries(op, 3, func(error) bool { return true })
	assert.NoError(t, err)
	assert.Equal(t, 3, attempts)
}

func TestIsDuplicateKeyError(t *testing.T) {
	assert.True(t, IsDuplicateKeyError(mockDuplicateKeyError()))
	assert.False(t, IsDuplicateKeyError(errors.New("some other error")))
	assert.False(t, IsDuplicateKeyError(nil))
}

func TestIsTransientError_NoDocumentsIsNotTransient(t *testing.T) {
	assert.False(t, IsTransientError(mongo.ErrNoDocuments))
	assert.False(t, IsTransientError(nil))
}
