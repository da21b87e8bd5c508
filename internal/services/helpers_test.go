package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/divesh330/timevault/internal/config"
	"github.com/divesh330/timevault/internal/models"
	"github.com/divesh330/timevault/internal/repository"
	"github.com/divesh330/timevault/internal/repository/memory"
)

func testConfig() *config.Config {
	return &config.Config{
		JwtSecret:           "test-secret",
		JwtTTL:              time.Hour,
		DefaultListingLimit: 50,
		MaxListingLimit:     200,
	}
}

// noopRecorder discards serial audit entries.
type noopRecorder struct{}

func (noopRecorder) Record(ctx context.Context, entry models.SerialAudit) {}

// stubProcessor returns a fixed payment outcome.
type stubProcessor struct {
	err error
}

func (p stubProcessor) Process(ctx context.Context) error { return p.err }

// captureNotifier records completed transactions handed to it.
type captureNotifier struct {
	completed []string
}

func (n *captureNotifier) TransactionCompleted(ctx context.Context, txn *models.Transaction) {
	n.completed = append(n.completed, txn.ID)
}

func seedUser(t *testing.T, repos *repository.Repositories, name string) *models.User {
	t.Helper()
	user := &models.User{
		Name:      name,
		Email:     name + "@example.com",
		Role:      models.RoleUser,
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}
	require.NoError(t, repos.Users.Insert(context.Background(), user))
	return user
}

func newTestRepos() *repository.Repositories {
	return memory.NewRepositories()
}

func validListingInput() CreateListingInput {
	return CreateListingInput{
		Title:        "Rolex Submariner Date",
		Brand:        "rolex",
		Condition:    "excellent",
		SerialNumber: "A1B2C3D4",
		Description:  "2019 full set",
		Price:        1000,
	}
}
