package payment

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSimulator_AlwaysSucceeds(t *testing.T) {
	sim := NewSimulator(0, 1.0)
	for i := 0; i < 20; i++ {
		assert.NoError(t, sim.Process(context.Background()))
	}
}

func TestSimulator_AlwaysDeclines(t *testing.T) {
	sim := NewSimulator(0, 0.0)
	for i := 0; i < 20; i++ {
		assert.ErrorIs(t, sim.Process(context.Background()), ErrDeclined)
	}
}

func TestSimulator_ContextCancelledDuringDelay(t *testing.T) {
	sim := NewSimulator(5*time.Second, 1.0)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	err := sim.Process(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestNoopProcessor(t *testing.T) {
	assert.NoError(t, NoopProcessor{}.Process(context.Background()))
}
