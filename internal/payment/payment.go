// Package payment abstracts the payment step of a purchase. The real system
// has no gateway integration; the simulator stands in for one in demo mode.
package payment

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"time"
)

// ErrDeclined is returned when the (simulated) payment does not go through.
var ErrDeclined = errors.New("payment declined")

// Processor performs the payment step of a purchase. Process blocks for the
// duration of the payment and must not be called while holding any lock on
// the listing.
type Processor interface {
	Process(ctx context.Context) error
}

// NoopProcessor accepts every payment instantly. Used outside demo mode,
// where no gateway is integrated.
type NoopProcessor struct{}

func (NoopProcessor) Process(ctx context.Context) error {
	return nil
}

// Simulator delays for a configured duration and then draws success against
// a configured probability.
type Simulator struct {
	delay       time.Duration
	successRate float64

	mu  sync.Mutex
	rnd *rand.Rand
}

// NewSimulator creates a payment simulator. successRate must be in [0, 1].
func NewSimulator(delay time.Duration, successRate float64) *Simulator {
	return &Simulator{
		delay:       delay,
		successRate: successRate,
		rnd:         rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Process waits for the configured delay (or context cancellation) and then
// reports ErrDeclined with probability 1-successRate.
func (s *Simulator) Process(ctx context.Context) error {
	if s.delay > 0 {
		timer := time.NewTimer(s.delay)
		defer timer.Stop()
		select {
		case <-timer.C:
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	s.mu.Lock()
	draw := s.rnd.Float64()
	s.mu.Unlock()

	if draw >= s.successRate {
		return ErrDeclined
	}
	return nil
}
