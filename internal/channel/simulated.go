package channel

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// Simulated is an in-process Sender that stands in for real transports. It
// models per-send latency and lets tests register failing targets. The
// clock is injectable so latency is deterministic under test.
type Simulated struct {
	latency time.Duration
	clock   clockwork.Clock

	mu       sync.RWMutex
	failures map[string]bool
}

func NewSimulated(latency time.Duration, clock clockwork.Clock) *Simulated {
	return &Simulated{
		latency:  latency,
		clock:    clock,
		failures: make(map[string]bool),
	}
}

// Fail marks a target (phone, email, or device id) so subsequent sends to
// it fail.
func (s *Simulated) Fail(target string) {
	s.mu.Lock()
	s.failures[target] = true
	s.mu.Unlock()
}

func (s *Simulated) SendSMS(ctx context.Context, phone, message string) error {
	return s.send(ctx, "sms", phone)
}

func (s *Simulated) SendEmail(ctx context.Context, address, subject, message string) error {
	return s.send(ctx, "email", address)
}

func (s *Simulated) SendPush(ctx context.Context, deviceID, title, message string) error {
	return s.send(ctx, "push", deviceID)
}

func (s *Simulated) send(ctx context.Context, kind, target string) error {
	if s.latency > 0 {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-s.clock.After(s.latency):
		}
	} else if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.RLock()
	failed := s.failures[target]
	s.mu.RUnlock()
	if failed {
		return fmt.Errorf("%w: %s to %s", ErrSendFailed, kind, target)
	}
	return nil
}
