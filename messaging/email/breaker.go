package email

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sony/gobreaker"
	"github.com/taskhive/taskhive/config"
	"github.com/taskhive/taskhive/ecode"
)

// BreakerSender bounds every send with a timeout and stops calling the
// provider while it keeps failing. Failures wrap ecode.ErrUnavailable.
type BreakerSender struct {
	next    Sender
	cb      *gobreaker.CircuitBreaker
	timeout time.Duration
}

// NewBreakerSender wraps next with a circuit breaker
func NewBreakerSender(name string, next Sender, timeout time.Duration, cfg *config.Breaker) *BreakerSender {
	if cfg == nil {
		cfg = &config.Breaker{MaxRequests: 1, Interval: time.Minute, Timeout: 30 * time.Second, MaxFailures: 5}
	}
	maxFailures := cfg.MaxFailures
	if maxFailures == 0 {
		maxFailures = 5
	}
	settings := gobreaker.Settings{
		Name:        name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFailures
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, ErrInvalidMessage)
		},
	}
	return &BreakerSender{
		next:    next,
		cb:      gobreaker.NewCircuitBreaker(settings),
		timeout: timeout,
	}
}

// Send sends through the wrapped sender
func (s *BreakerSender) Send(ctx context.Context, msg *Message) (string, error) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	res, err := s.cb.Execute(func() (any, error) {
		return s.next.Send(ctx, msg)
	})
	if err != nil {
		if errors.Is(err, ErrInvalidMessage) {
			return "", ecode.New(ecode.ErrValidation, err.Error())
		}
		return "", fmt.Errorf("email delivery failed: %v: %w", err, ecode.ErrUnavailable)
	}
	id, _ := res.(string)
	return id, nil
}

// State returns the breaker state, e.g. "closed" or "open".
func (s *BreakerSender) State() string {
	return s.cb.State().String()
}
