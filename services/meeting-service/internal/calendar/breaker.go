package calendar

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/sony/gobreaker/v2"

	"github.com/md-rashed-zaman/meetsync/services/meeting-service/internal/availability"
)

var ErrStoreUnavailable = errors.New("calendar store unavailable")

type BreakerConfig struct {
	MaxRequests      uint32
	Interval         time.Duration
	Timeout          time.Duration
	FailureThreshold uint32
}

func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{
		MaxRequests:      1,
		Interval:         time.Minute,
		Timeout:          30 * time.Second,
		FailureThreshold: 5,
	}
}

// BreakerStore stops calling next after FailureThreshold consecutive
// failures and fails fast with ErrStoreUnavailable until Timeout passes.
type BreakerStore struct {
	next    Store
	breaker *gobreaker.CircuitBreaker[[]availability.Participant]
}

func NewBreakerStore(next Store, cfg BreakerConfig, logger *slog.Logger) *BreakerStore {
	if cfg.FailureThreshold == 0 {
		cfg.FailureThreshold = DefaultBreakerConfig().FailureThreshold
	}
	settings := gobreaker.Settings{
		Name:        "calendar-store",
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.FailureThreshold
		},
		// a caller giving up says nothing about the database
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			if logger != nil {
				logger.Warn("circuit breaker state changed", "breaker", name, "from", from.String(), "to", to.String())
			}
		},
	}
	return &BreakerStore{
		next:    next,
		breaker: gobreaker.NewCircuitBreaker[[]availability.Participant](settings),
	}
}

func (s *BreakerStore) Participants(ctx context.Context, ids []int64, window availability.Interval) ([]availability.Participant, error) {
	participants, err := s.breaker.Execute(func() ([]availability.Participant, error) {
		return s.next.Participants(ctx, ids, window)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, ErrStoreUnavailable
	}
	return participants, err
}

func (s *BreakerStore) State() string {
	return s.breaker.State().String()
}
