package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aryan0dhankhar/coursehub/internal/domain"
	"github.com/aryan0dhankhar/coursehub/internal/observability/metrics"
	"github.com/aryan0dhankhar/coursehub/internal/reliability/circuitbreaker"
	"github.com/aryan0dhankhar/coursehub/internal/reliability/retry"
)

// ResilienceConfig tunes retries and the circuit breaker
type ResilienceConfig struct {
	Retry            *retry.Config
	FailureThreshold int32
	SuccessThreshold int32
	OpenTimeout      time.Duration
}

// DefaultResilienceConfig returns the settings used by Open
func DefaultResilienceConfig() ResilienceConfig {
	return ResilienceConfig{
		Retry:            retry.DefaultConfig(),
		FailureThreshold: 5,
		SuccessThreshold: 1,
		OpenTimeout:      10 * time.Second,
	}
}

// Resilient retries transient backend failures and fails fast with
// domain.ErrStorageUnavailable once the circuit opens.
type Resilient struct {
	next    Backend
	retry   *retry.Config
	breaker *circuitbreaker.CircuitBreaker
	logger  *slog.Logger
}

// NewResilient wraps next
func NewResilient(next Backend, cfg ResilienceConfig, logger *slog.Logger) *Resilient {
	if logger == nil {
		logger = slog.Default()
	}
	cb := circuitbreaker.NewCircuitBreaker(cfg.FailureThreshold, cfg.SuccessThreshold, cfg.OpenTimeout)
	cb.SetStateChangeCallback(func(from, to circuitbreaker.State) {
		logger.Warn("storage circuit breaker state changed",
			slog.String("from", from.String()),
			slog.String("to", to.String()),
		)
		metrics.ObserveBreakerTransition(to.String())
	})
	return &Resilient{
		next:    next,
		retry:   cfg.Retry,
		breaker: cb,
		logger:  logger,
	}
}

func (r *Resilient) Read(ctx context.Context, key string) (string, bool, error) {
	type result struct {
		value string
		ok    bool
	}
	var res result
	err := r.call(ctx, "storage.read:"+key, func(ctx context.Context) error {
		v, ok, err := r.next.Read(ctx, key)
		res = result{value: v, ok: ok}
		return err
	})
	if err != nil {
		return "", false, err
	}
	return res.value, res.ok, nil
}

func (r *Resilient) Write(ctx context.Context, key, value string) error {
	return r.call(ctx, "storage.write:"+key, func(ctx context.Context) error {
		return r.next.Write(ctx, key, value)
	})
}

func (r *Resilient) Remove(ctx context.Context, key string) error {
	return r.call(ctx, "storage.remove:"+key, func(ctx context.Context) error {
		return r.next.Remove(ctx, key)
	})
}

func (r *Resilient) Ping(ctx context.Context) error {
	if r.breaker.GetState() == circuitbreaker.StateOpen {
		return domain.ErrStorageUnavailable
	}
	return r.next.Ping(ctx)
}

func (r *Resilient) Close() error {
	return r.next.Close()
}

func (r *Resilient) call(ctx context.Context, op string, fn func(ctx context.Context) error) error {
	err := r.breaker.Execute(func() error {
		_, err := retry.Do(ctx, r.retry, r.logger, op, func(ctx context.Context) (struct{}, error) {
			err := fn(ctx)
			if isContextErr(err) {
				return struct{}{}, retry.Permanent(err)
			}
			return struct{}{}, err
		})
		return err
	}, func(err error) bool { return !isContextErr(err) })

	if errors.Is(err, circuitbreaker.ErrOpen) {
		return fmt.Errorf("%s: %w", op, domain.ErrStorageUnavailable)
	}
	return err
}

func isContextErr(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
