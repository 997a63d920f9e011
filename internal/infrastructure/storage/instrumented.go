package storage

import (
	"context"
	"time"

	"github.com/aryan0dhankhar/coursehub/internal/observability/metrics"
)

// Instrumented records the latency and outcome of each backend call
type Instrumented struct {
	next Backend
	name string
}

// NewInstrumented wraps next, labelling metrics with the backend name
func NewInstrumented(next Backend, name string) *Instrumented {
	return &Instrumented{next: next, name: name}
}

func (i *Instrumented) Read(ctx context.Context, key string) (string, bool, error) {
	start := time.Now()
	v, ok, err := i.next.Read(ctx, key)
	result := "hit"
	switch {
	case err != nil:
		result = "error"
	case !ok:
		result = "miss"
	}
	metrics.ObserveStorage(i.name, "read", result, time.Since(start))
	return v, ok, err
}

func (i *Instrumented) Write(ctx context.Context, key, value string) error {
	start := time.Now()
	err := i.next.Write(ctx, key, value)
	metrics.ObserveStorage(i.name, "write", outcome(err), time.Since(start))
	return err
}

func (i *Instrumented) Remove(ctx context.Context, key string) error {
	start := time.Now()
	err := i.next.Remove(ctx, key)
	metrics.ObserveStorage(i.name, "remove", outcome(err), time.Since(start))
	return err
}

func (i *Instrumented) Ping(ctx context.Context) error { return i.next.Ping(ctx) }
func (i *Instrumented) Close() error                   { return i.next.Close() }

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
