package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/aryan0dhankhar/coursehub/internal/domain"
	"github.com/aryan0dhankhar/coursehub/pkg/cache"
)

var errDiskFull = errors.New("disk full")

// failingKV wraps the memory cache and fails writes while failWrites is set
type failingKV struct {
	*cache.Cache
	mu         sync.Mutex
	failWrites bool
	writes     int
}

func newFailingKV() *failingKV {
	return &failingKV{Cache: cache.New()}
}

func (f *failingKV) setFailWrites(v bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failWrites = v
}

func (f *failingKV) writeCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.writes
}

func (f *failingKV) Write(ctx context.Context, key, value string) error {
	f.mu.Lock()
	fail := f.failWrites
	if !fail {
		f.writes++
	}
	f.mu.Unlock()
	if fail {
		return errDiskFull
	}
	return f.Cache.Write(ctx, key, value)
}

func (f *failingKV) Remove(ctx context.Context, key string) error {
	f.mu.Lock()
	fail := f.failWrites
	f.mu.Unlock()
	if fail {
		return errDiskFull
	}
	return f.Cache.Remove(ctx, key)
}

// seqIDs hands out prefix-1, prefix-2, ...
type seqIDs struct {
	mu     sync.Mutex
	prefix string
	n      int
}

func (g *seqIDs) NewID() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n++
	return fmt.Sprintf("%s-%d", g.prefix, g.n)
}

// recorder collects published events
type recorder struct {
	mu     sync.Mutex
	events []domain.Event
}

func (r *recorder) Publish(e domain.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *recorder) types() []domain.EventType {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.EventType, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.Type)
	}
	return out
}
