package storage

import "context"

type prefixed struct {
	next   Backend
	prefix string
}

// WithPrefix namespaces every key as prefix + ":" + key, so several
// deployments can share one Redis or Postgres.
func WithPrefix(next Backend, prefix string) Backend {
	return &prefixed{next: next, prefix: prefix + ":"}
}

func (p *prefixed) Read(ctx context.Context, key string) (string, bool, error) {
	return p.next.Read(ctx, p.prefix+key)
}

func (p *prefixed) Write(ctx context.Context, key, value string) error {
	return p.next.Write(ctx, p.prefix+key, value)
}

func (p *prefixed) Remove(ctx context.Context, key string) error {
	return p.next.Remove(ctx, p.prefix+key)
}

func (p *prefixed) Ping(ctx context.Context) error { return p.next.Ping(ctx) }
func (p *prefixed) Close() error                   { return p.next.Close() }
