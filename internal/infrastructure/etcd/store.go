// Package etcd keeps the durable key-value records in etcd
package etcd

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	clientv3 "go.etcd.io/etcd/client/v3"
)

// Config configures the etcd connection
type Config struct {
	Endpoints   []string
	DialTimeout time.Duration
	Prefix      string
}

// Store is an etcd-backed key-value store. Keys live under Prefix.
type Store struct {
	client    *clientv3.Client
	prefix    string
	endpoints []string
	logger    *slog.Logger
}

// NewStore connects to etcd and checks the first endpoint's health
func NewStore(cfg Config, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if len(cfg.Endpoints) == 0 {
		return nil, fmt.Errorf("etcd endpoints required")
	}
	if cfg.DialTimeout == 0 {
		cfg.DialTimeout = 5 * time.Second
	}
	if cfg.Prefix == "" {
		cfg.Prefix = "/coursehub"
	}

	client, err := clientv3.New(clientv3.Config{
		Endpoints:   cfg.Endpoints,
		DialTimeout: cfg.DialTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to etcd: %w", err)
	}

	s := &Store{
		client:    client,
		prefix:    cfg.Prefix,
		endpoints: cfg.Endpoints,
		logger:    logger,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := s.Ping(ctx); err != nil {
		client.Close()
		return nil, fmt.Errorf("etcd health check failed: %w", err)
	}

	logger.Info("etcd store connected", slog.Any("endpoints", cfg.Endpoints))
	return s, nil
}

func (s *Store) key(k string) string {
	return s.prefix + "/" + k
}

// Read retrieves a value; a missing key is reported as ok=false
func (s *Store) Read(ctx context.Context, key string) (string, bool, error) {
	resp, err := s.client.Get(ctx, s.key(key))
	if err != nil {
		return "", false, fmt.Errorf("failed to get %s: %w", key, err)
	}
	if len(resp.Kvs) == 0 {
		return "", false, nil
	}
	return string(resp.Kvs[0].Value), true, nil
}

// Write puts a value
func (s *Store) Write(ctx context.Context, key, value string) error {
	if _, err := s.client.Put(ctx, s.key(key), value); err != nil {
		return fmt.Errorf("failed to put %s: %w", key, err)
	}
	return nil
}

// Remove deletes a key
func (s *Store) Remove(ctx context.Context, key string) error {
	if _, err := s.client.Delete(ctx, s.key(key)); err != nil {
		return fmt.Errorf("failed to delete %s: %w", key, err)
	}
	return nil
}

// Ping asks the first endpoint for its status
func (s *Store) Ping(ctx context.Context) error {
	_, err := s.client.Status(ctx, s.endpoints[0])
	return err
}

// Close closes the client
func (s *Store) Close() error {
	return s.client.Close()
}
