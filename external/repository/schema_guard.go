package repository

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
)

// schemaGuard runs the migration after the first ping that reaches the
// database. A failed migration is retried on the next ping.
type schemaGuard struct {
	ping    func(ctx context.Context) error
	migrate func(ctx context.Context) error

	mu       sync.Mutex
	migrated bool
}

func newSchemaGuard(ping, migrate func(ctx context.Context) error) *schemaGuard {
	return &schemaGuard{ping: ping, migrate: migrate}
}

func (g *schemaGuard) check(ctx context.Context) error {
	if err := g.ping(ctx); err != nil {
		return err
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	if g.migrated {
		return nil
	}
	if err := g.migrate(ctx); err != nil {
		return fmt.Errorf("failed to run migration: %w", err)
	}
	g.migrated = true
	slog.Info("database schema migrated")
	return nil
}
