package repository

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/foxseedlab/boothscan/internal/config"
	"github.com/foxseedlab/boothscan/internal/repository"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/samber/do/v2"
)

const databaseInitTimeout = 15 * time.Second

func RegisterDI(injector do.Injector) {
	do.Provide(injector, func(i do.Injector) (*pgxpool.Pool, error) {
		cfg := do.MustInvoke[*config.Config](i)
		p, err := pgxpool.New(context.Background(), cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to create database pool: %w", err)
		}
		return p, nil
	})
	do.Provide(injector, func(i do.Injector) (repository.Repository, error) {
		repo := NewPostgresRepository(do.MustInvoke[*pgxpool.Pool](i))

		ctx, cancel := context.WithTimeout(context.Background(), databaseInitTimeout)
		defer cancel()
		if err := repo.Ping(ctx); err != nil {
			slog.Warn("database unavailable at startup; starting offline and migrating on first successful probe", "error", err)
		}
		return repo, nil
	})
}
