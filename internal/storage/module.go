// Package storage selects and wires the key-value store backing every
// repository: the shared Postgres store when a DSN is configured, the
// embedded SQLite store otherwise.
package storage

import (
	"context"
	"log/slog"

	"go.uber.org/fx"

	"github.com/polkiloo/hubsai/internal/config"
	"github.com/polkiloo/hubsai/internal/domain/repository"
	"github.com/polkiloo/hubsai/internal/pkg/walletkey"
	"github.com/polkiloo/hubsai/internal/storage/local"
	"github.com/polkiloo/hubsai/internal/storage/postgres"
	"github.com/polkiloo/hubsai/internal/storage/sqlite"
)

// Module provides the key-value store and the typed repositories on top of it.
var Module = fx.Options(
	fx.Provide(
		NewKeyValueStore,
		func(cfg *config.Config) local.Sealer { return walletkey.NewSealer(cfg.WalletSealingKey) },
		local.New,
		func(s *local.Storage) repository.CredentialRepository { return s.Credentials() },
		func(s *local.Storage) repository.CurrentUserRepository { return s.CurrentUsers() },
		func(s *local.Storage) repository.WalletRepository { return s.Wallets() },
		func(s *local.Storage) repository.SetupFlagRepository { return s.SetupFlags() },
		func(s *local.Storage) repository.EventLogRepository { return s.Events() },
	),
)

type closer interface {
	Close() error
}

// NewKeyValueStore opens the configured store and closes it on shutdown.
func NewKeyValueStore(lc fx.Lifecycle, cfg *config.Config, logger *slog.Logger) (repository.KeyValueStore, error) {
	ctx := context.Background()
	log := logger.With("component", "storage")

	var (
		kv repository.KeyValueStore
		c  closer
	)
	if cfg.DatabaseURI != "" {
		pg, err := postgres.New(ctx, cfg.DatabaseURI, log)
		if err != nil {
			return nil, err
		}
		kv, c = pg, closeFunc(func() error { pg.Close(); return nil })
		log.Info("using shared postgres store")
	} else {
		sq, err := sqlite.Open(ctx, cfg.StorePath, log)
		if err != nil {
			return nil, err
		}
		kv, c = sq, sq
		log.Info("using embedded sqlite store", slog.String("path", cfg.StorePath))
	}

	lc.Append(fx.Hook{
		OnStop: func(context.Context) error { return c.Close() },
	})
	return kv, nil
}

type closeFunc func() error

func (f closeFunc) Close() error { return f() }
