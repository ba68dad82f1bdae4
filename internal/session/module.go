package session

import (
	"context"
	"log/slog"

	"go.uber.org/fx"

	"github.com/polkiloo/hubsai/internal/adapter/backend"
	"github.com/polkiloo/hubsai/internal/adapter/shopify"
	"github.com/polkiloo/hubsai/internal/analytics"
	"github.com/polkiloo/hubsai/internal/config"
	"github.com/polkiloo/hubsai/internal/domain/repository"
	"github.com/polkiloo/hubsai/internal/usecase"
)

// Module provides the client registry.
var Module = fx.Provide(newRegistry)

type registryParams struct {
	fx.In

	Lifecycle    fx.Lifecycle
	Config       *config.Config
	Logger       *slog.Logger
	Auth         *usecase.AuthUseCase
	Wallets      *usecase.WalletUseCase
	Orders       *shopify.Catalogue
	Tracker      *analytics.Tracker
	Backend      backend.Client
	CurrentUsers repository.CurrentUserRepository
}

func newRegistry(p registryParams) *Registry {
	reg := NewRegistry(Deps{
		Auth:         p.Auth,
		Wallets:      p.Wallets,
		Orders:       p.Orders,
		Tracker:      p.Tracker,
		Backend:      p.Backend,
		CurrentUsers: p.CurrentUsers,
		Logger:       p.Logger,
	}, RegistryConfig{
		IdleTTL:          p.Config.ClientIdleTTL,
		MaxClients:       p.Config.MaxClients,
		AutoAdvanceDelay: p.Config.AutoAdvanceDelay,
	})
	p.Lifecycle.Append(fx.Hook{OnStop: func(context.Context) error {
		reg.Close()
		return nil
	}})
	return reg
}
