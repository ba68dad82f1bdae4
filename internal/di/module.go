package di

import (
	"go.uber.org/fx"

	"github.com/polkiloo/hubsai/internal/adapter/backend"
	"github.com/polkiloo/hubsai/internal/adapter/shopify"
	"github.com/polkiloo/hubsai/internal/analytics"
	"github.com/polkiloo/hubsai/internal/app"
	"github.com/polkiloo/hubsai/internal/config"
	"github.com/polkiloo/hubsai/internal/logger"
	"github.com/polkiloo/hubsai/internal/pkg/auth"
	"github.com/polkiloo/hubsai/internal/server/http/handlers"
	"github.com/polkiloo/hubsai/internal/server/http/router"
	"github.com/polkiloo/hubsai/internal/session"
	"github.com/polkiloo/hubsai/internal/storage"
	"github.com/polkiloo/hubsai/internal/usecase"
)

func Module(opts ...fx.Option) fx.Option {
	modules := []fx.Option{
		config.Module,
		logger.Module,
		auth.Module,
		storage.Module,
		backend.Module,
		shopify.Module,
		analytics.Module,
		usecase.Module,
		session.Module,
		fx.Provide(func(f *app.OnboardingFacade) handlers.ClientFacade { return f }),
		router.Module,
		app.Module,
	}
	modules = append(modules, opts...)
	return fx.Options(modules...)
}
