package app

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/fx"

	"github.com/polkiloo/hubsai/internal/analytics"
	"github.com/polkiloo/hubsai/internal/config"
	"github.com/polkiloo/hubsai/internal/domain/repository"
	"github.com/polkiloo/hubsai/internal/session"
	"github.com/polkiloo/hubsai/internal/storage/local"
	"github.com/polkiloo/hubsai/internal/worker"
)

// Module wires application services, runtime components, and lifecycle hooks.
var Module = fx.Options(
	fx.Provide(
		func(s *local.Storage) HealthChecker { return s },
		NewOnboardingFacade,
		newHTTPServer,
		newEventFlusher,
		newClientSweeper,
	),
	fx.Invoke(registerLifecycle),
)

type serverParams struct {
	fx.In

	Config *config.Config
	Router *gin.Engine
}

func newHTTPServer(p serverParams) *http.Server {
	return &http.Server{
		Addr:              p.Config.RunAddress,
		Handler:           p.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}
}

type flusherParams struct {
	fx.In

	Events    repository.EventLogRepository
	Collector analytics.Collector
	Config    *config.Config
	Logger    *slog.Logger
}

func newEventFlusher(p flusherParams) *worker.EventFlusher {
	return worker.NewEventFlusher(
		p.Events,
		p.Collector,
		p.Config.AnalyticsFlushInterval,
		p.Config.AnalyticsBatchSize,
		p.Logger,
	)
}

func newClientSweeper(clients *session.Registry, cfg *config.Config, logger *slog.Logger) *worker.ClientSweeper {
	return worker.NewClientSweeper(clients, sweepInterval(cfg.ClientIdleTTL), logger)
}

// sweepInterval checks for idle clients several times per idle period.
func sweepInterval(idle time.Duration) time.Duration {
	interval := idle / 4
	if interval < time.Second {
		interval = time.Second
	}
	return interval
}

type lifecycleParams struct {
	fx.In

	Lifecycle  fx.Lifecycle
	Shutdowner fx.Shutdowner
	Logger     *slog.Logger
	Server     *http.Server
	Flusher    *worker.EventFlusher
	Sweeper    *worker.ClientSweeper
	Config     *config.Config
}

func registerLifecycle(p lifecycleParams) {
	p.Lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			p.Logger.Info("starting hubsai", slog.String("addr", p.Server.Addr))
			p.Flusher.Start(context.Background())
			p.Sweeper.Start(context.Background())
			go func() {
				if err := p.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					p.Logger.Error("http server terminated", slog.String("error", err.Error()))
					_ = p.Shutdowner.Shutdown()
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx := ctx
			cancel := func() {}
			if _, ok := ctx.Deadline(); !ok {
				shutdownCtx, cancel = context.WithTimeout(ctx, p.Config.ShutdownTimeout)
			}
			defer cancel()

			err := p.Server.Shutdown(shutdownCtx)
			p.Sweeper.Stop()
			p.Flusher.Stop(shutdownCtx)
			if err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			p.Logger.Info("hubsai stopped")
			return nil
		},
	})
}
