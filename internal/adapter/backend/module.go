package backend

import (
	"log/slog"

	"go.uber.org/fx"

	"github.com/polkiloo/hubsai/internal/config"
)

// Module exposes the backend client to the fx graph.
var Module = fx.Provide(newClient)

type clientParams struct {
	fx.In

	Config *config.Config
	Logger *slog.Logger
}

func newClient(p clientParams) (Client, error) {
	return NewHTTPClient(p.Config.BackendURL, p.Logger.With("component", "backend"))
}
