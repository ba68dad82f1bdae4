package shopify

import (
	"go.uber.org/fx"

	"github.com/polkiloo/hubsai/internal/config"
)

// Module provides the mocked catalogue with the configured lookup delay.
var Module = fx.Provide(func(cfg *config.Config) *Catalogue {
	return NewCatalogue(cfg.OrderLookupDelay)
})
