package usecase

import (
	"go.uber.org/fx"

	"github.com/polkiloo/hubsai/internal/pkg/walletkey"
)

// Module provides core business use cases to the fx container.
var Module = fx.Provide(
	NewAuthUseCase,
	func() KeyGenerator { return walletkey.NewGenerator() },
	NewWalletUseCase,
)
