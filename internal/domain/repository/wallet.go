package repository

import (
	"context"

	"github.com/polkiloo/hubsai/internal/domain/model"
)

// WalletRepository persists one claim wallet per user.
type WalletRepository interface {
	Get(ctx context.Context, userID string) (*model.ClaimWallet, error)
	Put(ctx context.Context, wallet model.ClaimWallet) error
	// Create stores wallet unless the user already has one (errors.ErrAlreadyExists).
	Create(ctx context.Context, wallet model.ClaimWallet) error
}

// SetupFlagRepository persists the wallet-setup-complete flag per user.
type SetupFlagRepository interface {
	IsComplete(ctx context.Context, userID string) (bool, error)
	SetComplete(ctx context.Context, userID string, complete bool) error
}
