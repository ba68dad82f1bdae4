package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	domainErrors "github.com/polkiloo/hubsai/internal/domain/errors"
	"github.com/polkiloo/hubsai/internal/domain/model"
	"github.com/polkiloo/hubsai/internal/domain/repository"
	"github.com/polkiloo/hubsai/internal/pkg/walletkey"
)

// KeyGenerator produces fresh claim-wallet keypairs.
type KeyGenerator interface {
	Generate() (walletkey.Keypair, error)
}

// WalletUseCase manages claim wallets and the wallet-setup flag.
type WalletUseCase struct {
	wallets repository.WalletRepository
	flags   repository.SetupFlagRepository
	keys    KeyGenerator
	logger  *slog.Logger
	now     func() time.Time
}

// NewWalletUseCase constructs WalletUseCase.
func NewWalletUseCase(wallets repository.WalletRepository, flags repository.SetupFlagRepository, keys KeyGenerator, logger *slog.Logger) *WalletUseCase {
	return &WalletUseCase{
		wallets: wallets,
		flags:   flags,
		keys:    keys,
		logger:  logger.With("component", "wallet"),
		now:     time.Now,
	}
}

// Get returns the stored wallet of userID.
func (u *WalletUseCase) Get(ctx context.Context, userID string) (*model.ClaimWallet, error) {
	return u.wallets.Get(ctx, userID)
}

// Ensure returns the existing wallet or creates one. created reports
// whether this call stored it. Concurrent callers converge on one wallet.
func (u *WalletUseCase) Ensure(ctx context.Context, userID string) (*model.ClaimWallet, bool, error) {
	existing, err := u.wallets.Get(ctx, userID)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, domainErrors.ErrNotFound) {
		return nil, false, err
	}

	w, err := u.newWallet(userID)
	if err != nil {
		return nil, false, err
	}
	err = u.wallets.Create(ctx, *w)
	if errors.Is(err, domainErrors.ErrAlreadyExists) {
		existing, err := u.wallets.Get(ctx, userID)
		return existing, false, err
	}
	if err != nil {
		return nil, false, err
	}
	u.logger.Info("claim wallet created", slog.String("user_id", userID), slog.String("address", w.Address))
	return w, true, nil
}

// Recreate replaces the wallet of userID with a new one. The previous keys are lost.
func (u *WalletUseCase) Recreate(ctx context.Context, userID string) (*model.ClaimWallet, error) {
	w, err := u.newWallet(userID)
	if err != nil {
		return nil, err
	}
	if err := u.wallets.Put(ctx, *w); err != nil {
		return nil, err
	}
	u.logger.Warn("claim wallet recreated", slog.String("user_id", userID), slog.String("address", w.Address))
	return w, nil
}

func (u *WalletUseCase) newWallet(userID string) (*model.ClaimWallet, error) {
	if userID == "" {
		return nil, domainErrors.ErrNotAuthenticated
	}
	kp, err := u.keys.Generate()
	if err != nil {
		return nil, fmt.Errorf("generate wallet: %w", err)
	}
	return &model.ClaimWallet{
		Address:           kp.Address,
		PrivateKeyEncoded: kp.PrivateKeyEncoded,
		Mnemonic:          kp.Mnemonic,
		UserID:            userID,
		CreatedAt:         u.now().UTC(),
	}, nil
}

func (u *WalletUseCase) SetupComplete(ctx context.Context, userID string) (bool, error) {
	return u.flags.IsComplete(ctx, userID)
}

func (u *WalletUseCase) SetSetupComplete(ctx context.Context, userID string, complete bool) error {
	return u.flags.SetComplete(ctx, userID, complete)
}
