package local

import (
	"context"
	"fmt"
	"time"

	"github.com/polkiloo/hubsai/internal/domain/model"
	"github.com/polkiloo/hubsai/internal/domain/repository"
)

// walletRecord is the at-rest form of a claim wallet. Secret material is sealed.
type walletRecord struct {
	Address          string    `json:"address"`
	SealedPrivateKey string    `json:"sealedPrivateKey"`
	SealedMnemonic   string    `json:"sealedMnemonic"`
	UserID           string    `json:"userId"`
	CreatedAt        time.Time `json:"createdAt"`
}

type walletRepository struct {
	kv     repository.KeyValueStore
	sealer Sealer
	codec  codec[walletRecord]
}

func (r *walletRepository) Get(ctx context.Context, userID string) (*model.ClaimWallet, error) {
	key := walletPrefix + userID
	raw, err := r.kv.Get(ctx, key)
	if err != nil {
		return nil, persistenceErr("get", key, err)
	}
	rec, err := r.codec.decode(raw)
	if err != nil {
		return nil, persistenceErr("decode", key, err)
	}

	privateKey, err := r.sealer.Open(userID, rec.SealedPrivateKey)
	if err != nil {
		return nil, persistenceErr("open", key, fmt.Errorf("private key: %w", err))
	}
	mnemonic, err := r.sealer.Open(userID, rec.SealedMnemonic)
	if err != nil {
		return nil, persistenceErr("open", key, fmt.Errorf("mnemonic: %w", err))
	}

	return &model.ClaimWallet{
		Address:           rec.Address,
		PrivateKeyEncoded: privateKey,
		Mnemonic:          mnemonic,
		UserID:            rec.UserID,
		CreatedAt:         rec.CreatedAt,
	}, nil
}

func (r *walletRepository) Put(ctx context.Context, w model.ClaimWallet) error {
	key, raw, err := r.encode(w)
	if err != nil {
		return err
	}
	return persistenceErr("put", key, r.kv.Put(ctx, key, raw))
}

func (r *walletRepository) Create(ctx context.Context, w model.ClaimWallet) error {
	key, raw, err := r.encode(w)
	if err != nil {
		return err
	}
	return persistenceErr("create", key, r.kv.Create(ctx, key, raw))
}

func (r *walletRepository) encode(w model.ClaimWallet) (string, []byte, error) {
	key := walletPrefix + w.UserID
	privateKey, err := r.sealer.Seal(w.UserID, w.PrivateKeyEncoded)
	if err != nil {
		return key, nil, persistenceErr("seal", key, err)
	}
	mnemonic, err := r.sealer.Seal(w.UserID, w.Mnemonic)
	if err != nil {
		return key, nil, persistenceErr("seal", key, err)
	}

	raw, err := r.codec.encode(walletRecord{
		Address:          w.Address,
		SealedPrivateKey: privateKey,
		SealedMnemonic:   mnemonic,
		UserID:           w.UserID,
		CreatedAt:        w.CreatedAt,
	})
	if err != nil {
		return key, nil, persistenceErr("encode", key, err)
	}
	return key, raw, nil
}

type setupFlagRecord struct {
	Complete bool `json:"complete"`
}

type setupFlagRepository struct {
	kv    repository.KeyValueStore
	codec codec[setupFlagRecord]
}

// IsComplete treats an absent flag as false.
func (r *setupFlagRepository) IsComplete(ctx context.Context, userID string) (bool, error) {
	key := setupFlagPrefix + userID
	raw, err := r.kv.Get(ctx, key)
	if isNotFound(err) {
		return false, nil
	}
	if err != nil {
		return false, persistenceErr("get", key, err)
	}
	rec, err := r.codec.decode(raw)
	if err != nil {
		return false, persistenceErr("decode", key, err)
	}
	return rec.Complete, nil
}

func (r *setupFlagRepository) SetComplete(ctx context.Context, userID string, complete bool) error {
	key := setupFlagPrefix + userID
	raw, err := r.codec.encode(setupFlagRecord{Complete: complete})
	if err != nil {
		return persistenceErr("encode", key, err)
	}
	return persistenceErr("put", key, r.kv.Put(ctx, key, raw))
}
