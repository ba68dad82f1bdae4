package local

import (
	"context"
	"errors"

	domainErrors "github.com/polkiloo/hubsai/internal/domain/errors"
	"github.com/polkiloo/hubsai/internal/domain/repository"
)

// Key prefixes of persisted records.
const (
	currentUserPrefix = "current_user:"
	credentialPrefix  = "credential:"
	walletPrefix      = "claim_wallet:"
	setupFlagPrefix   = "wallet_setup_complete:"
	eventLogKey       = "analytics_events"
)

// Sealer encrypts wallet secrets bound to a user id.
type Sealer interface {
	Seal(userID, plaintext string) (string, error)
	Open(userID, sealed string) (string, error)
}

// Storage hands out typed repositories sharing one key-value store.
type Storage struct {
	kv     repository.KeyValueStore
	sealer Sealer
}

func New(kv repository.KeyValueStore, sealer Sealer) *Storage {
	return &Storage{kv: kv, sealer: sealer}
}

func (s *Storage) Credentials() repository.CredentialRepository {
	return &credentialRepository{kv: s.kv, codec: newCodec[credentialRecord]("credential")}
}

func (s *Storage) CurrentUsers() repository.CurrentUserRepository {
	return &currentUserRepository{kv: s.kv, codec: newCodec[userRecord]("current_user")}
}

func (s *Storage) Wallets() repository.WalletRepository {
	return &walletRepository{kv: s.kv, sealer: s.sealer, codec: newCodec[walletRecord]("claim_wallet")}
}

func (s *Storage) SetupFlags() repository.SetupFlagRepository {
	return &setupFlagRepository{kv: s.kv, codec: newCodec[setupFlagRecord]("wallet_setup_complete")}
}

func (s *Storage) Events() repository.EventLogRepository {
	return &eventLogRepository{kv: s.kv, codec: newCodec[eventLogRecord]("analytics_events")}
}

func (s *Storage) HealthCheck(ctx context.Context) error {
	return s.kv.HealthCheck(ctx)
}

// persistenceErr wraps err unless it is a sentinel callers branch on.
func persistenceErr(op, key string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, domainErrors.ErrNotFound) || errors.Is(err, domainErrors.ErrAlreadyExists) {
		return err
	}
	return &domainErrors.PersistenceError{Op: op, Key: key, Err: err}
}

func isNotFound(err error) bool {
	return errors.Is(err, domainErrors.ErrNotFound)
}
