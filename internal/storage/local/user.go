package local

import (
	"context"
	"time"

	"github.com/polkiloo/hubsai/internal/domain/model"
	"github.com/polkiloo/hubsai/internal/domain/repository"
)

type userRecord struct {
	ID               string              `json:"id"`
	Email            string              `json:"email"`
	Name             string              `json:"name"`
	CreatedAt        time.Time           `json:"createdAt"`
	ShopifyOrderID   string              `json:"shopifyOrderId,omitempty"`
	ShopifyOrderData *model.ShopifyOrder `json:"shopifyOrderData,omitempty"`
}

func toUserRecord(u model.User) userRecord {
	return userRecord(u)
}

func (r userRecord) model() model.User {
	return model.User(r)
}

type credentialRecord struct {
	User         userRecord `json:"user"`
	PasswordHash string     `json:"passwordHash"`
}

type credentialRepository struct {
	kv    repository.KeyValueStore
	codec codec[credentialRecord]
}

func (r *credentialRepository) Create(ctx context.Context, cred model.Credential) error {
	key := credentialPrefix + cred.User.Email
	raw, err := r.codec.encode(credentialRecord{User: toUserRecord(cred.User), PasswordHash: cred.PasswordHash})
	if err != nil {
		return persistenceErr("encode", key, err)
	}
	return persistenceErr("create", key, r.kv.Create(ctx, key, raw))
}

func (r *credentialRepository) GetByEmail(ctx context.Context, email string) (*model.Credential, error) {
	key := credentialPrefix + email
	raw, err := r.kv.Get(ctx, key)
	if err != nil {
		return nil, persistenceErr("get", key, err)
	}
	rec, err := r.codec.decode(raw)
	if err != nil {
		return nil, persistenceErr("decode", key, err)
	}
	return &model.Credential{User: rec.User.model(), PasswordHash: rec.PasswordHash}, nil
}

type currentUserRepository struct {
	kv    repository.KeyValueStore
	codec codec[userRecord]
}

func (r *currentUserRepository) Get(ctx context.Context, clientID string) (*model.User, error) {
	key := currentUserPrefix + clientID
	raw, err := r.kv.Get(ctx, key)
	if err != nil {
		return nil, persistenceErr("get", key, err)
	}
	rec, err := r.codec.decode(raw)
	if err != nil {
		return nil, persistenceErr("decode", key, err)
	}
	u := rec.model()
	return &u, nil
}

func (r *currentUserRepository) Set(ctx context.Context, clientID string, user model.User) error {
	key := currentUserPrefix + clientID
	raw, err := r.codec.encode(toUserRecord(user))
	if err != nil {
		return persistenceErr("encode", key, err)
	}
	return persistenceErr("put", key, r.kv.Put(ctx, key, raw))
}

func (r *currentUserRepository) Clear(ctx context.Context, clientID string) error {
	key := currentUserPrefix + clientID
	err := r.kv.Delete(ctx, key)
	if err != nil && !isNotFound(err) {
		return persistenceErr("delete", key, err)
	}
	return nil
}
