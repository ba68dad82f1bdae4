package repository

import (
	"context"

	"github.com/polkiloo/hubsai/internal/domain/model"
)

// CredentialRepository stores sign-up credentials keyed by exact email.
type CredentialRepository interface {
	Create(ctx context.Context, cred model.Credential) error
	GetByEmail(ctx context.Context, email string) (*model.Credential, error)
}

// CurrentUserRepository stores the signed-in user pointer of a client.
type CurrentUserRepository interface {
	Get(ctx context.Context, clientID string) (*model.User, error)
	Set(ctx context.Context, clientID string, user model.User) error
	Clear(ctx context.Context, clientID string) error
}
