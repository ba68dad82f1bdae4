package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/polkiloo/hubsai/internal/adapter/backend"
	domainErrors "github.com/polkiloo/hubsai/internal/domain/errors"
	"github.com/polkiloo/hubsai/internal/domain/model"
	"github.com/polkiloo/hubsai/internal/domain/repository"
	pkgAuth "github.com/polkiloo/hubsai/internal/pkg/auth"
)

// AuthUseCase handles credentials and client tokens.
type AuthUseCase struct {
	credentials repository.CredentialRepository
	hasher      pkgAuth.PasswordHasher
	tokens      pkgAuth.Strategy
	backend     backend.Client
	logger      *slog.Logger
	now         func() time.Time
}

// NewAuthUseCase constructs AuthUseCase.
func NewAuthUseCase(credentials repository.CredentialRepository, hasher pkgAuth.PasswordHasher, strategy pkgAuth.Strategy, backendClient backend.Client, logger *slog.Logger) *AuthUseCase {
	return &AuthUseCase{
		credentials: credentials,
		hasher:      hasher,
		tokens:      strategy,
		backend:     backendClient,
		logger:      logger.With("component", "auth"),
		now:         time.Now,
	}
}

// normalizeEmail trims surrounding space. Case is kept: emails match exactly.
func normalizeEmail(email string) string {
	return strings.TrimSpace(email)
}

// EmailTaken reports whether a credential exists for the exact email.
func (u *AuthUseCase) EmailTaken(ctx context.Context, email string) (bool, error) {
	_, err := u.credentials.GetByEmail(ctx, normalizeEmail(email))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, domainErrors.ErrNotFound):
		return false, nil
	default:
		return false, err
	}
}

// Register creates a user with a hashed password. order is attached when non-nil.
func (u *AuthUseCase) Register(ctx context.Context, email, password, name string, order *model.ShopifyOrder) (*model.User, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, domainErrors.ErrInvalidInput
	}

	hash, err := u.hasher.Hash(password)
	if err != nil {
		return nil, err
	}

	usr := model.User{
		ID:        uuid.NewString(),
		Email:     email,
		Name:      strings.TrimSpace(name),
		CreatedAt: u.now().UTC(),
	}
	if order != nil {
		usr.ShopifyOrderID = order.ID
		usr.ShopifyOrderData = order
	}

	if err := u.credentials.Create(ctx, model.Credential{User: usr, PasswordHash: hash}); err != nil {
		if errors.Is(err, domainErrors.ErrAlreadyExists) {
			return nil, domainErrors.ErrAlreadyExists
		}
		return nil, err
	}

	if u.backend.Enabled() {
		if _, err := u.backend.SignUp(ctx, backend.SignUpRequest{Email: email, Password: password, Name: usr.Name}); err != nil {
			u.logger.Warn("backend sign-up failed", slog.String("user_id", usr.ID), slog.String("error", err.Error()))
		}
	}

	return &usr, nil
}

// Authenticate matches email and password exactly.
func (u *AuthUseCase) Authenticate(ctx context.Context, email, password string) (*model.User, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, domainErrors.ErrInvalidCredentials
	}

	cred, err := u.credentials.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domainErrors.ErrNotFound) {
			return nil, domainErrors.ErrInvalidCredentials
		}
		return nil, err
	}

	if err := u.hasher.Compare(cred.PasswordHash, password); err != nil {
		return nil, domainErrors.ErrInvalidCredentials
	}

	if u.backend.Enabled() {
		if _, err := u.backend.SignIn(ctx, email, password); err != nil {
			u.logger.Warn("backend sign-in failed", slog.String("user_id", cred.User.ID), slog.String("error", err.Error()))
		}
	}

	usr := cred.User
	return &usr, nil
}

// IssueClientToken signs a fresh client id and returns both.
func (u *AuthUseCase) IssueClientToken() (string, string, error) {
	clientID := uuid.NewString()
	token, err := u.tokens.IssueToken(clientID)
	if err != nil {
		return "", "", err
	}
	return clientID, token, nil
}

// ParseToken extracts the client id from a token.
func (u *AuthUseCase) ParseToken(token string) (string, error) {
	if token == "" {
		return "", pkgAuth.ErrInvalidToken
	}
	return u.tokens.ParseToken(token)
}
