package app

import (
	"context"

	"github.com/polkiloo/hubsai/internal/session"
	"github.com/polkiloo/hubsai/internal/usecase"
)

// HealthChecker reports whether the backing store is reachable.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// OnboardingFacade is the entry point used by the HTTP layer.
type OnboardingFacade struct {
	auth    *usecase.AuthUseCase
	clients *session.Registry
	store   HealthChecker
}

func NewOnboardingFacade(auth *usecase.AuthUseCase, clients *session.Registry, store HealthChecker) *OnboardingFacade {
	return &OnboardingFacade{auth: auth, clients: clients, store: store}
}

// IssueClientToken creates a client identity for a new visitor.
func (f *OnboardingFacade) IssueClientToken() (string, string, error) {
	return f.auth.IssueClientToken()
}

func (f *OnboardingFacade) ParseClientToken(token string) (string, error) {
	return f.auth.ParseToken(token)
}

// Client returns the live state of clientID.
func (f *OnboardingFacade) Client(ctx context.Context, clientID string) (*session.Client, error) {
	return f.clients.Get(ctx, clientID)
}

func (f *OnboardingFacade) Health(ctx context.Context) error {
	return f.store.HealthCheck(ctx)
}
