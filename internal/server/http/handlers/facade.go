package handlers

import (
	"context"

	"github.com/polkiloo/hubsai/internal/session"
)

// ClientFacade describes what handlers need from the application.
type ClientFacade interface {
	IssueClientToken() (string, string, error)
	ParseClientToken(token string) (string, error)
	Client(ctx context.Context, clientID string) (*session.Client, error)
	Health(ctx context.Context) error
}
