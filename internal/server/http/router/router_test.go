package router

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/polkiloo/hubsai/internal/server/http/handlers"
	"github.com/polkiloo/hubsai/internal/session"
	testhelpers "github.com/polkiloo/hubsai/internal/test"
)

type facadeStub struct {
	testhelpers.ClientTokenStub
	healthErr error
}

func (f *facadeStub) Client(context.Context, string) (*session.Client, error) {
	return nil, errors.New("no clients in router tests")
}

func (f *facadeStub) Health(context.Context) error { return f.healthErr }

var _ handlers.ClientFacade = (*facadeStub)(nil)

func TestSetupRoutes(t *testing.T) {
	gin.SetMode(gin.TestMode)
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	engine := Setup(&facadeStub{}, logger)

	want := []string{
		"GET /healthz",
		"POST /api/auth/signup",
		"POST /api/auth/signin",
		"POST /api/auth/signout",
		"GET /api/auth/session",
		"GET /api/wallet",
		"POST /api/wallet",
		"POST /api/wallet/recreate",
		"POST /api/wallet/setup-complete",
		"GET /api/orders/lookup",
		"POST /api/events",
		"GET /api/onboarding",
		"POST /api/onboarding/start",
		"POST /api/onboarding/next",
		"POST /api/onboarding/skip",
		"POST /api/onboarding/back",
		"POST /api/onboarding/reset",
		"POST /api/onboarding/external-wallet",
		"GET /api/dashboard",
		"PUT /api/dashboard/tab",
		"POST /api/dashboard/nfts/:id/stake",
		"POST /api/dashboard/nfts/:id/unstake",
		"POST /api/dashboard/nfts/:id/transfer",
		"PUT /api/dashboard/settings",
	}
	registered := make(map[string]bool)
	for _, r := range engine.Routes() {
		registered[r.Method+" "+r.Path] = true
	}
	for _, route := range want {
		if !registered[route] {
			t.Fatalf("route %s not registered", route)
		}
	}
}

func TestHealthRouteSkipsClientSession(t *testing.T) {
	gin.SetMode(gin.TestMode)
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	facade := &facadeStub{}
	engine := Setup(facade, logger)

	resp := httptest.NewRecorder()
	engine.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200 for healthz, got %d", resp.Code)
	}
	if facade.Issued != 0 {
		t.Fatalf("expected no client token for healthz, got %d", facade.Issued)
	}
}

func TestAPIRoutesIssueClientToken(t *testing.T) {
	gin.SetMode(gin.TestMode)
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	facade := &facadeStub{}
	engine := Setup(facade, logger)

	resp := httptest.NewRecorder()
	engine.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/onboarding", nil))
	if resp.Header().Get("Authorization") != "Bearer token-client-1" {
		t.Fatalf("expected issued client token, got %q", resp.Header().Get("Authorization"))
	}
	if resp.Code != http.StatusInternalServerError {
		t.Fatalf("expected status 500 when the client cannot be loaded, got %d", resp.Code)
	}
}
