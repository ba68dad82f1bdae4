package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/polkiloo/hubsai/internal/adapter/shopify"
	"github.com/polkiloo/hubsai/internal/analytics"
	"github.com/polkiloo/hubsai/internal/dashboard"
	domainErrors "github.com/polkiloo/hubsai/internal/domain/errors"
	"github.com/polkiloo/hubsai/internal/domain/model"
	"github.com/polkiloo/hubsai/internal/onboarding"
	"github.com/polkiloo/hubsai/internal/server/http/dto"
	"github.com/polkiloo/hubsai/internal/server/http/middleware"
	"github.com/polkiloo/hubsai/internal/session"
	"github.com/polkiloo/hubsai/internal/storage/local"
	testhelpers "github.com/polkiloo/hubsai/internal/test"
	"github.com/polkiloo/hubsai/internal/usecase"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type facadeStub struct {
	testhelpers.ClientTokenStub
	registry  *session.Registry
	healthErr error
}

func (f *facadeStub) Client(ctx context.Context, clientID string) (*session.Client, error) {
	return f.registry.Get(ctx, clientID)
}

func (f *facadeStub) Health(context.Context) error { return f.healthErr }

func newFacadeStub(backend *testhelpers.BackendStub) *facadeStub {
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	storage := local.New(testhelpers.NewMemoryKV(), testhelpers.SealerStub{})
	auth := usecase.NewAuthUseCase(storage.Credentials(), testhelpers.HasherStub{}, testhelpers.StrategyStub{}, backend, logger)
	reg := session.NewRegistry(session.Deps{
		Auth:         auth,
		Wallets:      usecase.NewWalletUseCase(storage.Wallets(), storage.SetupFlags(), &testhelpers.KeyGeneratorStub{}, logger),
		Orders:       shopify.NewCatalogue(0),
		Tracker:      analytics.NewTracker(storage.Events(), 100, logger),
		Backend:      backend,
		CurrentUsers: storage.CurrentUsers(),
		Logger:       logger,
	}, session.RegistryConfig{AutoAdvanceDelay: time.Hour})
	return &facadeStub{registry: reg}
}

func newEngine(f ClientFacade) *gin.Engine {
	engine := gin.New()
	engine.GET("/healthz", NewHealthHandler(f).Check)
	engine.GET("/unsessioned", NewAuthHandler(f).Session)

	api := engine.Group("/api", middleware.ClientSession(f))
	auth := NewAuthHandler(f)
	api.POST("/auth/signup", auth.SignUp)
	api.POST("/auth/signin", auth.SignIn)
	api.POST("/auth/signout", auth.SignOut)
	api.GET("/auth/session", auth.Session)

	wallet := NewWalletHandler(f)
	api.GET("/wallet", wallet.Get)
	api.POST("/wallet", wallet.Ensure)
	api.POST("/wallet/recreate", wallet.Recreate)
	api.POST("/wallet/setup-complete", wallet.SetupComplete)

	orders := NewOrderHandler(f)
	api.GET("/orders/lookup", orders.Lookup)
	api.POST("/events", orders.Track)

	flow := NewOnboardingHandler(f)
	api.GET("/onboarding", flow.Get)
	api.POST("/onboarding/start", flow.Start)
	api.POST("/onboarding/next", flow.Next)
	api.POST("/onboarding/skip", flow.Skip)
	api.POST("/onboarding/back", flow.Back)
	api.POST("/onboarding/reset", flow.Reset)
	api.POST("/onboarding/external-wallet", flow.ExternalWallet)

	dash := NewDashboardHandler(f)
	api.GET("/dashboard", dash.Get)
	api.PUT("/dashboard/tab", dash.SelectTab)
	api.POST("/dashboard/nfts/:id/stake", dash.Stake)
	api.POST("/dashboard/nfts/:id/unstake", dash.Unstake)
	api.POST("/dashboard/nfts/:id/transfer", dash.Transfer)
	api.PUT("/dashboard/settings", dash.UpdateSettings)
	return engine
}

type apiClient struct {
	t      *testing.T
	engine *gin.Engine
	token  string
}

func (a *apiClient) do(method, path string, body any) *httptest.ResponseRecorder {
	a.t.Helper()
	var reader io.Reader
	if body != nil {
		switch b := body.(type) {
		case string:
			reader = bytes.NewBufferString(b)
		default:
			data, err := json.Marshal(b)
			require.NoError(a.t, err)
			reader = bytes.NewReader(data)
		}
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if a.token != "" {
		req.Header.Set("Authorization", "Bearer "+a.token)
	}
	resp := httptest.NewRecorder()
	a.engine.ServeHTTP(resp, req)
	if h := resp.Header().Get("Authorization"); h != "" {
		a.token = h[len("Bearer "):]
	}
	return resp
}

func decode[T any](t *testing.T, resp *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &out))
	return out
}

func newAPI(t *testing.T, backend *testhelpers.BackendStub) (*apiClient, *facadeStub) {
	f := newFacadeStub(backend)
	return &apiClient{t: t, engine: newEngine(f)}, f
}

func signUp(t *testing.T, api *apiClient, email string) dto.AuthResult {
	t.Helper()
	resp := api.do(http.MethodPost, "/api/auth/signup", dto.SignUpRequest{Email: email, Password: "secret1", Name: "Jane"})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	return decode[dto.AuthResult](t, resp)
}

func TestSignUpAndSession(t *testing.T) {
	api, _ := newAPI(t, &testhelpers.BackendStub{Disabled: true})

	res := signUp(t, api, shopify.DemoEmail)
	assert.True(t, res.Success)
	require.NotNil(t, res.User)
	assert.NotEmpty(t, res.User.ShopifyOrderID)

	resp := api.do(http.MethodGet, "/api/auth/session", nil)
	require.Equal(t, http.StatusOK, resp.Code)
	snap := decode[session.Snapshot](t, resp)
	assert.True(t, snap.Authenticated)
	assert.Equal(t, shopify.DemoEmail, snap.User.Email)
}

func TestSignUpFailures(t *testing.T) {
	api, _ := newAPI(t, &testhelpers.BackendStub{Disabled: true})
	signUp(t, api, "a@example.com")

	other := &apiClient{t: t, engine: api.engine}
	resp := other.do(http.MethodPost, "/api/auth/signup", dto.SignUpRequest{Email: "a@example.com", Password: "x"})
	assert.Equal(t, http.StatusConflict, resp.Code)
	res := decode[dto.AuthResult](t, resp)
	assert.False(t, res.Success)
	assert.Equal(t, domainErrors.MsgDuplicateUser, res.Error)

	resp = other.do(http.MethodPost, "/api/auth/signup", dto.SignUpRequest{Email: "b@example.com"})
	assert.Equal(t, http.StatusBadRequest, resp.Code)

	resp = other.do(http.MethodPost, "/api/auth/signup", "{")
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestSignInAndSignOut(t *testing.T) {
	api, _ := newAPI(t, &testhelpers.BackendStub{Disabled: true})
	signUp(t, api, "a@example.com")

	other := &apiClient{t: t, engine: api.engine}
	resp := other.do(http.MethodPost, "/api/auth/signin", dto.SignInRequest{Email: "nobody@example.com", Password: "secret1"})
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
	res := decode[dto.AuthResult](t, resp)
	assert.Equal(t, domainErrors.MsgInvalidCredentials, res.Error)
	assert.Nil(t, res.User)

	resp = other.do(http.MethodPost, "/api/auth/signin", dto.SignInRequest{Email: "a@example.com", Password: "secret1"})
	require.Equal(t, http.StatusOK, resp.Code)

	resp = other.do(http.MethodPost, "/api/auth/signout", nil)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.False(t, decode[session.Snapshot](t, resp).Authenticated)
}

func TestWalletEndpoints(t *testing.T) {
	api, _ := newAPI(t, &testhelpers.BackendStub{Disabled: true})

	resp := api.do(http.MethodPost, "/api/wallet", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.Code)

	signUp(t, api, "a@example.com")
	resp = api.do(http.MethodGet, "/api/wallet", nil)
	assert.Equal(t, http.StatusNotFound, resp.Code)

	resp = api.do(http.MethodPost, "/api/wallet", nil)
	require.Equal(t, http.StatusOK, resp.Code)
	first := decode[dto.WalletAddressResponse](t, resp).Address

	resp = api.do(http.MethodPost, "/api/wallet", nil)
	assert.Equal(t, first, decode[dto.WalletAddressResponse](t, resp).Address)

	resp = api.do(http.MethodGet, "/api/wallet", nil)
	require.Equal(t, http.StatusOK, resp.Code)
	wallet := decode[dto.WalletResponse](t, resp)
	assert.Equal(t, first, wallet.Address)
	assert.NotEmpty(t, wallet.Mnemonic)

	resp = api.do(http.MethodPost, "/api/wallet/recreate", nil)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.NotEqual(t, first, decode[dto.WalletAddressResponse](t, resp).Address)

	resp = api.do(http.MethodPost, "/api/wallet/setup-complete", nil)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.True(t, decode[dto.SetupCompleteResponse](t, resp).WalletSetupComplete)
}

func TestOrderLookupAndEvents(t *testing.T) {
	api, _ := newAPI(t, &testhelpers.BackendStub{Disabled: true})

	resp := api.do(http.MethodGet, "/api/orders/lookup", nil)
	assert.Equal(t, http.StatusBadRequest, resp.Code)

	resp = api.do(http.MethodGet, "/api/orders/lookup?email=DEMO@hubsai.io", nil)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.True(t, decode[dto.OrderLookupResponse](t, resp).Found)

	resp = api.do(http.MethodGet, "/api/orders/lookup?email=nomatch@example.com", nil)
	require.Equal(t, http.StatusOK, resp.Code)
	found := decode[dto.OrderLookupResponse](t, resp)
	assert.False(t, found.Found)
	assert.Nil(t, found.Order)

	resp = api.do(http.MethodPost, "/api/events", dto.EventRequest{Event: "cta_click", Properties: map[string]any{"where": "hero"}})
	assert.Equal(t, http.StatusAccepted, resp.Code)
	resp = api.do(http.MethodPost, "/api/events", map[string]any{})
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestOnboardingEndpoints(t *testing.T) {
	api, _ := newAPI(t, &testhelpers.BackendStub{Disabled: true})

	resp := api.do(http.MethodGet, "/api/onboarding", nil)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, onboarding.StepLogin, decode[onboarding.Snapshot](t, resp).Step)

	resp = api.do(http.MethodPost, "/api/onboarding/next", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.Code)

	resp = api.do(http.MethodPost, "/api/onboarding/skip", nil)
	assert.Equal(t, http.StatusConflict, resp.Code)
	errResp := decode[dto.ErrorResponse](t, resp)
	assert.NotEmpty(t, errResp.Error)
	assert.NotNil(t, errResp.State)

	signUp(t, api, "a@example.com")
	resp = api.do(http.MethodPost, "/api/onboarding/next", nil)
	require.Equal(t, http.StatusOK, resp.Code)
	snap := decode[onboarding.Snapshot](t, resp)
	assert.Equal(t, onboarding.StepClaimWallet, snap.Step)
	assert.Equal(t, 2, snap.DisplayStep)

	resp = api.do(http.MethodPost, "/api/onboarding/skip", nil)
	require.Equal(t, http.StatusOK, resp.Code)

	resp = api.do(http.MethodPost, "/api/onboarding/external-wallet", dto.ExternalWalletRequest{Connected: true, PublicKey: "Ext"})
	require.Equal(t, http.StatusOK, resp.Code)
	assert.True(t, decode[onboarding.Snapshot](t, resp).ExternalWallet.Connected)

	resp = api.do(http.MethodPost, "/api/onboarding/back", nil)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, onboarding.StepClaimWallet, decode[onboarding.Snapshot](t, resp).Step)

	resp = api.do(http.MethodPost, "/api/onboarding/next", dto.NextRequest{Profile: nil})
	require.Equal(t, http.StatusOK, resp.Code)
	resp = api.do(http.MethodPost, "/api/onboarding/next", "{bad")
	assert.Equal(t, http.StatusBadRequest, resp.Code)

	resp = api.do(http.MethodPost, "/api/onboarding/reset", nil)
	require.Equal(t, http.StatusOK, resp.Code)
	snap = decode[onboarding.Snapshot](t, resp)
	assert.Equal(t, onboarding.StepClaimWallet, snap.Step)
	assert.Equal(t, 4, snap.TotalSteps)

	resp = api.do(http.MethodPost, "/api/onboarding/start", dto.StartRequest{SkipLogin: true})
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "skip_login", decode[onboarding.Snapshot](t, resp).Variant)
}

func TestAnonymousSkipLoginCannotFinishOnboarding(t *testing.T) {
	api, _ := newAPI(t, &testhelpers.BackendStub{Disabled: true})

	resp := api.do(http.MethodPost, "/api/onboarding/start", dto.StartRequest{SkipLogin: true})
	require.Equal(t, http.StatusOK, resp.Code)

	for _, step := range []string{"skip", "next"} {
		resp = api.do(http.MethodPost, "/api/onboarding/"+step, nil)
		assert.Equal(t, http.StatusUnauthorized, resp.Code, step)
	}
	resp = api.do(http.MethodGet, "/api/onboarding", nil)
	assert.Equal(t, onboarding.StepClaimWallet, decode[onboarding.Snapshot](t, resp).Step)
}

func TestDashboardEndpoints(t *testing.T) {
	api, _ := newAPI(t, &testhelpers.BackendStub{Disabled: true})

	resp := api.do(http.MethodGet, "/api/dashboard", nil)
	require.Equal(t, http.StatusOK, resp.Code)
	snap := decode[dashboard.Snapshot](t, resp)
	assert.Equal(t, dashboard.SourceFallback, snap.NFTSource)
	assert.False(t, snap.TransferAvailable)

	resp = api.do(http.MethodPut, "/api/dashboard/tab", dto.TabRequest{Tab: "rewards"})
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, dashboard.TabRewards, decode[dashboard.Snapshot](t, resp).Tab)

	resp = api.do(http.MethodPut, "/api/dashboard/tab", dto.TabRequest{Tab: "casino"})
	assert.Equal(t, http.StatusBadRequest, resp.Code)

	resp = api.do(http.MethodPost, "/api/dashboard/nfts/"+snap.NFTs[0].ID+"/stake", nil)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.True(t, decode[dashboard.ActionResult](t, resp).Inert)

	resp = api.do(http.MethodPost, "/api/dashboard/nfts/missing/unstake", nil)
	assert.Equal(t, http.StatusNotFound, resp.Code)

	resp = api.do(http.MethodPut, "/api/dashboard/settings", map[string]string{"bio": "hi"})
	assert.Equal(t, http.StatusUnauthorized, resp.Code)

	signUp(t, api, shopify.DemoEmail)
	resp = api.do(http.MethodGet, "/api/dashboard", nil)
	snap = decode[dashboard.Snapshot](t, resp)
	assert.Equal(t, dashboard.SourceOrder, snap.NFTSource)
	assert.Equal(t, shopify.DemoEmail, snap.Settings.Email)
	require.NotEmpty(t, snap.NFTs)

	orderNFT := snap.NFTs[0].ID
	resp = api.do(http.MethodPost, "/api/dashboard/nfts/"+orderNFT+"/stake", nil)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	staked := decode[dashboard.ActionResult](t, resp)
	assert.Equal(t, orderNFT, staked.NFTID)
	assert.True(t, staked.Inert)

	resp = api.do(http.MethodPost, "/api/dashboard/nfts/"+orderNFT+"/unstake", nil)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	resp = api.do(http.MethodPost, "/api/dashboard/nfts/"+snap.NFTs[0].ID+"/transfer", dto.TransferRequest{ToAddress: "x"})
	assert.Equal(t, http.StatusServiceUnavailable, resp.Code)

	resp = api.do(http.MethodPut, "/api/dashboard/settings", map[string]string{"bio": "hi"})
	assert.Equal(t, http.StatusOK, resp.Code)
}

func TestDashboardTransferAndProfileErrors(t *testing.T) {
	backend := &testhelpers.BackendStub{
		UpdateFn: func(context.Context, string, model.Profile) error {
			return &domainErrors.ProfileSetupError{Status: 400, Message: "Username taken"}
		},
	}
	api, _ := newAPI(t, backend)
	signUp(t, api, shopify.DemoEmail)

	kp, err := (&testhelpers.KeyGeneratorStub{}).Generate()
	require.NoError(t, err)

	snap := decode[dashboard.Snapshot](t, api.do(http.MethodGet, "/api/dashboard", nil))
	id := snap.NFTs[0].ID
	resp := api.do(http.MethodPost, "/api/dashboard/nfts/"+id+"/transfer", dto.TransferRequest{ToAddress: kp.Address})
	require.Equal(t, http.StatusAccepted, resp.Code, resp.Body.String())
	assert.Equal(t, 1, backend.CallCount("TransferNFT:"+id+":"+kp.Address))

	resp = api.do(http.MethodPost, "/api/dashboard/nfts/"+id+"/transfer", dto.TransferRequest{ToAddress: "bad"})
	assert.Equal(t, http.StatusBadRequest, resp.Code)

	resp = api.do(http.MethodPut, "/api/dashboard/settings", map[string]string{"username": "taken"})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.Code)
	assert.Equal(t, "Username taken", decode[dto.ErrorResponse](t, resp).Error)
}

func TestHealth(t *testing.T) {
	api, f := newAPI(t, &testhelpers.BackendStub{Disabled: true})
	resp := api.do(http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, resp.Code)

	f.healthErr = errors.New("down")
	resp = api.do(http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusServiceUnavailable, resp.Code)
}

func TestMissingClientFails(t *testing.T) {
	api, _ := newAPI(t, &testhelpers.BackendStub{Disabled: true})
	resp := api.do(http.MethodGet, "/unsessioned", nil)
	assert.Equal(t, http.StatusInternalServerError, resp.Code)
}

func TestStatusFor(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{domainErrors.ErrAlreadyExists, http.StatusConflict},
		{domainErrors.ErrInvalidCredentials, http.StatusUnauthorized},
		{domainErrors.ErrNotAuthenticated, http.StatusUnauthorized},
		{domainErrors.ErrInvalidInput, http.StatusBadRequest},
		{domainErrors.ErrNotFound, http.StatusNotFound},
		{domainErrors.ErrTransitionNotAllowed, http.StatusConflict},
		{&domainErrors.ProfileSetupError{Status: 500}, http.StatusUnprocessableEntity},
		{dashboard.ErrTransferUnavailable, http.StatusServiceUnavailable},
		{onboarding.ErrWalletUnavailable, http.StatusServiceUnavailable},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, statusFor(tc.err), tc.err.Error())
	}
	assert.Equal(t, "internal error", messageFor(errors.New("secret detail"), http.StatusInternalServerError))
}
