package usecase

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	domainErrors "github.com/polkiloo/hubsai/internal/domain/errors"
	"github.com/polkiloo/hubsai/internal/domain/model"
	"github.com/polkiloo/hubsai/internal/storage/local"
	testhelpers "github.com/polkiloo/hubsai/internal/test"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func newAuthUseCase(backendStub *testhelpers.BackendStub) (*AuthUseCase, *testhelpers.MemoryKV) {
	kv := testhelpers.NewMemoryKV()
	storage := local.New(kv, testhelpers.SealerStub{})
	return NewAuthUseCase(storage.Credentials(), testhelpers.HasherStub{}, testhelpers.StrategyStub{}, backendStub, testLogger()), kv
}

func TestAuthUseCaseRegisterSuccess(t *testing.T) {
	uc, kv := newAuthUseCase(&testhelpers.BackendStub{Disabled: true})

	ctx := context.Background()
	order := &model.ShopifyOrder{ID: "o1"}
	user, err := uc.Register(ctx, " alice@hubsai.io ", "password", "Alice", order)
	if err != nil {
		t.Fatalf("register returned error: %v", err)
	}
	if user.ID == "" || user.Email != "alice@hubsai.io" || user.Name != "Alice" {
		t.Fatalf("unexpected user %+v", user)
	}
	if user.ShopifyOrderID != "o1" || user.ShopifyOrderData != order {
		t.Fatalf("expected order to be attached, got %+v", user)
	}
	if user.CreatedAt.IsZero() {
		t.Fatal("expected creation time")
	}
	if kv.Keys("credential:") != 1 {
		t.Fatalf("expected one stored credential")
	}

	taken, err := uc.EmailTaken(ctx, "alice@hubsai.io")
	if err != nil || !taken {
		t.Fatalf("expected email taken, got %v %v", taken, err)
	}
	taken, err = uc.EmailTaken(ctx, "ALICE@hubsai.io")
	if err != nil || taken {
		t.Fatalf("expected exact email match only, got %v %v", taken, err)
	}
}

func TestAuthUseCaseRegisterDuplicate(t *testing.T) {
	uc, kv := newAuthUseCase(&testhelpers.BackendStub{Disabled: true})

	ctx := context.Background()
	if _, err := uc.Register(ctx, "bob@hubsai.io", "secret", "Bob", nil); err != nil {
		t.Fatalf("unexpected error on first register: %v", err)
	}
	writes := kv.Writes
	if _, err := uc.Register(ctx, "bob@hubsai.io", "other", "Robert", nil); err != domainErrors.ErrAlreadyExists {
		t.Fatalf("expected ErrAlreadyExists, got %v", err)
	}
	if kv.Writes != writes {
		t.Fatal("duplicate registration must not write")
	}
}

func TestAuthUseCaseRegisterValidates(t *testing.T) {
	uc, _ := newAuthUseCase(&testhelpers.BackendStub{Disabled: true})
	for _, tc := range [][2]string{{"", "pw"}, {"  ", "pw"}, {"a@b.io", ""}} {
		if _, err := uc.Register(context.Background(), tc[0], tc[1], "", nil); !errors.Is(err, domainErrors.ErrInvalidInput) {
			t.Fatalf("expected ErrInvalidInput for %q, got %v", tc, err)
		}
	}
}

func TestAuthUseCaseAuthenticate(t *testing.T) {
	uc, _ := newAuthUseCase(&testhelpers.BackendStub{Disabled: true})

	ctx := context.Background()
	registered, err := uc.Register(ctx, "carol@hubsai.io", "123456", "Carol", nil)
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}

	cases := [][2]string{
		{"carol@hubsai.io", "bad"},
		{"Carol@hubsai.io", "123456"},
		{"nobody@hubsai.io", "123456"},
		{"", ""},
	}
	for _, tc := range cases {
		if _, err := uc.Authenticate(ctx, tc[0], tc[1]); err != domainErrors.ErrInvalidCredentials {
			t.Fatalf("expected invalid credentials for %v, got %v", tc, err)
		}
	}

	user, err := uc.Authenticate(ctx, "carol@hubsai.io", "123456")
	if err != nil {
		t.Fatalf("authenticate returned error: %v", err)
	}
	if user.ID != registered.ID {
		t.Fatalf("expected user %s, got %s", registered.ID, user.ID)
	}
}

func TestAuthUseCaseTrimsEmailEverywhere(t *testing.T) {
	uc, _ := newAuthUseCase(&testhelpers.BackendStub{Disabled: true})
	ctx := context.Background()

	registered, err := uc.Register(ctx, " dave@hubsai.io", "pw", "Dave", nil)
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	for _, email := range []string{" dave@hubsai.io", "dave@hubsai.io", "dave@hubsai.io\t"} {
		user, err := uc.Authenticate(ctx, email, "pw")
		if err != nil {
			t.Fatalf("authenticate %q: %v", email, err)
		}
		if user.ID != registered.ID {
			t.Fatalf("expected user %s, got %s", registered.ID, user.ID)
		}
		taken, err := uc.EmailTaken(ctx, email)
		if err != nil || !taken {
			t.Fatalf("expected %q taken, got %v %v", email, taken, err)
		}
	}
	if _, err := uc.Authenticate(ctx, "   ", "pw"); err != domainErrors.ErrInvalidCredentials {
		t.Fatalf("expected invalid credentials for blank email, got %v", err)
	}
}

func TestAuthUseCaseRandomAccounts(t *testing.T) {
	uc, kv := newAuthUseCase(&testhelpers.BackendStub{Disabled: true})
	ctx := context.Background()

	accounts := make(map[string]string)
	for len(accounts) < 20 {
		accounts[testhelpers.RandomEmail()] = testhelpers.RandomASCIIString(6, 24)
	}
	ids := make(map[string]string, len(accounts))
	for email, password := range accounts {
		user, err := uc.Register(ctx, email, password, "", nil)
		if err != nil {
			t.Fatalf("register %s: %v", email, err)
		}
		ids[email] = user.ID
	}
	if kv.Keys("credential:") != len(accounts) {
		t.Fatalf("expected %d credentials, got %d", len(accounts), kv.Keys("credential:"))
	}
	for email, password := range accounts {
		user, err := uc.Authenticate(ctx, email, password)
		if err != nil {
			t.Fatalf("authenticate %s: %v", email, err)
		}
		if user.ID != ids[email] {
			t.Fatalf("expected user %s for %s, got %s", ids[email], email, user.ID)
		}
	}
}

func TestAuthUseCasePropagatesStoreErrors(t *testing.T) {
	uc, kv := newAuthUseCase(&testhelpers.BackendStub{Disabled: true})
	kv.FailOn("credential:", errors.New("disk full"))

	if _, err := uc.Register(context.Background(), "d@hubsai.io", "pw", "", nil); !errors.Is(err, domainErrors.ErrPersistence) {
		t.Fatalf("expected persistence error, got %v", err)
	}
	if _, err := uc.Authenticate(context.Background(), "d@hubsai.io", "pw"); !errors.Is(err, domainErrors.ErrPersistence) {
		t.Fatalf("expected persistence error, got %v", err)
	}
	if _, err := uc.EmailTaken(context.Background(), "d@hubsai.io"); !errors.Is(err, domainErrors.ErrPersistence) {
		t.Fatalf("expected persistence error, got %v", err)
	}
}

func TestAuthUseCaseMirrorsToBackend(t *testing.T) {
	stub := &testhelpers.BackendStub{}
	uc, _ := newAuthUseCase(stub)
	ctx := context.Background()

	if _, err := uc.Register(ctx, "e@hubsai.io", "pw", "E", nil); err != nil {
		t.Fatalf("register: %v", err)
	}
	if _, err := uc.Authenticate(ctx, "e@hubsai.io", "pw"); err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if stub.CallCount("SignUp") != 1 || stub.CallCount("SignIn") != 1 {
		t.Fatalf("expected backend mirror calls, got %v", stub.Calls)
	}
}

func TestAuthUseCaseClientTokens(t *testing.T) {
	uc, _ := newAuthUseCase(&testhelpers.BackendStub{Disabled: true})

	clientID, token, err := uc.IssueClientToken()
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	parsed, err := uc.ParseToken(token)
	if err != nil || parsed != clientID {
		t.Fatalf("expected %s, got %s (%v)", clientID, parsed, err)
	}
	if _, err := uc.ParseToken(""); err == nil {
		t.Fatal("expected error for empty token")
	}
}
