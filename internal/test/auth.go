package test

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/polkiloo/hubsai/internal/adapter/backend"
	"github.com/polkiloo/hubsai/internal/domain/model"
	pkgAuth "github.com/polkiloo/hubsai/internal/pkg/auth"
	"github.com/polkiloo/hubsai/internal/pkg/walletkey"
)

// HasherStub provides deterministic hashing for tests.
type HasherStub struct {
	HashFn    func(string) (string, error)
	CompareFn func(string, string) error
}

// Hash returns a predictable hash for the supplied password.
func (h HasherStub) Hash(password string) (string, error) {
	if h.HashFn != nil {
		return h.HashFn(password)
	}
	return "hash:" + password, nil
}

// Compare validates password against stored hash.
func (h HasherStub) Compare(hash string, password string) error {
	if h.CompareFn != nil {
		return h.CompareFn(hash, password)
	}
	if hash != "hash:"+password {
		return errors.New("mismatch")
	}
	return nil
}

// StrategyStub issues and parses tokens via function overrides.
type StrategyStub struct {
	IssueFn func(string) (string, error)
	ParseFn func(string) (string, error)
	NameVal string
}

// IssueToken returns "token-<subject>" unless overridden.
func (s StrategyStub) IssueToken(subject string) (string, error) {
	if s.IssueFn != nil {
		return s.IssueFn(subject)
	}
	return "token-" + subject, nil
}

// ParseToken reverses IssueToken unless overridden.
func (s StrategyStub) ParseToken(token string) (string, error) {
	if s.ParseFn != nil {
		return s.ParseFn(token)
	}
	if len(token) <= len("token-") || token[:len("token-")] != "token-" {
		return "", pkgAuth.ErrInvalidToken
	}
	return token[len("token-"):], nil
}

// Name returns the strategy identifier used in tests.
func (s StrategyStub) Name() string {
	if s.NameVal != "" {
		return s.NameVal
	}
	return "stub"
}

// KeyGeneratorStub derives wallets from a fixed mnemonic list in turn.
type KeyGeneratorStub struct {
	mu    sync.Mutex
	Calls int
	Err   error
}

var stubMnemonics = []string{
	"abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon about",
	"legal winner thank year wave sausage worth useful legal winner thank yellow",
	"letter advice cage absurd amount doctor acoustic avoid letter advice cage above",
	"zoo zoo zoo zoo zoo zoo zoo zoo zoo zoo zoo wrong",
}

// Generate returns the next deterministic keypair.
func (g *KeyGeneratorStub) Generate() (walletkey.Keypair, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.Err != nil {
		return walletkey.Keypair{}, g.Err
	}
	mnemonic := stubMnemonics[g.Calls%len(stubMnemonics)]
	g.Calls++
	return walletkey.Derive(mnemonic)
}

// BackendStub records backend calls and returns configured results.
type BackendStub struct {
	mu sync.Mutex

	Disabled       bool
	SetupProfileFn func(context.Context, string, model.Profile) error
	UpdateFn       func(context.Context, string, model.Profile) error
	NFTs           []model.NFT
	NFTErr         error
	TransferErr    error

	Calls []string
}

func (b *BackendStub) record(call string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.Calls = append(b.Calls, call)
}

// CallCount returns how many calls named call were made.
func (b *BackendStub) CallCount(call string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := 0
	for _, c := range b.Calls {
		if c == call {
			n++
		}
	}
	return n
}

func (b *BackendStub) Enabled() bool { return !b.Disabled }

func (b *BackendStub) SignUp(_ context.Context, req backend.SignUpRequest) (*backend.AuthResponse, error) {
	b.record("SignUp")
	return &backend.AuthResponse{UserID: "remote-" + req.Email}, nil
}

func (b *BackendStub) SignIn(_ context.Context, email, _ string) (*backend.AuthResponse, error) {
	b.record("SignIn")
	return &backend.AuthResponse{UserID: "remote-" + email}, nil
}

func (b *BackendStub) SetupProfile(ctx context.Context, userID string, p model.Profile) error {
	b.record("SetupProfile")
	if b.SetupProfileFn != nil {
		return b.SetupProfileFn(ctx, userID, p)
	}
	return nil
}

func (b *BackendStub) UpdateProfile(ctx context.Context, userID string, p model.Profile) error {
	b.record("UpdateProfile")
	if b.UpdateFn != nil {
		return b.UpdateFn(ctx, userID, p)
	}
	return nil
}

func (b *BackendStub) ListNFTs(context.Context, string) ([]model.NFT, error) {
	b.record("ListNFTs")
	return b.NFTs, b.NFTErr
}

func (b *BackendStub) TransferNFT(_ context.Context, _, nftID, to string) error {
	b.record(fmt.Sprintf("TransferNFT:%s:%s", nftID, to))
	return b.TransferErr
}

var _ pkgAuth.PasswordHasher = HasherStub{}
var _ pkgAuth.Strategy = StrategyStub{}
var _ backend.Client = (*BackendStub)(nil)
