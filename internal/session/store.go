// Package session holds per-client authentication state and the registry
// of live clients.
package session

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"

	"github.com/polkiloo/hubsai/internal/analytics"
	domainErrors "github.com/polkiloo/hubsai/internal/domain/errors"
	"github.com/polkiloo/hubsai/internal/domain/model"
	"github.com/polkiloo/hubsai/internal/domain/repository"
)

// Authenticator manages credentials.
type Authenticator interface {
	EmailTaken(ctx context.Context, email string) (bool, error)
	Register(ctx context.Context, email, password, name string, order *model.ShopifyOrder) (*model.User, error)
	Authenticate(ctx context.Context, email, password string) (*model.User, error)
}

// Wallets manages claim wallets and the wallet setup flag.
type Wallets interface {
	Get(ctx context.Context, userID string) (*model.ClaimWallet, error)
	Ensure(ctx context.Context, userID string) (*model.ClaimWallet, bool, error)
	Recreate(ctx context.Context, userID string) (*model.ClaimWallet, error)
	SetupComplete(ctx context.Context, userID string) (bool, error)
	SetSetupComplete(ctx context.Context, userID string, complete bool) error
}

// OrderCatalogue finds the order placed with an email.
type OrderCatalogue interface {
	Lookup(ctx context.Context, email string) (*model.ShopifyOrder, error)
}

type EventTracker interface {
	Track(ctx context.Context, name string, props map[string]any, userID string) model.AnalyticsEvent
}

// Backend is the external backend as seen by a client.
type Backend interface {
	Enabled() bool
	SetupProfile(ctx context.Context, userID string, profile model.Profile) error
	UpdateProfile(ctx context.Context, userID string, profile model.Profile) error
	ListNFTs(ctx context.Context, userID string) ([]model.NFT, error)
	TransferNFT(ctx context.Context, userID, nftID, toAddress string) error
}

// Deps are the collaborators shared by every store.
type Deps struct {
	Auth         Authenticator
	Wallets      Wallets
	Orders       OrderCatalogue
	Tracker      EventTracker
	Backend      Backend
	CurrentUsers repository.CurrentUserRepository
	Logger       *slog.Logger
}

// Result is the outcome of sign-up and sign-in.
type Result struct {
	Success bool        `json:"success"`
	User    *model.User `json:"user,omitempty"`
	Error   string      `json:"error,omitempty"`
	Err     error       `json:"-"`
}

func failure(msg string, err error) Result {
	return Result{Error: msg, Err: err}
}

// Snapshot is a copy of the store state.
type Snapshot struct {
	Authenticated       bool                `json:"authenticated"`
	User                *model.User         `json:"user,omitempty"`
	WalletAddress       string              `json:"walletAddress,omitempty"`
	ShopifyOrder        *model.ShopifyOrder `json:"shopifyOrder,omitempty"`
	WalletSetupComplete bool                `json:"walletSetupComplete"`
	Loading             bool                `json:"loading"`
}

// Store is the session of one client. Persistence failures are logged and
// never returned to the caller.
type Store struct {
	clientID string
	deps     Deps
	logger   *slog.Logger

	mu             sync.RWMutex
	user           *model.User
	walletAddress  string
	order          *model.ShopifyOrder
	walletComplete bool
	loading        bool
}

func NewStore(clientID string, deps Deps) *Store {
	return &Store{
		clientID: clientID,
		deps:     deps,
		logger:   deps.Logger.With("component", "session", "client_id", clientID),
	}
}

func (s *Store) ClientID() string { return s.clientID }

// Hydrate restores the signed-in user of the client from persistence.
func (s *Store) Hydrate(ctx context.Context) {
	usr, err := s.deps.CurrentUsers.Get(ctx, s.clientID)
	if err != nil {
		if !errors.Is(err, domainErrors.ErrNotFound) {
			s.logError("load current user", err)
		}
		return
	}
	s.hydrate(ctx, usr)
}

func (s *Store) hydrate(ctx context.Context, usr *model.User) {
	s.mu.Lock()
	s.user = usr
	s.walletAddress = ""
	s.order = usr.ShopifyOrderData
	s.walletComplete = false
	s.loading = true
	s.mu.Unlock()

	var address string
	wallet, err := s.deps.Wallets.Get(ctx, usr.ID)
	switch {
	case err == nil:
		address = wallet.Address
	case !errors.Is(err, domainErrors.ErrNotFound):
		s.logError("load claim wallet", err)
	}

	complete, err := s.deps.Wallets.SetupComplete(ctx, usr.ID)
	if err != nil {
		s.logError("load wallet setup flag", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user != usr {
		return
	}
	s.walletAddress = address
	s.walletComplete = complete
	s.loading = false
}

// SignUp registers a new user and signs them in.
func (s *Store) SignUp(ctx context.Context, email, password, name string) Result {
	taken, err := s.deps.Auth.EmailTaken(ctx, email)
	if err != nil {
		s.logError("check credential", err)
		return failure(domainErrors.MsgSignUpFailed, err)
	}
	if taken {
		return failure(domainErrors.MsgDuplicateUser, domainErrors.ErrAlreadyExists)
	}
	if strings.TrimSpace(email) == "" || password == "" {
		return failure(domainErrors.MsgInvalidInput, domainErrors.ErrInvalidInput)
	}

	order := s.LookupShopifyOrder(ctx, email)

	usr, err := s.deps.Auth.Register(ctx, email, password, name, order)
	switch {
	case errors.Is(err, domainErrors.ErrAlreadyExists):
		return failure(domainErrors.MsgDuplicateUser, err)
	case errors.Is(err, domainErrors.ErrInvalidInput):
		return failure(domainErrors.MsgInvalidInput, err)
	case err != nil:
		s.logError("register user", err)
		return failure(domainErrors.MsgSignUpFailed, err)
	}

	if err := s.deps.CurrentUsers.Set(ctx, s.clientID, *usr); err != nil {
		s.logError("persist current user", err)
	}
	if err := s.deps.Wallets.SetSetupComplete(ctx, usr.ID, false); err != nil {
		s.logError("reset wallet setup flag", err)
	}

	s.mu.Lock()
	s.user = usr
	s.walletAddress = ""
	s.order = usr.ShopifyOrderData
	s.walletComplete = false
	s.loading = false
	s.mu.Unlock()

	s.deps.Tracker.Track(ctx, analytics.EventSignUp, map[string]any{"hasOrder": order != nil}, usr.ID)
	return Result{Success: true, User: cloneUser(usr)}
}

// SignIn matches email and password exactly. A failed attempt leaves the
// session untouched.
func (s *Store) SignIn(ctx context.Context, email, password string) Result {
	usr, err := s.deps.Auth.Authenticate(ctx, email, password)
	switch {
	case errors.Is(err, domainErrors.ErrInvalidCredentials):
		return failure(domainErrors.MsgInvalidCredentials, err)
	case err != nil:
		s.logError("authenticate", err)
		return failure(domainErrors.MsgSignInFailed, err)
	}

	if err := s.deps.CurrentUsers.Set(ctx, s.clientID, *usr); err != nil {
		s.logError("persist current user", err)
	}
	s.hydrate(ctx, usr)

	s.deps.Tracker.Track(ctx, analytics.EventSignIn, nil, usr.ID)
	return Result{Success: true, User: cloneUser(usr)}
}

// SignOut forgets the user. Wallet, order and flag records are kept.
func (s *Store) SignOut(ctx context.Context) {
	s.mu.Lock()
	usr := s.user
	s.user = nil
	s.walletAddress = ""
	s.order = nil
	s.walletComplete = false
	s.loading = false
	s.mu.Unlock()

	if err := s.deps.CurrentUsers.Clear(ctx, s.clientID); err != nil {
		s.logError("clear current user", err)
	}
	if usr != nil {
		s.deps.Tracker.Track(ctx, analytics.EventSignOut, nil, usr.ID)
	}
}

// CreateClaimWallet always creates a new wallet, replacing any previous one.
// Two calls yield two different addresses.
func (s *Store) CreateClaimWallet(ctx context.Context) (string, bool) {
	return s.RecreateWallet(ctx)
}

// RecreateWallet replaces the wallet of the signed-in user.
func (s *Store) RecreateWallet(ctx context.Context) (string, bool) {
	usr := s.CurrentUser()
	if usr == nil {
		return "", false
	}
	wallet, err := s.deps.Wallets.Recreate(ctx, usr.ID)
	if err != nil {
		s.logError("recreate claim wallet", err)
		return "", false
	}
	s.setWalletAddress(usr.ID, wallet.Address)
	s.deps.Tracker.Track(ctx, analytics.EventWalletCreated, map[string]any{
		"address":   wallet.Address,
		"recreated": true,
	}, usr.ID)
	return wallet.Address, true
}

// EnsureWallet returns the wallet of the signed-in user, creating it once.
func (s *Store) EnsureWallet(ctx context.Context) (string, bool) {
	usr := s.CurrentUser()
	if usr == nil {
		return "", false
	}
	wallet, created, err := s.deps.Wallets.Ensure(ctx, usr.ID)
	if err != nil {
		s.logError("ensure claim wallet", err)
		return "", false
	}
	s.setWalletAddress(usr.ID, wallet.Address)
	if created {
		s.deps.Tracker.Track(ctx, analytics.EventWalletCreated, map[string]any{
			"address":   wallet.Address,
			"recreated": false,
		}, usr.ID)
	}
	return wallet.Address, true
}

func (s *Store) setWalletAddress(userID, address string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user != nil && s.user.ID == userID {
		s.walletAddress = address
	}
}

// GetClaimWallet reads the wallet of userID, or of the signed-in user when
// userID is empty. It returns nil when nothing readable is stored.
func (s *Store) GetClaimWallet(ctx context.Context, userID string) *model.ClaimWallet {
	if userID == "" {
		usr := s.CurrentUser()
		if usr == nil {
			return nil
		}
		userID = usr.ID
	}
	wallet, err := s.deps.Wallets.Get(ctx, userID)
	if err != nil {
		if !errors.Is(err, domainErrors.ErrNotFound) {
			s.logError("read claim wallet", err)
		}
		return nil
	}
	return wallet
}

// LookupShopifyOrder matches email case-insensitively. It never fails and
// does not touch the order held by the session.
func (s *Store) LookupShopifyOrder(ctx context.Context, email string) *model.ShopifyOrder {
	order, err := s.deps.Orders.Lookup(ctx, email)
	if err != nil {
		s.logger.Warn("order lookup aborted", slog.String("error", err.Error()))
		return nil
	}

	props := map[string]any{"email": email}
	name := analytics.EventShopifyOrderNotFound
	if order != nil {
		name = analytics.EventShopifyOrderFound
		props["orderId"] = order.ID
	}
	s.TrackEvent(ctx, name, props)
	return order
}

// SetWalletSetupComplete marks the wallet step done for the signed-in user.
func (s *Store) SetWalletSetupComplete(ctx context.Context) {
	usr := s.CurrentUser()
	if usr == nil {
		return
	}
	if err := s.deps.Wallets.SetSetupComplete(ctx, usr.ID, true); err != nil {
		s.logError("persist wallet setup flag", err)
	}

	// When another user signed in meanwhile, the flag of usr was still
	// persisted and the event belongs to usr.
	first := true
	s.mu.Lock()
	if s.user != nil && s.user.ID == usr.ID {
		first = !s.walletComplete
		s.walletComplete = true
	}
	s.mu.Unlock()

	if first {
		s.deps.Tracker.Track(ctx, analytics.EventWalletSetupComplete, nil, usr.ID)
	}
}

// TrackEvent records an analytics event for the signed-in user, if any.
func (s *Store) TrackEvent(ctx context.Context, name string, props map[string]any) {
	var userID string
	if usr := s.CurrentUser(); usr != nil {
		userID = usr.ID
	}
	s.deps.Tracker.Track(ctx, name, props, userID)
}

func (s *Store) ProfileBackendEnabled() bool {
	return s.deps.Backend.Enabled()
}

// SetupProfile sends the onboarding profile to the backend. Without a
// backend it succeeds without doing anything.
func (s *Store) SetupProfile(ctx context.Context, profile model.Profile) error {
	usr := s.CurrentUser()
	if usr == nil {
		return domainErrors.ErrNotAuthenticated
	}
	if !s.deps.Backend.Enabled() {
		return nil
	}
	return s.deps.Backend.SetupProfile(ctx, usr.ID, profile)
}

// UpdateProfile sends settings changes to the backend.
func (s *Store) UpdateProfile(ctx context.Context, profile model.Profile) error {
	usr := s.CurrentUser()
	if usr == nil {
		return domainErrors.ErrNotAuthenticated
	}
	if !s.deps.Backend.Enabled() {
		return nil
	}
	return s.deps.Backend.UpdateProfile(ctx, usr.ID, profile)
}

// CurrentUser returns a copy of the signed-in user or nil.
func (s *Store) CurrentUser() *model.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneUser(s.user)
}

func (s *Store) WalletAddress() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.walletAddress
}

func (s *Store) ShopifyOrder() *model.ShopifyOrder {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneOrder(s.order)
}

func (s *Store) HasCompletedWalletSetup() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.walletComplete
}

func (s *Store) IsLoading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Snapshot{
		Authenticated:       s.user != nil,
		User:                cloneUser(s.user),
		WalletAddress:       s.walletAddress,
		ShopifyOrder:        cloneOrder(s.order),
		WalletSetupComplete: s.walletComplete,
		Loading:             s.loading,
	}
}

func (s *Store) logError(op string, err error) {
	s.logger.Error("session "+op+" failed", slog.String("error", err.Error()))
}

func cloneUser(u *model.User) *model.User {
	if u == nil {
		return nil
	}
	c := *u
	c.ShopifyOrderData = cloneOrder(u.ShopifyOrderData)
	return &c
}

func cloneOrder(o *model.ShopifyOrder) *model.ShopifyOrder {
	if o == nil {
		return nil
	}
	c := *o
	c.LineItems = append([]model.LineItem(nil), o.LineItems...)
	return &c
}
