// Package dashboard holds the per-client dashboard view state.
package dashboard

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/polkiloo/hubsai/internal/analytics"
	domainErrors "github.com/polkiloo/hubsai/internal/domain/errors"
	"github.com/polkiloo/hubsai/internal/domain/model"
	"github.com/polkiloo/hubsai/internal/pkg/walletkey"
)

// ErrTransferUnavailable is returned when no backend can carry out a transfer.
var ErrTransferUnavailable = errors.New("nft transfer unavailable")

type Tab string

const (
	TabNFTs        Tab = "nfts"
	TabStaking     Tab = "staking"
	TabMarketplace Tab = "marketplace"
	TabRewards     Tab = "rewards"
	TabSettings    Tab = "settings"
)

// TabInfo describes one dashboard tab.
type TabInfo struct {
	ID         Tab    `json:"id"`
	Label      string `json:"label"`
	ComingSoon bool   `json:"comingSoon"`
}

var tabs = []TabInfo{
	{ID: TabNFTs, Label: "My NFTs"},
	{ID: TabStaking, Label: "Staking"},
	{ID: TabMarketplace, Label: "Marketplace", ComingSoon: true},
	{ID: TabRewards, Label: "Rewards", ComingSoon: true},
	{ID: TabSettings, Label: "Settings"},
}

// Tabs lists the dashboard tabs in display order.
func Tabs() []TabInfo {
	return append([]TabInfo(nil), tabs...)
}

func validTab(t Tab) bool {
	for _, info := range tabs {
		if info.ID == t {
			return true
		}
	}
	return false
}

// NFT list origins.
const (
	SourceOrder    = "order"
	SourceBackend  = "backend"
	SourceFallback = "fallback"
)

const rewardsCollection = "HubsAI Rewards"

var fallbackNFTs = []model.NFT{
	{ID: "demo-genesis-1", Name: "HubsAI Genesis #1", Image: "/nfts/genesis-1.png", Collection: "HubsAI Genesis", Staked: true},
	{ID: "demo-genesis-2", Name: "HubsAI Genesis #2", Image: "/nfts/genesis-2.png", Collection: "HubsAI Genesis"},
	{ID: "demo-explorer-1", Name: "Retail Explorer", Image: "/nfts/explorer.png", Collection: rewardsCollection},
}

// Session is the read side of the session store the dashboard is derived from.
type Session interface {
	CurrentUser() *model.User
	WalletAddress() string
	ShopifyOrder() *model.ShopifyOrder
	UpdateProfile(ctx context.Context, profile model.Profile) error
	TrackEvent(ctx context.Context, name string, props map[string]any)
}

// NFTBackend lists and transfers NFTs held by the external backend.
type NFTBackend interface {
	Enabled() bool
	ListNFTs(ctx context.Context, userID string) ([]model.NFT, error)
	TransferNFT(ctx context.Context, userID, nftID, toAddress string) error
}

type Settings struct {
	Name          string `json:"name"`
	Email         string `json:"email"`
	WalletAddress string `json:"walletAddress"`
}

type Snapshot struct {
	Tab               Tab         `json:"tab"`
	Tabs              []TabInfo   `json:"tabs"`
	NFTs              []model.NFT `json:"nfts"`
	NFTSource         string      `json:"nftSource"`
	Settings          Settings    `json:"settings"`
	TransferAvailable bool        `json:"transferAvailable"`
}

// ActionResult reports a stake or unstake request. Staking has no effect yet.
type ActionResult struct {
	NFTID  string `json:"nftId"`
	Action string `json:"action"`
	Inert  bool   `json:"inert"`
}

// View is the dashboard of one client. Only the selected tab is state.
type View struct {
	session Session
	backend NFTBackend
	logger  *slog.Logger

	mu  sync.Mutex
	tab Tab
}

func NewView(session Session, backend NFTBackend, logger *slog.Logger) *View {
	return &View{
		session: session,
		backend: backend,
		logger:  logger.With("component", "dashboard"),
		tab:     TabNFTs,
	}
}

func (v *View) Tab() Tab {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.tab
}

// SelectTab switches the visible tab.
func (v *View) SelectTab(ctx context.Context, tab string) error {
	t := Tab(strings.ToLower(strings.TrimSpace(tab)))
	if !validTab(t) {
		return fmt.Errorf("%w: unknown tab %q", domainErrors.ErrInvalidInput, tab)
	}
	v.mu.Lock()
	v.tab = t
	v.mu.Unlock()

	v.session.TrackEvent(ctx, analytics.EventDashboardTab, map[string]any{"tab": string(t)})
	return nil
}

// Reset returns to the default tab.
func (v *View) Reset() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.tab = TabNFTs
}

// NFTs returns the NFTs to display and where they came from: the signed-in
// user's order first, then the backend, then a static set.
func (v *View) NFTs(ctx context.Context) ([]model.NFT, string) {
	if nfts := orderNFTs(v.order()); len(nfts) > 0 {
		return nfts, SourceOrder
	}

	if usr := v.session.CurrentUser(); usr != nil && v.backend.Enabled() {
		nfts, err := v.backend.ListNFTs(ctx, usr.ID)
		switch {
		case err != nil:
			v.logger.Warn("backend nft listing failed", slog.String("user_id", usr.ID), slog.String("error", err.Error()))
		case len(nfts) > 0:
			return nfts, SourceBackend
		}
	}

	return append([]model.NFT(nil), fallbackNFTs...), SourceFallback
}

func (v *View) order() *model.ShopifyOrder {
	if order := v.session.ShopifyOrder(); order != nil {
		return order
	}
	if usr := v.session.CurrentUser(); usr != nil {
		return usr.ShopifyOrderData
	}
	return nil
}

func orderNFTs(order *model.ShopifyOrder) []model.NFT {
	items := order.EligibleItems()
	if len(items) == 0 {
		return nil
	}
	nfts := make([]model.NFT, 0, len(items))
	for _, item := range items {
		nfts = append(nfts, model.NFT{
			ID:            orderNFTID(order.ID, item.ID),
			Name:          item.Title,
			Image:         item.ImageURL,
			Collection:    rewardsCollection,
			SourceOrderID: order.ID,
		})
	}
	return nfts
}

// orderNFTID builds a path-safe NFT id from the last segment of the order
// id (Shopify ids look like gid://shopify/Order/<n>) and the line item id.
func orderNFTID(orderID, itemID string) string {
	if i := strings.LastIndex(orderID, "/"); i >= 0 {
		orderID = orderID[i+1:]
	}
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		default:
			return '-'
		}
	}, orderID+"-"+itemID)
}

func (v *View) find(ctx context.Context, id string) (*model.NFT, error) {
	nfts, _ := v.NFTs(ctx)
	for i := range nfts {
		if nfts[i].ID == id {
			return &nfts[i], nil
		}
	}
	return nil, fmt.Errorf("nft %q: %w", id, domainErrors.ErrNotFound)
}

// Stake records a stake request. Nothing is persisted.
func (v *View) Stake(ctx context.Context, id string) (ActionResult, error) {
	return v.inert(ctx, id, "stake", analytics.EventNFTStake)
}

// Unstake records an unstake request. Nothing is persisted.
func (v *View) Unstake(ctx context.Context, id string) (ActionResult, error) {
	return v.inert(ctx, id, "unstake", analytics.EventNFTUnstake)
}

func (v *View) inert(ctx context.Context, id, action, event string) (ActionResult, error) {
	nft, err := v.find(ctx, id)
	if err != nil {
		return ActionResult{}, err
	}
	v.session.TrackEvent(ctx, event, map[string]any{
		"nftId":      nft.ID,
		"collection": nft.Collection,
		"staked":     nft.Staked,
	})
	return ActionResult{NFTID: nft.ID, Action: action, Inert: true}, nil
}

// Transfer sends an NFT to another wallet through the backend.
func (v *View) Transfer(ctx context.Context, id, toAddress string) error {
	usr := v.session.CurrentUser()
	if usr == nil {
		return domainErrors.ErrNotAuthenticated
	}
	if !v.backend.Enabled() {
		return ErrTransferUnavailable
	}
	toAddress = strings.TrimSpace(toAddress)
	if !walletkey.ValidAddress(toAddress) {
		return fmt.Errorf("%w: invalid destination address", domainErrors.ErrInvalidInput)
	}
	nft, err := v.find(ctx, id)
	if err != nil {
		return err
	}

	v.session.TrackEvent(ctx, analytics.EventNFTTransfer, map[string]any{"nftId": nft.ID, "to": toAddress})
	if err := v.backend.TransferNFT(ctx, usr.ID, nft.ID, toAddress); err != nil {
		return fmt.Errorf("transfer nft %q: %w", nft.ID, err)
	}
	return nil
}

func (v *View) Settings() Settings {
	s := Settings{WalletAddress: v.session.WalletAddress()}
	if usr := v.session.CurrentUser(); usr != nil {
		s.Name = usr.Name
		s.Email = usr.Email
	}
	return s
}

// UpdateSettings forwards profile changes to the backend.
func (v *View) UpdateSettings(ctx context.Context, profile model.Profile) error {
	if v.session.CurrentUser() == nil {
		return domainErrors.ErrNotAuthenticated
	}
	return v.session.UpdateProfile(ctx, profile)
}

func (v *View) Snapshot(ctx context.Context) Snapshot {
	nfts, source := v.NFTs(ctx)
	return Snapshot{
		Tab:               v.Tab(),
		Tabs:              Tabs(),
		NFTs:              nfts,
		NFTSource:         source,
		Settings:          v.Settings(),
		TransferAvailable: v.backend.Enabled() && v.session.CurrentUser() != nil,
	}
}
