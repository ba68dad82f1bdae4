// Package analytics records user interaction events into the bounded event
// log and ships them to a collector.
package analytics

import (
	"context"
	"log/slog"
	"maps"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/polkiloo/hubsai/internal/domain/model"
	"github.com/polkiloo/hubsai/internal/domain/repository"
)

// Event names emitted by the core.
const (
	EventShopifyOrderFound    = "shopify_order_found"
	EventShopifyOrderNotFound = "shopify_order_not_found"
	EventSignUp               = "sign_up"
	EventSignIn               = "sign_in"
	EventSignOut              = "sign_out"
	EventWalletCreated        = "claim_wallet_created"
	EventWalletSetupComplete  = "wallet_setup_complete"
	EventOnboardingStep       = "onboarding_step"
	EventOnboardingSkip       = "onboarding_skip"
	EventExternalWallet       = "external_wallet_connected"
	EventNFTStake             = "nft_stake_requested"
	EventNFTUnstake           = "nft_unstake_requested"
	EventNFTTransfer          = "nft_transfer_requested"
	EventDashboardTab         = "dashboard_tab_selected"
)

// Tracker appends events to the persisted log. It never fails the caller.
type Tracker struct {
	events   repository.EventLogRepository
	capacity int
	logger   *slog.Logger
	now      func() time.Time
}

func NewTracker(events repository.EventLogRepository, capacity int, logger *slog.Logger) *Tracker {
	return &Tracker{
		events:   events,
		capacity: capacity,
		logger:   logger.With("component", "analytics"),
		now:      time.Now,
	}
}

// Track records an event for userID (empty when anonymous) and returns it.
func (t *Tracker) Track(ctx context.Context, name string, props map[string]any, userID string) model.AnalyticsEvent {
	now := t.now().UTC()
	event := model.AnalyticsEvent{
		ID:         ulid.MustNew(ulid.Timestamp(now), ulid.DefaultEntropy()).String(),
		Event:      name,
		Properties: maps.Clone(props),
		Timestamp:  now,
		UserID:     userID,
	}

	t.logger.Info("event tracked",
		slog.String("event", name),
		slog.String("event_id", event.ID),
		slog.String("user_id", userID))

	if err := t.events.Append(ctx, event, t.capacity); err != nil {
		t.logger.Error("failed to persist analytics event",
			slog.String("event", name),
			slog.String("error", err.Error()))
	}
	return event
}
