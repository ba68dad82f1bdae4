package onboarding

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/polkiloo/hubsai/internal/analytics"
	domainErrors "github.com/polkiloo/hubsai/internal/domain/errors"
	"github.com/polkiloo/hubsai/internal/domain/model"
)

// ErrWalletUnavailable is returned when the claim wallet step cannot produce a wallet.
var ErrWalletUnavailable = errors.New("claim wallet unavailable")

// Session is the part of the session store the sequencer drives.
type Session interface {
	CurrentUser() *model.User
	EnsureWallet(ctx context.Context) (string, bool)
	SetWalletSetupComplete(ctx context.Context)
	ProfileBackendEnabled() bool
	SetupProfile(ctx context.Context, profile model.Profile) error
	TrackEvent(ctx context.Context, name string, props map[string]any)
}

type Config struct {
	AutoAdvanceDelay time.Duration
}

// Snapshot is the externally visible state of the wizard.
type Snapshot struct {
	Step               Step                 `json:"step"`
	StepName           string               `json:"stepName"`
	Variant            string               `json:"variant"`
	DisplayStep        int                  `json:"displayStep"`
	TotalSteps         int                  `json:"totalSteps"`
	Profile            model.Profile        `json:"profile"`
	ExternalWallet     model.ExternalWallet `json:"externalWallet"`
	AutoAdvancePending bool                 `json:"autoAdvancePending"`
	Complete           bool                 `json:"complete"`
}

type stopper interface {
	Stop() bool
}

// Sequencer owns the wizard state of one client.
type Sequencer struct {
	session Session
	delay   time.Duration
	logger  *slog.Logger

	afterFunc func(time.Duration, func()) stopper

	mu            sync.Mutex
	skipRequested bool
	variant       Variant
	step          Step
	profile       model.Profile
	external      model.ExternalWallet
	timer         stopper
	// generation invalidates armed auto-advance timers.
	generation uint64
}

// NewSequencer builds a sequencer positioned at the computed initial step.
func NewSequencer(session Session, cfg Config, logger *slog.Logger) *Sequencer {
	s := &Sequencer{
		session: session,
		delay:   cfg.AutoAdvanceDelay,
		logger:  logger.With("component", "onboarding"),
		afterFunc: func(d time.Duration, f func()) stopper {
			return time.AfterFunc(d, f)
		},
	}
	s.restart(false)
	return s
}

// Start begins the flow. Login is skipped when requested or a session exists.
func (s *Sequencer) Start(skipLogin bool) Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.restart(skipLogin)
	return s.snapshot()
}

// Reset returns to the landing state: initial step recomputed, profile data
// cleared, the user stays signed in.
func (s *Sequencer) Reset() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.restart(s.skipRequested)
	return s.snapshot()
}

func (s *Sequencer) restart(skipLogin bool) {
	s.cancelTimer()
	s.skipRequested = skipLogin
	s.variant = WithLogin
	if skipLogin || s.session.CurrentUser() != nil {
		s.variant = SkipLogin
	}
	s.step = s.variant.FirstStep()
	s.profile = model.Profile{}
	s.external = model.ExternalWallet{}
}

func (s *Sequencer) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot()
}

func (s *Sequencer) snapshot() Snapshot {
	profile := s.profile
	profile.Interests = append([]string(nil), s.profile.Interests...)
	return Snapshot{
		Step:               s.step,
		StepName:           s.step.String(),
		Variant:            s.variant.String(),
		DisplayStep:        s.variant.DisplayNumber(s.step),
		TotalSteps:         s.variant.TotalSteps(),
		Profile:            profile,
		ExternalWallet:     s.external,
		AutoAdvancePending: s.timer != nil,
		Complete:           s.step == StepDashboard,
	}
}

// Next completes the current step. data, when non-nil, is merged into the
// profile first. A failed side effect keeps the current step.
func (s *Sequencer) Next(ctx context.Context, data *model.Profile) (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if data != nil {
		s.profile = s.profile.Merge(*data)
	}

	to, ok := Target(s.variant, s.step, EventNext)
	if !ok {
		return s.snapshot(), fmt.Errorf("%w: next from %s", domainErrors.ErrTransitionNotAllowed, s.step)
	}

	// Wallet and setup-complete side effects belong to the signed-in user.
	if s.session.CurrentUser() == nil {
		return s.snapshot(), domainErrors.ErrNotAuthenticated
	}

	switch s.step {
	case StepClaimWallet:
		if _, ok := s.session.EnsureWallet(ctx); !ok {
			return s.snapshot(), ErrWalletUnavailable
		}
		s.session.SetWalletSetupComplete(ctx)
	case StepProfileSetup:
		if s.session.ProfileBackendEnabled() {
			if err := s.session.SetupProfile(ctx, s.profile); err != nil {
				return s.snapshot(), err
			}
		}
	case StepCommunitySummary:
		s.session.SetWalletSetupComplete(ctx)
	}

	s.moveTo(ctx, to, EventNext)
	return s.snapshot(), nil
}

// Skip advances one step where skipping is offered.
func (s *Sequencer) Skip(ctx context.Context) (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	to, ok := Target(s.variant, s.step, EventSkip)
	if !ok {
		return s.snapshot(), fmt.Errorf("%w: skip from %s", domainErrors.ErrTransitionNotAllowed, s.step)
	}
	if s.session.CurrentUser() == nil {
		return s.snapshot(), domainErrors.ErrNotAuthenticated
	}
	s.session.TrackEvent(ctx, analytics.EventOnboardingSkip, map[string]any{"step": s.step.String()})
	s.moveTo(ctx, to, EventSkip)
	return s.snapshot(), nil
}

// Back returns one step, never before the first step and never from the dashboard.
func (s *Sequencer) Back(ctx context.Context) (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	to, ok := Target(s.variant, s.step, EventBack)
	if !ok {
		return s.snapshot(), fmt.Errorf("%w: back from %s", domainErrors.ErrTransitionNotAllowed, s.step)
	}
	s.moveTo(ctx, to, EventBack)
	return s.snapshot(), nil
}

// ObserveExternalWallet records the external wallet signal. A connection at
// the connect step marks wallet setup complete and arms the auto-advance
// timer; a disconnect cancels it.
func (s *Sequencer) ObserveExternalWallet(ctx context.Context, connected bool, publicKey string) Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.external = model.ExternalWallet{Connected: connected, PublicKey: publicKey}
	if !connected {
		s.external.PublicKey = ""
		s.cancelTimer()
		return s.snapshot()
	}
	if s.step != StepConnectExternalWallet {
		return s.snapshot()
	}

	s.session.SetWalletSetupComplete(ctx)
	s.session.TrackEvent(ctx, analytics.EventExternalWallet, map[string]any{"publicKey": publicKey})
	if s.timer == nil {
		s.armTimer()
	}
	return s.snapshot()
}

// Close cancels pending timers.
func (s *Sequencer) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cancelTimer()
}

func (s *Sequencer) moveTo(ctx context.Context, to Step, e Event) {
	from := s.step
	s.cancelTimer()
	s.step = to
	s.logger.Debug("onboarding transition",
		slog.String("from", from.String()),
		slog.String("to", to.String()),
		slog.String("event", string(e)))
	s.session.TrackEvent(ctx, analytics.EventOnboardingStep, map[string]any{
		"from":  from.String(),
		"to":    to.String(),
		"event": string(e),
	})
}

func (s *Sequencer) armTimer() {
	gen := s.generation
	s.timer = s.afterFunc(s.delay, func() { s.autoAdvance(gen) })
}

func (s *Sequencer) cancelTimer() {
	s.generation++
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

// autoAdvance re-checks the step and connection before moving on.
func (s *Sequencer) autoAdvance(gen uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if gen != s.generation || s.step != StepConnectExternalWallet || !s.external.Connected {
		return
	}
	if s.session.CurrentUser() == nil {
		s.timer = nil
		return
	}
	s.timer = nil
	to, ok := Target(s.variant, s.step, EventNext)
	if !ok {
		return
	}
	s.moveTo(context.Background(), to, EventNext)
}
