package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/polkiloo/hubsai/internal/dashboard"
	domainErrors "github.com/polkiloo/hubsai/internal/domain/errors"
	"github.com/polkiloo/hubsai/internal/onboarding"
)

// Client bundles the state of one client.
type Client struct {
	ID        string
	Store     *Store
	Flow      *onboarding.Sequencer
	Dashboard *dashboard.View

	lastSeen time.Time
}

type RegistryConfig struct {
	IdleTTL          time.Duration
	MaxClients       int
	AutoAdvanceDelay time.Duration
}

// Registry keeps live clients in memory. Evicted clients are rebuilt from
// persistence on their next request.
type Registry struct {
	deps   Deps
	cfg    RegistryConfig
	logger *slog.Logger
	now    func() time.Time

	mu      sync.Mutex
	clients map[string]*Client
}

func NewRegistry(deps Deps, cfg RegistryConfig) *Registry {
	return &Registry{
		deps:    deps,
		cfg:     cfg,
		logger:  deps.Logger.With("component", "registry"),
		now:     time.Now,
		clients: make(map[string]*Client),
	}
}

// Get returns the client with id, hydrating it on first access.
func (r *Registry) Get(ctx context.Context, id string) (*Client, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: empty client id", domainErrors.ErrInvalidInput)
	}

	r.mu.Lock()
	if c, ok := r.clients[id]; ok {
		c.lastSeen = r.now()
		r.mu.Unlock()
		return c, nil
	}
	r.mu.Unlock()

	fresh := r.build(ctx, id)

	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.clients[id]; ok {
		fresh.Flow.Close()
		c.lastSeen = r.now()
		return c, nil
	}
	if r.cfg.MaxClients > 0 && len(r.clients) >= r.cfg.MaxClients {
		r.evictOldest()
	}
	fresh.lastSeen = r.now()
	r.clients[id] = fresh
	return fresh, nil
}

func (r *Registry) build(ctx context.Context, id string) *Client {
	store := NewStore(id, r.deps)
	store.Hydrate(ctx)
	return &Client{
		ID:        id,
		Store:     store,
		Flow:      onboarding.NewSequencer(store, onboarding.Config{AutoAdvanceDelay: r.cfg.AutoAdvanceDelay}, r.deps.Logger),
		Dashboard: dashboard.NewView(store, r.deps.Backend, r.deps.Logger),
	}
}

func (r *Registry) evictOldest() {
	var oldest *Client
	for _, c := range r.clients {
		if oldest == nil || c.lastSeen.Before(oldest.lastSeen) {
			oldest = c
		}
	}
	if oldest == nil {
		return
	}
	oldest.Flow.Close()
	delete(r.clients, oldest.ID)
	r.logger.Debug("client evicted", slog.String("client_id", oldest.ID))
}

// Sweep drops clients idle for longer than the idle TTL and reports how
// many were dropped.
func (r *Registry) Sweep() int {
	if r.cfg.IdleTTL <= 0 {
		return 0
	}
	cutoff := r.now().Add(-r.cfg.IdleTTL)

	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for id, c := range r.clients {
		if c.lastSeen.Before(cutoff) {
			c.Flow.Close()
			delete(r.clients, id)
			n++
		}
	}
	return n
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.clients)
}

// Close stops pending timers of every client and forgets them.
func (r *Registry) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, c := range r.clients {
		c.Flow.Close()
		delete(r.clients, id)
	}
}
