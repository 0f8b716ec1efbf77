package session

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/cart"
)

// CartFactory builds the empty cart a new session starts with.
type CartFactory func(logger *zap.Logger) *cart.Cart

type Options struct {
	TTL time.Duration
	// CheckoutTimeout bounds one checkout submission and its publish.
	CheckoutTimeout time.Duration
	Now             func() time.Time
	Logger          *zap.Logger
}

// Registry is the sole owner of live sessions.
type Registry struct {
	mu       sync.Mutex
	sessions map[string]*Session

	newCart         CartFactory
	publisher       Publisher
	ttl             time.Duration
	checkoutTimeout time.Duration
	now             func() time.Time
	logger          *zap.Logger
}

func NewRegistry(newCart CartFactory, publisher Publisher, opts Options) *Registry {
	r := &Registry{
		sessions:        make(map[string]*Session),
		newCart:         newCart,
		publisher:       publisher,
		ttl:             opts.TTL,
		checkoutTimeout: opts.CheckoutTimeout,
		now:             opts.Now,
		logger:          opts.Logger,
	}
	if r.ttl <= 0 {
		r.ttl = 30 * time.Minute
	}
	if r.checkoutTimeout <= 0 {
		r.checkoutTimeout = 15 * time.Second
	}
	if r.now == nil {
		r.now = time.Now
	}
	if r.logger == nil {
		r.logger = zap.NewNop()
	}
	if r.publisher == nil {
		r.publisher = nopPublisher{}
	}
	return r
}

// Start creates a session with an empty cart.
func (r *Registry) Start() *Session {
	id := uuid.NewString()
	logger := r.logger.With(zap.String("session_id", id))
	s := r.newSession(id, r.newCart(logger), r.now(), logger)

	r.mu.Lock()
	r.sessions[id] = s
	r.mu.Unlock()

	logger.Debug("session started")
	return s
}

// Rotate moves a live session, its cart and its sign-in state to a fresh
// id. The old id stops resolving.
func (r *Registry) Rotate(id string) (*Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	old, ok := r.sessions[id]
	if !ok || r.expired(old, r.now()) {
		delete(r.sessions, id)
		return nil, false
	}
	delete(r.sessions, id)

	newID := uuid.NewString()
	logger := r.logger.With(zap.String("session_id", newID))
	s := r.newSession(newID, old.Cart, old.CreatedAt, logger)
	s.lastSeen = r.now()

	old.mu.Lock()
	if old.user != nil {
		u := *old.user
		s.user = &u
	}
	s.cookies = append([]*http.Cookie(nil), old.cookies...)
	old.mu.Unlock()

	r.sessions[newID] = s
	logger.Debug("session rotated", zap.String("previous_session_id", id))
	return s, true
}

func (r *Registry) newSession(id string, c *cart.Cart, createdAt time.Time, logger *zap.Logger) *Session {
	return &Session{
		ID:              id,
		Cart:            c,
		CreatedAt:       createdAt,
		lastSeen:        createdAt,
		checkoutTimeout: r.checkoutTimeout,
		publisher:       r.publisher,
		logger:          logger,
		now:             r.now,
	}
}

// Get returns a live session and marks it as seen. Expired sessions are
// discarded and reported as missing.
func (r *Registry) Get(id string) (*Session, bool) {
	r.mu.Lock()
	s, ok := r.sessions[id]
	if ok && r.expired(s, r.now()) {
		delete(r.sessions, id)
		ok = false
	}
	r.mu.Unlock()

	if !ok {
		return nil, false
	}
	s.Touch()
	return s, true
}

// End discards the session and its cart.
func (r *Registry) End(id string) {
	r.mu.Lock()
	_, ok := r.sessions[id]
	delete(r.sessions, id)
	r.mu.Unlock()

	if ok {
		r.logger.Debug("session ended", zap.String("session_id", id))
	}
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Sweep removes sessions idle for longer than the TTL and returns how many
// were removed.
func (r *Registry) Sweep(now time.Time) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	removed := 0
	for id, s := range r.sessions {
		if r.expired(s, now) {
			delete(r.sessions, id)
			removed++
		}
	}
	return removed
}

// Run sweeps every interval until ctx is done.
func (r *Registry) Run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if n := r.Sweep(r.now()); n > 0 {
				r.logger.Info("expired sessions removed", zap.Int("count", n), zap.Int("live", r.Len()))
			}
		}
	}
}

func (r *Registry) expired(s *Session, now time.Time) bool {
	return now.Sub(s.LastSeen()) > r.ttl
}
