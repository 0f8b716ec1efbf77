package session

import (
	"context"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/auth"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/cart"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/contracts"
)

// Publisher announces accepted checkouts.
type Publisher interface {
	PublishCartCheckedOut(ctx context.Context, rec contracts.CheckoutRecord) error
}

type nopPublisher struct{}

func (nopPublisher) PublishCartCheckedOut(context.Context, contracts.CheckoutRecord) error { return nil }

// Session owns one cart for one browser.
type Session struct {
	ID        string
	Cart      *cart.Cart
	CreatedAt time.Time

	mu       sync.Mutex
	user     *auth.User
	cookies  []*http.Cookie
	lastSeen time.Time

	checkout        singleflight.Group
	checkoutTimeout time.Duration
	publisher       Publisher
	logger          *zap.Logger
	now             func() time.Time
}

func (s *Session) Touch() {
	s.mu.Lock()
	s.lastSeen = s.now()
	s.mu.Unlock()
}

func (s *Session) LastSeen() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}

// SignIn records the user and the upstream auth cookies issued for them.
func (s *Session) SignIn(u auth.User, cookies []*http.Cookie) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = &u
	s.cookies = append([]*http.Cookie(nil), cookies...)
}

func (s *Session) SignOut() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = nil
	s.cookies = nil
}

func (s *Session) User() (auth.User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil {
		return auth.User{}, false
	}
	return *s.user, true
}

// Cookies returns the upstream cookies to forward on this session's behalf.
func (s *Session) Cookies() []*http.Cookie {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*http.Cookie(nil), s.cookies...)
}

// Checkout submits the cart. Callers arriving while a submission for this
// session is outstanding wait for it and share its result. The shared
// submission ignores any single caller's cancellation and is bounded by the
// checkout timeout instead. On success only the submitted units leave the
// cart and CartCheckedOut is published for exactly what was sent; a publish
// failure is logged only, since the order was already accepted upstream.
func (s *Session) Checkout(ctx context.Context) (cart.Confirmation, error) {
	v, err, shared := s.checkout.Do("checkout", func() (any, error) {
		subCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.checkoutTimeout)
		defer cancel()

		sub, err := s.Cart.Submit(subCtx)
		if err != nil {
			return nil, err
		}
		s.Cart.RemoveSubmitted(sub.Items)

		rec := contracts.CheckoutRecord{
			SessionID:    s.ID,
			Items:        sub.Items,
			Total:        sub.Total,
			Confirmation: sub.Confirmation,
		}
		if u, ok := s.User(); ok {
			rec.UserEmail = u.Email
		}
		if err := s.publisher.PublishCartCheckedOut(subCtx, rec); err != nil {
			s.logger.Error("publish CartCheckedOut failed", zap.String("session_id", s.ID), zap.Error(err))
		}
		return sub.Confirmation, nil
	})
	if shared {
		s.logger.Debug("checkout shared with concurrent request", zap.String("session_id", s.ID))
	}
	if err != nil {
		return nil, err
	}
	conf, _ := v.(cart.Confirmation)
	return conf, nil
}
