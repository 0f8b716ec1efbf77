package clients

import (
	"context"
	"net/http"

	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/auth"
)

// AuthClient talks to the auth backend. Session cookies it sets are
// returned to the caller, who keeps them and attaches them with WithCookies.
type AuthClient struct{ c *Client }

func NewAuthClient(c *Client) *AuthClient { return &AuthClient{c: c} }

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type registration struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type userEnvelope struct {
	User auth.User `json:"user"`
}

// SessionStatus is the check-session answer.
type SessionStatus struct {
	Authenticated bool       `json:"authenticated"`
	User          *auth.User `json:"user,omitempty"`
}

func (ac *AuthClient) Login(ctx context.Context, email, password string) (auth.User, []*http.Cookie, error) {
	var out userEnvelope
	h, err := ac.c.doJSON(ctx, http.MethodPost, "/api/auth/login", "", credentials{Email: email, Password: password}, &out)
	if err != nil {
		return auth.User{}, nil, err
	}
	return out.User, readSetCookies(h), nil
}

func (ac *AuthClient) Register(ctx context.Context, name, email, password string) error {
	_, err := ac.c.doJSON(ctx, http.MethodPost, "/api/auth/register", "", registration{Name: name, Email: email, Password: password}, nil)
	return err
}

// CheckSession reports whether the cookies in ctx belong to a live upstream
// session. Any failure reads as unauthenticated.
func (ac *AuthClient) CheckSession(ctx context.Context) SessionStatus {
	var out SessionStatus
	if _, err := ac.c.doJSON(ctx, http.MethodGet, "/api/auth/check-session", "", nil, &out); err != nil {
		return SessionStatus{Authenticated: false}
	}
	if !out.Authenticated {
		out.User = nil
	}
	return out
}

func (ac *AuthClient) Logout(ctx context.Context) error {
	_, err := ac.c.doJSON(ctx, http.MethodPost, "/api/auth/logout", "", struct{}{}, nil)
	return err
}

func (ac *AuthClient) ForgotPassword(ctx context.Context, email string) error {
	_, err := ac.c.doJSON(ctx, http.MethodPost, "/api/auth/forgot-password", "", map[string]string{"email": email}, nil)
	return err
}

func (ac *AuthClient) Me(ctx context.Context) (auth.User, error) {
	var out auth.User
	_, err := ac.c.doJSON(ctx, http.MethodGet, "/api/users/me", "", nil, &out)
	return out, err
}

func readSetCookies(h http.Header) []*http.Cookie {
	if h == nil {
		return nil
	}
	resp := http.Response{Header: h}
	return resp.Cookies()
}
