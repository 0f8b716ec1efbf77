package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/auth"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/clients"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/middleware"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/session"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/validation"
)

// AuthBackend is the upstream auth service.
type AuthBackend interface {
	Login(ctx context.Context, email, password string) (auth.User, []*http.Cookie, error)
	Register(ctx context.Context, name, email, password string) error
	CheckSession(ctx context.Context) clients.SessionStatus
	Logout(ctx context.Context) error
	ForgotPassword(ctx context.Context, email string) error
	Me(ctx context.Context) (auth.User, error)
}

type AuthHandler struct {
	backend  AuthBackend
	sessions *session.Registry
	cookie   middleware.SessionCookieOptions
	timeout  time.Duration
	logger   *zap.Logger
}

func NewAuthHandler(backend AuthBackend, sessions *session.Registry, cookie middleware.SessionCookieOptions, timeout time.Duration, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{backend: backend, sessions: sessions, cookie: cookie, timeout: timeout, logger: logger}
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	s := middleware.GetSession(r.Context())

	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := decodeJSON(w, r, &body); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid json")
		return
	}
	if err := auth.ValidateLogin(body.Email, body.Password); err != nil {
		writeValidationErr(w, r, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	u, cookies, err := h.backend.Login(ctx, body.Email, body.Password)
	if err != nil {
		var se *clients.StatusError
		if errors.As(err, &se) && (se.StatusCode == http.StatusUnauthorized || se.StatusCode == http.StatusForbidden) {
			writeError(w, r, http.StatusUnauthorized, "invalid email or password")
			return
		}
		h.logger.Warn("login failed", zap.Error(err))
		writeUpstreamError(w, r, err, "login failed")
		return
	}

	// a new id on sign-in, so an id planted before login is worthless after it
	signedIn, ok := h.sessions.Rotate(s.ID)
	if !ok {
		signedIn = h.sessions.Start()
	}
	signedIn.SignIn(u, cookies)
	middleware.SetSessionCookie(w, signedIn.ID, h.cookie)
	h.logger.Info("user signed in", zap.String("session_id", signedIn.ID), zap.String("role", u.EffectiveRole()))
	writeJSON(w, http.StatusOK, map[string]any{"user": u})
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name            string `json:"name"`
		Email           string `json:"email"`
		Password        string `json:"password"`
		ConfirmPassword string `json:"confirmPassword"`
	}
	if err := decodeJSON(w, r, &body); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid json")
		return
	}
	if err := auth.ValidateRegistration(body.Name, body.Email, body.Password, body.ConfirmPassword); err != nil {
		writeValidationErr(w, r, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	if err := h.backend.Register(ctx, body.Name, body.Email, body.Password); err != nil {
		h.logger.Warn("registration failed", zap.Error(err))
		writeUpstreamError(w, r, err, "registration failed")
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"status": "registered"})
}

// Logout signs out upstream and discards the session with its cart.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	s := middleware.GetSession(r.Context())

	ctx, cancel := context.WithTimeout(upstreamCtx(r.Context(), s), h.timeout)
	defer cancel()

	if err := h.backend.Logout(ctx); err != nil {
		h.logger.Warn("upstream logout failed", zap.String("session_id", s.ID), zap.Error(err))
	}
	h.sessions.End(s.ID)
	middleware.ClearSessionCookie(w, h.cookie)
	writeJSON(w, http.StatusOK, map[string]string{"status": "signed out"})
}

func (h *AuthHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email string `json:"email"`
	}
	if err := decodeJSON(w, r, &body); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid json")
		return
	}
	if err := auth.ValidateEmail(body.Email); err != nil {
		writeValidationErr(w, r, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	if err := h.backend.ForgotPassword(ctx, body.Email); err != nil {
		h.logger.Warn("forgot password failed", zap.Error(err))
		writeUpstreamError(w, r, err, "password recovery failed")
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "recovery email requested"})
}

// Session re-checks the upstream session and refreshes the signed-in user.
func (h *AuthHandler) Session(w http.ResponseWriter, r *http.Request) {
	s := middleware.GetSession(r.Context())

	cookies := s.Cookies()
	if len(cookies) == 0 {
		writeJSON(w, http.StatusOK, clients.SessionStatus{Authenticated: false})
		return
	}

	ctx, cancel := context.WithTimeout(upstreamCtx(r.Context(), s), h.timeout)
	defer cancel()

	st := h.backend.CheckSession(ctx)
	if st.Authenticated && st.User != nil {
		s.SignIn(*st.User, cookies)
	} else {
		s.SignOut()
		st = clients.SessionStatus{Authenticated: false}
	}
	writeJSON(w, http.StatusOK, st)
}

func (h *AuthHandler) Account(w http.ResponseWriter, r *http.Request) {
	s := middleware.GetSession(r.Context())
	if _, ok := s.User(); !ok {
		writeError(w, r, http.StatusUnauthorized, "not signed in")
		return
	}

	ctx, cancel := context.WithTimeout(upstreamCtx(r.Context(), s), h.timeout)
	defer cancel()

	u, err := h.backend.Me(ctx)
	if err != nil {
		writeUpstreamError(w, r, err, "failed to load account")
		return
	}
	writeJSON(w, http.StatusOK, u)
}

func writeValidationErr(w http.ResponseWriter, r *http.Request, err error) {
	var verr validation.Errors
	if errors.As(err, &verr) {
		writeValidation(w, r, verr)
		return
	}
	writeError(w, r, http.StatusBadRequest, err.Error())
}
