package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/clients"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/middleware"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/session"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/validation"
)

type upstreamErrorResponse struct {
	middleware.ErrorResponse
	UpstreamStatus int `json:"upstreamStatus,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	writeJSON(w, status, middleware.ErrorResponse{
		Error:         msg,
		CorrelationID: middleware.GetCorrelationID(r.Context()),
	})
}

func writeValidation(w http.ResponseWriter, r *http.Request, fields validation.Errors) {
	writeJSON(w, http.StatusBadRequest, middleware.ErrorResponse{
		Error:         "validation failed",
		CorrelationID: middleware.GetCorrelationID(r.Context()),
		Fields:        fields,
	})
}

// writeUpstreamError maps a failed upstream call to a response. Not found
// and auth answers pass through; anything else is a bad gateway.
func writeUpstreamError(w http.ResponseWriter, r *http.Request, err error, msg string) {
	var verr validation.Errors
	if errors.As(err, &verr) {
		writeValidation(w, r, verr)
		return
	}

	status := http.StatusBadGateway
	upstream := 0
	var se *clients.StatusError
	if errors.As(err, &se) {
		upstream = se.StatusCode
		switch se.StatusCode {
		case http.StatusNotFound, http.StatusUnauthorized, http.StatusForbidden, http.StatusConflict:
			status = se.StatusCode
		case http.StatusBadRequest:
			status = http.StatusBadRequest
		}
	} else if errors.Is(err, context.DeadlineExceeded) {
		status = http.StatusGatewayTimeout
	}

	writeJSON(w, status, upstreamErrorResponse{
		ErrorResponse: middleware.ErrorResponse{
			Error:         msg,
			CorrelationID: middleware.GetCorrelationID(r.Context()),
		},
		UpstreamStatus: upstream,
	})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
	return dec.Decode(v)
}

func urlInt(r *http.Request, name string) (int, bool) {
	n, err := strconv.Atoi(chi.URLParam(r, name))
	return n, err == nil
}

func urlInt64(r *http.Request, name string) (int64, bool) {
	n, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	return n, err == nil
}

// upstreamCtx carries the session's upstream cookies for outgoing calls.
func upstreamCtx(ctx context.Context, s *session.Session) context.Context {
	if s == nil {
		return ctx
	}
	return clients.WithCookies(ctx, s.Cookies())
}
