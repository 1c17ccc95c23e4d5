package http

import (
	"context"
	"errors"
	"net/http"
	"strings"
)

type contextKey string

const ownerIDKey contextKey = "owner_id"

var ErrUnauthenticated = errors.New("missing or empty user identity")

// Authenticator resolves the acting user of a request. Credential checking
// happens upstream; the API only needs a stable owner identifier.
type Authenticator interface {
	Authenticate(r *http.Request) (ownerID string, err error)
}

// HeaderAuthenticator trusts an identity header set by the fronting proxy.
type HeaderAuthenticator struct {
	Header string
}

// NewHeaderAuthenticator reads the owner from X-User-ID.
func NewHeaderAuthenticator() *HeaderAuthenticator {
	return &HeaderAuthenticator{Header: "X-User-ID"}
}

func (a *HeaderAuthenticator) Authenticate(r *http.Request) (string, error) {
	ownerID := strings.TrimSpace(r.Header.Get(a.Header))
	if ownerID == "" {
		return "", ErrUnauthenticated
	}
	return ownerID, nil
}

// requireOwner authenticates the request and stashes the owner ID in the
// context for handlers downstream.
func (s *Server) requireOwner(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ownerID, err := s.auth.Authenticate(r)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "authentication required")
			return
		}
		ctx := context.WithValue(r.Context(), ownerIDKey, ownerID)
		next(w, r.WithContext(ctx))
	}
}

// OwnerFromContext returns the authenticated owner ID, or "" when the
// request skipped authentication.
func OwnerFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(ownerIDKey).(string); ok {
		return id
	}
	return ""
}
