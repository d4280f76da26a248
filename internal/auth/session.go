// ABOUTME: Anonymous session resolution for browser clients
// ABOUTME: Resolves an existing identity from the session cookie or mints a new one

package auth

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// SessionCookieName is the name of the identity cookie
const SessionCookieName = "roster_session"

// OwnerStore is the subset of the store the session manager needs.
type OwnerStore interface {
	TouchOwner(ctx context.Context, ownerID string) error
}

// SessionManager resolves the anonymous identity for each request.
// A valid cookie keeps its identity; anything else (no cookie, expired or
// garbage token) silently gets a fresh one. There is no sign-in flow: the
// cookie IS the identity, and losing it abandons that partition.
type SessionManager struct {
	verifier *JWTVerifier
	owners   OwnerStore
	ttl      time.Duration
	logger   *slog.Logger

	// Secure marks issued cookies as HTTPS-only. Off by default so local
	// deployments over plain HTTP keep working.
	Secure bool
}

// NewSessionManager creates a session manager minting tokens with the
// given verifier and lifetime.
func NewSessionManager(verifier *JWTVerifier, owners OwnerStore, ttl time.Duration) *SessionManager {
	return &SessionManager{
		verifier: verifier,
		owners:   owners,
		ttl:      ttl,
		logger:   slog.Default().With("component", "session"),
	}
}

// Resolve returns the request's identity, minting and setting a cookie if
// no valid one exists. The owner row is touched on every resolution so
// last_seen tracks activity.
func (s *SessionManager) Resolve(w http.ResponseWriter, r *http.Request) (*Identity, error) {
	if cookie, err := r.Cookie(SessionCookieName); err == nil && cookie.Value != "" {
		ownerID, err := s.verifier.Verify(cookie.Value)
		if err == nil {
			if err := s.owners.TouchOwner(r.Context(), ownerID); err != nil {
				return nil, fmt.Errorf("touching owner: %w", err)
			}
			return &Identity{OwnerID: ownerID}, nil
		}
		s.logger.Debug("session cookie rejected, minting new identity", "error", err)
	}

	ownerID := uuid.NewString()
	token, err := s.verifier.Generate(ownerID, s.ttl)
	if err != nil {
		return nil, fmt.Errorf("generating session token: %w", err)
	}

	if err := s.owners.TouchOwner(r.Context(), ownerID); err != nil {
		return nil, fmt.Errorf("touching owner: %w", err)
	}

	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(s.ttl.Seconds()),
		HttpOnly: true,
		Secure:   s.Secure,
		SameSite: http.SameSiteLaxMode,
	})

	s.logger.Info("minted anonymous identity", "owner_id", ownerID)
	return &Identity{OwnerID: ownerID, New: true}, nil
}

// Middleware resolves the identity and attaches it to the request context.
// Resolution failure is fatal for the request: a 500 with a single
// user-facing error string, no retry.
func (s *SessionManager) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, err := s.Resolve(w, r)
		if err != nil {
			s.logger.Error("failed to resolve identity", "error", err)
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusInternalServerError)
			fmt.Fprint(w, `{"status":"error","error":"Could not establish a session. Please reload the page."}`)
			return
		}

		next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), identity)))
	})
}
