package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/pantry-pal/apiserver/internal/auth"
	"github.com/pantry-pal/apiserver/internal/store"
	"github.com/pantry-pal/apiserver/types"
	"github.com/rs/zerolog/log"
)

// Rejection messages sent with every 401.
const (
	msgNotLoggedIn  = "You must be logged in to perform this action"
	msgInvalidToken = "The passed authentication token is invalid"
	msgNotVerified  = "Your account must be verified to perform this action"
)

// verifyPathMarker identifies the account-verification endpoints, which a
// logged-in but unverified user must still be able to reach.
const verifyPathMarker = "/verify"

// UserLoader resolves the user behind a credential for the verified-account
// gate. *services.UserService satisfies it.
type UserLoader interface {
	GetByID(ctx context.Context, id string) (types.User, error)
}

// SessionOptions configures one instance of the session middleware.
// One instance is mounted per transport: bearer header for the machine
// surface, cookie for the browser surface.
type SessionOptions struct {
	Codec     *auth.Codec
	Transport auth.Transport
	Users     UserLoader

	// ExemptPrefixes lists path prefixes that pass through without any
	// credential (registration, login).
	ExemptPrefixes []string

	// ExemptContains lists path fragments that pass through without any
	// credential (password reset).
	ExemptContains []string
}

// RequireSession gates every protected route. For each request it walks the
// credential through exemption check, extraction, refresh, identity decode
// and the verified-account gate before handing off downstream. Every
// rejection short-circuits with a 401 JSON body.
func RequireSession(opts SessionOptions) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if exemptPath(r.URL.Path, opts) {
				next.ServeHTTP(w, r)
				return
			}

			token, ok := opts.Transport.Extract(r)
			if !ok {
				writeError(w, http.StatusUnauthorized, msgNotLoggedIn)
				return
			}

			// Refresh re-issues the credential on every authenticated
			// request. It reports success only; the identity is decoded
			// from the original token in a second step.
			if !opts.Codec.Refresh(token, w, opts.Transport) {
				writeError(w, http.StatusUnauthorized, msgInvalidToken)
				return
			}

			userID, ok := opts.Codec.Verify(token)
			if !ok {
				writeError(w, http.StatusUnauthorized, msgInvalidToken)
				return
			}

			// Unverified accounts may only reach the verification
			// endpoints themselves. A lookup failure counts as "could not
			// confirm verification status" and rejects.
			if !strings.Contains(r.URL.Path, verifyPathMarker) {
				user, err := opts.Users.GetByID(r.Context(), userID)
				if err != nil {
					if !errors.Is(err, store.ErrNotFound) {
						log.Error().Err(err).Str("userId", userID).Msg("verification lookup failed")
					}
					writeError(w, http.StatusUnauthorized, msgNotVerified)
					return
				}
				if !user.Verified {
					writeError(w, http.StatusUnauthorized, msgNotVerified)
					return
				}
			}

			ctx := context.WithValue(r.Context(), contextUserIDKey, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func exemptPath(path string, opts SessionOptions) bool {
	for _, prefix := range opts.ExemptPrefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	for _, fragment := range opts.ExemptContains {
		if strings.Contains(path, fragment) {
			return true
		}
	}
	return false
}
