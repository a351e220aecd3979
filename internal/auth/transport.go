package auth

import (
	"net/http"
	"strings"
	"time"
)

// Transport moves a session token between requests and responses.
// The machine-facing API surface uses the Authorization header; the
// browser-facing surface uses a named cookie.
type Transport interface {
	// Extract pulls the token from an incoming request.
	Extract(r *http.Request) (string, bool)

	// Attach writes a token to the outgoing response.
	Attach(w http.ResponseWriter, token string, ttl time.Duration)
}

// HeaderTransport carries the token in "Authorization: Bearer <token>".
type HeaderTransport struct{}

func (HeaderTransport) Extract(r *http.Request) (string, bool) {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if header == "" {
		return "", false
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	token := strings.TrimSpace(parts[1])
	if token == "" {
		return "", false
	}
	return token, true
}

func (HeaderTransport) Attach(w http.ResponseWriter, token string, _ time.Duration) {
	w.Header().Set("Authorization", "Bearer "+token)
}

// CookieTransport carries the token in a named HTTP-only cookie.
type CookieTransport struct {
	Name   string
	Secure bool
}

func (t CookieTransport) Extract(r *http.Request) (string, bool) {
	cookie, err := r.Cookie(t.Name)
	if err != nil || cookie.Value == "" {
		return "", false
	}
	return cookie.Value, true
}

func (t CookieTransport) Attach(w http.ResponseWriter, token string, ttl time.Duration) {
	http.SetCookie(w, &http.Cookie{
		Name:     t.Name,
		Value:    token,
		Expires:  time.Now().Add(ttl),
		HttpOnly: true,
		Secure:   t.Secure,
		SameSite: http.SameSiteStrictMode,
		Path:     "/",
	})
}
