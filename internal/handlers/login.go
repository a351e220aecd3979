package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/pantry-pal/apiserver/internal/auth"
	"github.com/pantry-pal/apiserver/internal/services"
	"github.com/pantry-pal/apiserver/internal/store"
	"github.com/pantry-pal/apiserver/types"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
)

// LoginHandler authenticates users and mints session credentials.
type LoginHandler struct {
	users    *services.UserService
	codec    *auth.Codec
	verifier auth.TicketVerifier
	cookie   auth.CookieTransport
}

func NewLoginHandler(users *services.UserService, codec *auth.Codec, verifier auth.TicketVerifier, cookie auth.CookieTransport) *LoginHandler {
	return &LoginHandler{users: users, codec: codec, verifier: verifier, cookie: cookie}
}

// LoginRouter registers the login routes on the given router.
func LoginRouter(r chi.Router, users *services.UserService, codec *auth.Codec, verifier auth.TicketVerifier, cookie auth.CookieTransport) {
	handler := NewLoginHandler(users, codec, verifier, cookie)

	r.Route("/login", func(r chi.Router) {
		r.Post("/", handler.Local)
		r.Post("/google", handler.Google)
	})
}

// LoginPayload is the local login request body.
type LoginPayload struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse carries the minted credential and the authenticated user.
type AuthResponse struct {
	Token string     `json:"token"`
	User  types.User `json:"user"`
}

// Local verifies an email/password pair and establishes a session. The
// credential is returned in the body and also set as the session cookie for
// the browser surface.
func (h *LoginHandler) Local(w http.ResponseWriter, r *http.Request) {
	var payload LoginPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil || payload.Email == "" || payload.Password == "" {
		writeError(w, http.StatusOK, "An email and password are required to log in")
		return
	}

	user, err := h.users.GetByEmail(r.Context(), payload.Email)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			log.Error().Err(err).Msg("login lookup failed")
		}
		writeError(w, http.StatusUnauthorized, "Invalid email or password")
		return
	}

	// Google-only accounts have no password hash to compare against.
	if user.PasswordHash == "" {
		writeError(w, http.StatusUnauthorized, "Invalid email or password")
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(payload.Password)); err != nil {
		writeError(w, http.StatusUnauthorized, "Invalid email or password")
		return
	}

	h.establishSession(w, r, user)
}

// Google verifies a third-party identity token and establishes a session
// for the matching Google-linked account.
func (h *LoginHandler) Google(w http.ResponseWriter, r *http.Request) {
	var payload GoogleRegisterPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil || payload.Token == "" {
		writeError(w, http.StatusOK, "No OAuth token included in request")
		return
	}

	ticket, err := h.verifier.VerifyTicket(r.Context(), payload.Token)
	if err != nil {
		log.Warn().Err(err).Msg("google ticket verification failed")
		writeError(w, http.StatusOK, "Failed to validate authenticity of OAuth token")
		return
	}

	user, err := h.users.GetByEmail(r.Context(), ticket.Email)
	if err != nil || !user.Google {
		writeError(w, http.StatusUnauthorized, "No account is registered with this Google identity")
		return
	}

	h.establishSession(w, r, user)
}

func (h *LoginHandler) establishSession(w http.ResponseWriter, r *http.Request, user types.User) {
	token, err := h.codec.Mint(user.ID.Hex())
	if err != nil {
		log.Error().Err(err).Str("userId", user.ID.Hex()).Msg("failed to mint session token")
		writeError(w, http.StatusInternalServerError, "Failed to create a session")
		return
	}

	h.cookie.Attach(w, token, h.codec.TTL())
	writeJSON(w, http.StatusOK, AuthResponse{Token: token, User: user})
}
