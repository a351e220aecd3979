package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"unicode/utf8"

	"github.com/go-chi/chi/v5"
	"github.com/pantry-pal/apiserver/internal/auth"
	"github.com/pantry-pal/apiserver/internal/services"
	"github.com/pantry-pal/apiserver/internal/store"
	"github.com/pantry-pal/apiserver/types"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
)

// bcryptCost is the fixed work factor applied to local passwords.
const bcryptCost = 10

const (
	maxDisplayNameLen = 32

	fallbackDuplicateEmail  = "Duplicate email"
	fallbackDuplicateGoogle = "Already registered using Google"
)

// RegisterHandler provides the local and Google registration endpoints.
type RegisterHandler struct {
	users    *services.UserService
	verifier auth.TicketVerifier
}

func NewRegisterHandler(users *services.UserService, verifier auth.TicketVerifier) *RegisterHandler {
	return &RegisterHandler{users: users, verifier: verifier}
}

// RegisterRouter registers the registration routes on the given router.
func RegisterRouter(r chi.Router, users *services.UserService, verifier auth.TicketVerifier) {
	handler := NewRegisterHandler(users, verifier)

	r.Route("/register", func(r chi.Router) {
		r.Post("/", handler.Local)
		r.Post("/google", handler.Google)
	})
}

// RegisterPayload is the local registration request body.
type RegisterPayload struct {
	Name     string `json:"name"`
	Password string `json:"password"`
	Email    string `json:"email"`
}

// GoogleRegisterPayload carries the third-party identity token.
type GoogleRegisterPayload struct {
	Token string `json:"token"`
}

// Local handles local registration. Validation failures answer 200 with an
// error body, a long-standing client contract; only the duplicate-email
// conflict uses 422. No credential is minted here: login is a separate step.
func (h *RegisterHandler) Local(w http.ResponseWriter, r *http.Request) {
	var payload RegisterPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusOK, "No body included in request")
		return
	}

	if message, ok := validateLocal(payload); !ok {
		writeError(w, http.StatusOK, message)
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(payload.Password), bcryptCost)
	if err != nil {
		writeError(w, http.StatusOK, "Failed to process the provided password")
		return
	}

	user, err := h.users.Create(r.Context(), types.User{
		Display:      payload.Name,
		Email:        payload.Email,
		PasswordHash: string(hash),
	})
	if err != nil {
		writeConflict(w, err, fallbackDuplicateEmail)
		return
	}

	writeJSON(w, http.StatusOK, user)
}

// Google handles third-party registration. The presented identity token is
// forwarded to the ticket verifier; the account is created without a
// password hash.
func (h *RegisterHandler) Google(w http.ResponseWriter, r *http.Request) {
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

	if ticket.Name == "" || ticket.Email == "" || ticket.Picture == "" {
		writeError(w, http.StatusOK, "Failed to extract data from Google Login Ticket")
		return
	}

	user, err := h.users.Create(r.Context(), types.User{
		Display: ticket.Name,
		Email:   ticket.Email,
		Avatar:  ticket.Picture,
		Google:  true,
	})
	if err != nil {
		writeConflict(w, err, fallbackDuplicateGoogle)
		return
	}

	writeJSON(w, http.StatusOK, user)
}

func validateLocal(payload RegisterPayload) (string, bool) {
	if payload.Name == "" {
		return "No name included in request", false
	}
	if payload.Password == "" {
		return "No password included in request", false
	}
	if payload.Email == "" {
		return "No email included in request", false
	}
	if utf8.RuneCountInString(payload.Name) > maxDisplayNameLen {
		return "Display name must be between 1 and 32 characters", false
	}
	return "", true
}

// writeConflict maps store write failures to the 422 conflict response,
// forwarding the database's validation message when one exists.
func writeConflict(w http.ResponseWriter, err error, fallback string) {
	var conflict *store.ConflictError
	if errors.As(err, &conflict) {
		writeError(w, http.StatusUnprocessableEntity, conflict.Message)
		return
	}
	if errors.Is(err, store.ErrDuplicateKey) {
		writeError(w, http.StatusUnprocessableEntity, fallback)
		return
	}

	log.Error().Err(err).Msg("user creation failed")
	writeError(w, http.StatusUnprocessableEntity, fallback)
}
