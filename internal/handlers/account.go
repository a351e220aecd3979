package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/pantry-pal/apiserver/internal/auth"
	"github.com/pantry-pal/apiserver/internal/mail"
	"github.com/pantry-pal/apiserver/internal/services"
	"github.com/pantry-pal/apiserver/internal/store"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
)

// Mailer enqueues account emails for out-of-process delivery.
// *mail.Dispatcher satisfies it.
type Mailer interface {
	Send(ctx context.Context, job mail.Job) error
}

// AccountHandler provides the verification and password-reset endpoints.
type AccountHandler struct {
	users  *services.UserService
	codec  *auth.Codec
	mailer Mailer
}

func NewAccountHandler(users *services.UserService, codec *auth.Codec, mailer Mailer) *AccountHandler {
	return &AccountHandler{users: users, codec: codec, mailer: mailer}
}

// AccountRouter registers the account routes on the given router. Starting
// verification requires a credential but is reachable before the account is
// verified (the middleware skips its gate on /verify paths); the remaining
// flows authenticate through the action token in the body.
func AccountRouter(r chi.Router, users *services.UserService, codec *auth.Codec, mailer Mailer, sessionMiddleware func(http.Handler) http.Handler) {
	handler := NewAccountHandler(users, codec, mailer)

	r.Route("/account", func(r chi.Router) {
		if sessionMiddleware != nil {
			r.With(sessionMiddleware).Post("/verify", handler.StartVerification)
		} else {
			r.Post("/verify", handler.StartVerification)
		}
		r.Post("/verify/confirm", handler.ConfirmVerification)
		r.Post("/forgotPassword", handler.ForgotPassword)
		r.Post("/resetPassword", handler.ResetPassword)
	})
}

// StartVerification mints a verification token for the logged-in user and
// enqueues the verification email.
func (h *AccountHandler) StartVerification(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, msgNotLoggedIn)
		return
	}

	user, err := h.users.GetByID(r.Context(), userID)
	if err != nil {
		writeError(w, http.StatusUnauthorized, msgNotLoggedIn)
		return
	}
	if user.Verified {
		writeJSON(w, http.StatusOK, map[string]string{"message": "Account is already verified"})
		return
	}

	token, err := h.codec.MintAction(userID, auth.PurposeVerifyAccount, auth.VerifyTokenTTL)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to start verification")
		return
	}

	h.enqueue(r.Context(), mail.Job{
		To:      user.Email,
		Kind:    mail.KindVerifyAccount,
		Token:   token,
		Display: user.Display,
	})

	writeJSON(w, http.StatusOK, map[string]string{"message": "A verification email is on its way"})
}

// ConfirmVerificationPayload carries the emailed verification token back.
type ConfirmVerificationPayload struct {
	Token string `json:"token"`
}

// ConfirmVerification consumes a verification token and marks the account
// verified.
func (h *AccountHandler) ConfirmVerification(w http.ResponseWriter, r *http.Request) {
	var payload ConfirmVerificationPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil || payload.Token == "" {
		writeError(w, http.StatusOK, "No verification token included in request")
		return
	}

	userID, ok := h.codec.VerifyAction(payload.Token, auth.PurposeVerifyAccount)
	if !ok {
		writeError(w, http.StatusUnauthorized, msgInvalidToken)
		return
	}

	if err := h.users.SetVerified(r.Context(), userID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusUnauthorized, msgInvalidToken)
			return
		}
		log.Error().Err(err).Str("userId", userID).Msg("failed to mark account verified")
		writeError(w, http.StatusInternalServerError, "Failed to verify the account")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Account verified"})
}

// ForgotPasswordPayload identifies the account to reset.
type ForgotPasswordPayload struct {
	Email string `json:"email"`
}

// ForgotPassword enqueues a password-reset email. The response never
// reveals whether the address has an account.
func (h *AccountHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var payload ForgotPasswordPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil || payload.Email == "" {
		writeError(w, http.StatusOK, "No email included in request")
		return
	}

	response := map[string]string{"message": "If that email has an account, a reset link is on its way"}

	user, err := h.users.GetByEmail(r.Context(), payload.Email)
	if err != nil || user.Google {
		// Google-only accounts have no password to reset.
		writeJSON(w, http.StatusOK, response)
		return
	}

	token, err := h.codec.MintAction(user.ID.Hex(), auth.PurposeResetPassword, auth.ResetTokenTTL)
	if err != nil {
		writeJSON(w, http.StatusOK, response)
		return
	}

	h.enqueue(r.Context(), mail.Job{
		To:      user.Email,
		Kind:    mail.KindResetPassword,
		Token:   token,
		Display: user.Display,
	})

	writeJSON(w, http.StatusOK, response)
}

// ResetPasswordPayload carries the emailed reset token and the new password.
type ResetPasswordPayload struct {
	Token    string `json:"token"`
	Password string `json:"password"`
}

// ResetPassword consumes a reset token and replaces the account password.
func (h *AccountHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var payload ResetPasswordPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil || payload.Token == "" {
		writeError(w, http.StatusOK, "No reset token included in request")
		return
	}
	if payload.Password == "" {
		writeError(w, http.StatusOK, "No password included in request")
		return
	}

	userID, ok := h.codec.VerifyAction(payload.Token, auth.PurposeResetPassword)
	if !ok {
		writeError(w, http.StatusUnauthorized, msgInvalidToken)
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(payload.Password), bcryptCost)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to process the provided password")
		return
	}

	if err := h.users.SetPassword(r.Context(), userID, string(hash)); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusUnauthorized, msgInvalidToken)
			return
		}
		log.Error().Err(err).Str("userId", userID).Msg("failed to reset password")
		writeError(w, http.StatusInternalServerError, "Failed to reset the password")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Password updated"})
}

func (h *AccountHandler) enqueue(ctx context.Context, job mail.Job) {
	if h.mailer == nil {
		log.Warn().Str("kind", job.Kind).Str("to", job.To).Msg("mail dispatch disabled, dropping job")
		return
	}
	if err := h.mailer.Send(ctx, job); err != nil {
		log.Error().Err(err).Str("kind", job.Kind).Msg("failed to enqueue mail job")
	}
}
