package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/pantry-pal/apiserver/internal/auth"
	"github.com/pantry-pal/apiserver/internal/services"
	"github.com/pantry-pal/apiserver/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"
)

func loginRouter(t *testing.T, repo *fakeUserRepo, verifier auth.TicketVerifier) (http.Handler, *auth.Codec) {
	t.Helper()

	codec := auth.NewCodec([]byte("login-secret"), time.Hour)
	cookie := auth.CookieTransport{Name: "token"}
	r := chi.NewRouter()
	LoginRouter(r, services.NewUserService(repo), codec, verifier, cookie)
	return r, codec
}

func localUser(t *testing.T, password string) types.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	require.NoError(t, err)
	return types.User{
		ID:           primitive.NewObjectID(),
		Display:      "alice",
		Email:        "alice@example.com",
		PasswordHash: string(hash),
		Verified:     true,
	}
}

func sessionCookie(rec *httptest.ResponseRecorder) *http.Cookie {
	for _, cookie := range rec.Result().Cookies() {
		if cookie.Name == "token" {
			return cookie
		}
	}
	return nil
}

func TestLoginLocal_Success(t *testing.T) {
	t.Parallel()

	user := localUser(t, "hunter22")
	repo := &fakeUserRepo{byEmail: map[string]types.User{user.Email: user}}
	router, codec := loginRouter(t, repo, nil)

	rec := postJSON(t, router, "/login/", `{"email":"alice@example.com","password":"hunter22"}`)

	require.Equal(t, http.StatusOK, rec.Code)

	cookie := sessionCookie(rec)
	require.NotNil(t, cookie, "session cookie not set")
	assert.True(t, cookie.HttpOnly)

	var body AuthResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	require.NotEmpty(t, body.Token)

	userID, ok := codec.Verify(body.Token)
	require.True(t, ok, "returned token must verify")
	assert.Equal(t, user.ID.Hex(), userID)
	assert.Equal(t, body.Token, cookie.Value, "body and cookie carry the same credential")
	assert.Equal(t, user.Email, body.User.Email)
}

func TestLoginLocal_WrongPassword(t *testing.T) {
	t.Parallel()

	user := localUser(t, "hunter22")
	repo := &fakeUserRepo{byEmail: map[string]types.User{user.Email: user}}
	router, _ := loginRouter(t, repo, nil)

	rec := postJSON(t, router, "/login/", `{"email":"alice@example.com","password":"wrong"}`)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Invalid email or password", errorBody(t, rec))
	assert.Nil(t, sessionCookie(rec))
}

func TestLoginLocal_UnknownEmail(t *testing.T) {
	t.Parallel()

	router, _ := loginRouter(t, &fakeUserRepo{}, nil)

	rec := postJSON(t, router, "/login/", `{"email":"nobody@example.com","password":"hunter22"}`)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Invalid email or password", errorBody(t, rec))
}

func TestLoginLocal_GoogleOnlyAccount(t *testing.T) {
	t.Parallel()

	user := types.User{
		ID:      primitive.NewObjectID(),
		Display: "alice",
		Email:   "alice@example.com",
		Google:  true,
	}
	repo := &fakeUserRepo{byEmail: map[string]types.User{user.Email: user}}
	router, _ := loginRouter(t, repo, nil)

	rec := postJSON(t, router, "/login/", `{"email":"alice@example.com","password":"anything"}`)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Invalid email or password", errorBody(t, rec))
	assert.Nil(t, sessionCookie(rec))
}

func TestLoginLocal_MissingCredentials(t *testing.T) {
	t.Parallel()

	router, _ := loginRouter(t, &fakeUserRepo{}, nil)

	rec := postJSON(t, router, "/login/", `{"email":"alice@example.com"}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "An email and password are required to log in", errorBody(t, rec))
}

func TestLoginGoogle_Success(t *testing.T) {
	t.Parallel()

	user := types.User{
		ID:       primitive.NewObjectID(),
		Display:  "alice",
		Email:    "alice@example.com",
		Google:   true,
		Verified: true,
	}
	repo := &fakeUserRepo{byEmail: map[string]types.User{user.Email: user}}
	verifier := &fakeTicketVerifier{ticket: auth.Ticket{
		Name:    "alice",
		Email:   "alice@example.com",
		Picture: "https://example.com/alice.png",
	}}
	router, codec := loginRouter(t, repo, verifier)

	rec := postJSON(t, router, "/login/google", `{"token":"tkt"}`)

	require.Equal(t, http.StatusOK, rec.Code)

	var body AuthResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	userID, ok := codec.Verify(body.Token)
	require.True(t, ok)
	assert.Equal(t, user.ID.Hex(), userID)
}

func TestLoginGoogle_NonGoogleAccount(t *testing.T) {
	t.Parallel()

	user := localUser(t, "hunter22")
	repo := &fakeUserRepo{byEmail: map[string]types.User{user.Email: user}}
	verifier := &fakeTicketVerifier{ticket: auth.Ticket{
		Name:    "alice",
		Email:   "alice@example.com",
		Picture: "https://example.com/alice.png",
	}}
	router, _ := loginRouter(t, repo, verifier)

	rec := postJSON(t, router, "/login/google", `{"token":"tkt"}`)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "No account is registered with this Google identity", errorBody(t, rec))
	assert.Nil(t, sessionCookie(rec))
}

func TestLoginGoogle_InvalidTicket(t *testing.T) {
	t.Parallel()

	verifier := &fakeTicketVerifier{err: assert.AnError}
	router, _ := loginRouter(t, &fakeUserRepo{}, verifier)

	rec := postJSON(t, router, "/login/google", `{"token":"bogus"}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Failed to validate authenticity of OAuth token", errorBody(t, rec))
}
