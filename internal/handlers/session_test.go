package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/pantry-pal/apiserver/internal/auth"
	"github.com/pantry-pal/apiserver/internal/store"
	"github.com/pantry-pal/apiserver/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeUserLoader struct {
	users map[string]types.User
	err   error
}

func (f *fakeUserLoader) GetByID(_ context.Context, id string) (types.User, error) {
	if f.err != nil {
		return types.User{}, f.err
	}
	user, ok := f.users[id]
	if !ok {
		return types.User{}, store.ErrNotFound
	}
	return user, nil
}

func sessionHandler(t *testing.T, opts SessionOptions) (http.Handler, *string) {
	t.Helper()

	var seenUserID string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if id, err := userIDFromContext(r.Context()); err == nil {
			seenUserID = id
		}
		w.WriteHeader(http.StatusOK)
	})
	return RequireSession(opts)(next), &seenUserID
}

func errorBody(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()

	var body ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	return body.Error
}

func TestRequireSession_NoCredential(t *testing.T) {
	t.Parallel()

	codec := auth.NewCodec([]byte("session-secret"), time.Hour)
	handler, _ := sessionHandler(t, SessionOptions{
		Codec:     codec,
		Transport: auth.HeaderTransport{},
		Users:     &fakeUserLoader{},
	})

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/recipes/", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, msgNotLoggedIn, errorBody(t, rec))
}

func TestRequireSession_InvalidToken(t *testing.T) {
	t.Parallel()

	codec := auth.NewCodec([]byte("session-secret"), time.Hour)
	handler, _ := sessionHandler(t, SessionOptions{
		Codec:     codec,
		Transport: auth.HeaderTransport{},
		Users:     &fakeUserLoader{},
	})

	foreign := auth.NewCodec([]byte("other-secret"), time.Hour)
	token, err := foreign.Mint("6543d3c4e1a1a5b3f0c1b2a3")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/recipes/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, msgInvalidToken, errorBody(t, rec))
	assert.Empty(t, rec.Header().Get("Authorization"), "no refreshed token on rejection")
}

func TestRequireSession_UnverifiedAccount(t *testing.T) {
	t.Parallel()

	codec := auth.NewCodec([]byte("session-secret"), time.Hour)
	users := &fakeUserLoader{users: map[string]types.User{
		"6543d3c4e1a1a5b3f0c1b2a3": {Display: "alice", Verified: false},
	}}
	handler, _ := sessionHandler(t, SessionOptions{
		Codec:     codec,
		Transport: auth.HeaderTransport{},
		Users:     users,
	})

	token, err := codec.Mint("6543d3c4e1a1a5b3f0c1b2a3")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/recipes/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, msgNotVerified, errorBody(t, rec))
}

func TestRequireSession_UnknownUser(t *testing.T) {
	t.Parallel()

	codec := auth.NewCodec([]byte("session-secret"), time.Hour)
	handler, _ := sessionHandler(t, SessionOptions{
		Codec:     codec,
		Transport: auth.HeaderTransport{},
		Users:     &fakeUserLoader{},
	})

	token, err := codec.Mint("6543d3c4e1a1a5b3f0c1b2a3")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/recipes/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, msgNotVerified, errorBody(t, rec))
}

func TestRequireSession_LookupFailureRejects(t *testing.T) {
	t.Parallel()

	codec := auth.NewCodec([]byte("session-secret"), time.Hour)
	handler, _ := sessionHandler(t, SessionOptions{
		Codec:     codec,
		Transport: auth.HeaderTransport{},
		Users:     &fakeUserLoader{err: errors.New("connection reset")},
	})

	token, err := codec.Mint("6543d3c4e1a1a5b3f0c1b2a3")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/recipes/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, msgNotVerified, errorBody(t, rec))
}

func TestRequireSession_VerifyPathSkipsGate(t *testing.T) {
	t.Parallel()

	codec := auth.NewCodec([]byte("session-secret"), time.Hour)
	users := &fakeUserLoader{users: map[string]types.User{
		"6543d3c4e1a1a5b3f0c1b2a3": {Display: "alice", Verified: false},
	}}
	handler, seen := sessionHandler(t, SessionOptions{
		Codec:     codec,
		Transport: auth.HeaderTransport{},
		Users:     users,
	})

	token, err := codec.Mint("6543d3c4e1a1a5b3f0c1b2a3")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/account/verify", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "6543d3c4e1a1a5b3f0c1b2a3", *seen)
}

func TestRequireSession_ExemptPaths(t *testing.T) {
	t.Parallel()

	codec := auth.NewCodec([]byte("session-secret"), time.Hour)
	handler, _ := sessionHandler(t, SessionOptions{
		Codec:          codec,
		Transport:      auth.CookieTransport{Name: "session"},
		Users:          &fakeUserLoader{},
		ExemptPrefixes: []string{"/app/register", "/app/login"},
		ExemptContains: []string{"/forgotPassword", "/resetPassword"},
	})

	for _, path := range []string{
		"/app/register/",
		"/app/register/google",
		"/app/login/",
		"/app/account/forgotPassword",
		"/app/account/resetPassword",
	} {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, path, nil))
		assert.Equal(t, http.StatusOK, rec.Code, path)
	}

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/app/recipes/", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireSession_ValidSession(t *testing.T) {
	t.Parallel()

	codec := auth.NewCodec([]byte("session-secret"), time.Hour)
	users := &fakeUserLoader{users: map[string]types.User{
		"6543d3c4e1a1a5b3f0c1b2a3": {Display: "alice", Verified: true},
	}}
	handler, seen := sessionHandler(t, SessionOptions{
		Codec:     codec,
		Transport: auth.HeaderTransport{},
		Users:     users,
	})

	token, err := codec.Mint("6543d3c4e1a1a5b3f0c1b2a3")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/recipes/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "6543d3c4e1a1a5b3f0c1b2a3", *seen)

	refreshed := rec.Header().Get("Authorization")
	require.NotEmpty(t, refreshed, "refreshed token attached to response")
	assert.Contains(t, refreshed, "Bearer ")
}

func TestRequireSession_CookieRefresh(t *testing.T) {
	t.Parallel()

	codec := auth.NewCodec([]byte("session-secret"), time.Hour)
	users := &fakeUserLoader{users: map[string]types.User{
		"6543d3c4e1a1a5b3f0c1b2a3": {Display: "alice", Verified: true},
	}}
	handler, _ := sessionHandler(t, SessionOptions{
		Codec:     codec,
		Transport: auth.CookieTransport{Name: "session"},
		Users:     users,
	})

	token, err := codec.Mint("6543d3c4e1a1a5b3f0c1b2a3")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/app/recipes/", nil)
	req.AddCookie(&http.Cookie{Name: "session", Value: token})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var refreshed *http.Cookie
	for _, cookie := range rec.Result().Cookies() {
		if cookie.Name == "session" {
			refreshed = cookie
		}
	}
	require.NotNil(t, refreshed, "refreshed cookie attached to response")
	assert.NotEmpty(t, refreshed.Value)
	assert.True(t, refreshed.HttpOnly)
}
