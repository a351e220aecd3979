package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestMintAndVerify_Roundtrip(t *testing.T) {
	t.Parallel()

	codec := NewCodec([]byte("super-secret"), time.Hour)

	token, err := codec.Mint("user-123")
	if err != nil {
		t.Fatalf("Mint error: %v", err)
	}

	userID, ok := codec.Verify(token)
	if !ok {
		t.Fatalf("Verify reported invalid for a freshly minted token")
	}
	if userID != "user-123" {
		t.Fatalf("userID mismatch: got %q want %q", userID, "user-123")
	}
}

func TestVerify_Expired(t *testing.T) {
	t.Parallel()

	codec := NewCodec([]byte("secret"), time.Hour)
	expired := &Codec{secret: []byte("secret"), ttl: -time.Second}

	token, err := expired.Mint("u1")
	if err != nil {
		t.Fatalf("Mint error: %v", err)
	}

	if _, ok := codec.Verify(token); ok {
		t.Fatalf("expected invalid result for expired token")
	}
}

func TestVerify_WrongSecret(t *testing.T) {
	t.Parallel()

	right := NewCodec([]byte("right-secret"), time.Hour)
	wrong := NewCodec([]byte("wrong-secret"), time.Hour)

	token, err := right.Mint("u2")
	if err != nil {
		t.Fatalf("Mint error: %v", err)
	}

	if _, ok := wrong.Verify(token); ok {
		t.Fatalf("expected invalid result for wrong signature")
	}
}

func TestVerify_Malformed(t *testing.T) {
	t.Parallel()

	codec := NewCodec([]byte("k"), time.Hour)
	if _, ok := codec.Verify("not.a.jwt"); ok {
		t.Fatalf("expected invalid result for malformed token")
	}
}

func TestRefresh_AttachesHeaderToken(t *testing.T) {
	t.Parallel()

	codec := NewCodec([]byte("secret"), time.Hour)
	token, err := codec.Mint("u3")
	if err != nil {
		t.Fatalf("Mint error: %v", err)
	}

	rec := httptest.NewRecorder()
	if !codec.Refresh(token, rec, HeaderTransport{}) {
		t.Fatalf("Refresh reported failure for a valid token")
	}

	replacement, ok := HeaderTransport{}.Extract(newRequestWithHeader(rec.Header().Get("Authorization")))
	if !ok {
		t.Fatalf("no replacement token attached to response header")
	}
	userID, ok := codec.Verify(replacement)
	if !ok || userID != "u3" {
		t.Fatalf("replacement token invalid: ok=%v userID=%q", ok, userID)
	}
}

func TestRefresh_AttachesCookieToken(t *testing.T) {
	t.Parallel()

	codec := NewCodec([]byte("secret"), time.Hour)
	transport := CookieTransport{Name: "token"}

	token, err := codec.Mint("u4")
	if err != nil {
		t.Fatalf("Mint error: %v", err)
	}

	rec := httptest.NewRecorder()
	if !codec.Refresh(token, rec, transport) {
		t.Fatalf("Refresh reported failure for a valid token")
	}

	cookies := rec.Result().Cookies()
	if len(cookies) != 1 || cookies[0].Name != "token" {
		t.Fatalf("expected a single %q cookie, got %v", "token", cookies)
	}
	userID, ok := codec.Verify(cookies[0].Value)
	if !ok || userID != "u4" {
		t.Fatalf("replacement cookie token invalid: ok=%v userID=%q", ok, userID)
	}
}

func TestRefresh_InvalidToken(t *testing.T) {
	t.Parallel()

	codec := NewCodec([]byte("secret"), time.Hour)
	expired := &Codec{secret: []byte("secret"), ttl: -time.Second}

	token, err := expired.Mint("u5")
	if err != nil {
		t.Fatalf("Mint error: %v", err)
	}

	rec := httptest.NewRecorder()
	if codec.Refresh(token, rec, HeaderTransport{}) {
		t.Fatalf("Refresh accepted an expired token")
	}
	if rec.Header().Get("Authorization") != "" {
		t.Fatalf("Refresh mutated the response on failure")
	}
}

func TestRefresh_ExtendsTTL(t *testing.T) {
	t.Parallel()

	ttl := time.Hour
	codec := NewCodec([]byte("secret"), ttl)
	token, err := codec.Mint("u6")
	if err != nil {
		t.Fatalf("Mint error: %v", err)
	}

	rec := httptest.NewRecorder()
	before := time.Now()
	if !codec.Refresh(token, rec, HeaderTransport{}) {
		t.Fatalf("Refresh reported failure for a valid token")
	}

	replacement, _ := HeaderTransport{}.Extract(newRequestWithHeader(rec.Header().Get("Authorization")))
	claims := parseClaims(t, codec, replacement)

	// The replacement must not expire earlier than a freshly minted token
	// would, modulo clock movement during the call.
	if claims.ExpiresAt.Time.Before(before.Add(ttl).Add(-time.Second)) {
		t.Fatalf("replacement token TTL shorter than a fresh mint: %v", claims.ExpiresAt.Time)
	}
}

func TestActionToken_PurposeMismatch(t *testing.T) {
	t.Parallel()

	codec := NewCodec([]byte("secret"), time.Hour)

	token, err := codec.MintAction("u7", PurposeVerifyAccount, VerifyTokenTTL)
	if err != nil {
		t.Fatalf("MintAction error: %v", err)
	}

	if _, ok := codec.VerifyAction(token, PurposeResetPassword); ok {
		t.Fatalf("verify-purpose token accepted for password reset")
	}
	userID, ok := codec.VerifyAction(token, PurposeVerifyAccount)
	if !ok || userID != "u7" {
		t.Fatalf("action token rejected for its own purpose: ok=%v userID=%q", ok, userID)
	}
}

func TestActionToken_NotASession(t *testing.T) {
	t.Parallel()

	codec := NewCodec([]byte("secret"), time.Hour)
	token, err := codec.MintAction("u9", PurposeVerifyAccount, VerifyTokenTTL)
	if err != nil {
		t.Fatalf("MintAction error: %v", err)
	}

	if _, ok := codec.Verify(token); ok {
		t.Fatalf("action token accepted as a session token")
	}
}

func TestActionToken_Expired(t *testing.T) {
	t.Parallel()

	codec := NewCodec([]byte("secret"), time.Hour)
	token, err := codec.MintAction("u8", PurposeResetPassword, -time.Second)
	if err != nil {
		t.Fatalf("MintAction error: %v", err)
	}

	if _, ok := codec.VerifyAction(token, PurposeResetPassword); ok {
		t.Fatalf("expired action token accepted")
	}
}

func newRequestWithHeader(authorization string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	return req
}

func parseClaims(t *testing.T, codec *Codec, tokenString string) *Claims {
	t.Helper()

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		return codec.secret, nil
	})
	if err != nil || !token.Valid {
		t.Fatalf("failed to parse claims: %v", err)
	}
	return claims
}
