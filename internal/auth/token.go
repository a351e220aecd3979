package auth

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const DefaultTokenTTL = time.Hour

// Claims is the payload embedded in every token the codec mints. Session
// tokens carry no purpose; action tokens (account verification, password
// reset) carry the purpose they were minted for.
type Claims struct {
	UserID  string `json:"userId"`
	Purpose string `json:"purpose,omitempty"`
	jwt.RegisteredClaims
}

// Codec mints and validates the signed session tokens. The signing secret
// and TTL are fixed at construction and never read from ambient state.
type Codec struct {
	secret []byte
	ttl    time.Duration
}

// NewCodec constructs a Codec with the given signing secret and token TTL.
// A non-positive TTL falls back to DefaultTokenTTL.
func NewCodec(secret []byte, ttl time.Duration) *Codec {
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &Codec{secret: secret, ttl: ttl}
}

// TTL returns the lifetime applied to minted tokens.
func (c *Codec) TTL() time.Duration {
	return c.ttl
}

// Mint produces a signed token embedding the user id, expiring TTL from now.
func (c *Codec) Mint(userID string) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(c.secret)
}

// Verify checks the signature and expiry of a token and returns the embedded
// user id. Malformed input, a bad signature and an expired token all report
// the same invalid result.
func (c *Codec) Verify(tokenString string) (string, bool) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid signing method")
		}
		return c.secret, nil
	})
	if err != nil || !token.Valid {
		return "", false
	}
	// Action tokens are never valid sessions.
	if claims.Purpose != "" {
		return "", false
	}
	if strings.TrimSpace(claims.UserID) == "" {
		return "", false
	}
	return claims.UserID, true
}

// Refresh re-validates the token and, on success, attaches a replacement
// with a full TTL to the outgoing response through the given transport.
// It returns false and performs no mutation when the token is invalid.
// Refresh deliberately does not return the claims; callers that need the
// identity call Verify on the original token.
func (c *Codec) Refresh(tokenString string, w http.ResponseWriter, t Transport) bool {
	userID, ok := c.Verify(tokenString)
	if !ok {
		return false
	}
	fresh, err := c.Mint(userID)
	if err != nil {
		return false
	}
	t.Attach(w, fresh, c.ttl)
	return true
}
