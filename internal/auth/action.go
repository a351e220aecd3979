package auth

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Action token purposes. A token minted for one purpose is rejected when
// presented for another.
const (
	PurposeVerifyAccount = "verify"
	PurposeResetPassword = "reset"
)

const (
	VerifyTokenTTL = 24 * time.Hour
	ResetTokenTTL  = time.Hour
)

// MintAction produces a single-purpose token used by the account
// verification and password-reset flows. It is signed with the same secret
// as session tokens but is never accepted by Verify.
func (c *Codec) MintAction(userID, purpose string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID:  userID,
		Purpose: purpose,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(c.secret)
}

// VerifyAction checks an action token and returns the embedded user id when
// the signature, expiry and purpose all match.
func (c *Codec) VerifyAction(tokenString, purpose string) (string, bool) {
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
	if claims.Purpose != purpose || strings.TrimSpace(claims.UserID) == "" {
		return "", false
	}
	return claims.UserID, true
}
