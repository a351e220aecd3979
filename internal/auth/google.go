package auth

import (
	"context"
	"errors"

	"google.golang.org/api/idtoken"
)

// Ticket is the claims payload extracted from a verified Google ID token.
type Ticket struct {
	Name    string
	Email   string
	Picture string
}

// TicketVerifier validates a third-party identity token and returns its
// claims. It fails on an invalid or expired token.
type TicketVerifier interface {
	VerifyTicket(ctx context.Context, token string) (Ticket, error)
}

// GoogleVerifier validates Google ID tokens against the configured
// OAuth client id.
type GoogleVerifier struct {
	audience string
}

func NewGoogleVerifier(clientID string) *GoogleVerifier {
	return &GoogleVerifier{audience: clientID}
}

func (g *GoogleVerifier) VerifyTicket(ctx context.Context, token string) (Ticket, error) {
	payload, err := idtoken.Validate(ctx, token, g.audience)
	if err != nil {
		return Ticket{}, err
	}
	if payload == nil {
		return Ticket{}, errors.New("empty token payload")
	}
	return Ticket{
		Name:    claimString(payload.Claims, "name"),
		Email:   claimString(payload.Claims, "email"),
		Picture: claimString(payload.Claims, "picture"),
	}, nil
}

func claimString(claims map[string]any, key string) string {
	value, _ := claims[key].(string)
	return value
}
