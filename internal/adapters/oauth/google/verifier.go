package google

import (
	"context"
	"errors"

	"google.golang.org/api/idtoken"

	"github.com/vncsmyrnk/questionpoll/internal/core/ports"
)

type GoogleVerifier struct {
	validate func(ctx context.Context, token, audience string) (*idtoken.Payload, error)
}

func NewVerifier() ports.TokenVerifier {
	return &GoogleVerifier{validate: idtoken.Validate}
}

func (v *GoogleVerifier) Verify(ctx context.Context, token string, clientID string) (*ports.TokenPayload, error) {
	payload, err := v.validate(ctx, token, clientID)
	if err != nil {
		return nil, err
	}
	return payloadFromClaims(payload.Claims)
}

func payloadFromClaims(claims map[string]interface{}) (*ports.TokenPayload, error) {
	email, ok := claims["email"].(string)
	if !ok || email == "" {
		return nil, errors.New("email not found in claims")
	}
	if verified, ok := claims["email_verified"].(bool); ok && !verified {
		return nil, errors.New("email is not verified")
	}
	// name is absent when the profile scope wasn't granted
	name, _ := claims["name"].(string)
	return &ports.TokenPayload{Email: email, Name: name}, nil
}
