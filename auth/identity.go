package auth

import (
	"context"
	"errors"
)

var (
	ErrUnauthenticated     = errors.New("auth: unauthenticated")
	ErrEmailNotVerified    = errors.New("auth: email not verified")
	ErrEmailExists         = errors.New("auth: email already registered")
	ErrPhoneExists         = errors.New("auth: phone already registered")
	ErrInvalidCredentials  = errors.New("auth: invalid credentials")
	ErrProviderUnavailable = errors.New("auth: identity provider not configured")
)

// Identity is what the hosted identity provider vouches for.
type Identity struct {
	UserID        string
	DisplayName   string
	Email         string
	Phone         string
	EmailVerified bool
}

type IdentityProvider interface {
	VerifyIDToken(ctx context.Context, idToken string) (*Identity, error)
	CreateUser(ctx context.Context, in SignupInput) (string, error)
}

// DisabledProvider rejects every call. Used when no provider credentials are configured.
type DisabledProvider struct{}

func (DisabledProvider) VerifyIDToken(context.Context, string) (*Identity, error) {
	return nil, ErrProviderUnavailable
}

func (DisabledProvider) CreateUser(context.Context, SignupInput) (string, error) {
	return "", ErrProviderUnavailable
}
