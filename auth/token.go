package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims carry identity only. The role is derived again on every request.
type Claims struct {
	Name          string `json:"name,omitempty"`
	Email         string `json:"email,omitempty"`
	Phone         string `json:"phone,omitempty"`
	EmailVerified bool   `json:"email_verified"`
	jwt.RegisteredClaims
}

type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenIssuer(secret string, ttl time.Duration) *TokenIssuer {
	return &TokenIssuer{secret: []byte(secret), ttl: ttl, now: time.Now}
}

func (t *TokenIssuer) Issue(s *Session) (string, error) {
	now := t.now()
	claims := Claims{
		Name:          s.DisplayName,
		Email:         s.Email,
		Phone:         s.Phone,
		EmailVerified: s.EmailVerified,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   s.UserID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
}

func (t *TokenIssuer) Parse(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(*jwt.Token) (interface{}, error) {
		return t.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(t.now))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnauthenticated, err)
	}
	if !token.Valid || claims.Subject == "" {
		return nil, fmt.Errorf("%w: %v", ErrUnauthenticated, errors.New("invalid token claims"))
	}
	return claims, nil
}

// Session builds the request session from verified claims, resolving the role.
func (c *Claims) Session(roles *RoleResolver) *Session {
	return &Session{
		UserID:        c.Subject,
		DisplayName:   c.Name,
		Email:         c.Email,
		Phone:         c.Phone,
		EmailVerified: c.EmailVerified,
		Role:          roles.Resolve(c.Email, c.Phone),
	}
}
