package auth

import (
	"context"
	"fmt"

	"github.com/junaidrashid-git/swiftcart-api/models"
	"github.com/junaidrashid-git/swiftcart-api/persistence"
	"go.uber.org/zap"
)

type SessionEventKind int

const (
	SessionEstablished SessionEventKind = iota + 1
	SessionCleared
)

// SessionEvent is the identity provider's "session changed" notification.
type SessionEvent struct {
	Kind     SessionEventKind
	Identity *Identity // nil for SessionCleared
}

// SessionBridge is the single handler for session notifications. It keeps the users
// collection in step and issues the application token; it holds no session state.
type SessionBridge struct {
	users  *persistence.Collection[models.User]
	roles  *RoleResolver
	tokens *TokenIssuer
	log    *zap.Logger
}

func NewSessionBridge(users *persistence.Collection[models.User], roles *RoleResolver, tokens *TokenIssuer, log *zap.Logger) *SessionBridge {
	return &SessionBridge{users: users, roles: roles, tokens: tokens, log: log}
}

// Handle returns the established session and its token, or nils for SessionCleared.
func (b *SessionBridge) Handle(ctx context.Context, ev SessionEvent) (*Session, string, error) {
	switch ev.Kind {
	case SessionCleared:
		b.log.Debug("session cleared")
		return nil, "", nil
	case SessionEstablished:
	default:
		return nil, "", fmt.Errorf("unknown session event %d", ev.Kind)
	}

	id := ev.Identity
	if id == nil || id.UserID == "" {
		return nil, "", ErrUnauthenticated
	}
	if id.Email != "" && !id.EmailVerified {
		return nil, "", ErrEmailNotVerified
	}

	s := &Session{
		UserID:        id.UserID,
		DisplayName:   id.DisplayName,
		Email:         id.Email,
		Phone:         NormalizeMobile(id.Phone),
		EmailVerified: id.EmailVerified,
		Role:          b.roles.Resolve(id.Email, id.Phone),
	}
	if err := b.upsertUser(ctx, s); err != nil {
		return nil, "", err
	}

	token, err := b.tokens.Issue(s)
	if err != nil {
		return nil, "", fmt.Errorf("issue token: %w", err)
	}
	b.log.Info("session established", zap.String("user_id", s.UserID), zap.String("role", string(s.Role)))
	return s, token, nil
}

// User returns the stored profile with its role derived from the allow-list.
func (b *SessionBridge) User(ctx context.Context, s *Session) (*models.User, error) {
	users, err := b.users.Load(ctx)
	if err != nil {
		return nil, err
	}
	for _, u := range users {
		if u.ID == s.UserID {
			u.Role = b.roles.Resolve(u.Email, u.Mobile)
			return &u, nil
		}
	}
	return &models.User{ID: s.UserID, Name: s.DisplayName, Email: s.Email, Mobile: s.Phone, Role: s.Role}, nil
}

func (b *SessionBridge) upsertUser(ctx context.Context, s *Session) error {
	_, err := b.users.Mutate(ctx, func(users []models.User) ([]models.User, error) {
		rec := models.User{ID: s.UserID, Name: s.DisplayName, Email: s.Email, Mobile: s.Phone, Role: s.Role}
		for i, u := range users {
			if u.ID != s.UserID {
				continue
			}
			if rec.Name == "" {
				rec.Name = u.Name
			}
			if rec.Mobile == "" {
				rec.Mobile = u.Mobile
			}
			if u == rec {
				return nil, persistence.ErrSkipWrite
			}
			users[i] = rec
			return users, nil
		}
		return append(users, rec), nil
	})
	if err != nil {
		return fmt.Errorf("save user %s: %w", s.UserID, err)
	}
	return nil
}
