package auth

import (
	"context"
	"fmt"
	"strings"

	"github.com/junaidrashid-git/swiftcart-api/models"
)

// ProfileUpdate changes only the fields that are set. Email and mobile belong to the
// identity provider because the admin allow-list is keyed on them.
type ProfileUpdate struct {
	Name *string `json:"name"`
}

// UpdateProfile edits the stored profile of the session user.
func (b *SessionBridge) UpdateProfile(ctx context.Context, s *Session, in ProfileUpdate) (*models.User, error) {
	if s == nil {
		return nil, ErrUnauthenticated
	}
	if in.Name != nil && strings.TrimSpace(*in.Name) == "" {
		return nil, &ValidationError{Message: "Name is required"}
	}

	var updated models.User
	_, err := b.users.Mutate(ctx, func(users []models.User) ([]models.User, error) {
		idx := -1
		for i := range users {
			if users[i].ID == s.UserID {
				idx = i
				break
			}
		}
		if idx < 0 {
			users = append(users, models.User{ID: s.UserID, Name: s.DisplayName, Email: s.Email, Mobile: s.Phone})
			idx = len(users) - 1
		}
		u := &users[idx]
		if in.Name != nil {
			u.Name = strings.TrimSpace(*in.Name)
		}
		u.Role = b.roles.Resolve(u.Email, u.Mobile)
		updated = *u
		return users, nil
	})
	if err != nil {
		return nil, fmt.Errorf("update user %s: %w", s.UserID, err)
	}
	return &updated, nil
}

// Users lists every stored profile with roles derived from the allow-list.
func (b *SessionBridge) Users(ctx context.Context) ([]models.User, error) {
	users, err := b.users.Load(ctx)
	if err != nil {
		return nil, err
	}
	for i := range users {
		users[i].Role = b.roles.Resolve(users[i].Email, users[i].Mobile)
	}
	return users, nil
}
