package auth

import (
	"context"
	"strings"

	"github.com/junaidrashid-git/swiftcart-api/models"
)

// Session is the authenticated identity attached to one request.
type Session struct {
	UserID        string
	DisplayName   string
	Email         string
	Phone         string
	EmailVerified bool
	Role          models.Role
}

func (s *Session) IsAdmin() bool {
	return s != nil && s.Role == models.RoleAdmin
}

type sessionKey struct{}

func WithSession(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, sessionKey{}, s)
}

// FromContext returns the request session, or nil for anonymous requests.
func FromContext(ctx context.Context) *Session {
	s, _ := ctx.Value(sessionKey{}).(*Session)
	return s
}

// RoleResolver derives a role from the static admin allow-list.
type RoleResolver struct {
	emails  map[string]struct{}
	mobiles map[string]struct{}
}

func NewRoleResolver(emails, mobiles []string) *RoleResolver {
	r := &RoleResolver{
		emails:  make(map[string]struct{}, len(emails)),
		mobiles: make(map[string]struct{}, len(mobiles)),
	}
	for _, e := range emails {
		r.emails[strings.ToLower(strings.TrimSpace(e))] = struct{}{}
	}
	for _, m := range mobiles {
		if m = NormalizeMobile(m); m != "" {
			r.mobiles[m] = struct{}{}
		}
	}
	return r
}

func (r *RoleResolver) Resolve(email, phone string) models.Role {
	if _, ok := r.emails[strings.ToLower(strings.TrimSpace(email))]; ok && email != "" {
		return models.RoleAdmin
	}
	if r.AdminMobile(phone) {
		return models.RoleAdmin
	}
	return models.RoleCustomer
}

// AdminMobile reports whether phone is on the admin allow-list. A nil resolver knows no admins.
func (r *RoleResolver) AdminMobile(phone string) bool {
	if r == nil {
		return false
	}
	m := NormalizeMobile(phone)
	if m == "" {
		return false
	}
	_, ok := r.mobiles[m]
	return ok
}

// NormalizeMobile keeps the last ten digits, so "+91 98765-43210" becomes "9876543210".
func NormalizeMobile(phone string) string {
	digits := make([]byte, 0, len(phone))
	for i := 0; i < len(phone); i++ {
		if phone[i] >= '0' && phone[i] <= '9' {
			digits = append(digits, phone[i])
		}
	}
	if len(digits) > 10 {
		digits = digits[len(digits)-10:]
	}
	return string(digits)
}
