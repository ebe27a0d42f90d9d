package auth

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"go.uber.org/zap"
)

const minPasswordLength = 6

var (
	mobilePattern = regexp.MustCompile(`^[6-9]\d{9}$`)
	emailPattern  = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
)

type SignupInput struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	Mobile          string `json:"mobile"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
}

// ValidationError carries a message that is safe to show to the user.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// ValidateSignup checks the fields this service owns before anything reaches the provider.
func ValidateSignup(in SignupInput) error {
	switch {
	case strings.TrimSpace(in.Name) == "":
		return &ValidationError{Message: "Name is required"}
	case !mobilePattern.MatchString(in.Mobile):
		return &ValidationError{Message: "Invalid Mobile Number"}
	case !emailPattern.MatchString(in.Email):
		return &ValidationError{Message: "Invalid Email Address"}
	case len(in.Password) < minPasswordLength:
		return &ValidationError{Message: "Password must be at least 6 characters"}
	case in.Password != in.ConfirmPassword:
		return &ValidationError{Message: "Passwords do not match"}
	}
	return nil
}

// UserMessage maps auth failures onto the small set of texts shown to users.
func UserMessage(err error) string {
	var ve *ValidationError
	switch {
	case errors.As(err, &ve):
		return ve.Message
	case errors.Is(err, ErrEmailExists):
		return "Email already registered. Please log in."
	case errors.Is(err, ErrPhoneExists):
		return "Mobile number already registered."
	case errors.Is(err, ErrEmailNotVerified):
		return "Please verify your email before logging in."
	case errors.Is(err, ErrInvalidCredentials), errors.Is(err, ErrUnauthenticated):
		return "Invalid email or password."
	default:
		return "Something went wrong. Please try again."
	}
}

type Signup struct {
	provider IdentityProvider
	roles    *RoleResolver
	log      *zap.Logger
}

func NewSignup(provider IdentityProvider, roles *RoleResolver, log *zap.Logger) *Signup {
	return &Signup{provider: provider, roles: roles, log: log}
}

// Register validates in and creates the account with the identity provider.
// Nobody proves ownership of the mobile number here, so an allow-listed admin
// mobile is refused as already registered; those accounts are provisioned with
// the provider directly.
func (s *Signup) Register(ctx context.Context, in SignupInput) (string, error) {
	if err := ValidateSignup(in); err != nil {
		return "", err
	}
	if s.roles.AdminMobile(in.Mobile) {
		s.log.Warn("signup with admin mobile refused", zap.String("email", in.Email))
		return "", ErrPhoneExists
	}
	uid, err := s.provider.CreateUser(ctx, in)
	if err != nil {
		s.log.Warn("identity provider rejected signup", zap.String("email", in.Email), zap.Error(err))
		return "", err
	}
	return uid, nil
}
