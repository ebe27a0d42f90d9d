package auth

import (
	"context"
	"fmt"

	firebase "firebase.google.com/go"
	fbauth "firebase.google.com/go/auth"
	"google.golang.org/api/option"
)

// FirebaseProvider delegates credentials and sessions to Firebase Authentication.
type FirebaseProvider struct {
	client *fbauth.Client
}

func NewFirebaseProvider(ctx context.Context, projectID, credentialsJSON string) (*FirebaseProvider, error) {
	opt := option.WithCredentialsJSON([]byte(credentialsJSON))
	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: projectID}, opt)
	if err != nil {
		return nil, fmt.Errorf("init firebase app: %w", err)
	}
	client, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("init firebase auth: %w", err)
	}
	return &FirebaseProvider{client: client}, nil
}

func (p *FirebaseProvider) VerifyIDToken(ctx context.Context, idToken string) (*Identity, error) {
	token, err := p.client.VerifyIDTokenAndCheckRevoked(ctx, idToken)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCredentials, err)
	}

	id := &Identity{UserID: token.UID}
	id.Email, _ = token.Claims["email"].(string)
	id.DisplayName, _ = token.Claims["name"].(string)
	id.Phone, _ = token.Claims["phone_number"].(string)
	id.EmailVerified, _ = token.Claims["email_verified"].(bool)
	return id, nil
}

func (p *FirebaseProvider) CreateUser(ctx context.Context, in SignupInput) (string, error) {
	params := (&fbauth.UserToCreate{}).
		Email(in.Email).
		Password(in.Password).
		DisplayName(in.Name).
		PhoneNumber("+91" + NormalizeMobile(in.Mobile))

	rec, err := p.client.CreateUser(ctx, params)
	switch {
	case fbauth.IsEmailAlreadyExists(err):
		return "", fmt.Errorf("%w: %v", ErrEmailExists, err)
	case fbauth.IsPhoneNumberAlreadyExists(err):
		return "", fmt.Errorf("%w: %v", ErrPhoneExists, err)
	case err != nil:
		return "", err
	}
	return rec.UID, nil
}
