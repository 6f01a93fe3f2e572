package auth

import (
	"context"
	"fmt"
	"strconv"

	firebase "firebase.google.com/go/v4"
	fbauth "firebase.google.com/go/v4/auth"
	"google.golang.org/api/option"

	"grubio/internal/domain"
)

// firebaseClient is the part of *auth.Client the verifier uses.
type firebaseClient interface {
	VerifyIDTokenAndCheckRevoked(ctx context.Context, idToken string) (*fbauth.Token, error)
	RevokeRefreshTokens(ctx context.Context, uid string) error
}

// Firebase verifies Firebase ID tokens. Firebase issues the tokens itself, so
// sign-up and sign-in happen on the client and this server only verifies.
type Firebase struct {
	client firebaseClient
}

// NewFirebase initializes a Firebase app for projectID. credentialsFile may be
// empty to use application default credentials.
func NewFirebase(ctx context.Context, projectID, credentialsFile string) (*Firebase, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}
	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: projectID}, opts...)
	if err != nil {
		return nil, fmt.Errorf("error initializing firebase app: %w", err)
	}
	client, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("error getting firebase auth client: %w", err)
	}
	return &Firebase{client: client}, nil
}

// Verify checks the ID token, including revocation. The session id is the uid
// plus the token's auth_time, so each sign-in is a distinct session.
func (f *Firebase) Verify(ctx context.Context, idToken string) (*domain.Principal, error) {
	token, err := f.client.VerifyIDTokenAndCheckRevoked(ctx, idToken)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrSessionEnded, err)
	}
	email, _ := token.Claims["email"].(string)
	return &domain.Principal{
		UserID:    token.UID,
		Email:     email,
		SessionID: token.UID + ":" + authTime(token.Claims["auth_time"]),
	}, nil
}

func authTime(v any) string {
	if f, ok := v.(float64); ok {
		return strconv.FormatInt(int64(f), 10)
	}
	return fmt.Sprint(v)
}

// RevokeUser invalidates the user's Firebase refresh tokens.
func (f *Firebase) RevokeUser(ctx context.Context, userID string) error {
	return f.client.RevokeRefreshTokens(ctx, userID)
}
