package auth

import (
	"context"
	"errors"
	"testing"

	fbauth "firebase.google.com/go/v4/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"grubio/internal/domain"
)

type fakeFirebaseClient struct {
	token   *fbauth.Token
	err     error
	revoked []string
}

func (f *fakeFirebaseClient) VerifyIDTokenAndCheckRevoked(ctx context.Context, idToken string) (*fbauth.Token, error) {
	return f.token, f.err
}

func (f *fakeFirebaseClient) RevokeRefreshTokens(ctx context.Context, uid string) error {
	f.revoked = append(f.revoked, uid)
	return nil
}

func TestFirebase_Verify(t *testing.T) {
	client := &fakeFirebaseClient{token: &fbauth.Token{
		UID:    "uid-1",
		Claims: map[string]interface{}{"email": "ana@example.com", "auth_time": float64(1700000000)},
	}}
	f := &Firebase{client: client}

	p, err := f.Verify(context.Background(), "id-token")
	require.NoError(t, err)
	assert.Equal(t, "uid-1", p.UserID)
	assert.Equal(t, "ana@example.com", p.Email)
	assert.Equal(t, "uid-1:1700000000", p.SessionID)

	require.NoError(t, f.RevokeUser(context.Background(), "uid-1"))
	assert.Equal(t, []string{"uid-1"}, client.revoked)
}

func TestFirebase_Verify_Revoked(t *testing.T) {
	f := &Firebase{client: &fakeFirebaseClient{err: errors.New("ID token has been revoked")}}
	_, err := f.Verify(context.Background(), "id-token")
	assert.ErrorIs(t, err, domain.ErrSessionEnded)
}
