package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"grubio/internal/domain"
)

// jwtClaims carries the session id in the standard jti claim.
type jwtClaims struct {
	jwt.RegisteredClaims
	Email string `json:"email"`
}

// JWT issues and verifies HS256 session tokens.
type JWT struct {
	secret []byte
	issuer string
}

// NewJWT returns a token issuer and verifier signing with the given secret.
func NewJWT(secret, issuer string) *JWT {
	return &JWT{secret: []byte(secret), issuer: issuer}
}

func (j *JWT) Issue(userID, email, sessionID string, expiry time.Duration) (string, error) {
	now := time.Now()
	claims := jwtClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    j.issuer,
			Subject:   userID,
			ID:        sessionID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(expiry)),
		},
		Email: email,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(j.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return tokenString, nil
}

// Verify parses the token. Any invalid, expired or foreign token ends the session.
func (j *JWT) Verify(_ context.Context, tokenString string) (*domain.Principal, error) {
	claims := &jwtClaims{}
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired()}
	if j.issuer != "" {
		opts = append(opts, jwt.WithIssuer(j.issuer))
	}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(*jwt.Token) (any, error) {
		return j.secret, nil
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrSessionEnded, err)
	}
	if claims.Subject == "" || claims.ID == "" {
		return nil, fmt.Errorf("%w: token has no subject or session", domain.ErrSessionEnded)
	}
	return &domain.Principal{UserID: claims.Subject, Email: claims.Email, SessionID: claims.ID}, nil
}
