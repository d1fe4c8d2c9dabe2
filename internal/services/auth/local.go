package auth

import (
	"context"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// LocalProvider verifies HS256 tokens signed with a shared secret. It suits
// self-hosted deployments where a separate identity service is overkill: the
// operator mints tokens with an "admin" claim out of band.
type LocalProvider struct {
	secret []byte
}

func NewLocalProvider(secret string) *LocalProvider {
	return &LocalProvider{secret: []byte(secret)}
}

type localClaims struct {
	Admin bool `json:"admin"`
	jwt.RegisteredClaims
}

// VerifyToken checks signature and expiry. The admin verdict travels inside
// the token, so no external lookup or caching is involved.
func (p *LocalProvider) VerifyToken(ctx context.Context, token string) (*Identity, error) {
	claims := &localClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		return p.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}
	if !parsed.Valid {
		return nil, fmt.Errorf("invalid token")
	}

	return &Identity{
		UserID: claims.Subject,
		Admin:  claims.Admin,
	}, nil
}
