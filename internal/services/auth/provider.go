// Package auth verifies admin identity for the gateway's management surface.
// Two providers are supported: Clerk-hosted sessions and self-issued HS256
// tokens for single-operator deployments.
package auth

import "context"

// Identity is the verified caller of an admin request.
type Identity struct {
	UserID string
	Admin  bool
}

// Provider verifies a bearer token and resolves the subject's admin status.
// Implementations must not log the token.
type Provider interface {
	VerifyToken(ctx context.Context, token string) (*Identity, error)
}
