package auth

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/clerk/clerk-sdk-go/v2"
	"github.com/clerk/clerk-sdk-go/v2/jwt"
	"github.com/clerk/clerk-sdk-go/v2/user"
)

// ClerkProvider verifies Clerk session tokens and reads the admin role from
// the user's public metadata. The metadata lookup is an extra API round trip
// per request, so verdicts are memoized through the status cache.
type ClerkProvider struct {
	secretKey  string
	adminCache *StatusCache
}

func NewClerkProvider(secretKey string, adminCache *StatusCache) *ClerkProvider {
	clerk.SetKey(secretKey)

	return &ClerkProvider{
		secretKey:  secretKey,
		adminCache: adminCache,
	}
}

func (p *ClerkProvider) VerifyToken(ctx context.Context, token string) (*Identity, error) {
	claims, err := jwt.Verify(ctx, &jwt.VerifyParams{
		Token: token,
	})
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}

	admin, err := p.resolveAdmin(ctx, claims.Subject)
	if err != nil {
		return nil, err
	}

	return &Identity{
		UserID: claims.Subject,
		Admin:  admin,
	}, nil
}

func (p *ClerkProvider) resolveAdmin(ctx context.Context, userID string) (bool, error) {
	if p.adminCache != nil {
		if admin, found := p.adminCache.Get(ctx, userID); found {
			return admin, nil
		}
	}

	admin, err := p.lookupAdmin(ctx, userID)
	if err != nil {
		return false, err
	}

	if p.adminCache != nil {
		p.adminCache.Set(ctx, userID, admin)
	}
	return admin, nil
}

// clerkUserMetadata is the slice of Clerk public metadata the gateway reads.
type clerkUserMetadata struct {
	Role string `json:"role"`
}

// lookupAdmin reads the role from Clerk directly, bypassing the cache.
func (p *ClerkProvider) lookupAdmin(ctx context.Context, userID string) (bool, error) {
	usr, err := user.Get(ctx, userID)
	if err != nil {
		return false, fmt.Errorf("failed to fetch user %s: %w", userID, err)
	}

	if len(usr.PublicMetadata) == 0 {
		return false, nil
	}

	var meta clerkUserMetadata
	if err := json.Unmarshal(usr.PublicMetadata, &meta); err != nil {
		return false, fmt.Errorf("failed to parse user metadata: %w", err)
	}

	return meta.Role == "admin", nil
}
