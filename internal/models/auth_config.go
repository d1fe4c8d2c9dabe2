package models

// AuthConfig selects how admin routes are guarded. When ClerkSecretKey is set
// the hosted Clerk provider is used; otherwise JWTSecret enables the
// self-hosted HS256 provider. With neither, admin routes are open (intended
// for local development only).
type AuthConfig struct {
	ClerkSecretKey string `yaml:"clerk_secret_key" json:"-"`
	JWTSecret      string `yaml:"jwt_secret" json:"-"`
	// AdminCacheTTLSeconds bounds how long a cached admin-status answer may
	// be served before re-checking the auth provider. Defaults to 300.
	AdminCacheTTLSeconds int `yaml:"admin_cache_ttl_seconds" json:"admin_cache_ttl_seconds,omitzero"`
}

// CacheConfig configures the optional Redis instance backing the
// admin-status cache. Absent, an in-process cache is used.
type CacheConfig struct {
	RedisURL string `yaml:"redis_url" json:"-"`
}
