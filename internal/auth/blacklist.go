package auth

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const blacklistKeyPrefix = "auth:blacklist:"

// Blacklist is a negative cache of revoked access tokens. Entries carry a TTL
// equal to the token's remaining lifetime, so the set stays bounded and never
// needs an explicit sweep.
type Blacklist struct {
	client *redis.Client
}

// NewBlacklist constructs a Blacklist on the given Redis client.
func NewBlacklist(client *redis.Client) *Blacklist {
	return &Blacklist{client: client}
}

func blacklistKey(token string) string {
	sum := sha256.Sum256([]byte(token))
	return blacklistKeyPrefix + hex.EncodeToString(sum[:])
}

// Add revokes the token until expiry. Tokens already past expiry are ignored.
func (b *Blacklist) Add(ctx context.Context, token string, expiresAt time.Time) error {
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return nil
	}
	if err := b.client.Set(ctx, blacklistKey(token), "1", ttl).Err(); err != nil {
		return fmt.Errorf("auth: blacklist add: %w", err)
	}
	return nil
}

// Contains reports whether the token has been revoked.
func (b *Blacklist) Contains(ctx context.Context, token string) (bool, error) {
	n, err := b.client.Exists(ctx, blacklistKey(token)).Result()
	if err != nil {
		return false, fmt.Errorf("auth: blacklist check: %w", err)
	}
	return n > 0, nil
}
