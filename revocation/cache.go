package revocation

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrStoreUnavailable reports a Redis failure. Every error returned by this
// package either is nil or wraps this sentinel.
var ErrStoreUnavailable = errors.New("token state store unavailable")

// Cache answers usability questions about issued tokens. Safe for concurrent
// use; all state lives in Redis.
type Cache struct {
	redis  redis.UniversalClient
	prefix string
}

// New creates a Cache on the given client. prefix may be empty; when set it
// namespaces every key ("ab" -> "ab:refresh:{userId}").
func New(client redis.UniversalClient, prefix string) *Cache {
	return &Cache{redis: client, prefix: prefix}
}

func (c *Cache) key(family, userID string) string {
	if c.prefix == "" {
		return family + ":" + userID
	}
	return c.prefix + ":" + family + ":" + userID
}

func (c *Cache) refreshKey(userID string) string { return c.key("refresh", userID) }
func (c *Cache) revokedKey(userID string) string { return c.key("revoked", userID) }
func (c *Cache) nbfKey(userID string) string     { return c.key("not_before", userID) }

// RecordIssuedRefresh adds a refresh jti to the user's active set and extends
// the set's expiry to the token's expiry. The GT option keeps the extension
// monotonic when a longer-lived member is already present. Idempotent.
func (c *Cache) RecordIssuedRefresh(ctx context.Context, userID, jti string, expiresAt time.Time) error {
	return c.addWithExpiry(ctx, c.refreshKey(userID), jti, expiresAt)
}

// addWithExpiry inserts a set member and keeps the set's TTL at the latest
// member expiry. NX seeds the TTL on a fresh key; GT alone would see the
// fresh key's missing TTL as infinite and never fire.
func (c *Cache) addWithExpiry(ctx context.Context, key, member string, expiresAt time.Time) error {
	ttl := time.Until(expiresAt)
	_, err := c.redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.SAdd(ctx, key, member)
		pipe.ExpireNX(ctx, key, ttl)
		pipe.ExpireGT(ctx, key, ttl)
		return nil
	})
	if err != nil {
		return storeErr(err)
	}
	return nil
}

// IsRefreshUsable reports whether the refresh jti is present in the user's
// active set.
func (c *Cache) IsRefreshUsable(ctx context.Context, userID, jti string) (bool, error) {
	ok, err := c.redis.SIsMember(ctx, c.refreshKey(userID), jti).Result()
	if err != nil {
		return false, storeErr(err)
	}
	return ok, nil
}

// ConsumeRefresh atomically removes the refresh jti from the user's active
// set and reports whether it was present. At most one concurrent caller
// observes true for a given jti.
func (c *Cache) ConsumeRefresh(ctx context.Context, userID, jti string) (bool, error) {
	removed, err := c.redis.SRem(ctx, c.refreshKey(userID), jti).Result()
	if err != nil {
		return false, storeErr(err)
	}
	return removed > 0, nil
}

// RevokeAccess adds an access jti to the user's revoked set. The set expires
// with its longest-lived member; nothing needs to outlive the token's own
// expiry.
func (c *Cache) RevokeAccess(ctx context.Context, userID, jti string, expiresAt time.Time) error {
	return c.addWithExpiry(ctx, c.revokedKey(userID), jti, expiresAt)
}

// IsAccessUsable reports whether the access jti has NOT been revoked.
func (c *Cache) IsAccessUsable(ctx context.Context, userID, jti string) (bool, error) {
	revoked, err := c.redis.SIsMember(ctx, c.revokedKey(userID), jti).Result()
	if err != nil {
		return false, storeErr(err)
	}
	return !revoked, nil
}

// SetNotBefore records a per-user cutover: every token issued before
// issuedAt becomes unusable. A later call overwrites an earlier marker. The
// marker expires with the refresh token that established it.
func (c *Cache) SetNotBefore(ctx context.Context, userID string, issuedAt, expiresAt time.Time) error {
	err := c.redis.Set(ctx, c.nbfKey(userID), issuedAt.Unix(), time.Until(expiresAt)).Err()
	if err != nil {
		return storeErr(err)
	}
	return nil
}

// IssuedAfterNotBefore reports whether a token issued at issuedAt clears the
// user's cutover marker. No marker means every issuance time is acceptable.
func (c *Cache) IssuedAfterNotBefore(ctx context.Context, userID string, issuedAt time.Time) (bool, error) {
	val, err := c.redis.Get(ctx, c.nbfKey(userID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return true, nil
		}
		return false, storeErr(err)
	}
	notBefore, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return false, fmt.Errorf("%w: corrupt not_before value %q", ErrStoreUnavailable, val)
	}
	return issuedAt.Unix() >= notBefore, nil
}

func storeErr(err error) error {
	return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
}
