package redis

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/commuteplanner/planner/internal/core/domain"
)

const defaultSessionTTL = 30 * time.Second

// SessionCache caches resolved sessions in Redis.
// Key format: session:<sha256(cookie)>
type SessionCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewSessionCache creates a SessionCache. A non-positive ttl uses defaultSessionTTL.
func NewSessionCache(client *redis.Client, ttl time.Duration) *SessionCache {
	if ttl <= 0 {
		ttl = defaultSessionTTL
	}
	return &SessionCache{client: client, ttl: ttl}
}

type cachedAccount struct {
	domain.Account
	SessionID string `json:"session_id"`
}

// Get returns the cached account for cookie, if any.
func (c *SessionCache) Get(ctx context.Context, cookie string) (*domain.Account, bool, error) {
	raw, err := c.client.Get(ctx, c.key(cookie)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("session cache get: %w", err)
	}

	var entry cachedAccount
	if err := json.Unmarshal(raw, &entry); err != nil {
		return nil, false, fmt.Errorf("session cache decode: %w", err)
	}
	account := entry.Account
	account.SessionID = entry.SessionID
	return &account, true, nil
}

// Set stores account under cookie for the cache TTL.
func (c *SessionCache) Set(ctx context.Context, cookie string, account *domain.Account) error {
	raw, err := json.Marshal(cachedAccount{Account: *account, SessionID: account.SessionID})
	if err != nil {
		return fmt.Errorf("session cache encode: %w", err)
	}
	return c.client.Set(ctx, c.key(cookie), raw, c.ttl).Err()
}

// Delete forgets the session behind cookie.
func (c *SessionCache) Delete(ctx context.Context, cookie string) error {
	return c.client.Del(ctx, c.key(cookie)).Err()
}

func (c *SessionCache) key(cookie string) string {
	sum := sha256.Sum256([]byte(cookie))
	return "session:" + hex.EncodeToString(sum[:])
}
