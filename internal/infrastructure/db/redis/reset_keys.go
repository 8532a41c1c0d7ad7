package redis

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"

	"github.com/commuteplanner/planner/internal/core/domain"
)

const defaultResetKeyTTL = time.Hour

// ResetKeyStore keeps change-password keys in Redis.
// A key is "<id>.<secret>"; Redis holds only the bcrypt hash of the secret
// under pwreset:<id>. Verify leaves the entry in place; Redeem deletes it.
type ResetKeyStore struct {
	client *redis.Client
	ttl    time.Duration
	cost   int
}

// NewResetKeyStore creates a store. A non-positive ttl uses defaultResetKeyTTL.
func NewResetKeyStore(client *redis.Client, ttl time.Duration) *ResetKeyStore {
	if ttl <= 0 {
		ttl = defaultResetKeyTTL
	}
	return &ResetKeyStore{client: client, ttl: ttl, cost: bcrypt.DefaultCost}
}

type resetEntry struct {
	AccountID  string `json:"account_id"`
	SecretHash string `json:"secret_hash"`
}

// Issue creates a new key for accountID.
func (s *ResetKeyStore) Issue(ctx context.Context, accountID string) (string, error) {
	idBytes := make([]byte, 8)
	secret := make([]byte, 24)
	if _, err := rand.Read(idBytes); err != nil {
		return "", fmt.Errorf("reset key id: %w", err)
	}
	if _, err := rand.Read(secret); err != nil {
		return "", fmt.Errorf("reset key secret: %w", err)
	}
	id := hex.EncodeToString(idBytes)
	secretStr := base64.RawURLEncoding.EncodeToString(secret)

	hash, err := bcrypt.GenerateFromPassword([]byte(secretStr), s.cost)
	if err != nil {
		return "", fmt.Errorf("reset key hash: %w", err)
	}
	raw, err := json.Marshal(resetEntry{AccountID: accountID, SecretHash: string(hash)})
	if err != nil {
		return "", err
	}
	if err := s.client.Set(ctx, s.redisKey(id), raw, s.ttl).Err(); err != nil {
		return "", fmt.Errorf("reset key store: %w", err)
	}
	return id + "." + secretStr, nil
}

// Verify returns the account key was issued for. The key stays valid until
// Redeem.
func (s *ResetKeyStore) Verify(ctx context.Context, key string) (string, error) {
	id, secret, err := splitKey(key)
	if err != nil {
		return "", err
	}
	raw, err := s.client.Get(ctx, s.redisKey(id)).Bytes()
	if err != nil {
		return "", lookupError(err)
	}
	return matchSecret(raw, secret)
}

// Redeem deletes the key after checking it once more. The check and the
// delete run in one WATCH transaction, so only one caller can redeem a key.
func (s *ResetKeyStore) Redeem(ctx context.Context, key string) error {
	id, secret, err := splitKey(key)
	if err != nil {
		return err
	}
	rk := s.redisKey(id)

	err = s.client.Watch(ctx, func(tx *redis.Tx) error {
		raw, err := tx.Get(ctx, rk).Bytes()
		if err != nil {
			return lookupError(err)
		}
		if _, err := matchSecret(raw, secret); err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Del(ctx, rk)
			return nil
		})
		return err
	}, rk)
	if errors.Is(err, redis.TxFailedErr) {
		return domain.ErrResetKeyInvalid
	}
	return err
}

func splitKey(key string) (id, secret string, err error) {
	id, secret, ok := strings.Cut(key, ".")
	if !ok || id == "" || secret == "" {
		return "", "", domain.ErrResetKeyInvalid
	}
	return id, secret, nil
}

func lookupError(err error) error {
	if errors.Is(err, redis.Nil) {
		return domain.ErrResetKeyInvalid
	}
	return fmt.Errorf("reset key lookup: %w", err)
}

func matchSecret(raw []byte, secret string) (string, error) {
	var entry resetEntry
	if err := json.Unmarshal(raw, &entry); err != nil {
		return "", fmt.Errorf("reset key decode: %w", err)
	}
	if bcrypt.CompareHashAndPassword([]byte(entry.SecretHash), []byte(secret)) != nil {
		return "", domain.ErrResetKeyInvalid
	}
	return entry.AccountID, nil
}

func (s *ResetKeyStore) redisKey(id string) string {
	return "pwreset:" + id
}
