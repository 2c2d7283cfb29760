// Package codes stores pending signup confirmation codes in Redis. A code is
// bound to a (username, email) pair, bcrypt-hashed at rest, expires with the
// configured TTL and is deleted on first successful verification or after
// too many failed attempts.
package codes

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrCodeInvalid     = errors.New("confirmation code is invalid or expired")
	ErrResendThrottled = errors.New("confirmation code was requested too recently")
)

const (
	defaultKeyPrefix   = "reviewdb:auth:code"
	defaultMaxAttempts = 5
)

// Store issues and verifies confirmation codes.
type Store interface {
	Issue(ctx context.Context, username, email string) (string, error)
	Verify(ctx context.Context, username, code string) error
}

type redisStore struct {
	client      *redis.Client
	keyPrefix   string
	ttl         time.Duration
	resendAfter time.Duration
	maxAttempts int
}

type codeRecord struct {
	Email    string `json:"email"`
	CodeHash string `json:"codeHash"`
	Attempts int    `json:"attempts"`
}

// NewRedisStore builds a Store on an existing Redis client. resendAfter of
// zero disables the resend guard (used by tests).
func NewRedisStore(client *redis.Client, ttl, resendAfter time.Duration) Store {
	return &redisStore{
		client:      client,
		keyPrefix:   defaultKeyPrefix,
		ttl:         ttl,
		resendAfter: resendAfter,
		maxAttempts: defaultMaxAttempts,
	}
}

// Issue generates a fresh 6-digit code for the pair and overwrites any code
// issued earlier for the same username.
func (s *redisStore) Issue(ctx context.Context, username, email string) (string, error) {
	if s.resendAfter > 0 {
		allowed, err := s.client.SetNX(ctx, s.resendKey(username), "1", s.resendAfter).Result()
		if err != nil {
			return "", fmt.Errorf("code resend guard: %w", err)
		}
		if !allowed {
			return "", ErrResendThrottled
		}
	}

	code, err := generateCode()
	if err != nil {
		return "", fmt.Errorf("generate confirmation code: %w", err)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash confirmation code: %w", err)
	}

	raw, err := json.Marshal(codeRecord{Email: email, CodeHash: string(hash)})
	if err != nil {
		return "", fmt.Errorf("marshal code record: %w", err)
	}
	if err := s.client.Set(ctx, s.codeKey(username), raw, s.ttl).Err(); err != nil {
		return "", fmt.Errorf("store confirmation code: %w", err)
	}
	return code, nil
}

// Verify checks the code for the username and consumes it on success. After
// maxAttempts failed tries the pending code is dropped entirely.
func (s *redisStore) Verify(ctx context.Context, username, code string) error {
	key := s.codeKey(username)
	raw, err := s.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return ErrCodeInvalid
	}
	if err != nil {
		return fmt.Errorf("load confirmation code: %w", err)
	}

	var rec codeRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return fmt.Errorf("unmarshal code record: %w", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(rec.CodeHash), []byte(code)) != nil {
		rec.Attempts++
		if rec.Attempts >= s.maxAttempts {
			_ = s.client.Del(ctx, key).Err()
		} else if updated, marshalErr := json.Marshal(rec); marshalErr == nil {
			ttl, ttlErr := s.client.TTL(ctx, key).Result()
			if ttlErr == nil && ttl > 0 {
				_ = s.client.Set(ctx, key, updated, ttl).Err()
			}
		}
		return ErrCodeInvalid
	}

	// single use: a consumed code cannot be exchanged again
	if err := s.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("consume confirmation code: %w", err)
	}
	return nil
}

func (s *redisStore) codeKey(username string) string {
	return fmt.Sprintf("%s:pending:%s", s.keyPrefix, username)
}

func (s *redisStore) resendKey(username string) string {
	return fmt.Sprintf("%s:resend:%s", s.keyPrefix, username)
}

// generateCode draws a uniformly random integer in [100000, 999999].
func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}
