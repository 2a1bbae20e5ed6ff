package session

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// revokedMarker replaces the entry payload when a token is revoked. The key
// keeps living for the token's maximum lifetime so the signature fallback
// cannot re-adopt it.
const revokedMarker = "revoked"

// RedisRegistry keeps the active-session set in Redis so revocation survives
// a server restart and is shared between instances. Keys expire with the
// token TTL; a per-user set allows revoking every session of one user.
type RedisRegistry struct {
	rdb *redis.Client
}

func NewRedisRegistry(rdb *redis.Client) *RedisRegistry { return &RedisRegistry{rdb: rdb} }

func key(token string) string       { return fmt.Sprintf("lib:sess:%s", token) }
func userSetKey(userID uint) string { return fmt.Sprintf("lib:user_sessions:%d", userID) }

func (s *RedisRegistry) Put(ctx context.Context, token string, e Entry, ttl time.Duration) error {
	if cur, err := s.rdb.Get(ctx, key(token)).Result(); err == nil && cur == revokedMarker {
		return ErrRevoked
	}
	b, _ := json.Marshal(e)
	pipe := s.rdb.TxPipeline()
	pipe.Set(ctx, key(token), b, ttl)
	pipe.SAdd(ctx, userSetKey(e.UserID), token)
	pipe.Expire(ctx, userSetKey(e.UserID), ttl)
	_, err := pipe.Exec(ctx)
	return err
}

func (s *RedisRegistry) Get(ctx context.Context, token string) (*Entry, error) {
	b, err := s.rdb.Get(ctx, key(token)).Bytes()
	if err == redis.Nil {
		return nil, ErrNotRegistered
	}
	if err != nil {
		return nil, err
	}
	if string(b) == revokedMarker {
		return nil, ErrRevoked
	}
	var e Entry
	if err := json.Unmarshal(b, &e); err != nil {
		return nil, err
	}
	return &e, nil
}

func (s *RedisRegistry) Revoke(ctx context.Context, token string, ttl time.Duration) error {
	e, _ := s.Get(ctx, token)
	pipe := s.rdb.TxPipeline()
	pipe.Set(ctx, key(token), revokedMarker, ttl)
	if e != nil {
		pipe.SRem(ctx, userSetKey(e.UserID), token)
	}
	_, err := pipe.Exec(ctx)
	return err
}

// RevokeAllForUser revokes every registered session of one user, e.g. after
// the user record is removed.
func (s *RedisRegistry) RevokeAllForUser(ctx context.Context, userID uint, ttl time.Duration) error {
	tokens, err := s.rdb.SMembers(ctx, userSetKey(userID)).Result()
	if err != nil && err != redis.Nil {
		return err
	}
	pipe := s.rdb.TxPipeline()
	for _, t := range tokens {
		pipe.Set(ctx, key(t), revokedMarker, ttl)
	}
	pipe.Del(ctx, userSetKey(userID))
	_, err = pipe.Exec(ctx)
	return err
}
