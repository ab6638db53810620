// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package account

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/taibuivan/accounts/internal/platform/constants"
	"github.com/taibuivan/accounts/internal/platform/sec"
)

// Hash fields of a session key.
const (
	sessionFieldUserID    = "userId"
	sessionFieldUserAgent = "userAgent"
	sessionFieldIPAddress = "ipAddress"
	sessionFieldCreatedAt = "createdAt"
	sessionFieldExpiresAt = "expiresAt"
)

// RedisSessionRepository implements [SessionRepository] using Redis.
//
// # Key Layout
//   - auth:session:<digest>: hash holding the session, expiring with the refresh token.
//   - auth:user_sessions:<userID>: set of the user's live digests, for revoke-all.
type RedisSessionRepository struct {
	client *redis.Client
}

// NewSessionRepository creates a new Redis-backed SessionRepository.
func NewSessionRepository(client *redis.Client) *RedisSessionRepository {
	return &RedisSessionRepository{client: client}
}

/*
Create stores a session hash and indexes it under its user.

Parameters:
  - context: context.Context
  - session: *Session

Returns:
  - error: Storage failures
*/
func (repository *RedisSessionRepository) Create(context context.Context, session *Session) error {
	key := sessionKey(session.TokenHash)
	userKey := userSessionsKey(session.UserID)

	_, err := repository.client.TxPipelined(context, func(pipe redis.Pipeliner) error {
		pipe.HSet(context, key, map[string]any{
			sessionFieldUserID:    session.UserID,
			sessionFieldUserAgent: session.UserAgent,
			sessionFieldIPAddress: session.IPAddress,
			sessionFieldCreatedAt: session.CreatedAt.Unix(),
			sessionFieldExpiresAt: session.ExpiresAt.Unix(),
		})
		pipe.ExpireAt(context, key, session.ExpiresAt)
		pipe.SAdd(context, userKey, session.TokenHash)
		pipe.Expire(context, userKey, sec.RefreshTokenTTL)
		return nil
	})

	if err != nil {
		return fmt.Errorf("redis_session_create_failed: %w", err)
	}

	return nil
}

/*
Find resolves a session by token digest.

Returns:
  - *Session: The live session
  - error: ErrSessionNotFound when absent or expired
*/
func (repository *RedisSessionRepository) Find(context context.Context, tokenHash string) (*Session, error) {
	values, err := repository.client.HGetAll(context, sessionKey(tokenHash)).Result()
	if err != nil {
		return nil, fmt.Errorf("redis_session_find_failed: %w", err)
	}

	// HGETALL on a missing key yields an empty map rather than redis.Nil
	if len(values) == 0 {
		return nil, ErrSessionNotFound
	}

	return &Session{
		TokenHash: tokenHash,
		UserID:    values[sessionFieldUserID],
		UserAgent: values[sessionFieldUserAgent],
		IPAddress: values[sessionFieldIPAddress],
		CreatedAt: unixTime(values[sessionFieldCreatedAt]),
		ExpiresAt: unixTime(values[sessionFieldExpiresAt]),
	}, nil
}

/*
Delete removes one session and its index entry.

Description: Unknown digests are ignored so logout stays idempotent.

Parameters:
  - context: context.Context
  - tokenHash: string

Returns:
  - error: Deletion failures
*/
func (repository *RedisSessionRepository) Delete(context context.Context, tokenHash string) error {
	key := sessionKey(tokenHash)

	userID, err := repository.client.HGet(context, key, sessionFieldUserID).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil
		}
		return fmt.Errorf("redis_session_delete_failed: %w", err)
	}

	_, err = repository.client.TxPipelined(context, func(pipe redis.Pipeliner) error {
		pipe.Del(context, key)
		pipe.SRem(context, userSessionsKey(userID), tokenHash)
		return nil
	})

	if err != nil {
		return fmt.Errorf("redis_session_delete_failed: %w", err)
	}

	return nil
}

/*
DeleteAll revokes every session of a user.

Parameters:
  - context: context.Context
  - userID: string

Returns:
  - error: Execution failures
*/
func (repository *RedisSessionRepository) DeleteAll(context context.Context, userID string) error {
	userKey := userSessionsKey(userID)

	digests, err := repository.client.SMembers(context, userKey).Result()
	if err != nil {
		return fmt.Errorf("redis_session_delete_all_failed: %w", err)
	}

	keys := make([]string, 0, len(digests)+1)
	for _, digest := range digests {
		keys = append(keys, sessionKey(digest))
	}
	keys = append(keys, userKey)

	if err := repository.client.Del(context, keys...).Err(); err != nil {
		return fmt.Errorf("redis_session_delete_all_failed: %w", err)
	}

	return nil
}

func sessionKey(tokenHash string) string {
	return constants.RedisPrefixSession + tokenHash
}

func userSessionsKey(userID string) string {
	return constants.RedisPrefixUserSession + userID
}

func unixTime(raw string) time.Time {
	seconds, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return time.Time{}
	}
	return time.Unix(seconds, 0)
}
