// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package account

import (
	"context"
	"time"

	"github.com/taibuivan/accounts/internal/platform/apperr"
)

var (
	// ErrUserNotFound is returned by [UserRepository] lookups that match nothing.
	ErrUserNotFound = apperr.NotFound("User")

	// ErrEmailTaken is returned by [UserRepository.Create] on a duplicate email.
	ErrEmailTaken = apperr.Conflict(msgEmailInUse)

	// ErrTokenNotCurrent is returned by the consume methods of [UserRepository]
	// when the presented link is no longer the one stored on the account.
	ErrTokenNotCurrent = apperr.Unauthorized("Link is no longer valid")

	// ErrSessionNotFound is returned by [SessionRepository.Find] for unknown or expired sessions.
	ErrSessionNotFound = apperr.Unauthorized(msgInvalidSession)
)

// # User Data Access

// UserRepository defines the data access contract for user accounts.
type UserRepository interface {

	/*
		FindByID returns the account with the given ID.

		Returns:
		  - *User: Hydrated entity
		  - error: ErrUserNotFound or database failures
	*/
	FindByID(context context.Context, id string) (*User, error)

	/*
		FindByEmail returns the account with the given email, compared case-insensitively.

		Returns:
		  - *User: Hydrated entity
		  - error: ErrUserNotFound or database failures
	*/
	FindByEmail(context context.Context, email string) (*User, error)

	/*
		Create persists a brand-new account.

		Returns:
		  - error: ErrEmailTaken or persistence failures
	*/
	Create(context context.Context, user *User) error

	/*
		Save persists every mutable field of an existing account, including
		the rotation nonce and the outstanding single-use tokens.

		Returns:
		  - error: ErrUserNotFound or persistence failures
	*/
	Save(context context.Context, user *User) error

	/*
		ConsumeVerification marks the account verified and clears its
		verification link, only if token is still the stored link.

		Returns:
		  - error: ErrTokenNotCurrent when another request consumed it first
	*/
	ConsumeVerification(context context.Context, id, token string, at time.Time) error

	/*
		ConsumePasswordReset stores a new password hash and rotation nonce and
		clears the reset link, only if token is still the stored link.

		Returns:
		  - error: ErrTokenNotCurrent when another request consumed it first
	*/
	ConsumePasswordReset(context context.Context, id, token, passwordHash, jti string, at time.Time) error
}

// # Session Data Access

// SessionRepository defines the data access contract for refresh-token sessions.
type SessionRepository interface {

	// Create stores a session until its ExpiresAt.
	Create(context context.Context, session *Session) error

	// Find returns the live session for a token digest, or ErrSessionNotFound.
	Find(context context.Context, tokenHash string) (*Session, error)

	// Delete removes one session. Unknown digests are not an error.
	Delete(context context.Context, tokenHash string) error

	// DeleteAll removes every session of a user.
	DeleteAll(context context.Context, userID string) error
}
