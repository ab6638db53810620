// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package account

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/taibuivan/accounts/internal/platform/database/schema"
	"github.com/taibuivan/accounts/internal/platform/dberr"
)

// dbtx is the slice of [pgxpool.Pool] the repository needs. pgx transactions
// and pgxmock pools satisfy it as well.
type dbtx interface {
	Exec(context context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	QueryRow(context context.Context, sql string, arguments ...any) pgx.Row
}

// # User Repository

// PostgresUserRepository implements [UserRepository] against users.account.
type PostgresUserRepository struct {
	db dbtx
}

// NewUserRepository creates a new PostgreSQL implementation of the UserRepository.
func NewUserRepository(db dbtx) *PostgresUserRepository {
	return &PostgresUserRepository{db: db}
}

// selectUser reads every column in [scanUser] order. Nullable token columns
// collapse to the empty string.
var selectUser = fmt.Sprintf(`
	SELECT %s, %s, %s, %s, %s, %s, %s, %s, %s, COALESCE(%s, ''), COALESCE(%s, ''), %s, %s
	FROM %s`,
	schema.UserAccount.ID, schema.UserAccount.FirstName, schema.UserAccount.LastName,
	schema.UserAccount.Email, schema.UserAccount.Password, schema.UserAccount.Role,
	schema.UserAccount.IsVerified, schema.UserAccount.Terms, schema.UserAccount.JTI,
	schema.UserAccount.VerificationToken, schema.UserAccount.PasswordResetToken,
	schema.UserAccount.CreatedAt, schema.UserAccount.UpdatedAt,
	schema.UserAccount.Table,
)

/*
FindByID retrieves a user record from the users.account table.

Parameters:
  - context: context.Context
  - id: string (UUID)

Returns:
  - *User: Hydrated identity entity
  - error: ErrUserNotFound or database execution failure
*/
func (repository *PostgresUserRepository) FindByID(context context.Context, id string) (*User, error) {
	query := selectUser + fmt.Sprintf(` WHERE %s = $1`, schema.UserAccount.ID)

	user, err := scanUser(repository.db.QueryRow(context, query, id))
	if err != nil {
		return nil, notFoundOr(err, "postgres_user_repo_find_by_id_failed")
	}
	return user, nil
}

/*
FindByEmail retrieves a user by email, ignoring case.

Parameters:
  - context: context.Context
  - email: string

Returns:
  - *User: Hydrated identity entity
  - error: ErrUserNotFound or database execution failure
*/
func (repository *PostgresUserRepository) FindByEmail(context context.Context, email string) (*User, error) {
	query := selectUser + fmt.Sprintf(` WHERE LOWER(%s) = LOWER($1)`, schema.UserAccount.Email)

	user, err := scanUser(repository.db.QueryRow(context, query, email))
	if err != nil {
		return nil, notFoundOr(err, "postgres_user_repo_find_by_email_failed")
	}
	return user, nil
}

/*
Create persists a new user record into the users.account table.

Parameters:
  - context: context.Context
  - user: *User (Entity to persist)

Returns:
  - error: ErrEmailTaken on a duplicate address, or connectivity errors
*/
func (repository *PostgresUserRepository) Create(context context.Context, user *User) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (%s)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NULLIF($10, ''), NULLIF($11, ''), $12, $13)`,
		schema.UserAccount.Table, schema.UserAccount.SelectList(),
	)

	_, err := repository.db.Exec(context, query,
		user.ID,
		user.FirstName,
		user.LastName,
		user.Email,
		user.PasswordHash,
		user.Role,
		user.IsVerified,
		user.Terms,
		user.JTI,
		user.VerificationToken,
		user.PasswordResetToken,
		user.CreatedAt,
		user.UpdatedAt,
	)

	if err != nil {
		if dberr.IsUniqueViolation(err) {
			return ErrEmailTaken
		}
		return dberr.Wrap(fmt.Errorf("postgres_user_repo_create_failed: %w", err), "User")
	}

	return nil
}

/*
Save writes back the mutable state of an account.

Description: The profile fields, credentials, verification flag, rotation
nonce and outstanding single-use tokens are all synced in one statement.

Parameters:
  - context: context.Context
  - user: *User

Returns:
  - error: ErrUserNotFound when no row matched, or update failures
*/
func (repository *PostgresUserRepository) Save(context context.Context, user *User) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET %s = $2, %s = $3, %s = $4, %s = $5, %s = $6, %s = $7, %s = $8,
		    %s = NULLIF($9, ''), %s = NULLIF($10, ''), %s = $11
		WHERE %s = $1`,
		schema.UserAccount.Table,
		schema.UserAccount.FirstName, schema.UserAccount.LastName, schema.UserAccount.Email,
		schema.UserAccount.Password, schema.UserAccount.Role, schema.UserAccount.IsVerified,
		schema.UserAccount.JTI, schema.UserAccount.VerificationToken,
		schema.UserAccount.PasswordResetToken, schema.UserAccount.UpdatedAt,
		schema.UserAccount.ID,
	)

	tag, err := repository.db.Exec(context, query,
		user.ID,
		user.FirstName,
		user.LastName,
		user.Email,
		user.PasswordHash,
		user.Role,
		user.IsVerified,
		user.JTI,
		user.VerificationToken,
		user.PasswordResetToken,
		user.UpdatedAt,
	)

	if err != nil {
		if dberr.IsUniqueViolation(err) {
			return ErrEmailTaken
		}
		return dberr.Wrap(fmt.Errorf("postgres_user_repo_save_failed: %w", err), "User")
	}

	if tag.RowsAffected() == 0 {
		return ErrUserNotFound
	}

	return nil
}

/*
ConsumeVerification flips the verified flag and clears the link in one
compare-and-set statement, so a link is honored at most once.

Parameters:
  - context: context.Context
  - id: string (UUID)
  - token: string (the presented link)
  - at: time.Time

Returns:
  - error: ErrTokenNotCurrent when no row still holds the token
*/
func (repository *PostgresUserRepository) ConsumeVerification(context context.Context, id, token string, at time.Time) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET %s = TRUE, %s = NULL, %s = $3
		WHERE %s = $1 AND %s = $2`,
		schema.UserAccount.Table,
		schema.UserAccount.IsVerified, schema.UserAccount.VerificationToken, schema.UserAccount.UpdatedAt,
		schema.UserAccount.ID, schema.UserAccount.VerificationToken,
	)

	tag, err := repository.db.Exec(context, query, id, token, at)
	if err != nil {
		return dberr.Wrap(fmt.Errorf("postgres_user_repo_consume_verification_failed: %w", err), "User")
	}
	if tag.RowsAffected() != 1 {
		return ErrTokenNotCurrent
	}
	return nil
}

/*
ConsumePasswordReset replaces the credentials and clears the reset link in one
compare-and-set statement.

Parameters:
  - context: context.Context
  - id: string (UUID)
  - token: string (the presented link)
  - passwordHash: string
  - jti: string (new rotation nonce)
  - at: time.Time

Returns:
  - error: ErrTokenNotCurrent when no row still holds the token
*/
func (repository *PostgresUserRepository) ConsumePasswordReset(context context.Context, id, token, passwordHash, jti string, at time.Time) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET %s = $3, %s = $4, %s = NULL, %s = $5
		WHERE %s = $1 AND %s = $2`,
		schema.UserAccount.Table,
		schema.UserAccount.Password, schema.UserAccount.JTI,
		schema.UserAccount.PasswordResetToken, schema.UserAccount.UpdatedAt,
		schema.UserAccount.ID, schema.UserAccount.PasswordResetToken,
	)

	tag, err := repository.db.Exec(context, query, id, token, passwordHash, jti, at)
	if err != nil {
		return dberr.Wrap(fmt.Errorf("postgres_user_repo_consume_password_reset_failed: %w", err), "User")
	}
	if tag.RowsAffected() != 1 {
		return ErrTokenNotCurrent
	}
	return nil
}

// # Helpers

func scanUser(row pgx.Row) (*User, error) {
	user := &User{}
	err := row.Scan(
		&user.ID,
		&user.FirstName,
		&user.LastName,
		&user.Email,
		&user.PasswordHash,
		&user.Role,
		&user.IsVerified,
		&user.Terms,
		&user.JTI,
		&user.VerificationToken,
		&user.PasswordResetToken,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return user, nil
}

// notFoundOr maps an empty result to ErrUserNotFound and anything else to an
// internal error carrying the failed operation.
func notFoundOr(err error, operation string) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrUserNotFound
	}
	return dberr.Wrap(fmt.Errorf("%s: %w", operation, err), "User")
}
