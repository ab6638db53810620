// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package account

import (
	"context"
	"errors"
	"net/http"
	"regexp"
	"testing"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/accounts/internal/platform/apperr"
	"github.com/taibuivan/accounts/internal/platform/database/schema"
	"github.com/taibuivan/accounts/internal/platform/sec"
)

func newMockRepository(t *testing.T) (*PostgresUserRepository, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return NewUserRepository(mock), mock
}

func sampleUser() *User {
	created := time.Date(2026, 2, 1, 8, 0, 0, 0, time.UTC)
	return &User{
		ID:                "0195f3a0-0000-7000-8000-000000000001",
		FirstName:         "Ada",
		LastName:          "Lovelace",
		Email:             "ada@example.com",
		PasswordHash:      "$2a$10$hash",
		Role:              sec.RoleUser,
		JTI:               "0195f3a0-0000-7000-8000-0000000000aa",
		VerificationToken: "token",
		CreatedAt:         created,
		UpdatedAt:         created,
	}
}

func userRow(user *User) *pgxmock.Rows {
	return pgxmock.NewRows(schema.UserAccount.Columns()).AddRow(
		user.ID, user.FirstName, user.LastName, user.Email, user.PasswordHash, user.Role,
		user.IsVerified, user.Terms, user.JTI, user.VerificationToken, user.PasswordResetToken,
		user.CreatedAt, user.UpdatedAt,
	)
}

/*
TestPostgresUserRepository_FindByID verifies hydration and the not-found mapping.
*/
func TestPostgresUserRepository_FindByID(t *testing.T) {
	repository, mock := newMockRepository(t)
	want := sampleUser()

	mock.ExpectQuery(regexp.QuoteMeta("FROM users.account WHERE id = $1")).
		WithArgs(want.ID).
		WillReturnRows(userRow(want))

	got, err := repository.FindByID(context.Background(), want.ID)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	mock.ExpectQuery(regexp.QuoteMeta("FROM users.account WHERE id = $1")).
		WithArgs("missing").
		WillReturnRows(pgxmock.NewRows(schema.UserAccount.Columns()))

	_, err = repository.FindByID(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrUserNotFound)

	assert.NoError(t, mock.ExpectationsWereMet())
}

/*
TestPostgresUserRepository_FindByEmail verifies the case-insensitive lookup.
*/
func TestPostgresUserRepository_FindByEmail(t *testing.T) {
	repository, mock := newMockRepository(t)
	want := sampleUser()

	mock.ExpectQuery(regexp.QuoteMeta("WHERE LOWER(email) = LOWER($1)")).
		WithArgs("ADA@example.com").
		WillReturnRows(userRow(want))

	got, err := repository.FindByEmail(context.Background(), "ADA@example.com")
	require.NoError(t, err)
	assert.Equal(t, want.ID, got.ID)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE LOWER(email) = LOWER($1)")).
		WithArgs("down@example.com").
		WillReturnError(errors.New("connection reset"))

	_, err = repository.FindByEmail(context.Background(), "down@example.com")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrUserNotFound)
	appError := apperr.As(err)
	require.NotNil(t, appError)
	assert.Equal(t, http.StatusInternalServerError, appError.HTTPStatus)
	assert.ErrorContains(t, appError.Cause, "postgres_user_repo_find_by_email_failed")

	assert.NoError(t, mock.ExpectationsWereMet())
}

/*
TestPostgresUserRepository_Create verifies the insert and the duplicate email mapping.
*/
func TestPostgresUserRepository_Create(t *testing.T) {
	repository, mock := newMockRepository(t)
	user := sampleUser()

	args := []any{
		user.ID, user.FirstName, user.LastName, user.Email, user.PasswordHash, user.Role,
		user.IsVerified, user.Terms, user.JTI, user.VerificationToken, user.PasswordResetToken,
		user.CreatedAt, user.UpdatedAt,
	}

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO users.account")).
		WithArgs(args...).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	require.NoError(t, repository.Create(context.Background(), user))

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO users.account")).
		WithArgs(args...).
		WillReturnError(&pgconn.PgError{Code: pgerrcode.UniqueViolation})
	assert.ErrorIs(t, repository.Create(context.Background(), user), ErrEmailTaken)

	assert.NoError(t, mock.ExpectationsWereMet())
}

/*
TestPostgresUserRepository_Save verifies the update and the zero-rows mapping.
*/
func TestPostgresUserRepository_Save(t *testing.T) {
	repository, mock := newMockRepository(t)
	user := sampleUser()
	user.IsVerified = true
	user.VerificationToken = ""

	args := []any{
		user.ID, user.FirstName, user.LastName, user.Email, user.PasswordHash, user.Role,
		user.IsVerified, user.JTI, user.VerificationToken, user.PasswordResetToken, user.UpdatedAt,
	}

	mock.ExpectExec(regexp.QuoteMeta("UPDATE users.account")).
		WithArgs(args...).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	require.NoError(t, repository.Save(context.Background(), user))

	mock.ExpectExec(regexp.QuoteMeta("UPDATE users.account")).
		WithArgs(args...).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))
	assert.ErrorIs(t, repository.Save(context.Background(), user), ErrUserNotFound)

	assert.NoError(t, mock.ExpectationsWereMet())
}

/*
TestPostgresUserRepository_ConsumeVerification verifies the guarded update and
the mapping of a lost race.
*/
func TestPostgresUserRepository_ConsumeVerification(t *testing.T) {
	repository, mock := newMockRepository(t)
	at := time.Date(2026, 2, 2, 8, 0, 0, 0, time.UTC)
	update := regexp.QuoteMeta("SET isverified = TRUE, verificationtoken = NULL, updatedat = $3") +
		`\s+` + regexp.QuoteMeta("WHERE id = $1 AND verificationtoken = $2")

	mock.ExpectExec(update).
		WithArgs("user-1", "link", at).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	require.NoError(t, repository.ConsumeVerification(context.Background(), "user-1", "link", at))

	mock.ExpectExec(update).
		WithArgs("user-1", "link", at).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))
	assert.ErrorIs(t, repository.ConsumeVerification(context.Background(), "user-1", "link", at), ErrTokenNotCurrent)

	mock.ExpectExec(update).
		WithArgs("user-1", "link", at).
		WillReturnError(errors.New("connection reset"))
	err := repository.ConsumeVerification(context.Background(), "user-1", "link", at)
	assert.NotErrorIs(t, err, ErrTokenNotCurrent)
	assert.Equal(t, http.StatusInternalServerError, apperr.As(err).HTTPStatus)

	assert.NoError(t, mock.ExpectationsWereMet())
}

/*
TestPostgresUserRepository_ConsumePasswordReset verifies that the credentials only
change while the row still holds the presented link.
*/
func TestPostgresUserRepository_ConsumePasswordReset(t *testing.T) {
	repository, mock := newMockRepository(t)
	at := time.Date(2026, 2, 2, 8, 0, 0, 0, time.UTC)
	update := regexp.QuoteMeta("SET passwordhash = $3, jti = $4, passwordresettoken = NULL, updatedat = $5") +
		`\s+` + regexp.QuoteMeta("WHERE id = $1 AND passwordresettoken = $2")

	mock.ExpectExec(update).
		WithArgs("user-1", "link", "$2a$10$new", "nonce-2", at).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	require.NoError(t, repository.ConsumePasswordReset(context.Background(), "user-1", "link", "$2a$10$new", "nonce-2", at))

	mock.ExpectExec(update).
		WithArgs("user-1", "link", "$2a$10$new", "nonce-2", at).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))
	assert.ErrorIs(t,
		repository.ConsumePasswordReset(context.Background(), "user-1", "link", "$2a$10$new", "nonce-2", at),
		ErrTokenNotCurrent,
	)

	assert.NoError(t, mock.ExpectationsWereMet())
}
