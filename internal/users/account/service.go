// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package account

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/taibuivan/accounts/internal/platform/apperr"
	"github.com/taibuivan/accounts/internal/platform/ctxutil"
	"github.com/taibuivan/accounts/internal/platform/metrics"
	"github.com/taibuivan/accounts/internal/platform/sec"
	"github.com/taibuivan/accounts/internal/platform/validate"
	"github.com/taibuivan/accounts/pkg/uuid"
)

// # Collaborators

// TokenService mints and checks intent-scoped tokens.
type TokenService interface {
	Issue(subject sec.Subject, intent sec.Intent) (string, error)
	Verify(token string, expected sec.Intent) (*sec.Claims, error)
}

// Sanitizer cleans untrusted form values before validation.
type Sanitizer interface {
	Map(values map[string]any) map[string]any
}

// Mailer delivers the single-use links.
type Mailer interface {
	SendVerification(context context.Context, to, token string) error
	SendPasswordReset(context context.Context, to, token string) error
}

// Recorder counts action outcomes and token traffic. [metrics.Metrics] implements it.
type Recorder interface {
	Action(action, outcome string)
	TokenIssued(intent string)
	TokenRejected(intent string)
}

// Deps groups the collaborators of a [Service].
type Deps struct {
	Users     UserRepository
	Sessions  SessionRepository
	Tokens    TokenService
	Hasher    sec.PasswordHasher
	Sanitizer Sanitizer
	Mailer    Mailer

	// Metrics is optional.
	Metrics Recorder

	// Clock is optional and defaults to time.Now.
	Clock func() time.Time
}

// ClientMeta describes the device opening a session.
type ClientMeta struct {
	UserAgent string
	IPAddress string
}

// # Service Layer

// Service runs the account actions.
//
// Every action validates its whole form first. Invalid input returns a
// field-scoped [apperr.AppError] and touches no collaborator other than the
// sanitizer.
type Service struct {
	users     UserRepository
	sessions  SessionRepository
	tokens    TokenService
	hasher    sec.PasswordHasher
	sanitizer Sanitizer
	mailer    Mailer
	metrics   Recorder
	now       func() time.Time
}

// NewService constructs a new [Service] from its dependencies.
func NewService(deps Deps) *Service {
	service := &Service{
		users:     deps.Users,
		sessions:  deps.Sessions,
		tokens:    deps.Tokens,
		hasher:    deps.Hasher,
		sanitizer: deps.Sanitizer,
		mailer:    deps.Mailer,
		metrics:   deps.Metrics,
		now:       deps.Clock,
	}
	if service.metrics == nil {
		service.metrics = (*metrics.Metrics)(nil)
	}
	if service.now == nil {
		service.now = time.Now
	}
	return service
}

// # Registration

/*
Signup validates a registration form and creates an unverified account.

Description: The form is sanitized, then validated as a whole. For valid
input the password is hashed, the account is stored with a fresh rotation
nonce and role "user", and a verification link is mailed.

Parameters:
  - context: context.Context
  - form: map[string]any (raw submitted values)

Returns:
  - *User: Created entity
  - error: Field errors, Conflict on a taken email, or delivery failures
*/
func (service *Service) Signup(context context.Context, form map[string]any) (*User, error) {
	logger := ctxutil.GetLogger(context)

	if err := service.checkShape(actionSignup, form, msgNoAccountData, signupFields); err != nil {
		return nil, err
	}

	batch := validate.BuildBatch(service.sanitizer.Map(form), signupFields...)
	password, _ := batch.Field(FieldPassword)
	batch.Update(FieldEmail, validate.FieldValidator.IsEmail).
		Update(FieldPassword, isPassword).
		Update(FieldConfirmPassword, func(field validate.FieldValidator) validate.FieldValidator {
			return field.MatchesField(password)
		}).
		Update(FieldTerms, validate.FieldValidator.Accepted)

	if err := batch.Err(secretFields...); err != nil {
		service.metrics.Action(actionSignup, metrics.OutcomeInvalid)
		return nil, err
	}

	email := normalizeEmail(textOf(batch, FieldEmail))

	// Reject a taken address before paying for the hash
	_, err := service.users.FindByEmail(context, email)
	switch {
	case err == nil:
		service.metrics.Action(actionSignup, metrics.OutcomeRejected)
		return nil, emailInUse(batch)
	case !errors.Is(err, ErrUserNotFound):
		service.metrics.Action(actionSignup, metrics.OutcomeError)
		return nil, fmt.Errorf("account_service_signup_lookup_failed: %w", err)
	}

	hash, err := service.hasher.Hash(textOf(batch, FieldPassword))
	if err != nil {
		service.metrics.Action(actionSignup, metrics.OutcomeError)
		return nil, fmt.Errorf("account_service_hash_failed: %w", err)
	}

	now := service.now()
	user := &User{
		ID:           uuid.New(),
		FirstName:    textOf(batch, FieldFirstName),
		LastName:     textOf(batch, FieldLastName),
		Email:        email,
		PasswordHash: hash,
		Role:         sec.RoleUser,
		Terms:        true,
		JTI:          uuid.New(),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	token, err := service.issue(user, sec.IntentEmailVerification)
	if err != nil {
		service.metrics.Action(actionSignup, metrics.OutcomeError)
		return nil, err
	}
	user.VerificationToken = token

	if err := service.users.Create(context, user); err != nil {
		if errors.Is(err, ErrEmailTaken) {
			service.metrics.Action(actionSignup, metrics.OutcomeRejected)
			return nil, emailInUse(batch)
		}
		service.metrics.Action(actionSignup, metrics.OutcomeError)
		return nil, fmt.Errorf("account_service_signup_failed: %w", err)
	}

	if err := service.mailer.SendVerification(context, user.Email, token); err != nil {
		logger.Error("verification_mail_failed", slog.String("user_id", user.ID), slog.Any("error", err))
		service.metrics.Action(actionSignup, metrics.OutcomeError)
		return nil, apperr.ServiceUnavailable(msgVerifyMailFailed).WithCause(err)
	}

	logger.Info("account_created", slog.String("user_id", user.ID))
	service.metrics.Action(actionSignup, metrics.OutcomeSuccess)
	return user, nil
}

/*
VerifyAccount consumes an email verification link.

Description: The token must carry the email_verification intent and equal the
token stored on the account. The store clears it in the same statement that
sets the flag, so each link works once even under concurrent use.

Parameters:
  - context: context.Context
  - token: string

Returns:
  - *User: The verified account
  - error: Unauthorized for invalid, expired, reused or foreign tokens
*/
func (service *Service) VerifyAccount(context context.Context, token string) (*User, error) {
	claims, err := service.verify(token, sec.IntentEmailVerification)
	if err != nil {
		service.metrics.Action(actionVerify, metrics.OutcomeRejected)
		return nil, apperr.Unauthorized(msgInvalidVerify).WithCause(err)
	}

	user, err := service.users.FindByID(context, claims.UserID)
	if err != nil {
		return nil, service.unknownUser(actionVerify, err)
	}

	if user.VerificationToken == "" || user.VerificationToken != token {
		service.metrics.Action(actionVerify, metrics.OutcomeRejected)
		return nil, apperr.Unauthorized(msgInvalidVerify)
	}

	now := service.now()
	if err := service.users.ConsumeVerification(context, user.ID, token, now); err != nil {
		if errors.Is(err, ErrTokenNotCurrent) {
			service.metrics.Action(actionVerify, metrics.OutcomeRejected)
			return nil, apperr.Unauthorized(msgInvalidVerify)
		}
		service.metrics.Action(actionVerify, metrics.OutcomeError)
		return nil, fmt.Errorf("account_service_verify_failed: %w", err)
	}

	user.IsVerified = true
	user.VerificationToken = ""
	user.UpdatedAt = now

	ctxutil.GetLogger(context).Info("account_verified", slog.String("user_id", user.ID))
	service.metrics.Action(actionVerify, metrics.OutcomeSuccess)
	return user, nil
}

/*
ResendVerification mails a fresh verification link to an unverified account.

Description: Unknown and already verified addresses succeed silently so the
endpoint cannot be used to probe for accounts. The new link replaces the
previous one.

Parameters:
  - context: context.Context
  - form: map[string]any (expects "email")

Returns:
  - error: Field errors or delivery failures
*/
func (service *Service) ResendVerification(context context.Context, form map[string]any) error {
	batch, err := service.emailForm(actionResend, form)
	if err != nil {
		return err
	}

	user, err := service.users.FindByEmail(context, normalizeEmail(textOf(batch, FieldEmail)))
	if err != nil {
		return service.silentIfUnknown(actionResend, err)
	}

	if user.IsVerified {
		service.metrics.Action(actionResend, metrics.OutcomeSuccess)
		return nil
	}

	token, err := service.issue(user, sec.IntentEmailVerification)
	if err != nil {
		service.metrics.Action(actionResend, metrics.OutcomeError)
		return err
	}
	user.VerificationToken = token
	user.UpdatedAt = service.now()

	if err := service.users.Save(context, user); err != nil {
		service.metrics.Action(actionResend, metrics.OutcomeError)
		return fmt.Errorf("account_service_resend_failed: %w", err)
	}

	if err := service.mailer.SendVerification(context, user.Email, token); err != nil {
		ctxutil.GetLogger(context).Error("verification_mail_failed", slog.String("user_id", user.ID), slog.Any("error", err))
		service.metrics.Action(actionResend, metrics.OutcomeError)
		return apperr.ServiceUnavailable(msgVerifyMailFailed).WithCause(err)
	}

	service.metrics.Action(actionResend, metrics.OutcomeSuccess)
	return nil
}

// # Password Recovery

/*
RequestPasswordReset mails a password reset link.

Description: An unknown address returns success without side effects. A new
request replaces any outstanding link.

Parameters:
  - context: context.Context
  - form: map[string]any (expects "email")

Returns:
  - error: Field errors or delivery failures
*/
func (service *Service) RequestPasswordReset(context context.Context, form map[string]any) error {
	batch, err := service.emailForm(actionForgotPassword, form)
	if err != nil {
		return err
	}

	user, err := service.users.FindByEmail(context, normalizeEmail(textOf(batch, FieldEmail)))
	if err != nil {
		return service.silentIfUnknown(actionForgotPassword, err)
	}

	token, err := service.issue(user, sec.IntentPasswordReset)
	if err != nil {
		service.metrics.Action(actionForgotPassword, metrics.OutcomeError)
		return err
	}
	user.PasswordResetToken = token
	user.UpdatedAt = service.now()

	if err := service.users.Save(context, user); err != nil {
		service.metrics.Action(actionForgotPassword, metrics.OutcomeError)
		return fmt.Errorf("account_service_forgot_password_failed: %w", err)
	}

	if err := service.mailer.SendPasswordReset(context, user.Email, token); err != nil {
		ctxutil.GetLogger(context).Error("reset_mail_failed", slog.String("user_id", user.ID), slog.Any("error", err))
		service.metrics.Action(actionForgotPassword, metrics.OutcomeError)
		return apperr.ServiceUnavailable(msgResetMailFailed).WithCause(err)
	}

	service.metrics.Action(actionForgotPassword, metrics.OutcomeSuccess)
	return nil
}

/*
CompletePasswordReset sets a new password through a reset link.

Description: The form is validated before the token is looked at. On success
the stored link is cleared, the rotation nonce changes and every refresh
session of the account is revoked.

Parameters:
  - context: context.Context
  - token: string
  - form: map[string]any (expects "password" and "confirmPassword")

Returns:
  - error: Field errors, or Unauthorized for a bad link or unknown user
*/
func (service *Service) CompletePasswordReset(context context.Context, token string, form map[string]any) error {
	if err := service.checkShape(actionResetPassword, form, msgNoFormData, resetPasswordFields); err != nil {
		return err
	}

	batch := validate.BuildBatch(service.sanitizer.Map(form), resetPasswordFields...)
	password, _ := batch.Field(FieldPassword)
	batch.Update(FieldPassword, isPassword).
		Update(FieldConfirmPassword, func(field validate.FieldValidator) validate.FieldValidator {
			return field.MatchesField(password)
		})

	if err := batch.Err(secretFields...); err != nil {
		service.metrics.Action(actionResetPassword, metrics.OutcomeInvalid)
		return err
	}

	claims, err := service.verify(token, sec.IntentPasswordReset)
	if err != nil {
		service.metrics.Action(actionResetPassword, metrics.OutcomeRejected)
		return apperr.Unauthorized(msgInvalidReset).WithCause(err)
	}

	user, err := service.users.FindByID(context, claims.UserID)
	if err != nil {
		return service.unknownUser(actionResetPassword, err)
	}

	if user.PasswordResetToken == "" || user.PasswordResetToken != token {
		service.metrics.Action(actionResetPassword, metrics.OutcomeRejected)
		return apperr.Unauthorized(msgInvalidReset)
	}

	hash, err := service.hasher.Hash(textOf(batch, FieldPassword))
	if err != nil {
		service.metrics.Action(actionResetPassword, metrics.OutcomeError)
		return fmt.Errorf("account_service_hash_failed: %w", err)
	}

	if err := service.users.ConsumePasswordReset(context, user.ID, token, hash, uuid.New(), service.now()); err != nil {
		if errors.Is(err, ErrTokenNotCurrent) {
			service.metrics.Action(actionResetPassword, metrics.OutcomeRejected)
			return apperr.Unauthorized(msgInvalidReset)
		}
		service.metrics.Action(actionResetPassword, metrics.OutcomeError)
		return fmt.Errorf("account_service_reset_password_failed: %w", err)
	}

	logger := ctxutil.GetLogger(context)

	// The rotated nonce already rejects old refresh tokens; this only frees storage early.
	if err := service.sessions.DeleteAll(context, user.ID); err != nil {
		logger.Warn("session_revoke_failed", slog.String("user_id", user.ID), slog.Any("error", err))
	}

	logger.Info("password_reset", slog.String("user_id", user.ID))
	service.metrics.Action(actionResetPassword, metrics.OutcomeSuccess)
	return nil
}

// # Sessions

/*
Login checks credentials and opens a refresh session.

Description: Unknown emails and wrong passwords share one message so the
endpoint does not reveal which accounts exist. Unverified accounts are refused.

Parameters:
  - context: context.Context
  - form: map[string]any (expects "email" and "password")
  - client: ClientMeta

Returns:
  - *LoginSession: Access and refresh tokens with the user
  - error: Field errors, Unauthorized, Forbidden or storage failures
*/
func (service *Service) Login(context context.Context, form map[string]any, client ClientMeta) (*LoginSession, error) {
	if err := service.checkShape(actionLogin, form, msgNoFormData, loginFields); err != nil {
		return nil, err
	}

	batch := validate.BuildBatch(service.sanitizer.Map(form), loginFields...)
	if err := batch.Err(secretFields...); err != nil {
		service.metrics.Action(actionLogin, metrics.OutcomeInvalid)
		return nil, err
	}

	user, err := service.users.FindByEmail(context, normalizeEmail(textOf(batch, FieldEmail)))
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			service.metrics.Action(actionLogin, metrics.OutcomeRejected)
			return nil, apperr.Unauthorized(msgInvalidLogin)
		}
		service.metrics.Action(actionLogin, metrics.OutcomeError)
		return nil, fmt.Errorf("account_service_login_lookup_failed: %w", err)
	}

	if !service.hasher.Compare(textOf(batch, FieldPassword), user.PasswordHash) {
		service.metrics.Action(actionLogin, metrics.OutcomeRejected)
		return nil, apperr.Unauthorized(msgInvalidLogin)
	}

	if !user.IsVerified {
		service.metrics.Action(actionLogin, metrics.OutcomeRejected)
		return nil, apperr.Forbidden(msgUnverified)
	}

	session, err := service.openSession(context, user, client)
	if err != nil {
		service.metrics.Action(actionLogin, metrics.OutcomeError)
		return nil, err
	}

	ctxutil.GetLogger(context).Info("login_succeeded", slog.String("user_id", user.ID))
	service.metrics.Action(actionLogin, metrics.OutcomeSuccess)
	return session, nil
}

/*
Refresh rotates a refresh session.

Description: The token must carry the refresh intent, its session must still
exist, and its nonce must equal the account's current one. The old session is
removed before the new pair is issued.

Parameters:
  - context: context.Context
  - token: string (refresh token)
  - client: ClientMeta

Returns:
  - *LoginSession: The rotated credentials
  - error: Unauthorized or storage failures
*/
func (service *Service) Refresh(context context.Context, token string, client ClientMeta) (*LoginSession, error) {
	claims, err := service.verify(token, sec.IntentRefresh)
	if err != nil {
		service.metrics.Action(actionRefresh, metrics.OutcomeRejected)
		return nil, apperr.Unauthorized(msgInvalidSession).WithCause(err)
	}

	digest := sec.HashToken(token)
	current, err := service.sessions.Find(context, digest)
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			service.metrics.Action(actionRefresh, metrics.OutcomeRejected)
			return nil, apperr.Unauthorized(msgInvalidSession)
		}
		service.metrics.Action(actionRefresh, metrics.OutcomeError)
		return nil, fmt.Errorf("account_service_refresh_lookup_failed: %w", err)
	}

	if current.UserID != claims.UserID {
		service.metrics.Action(actionRefresh, metrics.OutcomeRejected)
		return nil, apperr.Unauthorized(msgInvalidSession)
	}

	user, err := service.users.FindByID(context, claims.UserID)
	if err != nil {
		return nil, service.unknownUser(actionRefresh, err)
	}

	if err := service.sessions.Delete(context, digest); err != nil {
		service.metrics.Action(actionRefresh, metrics.OutcomeError)
		return nil, fmt.Errorf("account_service_refresh_revoke_failed: %w", err)
	}

	if claims.JTI() != user.JTI {
		service.metrics.Action(actionRefresh, metrics.OutcomeRejected)
		return nil, apperr.Unauthorized(msgSupersededLogin)
	}

	session, err := service.openSession(context, user, client)
	if err != nil {
		service.metrics.Action(actionRefresh, metrics.OutcomeError)
		return nil, err
	}

	service.metrics.Action(actionRefresh, metrics.OutcomeSuccess)
	return session, nil
}

/*
Logout removes the session of a refresh token. Unknown, expired or empty
tokens succeed, so repeated calls are harmless.

Parameters:
  - context: context.Context
  - token: string (refresh token)

Returns:
  - error: Storage failures only
*/
func (service *Service) Logout(context context.Context, token string) error {
	if strings.TrimSpace(token) == "" {
		service.metrics.Action(actionLogout, metrics.OutcomeSuccess)
		return nil
	}

	if err := service.sessions.Delete(context, sec.HashToken(token)); err != nil {
		service.metrics.Action(actionLogout, metrics.OutcomeError)
		return fmt.Errorf("account_service_logout_failed: %w", err)
	}

	service.metrics.Action(actionLogout, metrics.OutcomeSuccess)
	return nil
}

/*
Profile returns the account behind an authenticated request.

Parameters:
  - context: context.Context
  - userID: string

Returns:
  - *User: The account
  - error: ErrUserNotFound or storage failures
*/
func (service *Service) Profile(context context.Context, userID string) (*User, error) {
	user, err := service.users.FindByID(context, userID)
	if err != nil {
		return nil, fmt.Errorf("account_service_profile_failed: %w", err)
	}
	return user, nil
}

// # Helpers

func (service *Service) openSession(context context.Context, user *User, client ClientMeta) (*LoginSession, error) {
	accessToken, err := service.issue(user, sec.IntentAccess)
	if err != nil {
		return nil, err
	}

	refreshToken, err := service.issue(user, sec.IntentRefresh)
	if err != nil {
		return nil, err
	}

	now := service.now()
	session := &Session{
		TokenHash: sec.HashToken(refreshToken),
		UserID:    user.ID,
		UserAgent: client.UserAgent,
		IPAddress: client.IPAddress,
		CreatedAt: now,
		ExpiresAt: now.Add(sec.RefreshTokenTTL),
	}

	if err := service.sessions.Create(context, session); err != nil {
		return nil, fmt.Errorf("account_service_session_create_failed: %w", err)
	}

	return &LoginSession{
		AccessToken:      accessToken,
		RefreshToken:     refreshToken,
		RefreshExpiresAt: session.ExpiresAt,
		User:             user,
	}, nil
}

func (service *Service) issue(user *User, intent sec.Intent) (string, error) {
	token, err := service.tokens.Issue(user, intent)
	if err != nil {
		return "", apperr.Internal(fmt.Errorf("account_service_token_issue_failed: %w", err))
	}
	service.metrics.TokenIssued(string(intent))
	return token, nil
}

func (service *Service) verify(token string, intent sec.Intent) (*sec.Claims, error) {
	claims, err := service.tokens.Verify(token, intent)
	if err != nil {
		service.metrics.TokenRejected(string(intent))
		return nil, err
	}
	return claims, nil
}

// checkShape refuses a missing form, or one whose declared fields hold lists or
// objects, before any rule runs. Both surface as one generic top-level error.
func (service *Service) checkShape(action string, form map[string]any, missing string, fields []validate.FieldDescriptor) error {
	if form == nil {
		service.metrics.Action(action, metrics.OutcomeInvalid)
		return apperr.ValidationError(missing)
	}
	if !validate.Scalars(form, fields...) {
		service.metrics.Action(action, metrics.OutcomeInvalid)
		return apperr.ValidationError(msgMalformedForm)
	}
	return nil
}

// emailForm validates a single-email form.
func (service *Service) emailForm(action string, form map[string]any) (*validate.Batch, error) {
	if err := service.checkShape(action, form, msgNoFormData, emailFields); err != nil {
		return nil, err
	}

	batch := validate.BuildBatch(service.sanitizer.Map(form), emailFields...)
	batch.Update(FieldEmail, validate.FieldValidator.IsEmail)

	if err := batch.Err(secretFields...); err != nil {
		service.metrics.Action(action, metrics.OutcomeInvalid)
		return nil, err
	}
	return batch, nil
}

// silentIfUnknown hides a missing account behind a successful response.
func (service *Service) silentIfUnknown(action string, err error) error {
	if errors.Is(err, ErrUserNotFound) {
		service.metrics.Action(action, metrics.OutcomeSuccess)
		return nil
	}
	service.metrics.Action(action, metrics.OutcomeError)
	return fmt.Errorf("account_service_%s_lookup_failed: %w", action, err)
}

// unknownUser maps a failed lookup of a token subject.
func (service *Service) unknownUser(action string, err error) error {
	if errors.Is(err, ErrUserNotFound) {
		service.metrics.Action(action, metrics.OutcomeRejected)
		return apperr.Unauthorized(msgInvalidUser)
	}
	service.metrics.Action(action, metrics.OutcomeError)
	return fmt.Errorf("account_service_%s_lookup_failed: %w", action, err)
}

func emailInUse(batch *validate.Batch) error {
	conflict := apperr.Conflict(msgEmailInUse)
	conflict.PrevValues = batch.Echo(secretFields...)
	return conflict
}

func isPassword(field validate.FieldValidator) validate.FieldValidator {
	return field.IsPassword(validate.PasswordOptions{})
}

func textOf(batch *validate.Batch, name string) string {
	field, _ := batch.Field(name)
	return field.Text()
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
