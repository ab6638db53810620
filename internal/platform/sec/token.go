// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package sec provides cryptographic primitives and token management.
//
// # Architecture
//
// This package isolates security-sensitive code (hashing, token signing) from
// the account logic. It depends on a clock and a shared secret only; it never
// touches storage. Single-use enforcement of verification and reset tokens is
// layered on top by the caller.
package sec

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// MinSecretLength is the minimum accepted length of the signing secret in bytes.
const MinSecretLength = 32

var (
	// ErrNoToken is returned when Verify is called without a token. No
	// cryptographic work is attempted.
	ErrNoToken = errors.New("No token provided")

	// ErrInvalidToken wraps every signature, structure and expiry failure.
	ErrInvalidToken = errors.New("Invalid token")

	// ErrInvalidTokenType is returned for a valid token presented for the wrong intent.
	ErrInvalidTokenType = errors.New("Invalid token type")

	// ErrInvalidSubject is returned when Issue is called with a malformed subject.
	ErrInvalidSubject = errors.New("Invalid token subject")

	// ErrInvalidIntent is returned when Issue is called with an unknown intent.
	ErrInvalidIntent = errors.New("Invalid token intent")

	// ErrWeakSecret is returned by NewTokenService for short secrets.
	ErrWeakSecret = fmt.Errorf("token secret must be at least %d bytes", MinSecretLength)
)

// # Intents

// Intent restricts the usage context of a token.
type Intent string

const (
	IntentEmailVerification Intent = "email_verification"
	IntentPasswordReset     Intent = "password_reset"
	IntentRefresh           Intent = "refresh"
	IntentAccess            Intent = "access"
)

const (
	// ShortTokenTTL applies to access, verification and reset tokens.
	ShortTokenTTL = 15 * time.Minute

	// RefreshTokenTTL applies to refresh tokens.
	RefreshTokenTTL = 7 * 24 * time.Hour
)

// TTL returns the lifetime of tokens minted for this intent.
func (i Intent) TTL() time.Duration {
	if i == IntentRefresh {
		return RefreshTokenTTL
	}
	return ShortTokenTTL
}

// Valid reports whether i is one of the known intents.
func (i Intent) Valid() bool {
	switch i {
	case IntentEmailVerification, IntentPasswordReset, IntentRefresh, IntentAccess:
		return true
	}
	return false
}

// # Claims

// Subject is anything a token can be minted for.
type Subject interface {
	SubjectID() string
	// SubjectJTI is the per-subject rotation nonce. Rotating it supersedes
	// every token minted before.
	SubjectJTI() string
	SubjectRole() UserRole
}

// Claims is the payload embedded inside every token.
//
// The registered jti carries the subject's rotation nonce, not a fresh id:
// all tokens minted for a subject between two rotations share it.
type Claims struct {
	jwt.RegisteredClaims

	UserID string   `json:"userId"`
	Role   UserRole `json:"role"`
	Intent Intent   `json:"intent"`
}

// JTI returns the rotation nonce carried by the token.
func (c *Claims) JTI() string { return c.ID }

// # Service

// parser is the slice of [jwt.Parser] used by Verify.
type parser interface {
	ParseWithClaims(tokenString string, claims jwt.Claims, keyFunc jwt.Keyfunc) (*jwt.Token, error)
}

// Option configures a [TokenService].
type Option func(*TokenService)

// WithClock overrides the time source used for issuing and expiry checks.
func WithClock(now func() time.Time) Option {
	return func(service *TokenService) { service.now = now }
}

// WithIssuer sets the "iss" claim and requires it on verification.
func WithIssuer(issuer string) Option {
	return func(service *TokenService) { service.issuer = issuer }
}

// TokenService mints and verifies HS256 tokens with a single shared secret.
//
// # Concurrency
//
// TokenService is immutable after construction and safe for concurrent use.
type TokenService struct {
	secret []byte
	issuer string
	now    func() time.Time
	parser parser
}

// NewTokenService creates a new TokenService.
//
// Parameters:
//   - secret: the shared HMAC key (at least [MinSecretLength] bytes)
//   - opts: optional clock and issuer
func NewTokenService(secret []byte, opts ...Option) (*TokenService, error) {
	if len(secret) < MinSecretLength {
		return nil, ErrWeakSecret
	}

	service := &TokenService{
		secret: append([]byte(nil), secret...),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(service)
	}

	parserOptions := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithTimeFunc(service.now),
	}
	if service.issuer != "" {
		parserOptions = append(parserOptions, jwt.WithIssuer(service.issuer))
	}
	service.parser = jwt.NewParser(parserOptions...)

	return service, nil
}

// Issue mints a signed token for subject, scoped to intent.
//
// A malformed subject (nil, missing id or nonce) yields an empty string and
// [ErrInvalidSubject].
func (service *TokenService) Issue(subject Subject, intent Intent) (string, error) {
	if isNil(subject) || strings.TrimSpace(subject.SubjectID()) == "" || strings.TrimSpace(subject.SubjectJTI()) == "" {
		return "", ErrInvalidSubject
	}
	if !intent.Valid() {
		return "", ErrInvalidIntent
	}

	role := subject.SubjectRole()
	if role == "" {
		role = RoleUser
	}

	issuedAt := service.now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        subject.SubjectJTI(),
			Subject:   subject.SubjectID(),
			Issuer:    service.issuer,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(intent.TTL())),
		},
		UserID: subject.SubjectID(),
		Role:   role,
		Intent: intent,
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(service.secret)
	if err != nil {
		return "", fmt.Errorf("token_sign_failed: %w", err)
	}
	return signed, nil
}

// Verify checks signature, expiry and intent of token.
//
// Returns:
//   - [ErrNoToken] for an empty token, before any parsing
//   - an error wrapping [ErrInvalidToken] and the parser's reason for bad or expired tokens
//   - [ErrInvalidTokenType] when the token was minted for another intent
func (service *TokenService) Verify(token string, expected Intent) (*Claims, error) {
	if strings.TrimSpace(token) == "" {
		return nil, ErrNoToken
	}

	claims := &Claims{}
	parsed, err := service.parser.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return service.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	if !parsed.Valid || claims.UserID == "" {
		return nil, ErrInvalidToken
	}

	if claims.Intent != expected {
		return nil, ErrInvalidTokenType
	}

	return claims, nil
}

// isNil reports whether subject is nil or a typed nil pointer.
func isNil(subject Subject) bool {
	if subject == nil {
		return true
	}
	value := reflect.ValueOf(subject)
	switch value.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface, reflect.Func:
		return value.IsNil()
	}
	return false
}
