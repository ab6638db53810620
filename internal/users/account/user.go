// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package account implements the account lifecycle: signup, email verification,
password recovery and refresh-token sessions.

# Architecture

  - Service: runs every submitted form through the validation engine, performs
    side effects only for valid input and mints intent-scoped tokens.
  - Repository: abstracted interfaces for Postgres (users) and Redis (sessions).
  - Handler: thin chi transport mapping forms and cookies onto the Service.

Single-use verification and reset links are enforced here, not by the token
layer: the issued token is stored verbatim on the user and cleared after use.
*/
package account

import (
	"time"

	"github.com/taibuivan/accounts/internal/platform/sec"
)

// # Domain Entities

// User is a registered account.
type User struct {
	ID           string       `json:"id"`
	FirstName    string       `json:"firstName"`
	LastName     string       `json:"lastName"`
	Email        string       `json:"email"`
	PasswordHash string       `json:"-"` // Explicitly omitted from JSON for security.
	Role         sec.UserRole `json:"role"`
	IsVerified   bool         `json:"verified"`
	Terms        bool         `json:"terms"`

	// JTI is the rotation nonce carried by every token minted for this user.
	JTI string `json:"-"`

	// Outstanding single-use tokens, stored verbatim. Empty when none is pending.
	VerificationToken  string `json:"-"`
	PasswordResetToken string `json:"-"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// SubjectID implements [sec.Subject].
func (u *User) SubjectID() string { return u.ID }

// SubjectJTI implements [sec.Subject].
func (u *User) SubjectJTI() string { return u.JTI }

// SubjectRole implements [sec.Subject].
func (u *User) SubjectRole() sec.UserRole { return u.Role }

// Session is an active refresh-token session, keyed by the token digest.
type Session struct {
	TokenHash string    `json:"-"`
	UserID    string    `json:"userId"`
	UserAgent string    `json:"userAgent"`
	IPAddress string    `json:"ipAddress"`
	CreatedAt time.Time `json:"createdAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// LoginSession is the credential pair handed to a client after login or refresh.
type LoginSession struct {
	AccessToken      string
	RefreshToken     string
	RefreshExpiresAt time.Time
	User             *User
}

// # Field Identifiers

// Form field names as submitted by clients.
const (
	FieldFirstName       = "firstName"
	FieldLastName        = "lastName"
	FieldEmail           = "email"
	FieldPassword        = "password"
	FieldConfirmPassword = "confirmPassword"
	FieldTerms           = "terms"
	FieldToken           = "token"
	FieldMessage         = "message"
	FieldUser            = "user"
	FieldAccessToken     = "accessToken"
	FieldTokenType       = "tokenType"
	FieldExpiresIn       = "expiresIn"
)
