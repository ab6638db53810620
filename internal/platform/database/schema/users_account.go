// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package schema names the tables and columns queried by repositories so that
// SQL strings never hard-code identifiers.
package schema

import "strings"

// UserAccountTable represents the 'users.account' table
type UserAccountTable struct {
	Table              string
	ID                 string
	FirstName          string
	LastName           string
	Email              string
	Password           string
	Role               string
	IsVerified         string
	Terms              string
	JTI                string
	VerificationToken  string
	PasswordResetToken string
	CreatedAt          string
	UpdatedAt          string
}

// UserAccount is the schema definition for users.account
var UserAccount = UserAccountTable{
	Table:              "users.account",
	ID:                 "id",
	FirstName:          "firstname",
	LastName:           "lastname",
	Email:              "email",
	Password:           "passwordhash",
	Role:               "role",
	IsVerified:         "isverified",
	Terms:              "terms",
	JTI:                "jti",
	VerificationToken:  "verificationtoken",
	PasswordResetToken: "passwordresettoken",
	CreatedAt:          "createdat",
	UpdatedAt:          "updatedat",
}

// Columns returns all standard column names, in scan order.
func (t UserAccountTable) Columns() []string {
	return []string{
		t.ID, t.FirstName, t.LastName, t.Email, t.Password, t.Role,
		t.IsVerified, t.Terms, t.JTI, t.VerificationToken, t.PasswordResetToken,
		t.CreatedAt, t.UpdatedAt,
	}
}

// SelectList returns the columns joined for a SELECT clause.
func (t UserAccountTable) SelectList() string {
	return strings.Join(t.Columns(), ", ")
}
