// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package account

import "github.com/taibuivan/accounts/internal/platform/validate"

// # Form Declarations

// Expected fields per form. A trailing "*" marks the field as required.
var (
	signupFields        = validate.Expect("firstName*", "lastName*", "email*", "password*", "confirmPassword*", "terms*")
	loginFields         = validate.Expect("email*", "password*")
	emailFields         = validate.Expect("email*")
	resetPasswordFields = validate.Expect("password*", "confirmPassword*")
)

// secretFields are never echoed back in previous values.
var secretFields = []string{FieldPassword, FieldConfirmPassword, FieldToken}

// # Action Names (metrics labels)

const (
	actionSignup         = "signup"
	actionVerify         = "verify"
	actionResend         = "resend_verification"
	actionForgotPassword = "forgot_password"
	actionResetPassword  = "reset_password"
	actionLogin          = "login"
	actionRefresh        = "refresh"
	actionLogout         = "logout"
)

// # Client Messages

const (
	msgNoAccountData    = "No account data provided"
	msgNoFormData       = "No form data provided"
	msgMalformedForm    = "Invalid form data"
	msgEmailInUse       = "Email already in use"
	msgInvalidLogin     = "Invalid email or password"
	msgUnverified       = "Verify your email address before logging in"
	msgInvalidVerify    = "Invalid or expired verification link"
	msgInvalidReset     = "Invalid or expired password reset link"
	msgInvalidUser      = "Invalid user"
	msgInvalidSession   = "Invalid or expired session"
	msgSupersededLogin  = "Session is no longer valid. Log in again"
	msgVerifyMailFailed = "Could not send verification email at this time. Try again later"
	msgResetMailFailed  = "Could not send reset email at this time. Try again later"
)
