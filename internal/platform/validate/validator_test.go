// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package validate_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/taibuivan/accounts/internal/platform/validate"
)

/*
TestFieldValidator_Immutable verifies that rule methods never modify the receiver.
*/
func TestFieldValidator_Immutable(t *testing.T) {
	base := validate.NewField("email", "nope")
	checked := base.IsEmail()

	assert.True(t, base.IsValid())
	assert.Empty(t, base.Errors())
	assert.False(t, checked.IsValid())
	assert.Equal(t, []string{"Invalid email address"}, checked.Errors())

	// Mutating the returned slice leaves the validator intact.
	errs := checked.Errors()
	errs[0] = "tampered"
	assert.Equal(t, []string{"Invalid email address"}, checked.Errors())
}

/*
TestFieldValidator_Idempotent verifies that a category replaces its own messages.
*/
func TestFieldValidator_Idempotent(t *testing.T) {
	once := validate.NewField("password", "abc").IsPassword(validate.PasswordOptions{})
	twice := once.IsPassword(validate.PasswordOptions{})

	assert.Equal(t, once.Errors(), twice.Errors())
	assert.Equal(t, once.IsValid(), twice.IsValid())

	// Re-running with relaxed options replaces the previous bucket.
	relaxed := twice.IsPassword(validate.PasswordOptions{Min: 3, NoUpper: true, NoNumber: true, NoSpecial: true})
	assert.True(t, relaxed.IsValid())
	assert.Empty(t, relaxed.Errors())
}

/*
TestFieldValidator_RequiredPrecedence verifies that a failing required rule hides detail messages.
*/
func TestFieldValidator_RequiredPrecedence(t *testing.T) {
	tests := []struct {
		name  string
		build func(validate.FieldValidator) validate.FieldValidator
	}{
		{"required_first", func(f validate.FieldValidator) validate.FieldValidator {
			return f.Required().IsPassword(validate.PasswordOptions{})
		}},
		{"required_last", func(f validate.FieldValidator) validate.FieldValidator {
			return f.IsPassword(validate.PasswordOptions{}).Required()
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			field := tt.build(validate.NewField("password", ""))
			assert.False(t, field.IsValid())
			assert.Equal(t, []string{"password is required"}, field.Errors())
		})
	}

	t.Run("present_value_shows_details", func(t *testing.T) {
		field := validate.NewField("password", "abc").Required().IsPassword(validate.PasswordOptions{})
		assert.False(t, field.IsValid())
		assert.Contains(t, field.Errors(), "password must be at least 8 characters")
		assert.NotContains(t, field.Errors(), "password is required")
	})
}

/*
TestFieldValidator_Union verifies duplicate-free aggregation across categories.
*/
func TestFieldValidator_Union(t *testing.T) {
	field := validate.NewField("password", "abcdefgh").
		HasUpper().
		IsPassword(validate.PasswordOptions{NoNumber: true, NoSpecial: true})

	assert.False(t, field.IsValid())
	assert.Equal(t, []string{"password must contain an uppercase character"}, field.Errors())
}

/*
TestFieldValidator_MatchesField verifies the cross-field message.
*/
func TestFieldValidator_MatchesField(t *testing.T) {
	password := validate.NewField("password", "Abcdef1!")

	confirm := validate.NewField("confirmPassword", "Abcdef1?").MatchesField(password)
	assert.Equal(t, []string{"confirmPassword does not match password"}, confirm.Errors())

	literal := validate.NewField("confirmPassword", "x").Matches("y")
	assert.Equal(t, []string{"confirmPassword does not match"}, literal.Errors())

	same := validate.NewField("confirmPassword", "Abcdef1!").MatchesField(password)
	assert.True(t, same.IsValid())
}

/*
TestFieldValidator_Apply verifies custom categories.
*/
func TestFieldValidator_Apply(t *testing.T) {
	noAdmin := func(value any) validate.Verdict {
		if value == "admin" {
			return validate.Verdict{IsValid: false, Errors: []string{"username is reserved"}}
		}
		return validate.Verdict{IsValid: true}
	}

	field := validate.NewField("username", "admin").Apply("reserved", noAdmin)
	assert.Equal(t, []string{"username is reserved"}, field.Errors())

	// A nil rule clears the category.
	cleared := field.Apply("reserved", nil)
	assert.True(t, cleared.IsValid())
	assert.Equal(t, "admin", cleared.Text())
}

/*
TestFieldValidator_NoTrim verifies that the value is kept verbatim.
*/
func TestFieldValidator_NoTrim(t *testing.T) {
	field := validate.NewField("nickname", "  spaced  ").Required()
	assert.Equal(t, "  spaced  ", field.Value())
	assert.True(t, field.IsValid())
	assert.Equal(t, "", validate.NewField("x", nil).Text())
}
