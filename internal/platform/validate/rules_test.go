// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package validate_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/taibuivan/accounts/internal/platform/validate"
)

/*
TestRules_Required checks which values count as absent.
*/
func TestRules_Required(t *testing.T) {
	tests := []struct {
		name    string
		value   any
		isValid bool
	}{
		{"nil", nil, false},
		{"empty_string", "", false},
		{"whitespace_is_present", "   ", true},
		{"false_is_present", false, true},
		{"zero_is_present", 0, true},
		{"text", "abc", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			verdict := validate.Required(tt.value)
			assert.Equal(t, tt.isValid, verdict.IsValid)
			if !tt.isValid {
				assert.Equal(t, []string{"Value is required"}, verdict.Errors)
			} else {
				assert.Empty(t, verdict.Errors)
			}
		})
	}
}

/*
TestRules_IsEmail exercises the email pattern.
*/
func TestRules_IsEmail(t *testing.T) {
	tests := []struct {
		email   string
		isValid bool
	}{
		{"test@example.com", true},
		{"first.last@sub.example.org", true},
		{"a+tag@example.io", true},
		{"x@y.co", true},
		{"", false},
		{"invalid-email", false},
		{"test@", false},
		{"@example.com", false},
		{".lead@example.com", false},
		{"double..dot@example.com", false},
		{"a@b..co", false},
		{"a@b.co.", false},
		{"user@localhost", false},
		{"user@example.c", false},
	}

	for _, tt := range tests {
		t.Run(tt.email, func(t *testing.T) {
			verdict := validate.IsEmail(tt.email)
			assert.Equal(t, tt.isValid, verdict.IsValid)
			if !tt.isValid {
				assert.Equal(t, []string{"Invalid email address"}, verdict.Errors)
			}
		})
	}

	// Absent input must not panic.
	assert.False(t, validate.IsEmail(nil).IsValid)
}

/*
TestRules_MinMax covers strings, numbers and ignored types.
*/
func TestRules_MinMax(t *testing.T) {
	assert.True(t, validate.Min(3)("abc").IsValid)
	assert.Equal(t, []string{"Value must be at least 4 characters"}, validate.Min(4)("abc").Errors)
	assert.Equal(t, []string{"Value must be at least 1 character"}, validate.Min(1)("").Errors)
	assert.True(t, validate.Min(2)("日本").IsValid, "length counts characters, not bytes")

	assert.True(t, validate.Min(18)(21).IsValid)
	assert.Equal(t, []string{"Value must be at least 18"}, validate.Min(18)(17.5).Errors)
	assert.True(t, validate.Min(5)(json.Number("7")).IsValid)

	assert.Equal(t, []string{"Value must not be greater than 2 characters"}, validate.Max(2)("abc").Errors)
	assert.Equal(t, []string{"Value must not be greater than 10"}, validate.Max(10)(11).Errors)
	assert.True(t, validate.Max(10)(10).IsValid)

	// Neither string nor number
	assert.True(t, validate.Min(3)(true).IsValid)
	assert.True(t, validate.Max(0)(nil).IsValid)
	assert.True(t, validate.Min(3)([]string{"a"}).IsValid)
}

/*
TestRules_CharacterClasses verifies the pattern rules and their messages.
*/
func TestRules_CharacterClasses(t *testing.T) {
	assert.True(t, validate.HasUpper("aBc").IsValid)
	assert.Equal(t, []string{"Value must contain an uppercase character"}, validate.HasUpper("abc").Errors)

	assert.True(t, validate.HasLower("ABc").IsValid)
	assert.Equal(t, []string{"Value must contain a lowercase character"}, validate.HasLower("ABC").Errors)

	assert.True(t, validate.HasNumber("a1").IsValid)
	assert.True(t, validate.HasNumber(42).IsValid)
	assert.Equal(t, []string{"Value must contain a number"}, validate.HasNumber("abc").Errors)

	assert.True(t, validate.HasSpecial("a!").IsValid)
	assert.False(t, validate.HasSpecial("a b").IsValid, "whitespace is not special")
	assert.Equal(t, []string{"Value must contain a special character"}, validate.HasSpecial("abc").Errors)
}

/*
TestRules_IsPassword checks the default policy and its options.
*/
func TestRules_IsPassword(t *testing.T) {
	defaults := validate.IsPassword(validate.PasswordOptions{})

	assert.True(t, defaults("Abcdef1!").IsValid)

	verdict := defaults("abc")
	assert.False(t, verdict.IsValid)
	assert.Equal(t, []string{
		"Value must be at least 8 characters",
		"Value must contain an uppercase character",
		"Value must contain a number",
		"Value must contain a special character",
	}, verdict.Errors)

	relaxed := validate.IsPassword(validate.PasswordOptions{Min: 4, NoSpecial: true, NoNumber: true})
	assert.True(t, relaxed("Abcd").IsValid)

	bounded := validate.IsPassword(validate.PasswordOptions{Max: 10})
	assert.Equal(t, []string{"Value must not be greater than 10 characters"}, bounded("Abcdefgh1!xyz").Errors)

	// Absent input is handled by Required, never by a panic here.
	assert.False(t, defaults(nil).IsValid)
}

/*
TestRules_Matches verifies strict equality without coercion.
*/
func TestRules_Matches(t *testing.T) {
	assert.True(t, validate.Matches("secret")("secret").IsValid)
	assert.Equal(t, []string{"Value does not match"}, validate.Matches("secret")("Secret").Errors)
	assert.False(t, validate.Matches(1)("1").IsValid)
	assert.True(t, validate.Matches(1)(float64(1)).IsValid)
	assert.True(t, validate.Matches(nil)(nil).IsValid)
	assert.False(t, validate.Matches(nil)("").IsValid)
}

/*
TestRules_Accepted verifies the consent rule.
*/
func TestRules_Accepted(t *testing.T) {
	for _, value := range []any{true, "true", "on"} {
		assert.True(t, validate.Accepted(value).IsValid, "%v", value)
	}
	for _, value := range []any{false, "false", "", nil, 1} {
		assert.Equal(t, []string{"Value must be accepted"}, validate.Accepted(value).Errors, "%v", value)
	}
}

/*
TestRunAll folds validity and de-duplicates messages in order.
*/
func TestRunAll(t *testing.T) {
	t.Run("no_rules", func(t *testing.T) {
		verdict := validate.RunAll("x")
		assert.True(t, verdict.IsValid)
		assert.Empty(t, verdict.Errors)
	})

	t.Run("dedup", func(t *testing.T) {
		verdict := validate.RunAll("abc", validate.HasUpper, validate.HasNumber, validate.HasUpper, nil)
		assert.False(t, verdict.IsValid)
		assert.Equal(t, []string{
			"Value must contain an uppercase character",
			"Value must contain a number",
		}, verdict.Errors)
	})

	t.Run("nil_rule_passes", func(t *testing.T) {
		verdict := validate.RunRule(nil, nil)
		assert.True(t, verdict.IsValid)
		assert.NotNil(t, verdict.Errors)
	})
}
